package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/rowdb/pkg/codec"
	"github.com/ssargent/rowdb/pkg/logging"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestRecoverTables(t *testing.T) {
	t.Run("missing directory is created", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "db")
		reg := newRegistry(dir)

		result, err := recoverTables(codec.NewRecordCodec(), reg)
		require.NoError(t, err)
		assert.True(t, result.DirectoryCreated)
		assert.Equal(t, 0, result.TablesRecovered)
		assert.DirExists(t, dir)
		assert.Equal(t, 0, reg.len())
	})

	t.Run("seeds counters with the maximum id", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "users.csv"), "0;a;\n5;b;\n2;c;\n")
		writeFile(t, filepath.Join(dir, "orders.csv"), "0;x;\n")
		writeFile(t, filepath.Join(dir, "empty.csv"), "")
		reg := newRegistry(dir)

		result, err := recoverTables(codec.NewRecordCodec(), reg)
		require.NoError(t, err)
		assert.False(t, result.DirectoryCreated)
		assert.Equal(t, 3, result.TablesRecovered)
		assert.Equal(t, int64(4), result.RecordsScanned)

		users, ok := reg.get("users")
		require.True(t, ok)
		assert.Equal(t, int64(5), users.LastID())

		orders, ok := reg.get("orders")
		require.True(t, ok)
		assert.Equal(t, int64(0), orders.LastID())

		empty, ok := reg.get("empty")
		require.True(t, ok)
		assert.Equal(t, int64(-1), empty.LastID())
	})

	t.Run("ignores non-table files", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "notes.txt"), "not a table")
		writeFile(t, filepath.Join(dir, ".t.csv.123.tmp"), "garbage")
		writeFile(t, filepath.Join(dir, ".csv"), "garbage")
		require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.csv"), 0755))
		writeFile(t, filepath.Join(dir, "t.csv"), "1;a;\n")
		reg := newRegistry(dir)

		result, err := recoverTables(codec.NewRecordCodec(), reg)
		require.NoError(t, err)
		assert.Equal(t, 1, result.TablesRecovered)
		assert.Len(t, reg.list(), 1)
	})

	t.Run("blank lines are tolerated", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "t.csv"), "0;a;\n\n3;b;\n")
		reg := newRegistry(dir)

		_, err := recoverTables(codec.NewRecordCodec(), reg)
		require.NoError(t, err)
		tbl, _ := reg.get("t")
		assert.Equal(t, int64(3), tbl.LastID())
	})

	t.Run("corrupt line aborts recovery", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "good.csv"), "0;a;\n")
		writeFile(t, filepath.Join(dir, "bad.csv"), "0;a;\nnot-an-id;b;\n")
		reg := newRegistry(dir)

		_, err := recoverTables(codec.NewRecordCodec(), reg)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCorruptRecord)
		assert.True(t, errors.Is(err, codec.ErrMalformedRecord))
		assert.Contains(t, err.Error(), "bad.csv:2")
	})

	t.Run("data path is a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "db")
		writeFile(t, path, "")

		_, err := recoverTables(codec.NewRecordCodec(), newRegistry(path))
		assert.True(t, IsIOFailure(err))
	})
}

func TestRecordStore_CorruptRecoveryIsSticky(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "t.csv"), "x;broken;\n")

	store := NewRecordStore(RecordStoreConfig{DataDir: dir, Logger: logging.Discard()})
	_, err := store.Open()
	require.ErrorIs(t, err, ErrCorruptRecord)

	_, err = store.Insert("other", []string{"a"})
	assert.ErrorIs(t, err, ErrCorruptRecord)

	_, _, err = store.Select("t", 0)
	assert.ErrorIs(t, err, ErrCorruptRecord)
}

func TestTableNameFromFile(t *testing.T) {
	tests := []struct {
		file string
		name string
		ok   bool
	}{
		{"users.csv", "users", true},
		{"my table.csv", "my table", true},
		{"archive.csv.bak", "", false},
		{".csv", "", false},
		{".hidden.csv", "", false},
		{"users.CSV", "", false},
	}

	for _, tt := range tests {
		name, ok := tableNameFromFile(tt.file)
		assert.Equal(t, tt.ok, ok, tt.file)
		assert.Equal(t, tt.name, name, tt.file)
	}
}
