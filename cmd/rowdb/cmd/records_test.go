package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/rowdb/pkg/config"
	"github.com/ssargent/rowdb/pkg/store"
)

func TestInsertSelectUpdate(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "insert", "users", "alice", "30")
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)

	// Every command opens the store afresh, so ids continue from the file
	out, err = env.run(t, "insert", "users", "bob", "41")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	out, err = env.run(t, "select", "users", "0")
	require.NoError(t, err)
	assert.Equal(t, "0;alice;30\n", out)

	out, err = env.run(t, "update", "users", "0", "alice", "31")
	require.NoError(t, err)
	assert.Equal(t, "Updated record 0 in table users\n", out)

	out, err = env.run(t, "select", "users", "0", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `["0","alice","31"]`, out)

	raw, err := os.ReadFile(filepath.Join(env.dataDir, "users.csv"))
	require.NoError(t, err)
	assert.Equal(t, "1;bob;41;\n0;alice;31;\n", string(raw))
}

func TestRecordCommandErrors(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "insert", "users", "alice")
	require.NoError(t, err)

	t.Run("select missing id", func(t *testing.T) {
		_, err := env.run(t, "select", "users", "7")
		assert.ErrorContains(t, err, "not found")
	})

	t.Run("update missing id", func(t *testing.T) {
		_, err := env.run(t, "update", "users", "7", "x")
		assert.ErrorContains(t, err, "not found")
	})

	t.Run("update uninitialized table", func(t *testing.T) {
		_, err := env.run(t, "update", "ghosts", "0", "x")
		assert.ErrorIs(t, err, store.ErrTableNotInitialized)
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := env.run(t, "select", "users", "zero")
		assert.ErrorContains(t, err, "invalid record id")
	})

	t.Run("invalid table name", func(t *testing.T) {
		_, err := env.run(t, "insert", ".hidden", "x")
		assert.ErrorIs(t, err, store.ErrInvalidTableName)
	})

	t.Run("value with separator", func(t *testing.T) {
		_, err := env.run(t, "insert", "users", "a;b")
		assert.ErrorIs(t, err, store.ErrInvalidValue)
	})

	t.Run("missing arguments", func(t *testing.T) {
		_, err := env.run(t, "select", "users")
		assert.Error(t, err)
	})
}

func TestTablesCommand(t *testing.T) {
	env := newTestEnv(t)
	for _, args := range [][]string{
		{"insert", "orders", "o1"},
		{"insert", "orders", "o2"},
		{"insert", "customers", "c1"},
	} {
		_, err := env.run(t, args...)
		require.NoError(t, err)
	}

	out, err := env.run(t, "tables")
	require.NoError(t, err)
	assert.Contains(t, out, "TABLE")
	assert.Regexp(t, `customers\s+0\s+1`, out)
	assert.Regexp(t, `orders\s+1\s+2`, out)
	assert.Contains(t, out, "2 tables")
}

func TestDataDirFromConfig(t *testing.T) {
	env := newTestEnv(t)

	cfg := config.DefaultConfig()
	cfg.DataDir = filepath.Join(env.dir, "from-config")
	require.NoError(t, config.SaveConfig(cfg, env.configPath))

	_, err := env.runRaw(t, "insert", "events", "boot")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(cfg.DataDir, "events.csv"))

	// The flag wins over the file
	_, err = env.run(t, "insert", "events", "boot")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(env.dataDir, "events.csv"))
}

func TestCorruptDataDir(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.MkdirAll(env.dataDir, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(env.dataDir, "bad.csv"), []byte("x;y;\n"), 0644))

	_, err := env.run(t, "insert", "users", "alice")
	assert.ErrorIs(t, err, store.ErrCorruptRecord)
}

func TestMissingContainer(t *testing.T) {
	env := newTestEnv(t)
	SetContainer(nil)

	_, err := env.run(t, "insert", "users", "alice")
	assert.ErrorContains(t, err, "dependency container not initialized")
}
