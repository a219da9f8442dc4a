package store

import (
	"errors"
	"io/fs"
	"os"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ssargent/rowdb/pkg/codec"
)

type recoveredTable struct {
	name    string
	lastID  int64
	records int64
}

// recoverTables rebuilds the registry from the data directory. A missing
// directory is created and yields an empty registry. Any unparsable line
// aborts recovery with ErrCorruptRecord.
func recoverTables(c *codec.RecordCodec, reg *registry) (*RecoveryResult, error) {
	start := time.Now()
	result := &RecoveryResult{}

	info, err := os.Stat(reg.dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(reg.dir, dirPerm); err != nil {
			return nil, newError(KindIO, err, "failed to create data directory")
		}
		result.DirectoryCreated = true
		result.RecoveryTime = time.Since(start)
		return result, nil
	case err != nil:
		return nil, newError(KindIO, err, "failed to stat data directory")
	case !info.IsDir():
		return nil, newError(KindIO, nil, "data directory %s is not a directory", reg.dir)
	}

	entries, err := os.ReadDir(reg.dir)
	if err != nil {
		return nil, newError(KindIO, err, "failed to list data directory")
	}

	var names []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name, ok := tableNameFromFile(entry.Name())
		if !ok {
			continue
		}
		names = append(names, name)
	}

	found := make([]recoveredTable, len(names))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range names {
		g.Go(func() error {
			lastID, records, err := scanMaxID(c, reg.path(name))
			if err != nil {
				return err
			}
			found[i] = recoveredTable{name: name, lastID: lastID, records: records}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, rt := range found {
		reg.seed(rt.name, rt.lastID)
		result.TablesRecovered++
		result.RecordsScanned += rt.records
	}

	result.RecoveryTime = time.Since(start)
	return result, nil
}

// tableNameFromFile strips the table extension, rejecting files that are not
// table files (temp files, dotfiles, other extensions)
func tableNameFromFile(fileName string) (string, bool) {
	name, ok := strings.CutSuffix(fileName, TableFileExtension)
	if !ok {
		return "", false
	}
	if validateTableName(name) != nil {
		return "", false
	}
	return name, true
}

// validateTableName rejects names that cannot be used as a file stem inside
// the data directory
func validateTableName(name string) error {
	switch {
	case name == "":
		return newError(KindInvalidTableName, nil, "table name is empty")
	case strings.HasPrefix(name, "."):
		return newError(KindInvalidTableName, nil, "table name %q starts with a dot", name)
	case strings.ContainsAny(name, "/\\\x00"):
		return newError(KindInvalidTableName, nil, "table name %q contains a path separator", name)
	}
	return nil
}
