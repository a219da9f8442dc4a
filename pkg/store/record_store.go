package store

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ssargent/rowdb/pkg/codec"
)

// Store defines the record store operations consumed by the API and CLI
type Store interface {
	Insert(table string, values []string) (int64, error)
	Update(table string, values []string, id int64) (bool, error)
	Select(table string, id int64) ([]string, bool, error)
	Tables() ([]TableInfo, error)
	Stats() (*StoreStats, error)
	Close() error
}

// RecordStore is the file-backed record store: one <table>.csv per table
// under DataDir, ids allocated per table starting at 0.
type RecordStore struct {
	config RecordStoreConfig
	codec  *codec.RecordCodec
	tables *registry
	logger *slog.Logger

	openOnce sync.Once
	recovery *RecoveryResult
	openErr  error
	closed   atomic.Bool
}

var _ Store = (*RecordStore)(nil)

// NewRecordStore creates a record store. Nothing touches the disk until Open
// or the first operation.
func NewRecordStore(config RecordStoreConfig) *RecordStore {
	if config.DataDir == "" {
		config.DataDir = DefaultDataDir
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &RecordStore{
		config: config,
		codec:  codec.NewRecordCodec(),
		tables: newRegistry(config.DataDir),
		logger: logger.With("component", "store"),
	}
}

// Open runs startup recovery. It executes exactly once per store; later
// calls, and every operation, observe the same result.
func (s *RecordStore) Open() (*RecoveryResult, error) {
	s.openOnce.Do(func() {
		s.recovery, s.openErr = recoverTables(s.codec, s.tables)
		if s.openErr != nil {
			s.logger.Error("recovery failed", "dir", s.config.DataDir, "error", s.openErr)
			return
		}
		s.logger.Info("store opened",
			"dir", s.config.DataDir,
			"created", s.recovery.DirectoryCreated,
			"tables", s.recovery.TablesRecovered,
			"records", s.recovery.RecordsScanned,
			"duration", s.recovery.RecoveryTime,
		)
	})
	return s.recovery, s.openErr
}

func (s *RecordStore) ensureOpen() error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	_, err := s.Open()
	return err
}

// DataDir returns the storage directory
func (s *RecordStore) DataDir() string {
	return s.config.DataDir
}

// Insert appends a record to the table, creating the table on first use,
// and returns its id
func (s *RecordStore) Insert(table string, values []string) (id int64, err error) {
	defer s.observe("insert", table, time.Now(), &err)

	if err := s.ensureOpen(); err != nil {
		return 0, err
	}
	if err := validateTableName(table); err != nil {
		return 0, err
	}
	if err := s.codec.Validate(values); err != nil {
		return 0, newError(KindInvalidValue, err, "invalid record for table %s", table)
	}

	t, created, err := s.tables.getOrCreate(table, s.loadLastID)
	if err != nil {
		return 0, err
	}
	if created {
		s.logger.Debug("table registered", "table", table, "last_id", t.LastID())
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	id = t.allocateID()
	line, err := s.codec.Encode(id, values)
	if err != nil {
		t.releaseID(id)
		return 0, newError(KindInvalidValue, err, "cannot encode record for table %s", table)
	}

	n, err := appendLine(t.path, line)
	if err != nil {
		// A partial write leaves the id allocated so it can never be reused
		if n == 0 {
			t.releaseID(id)
		}
		s.logger.Warn("append failed", "table", table, "id", id, "written", n, "error", err)
		return 0, newError(KindIO, err, "failed to append to table %s", table)
	}

	return id, nil
}

// Update replaces the values of record id. The record moves to the end of the
// file. It returns false when no record has that id.
func (s *RecordStore) Update(table string, values []string, id int64) (found bool, err error) {
	defer s.observe("update", table, time.Now(), &err)

	if err := s.ensureOpen(); err != nil {
		return false, err
	}
	if err := validateTableName(table); err != nil {
		return false, err
	}

	t, err := s.existingTable(table)
	if err != nil {
		return false, err
	}
	if t == nil {
		return false, newError(KindTableNotInitialized, nil, "table %s has no records", table)
	}
	if id < 0 {
		return false, nil
	}

	line, err := s.codec.Encode(id, values)
	if err != nil {
		return false, newError(KindInvalidValue, err, "cannot encode record for table %s", table)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	lines, err := readLines(t.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, newError(KindTableNotInitialized, err, "table %s has no records", table)
		}
		return false, newError(KindIO, err, "failed to read table %s", table)
	}

	kept := lines[:0]
	for _, l := range lines {
		if s.codec.Matches(l, id) {
			found = true
			continue
		}
		kept = append(kept, l)
	}
	if !found {
		return false, nil
	}

	if err := writeLines(t.path, append(kept, line)); err != nil {
		return false, newError(KindIO, err, "failed to rewrite table %s", table)
	}
	return true, nil
}

// Select returns the fields of record id, the id itself first. A missing
// table and a missing id both report found=false.
func (s *RecordStore) Select(table string, id int64) (fields []string, found bool, err error) {
	defer s.observe("select", table, time.Now(), &err)

	if err := s.ensureOpen(); err != nil {
		return nil, false, err
	}
	if err := validateTableName(table); err != nil {
		return nil, false, err
	}

	t, err := s.existingTable(table)
	if err != nil || t == nil || id < 0 {
		return nil, false, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	var match string
	err = scanLines(t.path, func(_ int, line string) bool {
		if s.codec.Matches(line, id) {
			match, found = line, true
			return false
		}
		return true
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, newError(KindIO, err, "failed to read table %s", table)
	}
	if !found {
		return nil, false, nil
	}

	record, err := s.codec.Decode(match)
	if err != nil {
		return nil, false, newError(KindMalformedRecord, err, "table %s", table)
	}
	return record.Fields(), true, nil
}

// Tables lists the tables that have a file on disk, sorted by name
func (s *RecordStore) Tables() ([]TableInfo, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	tables, err := s.materialized()
	if err != nil {
		return nil, err
	}
	infos := make([]TableInfo, 0, len(tables))
	for _, t := range tables {
		infos = append(infos, t.info())
	}
	return infos, nil
}

// Stats returns store statistics
func (s *RecordStore) Stats() (*StoreStats, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	tables, err := s.materialized()
	if err != nil {
		return nil, err
	}
	stats := &StoreStats{DataDir: s.config.DataDir, Tables: len(tables)}
	for _, t := range tables {
		info, err := os.Stat(t.path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, newError(KindIO, err, "failed to stat table %s", t.name)
		}
		stats.DataSize += info.Size()
	}
	return stats, nil
}

// materialized returns the registered tables whose file exists. An entry
// whose first append never reached the disk stays registered, keeping its
// counter, but is not reported.
func (s *RecordStore) materialized() ([]*Table, error) {
	all := s.tables.list()
	tables := make([]*Table, 0, len(all))
	for _, t := range all {
		exists, err := fileExists(t.path)
		if err != nil {
			return nil, newError(KindIO, err, "failed to stat table %s", t.name)
		}
		if exists {
			tables = append(tables, t)
		}
	}
	return tables, nil
}

// Close shuts down the store. Files are opened per operation, so nothing is
// flushed here; later operations fail with ErrStoreClosed.
func (s *RecordStore) Close() error {
	s.closed.Store(true)
	return nil
}

// existingTable returns the state of a table that is registered or has a file
// on disk, or nil when neither holds
func (s *RecordStore) existingTable(name string) (*Table, error) {
	if t, ok := s.tables.get(name); ok {
		return t, nil
	}

	exists, err := fileExists(s.tables.path(name))
	if err != nil {
		return nil, newError(KindIO, err, "failed to stat table %s", name)
	}
	if !exists {
		return nil, nil
	}

	t, _, err := s.tables.getOrCreate(name, s.loadLastID)
	return t, err
}

// loadLastID seeds a table first referenced after startup. A file that
// appeared since recovery is scanned so its ids are never reissued.
func (s *RecordStore) loadLastID(path string) (int64, error) {
	exists, err := fileExists(path)
	if err != nil {
		return 0, newError(KindIO, err, "failed to stat %s", path)
	}
	if !exists {
		return noRecords, nil
	}
	lastID, _, err := scanMaxID(s.codec, path)
	return lastID, err
}

func (s *RecordStore) observe(operation, table string, start time.Time, err *error) {
	if s.config.Observer == nil {
		return
	}
	s.config.Observer.ObserveOperation(operation, table, *err, time.Since(start))
}
