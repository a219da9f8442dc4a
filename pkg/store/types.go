package store

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	// DefaultDataDir is the storage directory used when none is configured
	DefaultDataDir = "db"
	// TableFileExtension is appended to a table name to form its file name
	TableFileExtension = ".csv"

	dirPerm  = 0750
	filePerm = 0644

	// noRecords is the counter value of a table that has never allocated an id
	noRecords int64 = -1
)

// RecordStoreConfig holds configuration for the record store
type RecordStoreConfig struct {
	DataDir string       // Directory holding one <table>.csv per table
	Logger  *slog.Logger // Optional; slog.Default() when nil
	// Observer is notified after every store operation; optional
	Observer OperationObserver
}

// OperationObserver receives the outcome of store operations.
// The HTTP layer plugs its prometheus metrics in here.
type OperationObserver interface {
	ObserveOperation(operation, table string, err error, duration time.Duration)
}

// RecoveryResult describes what the recovery scanner found on startup
type RecoveryResult struct {
	DirectoryCreated bool          // The data directory did not exist and was created
	TablesRecovered  int           // Table files scanned
	RecordsScanned   int64         // Non-blank lines parsed across all tables
	RecoveryTime     time.Duration // Wall time spent scanning
}

// TableInfo describes one table known to the registry
type TableInfo struct {
	Name   string `json:"name"`
	LastID int64  `json:"last_id"` // -1 when the table has no records
	NextID int64  `json:"next_id"`
}

// StoreStats holds statistics about the store
type StoreStats struct {
	Tables   int    `json:"tables"`
	DataSize int64  `json:"data_size_bytes"`
	DataDir  string `json:"data_dir"`
}

// ErrorKind classifies store failures
type ErrorKind int

const (
	KindIO ErrorKind = iota + 1
	KindCorruptRecovery
	KindTableNotInitialized
	KindInvalidTableName
	KindInvalidValue
	KindClosed
	KindMalformedRecord
)

func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io failure"
	case KindCorruptRecovery:
		return "corrupt recovery"
	case KindTableNotInitialized:
		return "table not initialized"
	case KindInvalidTableName:
		return "invalid table name"
	case KindInvalidValue:
		return "invalid value"
	case KindClosed:
		return "store closed"
	case KindMalformedRecord:
		return "malformed record"
	default:
		return "unknown"
	}
}

// Errors
var (
	ErrIOFailure           = &StoreError{Kind: KindIO, Message: "i/o failure"}
	ErrCorruptRecord       = &StoreError{Kind: KindCorruptRecovery, Message: "data corruption detected"}
	ErrTableNotInitialized = &StoreError{Kind: KindTableNotInitialized, Message: "table has no backing file"}
	ErrInvalidTableName    = &StoreError{Kind: KindInvalidTableName, Message: "invalid table name"}
	ErrInvalidValue        = &StoreError{Kind: KindInvalidValue, Message: "invalid field value"}
	ErrStoreClosed         = &StoreError{Kind: KindClosed, Message: "store is closed"}
	ErrMalformedRecord     = &StoreError{Kind: KindMalformedRecord, Message: "malformed record"}
)

// StoreError represents a record store error.
// Two StoreErrors match under errors.Is when their kinds are equal, so a
// wrapped failure still matches its sentinel.
type StoreError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	return ok && t.Kind == e.Kind
}

func newError(kind ErrorKind, err error, format string, args ...any) *StoreError {
	return &StoreError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// IsIOFailure reports whether err is an I/O failure from the store
func IsIOFailure(err error) bool {
	return errors.Is(err, ErrIOFailure)
}
