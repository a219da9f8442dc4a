package store

import (
	"sync"
	"sync/atomic"
)

// Table is the in-memory state of one table: its id counter and the lock
// guarding its backing file.
//
// lastID starts at -1 for a table without records, so the first allocated id
// is 0. It only ever moves forward, except for releaseID undoing an allocation
// whose line never reached the file.
type Table struct {
	name   string
	path   string
	lastID atomic.Int64
	mu     sync.RWMutex // exclusive for insert/update, shared for select
}

func newTable(name, path string, lastID int64) *Table {
	t := &Table{name: name, path: path}
	t.lastID.Store(lastID)
	return t
}

// Name returns the table name
func (t *Table) Name() string {
	return t.name
}

// Path returns the backing file path
func (t *Table) Path() string {
	return t.path
}

// LastID returns the highest id allocated so far, or -1
func (t *Table) LastID() int64 {
	return t.lastID.Load()
}

// allocateID atomically reserves the next id
func (t *Table) allocateID() int64 {
	return t.lastID.Add(1)
}

// releaseID gives back id if it is still the latest allocation.
// Callers must hold the exclusive lock so no other allocation can interleave.
func (t *Table) releaseID(id int64) bool {
	return t.lastID.CompareAndSwap(id, id-1)
}

func (t *Table) info() TableInfo {
	last := t.LastID()
	return TableInfo{Name: t.name, LastID: last, NextID: last + 1}
}
