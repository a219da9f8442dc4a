package store

import (
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// registry maps table names to their state. It is a cache of the data
// directory: every entry can be rebuilt from the table's file.
type registry struct {
	dir    string
	mu     sync.RWMutex // guards the map only, never held during file writes
	tables map[string]*Table
	loads  singleflight.Group // one counter load per name at a time
}

func newRegistry(dir string) *registry {
	return &registry{
		dir:    dir,
		tables: make(map[string]*Table),
	}
}

func (r *registry) path(name string) string {
	return filepath.Join(r.dir, name+TableFileExtension)
}

func (r *registry) get(name string) (*Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[name]
	return t, ok
}

// getOrCreate returns the table, creating its entry if needed. load supplies
// the starting counter for a new entry. It runs without the registry lock, so
// a slow scan of one table never blocks lookups of another; concurrent first
// references to the same name share a single load.
func (r *registry) getOrCreate(name string, load func(path string) (int64, error)) (*Table, bool, error) {
	if t, ok := r.get(name); ok {
		return t, false, nil
	}

	v, err, _ := r.loads.Do(name, func() (interface{}, error) {
		if t, ok := r.get(name); ok {
			return loadResult{table: t}, nil
		}

		path := r.path(name)
		lastID, err := load(path)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		if t, ok := r.tables[name]; ok {
			return loadResult{table: t}, nil
		}
		t := newTable(name, path, lastID)
		r.tables[name] = t
		return loadResult{table: t, created: true}, nil
	})
	if err != nil {
		return nil, false, err
	}

	res := v.(loadResult)
	return res.table, res.created, nil
}

type loadResult struct {
	table   *Table
	created bool
}

// seed installs a table recovered from disk
func (r *registry) seed(name string, lastID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables[name] = newTable(name, r.path(name), lastID)
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tables)
}

// list returns the tables sorted by name
func (r *registry) list() []*Table {
	r.mu.RLock()
	tables := make([]*Table, 0, len(r.tables))
	for _, t := range r.tables {
		tables = append(tables, t)
	}
	r.mu.RUnlock()

	sort.Slice(tables, func(i, j int) bool {
		return tables[i].name < tables[j].name
	})
	return tables
}
