// Package memtable implements a versioned, rollback/consolidate-capable
// table store: a mutable id -> record mapping per
// table, with history enough to roll back to or consolidate away any
// earlier version taken by the transaction coordinator.
package memtable

import (
	"sync"

	"github.com/estore/estore/value"
)

// SchemaChecker is the minimal view of a schema registry the store needs:
// whether a table is known at all (so an unregistered table can be rejected
// rather than silently auto-created) and whether it's a relationship table
// (which auto-create is always allowed for, since the registry derives
// those tables implicitly rather than requiring a caller to register them).
// *schema.Registry satisfies this structurally; memtable does not import
// the schema package to avoid coupling the store to schema's richer model.
type SchemaChecker interface {
	KnownTable(table string) bool
	IsRelationshipTable(table string) bool
}

// Store is the process-wide collection of versioned tables.
type Store struct {
	mu      sync.RWMutex
	tables  map[string]*Table
	checker SchemaChecker
}

func NewStore(checker SchemaChecker) *Store {
	return &Store{tables: make(map[string]*Table), checker: checker}
}

func (s *Store) tableFor(name string) (*Table, error) {
	s.mu.RLock()
	t, ok := s.tables[name]
	s.mu.RUnlock()
	if ok {
		return t, nil
	}

	if s.checker != nil && !s.checker.KnownTable(name) && !s.checker.IsRelationshipTable(name) {
		return nil, &UnknownTableError{Table: name}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok = s.tables[name]; ok {
		return t, nil
	}
	t = newTable(name)
	s.tables[name] = t
	return t, nil
}

// Put inserts or overwrites row id in table, allocating an id first if id is
// nil. Returns the resolved id and the table's new version.
func (s *Store) Put(table string, id any, row value.Record) (any, int, error) {
	t, err := s.tableFor(table)
	if err != nil {
		return nil, 0, err
	}
	if id == nil {
		id = t.allocateID()
	} else {
		t.noteExplicitID(id)
	}
	v := t.put(id, row)
	return id, v, nil
}

// Get returns table's row for id, if any.
func (s *Store) Get(table string, id any) (value.Record, bool) {
	s.mu.RLock()
	t, ok := s.tables[table]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return t.get(id)
}

// Entries returns every (id, row) currently in table, in a deterministic
// order. An unknown table returns no rows rather than an error — scanning a
// table nobody has written to yet is not a failure.
func (s *Store) Entries(table string) []Entry {
	s.mu.RLock()
	t, ok := s.tables[table]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	return t.entries()
}

// Delete removes table's row for id, returning the row that was deleted.
func (s *Store) Delete(table string, id any) (value.Record, bool) {
	s.mu.RLock()
	t, ok := s.tables[table]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return t.delete(id)
}

// Versions snapshots every known table's current version, for a
// transaction's open() and for consolidate/rollback targets.
func (s *Store) Versions() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int, len(s.tables))
	for name, t := range s.tables {
		out[name] = t.currentVersion()
	}
	return out
}

// Consolidate collapses history up to the given version, per table, for
// every table named in snapshot.
func (s *Store) Consolidate(snapshot map[string]int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for name, v := range snapshot {
		if t, ok := s.tables[name]; ok {
			t.consolidate(v)
		}
	}
}

// Rollback restores every table named in snapshot to the row set and
// version it had at that version. A table absent from snapshot (created
// after it was taken) is rolled back to version 0, dropping its writes.
func (s *Store) Rollback(snapshot map[string]int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for name, t := range s.tables {
		t.rollback(snapshot[name])
	}
}

// EnsureTable registers an empty table eagerly, used to pre-create
// relationship tables the schema registry derived so the first insert into
// them doesn't depend on tableFor's auto-create path.
func (s *Store) EnsureTable(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[name]; !ok {
		s.tables[name] = newTable(name)
	}
}
