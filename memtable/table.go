package memtable

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/estore/estore/value"
)

// diffEntry is one row's change at a given version: either a new/overwritten
// record, or a tombstone marking a delete.
type diffEntry struct {
	tombstone bool
	record    value.Record
}

// diffVersion groups every row changed by the single write that produced
// version.
type diffVersion struct {
	version int
	changes map[any]*diffEntry
}

// Table is the per-entity-type (or per-relationship-table) versioned row
// store: a base layer of consolidated rows plus a list of pending diffs.
// current always holds base with every pending diff already replayed, so
// reads never need to walk the diff list.
type Table struct {
	mu      sync.Mutex
	name    string
	base    map[any]value.Record
	diffs   []diffVersion
	current map[any]value.Record
	version int

	nextID       int64
	nextIDSeeded bool
}

func newTable(name string) *Table {
	return &Table{
		name:    name,
		base:    make(map[any]value.Record),
		current: make(map[any]value.Record),
	}
}

// Entry is one (id, record) pair as returned by entries().
type Entry struct {
	ID     any
	Record value.Record
}

func (t *Table) get(id any) (value.Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.current[id]
	return rec, ok
}

func (t *Table) entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, 0, len(t.current))
	keys := make([]string, 0, len(t.current))
	byKey := make(map[string]any, len(t.current))
	for id := range t.current {
		k := strconv.Quote(toText(id))
		keys = append(keys, k)
		byKey[k] = id
	}
	sort.Strings(keys)
	for _, k := range keys {
		id := byKey[k]
		out = append(out, Entry{ID: id, Record: t.current[id]})
	}
	return out
}

func (t *Table) put(id any, rec value.Record) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.version++
	t.diffs = append(t.diffs, diffVersion{
		version: t.version,
		changes: map[any]*diffEntry{id: {record: rec}},
	})
	t.current[id] = rec
	return t.version
}

func (t *Table) delete(id any) (value.Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	old, ok := t.current[id]
	if !ok {
		return nil, false
	}
	t.version++
	t.diffs = append(t.diffs, diffVersion{
		version: t.version,
		changes: map[any]*diffEntry{id: {tombstone: true}},
	})
	delete(t.current, id)
	return old, true
}

func (t *Table) currentVersion() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.version
}

// consolidate folds every diff at or below v into the base layer and drops
// it, so it is no longer a candidate for rollback.
func (t *Table) consolidate(v int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := 0
	for i < len(t.diffs) && t.diffs[i].version <= v {
		for id, d := range t.diffs[i].changes {
			if d.tombstone {
				delete(t.base, id)
			} else {
				t.base[id] = d.record
			}
		}
		i++
	}
	t.diffs = t.diffs[i:]
}

// rollback restores the table to the row set and version counter it had at
// v, discarding every diff above it.
func (t *Table) rollback(v int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	keep := 0
	for keep < len(t.diffs) && t.diffs[keep].version <= v {
		keep++
	}
	t.diffs = t.diffs[:keep]
	t.version = v

	rebuilt := make(map[any]value.Record, len(t.base))
	for id, rec := range t.base {
		rebuilt[id] = rec
	}
	for _, dv := range t.diffs {
		for id, d := range dv.changes {
			if d.tombstone {
				delete(rebuilt, id)
			} else {
				rebuilt[id] = d.record
			}
		}
	}
	t.current = rebuilt
}

// allocateID returns the next auto-generated identifier, seeding the
// counter to one past the largest existing identifier the first time
// it's needed.
func (t *Table) allocateID() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.nextIDSeeded {
		var max int64
		for id := range t.current {
			if n, ok := asInt64(id); ok && n > max {
				max = n
			}
		}
		t.nextID = max + 1
		t.nextIDSeeded = true
	}
	id := t.nextID
	t.nextID++
	return id
}

// noteExplicitID bumps the counter past a caller-supplied id so a later
// auto-allocation never collides with it.
func (t *Table) noteExplicitID(id any) {
	n, ok := asInt64(id)
	if !ok {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.nextIDSeeded || n+1 > t.nextID {
		t.nextID = n + 1
		t.nextIDSeeded = true
	}
}

func asInt64(id any) (int64, bool) {
	switch v := id.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	}
	return 0, false
}

func toText(id any) string {
	return fmt.Sprint(id)
}
