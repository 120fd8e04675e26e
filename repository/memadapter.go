package repository

import (
	"fmt"

	"github.com/estore/estore/adapter"
	"github.com/estore/estore/condition"
	"github.com/estore/estore/memtable"
	"github.com/estore/estore/resolver"
	"github.com/estore/estore/schema"
	"github.com/estore/estore/value"
)

// memAdapter implements adapter.Adapter directly against a memtable.Store —
// the only backend this module ships, playing the role a real relational
// driver would play behind the same interface. Tx/Ctx are accepted but
// unused: memtable.Store's own Put/Get/Delete calls are already atomic, and
// the surrounding transaction semantics (snapshot, commit, rollback) are
// handled entirely by txn.Coordinator at the table-version level, outside
// this adapter.
type memAdapter struct {
	store    *memtable.Store
	resolve  *resolver.Resolver
	registry *schema.Registry
}

func newMemAdapter(store *memtable.Store, resolve *resolver.Resolver, registry *schema.Registry) *memAdapter {
	return &memAdapter{store: store, resolve: resolve, registry: registry}
}

var _ adapter.Adapter = (*memAdapter)(nil)

func (a *memAdapter) CreateConnection() (adapter.Conn, error) { return struct{}{}, nil }
func (a *memAdapter) CloseConnection(adapter.Conn) error      { return nil }
func (a *memAdapter) IsValid(adapter.Conn) bool               { return true }

func (a *memAdapter) OpenTransaction(tx adapter.Tx) (adapter.Ctx, error) { return tx, nil }
func (a *memAdapter) CloseTransaction(adapter.Tx, adapter.Ctx) error     { return nil }

// CancelTransaction always reports false: the memory backend has nothing
// of its own left to roll back. A write already lands in the table's
// version history the instant it happens, and txn.Coordinator undoes it by
// restoring the pre-transaction version snapshot rather than asking the
// adapter to cancel anything.
func (a *memAdapter) CancelTransaction(adapter.Tx, adapter.Ctx, error) bool { return false }

func (a *memAdapter) Get(_, table string, id any, _ adapter.Tx, _ adapter.Ctx) (adapter.Row, bool, error) {
	rec, ok := a.store.Get(table, id)
	if !ok {
		return adapter.Row{}, false, nil
	}
	return adapter.Row{ID: id, Record: rec}, true, nil
}

func (a *memAdapter) Count(_, table string, q *condition.Query, params condition.Params, _ adapter.Tx, _ adapter.Ctx) (int, error) {
	n := 0
	for _, e := range a.store.Entries(table) {
		ok, err := a.eval(table, q, e, params)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

func (a *memAdapter) Select(_, table string, q *condition.Query, params condition.Params, _ adapter.Tx, _ adapter.Ctx) ([]adapter.Row, error) {
	var out []adapter.Row
	for _, e := range a.store.Entries(table) {
		ok, err := a.eval(table, q, e, params)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, adapter.Row{ID: e.ID, Record: e.Record})
		}
	}
	return out, nil
}

func (a *memAdapter) eval(table string, q *condition.Query, e memtable.Entry, params condition.Params) (bool, error) {
	if q == nil {
		return true, nil
	}
	return q.Eval(table, e.Record, value.NewID(e.ID), a.resolve, params)
}

func (a *memAdapter) Insert(_, table string, row value.Record, _ adapter.Tx, _ adapter.Ctx) (any, error) {
	id, _, err := a.store.Put(table, nil, row)
	return id, err
}

func (a *memAdapter) Update(_, table string, id any, row value.Record, _ adapter.Tx, _ adapter.Ctx) error {
	_, _, err := a.store.Put(table, id, row)
	return err
}

func (a *memAdapter) Delete(_, table string, id any, _ adapter.Tx, _ adapter.Ctx) (value.Record, bool, error) {
	rec, ok := a.store.Delete(table, id)
	return rec, ok, nil
}

func (a *memAdapter) InsertRelationship(table string, sourceID, targetID any, _ adapter.Tx, _ adapter.Ctx) error {
	jt, ok := a.registry.RelationshipTable(table)
	if !ok {
		return fmt.Errorf("repository: %s is not a relationship table", table)
	}
	_, _, err := a.store.Put(table, nil, value.Record{
		jt.SourceColumn: value.NewID(sourceID),
		jt.TargetColumn: value.NewID(targetID),
	})
	return err
}
