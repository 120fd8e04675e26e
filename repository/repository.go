// Package repository implements the per-type entity façade, playing the
// role gorm's finisher_api.go/chainable_api.go
// (Find/First/Create/Save/Delete) and generics.go (the type-safe G[T] API)
// play, rewritten against the explicit schema/value/memtable model
// instead of reflection over struct tags and SQL statement building.
package repository

import (
	"context"
	"time"

	"github.com/estore/estore/adapter"
	"github.com/estore/estore/condition"
	"github.com/estore/estore/entity"
	"github.com/estore/estore/logger"
	"github.com/estore/estore/memtable"
	"github.com/estore/estore/resolver"
	"github.com/estore/estore/schema"
	"github.com/estore/estore/txn"
	"github.com/estore/estore/value"
)

// Repository is the per-entity-type façade the root Store hands back from
// Repository(name). It is written entirely against the adapter.Adapter
// contract, never against a concrete backend, so a real relational driver
// could stand in for the in-memory store without this package changing.
// memAdapter, built over *memtable.Store in New, is the only implementation
// this module constructs.
type Repository struct {
	schema   *schema.Schema
	registry *schema.Registry
	backend  adapter.Adapter
	resolve  *resolver.Resolver
	coord    *txn.Coordinator
	factory  entity.Factory
	log      logger.Interface
	now      func() time.Time
}

func New(s *schema.Schema, registry *schema.Registry, store *memtable.Store, res *resolver.Resolver, coord *txn.Coordinator, factory entity.Factory, log logger.Interface, now func() time.Time) *Repository {
	if log == nil {
		log = logger.DefaultLogger
	}
	if now == nil {
		now = time.Now
	}
	backend := newMemAdapter(store, res, registry)
	return &Repository{schema: s, registry: registry, backend: backend, resolve: res, coord: coord, factory: factory, log: log, now: now}
}

// Backend returns the adapter.Adapter this Repository's reads and writes are
// routed through.
func (r *Repository) Backend() adapter.Adapter { return r.backend }

func (r *Repository) trace(ctx context.Context, op string, fn func() (int64, error)) error {
	begin := time.Now()
	var rows int64
	err := func() error {
		n, err := fn()
		rows = n
		return err
	}()
	r.log.Trace(ctx, begin, func() (string, int64) { return op, rows }, err)
	return err
}

func (r *Repository) newEntity(id any, row value.Record) entity.Entity {
	e := r.factory()
	for name, v := range row {
		_ = e.SetField(name, v)
	}
	if id != nil {
		_ = e.SetField(r.schema.IDField, value.NewID(id))
	}
	return e
}

// SelectByID fetches a single row by primary key, resolving references per
// rules. Returns (nil, nil) when no such row exists, or when it exists but
// is soft-deleted and rules.IncludeSoftDeleted is not set — neither case is
// an error.
func (r *Repository) SelectByID(ctx context.Context, id any, rules entity.ResolutionRules) (entity.Entity, error) {
	var out entity.Entity
	err := r.trace(ctx, "select_by_id "+r.schema.Table, func() (int64, error) {
		row, ok, err := r.backend.Get(r.schema.Name, r.schema.Table, id, nil, nil)
		if err != nil {
			return 0, err
		}
		if !ok || r.isSoftDeleted(row.Record, rules.IncludeSoftDeleted) {
			return 0, nil
		}
		resolved := r.resolve.ResolveRow(r.schema, row.Record, id, rules.Depth(), rules.EagerAll)
		out = r.newEntity(id, resolved)
		return 1, nil
	})
	return out, err
}

// ExistsID reports whether id is currently stored.
func (r *Repository) ExistsID(id any) bool {
	_, ok, err := r.backend.Get(r.schema.Name, r.schema.Table, id, nil, nil)
	return err == nil && ok
}

// Length returns the current row count.
func (r *Repository) Length() int {
	n, _ := r.backend.Count(r.schema.Name, r.schema.Table, nil, condition.Params{}, nil, nil)
	return n
}

// Count evaluates matcher (nil matches everything) over every non-deleted
// row and returns how many matched, without materializing entities.
func (r *Repository) Count(matcher *condition.Query, params condition.Params) (int, error) {
	rows, err := r.backend.Select(r.schema.Name, r.schema.Table, matcher, params, nil, nil)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, row := range rows {
		if !r.isSoftDeleted(row.Record, false) {
			n++
		}
	}
	return n, nil
}

// Select evaluates matcher over every row and returns the matching entities
// with rules applied. On a soft-deletable table, rows marked deleted are
// skipped unless rules.IncludeSoftDeleted is set.
func (r *Repository) Select(ctx context.Context, matcher *condition.Query, params condition.Params, rules entity.ResolutionRules) ([]entity.Entity, error) {
	var out []entity.Entity
	err := r.trace(ctx, "select "+r.schema.Table, func() (int64, error) {
		rows, err := r.backend.Select(r.schema.Name, r.schema.Table, matcher, params, nil, nil)
		if err != nil {
			return 0, err
		}
		for _, row := range rows {
			if r.isSoftDeleted(row.Record, rules.IncludeSoftDeleted) {
				continue
			}
			resolved := r.resolve.ResolveRow(r.schema, row.Record, row.ID, rules.Depth(), rules.EagerAll)
			out = append(out, r.newEntity(row.ID, resolved))
		}
		return int64(len(out)), nil
	})
	return out, err
}

// isSoftDeleted reports whether row is marked deleted on a soft-deletable
// table. Always false for a table with no soft-delete column, or when
// include is set.
func (r *Repository) isSoftDeleted(row value.Record, include bool) bool {
	if include || !r.schema.HasSoftDelete() {
		return false
	}
	v, ok := row[r.schema.SoftDeleteField]
	return ok && !v.IsNull()
}

// SelectByQuery parses text once (condition.Compile caches by exact text)
// and dispatches to Select.
func (r *Repository) SelectByQuery(ctx context.Context, text string, params condition.Params, rules entity.ResolutionRules) ([]entity.Entity, error) {
	q, err := condition.Compile(text)
	if err != nil {
		return nil, err
	}
	return r.Select(ctx, q, params, rules)
}
