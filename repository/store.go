package repository

import (
	"context"
	"fmt"

	"github.com/estore/estore/entity"
	"github.com/estore/estore/schema"
	"github.com/estore/estore/txn"
	"github.com/estore/estore/value"
)

// withTransaction runs op inside the coordinator's currently-executing
// transaction if the caller is already inside one, or opens and auto-commits
// a fresh one otherwise.
func (r *Repository) withTransaction(op func(*txn.Transaction) error) error {
	if tx := r.coord.Current(); tx != nil {
		return op(tx)
	}
	return r.coord.AutoCommit(op)
}

func (r *Repository) rowOf(e entity.Entity) value.Record {
	row := make(value.Record, len(r.schema.Fields))
	for _, f := range r.schema.Fields {
		if v, ok := e.GetField(f.Name); ok {
			row[f.Name] = v
		}
	}
	return row
}

// Store writes e: if its id is unset, one is allocated; any unstored nested
// entity reachable through a Ref/RefList field is stored depth-first first;
// required and unique field constraints are enforced before the row itself
// is written.
func (r *Repository) Store(ctx context.Context, e entity.Entity) (any, error) {
	row := r.rowOf(e)
	id := e.EntityID()

	var resultID any
	err := r.trace(ctx, "store "+r.schema.Table, func() (int64, error) {
		return 1, r.withTransaction(func(tx *txn.Transaction) error {
			rid, err := r.storeRow(r.schema, row, id)
			if err != nil {
				return err
			}
			resultID = rid
			tx.LogOperation(txn.Operation{Kind: "store", Table: r.schema.Table, ID: rid})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	_ = e.SetField(r.schema.IDField, value.NewID(resultID))
	return resultID, nil
}

// storeRow writes one row of schema s, resolving nested Ref/RefList values
// first. It is schema-generic rather than tied to r.schema so that storing a
// nested, not-yet-stored sub-entity (of some other registered type) can
// recurse through the same path without needing that type's own Repository
// or Factory — only its Schema and the shared store/resolver.
func (r *Repository) storeRow(s *schema.Schema, row value.Record, id any) (any, error) {
	row = row.Clone()

	for _, f := range s.Fields {
		if f.Type != schema.Ref {
			continue
		}
		fv, ok := row[f.Name]
		if !ok {
			continue
		}
		switch fv.Kind() {
		case value.RecordList:
			resolvedID, err := r.storeNestedRef(f, fv)
			if err != nil {
				return nil, err
			}
			if resolvedID == nil {
				row[f.Name] = value.NewNull()
			} else {
				row[f.Name] = value.NewID(resolvedID)
			}
		case value.Null:
			// left as-is: an explicit null FK
		}
	}

	listFields := make(map[*schema.Field][]any)
	for _, f := range s.Fields {
		if f.Type != schema.RefList {
			continue
		}
		fv, ok := row[f.Name]
		delete(row, f.Name)
		if !ok {
			continue
		}
		ids, err := r.resolveListIDs(f, fv)
		if err != nil {
			return nil, err
		}
		listFields[f] = ids
	}

	if err := r.resolve.CheckRequired(s, row); err != nil {
		return nil, err
	}
	if err := r.resolve.CheckUnique(s, row, id); err != nil {
		return nil, err
	}

	var resolvedID any
	var err error
	if id == nil {
		resolvedID, err = r.backend.Insert(s.Name, s.Table, row, nil, nil)
	} else {
		resolvedID = id
		err = r.backend.Update(s.Name, s.Table, id, row, nil, nil)
	}
	if err != nil {
		return nil, err
	}

	for f, ids := range listFields {
		if err := r.resolve.SyncListField(s, f, resolvedID, ids); err != nil {
			return nil, err
		}
	}

	return resolvedID, nil
}

// storeNestedRef stores (or reuses) the single record fv holds for a Ref
// field, returning the id to write inline. A record that already carries a
// non-null id is treated as an existing row and left untouched.
func (r *Repository) storeNestedRef(f *schema.Field, fv value.Value) (any, error) {
	recs := fv.Records()
	if len(recs) == 0 {
		return nil, nil
	}
	nested := recs[0]

	target, ok := r.registry.ByName(f.RefTarget)
	if !ok {
		return nil, fmt.Errorf("repository: unregistered ref target %q for field %s", f.RefTarget, f.Name)
	}

	if idv, ok := nested[target.IDField]; ok && !idv.IsNull() {
		return idv.Raw(), nil
	}
	return r.storeRow(target, nested, nil)
}

// resolveListIDs turns a RefList field's stored value into the set of
// target ids to sync into its relationship table, storing any nested
// not-yet-stored record along the way.
func (r *Repository) resolveListIDs(f *schema.Field, fv value.Value) ([]any, error) {
	switch fv.Kind() {
	case value.IDList:
		return fv.IDs(), nil
	case value.RecordList:
		target, ok := r.registry.ByName(f.RefTarget)
		if !ok {
			return nil, fmt.Errorf("repository: unregistered ref target %q for field %s", f.RefTarget, f.Name)
		}
		var ids []any
		for _, rec := range fv.Records() {
			if idv, ok := rec[target.IDField]; ok && !idv.IsNull() {
				ids = append(ids, idv.Raw())
				continue
			}
			storedID, err := r.storeRow(target, rec, nil)
			if err != nil {
				return nil, err
			}
			ids = append(ids, storedID)
		}
		return ids, nil
	default:
		return nil, nil
	}
}
