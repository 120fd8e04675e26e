package repository

import (
	"context"

	"github.com/estore/estore/adapter"
	"github.com/estore/estore/condition"
	"github.com/estore/estore/entity"
	"github.com/estore/estore/resolver"
	"github.com/estore/estore/txn"
	"github.com/estore/estore/value"
)

// Delete removes every row matching matcher (nil matches everything),
// failing the whole operation with a DeleteConstraintError the first time a
// live foreign key is found pointing at one of them — plain delete never
// cascades. On a soft-deletable table the matched rows are kept, with their
// soft-delete column stamped to now(), rather than removed.
func (r *Repository) Delete(ctx context.Context, matcher *condition.Query, params condition.Params) ([]entity.Entity, error) {
	var out []entity.Entity
	err := r.trace(ctx, "delete "+r.schema.Table, func() (int64, error) {
		rows, err := r.backend.Select(r.schema.Name, r.schema.Table, matcher, params, nil, nil)
		if err != nil {
			return 0, err
		}
		var targets []adapter.Row
		for _, row := range rows {
			if !r.isSoftDeleted(row.Record, false) {
				targets = append(targets, row)
			}
		}

		err = r.withTransaction(func(tx *txn.Transaction) error {
			for _, e := range targets {
				if err := r.resolve.CheckDeleteConstraint(r.schema.Table, e.ID); err != nil {
					return err
				}
			}
			for _, e := range targets {
				rec, err := r.deleteRow(e.ID, e.Record)
				if err != nil {
					return err
				}
				if rec == nil {
					continue
				}
				tx.LogOperation(txn.Operation{Kind: "delete", Table: r.schema.Table, ID: e.ID})
				out = append(out, r.newEntity(e.ID, rec))
			}
			return nil
		})
		return int64(len(out)), err
	})
	return out, err
}

// deleteRow removes id from the store, or, on a soft-deletable table, stamps
// its soft-delete column with r.now() and writes the row back instead.
func (r *Repository) deleteRow(id any, row value.Record) (value.Record, error) {
	if !r.schema.HasSoftDelete() {
		rec, ok, err := r.backend.Delete(r.schema.Name, r.schema.Table, id, nil, nil)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		return rec, nil
	}
	row = row.Clone()
	row[r.schema.SoftDeleteField] = value.NewTimestamp(r.now())
	if err := r.backend.Update(r.schema.Name, r.schema.Table, id, row, nil, nil); err != nil {
		return nil, err
	}
	return row, nil
}

// DeleteEntityCascade opens a transaction, removes e and every row that
// references it transitively (children before the row that owned them),
// and returns the full set of deleted rows. A cycle on the deletion path,
// or any other failure, aborts the transaction and the store is left
// exactly as it was.
func (r *Repository) DeleteEntityCascade(ctx context.Context, e entity.Entity) ([]entity.Entity, error) {
	id := e.EntityID()
	if id == nil {
		return nil, nil
	}

	var out []entity.Entity
	err := r.trace(ctx, "delete_entity_cascade "+r.schema.Table, func() (int64, error) {
		tx := r.coord.Open()
		runErr := r.coord.Execute(tx, func(tx *txn.Transaction) error {
			deleted, err := r.resolve.CascadeDelete(r.schema.Table, id)
			if err != nil {
				return err
			}
			for _, d := range deleted {
				tx.LogOperation(txn.Operation{Kind: "delete", Table: d.Table, ID: d.ID})
				out = append(out, r.entityFor(d))
			}
			return nil
		})
		return int64(len(out)), runErr
	})
	return out, err
}

// entityFor builds a generic entity.Entity for a row deleted from a table
// that may not be this repository's own schema (cascade delete crosses
// table boundaries); resolver.Deleted rows are rendered with a minimal
// Entity view backed only by the registry's schema for that table, since
// there may be no Factory registered for it in this Repository.
func (r *Repository) entityFor(d resolver.Deleted) entity.Entity {
	if d.Table == r.schema.Table {
		return r.newEntity(d.ID, d.Record)
	}
	s, ok := r.registry.ByTable(d.Table)
	if !ok {
		s = r.schema
	}
	return &rowEntity{schema: s, row: d.Record, id: value.NewID(d.ID)}
}
