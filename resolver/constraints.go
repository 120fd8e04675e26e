package resolver

import (
	"fmt"

	"github.com/estore/estore/schema"
	"github.com/estore/estore/value"
)

// CheckRequired fails with FieldInvalidError{required} for the first
// declared required field row is missing or holds an explicit null.
func (r *Resolver) CheckRequired(s *schema.Schema, row value.Record) error {
	for _, f := range s.Fields {
		if !f.Constraint.Required {
			continue
		}
		v, ok := row[f.Name]
		if !ok || v.IsNull() {
			return &FieldInvalidError{Kind: KindRequired, Table: s.Table, Field: f.Name}
		}
	}
	return nil
}

// CheckUnique fails with FieldInvalidError{unique} if any other row (a
// different id) in the table already carries the same value for a field
// marked unique. On a soft-deletable table, rows already marked deleted are
// excluded from the comparison — a deleted row never blocks reuse of its
// unique values.
func (r *Resolver) CheckUnique(s *schema.Schema, row value.Record, id any) error {
	for _, f := range s.Fields {
		if !f.Constraint.Unique {
			continue
		}
		v, ok := row[f.Name]
		if !ok || v.IsNull() {
			continue
		}
		for _, e := range r.store.Entries(s.Table) {
			if idEquals(value.NewID(e.ID), id) {
				continue
			}
			if s.HasSoftDelete() {
				if dv, ok := e.Record[s.SoftDeleteField]; ok && !dv.IsNull() {
					continue
				}
			}
			other, ok := e.Record[f.Name]
			if ok && other.Equal(v) {
				return &FieldInvalidError{Kind: KindUnique, Table: s.Table, Field: f.Name, Value: v.Raw()}
			}
		}
	}
	return nil
}

func idEquals(v value.Value, id any) bool {
	return fmt.Sprint(rawID(v)) == fmt.Sprint(id)
}

func rawID(v value.Value) any {
	if v.Kind() == value.ID {
		return v.ID()
	}
	return v.Raw()
}
