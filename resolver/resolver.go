// Package resolver implements the relationship resolver: materializing
// foreign keys and many-to-many join rows on read,
// diffing and writing them on store, checking referential integrity and
// uniqueness, and cascading deletes. It plays the role gorm's
// callbacks package plays for SaveBeforeAssociations /
// SaveAfterAssociations / DeleteBeforeAssociations hooks, rewritten against
// an explicit Schema/Value model instead of reflection over struct tags.
package resolver

import (
	"fmt"

	"github.com/estore/estore/memtable"
	"github.com/estore/estore/schema"
	"github.com/estore/estore/value"
)

// FieldInvalidKind mirrors the root package's error taxonomy without
// importing it, to keep this package free of a dependency on the facade
// that will end up calling it.
type FieldInvalidKind string

const (
	KindUnique   FieldInvalidKind = "unique"
	KindRequired FieldInvalidKind = "required"
)

type FieldInvalidError struct {
	Kind  FieldInvalidKind
	Table string
	Field string
	Value any
}

func (e *FieldInvalidError) Error() string {
	return fmt.Sprintf("field invalid (%s): %s.%s", e.Kind, e.Table, e.Field)
}

// DeleteConstraintError reports a blocked delete: SourceTable.#SourceID.SourceField
// still points at TargetID.
type DeleteConstraintError struct {
	SourceTable string
	SourceID    any
	SourceField string
	TargetID    any
}

func (e *DeleteConstraintError) Error() string {
	return fmt.Sprintf("%s.#%v.%s -> #%v", e.SourceTable, e.SourceID, e.SourceField, e.TargetID)
}

// Resolver ties a schema Registry to a memtable Store to implement
// reference materialization, constraint checks, and cascade delete.
type Resolver struct {
	registry *schema.Registry
	store    *memtable.Store
}

func New(registry *schema.Registry, store *memtable.Store) *Resolver {
	return &Resolver{registry: registry, store: store}
}

// ResolveRow materializes row's Ref/RefList fields according to rules,
// replacing each stored identifier with the referenced row's full record.
// id is row's own primary key — needed to look up list<ref<T>> join rows,
// since a stored row never carries its own id inline. Dangling references
// are left as a bare ID value so the caller can observe them rather than
// have them silently dropped.
func (r *Resolver) ResolveRow(s *schema.Schema, row value.Record, id any, depth int, eagerAll bool) value.Record {
	if depth <= 0 {
		return row
	}
	out := row.Clone()
	for _, f := range s.Fields {
		switch f.Type {
		case schema.Ref:
			fv, ok := out[f.Name]
			if !ok || fv.Kind() != value.ID {
				continue
			}
			out[f.Name] = r.materializeOne(f, fv, depth, eagerAll)
		case schema.RefList:
			if !eagerAll {
				continue
			}
			out[f.Name] = r.materializeList(s, f, id, depth)
		}
	}
	return out
}

func (r *Resolver) materializeOne(f *schema.Field, idVal value.Value, depth int, eagerAll bool) value.Value {
	target, ok := r.registry.ByName(f.RefTarget)
	if !ok {
		return idVal
	}
	rec, ok := r.store.Get(target.Table, idVal.ID())
	if !ok {
		return idVal // dangling reference: observable, not elided
	}
	resolved := r.ResolveRow(target, rec, idVal.ID(), depth-1, eagerAll)
	return value.NewRecordList([]value.Record{resolved})
}

// materializeList looks up the relationship table for field f, filters by
// sourceID, and fetches every target row.
func (r *Resolver) materializeList(s *schema.Schema, f *schema.Field, sourceID any, depth int) value.Value {
	rel, ok := s.Relationships[f.Name]
	if !ok || rel.JoinTable == nil {
		return value.NewRecordList(nil)
	}
	target, _ := r.registry.ByName(f.RefTarget)

	var out []value.Record
	for _, e := range r.store.Entries(rel.JoinTable.Name) {
		joinRow := e.Record
		if !idEquals(joinRow[rel.JoinTable.SourceColumn], sourceID) {
			continue
		}
		targetID := joinRow[rel.JoinTable.TargetColumn]
		rec, ok := r.store.Get(rel.JoinTable.TargetTable, targetID.ID())
		if !ok {
			out = append(out, value.Record{s.IDField: targetID})
			continue
		}
		if target != nil {
			rec = r.ResolveRow(target, rec, targetID.ID(), depth-1, true)
		}
		out = append(out, rec)
	}
	return value.NewRecordList(out)
}

// FetchRef implements condition.Resolver: given the table a Ref/RefList
// field is declared on and that field's stored id, it returns the id's
// target table and row so a dotted path in a query can step across the
// reference. A many-to-many field resolves through its join
// table the same way materializeList does for a read.
func (r *Resolver) FetchRef(sourceTable, field string, id value.Value) (string, value.Record, bool, error) {
	s, ok := r.registry.ByTable(sourceTable)
	if !ok {
		return "", nil, false, nil
	}

	if ref, ok := s.References[field]; ok {
		rec, ok := r.store.Get(ref.TargetTable, id.ID())
		if !ok {
			return "", nil, false, nil
		}
		return ref.TargetTable, rec, true, nil
	}

	if rel, ok := s.Relationships[field]; ok && rel.JoinTable != nil {
		rec, ok := r.store.Get(rel.JoinTable.TargetTable, id.ID())
		if !ok {
			return "", nil, false, nil
		}
		return rel.JoinTable.TargetTable, rec, true, nil
	}

	return "", nil, false, nil
}

// UnwrapRef unwraps the single-element RecordList materializeOne produces
// for a resolved Ref<T> field back to a plain record, for callers (the
// repository's JSON emission) that render a to-one reference as a nested
// object rather than an array.
func UnwrapRef(v value.Value) (value.Record, bool) {
	if v.Kind() != value.RecordList {
		return nil, false
	}
	recs := v.Records()
	if len(recs) == 0 {
		return nil, false
	}
	return recs[0], true
}
