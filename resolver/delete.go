package resolver

import (
	"fmt"

	"github.com/estore/estore/schema"
	"github.com/estore/estore/value"
)

// CycleError reports that cascade delete walked back into a row already on
// its current deletion path.
type CycleError struct {
	Table string
	ID    any
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cascade delete cycle at %s.#%v", e.Table, e.ID)
}

// Deleted is one row removed by CascadeDelete, in deletion order (children
// before the parent that owned them).
type Deleted struct {
	Table  string
	ID     any
	Record value.Record
}

// CheckDeleteConstraint fails with DeleteConstraintError if any other row
// still holds a live foreign key to (table, id) — the plain, non-cascading
// delete path.
func (r *Resolver) CheckDeleteConstraint(table string, id any) error {
	for _, ref := range r.registry.ReferencingFields(table) {
		if ref.IsRelationTable {
			for _, e := range r.store.Entries(ref.Table) {
				if idEquals(e.Record[ref.Field], id) {
					return &DeleteConstraintError{SourceTable: ref.Table, SourceID: e.ID, SourceField: ref.Field, TargetID: id}
				}
			}
			continue
		}
		for _, e := range r.store.Entries(ref.Table) {
			fv, ok := e.Record[ref.Field]
			if !ok || fv.Kind() != value.ID || !idEquals(fv, id) {
				continue
			}
			return &DeleteConstraintError{SourceTable: ref.Table, SourceID: e.ID, SourceField: ref.Field, TargetID: id}
		}
	}
	return nil
}

// CascadeDelete removes (table, id) and every row reachable from it, either
// by an incoming foreign key (a row that references (table, id), removed
// before it) or by (table, id)'s own outgoing Ref/RefList fields (removed
// after it). A cycle on the current deletion path aborts the whole
// operation rather than silently truncating it.
func (r *Resolver) CascadeDelete(table string, id any) ([]Deleted, error) {
	return r.cascadeDelete(table, id, map[string]bool{}, map[string]bool{})
}

func (r *Resolver) cascadeDelete(table string, id any, inProgress, done map[string]bool) ([]Deleted, error) {
	key := table + ":" + fmt.Sprint(id)
	if inProgress[key] {
		return nil, &CycleError{Table: table, ID: id}
	}
	if done[key] {
		return nil, nil
	}
	inProgress[key] = true
	defer delete(inProgress, key)

	var out []Deleted
	for _, ref := range r.registry.ReferencingFields(table) {
		if ref.IsRelationTable {
			for _, e := range r.store.Entries(ref.Table) {
				if !idEquals(e.Record[ref.Field], id) {
					continue
				}
				if rec, ok := r.store.Delete(ref.Table, e.ID); ok {
					out = append(out, Deleted{Table: ref.Table, ID: e.ID, Record: rec})
				}
			}
			continue
		}
		for _, e := range r.store.Entries(ref.Table) {
			fv, ok := e.Record[ref.Field]
			if !ok || fv.Kind() != value.ID || !idEquals(fv, id) {
				continue
			}
			sub, err := r.cascadeDelete(ref.Table, e.ID, inProgress, done)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
	}

	row, existed := r.store.Get(table, id)
	if rec, ok := r.store.Delete(table, id); ok {
		out = append(out, Deleted{Table: table, ID: id, Record: rec})
	}
	done[key] = true

	if existed {
		sub, err := r.cascadeOutgoing(table, id, row, inProgress, done)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}

	return out, nil
}

// cascadeOutgoing removes what a just-deleted row's own Ref/RefList fields
// pointed at. A RefList field is many-to-many: only its join rows for id are
// removed, the target rows themselves are shared and left alone. A Ref
// field names an owned sub-resource, so its target row is cascade-deleted
// in turn.
func (r *Resolver) cascadeOutgoing(table string, id any, row value.Record, inProgress, done map[string]bool) ([]Deleted, error) {
	s, ok := r.registry.ByTable(table)
	if !ok {
		return nil, nil
	}

	var out []Deleted
	for _, f := range s.Fields {
		switch f.Type {
		case schema.RefList:
			rel, ok := s.Relationships[f.Name]
			if !ok || rel.JoinTable == nil {
				continue
			}
			jt := rel.JoinTable
			for _, e := range r.store.Entries(jt.Name) {
				if !idEquals(e.Record[jt.SourceColumn], id) {
					continue
				}
				if rec, ok := r.store.Delete(jt.Name, e.ID); ok {
					out = append(out, Deleted{Table: jt.Name, ID: e.ID, Record: rec})
				}
			}
		case schema.Ref:
			fv, ok := row[f.Name]
			if !ok || fv.Kind() != value.ID {
				continue
			}
			target, ok := r.registry.ByName(f.RefTarget)
			if !ok {
				continue
			}
			// A target already in progress or done is an ancestor on this
			// same deletion path (e.g. the row that triggered this cascade
			// via an incoming reference) rather than a genuine cycle: it is
			// already being handled, so there is nothing left to do here.
			targetKey := target.Table + ":" + fmt.Sprint(fv.Raw())
			if inProgress[targetKey] || done[targetKey] {
				continue
			}
			sub, err := r.cascadeDelete(target.Table, fv.Raw(), inProgress, done)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
	}
	return out, nil
}
