package resolver

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/estore/estore/schema"
	"github.com/estore/estore/value"
)

// SyncListField reconciles the many-to-many join table backing field f so it
// holds exactly one row per id in desiredIDs for sourceID, inserting the
// missing ones and deleting the stale ones. An identical row already
// present is left untouched rather than replaced, so re-storing an
// unchanged set is a no-op.
func (r *Resolver) SyncListField(s *schema.Schema, f *schema.Field, sourceID any, desiredIDs []any) error {
	rel, ok := s.Relationships[f.Name]
	if !ok || rel.JoinTable == nil {
		return nil
	}
	jt := rel.JoinTable

	existingByTarget := map[string]any{} // target id text -> join row id
	for _, e := range r.store.Entries(jt.Name) {
		if !idEquals(e.Record[jt.SourceColumn], sourceID) {
			continue
		}
		existingByTarget[textOf(e.Record[jt.TargetColumn])] = e.ID
	}

	desired := map[string]any{}
	for _, tid := range desiredIDs {
		desired[textOf(value.NewID(tid))] = tid
	}

	for text, joinID := range existingByTarget {
		if _, ok := desired[text]; !ok {
			r.store.Delete(jt.Name, joinID)
		}
	}
	for text, tid := range desired {
		if _, ok := existingByTarget[text]; ok {
			continue
		}
		row := value.Record{
			jt.SourceColumn: value.NewID(sourceID),
			jt.TargetColumn: value.NewID(tid),
		}
		// Join rows have no natural caller-supplied key, so each gets a
		// random id rather than joining the per-table auto-increment
		// counter the owning entities use.
		if _, _, err := r.store.Put(jt.Name, uuid.NewString(), row); err != nil {
			return err
		}
	}
	return nil
}

func textOf(v value.Value) string {
	return fmt.Sprint(rawID(v))
}
