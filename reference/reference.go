// Package reference implements EntityReference<T> and EntityReferenceList<T>:
// a lazily-fetched pointer to another entity's row that may carry an id, a
// loaded entity, both, or neither.
package reference

import (
	"fmt"

	"github.com/estore/estore/entity"
)

// Reference is EntityReference<T>: at most one of id/entity is authoritative
// at a time, but both may be present together once the id-only state has
// been fetched. The zero value is the null state.
type Reference struct {
	entityType string
	hook       entity.FetchHook
	id         any
	loaded     entity.Entity
	hasID      bool
	hasEntity  bool
}

// New constructs a null reference for entityType, fetched through hook when
// needed.
func New(entityType string, hook entity.FetchHook) *Reference {
	return &Reference{entityType: entityType, hook: hook}
}

// FromID constructs an id-only reference.
func FromID(entityType string, hook entity.FetchHook, id any) *Reference {
	r := New(entityType, hook)
	r.SetID(id)
	return r
}

// FromEntity constructs an entity-only reference.
func FromEntity(entityType string, hook entity.FetchHook, e entity.Entity) *Reference {
	r := New(entityType, hook)
	r.Set(e)
	return r
}

// IsNull reports the null state: no id, no loaded entity.
func (r *Reference) IsNull() bool {
	return !r.hasID && !r.hasEntity
}

// ID returns the reference's identifier, deriving it from the loaded entity
// if the id itself was never set directly.
func (r *Reference) ID() (any, bool) {
	if r.hasID {
		return r.id, true
	}
	if r.hasEntity {
		return r.loaded.EntityID(), true
	}
	return nil, false
}

// Get returns the loaded entity, fetching it through the hook if only an id
// is held. A null reference returns (nil, nil).
func (r *Reference) Get() (entity.Entity, error) {
	if r.hasEntity {
		return r.loaded, nil
	}
	if !r.hasID {
		return nil, nil
	}
	if r.hook == nil {
		return nil, nil
	}
	e, err := r.hook(r.id, r.entityType)
	if err != nil {
		return nil, &FetchFailedError{EntityType: r.entityType, ID: r.id, Cause: err}
	}
	r.loaded = e
	r.hasEntity = e != nil
	return e, nil
}

// Set transitions to entity-only/both.
func (r *Reference) Set(e entity.Entity) {
	r.loaded = e
	r.hasEntity = e != nil
	if e != nil {
		r.id = e.EntityID()
		r.hasID = r.id != nil
	} else {
		r.hasID = false
	}
}

// SetID transitions to id-only, disposing the loaded entity if the id
// differs from the one it was loaded under.
func (r *Reference) SetID(id any) {
	if r.hasEntity && fmt.Sprint(r.loaded.EntityID()) != fmt.Sprint(id) {
		r.loaded = nil
		r.hasEntity = false
	}
	r.id = id
	r.hasID = id != nil
}

// Refresh forces a fetch through the hook, discarding any previously loaded
// entity.
func (r *Reference) Refresh() (entity.Entity, error) {
	r.hasEntity = false
	r.loaded = nil
	return r.Get()
}

// Equal implements the reference equality rule: by (type, id) when both
// sides have an id, otherwise by identity of the loaded entity, otherwise by
// comparing one side's derived id against the other's.
func (r *Reference) Equal(other *Reference) bool {
	if r.entityType != other.entityType {
		return false
	}
	rid, rok := r.ID()
	oid, ook := other.ID()
	if rok && ook {
		return fmt.Sprint(rid) == fmt.Sprint(oid)
	}
	if r.hasEntity && other.hasEntity {
		return r.loaded == other.loaded
	}
	return false
}

// ToJSON renders {"EntityReference": type, "id": ...} or, when an entity is
// loaded, {"EntityReference": type, "entity": {...}}.
func (r *Reference) ToJSON() map[string]any {
	out := map[string]any{"EntityReference": r.entityType}
	if r.hasEntity {
		out["entity"] = r.loaded.ToJSON()
		return out
	}
	if r.hasID {
		out["id"] = r.id
	}
	return out
}

// FetchFailedError reports a fetch hook failure; it bubbles to the caller
// without aborting the enclosing transaction.
type FetchFailedError struct {
	EntityType string
	ID         any
	Cause      error
}

func (e *FetchFailedError) Error() string {
	return fmt.Sprintf("fetch failed for %s#%v: %v", e.EntityType, e.ID, e.Cause)
}

func (e *FetchFailedError) Unwrap() error { return e.Cause }
