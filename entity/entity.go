// Package entity defines the capability interface every stored type
// implements: id, id field name, declared fields, get/set field by name,
// field type lookup, and JSON rendering. The core is generic over this
// capability set rather than an open polymorphic base class; there is no
// base-class state. It is a standalone leaf package so both the
// repository layer and the top-level facade can depend on it without
// a cycle between them.
package entity

import (
	"github.com/estore/estore/schema"
	"github.com/estore/estore/value"
)

// Entity is the capability interface every stored type implements.
type Entity interface {
	// EntityType names the registered schema this entity's rows belong to.
	EntityType() string
	// EntityID returns the current primary-key value, or nil if unset.
	EntityID() any
	// Fields lists declared field names in schema order.
	Fields() []string
	// GetField reads one field's current value.
	GetField(name string) (value.Value, bool)
	// SetField writes one field's value; implementations validate the
	// value's Kind against the schema's declared FieldType.
	SetField(name string, v value.Value) error
	// FieldType reports the declared type of a field.
	FieldType(name string) (schema.FieldType, bool)
	// ToJSON renders the entity's declared fields; reference fields are
	// emitted as bare identifiers — resolving them to nested objects is the
	// repository layer's job (it alone knows the ResolutionRules in effect
	// for a given read).
	ToJSON() map[string]any
}

// ResolutionRules controls how deep relationship resolution reaches on read.
// The zero value is the default shallow mode: only inline foreign keys are
// materialized.
type ResolutionRules struct {
	// EagerAll also materializes list<ref<T>> fields via the relationship
	// table, recursing into referenced rows up to MaxDepth.
	EagerAll bool
	// MaxDepth bounds recursive materialization to prevent cyclic object
	// graphs from forming at read time. Zero means the default depth of 1
	// (only the row's own inline references).
	MaxDepth int
	// IncludeSoftDeleted, on a table with a soft-delete column, also
	// returns rows that have been marked deleted. Has no effect on a table
	// with no soft-delete column.
	IncludeSoftDeleted bool
}

func (r ResolutionRules) Depth() int {
	if r.MaxDepth <= 0 {
		return 1
	}
	return r.MaxDepth
}

// FetchHook is the lazy-loading callback an EntityReference or
// EntityReferenceList uses to materialize an entity it only holds an
// identifier for. A hook that talks to an external collaborator is
// responsible for its own timeout.
type FetchHook func(id any, entityType string) (Entity, error)

// Factory constructs a blank Entity of a registered type, used by the
// repository to materialize rows read back out of the store. Registered
// once per type alongside its schema.Definition.
type Factory func() Entity
