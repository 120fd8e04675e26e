package schema

import (
	"fmt"
	"sync"
)

// Registry maps table name <-> entity type and derives foreign-key
// references and many-to-many relationship tables from Ref/RefList fields
// at registration time. Immutable after a given entity type is registered.
type Registry struct {
	namer Namer

	mu             sync.RWMutex
	byName         map[string]*Schema
	byTable        map[string]*Schema
	relationTables map[string]*RelationshipTable
}

// NewRegistry creates a registry using the given Namer (NamingStrategy{} if
// nil).
func NewRegistry(namer Namer) *Registry {
	if namer == nil {
		namer = NamingStrategy{}
	}
	return &Registry{
		namer:          namer,
		byName:         map[string]*Schema{},
		byTable:        map[string]*Schema{},
		relationTables: map[string]*RelationshipTable{},
	}
}

// Register builds a Schema from def, derives its references and
// relationship tables, and adds it to the registry. It returns an error if
// an entity of the same name or table is already registered, or if a
// list<ref<T>> field names a target type that has not itself been
// registered yet (the resolver depends on forward registration order, the
// same way gorm requires associated models to be known at AutoMigrate time).
func (r *Registry) Register(def Definition) (*Schema, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[def.Name]; ok {
		return nil, fmt.Errorf("schema: %s already registered", def.Name)
	}

	s := newSchema(def, r.namer)

	if _, ok := r.byTable[s.Table]; ok {
		return nil, fmt.Errorf("schema: table %s already registered", s.Table)
	}

	for _, f := range s.Fields {
		switch f.Type {
		case Ref:
			target, ok := r.byName[f.RefTarget]
			if !ok {
				return nil, fmt.Errorf("schema: %s.%s references unregistered type %s", def.Name, f.Name, f.RefTarget)
			}
			ref := Reference{
				Field:       f.Name,
				TargetTable: target.Table,
				TargetField: target.IDField,
				TargetType:  target.Name,
			}
			s.References[f.Name] = ref
			s.Relationships[f.Name] = &Relationship{
				Name: f.Name, Type: BelongsTo, SourceField: f.Name,
				TargetTable: target.Table, Reference: &ref,
			}
		case RefList:
			target, ok := r.byName[f.RefTarget]
			if !ok {
				return nil, fmt.Errorf("schema: %s.%s references unregistered type %s", def.Name, f.Name, f.RefTarget)
			}
			jt := &RelationshipTable{
				Name:         r.namer.RelationshipTableName(s.Table, f.Name, target.Table),
				SourceField:  f.Name,
				SourceTable:  s.Table,
				SourceColumn: s.Table + "__" + s.IDField,
				TargetTable:  target.Table,
				TargetColumn: target.Table + "__" + target.IDField,
			}
			s.Relationships[f.Name] = &Relationship{
				Name: f.Name, Type: Many2Many, SourceField: f.Name,
				TargetTable: target.Table, JoinTable: jt,
			}
			r.relationTables[jt.Name] = jt
		}
	}

	r.byName[s.Name] = s
	r.byTable[s.Table] = s
	return s, nil
}

// ByTable looks up the schema registered for a table name.
func (r *Registry) ByTable(table string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byTable[table]
	return s, ok
}

// ByName looks up the schema registered for an entity type name.
func (r *Registry) ByName(name string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byName[name]
	return s, ok
}

// IsRelationshipTable reports whether table is an auto-derived many-to-many
// join table, the condition memtable.Store consults before refusing a write
// to an unregistered table.
func (r *Registry) IsRelationshipTable(table string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.relationTables[table]
	return ok
}

// RelationshipTable returns the join-table descriptor for an auto-derived
// table name.
func (r *Registry) RelationshipTable(table string) (*RelationshipTable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	jt, ok := r.relationTables[table]
	return jt, ok
}

// KnownTable reports whether table has either a registered entity schema or
// is a relationship table — the full set memtable.Store may write to
// without explicit auto-create permission.
func (r *Registry) KnownTable(table string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.byTable[table]; ok {
		return true
	}
	_, ok := r.relationTables[table]
	return ok
}

// ReferencingFields returns, for every registered schema, the fields whose
// inline foreign key points at targetTable. Used by the resolver's delete
// constraint check.
func (r *Registry) ReferencingFields(targetTable string) []FieldRef {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []FieldRef
	for _, s := range r.byTable {
		for _, f := range s.Fields {
			if f.Type == Ref {
				if ref, ok := s.References[f.Name]; ok && ref.TargetTable == targetTable {
					out = append(out, FieldRef{Table: s.Table, Field: f.Name})
				}
			}
		}
	}
	for _, jt := range r.relationTables {
		if jt.TargetTable == targetTable {
			out = append(out, FieldRef{Table: jt.Name, Field: jt.TargetColumn, IsRelationTable: true})
		}
	}
	return out
}

// FieldRef names a (table, field) pair that holds a foreign key.
type FieldRef struct {
	Table           string
	Field           string
	IsRelationTable bool
}

// AllRelationshipTables returns every auto-derived join table, used to
// pre-create them before the first write (mirrors gorm's AutoMigrate
// pre-creating join tables for declared many2many associations).
func (r *Registry) AllRelationshipTables() []*RelationshipTable {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*RelationshipTable, 0, len(r.relationTables))
	for _, jt := range r.relationTables {
		out = append(out, jt)
	}
	return out
}
