package schema

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lowerCaser = cases.Lower(language.Und)

// Definition is the explicit, non-reflective description of one entity type
// that a program registers at startup — a plain struct a code generator
// may emit, but which the core only ever consumes as data, replacing
// runtime reflection over struct tags.
type Definition struct {
	Name string // entity type name, e.g. "User"
	Table string // explicit table name; derived via Namer if empty
	IDField string // primary-key field name; defaults to "id" if empty
	Fields []Field
	// SoftDeleteField, if set, names a Timestamp field that delete sets to
	// the current time instead of removing the row; select and select-by-id
	// skip rows where this field is non-null unless the caller's
	// ResolutionRules asks for them via IncludeSoftDeleted, and count always
	// skips them.
	SoftDeleteField string
}

// Schema is the immutable, registered metadata for one entity type. It is
// built once by Registry.Register and never mutated afterward.
type Schema struct {
	Name            string
	Table           string
	IDField         string
	SoftDeleteField string
	Fields          []*Field
	fieldsByName    map[string]*Field
	fieldsByLower   map[string]*Field
	fieldsBySimple  map[string]*Field

	References    map[string]Reference      // field name -> inline FK reference
	Relationships map[string]*Relationship // field name -> relationship metadata
}

// HasSoftDelete reports whether this schema's table marks deleted rows
// instead of removing them.
func (s *Schema) HasSoftDelete() bool { return s.SoftDeleteField != "" }

func newSchema(def Definition, namer Namer) *Schema {
	table := def.Table
	if table == "" {
		table = namer.TableName(def.Name)
	}
	idField := def.IDField
	if idField == "" {
		idField = "id"
	}

	s := &Schema{
		Name:            def.Name,
		Table:           table,
		IDField:         idField,
		SoftDeleteField: def.SoftDeleteField,
		fieldsByName:    map[string]*Field{},
		fieldsByLower:   map[string]*Field{},
		fieldsBySimple:  map[string]*Field{},
		References:      map[string]Reference{},
		Relationships:   map[string]*Relationship{},
	}

	for i := range def.Fields {
		f := def.Fields[i]
		if f.DBName == "" {
			f.DBName = namer.ColumnName(table, f.Name)
		}
		s.Fields = append(s.Fields, &f)
	}

	for _, f := range s.Fields {
		s.fieldsByName[f.Name] = f
		s.fieldsByLower[lower(f.Name)] = f
		s.fieldsBySimple[Simplify(f.Name)] = f
	}

	return s
}

// LookupField resolves a field by name using a three-pass rule:
// exact match, then case-insensitive match, then simplified
// (lowercase-alphanumeric) match.
func (s *Schema) LookupField(name string) (*Field, bool) {
	if f, ok := s.fieldsByName[name]; ok {
		return f, true
	}
	if f, ok := s.fieldsByLower[lower(name)]; ok {
		return f, true
	}
	if f, ok := s.fieldsBySimple[Simplify(name)]; ok {
		return f, true
	}
	return nil, false
}

// ResolveRow builds an ordered field->rawValue map from an arbitrary
// external map (e.g. decoded JSON) using the same three-pass resolution as
// LookupField, for each declared field in turn.
func (s *Schema) ResolveRow(ext map[string]any) map[string]any {
	out := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		if v, ok := ext[f.Name]; ok {
			out[f.Name] = v
			continue
		}
		matched := false
		for k, v := range ext {
			if lower(k) == lower(f.Name) {
				out[f.Name] = v
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		for k, v := range ext {
			if Simplify(k) == Simplify(f.Name) {
				out[f.Name] = v
				break
			}
		}
	}
	return out
}

// lower case-folds s using golang.org/x/text/cases rather than an
// ASCII-only byte loop, so a field name resolution pass also works for
// non-ASCII identifiers.
func lower(s string) string {
	return lowerCaser.String(s)
}

func (s *Schema) String() string {
	return fmt.Sprintf("schema(%s -> table %s)", s.Name, s.Table)
}
