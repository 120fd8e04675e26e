package repository

import (
	"github.com/estore/estore/schema"
	"github.com/estore/estore/value"
)

// rowEntity is a minimal entity.Entity backed directly by a schema and a
// row, used where a Factory for the row's own type isn't available to this
// Repository — cascade delete walks across tables other than its own, and
// has no per-type Factory for each one it touches.
type rowEntity struct {
	schema *schema.Schema
	row    value.Record
	id     value.Value
}

func (e *rowEntity) EntityType() string { return e.schema.Name }

func (e *rowEntity) EntityID() any {
	if e.id.IsNull() {
		return nil
	}
	return e.id.Raw()
}

func (e *rowEntity) Fields() []string {
	names := make([]string, len(e.schema.Fields))
	for i, f := range e.schema.Fields {
		names[i] = f.Name
	}
	return names
}

func (e *rowEntity) GetField(name string) (value.Value, bool) {
	if name == e.schema.IDField {
		return e.id, true
	}
	v, ok := e.row[name]
	return v, ok
}

func (e *rowEntity) SetField(name string, v value.Value) error {
	if name == e.schema.IDField {
		e.id = v
		return nil
	}
	e.row[name] = v
	return nil
}

func (e *rowEntity) FieldType(name string) (schema.FieldType, bool) {
	f, ok := e.schema.LookupField(name)
	if !ok {
		return "", false
	}
	return f.Type, true
}

func (e *rowEntity) ToJSON() map[string]any {
	out := make(map[string]any, len(e.schema.Fields)+1)
	out[e.schema.IDField] = e.id.ToJSON()
	for _, f := range e.schema.Fields {
		if v, ok := e.row[f.Name]; ok {
			out[f.Name] = v.ToJSON()
		}
	}
	return out
}
