package schema

import "regexp"

// FieldType enumerates the primitive and composite field types allowed:
// bool, int, decimal, float, text, timestamp, time_of_day, bytes,
// enum<...>, ref<Type>, list<ref<Type>>.
type FieldType string

const (
	Bool       FieldType = "bool"
	Int        FieldType = "int"
	Decimal    FieldType = "decimal"
	Float      FieldType = "float"
	Text       FieldType = "text"
	Timestamp  FieldType = "timestamp"
	TimeOfDay  FieldType = "time_of_day"
	Bytes      FieldType = "bytes"
	Enum       FieldType = "enum"
	Ref        FieldType = "ref"
	RefList    FieldType = "list_ref"
)

// Constraint is a per-field rule enforced by the repository on store.
type Constraint struct {
	Unique   bool
	Required bool
	MaxLen   int            // 0 means unbounded
	Pattern  *regexp.Regexp // nil means unconstrained
}

// Field describes one declared column of an entity type. RefTarget names the
// target entity type for Ref/RefList fields; EnumValues lists the symbolic names a
// Enum field may take, in declared order (used for JSON rendering by name).
type Field struct {
	Name       string
	Type       FieldType
	DBName     string
	RefTarget  string
	EnumValues []string
	Constraint Constraint
}

// IsReference reports whether the field's stored value is an identifier (or
// list of identifiers) into another table.
func (f *Field) IsReference() bool {
	return f.Type == Ref || f.Type == RefList
}
