package schema

// RelationshipType mirrors gorm's schema.RelationshipType tagging, trimmed to
// the two shapes actually needed: an inline foreign key
// (non-list ref<T> field) and a many-to-many join table (list<ref<T>>
// field).
type RelationshipType string

const (
	BelongsTo RelationshipType = "belongs_to"
	Many2Many RelationshipType = "many_to_many"
)

// Reference describes one inline foreign-key field:
// `references[field] -> {target_table, target_field, target_type}`.
type Reference struct {
	Field       string
	TargetTable string
	TargetField string
	TargetType  string
}

// RelationshipTable describes an auto-derived many-to-many join table
//: two identifier columns, named
// "<source_table>__<source_id_field>" and "<target_table>__<target_id_field>",
// with a synthetic row identifier as primary key.
type RelationshipTable struct {
	Name           string
	SourceField    string // the list<ref<T>> field on the owning schema
	SourceTable    string
	SourceColumn   string
	TargetTable    string
	TargetColumn   string
}

// Relationship is the resolved relationship metadata attached to a Schema
// field, kept alongside Reference/RelationshipTable for lookup convenience.
type Relationship struct {
	Name        string
	Type        RelationshipType
	SourceField string
	TargetTable string
	Reference   *Reference         // set when Type == BelongsTo
	JoinTable   *RelationshipTable // set when Type == Many2Many
}
