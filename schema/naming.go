// Package schema implements the entity metadata
// model (field lists, types, constraints) and the schema registry that maps
// table names to that metadata, including auto-derivation of many-to-many
// relationship tables from list<ref<T>> fields.
package schema

import (
	"strings"
	"sync"

	"github.com/jinzhu/inflection"
)

// Namer controls how table, column and relationship-table names are
// derived. NamingStrategy is the default, grounded on gorm's
// schema.NamingStrategy; callers may supply their own for tables that were
// already named by an external system.
type Namer interface {
	TableName(name string) string
	ColumnName(table, field string) string
	RelationshipTableName(sourceTable, field, targetTable string) string
}

// NamingStrategy pluralizes entity names into table names via
// github.com/jinzhu/inflection, the same dependency gorm uses for this.
type NamingStrategy struct {
	TablePrefix   string
	SingularTable bool
}

func (ns NamingStrategy) TableName(name string) string {
	if ns.SingularTable {
		return ns.TablePrefix + toDBName(name)
	}
	return ns.TablePrefix + inflection.Plural(toDBName(name))
}

func (ns NamingStrategy) ColumnName(table, field string) string {
	return toDBName(field)
}

// RelationshipTableName derives the two-column join-table name as
// "<source>__<field>__rel".
func (ns NamingStrategy) RelationshipTableName(sourceTable, field, targetTable string) string {
	return sourceTable + "__" + toDBName(field) + "__rel"
}

var (
	smap sync.Map
	// https://github.com/golang/lint/blob/master/lint.go#L770
	commonInitialisms         = []string{"API", "ASCII", "CPU", "CSS", "DNS", "EOF", "GUID", "HTML", "HTTP", "HTTPS", "ID", "IP", "JSON", "LHS", "QPS", "RAM", "RHS", "RPC", "SLA", "SMTP", "SSH", "TLS", "TTL", "UID", "UI", "UUID", "URI", "URL", "UTF8", "VM", "XML", "XSRF", "XSS"}
	commonInitialismsReplacer *strings.Replacer
)

func init() {
	var pairs []string
	for _, initialism := range commonInitialisms {
		pairs = append(pairs, initialism, strings.Title(strings.ToLower(initialism)))
	}
	commonInitialismsReplacer = strings.NewReplacer(pairs...)
}

// toDBName converts a Go-style identifier ("UserID") to snake_case
// ("user_id"), the way gorm's schema package names columns and tables.
func toDBName(name string) string {
	if name == "" {
		return ""
	}
	if v, ok := smap.Load(name); ok {
		return v.(string)
	}

	value := commonInitialismsReplacer.Replace(name)
	var buf strings.Builder
	var lastCase, nextCase, nextNumber bool
	curCase := value[0] <= 'Z' && value[0] >= 'A'

	for i, v := range value[:len(value)-1] {
		nextCase = value[i+1] <= 'Z' && value[i+1] >= 'A'
		nextNumber = value[i+1] >= '0' && value[i+1] <= '9'

		if curCase {
			if lastCase && (nextCase || nextNumber) {
				buf.WriteRune(v + 32)
			} else {
				if i > 0 && value[i-1] != '_' && value[i+1] != '_' {
					buf.WriteByte('_')
				}
				buf.WriteRune(v + 32)
			}
		} else {
			buf.WriteRune(v)
		}

		lastCase = curCase
		curCase = nextCase
	}

	if curCase {
		if !lastCase && len(value) > 1 {
			buf.WriteByte('_')
		}
		buf.WriteByte(value[len(value)-1] + 32)
	} else {
		buf.WriteByte(value[len(value)-1])
	}

	result := buf.String()
	smap.Store(name, result)
	return result
}

// Simplify reduces a name to lowercase letters and digits only, the "third
// pass" of the field-name resolution order (exact, then lowercase, then
// simplified).
func Simplify(name string) string {
	var buf strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
