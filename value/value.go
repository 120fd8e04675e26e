// Package value implements the tagged-union row value carried by every
// TableRecord field: null, bool, integer, decimal, float, text, timestamp,
// time-of-day, binary blob, identifier, list of identifiers, list of records.
package value

import (
	"fmt"
	"sort"
	"time"

	"github.com/woodsbury/decimal128"
)

// Kind tags which variant a Value holds.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Int
	Decimal
	Float
	Text
	Timestamp
	TimeOfDay
	Bytes
	ID
	IDList
	RecordList
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Decimal:
		return "decimal"
	case Float:
		return "float"
	case Text:
		return "text"
	case Timestamp:
		return "timestamp"
	case TimeOfDay:
		return "time_of_day"
	case Bytes:
		return "bytes"
	case ID:
		return "id"
	case IDList:
		return "id_list"
	case RecordList:
		return "record_list"
	}
	return "unknown"
}

// TimeOfDayValue is a wall-clock time with no associated date, rendered as
// HH:MM:SS by ToJSON.
type TimeOfDayValue struct {
	Hour, Minute, Second int
}

func (t TimeOfDayValue) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Record is a field-name -> Value map; it is the in-memory shape of one
// stored row. It keeps no field order: ranging over it is unordered, and
// SortedFields gives the alphabetical order.
type Record map[string]Value

// Clone returns a shallow-independent copy suitable for storing a new
// version without aliasing the caller's map.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// SortedFields returns field names in deterministic (alphabetical) order,
// used anywhere iteration order must be stable (JSON emission, unique scans).
func (r Record) SortedFields() []string {
	names := make([]string, 0, len(r))
	for k := range r {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Value is a tagged union over the field-value variants TableRecord may hold.
type Value struct {
	kind  Kind
	b     bool
	i     int64
	dec   decimal128.Decimal
	f     float64
	s     string
	t     time.Time
	tod   TimeOfDayValue
	bytes []byte
	id    any
	ids   []any
	recs  []Record
}

func NewNull() Value                 { return Value{kind: Null} }
func NewBool(b bool) Value           { return Value{kind: Bool, b: b} }
func NewInt(i int64) Value           { return Value{kind: Int, i: i} }
func NewDecimal(d decimal128.Decimal) Value { return Value{kind: Decimal, dec: d} }
func NewFloat(f float64) Value       { return Value{kind: Float, f: f} }
func NewText(s string) Value         { return Value{kind: Text, s: s} }
func NewTimestamp(t time.Time) Value { return Value{kind: Timestamp, t: t} }
func NewTimeOfDay(t TimeOfDayValue) Value { return Value{kind: TimeOfDay, tod: t} }
func NewBytes(b []byte) Value        { return Value{kind: Bytes, bytes: b} }
func NewID(id any) Value             { return Value{kind: ID, id: id} }
func NewIDList(ids []any) Value      { return Value{kind: IDList, ids: ids} }
func NewRecordList(recs []Record) Value { return Value{kind: RecordList, recs: recs} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == Null }

func (v Value) Bool() bool                 { return v.b }
func (v Value) Int() int64                 { return v.i }
func (v Value) Decimal() decimal128.Decimal { return v.dec }
func (v Value) Float() float64             { return v.f }
func (v Value) Text() string               { return v.s }
func (v Value) Timestamp() time.Time       { return v.t }
func (v Value) TimeOfDay() TimeOfDayValue  { return v.tod }
func (v Value) Bytes() []byte              { return v.bytes }
func (v Value) ID() any                    { return v.id }
func (v Value) IDs() []any                 { return v.ids }
func (v Value) Records() []Record          { return v.recs }

// Equal reports scalar/identifier equality. List-valued variants compare by
// length and positional element equality; RecordList is not comparable by
// Equal (callers diff relationship lists by identifier instead).
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		// an ID compared against a raw Int/Text is still allowed to match,
		// since identifiers may be stored as either depending on schema.
		if (v.kind == ID && (other.kind == Int || other.kind == Text)) ||
			(other.kind == ID && (v.kind == Int || v.kind == Text)) {
			return fmt.Sprint(idOf(v)) == fmt.Sprint(idOf(other))
		}
		return false
	}
	switch v.kind {
	case Null:
		return true
	case Bool:
		return v.b == other.b
	case Int:
		return v.i == other.i
	case Decimal:
		return v.dec.Cmp(other.dec) == 0
	case Float:
		return v.f == other.f
	case Text:
		return v.s == other.s
	case Timestamp:
		return v.t.Equal(other.t)
	case TimeOfDay:
		return v.tod == other.tod
	case Bytes:
		return string(v.bytes) == string(other.bytes)
	case ID:
		return fmt.Sprint(v.id) == fmt.Sprint(other.id)
	case IDList:
		if len(v.ids) != len(other.ids) {
			return false
		}
		for i := range v.ids {
			if fmt.Sprint(v.ids[i]) != fmt.Sprint(other.ids[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Contains implements the =~ "contains" operator: for an IDList receiver,
// true iff it holds an element equal to target. When target is itself an
// IDList, this is "any-in-any": true iff any element of the receiver equals
// any element of target. A RecordList receiver never contains anything; any
// other receiver falls back to Equal(target).
func (v Value) Contains(target Value) bool {
	switch v.kind {
	case IDList:
		if target.kind == IDList {
			for _, id := range v.ids {
				for _, other := range target.ids {
					if fmt.Sprint(id) == fmt.Sprint(other) {
						return true
					}
				}
			}
			return false
		}
		for _, id := range v.ids {
			if fmt.Sprint(id) == fmt.Sprint(idOf(target)) {
				return true
			}
		}
		return false
	case RecordList:
		return false
	default:
		return v.Equal(target)
	}
}

func idOf(v Value) any {
	if v.kind == ID {
		return v.id
	}
	return rawScalar(v)
}

// rawScalar returns the Go-native scalar a Value wraps, for comparisons and
// serialization that don't care about the Kind tag.
func rawScalar(v Value) any {
	switch v.kind {
	case Bool:
		return v.b
	case Int:
		return v.i
	case Decimal:
		return v.dec
	case Float:
		return v.f
	case Text:
		return v.s
	case Timestamp:
		return v.t
	case TimeOfDay:
		return v.tod
	case Bytes:
		return v.bytes
	case ID:
		return v.id
	default:
		return nil
	}
}

// Raw exposes rawScalar for packages that need the Go-native value, e.g. the
// JSON encoder and the condition evaluator's comparison operators.
func (v Value) Raw() any { return rawScalar(v) }
