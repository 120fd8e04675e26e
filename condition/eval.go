package condition

import (
	"strings"

	"github.com/estore/estore/value"
)

// Resolver lets the evaluator step across a reference field into the row(s)
// it points at, without this package depending on schema/memtable. field is
// the name of the Ref/RefList field on sourceTable that produced id; the
// resolver package supplies the concrete implementation, which knows that
// field's target table from the schema registry.
type Resolver interface {
	FetchRef(sourceTable, field string, id value.Value) (targetTable string, row value.Record, ok bool, err error)
}

// Params supplies the runtime values bound to a query's placeholders.
// Positional placeholders ("?") consume from Positional in left-to-right
// order; named placeholders (":x") look up Named.
type Params struct {
	Positional []value.Value
	Named      map[string]value.Value
}

func (p *Params) next(i *int) (value.Value, error) {
	if *i >= len(p.Positional) {
		return value.Value{}, &ParseError{Reason: "not enough positional parameters"}
	}
	v := p.Positional[*i]
	*i++
	return v, nil
}

func (p *Params) byName(name string) (value.Value, error) {
	v, ok := p.Named[name]
	if !ok {
		return value.Value{}, &ParseError{Reason: "missing named parameter :" + name}
	}
	return v, nil
}

// Eval evaluates node against row, a row of table, where rowID is the row's
// own identifier (bound to the #ID pseudo-field). resolver is consulted
// whenever a path needs to step across a reference field into another
// table's row(s).
func Eval(node Node, table string, row value.Record, rowID value.Value, resolver Resolver, params Params) (bool, error) {
	posIdx := 0
	return evalNode(node, table, row, rowID, resolver, params, &posIdx)
}

func evalNode(node Node, table string, row value.Record, rowID value.Value, resolver Resolver, params Params, posIdx *int) (bool, error) {
	switch n := node.(type) {
	case *And:
		l, err := evalNode(n.Left, table, row, rowID, resolver, params, posIdx)
		if err != nil {
			return false, err
		}
		r, err := evalNode(n.Right, table, row, rowID, resolver, params, posIdx)
		if err != nil {
			return false, err
		}
		return l && r, nil
	case *Or:
		l, err := evalNode(n.Left, table, row, rowID, resolver, params, posIdx)
		if err != nil {
			return false, err
		}
		r, err := evalNode(n.Right, table, row, rowID, resolver, params, posIdx)
		if err != nil {
			return false, err
		}
		return l || r, nil
	case *Group:
		return evalNode(n.Inner, table, row, rowID, resolver, params, posIdx)
	case *Compare:
		return evalCompare(n, table, row, rowID, resolver, params, posIdx)
	default:
		return false, &ParseError{Reason: "unknown node type"}
	}
}

func evalCompare(c *Compare, table string, row value.Record, rowID value.Value, resolver Resolver, params Params, posIdx *int) (bool, error) {
	lhs, err := walkPath(c.Path, table, row, rowID, resolver)
	if err != nil {
		return false, err
	}

	rhs, err := resolveValue(c.Value, params, posIdx)
	if err != nil {
		return false, err
	}

	// existential semantics: a dotted path through a to-many relationship
	// yields several candidate values; the comparison holds if it holds for
	// any one of them.
	for _, v := range lhs {
		ok, err := compareOne(v, c.Op, rhs)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func resolveValue(ve ValueExpr, params Params, posIdx *int) (value.Value, error) {
	switch ve.Kind {
	case ParamPositional:
		return params.next(posIdx)
	case ParamNamed:
		return params.byName(ve.Name)
	default:
		return ve.Literal, nil
	}
}

// frame is one candidate (table, record) the path traversal has reached.
type frame struct {
	table  string
	record value.Record
}

// walkPath resolves a dotted path starting at row (of table), crossing
// reference fields via resolver as needed. Only the final path segment's
// values are returned — more than one when an earlier segment fanned out
// across a to-many reference (IDList) or an embedded record list.
func walkPath(path Path, table string, row value.Record, rowID value.Value, resolver Resolver) ([]value.Value, error) {
	if path.IsPseudoID() {
		return []value.Value{rowID}, nil
	}

	frames := []frame{{table: table, record: row}}

	for i, seg := range path {
		last := i == len(path)-1
		var nextFrames []frame
		var finalValues []value.Value

		for _, fr := range frames {
			fv, ok := fr.record[seg]
			if !ok {
				return nil, &UnknownFieldError{Table: fr.table, Field: seg}
			}
			if last {
				finalValues = append(finalValues, fv)
				continue
			}

			switch fv.Kind() {
			case value.ID:
				if resolver == nil {
					return nil, &ParseError{Reason: "path crosses a reference but no resolver was supplied"}
				}
				targetTable, rec, ok, err := resolver.FetchRef(fr.table, seg, fv)
				if err != nil {
					return nil, err
				}
				if ok {
					nextFrames = append(nextFrames, frame{table: targetTable, record: rec})
				}
			case value.IDList:
				if resolver == nil {
					return nil, &ParseError{Reason: "path crosses a reference but no resolver was supplied"}
				}
				for _, id := range fv.IDs() {
					targetTable, rec, ok, err := resolver.FetchRef(fr.table, seg, value.NewID(id))
					if err != nil {
						return nil, err
					}
					if ok {
						nextFrames = append(nextFrames, frame{table: targetTable, record: rec})
					}
				}
			case value.RecordList:
				for _, rec := range fv.Records() {
					nextFrames = append(nextFrames, frame{table: fr.table, record: rec})
				}
			default:
				// scalar dead-end mid-path: this branch simply contributes no frames.
			}
		}

		if last {
			return finalValues, nil
		}
		frames = nextFrames
	}
	return nil, nil
}

func compareOne(v value.Value, op Operator, rhs value.Value) (bool, error) {
	switch op {
	case OpEq:
		return v.Equal(rhs), nil
	case OpNeq:
		return !v.Equal(rhs), nil
	case OpContains:
		return v.Contains(rhs), nil
	case OpIn:
		return rhs.Contains(v), nil
	case OpLt, OpLte, OpGt, OpGte:
		return compareOrdered(v, op, rhs)
	default:
		return false, &ParseError{Reason: "unsupported operator " + string(op)}
	}
}

func compareOrdered(v value.Value, op Operator, rhs value.Value) (bool, error) {
	cmp, err := order(v, rhs)
	if err != nil {
		return false, err
	}
	switch op {
	case OpLt:
		return cmp < 0, nil
	case OpLte:
		return cmp <= 0, nil
	case OpGt:
		return cmp > 0, nil
	case OpGte:
		return cmp >= 0, nil
	}
	return false, nil
}

// order returns -1/0/1 comparing v to rhs. Both operands must reduce to a
// comparable kind; mismatched kinds are a TypeMismatchError rather than a
// silent false, since an ordering comparison on incompatible types signals a
// schema/query mistake.
func order(v, rhs value.Value) (int, error) {
	if k := v.Kind(); (k == value.Int || k == value.Float) && rhs.Kind() != value.Int && rhs.Kind() != value.Float {
		return 0, &TypeMismatchError{Expected: "number", Got: rhs.Kind().String()}
	}
	switch v.Kind() {
	case value.Int:
		r := toFloat(rhs)
		switch {
		case float64(v.Int()) < r:
			return -1, nil
		case float64(v.Int()) > r:
			return 1, nil
		default:
			return 0, nil
		}
	case value.Float:
		r := toFloat(rhs)
		switch {
		case v.Float() < r:
			return -1, nil
		case v.Float() > r:
			return 1, nil
		default:
			return 0, nil
		}
	case value.Decimal:
		if rhs.Kind() != value.Decimal {
			return 0, &TypeMismatchError{Expected: "decimal", Got: rhs.Kind().String()}
		}
		return int(v.Decimal().Cmp(rhs.Decimal())), nil
	case value.Text:
		if rhs.Kind() != value.Text {
			return 0, &TypeMismatchError{Expected: "text", Got: rhs.Kind().String()}
		}
		return strings.Compare(v.Text(), rhs.Text()), nil
	case value.Timestamp:
		if rhs.Kind() != value.Timestamp {
			return 0, &TypeMismatchError{Expected: "timestamp", Got: rhs.Kind().String()}
		}
		switch {
		case v.Timestamp().Before(rhs.Timestamp()):
			return -1, nil
		case v.Timestamp().After(rhs.Timestamp()):
			return 1, nil
		default:
			return 0, nil
		}
	default:
		return 0, &TypeMismatchError{Expected: "orderable", Got: v.Kind().String()}
	}
}

func toFloat(v value.Value) float64 {
	switch v.Kind() {
	case value.Int:
		return float64(v.Int())
	case value.Float:
		return v.Float()
	default:
		return 0
	}
}
