package condition

import (
	"strings"
	"time"

	"github.com/jinzhu/now"

	"github.com/estore/estore/value"
)

// Parse compiles query text into an AST node.
// Binary && / || are left-associative with no precedence distinction beyond
// explicit parentheses, matching the flat "group := expr (('&&'|'||') expr)*"
// production literally.
func Parse(text string) (Node, error) {
	toks, err := lex(text)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, src: text}
	node, err := p.parseGroup()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, &ParseError{Query: text, Offset: p.peek().offset, Reason: "trailing input"}
	}
	return node, nil
}

type parser struct {
	toks []token
	pos  int
	src  string
}

func (p *parser) peek() token { return p.toks[p.pos] }
func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) parseGroup() (Node, error) {
	left, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().kind {
		case tokAnd:
			p.advance()
			right, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			left = &And{Left: left, Right: right}
		case tokOr:
			p.advance()
			right, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			left = &Or{Left: left, Right: right}
		default:
			return left, nil
		}
	}
}

func (p *parser) parseExpr() (Node, error) {
	if p.peek().kind == tokLParen {
		p.advance()
		inner, err := p.parseGroup()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, &ParseError{Query: p.src, Offset: p.peek().offset, Reason: "expected )"}
		}
		p.advance()
		return &Group{Inner: inner}, nil
	}

	path, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	op, err := p.parseOp()
	if err != nil {
		return nil, err
	}
	val, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return &Compare{Path: path, Op: op, Value: val}, nil
}

func (p *parser) parsePath() (Path, error) {
	t := p.peek()
	if t.kind != tokIdent {
		return nil, &ParseError{Query: p.src, Offset: t.offset, Reason: "expected field path"}
	}
	p.advance()
	path := Path{t.text}
	for p.peek().kind == tokDot {
		p.advance()
		seg := p.peek()
		if seg.kind != tokIdent {
			return nil, &ParseError{Query: p.src, Offset: seg.offset, Reason: "expected identifier after ."}
		}
		p.advance()
		path = append(path, seg.text)
	}
	return path, nil
}

func (p *parser) parseOp() (Operator, error) {
	t := p.peek()
	switch t.kind {
	case tokOp:
		p.advance()
		return Operator(t.text), nil
	case tokIn:
		p.advance()
		return OpIn, nil
	default:
		return "", &ParseError{Query: p.src, Offset: t.offset, Reason: "expected comparison operator"}
	}
}

func (p *parser) parseValue() (ValueExpr, error) {
	t := p.peek()
	switch t.kind {
	case tokPositional:
		p.advance()
		return ValueExpr{Kind: ParamPositional}, nil
	case tokNamed:
		p.advance()
		return ValueExpr{Kind: ParamNamed, Name: t.text}, nil
	case tokString:
		p.advance()
		if ts, ok := tryParseTimestamp(t.text); ok {
			return ValueExpr{Kind: ParamLiteral, Literal: value.NewTimestamp(ts)}, nil
		}
		return ValueExpr{Kind: ParamLiteral, Literal: value.NewText(t.text)}, nil
	case tokNumber:
		p.advance()
		if i, f, isInt := parseNumberLiteral(t.text); isInt {
			_ = f
			if strings.Contains(t.text, ".") {
				return ValueExpr{Kind: ParamLiteral, Literal: value.NewFloat(f)}, nil
			}
			return ValueExpr{Kind: ParamLiteral, Literal: value.NewInt(i)}, nil
		}
		_, f, ok := parseNumberLiteral(t.text)
		if !ok {
			return ValueExpr{}, &ParseError{Query: p.src, Offset: t.offset, Reason: "invalid number literal"}
		}
		return ValueExpr{Kind: ParamLiteral, Literal: value.NewFloat(f)}, nil
	case tokIdent:
		p.advance()
		switch t.text {
		case "true":
			return ValueExpr{Kind: ParamLiteral, Literal: value.NewBool(true)}, nil
		case "false":
			return ValueExpr{Kind: ParamLiteral, Literal: value.NewBool(false)}, nil
		case "null":
			return ValueExpr{Kind: ParamLiteral, Literal: value.NewNull()}, nil
		default:
			return ValueExpr{Kind: ParamLiteral, Literal: value.NewText(t.text)}, nil
		}
	default:
		return ValueExpr{}, &ParseError{Query: p.src, Offset: t.offset, Reason: "expected value"}
	}
}

// tryParseTimestamp uses github.com/jinzhu/now to accept the same flexible
// date/time literal forms gorm's ecosystem relies on for scanning
// timestamps, so a condition like `created_at > '2024-01-01'` needs no
// caller-side formatting.
func tryParseTimestamp(s string) (time.Time, bool) {
	if len(s) < 8 {
		return time.Time{}, false
	}
	t, err := now.Parse(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
