package condition

import "fmt"

// ParseError reports a lexer/parser failure in the embedded predicate
// language. It is distinct from, but carries the
// same information as, the root package's ConditionParseError — kept local
// so this package has no dependency on the root package (which itself
// depends on condition.Query for the Adapter contract).
type ParseError struct {
	Query  string
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("condition parse error at %d in %q: %s", e.Offset, e.Query, e.Reason)
}

// UnknownFieldError reports a path segment that does not resolve to a
// declared field on the schema in scope.
type UnknownFieldError struct {
	Table string
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field: %s.%s", e.Table, e.Field)
}

// TypeMismatchError reports a comparison between incompatible value kinds.
type TypeMismatchError struct {
	Field    string
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch on %s: expected %s, got %s", e.Field, e.Expected, e.Got)
}
