package estore

import (
	"errors"
	"fmt"
)

// Sentinel errors, kept flat the way gorm's own errors.go does, for callers
// that only need to branch on identity via errors.Is.
var (
	ErrRecordNotFound      = errors.New("record not found")
	ErrInvalidTransaction  = errors.New("no valid transaction")
	ErrNestedTransaction   = errors.New("transaction already executing on this coordinator")
	ErrTransactionAborted  = errors.New("transaction aborted")
	ErrUnknownTable        = errors.New("unknown table")
	ErrDeleteConstraint    = errors.New("delete blocked by foreign key reference")
	ErrConditionParse      = errors.New("condition parse error")
	ErrFieldNotFound       = errors.New("field not found")
	ErrTypeMismatch        = errors.New("type mismatch")
	ErrPoolTimeout         = errors.New("pool acquire timed out")
	ErrFetchFailed         = errors.New("fetch hook failed")
	ErrStoreNotFoundInContext = errors.New("store not found in context")
)

// FieldInvalidKind enumerates the reasons a field value can be rejected on
// store.
type FieldInvalidKind string

const (
	KindUnique   FieldInvalidKind = "unique"
	KindRequired FieldInvalidKind = "required"
	KindRegexp   FieldInvalidKind = "regexp"
	KindMaximum  FieldInvalidKind = "maximum"
	KindMinimum  FieldInvalidKind = "minimum"
	KindType     FieldInvalidKind = "type"
	KindRange    FieldInvalidKind = "range"
)

// FieldInvalidError carries the table/field/value context every field-level
// validation failure must surface.
type FieldInvalidError struct {
	Kind  FieldInvalidKind
	Table string
	Field string
	Value any
}

func (e *FieldInvalidError) Error() string {
	return fmt.Sprintf("field invalid: kind=%s table=%s field=%s value=%s", e.Kind, e.Table, e.Field, redact(e.Value))
}

func (e *FieldInvalidError) Is(target error) bool {
	_, ok := target.(*FieldInvalidError)
	return ok
}

// DeleteConstraintError reports that deleting a row would orphan a foreign
// key; the message format is:
// "source_table.#id.field -> #value".
type DeleteConstraintError struct {
	SourceTable string
	SourceID    any
	SourceField string
	TargetID    any
}

func (e *DeleteConstraintError) Error() string {
	return fmt.Sprintf("%s.#%v.%s -> #%v", e.SourceTable, e.SourceID, e.SourceField, e.TargetID)
}

func (e *DeleteConstraintError) Unwrap() error { return ErrDeleteConstraint }

// UnknownTableError names the table that has no registered schema and is not
// a relationship table.
type UnknownTableError struct {
	Table string
}

func (e *UnknownTableError) Error() string { return fmt.Sprintf("unknown table: %s", e.Table) }
func (e *UnknownTableError) Unwrap() error { return ErrUnknownTable }

// FieldNotFoundError names a field referenced by a row or a condition path
// that the schema does not declare.
type FieldNotFoundError struct {
	Table string
	Field string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field not found: %s.%s", e.Table, e.Field)
}
func (e *FieldNotFoundError) Unwrap() error { return ErrFieldNotFound }

// TypeMismatchError reports a parse- or assign-time type conflict.
type TypeMismatchError struct {
	Table    string
	Field    string
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: %s.%s expected %s, got %s", e.Table, e.Field, e.Expected, e.Got)
}
func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

// ConditionParseError reports a lexer/parser failure in the embedded
// predicate language, with a byte offset for diagnostics.
type ConditionParseError struct {
	Query  string
	Offset int
	Reason string
}

func (e *ConditionParseError) Error() string {
	return fmt.Sprintf("condition parse error at %d in %q: %s", e.Offset, e.Query, e.Reason)
}
func (e *ConditionParseError) Unwrap() error { return ErrConditionParse }

// TransactionAbortedError carries the caller-supplied abort reason.
type TransactionAbortedError struct {
	Reason string
}

func (e *TransactionAbortedError) Error() string {
	return fmt.Sprintf("transaction aborted: %s", e.Reason)
}
func (e *TransactionAbortedError) Unwrap() error { return ErrTransactionAborted }

// FetchFailedError wraps an error raised inside an EntityReference fetch
// hook; it never aborts the enclosing transaction.
type FetchFailedError struct {
	ID    any
	Type  string
	Cause error
}

func (e *FetchFailedError) Error() string {
	return fmt.Sprintf("fetch failed for %s#%v: %v", e.Type, e.ID, e.Cause)
}
func (e *FetchFailedError) Unwrap() error { return e.Cause }

// redact avoids echoing full blob/text contents into error messages; it
// keeps scalars as-is and truncates long representations.
func redact(v any) string {
	s := fmt.Sprint(v)
	const max = 64
	if len(s) > max {
		return s[:max] + "...(redacted)"
	}
	return s
}
