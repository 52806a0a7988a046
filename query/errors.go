package query

import (
	"errors"
	"fmt"

	"github.com/syssam/flint/schema"
)

// ValidationError represents a malformed descriptor: an unknown operator
// key, an empty required operand, a missing required column, or an
// unscoped bulk mutation.
type ValidationError struct {
	Column string // Column the descriptor entry refers to, if any
	Op     string // Offending operator key, if any
	Reason string // What the descriptor violates
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	switch {
	case e.Column != "" && e.Op != "":
		return fmt.Sprintf("query: column %q, operator %q: %s", e.Column, e.Op, e.Reason)
	case e.Column != "":
		return fmt.Sprintf("query: column %q: %s", e.Column, e.Reason)
	default:
		return "query: " + e.Reason
	}
}

// NewValidationError returns a new ValidationError.
func NewValidationError(column, op, reason string) *ValidationError {
	return &ValidationError{Column: column, Op: op, Reason: reason}
}

// UnknownColumnError represents a descriptor referencing a column that
// does not exist in the table schema. It is a ValidationError specialization
// and matches IsValidationError.
type UnknownColumnError struct {
	Table  string // Table the descriptor compiled against
	Column string // Referenced column
}

// Error returns the error string.
func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("query: unknown column %q in table %q", e.Column, e.Table)
}

// NewUnknownColumnError returns a new UnknownColumnError.
func NewUnknownColumnError(table, column string) *UnknownColumnError {
	return &UnknownColumnError{Table: table, Column: column}
}

// IsUnknownColumn returns true if the error is an UnknownColumnError.
func IsUnknownColumn(err error) bool {
	if err == nil {
		return false
	}
	var e *UnknownColumnError
	return errors.As(err, &e)
}

// IsValidationError returns true if the error is a ValidationError or one
// of its specializations.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var ve *ValidationError
	var uc *UnknownColumnError
	return errors.As(err, &ve) || errors.As(err, &uc)
}

// UnsupportedOperatorError represents a well-formed operator applied to a
// column type it cannot serve: ordering or pattern comparisons over
// serialized JSON, Object or Array columns are not a promised semantic.
type UnsupportedOperatorError struct {
	Column string          // Column the operator was applied to
	Op     string          // Operator key
	Type   schema.DataType // Declared column type
}

// Error returns the error string.
func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("query: operator %q is not supported on %s column %q", e.Op, e.Type, e.Column)
}

// NewUnsupportedOperatorError returns a new UnsupportedOperatorError.
func NewUnsupportedOperatorError(column, op string, t schema.DataType) *UnsupportedOperatorError {
	return &UnsupportedOperatorError{Column: column, Op: op, Type: t}
}

// IsUnsupportedOperator returns true if the error is an UnsupportedOperatorError.
func IsUnsupportedOperator(err error) bool {
	if err == nil {
		return false
	}
	var e *UnsupportedOperatorError
	return errors.As(err, &e)
}
