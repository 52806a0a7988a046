package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents an invalid table or column definition, or a
// reference to a table that was never defined.
type ValidationError struct {
	Table  string // Table the definition belongs to
	Column string // Column at fault, if any
	Reason string // What the definition violates
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("schema: table %q, column %q: %s", e.Table, e.Column, e.Reason)
	}
	return fmt.Sprintf("schema: table %q: %s", e.Table, e.Reason)
}

// NewValidationError returns a new ValidationError.
func NewValidationError(table, column, reason string) *ValidationError {
	return &ValidationError{Table: table, Column: column, Reason: reason}
}

// IsValidationError returns true if the error is a schema ValidationError.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e)
}

// ConflictError is returned when a table is redefined with a shape that is
// incompatible with its existing definition. Incompatible redefinitions are
// rejected rather than silently altering data.
type ConflictError struct {
	Table   string   // Table being redefined
	Reasons []string // Incompatibilities found
}

// Error returns the error string.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("schema: incompatible redefinition of table %q: %s",
		e.Table, strings.Join(e.Reasons, "; "))
}

// NewConflictError returns a new ConflictError.
func NewConflictError(table string, reasons ...string) *ConflictError {
	return &ConflictError{Table: table, Reasons: reasons}
}

// IsConflict returns true if the error is a ConflictError.
func IsConflict(err error) bool {
	if err == nil {
		return false
	}
	var e *ConflictError
	return errors.As(err, &e)
}

// IndexConflictError is returned when an index name is reused for a
// different column set or uniqueness on the same table.
type IndexConflictError struct {
	Table string // Table the index belongs to
	Index string // Conflicting index name
}

// Error returns the error string.
func (e *IndexConflictError) Error() string {
	return fmt.Sprintf("schema: index %q already defined on table %q with a different shape", e.Index, e.Table)
}

// NewIndexConflictError returns a new IndexConflictError.
func NewIndexConflictError(table, index string) *IndexConflictError {
	return &IndexConflictError{Table: table, Index: index}
}

// IsIndexConflict returns true if the error is an IndexConflictError.
func IsIndexConflict(err error) bool {
	if err == nil {
		return false
	}
	var e *IndexConflictError
	return errors.As(err, &e)
}
