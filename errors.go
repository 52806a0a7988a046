package flint

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for common operations.
var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("flint: row not found")

	// ErrTxDone is returned when an operation is attempted on a transaction
	// that has already been committed or rolled back.
	ErrTxDone = errors.New("flint: transaction has already been committed or rolled back")

	// ErrNoTx is returned when Commit or Rollback is called on a logical
	// database with no active transaction.
	ErrNoTx = errors.New("flint: no active transaction")

	// ErrClosed is returned when an operation is attempted on a closed client.
	ErrClosed = errors.New("flint: client is closed")
)

// NotFoundError represents an error when a row is not found.
type NotFoundError struct {
	table string
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("flint: no row found in %q", e.table)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Table returns the table the lookup ran against.
func (e *NotFoundError) Table() string {
	return e.table
}

// NewNotFoundError returns a new NotFoundError for the given table.
func NewNotFoundError(table string) *NotFoundError {
	return &NotFoundError{table: table}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// ConstraintError represents a database constraint violation surfaced from
// the engine: a unique, not-null, check or foreign-key failure.
type ConstraintError struct {
	table string
	msg   string
	wrap  error
}

// Error returns the error string.
func (e *ConstraintError) Error() string {
	if e.table != "" {
		return fmt.Sprintf("flint: constraint failed on %q: %s", e.table, e.msg)
	}
	return fmt.Sprintf("flint: constraint failed: %s", e.msg)
}

// Unwrap returns the underlying engine error.
func (e *ConstraintError) Unwrap() error {
	return e.wrap
}

// Table returns the table the violation was reported for, if known.
func (e *ConstraintError) Table() string {
	return e.table
}

// NewConstraintError returns a new ConstraintError wrapping the engine error.
func NewConstraintError(table, msg string, wrap error) *ConstraintError {
	return &ConstraintError{table: table, msg: msg, wrap: wrap}
}

// IsConstraintError returns true if the error is a ConstraintError.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConstraintError
	return errors.As(err, &e)
}

// ReadOnlyError is returned when a mutating operation is attempted on a
// logical database opened read-only. The statement never reaches the engine.
type ReadOnlyError struct {
	Database string // Logical database name
	Op       string // Operation that was rejected
}

// Error returns the error string.
func (e *ReadOnlyError) Error() string {
	return fmt.Sprintf("flint: database %q is read-only, %s rejected", e.Database, e.Op)
}

// NewReadOnlyError returns a new ReadOnlyError.
func NewReadOnlyError(database, op string) *ReadOnlyError {
	return &ReadOnlyError{Database: database, Op: op}
}

// IsReadOnly returns true if the error is a ReadOnlyError.
func IsReadOnly(err error) bool {
	if err == nil {
		return false
	}
	var e *ReadOnlyError
	return errors.As(err, &e)
}

// DatabaseNotFoundError is returned when a logical database is opened with
// MustExist and its file is absent.
type DatabaseNotFoundError struct {
	Database string // Logical database name
	Path     string // Resolved file path
}

// Error returns the error string.
func (e *DatabaseNotFoundError) Error() string {
	return fmt.Sprintf("flint: database %q not found at %s", e.Database, e.Path)
}

// NewDatabaseNotFoundError returns a new DatabaseNotFoundError.
func NewDatabaseNotFoundError(database, path string) *DatabaseNotFoundError {
	return &DatabaseNotFoundError{Database: database, Path: path}
}

// IsDatabaseNotFound returns true if the error is a DatabaseNotFoundError.
func IsDatabaseNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *DatabaseNotFoundError
	return errors.As(err, &e)
}

// TxError wraps an error that occurred during a transaction operation.
type TxError struct {
	Op  string // Operation (e.g., "begin", "commit", "rollback")
	Err error  // Underlying error
}

// Error returns the error string.
func (e *TxError) Error() string {
	return fmt.Sprintf("flint: transaction %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *TxError) Unwrap() error {
	return e.Err
}

// NewTxError returns a new TxError.
func NewTxError(op string, err error) *TxError {
	return &TxError{Op: op, Err: err}
}

// IsTxError returns true if the error is a TxError.
func IsTxError(err error) bool {
	if err == nil {
		return false
	}
	var e *TxError
	return errors.As(err, &e)
}

// RollbackError wraps a rollback failure together with the error that
// triggered the rollback, so neither is lost.
type RollbackError struct {
	Err      error // Original error that triggered rollback
	Rollback error // Error returned by the rollback itself
}

// Error returns the error string.
func (e *RollbackError) Error() string {
	return fmt.Sprintf("flint: %v: rolling back transaction: %v", e.Err, e.Rollback)
}

// Unwrap returns the original error that triggered the rollback.
func (e *RollbackError) Unwrap() error {
	return e.Err
}
