package sql

import (
	"errors"
	"strings"
)

// SQLite primary result codes for constraint violations. Extended codes
// keep the primary code in their low byte.
const (
	sqliteConstraint = 19

	sqliteConstraintCheck      = 275
	sqliteConstraintForeignKey = 787
	sqliteConstraintNotNull    = 1299
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

// errorCoder is implemented by engine errors that expose a numeric result
// code (modernc.org/sqlite).
type errorCoder interface {
	Code() int
}

// code extracts the engine result code from err, if it carries one.
func code(err error) (int, bool) {
	var e errorCoder
	if errors.As(err, &e) {
		return e.Code(), true
	}
	return 0, false
}

// IsConstraintError reports whether the error resulted from any database
// constraint violation.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if c, ok := code(err); ok && c&0xff == sqliteConstraint {
		return true
	}
	return strings.Contains(err.Error(), "constraint failed")
}

// IsUniqueConstraintError reports whether the error resulted from a
// uniqueness violation, including a primary-key collision.
func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if c, ok := code(err); ok {
		return c == sqliteConstraintUnique || c == sqliteConstraintPrimaryKey
	}
	return containsAny(err.Error(),
		"UNIQUE constraint failed",
		"PRIMARY KEY constraint failed",
	)
}

// IsNotNullConstraintError reports whether the error resulted from a
// not-null violation.
func IsNotNullConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if c, ok := code(err); ok {
		return c == sqliteConstraintNotNull
	}
	return strings.Contains(err.Error(), "NOT NULL constraint failed")
}

// IsCheckConstraintError reports whether the error resulted from a check
// violation.
func IsCheckConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if c, ok := code(err); ok {
		return c == sqliteConstraintCheck
	}
	return strings.Contains(err.Error(), "CHECK constraint failed")
}

// IsForeignKeyConstraintError reports whether the error resulted from a
// foreign-key violation.
func IsForeignKeyConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if c, ok := code(err); ok {
		return c == sqliteConstraintForeignKey
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// ConstraintMessage extracts the engine's constraint description, e.g.
// "UNIQUE constraint failed: users.name", from the error text.
func ConstraintMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if i := strings.Index(msg, "constraint failed"); i >= 0 {
		// Back up to the start of the constraint kind.
		start := strings.LastIndex(msg[:i], ": ")
		if start >= 0 {
			return msg[start+2:]
		}
		return msg
	}
	return msg
}

func containsAny(s string, substrs ...string) bool {
	for _, substr := range substrs {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}
