package sql

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type codedError struct {
	code int
	msg  string
}

func (e *codedError) Error() string { return e.msg }
func (e *codedError) Code() int     { return e.code }

func TestConstraintClassification(t *testing.T) {
	t.Parallel()

	unique := errors.New("constraint failed: UNIQUE constraint failed: users.name (2067)")
	assert.True(t, IsConstraintError(unique))
	assert.True(t, IsUniqueConstraintError(unique))
	assert.False(t, IsNotNullConstraintError(unique))

	notnull := errors.New("NOT NULL constraint failed: users.name")
	assert.True(t, IsConstraintError(notnull))
	assert.True(t, IsNotNullConstraintError(notnull))
	assert.False(t, IsUniqueConstraintError(notnull))

	check := errors.New("CHECK constraint failed: age")
	assert.True(t, IsCheckConstraintError(check))

	fk := errors.New("FOREIGN KEY constraint failed")
	assert.True(t, IsForeignKeyConstraintError(fk))

	assert.False(t, IsConstraintError(nil))
	assert.False(t, IsConstraintError(errors.New("no such table: users")))
}

func TestConstraintClassificationByCode(t *testing.T) {
	t.Parallel()

	unique := &codedError{code: 2067, msg: "constraint violation"}
	assert.True(t, IsConstraintError(unique))
	assert.True(t, IsUniqueConstraintError(unique))

	pk := &codedError{code: 1555, msg: "constraint violation"}
	assert.True(t, IsUniqueConstraintError(pk))

	notnull := &codedError{code: 1299, msg: "constraint violation"}
	assert.True(t, IsNotNullConstraintError(notnull))
	assert.False(t, IsUniqueConstraintError(notnull))

	// Classification sees through fmt wrapping.
	wrapped := fmt.Errorf("dialect/sql: exec: %w", unique)
	assert.True(t, IsUniqueConstraintError(wrapped))
}

func TestConstraintMessage(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("dialect/sql: exec: %w",
		errors.New("UNIQUE constraint failed: users.name"))
	assert.Equal(t, "UNIQUE constraint failed: users.name", ConstraintMessage(err))
	assert.Equal(t, "", ConstraintMessage(nil))
}
