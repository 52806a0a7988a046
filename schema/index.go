package schema

import (
	"slices"
	"strings"

	"github.com/syssam/flint/dialect/sql"
)

// An Index is a secondary index over an ordered set of columns. Index names
// are unique per table; an absent name is derived from the column set.
type Index struct {
	// Name of the index. Derived as <table>_<columns...>_key for unique
	// indexes and <table>_<columns...>_idx otherwise when left empty.
	Name string
	// Columns the index covers, in order.
	Columns []string
	// Unique makes the index a uniqueness constraint.
	Unique bool
}

// defaultName derives the index name from the table and column set.
func (i *Index) defaultName(table string) string {
	suffix := "_idx"
	if i.Unique {
		suffix = "_key"
	}
	return table + "_" + strings.Join(i.Columns, "_") + suffix
}

// equal reports whether two index definitions are interchangeable.
func (i *Index) equal(o *Index) bool {
	return i.Name == o.Name && i.Unique == o.Unique && slices.Equal(i.Columns, o.Columns)
}

// normalize validates the index against the table shape and derives the
// name when absent.
func (i *Index) normalize(t *Table) error {
	if len(i.Columns) == 0 {
		return NewValidationError(t.Name, "", "index has no columns")
	}
	for _, col := range i.Columns {
		if _, ok := t.Column(col); !ok {
			return NewValidationError(t.Name, col, "index references unknown column")
		}
	}
	if i.Name == "" {
		i.Name = i.defaultName(t.Name)
	}
	if !sql.ValidIdentifier(i.Name) {
		return NewValidationError(t.Name, "", "invalid index name "+i.Name)
	}
	return nil
}
