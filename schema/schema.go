package schema

import (
	"fmt"
	"reflect"

	"github.com/syssam/flint/dialect/sql"
)

// A DataType is the engine-neutral type of a column. Every type maps to a
// SQLite storage affinity; JSON, Object and Array values are stored as
// serialized text and round-trip through encode/decode without loss.
type DataType uint8

// Column data types.
const (
	TypeInvalid DataType = iota
	TypeInteger
	TypeReal
	TypeText
	TypeBlob
	TypeBool
	TypeDate
	TypeDateTime
	TypeJSON
	TypeObject
	TypeArray
	TypeNumber
)

var typeNames = [...]string{
	TypeInvalid:  "invalid",
	TypeInteger:  "integer",
	TypeReal:     "real",
	TypeText:     "text",
	TypeBlob:     "blob",
	TypeBool:     "bool",
	TypeDate:     "date",
	TypeDateTime: "datetime",
	TypeJSON:     "json",
	TypeObject:   "object",
	TypeArray:    "array",
	TypeNumber:   "number",
}

// String returns the lowercase name of the type.
func (t DataType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return typeNames[TypeInvalid]
}

// Valid reports whether t is a declared data type.
func (t DataType) Valid() bool {
	return t > TypeInvalid && int(t) < len(typeNames)
}

// ColumnType returns the SQLite column type the data type is declared with.
func (t DataType) ColumnType() string {
	switch t {
	case TypeInteger:
		return "INTEGER"
	case TypeReal, TypeNumber:
		return "REAL"
	case TypeBlob:
		return "BLOB"
	case TypeBool:
		return "BOOLEAN"
	case TypeDate:
		return "DATE"
	case TypeDateTime:
		return "DATETIME"
	default:
		// Text, and the serialized JSON family.
		return "TEXT"
	}
}

// Serialized reports whether values of this type are stored as serialized
// text. Serialized columns support only equality and null checks in filters.
func (t DataType) Serialized() bool {
	return t == TypeJSON || t == TypeObject || t == TypeArray
}

// ParseType returns the DataType named by s. Recognized synonyms:
// "string" for text and "float"/"double" for real.
func ParseType(s string) (DataType, error) {
	switch s {
	case "string", "varchar":
		return TypeText, nil
	case "float", "double":
		return TypeReal, nil
	case "boolean":
		return TypeBool, nil
	}
	for t, name := range typeNames {
		if DataType(t) != TypeInvalid && name == s {
			return DataType(t), nil
		}
	}
	return TypeInvalid, fmt.Errorf("schema: unknown data type %q", s)
}

// A Column is one column definition inside a Table.
type Column struct {
	// Name is the column name.
	Name string
	// Type is the engine-neutral data type.
	Type DataType
	// NotNull rejects NULL values. Implied by AutoIncrement.
	NotNull bool
	// Unique enforces per-column uniqueness through an implicit unique index.
	Unique bool
	// PrimaryKey marks the column as part of the primary key. When more
	// than one column is marked, uniqueness holds over the tuple.
	PrimaryKey bool
	// AutoIncrement lets the engine assign the value on insert. At most
	// one column per table, and it must be an integer primary key.
	AutoIncrement bool
	// Default is applied when an insert omits the column. Must coerce to
	// the column type.
	Default any
}

// HasDefault reports whether the column declares a default value.
func (c *Column) HasDefault() bool { return c.Default != nil }

// equal reports whether two column definitions are interchangeable.
func (c *Column) equal(o *Column) bool {
	return c.Name == o.Name &&
		c.Type == o.Type &&
		c.NotNull == o.NotNull &&
		c.Unique == o.Unique &&
		c.PrimaryKey == o.PrimaryKey &&
		c.AutoIncrement == o.AutoIncrement &&
		reflect.DeepEqual(c.Default, o.Default)
}

// A Table is the declared shape of one table: its ordered columns and
// secondary indexes.
type Table struct {
	// Name is the table name.
	Name string
	// Columns in declared order. Order is the default projection order.
	Columns []Column
	// Indexes declared on the table, beyond the implicit unique indexes
	// derived from Unique columns.
	Indexes []Index
}

// Column returns the definition of the named column.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// ColumnNames returns all column names in declared order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i := range t.Columns {
		names[i] = t.Columns[i].Name
	}
	return names
}

// PrimaryKey returns the names of all primary-key columns in declared order.
func (t *Table) PrimaryKey() []string {
	var pk []string
	for i := range t.Columns {
		if t.Columns[i].PrimaryKey {
			pk = append(pk, t.Columns[i].Name)
		}
	}
	return pk
}

// AutoIncrement returns the autoincrement column, if the table has one.
func (t *Table) AutoIncrement() (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].AutoIncrement {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// Validate checks the definition against the declared invariants and
// normalizes it in place (AutoIncrement raises NotNull, absent index names
// are derived). It must be called before the table is registered.
func (t *Table) Validate() error {
	if !sql.ValidIdentifier(t.Name) {
		return NewValidationError(t.Name, "", "invalid table name")
	}
	if len(t.Columns) == 0 {
		return NewValidationError(t.Name, "", "table has no columns")
	}
	seen := make(map[string]bool, len(t.Columns))
	autoinc := 0
	for i := range t.Columns {
		c := &t.Columns[i]
		if !sql.ValidIdentifier(c.Name) {
			return NewValidationError(t.Name, c.Name, "invalid column name")
		}
		if seen[c.Name] {
			return NewValidationError(t.Name, c.Name, "duplicate column")
		}
		seen[c.Name] = true
		if !c.Type.Valid() {
			return NewValidationError(t.Name, c.Name, "unknown data type")
		}
		if c.AutoIncrement {
			autoinc++
			if autoinc > 1 {
				return NewValidationError(t.Name, c.Name, "multiple autoincrement columns")
			}
			if !c.PrimaryKey {
				return NewValidationError(t.Name, c.Name, "autoincrement column must be a primary key")
			}
			if c.Type != TypeInteger {
				return NewValidationError(t.Name, c.Name, "autoincrement column must be an integer")
			}
			c.NotNull = true
		}
		if c.HasDefault() {
			if _, err := EncodeValue(c.Type, c.Default); err != nil {
				return NewValidationError(t.Name, c.Name,
					fmt.Sprintf("default value does not coerce to %s: %v", c.Type, err))
			}
		}
	}
	// An autoincrement column cannot share the key with other columns:
	// SQLite ties AUTOINCREMENT to a single INTEGER PRIMARY KEY.
	if autoinc == 1 && len(t.PrimaryKey()) > 1 {
		return NewValidationError(t.Name, "", "autoincrement is incompatible with a composite primary key")
	}
	names := make(map[string]*Index, len(t.Indexes))
	for i := range t.Indexes {
		idx := &t.Indexes[i]
		if err := idx.normalize(t); err != nil {
			return err
		}
		if prev, ok := names[idx.Name]; ok {
			if !prev.equal(idx) {
				return NewIndexConflictError(t.Name, idx.Name)
			}
			continue
		}
		names[idx.Name] = idx
	}
	return nil
}

// allIndexes returns the declared indexes plus one implicit unique index
// per Unique column, deduplicated by name.
func (t *Table) allIndexes() []Index {
	indexes := make([]Index, 0, len(t.Indexes))
	seen := make(map[string]bool, len(t.Indexes))
	for i := range t.Columns {
		c := &t.Columns[i]
		if !c.Unique {
			continue
		}
		idx := Index{Columns: []string{c.Name}, Unique: true}
		idx.Name = idx.defaultName(t.Name)
		if !seen[idx.Name] {
			seen[idx.Name] = true
			indexes = append(indexes, idx)
		}
	}
	for _, idx := range t.Indexes {
		if !seen[idx.Name] {
			seen[idx.Name] = true
			indexes = append(indexes, idx)
		}
	}
	return indexes
}

// clone returns a deep copy the registry can own independently of the
// caller's definition.
func (t *Table) clone() *Table {
	ct := &Table{Name: t.Name}
	ct.Columns = append([]Column(nil), t.Columns...)
	for _, idx := range t.Indexes {
		cidx := idx
		cidx.Columns = append([]string(nil), idx.Columns...)
		ct.Indexes = append(ct.Indexes, cidx)
	}
	return ct
}
