package schema

import (
	"github.com/syssam/flint/dialect/sql"
)

// Queries returns the DDL statements that apply the planned changes, in
// execution order: CREATE TABLE first, then ALTER TABLE ADD COLUMN, then
// CREATE INDEX. All statements are idempotent (IF NOT EXISTS) so replaying
// them against a database that already has the shape is harmless.
func (ch *Changes) Queries() []sql.Querier {
	var queries []sql.Querier
	if ch.CreateTable {
		queries = append(queries, createTable(ch.Table))
	}
	for i := range ch.AddColumns {
		queries = append(queries, sql.AlterTable(ch.Table.Name).
			AddColumn(columnDef(ch.Table, &ch.AddColumns[i])))
	}
	for i := range ch.AddIndexes {
		idx := &ch.AddIndexes[i]
		b := sql.CreateIndex(idx.Name).IfNotExists().
			Table(ch.Table.Name).
			Columns(idx.Columns...)
		if idx.Unique {
			b.Unique()
		}
		queries = append(queries, b)
	}
	return queries
}

func createTable(t *Table) *sql.CreateTableBuilder {
	b := sql.CreateTable(t.Name).IfNotExists()
	pk := t.PrimaryKey()
	for i := range t.Columns {
		b.Columns(columnDef(t, &t.Columns[i]))
	}
	// A single-column key is declared on the column itself; composite
	// keys need the table-level clause.
	if len(pk) > 1 {
		b.PrimaryKey(pk...)
	}
	return b
}

func columnDef(t *Table, c *Column) *sql.ColumnBuilder {
	b := sql.Column(c.Name).Type(c.Type.ColumnType())
	single := len(t.PrimaryKey()) == 1
	switch {
	case c.AutoIncrement:
		b.Attr("PRIMARY KEY AUTOINCREMENT")
	case c.PrimaryKey && single:
		b.Attr("PRIMARY KEY")
	}
	if c.NotNull && !c.AutoIncrement {
		b.Attr("NOT NULL")
	}
	if c.HasDefault() {
		// Validate already proved the default coerces.
		v, _ := EncodeValue(c.Type, c.Default)
		b.Default(v)
	}
	return b
}
