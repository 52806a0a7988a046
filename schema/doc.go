// Package schema holds the declared shape of every table: columns, data
// types, constraints and indexes. A Registry owns the authoritative
// definition per logical database, validates incoming definitions against
// the declared invariants, and computes the DDL changes (create table,
// add column, create index) needed to apply them.
//
// Declaring a table:
//
//	users := &schema.Table{
//	    Name: "users",
//	    Columns: []schema.Column{
//	        {Name: "id", Type: schema.TypeInteger, PrimaryKey: true, AutoIncrement: true},
//	        {Name: "name", Type: schema.TypeText, NotNull: true, Unique: true},
//	        {Name: "profile", Type: schema.TypeJSON},
//	    },
//	}
//
// Column order is significant: it is the declared projection order used
// when a query selects all columns.
package schema
