// Package sql provides the SQL building primitives and the database/sql
// adapter flint runs on.
//
// This package is the foundation for generating and executing statements
// against the SQLite-family engines. It provides a fluent API for
// constructing parameterized SQL: operand values are always bound, never
// interpolated into statement text.
//
// # Builder Types
//
// The package provides specialized builders for different SQL operations:
//
//   - Builder: low-level SQL string builder with identifier quoting
//   - Selector: SELECT builder with predicates, grouping and pagination
//   - InsertBuilder: INSERT statement builder with RETURNING support
//   - UpdateBuilder: UPDATE statement builder with SET and WHERE clauses
//   - DeleteBuilder: DELETE statement builder with WHERE predicates
//   - CreateTableBuilder, CreateIndexBuilder, AlterTableBuilder: DDL builders
//
// # Predicates
//
// Predicate functions compose into parameterized WHERE fragments:
//
//	// Equality
//	sql.EQ("name", "john")           // `name` = ?
//	sql.NEQ("status", "deleted")     // `status` <> ?
//
//	// Comparison
//	sql.GT("age", 18)                // `age` > ?
//	sql.LTE("price", 100.0)          // `price` <= ?
//
//	// Membership and ranges
//	sql.In("status", "active", "pending")  // `status` IN (?, ?)
//	sql.NotIn("id", 1, 2, 3)               // `id` NOT IN (?, ?, ?)
//	sql.Between("age", 18, 65)             // `age` BETWEEN ? AND ?
//
//	// Pattern matching. The operand is passed through verbatim:
//	// escaping % and _ is the caller's responsibility.
//	sql.Like("name", "al%")          // `name` LIKE ?
//
//	// NULL checks
//	sql.IsNull("deleted_at")         // `deleted_at` IS NULL
//	sql.NotNull("email")             // `email` IS NOT NULL
//
//	// Composition
//	sql.And(sql.GT("age", 18), sql.Like("name", "a%"))
//	sql.Or(sql.IsNull("email"), sql.EQ("email", ""))
//	sql.Not(sql.In("id", 1, 2))
//
// # Pagination
//
// LIMIT and OFFSET are bound as parameters like any other operand:
//
//	sql.Select("*").From(sql.Table("users")).Offset(20).Limit(10)
//
// # Execution
//
// Statements run through the Driver returned by Open or OpenDB:
//
//	drv, err := sql.Open(dialect.SQLite, "file:app.db")
//	query, args := sql.Select("id", "name").From(sql.Table("users")).Query()
//	var rows sql.Rows
//	err = drv.Query(ctx, query, args, &rows)
package sql
