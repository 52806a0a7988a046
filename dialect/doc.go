// Package dialect defines the driver abstraction flint executes through.
//
// The package declares the interfaces shared by every execution layer:
//
//	type ExecQuerier interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	}
//
//	type Driver interface {
//	    ExecQuerier
//	    Tx(context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
//	type Tx interface {
//	    ExecQuerier
//	    Commit() error
//	    Rollback() error
//	}
//
// Two SQLite-family engines are supported, identified by constants:
//
//	dialect.SQLite  = "sqlite"  // modernc.org/sqlite (pure Go, default)
//	dialect.SQLite3 = "sqlite3" // mattn/go-sqlite3 (CGO, -tags cgo_sqlite)
//
// Opening a database goes through the dialect/sql sub-package:
//
//	drv, err := sql.Open(dialect.SQLite, "file:app.db?_pragma=journal_mode(WAL)")
//
// Any Driver can be wrapped with Debug to log outgoing statements:
//
//	drv = dialect.Debug(drv, slog.Default())
package dialect
