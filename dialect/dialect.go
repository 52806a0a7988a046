package dialect

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Engine names of the SQLite family.
const (
	// SQLite is the pure Go engine provided by modernc.org/sqlite.
	SQLite = "sqlite"
	// SQLite3 is the CGO engine provided by github.com/mattn/go-sqlite3.
	SQLite3 = "sqlite3"
)

// IsSQLite reports whether name identifies a SQLite-family engine.
// Wrapped driver names (e.g. "sqlite3_tracing") are matched by prefix.
func IsSQLite(name string) bool {
	return strings.HasPrefix(name, SQLite)
}

// ExecQuerier wraps the two base operations every driver and transaction
// must support. The args parameter is expected to be a []any, and v is the
// destination for results: *sql.Rows for Query, nil or *sql.Result for Exec.
type ExecQuerier interface {
	// Exec executes a statement that does not return rows.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a statement that returns rows.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the minimal interface for sharing a database handle between
// the schema, query and transaction layers.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	Tx(context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the engine name the driver was opened with.
	Dialect() string
}

// Tx is the transaction variant of Driver. Statements executed through it
// become visible to other connections only after Commit.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}

// NopTx returns a Tx whose Commit and Rollback are no-ops, backed by the
// given driver. It is used when an operation requires transaction semantics
// but already runs inside an outer transaction.
func NopTx(d Driver) Tx {
	return nopTx{d}
}

type nopTx struct {
	Driver
}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

// DebugDriver is a driver that logs all driver operations through slog.
type DebugDriver struct {
	Driver              // underlying driver.
	log    *slog.Logger // log function.
}

// Debug gets a driver and an optional logger and returns a new debugged
// driver that prints all outgoing statements. If no logger is given,
// slog.Default is used.
func Debug(d Driver, logger ...*slog.Logger) Driver {
	drv := &DebugDriver{Driver: d, log: slog.Default()}
	if len(logger) == 1 {
		drv.log = logger[0]
	}
	return drv
}

// Exec logs its params and calls the underlying driver Exec method.
func (d *DebugDriver) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Exec(ctx, query, args, v)
	d.log.LogAttrs(ctx, slog.LevelDebug, "driver.Exec",
		slog.String("query", query),
		slog.Any("args", args),
		slog.Duration("elapsed", time.Since(start)),
	)
	return err
}

// Query logs its params and calls the underlying driver Query method.
func (d *DebugDriver) Query(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Query(ctx, query, args, v)
	d.log.LogAttrs(ctx, slog.LevelDebug, "driver.Query",
		slog.String("query", query),
		slog.Any("args", args),
		slog.Duration("elapsed", time.Since(start)),
	)
	return err
}

// Tx starts and returns a transaction with logging capabilities.
func (d *DebugDriver) Tx(ctx context.Context) (Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	d.log.LogAttrs(ctx, slog.LevelDebug, "driver.Tx started")
	return &DebugTx{tx, ctx, d.log}, nil
}

// DebugTx is a transaction implementation that logs all transaction operations.
type DebugTx struct {
	Tx                 // underlying transaction.
	ctx context.Context // underlying transaction context.
	log *slog.Logger    // log function.
}

// Exec logs its params and calls the underlying transaction Exec method.
func (d *DebugTx) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Tx.Exec(ctx, query, args, v)
	d.log.LogAttrs(ctx, slog.LevelDebug, "tx.Exec",
		slog.String("query", query),
		slog.Any("args", args),
		slog.Duration("elapsed", time.Since(start)),
	)
	return err
}

// Query logs its params and calls the underlying transaction Query method.
func (d *DebugTx) Query(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Tx.Query(ctx, query, args, v)
	d.log.LogAttrs(ctx, slog.LevelDebug, "tx.Query",
		slog.String("query", query),
		slog.Any("args", args),
		slog.Duration("elapsed", time.Since(start)),
	)
	return err
}

// Commit logs this step and calls the underlying transaction Commit method.
func (d *DebugTx) Commit() error {
	err := d.Tx.Commit()
	d.log.LogAttrs(d.ctx, slog.LevelDebug, "tx.Commit")
	return err
}

// Rollback logs this step and calls the underlying transaction Rollback method.
func (d *DebugTx) Rollback() error {
	err := d.Tx.Rollback()
	d.log.LogAttrs(d.ctx, slog.LevelDebug, "tx.Rollback")
	return err
}
