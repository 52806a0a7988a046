// Package flint is a schema-aware data-access core for SQLite-family
// engines. It translates engine-neutral query descriptors (filters,
// aggregates, bulk mutations, index definitions) into parameterized SQL,
// validates every descriptor against the declared table schema before any
// statement reaches an engine, and executes with transactional atomicity
// across one or more named logical databases.
//
// A Client is the driver facade:
//
//	cfg := flint.DriverConfig{Databases: map[string]flint.ConnectionOptions{
//	    "app": {Path: "data/app.db"},
//	}}
//	client, err := flint.Connect(cfg)
//	...
//	err = client.Define(ctx, "app", &schema.Table{...})
//	rec, err := client.Insert(ctx, "app", "users", map[string]any{"name": "alice"})
//	rows, err := client.Select(ctx, "app", "users", query.Options{
//	    Where: query.Where{"name": query.Ops{"$like": "al%"}},
//	})
package flint

import (
	"context"
	"log/slog"
	"time"

	"github.com/syssam/flint/dialect/sql"
	"github.com/syssam/flint/query"
	"github.com/syssam/flint/schema"
)

// Client exposes schema, query and transaction operations against the
// configured logical databases. It is safe for concurrent use; every
// operation either returns a well-formed result or fails with exactly one
// typed error.
type Client struct {
	pool     *Pool
	log      *slog.Logger
	cache    Cache
	cacheTTL time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger verbose databases and slow-query reporting
// write to. Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithCache enables result-set caching for SELECT operations. Any
// mutation of a table invalidates every cached result for that table,
// and reads inside an open transaction bypass the cache entirely.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// Connect validates the configuration and returns a Client. Database
// handles open lazily on first use.
func Connect(cfg DriverConfig, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Client{log: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	c.pool = newPool(cfg, c.log)
	return c, nil
}

// Close closes every open database handle.
func (c *Client) Close() error {
	return c.pool.closeAll()
}

// Open opens the named logical database eagerly and takes a reference on
// its handle. Callers that Open must Release.
func (c *Client) Open(db string) error {
	return c.pool.acquire(db)
}

// Release drops a reference taken by Open; the handle closes when the
// last reference is released.
func (c *Client) Release(db string) error {
	return c.pool.release(db)
}

// Define registers a table definition on the named logical database and
// applies the DDL it requires. An identical redefinition is a no-op; a
// compatible one (new optional columns, new indexes) is applied
// additively; an incompatible one fails with schema.ConflictError without
// touching the database.
func (c *Client) Define(ctx context.Context, db string, t *schema.Table) error {
	d, err := c.pool.database(db)
	if err != nil {
		return err
	}
	ch, err := d.registry.Plan(t)
	if err != nil {
		return err
	}
	if ch.IsZero() {
		d.registry.Commit(ch)
		return nil
	}
	if err := d.writable("define " + t.Name); err != nil {
		return err
	}
	if err := c.applyDDL(ctx, db, d, ch); err != nil {
		return err
	}
	d.registry.Commit(ch)
	c.invalidate(ctx, db, t.Name)
	return nil
}

// Model defines a table derived from a model name: "BlogPost" becomes the
// table "blog_posts" and field names like "CreatedAt" become "created_at"
// columns. Index column references are renamed the same way so callers can
// declare everything in model terms.
func (c *Client) Model(ctx context.Context, db, name string, columns []schema.Column, indexes ...schema.Index) error {
	t := &schema.Table{
		Name:    schema.TableName(name),
		Columns: make([]schema.Column, len(columns)),
		Indexes: make([]schema.Index, len(indexes)),
	}
	for i, col := range columns {
		col.Name = schema.ColumnName(col.Name)
		t.Columns[i] = col
	}
	for i, idx := range indexes {
		cols := make([]string, len(idx.Columns))
		for j, col := range idx.Columns {
			cols[j] = schema.ColumnName(col)
		}
		idx.Columns = cols
		t.Indexes[i] = idx
	}
	return c.Define(ctx, db, t)
}

// CreateIndex creates an index on a defined table. Re-creating an index
// with the same name and shape is a no-op; reusing the name for a
// different shape fails with schema.IndexConflictError.
func (c *Client) CreateIndex(ctx context.Context, db, table string, idx schema.Index) error {
	d, err := c.pool.database(db)
	if err != nil {
		return err
	}
	ch, err := d.registry.PlanIndex(table, idx)
	if err != nil {
		return err
	}
	if ch.IsZero() {
		d.registry.Commit(ch)
		return nil
	}
	if err := d.writable("create index on " + table); err != nil {
		return err
	}
	if err := c.applyDDL(ctx, db, d, ch); err != nil {
		return err
	}
	d.registry.Commit(ch)
	return nil
}

// applyDDL runs the planned DDL statements atomically.
func (c *Client) applyDDL(ctx context.Context, db string, d *database, ch *schema.Changes) error {
	return c.WithTx(ctx, db, func(ctx context.Context) error {
		for _, q := range ch.Queries() {
			stmt, args := q.Query()
			if err := builderErr(q); err != nil {
				return err
			}
			if err := d.exec(ctx, stmt, args, nil); err != nil {
				return err
			}
		}
		return nil
	})
}

// Insert validates and stores one row. Required columns must be present,
// defaults fill absent optional columns, and an omitted autoincrement key
// is assigned by the engine and returned in the record.
func (c *Client) Insert(ctx context.Context, db, table string, values map[string]any) (Record, error) {
	d, err := c.pool.database(db)
	if err != nil {
		return nil, err
	}
	if err := d.writable("insert into " + table); err != nil {
		return nil, err
	}
	t, err := d.registry.Table(table)
	if err != nil {
		return nil, err
	}
	ins, stored, err := query.CompileInsert(t, values)
	if err != nil {
		return nil, err
	}
	stmt, args := ins.Query()
	if err := builderErr(ins); err != nil {
		return nil, err
	}
	var res sql.Result
	if err := d.exec(ctx, stmt, args, &res); err != nil {
		return nil, classifyConstraint(table, err)
	}
	if ac, ok := t.AutoIncrement(); ok {
		if _, given := stored[ac.Name]; !given {
			id, err := res.LastInsertId()
			if err != nil {
				return nil, err
			}
			stored[ac.Name] = id
		}
	}
	c.invalidate(ctx, db, table)
	return Record(stored), nil
}

// Select runs a filtered, ordered, paginated query and returns the
// matching rows in application form. Without an explicit OrderBy, row
// order is engine-native scan order and not stable across calls.
func (c *Client) Select(ctx context.Context, db, table string, opts query.Options) ([]Record, error) {
	d, err := c.pool.database(db)
	if err != nil {
		return nil, err
	}
	t, err := d.registry.Table(table)
	if err != nil {
		return nil, err
	}
	sel, err := query.CompileSelect(t, opts)
	if err != nil {
		return nil, err
	}
	stmt, args := sel.Query()
	if err := builderErr(sel); err != nil {
		return nil, err
	}
	// Rows observed while a transaction is open may include writes the
	// transaction later rolls back, and cached entries would hide the
	// transaction's own uncommitted writes. Skip the cache entirely until
	// the transaction stack closes.
	cacheable := !d.inTx()
	key := cacheKey(db, table, stmt, args)
	if cacheable {
		if records, ok := c.cached(ctx, key); ok {
			return records, nil
		}
	}
	var rows sql.Rows
	if err := d.query(ctx, stmt, args, &rows); err != nil {
		return nil, err
	}
	records, err := scanRecords(t, &rows)
	if err != nil {
		return nil, err
	}
	if cacheable {
		c.store(ctx, key, records)
	}
	return records, nil
}

// SelectOne returns the first matching row, or NotFoundError when
// nothing matches.
func (c *Client) SelectOne(ctx context.Context, db, table string, opts query.Options) (Record, error) {
	one := 1
	opts.Limit = &one
	records, err := c.Select(ctx, db, table, opts)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, NewNotFoundError(table)
	}
	return records[0], nil
}

// Count returns the number of rows matching the filter.
func (c *Client) Count(ctx context.Context, db, table string, w query.Where) (int64, error) {
	records, err := c.Aggregate(ctx, db, table, query.Aggregate{Fn: query.Count, Where: w})
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}
	switch n := records[0]["count"].(type) {
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	default:
		return 0, nil
	}
}

// Aggregate runs an aggregate query. The aggregate value is returned
// under the lowercase function name, next to any group-by columns.
func (c *Client) Aggregate(ctx context.Context, db, table string, agg query.Aggregate) ([]Record, error) {
	d, err := c.pool.database(db)
	if err != nil {
		return nil, err
	}
	t, err := d.registry.Table(table)
	if err != nil {
		return nil, err
	}
	sel, err := query.CompileAggregate(t, agg)
	if err != nil {
		return nil, err
	}
	stmt, args := sel.Query()
	if err := builderErr(sel); err != nil {
		return nil, err
	}
	var rows sql.Rows
	if err := d.query(ctx, stmt, args, &rows); err != nil {
		return nil, err
	}
	return scanRecords(t, &rows)
}

// Update applies a bulk update and returns the number of affected rows.
// An unscoped update requires the explicit AllowUnscoped opt-in.
func (c *Client) Update(ctx context.Context, db, table string, u query.BulkUpdate) (int64, error) {
	d, err := c.pool.database(db)
	if err != nil {
		return 0, err
	}
	if err := d.writable("update " + table); err != nil {
		return 0, err
	}
	t, err := d.registry.Table(table)
	if err != nil {
		return 0, err
	}
	upd, err := query.CompileUpdate(t, u)
	if err != nil {
		return 0, err
	}
	return c.mutate(ctx, db, d, table, upd)
}

// Delete removes the matching rows and returns the number of affected
// rows, with the same unscoped opt-in rule as Update.
func (c *Client) Delete(ctx context.Context, db, table string, del query.Delete) (int64, error) {
	d, err := c.pool.database(db)
	if err != nil {
		return 0, err
	}
	if err := d.writable("delete from " + table); err != nil {
		return 0, err
	}
	t, err := d.registry.Table(table)
	if err != nil {
		return 0, err
	}
	dl, err := query.CompileDelete(t, del)
	if err != nil {
		return 0, err
	}
	return c.mutate(ctx, db, d, table, dl)
}

func (c *Client) mutate(ctx context.Context, db string, d *database, table string, q sql.Querier) (int64, error) {
	stmt, args := q.Query()
	if err := builderErr(q); err != nil {
		return 0, err
	}
	var res sql.Result
	if err := d.exec(ctx, stmt, args, &res); err != nil {
		return 0, classifyConstraint(table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	c.invalidate(ctx, db, table)
	return affected, nil
}

// Metadata returns the driver capability and version metadata, including
// per-database handle information.
func (c *Client) Metadata() DriverMetadata {
	return c.pool.metadata()
}

// Stats returns the statement statistics of the named logical database.
func (c *Client) Stats(db string) (sql.StatsSnapshot, error) {
	d, err := c.pool.database(db)
	if err != nil {
		return sql.StatsSnapshot{}, err
	}
	return d.stats.Stats(), nil
}

// exec runs a statement through the current execution target. A failure
// while a transaction is active rolls the whole transaction back and
// re-raises the original error.
func (d *database) exec(ctx context.Context, stmt string, args []any, v any) error {
	if err := d.conn().Exec(ctx, stmt, args, v); err != nil {
		return d.abort(err)
	}
	return nil
}

// query runs a row-returning statement through the current execution
// target, with the same failure semantics as exec.
func (d *database) query(ctx context.Context, stmt string, args []any, v any) error {
	if err := d.conn().Query(ctx, stmt, args, v); err != nil {
		return d.abort(err)
	}
	return nil
}

// classifyConstraint converts engine-level constraint violations into
// typed ConstraintErrors; everything else passes through.
func classifyConstraint(table string, err error) error {
	if err == nil {
		return nil
	}
	if sql.IsConstraintError(err) {
		return NewConstraintError(table, sql.ConstraintMessage(err), err)
	}
	return err
}

// builderErr surfaces identifier and literal errors collected while a
// statement was built.
func builderErr(q sql.Querier) error {
	if b, ok := q.(interface{ Err() error }); ok {
		return b.Err()
	}
	return nil
}
