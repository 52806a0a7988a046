package flint_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/flint"
	"github.com/syssam/flint/query"
	"github.com/syssam/flint/schema"
)

const app = "app"

func newClient(t *testing.T, opts ...flint.Option) *flint.Client {
	t.Helper()
	cfg := flint.DriverConfig{Databases: map[string]flint.ConnectionOptions{
		app: {Path: filepath.Join(t.TempDir(), "app.db")},
	}}
	c, err := flint.Connect(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func usersTable() *schema.Table {
	return &schema.Table{
		Name: "users",
		Columns: []schema.Column{
			{Name: "id", Type: schema.TypeInteger, PrimaryKey: true, AutoIncrement: true},
			{Name: "name", Type: schema.TypeText, NotNull: true, Unique: true},
			{Name: "age", Type: schema.TypeInteger},
			{Name: "profile", Type: schema.TypeJSON},
		},
	}
}

func defineUsers(t *testing.T, c *flint.Client) {
	t.Helper()
	require.NoError(t, c.Define(context.Background(), app, usersTable()))
}

func TestInsertAssignsMonotonicKeys(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newClient(t)
	defineUsers(t, c)

	var last int64
	for _, name := range []string{"alice", "bob", "carol"} {
		rec, err := c.Insert(ctx, app, "users", map[string]any{"name": name, "age": 30})
		require.NoError(t, err)
		id, ok := rec["id"].(int64)
		require.True(t, ok)
		assert.Greater(t, id, last)
		last = id
		assert.Equal(t, name, rec["name"])
	}
}

func TestInsertAppliesDefaults(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newClient(t)
	tbl := usersTable()
	tbl.Columns = append(tbl.Columns, schema.Column{
		Name: "active", Type: schema.TypeBool, NotNull: true, Default: true,
	})
	require.NoError(t, c.Define(ctx, app, tbl))

	rec, err := c.Insert(ctx, app, "users", map[string]any{"name": "alice"})
	require.NoError(t, err)
	assert.Equal(t, true, rec["active"])
	assert.Nil(t, rec["age"])

	got, err := c.SelectOne(ctx, app, "users", query.Options{Where: query.Where{"name": "alice"}})
	require.NoError(t, err)
	assert.Equal(t, true, got["active"])
	assert.Nil(t, got["age"])
}

func TestInsertMissingRequiredColumn(t *testing.T) {
	t.Parallel()

	c := newClient(t)
	defineUsers(t, c)

	_, err := c.Insert(context.Background(), app, "users", map[string]any{"age": 30})
	require.Error(t, err)
	assert.True(t, query.IsValidationError(err))
}

func TestInsertDuplicateUnique(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newClient(t)
	defineUsers(t, c)

	_, err := c.Insert(ctx, app, "users", map[string]any{"name": "alice"})
	require.NoError(t, err)
	_, err = c.Insert(ctx, app, "users", map[string]any{"name": "alice"})
	require.Error(t, err)
	assert.True(t, flint.IsConstraintError(err))
}

func TestSelectFilters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newClient(t)
	defineUsers(t, c)
	for _, u := range []struct {
		name string
		age  int
	}{{"alice", 30}, {"alan", 41}, {"bob", 25}} {
		_, err := c.Insert(ctx, app, "users", map[string]any{"name": u.name, "age": u.age})
		require.NoError(t, err)
	}

	// Literal value is implicit equality.
	rows, err := c.Select(ctx, app, "users", query.Options{Where: query.Where{"name": "alice"}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(30), rows[0]["age"])

	// Pattern match.
	rows, err = c.Select(ctx, app, "users", query.Options{
		Where:   query.Where{"name": query.Ops{"$like": "al%"}},
		OrderBy: []query.Order{{Column: "name"}},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "alan", rows[0]["name"])
	assert.Equal(t, "alice", rows[1]["name"])

	// Membership over several operands.
	rows, err = c.Select(ctx, app, "users", query.Options{
		Where: query.Where{"age": query.Ops{"$in": []any{25, 30, 99}}},
	})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	// Range with ordering and pagination.
	limit, offset := 1, 1
	rows, err = c.Select(ctx, app, "users", query.Options{
		Where:   query.Where{"age": query.Ops{"$between": []any{20, 45}}},
		OrderBy: []query.Order{{Column: "age", Desc: true}},
		Limit:   &limit,
		Offset:  &offset,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "alice", rows[0]["name"])

	// Null check.
	rows, err = c.Select(ctx, app, "users", query.Options{
		Where: query.Where{"profile": query.Ops{"$isNull": true}},
	})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestSelectProjection(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newClient(t)
	defineUsers(t, c)
	_, err := c.Insert(ctx, app, "users", map[string]any{"name": "alice", "age": 30})
	require.NoError(t, err)

	rows, err := c.Select(ctx, app, "users", query.Options{Columns: []string{"name"}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, flint.Record{"name": "alice"}, rows[0])
}

func TestSelectOneNotFound(t *testing.T) {
	t.Parallel()

	c := newClient(t)
	defineUsers(t, c)

	_, err := c.SelectOne(context.Background(), app, "users", query.Options{
		Where: query.Where{"name": "ghost"},
	})
	require.Error(t, err)
	assert.True(t, flint.IsNotFound(err))
	assert.True(t, errors.Is(err, flint.ErrNotFound))
}

func TestSelectUndefinedTable(t *testing.T) {
	t.Parallel()

	c := newClient(t)
	defineUsers(t, c)

	_, err := c.Select(context.Background(), app, "ghosts", query.Options{})
	require.Error(t, err)
	assert.True(t, schema.IsValidationError(err))
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newClient(t)
	defineUsers(t, c)

	profile := map[string]any{
		"tags":  []any{"admin", "ops"},
		"score": 4.5,
		"meta":  map[string]any{"active": true, "note": nil},
	}
	_, err := c.Insert(ctx, app, "users", map[string]any{"name": "alice", "profile": profile})
	require.NoError(t, err)

	rec, err := c.SelectOne(ctx, app, "users", query.Options{Where: query.Where{"name": "alice"}})
	require.NoError(t, err)
	assert.Equal(t, profile, rec["profile"])

	// Serialized equality filters on the same encoded form.
	rows, err := c.Select(ctx, app, "users", query.Options{
		Where: query.Where{"profile": query.Ops{"$isNull": false}},
	})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestCountAndAggregate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newClient(t)
	defineUsers(t, c)
	for _, u := range []struct {
		name string
		age  int
	}{{"alice", 30}, {"bob", 20}, {"carol", 40}} {
		_, err := c.Insert(ctx, app, "users", map[string]any{"name": u.name, "age": u.age})
		require.NoError(t, err)
	}

	n, err := c.Count(ctx, app, "users", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = c.Count(ctx, app, "users", query.Where{"age": query.Ops{"$gte": 30}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	records, err := c.Aggregate(ctx, app, "users", query.Aggregate{Fn: query.Avg, Column: "age"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.InDelta(t, 30.0, records[0]["avg"], 0.01)

	records, err = c.Aggregate(ctx, app, "users", query.Aggregate{Fn: query.Max, Column: "age"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.EqualValues(t, 40, records[0]["max"])
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newClient(t)
	defineUsers(t, c)
	_, err := c.Insert(ctx, app, "users", map[string]any{"name": "alice", "age": 30})
	require.NoError(t, err)
	_, err = c.Insert(ctx, app, "users", map[string]any{"name": "bob", "age": 25})
	require.NoError(t, err)

	affected, err := c.Update(ctx, app, "users", query.BulkUpdate{
		Where: query.Where{"name": "alice"},
		Set:   map[string]any{"age": 31},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	rec, err := c.SelectOne(ctx, app, "users", query.Options{Where: query.Where{"name": "alice"}})
	require.NoError(t, err)
	assert.Equal(t, int64(31), rec["age"])

	// Unscoped requires the explicit opt-in.
	_, err = c.Update(ctx, app, "users", query.BulkUpdate{Set: map[string]any{"age": 0}})
	require.Error(t, err)
	assert.True(t, query.IsValidationError(err))

	affected, err = c.Update(ctx, app, "users", query.BulkUpdate{
		Set:           map[string]any{"age": 0},
		AllowUnscoped: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newClient(t)
	defineUsers(t, c)
	for _, name := range []string{"alice", "bob", "carol"} {
		_, err := c.Insert(ctx, app, "users", map[string]any{"name": name})
		require.NoError(t, err)
	}

	affected, err := c.Delete(ctx, app, "users", query.Delete{
		Where: query.Where{"name": query.Ops{"$in": []any{"alice", "bob"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	_, err = c.Delete(ctx, app, "users", query.Delete{})
	require.Error(t, err)
	assert.True(t, query.IsValidationError(err))

	affected, err = c.Delete(ctx, app, "users", query.Delete{AllowUnscoped: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
}

func TestDefineIdempotentAndAdditive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newClient(t)
	defineUsers(t, c)
	_, err := c.Insert(ctx, app, "users", map[string]any{"name": "alice"})
	require.NoError(t, err)

	// Identical redefinition is a no-op.
	require.NoError(t, c.Define(ctx, app, usersTable()))

	// Additive redefinition: new optional column, visible as nil on
	// existing rows.
	next := usersTable()
	next.Columns = append(next.Columns, schema.Column{Name: "bio", Type: schema.TypeText})
	require.NoError(t, c.Define(ctx, app, next))

	rec, err := c.SelectOne(ctx, app, "users", query.Options{Where: query.Where{"name": "alice"}})
	require.NoError(t, err)
	_, ok := rec["bio"]
	assert.True(t, ok)
	assert.Nil(t, rec["bio"])

	// Incompatible redefinition fails without touching anything.
	bad := usersTable()
	bad.Columns[2].Type = schema.TypeText
	err = c.Define(ctx, app, bad)
	require.Error(t, err)
	assert.True(t, schema.IsConflict(err))
}

func TestModelDerivesNames(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newClient(t)

	err := c.Model(ctx, app, "BlogPost", []schema.Column{
		{Name: "ID", Type: schema.TypeInteger, PrimaryKey: true, AutoIncrement: true},
		{Name: "Title", Type: schema.TypeText, NotNull: true},
		{Name: "CreatedAt", Type: schema.TypeDateTime},
	}, schema.Index{Columns: []string{"CreatedAt"}})
	require.NoError(t, err)

	rec, err := c.Insert(ctx, app, "blog_posts", map[string]any{
		"title":      "hello",
		"created_at": time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec["id"])

	rec, err = c.SelectOne(ctx, app, "blog_posts", query.Options{Where: query.Where{"title": "hello"}})
	require.NoError(t, err)
	assert.Equal(t, "hello", rec["title"])
}

func TestCreateIndex(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newClient(t)
	defineUsers(t, c)

	require.NoError(t, c.CreateIndex(ctx, app, "users", schema.Index{Columns: []string{"age"}}))
	// Same shape again is a no-op.
	require.NoError(t, c.CreateIndex(ctx, app, "users", schema.Index{Columns: []string{"age"}}))
	// Reusing the name for a different shape fails.
	err := c.CreateIndex(ctx, app, "users", schema.Index{
		Name: "users_age_idx", Columns: []string{"age"}, Unique: true,
	})
	require.Error(t, err)
	assert.True(t, schema.IsIndexConflict(err))
}

func TestReadOnlyDatabase(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "app.db")

	// Create the database with a writable client first.
	writer, err := flint.Connect(flint.DriverConfig{Databases: map[string]flint.ConnectionOptions{
		app: {Path: path},
	}})
	require.NoError(t, err)
	require.NoError(t, writer.Define(ctx, app, usersTable()))
	_, err = writer.Insert(ctx, app, "users", map[string]any{"name": "alice"})
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader, err := flint.Connect(flint.DriverConfig{Databases: map[string]flint.ConnectionOptions{
		app: {Path: path, ReadOnly: true},
	}})
	require.NoError(t, err)
	defer reader.Close()

	// A fresh registry plans a CREATE TABLE, which a read-only handle
	// rejects before any DDL runs.
	err = reader.Define(ctx, app, usersTable())
	require.Error(t, err)
	assert.True(t, flint.IsReadOnly(err))

	_, err = reader.Insert(ctx, app, "users", map[string]any{"name": "bob"})
	require.Error(t, err)
	assert.True(t, flint.IsReadOnly(err))

	_, err = reader.Update(ctx, app, "users", query.BulkUpdate{
		Where: query.Where{"name": "alice"}, Set: map[string]any{"age": 1},
	})
	require.Error(t, err)
	assert.True(t, flint.IsReadOnly(err))

	_, err = reader.Delete(ctx, app, "users", query.Delete{AllowUnscoped: true})
	require.Error(t, err)
	assert.True(t, flint.IsReadOnly(err))
}

func TestMustExist(t *testing.T) {
	t.Parallel()

	c, err := flint.Connect(flint.DriverConfig{Databases: map[string]flint.ConnectionOptions{
		app: {Path: filepath.Join(t.TempDir(), "missing.db"), MustExist: true},
	}})
	require.NoError(t, err)
	defer c.Close()

	err = c.Open(app)
	require.Error(t, err)
	assert.True(t, flint.IsDatabaseNotFound(err))
}

func TestInMemoryDatabase(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, err := flint.Connect(flint.DriverConfig{Databases: map[string]flint.ConnectionOptions{
		"scratch": {InMemory: true},
	}})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Define(ctx, "scratch", usersTable()))
	_, err = c.Insert(ctx, "scratch", "users", map[string]any{"name": "alice"})
	require.NoError(t, err)

	n, err := c.Count(ctx, "scratch", "users", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestUnconfiguredDatabase(t *testing.T) {
	t.Parallel()

	c := newClient(t)
	_, err := c.Select(context.Background(), "nope", "users", query.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestClosedClient(t *testing.T) {
	t.Parallel()

	c := newClient(t)
	defineUsers(t, c)
	require.NoError(t, c.Close())

	_, err := c.Select(context.Background(), app, "users", query.Options{})
	assert.ErrorIs(t, err, flint.ErrClosed)
}

func TestCachedSelects(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newClient(t, flint.WithCache(flint.NewMemoryCache(), time.Minute))
	defineUsers(t, c)
	_, err := c.Insert(ctx, app, "users", map[string]any{"name": "alice", "age": 30})
	require.NoError(t, err)

	opts := query.Options{OrderBy: []query.Order{{Column: "name"}}}
	rows, err := c.Select(ctx, app, "users", opts)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	before, err := c.Stats(app)
	require.NoError(t, err)

	// The identical query is served from cache, not the engine.
	rows, err = c.Select(ctx, app, "users", opts)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "alice", rows[0]["name"])

	after, err := c.Stats(app)
	require.NoError(t, err)
	assert.Equal(t, before.TotalQueries, after.TotalQueries)

	// A mutation invalidates and the next read sees it.
	_, err = c.Insert(ctx, app, "users", map[string]any{"name": "bob", "age": 25})
	require.NoError(t, err)
	rows, err = c.Select(ctx, app, "users", opts)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestCacheSkippedInsideTransaction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newClient(t, flint.WithCache(flint.NewMemoryCache(), time.Minute))
	defineUsers(t, c)

	tx, err := c.BeginTx(ctx, app)
	require.NoError(t, err)
	_, err = c.Insert(ctx, app, "users", map[string]any{"name": "ghost"})
	require.NoError(t, err)

	// The transaction sees its own uncommitted write.
	opts := query.Options{OrderBy: []query.Order{{Column: "name"}}}
	rows, err := c.Select(ctx, app, "users", opts)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ghost", rows[0]["name"])

	require.NoError(t, tx.Rollback())

	// The rolled-back write is gone: nothing read inside the transaction
	// entered the cache.
	rows, err = c.Select(ctx, app, "users", opts)
	require.NoError(t, err)
	assert.Empty(t, rows)

	// Caching resumes once the transaction stack is closed.
	before, err := c.Stats(app)
	require.NoError(t, err)
	rows, err = c.Select(ctx, app, "users", opts)
	require.NoError(t, err)
	assert.Empty(t, rows)
	after, err := c.Stats(app)
	require.NoError(t, err)
	assert.Equal(t, before.TotalQueries, after.TotalQueries)
}

func TestMetadata(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newClient(t)

	meta := c.Metadata()
	assert.Equal(t, flint.DriverName, meta.Name)
	assert.Equal(t, flint.DriverVersion, meta.Version)
	assert.Contains(t, meta.Capabilities, "sync")
	assert.Contains(t, meta.Capabilities, "async")
	require.Len(t, meta.Databases, 1)
	assert.Equal(t, app, meta.Databases[0].Name)
	assert.False(t, meta.Databases[0].Open)

	defineUsers(t, c)
	_, err := c.Insert(ctx, app, "users", map[string]any{"name": "alice"})
	require.NoError(t, err)

	meta = c.Metadata()
	require.Len(t, meta.Databases, 1)
	assert.True(t, meta.Databases[0].Open)
	assert.Contains(t, meta.Databases[0].Tables, "users")
}

func TestStats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newClient(t)
	defineUsers(t, c)
	_, err := c.Insert(ctx, app, "users", map[string]any{"name": "alice"})
	require.NoError(t, err)
	_, err = c.Select(ctx, app, "users", query.Options{})
	require.NoError(t, err)

	stats, err := c.Stats(app)
	require.NoError(t, err)
	assert.Greater(t, stats.TotalExecs, int64(0))
	assert.Greater(t, stats.TotalQueries, int64(0))
}

func TestOpenRelease(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newClient(t)
	require.NoError(t, c.Open(app))
	defineUsers(t, c)
	_, err := c.Insert(ctx, app, "users", map[string]any{"name": "alice"})
	require.NoError(t, err)
	require.NoError(t, c.Release(app))

	// Releasing an unopened name is harmless.
	require.NoError(t, c.Release(app))
}
