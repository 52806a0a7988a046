package flint

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/flint/query"
	"github.com/syssam/flint/schema"
)

// A Promise is the deferred result of an asynchronous operation. The
// caller resumes through Await or the Done channel. Abandoning a Promise
// does not cancel the dispatched statement: once dispatched, the write
// completes and remains subject to its transaction's commit or rollback.
type Promise[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Await blocks until the operation completes or the context is done.
// A context cancellation abandons the result; it does not undo the
// underlying operation.
func (p *Promise[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case <-p.done:
		return p.val, p.err
	}
}

// Done returns a channel that closes when the operation completes.
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}

// Value returns the result. Valid only after Done is closed.
func (p *Promise[T]) Value() T {
	return p.val
}

// Err returns the operation error. Valid only after Done is closed.
func (p *Promise[T]) Err() error {
	return p.err
}

// AsyncClient is the asynchronous execution variant of a Client. Every
// operation dispatches onto a bounded worker pool and returns a Promise;
// descriptor validation and compilation stay synchronous inside the
// worker, sharing the same core as the synchronous client.
type AsyncClient struct {
	c *Client
	g *errgroup.Group
}

// AsyncOption configures an AsyncClient.
type AsyncOption func(*AsyncClient)

// WithWorkers bounds the number of concurrently executing operations.
// Dispatch blocks once the bound is reached. Default is 8.
func WithWorkers(n int) AsyncOption {
	return func(a *AsyncClient) { a.g.SetLimit(n) }
}

// Async returns the asynchronous variant of the client, sharing its pool,
// schema registries and cache.
func (c *Client) Async(opts ...AsyncOption) *AsyncClient {
	a := &AsyncClient{c: c, g: &errgroup.Group{}}
	a.g.SetLimit(8)
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Wait blocks until every dispatched operation has completed.
func (a *AsyncClient) Wait() error {
	return a.g.Wait()
}

// dispatch schedules fn on the pool and returns its Promise.
func dispatch[T any](a *AsyncClient, fn func() (T, error)) *Promise[T] {
	p := &Promise[T]{done: make(chan struct{})}
	a.g.Go(func() error {
		p.val, p.err = fn()
		close(p.done)
		return nil
	})
	return p
}

// Define asynchronously registers a table definition.
func (a *AsyncClient) Define(ctx context.Context, db string, t *schema.Table) *Promise[struct{}] {
	return dispatch(a, func() (struct{}, error) {
		return struct{}{}, a.c.Define(ctx, db, t)
	})
}

// CreateIndex asynchronously creates an index.
func (a *AsyncClient) CreateIndex(ctx context.Context, db, table string, idx schema.Index) *Promise[struct{}] {
	return dispatch(a, func() (struct{}, error) {
		return struct{}{}, a.c.CreateIndex(ctx, db, table, idx)
	})
}

// Insert asynchronously stores one row.
func (a *AsyncClient) Insert(ctx context.Context, db, table string, values map[string]any) *Promise[Record] {
	return dispatch(a, func() (Record, error) {
		return a.c.Insert(ctx, db, table, values)
	})
}

// Select asynchronously runs a query.
func (a *AsyncClient) Select(ctx context.Context, db, table string, opts query.Options) *Promise[[]Record] {
	return dispatch(a, func() ([]Record, error) {
		return a.c.Select(ctx, db, table, opts)
	})
}

// SelectOne asynchronously returns the first matching row.
func (a *AsyncClient) SelectOne(ctx context.Context, db, table string, opts query.Options) *Promise[Record] {
	return dispatch(a, func() (Record, error) {
		return a.c.SelectOne(ctx, db, table, opts)
	})
}

// Count asynchronously counts matching rows.
func (a *AsyncClient) Count(ctx context.Context, db, table string, w query.Where) *Promise[int64] {
	return dispatch(a, func() (int64, error) {
		return a.c.Count(ctx, db, table, w)
	})
}

// Aggregate asynchronously runs an aggregate query.
func (a *AsyncClient) Aggregate(ctx context.Context, db, table string, agg query.Aggregate) *Promise[[]Record] {
	return dispatch(a, func() ([]Record, error) {
		return a.c.Aggregate(ctx, db, table, agg)
	})
}

// Update asynchronously applies a bulk update.
func (a *AsyncClient) Update(ctx context.Context, db, table string, u query.BulkUpdate) *Promise[int64] {
	return dispatch(a, func() (int64, error) {
		return a.c.Update(ctx, db, table, u)
	})
}

// Delete asynchronously removes matching rows.
func (a *AsyncClient) Delete(ctx context.Context, db, table string, del query.Delete) *Promise[int64] {
	return dispatch(a, func() (int64, error) {
		return a.c.Delete(ctx, db, table, del)
	})
}
