package flint

import (
	"context"
	"errors"
	"fmt"

	"github.com/syssam/flint/dialect"
)

// txState tracks the lifecycle of one transaction stack.
type txState uint8

const (
	txActive txState = iota
	txCommitted
	txRolledBack
)

// txStack is the frame stack of one transaction on a logical database.
// The outermost frame is a real BEGIN; every nested frame is a savepoint,
// so an inner rollback undoes only the statements issued since the inner
// begin, and an inner commit defers durability to the outermost commit.
type txStack struct {
	tx    dialect.Tx
	depth int
	state txState
}

// Tx is a handle to one frame of a transaction. Frames close innermost
// first; statements issued against the logical database while any frame
// is open execute inside the transaction.
type Tx struct {
	db    *database
	depth int
	done  bool
}

func savepoint(depth int) string {
	return fmt.Sprintf("flint_sp_%d", depth)
}

// begin opens a transaction frame. The first frame starts an engine
// transaction; further frames join it through savepoints. Transactions
// never span logical databases.
func (d *database) begin(ctx context.Context) (*Tx, error) {
	d.txmu.Lock()
	defer d.txmu.Unlock()
	if d.tx == nil {
		dtx, err := d.drv.Tx(ctx)
		if err != nil {
			return nil, NewTxError("begin", err)
		}
		d.tx = &txStack{tx: dtx, depth: 1}
		return &Tx{db: d, depth: 1}, nil
	}
	d.tx.depth++
	depth := d.tx.depth
	if err := d.tx.tx.Exec(ctx, "SAVEPOINT "+savepoint(depth), []any{}, nil); err != nil {
		d.tx.depth--
		return nil, NewTxError("begin", err)
	}
	return &Tx{db: d, depth: depth}, nil
}

// conn returns the execution target for the next statement: the active
// transaction if one is open, the plain driver otherwise.
func (d *database) conn() dialect.ExecQuerier {
	d.txmu.Lock()
	defer d.txmu.Unlock()
	if d.tx != nil {
		return d.tx.tx
	}
	return d.drv
}

// inTx reports whether a transaction is currently open on the database.
func (d *database) inTx() bool {
	d.txmu.Lock()
	defer d.txmu.Unlock()
	return d.tx != nil
}

// abort rolls the whole transaction back after a statement failure, so no
// partial writes from the failing statement set stay observable. The
// original error is re-raised; a rollback failure is attached to it.
func (d *database) abort(orig error) error {
	d.txmu.Lock()
	defer d.txmu.Unlock()
	if d.tx == nil || d.tx.state != txActive {
		return orig
	}
	d.tx.state = txRolledBack
	tx := d.tx.tx
	d.tx = nil
	if err := tx.Rollback(); err != nil {
		return &RollbackError{Err: orig, Rollback: err}
	}
	return orig
}

// Commit closes the frame. An inner commit releases its savepoint and
// defers durability to the outermost frame; the outermost commit makes
// the whole transaction durable.
func (t *Tx) Commit() error {
	return t.finish(true)
}

// Rollback undoes the statements issued since the frame was opened. On
// an inner frame only that frame's statements are undone; the outer
// transaction stays active.
func (t *Tx) Rollback() error {
	return t.finish(false)
}

func (t *Tx) finish(commit bool) error {
	op := "rollback"
	if commit {
		op = "commit"
	}
	d := t.db
	d.txmu.Lock()
	defer d.txmu.Unlock()
	if t.done {
		return NewTxError(op, ErrTxDone)
	}
	t.done = true
	stack := d.tx
	if stack == nil || stack.state != txActive {
		return NewTxError(op, ErrTxDone)
	}
	if t.depth != stack.depth {
		return NewTxError(op, fmt.Errorf("frame %d closed out of order (innermost is %d)", t.depth, stack.depth))
	}
	// Inner frame: savepoint release or partial rollback.
	if stack.depth > 1 {
		stack.depth--
		sp := savepoint(t.depth)
		ctx := context.Background()
		if commit {
			if err := stack.tx.Exec(ctx, "RELEASE SAVEPOINT "+sp, []any{}, nil); err != nil {
				return NewTxError(op, err)
			}
			return nil
		}
		if err := stack.tx.Exec(ctx, "ROLLBACK TO SAVEPOINT "+sp, []any{}, nil); err != nil {
			return NewTxError(op, err)
		}
		// Releasing after the rollback discards the savepoint itself.
		if err := stack.tx.Exec(ctx, "RELEASE SAVEPOINT "+sp, []any{}, nil); err != nil {
			return NewTxError(op, err)
		}
		return nil
	}
	d.tx = nil
	if commit {
		stack.state = txCommitted
		if err := stack.tx.Commit(); err != nil {
			return NewTxError(op, err)
		}
		return nil
	}
	stack.state = txRolledBack
	if err := stack.tx.Rollback(); err != nil {
		return NewTxError(op, err)
	}
	return nil
}

// BeginTx opens a transaction frame on the named logical database. A
// frame begun while another is active joins it with savepoint semantics.
func (c *Client) BeginTx(ctx context.Context, db string) (*Tx, error) {
	d, err := c.pool.database(db)
	if err != nil {
		return nil, err
	}
	// A transaction by itself mutates nothing; read-only enforcement
	// happens per statement.
	return d.begin(ctx)
}

// Commit commits the innermost open frame on the named logical database.
func (c *Client) Commit(db string) error {
	return c.closeFrame(db, true)
}

// Rollback rolls back the innermost open frame on the named logical
// database.
func (c *Client) Rollback(db string) error {
	return c.closeFrame(db, false)
}

func (c *Client) closeFrame(db string, commit bool) error {
	op := "rollback"
	if commit {
		op = "commit"
	}
	d, err := c.pool.database(db)
	if err != nil {
		return err
	}
	d.txmu.Lock()
	stack := d.tx
	var depth int
	if stack != nil {
		depth = stack.depth
	}
	d.txmu.Unlock()
	if stack == nil {
		return NewTxError(op, ErrNoTx)
	}
	t := &Tx{db: d, depth: depth}
	return t.finish(commit)
}

// WithTx runs fn inside a transaction frame on the named logical database
// and commits it when fn returns nil. Any error from fn, or a panic,
// rolls the frame back and re-raises. Statement failures inside the
// transaction have already rolled back the whole stack by the time fn
// returns; the rollback here then is a no-op.
func (c *Client) WithTx(ctx context.Context, db string, fn func(ctx context.Context) error) error {
	tx, err := c.BeginTx(ctx, db)
	if err != nil {
		return err
	}
	defer func() {
		if v := recover(); v != nil {
			_ = tx.Rollback()
			panic(v)
		}
	}()
	if err := fn(ctx); err != nil {
		if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, ErrTxDone) {
			return &RollbackError{Err: err, Rollback: rerr}
		}
		return err
	}
	// Commit fails with ErrTxDone when a failed statement already rolled
	// the stack back and fn swallowed its error.
	return tx.Commit()
}
