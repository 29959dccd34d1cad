/*
Copyright 2025 eatmoreapple

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package augsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/augsql/augsql/augerr"
	"github.com/augsql/augsql/builder"
)

// txState is the state shared by every frame pushed for the same
// underlying *sql.Tx: database/sql has no native nested transaction, so
// nesting beneath the root frame is implemented with SAVEPOINT statements
// against that one *sql.Tx (§4.I "Nesting"). Grounded on session/tx's
// Atomic helper for the begin/commit/rollback shape, generalized from a
// single non-nestable transaction to a LIFO stack of frames.
type txState struct {
	tx       *sql.Tx
	known    map[string]bool
}

// Transaction is one frame of the driver's transaction stack (§3.5). The
// root frame (depth 0) wraps a real *sql.Tx; every frame beneath it wraps
// a savepoint against that same *sql.Tx.
type Transaction struct {
	driver        *Driver
	state         *txState
	depth         int
	savepointName string // "" at depth 0
}

// Begin pushes a new transaction frame. If the driver's stack is empty
// this opens a real transaction; otherwise it opens a savepoint named
// sp_{depth} beneath the current top frame (§4.I "Nesting").
func (d *Driver) Begin(ctx context.Context) (*Transaction, error) {
	if len(d.txStack) == 0 {
		sqlTx, err := d.primary.BeginTx(ctx, nil)
		if err != nil {
			return nil, augerr.Wrap(augerr.KindTransaction, "augsql: begin failed", err)
		}
		frame := &Transaction{
			driver: d,
			state:  &txState{tx: sqlTx, known: make(map[string]bool)},
			depth:  0,
		}
		d.txStack = append(d.txStack, frame)
		return frame, nil
	}

	top := d.txStack[len(d.txStack)-1]
	depth := len(d.txStack)
	name := fmt.Sprintf("sp_%d", depth)
	if _, err := top.state.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return nil, augerr.Wrap(augerr.KindTransaction, "augsql: savepoint failed", err)
	}
	frame := &Transaction{
		driver:        d,
		state:         top.state,
		depth:         depth,
		savepointName: name,
	}
	top.state.known[name] = true
	d.txStack = append(d.txStack, frame)
	return frame, nil
}

// Commit ends the top frame: a savepoint frame is released, the root
// frame's *sql.Tx is committed. It is an error to commit a frame that
// isn't currently the top of its driver's stack.
func (t *Transaction) Commit(ctx context.Context) error {
	if err := t.pop(); err != nil {
		return err
	}
	if t.savepointName != "" {
		_, err := t.state.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+t.savepointName)
		if err != nil {
			return augerr.Wrap(augerr.KindTransaction, "augsql: release savepoint failed", err)
		}
		delete(t.state.known, t.savepointName)
		return nil
	}
	if err := t.state.tx.Commit(); err != nil {
		return augerr.Wrap(augerr.KindTransaction, "augsql: commit failed", err)
	}
	return nil
}

// Rollback ends the top frame by undoing its work: a savepoint frame
// rolls back to its savepoint, the root frame's *sql.Tx is rolled back
// wholesale.
func (t *Transaction) Rollback(ctx context.Context) error {
	if err := t.pop(); err != nil {
		return err
	}
	if t.savepointName != "" {
		_, err := t.state.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+t.savepointName)
		if err != nil {
			return augerr.Wrap(augerr.KindTransaction, "augsql: rollback to savepoint failed", err)
		}
		delete(t.state.known, t.savepointName)
		return nil
	}
	if err := t.state.tx.Rollback(); err != nil {
		return augerr.Wrap(augerr.KindTransaction, "augsql: rollback failed", err)
	}
	return nil
}

// pop removes t from the top of its driver's transaction stack, failing
// if t isn't currently on top (begin/commit/rollback must nest properly).
func (t *Transaction) pop() error {
	stack := t.driver.txStack
	if len(stack) == 0 || stack[len(stack)-1] != t {
		return augerr.New(augerr.KindTransaction, "augsql: commit/rollback called on a frame that is not the current transaction")
	}
	t.driver.txStack = stack[:len(stack)-1]
	return nil
}

// Savepoint creates a user-named savepoint beneath the current
// transaction. Names follow the same identifier rule as table/column
// identifiers (§6).
func (t *Transaction) Savepoint(ctx context.Context, name string) error {
	if err := builder.ValidateIdentifier(name); err != nil {
		return err
	}
	if _, err := t.state.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return augerr.Wrap(augerr.KindTransaction, "augsql: savepoint failed", err)
	}
	t.state.known[name] = true
	return nil
}

// RollbackToSavepoint rolls back to a previously created savepoint. It
// raises a TransactionError if name was never created or was already
// released (§4.I). The savepoint stays known afterwards, so it can be
// rolled back to again.
func (t *Transaction) RollbackToSavepoint(ctx context.Context, name string) error {
	if !t.state.known[name] {
		return augerr.Newf(augerr.KindTransaction, "augsql: unknown savepoint %q", name)
	}
	if _, err := t.state.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); err != nil {
		return augerr.Wrap(augerr.KindTransaction, "augsql: rollback to savepoint failed", err)
	}
	return nil
}

// ReleaseSavepoint releases a previously created savepoint, forgetting it.
// It raises a TransactionError if name is unknown.
func (t *Transaction) ReleaseSavepoint(ctx context.Context, name string) error {
	if !t.state.known[name] {
		return augerr.Newf(augerr.KindTransaction, "augsql: unknown savepoint %q", name)
	}
	if _, err := t.state.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return augerr.Wrap(augerr.KindTransaction, "augsql: release savepoint failed", err)
	}
	delete(t.state.known, name)
	return nil
}

// Atomic runs fn inside a transaction in callback mode (§4.I): it begins
// a frame, invokes fn with the driver (so further query-method calls made
// through d run against this frame, since it's on top of d.txStack), and
// commits if fn returns (true, nil). It rolls back if fn returns an
// error, or returns (false, nil) — "false" is the one non-error signal
// that also forces a rollback.
func (d *Driver) Atomic(ctx context.Context, fn func(d *Driver) (bool, error)) (err error) {
	frame, err := d.Begin(ctx)
	if err != nil {
		return err
	}

	ok, callErr := fn(d)
	if callErr != nil {
		if rbErr := frame.Rollback(ctx); rbErr != nil {
			return augerr.Wrap(augerr.KindTransaction, "augsql: rollback after callback error also failed", errors.Join(callErr, rbErr))
		}
		return callErr
	}
	if !ok {
		return frame.Rollback(ctx)
	}
	return frame.Commit(ctx)
}

// WithConnection pins one connection for the duration of fn: every call
// made through d inside fn (that isn't already inside a transaction) runs
// against this single connection, then it is released (§4.I "Pinned
// scope"). A transaction begun inside fn implicitly pins its own
// connection and takes priority (see Driver.conn).
func (d *Driver) WithConnection(ctx context.Context, fn func(d *Driver) error) error {
	c, err := d.primary.Conn(ctx)
	if err != nil {
		return augerr.Wrap(augerr.KindConnection, "augsql: failed to acquire connection", err)
	}
	defer c.Close()

	prev := d.pinned
	d.pinned = c
	defer func() { d.pinned = prev }()

	return fn(d)
}
