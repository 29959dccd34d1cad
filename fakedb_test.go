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
	"database/sql/driver"
	"fmt"
	"io"
	"sync/atomic"
	"testing"

	"github.com/augsql/augsql/dialect"
	"github.com/augsql/augsql/template"
)

// testDialect is the dialect every coordinator test renders against.
// Postgres is chosen arbitrarily; the fake driver never inspects SQL
// text beyond recording it, so dialect-specific placeholder choice only
// matters to the assertions that check rendered SQL shape.
const testDialect = dialect.Postgres

func testCache() *template.Cache {
	return template.NewCache(8, 256)
}

// fakeState is the shared, inspectable state behind one registered fake
// driver, grounded on session/tx's txDriverStub/txConnStub pattern
// (generalized here to also serve Query, not just Begin/Commit/Rollback).
type fakeState struct {
	beginErr    error
	commitErr   error
	rollbackErr error
	execErr     error
	queryErr    error
	pingErr     error
	closeErr    error

	rowCols []string
	rowData [][]driver.Value

	beginCalled    int
	commitCalled   int
	rollbackCalled int
	execCalls      []string
	queryCalls     []string
}

type fakeDriverImpl struct{ state *fakeState }

func (d *fakeDriverImpl) Open(_ string) (driver.Conn, error) {
	return &fakeConn{state: d.state}, nil
}

type fakeConn struct{ state *fakeState }

func (c *fakeConn) Prepare(_ string) (driver.Stmt, error) { return nil, fmt.Errorf("not implemented") }
func (c *fakeConn) Close() error                          { return c.state.closeErr }

func (c *fakeConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *fakeConn) BeginTx(_ context.Context, _ driver.TxOptions) (driver.Tx, error) {
	c.state.beginCalled++
	if c.state.beginErr != nil {
		return nil, c.state.beginErr
	}
	return &fakeTx{state: c.state}, nil
}

func (c *fakeConn) Ping(_ context.Context) error { return c.state.pingErr }

func (c *fakeConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	c.state.queryCalls = append(c.state.queryCalls, query)
	if c.state.queryErr != nil {
		return nil, c.state.queryErr
	}
	data := make([][]driver.Value, len(c.state.rowData))
	copy(data, c.state.rowData)
	return &fakeRows{cols: c.state.rowCols, data: data}, nil
}

func (c *fakeConn) ExecContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	c.state.execCalls = append(c.state.execCalls, query)
	if c.state.execErr != nil {
		return nil, c.state.execErr
	}
	return fakeResult{id: 1, affected: 1}, nil
}

var (
	_ driver.ConnBeginTx   = (*fakeConn)(nil)
	_ driver.QueryerContext = (*fakeConn)(nil)
	_ driver.ExecerContext  = (*fakeConn)(nil)
	_ driver.Pinger         = (*fakeConn)(nil)
)

type fakeTx struct{ state *fakeState }

func (t *fakeTx) Commit() error {
	t.state.commitCalled++
	return t.state.commitErr
}

func (t *fakeTx) Rollback() error {
	t.state.rollbackCalled++
	return t.state.rollbackErr
}

type fakeRows struct {
	cols []string
	data [][]driver.Value
	idx  int
}

func (r *fakeRows) Columns() []string { return r.cols }
func (r *fakeRows) Close() error      { return nil }
func (r *fakeRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.data) {
		return io.EOF
	}
	copy(dest, r.data[r.idx])
	r.idx++
	return nil
}

type fakeResult struct{ id, affected int64 }

func (r fakeResult) LastInsertId() (int64, error) { return r.id, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.affected, nil }

var fakeDriverSeq uint64

// openFakeDB registers a uniquely-named fake driver instance backed by
// state and returns an opened *sql.DB over it.
func openFakeDB(t *testing.T, state *fakeState) *sql.DB {
	t.Helper()
	name := fmt.Sprintf("augsql_fake_%d", atomic.AddUint64(&fakeDriverSeq, 1))
	sql.Register(name, &fakeDriverImpl{state: state})
	db, err := sql.Open(name, "")
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// newTestDriver builds a *Driver wired directly to db, bypassing Open
// (which would require a registered dialect driver name); this lets tests
// exercise Driver's own logic (retry, replica routing, transactions,
// query shaping) against the fake driver above.
func newTestDriver(db *sql.DB, opts Options) *Driver {
	return &Driver{
		dialect: testDialect,
		opts:    opts.withDefaults(),
		primary: db,
		cache:   testCache(),
	}
}
