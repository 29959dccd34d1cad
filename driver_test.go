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
	"testing"

	"github.com/augsql/augsql/augerr"
	"github.com/augsql/augsql/template"
	"github.com/augsql/augsql/value"
)

func TestIsReadOnlyStatement(t *testing.T) {
	cases := map[string]bool{
		"SELECT 1":                     true,
		"  select * from t":            true,
		"WITH x AS (SELECT 1) SELECT *": true,
		"-- comment\nSELECT 1":         true,
		"/* c */ SELECT 1":              true,
		"INSERT INTO t VALUES (1)":      false,
		"UPDATE t SET a = 1":            false,
		"DELETE FROM t":                 false,
	}
	for sql, want := range cases {
		if got := isReadOnlyStatement(sql); got != want {
			t.Errorf("isReadOnlyStatement(%q) = %v, want %v", sql, got, want)
		}
	}
}

func TestDriverReadonlyBlocksWrites(t *testing.T) {
	state := &fakeState{}
	db := openFakeDB(t, state)
	d := newTestDriver(db, Options{Readonly: true})

	_, err := d.Exec(context.Background(), "DELETE FROM t", template.NewBindings())
	if !augerr.Is(err, augerr.KindNotPermitted) {
		t.Fatalf("expected NotPermitted, got %v", err)
	}
	if len(state.execCalls) != 0 {
		t.Fatalf("exec should not have reached the driver, got calls %v", state.execCalls)
	}
}

func TestDriverReadonlyAllowsReads(t *testing.T) {
	state := &fakeState{rowCols: []string{"id"}}
	db := openFakeDB(t, state)
	d := newTestDriver(db, Options{Readonly: true})

	_, err := d.AllRows(context.Background(), "SELECT id FROM t", template.NewBindings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(state.queryCalls) != 1 {
		t.Fatalf("expected one query call, got %d", len(state.queryCalls))
	}
}

func TestDriverQueryHookFiresWithRenderedAndInlineSQL(t *testing.T) {
	state := &fakeState{rowCols: []string{"id"}}
	db := openFakeDB(t, state)
	d := newTestDriver(db, Options{})

	var gotRendered, gotInline string
	d.SetHook(func(rendered, inline string, _ int64) {
		gotRendered, gotInline = rendered, inline
	})

	_, err := d.AllRows(context.Background(), "SELECT id FROM t WHERE id = $id", template.NewBindings().Set("id", value.IntValue(1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotRendered != "SELECT id FROM t WHERE id = $1" {
		t.Fatalf("rendered SQL = %q", gotRendered)
	}
	if gotInline != "SELECT id FROM t WHERE id = 1" {
		t.Fatalf("inline SQL = %q", gotInline)
	}
}

func TestCloseJoinsPrimaryAndReplicaErrors(t *testing.T) {
	primaryBoom := errors.New("primary close boom")
	replicaBoom := errors.New("replica close boom")

	primaryState := &fakeState{closeErr: primaryBoom}
	primaryDB := openFakeDB(t, primaryState)
	if err := primaryDB.PingContext(context.Background()); err != nil {
		t.Fatalf("priming primary connection: %v", err)
	}

	replicaState := &fakeState{closeErr: replicaBoom}
	replicaDB := openFakeDB(t, replicaState)
	if err := replicaDB.PingContext(context.Background()); err != nil {
		t.Fatalf("priming replica connection: %v", err)
	}

	d := newTestDriver(primaryDB, Options{})
	d.replicas = []*sql.DB{replicaDB}

	err := d.Close()
	if err == nil {
		t.Fatal("expected a non-nil error")
	}
	if !errors.Is(err, primaryBoom) {
		t.Fatalf("expected the primary close error to be reachable via errors.Is, got %v", err)
	}
	if !errors.Is(err, replicaBoom) {
		t.Fatalf("expected the replica close error to also be reachable via errors.Is, got %v", err)
	}
}

func TestPickReplicaFallsBackToPrimaryOnPingFailure(t *testing.T) {
	primaryState := &fakeState{rowCols: []string{"id"}}
	primaryDB := openFakeDB(t, primaryState)

	replicaState := &fakeState{pingErr: errors.New("replica unreachable")}
	replicaDB := openFakeDB(t, replicaState)

	d := newTestDriver(primaryDB, Options{})
	d.replicas = []*sql.DB{replicaDB}

	if _, err := d.AllRows(context.Background(), "SELECT id FROM t", template.NewBindings()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(primaryState.queryCalls) != 1 {
		t.Fatalf("expected the query to fall back to the primary, got primary calls %d", len(primaryState.queryCalls))
	}
	if len(replicaState.queryCalls) != 0 {
		t.Fatalf("expected no query against the unreachable replica, got %d", len(replicaState.queryCalls))
	}
}

func TestDriverQueryHookPanicIsSwallowed(t *testing.T) {
	state := &fakeState{rowCols: []string{"id"}}
	db := openFakeDB(t, state)
	d := newTestDriver(db, Options{})
	d.SetHook(func(string, string, int64) { panic("boom") })

	if _, err := d.AllRows(context.Background(), "SELECT id FROM t", template.NewBindings()); err != nil {
		t.Fatalf("hook panic should not surface as a query error: %v", err)
	}
}
