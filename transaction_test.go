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
	"errors"
	"testing"
)

func TestBeginCommitImperative(t *testing.T) {
	state := &fakeState{}
	db := openFakeDB(t, state)
	d := newTestDriver(db, Options{})

	ctx := context.Background()
	frame, err := d.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if len(d.txStack) != 1 {
		t.Fatalf("expected one frame on the stack, got %d", len(d.txStack))
	}
	if err := frame.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if state.commitCalled != 1 {
		t.Fatalf("expected commit called once, got %d", state.commitCalled)
	}
	if len(d.txStack) != 0 {
		t.Fatalf("expected empty stack after commit, got %d", len(d.txStack))
	}
}

func TestBeginRollbackImperative(t *testing.T) {
	state := &fakeState{}
	db := openFakeDB(t, state)
	d := newTestDriver(db, Options{})

	ctx := context.Background()
	frame, err := d.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := frame.Rollback(ctx); err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if state.rollbackCalled != 1 {
		t.Fatalf("expected rollback called once, got %d", state.rollbackCalled)
	}
}

func TestNestedBeginUsesSavepoints(t *testing.T) {
	state := &fakeState{}
	db := openFakeDB(t, state)
	d := newTestDriver(db, Options{})

	ctx := context.Background()
	outer, err := d.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin outer: %v", err)
	}
	inner, err := d.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin inner: %v", err)
	}
	if inner.savepointName != "sp_1" {
		t.Fatalf("expected savepoint name sp_1, got %q", inner.savepointName)
	}
	if len(state.execCalls) != 1 || state.execCalls[0] != "SAVEPOINT sp_1" {
		t.Fatalf("expected one SAVEPOINT exec call, got %v", state.execCalls)
	}

	if err := inner.Rollback(ctx); err != nil {
		t.Fatalf("Rollback inner: %v", err)
	}
	if state.execCalls[len(state.execCalls)-1] != "ROLLBACK TO SAVEPOINT sp_1" {
		t.Fatalf("expected rollback-to-savepoint, got %v", state.execCalls)
	}
	// The real transaction beneath the savepoint is still open.
	if state.rollbackCalled != 0 {
		t.Fatalf("rolling back a savepoint must not roll back the real transaction")
	}

	if err := outer.Commit(ctx); err != nil {
		t.Fatalf("Commit outer: %v", err)
	}
	if state.commitCalled != 1 {
		t.Fatalf("expected the real transaction committed once, got %d", state.commitCalled)
	}
}

func TestExplicitSavepointUnknownNameErrors(t *testing.T) {
	state := &fakeState{}
	db := openFakeDB(t, state)
	d := newTestDriver(db, Options{})

	ctx := context.Background()
	frame, err := d.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer frame.Rollback(ctx)

	if err := frame.RollbackToSavepoint(ctx, "never_created"); err == nil {
		t.Fatal("expected an error rolling back to an unknown savepoint")
	}
	if err := frame.Savepoint(ctx, "checkpoint"); err != nil {
		t.Fatalf("Savepoint: %v", err)
	}
	if err := frame.RollbackToSavepoint(ctx, "checkpoint"); err != nil {
		t.Fatalf("RollbackToSavepoint: %v", err)
	}
}

func TestAtomicCommitsOnTruthyReturn(t *testing.T) {
	state := &fakeState{}
	db := openFakeDB(t, state)
	d := newTestDriver(db, Options{})

	err := d.Atomic(context.Background(), func(d *Driver) (bool, error) {
		return true, nil
	})
	if err != nil {
		t.Fatalf("Atomic: %v", err)
	}
	if state.commitCalled != 1 || state.rollbackCalled != 0 {
		t.Fatalf("expected a commit and no rollback, got commit=%d rollback=%d", state.commitCalled, state.rollbackCalled)
	}
}

func TestAtomicRollsBackOnFalseReturn(t *testing.T) {
	state := &fakeState{}
	db := openFakeDB(t, state)
	d := newTestDriver(db, Options{})

	err := d.Atomic(context.Background(), func(d *Driver) (bool, error) {
		return false, nil
	})
	if err != nil {
		t.Fatalf("Atomic: %v", err)
	}
	if state.rollbackCalled != 1 || state.commitCalled != 0 {
		t.Fatalf("expected a rollback and no commit, got commit=%d rollback=%d", state.commitCalled, state.rollbackCalled)
	}
}

func TestAtomicRollsBackAndRepropagatesCallbackError(t *testing.T) {
	state := &fakeState{}
	db := openFakeDB(t, state)
	d := newTestDriver(db, Options{})

	boom := errors.New("boom")
	err := d.Atomic(context.Background(), func(d *Driver) (bool, error) {
		return true, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the callback error to propagate, got %v", err)
	}
	if state.rollbackCalled != 1 || state.commitCalled != 0 {
		t.Fatalf("expected a rollback and no commit, got commit=%d rollback=%d", state.commitCalled, state.rollbackCalled)
	}
}

func TestAtomicJoinsCallbackAndRollbackErrors(t *testing.T) {
	boom := errors.New("boom")
	rollbackBoom := errors.New("rollback exploded")
	state := &fakeState{rollbackErr: rollbackBoom}
	db := openFakeDB(t, state)
	d := newTestDriver(db, Options{})

	err := d.Atomic(context.Background(), func(d *Driver) (bool, error) {
		return true, boom
	})
	if err == nil {
		t.Fatal("expected a non-nil error")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected the callback error to still be reachable via errors.Is, got %v", err)
	}
	if !errors.Is(err, rollbackBoom) {
		t.Fatalf("expected the rollback error to also be reachable via errors.Is, got %v", err)
	}
}

func TestWithConnectionPinsConnectionForCallback(t *testing.T) {
	state := &fakeState{}
	db := openFakeDB(t, state)
	d := newTestDriver(db, Options{})

	err := d.WithConnection(context.Background(), func(d *Driver) error {
		if d.pinned == nil {
			t.Fatal("expected a pinned connection inside the callback")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithConnection: %v", err)
	}
	if d.pinned != nil {
		t.Fatal("expected the pinned connection to be cleared after the callback returns")
	}
}
