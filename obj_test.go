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
	"database/sql/driver"
	"testing"

	"github.com/augsql/augsql/template"
	"github.com/augsql/augsql/value"
)

type objPerson struct {
	ID      int64   `column:"id"`
	Name    string  `column:"name"`
	Ignored string  `column:"-"`
	Nope    string
	Manager *string `column:"manager"`
}

func TestRowObjDecodesTaggedFields(t *testing.T) {
	state := &fakeState{
		rowCols: []string{"id", "name", "manager"},
		rowData: [][]driver.Value{{int64(1), "alice", nil}},
	}
	db := openFakeDB(t, state)
	d := newTestDriver(db, Options{})

	p, err := RowObj[objPerson](context.Background(), d, "SELECT id, name, manager FROM t", template.NewBindings())
	if err != nil {
		t.Fatalf("RowObj: %v", err)
	}
	if p.ID != 1 || p.Name != "alice" {
		t.Fatalf("unexpected decode: %+v", p)
	}
	if p.Manager != nil {
		t.Fatalf("expected nil manager, got %v", *p.Manager)
	}
}

func TestRowObjAssignsPointerField(t *testing.T) {
	state := &fakeState{
		rowCols: []string{"id", "name", "manager"},
		rowData: [][]driver.Value{{int64(2), "bob", "carol"}},
	}
	db := openFakeDB(t, state)
	d := newTestDriver(db, Options{})

	p, err := RowObj[objPerson](context.Background(), d, "SELECT id, name, manager FROM t", template.NewBindings())
	if err != nil {
		t.Fatalf("RowObj: %v", err)
	}
	if p.Manager == nil || *p.Manager != "carol" {
		t.Fatalf("expected manager=carol, got %v", p.Manager)
	}
}

func TestMaybeRowObjReturnsNilForZeroRows(t *testing.T) {
	state := &fakeState{rowCols: []string{"id", "name", "manager"}, rowData: [][]driver.Value{}}
	db := openFakeDB(t, state)
	d := newTestDriver(db, Options{})

	p, err := MaybeRowObj[objPerson](context.Background(), d, "SELECT id, name, manager FROM t", template.NewBindings())
	if err != nil {
		t.Fatalf("MaybeRowObj: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil, got %+v", p)
	}
}

func TestAllRowsObjDecodesEveryRow(t *testing.T) {
	state := &fakeState{
		rowCols: []string{"id", "name", "manager"},
		rowData: [][]driver.Value{
			{int64(1), "alice", nil},
			{int64(2), "bob", "alice"},
		},
	}
	db := openFakeDB(t, state)
	d := newTestDriver(db, Options{})

	people, err := AllRowsObj[objPerson](context.Background(), d, "SELECT id, name, manager FROM t", template.NewBindings())
	if err != nil {
		t.Fatalf("AllRowsObj: %v", err)
	}
	if len(people) != 2 || people[1].Name != "bob" {
		t.Fatalf("unexpected decode: %+v", people)
	}
}

func TestDictionaryObjKeysByFirstColumn(t *testing.T) {
	state := &fakeState{
		rowCols: []string{"id", "name", "manager"},
		rowData: [][]driver.Value{{int64(1), "alice", nil}},
	}
	db := openFakeDB(t, state)
	d := newTestDriver(db, Options{})

	dict, err := DictionaryObj[objPerson](context.Background(), d, "SELECT id, name, manager FROM t", template.NewBindings())
	if err != nil {
		t.Fatalf("DictionaryObj: %v", err)
	}
	p, ok := dict["1"]
	if !ok || p.Name != "alice" {
		t.Fatalf("unexpected dictionary: %+v", dict)
	}
}

func TestGroupedRowsObjPreservesOrder(t *testing.T) {
	state := &fakeState{
		rowCols: []string{"id", "name", "manager"},
		rowData: [][]driver.Value{
			{int64(1), "ann", nil},
			{int64(1), "bob", nil},
			{int64(2), "cid", nil},
		},
	}
	db := openFakeDB(t, state)
	d := newTestDriver(db, Options{})

	grouped, err := GroupedRowsObj[objPerson](context.Background(), d, "SELECT id, name, manager FROM t", template.NewBindings())
	if err != nil {
		t.Fatalf("GroupedRowsObj: %v", err)
	}
	group := grouped["1"]
	if len(group) != 2 || group[0].Name != "ann" || group[1].Name != "bob" {
		t.Fatalf("unexpected group: %+v", group)
	}
}

func TestDecodeObjRejectsNonStruct(t *testing.T) {
	if _, err := decodeObj[int](value.NewOrderedMap()); err == nil {
		t.Fatal("expected an error decoding into a non-struct type")
	}
}
