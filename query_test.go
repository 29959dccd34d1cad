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

func TestAllRowsDefaultShapeIsPositional(t *testing.T) {
	state := &fakeState{
		rowCols: []string{"id", "name"},
		rowData: [][]driver.Value{
			{int64(1), "alice"},
			{int64(2), "bob"},
		},
	}
	db := openFakeDB(t, state)
	d := newTestDriver(db, Options{AssocArrays: false})

	rows, err := d.AllRows(context.Background(), "SELECT id, name FROM t", template.NewBindings())
	if err != nil {
		t.Fatalf("AllRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	positional, ok := rows[0].([]value.Value)
	if !ok {
		t.Fatalf("expected []value.Value, got %T", rows[0])
	}
	if len(positional) != 2 || positional[0].Int() != 1 || positional[1].Str() != "alice" {
		t.Fatalf("unexpected positional row: %+v", positional)
	}
}

func TestAllRowsAssocShapeIsOrderedMap(t *testing.T) {
	state := &fakeState{
		rowCols: []string{"id", "name"},
		rowData: [][]driver.Value{{int64(7), "carol"}},
	}
	db := openFakeDB(t, state)
	d := newTestDriver(db, Options{AssocArrays: true})

	rows, err := d.AllRows(context.Background(), "SELECT id, name FROM t", template.NewBindings())
	if err != nil {
		t.Fatalf("AllRows: %v", err)
	}
	row, ok := rows[0].(*Row)
	if !ok {
		t.Fatalf("expected *Row, got %T", rows[0])
	}
	name, _ := row.Get("name")
	if name.Str() != "carol" {
		t.Fatalf("expected name=carol, got %v", name)
	}
}

func TestRowRequiresExactlyOne(t *testing.T) {
	state := &fakeState{rowCols: []string{"id"}, rowData: [][]driver.Value{}}
	db := openFakeDB(t, state)
	d := newTestDriver(db, Options{})

	if _, err := d.Row(context.Background(), "SELECT id FROM t", template.NewBindings()); err == nil {
		t.Fatal("expected an error for zero rows")
	}

	state.rowData = [][]driver.Value{{int64(1)}, {int64(2)}}
	if _, err := d.Row(context.Background(), "SELECT id FROM t", template.NewBindings()); err == nil {
		t.Fatal("expected an error for more than one row")
	}
}

func TestMaybeRowReturnsNilForZeroRows(t *testing.T) {
	state := &fakeState{rowCols: []string{"id"}, rowData: [][]driver.Value{}}
	db := openFakeDB(t, state)
	d := newTestDriver(db, Options{})

	row, err := d.MaybeRow(context.Background(), "SELECT id FROM t", template.NewBindings())
	if err != nil {
		t.Fatalf("MaybeRow: %v", err)
	}
	if row != nil {
		t.Fatalf("expected nil row, got %v", row)
	}
}

func TestDictionaryKeysByFirstColumn(t *testing.T) {
	state := &fakeState{
		rowCols: []string{"slug", "title"},
		rowData: [][]driver.Value{
			{"a", "Alpha"},
			{"b", "Bravo"},
		},
	}
	db := openFakeDB(t, state)
	d := newTestDriver(db, Options{AssocArrays: true})

	dict, err := d.Dictionary(context.Background(), "SELECT slug, title FROM t", template.NewBindings())
	if err != nil {
		t.Fatalf("Dictionary: %v", err)
	}
	row, ok := dict["a"].(*Row)
	if !ok {
		t.Fatalf("expected *Row for key a, got %T", dict["a"])
	}
	title, _ := row.Get("title")
	if title.Str() != "Alpha" {
		t.Fatalf("unexpected title: %v", title)
	}
}

func TestGroupedRowsPreservesOrderWithinGroup(t *testing.T) {
	state := &fakeState{
		rowCols: []string{"team", "name"},
		rowData: [][]driver.Value{
			{"red", "ann"},
			{"blue", "bob"},
			{"red", "cid"},
		},
	}
	db := openFakeDB(t, state)
	d := newTestDriver(db, Options{AssocArrays: true})

	grouped, err := d.GroupedRows(context.Background(), "SELECT team, name FROM t", template.NewBindings())
	if err != nil {
		t.Fatalf("GroupedRows: %v", err)
	}
	redGroup, ok := grouped.Get("red")
	if !ok || len(redGroup) != 2 {
		t.Fatalf("expected 2 rows for red, got %v", redGroup)
	}
	first := redGroup[0].(*Row)
	second := redGroup[1].(*Row)
	firstName, _ := first.Get("name")
	secondName, _ := second.Get("name")
	if firstName.Str() != "ann" || secondName.Str() != "cid" {
		t.Fatalf("expected order ann, cid, got %v, %v", firstName, secondName)
	}
}

func TestValueFamily(t *testing.T) {
	state := &fakeState{rowCols: []string{"count"}, rowData: [][]driver.Value{{int64(42)}}}
	db := openFakeDB(t, state)
	d := newTestDriver(db, Options{})

	v, err := d.Value(context.Background(), "SELECT count(*) FROM t", template.NewBindings())
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v.Int() != 42 {
		t.Fatalf("expected 42, got %v", v)
	}

	state.rowData = [][]driver.Value{}
	_, ok, err := d.MaybeValue(context.Background(), "SELECT count(*) FROM t", template.NewBindings())
	if err != nil {
		t.Fatalf("MaybeValue: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for zero rows")
	}
}

func TestColumnDictionaryAndGrouped(t *testing.T) {
	state := &fakeState{
		rowCols: []string{"key", "value"},
		rowData: [][]driver.Value{
			{"a", int64(1)},
			{"a", int64(2)},
			{"b", int64(3)},
		},
	}
	db := openFakeDB(t, state)
	d := newTestDriver(db, Options{})

	dict, err := d.ColumnDictionary(context.Background(), "SELECT key, value FROM t", template.NewBindings())
	if err != nil {
		t.Fatalf("ColumnDictionary: %v", err)
	}
	if dict["a"].Int() != 2 {
		t.Fatalf("expected the later row to win for key a, got %v", dict["a"])
	}

	grouped, err := d.ColumnGrouped(context.Background(), "SELECT key, value FROM t", template.NewBindings())
	if err != nil {
		t.Fatalf("ColumnGrouped: %v", err)
	}
	if len(grouped["a"]) != 2 || grouped["a"][0].Int() != 1 || grouped["a"][1].Int() != 2 {
		t.Fatalf("unexpected grouped values for a: %v", grouped["a"])
	}
}

func TestColumnDictionaryRequiresTwoColumns(t *testing.T) {
	state := &fakeState{rowCols: []string{"only"}, rowData: [][]driver.Value{{"x"}}}
	db := openFakeDB(t, state)
	d := newTestDriver(db, Options{})

	if _, err := d.ColumnDictionary(context.Background(), "SELECT only FROM t", template.NewBindings()); err == nil {
		t.Fatal("expected an error for a single-column result")
	}
}
