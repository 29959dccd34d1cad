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

package validate

import (
	"testing"

	"github.com/augsql/augsql/template"
)

func TestSelectClauseFiltersAndPreservesOrder(t *testing.T) {
	sc := NewSelectClause(
		[2]string{"id", ""},
		[2]string{"full_name", "concat(first_name, ' ', last_name)"},
	)
	got := sc.Input([]string{"full_name", "unknown", "id"})
	want := "concat(first_name, ' ', last_name) AS full_name, id AS id"
	if got != want {
		t.Fatalf("Input = %q, want %q", got, want)
	}
}

func TestSelectClauseEmptyInput(t *testing.T) {
	sc := NewSelectClause([2]string{"id", ""})
	if got := sc.Input(nil); got != "" {
		t.Fatalf("Input(nil) = %q, want empty", got)
	}
}

func TestByClauseFiltersBadDirectionAndUnknownField(t *testing.T) {
	bc := NewByClause([2]string{"created", "created_at"})
	got := bc.Input([]Entry{
		{Field: "created", Direction: Desc},
		{Field: "created", Direction: "SIDEWAYS"},
		{Field: "unknown", Direction: Asc},
	})
	want := "created_at DESC"
	if got != want {
		t.Fatalf("Input = %q, want %q", got, want)
	}
}

func TestPaginateClauseClampsPerPageAndOffset(t *testing.T) {
	pc, err := NewPaginateClause(1, 100, 20)
	if err != nil {
		t.Fatalf("NewPaginateClause: %v", err)
	}

	page, perPage := 3, 500
	got := pc.Input(&page, &perPage)
	want := template.PaginateBounds{Limit: 100, Offset: 200}
	if got != want {
		t.Fatalf("Input(3, 500) = %+v, want %+v", got, want)
	}
}

func TestPaginateClauseDefaultsWhenUnsupplied(t *testing.T) {
	pc, err := NewPaginateClause(1, 100, 20)
	if err != nil {
		t.Fatalf("NewPaginateClause: %v", err)
	}

	zero := 0
	got := pc.Input(&zero, nil)
	want := template.PaginateBounds{Limit: 20, Offset: 0}
	if got != want {
		t.Fatalf("Input(0, nil) = %+v, want %+v", got, want)
	}
}

func TestNewPaginateClauseRejectsInvalidBounds(t *testing.T) {
	if _, err := NewPaginateClause(0, 10, 5); err == nil {
		t.Fatal("expected error for min_per_page < 1")
	}
	if _, err := NewPaginateClause(10, 5, 5); err == nil {
		t.Fatal("expected error for min_per_page > max_per_page")
	}
}
