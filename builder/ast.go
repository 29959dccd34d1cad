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

package builder

import (
	"github.com/augsql/augsql/template"
	"github.com/augsql/augsql/value"
)

// Segment is one ordered element of a Builder's accumulated AST (§3.3).
// Every concrete segment type implements Segment via the unexported
// segment() marker method.
type Segment interface {
	segment()
}

// JoinKind enumerates the SQL join keywords Join accepts.
type JoinKind string

const (
	InnerJoin JoinKind = "INNER JOIN"
	LeftJoin  JoinKind = "LEFT JOIN"
	RightJoin JoinKind = "RIGHT JOIN"
	FullJoin  JoinKind = "FULL JOIN"
)

// UnionKind enumerates the two UNION variants.
type UnionKind string

const (
	Union    UnionKind = "UNION"
	UnionAll UnionKind = "UNION ALL"
)

type selectSeg struct{ fields []string }

func (selectSeg) segment() {}

type fromSeg struct {
	source string
	params []value.Value
}

func (fromSeg) segment() {}

type joinSeg struct {
	kind  JoinKind
	table string
	on    Condition
}

func (joinSeg) segment() {}

type whereSeg struct{ cond Condition }

func (whereSeg) segment() {}

type groupBySeg struct{ fields []string }

func (groupBySeg) segment() {}

type havingSeg struct{ cond Condition }

func (havingSeg) segment() {}

type orderBySeg struct{ clause string }

func (orderBySeg) segment() {}

type limitSeg struct {
	n      int
	offset *int
}

func (limitSeg) segment() {}

type offsetSeg struct{ n int }

func (offsetSeg) segment() {}

// PaginateRendered is the opaque fragment a validate.PaginateClause
// produces, threaded through the builder to the template's {{paginate}}
// marker (§3.4). It is the same shape as template.PaginateBounds so a
// single validator result can drive either engine.
type PaginateRendered = template.PaginateBounds

type paginateSeg struct{ bounds PaginateRendered }

func (paginateSeg) segment() {}

type withSeg struct {
	name      string
	body      string
	params    []value.Value
	recursive bool
}

func (withSeg) segment() {}

type unionSeg struct {
	kind UnionKind
	body string
}

func (unionSeg) segment() {}

type insertIntoSeg struct{ table string }

func (insertIntoSeg) segment() {}

type replaceIntoSeg struct{ table string }

func (replaceIntoSeg) segment() {}

// Assignment is one normalised SET/VALUES column binding (§4.E).
type Assignment struct {
	Column string
	Value  value.Value
	Raw    string // set instead of Value when the input shape was a raw fragment
	IsRaw  bool
}

type valuesSeg struct {
	columns []string
	rows    [][]value.Value
}

func (valuesSeg) segment() {}

type setSeg struct{ assignments []Assignment }

func (setSeg) segment() {}

// ConflictAction is the normalised ON CONFLICT action.
type ConflictAction struct {
	DoNothing   bool
	Assignments []Assignment
}

type onConflictSeg struct {
	target []string
	action ConflictAction
}

func (onConflictSeg) segment() {}

type onDuplicateKeyUpdateSeg struct{ assignments []Assignment }

func (onDuplicateKeyUpdateSeg) segment() {}

type returningSeg struct{ fields []string }

func (returningSeg) segment() {}

type deleteFromSeg struct{ table string }

func (deleteFromSeg) segment() {}

type usingSeg struct{ source string }

func (usingSeg) segment() {}

type truncateTableSeg struct{ table string }

func (truncateTableSeg) segment() {}

type forUpdateSeg struct{}

func (forUpdateSeg) segment() {}

type forShareSeg struct{}

func (forShareSeg) segment() {}

// RawSegment is a caller-certified SQL fragment inserted verbatim, the
// builder-level equivalent of Condition's Raw (§4.E raw() escape hatch).
type RawSegment struct {
	SQL    string
	Params []value.Value
}

func (RawSegment) segment() {}

type endSeg struct{}

func (endSeg) segment() {}
