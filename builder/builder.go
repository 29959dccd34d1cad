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
	"fmt"

	"github.com/augsql/augsql/value"
)

// Builder accumulates an ordered list of Segments plus a parameter map
// keyed by auto-generated names (§3.3: `__p0`, `__p1`, ...), avoiding
// collisions with any user-supplied placeholder name. Every fluent method
// returns the same *Builder so calls chain.
type Builder struct {
	segments []Segment
	params   map[string]value.Value
	next     int
	err      error
}

// New starts an empty Builder.
func New() *Builder {
	return &Builder{params: make(map[string]value.Value)}
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// freshParam registers v under a fresh auto-generated name and returns that
// name for embedding into an emitted SQL fragment.
func (b *Builder) freshParam(v value.Value) string {
	name := fmt.Sprintf("__p%d", b.next)
	b.next++
	b.params[name] = v
	return name
}

// Select appends a SELECT segment. fields are emitted verbatim joined by
// ", " (callers needing identifier validation should prefer a
// validate.SelectClause upstream).
func (b *Builder) Select(fields ...string) *Builder {
	b.segments = append(b.segments, selectSeg{fields: fields})
	return b
}

// From appends a FROM segment. params are merged under fresh names if
// source is itself a parameterised subquery fragment.
func (b *Builder) From(source string, params ...value.Value) *Builder {
	b.segments = append(b.segments, fromSeg{source: source, params: params})
	return b
}

// Join appends a JOIN segment of the given kind.
func (b *Builder) Join(kind JoinKind, table string, on Condition) *Builder {
	b.segments = append(b.segments, joinSeg{kind: kind, table: table, on: on})
	return b
}

// Where appends a WHERE segment built from either a Condition or the
// shorthand [][3]any triple-list form used by example S3
// (`[["age",">=",18],["status","=","active"]]`), which is interpreted as
// an implicit Conjunction of Triples.
func (b *Builder) Where(cond any) *Builder {
	c, err := asCondition(cond)
	if err != nil {
		return b.fail(err)
	}
	b.segments = append(b.segments, whereSeg{cond: c})
	return b
}

// GroupBy appends a GROUP BY segment.
func (b *Builder) GroupBy(fields ...string) *Builder {
	b.segments = append(b.segments, groupBySeg{fields: fields})
	return b
}

// Having appends a HAVING segment.
func (b *Builder) Having(cond any) *Builder {
	c, err := asCondition(cond)
	if err != nil {
		return b.fail(err)
	}
	b.segments = append(b.segments, havingSeg{cond: c})
	return b
}

// OrderBy appends an ORDER BY segment. clause is emitted verbatim (e.g.
// "id DESC"); callers needing allow-listed direction validation should
// prefer validate.ByClause upstream.
func (b *Builder) OrderBy(clause string) *Builder {
	b.segments = append(b.segments, orderBySeg{clause: clause})
	return b
}

// Limit appends a LIMIT segment, with an optional OFFSET.
func (b *Builder) Limit(n int, offset ...int) *Builder {
	seg := limitSeg{n: n}
	if len(offset) > 0 {
		seg.offset = &offset[0]
	}
	b.segments = append(b.segments, seg)
	return b
}

// Offset appends a standalone OFFSET segment.
func (b *Builder) Offset(n int) *Builder {
	b.segments = append(b.segments, offsetSeg{n: n})
	return b
}

// Paginate appends a segment that expands to LIMIT/OFFSET (or MSSQL's
// OFFSET/FETCH) from an already-clamped validate.PaginateClause result
// (§3.4, §4.D step 6).
func (b *Builder) Paginate(bounds PaginateRendered) *Builder {
	b.segments = append(b.segments, paginateSeg{bounds: bounds})
	return b
}

// With appends a CTE. If recursive is true it is emitted as
// "WITH RECURSIVE".
func (b *Builder) With(name, body string, recursive bool, params ...value.Value) *Builder {
	b.segments = append(b.segments, withSeg{name: name, body: body, params: params, recursive: recursive})
	return b
}

// UnionWith appends a UNION or UNION ALL segment joining body.
func (b *Builder) UnionWith(kind UnionKind, body string) *Builder {
	b.segments = append(b.segments, unionSeg{kind: kind, body: body})
	return b
}

// InsertInto appends an INSERT INTO segment.
func (b *Builder) InsertInto(table string) *Builder {
	b.segments = append(b.segments, insertIntoSeg{table: table})
	return b
}

// ReplaceInto appends a REPLACE INTO segment (MySQL-only at render time).
func (b *Builder) ReplaceInto(table string) *Builder {
	b.segments = append(b.segments, replaceIntoSeg{table: table})
	return b
}

// Values appends a VALUES segment from a single Map, a single []Pair, or a
// []Row (many Maps); see normalizeValues for the exact shape rules.
func (b *Builder) Values(input any) *Builder {
	cols, rows := normalizeValues(input)
	b.segments = append(b.segments, valuesSeg{columns: cols, rows: rows})
	return b
}

// Set appends a SET segment from a Map, a []Pair, or a []RawFragment; see
// normalizeAssignments for the exact shape rules.
func (b *Builder) Set(input any) *Builder {
	b.segments = append(b.segments, setSeg{assignments: normalizeAssignments(input)})
	return b
}

// OnConflict appends an ON CONFLICT segment (PostgreSQL) / is translated
// into ON DUPLICATE KEY UPDATE (MySQL) / raises NotPermittedError (MSSQL)
// at render time (§4.E, example S4).
func (b *Builder) OnConflict(target []string, action ConflictAction) *Builder {
	b.segments = append(b.segments, onConflictSeg{target: target, action: action})
	return b
}

// OnDuplicateKeyUpdate appends a MySQL-flavoured upsert segment directly;
// equivalent to OnConflict with a non-DoNothing action when the caller
// wants to name the MySQL clause explicitly.
func (b *Builder) OnDuplicateKeyUpdate(input any) *Builder {
	b.segments = append(b.segments, onDuplicateKeyUpdateSeg{assignments: normalizeAssignments(input)})
	return b
}

// Returning appends a RETURNING segment, emitted as "RETURNING ..." on
// PostgreSQL and MSSQL alike (no OUTPUT translation); MySQL raises
// NotPermittedError at render time.
func (b *Builder) Returning(fields ...string) *Builder {
	b.segments = append(b.segments, returningSeg{fields: fields})
	return b
}

// DeleteFrom appends a DELETE FROM segment.
func (b *Builder) DeleteFrom(table string) *Builder {
	b.segments = append(b.segments, deleteFromSeg{table: table})
	return b
}

// Using appends a USING segment (DELETE ... USING).
func (b *Builder) Using(source string) *Builder {
	b.segments = append(b.segments, usingSeg{source: source})
	return b
}

// TruncateTable appends a TRUNCATE TABLE segment.
func (b *Builder) TruncateTable(table string) *Builder {
	b.segments = append(b.segments, truncateTableSeg{table: table})
	return b
}

// ForUpdate appends a FOR UPDATE locking clause.
func (b *Builder) ForUpdate() *Builder {
	b.segments = append(b.segments, forUpdateSeg{})
	return b
}

// ForShare appends a FOR SHARE locking clause.
func (b *Builder) ForShare() *Builder {
	b.segments = append(b.segments, forShareSeg{})
	return b
}

// Raw appends a caller-certified SQL fragment verbatim (§4.E raw() escape
// hatch); it is exempt from testable property 4's identifier-regex check.
func (b *Builder) Raw(sql string, params ...value.Value) *Builder {
	b.segments = append(b.segments, RawSegment{SQL: sql, Params: params})
	return b
}

// End is a no-op terminator segment matching the source grammar's explicit
// `End` element; builders never need to call it but it is accepted for
// symmetry with the segment catalogue in §3.3.
func (b *Builder) End() *Builder {
	b.segments = append(b.segments, endSeg{})
	return b
}

// asCondition accepts either a Condition directly, or the [][3]any
// triple-list shorthand (example S3), normalising the latter into a
// Conjunction of Triples.
func asCondition(cond any) (Condition, error) {
	switch v := cond.(type) {
	case Condition:
		return v, nil
	case [][3]any:
		terms := make([]Condition, 0, len(v))
		for _, triple := range v {
			col, ok := triple[0].(string)
			if !ok {
				return nil, fmt.Errorf("builder: triple column must be a string, got %T", triple[0])
			}
			op, ok := triple[1].(string)
			if !ok {
				return nil, fmt.Errorf("builder: triple operator must be a string, got %T", triple[1])
			}
			val, ok := triple[2].(value.Value)
			if !ok {
				return nil, fmt.Errorf("builder: triple value must be a value.Value, got %T", triple[2])
			}
			terms = append(terms, Triple{Column: col, Operator: Operator(op), Value: val})
		}
		return Conjunction{Terms: terms}, nil
	default:
		return nil, fmt.Errorf("builder: unsupported condition shape %T", cond)
	}
}
