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
	"strconv"
	"strings"

	"github.com/augsql/augsql/augerr"
	"github.com/augsql/augsql/dialect"
	"github.com/augsql/augsql/template"
	"github.com/augsql/augsql/value"
)

// Dried is the result of Dry(): the augmented-SQL template text this
// builder produced plus the parameter map it should be rendered against
// (§4.F "dry() returns the produced template plus the parameter map").
type Dried struct {
	Template string
	Params   map[string]value.Value
}

// Dry composes the accumulated segments into a template string and
// parameter map, for logging or for a caller that wants to drive
// template.Parse/Render itself.
func (b *Builder) Dry(d dialect.Dialect) (*Dried, error) {
	if b.err != nil {
		return nil, b.err
	}
	sql, err := renderSegments(b, b.segments, d)
	if err != nil {
		return nil, err
	}
	return &Dried{Template: sql, Params: b.params}, nil
}

// DryInline renders the builder with every parameter substituted as a
// literal, for human inspection only — never for execution (§4.F).
func (b *Builder) DryInline(d dialect.Dialect) (string, error) {
	dried, err := b.Dry(d)
	if err != nil {
		return "", err
	}
	ast, err := template.Parse(d, dried.Template)
	if err != nil {
		return "", err
	}
	bindings := bindingsFromParams(dried.Params)
	rendered, err := template.Render(ast, bindings, d, template.ModeInline, template.Options{})
	if err != nil {
		return "", err
	}
	return rendered.SQL, nil
}

// Render composes, parses and renders the builder in one step, producing
// the final SQL and ordered bind vector ready for a driver call (§4.F).
func (b *Builder) Render(d dialect.Dialect, opts template.Options) (*template.Rendered, error) {
	dried, err := b.Dry(d)
	if err != nil {
		return nil, err
	}
	ast, err := template.Parse(d, dried.Template)
	if err != nil {
		return nil, err
	}
	bindings := bindingsFromParams(dried.Params)
	return template.Render(ast, bindings, d, template.ModePlaceholder, opts)
}

func bindingsFromParams(params map[string]value.Value) *template.Bindings {
	b := template.NewBindings()
	for name, v := range params {
		b.Set(name, v)
	}
	return b
}

func renderSegments(b *Builder, segments []Segment, d dialect.Dialect) (string, error) {
	var out strings.Builder
	for i, seg := range segments {
		if i > 0 {
			out.WriteByte(' ')
		}
		frag, err := renderSegment(b, seg, d)
		if err != nil {
			return "", err
		}
		out.WriteString(frag)
	}
	return out.String(), nil
}

func renderSegment(b *Builder, seg Segment, d dialect.Dialect) (string, error) {
	switch s := seg.(type) {
	case selectSeg:
		return "SELECT " + strings.Join(s.fields, ", "), nil

	case fromSeg:
		frag := "FROM " + s.source
		return rewriteRawPlaceholders(b, frag, s.params), nil

	case joinSeg:
		cond, err := renderCondition(b, s.on, d)
		if err != nil {
			return "", err
		}
		return string(s.kind) + " " + s.table + " ON " + cond, nil

	case whereSeg:
		cond, err := renderCondition(b, s.cond, d)
		if err != nil {
			return "", err
		}
		if cond == "" {
			return "", nil
		}
		return "WHERE " + cond, nil

	case groupBySeg:
		return "GROUP BY " + strings.Join(s.fields, ", "), nil

	case havingSeg:
		cond, err := renderCondition(b, s.cond, d)
		if err != nil {
			return "", err
		}
		return "HAVING " + cond, nil

	case orderBySeg:
		return "ORDER BY " + s.clause, nil

	case limitSeg:
		frag := "LIMIT " + strconv.Itoa(s.n)
		if s.offset != nil {
			frag += " OFFSET " + strconv.Itoa(*s.offset)
		}
		return frag, nil

	case offsetSeg:
		return "OFFSET " + strconv.Itoa(s.n), nil

	case paginateSeg:
		if d == dialect.MSSQL {
			return "OFFSET " + strconv.Itoa(s.bounds.Offset) + " ROWS FETCH NEXT " + strconv.Itoa(s.bounds.Limit) + " ROWS ONLY", nil
		}
		return "LIMIT " + strconv.Itoa(s.bounds.Limit) + " OFFSET " + strconv.Itoa(s.bounds.Offset), nil

	case withSeg:
		kw := "WITH"
		if s.recursive {
			kw = "WITH RECURSIVE"
		}
		frag := kw + " " + s.name + " AS (" + s.body + ")"
		return rewriteRawPlaceholders(b, frag, s.params), nil

	case unionSeg:
		return string(s.kind) + " " + s.body, nil

	case insertIntoSeg:
		return "INSERT INTO " + s.table, nil

	case replaceIntoSeg:
		if d != dialect.MySQL {
			return "", augerr.Newf(augerr.KindNotPermitted, "builder: REPLACE INTO is only supported on MySQL")
		}
		return "REPLACE INTO " + s.table, nil

	case valuesSeg:
		return renderValues(b, s), nil

	case setSeg:
		return "SET " + renderAssignments(b, s.assignments), nil

	case onConflictSeg:
		return renderOnConflict(b, s, d)

	case onDuplicateKeyUpdateSeg:
		if d != dialect.MySQL {
			return "", augerr.Newf(augerr.KindNotPermitted, "builder: ON DUPLICATE KEY UPDATE is only supported on MySQL")
		}
		return "ON DUPLICATE KEY UPDATE " + renderAssignments(b, s.assignments), nil

	case returningSeg:
		if d == dialect.MySQL {
			return "", augerr.Newf(augerr.KindNotPermitted, "builder: RETURNING is not supported on MySQL")
		}
		return "RETURNING " + strings.Join(s.fields, ", "), nil

	case deleteFromSeg:
		return "DELETE FROM " + s.table, nil

	case usingSeg:
		return "USING " + s.source, nil

	case truncateTableSeg:
		return "TRUNCATE TABLE " + s.table, nil

	case forUpdateSeg:
		return "FOR UPDATE", nil

	case forShareSeg:
		if d == dialect.MSSQL {
			return "WITH (HOLDLOCK)", nil
		}
		return "FOR SHARE", nil

	case RawSegment:
		return rewriteRawPlaceholders(b, s.SQL, s.Params), nil

	case endSeg:
		return "", nil

	default:
		return "", augerr.Newf(augerr.KindGeneral, "builder: unrenderable segment %T", seg)
	}
}

func renderValues(b *Builder, s valuesSeg) string {
	var out strings.Builder
	out.WriteString("(")
	out.WriteString(strings.Join(s.columns, ", "))
	out.WriteString(") VALUES ")
	for i, row := range s.rows {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString("(")
		for j, v := range row {
			if j > 0 {
				out.WriteString(", ")
			}
			out.WriteString("$" + b.freshParam(v))
		}
		out.WriteString(")")
	}
	return out.String()
}

func renderAssignments(b *Builder, assignments []Assignment) string {
	parts := make([]string, 0, len(assignments))
	for _, a := range assignments {
		if a.IsRaw {
			parts = append(parts, a.Raw)
			continue
		}
		parts = append(parts, a.Column+" = $"+b.freshParam(a.Value))
	}
	return strings.Join(parts, ", ")
}

func renderOnConflict(b *Builder, s onConflictSeg, d dialect.Dialect) (string, error) {
	switch d {
	case dialect.Postgres:
		frag := "ON CONFLICT (" + strings.Join(s.target, ", ") + ") DO "
		if s.action.DoNothing {
			return frag + "NOTHING", nil
		}
		return frag + "UPDATE SET " + renderAssignments(b, s.action.Assignments), nil

	case dialect.MySQL:
		if s.action.DoNothing {
			// MySQL has no direct "do nothing" upsert; a no-op self-assignment
			// on the first conflict column is the idiomatic stand-in.
			if len(s.target) == 0 {
				return "", augerr.Newf(augerr.KindValidation, "builder: ON CONFLICT DO NOTHING on MySQL requires a conflict target column")
			}
			col := s.target[0]
			return "ON DUPLICATE KEY UPDATE " + col + " = " + col, nil
		}
		return "ON DUPLICATE KEY UPDATE " + renderAssignments(b, s.action.Assignments), nil

	default: // MSSQL
		return "", augerr.Newf(augerr.KindNotPermitted, "builder: upsert is not supported on MSSQL")
	}
}

// rewriteRawPlaceholders replaces each bare '?' in sql (outside single/
// double-quoted regions) with a fresh named placeholder bound to the
// corresponding entry of params, in order (§4.E: "references rewritten in
// the emitted SQL fragment").
func rewriteRawPlaceholders(b *Builder, sql string, params []value.Value) string {
	if len(params) == 0 {
		return sql
	}
	var out strings.Builder
	idx := 0
	var quote rune
	runes := []rune(sql)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case quote != 0:
			out.WriteRune(c)
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
			out.WriteRune(c)
		case c == '?' && idx < len(params):
			out.WriteString("$" + b.freshParam(params[idx]))
			idx++
		default:
			out.WriteRune(c)
		}
	}
	return out.String()
}
