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

package template

import (
	"strings"

	"github.com/augsql/augsql/dialect"
	"github.com/augsql/augsql/value"
)

// Mode selects whether the renderer emits driver placeholders (the normal
// execution path) or inlines literal values (dry-run / error-message
// rendering only, §4.A, §4.E "dryInline").
type Mode uint8

const (
	// ModePlaceholder emits dialect placeholders and an ordered bind
	// vector. This is the only mode that should ever reach a driver.
	ModePlaceholder Mode = iota
	// ModeInline substitutes quote_literal output directly into the SQL
	// text and returns no bind vector.
	ModeInline
)

// Options configures one render pass.
type Options struct {
	// CollapsibleIn enables the empty-array IN/NOT IN transform (§4.D
	// step 4, the pool option of the same name in §4.H).
	CollapsibleIn bool
	// PlaceholderLimit, if non-zero, is the driver's maximum placeholder
	// count; exceeding it raises RenderError{PlaceholderLimitExceeded}
	// unless AllowInlineFallback is set, in which case the renderer
	// restarts in ModeInline.
	PlaceholderLimit int
	// AllowInlineFallback permits falling back to ModeInline when
	// PlaceholderLimit is exceeded in ModePlaceholder.
	AllowInlineFallback bool
}

// Rendered is the renderer's output: the SQL string and, in
// ModePlaceholder, the ordered bind vector.
type Rendered struct {
	SQL  string
	Args []any
}

// Render walks ast against bindings for the given dialect and mode,
// producing a Rendered result (§4.D).
func Render(ast *AST, bindings *Bindings, d dialect.Dialect, mode Mode, opts Options) (*Rendered, error) {
	r := &renderer{
		dialect:    d,
		mode:       mode,
		opts:       opts,
		translator: dialect.NewTranslator(d),
	}
	var b strings.Builder
	if err := r.walk(ast.Nodes, bindings, &b); err != nil {
		return nil, err
	}
	if mode == ModePlaceholder && opts.PlaceholderLimit > 0 && r.placeholderCount > opts.PlaceholderLimit {
		if !opts.AllowInlineFallback {
			return nil, &RenderError{
				Kind:    PlaceholderLimitExceeded,
				Message: "placeholder count exceeds driver limit",
			}
		}
		return Render(ast, bindings, d, ModeInline, opts)
	}
	return &Rendered{SQL: b.String(), Args: r.args}, nil
}

type renderer struct {
	dialect          dialect.Dialect
	mode             Mode
	opts             Options
	translator       dialect.Translator
	args             []any
	placeholderCount int
}

func (r *renderer) walk(nodes []Node, bindings *Bindings, b *strings.Builder) error {
	for _, n := range nodes {
		if err := r.walkOne(n, bindings, b); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) walkOne(n Node, bindings *Bindings, b *strings.Builder) error {
	switch node := n.(type) {
	case Literal:
		b.WriteString(node.Text)
		return nil

	case Raw:
		b.WriteString(node.Text)
		return nil

	case PlaceholderNamed:
		v, ok := bindings.Named(node.Name)
		if !ok {
			return &ParameterError{Missing: node.Name}
		}
		return r.emitValue(v, b)

	case PlaceholderPositional:
		v, ok := bindings.Positional(node.Index)
		if !ok {
			return &ParameterError{Missing: positionalName(node.Index)}
		}
		return r.emitValue(v, b)

	case InList:
		return r.emitInList(node, bindings, b)

	case ConditionalBlock:
		v, ok := bindings.Named(node.Name)
		if !ok || conditionIsFalsy(v) {
			return nil
		}
		return r.walk(node.Inner, bindings, b)

	case PaginateMarker:
		bounds, ok := bindings.Paginate()
		if !ok {
			return &ParameterError{Message: "paginate marker used without a bound PaginateClauseRendered"}
		}
		b.WriteString(r.paginateSQL(bounds))
		return nil

	default:
		return nil
	}
}

func positionalName(i int) string {
	return "?#" + itoa(i)
}

// conditionIsFalsy implements §4.D step 5's precise falsiness rule: Null,
// boolean false, or an empty array/map. Unlike value.Value.IsZero, a zero
// number or an empty string is NOT falsy here.
func conditionIsFalsy(v value.Value) bool {
	switch v.Kind() {
	case value.Null:
		return true
	case value.Bool:
		return !v.BoolValue()
	case value.Array:
		return len(v.Array()) == 0
	case value.Map:
		return v.Map().Len() == 0
	default:
		return false
	}
}

func (r *renderer) emitValue(v value.Value, b *strings.Builder) error {
	switch r.mode {
	case ModeInline:
		text, err := value.QuoteLiteral(v, r.dialect)
		if err != nil {
			return err
		}
		b.WriteString(text)
		return nil
	default:
		b.WriteString(r.translator.Translate())
		r.placeholderCount++
		r.args = append(r.args, v.Interface())
		return nil
	}
}

func (r *renderer) emitInList(node InList, bindings *Bindings, b *strings.Builder) error {
	v, ok := bindings.Named(node.Name)
	if !ok {
		return &ParameterError{Missing: node.Name}
	}
	if v.Kind() != value.Array {
		return &ParameterError{Missing: node.Name, TypeMismatch: true}
	}
	items := v.Array()

	if len(items) == 0 {
		if !r.opts.CollapsibleIn {
			return &ParameterError{Message: "in-list parameter \"" + node.Name + "\" is empty and collapsible_in is disabled"}
		}
		if node.Not {
			b.WriteString("(SELECT 1 WHERE 1=0)")
		} else {
			b.WriteString("(NULL)")
		}
		return nil
	}

	b.WriteByte('(')
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		if err := r.emitValue(item, b); err != nil {
			return err
		}
	}
	b.WriteByte(')')
	return nil
}

func (r *renderer) paginateSQL(bounds PaginateBounds) string {
	switch r.dialect {
	case dialect.MSSQL:
		return "OFFSET " + itoa(bounds.Offset) + " ROWS FETCH NEXT " + itoa(bounds.Limit) + " ROWS ONLY"
	default:
		return "LIMIT " + itoa(bounds.Limit) + " OFFSET " + itoa(bounds.Offset)
	}
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}
