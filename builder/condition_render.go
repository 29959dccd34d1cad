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
	"strings"

	"github.com/augsql/augsql/augerr"
	"github.com/augsql/augsql/dialect"
	"github.com/augsql/augsql/value"
)

// renderCondition renders a Condition tree into a SQL fragment, registering
// any scalar operands into b's parameter map under fresh names and
// emitting $name / $name[] references for the template engine to resolve
// (§4.E).
func renderCondition(b *Builder, c Condition, d dialect.Dialect) (string, error) {
	switch cond := c.(type) {
	case nil:
		return "", nil

	case Raw:
		return rewriteRawPlaceholders(b, cond.SQL, cond.Params), nil

	case Triple:
		return renderTriple(b, cond, d)

	case Conjunction:
		return renderJunction(b, cond.Terms, " AND ", d)

	case Disjunction:
		return renderJunction(b, cond.Terms, " OR ", d)

	default:
		return "", augerr.Newf(augerr.KindGeneral, "builder: unrenderable condition %T", c)
	}
}

func renderJunction(b *Builder, terms []Condition, sep string, d dialect.Dialect) (string, error) {
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		frag, err := renderCondition(b, t, d)
		if err != nil {
			return "", err
		}
		if frag == "" {
			continue
		}
		if needsParens(t) {
			frag = "(" + frag + ")"
		}
		parts = append(parts, frag)
	}
	return strings.Join(parts, sep), nil
}

// needsParens reports whether a nested condition must be wrapped in
// parentheses to preserve precedence when joined into a parent junction.
func needsParens(c Condition) bool {
	switch c.(type) {
	case Conjunction, Disjunction:
		return true
	default:
		return false
	}
}

func renderTriple(b *Builder, t Triple, d dialect.Dialect) (string, error) {
	if !validOperators[t.Operator] {
		return "", augerr.Newf(augerr.KindValidation, "builder: unknown operator %q", t.Operator)
	}
	if err := ValidateIdentifier(t.Column); err != nil {
		return "", err
	}
	// Columns passing through the structured condition path are validated
	// but left unquoted (matching the fixture SQL this builder targets);
	// QuoteIdentifier is available for callers composing raw fragments
	// that want dialect-quoted identifiers explicitly.
	col := t.Column

	switch t.Operator {
	case OpIn, OpNotIn:
		if t.Value.Kind() != value.Array {
			return "", augerr.Newf(augerr.KindValidation, "builder: %s requires an array value", t.Operator)
		}
		return col + " " + string(t.Operator) + " $" + b.freshParam(t.Value) + "[]", nil

	case OpBetween:
		if t.Value.Kind() != value.Array || len(t.Value.Array()) != 2 {
			return "", augerr.Newf(augerr.KindValidation, "builder: BETWEEN requires a two-element array")
		}
		items := t.Value.Array()
		return col + " BETWEEN $" + b.freshParam(items[0]) + " AND $" + b.freshParam(items[1]), nil

	default:
		return col + " " + string(t.Operator) + " $" + b.freshParam(t.Value), nil
	}
}
