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

// Package builder implements the structured query builder AST and its
// rendering pipeline (components E and F): typed SELECT/INSERT/UPDATE/
// DELETE segments, a recursive WHERE/HAVING condition tree, and a renderer
// that composes everything into a template string handed to package
// template for the actual placeholder/quoting work.
package builder

import "github.com/augsql/augsql/value"

// Operator is one of the fixed set of comparison operators a Triple may
// use (§3.3 invariants).
type Operator string

const (
	OpEq        Operator = "="
	OpNeq       Operator = "<>"
	OpLt        Operator = "<"
	OpLte       Operator = "<="
	OpGt        Operator = ">"
	OpGte       Operator = ">="
	OpLike      Operator = "LIKE"
	OpILike     Operator = "ILIKE"
	OpIn        Operator = "IN"
	OpNotIn     Operator = "NOT IN"
	OpIs        Operator = "IS"
	OpIsNot     Operator = "IS NOT"
	OpBetween   Operator = "BETWEEN"
)

var validOperators = map[Operator]bool{
	OpEq: true, OpNeq: true, OpLt: true, OpLte: true, OpGt: true, OpGte: true,
	OpLike: true, OpILike: true, OpIn: true, OpNotIn: true,
	OpIs: true, OpIsNot: true, OpBetween: true,
}

// Condition is the recursive sum type backing WHERE/HAVING (§3.3): Raw,
// Triple, Conjunction and Disjunction. Every concrete condition type
// implements Condition via the unexported condition() marker method.
type Condition interface {
	condition()
}

// Raw is a caller-certified SQL fragment with its own parameters, bypassing
// identifier/operator validation entirely (§4.E, the "raw() escape hatch").
type Raw struct {
	SQL    string
	Params []value.Value
}

func (Raw) condition() {}

// Triple is `column operator value`, e.g. `age >= 18`. Column passes
// through identifier validation; Operator must be one of the fixed set.
type Triple struct {
	Column   string
	Operator Operator
	Value    value.Value
}

func (Triple) condition() {}

// Conjunction is a list of conditions joined by AND, parenthesised as a
// unit when nested under another conjunction/disjunction.
type Conjunction struct {
	Terms []Condition
}

func (Conjunction) condition() {}

// Disjunction is a list of conditions joined by OR. OR_ is the fluent
// constructor named after the source system's `OR_()` helper (§9).
type Disjunction struct {
	Terms []Condition
}

func (Disjunction) condition() {}

// OR_ constructs a Disjunction from its arguments, the builder-facing
// equivalent of the source's `OR_()` constructor (§4.E, §9).
func OR_(terms ...Condition) Disjunction {
	return Disjunction{Terms: terms}
}

// And constructs a Conjunction from its arguments.
func And(terms ...Condition) Conjunction {
	return Conjunction{Terms: terms}
}

// Eq, Neq, Lt, Lte, Gt, Gte, Like, ILike, Is, IsNot are Triple constructors
// for the comparison operators that take a single scalar operand.
func Eq(column string, v value.Value) Triple    { return Triple{Column: column, Operator: OpEq, Value: v} }
func Neq(column string, v value.Value) Triple   { return Triple{Column: column, Operator: OpNeq, Value: v} }
func Lt(column string, v value.Value) Triple    { return Triple{Column: column, Operator: OpLt, Value: v} }
func Lte(column string, v value.Value) Triple   { return Triple{Column: column, Operator: OpLte, Value: v} }
func Gt(column string, v value.Value) Triple    { return Triple{Column: column, Operator: OpGt, Value: v} }
func Gte(column string, v value.Value) Triple   { return Triple{Column: column, Operator: OpGte, Value: v} }
func Like(column string, v value.Value) Triple  { return Triple{Column: column, Operator: OpLike, Value: v} }
func ILike(column string, v value.Value) Triple { return Triple{Column: column, Operator: OpILike, Value: v} }
func Is(column string, v value.Value) Triple    { return Triple{Column: column, Operator: OpIs, Value: v} }
func IsNot(column string, v value.Value) Triple { return Triple{Column: column, Operator: OpIsNot, Value: v} }

// In and NotIn require an Array value (enforced at render time by the
// underlying InList mechanism, same as the template engine's §4.D step 4).
func In(column string, items value.Value) Triple    { return Triple{Column: column, Operator: OpIn, Value: items} }
func NotIn(column string, items value.Value) Triple { return Triple{Column: column, Operator: OpNotIn, Value: items} }

// Between requires a two-element Array value (§4.E invariant).
func Between(column string, low, high value.Value) Triple {
	return Triple{Column: column, Operator: OpBetween, Value: value.ArrayValue(low, high)}
}
