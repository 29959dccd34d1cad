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

// Package value implements the parameter value model (component A): a
// tagged union of everything that can be bound into an augmented-SQL
// template or decoded out of a driver row, plus the small set of
// operations (quote_literal, escape_like, json_wrap) that the template and
// builder renderers share.
package value

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind tags the variant stored in a Value.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Int
	Float
	Str
	Bytes
	Array
	Map
	JSON
	Date
	Time
	Timestamp
	TimestampTZ
	Decimal
	UUID
)

// Value is a tagged union over every bindable or decodable SQL value.
// The zero Value is Null. Values are immutable once constructed; every
// constructor returns a new Value rather than mutating in place.
type Value struct {
	kind Kind

	b   bool
	i   int64
	f   float64
	s   string
	bs  []byte
	arr []Value
	m   *OrderedMap

	jsonRaw     json.RawMessage
	jsonDecoded bool
	jsonValue   any

	t   time.Time
	dec decimal.Decimal
	u   uuid.UUID
}

// Kind returns the variant tag of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v holds the Null variant.
func (v Value) IsNull() bool { return v.kind == Null }

// NullValue constructs the Null variant.
func NullValue() Value { return Value{kind: Null} }

// BoolValue constructs the Bool variant.
func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }

// IntValue constructs the signed 64-bit Int variant. Numeric coercion
// across Int/Float is never implicit (§3.1): callers must pick the right
// constructor.
func IntValue(i int64) Value { return Value{kind: Int, i: i} }

// FloatValue constructs the IEEE-754 double Float variant.
func FloatValue(f float64) Value { return Value{kind: Float, f: f} }

// StrValue constructs the Str variant.
func StrValue(s string) Value { return Value{kind: Str, s: s} }

// BytesValue constructs the Bytes variant.
func BytesValue(b []byte) Value { return Value{kind: Bytes, bs: b} }

// ArrayValue constructs an ordered Array variant. Elements share no type
// constraint (§3.1).
func ArrayValue(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: Array, arr: cp}
}

// MapValue constructs a Map variant from an already-built OrderedMap.
func MapValue(m *OrderedMap) Value {
	if m == nil {
		m = NewOrderedMap()
	}
	return Value{kind: Map, m: m}
}

// DateValue, TimeValue, TimestampValue and TimestampTZValue construct the
// dialect-specific scalars surfaced by driver decoding (§3.1). Timestamp
// carries no location; TimestampTZ carries t.Location() as the zone.
func DateValue(t time.Time) Value      { return Value{kind: Date, t: t} }
func TimeValue(t time.Time) Value      { return Value{kind: Time, t: t} }
func TimestampValue(t time.Time) Value { return Value{kind: Timestamp, t: t} }
func TimestampTZValue(t time.Time) Value {
	return Value{kind: TimestampTZ, t: t}
}

// DecimalValue constructs the Decimal variant, used for exact numeric
// literals that would lose precision as a Float.
func DecimalValue(d decimal.Decimal) Value { return Value{kind: Decimal, dec: d} }

// UUIDValue constructs the UUID variant.
func UUIDValue(u uuid.UUID) Value { return Value{kind: UUID, u: u} }

// BoolValue, Int, Float, Str, Bytes, Array, Map, Time, Decimal and UUID
// return the underlying Go value for the matching Kind (Time accepts any of
// Date, Time, Timestamp and TimestampTZ). Callers must check Kind() first;
// calling the wrong accessor panics rather than silently coercing types.
func (v Value) BoolValue() bool        { v.mustBe(Bool); return v.b }
func (v Value) Int() int64             { v.mustBe(Int); return v.i }
func (v Value) Float() float64         { v.mustBe(Float); return v.f }
func (v Value) Str() string            { v.mustBe(Str); return v.s }
func (v Value) Bytes() []byte          { v.mustBe(Bytes); return v.bs }
func (v Value) Array() []Value         { v.mustBe(Array); return v.arr }
func (v Value) Map() *OrderedMap       { v.mustBe(Map); return v.m }
func (v Value) Time() time.Time {
	switch v.kind {
	case Date, Time, Timestamp, TimestampTZ:
		return v.t
	}
	panic(fmt.Sprintf("value: time accessor called on kind %d", v.kind))
}
func (v Value) Decimal() decimal.Decimal { v.mustBe(Decimal); return v.dec }
func (v Value) UUID() uuid.UUID        { v.mustBe(UUID); return v.u }

func (v Value) mustBe(k Kind) {
	if v.kind != k {
		panic(fmt.Sprintf("value: accessor for kind %d called on kind %d", k, v.kind))
	}
}

// IsZero reports whether v holds its variant's zero: Null, false, a zero
// Int or Float, or an empty Str, Bytes, Array, Map or JSON payload.
// Template conditional blocks do not use it; the renderer applies its own
// narrower falsiness rule (template's conditionIsFalsy).
func (v Value) IsZero() bool {
	switch v.kind {
	case Null:
		return true
	case Bool:
		return !v.b
	case Int:
		return v.i == 0
	case Float:
		return v.f == 0
	case Str:
		return v.s == ""
	case Bytes:
		return len(v.bs) == 0
	case Array:
		return len(v.arr) == 0
	case Map:
		return v.m == nil || v.m.Len() == 0
	case JSON:
		return len(v.jsonRaw) == 0
	default:
		return false
	}
}

// Interface unwraps v to the nearest plain Go value, suitable for handing
// to database/sql as a driver argument for dialect scalars the renderer
// doesn't special-case.
func (v Value) Interface() any {
	switch v.kind {
	case Null:
		return nil
	case Bool:
		return v.b
	case Int:
		return v.i
	case Float:
		return v.f
	case Str:
		return v.s
	case Bytes:
		return v.bs
	case Array:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Interface()
		}
		return out
	case Map:
		return v.m.ToMap()
	case JSON:
		raw, _ := v.JSONBytes()
		return raw
	case Date, Time, Timestamp, TimestampTZ:
		return v.t
	case Decimal:
		return v.dec
	case UUID:
		return v.u
	default:
		return nil
	}
}
