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

package value

import (
	"encoding/json"

	"github.com/augsql/augsql/augerr"
)

// JSONValue wraps raw, already-valid UTF-8 JSON bytes as the JSON variant.
// raw is validated eagerly (§3.1 invariant: "Json bytes are valid JSON when
// constructed via the JSON wrapper"); decoding into a Go value is deferred
// until JSONDecode is called, matching the "decoded-lazily flag" in §3.1.
func JSONValue(raw []byte) (Value, error) {
	if !json.Valid(raw) {
		return Value{}, augerr.New(augerr.KindParameter, "value: invalid JSON payload")
	}
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return Value{kind: JSON, jsonRaw: cp}, nil
}

// JSONWrap marshals an arbitrary Go value to JSON and wraps the result,
// implementing json_wrap (§4.A).
func JSONWrap(v any) (Value, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Value{}, augerr.Wrap(augerr.KindParameter, "value: json_wrap failed", err)
	}
	return Value{kind: JSON, jsonRaw: raw}, nil
}

// JSONBytes returns the raw JSON bytes of a JSON-kind Value.
func (v Value) JSONBytes() ([]byte, error) {
	if v.kind != JSON {
		return nil, augerr.New(augerr.KindParameter, "value: JSONBytes called on non-JSON value")
	}
	return v.jsonRaw, nil
}

// JSONDecode lazily unmarshals the wrapped JSON bytes into dest and, via
// the pointer receiver, records dest and the decoded flag on the Value it
// is called on; copies of that Value taken before the call are unaffected.
func (v *Value) JSONDecode(dest any) error {
	if v.kind != JSON {
		return augerr.New(augerr.KindParameter, "value: JSONDecode called on non-JSON value")
	}
	if err := json.Unmarshal(v.jsonRaw, dest); err != nil {
		return augerr.Wrap(augerr.KindQuery, "value: failed to decode JSON", err)
	}
	v.jsonDecoded = true
	v.jsonValue = dest
	return nil
}

// JSONDecoded reports whether JSONDecode has been called on this Value.
func (v Value) JSONDecoded() bool {
	return v.jsonDecoded
}
