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
	"time"

	"github.com/augsql/augsql/augerr"
)

// Rows is the minimal cursor interface value.DecodeRow needs. *sql.Rows
// satisfies it; it is declared here (rather than imported from
// database/sql) so decode.go has no hard dependency on a live connection.
type Rows interface {
	Columns() ([]string, error)
	Scan(dest ...any) error
}

// DecodeRow scans the current row of r into an OrderedMap keyed by column
// name, converting each driver-native Go value into a Value. Unsupported
// native types surface as a QueryError (§4.A).
func DecodeRow(r Rows) (*OrderedMap, error) {
	cols, err := r.Columns()
	if err != nil {
		return nil, augerr.Wrap(augerr.KindQuery, "value: failed to read columns", err)
	}
	dest := make([]any, len(cols))
	scan := make([]any, len(cols))
	for i := range dest {
		scan[i] = &dest[i]
	}
	if err := r.Scan(scan...); err != nil {
		return nil, augerr.Wrap(augerr.KindQuery, "value: failed to scan row", err)
	}
	out := NewOrderedMap()
	for i, col := range cols {
		v, err := FromDriverValue(dest[i])
		if err != nil {
			return nil, err
		}
		out.Set(col, v)
	}
	return out, nil
}

// FromDriverValue converts a value produced by database/sql's default
// Scan conversions (or a driver-specific native type) into a Value.
func FromDriverValue(raw any) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return NullValue(), nil
	case bool:
		return BoolValue(t), nil
	case int64:
		return IntValue(t), nil
	case int:
		return IntValue(int64(t)), nil
	case float64:
		return FloatValue(t), nil
	case string:
		return StrValue(t), nil
	case []byte:
		cp := make([]byte, len(t))
		copy(cp, t)
		return BytesValue(cp), nil
	case time.Time:
		if t.Location() == time.UTC || t.Location() == time.Local {
			return TimestampValue(t), nil
		}
		return TimestampTZValue(t), nil
	default:
		return Value{}, augerr.Newf(augerr.KindQuery, "value: unsupported native type %T from driver", raw)
	}
}
