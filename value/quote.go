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
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/augsql/augsql/augerr"
	"github.com/augsql/augsql/dialect"
)

// QuoteLiteral renders v as a SQL literal for the given dialect. This
// exists for dry-run rendering and error messages only (§4.A) — it must
// never be used to embed untrusted data into a query that will execute.
//
// Composite values (Array, Map, JSON) have no single literal form and
// return a ParameterError.
func QuoteLiteral(v Value, d dialect.Dialect) (string, error) {
	switch v.Kind() {
	case Null:
		return "NULL", nil
	case Bool:
		return quoteBool(v.b, d), nil
	case Int:
		return strconv.FormatInt(v.i, 10), nil
	case Float:
		return strconv.FormatFloat(v.f, 'g', -1, 64), nil
	case Decimal:
		return v.dec.String(), nil
	case Str:
		return quoteString(v.s, d), nil
	case Bytes:
		return quoteBytes(v.bs, d), nil
	case UUID:
		return quoteString(v.u.String(), d), nil
	case Date:
		return quoteString(v.t.Format("2006-01-02"), d), nil
	case Time:
		return quoteString(v.t.Format("15:04:05"), d), nil
	case Timestamp:
		return quoteString(v.t.Format("2006-01-02 15:04:05"), d), nil
	case TimestampTZ:
		return quoteString(v.t.Format("2006-01-02 15:04:05Z07:00"), d), nil
	default:
		return "", augerr.Newf(augerr.KindParameter, "quote_literal: composite value of kind %d has no literal form", v.Kind())
	}
}

func quoteBool(b bool, d dialect.Dialect) string {
	switch d {
	case dialect.MySQL, dialect.MSSQL:
		if b {
			return "1"
		}
		return "0"
	default: // Postgres and unknown dialects use the SQL standard spelling.
		if b {
			return "TRUE"
		}
		return "FALSE"
	}
}

// quoteString doubles embedded single quotes, the portable SQL escaping
// rule shared by all three dialects for string literals.
func quoteString(s string, _ dialect.Dialect) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for _, r := range s {
		if r == '\'' {
			b.WriteString("''")
		} else {
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// quoteBytes renders a byte-string literal using the dialect's hex-literal
// syntax.
func quoteBytes(b []byte, d dialect.Dialect) string {
	hexStr := hex.EncodeToString(b)
	switch d {
	case dialect.Postgres:
		return "'\\x" + hexStr + "'"
	case dialect.MSSQL:
		return "0x" + hexStr
	default: // MySQL
		return "X'" + hexStr + "'"
	}
}

// EscapeLike escapes the LIKE metacharacters %, _ and the escape character
// \ itself, implementing escape_like (§4.A). The source spec's base
// behaviour only documents %  and _; per §9's Open Question this
// specification also escapes \ so a caller-supplied backslash cannot
// reintroduce an unintended escape sequence.
func EscapeLike(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\\', '%', '_':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
