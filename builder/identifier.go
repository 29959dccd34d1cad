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
	"regexp"

	"github.com/augsql/augsql/augerr"
	"github.com/augsql/augsql/dialect"
)

// IdentifierPattern is the §6 "Identifier validation regex": a dotted pair
// of simple identifiers, e.g. "users" or "u.id". Anything else must go
// through Raw, which the caller certifies.
var IdentifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidateIdentifier returns a ValidationError if ident does not match
// IdentifierPattern.
func ValidateIdentifier(ident string) error {
	if !IdentifierPattern.MatchString(ident) {
		return augerr.Newf(augerr.KindValidation, "builder: identifier %q does not match %s", ident, IdentifierPattern.String())
	}
	return nil
}

// QuoteIdentifier wraps each dot-separated segment of ident in the
// dialect's quoting character. Callers are expected to have already run
// ValidateIdentifier; QuoteIdentifier does not re-validate.
func QuoteIdentifier(ident string, d dialect.Dialect) string {
	quote := byte('"')
	if d == dialect.MySQL {
		quote = '`'
	}
	if d == dialect.MSSQL {
		return quoteSegments(ident, '[', ']')
	}
	return quoteSegmentsSame(ident, quote)
}

func quoteSegmentsSame(ident string, quote byte) string {
	out := make([]byte, 0, len(ident)+4)
	start := 0
	for i := 0; i <= len(ident); i++ {
		if i == len(ident) || ident[i] == '.' {
			out = append(out, quote)
			out = append(out, ident[start:i]...)
			out = append(out, quote)
			if i != len(ident) {
				out = append(out, '.')
			}
			start = i + 1
		}
	}
	return string(out)
}

func quoteSegments(ident string, open, close byte) string {
	out := make([]byte, 0, len(ident)+4)
	start := 0
	for i := 0; i <= len(ident); i++ {
		if i == len(ident) || ident[i] == '.' {
			out = append(out, open)
			out = append(out, ident[start:i]...)
			out = append(out, close)
			if i != len(ident) {
				out = append(out, '.')
			}
			start = i + 1
		}
	}
	return string(out)
}
