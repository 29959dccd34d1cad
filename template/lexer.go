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
)

type tokenKind uint8

const (
	tokText tokenKind = iota
	tokPlaceholderNamed
	tokPlaceholderPositional
	tokInListSugar
	tokCondOpen
	tokCondClose
	tokPaginate
)

type token struct {
	kind tokenKind
	text string // tokText payload
	name string // placeholder/sugar/conditional name
}

// lex tokenizes source into a flat token stream. It does not validate
// conditional nesting; that is the parser's job.
func lex(source string) ([]token, error) {
	var toks []token
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			toks = append(toks, token{kind: tokText, text: lit.String()})
			lit.Reset()
		}
	}

	runes := []rune(source)
	n := len(runes)
	i := 0
	for i < n {
		c := runes[i]

		switch {
		case c == '\\' && i+1 < n && (runes[i+1] == '$' || runes[i+1] == ':'):
			lit.WriteRune(runes[i+1])
			i += 2
			continue

		case c == '\'' || c == '"' || c == '`':
			// Opaque quoted literal/identifier: copy verbatim, including the
			// quote characters, handling doubled-quote escapes.
			quote := c
			lit.WriteRune(c)
			i++
			for i < n {
				lit.WriteRune(runes[i])
				if runes[i] == quote {
					if i+1 < n && runes[i+1] == quote {
						lit.WriteRune(runes[i+1])
						i += 2
						continue
					}
					i++
					break
				}
				i++
			}
			continue

		case c == '{' && i+1 < n && runes[i+1] == '{':
			tok, consumed, err := lexBraceTag(runes, i)
			if err != nil {
				return nil, err
			}
			flush()
			toks = append(toks, tok)
			i += consumed
			continue

		case c == '$':
			name, consumed, isSugar, ok := lexIdentAt(runes, i+1)
			if ok {
				flush()
				if isSugar {
					toks = append(toks, token{kind: tokInListSugar, name: name})
				} else {
					toks = append(toks, token{kind: tokPlaceholderNamed, name: name})
				}
				i += 1 + consumed
				continue
			}
			lit.WriteRune(c)
			i++
			continue

		case c == ':':
			name, consumed, _, ok := lexIdentAt(runes, i+1)
			if ok {
				flush()
				toks = append(toks, token{kind: tokPlaceholderNamed, name: name})
				i += 1 + consumed
				continue
			}
			lit.WriteRune(c)
			i++
			continue

		case c == '?':
			flush()
			toks = append(toks, token{kind: tokPlaceholderPositional})
			i++
			continue

		default:
			lit.WriteRune(c)
			i++
			continue
		}
	}
	flush()
	return toks, nil
}

// lexIdentAt reads an identifier starting exactly at position start (no
// whitespace is skipped before or after it), returning the
// identifier, the number of runes consumed from start, whether it was
// followed by the "[]" in-list sugar suffix, and whether an identifier was
// found at all.
func lexIdentAt(runes []rune, start int) (name string, consumed int, isSugar bool, ok bool) {
	n := len(runes)
	i := start
	if i >= n || !isIdentStart(runes[i]) {
		return "", 0, false, false
	}
	j := i
	for j < n && isIdentPart(runes[j]) {
		j++
	}
	name = string(runes[i:j])
	consumed = j - start
	if j+1 < n && runes[j] == '[' && runes[j+1] == ']' {
		return name, consumed + 2, true, true
	}
	return name, consumed, false, true
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

// lexBraceTag lexes one of {{name}}, {{/name}} or {{paginate}} starting at
// position i (where runes[i] == runes[i+1] == '{'). It returns the token
// and how many runes were consumed from i.
func lexBraceTag(runes []rune, i int) (token, int, error) {
	n := len(runes)
	j := i + 2
	closing := false
	if j < n && runes[j] == '/' {
		closing = true
		j++
	}
	start := j
	for j < n && isIdentPart(runes[j]) {
		j++
	}
	name := string(runes[start:j])
	// skip whitespace before the closing braces
	for j < n && (runes[j] == ' ' || runes[j] == '\t') {
		j++
	}
	if j+1 >= n || runes[j] != '}' || runes[j+1] != '}' {
		return token{}, 0, &ParseError{Kind: MalformedPlaceholder, Message: "malformed {{...}} tag"}
	}
	consumed := (j + 2) - i
	if name == "" {
		return token{}, 0, &ParseError{Kind: MalformedPlaceholder, Message: "empty {{...}} tag name"}
	}
	switch {
	case closing:
		return token{kind: tokCondClose, name: name}, consumed, nil
	case name == "paginate":
		return token{kind: tokPaginate}, consumed, nil
	default:
		return token{kind: tokCondOpen, name: name}, consumed, nil
	}
}
