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
	"regexp"
	"strings"

	"github.com/augsql/augsql/dialect"
)

// notInContext and inContext match template text immediately preceding a named
// placeholder that signals implicit IN-list usage (§4.D step 4, example
// S2): "... IN " or "... NOT IN " with no explicit "[]" sugar needed.
var (
	notInContext = regexp.MustCompile(`(?i)\bNOT\s+IN\s*$`)
	inContext    = regexp.MustCompile(`(?i)\bIN\s*$`)
)

// inListPolarity reports whether trailing matches an IN-list context and,
// if so, whether it was a "NOT IN" (negated=true) or plain "IN".
func inListPolarity(trailing string) (matched, negated bool) {
	trailing = strings.TrimRight(trailing, " \t\r\n")
	if notInContext.MatchString(trailing) {
		return true, true
	}
	if inContext.MatchString(trailing) {
		return true, false
	}
	return false, false
}

// frame tracks one open {{name}} conditional block while parsing.
type frame struct {
	name  string
	nodes []Node
}

// Parse lexes and parses source into an AST, computing its fingerprint
// for the given dialect. Parse does not consult or populate the cache;
// see Cache.GetOrParse for the cached entry point.
func Parse(d dialect.Dialect, source string) (*AST, error) {
	toks, err := lex(source)
	if err != nil {
		return nil, err
	}

	var root []Node
	stack := []*frame{{name: "", nodes: nil}}
	positional := 0
	var lastLiteral string

	push := func(n Node) {
		top := stack[len(stack)-1]
		top.nodes = append(top.nodes, n)
	}

	for _, tok := range toks {
		switch tok.kind {
		case tokText:
			push(Literal{Text: tok.text})
			lastLiteral = tok.text

		case tokPlaceholderPositional:
			positional++
			push(PlaceholderPositional{Index: positional})
			lastLiteral = ""

		case tokInListSugar:
			_, negated := inListPolarity(lastLiteral)
			push(InList{Name: tok.name, Not: negated})
			lastLiteral = ""

		case tokPlaceholderNamed:
			if matched, negated := inListPolarity(lastLiteral); matched {
				push(InList{Name: tok.name, Not: negated})
			} else {
				push(PlaceholderNamed{Name: tok.name})
			}
			lastLiteral = ""

		case tokPaginate:
			push(PaginateMarker{})
			lastLiteral = ""

		case tokCondOpen:
			stack = append(stack, &frame{name: tok.name})
			lastLiteral = ""

		case tokCondClose:
			if len(stack) == 1 {
				return nil, &ParseError{
					Kind:    MismatchedConditionalTags,
					Message: "unexpected {{/" + tok.name + "}} with no matching {{" + tok.name + "}}",
				}
			}
			top := stack[len(stack)-1]
			if top.name != tok.name {
				return nil, &ParseError{
					Kind:    MismatchedConditionalTags,
					Message: "closing tag {{/" + tok.name + "}} does not match open tag {{" + top.name + "}}",
				}
			}
			stack = stack[:len(stack)-1]
			push(ConditionalBlock{Name: top.name, Inner: top.nodes})
			lastLiteral = ""
		}
	}

	if len(stack) != 1 {
		unclosed := stack[len(stack)-1]
		return nil, &ParseError{
			Kind:    UnterminatedConditional,
			Message: "unterminated conditional block {{" + unclosed.name + "}}",
		}
	}
	root = stack[0].nodes

	return &AST{Nodes: root, Fingerprint: Fingerprint(d, source)}, nil
}
