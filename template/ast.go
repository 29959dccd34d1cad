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

// Package template implements the augmented-SQL template engine
// (components B, C, D): a lexer/parser producing a cached AST, and a
// renderer that walks that AST against bound parameters to emit
// dialect-specific SQL plus an ordered bind vector.
package template

import (
	"regexp"

	"github.com/cespare/xxhash/v2"

	"github.com/augsql/augsql/dialect"
)

// IdentifierPattern is the placeholder-name grammar: a leading letter or
// underscore followed by any number of letters, digits or underscores
// (§3.2).
var IdentifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Node is one element of a parsed template. Every concrete node type in
// this file implements Node.
type Node interface {
	node()
}

// AST is an ordered, immutable list of Nodes produced by Parse, along with
// the Fingerprint used to key the AST cache.
type AST struct {
	Nodes       []Node
	Fingerprint uint64
}

// Fingerprint computes the 64-bit cache key for a (dialect, source text)
// pair (§3.2). It is exported so callers that want to probe the cache
// without parsing (e.g. metrics) can compute the same key.
func Fingerprint(d dialect.Dialect, source string) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(d.String())
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(source)
	return h.Sum64()
}

// Literal is verbatim SQL text copied into the output unchanged.
type Literal struct {
	Text string
}

func (Literal) node() {}

// PlaceholderNamed references a named binding ($name or :name).
type PlaceholderNamed struct {
	Name string
}

func (PlaceholderNamed) node() {}

// PlaceholderPositional references a 1-based positional binding (?).
type PlaceholderPositional struct {
	Index int
}

func (PlaceholderPositional) node() {}

// InList references a named binding that must be an Array, expanded (or
// collapsed) into a parenthesized placeholder list (§4.D step 4). Not
// records whether the reference appeared after a "NOT IN" keyword in the
// source text (as opposed to a plain "IN"), which determines which
// always-true/always-false fallback an empty, collapsed array renders as.
type InList struct {
	Name string
	Not  bool
}

func (InList) node() {}

// PaginateBounds is the opaque "rendered clause" carrier a PaginateClause
// validator (component G) produces and a PaginateMarker node consumes
// (§3.4, §4.D step 6). It is bound under the reserved name via
// Bindings.SetPaginate rather than as a value.Value, since it has no
// single-value representation in the parameter model.
type PaginateBounds struct {
	Limit  int
	Offset int
}

// ConditionalBlock renders Inner only if the named binding is "truthy"
// (§4.D step 5). Conditional blocks may nest.
type ConditionalBlock struct {
	Name  string
	Inner []Node
}

func (ConditionalBlock) node() {}

// PaginateMarker expands to a LIMIT/OFFSET (or OFFSET/FETCH) clause driven
// by the PaginateBounds bound through Bindings.SetPaginate (§4.D step 6).
type PaginateMarker struct{}

func (PaginateMarker) node() {}

// Raw is SQL text that bypasses placeholder/escaping interpretation
// entirely. Unlike Literal, which is produced by the lexer for plain
// text, Raw is only ever constructed programmatically — by the builder's
// raw() escape hatch (§4.E) — never parsed out of template source; the
// grammar's "raw_marker" production has no surface syntax of its own in
// this specification (see DESIGN.md).
type Raw struct {
	Text string
}

func (Raw) node() {}
