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
	"fmt"

	"github.com/augsql/augsql/augerr"
)

// ParseErrorKind enumerates the §4.B error kinds.
type ParseErrorKind uint8

const (
	UnterminatedConditional ParseErrorKind = iota
	UnknownEscape
	MalformedPlaceholder
	MismatchedConditionalTags
)

// ParseError reports a lexing/parsing failure. It also satisfies
// augerr.Kind via augerr.Is(err, augerr.KindParse).
type ParseError struct {
	Kind    ParseErrorKind
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("template: parse error: %s", e.Message)
}

// AsAugErr converts a ParseError into the shared error taxonomy.
func (e *ParseError) AsAugErr() *augerr.Error {
	return augerr.Wrap(augerr.KindParse, e.Message, e)
}

// RenderErrorKind enumerates the §4.D rendering error kinds that are not
// already covered by ParameterError.
type RenderErrorKind uint8

const (
	PlaceholderLimitExceeded RenderErrorKind = iota
)

// RenderError reports a renderer-side failure unrelated to missing or
// mistyped parameters.
type RenderError struct {
	Kind    RenderErrorKind
	Message string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("template: render error: %s", e.Message)
}

func (e *RenderError) AsAugErr() *augerr.Error {
	return augerr.Wrap(augerr.KindParse, e.Message, e)
}

// ParameterError reports a binding failure: a referenced name has no
// binding, or an InList reference was bound to a non-array.
type ParameterError struct {
	Missing     string
	TypeMismatch bool
	Message     string
}

func (e *ParameterError) Error() string {
	if e.Message != "" {
		return "template: " + e.Message
	}
	if e.TypeMismatch {
		return fmt.Sprintf("template: parameter %q: expected an array for an in-list reference", e.Missing)
	}
	return fmt.Sprintf("template: parameter %q not found", e.Missing)
}

func (e *ParameterError) AsAugErr() *augerr.Error {
	return augerr.Wrap(augerr.KindParameter, e.Error(), e)
}
