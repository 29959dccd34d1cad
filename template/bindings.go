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

import "github.com/augsql/augsql/value"

// Bindings carries every value the renderer may need to resolve against
// an AST: named references, 1-based positional references, and the
// reserved paginate-clause slot (§3.4, §4.D step 6).
type Bindings struct {
	named      map[string]value.Value
	positional map[int]value.Value
	paginate   *PaginateBounds
}

// NewBindings creates an empty Bindings.
func NewBindings() *Bindings {
	return &Bindings{named: make(map[string]value.Value)}
}

// Set binds a named reference.
func (b *Bindings) Set(name string, v value.Value) *Bindings {
	if b.named == nil {
		b.named = make(map[string]value.Value)
	}
	b.named[name] = v
	return b
}

// SetPositional binds a 1-based positional reference.
func (b *Bindings) SetPositional(index int, v value.Value) *Bindings {
	if b.positional == nil {
		b.positional = make(map[int]value.Value)
	}
	b.positional[index] = v
	return b
}

// SetPaginate binds the reserved paginate-marker slot.
func (b *Bindings) SetPaginate(bounds PaginateBounds) *Bindings {
	b.paginate = &bounds
	return b
}

// Named returns the value bound to name, if any.
func (b *Bindings) Named(name string) (value.Value, bool) {
	if b == nil {
		return value.Value{}, false
	}
	v, ok := b.named[name]
	return v, ok
}

// Positional returns the value bound to the 1-based index, if any.
func (b *Bindings) Positional(index int) (value.Value, bool) {
	if b == nil {
		return value.Value{}, false
	}
	v, ok := b.positional[index]
	return v, ok
}

// Paginate returns the bound paginate bounds, if any.
func (b *Bindings) Paginate() (PaginateBounds, bool) {
	if b == nil || b.paginate == nil {
		return PaginateBounds{}, false
	}
	return *b.paginate, true
}
