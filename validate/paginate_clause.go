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

package validate

import (
	"github.com/augsql/augsql/augerr"
	"github.com/augsql/augsql/template"
)

// PaginateClause holds the three numeric bounds a caller configures once
// (min_per_page, max_per_page, default_per_page, all >= 1) and computes the
// clamped LIMIT/OFFSET pair for a given (page, per_page) request (§4.G).
type PaginateClause struct {
	MinPerPage     int
	MaxPerPage     int
	DefaultPerPage int
}

// NewPaginateClause validates the three bounds and returns a PaginateClause.
func NewPaginateClause(minPerPage, maxPerPage, defaultPerPage int) (*PaginateClause, error) {
	if minPerPage < 1 || maxPerPage < 1 || defaultPerPage < 1 {
		return nil, augerr.New(augerr.KindValidation, "validate: paginate bounds must all be >= 1")
	}
	if minPerPage > maxPerPage {
		return nil, augerr.New(augerr.KindValidation, "validate: min_per_page must not exceed max_per_page")
	}
	return &PaginateClause{MinPerPage: minPerPage, MaxPerPage: maxPerPage, DefaultPerPage: defaultPerPage}, nil
}

// Input computes limit = clamp(perPage or default, min, max) and
// offset = max(0, (page or 1) - 1) * limit (§4.G, example S6). A nil
// perPage or page argument means "not supplied" and falls back to the
// clause's default / page 1 respectively.
func (pc *PaginateClause) Input(page, perPage *int) template.PaginateBounds {
	p := pc.DefaultPerPage
	if perPage != nil {
		p = *perPage
	}
	limit := clamp(p, pc.MinPerPage, pc.MaxPerPage)

	pg := 1
	if page != nil {
		pg = *page
	}
	pageIndex := pg - 1
	if pageIndex < 0 {
		pageIndex = 0
	}
	return template.PaginateBounds{Limit: limit, Offset: pageIndex * limit}
}

func clamp(n, min, max int) int {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
