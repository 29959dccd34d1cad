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

import "github.com/augsql/augsql/value"

// Pair is one [column, value] entry of a PairList input.
type Pair struct {
	Column string
	Value  value.Value
}

// RawFragment is one entry of a RawList input: a literal SQL fragment with
// no associated column.
type RawFragment struct {
	SQL string
}

// normalizeAssignments implements the §9 "tagged-input normaliser" for SET:
// it accepts a Map (column -> value), a PairList ([]Pair), or a RawList
// ([]RawFragment), and always returns an ordered []Assignment. Each fluent
// method that takes one of these shapes delegates here rather than
// branching inline.
func normalizeAssignments(input any) []Assignment {
	switch v := input.(type) {
	case *value.OrderedMap:
		out := make([]Assignment, 0, v.Len())
		for _, k := range v.Keys() {
			val, _ := v.Get(k)
			out = append(out, Assignment{Column: k, Value: val})
		}
		return out
	case []Pair:
		out := make([]Assignment, 0, len(v))
		for _, p := range v {
			out = append(out, Assignment{Column: p.Column, Value: p.Value})
		}
		return out
	case []RawFragment:
		out := make([]Assignment, 0, len(v))
		for _, f := range v {
			out = append(out, Assignment{Raw: f.SQL, IsRaw: true})
		}
		return out
	default:
		return nil
	}
}

// Row is a single VALUES row expressed as a Map (column -> value); missing
// keys relative to the frozen column order become NULL (§3.3).
type Row = *value.OrderedMap

// normalizeValues implements §4.E's VALUES normalisation: the input may be
// a single Map (one row), a single []Pair (one row, preserving order), or
// a []Row (many rows, each a Map). The column order is frozen from the
// first row; subsequent rows are reindexed against it, with any column
// absent from a given row becoming NULL.
func normalizeValues(input any) (columns []string, rows [][]value.Value) {
	switch v := input.(type) {
	case *value.OrderedMap:
		return normalizeValuesRows([]Row{v})
	case []Pair:
		cols := make([]string, 0, len(v))
		row := make([]value.Value, 0, len(v))
		for _, p := range v {
			cols = append(cols, p.Column)
			row = append(row, p.Value)
		}
		return cols, [][]value.Value{row}
	case []Row:
		return normalizeValuesRows(v)
	default:
		return nil, nil
	}
}

func normalizeValuesRows(maps []Row) (columns []string, rows [][]value.Value) {
	if len(maps) == 0 {
		return nil, nil
	}
	columns = append([]string(nil), maps[0].Keys()...)
	rows = make([][]value.Value, len(maps))
	for i, m := range maps {
		row := make([]value.Value, len(columns))
		for j, col := range columns {
			if val, ok := m.Get(col); ok {
				row[j] = val
			} else {
				row[j] = value.NullValue()
			}
		}
		rows[i] = row
	}
	return columns, rows
}
