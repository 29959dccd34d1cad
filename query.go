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

package augsql

import (
	"context"
	"fmt"
	"time"

	"github.com/augsql/augsql/augerr"
	"github.com/augsql/augsql/template"
	"github.com/augsql/augsql/value"
)

// Row is a decoded query result row, keyed by column name in column
// order. The …(no suffix) family converts it to a positional tuple with
// rowToPositional when Options.AssocArrays is false (§4.H "assoc_arrays
// ... default row shape").
type Row = value.OrderedMap

// rowToPositional converts a decoded Row into an ordered []value.Value,
// discarding column names. This is the "default" (non-assoc) row shape.
func rowToPositional(r *Row) []value.Value {
	keys := r.Keys()
	out := make([]value.Value, len(keys))
	for i, k := range keys {
		v, _ := r.Get(k)
		out[i] = v
	}
	return out
}

// exec renders a template (by source text, cached by fingerprint), runs
// it against the connection the current call should use (transaction,
// pinned scope or pool/replica — see Driver.conn), fires the query hook,
// and returns the live *sql.Rows, wrapped in a rowCursor, for the caller
// to decode.
//
// It is the choke point every query method in this file except Stream
// funnels through, centralizing render-then-execute the way one statement handler
// serving every mapped statement would.
func (d *Driver) exec(ctx context.Context, source string, bindings *template.Bindings) (*rowCursor, error) {
	ast, err := d.cache.GetOrParse(d.dialect, source)
	if err != nil {
		return nil, err
	}

	rendered, err := template.Render(ast, bindings, d.dialect, template.ModePlaceholder, template.Options{
		CollapsibleIn: d.opts.CollapsibleIn,
	})
	if err != nil {
		return nil, err
	}

	if d.opts.Readonly && !isReadOnlyStatement(rendered.SQL) {
		return nil, augerr.New(augerr.KindNotPermitted, "augsql: driver is read-only")
	}

	var inlineSQL string
	if inline, err := template.Render(ast, bindings, d.dialect, template.ModeInline, template.Options{
		CollapsibleIn: d.opts.CollapsibleIn,
	}); err == nil {
		inlineSQL = inline.SQL
	}

	start := time.Now()
	var rows *rowCursor
	err = d.runWithRetry(ctx, func() error {
		q, connErr := d.conn(ctx, rendered.SQL)
		if connErr != nil {
			return connErr
		}
		sqlRows, qErr := q.QueryContext(ctx, rendered.SQL, rendered.Args...)
		if qErr != nil {
			return augerr.Wrap(augerr.KindQuery, "augsql: query failed", qErr)
		}
		rows = &rowCursor{rows: sqlRows}
		return nil
	})
	d.fireHook(rendered.SQL, inlineSQL, time.Since(start).Milliseconds())
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// rowCursor adapts *sql.Rows to value.Rows plus iteration.
type rowCursor struct {
	rows interface {
		Next() bool
		Columns() ([]string, error)
		Scan(dest ...any) error
		Err() error
		Close() error
	}
}

func (rc *rowCursor) decodeAll() ([]*Row, error) {
	defer rc.rows.Close()
	var out []*Row
	for rc.rows.Next() {
		row, err := value.DecodeRow(rc.rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rc.rows.Err(); err != nil {
		return nil, augerr.Wrap(augerr.KindQuery, "augsql: row iteration failed", err)
	}
	return out, nil
}

// ---- Row family ----

// AllRows returns every row, shaped per Options.AssocArrays.
func (d *Driver) AllRows(ctx context.Context, source string, bindings *template.Bindings) ([]any, error) {
	rc, err := d.exec(ctx, source, bindings)
	if err != nil {
		return nil, err
	}
	rows, err := rc.decodeAll()
	if err != nil {
		return nil, err
	}
	return shapeRows(rows, d.opts.AssocArrays), nil
}

// AllRowsAssoc returns every row as an associative OrderedMap regardless
// of Options.AssocArrays.
func (d *Driver) AllRowsAssoc(ctx context.Context, source string, bindings *template.Bindings) ([]*Row, error) {
	rc, err := d.exec(ctx, source, bindings)
	if err != nil {
		return nil, err
	}
	return rc.decodeAll()
}

// Row returns exactly one row; zero or more than one rows is a QueryError.
func (d *Driver) Row(ctx context.Context, source string, bindings *template.Bindings) (any, error) {
	rows, err := d.AllRowsAssoc(ctx, source, bindings)
	if err != nil {
		return nil, err
	}
	row, err := exactlyOne(rows)
	if err != nil {
		return nil, err
	}
	return shapeRow(row, d.opts.AssocArrays), nil
}

// MaybeRow returns one row, or nil if the query produced none; more than
// one row is still a QueryError.
func (d *Driver) MaybeRow(ctx context.Context, source string, bindings *template.Bindings) (any, error) {
	rows, err := d.AllRowsAssoc(ctx, source, bindings)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	row, err := exactlyOne(rows)
	if err != nil {
		return nil, err
	}
	return shapeRow(row, d.opts.AssocArrays), nil
}

// Dictionary keys every row by the string form of its first column
// (§6 "the first column becomes the string key"); a later row with a
// duplicate key overwrites the earlier one.
func (d *Driver) Dictionary(ctx context.Context, source string, bindings *template.Bindings) (map[string]any, error) {
	rows, err := d.AllRowsAssoc(ctx, source, bindings)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 && rows[0].Len() == 0 {
		return nil, augerr.New(augerr.KindQuery, "augsql: dictionary query requires at least one column")
	}
	out := make(map[string]any, len(rows))
	for _, r := range rows {
		key, err := firstColumnKey(r)
		if err != nil {
			return nil, err
		}
		out[key] = shapeRow(r, d.opts.AssocArrays)
	}
	return out, nil
}

// GroupedRows keys every row by its first column, collecting same-keyed
// rows into an order-preserving list (§6 "Grouped variants").
func (d *Driver) GroupedRows(ctx context.Context, source string, bindings *template.Bindings) (*GroupedMap, error) {
	rows, err := d.AllRowsAssoc(ctx, source, bindings)
	if err != nil {
		return nil, err
	}
	out := NewGroupedMap()
	for _, r := range rows {
		key, err := firstColumnKey(r)
		if err != nil {
			return nil, err
		}
		out.Append(key, shapeRow(r, d.opts.AssocArrays))
	}
	return out, nil
}

// ---- Value family: a single scalar from the first column ----

// Value returns the first column of exactly one row.
func (d *Driver) Value(ctx context.Context, source string, bindings *template.Bindings) (value.Value, error) {
	rows, err := d.AllRowsAssoc(ctx, source, bindings)
	if err != nil {
		return value.Value{}, err
	}
	row, err := exactlyOne(rows)
	if err != nil {
		return value.Value{}, err
	}
	return firstColumnValue(row)
}

// MaybeValue returns the first column of at most one row; a Null Value
// (with ok=false) signals no rows.
func (d *Driver) MaybeValue(ctx context.Context, source string, bindings *template.Bindings) (v value.Value, ok bool, err error) {
	rows, err := d.AllRowsAssoc(ctx, source, bindings)
	if err != nil {
		return value.Value{}, false, err
	}
	if len(rows) == 0 {
		return value.NullValue(), false, nil
	}
	row, err := exactlyOne(rows)
	if err != nil {
		return value.Value{}, false, err
	}
	v, err = firstColumnValue(row)
	return v, true, err
}

// AllValues returns the first column of every row, in row order.
func (d *Driver) AllValues(ctx context.Context, source string, bindings *template.Bindings) ([]value.Value, error) {
	rows, err := d.AllRowsAssoc(ctx, source, bindings)
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, 0, len(rows))
	for _, r := range rows {
		v, err := firstColumnValue(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ---- Column family: first column is the key, second is the value ----

// ColumnDictionary maps the string form of each row's first column to its
// second column (§6 "Column-dictionary methods require at least two
// columns; the second becomes the value").
func (d *Driver) ColumnDictionary(ctx context.Context, source string, bindings *template.Bindings) (map[string]value.Value, error) {
	rows, err := d.AllRowsAssoc(ctx, source, bindings)
	if err != nil {
		return nil, err
	}
	out := make(map[string]value.Value, len(rows))
	for _, r := range rows {
		key, val, err := firstTwoColumns(r)
		if err != nil {
			return nil, err
		}
		out[key] = val
	}
	return out, nil
}

// ColumnGrouped is ColumnDictionary's grouped counterpart: duplicate keys
// accumulate an order-preserving list of values instead of overwriting.
func (d *Driver) ColumnGrouped(ctx context.Context, source string, bindings *template.Bindings) (map[string][]value.Value, error) {
	rows, err := d.AllRowsAssoc(ctx, source, bindings)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]value.Value, len(rows))
	for _, r := range rows {
		key, val, err := firstTwoColumns(r)
		if err != nil {
			return nil, err
		}
		out[key] = append(out[key], val)
	}
	return out, nil
}

// ---- Streaming ----

// Stream runs the query and returns a Stream over its rows instead of
// buffering them all in memory (§4.J).
func (d *Driver) Stream(ctx context.Context, source string, bindings *template.Bindings, batchSize int) (*Stream, error) {
	ast, err := d.cache.GetOrParse(d.dialect, source)
	if err != nil {
		return nil, err
	}
	rendered, err := template.Render(ast, bindings, d.dialect, template.ModePlaceholder, template.Options{
		CollapsibleIn: d.opts.CollapsibleIn,
	})
	if err != nil {
		return nil, err
	}
	if d.opts.Readonly && !isReadOnlyStatement(rendered.SQL) {
		return nil, augerr.New(augerr.KindNotPermitted, "augsql: driver is read-only")
	}
	var inlineSQL string
	if inline, err := template.Render(ast, bindings, d.dialect, template.ModeInline, template.Options{
		CollapsibleIn: d.opts.CollapsibleIn,
	}); err == nil {
		inlineSQL = inline.SQL
	}
	q, err := d.conn(ctx, rendered.SQL)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	sqlRows, err := q.QueryContext(ctx, rendered.SQL, rendered.Args...)
	d.fireHook(rendered.SQL, inlineSQL, time.Since(start).Milliseconds())
	if err != nil {
		return nil, augerr.Wrap(augerr.KindQuery, "augsql: stream query failed", err)
	}
	return newStream(ctx, sqlRows, batchSize), nil
}

// ---- shared helpers ----

func shapeRows(rows []*Row, assoc bool) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = shapeRow(r, assoc)
	}
	return out
}

func shapeRow(r *Row, assoc bool) any {
	if assoc {
		return r
	}
	return rowToPositional(r)
}

func exactlyOne(rows []*Row) (*Row, error) {
	if len(rows) == 0 {
		return nil, augerr.New(augerr.KindQuery, "augsql: expected exactly one row, got none")
	}
	if len(rows) > 1 {
		return nil, augerr.Newf(augerr.KindQuery, "augsql: expected exactly one row, got %d", len(rows))
	}
	return rows[0], nil
}

func firstColumnKey(r *Row) (string, error) {
	v, err := firstColumnValue(r)
	if err != nil {
		return "", err
	}
	return valueToKey(v), nil
}

// valueToKey renders a Value as a dictionary/grouped-map string key. Null
// keys render as the empty string; every other kind uses its plain Go
// representation (fmt.Sprint over Value.Interface()).
func valueToKey(v value.Value) string {
	if v.IsNull() {
		return ""
	}
	return fmt.Sprint(v.Interface())
}

func firstColumnValue(r *Row) (value.Value, error) {
	keys := r.Keys()
	if len(keys) == 0 {
		return value.Value{}, augerr.New(augerr.KindQuery, "augsql: row has no columns")
	}
	v, _ := r.Get(keys[0])
	return v, nil
}

func firstTwoColumns(r *Row) (key string, val value.Value, err error) {
	keys := r.Keys()
	if len(keys) < 2 {
		return "", value.Value{}, augerr.New(augerr.KindQuery, "augsql: column-dictionary query requires at least two columns")
	}
	kv, _ := r.Get(keys[0])
	vv, _ := r.Get(keys[1])
	return valueToKey(kv), vv, nil
}
