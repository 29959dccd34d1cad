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
	"time"

	"github.com/augsql/augsql/augerr"
	"github.com/augsql/augsql/template"
)

// Result mirrors database/sql.Result with the fields every dialect this
// package supports actually provides; MSSQL's driver reports -1 for
// RowsAffected on some statements, which is passed through unchanged
// rather than mapped to an error.
type Result struct {
	LastInsertID int64
	RowsAffected int64
}

// Exec renders source against bindings and runs it as a write (INSERT,
// UPDATE, DELETE, DDL, …), returning the driver's reported result. It
// shares the render/cache/retry/hook pipeline Driver.exec uses for reads.
func (d *Driver) Exec(ctx context.Context, source string, bindings *template.Bindings) (Result, error) {
	ast, err := d.cache.GetOrParse(d.dialect, source)
	if err != nil {
		return Result{}, err
	}

	rendered, err := template.Render(ast, bindings, d.dialect, template.ModePlaceholder, template.Options{
		CollapsibleIn: d.opts.CollapsibleIn,
	})
	if err != nil {
		return Result{}, err
	}

	if d.opts.Readonly {
		return Result{}, augerr.New(augerr.KindNotPermitted, "augsql: driver is read-only")
	}

	var inlineSQL string
	if inline, err := template.Render(ast, bindings, d.dialect, template.ModeInline, template.Options{
		CollapsibleIn: d.opts.CollapsibleIn,
	}); err == nil {
		inlineSQL = inline.SQL
	}

	start := time.Now()
	var result Result
	err = d.runWithRetry(ctx, func() error {
		q, connErr := d.conn(ctx, rendered.SQL)
		if connErr != nil {
			return connErr
		}
		sqlResult, execErr := q.ExecContext(ctx, rendered.SQL, rendered.Args...)
		if execErr != nil {
			return augerr.Wrap(augerr.KindQuery, "augsql: exec failed", execErr)
		}
		id, _ := sqlResult.LastInsertId()
		affected, _ := sqlResult.RowsAffected()
		result = Result{LastInsertID: id, RowsAffected: affected}
		return nil
	})
	d.fireHook(rendered.SQL, inlineSQL, time.Since(start).Milliseconds())
	if err != nil {
		return Result{}, err
	}
	return result, nil
}
