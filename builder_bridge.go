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

	"github.com/augsql/augsql/builder"
	"github.com/augsql/augsql/template"
)

// bindingsFromDried converts a builder's dry-run output into the named
// bindings the template renderer expects, so a *builder.Builder can feed
// straight into any of the Driver's query methods without the caller
// threading parameters through by hand.
func bindingsFromDried(dr *builder.Dried) *template.Bindings {
	b := template.NewBindings()
	for name, v := range dr.Params {
		b.Set(name, v)
	}
	return b
}

// QueryBuilder renders b for the driver's dialect and returns every row
// (shaped per Options.AssocArrays), the same as AllRows but taking a
// *builder.Builder directly instead of a raw template source + bindings.
func (d *Driver) QueryBuilder(ctx context.Context, b *builder.Builder) ([]any, error) {
	dr, err := b.Dry(d.dialect)
	if err != nil {
		return nil, err
	}
	return d.AllRows(ctx, dr.Template, bindingsFromDried(dr))
}

// ExecBuilder renders b for the driver's dialect and runs it as a write,
// the builder-driven counterpart of Exec.
func (d *Driver) ExecBuilder(ctx context.Context, b *builder.Builder) (Result, error) {
	dr, err := b.Dry(d.dialect)
	if err != nil {
		return Result{}, err
	}
	return d.Exec(ctx, dr.Template, bindingsFromDried(dr))
}
