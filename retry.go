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
	"errors"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-sql-driver/mysql"

	"github.com/augsql/augsql/augerr"
	"github.com/augsql/augsql/dialect"
)

// isTransient classifies a driver-native error as retryable (§4.H
// "Retry policy"): connection reset, serialization failure, deadlock and
// pool-timeout conditions. Everything else (syntax errors, constraint
// violations, type mismatches) is permanent. MySQL errors carry a real
// numeric code, so they go through dialect.IsTransientMySQLError first;
// every other backend's driver error text varies enough that
// classification falls back to substring matching against the
// SQLSTATE-ish phrases lib/pq and go-mssqldb surface, wrapping the driver
// cause rather than parsing structured driver error codes.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return dialect.IsTransientMySQLError(myErr)
	}
	var ae *augerr.Error
	if errors.As(err, &ae) {
		switch ae.Kind {
		case augerr.KindTimeout, augerr.KindPoolExhausted:
			return true
		case augerr.KindConnection:
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{
		"connection reset", "broken pipe", "connection refused",
		"deadlock", "serialization failure", "could not serialize access",
		"context deadline exceeded", "timeout", "too many connections",
	} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

// runWithRetry executes op, retrying transient failures with exponential
// backoff up to opts.RetryMaxAttempts times (§4.H). It never retries
// inside a transaction: while d.txStack is non-empty, op runs exactly
// once.
func (d *Driver) runWithRetry(ctx context.Context, op func() error) error {
	if d.opts.RetryMaxAttempts <= 0 || len(d.txStack) > 0 {
		return op()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.opts.RetryInitialBackoff
	b.MaxInterval = d.opts.RetryMaxBackoff
	b.Multiplier = d.opts.RetryMultiplier
	b.MaxElapsedTime = 0

	bctx := backoff.WithContext(b, ctx)

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if attempt > d.opts.RetryMaxAttempts || !isTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, bctx)
}
