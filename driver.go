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

// Package augsql is the public entry point: a Driver wraps a connection
// pool (optionally shared by persistent name, optionally fronted by read
// replicas), the augmented-SQL template engine, and a transaction/pinned
// connection stack, exposing a query-method family over the three axes
// described in SPEC_FULL.md §6.
package augsql

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/augsql/augsql/augerr"
	"github.com/augsql/augsql/dialect"
	"github.com/augsql/augsql/template"
)

// debugLog is the package-level logger backing internal conditions that
// have no room in QueryHook's signature (§4.H), matching juice's
// log.Logger-backed DebugMiddleware rather than introducing a dependency
// for this one concern.
var debugLog = log.New(log.Writer(), "[augsql] ", log.Flags())

// QueryHook is invoked after every execution with the rendered
// (placeholder) SQL, the dry-run inline SQL and the call's wall-clock
// duration in milliseconds (§4.H). A panic inside the hook is recovered
// and discarded; the call that triggered it still returns normally.
type QueryHook func(renderedSQL, inlineSQL string, durationMS int64)

// Driver is the coordinator described by §3.5 and §4.H: a pool handle (or
// a handle onto a shared persistent pool), a dialect tag, an AST cache, an
// optional query hook and a per-driver transaction stack. The
// pool-acquisition shape generalizes a named-source connection manager's
// "one *sql.DB per source name" into "one primary plus N replicas, keyed
// by dialect + persistent_name".
type Driver struct {
	dialect dialect.Dialect
	opts    Options

	primary  *sql.DB
	replicas []*sql.DB

	cache *template.Cache

	hook        atomic.Pointer[QueryHook]
	replicaNext atomic.Uint64

	// txStack and pinned are deliberately unsynchronized: §5 states a
	// Driver handle is bound to the goroutine that created it and is not
	// safe to share across goroutines concurrently.
	txStack []*Transaction
	pinned  *sql.Conn
}

// Open constructs a Driver for the given dialect and pool options. If
// Options.PersistentName is set, the underlying pool (and any replicas)
// are shared across every Driver opened with the same (dialect, name)
// within the process; a later Open with different Options for the same
// key raises a ConfigurationError (§6 "Persistent pools").
func Open(d dialect.Dialect, opts Options) (*Driver, error) {
	opts = opts.withDefaults()
	if opts.URL == "" {
		return nil, augerr.New(augerr.KindConfiguration, "augsql: Options.URL is required")
	}

	build := func(o Options) (*pooledConn, error) {
		primary, err := openPool(d, o.URL, o)
		if err != nil {
			return nil, augerr.Wrap(augerr.KindConnection, "augsql: failed to open primary pool", err)
		}
		replicas := make([]*sql.DB, 0, len(o.ReadReplicas))
		for _, url := range o.ReadReplicas {
			rdb, err := openPool(d, url, o)
			if err != nil {
				return nil, augerr.Wrap(augerr.KindConnection, "augsql: failed to open replica pool", err)
			}
			replicas = append(replicas, rdb)
		}
		return &pooledConn{primary: primary, replicas: replicas}, nil
	}

	var pc *pooledConn
	var err error
	if opts.PersistentName != "" {
		pc, err = globalRegistry.acquire(registryKey{dialect: d, name: opts.PersistentName}, opts, build)
	} else {
		pc, err = build(opts)
	}
	if err != nil {
		return nil, err
	}

	drv := &Driver{
		dialect:  d,
		opts:     opts,
		primary:  pc.primary,
		replicas: pc.replicas,
		cache:    template.NewCache(8, 256),
	}
	return drv, nil
}

func openPool(d dialect.Dialect, url string, o Options) (*sql.DB, error) {
	db, err := sql.Open(d.DriverName(), url)
	if err != nil {
		return nil, err
	}
	if o.MaxConnections > 0 {
		db.SetMaxOpenConns(o.MaxConnections)
	}
	db.SetMaxIdleConns(o.MinConnections)
	if o.MaxLifetime > 0 {
		db.SetConnMaxLifetime(o.MaxLifetime)
	}
	if o.IdleTimeout > 0 {
		db.SetConnMaxIdleTime(o.IdleTimeout)
	}
	if o.TestBeforeAcquire {
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

// Close releases the Driver's own resources. A persistent-named pool is
// never closed by an individual Driver handle — it outlives any one
// Driver and is shared by the process — so Close is a no-op in that case.
func (d *Driver) Close() error {
	if d.opts.PersistentName != "" {
		return nil
	}
	var errs []error
	if err := d.primary.Close(); err != nil {
		errs = append(errs, err)
	}
	for _, r := range d.replicas {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SetHook installs or clears the query hook. Installation is a single
// atomic pointer swap; readers on the hot path (fireHook) never take a
// lock (§4.H "lock-free on the read path").
func (d *Driver) SetHook(h QueryHook) {
	if h == nil {
		d.hook.Store(nil)
		return
	}
	d.hook.Store(&h)
}

func (d *Driver) fireHook(renderedSQL, inlineSQL string, durationMS int64) {
	p := d.hook.Load()
	if p == nil {
		return
	}
	defer func() { _ = recover() }()
	(*p)(renderedSQL, inlineSQL, durationMS)
}

// conn returns the connection (or transaction) the current call should
// run against: the top transaction frame if one is open, else the pinned
// connection if WithConnection is active, else the appropriate pool
// (replica for read-only statements, primary otherwise).
func (d *Driver) conn(ctx context.Context, sqlText string) (querier, error) {
	if len(d.txStack) > 0 {
		return d.txStack[len(d.txStack)-1].state.tx, nil
	}
	if d.pinned != nil {
		return d.pinned, nil
	}
	if len(d.replicas) > 0 && isReadOnlyStatement(sqlText) {
		return d.pickReplica(ctx)
	}
	return d.primary, nil
}

// pickReplica round-robins across replicas with an atomic counter,
// falling back to the primary once if the chosen replica can't be reached
// (§4.H "Replica routing"). The ping failure has nowhere to go in
// QueryHook's signature (renderedSQL, inlineSQL string, durationMS int64
// has no error slot), so it is recorded through debugLog instead of being
// silently discarded.
func (d *Driver) pickReplica(ctx context.Context) (querier, error) {
	idx := d.replicaNext.Add(1) - 1
	r := d.replicas[idx%uint64(len(d.replicas))]
	if err := r.PingContext(ctx); err != nil {
		wrapped := augerr.Wrap(augerr.KindConnection, "augsql: replica ping failed, falling back to primary", err)
		debugLog.Print(wrapped)
		return d.primary, nil
	}
	return r, nil
}

// querier is the common subset of *sql.DB, *sql.Tx and *sql.Conn this
// package needs.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

var leadingKeyword = regexp.MustCompile(`(?is)^\s*(?:/\*.*?\*/\s*|--[^\n]*\n\s*)*([A-Za-z]+)`)

// isReadOnlyStatement reports whether the rendered SQL's first keyword
// (after stripping leading whitespace and comments) is SELECT or WITH
// (§4.H "Replica routing").
func isReadOnlyStatement(sqlText string) bool {
	m := leadingKeyword.FindStringSubmatch(sqlText)
	if m == nil {
		return false
	}
	switch strings.ToUpper(m[1]) {
	case "SELECT", "WITH":
		return true
	default:
		return false
	}
}
