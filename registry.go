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
	"database/sql"
	"fmt"
	"sync"

	"github.com/augsql/augsql/augerr"
	"github.com/augsql/augsql/dialect"
)

// registryKey identifies one shared, persistent pool (§6 "Persistent
// pools": keyed by (dialect, persistent_name)).
type registryKey struct {
	dialect dialect.Dialect
	name    string
}

// pooledConn is the process-wide shared handle behind a persistent_name:
// the primary *sql.DB plus replica handles, built exactly once.
type pooledConn struct {
	once     sync.Once
	err      error
	primary  *sql.DB
	replicas []*sql.DB
	config   Options
}

// poolRegistry is the process-global table of persistent pools: a
// sync.Map-style lazily-built-per-name connection cache, generalized from
// a single *sql.DB per name to a primary-plus-replicas group per
// (dialect, name) key, with a frozen-configuration check a second
// registration under the same key with different Options must raise
// ConfigurationError instead of silently reusing the first pool (§6).
type poolRegistry struct {
	mu      sync.RWMutex
	entries map[registryKey]*pooledConn
}

var globalRegistry = &poolRegistry{entries: make(map[registryKey]*pooledConn)}

// acquire returns the shared pooledConn for key, creating it on first use
// via open. A second call with a different opts raises ConfigurationError
// without touching the already-built connections.
func (r *poolRegistry) acquire(key registryKey, opts Options, open func(Options) (*pooledConn, error)) (*pooledConn, error) {
	r.mu.Lock()
	pc, ok := r.entries[key]
	if !ok {
		pc = &pooledConn{config: opts}
		r.entries[key] = pc
	}
	r.mu.Unlock()

	pc.once.Do(func() {
		built, err := open(opts)
		if err != nil {
			pc.err = err
			return
		}
		pc.primary = built.primary
		pc.replicas = built.replicas
	})

	if pc.err != nil {
		return nil, pc.err
	}
	if !equalConfiguration(pc.config, opts) {
		return nil, augerr.Newf(augerr.KindConfiguration,
			"augsql: persistent pool %q already configured with different options", key.name)
	}
	return pc, nil
}

// forgetForTest removes every registered persistent pool. It exists only
// so tests can isolate the process-global registry between cases; it is
// never called from production code paths.
func forgetForTest() {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.entries = make(map[registryKey]*pooledConn)
}

func (k registryKey) String() string {
	return fmt.Sprintf("%s/%s", k.dialect, k.name)
}
