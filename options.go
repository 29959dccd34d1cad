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

import "time"

// RowShape selects how a query method decodes a row into a Go value when
// the caller hasn't overridden it for one call (§6 "…Assoc / …Obj").
type RowShape uint8

const (
	// ShapeDefault defers to Options.AssocArrays.
	ShapeDefault RowShape = iota
	// ShapeAssoc decodes a row into an ordered column-name-keyed map,
	// regardless of Options.AssocArrays.
	ShapeAssoc
	// ShapeObj decodes a row into a struct pointer supplied by the caller.
	ShapeObj
)

// No Driver method takes a RowShape: the …Assoc methods and the generic
// …Obj functions select the non-default shapes directly.

// Options configures a Driver's connection pool, replica set and retry
// policy (§4.H). All fields are optional; zero values fall back to the
// defaults documented on each field.
type Options struct {
	// URL is the primary connection string. Required.
	URL string

	// MaxConnections is the pool upper bound. Default 10.
	MaxConnections int
	// MinConnections is passed to SetMaxIdleConns, so it caps how many
	// idle connections the pool retains; no minimum number of open
	// connections is maintained. Default 0.
	MinConnections int
	// MaxLifetime caps a connection's age before it is recycled. Zero
	// means unset (database/sql default, no cap).
	MaxLifetime time.Duration
	// IdleTimeout evicts idle connections older than this. Zero means
	// unset.
	IdleTimeout time.Duration
	// AcquireTimeout is compared when a persistent pool is re-registered
	// but is not applied to connection checkout: callers wait for a pool
	// slot as long as their context allows.
	AcquireTimeout time.Duration
	// TestBeforeAcquire pings the pool once when it is opened, failing
	// Open if the ping fails; connections are not pinged on each checkout.
	TestBeforeAcquire bool

	// PersistentName, when set, shares one pool across every Driver
	// constructed with the same (dialect, PersistentName) key within the
	// process (§6 "Persistent pools").
	PersistentName string

	// AssocArrays is the default row shape when a query method doesn't
	// carry an …Assoc/…Obj suffix override.
	AssocArrays bool
	// CollapsibleIn enables the §4.D step 4 empty-array-to-constant
	// transform for IN/NOT IN.
	CollapsibleIn bool
	// Readonly forbids writes: the query methods reject any statement
	// that isn't SELECT/WITH-only (see isReadOnlyStatement), and Exec
	// rejects every statement.
	Readonly bool

	// ReadReplicas is a list of read-only replica connection strings.
	// SELECT/WITH-only statements round-robin across them.
	ReadReplicas []string

	// RetryMaxAttempts bounds retries of transient errors outside a
	// transaction. Default 0 (no retry).
	RetryMaxAttempts int
	// RetryInitialBackoff is the first retry delay. Default 100ms.
	RetryInitialBackoff time.Duration
	// RetryMaxBackoff caps the exponential backoff. Default 5s.
	RetryMaxBackoff time.Duration
	// RetryMultiplier is the exponential growth factor. Default 2.0.
	RetryMultiplier float64
}

// withDefaults returns a copy of o with every zero-valued defaultable
// field filled in.
func (o Options) withDefaults() Options {
	if o.MaxConnections == 0 {
		o.MaxConnections = 10
	}
	if o.RetryInitialBackoff == 0 {
		o.RetryInitialBackoff = 100 * time.Millisecond
	}
	if o.RetryMaxBackoff == 0 {
		o.RetryMaxBackoff = 5 * time.Second
	}
	if o.RetryMultiplier == 0 {
		o.RetryMultiplier = 2.0
	}
	return o
}

// equalConfiguration reports whether two Options describe the same pool
// configuration, used to detect a mismatched re-registration against a
// persistent-named pool (§6 "Persistent pools").
func equalConfiguration(a, b Options) bool {
	if a.URL != b.URL || a.MaxConnections != b.MaxConnections || a.MinConnections != b.MinConnections {
		return false
	}
	if a.MaxLifetime != b.MaxLifetime || a.IdleTimeout != b.IdleTimeout || a.AcquireTimeout != b.AcquireTimeout {
		return false
	}
	if a.TestBeforeAcquire != b.TestBeforeAcquire || a.AssocArrays != b.AssocArrays {
		return false
	}
	if a.CollapsibleIn != b.CollapsibleIn || a.Readonly != b.Readonly {
		return false
	}
	if len(a.ReadReplicas) != len(b.ReadReplicas) {
		return false
	}
	for i := range a.ReadReplicas {
		if a.ReadReplicas[i] != b.ReadReplicas[i] {
			return false
		}
	}
	if a.RetryMaxAttempts != b.RetryMaxAttempts || a.RetryInitialBackoff != b.RetryInitialBackoff {
		return false
	}
	if a.RetryMaxBackoff != b.RetryMaxBackoff || a.RetryMultiplier != b.RetryMultiplier {
		return false
	}
	return true
}
