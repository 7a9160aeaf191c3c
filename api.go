package placegate

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/placegate/codec"
	ss "github.com/unkn0wn-root/placegate/snapstore"
)

// Record is an opaque JSON-shaped place payload. The cache never interprets
// it beyond (de)serialization; dynamic fields such as open_now are recomputed
// by readers, never trusted from storage.
type Record = map[string]any

// Entry is one cached record plus its absolute expiry instant.
// Entries are immutable once written; a new Put for the same key replaces
// the entry wholesale.
type Entry struct {
	Data    Record `json:"data" msgpack:"data" cbor:"data"`
	Expires int64  `json:"expires" msgpack:"expires" cbor:"expires"` // epoch milliseconds
}

// Expired reports whether the entry is stale at the given instant.
func (e Entry) Expired(now time.Time) bool {
	return e.Expires <= now.UnixMilli()
}

// Snapshot is the persisted shape of the whole cache: tenantKey -> itemID ->
// Entry. It is a structural mirror of the in-memory state and round-trips
// through the configured codec without loss (field order aside).
type Snapshot = map[string]map[string]Entry

// Cache is the tenant-partitioned place cache.
//
// Get performs no expiry filtering: it returns the stored entry verbatim and
// leaves the staleness judgment to the caller, because it differs by use case
// (the lookup path needs a fresh check; introspection wants raw state).
type Cache interface {
	// Get returns the stored entry for (tenantKey, itemID), expired or not.
	Get(tenantKey, itemID string) (Entry, bool)

	// Put stores data under (tenantKey, itemID) with expiry now+ttl
	// (ttl <= 0 uses the configured default) and synchronously saves the
	// full snapshot. A failed save is logged and reported via Hooks; the
	// write itself always lands in memory.
	Put(ctx context.Context, tenantKey, itemID string, data Record, ttl time.Duration)

	// Tenants returns the number of distinct tenant partitions.
	Tenants() int

	// Len returns the total number of cached entries across tenants,
	// including expired ones.
	Len() int

	// DefaultTTL returns the TTL applied when Put is called with ttl <= 0.
	DefaultTTL() time.Duration

	// Close releases the snapshot store.
	Close(context.Context) error
}

// Options tune the cache. Only Store is required; others have sensible
// defaults. A nil Store is allowed and yields a purely in-memory cache
// (no durability), which tests use.
type Options struct {
	Store ss.Store               // nil => no persistence
	Codec c.Codec[Snapshot]      // nil => codec.JSON[Snapshot]{}
	TTL   time.Duration          // default entry TTL; 0 => 24h
	Log   Logger                 // nil => NopLogger
	Hooks Hooks                  // nil => NopHooks
	Now   func() time.Time       // nil => time.Now; tests override
}

// New builds the cache and loads the startup snapshot from Store.
// A missing snapshot starts empty; a present-but-malformed snapshot is
// logged and starts empty. Neither is an error: the cache is an
// optimization, not the source of truth.
func New(ctx context.Context, opts Options) (Cache, error) {
	return newCache(ctx, opts)
}
