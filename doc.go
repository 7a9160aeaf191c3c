// Package placegate implements a tenant-partitioned, TTL-based cache for
// "place details" records, with the whole cache persisted as a single durable
// snapshot after every write.
//
// Components:
//   - snapstore.Store: durable byte-blob backend for the snapshot (file or Redis).
//   - codec.Codec[Snapshot]: (de)serializes the snapshot (JSON by default).
//   - hours: pure weekly-recurring business-hours engine.
//   - upstream: fetch + normalization of the third-party lookup API.
//   - service: lookup orchestration (cache fast path, single-flight slow path).
//
// Cache semantics:
//
//	Get returns the stored entry verbatim, including expired entries; expiry
//	is judged by the caller against Entry.Expires. There is no background
//	eviction: a stale entry stays in memory and in the snapshot until the
//	next Put for the same (tenantKey, itemID) replaces it. Memory grows with
//	the number of distinct keys; the workload has a finite key space per
//	tenant and this is an accepted trade-off.
//
// Snapshot durability is best-effort: a failed save is logged and reported
// through Hooks, and the in-memory cache stays authoritative for the process.
package placegate
