// Package store provides durable key-value persistence for session
// records with a per-value retention horizon.
//
// The Store interface is deliberately tiny: save, load, remove. Values
// are opaque byte slices; serialization belongs to the caller. Expiry
// is a retention cap, not a freshness signal — the session package
// makes its own staleness decisions from the record's fetch time.
//
// Four implementations ship out of the box:
//
//   - MemoryStore: in-process map, optional background cleanup. Default
//     for tests and short-lived processes.
//   - FileStore: one JSON envelope file per key. The durable option for
//     CLI and desktop embedders.
//   - RedisStore: per-key TTLs on a shared Redis key space, for
//     server-side deployments.
//   - MongoStore: one document per key with a TTL index, for
//     deployments already carrying MongoDB.
//
// All implementations report absent and expired values uniformly as
// ErrNotFound so callers fail open to the anonymous state.
package store
