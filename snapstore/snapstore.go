// Package snapstore defines the durable backend for the cache snapshot.
//
// Implementations MUST be byte-for-byte transparent: Load must return exactly
// the same []byte that was previously passed to Save (no prepended/appended
// metadata, no re-encoding, no mutation). The snapshot is always written
// whole; there is no partial update operation, so a correct implementation
// must never let a reader observe a half-written blob.
package snapstore

import "context"

// Store is a single-blob durable store.
// Safe for concurrent use; the cache additionally serializes Save calls.
type Store interface {
	// Load returns (blob, true, nil) when a snapshot exists;
	// (nil, false, nil) when none has ever been saved.
	// IO errors return (nil, false, err).
	Load(ctx context.Context) ([]byte, bool, error)

	// Save atomically replaces the snapshot with blob.
	Save(ctx context.Context, blob []byte) error

	// Close releases resources.
	Close(ctx context.Context) error
}
