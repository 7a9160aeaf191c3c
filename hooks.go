package placegate

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// The startup snapshot existed but could not be decoded; the cache
	// started empty. reason ∈ {"load", "decode"}
	SnapshotLoadError(reason string, err error)

	// A full-snapshot save failed after a Put. The triggering write is
	// still live in memory.
	SnapshotSaveError(err error)

	// A Put replaced a still-live (unexpired) entry for the same key.
	EntryReplaced(tenantKey, itemID string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) SnapshotLoadError(string, error) {}
func (NopHooks) SnapshotSaveError(error)         {}
func (NopHooks) EntryReplaced(string, string)    {}
