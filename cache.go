package placegate

import (
	"context"
	"sync"
	"time"

	c "github.com/unkn0wn-root/placegate/codec"
	ss "github.com/unkn0wn-root/placegate/snapstore"
)

const defaultTTL = 24 * time.Hour

type cache struct {
	store ss.Store
	codec c.Codec[Snapshot]
	log   Logger
	hooks Hooks
	ttl   time.Duration
	now   func() time.Time

	// mu guards the nested maps. saveMu serializes full-snapshot saves:
	// each save is a whole-blob overwrite, so the backing store is a
	// single-writer resource.
	mu     sync.RWMutex
	byTen  map[string]map[string]Entry
	saveMu sync.Mutex
}

func newCache(ctx context.Context, opts Options) (*cache, error) {
	cc := &cache{
		store: opts.Store,
		byTen: make(map[string]map[string]Entry),
	}

	cc.codec = opts.Codec
	if cc.codec == nil {
		cc.codec = c.JSON[Snapshot]{}
	}
	cc.log = coalesce[Logger](opts.Log, NopLogger{})
	cc.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	cc.ttl = coalesce[time.Duration](opts.TTL, defaultTTL)
	cc.now = opts.Now
	if cc.now == nil {
		cc.now = time.Now
	}

	if cc.store != nil {
		cc.loadSnapshot(ctx)
	}
	return cc, nil
}

// loadSnapshot fails soft on every path: a cache that starts empty is
// correct, just cold.
func (cc *cache) loadSnapshot(ctx context.Context) {
	raw, ok, err := cc.store.Load(ctx)
	if err != nil {
		cc.log.Warn("snapshot load failed, starting fresh", Fields{"err": err})
		cc.hooks.SnapshotLoadError("load", err)
		return
	}
	if !ok {
		cc.log.Info("no snapshot found, starting fresh", nil)
		return
	}
	snap, err := cc.codec.Decode(raw)
	if err != nil {
		cc.log.Warn("snapshot decode failed, starting fresh", Fields{"err": err})
		cc.hooks.SnapshotLoadError("decode", err)
		return
	}
	total := 0
	for ten, items := range snap {
		m := make(map[string]Entry, len(items))
		for id, e := range items {
			m[id] = e
		}
		cc.byTen[ten] = m
		total += len(items)
	}
	cc.log.Info("snapshot loaded", Fields{"tenants": len(cc.byTen), "entries": total})
}

func (cc *cache) Get(tenantKey, itemID string) (Entry, bool) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	items, ok := cc.byTen[tenantKey]
	if !ok {
		return Entry{}, false
	}
	e, ok := items[itemID]
	return e, ok
}

func (cc *cache) Put(ctx context.Context, tenantKey, itemID string, data Record, ttl time.Duration) {
	if ttl <= 0 {
		ttl = cc.ttl
	}
	now := cc.now()
	e := Entry{Data: data, Expires: now.Add(ttl).UnixMilli()}

	cc.mu.Lock()
	items, ok := cc.byTen[tenantKey]
	if !ok {
		items = make(map[string]Entry)
		cc.byTen[tenantKey] = items
	}
	if prev, had := items[itemID]; had && !prev.Expired(now) {
		cc.hooks.EntryReplaced(tenantKey, itemID)
	}
	items[itemID] = e
	cc.mu.Unlock()

	cc.save(ctx)
}

// save persists the whole cache. Durability is best-effort: on failure the
// in-memory state stays authoritative and the caller's write still succeeded.
func (cc *cache) save(ctx context.Context) {
	if cc.store == nil {
		return
	}

	cc.mu.RLock()
	snap := make(Snapshot, len(cc.byTen))
	for ten, items := range cc.byTen {
		m := make(map[string]Entry, len(items))
		for id, e := range items {
			m[id] = e
		}
		snap[ten] = m
	}
	cc.mu.RUnlock()

	cc.saveMu.Lock()
	defer cc.saveMu.Unlock()

	raw, err := cc.codec.Encode(snap)
	if err != nil {
		serr := &SnapshotError{EncodeErr: err}
		cc.log.Error("snapshot encode failed", Fields{"err": err})
		cc.hooks.SnapshotSaveError(serr)
		return
	}
	if err := cc.store.Save(ctx, raw); err != nil {
		serr := &SnapshotError{StoreErr: err}
		cc.log.Error("snapshot save failed", Fields{"err": err})
		cc.hooks.SnapshotSaveError(serr)
	}
}

func (cc *cache) Tenants() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.byTen)
}

func (cc *cache) Len() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	n := 0
	for _, items := range cc.byTen {
		n += len(items)
	}
	return n
}

func (cc *cache) DefaultTTL() time.Duration { return cc.ttl }

func (cc *cache) Close(ctx context.Context) error {
	if cc.store != nil {
		return cc.store.Close(ctx)
	}
	return nil
}
