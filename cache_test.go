package placegate

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	ss "github.com/unkn0wn-root/placegate/snapstore"
)

type memStore struct {
	mu      sync.Mutex
	blob    []byte
	has     bool
	saves   int
	failSet error
}

var _ ss.Store = (*memStore)(nil)

func (m *memStore) Load(context.Context) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.has {
		return nil, false, nil
	}
	return m.blob, true, nil
}

func (m *memStore) Save(_ context.Context, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet != nil {
		return m.failSet
	}
	m.blob = append([]byte(nil), blob...)
	m.has = true
	m.saves++
	return nil
}

func (m *memStore) Close(context.Context) error { return nil }

type captureHooks struct {
	NopHooks
	mu         sync.Mutex
	loadErrs   []string
	saveErrs   []error
	replaced   int
}

func (h *captureHooks) SnapshotLoadError(reason string, _ error) {
	h.mu.Lock()
	h.loadErrs = append(h.loadErrs, reason)
	h.mu.Unlock()
}

func (h *captureHooks) SnapshotSaveError(err error) {
	h.mu.Lock()
	h.saveErrs = append(h.saveErrs, err)
	h.mu.Unlock()
}

func (h *captureHooks) EntryReplaced(string, string) {
	h.mu.Lock()
	h.replaced++
	h.mu.Unlock()
}

func newTestCache(t *testing.T, store ss.Store, now func() time.Time, hooks Hooks) Cache {
	t.Helper()
	cc, err := New(context.Background(), Options{
		Store: store,
		TTL:   time.Minute,
		Now:   now,
		Hooks: hooks,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return cc
}

func TestPutGet(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, nil, nil, nil)

	if _, ok := cc.Get("t1", "p1"); ok {
		t.Fatalf("expected miss on empty cache")
	}

	data := Record{"name": "Blue Bottle"}
	cc.Put(ctx, "t1", "p1", data, 0)

	e, ok := cc.Get("t1", "p1")
	if !ok {
		t.Fatalf("expected hit after Put")
	}
	if !reflect.DeepEqual(e.Data, data) {
		t.Fatalf("Data mismatch: got %v", e.Data)
	}

	// other tenants never see each other's entries
	if _, ok := cc.Get("t2", "p1"); ok {
		t.Fatalf("tenant partitions must be isolated")
	}

	if cc.Tenants() != 1 || cc.Len() != 1 {
		t.Fatalf("Tenants/Len = %d/%d, want 1/1", cc.Tenants(), cc.Len())
	}
}

// TestGetReturnsExpired pins the lazy-expiry contract: Get does not filter
// by expiry, it hands back the raw entry and the caller judges staleness.
func TestGetReturnsExpired(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base
	cc := newTestCache(t, nil, func() time.Time { return now }, nil)

	cc.Put(ctx, "t1", "p1", Record{"v": 1.0}, time.Minute)

	now = base.Add(2 * time.Minute)
	e, ok := cc.Get("t1", "p1")
	if !ok {
		t.Fatalf("expired entry must still be physically present")
	}
	if !e.Expired(now) {
		t.Fatalf("entry should report expired at %v", now)
	}
	if e.Expired(base) {
		t.Fatalf("entry should have been fresh at write time")
	}
}

func TestExpiryBoundary(t *testing.T) {
	e := Entry{Expires: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).UnixMilli()}
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if !e.Expired(at) {
		t.Fatalf("entry expiring exactly now is stale (expires > now is the fresh condition)")
	}
	if e.Expired(at.Add(-time.Millisecond)) {
		t.Fatalf("entry is fresh one tick before expiry")
	}
}

func TestPutOverwrites(t *testing.T) {
	ctx := context.Background()
	hooks := &captureHooks{}
	cc := newTestCache(t, nil, nil, hooks)

	cc.Put(ctx, "t1", "p1", Record{"v": "old"}, 0)
	cc.Put(ctx, "t1", "p1", Record{"v": "new"}, 0)

	e, _ := cc.Get("t1", "p1")
	if e.Data["v"] != "new" {
		t.Fatalf("second Put must replace the entry wholesale, got %v", e.Data)
	}
	if cc.Len() != 1 {
		t.Fatalf("overwrite must not grow the cache")
	}
	if hooks.replaced != 1 {
		t.Fatalf("EntryReplaced hook fired %d times, want 1", hooks.replaced)
	}
}

func TestSnapshotPersistAndReload(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	cc := newTestCache(t, store, nil, nil)

	cc.Put(ctx, "t1", "p1", Record{"name": "a"}, 0)
	cc.Put(ctx, "t1", "p2", Record{"name": "b"}, 0)
	cc.Put(ctx, "t2", "p1", Record{"name": "c"}, 0)

	if store.saves != 3 {
		t.Fatalf("every Put must trigger a full save, got %d saves", store.saves)
	}

	// a fresh cache over the same store sees the identical structure
	cc2 := newTestCache(t, store, nil, nil)
	if cc2.Tenants() != 2 || cc2.Len() != 3 {
		t.Fatalf("reload: Tenants/Len = %d/%d, want 2/3", cc2.Tenants(), cc2.Len())
	}
	e1, _ := cc.Get("t1", "p2")
	e2, ok := cc2.Get("t1", "p2")
	if !ok || !reflect.DeepEqual(e1, e2) {
		t.Fatalf("reloaded entry differs: %v vs %v", e1, e2)
	}
}

func TestMalformedSnapshotStartsEmpty(t *testing.T) {
	store := &memStore{blob: []byte("{not json"), has: true}
	hooks := &captureHooks{}

	cc := newTestCache(t, store, nil, hooks)
	if cc.Len() != 0 {
		t.Fatalf("malformed snapshot must yield an empty cache")
	}
	if len(hooks.loadErrs) != 1 || hooks.loadErrs[0] != "decode" {
		t.Fatalf("expected one decode load error, got %v", hooks.loadErrs)
	}
}

// TestSaveFailureDoesNotPoisonMemory pins the durability contract: a failed
// snapshot write is reported but the in-memory cache stays authoritative.
func TestSaveFailureDoesNotPoisonMemory(t *testing.T) {
	ctx := context.Background()
	store := &memStore{failSet: errors.New("disk full")}
	hooks := &captureHooks{}
	cc := newTestCache(t, store, nil, hooks)

	cc.Put(ctx, "t1", "p1", Record{"v": 1.0}, 0)

	if _, ok := cc.Get("t1", "p1"); !ok {
		t.Fatalf("entry must be readable even though the save failed")
	}
	if len(hooks.saveErrs) != 1 {
		t.Fatalf("expected one SnapshotSaveError, got %d", len(hooks.saveErrs))
	}
	var serr *SnapshotError
	if !errors.As(hooks.saveErrs[0], &serr) || serr.StoreErr == nil {
		t.Fatalf("hook error should be a *SnapshotError wrapping the store failure, got %v", hooks.saveErrs[0])
	}
}

func TestDefaultTTLApplied(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cc, err := New(ctx, Options{TTL: time.Hour, Now: func() time.Time { return base }})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	cc.Put(ctx, "t1", "p1", Record{}, 0)
	e, _ := cc.Get("t1", "p1")
	if want := base.Add(time.Hour).UnixMilli(); e.Expires != want {
		t.Fatalf("Expires = %d, want %d", e.Expires, want)
	}
	if cc.DefaultTTL() != time.Hour {
		t.Fatalf("DefaultTTL = %v", cc.DefaultTTL())
	}
}

func TestConcurrentPutGet(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	cc := newTestCache(t, store, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ten := string(rune('a' + n%4))
			for j := 0; j < 50; j++ {
				cc.Put(ctx, ten, "p", Record{"n": float64(j)}, 0)
				cc.Get(ten, "p")
			}
		}(i)
	}
	wg.Wait()

	if cc.Tenants() != 4 {
		t.Fatalf("Tenants = %d, want 4", cc.Tenants())
	}
}
