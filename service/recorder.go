package service

import (
	"context"
	"errors"
	"sync"
)

var (
	errNilCache   = errors.New("service: cache is required")
	errNilFetcher = errors.New("service: fetcher is required")
)

// LogEntry is one lookup's accounting record.
type LogEntry struct {
	Timestamp int64 // epoch milliseconds
	ItemID    string
	TenantKey string
	CacheHit  bool
	Status    int
	Forwarded bool
	Error     string // empty on success
}

// Recorder receives one entry per lookup, success or failure. Used only for
// aggregate statistics; implementations must tolerate being behind or lossy.
type Recorder interface {
	Record(ctx context.Context, e LogEntry) error
}

// NopRecorder is the default no-op
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, LogEntry) error { return nil }

// AsyncRecorder decouples accounting from the request path: Record enqueues
// and returns immediately, a fixed worker pool drains into the inner
// recorder, and entries are dropped when the queue is full rather than
// blocking a lookup.
type AsyncRecorder struct {
	inner Recorder
	q     chan LogEntry
	wg    sync.WaitGroup
	once  sync.Once
}

var _ Recorder = (*AsyncRecorder)(nil)

func NewAsyncRecorder(inner Recorder, workers, qlen int) *AsyncRecorder {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	r := &AsyncRecorder{inner: inner, q: make(chan LogEntry, qlen)}
	r.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer r.wg.Done()
			for e := range r.q {
				_ = r.inner.Record(context.Background(), e)
			}
		}()
	}
	return r
}

func (r *AsyncRecorder) Record(_ context.Context, e LogEntry) error {
	select {
	case r.q <- e:
	default: // drop
	}
	return nil
}

// Close drains the queue and stops the workers. Safe to call multiple times.
func (r *AsyncRecorder) Close() {
	r.once.Do(func() {
		close(r.q)
		r.wg.Wait()
	})
}
