// Package service orchestrates place lookups: cache fast path, upstream slow
// path, and read-time recomputation of the open/closed flag.
package service

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/unkn0wn-root/placegate"
	"github.com/unkn0wn-root/placegate/hours"
	"github.com/unkn0wn-root/placegate/internal/deepcopy"
	"github.com/unkn0wn-root/placegate/upstream"
)

// Fetcher is the upstream collaborator. *upstream.Client satisfies it; tests
// substitute a fake.
type Fetcher interface {
	Fetch(ctx context.Context, itemID, tenantKey string) (*http.Response, error)
}

// Result is one lookup outcome. Record is safe for the caller to read and
// serialize; it never aliases cache-internal state on the hit path.
type Result struct {
	Record    placegate.Record
	CacheHit  bool
	Forwarded bool
	Next      *hours.Result // set only when requested
}

type Service struct {
	cache    placegate.Cache
	fetcher  Fetcher
	recorder Recorder
	log      placegate.Logger
	now      func() time.Time

	// Concurrent misses for the same (tenantKey, itemID) are collapsed into
	// a single upstream call. The upstream fetch is read-only and idempotent
	// so racing duplicates would be harmless, but collapsing them is cheap
	// and keeps quota usage predictable.
	sf singleflight.Group
}

type Options struct {
	Cache    placegate.Cache  // required
	Fetcher  Fetcher          // required
	Recorder Recorder         // nil => NopRecorder
	Log      placegate.Logger // nil => NopLogger
	Now      func() time.Time // nil => time.Now; tests override
}

func New(opts Options) (*Service, error) {
	if opts.Cache == nil {
		return nil, errNilCache
	}
	if opts.Fetcher == nil {
		return nil, errNilFetcher
	}
	s := &Service{
		cache:    opts.Cache,
		fetcher:  opts.Fetcher,
		recorder: opts.Recorder,
		log:      opts.Log,
		now:      opts.Now,
	}
	if s.recorder == nil {
		s.recorder = NopRecorder{}
	}
	if s.log == nil {
		s.log = placegate.NopLogger{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Lookup returns the place record for (tenantKey, itemID), from cache when a
// fresh entry exists, otherwise from upstream. The record's open_now is
// recomputed at read time on both paths so it is never stale inside the TTL
// window. includeNext additionally attaches the next-transition prediction.
func (s *Service) Lookup(ctx context.Context, tenantKey, itemID string, includeNext bool) (*Result, *upstream.APIError) {
	if tenantKey == "" {
		apiErr := &upstream.APIError{
			Code:    http.StatusBadRequest,
			Status:  "INVALID_REQUEST",
			Message: "missing tenant key",
		}
		s.record(ctx, tenantKey, itemID, false, false, apiErr)
		return nil, apiErr
	}

	now := s.now()

	if e, ok := s.cache.Get(tenantKey, itemID); ok && !e.Expired(now) {
		// Readers must never mutate cached state in place: copy first, then
		// recompute the dynamic fields on the copy.
		record := deepcopy.Map(e.Data)
		hours.Annotate(record, now)
		res := &Result{Record: record, CacheHit: true}
		s.finish(ctx, tenantKey, itemID, res, includeNext, now)
		return res, nil
	}

	record, apiErr := s.fetchMiss(ctx, tenantKey, itemID)
	if apiErr != nil {
		s.record(ctx, tenantKey, itemID, false, true, apiErr)
		return nil, apiErr
	}

	res := &Result{Record: record, Forwarded: true}
	s.finish(ctx, tenantKey, itemID, res, includeNext, now)
	return res, nil
}

// fetchMiss runs the slow path under single-flight. The winner fetches,
// normalizes, annotates, and populates the cache; losers share its outcome.
// Errors leave the cache untouched for the key.
func (s *Service) fetchMiss(ctx context.Context, tenantKey, itemID string) (placegate.Record, *upstream.APIError) {
	key := tenantKey + "\x00" + itemID
	v, err, shared := s.sf.Do(key, func() (any, error) {
		resp, err := s.fetcher.Fetch(ctx, itemID, tenantKey)
		if err != nil {
			return nil, &upstream.APIError{
				Code:    http.StatusBadGateway,
				Status:  "UPSTREAM_UNREACHABLE",
				Message: err.Error(),
			}
		}
		record, apiErr := upstream.Normalize(resp)
		if apiErr != nil {
			return nil, apiErr
		}
		hours.Annotate(record, s.now())
		s.cache.Put(ctx, tenantKey, itemID, record, 0)
		return record, nil
	})
	if shared {
		s.log.Debug("collapsed duplicate upstream fetch", placegate.Fields{
			"tenant": tenantKey, "item": itemID,
		})
	}
	if err != nil {
		return nil, err.(*upstream.APIError)
	}
	return v.(placegate.Record), nil
}

func (s *Service) finish(ctx context.Context, tenantKey, itemID string, res *Result, includeNext bool, now time.Time) {
	if includeNext {
		r := hours.ResultFor(res.Record, now)
		res.Next = &r
	}
	s.record(ctx, tenantKey, itemID, res.CacheHit, res.Forwarded, nil)
}

func (s *Service) record(ctx context.Context, tenantKey, itemID string, hit, forwarded bool, apiErr *upstream.APIError) {
	e := LogEntry{
		Timestamp: s.now().UnixMilli(),
		ItemID:    itemID,
		TenantKey: tenantKey,
		CacheHit:  hit,
		Forwarded: forwarded,
		Status:    http.StatusOK,
	}
	if apiErr != nil {
		e.Status = apiErr.Code
		e.Error = apiErr.Message
	}
	if err := s.recorder.Record(ctx, e); err != nil {
		// accounting is best-effort; a failed insert never fails the lookup
		s.log.Warn("request log insert failed", placegate.Fields{"err": err})
	}
}
