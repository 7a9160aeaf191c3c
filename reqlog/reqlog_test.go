package reqlog

import (
	"context"
	"testing"
	"time"

	"github.com/unkn0wn-root/placegate/service"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndAggregate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	rows := []struct {
		age    time.Duration
		hit    bool
		fwd    bool
		status int
	}{
		{time.Hour, true, false, 200},            // hit, inside every window
		{time.Hour, false, true, 200},            // fresh miss
		{2 * 24 * time.Hour, false, true, 429},   // error inside 3d
		{5 * 24 * time.Hour, true, false, 200},   // inside 7d only
		{100 * 24 * time.Hour, false, true, 502}, // inside 365d only
	}
	for _, r := range rows {
		err := s.Record(ctx, service.LogEntry{
			Timestamp: now.Add(-r.age).UnixMilli(),
			ItemID:    "p1",
			TenantKey: "t1",
			CacheHit:  r.hit,
			Forwarded: r.fwd,
			Status:    r.status,
		})
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	agg, err := s.Aggregates(ctx, nil)
	if err != nil {
		t.Fatalf("Aggregates: %v", err)
	}
	if len(agg) != len(DefaultWindows) {
		t.Fatalf("windows = %d, want %d", len(agg), len(DefaultWindows))
	}

	want := map[string]Stats{
		"3_days":   {Total: 3, Hits: 1, Misses: 2, Forwarded: 2, Errors: 1},
		"7_days":   {Total: 4, Hits: 2, Misses: 2, Forwarded: 2, Errors: 1},
		"30_days":  {Total: 4, Hits: 2, Misses: 2, Forwarded: 2, Errors: 1},
		"365_days": {Total: 5, Hits: 2, Misses: 3, Forwarded: 3, Errors: 2},
	}
	for label, w := range want {
		if got := agg[label]; got != w {
			t.Fatalf("%s = %+v, want %+v", label, got, w)
		}
	}
}

func TestAggregatesEmpty(t *testing.T) {
	s := newTestStore(t)
	agg, err := s.Aggregates(context.Background(), nil)
	if err != nil {
		t.Fatalf("Aggregates: %v", err)
	}
	for label, st := range agg {
		if st != (Stats{}) {
			t.Fatalf("%s = %+v, want zeros", label, st)
		}
	}
}

func TestAggregatesCustomWindow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	if err := s.Record(ctx, service.LogEntry{
		Timestamp: now.Add(-30 * time.Minute).UnixMilli(),
		CacheHit:  true,
		Status:    200,
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	agg, err := s.Aggregates(ctx, []Window{{Label: "1_hour", Span: time.Hour}})
	if err != nil {
		t.Fatalf("Aggregates: %v", err)
	}
	if got := agg["1_hour"]; got.Total != 1 || got.Hits != 1 {
		t.Fatalf("1_hour = %+v", got)
	}
}
