// Package reqlog persists per-lookup accounting rows in SQLite and serves
// aggregate statistics over fixed trailing windows. It implements
// service.Recorder; rows feed the /stats endpoint and nothing else, so the
// schema stays deliberately flat.
package reqlog

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/pkg/errors"

	"github.com/unkn0wn-root/placegate/service"
)

const schema = `
CREATE TABLE IF NOT EXISTS request_logs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp INTEGER NOT NULL,
	item_id TEXT,
	tenant_key TEXT,
	cache_hit INTEGER,
	status_code INTEGER,
	forwarded INTEGER,
	error TEXT
);
CREATE INDEX IF NOT EXISTS idx_request_logs_timestamp ON request_logs (timestamp);
`

// DefaultWindows are the trailing aggregation windows, keyed by the label
// they appear under in /stats.
var DefaultWindows = []Window{
	{Label: "3_days", Span: 3 * 24 * time.Hour},
	{Label: "7_days", Span: 7 * 24 * time.Hour},
	{Label: "30_days", Span: 30 * 24 * time.Hour},
	{Label: "365_days", Span: 365 * 24 * time.Hour},
}

type Window struct {
	Label string
	Span  time.Duration
}

// Stats is one window's aggregate. Errors counts rows with status >= 400.
type Stats struct {
	Total     int `db:"total" json:"total"`
	Hits      int `db:"hits" json:"hits"`
	Misses    int `db:"misses" json:"misses"`
	Forwarded int `db:"forwarded" json:"forwarded"`
	Errors    int `db:"errors" json:"errors"`
}

type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ service.Recorder = (*Store)(nil)

// New opens (or creates) the log database at dsn and ensures the schema.
// Use ":memory:" for tests.
func New(dsn string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open request log db")
	}
	// one writer at a time keeps sqlite happy under concurrent lookups
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ensure request_logs schema")
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Record(ctx context.Context, e service.LogEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO request_logs (timestamp, item_id, tenant_key, cache_hit, status_code, forwarded, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Timestamp, e.ItemID, e.TenantKey, boolInt(e.CacheHit), e.Status, boolInt(e.Forwarded), e.Error)
	return errors.Wrap(err, "insert request log")
}

// Aggregates returns per-window counters for the given trailing windows
// (DefaultWindows when nil), keyed by window label.
func (s *Store) Aggregates(ctx context.Context, windows []Window) (map[string]Stats, error) {
	if windows == nil {
		windows = DefaultWindows
	}
	now := s.now().UnixMilli()

	out := make(map[string]Stats, len(windows))
	for _, w := range windows {
		since := now - w.Span.Milliseconds()
		var st Stats
		err := s.db.GetContext(ctx, &st,
			`SELECT
				COUNT(*) AS total,
				COALESCE(SUM(cache_hit), 0) AS hits,
				COALESCE(SUM(1 - cache_hit), 0) AS misses,
				COALESCE(SUM(forwarded), 0) AS forwarded,
				COALESCE(SUM(CASE WHEN status_code >= 400 THEN 1 ELSE 0 END), 0) AS errors
			 FROM request_logs WHERE timestamp > ?`, since)
		if err != nil {
			return nil, errors.Wrapf(err, "aggregate window %s", w.Label)
		}
		out[w.Label] = st
	}
	return out, nil
}

func (s *Store) Close() error { return s.db.Close() }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
