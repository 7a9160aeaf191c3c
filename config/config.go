// Package config loads process configuration from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// Config is the full process configuration. Core components consume these
// values as constants; only the entry point reads the environment.
type Config struct {
	// CacheFile is the snapshot path for the file backend.
	CacheFile string `env:"PLACEGATE_CACHE_FILE" envDefault:"cache.json"`
	// DBFile is the request-log SQLite database.
	DBFile string `env:"PLACEGATE_DB_FILE" envDefault:"logs.sqlite"`
	// Port is the HTTP listen port.
	Port int `env:"PLACEGATE_PORT" envDefault:"3000"`
	// TTL is how long a cached entry is served before the next lookup
	// refreshes it from upstream.
	TTL time.Duration `env:"PLACEGATE_TTL" envDefault:"24h"`
	// SnapshotBackend selects where the snapshot lives: "file" or "redis".
	SnapshotBackend string `env:"PLACEGATE_SNAPSHOT_BACKEND" envDefault:"file"`
	// RedisAddr is required when SnapshotBackend is "redis".
	RedisAddr string `env:"PLACEGATE_REDIS_ADDR"`
	// UpstreamURL overrides the lookup API base URL (tests, staging).
	UpstreamURL string `env:"PLACEGATE_UPSTREAM_URL"`
	// Debug enables development logging.
	Debug bool `env:"PLACEGATE_DEBUG"`
}

func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse env")
	}
	if cfg.SnapshotBackend != "file" && cfg.SnapshotBackend != "redis" {
		return Config{}, errors.Errorf("unknown snapshot backend %q: only 'file' and 'redis' are supported", cfg.SnapshotBackend)
	}
	if cfg.SnapshotBackend == "redis" && cfg.RedisAddr == "" {
		return Config{}, errors.New("PLACEGATE_REDIS_ADDR is required with the redis snapshot backend")
	}
	return cfg, nil
}
