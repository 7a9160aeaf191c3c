package snapstore

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"
)

var ErrNilClient = errors.New("snapstore: nil redis client")

// Redis keeps the snapshot as a single blob at Key. Intended for hosts
// without a writable disk; Redis here is a durability mirror, not a cache,
// so the blob is written without a TTL.
type Redis struct {
	rdb         goredis.UniversalClient
	key         string
	closeClient bool
}

var _ Store = (*Redis)(nil)

type RedisConfig struct {
	Client goredis.UniversalClient
	Key    string // defaults to "placegate:snapshot"
	// CloseClient set true only if this store exclusively owns the client.
	CloseClient bool
}

func NewRedis(cfg RedisConfig) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	key := cfg.Key
	if key == "" {
		key = "placegate:snapshot"
	}
	return &Redis{rdb: cfg.Client, key: key, closeClient: cfg.CloseClient}, nil
}

func (s *Redis) Load(ctx context.Context) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, s.key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // no snapshot yet
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

func (s *Redis) Save(ctx context.Context, blob []byte) error {
	// SET is atomic on the server side; readers see old or new, never a mix.
	return s.rdb.Set(ctx, s.key, blob, 0).Err()
}

// Close releases the underlying redis client only when this store owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (s *Redis) Close(context.Context) error {
	if s.closeClient {
		if err := s.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
