package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrInvalidRedisURL indicates the Redis connection string could not be parsed
	ErrInvalidRedisURL = errors.New("store.invalid_redis_url")

	// ErrRedisNotReady indicates all Redis connection attempts failed
	ErrRedisNotReady = errors.New("store.redis_not_ready")
)

// RedisConfig holds Redis connection settings for the Redis-backed store.
type RedisConfig struct {
	ConnectionURL  string        `env:"USERSTACK_REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RetryAttempts  int           `env:"USERSTACK_REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"USERSTACK_REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"USERSTACK_REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
}

// ConnectRedis establishes a Redis connection using the provided
// configuration, retrying up to RetryAttempts times.
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	opt, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidRedisURL, err)
	}

	for i := 0; i < cfg.RetryAttempts; i++ {
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	return nil, ErrRedisNotReady
}

// RedisStore implements Store on a Redis key space. Intended for
// server-side deployments where the session cache is shared across
// processes; Redis owns expiry via per-key TTLs.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed store. The prefix namespaces
// all keys (pass "" for none).
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Save writes the value under key with the given retention horizon.
func (s *RedisStore) Save(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrInvalidKey
	}
	if ttl < 0 {
		ttl = 0 // redis treats 0 as "no expiry"
	}
	return s.client.Set(ctx, s.prefix+key, value, ttl).Err()
}

// Load returns the value stored under key, or ErrNotFound.
func (s *RedisStore) Load(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}

	value, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

// Remove deletes the value stored under key.
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	return s.client.Del(ctx, s.prefix+key).Err()
}
