package verdictstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"privuploads/pkg/domain"
	"privuploads/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Options defines the Redis connection parameters for the verdict store.
type Options struct {
	// Addr is the Redis host:port.
	Addr string
	// Password is the Redis password, empty when auth is disabled.
	Password string
	// DB is the Redis logical database number.
	DB int
}

// Redis implements Store on top of a Redis instance, storing verdicts as
// JSON values with Redis-native expiry. Safe for concurrent use.
type Redis struct {
	client *redis.Client
}

// Ensure Redis conforms to the Store interface at compile time.
var _ Store = (*Redis)(nil)

// NewRedis creates a Redis-backed verdict store.
func NewRedis(options Options) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:         options.Addr,
			Password:     options.Password,
			DB:           options.DB,
			DialTimeout:  3 * time.Second,
			ReadTimeout:  2 * time.Second,
			WriteTimeout: 2 * time.Second,
		}),
	}
}

// Get returns the cached verdict for key, or nil on a miss. A value that no
// longer decodes (e.g. the stored shape changed across an upgrade) is deleted
// and reported as a miss rather than surfaced as an error.
func (r *Redis) Get(ctx context.Context, key string) (*domain.PrivacyVerdict, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, fmt.Errorf("could not get verdict from redis: %w", err)
	}

	var verdict domain.PrivacyVerdict
	if err := json.Unmarshal(b, &verdict); err != nil {
		logger.Debug(ctx, "invalidating corrupt cached verdict", zap.String("key", key), zap.Error(err))
		_ = r.client.Del(ctx, key).Err()

		return nil, nil
	}

	return &verdict, nil
}

// Put stores the verdict under key with the given TTL.
func (r *Redis) Put(ctx context.Context, key string, verdict domain.PrivacyVerdict, ttl time.Duration) error {
	b, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("could not marshal verdict: %w", err)
	}

	if err := r.client.Set(ctx, key, b, ttl).Err(); err != nil {
		return fmt.Errorf("could not put verdict into redis: %w", err)
	}

	return nil
}

// Invalidate removes the entry for key.
func (r *Redis) Invalidate(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("could not invalidate verdict in redis: %w", err)
	}

	return nil
}

// Close releases the underlying Redis client.
func (r *Redis) Close() error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("could not close redis client: %w", err)
	}

	return nil
}
