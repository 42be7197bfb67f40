package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// ContractCacheTTL bounds staleness if an invalidation event is lost.
	ContractCacheTTL = 10 * time.Minute

	contractKeyPrefix = "contract"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// ContractCache stores serialised contract documents keyed by contract ID.
// Key format: "contract:{id}"
type ContractCache struct {
	client *RedisClient
	ttl    time.Duration
}

func NewContractCache(r *RedisClient) *ContractCache {
	return &ContractCache{client: r, ttl: ContractCacheTTL}
}

// Get returns the cached payload or ErrCacheMiss.
func (c *ContractCache) Get(ctx context.Context, id uuid.UUID) ([]byte, error) {
	b, err := c.client.Client().Get(ctx, c.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	return b, nil
}

// Set stores payload, tagging it with version so an older write racing a
// newer one cannot overwrite it.
func (c *ContractCache) Set(ctx context.Context, id uuid.UUID, version int, payload []byte) error {
	key := c.key(id)
	versionKey := key + ":v"

	err := c.client.Client().Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Int()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current > version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, c.ttl)
			pipe.Set(ctx, versionKey, version, c.ttl)
			return nil
		})
		return err
	}, versionKey)
	if err != nil && !errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// invalidateScript raises the version floor to ARGV[1] (never lowers it)
// and drops the payload in one step.
var invalidateScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[2]) or '0')
local floor = tonumber(ARGV[1])
if current > floor then floor = current end
redis.call('SET', KEYS[2], floor, 'PX', ARGV[2])
redis.call('DEL', KEYS[1])
return floor
`)

// Invalidate drops the cached contract after a write that produced version.
// The version floor stays behind, so a reader that loaded an older row
// before the write cannot put its snapshot back with Set.
func (c *ContractCache) Invalidate(ctx context.Context, id uuid.UUID, version int) error {
	key := c.key(id)
	err := invalidateScript.Run(ctx, c.client.Client(), []string{key, key + ":v"},
		version, c.ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

// Delete drops the cached payload and keeps the version floor.
func (c *ContractCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Client().Del(ctx, c.key(id)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

func (c *ContractCache) key(id uuid.UUID) string {
	return fmt.Sprintf("%s:%s", contractKeyPrefix, id)
}
