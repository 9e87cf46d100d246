package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// snapshotKey is a hash of serialized snapshots keyed by page size.
// Deleting it invalidates every page size at once.
const snapshotKey = "flowlayer:dashboard:snapshots:v1"

// Cache stores dashboard snapshots in Redis. A nil *Cache is valid and
// caches nothing.
type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewCache returns a cache with the given TTL, or nil when client is nil or
// ttl is not positive.
func NewCache(client redis.UniversalClient, ttl time.Duration) *Cache {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &Cache{client: client, ttl: ttl}
}

// Get returns the cached snapshot for limit. Entries older than the TTL are
// treated as misses even if the hash itself has not expired yet.
func (c *Cache) Get(ctx context.Context, limit int, now time.Time) (Snapshot, bool, error) {
	if c == nil {
		return Snapshot{}, false, nil
	}

	data, err := c.client.HGet(ctx, snapshotKey, strconv.Itoa(limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, err
	}
	if now.Sub(snap.GeneratedAt) > c.ttl {
		return Snapshot{}, false, nil
	}
	return snap, true, nil
}

// Set stores snap under its limit and refreshes the hash TTL.
func (c *Cache) Set(ctx context.Context, snap Snapshot) error {
	if c == nil {
		return nil
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, snapshotKey, strconv.Itoa(snap.Limit), data)
		pipe.Expire(ctx, snapshotKey, c.ttl)
		return nil
	})
	return err
}

// Invalidate drops every cached snapshot.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Del(ctx, snapshotKey).Err()
}
