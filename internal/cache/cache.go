// Package cache provides pluggable byte caches and a typed read-through helper.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/vytor/web3profile/internal/logger"
	"golang.org/x/sync/singleflight"
)

// Cache stores opaque values with a time to live. Set with ttl <= 0 is a no-op.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Purger is implemented by backends that need expired entries removed explicitly.
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

var group singleflight.Group

// LoadTimeout bounds a shared load once it no longer follows any caller's context.
var LoadTimeout = 30 * time.Second

// Key joins parts into a namespaced cache key such as "poap:0xabc".
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// Fetch returns the cached value for key or calls load, caching its result as JSON.
// Concurrent calls for the same key share one load, which runs detached from
// any single caller's cancellation and is bounded by LoadTimeout. Each caller
// still returns early when its own ctx is done. Cache failures are logged and
// treated as misses; load errors are returned and never cached.
func Fetch[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	log := logger.FromContext(ctx).WithPrefix("cache")
	var zero T

	ch := group.DoChan(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), LoadTimeout)
		defer cancel()

		b, ok, err := c.Get(ctx, key)
		switch {
		case err != nil:
			log.Warn("get %s failed, treating as miss: %v", key, err)
		case ok:
			var cached T
			if err := json.Unmarshal(b, &cached); err == nil {
				log.Debug("hit %s", key)
				return cached, nil
			}
			log.Warn("discarding undecodable entry %s", key)
		}

		out, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if b, err := json.Marshal(out); err != nil {
			log.Warn("encode %s failed: %v", key, err)
		} else if err := c.Set(ctx, key, b, ttl); err != nil {
			log.Warn("set %s failed: %v", key, err)
		}
		return out, nil
	})

	select {
	case <-ctx.Done():
		log.Debug("caller left before load of %s finished", key)
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		if res.Shared {
			log.Debug("shared load for %s", key)
		}
		return res.Val.(T), nil
	}
}
