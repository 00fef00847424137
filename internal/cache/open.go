package cache

import (
	"context"
	"fmt"

	"github.com/vytor/web3profile/internal/config"
	"github.com/vytor/web3profile/internal/logger"
	"github.com/vytor/web3profile/internal/repository"
)

// Open builds the backend named by cfg.CacheBackend. The sqlite backend stores
// entries through repo.
func Open(ctx context.Context, cfg config.Config, repo repository.CacheRepository) (Cache, error) {
	log := logger.FromContext(ctx).WithPrefix("cache")

	switch cfg.CacheBackend {
	case config.CacheOff:
		log.Info("caching disabled")
		return Noop{}, nil
	case config.CacheMemory:
		log.Info("using in-memory cache, ttl=%v", cfg.CacheTTL)
		return NewMemory(), nil
	case config.CacheSQLite:
		if repo == nil {
			return nil, fmt.Errorf("sqlite cache requires a cache repository")
		}
		log.Info("using sqlite cache, ttl=%v", cfg.CacheTTL)
		return NewSQL(repo), nil
	case config.CacheRedis:
		r, err := DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		log.Info("using redis cache, ttl=%v", cfg.CacheTTL)
		return r, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}
