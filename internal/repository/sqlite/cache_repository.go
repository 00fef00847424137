package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/web3profile/internal/logger"
	"github.com/vytor/web3profile/internal/models"
	"github.com/vytor/web3profile/internal/repository"
)

type cacheRepository struct {
	db *sql.DB
}

// NewCacheRepository creates a new CacheRepository implementation
func NewCacheRepository(db *sql.DB) repository.CacheRepository {
	return &cacheRepository{db: db}
}

func (r *cacheRepository) Get(ctx context.Context, key string, now time.Time) (*models.CacheEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("cache_repo")

	stmt, args, err := sqlBuilder.Select("cache_key", "value", "expires_at", "created_at").
		From("cache_entries").
		Where(squirrel.Eq{"cache_key": key}).
		Where(squirrel.Gt{"expires_at": now.UnixMilli()}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var (
		e         models.CacheEntry
		expiresAt int64
	)
	err = r.db.QueryRowContext(ctx, stmt, args...).Scan(&e.Key, &e.Value, &expiresAt, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("cache miss: %s", key)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get cache entry %s: %v", key, err)
		return nil, err
	}
	e.ExpiresAt = time.UnixMilli(expiresAt).UTC()
	return &e, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, expiresAt time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("cache_repo")

	stmt, args, err := sqlBuilder.Insert("cache_entries").
		Columns("cache_key", "value", "expires_at").
		Values(key, value, expiresAt.UnixMilli()).
		Suffix("ON CONFLICT(cache_key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at, created_at = CURRENT_TIMESTAMP").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, stmt, args...); err != nil {
		log.Error("failed to set cache entry %s: %v", key, err)
		return err
	}
	log.Debug("cache entry stored: %s (%d bytes)", key, len(value))
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	log := logger.FromContext(ctx).WithPrefix("cache_repo")

	stmt, args, err := sqlBuilder.Delete("cache_entries").Where(squirrel.Eq{"cache_key": key}).ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, stmt, args...); err != nil {
		log.Error("failed to delete cache entry %s: %v", key, err)
		return err
	}
	return nil
}

func (r *cacheRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("cache_repo")

	stmt, args, err := sqlBuilder.Delete("cache_entries").
		Where(squirrel.LtOrEq{"expires_at": now.UnixMilli()}).
		ToSql()
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		log.Error("failed to purge cache entries: %v", err)
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	log.Debug("purged %d expired cache entries", n)
	return n, nil
}
