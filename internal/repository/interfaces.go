package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vytor/web3profile/internal/models"
)

// ErrNotFound is returned when a row addressed by id does not exist.
var ErrNotFound = errors.New("record not found")

// SearchRepository persists lookup history.
type SearchRepository interface {
	// Record upserts the lookup for address, bumping hits and last_seen_at.
	Record(ctx context.Context, query, address, name string) (*models.SearchEntry, error)
	Recent(ctx context.Context, limit int) ([]models.SearchEntry, error)
	Popular(ctx context.Context, limit int) ([]models.SearchEntry, error)
	Delete(ctx context.Context, id int64) error
}

// CacheRepository persists cache entries with an expiry.
type CacheRepository interface {
	// Get returns nil without error when the key is missing or expired.
	Get(ctx context.Context, key string, now time.Time) (*models.CacheEntry, error)
	Set(ctx context.Context, key string, value []byte, expiresAt time.Time) error
	Delete(ctx context.Context, key string) error
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
