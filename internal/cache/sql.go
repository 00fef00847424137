package cache

import (
	"context"
	"time"

	"github.com/vytor/web3profile/internal/repository"
)

// SQL stores entries through a CacheRepository.
type SQL struct {
	repo repository.CacheRepository
	now  func() time.Time
}

func NewSQL(repo repository.CacheRepository) *SQL {
	return &SQL{repo: repo, now: time.Now}
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, bool, error) {
	e, err := s.repo.Get(ctx, key, s.now())
	if err != nil || e == nil {
		return nil, false, err
	}
	return e.Value, true, nil
}

func (s *SQL) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.repo.Set(ctx, key, value, s.now().Add(ttl))
}

func (s *SQL) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if err := s.repo.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQL) Purge(ctx context.Context) (int64, error) {
	return s.repo.PurgeExpired(ctx, s.now())
}
