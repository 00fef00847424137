package worker

import (
	"context"

	"github.com/vytor/web3profile/internal/cache"
	"github.com/vytor/web3profile/internal/logger"
	"github.com/vytor/web3profile/internal/models"
)

// Refresher rebuilds a profile bypassing cached sections.
type Refresher interface {
	Refresh(ctx context.Context, input string) (*models.AggregatedProfile, error)
}

// RefreshProfileJob drops the cached sections of one identity and re-aggregates it.
type RefreshProfileJob struct {
	Profiles Refresher
	Input    string
}

func (j *RefreshProfileJob) Name() string { return "refresh_profile" }

func (j *RefreshProfileJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("input", j.Input)
	p, err := j.Profiles.Refresh(ctx, j.Input)
	if err != nil {
		return err
	}
	log.Info("refreshed %s (score=%.2f, failed sections=%d)", p.Identity.Address, p.Score.Total, len(p.Errors))
	return nil
}

// PurgeCacheJob removes expired entries from backends that do not expire keys themselves.
type PurgeCacheJob struct {
	Cache cache.Cache
}

func (j *PurgeCacheJob) Name() string { return "purge_cache" }

func (j *PurgeCacheJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)
	purger, ok := j.Cache.(cache.Purger)
	if !ok {
		log.Debug("cache backend %T expires entries itself, nothing to purge", j.Cache)
		return nil
	}
	n, err := purger.Purge(ctx)
	if err != nil {
		return err
	}
	log.Info("purged %d expired cache entries", n)
	return nil
}
