package jobs

import (
	"github.com/vytor/web3profile/internal/cache"
	"github.com/vytor/web3profile/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	pool     *worker.Pool
	profiles worker.Refresher
	cache    cache.Cache
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(pool *worker.Pool, profiles worker.Refresher, c cache.Cache) JobQueue {
	return &WorkerQueue{pool: pool, profiles: profiles, cache: c}
}

func (q *WorkerQueue) EnqueueRefresh(input string) error {
	return q.pool.Submit(&worker.RefreshProfileJob{
		Profiles: q.profiles,
		Input:    input,
	})
}

func (q *WorkerQueue) EnqueuePurge() error {
	return q.pool.Submit(&worker.PurgeCacheJob{Cache: q.cache})
}
