package jobs

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueRefresh(input string) error
	EnqueuePurge() error
}
