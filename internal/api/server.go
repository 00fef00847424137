package api

import (
	"context"
	"time"

	"github.com/vytor/web3profile/internal/jobs"
	"github.com/vytor/web3profile/internal/services"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	Profiles  services.ProfileService
	Summaries services.SummaryService
	Searches  services.SearchService
	Proxy     services.ProxyService
	Jobs      jobs.JobQueue

	// Checked by /readyz, in order. Nil entries are skipped.
	Dependencies map[string]Pinger

	RequestTimeout time.Duration
}
