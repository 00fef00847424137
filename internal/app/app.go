// Package app wires configuration into the storage, cache, upstream clients
// and services shared by the server and the CLI.
package app

import (
	"context"
	"fmt"

	"github.com/vytor/web3profile/internal/api"
	"github.com/vytor/web3profile/internal/cache"
	"github.com/vytor/web3profile/internal/config"
	"github.com/vytor/web3profile/internal/db"
	"github.com/vytor/web3profile/internal/efp"
	"github.com/vytor/web3profile/internal/ens"
	"github.com/vytor/web3profile/internal/etherscan"
	"github.com/vytor/web3profile/internal/logger"
	"github.com/vytor/web3profile/internal/poap"
	"github.com/vytor/web3profile/internal/repository/sqlite"
	"github.com/vytor/web3profile/internal/services"
	"github.com/vytor/web3profile/internal/supabase"
	"github.com/vytor/web3profile/internal/talent"
	"github.com/vytor/web3profile/internal/tally"
	"github.com/vytor/web3profile/internal/web3bio"
	"github.com/vytor/web3profile/internal/webacy"
)

type App struct {
	Config    config.Config
	DB        *db.DB
	Cache     cache.Cache
	Profiles  services.ProfileService
	Summaries services.SummaryService
	Searches  services.SearchService
	Proxy     services.ProxyService
}

// New opens the database and cache and builds every service from cfg.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	log := logger.FromContext(ctx).WithPrefix("app")

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	searchRepo := sqlite.NewSearchRepository(database.DB)
	c, err := cache.Open(ctx, cfg, sqlite.NewCacheRepository(database.DB))
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("open cache: %w", err)
	}

	log.Debug("using %d rpc endpoints for ens", len(cfg.RPCURLs))
	resolver := ens.NewResolver(
		ens.NewFallbackProvider(cfg.RPCURLs, cfg.UpstreamTimeout),
		ens.WithRetries(cfg.ENSRetries, cfg.ENSRetryDelay),
	)

	up := services.Upstreams{
		Resolver: resolver,
		Etherscan: etherscan.New(
			etherscan.WithAPIKey(cfg.EtherscanAPIKey),
			etherscan.WithRetries(cfg.UpstreamRetries),
			etherscan.WithTimeout(cfg.UpstreamTimeout),
		),
		Web3Bio: web3bio.New(
			web3bio.WithAPIKey(cfg.Web3BioAPIKey),
			web3bio.WithRetries(cfg.UpstreamRetries),
			web3bio.WithTimeout(cfg.UpstreamTimeout),
		),
		Webacy: webacy.New(
			webacy.WithAPIKey(cfg.WebacyAPIKey),
			webacy.WithRetries(cfg.UpstreamRetries),
			webacy.WithTimeout(cfg.UpstreamTimeout),
		),
		POAP: poap.New(
			poap.WithAPIKey(cfg.POAPAPIKey),
			poap.WithRetries(cfg.UpstreamRetries),
			poap.WithTimeout(cfg.UpstreamTimeout),
		),
		Talent: talent.New(
			talent.WithAPIKey(cfg.TalentAPIKey),
			talent.WithRetries(cfg.UpstreamRetries),
			talent.WithTimeout(cfg.UpstreamTimeout),
		),
		EFP: efp.New(
			efp.WithRetries(cfg.UpstreamRetries),
			efp.WithTimeout(cfg.UpstreamTimeout),
		),
		Tally: tally.New(
			tally.WithAPIKey(cfg.TallyAPIKey),
			tally.WithRetries(cfg.UpstreamRetries),
			tally.WithTimeout(cfg.UpstreamTimeout),
		),
	}

	fn := supabase.New(cfg.SupabaseURL, cfg.SupabaseAnonKey, supabase.WithRetries(cfg.UpstreamRetries))
	if !fn.Enabled() {
		log.Warn("SUPABASE_URL or SUPABASE_ANON_KEY not set, summaries disabled")
	}

	return &App{
		Config:    cfg,
		DB:        database,
		Cache:     c,
		Profiles:  services.NewProfileService(up, c, cfg.CacheTTL, searchRepo),
		Summaries: services.NewSummaryService(fn, c, cfg.CacheTTL),
		Searches:  services.NewSearchService(searchRepo),
		Proxy:     services.NewProxyService(services.DefaultUpstreams(cfg), cfg.UpstreamTimeout),
	}, nil
}

// Dependencies lists what /readyz should ping.
func (a *App) Dependencies() map[string]api.Pinger {
	deps := map[string]api.Pinger{"db": a.DB}
	if p, ok := a.Cache.(api.Pinger); ok {
		deps["cache"] = p
	}
	return deps
}

// Close releases the cache connection and the database.
func (a *App) Close() error {
	var firstErr error
	if c, ok := a.Cache.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			firstErr = err
		}
	}
	if err := a.DB.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
