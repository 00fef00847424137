package services

import (
	"context"
	stderrors "errors"
	"strconv"
	"sync"
	"time"

	"github.com/vytor/web3profile/internal/cache"
	"github.com/vytor/web3profile/internal/efp"
	"github.com/vytor/web3profile/internal/ens"
	"github.com/vytor/web3profile/internal/errors"
	"github.com/vytor/web3profile/internal/etherscan"
	"github.com/vytor/web3profile/internal/identity"
	"github.com/vytor/web3profile/internal/logger"
	"github.com/vytor/web3profile/internal/models"
	"github.com/vytor/web3profile/internal/poap"
	"github.com/vytor/web3profile/internal/repository"
	"github.com/vytor/web3profile/internal/score"
	"github.com/vytor/web3profile/internal/talent"
	"github.com/vytor/web3profile/internal/tally"
	"github.com/vytor/web3profile/internal/web3bio"
	"github.com/vytor/web3profile/internal/webacy"
	"golang.org/x/sync/errgroup"
)

const (
	defaultTransactionLimit = 50
	maxTransactionLimit     = 500
	defaultFollowLimit      = 20
	maxFollowLimit          = 100
	defaultVoteLimit        = 20
)

// SkillsResult pairs the Talent Protocol score with its credentials.
type SkillsResult struct {
	Talent models.TalentScore `json:"talent"`
	Skills []models.Skill     `json:"skills"`
}

// ProfileService resolves identities and aggregates their profile sections
type ProfileService interface {
	Resolve(ctx context.Context, input string) (*models.Identity, error)
	Aggregate(ctx context.Context, input string) (*models.AggregatedProfile, error)
	Refresh(ctx context.Context, input string) (*models.AggregatedProfile, error)

	ENS(ctx context.Context, input string) (*models.ENSRecords, error)
	Socials(ctx context.Context, input string) ([]models.SocialProfile, error)
	Followers(ctx context.Context, input string, limit, offset int) ([]models.FollowEntry, error)
	Following(ctx context.Context, input string, limit, offset int) ([]models.FollowEntry, error)
	POAPs(ctx context.Context, input string) ([]models.POAP, error)
	Transactions(ctx context.Context, input string, limit int) ([]models.Transaction, error)
	NFTs(ctx context.Context, input string) ([]models.NFTCollection, error)
	Security(ctx context.Context, input string) (*models.SecurityScore, error)
	Skills(ctx context.Context, input string) (*SkillsResult, error)
	Votes(ctx context.Context, input string) ([]models.TallyVote, error)
}

// Upstreams groups the collaborators a ProfileService fans out to.
type Upstreams struct {
	Resolver  ens.ResolverInterface
	Etherscan etherscan.ClientInterface
	Web3Bio   web3bio.ClientInterface
	Webacy    webacy.ClientInterface
	POAP      poap.ClientInterface
	Talent    talent.ClientInterface
	EFP       efp.ClientInterface
	Tally     tally.ClientInterface
}

type profileService struct {
	up       Upstreams
	cache    cache.Cache
	ttl      time.Duration
	searches repository.SearchRepository
	now      func() time.Time
}

// NewProfileService creates a new ProfileService. A nil cache disables caching.
func NewProfileService(up Upstreams, c cache.Cache, ttl time.Duration, searches repository.SearchRepository) ProfileService {
	if c == nil {
		c = cache.Noop{}
	}
	return &profileService{up: up, cache: c, ttl: ttl, searches: searches, now: time.Now}
}

func (s *profileService) Resolve(ctx context.Context, input string) (*models.Identity, error) {
	log := logger.FromContext(ctx).WithPrefix("profile")
	log.Debug("resolving input: %s", input)

	q, err := identity.Normalize(input)
	if err != nil {
		return nil, errors.NewValidationError("input", err.Error())
	}

	id := &models.Identity{Input: input, Kind: string(q.Kind)}
	switch q.Kind {
	case identity.KindName:
		addr, err := cache.Fetch(ctx, s.cache, resolveKey(q.Value), s.ttl, func(ctx context.Context) (string, error) {
			return s.up.Resolver.Resolve(ctx, q.Value)
		})
		if stderrors.Is(err, ens.ErrNotFound) {
			return nil, errors.NewNotFoundError("ens name", q.Value)
		}
		if err != nil {
			log.Error("failed to resolve %s: %v", q.Value, err)
			return nil, errors.NewUpstreamError("ens", err)
		}
		id.Address = addr
		id.Name = q.Value
	default:
		id.Address = q.Value
		name, err := cache.Fetch(ctx, s.cache, reverseKey(q.Value), s.ttl, func(ctx context.Context) (string, error) {
			return s.up.Resolver.LookupAddress(ctx, q.Value)
		})
		if err != nil {
			if !stderrors.Is(err, ens.ErrNotFound) {
				log.Warn("reverse lookup for %s failed: %v", q.Value, err)
			}
		} else {
			id.Name = name
		}
	}

	checksum, err := identity.Checksum(id.Address)
	if err != nil {
		log.Error("resolver returned invalid address %q: %v", id.Address, err)
		return nil, errors.NewUpstreamError("ens", err)
	}
	id.Checksum = checksum
	id.EmojiHash = identity.EmojiHash(id.Address)

	log.Debug("resolved %s to %s (name=%s)", input, id.Address, id.Name)
	return id, nil
}

func (s *profileService) Aggregate(ctx context.Context, input string) (*models.AggregatedProfile, error) {
	id, err := s.Resolve(ctx, input)
	if err != nil {
		return nil, err
	}
	p := s.aggregate(ctx, id)

	if s.searches != nil {
		if _, err := s.searches.Record(ctx, input, id.Address, id.Name); err != nil {
			logger.FromContext(ctx).WithPrefix("profile").Warn("failed to record search: %v", err)
		}
	}
	return p, nil
}

func (s *profileService) Refresh(ctx context.Context, input string) (*models.AggregatedProfile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile")

	id, err := s.Resolve(ctx, input)
	if err != nil {
		return nil, err
	}
	keys := s.sectionKeys(id)
	if err := s.cache.Delete(ctx, keys...); err != nil {
		log.Warn("failed to invalidate %d cache keys for %s: %v", len(keys), id.Address, err)
	}
	log.Info("invalidated cached sections for %s", id.Address)

	id, err = s.Resolve(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.aggregate(ctx, id), nil
}

// aggregate fetches every section concurrently. Sections never fail the
// aggregate: a failure leaves the section at its default and is reported in Errors.
func (s *profileService) aggregate(ctx context.Context, id *models.Identity) *models.AggregatedProfile {
	log := logger.FromContext(ctx).WithPrefix("profile").WithField("address", id.Address)
	start := time.Now()

	p := &models.AggregatedProfile{
		Identity:     *id,
		ENS:          models.ENSRecords{Name: id.Name, Address: id.Address},
		Socials:      []models.SocialProfile{},
		POAPs:        []models.POAP{},
		Transactions: []models.Transaction{},
		NFTs:         []models.NFTCollection{},
		Skills:       []models.Skill{},
		Votes:        []models.TallyVote{},
		Errors:       map[string]string{},
	}

	var mu sync.Mutex
	fail := func(section string, err error) {
		log.Warn("section %s failed: %v", section, err)
		mu.Lock()
		p.Errors[section] = err.Error()
		mu.Unlock()
	}

	var g errgroup.Group
	g.Go(func() error {
		if id.Name == "" {
			return nil
		}
		if rec, err := s.ens(ctx, id); err != nil {
			fail(models.SectionENS, err)
		} else {
			p.ENS = *rec
		}
		return nil
	})
	g.Go(func() error {
		if v, err := s.socials(ctx, id); err != nil {
			fail(models.SectionSocials, err)
		} else {
			p.Socials = v
		}
		return nil
	})
	g.Go(func() error {
		if v, err := s.followStats(ctx, id); err != nil {
			fail(models.SectionFollow, err)
		} else {
			p.Follow = v
		}
		return nil
	})
	g.Go(func() error {
		if v, err := s.poaps(ctx, id); err != nil {
			fail(models.SectionPOAPs, err)
		} else {
			p.POAPs = v
		}
		return nil
	})
	g.Go(func() error {
		if v, err := s.transactions(ctx, id, defaultTransactionLimit); err != nil {
			fail(models.SectionTransactions, err)
		} else {
			p.Transactions = v
		}
		return nil
	})
	g.Go(func() error {
		if v, err := s.txCount(ctx, id); err != nil {
			fail(models.SectionTxCount, err)
		} else {
			p.TxCount = v
		}
		return nil
	})
	g.Go(func() error {
		if v, err := s.nfts(ctx, id); err != nil {
			fail(models.SectionNFTs, err)
		} else {
			p.NFTs = v
		}
		return nil
	})
	g.Go(func() error {
		if v, err := s.talentScore(ctx, id); err != nil {
			fail(models.SectionTalent, err)
		} else {
			p.Talent = v
		}
		return nil
	})
	g.Go(func() error {
		if v, err := s.skills(ctx, id); err != nil {
			fail(models.SectionSkills, err)
		} else {
			p.Skills = v
		}
		return nil
	})
	g.Go(func() error {
		if v, err := s.security(ctx, id); err != nil {
			fail(models.SectionSecurity, err)
		} else {
			p.Security = v
		}
		return nil
	})
	g.Go(func() error {
		if v, err := s.votes(ctx, id); err != nil {
			fail(models.SectionVotes, err)
		} else {
			p.Votes = v
		}
		return nil
	})
	_ = g.Wait()

	p.Score = score.Compute(score.FromProfile(p))
	p.FetchedAt = s.now().UTC()
	if len(p.Errors) == 0 {
		p.Errors = nil
	}
	log.Info("aggregated profile in %v (score=%.2f, failed sections=%d)", time.Since(start), p.Score.Total, len(p.Errors))
	return p
}

func (s *profileService) ENS(ctx context.Context, input string) (*models.ENSRecords, error) {
	id, err := s.Resolve(ctx, input)
	if err != nil {
		return nil, err
	}
	if id.Name == "" {
		return &models.ENSRecords{Address: id.Address}, nil
	}
	rec, err := s.ens(ctx, id)
	if err != nil {
		return nil, errors.NewUpstreamError("ens", err)
	}
	return rec, nil
}

func (s *profileService) Socials(ctx context.Context, input string) ([]models.SocialProfile, error) {
	id, err := s.Resolve(ctx, input)
	if err != nil {
		return nil, err
	}
	v, err := s.socials(ctx, id)
	if err != nil {
		return nil, errors.NewUpstreamError("web3bio", err)
	}
	return v, nil
}

func (s *profileService) Followers(ctx context.Context, input string, limit, offset int) ([]models.FollowEntry, error) {
	return s.followList(ctx, input, "followers", limit, offset, s.up.EFP.Followers)
}

func (s *profileService) Following(ctx context.Context, input string, limit, offset int) ([]models.FollowEntry, error) {
	return s.followList(ctx, input, "following", limit, offset, s.up.EFP.Following)
}

type followFetcher func(ctx context.Context, id string, limit, offset int) ([]models.FollowEntry, error)

func (s *profileService) followList(ctx context.Context, input, kind string, limit, offset int, fetch followFetcher) ([]models.FollowEntry, error) {
	if offset < 0 {
		return nil, errors.NewValidationError("offset", "must not be negative")
	}
	limit = clamp(limit, defaultFollowLimit, maxFollowLimit)

	id, err := s.Resolve(ctx, input)
	if err != nil {
		return nil, err
	}
	key := cache.Key("efp", kind, id.Key(), strconv.Itoa(limit), strconv.Itoa(offset))
	v, err := cache.Fetch(ctx, s.cache, key, s.ttl, func(ctx context.Context) ([]models.FollowEntry, error) {
		return fetch(ctx, id.Address, limit, offset)
	})
	if err != nil {
		return nil, errors.NewUpstreamError("efp", err)
	}
	return nonNil(v), nil
}

func (s *profileService) POAPs(ctx context.Context, input string) ([]models.POAP, error) {
	id, err := s.Resolve(ctx, input)
	if err != nil {
		return nil, err
	}
	v, err := s.poaps(ctx, id)
	if err != nil {
		return nil, errors.NewUpstreamError("poap", err)
	}
	return v, nil
}

func (s *profileService) Transactions(ctx context.Context, input string, limit int) ([]models.Transaction, error) {
	id, err := s.Resolve(ctx, input)
	if err != nil {
		return nil, err
	}
	v, err := s.transactions(ctx, id, clamp(limit, defaultTransactionLimit, maxTransactionLimit))
	if err != nil {
		return nil, errors.NewUpstreamError("etherscan", err)
	}
	return v, nil
}

func (s *profileService) NFTs(ctx context.Context, input string) ([]models.NFTCollection, error) {
	id, err := s.Resolve(ctx, input)
	if err != nil {
		return nil, err
	}
	v, err := s.nfts(ctx, id)
	if err != nil {
		return nil, errors.NewUpstreamError("etherscan", err)
	}
	return v, nil
}

func (s *profileService) Security(ctx context.Context, input string) (*models.SecurityScore, error) {
	id, err := s.Resolve(ctx, input)
	if err != nil {
		return nil, err
	}
	v, err := s.security(ctx, id)
	if err != nil {
		return nil, errors.NewUpstreamError("webacy", err)
	}
	if v == nil {
		return nil, errors.NewNotFoundError("security score", id.Address)
	}
	return v, nil
}

func (s *profileService) Skills(ctx context.Context, input string) (*SkillsResult, error) {
	id, err := s.Resolve(ctx, input)
	if err != nil {
		return nil, err
	}

	var (
		res SkillsResult
		g   errgroup.Group
	)
	g.Go(func() error {
		v, err := s.talentScore(ctx, id)
		res.Talent = v
		return err
	})
	g.Go(func() error {
		v, err := s.skills(ctx, id)
		res.Skills = v
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.NewUpstreamError("talent", err)
	}
	res.Skills = nonNil(res.Skills)
	return &res, nil
}

func (s *profileService) Votes(ctx context.Context, input string) ([]models.TallyVote, error) {
	id, err := s.Resolve(ctx, input)
	if err != nil {
		return nil, err
	}
	v, err := s.votes(ctx, id)
	if err != nil {
		return nil, errors.NewUpstreamError("tally", err)
	}
	return v, nil
}

// Section loaders. Each reads through the cache and returns non-nil slices.

func (s *profileService) ens(ctx context.Context, id *models.Identity) (*models.ENSRecords, error) {
	records, err := cache.Fetch(ctx, s.cache, cache.Key("ens", "records", id.Name), s.ttl, func(ctx context.Context) (map[string]string, error) {
		return s.up.Resolver.Records(ctx, id.Name, ens.DefaultTextKeys)
	})
	if err != nil {
		return nil, err
	}
	return &models.ENSRecords{
		Name:    id.Name,
		Address: id.Address,
		Avatar:  records["avatar"],
		Records: records,
	}, nil
}

func (s *profileService) socials(ctx context.Context, id *models.Identity) ([]models.SocialProfile, error) {
	lookup := id.Address
	if id.Name != "" {
		lookup = id.Name
	}
	v, err := cache.Fetch(ctx, s.cache, cache.Key("web3bio", lookup), s.ttl, func(ctx context.Context) ([]models.SocialProfile, error) {
		return s.up.Web3Bio.Profiles(ctx, lookup)
	})
	return nonNil(v), err
}

func (s *profileService) followStats(ctx context.Context, id *models.Identity) (models.FollowStats, error) {
	return cache.Fetch(ctx, s.cache, cache.Key("efp", "stats", id.Key()), s.ttl, func(ctx context.Context) (models.FollowStats, error) {
		return s.up.EFP.Stats(ctx, id.Address)
	})
}

func (s *profileService) poaps(ctx context.Context, id *models.Identity) ([]models.POAP, error) {
	v, err := cache.Fetch(ctx, s.cache, cache.Key("poap", id.Key()), s.ttl, func(ctx context.Context) ([]models.POAP, error) {
		return s.up.POAP.Scan(ctx, id.Address)
	})
	return nonNil(v), err
}

func (s *profileService) transactions(ctx context.Context, id *models.Identity, limit int) ([]models.Transaction, error) {
	key := cache.Key("etherscan", "txs", id.Key(), strconv.Itoa(limit))
	v, err := cache.Fetch(ctx, s.cache, key, s.ttl, func(ctx context.Context) ([]models.Transaction, error) {
		return s.up.Etherscan.Transactions(ctx, id.Address, limit)
	})
	return nonNil(v), err
}

func (s *profileService) txCount(ctx context.Context, id *models.Identity) (int, error) {
	return cache.Fetch(ctx, s.cache, cache.Key("etherscan", "txcount", id.Key()), s.ttl, func(ctx context.Context) (int, error) {
		return s.up.Etherscan.TransactionCount(ctx, id.Address)
	})
}

func (s *profileService) nfts(ctx context.Context, id *models.Identity) ([]models.NFTCollection, error) {
	v, err := cache.Fetch(ctx, s.cache, cache.Key("etherscan", "nfts", id.Key()), s.ttl, func(ctx context.Context) ([]models.NFTCollection, error) {
		transfers, err := s.up.Etherscan.NFTTransfers(ctx, id.Address, 0)
		if err != nil {
			return nil, err
		}
		return etherscan.Collections(transfers, id.Address), nil
	})
	return nonNil(v), err
}

func (s *profileService) talentScore(ctx context.Context, id *models.Identity) (models.TalentScore, error) {
	return cache.Fetch(ctx, s.cache, cache.Key("talent", "score", id.Key()), s.ttl, func(ctx context.Context) (models.TalentScore, error) {
		return s.up.Talent.Score(ctx, id.Address)
	})
}

func (s *profileService) skills(ctx context.Context, id *models.Identity) ([]models.Skill, error) {
	v, err := cache.Fetch(ctx, s.cache, cache.Key("talent", "skills", id.Key()), s.ttl, func(ctx context.Context) ([]models.Skill, error) {
		return s.up.Talent.Credentials(ctx, id.Address)
	})
	return nonNil(v), err
}

func (s *profileService) security(ctx context.Context, id *models.Identity) (*models.SecurityScore, error) {
	return cache.Fetch(ctx, s.cache, cache.Key("webacy", id.Key()), s.ttl, func(ctx context.Context) (*models.SecurityScore, error) {
		return s.up.Webacy.AddressRisk(ctx, id.Address)
	})
}

func (s *profileService) votes(ctx context.Context, id *models.Identity) ([]models.TallyVote, error) {
	key := cache.Key("tally", "votes", id.Key(), strconv.Itoa(defaultVoteLimit))
	v, err := cache.Fetch(ctx, s.cache, key, s.ttl, func(ctx context.Context) ([]models.TallyVote, error) {
		return s.up.Tally.Votes(ctx, id.Address, defaultVoteLimit)
	})
	return nonNil(v), err
}

// sectionKeys lists the cache keys an aggregate reads for id.
func (s *profileService) sectionKeys(id *models.Identity) []string {
	addr := id.Key()
	keys := []string{
		reverseKey(addr),
		cache.Key("web3bio", addr),
		cache.Key("efp", "stats", addr),
		cache.Key("poap", addr),
		cache.Key("etherscan", "txs", addr, strconv.Itoa(defaultTransactionLimit)),
		cache.Key("etherscan", "txcount", addr),
		cache.Key("etherscan", "nfts", addr),
		cache.Key("talent", "score", addr),
		cache.Key("talent", "skills", addr),
		cache.Key("webacy", addr),
		cache.Key("tally", "votes", addr, strconv.Itoa(defaultVoteLimit)),
		summaryKey(addr),
	}
	if id.Name != "" {
		keys = append(keys,
			resolveKey(id.Name),
			cache.Key("ens", "records", id.Name),
			cache.Key("web3bio", id.Name),
		)
	}
	return keys
}

func resolveKey(name string) string { return cache.Key("ens", "resolve", name) }

func reverseKey(addr string) string { return cache.Key("ens", "reverse", addr) }

func clamp(v, def, upper int) int {
	if v <= 0 {
		return def
	}
	if v > upper {
		return upper
	}
	return v
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
