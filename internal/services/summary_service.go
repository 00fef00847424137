package services

import (
	"context"
	"strings"
	"time"

	"github.com/vytor/web3profile/internal/cache"
	"github.com/vytor/web3profile/internal/errors"
	"github.com/vytor/web3profile/internal/logger"
	"github.com/vytor/web3profile/internal/models"
	"github.com/vytor/web3profile/internal/supabase"
)

// SummaryFunction is the edge function that writes profile summaries.
const SummaryFunction = "profile-summary"

// SummaryService produces AI-written summaries of aggregated profiles
type SummaryService interface {
	Summarize(ctx context.Context, profile *models.AggregatedProfile) (*models.Summary, error)
}

type summaryService struct {
	fn    supabase.ClientInterface
	cache cache.Cache
	ttl   time.Duration
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(fn supabase.ClientInterface, c cache.Cache, ttl time.Duration) SummaryService {
	if c == nil {
		c = cache.Noop{}
	}
	return &summaryService{fn: fn, cache: c, ttl: ttl}
}

type summaryRequest struct {
	Address      string            `json:"address"`
	Name         string            `json:"name,omitempty"`
	Records      map[string]string `json:"records,omitempty"`
	Socials      []string          `json:"socials,omitempty"`
	Skills       []string          `json:"skills,omitempty"`
	POAPs        []string          `json:"poaps,omitempty"`
	Followers    int               `json:"followers"`
	Following    int               `json:"following"`
	Transactions int               `json:"transactions"`
	TalentPoints float64           `json:"talent_points"`
	BuilderScore float64           `json:"builder_score"`
}

type summaryReply struct {
	Summary    string                  `json:"summary"`
	Text       string                  `json:"text"`
	Experience []models.WorkExperience `json:"experience"`
}

func (s *summaryService) Summarize(ctx context.Context, p *models.AggregatedProfile) (*models.Summary, error) {
	log := logger.FromContext(ctx).WithPrefix("summary")
	if p == nil {
		return nil, errors.NewBadRequestError("profile is required")
	}
	if !s.fn.Enabled() {
		return nil, errors.NewUnavailableError("summary generation is not configured", supabase.ErrNotConfigured)
	}

	out, err := cache.Fetch(ctx, s.cache, summaryKey(p.Identity.Key()), s.ttl, func(ctx context.Context) (models.Summary, error) {
		var reply summaryReply
		if err := s.fn.Invoke(ctx, SummaryFunction, buildSummaryRequest(p), &reply); err != nil {
			return models.Summary{}, err
		}
		text := reply.Summary
		if text == "" {
			text = reply.Text
		}
		return models.Summary{Text: strings.TrimSpace(text), Experience: reply.Experience}, nil
	})
	if err != nil {
		log.Error("failed to summarize %s: %v", p.Identity.Address, err)
		return nil, errors.NewUpstreamError("supabase", err)
	}
	return &out, nil
}

func buildSummaryRequest(p *models.AggregatedProfile) summaryRequest {
	req := summaryRequest{
		Address:      p.Identity.Checksum,
		Name:         p.Identity.Name,
		Records:      p.ENS.Records,
		Followers:    p.Follow.Followers,
		Following:    p.Follow.Following,
		Transactions: len(p.Transactions),
		TalentPoints: p.Talent.Points,
		BuilderScore: p.Score.Total,
	}
	if req.Address == "" {
		req.Address = p.Identity.Address
	}
	for _, sp := range p.Socials {
		req.Socials = append(req.Socials, sp.Platform+":"+sp.Identity)
	}
	for _, sk := range p.Skills {
		req.Skills = append(req.Skills, sk.Name)
	}
	for i, poap := range p.POAPs {
		if i == 10 {
			break
		}
		req.POAPs = append(req.POAPs, poap.Name)
	}
	return req
}

func summaryKey(addr string) string { return cache.Key("summary", addr) }
