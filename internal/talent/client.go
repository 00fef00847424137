// Package talent reads builder scores and credentials from Talent Protocol.
package talent

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/vytor/web3profile/internal/httpx"
	"github.com/vytor/web3profile/internal/logger"
	"github.com/vytor/web3profile/internal/models"
)

const DefaultBaseURL = "https://api.talentprotocol.com"

type Client struct {
	http *httpx.Client
}

type Option func(*Client)

func WithBaseURL(u string) Option { return func(c *Client) { c.http.BaseURL = u } }

func WithRetries(n int) Option { return func(c *Client) { c.http.Retries = n } }

func WithTimeout(d time.Duration) Option { return func(c *Client) { c.http.HTTP.Timeout = d } }

func WithAPIKey(key string) Option {
	return func(c *Client) {
		if key != "" {
			c.http.Header.Set("X-API-KEY", key)
		}
	}
}

func New(opts ...Option) *Client {
	c := &Client{http: httpx.New("talent", DefaultBaseURL, 15*time.Second)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type scoreResp struct {
	Score struct {
		Points           float64    `json:"points"`
		LastCalculatedAt *time.Time `json:"last_calculated_at"`
	} `json:"score"`
}

type credentialsResp struct {
	Credentials []struct {
		Name           string  `json:"name"`
		Category       string  `json:"category"`
		Points         float64 `json:"points"`
		MaxScore       float64 `json:"max_score"`
		DataIssuerName string  `json:"data_issuer_name"`
	} `json:"credentials"`
}

// Score returns the builder score of address. Addresses without a Talent
// profile score zero.
func (c *Client) Score(ctx context.Context, address string) (models.TalentScore, error) {
	log := logger.FromContext(ctx).WithPrefix("talent").WithField("address", address)

	var raw scoreResp
	if err := c.http.GetJSON(ctx, "/score", url.Values{"id": {address}}, &raw); err != nil {
		if httpx.IsStatus(err, http.StatusNotFound) {
			return models.TalentScore{}, nil
		}
		log.Error("failed to fetch score: %v", err)
		return models.TalentScore{}, err
	}
	log.Debug("score %.1f", raw.Score.Points)
	return models.TalentScore{Points: raw.Score.Points, LastCalculatedAt: raw.Score.LastCalculatedAt}, nil
}

// Credentials returns the scored skills of address, highest points first.
func (c *Client) Credentials(ctx context.Context, address string) ([]models.Skill, error) {
	log := logger.FromContext(ctx).WithPrefix("talent").WithField("address", address)

	var raw credentialsResp
	if err := c.http.GetJSON(ctx, "/credentials", url.Values{"id": {address}}, &raw); err != nil {
		if httpx.IsStatus(err, http.StatusNotFound) {
			return []models.Skill{}, nil
		}
		log.Error("failed to fetch credentials: %v", err)
		return nil, err
	}

	skills := make([]models.Skill, 0, len(raw.Credentials))
	for _, cr := range raw.Credentials {
		skills = append(skills, models.Skill{
			Name:     cr.Name,
			Category: cr.Category,
			Points:   cr.Points,
			MaxScore: cr.MaxScore,
			Issuer:   cr.DataIssuerName,
		})
	}
	sort.SliceStable(skills, func(i, j int) bool { return skills[i].Points > skills[j].Points })
	log.Info("fetched %d credentials", len(skills))
	return skills, nil
}
