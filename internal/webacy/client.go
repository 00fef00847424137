// Package webacy reads address risk scores from the Webacy API.
package webacy

import (
	"context"
	"net/url"
	"time"

	"github.com/vytor/web3profile/internal/httpx"
	"github.com/vytor/web3profile/internal/logger"
	"github.com/vytor/web3profile/internal/models"
)

const DefaultBaseURL = "https://api.webacy.com"

type Client struct {
	http  *httpx.Client
	chain string
}

type Option func(*Client)

func WithBaseURL(u string) Option { return func(c *Client) { c.http.BaseURL = u } }

func WithRetries(n int) Option { return func(c *Client) { c.http.Retries = n } }

func WithTimeout(d time.Duration) Option { return func(c *Client) { c.http.HTTP.Timeout = d } }

func WithAPIKey(key string) Option {
	return func(c *Client) {
		if key != "" {
			c.http.Header.Set("x-api-key", key)
		}
	}
}

func New(opts ...Option) *Client {
	c := &Client{http: httpx.New("webacy", DefaultBaseURL, 15*time.Second), chain: "eth"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type riskResp struct {
	Count       int     `json:"count"`
	Medium      int     `json:"medium"`
	High        int     `json:"high"`
	OverallRisk float64 `json:"overallRisk"`
	Issues      []struct {
		Tags []struct {
			Key         string `json:"key"`
			Name        string `json:"name"`
			Severity    string `json:"severity"`
			Description string `json:"description"`
		} `json:"tags"`
	} `json:"issues"`
}

// AddressRisk returns the Webacy risk profile of address.
func (c *Client) AddressRisk(ctx context.Context, address string) (*models.SecurityScore, error) {
	log := logger.FromContext(ctx).WithPrefix("webacy").WithField("address", address)

	var raw riskResp
	if err := c.http.GetJSON(ctx, "/addresses/"+url.PathEscape(address), url.Values{"chain": {c.chain}}, &raw); err != nil {
		log.Error("failed to fetch risk: %v", err)
		return nil, err
	}

	score := &models.SecurityScore{
		OverallRisk: raw.OverallRisk,
		Count:       raw.Count,
		Medium:      raw.Medium,
		High:        raw.High,
	}
	for _, issue := range raw.Issues {
		for _, tag := range issue.Tags {
			name := tag.Name
			if name == "" {
				name = tag.Key
			}
			score.Issues = append(score.Issues, models.SecurityIssue{
				Tag:         name,
				Severity:    tag.Severity,
				Description: tag.Description,
			})
		}
	}
	log.Info("risk %.2f with %d issues", score.OverallRisk, len(score.Issues))
	return score, nil
}
