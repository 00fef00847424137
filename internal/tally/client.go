// Package tally reads governance votes cast by an address from the Tally API.
package tally

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vytor/web3profile/internal/httpx"
	"github.com/vytor/web3profile/internal/logger"
	"github.com/vytor/web3profile/internal/models"
)

const DefaultBaseURL = "https://api.tally.xyz"

const votesQuery = `query Votes($input: VotesInput!) {
  votes(input: $input) {
    nodes {
      ... on OnchainVote {
        type
        amount
        proposal { id metadata { title } organization { name } }
        block { timestamp }
      }
    }
  }
}`

type Client struct {
	http    *httpx.Client
	enabled bool
}

type Option func(*Client)

func WithBaseURL(u string) Option { return func(c *Client) { c.http.BaseURL = u } }

func WithRetries(n int) Option { return func(c *Client) { c.http.Retries = n } }

func WithTimeout(d time.Duration) Option { return func(c *Client) { c.http.HTTP.Timeout = d } }

func WithAPIKey(key string) Option {
	return func(c *Client) {
		if key != "" {
			c.http.Header.Set("Api-Key", key)
			c.enabled = true
		}
	}
}

func New(opts ...Option) *Client {
	c := &Client{http: httpx.New("tally", DefaultBaseURL, 15*time.Second)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.enabled
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type votesResp struct {
	Data struct {
		Votes struct {
			Nodes []struct {
				Type     string `json:"type"`
				Amount   string `json:"amount"`
				Proposal struct {
					ID       string `json:"id"`
					Metadata struct {
						Title string `json:"title"`
					} `json:"metadata"`
					Organization struct {
						Name string `json:"name"`
					} `json:"organization"`
				} `json:"proposal"`
				Block struct {
					Timestamp time.Time `json:"timestamp"`
				} `json:"block"`
			} `json:"nodes"`
		} `json:"votes"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Votes returns up to limit votes cast by address. Without an API key it
// returns an empty list and makes no request.
func (c *Client) Votes(ctx context.Context, address string, limit int) ([]models.TallyVote, error) {
	log := logger.FromContext(ctx).WithPrefix("tally").WithField("address", address)
	if !c.enabled {
		log.Debug("tally disabled, skipping votes")
		return []models.TallyVote{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	req := graphqlRequest{
		Query: votesQuery,
		Variables: map[string]any{
			"input": map[string]any{
				"filters": map[string]any{"voter": address},
				"page":    map[string]any{"limit": limit},
			},
		},
	}
	var raw votesResp
	if err := c.http.PostJSON(ctx, "/query", req, &raw); err != nil {
		log.Error("failed to fetch votes: %v", err)
		return nil, err
	}
	if len(raw.Errors) > 0 {
		msgs := make([]string, 0, len(raw.Errors))
		for _, e := range raw.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("tally: %s", strings.Join(msgs, "; "))
	}

	votes := make([]models.TallyVote, 0, len(raw.Data.Votes.Nodes))
	for _, n := range raw.Data.Votes.Nodes {
		votes = append(votes, models.TallyVote{
			ProposalID:    n.Proposal.ID,
			ProposalTitle: n.Proposal.Metadata.Title,
			Organization:  n.Proposal.Organization.Name,
			Support:       strings.ToLower(n.Type),
			Weight:        n.Amount,
			CastAt:        n.Block.Timestamp,
		})
	}
	log.Info("fetched %d votes", len(votes))
	return votes, nil
}
