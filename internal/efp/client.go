// Package efp reads the Ethereum Follow Protocol social graph.
package efp

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/vytor/web3profile/internal/httpx"
	"github.com/vytor/web3profile/internal/logger"
	"github.com/vytor/web3profile/internal/models"
)

const DefaultBaseURL = "https://api.ethfollow.xyz/api/v1"

const maxPageSize = 100

type Client struct {
	http *httpx.Client
}

type Option func(*Client)

func WithBaseURL(u string) Option { return func(c *Client) { c.http.BaseURL = u } }

func WithRetries(n int) Option { return func(c *Client) { c.http.Retries = n } }

func WithTimeout(d time.Duration) Option { return func(c *Client) { c.http.HTTP.Timeout = d } }

func New(opts ...Option) *Client {
	c := &Client{http: httpx.New("efp", DefaultBaseURL, 15*time.Second)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// count accepts both JSON numbers and numeric strings.
type count int

func (c *count) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*c = 0
		return nil
	}
	v, err := strconv.Atoi(string(b))
	if err != nil {
		return err
	}
	*c = count(v)
	return nil
}

type statsResp struct {
	FollowersCount count `json:"followers_count"`
	FollowingCount count `json:"following_count"`
}

type followerResp struct {
	Address   string    `json:"address"`
	Tags      []string  `json:"tags"`
	IsBlocked bool      `json:"is_blocked"`
	IsMuted   bool      `json:"is_muted"`
	UpdatedAt time.Time `json:"updated_at"`
}

type followingResp struct {
	RecordType string   `json:"record_type"`
	Data       string   `json:"data"`
	Tags       []string `json:"tags"`
}

func userPath(id, suffix string) string {
	return "/users/" + url.PathEscape(id) + "/" + suffix
}

func page(limit, offset int) url.Values {
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return url.Values{"limit": {strconv.Itoa(limit)}, "offset": {strconv.Itoa(offset)}}
}

// Stats returns follower and following counts. Unknown users have zero counts.
func (c *Client) Stats(ctx context.Context, id string) (models.FollowStats, error) {
	log := logger.FromContext(ctx).WithPrefix("efp").WithField("id", id)

	var raw statsResp
	if err := c.http.GetJSON(ctx, userPath(id, "stats"), nil, &raw); err != nil {
		if httpx.IsStatus(err, http.StatusNotFound) {
			return models.FollowStats{}, nil
		}
		log.Error("failed to fetch stats: %v", err)
		return models.FollowStats{}, err
	}
	return models.FollowStats{Followers: int(raw.FollowersCount), Following: int(raw.FollowingCount)}, nil
}

// Followers returns one page of accounts following id. Blocked and muted
// followers are left out.
func (c *Client) Followers(ctx context.Context, id string, limit, offset int) ([]models.FollowEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("efp").WithField("id", id)

	var raw struct {
		Followers []followerResp `json:"followers"`
	}
	if err := c.http.GetJSON(ctx, userPath(id, "followers"), page(limit, offset), &raw); err != nil {
		if httpx.IsStatus(err, http.StatusNotFound) {
			return []models.FollowEntry{}, nil
		}
		log.Error("failed to fetch followers: %v", err)
		return nil, err
	}

	out := make([]models.FollowEntry, 0, len(raw.Followers))
	for _, f := range raw.Followers {
		if f.IsBlocked || f.IsMuted {
			continue
		}
		out = append(out, models.FollowEntry{Address: f.Address, Tags: f.Tags, UpdatedAt: f.UpdatedAt})
	}
	log.Debug("fetched %d followers", len(out))
	return out, nil
}

// Following returns one page of addresses id follows.
func (c *Client) Following(ctx context.Context, id string, limit, offset int) ([]models.FollowEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("efp").WithField("id", id)

	var raw struct {
		Following []followingResp `json:"following"`
	}
	if err := c.http.GetJSON(ctx, userPath(id, "following"), page(limit, offset), &raw); err != nil {
		if httpx.IsStatus(err, http.StatusNotFound) {
			return []models.FollowEntry{}, nil
		}
		log.Error("failed to fetch following: %v", err)
		return nil, err
	}

	out := make([]models.FollowEntry, 0, len(raw.Following))
	for _, f := range raw.Following {
		if f.RecordType != "" && f.RecordType != "address" {
			continue
		}
		out = append(out, models.FollowEntry{Address: f.Data, Tags: f.Tags})
	}
	log.Debug("fetched %d following", len(out))
	return out, nil
}
