// Package poap lists the attendance badges held by an address.
package poap

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

const DefaultBaseURL = "https://api.poap.tech"

const createdLayout = "2006-01-02 15:04:05"

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
			c.http.Header.Set("X-API-Key", key)
		}
	}
}

func New(opts ...Option) *Client {
	c := &Client{http: httpx.New("poap", DefaultBaseURL, 15*time.Second)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type tokenResp struct {
	Event struct {
		ID        int64  `json:"id"`
		Name      string `json:"name"`
		ImageURL  string `json:"image_url"`
		StartDate string `json:"start_date"`
		City      string `json:"city"`
		Country   string `json:"country"`
	} `json:"event"`
	TokenID string `json:"tokenId"`
	Chain   string `json:"chain"`
	Created string `json:"created"`
}

// Scan returns the POAPs owned by address, most recently minted first.
func (c *Client) Scan(ctx context.Context, address string) ([]models.POAP, error) {
	log := logger.FromContext(ctx).WithPrefix("poap").WithField("address", address)

	var raw []tokenResp
	if err := c.http.GetJSON(ctx, "/actions/scan/"+url.PathEscape(address), nil, &raw); err != nil {
		if httpx.IsStatus(err, http.StatusNotFound) {
			return []models.POAP{}, nil
		}
		log.Error("failed to scan poaps: %v", err)
		return nil, err
	}

	out := make([]models.POAP, 0, len(raw))
	for _, t := range raw {
		created, _ := time.Parse(createdLayout, t.Created)
		out = append(out, models.POAP{
			TokenID:   t.TokenID,
			EventID:   t.Event.ID,
			Name:      t.Event.Name,
			ImageURL:  t.Event.ImageURL,
			StartDate: t.Event.StartDate,
			City:      t.Event.City,
			Country:   t.Event.Country,
			Chain:     t.Chain,
			Created:   created,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Created.After(out[j].Created) })
	log.Info("fetched %d poaps", len(out))
	return out, nil
}
