// Package web3bio fetches cross-platform social identities from web3.bio.
package web3bio

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

const DefaultBaseURL = "https://api.web3.bio"

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
			c.http.Header.Set("X-API-KEY", "Bearer "+key)
		}
	}
}

func New(opts ...Option) *Client {
	c := &Client{http: httpx.New("web3bio", DefaultBaseURL, 15*time.Second)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type linkResp struct {
	Link   string `json:"link"`
	Handle string `json:"handle"`
}

type profileResp struct {
	Address     string              `json:"address"`
	Identity    string              `json:"identity"`
	Platform    string              `json:"platform"`
	DisplayName string              `json:"displayName"`
	Avatar      string              `json:"avatar"`
	Description string              `json:"description"`
	Links       map[string]linkResp `json:"links"`
}

// Profiles returns every platform profile linked to identity. An unknown
// identity yields an empty list.
func (c *Client) Profiles(ctx context.Context, identity string) ([]models.SocialProfile, error) {
	log := logger.FromContext(ctx).WithPrefix("web3bio").WithField("identity", identity)

	var raw []profileResp
	if err := c.http.GetJSON(ctx, "/profile/"+url.PathEscape(identity), nil, &raw); err != nil {
		if httpx.IsStatus(err, http.StatusNotFound) {
			log.Debug("no web3.bio profiles")
			return []models.SocialProfile{}, nil
		}
		log.Error("failed to fetch profiles: %v", err)
		return nil, err
	}

	out := make([]models.SocialProfile, 0, len(raw))
	for _, p := range raw {
		sp := models.SocialProfile{
			Platform:    p.Platform,
			Identity:    p.Identity,
			Address:     p.Address,
			DisplayName: p.DisplayName,
			Avatar:      p.Avatar,
			Description: p.Description,
		}
		for platform, l := range p.Links {
			if l.Link == "" {
				continue
			}
			sp.Links = append(sp.Links, models.SocialLink{Platform: platform, Handle: l.Handle, URL: l.Link})
		}
		sort.Slice(sp.Links, func(i, j int) bool { return sp.Links[i].Platform < sp.Links[j].Platform })
		out = append(out, sp)
	}
	log.Info("fetched %d social profiles", len(out))
	return out, nil
}
