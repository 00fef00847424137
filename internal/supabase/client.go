// Package supabase invokes Supabase Edge Functions.
package supabase

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/vytor/web3profile/internal/httpx"
	"github.com/vytor/web3profile/internal/logger"
)

// ErrNotConfigured is returned when no project URL or key is set.
var ErrNotConfigured = errors.New("supabase is not configured")

type Client struct {
	http    *httpx.Client
	enabled bool
}

type Option func(*Client)

func WithRetries(n int) Option { return func(c *Client) { c.http.Retries = n } }

func WithTimeout(d time.Duration) Option { return func(c *Client) { c.http.HTTP.Timeout = d } }

// New creates a client for the project at projectURL authenticated with anonKey.
func New(projectURL, anonKey string, opts ...Option) *Client {
	c := &Client{
		http:    httpx.New("supabase", strings.TrimRight(projectURL, "/")+"/functions/v1", 30*time.Second),
		enabled: projectURL != "" && anonKey != "",
	}
	if anonKey != "" {
		c.http.Header.Set("Authorization", "Bearer "+anonKey)
		c.http.Header.Set("apikey", anonKey)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether the client can make calls.
func (c *Client) Enabled() bool {
	return c.enabled
}

// Invoke POSTs payload to the named function and decodes its JSON reply into out.
func (c *Client) Invoke(ctx context.Context, function string, payload, out any) error {
	log := logger.FromContext(ctx).WithPrefix("supabase").WithField("function", function)
	if !c.enabled {
		return ErrNotConfigured
	}
	start := time.Now()
	if err := c.http.PostJSON(ctx, "/"+url.PathEscape(function), payload, out); err != nil {
		log.Error("function call failed: %v", err)
		return err
	}
	log.Debug("function returned in %v", time.Since(start))
	return nil
}
