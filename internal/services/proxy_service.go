package services

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/vytor/web3profile/internal/config"
	"github.com/vytor/web3profile/internal/errors"
	"github.com/vytor/web3profile/internal/httpx"
	"github.com/vytor/web3profile/internal/logger"
)

// ProxyRequest names an upstream path relative to the service root.
type ProxyRequest struct {
	Path   string            `json:"path"`
	Params map[string]string `json:"params,omitempty"`
}

// ProxyResponse is the upstream answer, passed through untouched.
type ProxyResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Upstream describes how to reach one proxied service and authenticate to it.
type Upstream struct {
	BaseURL string
	Header  http.Header
	Query   url.Values
}

// ProxyService forwards read requests to allow-listed services with the
// server-held credentials attached.
type ProxyService interface {
	Forward(ctx context.Context, service string, req ProxyRequest) (*ProxyResponse, error)
	Services() []string
}

type proxyService struct {
	clients map[string]*httpx.Client
	query   map[string]url.Values
}

// DefaultUpstreams returns the allow-listed services configured with the keys in cfg.
func DefaultUpstreams(cfg config.Config) map[string]Upstream {
	header := func(k, v string) http.Header {
		h := make(http.Header)
		if v != "" {
			h.Set(k, v)
		}
		return h
	}
	web3bioKey := ""
	if cfg.Web3BioAPIKey != "" {
		web3bioKey = "Bearer " + cfg.Web3BioAPIKey
	}
	etherscanQuery := url.Values{}
	if cfg.EtherscanAPIKey != "" {
		etherscanQuery.Set("apikey", cfg.EtherscanAPIKey)
	}

	return map[string]Upstream{
		"etherscan": {BaseURL: "https://api.etherscan.io", Query: etherscanQuery},
		"webacy":    {BaseURL: "https://api.webacy.com", Header: header("x-api-key", cfg.WebacyAPIKey)},
		"poap":      {BaseURL: "https://api.poap.tech", Header: header("X-API-Key", cfg.POAPAPIKey)},
		"talent":    {BaseURL: "https://api.talentprotocol.com", Header: header("X-API-KEY", cfg.TalentAPIKey)},
		"web3bio":   {BaseURL: "https://api.web3.bio", Header: header("X-API-KEY", web3bioKey)},
		"efp":       {BaseURL: "https://api.ethfollow.xyz/api/v1"},
	}
}

// NewProxyService creates a new ProxyService over upstreams.
func NewProxyService(upstreams map[string]Upstream, timeout time.Duration) ProxyService {
	s := &proxyService{
		clients: make(map[string]*httpx.Client, len(upstreams)),
		query:   make(map[string]url.Values, len(upstreams)),
	}
	for name, up := range upstreams {
		c := httpx.New(name, strings.TrimRight(up.BaseURL, "/"), timeout)
		for k, vs := range up.Header {
			for _, v := range vs {
				c.Header.Add(k, v)
			}
		}
		s.clients[name] = c
		s.query[name] = up.Query
	}
	return s
}

func (s *proxyService) Services() []string {
	names := make([]string, 0, len(s.clients))
	for name := range s.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *proxyService) Forward(ctx context.Context, service string, req ProxyRequest) (*ProxyResponse, error) {
	log := logger.FromContext(ctx).WithPrefix("proxy").WithField("service", service)

	c, ok := s.clients[service]
	if !ok {
		return nil, errors.NewBadRequestError("unknown proxy service: " + service)
	}
	path, err := cleanProxyPath(req.Path)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	for k, v := range req.Params {
		query.Set(k, v)
	}
	for k, vs := range s.query[service] {
		query[k] = vs
	}

	log.Debug("forwarding %s", path)
	resp, err := c.Raw(ctx, http.MethodGet, c.URL(path, query), nil)
	if err != nil {
		log.Error("forward failed: %v", err)
		return nil, errors.NewUpstreamError(service, err)
	}
	return &ProxyResponse{StatusCode: resp.StatusCode, ContentType: resp.ContentType, Body: resp.Body}, nil
}

// cleanProxyPath accepts only paths relative to the service root.
func cleanProxyPath(p string) (string, error) {
	p = strings.TrimSpace(p)
	switch {
	case p == "":
		return "", errors.NewValidationError("path", "cannot be empty")
	case strings.Contains(p, "://"), strings.HasPrefix(p, "//"), strings.ContainsAny(p, "\\?#"):
		return "", errors.NewValidationError("path", "must be a relative path without query")
	}
	decoded, err := url.PathUnescape(p)
	if err != nil {
		return "", errors.NewValidationError("path", "is not a valid url path")
	}
	for _, seg := range strings.Split(decoded, "/") {
		if seg == ".." || seg == "." {
			return "", errors.NewValidationError("path", "must not contain dot segments")
		}
	}
	return "/" + strings.TrimPrefix(p, "/"), nil
}
