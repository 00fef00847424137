package services_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/web3profile/internal/config"
	"github.com/vytor/web3profile/internal/errors"
	"github.com/vytor/web3profile/internal/httpx"
	"github.com/vytor/web3profile/internal/services"
)

func TestProxyForward_InjectsCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/addresses/0xabc":
			assert.Equal(t, "secret", r.Header.Get("x-api-key"))
			assert.Equal(t, "eth", r.URL.Query().Get("chain"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"overallRisk":12}`))
		case "/v2/api":
			assert.Equal(t, "server-key", r.URL.Query().Get("apikey"), "caller must not override the server key")
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte(`short and stout`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	svc := services.NewProxyService(map[string]services.Upstream{
		"webacy":    {BaseURL: srv.URL, Header: http.Header{"X-Api-Key": {"secret"}}},
		"etherscan": {BaseURL: srv.URL + "/", Query: url.Values{"apikey": {"server-key"}}},
	}, 5*time.Second)

	resp, err := svc.Forward(context.Background(), "webacy", services.ProxyRequest{
		Path:   "addresses/0xabc",
		Params: map[string]string{"chain": "eth"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.ContentType)
	assert.JSONEq(t, `{"overallRisk":12}`, string(resp.Body))

	resp, err = svc.Forward(context.Background(), "etherscan", services.ProxyRequest{
		Path:   "/v2/api",
		Params: map[string]string{"apikey": "attacker", "module": "account"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.Equal(t, "short and stout", string(resp.Body))
}

func TestProxyForward_Rejects(t *testing.T) {
	svc := services.NewProxyService(map[string]services.Upstream{
		"efp": {BaseURL: "http://127.0.0.1:1"},
	}, time.Second)

	tests := []struct {
		name    string
		service string
		path    string
		code    string
	}{
		{"unknown service", "openai", "v1/chat", errors.ErrCodeBadRequest},
		{"empty path", "efp", "", errors.ErrCodeValidation},
		{"absolute url", "efp", "https://evil.example/x", errors.ErrCodeValidation},
		{"scheme relative", "efp", "//evil.example/x", errors.ErrCodeValidation},
		{"parent segment", "efp", "users/../../admin", errors.ErrCodeValidation},
		{"encoded parent", "efp", "users/%2e%2e/admin", errors.ErrCodeValidation},
		{"embedded query", "efp", "users?x=1", errors.ErrCodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Forward(context.Background(), tt.service, services.ProxyRequest{Path: tt.path})
			assert.Equal(t, tt.code, appCode(t, err))
		})
	}
}

func TestProxyForward_UnreachableUpstream(t *testing.T) {
	svc := services.NewProxyService(map[string]services.Upstream{
		"efp": {BaseURL: "http://127.0.0.1:1"},
	}, time.Second)

	_, err := svc.Forward(context.Background(), "efp", services.ProxyRequest{Path: "users/vitalik.eth/stats"})
	assert.Equal(t, errors.ErrCodeUpstream, appCode(t, err))
}

func TestProxyForward_OversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 2048)))
	}))
	defer srv.Close()

	prev := httpx.MaxRawBody
	httpx.MaxRawBody = 1024
	defer func() { httpx.MaxRawBody = prev }()

	svc := services.NewProxyService(map[string]services.Upstream{
		"poap": {BaseURL: srv.URL},
	}, time.Second)

	_, err := svc.Forward(context.Background(), "poap", services.ProxyRequest{Path: "actions/scan/0xabc"})
	assert.Equal(t, errors.ErrCodeUpstream, appCode(t, err))
}

func TestDefaultUpstreams(t *testing.T) {
	ups := services.DefaultUpstreams(config.Config{EtherscanAPIKey: "e", Web3BioAPIKey: "w"})
	svc := services.NewProxyService(ups, time.Second)

	assert.Equal(t, []string{"efp", "etherscan", "poap", "talent", "web3bio", "webacy"}, svc.Services())
	assert.Equal(t, "e", ups["etherscan"].Query.Get("apikey"))
	assert.Equal(t, "Bearer w", ups["web3bio"].Header.Get("X-API-KEY"))
	assert.Empty(t, ups["webacy"].Header.Get("x-api-key"))
}
