package httpx_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/web3profile/internal/httpx"
)

func TestGetJSON_DecodesAndSendsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/things", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("limit"))
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		_ = json.NewEncoder(w).Encode(map[string]int{"count": 3})
	}))
	defer srv.Close()

	c := httpx.New("things", srv.URL, time.Second)
	c.Header.Set("X-API-Key", "secret")

	var out struct {
		Count int `json:"count"`
	}
	require.NoError(t, c.GetJSON(context.Background(), "/v1/things", url.Values{"limit": {"7"}}, &out))
	assert.Equal(t, 3, out.Count)
}

func TestGetJSON_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := httpx.New("flaky", srv.URL, time.Second)
	c.Retries = 2
	c.RetryDelay = 0

	var out map[string]bool
	require.NoError(t, c.GetJSON(context.Background(), "/", nil, &out))
	assert.True(t, out["ok"])
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetJSON_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	c := httpx.New("strict", srv.URL, time.Second)
	c.Retries = 3
	c.RetryDelay = 0

	err := c.GetJSON(context.Background(), "/", nil, nil)
	require.Error(t, err)
	assert.True(t, httpx.IsStatus(err, http.StatusNotFound))
	assert.Equal(t, int32(1), calls.Load())

	var se *httpx.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "strict", se.Service)
	assert.Contains(t, se.Body, "nope")
}

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["msg"]})
	}))
	defer srv.Close()

	c := httpx.New("echo", srv.URL, time.Second)
	var out map[string]string
	require.NoError(t, c.PostJSON(context.Background(), "/", map[string]string{"msg": "gm"}, &out))
	assert.Equal(t, "gm", out["echo"])
}

func TestRaw_PassesThroughErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"error":"teapot"}`))
	}))
	defer srv.Close()

	c := httpx.New("raw", srv.URL, time.Second)
	resp, err := c.Raw(context.Background(), http.MethodGet, srv.URL+"/x", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.Equal(t, "application/json", resp.ContentType)
	assert.JSONEq(t, `{"error":"teapot"}`, string(resp.Body))
}

func TestRaw_BodyCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 64)))
	}))
	defer srv.Close()

	c := httpx.New("raw", srv.URL, time.Second)

	c.MaxBody = 64
	resp, err := c.Raw(context.Background(), http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	assert.Len(t, resp.Body, 64)

	c.MaxBody = 63
	_, err = c.Raw(context.Background(), http.MethodGet, srv.URL, nil)
	assert.ErrorIs(t, err, httpx.ErrBodyTooLarge)
}
