// Package httpx is the small JSON-over-HTTP layer shared by the upstream API
// clients: timeouts, header injection, bounded error bodies and a fixed
// retry count for transient failures.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/vytor/web3profile/internal/logger"
)

const maxErrorBody = 1024

// MaxRawBody is the default cap on bodies returned by Raw. Proxied answers
// are buffered in memory, so larger ones are refused rather than truncated.
var MaxRawBody int64 = 8 << 20

// ErrBodyTooLarge is returned by Raw when the upstream body exceeds the cap.
var ErrBodyTooLarge = errors.New("response body too large")

// StatusError is returned when an upstream answers with a non-2xx status.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s status %d: %s", e.Service, e.StatusCode, e.Body)
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// Client issues JSON requests against one upstream service.
type Client struct {
	Service    string
	BaseURL    string
	Header     http.Header
	Retries    int
	RetryDelay time.Duration
	HTTP       *http.Client
	// MaxBody caps Raw response bodies; zero means MaxRawBody.
	MaxBody int64
}

// New creates a client for service rooted at baseURL.
func New(service, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		Service:    service,
		BaseURL:    baseURL,
		Header:     make(http.Header),
		Retries:    1,
		RetryDelay: 200 * time.Millisecond,
		HTTP:       &http.Client{Timeout: timeout},
		MaxBody:    MaxRawBody,
	}
}

// URL joins path and query onto the base URL.
func (c *Client) URL(path string, query url.Values) string {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// GetJSON performs a GET and decodes the response into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	_, err := c.do(ctx, http.MethodGet, c.URL(path, query), nil, out)
	return err
}

// PostJSON marshals body, POSTs it and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", c.Service, err)
	}
	_, err = c.do(ctx, http.MethodPost, c.URL(path, nil), payload, out)
	return err
}

// Response is a raw upstream answer.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Raw performs a request and returns the upstream status and body without
// treating non-2xx as an error. Bodies larger than MaxBody fail with
// ErrBodyTooLarge.
func (c *Client) Raw(ctx context.Context, method, rawURL string, body []byte) (*Response, error) {
	log := logger.FromContext(ctx).WithPrefix(c.Service)
	start := time.Now()

	req, err := c.newRequest(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		log.Error("request failed: %v", err)
		return nil, err
	}
	defer resp.Body.Close()

	limit := c.MaxBody
	if limit <= 0 {
		limit = MaxRawBody
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", c.Service, err)
	}
	if int64(len(data)) > limit {
		log.Warn("response body exceeds %d bytes", limit)
		return nil, fmt.Errorf("%s: %w (limit %d bytes)", c.Service, ErrBodyTooLarge, limit)
	}
	log.Debug("raw %s response in %v, status=%d", method, time.Since(start), resp.StatusCode)
	return &Response{StatusCode: resp.StatusCode, ContentType: resp.Header.Get("Content-Type"), Body: data}, nil
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body []byte) (*http.Request, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, rdr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range c.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, rawURL string, body []byte, out any) (int, error) {
	attempts := c.Retries
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		status, err := c.once(ctx, method, rawURL, body, out)
		if err == nil {
			return status, nil
		}
		lastErr = err
		if !retryable(err) || ctx.Err() != nil || attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(c.RetryDelay):
		}
	}
	return 0, lastErr
}

func (c *Client) once(ctx context.Context, method, rawURL string, body []byte, out any) (int, error) {
	log := logger.FromContext(ctx).WithPrefix(c.Service)
	log.Debug("%s %s", method, redact(rawURL))
	start := time.Now()

	req, err := c.newRequest(ctx, method, rawURL, body)
	if err != nil {
		log.Error("failed to create request: %v", err)
		return 0, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		log.Error("request failed: %v", err)
		return 0, err
	}
	defer resp.Body.Close()

	log.Debug("response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Warn("request failed: status=%d, body=%s", resp.StatusCode, string(data))
		return resp.StatusCode, &StatusError{Service: c.Service, StatusCode: resp.StatusCode, Body: string(data)}
	}

	if out == nil {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error("failed to decode response: %v", err)
		return resp.StatusCode, fmt.Errorf("%s: decode response: %w", c.Service, err)
	}
	return resp.StatusCode, nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	var uerr *url.Error
	return errors.As(err, &uerr)
}

// redact hides api keys passed as query parameters.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	for _, k := range []string{"apikey", "api_key", "key"} {
		if q.Has(k) {
			q.Set(k, "REDACTED")
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
