package ens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/vytor/web3profile/internal/httpx"
	"github.com/vytor/web3profile/internal/logger"
)

// Provider performs JSON-RPC calls against an Ethereum node.
type Provider interface {
	Call(ctx context.Context, method string, params []any, out any) error
}

// RPCError is a JSON-RPC error object returned by a node.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// HTTPProvider talks JSON-RPC to a single endpoint.
type HTTPProvider struct {
	client *httpx.Client
	nextID atomic.Uint64
}

// NewHTTPProvider creates a provider for endpoint. Retries are handled by
// the resolver, so the transport makes a single attempt.
func NewHTTPProvider(endpoint string, timeout time.Duration) *HTTPProvider {
	c := httpx.New("rpc", endpoint, timeout)
	c.Retries = 1
	return &HTTPProvider{client: c}
}

func (p *HTTPProvider) Call(ctx context.Context, method string, params []any, out any) error {
	req := rpcRequest{JSONRPC: "2.0", ID: p.nextID.Add(1), Method: method, Params: params}
	if req.Params == nil {
		req.Params = []any{}
	}
	var resp rpcResponse
	if err := p.client.PostJSON(ctx, "", req, &resp); err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}

// FallbackProvider tries its providers in priority order and returns the
// first successful answer.
type FallbackProvider struct {
	providers []Provider
	names     []string
}

// NewFallbackProvider builds a fallback provider over HTTP endpoints.
func NewFallbackProvider(endpoints []string, timeout time.Duration) *FallbackProvider {
	fp := &FallbackProvider{}
	for _, ep := range endpoints {
		fp.Add(ep, NewHTTPProvider(ep, timeout))
	}
	return fp
}

// Add appends a provider at the lowest priority.
func (f *FallbackProvider) Add(name string, p Provider) {
	f.providers = append(f.providers, p)
	f.names = append(f.names, name)
}

// Len returns the number of configured providers.
func (f *FallbackProvider) Len() int {
	return len(f.providers)
}

func (f *FallbackProvider) Call(ctx context.Context, method string, params []any, out any) error {
	if len(f.providers) == 0 {
		return errors.New("no rpc providers configured")
	}
	log := logger.FromContext(ctx).WithPrefix("rpc")
	var lastErr error
	for i, p := range f.providers {
		err := p.Call(ctx, method, params, out)
		if err == nil {
			if i > 0 {
				log.Debug("%s served by fallback provider %s", method, f.names[i])
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("provider %s failed for %s: %v", f.names[i], method, err)
		lastErr = err
	}
	return fmt.Errorf("all %d rpc providers failed: %w", len(f.providers), lastErr)
}
