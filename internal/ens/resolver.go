// Package ens resolves ENS names and primary names over Ethereum JSON-RPC.
package ens

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vytor/web3profile/internal/identity"
	"github.com/vytor/web3profile/internal/logger"
)

// RegistryAddress is the ENS registry on Ethereum mainnet.
const RegistryAddress = "0x00000000000C2E074eC69A0bFb2997BA6C7d2e1e"

// ErrNotFound means the name or address has no ENS record.
var ErrNotFound = errors.New("ens record not found")

// DefaultTextKeys are the text records fetched for a profile.
var DefaultTextKeys = []string{
	"avatar", "description", "url", "email", "location",
	"com.twitter", "com.github", "com.discord", "org.telegram", "xyz.farcaster",
}

// ResolverInterface is implemented by Resolver and its test doubles.
type ResolverInterface interface {
	Resolve(ctx context.Context, name string) (string, error)
	LookupAddress(ctx context.Context, address string) (string, error)
	Records(ctx context.Context, name string, keys []string) (map[string]string, error)
}

var _ ResolverInterface = (*Resolver)(nil)

// Resolver performs ENS lookups through a Provider.
type Resolver struct {
	rpc        Provider
	registry   string
	retries    int
	retryDelay time.Duration
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRetries sets the attempt count and constant delay for each eth_call.
func WithRetries(attempts int, delay time.Duration) Option {
	return func(r *Resolver) {
		r.retries = attempts
		r.retryDelay = delay
	}
}

// NewResolver creates a Resolver over rpc.
func NewResolver(rpc Provider, opts ...Option) *Resolver {
	r := &Resolver{
		rpc:        rpc,
		registry:   RegistryAddress,
		retries:    3,
		retryDelay: 250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) call(ctx context.Context, to, data string) (string, error) {
	var out string
	err := Retry(ctx, r.retries, r.retryDelay, func(ctx context.Context) error {
		return r.rpc.Call(ctx, "eth_call", []any{
			map[string]string{"to": to, "data": data},
			"latest",
		}, &out)
	})
	return out, err
}

func (r *Resolver) resolverFor(ctx context.Context, node [32]byte) (string, error) {
	res, err := r.call(ctx, r.registry, encodeNode(selResolver, node))
	if err != nil {
		return "", fmt.Errorf("registry resolver: %w", err)
	}
	addr, err := decodeAddress(res)
	if err != nil {
		return "", err
	}
	if addr == identity.ZeroAddress {
		return "", ErrNotFound
	}
	return addr, nil
}

// Resolve returns the lowercase address a name points to.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	log := logger.FromContext(ctx).WithPrefix("ens").WithField("name", name)
	start := time.Now()

	name, err := identity.NormalizeName(name)
	if err != nil {
		return "", err
	}
	node := identity.Namehash(name)

	resolver, err := r.resolverFor(ctx, node)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Error("failed to find resolver: %v", err)
		}
		return "", err
	}

	res, err := r.call(ctx, resolver, encodeNode(selAddr, node))
	if err != nil {
		log.Error("addr call failed: %v", err)
		return "", fmt.Errorf("resolve %s: %w", name, err)
	}
	addr, err := decodeAddress(res)
	if err != nil {
		return "", err
	}
	if addr == identity.ZeroAddress {
		return "", ErrNotFound
	}
	log.Debug("resolved to %s in %v", addr, time.Since(start))
	return addr, nil
}

// LookupAddress returns the primary name of address. The name must resolve
// back to the same address, otherwise ErrNotFound is returned.
func (r *Resolver) LookupAddress(ctx context.Context, address string) (string, error) {
	log := logger.FromContext(ctx).WithPrefix("ens").WithField("address", address)
	if !identity.IsAddress(address) {
		return "", identity.ErrInvalidAddress
	}
	node := identity.Namehash(identity.ReverseName(address))

	resolver, err := r.resolverFor(ctx, node)
	if err != nil {
		return "", err
	}
	res, err := r.call(ctx, resolver, encodeNode(selName, node))
	if err != nil {
		log.Error("name call failed: %v", err)
		return "", fmt.Errorf("reverse %s: %w", address, err)
	}
	name, err := decodeString(res)
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", ErrNotFound
	}

	forward, err := r.Resolve(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Debug("primary name %s has no forward record", name)
		}
		return "", err
	}
	if !strings.EqualFold(forward, address) {
		log.Debug("primary name %s resolves to %s, ignoring", name, forward)
		return "", ErrNotFound
	}
	return name, nil
}

// Records fetches text records for name. Unset keys are omitted, and keys
// whose lookup fails are skipped.
func (r *Resolver) Records(ctx context.Context, name string, keys []string) (map[string]string, error) {
	log := logger.FromContext(ctx).WithPrefix("ens").WithField("name", name)

	name, err := identity.NormalizeName(name)
	if err != nil {
		return nil, err
	}
	node := identity.Namehash(name)
	resolver, err := r.resolverFor(ctx, node)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(keys))
	for _, key := range keys {
		res, err := r.call(ctx, resolver, encodeNodeString(selText, node, key))
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			log.Warn("text record %s failed: %v", key, err)
			continue
		}
		value, err := decodeString(res)
		if err != nil {
			log.Warn("text record %s undecodable: %v", key, err)
			continue
		}
		if value != "" {
			out[key] = value
		}
	}
	log.Debug("fetched %d of %d text records", len(out), len(keys))
	return out, nil
}
