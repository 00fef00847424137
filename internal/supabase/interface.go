package supabase

import "context"

type ClientInterface interface {
	Enabled() bool
	Invoke(ctx context.Context, function string, payload, out any) error
}

var _ ClientInterface = (*Client)(nil)
