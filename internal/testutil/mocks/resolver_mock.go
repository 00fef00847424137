package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockResolver is a mock implementation of ens.ResolverInterface
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *MockResolver) LookupAddress(ctx context.Context, address string) (string, error) {
	args := m.Called(ctx, address)
	return args.String(0), args.Error(1)
}

func (m *MockResolver) Records(ctx context.Context, name string, keys []string) (map[string]string, error) {
	args := m.Called(ctx, name, keys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}
