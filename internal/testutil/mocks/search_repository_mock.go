package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/web3profile/internal/models"
)

// MockSearchRepository is a mock implementation of repository.SearchRepository
type MockSearchRepository struct {
	mock.Mock
}

func (m *MockSearchRepository) Record(ctx context.Context, query, address, name string) (*models.SearchEntry, error) {
	args := m.Called(ctx, query, address, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SearchEntry), args.Error(1)
}

func (m *MockSearchRepository) Recent(ctx context.Context, limit int) ([]models.SearchEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SearchEntry), args.Error(1)
}

func (m *MockSearchRepository) Popular(ctx context.Context, limit int) ([]models.SearchEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SearchEntry), args.Error(1)
}

func (m *MockSearchRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
