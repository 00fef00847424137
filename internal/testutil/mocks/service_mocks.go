package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/web3profile/internal/models"
	"github.com/vytor/web3profile/internal/services"
)

// MockProfileService is a mock implementation of services.ProfileService
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) Resolve(ctx context.Context, input string) (*models.Identity, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Identity), args.Error(1)
}

func (m *MockProfileService) Aggregate(ctx context.Context, input string) (*models.AggregatedProfile, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AggregatedProfile), args.Error(1)
}

func (m *MockProfileService) Refresh(ctx context.Context, input string) (*models.AggregatedProfile, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AggregatedProfile), args.Error(1)
}

func (m *MockProfileService) ENS(ctx context.Context, input string) (*models.ENSRecords, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ENSRecords), args.Error(1)
}

func (m *MockProfileService) Socials(ctx context.Context, input string) ([]models.SocialProfile, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SocialProfile), args.Error(1)
}

func (m *MockProfileService) Followers(ctx context.Context, input string, limit, offset int) ([]models.FollowEntry, error) {
	args := m.Called(ctx, input, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FollowEntry), args.Error(1)
}

func (m *MockProfileService) Following(ctx context.Context, input string, limit, offset int) ([]models.FollowEntry, error) {
	args := m.Called(ctx, input, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FollowEntry), args.Error(1)
}

func (m *MockProfileService) POAPs(ctx context.Context, input string) ([]models.POAP, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.POAP), args.Error(1)
}

func (m *MockProfileService) Transactions(ctx context.Context, input string, limit int) ([]models.Transaction, error) {
	args := m.Called(ctx, input, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func (m *MockProfileService) NFTs(ctx context.Context, input string) ([]models.NFTCollection, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.NFTCollection), args.Error(1)
}

func (m *MockProfileService) Security(ctx context.Context, input string) (*models.SecurityScore, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SecurityScore), args.Error(1)
}

func (m *MockProfileService) Skills(ctx context.Context, input string) (*services.SkillsResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SkillsResult), args.Error(1)
}

func (m *MockProfileService) Votes(ctx context.Context, input string) ([]models.TallyVote, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TallyVote), args.Error(1)
}

// MockSearchService is a mock implementation of services.SearchService
type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Recent(ctx context.Context, limit int) ([]models.SearchEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SearchEntry), args.Error(1)
}

func (m *MockSearchService) Popular(ctx context.Context, limit int) ([]models.SearchEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SearchEntry), args.Error(1)
}

func (m *MockSearchService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// MockSummaryService is a mock implementation of services.SummaryService
type MockSummaryService struct {
	mock.Mock
}

func (m *MockSummaryService) Summarize(ctx context.Context, profile *models.AggregatedProfile) (*models.Summary, error) {
	args := m.Called(ctx, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Summary), args.Error(1)
}

var (
	_ services.ProfileService = (*MockProfileService)(nil)
	_ services.SearchService  = (*MockSearchService)(nil)
	_ services.SummaryService = (*MockSummaryService)(nil)
)
