package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/web3profile/internal/models"
)

// MockEtherscanClient is a mock implementation of etherscan.ClientInterface
type MockEtherscanClient struct {
	mock.Mock
}

func (m *MockEtherscanClient) Transactions(ctx context.Context, address string, limit int) ([]models.Transaction, error) {
	args := m.Called(ctx, address, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func (m *MockEtherscanClient) NFTTransfers(ctx context.Context, address string, limit int) ([]models.NFTTransfer, error) {
	args := m.Called(ctx, address, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.NFTTransfer), args.Error(1)
}

func (m *MockEtherscanClient) TransactionCount(ctx context.Context, address string) (int, error) {
	args := m.Called(ctx, address)
	return args.Int(0), args.Error(1)
}

// MockWeb3BioClient is a mock implementation of web3bio.ClientInterface
type MockWeb3BioClient struct {
	mock.Mock
}

func (m *MockWeb3BioClient) Profiles(ctx context.Context, identity string) ([]models.SocialProfile, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SocialProfile), args.Error(1)
}

// MockWebacyClient is a mock implementation of webacy.ClientInterface
type MockWebacyClient struct {
	mock.Mock
}

func (m *MockWebacyClient) AddressRisk(ctx context.Context, address string) (*models.SecurityScore, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SecurityScore), args.Error(1)
}

// MockPOAPClient is a mock implementation of poap.ClientInterface
type MockPOAPClient struct {
	mock.Mock
}

func (m *MockPOAPClient) Scan(ctx context.Context, address string) ([]models.POAP, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.POAP), args.Error(1)
}

// MockTalentClient is a mock implementation of talent.ClientInterface
type MockTalentClient struct {
	mock.Mock
}

func (m *MockTalentClient) Score(ctx context.Context, address string) (models.TalentScore, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(models.TalentScore), args.Error(1)
}

func (m *MockTalentClient) Credentials(ctx context.Context, address string) ([]models.Skill, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Skill), args.Error(1)
}

// MockEFPClient is a mock implementation of efp.ClientInterface
type MockEFPClient struct {
	mock.Mock
}

func (m *MockEFPClient) Stats(ctx context.Context, id string) (models.FollowStats, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.FollowStats), args.Error(1)
}

func (m *MockEFPClient) Followers(ctx context.Context, id string, limit, offset int) ([]models.FollowEntry, error) {
	args := m.Called(ctx, id, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FollowEntry), args.Error(1)
}

func (m *MockEFPClient) Following(ctx context.Context, id string, limit, offset int) ([]models.FollowEntry, error) {
	args := m.Called(ctx, id, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FollowEntry), args.Error(1)
}

// MockTallyClient is a mock implementation of tally.ClientInterface
type MockTallyClient struct {
	mock.Mock
}

func (m *MockTallyClient) Votes(ctx context.Context, address string, limit int) ([]models.TallyVote, error) {
	args := m.Called(ctx, address, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TallyVote), args.Error(1)
}

// MockSupabaseClient is a mock implementation of supabase.ClientInterface
type MockSupabaseClient struct {
	mock.Mock
}

func (m *MockSupabaseClient) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *MockSupabaseClient) Invoke(ctx context.Context, function string, payload, out any) error {
	args := m.Called(ctx, function, payload, out)
	return args.Error(0)
}
