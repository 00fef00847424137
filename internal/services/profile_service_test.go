package services_test

import (
	"context"
	stderrors "errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/web3profile/internal/cache"
	"github.com/vytor/web3profile/internal/ens"
	"github.com/vytor/web3profile/internal/errors"
	"github.com/vytor/web3profile/internal/models"
	"github.com/vytor/web3profile/internal/services"
	"github.com/vytor/web3profile/internal/testutil/mocks"
)

const (
	vitalik         = "0xd8da6bf26964af9d7eed9e03e53415d37aa96045"
	vitalikChecksum = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"
)

type fixture struct {
	resolver  *mocks.MockResolver
	etherscan *mocks.MockEtherscanClient
	web3bio   *mocks.MockWeb3BioClient
	webacy    *mocks.MockWebacyClient
	poap      *mocks.MockPOAPClient
	talent    *mocks.MockTalentClient
	efp       *mocks.MockEFPClient
	tally     *mocks.MockTallyClient
	searches  *mocks.MockSearchRepository
	cache     cache.Cache
}

func newFixture() *fixture {
	return &fixture{
		resolver:  new(mocks.MockResolver),
		etherscan: new(mocks.MockEtherscanClient),
		web3bio:   new(mocks.MockWeb3BioClient),
		webacy:    new(mocks.MockWebacyClient),
		poap:      new(mocks.MockPOAPClient),
		talent:    new(mocks.MockTalentClient),
		efp:       new(mocks.MockEFPClient),
		tally:     new(mocks.MockTallyClient),
		searches:  new(mocks.MockSearchRepository),
		cache:     cache.Noop{},
	}
}

func (f *fixture) service() services.ProfileService {
	return services.NewProfileService(services.Upstreams{
		Resolver:  f.resolver,
		Etherscan: f.etherscan,
		Web3Bio:   f.web3bio,
		Webacy:    f.webacy,
		POAP:      f.poap,
		Talent:    f.talent,
		EFP:       f.efp,
		Tally:     f.tally,
	}, f.cache, time.Minute, f.searches)
}

// allSections stubs every upstream with a successful answer for vitalik.
func (f *fixture) allSections() {
	f.resolver.On("LookupAddress", mock.Anything, vitalik).Return("vitalik.eth", nil)
	f.resolver.On("Records", mock.Anything, "vitalik.eth", ens.DefaultTextKeys).
		Return(map[string]string{"avatar": "ipfs://avatar", "com.twitter": "VitalikButerin"}, nil)
	f.web3bio.On("Profiles", mock.Anything, "vitalik.eth").
		Return([]models.SocialProfile{{Platform: "ens", Identity: "vitalik.eth"}}, nil)
	f.efp.On("Stats", mock.Anything, vitalik).Return(models.FollowStats{Followers: 1000, Following: 3}, nil)
	f.poap.On("Scan", mock.Anything, vitalik).Return(make([]models.POAP, 25), nil)
	f.etherscan.On("Transactions", mock.Anything, vitalik, 50).Return([]models.Transaction{{Hash: "0x1"}}, nil)
	f.etherscan.On("TransactionCount", mock.Anything, vitalik).Return(1, nil)
	f.etherscan.On("NFTTransfers", mock.Anything, vitalik, 0).Return([]models.NFTTransfer{}, nil)
	f.talent.On("Score", mock.Anything, vitalik).Return(models.TalentScore{Points: 50}, nil)
	f.talent.On("Credentials", mock.Anything, vitalik).Return([]models.Skill{{Name: "Solidity", Points: 10}}, nil)
	f.webacy.On("AddressRisk", mock.Anything, vitalik).Return(&models.SecurityScore{OverallRisk: 20}, nil)
	f.tally.On("Votes", mock.Anything, vitalik, 20).Return([]models.TallyVote{}, nil)
}

func appCode(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := errors.As(err)
	require.True(t, ok, "expected *AppError, got %T: %v", err, err)
	return appErr.Code
}

func TestResolve_Name(t *testing.T) {
	f := newFixture()
	f.resolver.On("Resolve", mock.Anything, "vitalik.eth").Return(vitalik, nil)

	id, err := f.service().Resolve(context.Background(), "https://app.ens.domains/Vitalik.eth")
	require.NoError(t, err)
	assert.Equal(t, vitalik, id.Address)
	assert.Equal(t, vitalikChecksum, id.Checksum)
	assert.Equal(t, "vitalik.eth", id.Name)
	assert.Equal(t, "name", id.Kind)
	assert.NotEmpty(t, id.EmojiHash)
}

func TestResolve_AddressWithoutPrimaryName(t *testing.T) {
	f := newFixture()
	f.resolver.On("LookupAddress", mock.Anything, vitalik).Return("", ens.ErrNotFound)

	id, err := f.service().Resolve(context.Background(), vitalikChecksum)
	require.NoError(t, err)
	assert.Equal(t, vitalik, id.Address)
	assert.Empty(t, id.Name)
	assert.Equal(t, "address", id.Kind)
}

func TestResolve_ReverseLookupFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	f.resolver.On("LookupAddress", mock.Anything, vitalik).Return("", stderrors.New("rpc down"))

	id, err := f.service().Resolve(context.Background(), vitalik)
	require.NoError(t, err)
	assert.Empty(t, id.Name)
}

func TestResolve_Errors(t *testing.T) {
	f := newFixture()
	f.resolver.On("Resolve", mock.Anything, "missing.eth").Return("", ens.ErrNotFound)
	f.resolver.On("Resolve", mock.Anything, "flaky.eth").Return("", stderrors.New("all 3 rpc providers failed"))
	svc := f.service()

	_, err := svc.Resolve(context.Background(), "0x123")
	assert.Equal(t, errors.ErrCodeValidation, appCode(t, err))

	_, err = svc.Resolve(context.Background(), "   ")
	assert.Equal(t, errors.ErrCodeValidation, appCode(t, err))

	_, err = svc.Resolve(context.Background(), "missing")
	assert.Equal(t, errors.ErrCodeNotFound, appCode(t, err))

	_, err = svc.Resolve(context.Background(), "flaky.eth")
	assert.Equal(t, errors.ErrCodeUpstream, appCode(t, err))
}

func TestAggregate_AllSections(t *testing.T) {
	f := newFixture()
	f.allSections()
	f.searches.On("Record", mock.Anything, vitalik, vitalik, "vitalik.eth").Return(&models.SearchEntry{ID: 1}, nil)

	p, err := f.service().Aggregate(context.Background(), vitalik)
	require.NoError(t, err)

	assert.Nil(t, p.Errors)
	assert.Equal(t, "vitalik.eth", p.Identity.Name)
	assert.Equal(t, "ipfs://avatar", p.ENS.Avatar)
	assert.Len(t, p.Socials, 1)
	assert.Equal(t, 1000, p.Follow.Followers)
	assert.Len(t, p.POAPs, 25)
	assert.Len(t, p.Transactions, 1)
	assert.NotNil(t, p.NFTs)
	assert.Len(t, p.Skills, 1)
	require.NotNil(t, p.Security)
	assert.NotNil(t, p.Votes)
	assert.False(t, p.FetchedAt.IsZero())
	// followers 20 + poaps 7.5 + transactions 0.04 + talent 15 + security 12
	assert.InDelta(t, 54.54, p.Score.Total, 1e-9)

	f.searches.AssertExpectations(t)
}

func TestAggregate_TransactionScoreUsesFullHistory(t *testing.T) {
	f := newFixture()
	// A full page of 50 out of 1200 sent transactions. Registered first so
	// these answers win over the defaults below.
	f.etherscan.On("Transactions", mock.Anything, vitalik, 50).Return(make([]models.Transaction, 50), nil)
	f.etherscan.On("TransactionCount", mock.Anything, vitalik).Return(1200, nil)
	f.allSections()
	f.searches.On("Record", mock.Anything, vitalik, vitalik, "vitalik.eth").Return(&models.SearchEntry{ID: 1}, nil)

	p, err := f.service().Aggregate(context.Background(), vitalik)
	require.NoError(t, err)

	assert.Len(t, p.Transactions, 50)
	assert.Equal(t, 1200, p.TxCount)
	assert.Equal(t, 20.0, p.Score.Breakdown["transactions"])
	// followers 20 + poaps 7.5 + transactions 20 + talent 15 + security 12
	assert.InDelta(t, 74.5, p.Score.Total, 1e-9)
}

func TestAggregate_SectionFailuresDegrade(t *testing.T) {
	f := newFixture()
	f.resolver.On("LookupAddress", mock.Anything, vitalik).Return("", ens.ErrNotFound)
	f.web3bio.On("Profiles", mock.Anything, vitalik).Return(nil, stderrors.New("web3bio: 503"))
	f.efp.On("Stats", mock.Anything, vitalik).Return(models.FollowStats{}, stderrors.New("efp down"))
	f.poap.On("Scan", mock.Anything, vitalik).Return(nil, stderrors.New("poap: 401"))
	f.etherscan.On("Transactions", mock.Anything, vitalik, 50).Return([]models.Transaction{{Hash: "0x1"}}, nil)
	f.etherscan.On("TransactionCount", mock.Anything, vitalik).Return(0, stderrors.New("proxy: rate limited"))
	f.etherscan.On("NFTTransfers", mock.Anything, vitalik, 0).Return(nil, stderrors.New("rate limited"))
	f.talent.On("Score", mock.Anything, vitalik).Return(models.TalentScore{}, nil)
	f.talent.On("Credentials", mock.Anything, vitalik).Return([]models.Skill{}, nil)
	f.webacy.On("AddressRisk", mock.Anything, vitalik).Return(nil, stderrors.New("webacy down"))
	f.tally.On("Votes", mock.Anything, vitalik, 20).Return(nil, nil)
	f.searches.On("Record", mock.Anything, vitalik, vitalik, "").Return(nil, stderrors.New("db locked"))

	p, err := f.service().Aggregate(context.Background(), vitalik)
	require.NoError(t, err)

	assert.Equal(t, []string{"follow", "nfts", "poaps", "security", "socials", "transaction_count"}, sortedKeys(p.Errors))
	assert.Equal(t, []models.SocialProfile{}, p.Socials)
	assert.Equal(t, []models.POAP{}, p.POAPs)
	assert.Equal(t, []models.NFTCollection{}, p.NFTs)
	assert.Equal(t, []models.TallyVote{}, p.Votes)
	assert.Nil(t, p.Security)
	assert.Len(t, p.Transactions, 1)
	assert.Equal(t, 0, p.TxCount)
	assert.Equal(t, 0.04, p.Score.Breakdown["transactions"], "listed transactions stand in for the count")
	assert.Equal(t, 0.0, p.Score.Breakdown["security"])

	f.resolver.AssertNotCalled(t, "Records", mock.Anything, mock.Anything, mock.Anything)
}

func TestSections_ReadThroughCache(t *testing.T) {
	f := newFixture()
	f.cache = cache.NewMemory()
	f.resolver.On("LookupAddress", mock.Anything, vitalik).Return("", ens.ErrNotFound)
	f.poap.On("Scan", mock.Anything, vitalik).Return([]models.POAP{{Name: "ETHDenver"}}, nil).Once()
	svc := f.service()

	for i := 0; i < 3; i++ {
		poaps, err := svc.POAPs(context.Background(), vitalik)
		require.NoError(t, err)
		require.Len(t, poaps, 1)
		assert.Equal(t, "ETHDenver", poaps[0].Name)
	}
	f.poap.AssertNumberOfCalls(t, "Scan", 1)
}

func TestRefresh_InvalidatesCachedSections(t *testing.T) {
	f := newFixture()
	f.cache = cache.NewMemory()
	f.allSections()
	svc := f.service()

	_, err := svc.POAPs(context.Background(), vitalik)
	require.NoError(t, err)
	_, err = svc.POAPs(context.Background(), vitalik)
	require.NoError(t, err)
	f.poap.AssertNumberOfCalls(t, "Scan", 1)

	p, err := svc.Refresh(context.Background(), vitalik)
	require.NoError(t, err)
	assert.Len(t, p.POAPs, 25)
	f.poap.AssertNumberOfCalls(t, "Scan", 2)
	f.searches.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFollowers_ValidatesAndClamps(t *testing.T) {
	f := newFixture()
	f.resolver.On("LookupAddress", mock.Anything, vitalik).Return("", ens.ErrNotFound)
	f.efp.On("Followers", mock.Anything, vitalik, 100, 40).Return([]models.FollowEntry{{Address: "0x1"}}, nil)
	f.efp.On("Following", mock.Anything, vitalik, 20, 0).Return(nil, nil)
	svc := f.service()

	_, err := svc.Followers(context.Background(), vitalik, 10, -1)
	assert.Equal(t, errors.ErrCodeValidation, appCode(t, err))

	followers, err := svc.Followers(context.Background(), vitalik, 1000, 40)
	require.NoError(t, err)
	assert.Len(t, followers, 1)

	following, err := svc.Following(context.Background(), vitalik, 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, following)
	assert.Empty(t, following)
}

func TestSkills_CombinesScoreAndCredentials(t *testing.T) {
	f := newFixture()
	f.resolver.On("LookupAddress", mock.Anything, vitalik).Return("", ens.ErrNotFound)
	f.talent.On("Score", mock.Anything, vitalik).Return(models.TalentScore{Points: 88}, nil)
	f.talent.On("Credentials", mock.Anything, vitalik).Return([]models.Skill{{Name: "Go"}}, nil)

	res, err := f.service().Skills(context.Background(), vitalik)
	require.NoError(t, err)
	assert.Equal(t, 88.0, res.Talent.Points)
	assert.Len(t, res.Skills, 1)
}

func TestSectionErrorsMapToUpstream(t *testing.T) {
	f := newFixture()
	f.resolver.On("LookupAddress", mock.Anything, vitalik).Return("", ens.ErrNotFound)
	f.webacy.On("AddressRisk", mock.Anything, vitalik).Return(nil, stderrors.New("boom"))

	_, err := f.service().Security(context.Background(), vitalik)
	assert.Equal(t, errors.ErrCodeUpstream, appCode(t, err))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
