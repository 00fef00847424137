package score_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/web3profile/internal/models"
	"github.com/vytor/web3profile/internal/score"
)

func risk(v float64) *float64 { return &v }

func TestCompute(t *testing.T) {
	tests := []struct {
		name  string
		in    score.Signals
		total float64
		parts map[string]float64
	}{
		{
			name:  "empty",
			in:    score.Signals{},
			total: 0,
			parts: map[string]float64{"followers": 0, "poaps": 0, "transactions": 0, "talent": 0, "security": 0},
		},
		{
			name:  "mixed",
			in:    score.Signals{Followers: 1000, POAPs: 25, TalentPoints: 50, SecurityRisk: risk(20)},
			total: 54.5,
			parts: map[string]float64{"followers": 20, "poaps": 7.5, "transactions": 0, "talent": 15, "security": 12},
		},
		{
			name:  "saturated",
			in:    score.Signals{Followers: 50000, POAPs: 300, Transactions: 9000, TalentPoints: 250, SecurityRisk: risk(0)},
			total: 100,
			parts: map[string]float64{"followers": 20, "poaps": 15, "transactions": 20, "talent": 30, "security": 15},
		},
		{
			name:  "log scaled followers",
			in:    score.Signals{Followers: 9, Transactions: 50},
			total: 8.67,
			parts: map[string]float64{"followers": 6.67, "poaps": 0, "transactions": 2, "talent": 0, "security": 0},
		},
		{
			name:  "risk above 100 clamps",
			in:    score.Signals{SecurityRisk: risk(140), TalentPoints: -5},
			total: 0,
			parts: map[string]float64{"followers": 0, "poaps": 0, "transactions": 0, "talent": 0, "security": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := score.Compute(tt.in)
			assert.InDelta(t, tt.total, got.Total, 1e-9)
			assert.InDeltaMapValues(t, tt.parts, got.Breakdown, 1e-9)
		})
	}
}

func TestWeightsSumTo100(t *testing.T) {
	var sum float64
	for _, w := range score.Weights {
		sum += w
	}
	assert.Equal(t, 100.0, sum)
}

func TestFromProfile(t *testing.T) {
	p := &models.AggregatedProfile{
		Follow:       models.FollowStats{Followers: 12},
		POAPs:        make([]models.POAP, 3),
		Transactions: make([]models.Transaction, 4),
		Talent:       models.TalentScore{Points: 61},
		Security:     &models.SecurityScore{OverallRisk: 33},
	}
	s := score.FromProfile(p)
	assert.Equal(t, 12, s.Followers)
	assert.Equal(t, 3, s.POAPs)
	assert.Equal(t, 4, s.Transactions)
	assert.Equal(t, 61.0, s.TalentPoints)
	if assert.NotNil(t, s.SecurityRisk) {
		assert.Equal(t, 33.0, *s.SecurityRisk)
	}

	assert.Nil(t, score.FromProfile(&models.AggregatedProfile{}).SecurityRisk)
}

func TestFromProfile_TransactionCountIsNotCappedByPage(t *testing.T) {
	p := &models.AggregatedProfile{
		Transactions: make([]models.Transaction, 50),
		TxCount:      1200,
	}
	s := score.FromProfile(p)
	assert.Equal(t, 1200, s.Transactions)
	assert.Equal(t, 20.0, score.Compute(s).Breakdown[score.Transactions])

	p.TxCount = 0
	assert.Equal(t, 50, score.FromProfile(p).Transactions, "page length is the fallback")
}
