// Package score computes the builder score shown with an aggregated profile.
package score

import (
	"math"

	"github.com/vytor/web3profile/internal/models"
)

// Breakdown keys.
const (
	Followers    = "followers"
	POAPs        = "poaps"
	Transactions = "transactions"
	Talent       = "talent"
	Security     = "security"
)

// Weights sum to 100.
var Weights = map[string]float64{
	Followers:    20,
	POAPs:        15,
	Transactions: 20,
	Talent:       30,
	Security:     15,
}

const (
	followerSaturation    = 1000
	poapSaturation        = 50
	transactionSaturation = 500
	talentSaturation      = 100
)

// Signals are the raw inputs of the score. A nil SecurityRisk contributes nothing.
type Signals struct {
	Followers    int
	POAPs        int
	Transactions int
	TalentPoints float64
	SecurityRisk *float64
}

// FromProfile extracts the signals of an aggregated profile. The transaction
// signal is the account's full count; the listed page only covers it when the
// count is unavailable.
func FromProfile(p *models.AggregatedProfile) Signals {
	s := Signals{
		Followers:    p.Follow.Followers,
		POAPs:        len(p.POAPs),
		Transactions: max(p.TxCount, len(p.Transactions)),
		TalentPoints: p.Talent.Points,
	}
	if p.Security != nil {
		risk := p.Security.OverallRisk
		s.SecurityRisk = &risk
	}
	return s
}

// Compute returns a total in [0, 100] with every component rounded to two decimals.
func Compute(s Signals) models.BuilderScore {
	parts := map[string]float64{
		Followers:    Weights[Followers] * logRatio(float64(s.Followers), followerSaturation),
		POAPs:        Weights[POAPs] * ratio(float64(s.POAPs), poapSaturation),
		Transactions: Weights[Transactions] * ratio(float64(s.Transactions), transactionSaturation),
		Talent:       Weights[Talent] * ratio(s.TalentPoints, talentSaturation),
		Security:     0,
	}
	if s.SecurityRisk != nil {
		parts[Security] = Weights[Security] * ratio(100-*s.SecurityRisk, 100)
	}

	var total float64
	for k, v := range parts {
		parts[k] = round2(v)
		total += parts[k]
	}
	return models.BuilderScore{Total: round2(total), Breakdown: parts}
}

func ratio(v, saturation float64) float64 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	return math.Min(1, v/saturation)
}

func logRatio(v, saturation float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Min(1, math.Log10(1+v)/math.Log10(1+saturation))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
