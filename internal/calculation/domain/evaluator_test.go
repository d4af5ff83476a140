package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	ruledomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/rule/domain"
)

func f64(v float64) *float64 { return &v }

func TestEvaluateRule_FixedRate(t *testing.T) {
	rule := ruledomain.CommissionRule{
		RuleType: ruledomain.RuleTypeFixed,
		BaseRate: f64(15),
	}

	out := EvaluateRule(rule, EvalInput{Premium: 20000, PolicyYear: 1, AsOf: time.Now().UTC()})

	assert.True(t, out.Matched)
	assert.Equal(t, 15.0, out.BaseRate)
	assert.Equal(t, 3000.0, out.BaseCommission)
	assert.Equal(t, 0.0, out.BonusRate)
	assert.Equal(t, 0.0, out.BonusCommission)
}

func TestEvaluateRule_SlabBoundaryRoutesToHigherSlab(t *testing.T) {
	// Brackets are half-open: [0, 1000) and [1000, inf). A premium of
	// exactly 1000 belongs to the higher bracket.
	rule := ruledomain.CommissionRule{
		RuleType: ruledomain.RuleTypeSlab,
		Slabs: []ruledomain.CommissionSlab{
			{MinValue: 0, MaxValue: f64(1000), Rate: 10},
			{MinValue: 1000, MaxValue: nil, Rate: 12},
		},
	}

	out := EvaluateRule(rule, EvalInput{Premium: 1000, PolicyYear: 1})
	assert.True(t, out.Matched)
	assert.Equal(t, 12.0, out.BaseRate)
	assert.Equal(t, 120.0, out.BaseCommission)

	out = EvaluateRule(rule, EvalInput{Premium: 999, PolicyYear: 1})
	assert.True(t, out.Matched)
	assert.Equal(t, 10.0, out.BaseRate)
}

func TestEvaluateRule_SlabNoBracketMatches(t *testing.T) {
	rule := ruledomain.CommissionRule{
		RuleType: ruledomain.RuleTypeSlab,
		Slabs: []ruledomain.CommissionSlab{
			{MinValue: 5000, MaxValue: f64(10000), Rate: 10},
		},
	}

	out := EvaluateRule(rule, EvalInput{Premium: 100, PolicyYear: 1})

	assert.False(t, out.Matched)
	assert.Equal(t, 0.0, out.BaseRate)
	assert.Equal(t, 0.0, out.BaseCommission)
}

func TestEvaluateRule_FlatZeroPremium(t *testing.T) {
	rule := ruledomain.CommissionRule{
		RuleType: ruledomain.RuleTypeFlat,
		Flat:     &ruledomain.CommissionFlat{FlatAmount: 500, UnitType: "PerPolicy"},
	}

	out := EvaluateRule(rule, EvalInput{Premium: 0, PolicyYear: 1})

	assert.True(t, out.Matched)
	assert.Equal(t, 0.0, out.BaseRate)
	assert.Equal(t, 500.0, out.BaseCommission)
}

func TestEvaluateRule_FlatDerivedRate(t *testing.T) {
	rule := ruledomain.CommissionRule{
		RuleType: ruledomain.RuleTypeFlat,
		Flat:     &ruledomain.CommissionFlat{FlatAmount: 500},
	}

	out := EvaluateRule(rule, EvalInput{Premium: 10000, PolicyYear: 1})

	assert.True(t, out.Matched)
	assert.Equal(t, 5.0, out.BaseRate)
	assert.Equal(t, 500.0, out.BaseCommission)
}

func TestEvaluateRule_RenewalRateReplacesBase(t *testing.T) {
	rule := ruledomain.CommissionRule{
		RuleType: ruledomain.RuleTypeFixed,
		BaseRate: f64(15),
		Renewals: []ruledomain.CommissionRenewal{
			{PolicyYear: 2, RenewalRate: 7.5},
			{PolicyYear: 3, RenewalRate: 5},
		},
	}

	out := EvaluateRule(rule, EvalInput{Premium: 10000, PolicyYear: 2})
	assert.Equal(t, 7.5, out.BaseRate)
	assert.Equal(t, 750.0, out.BaseCommission)

	// Year 1 keeps the base rate.
	out = EvaluateRule(rule, EvalInput{Premium: 10000, PolicyYear: 1})
	assert.Equal(t, 15.0, out.BaseRate)

	// A renewal year with no configured row also keeps the base rate.
	out = EvaluateRule(rule, EvalInput{Premium: 10000, PolicyYear: 4})
	assert.Equal(t, 15.0, out.BaseRate)
}

func TestEvaluateRule_BonusesAccumulate(t *testing.T) {
	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	rule := ruledomain.CommissionRule{
		RuleType: ruledomain.RuleTypeFixed,
		BaseRate: f64(10),
		BusinessBonuses: []ruledomain.CommissionBusinessBonus{
			{MinGWP: 100000, MaxGWP: nil, BonusRate: 2},
		},
		Tiers: []ruledomain.CommissionTier{
			{TierName: "Gold", MinBusiness: 50000, MaxBusiness: nil, ExtraBonus: 1},
		},
		TimeBonuses: []ruledomain.CommissionTimeBonus{
			{
				CampaignName: "Monsoon Push",
				BonusRate:    0.5,
				ValidFrom:    now.AddDate(0, -1, 0),
				ValidTo:      now.AddDate(0, 1, 0),
			},
		},
	}

	out := EvaluateRule(rule, EvalInput{Premium: 10000, PolicyYear: 1, GWPToDate: 150000, AsOf: now})

	assert.Equal(t, 10.0, out.BaseRate)
	assert.Equal(t, 3.5, out.BonusRate)
	assert.Equal(t, 1000.0, out.BaseCommission)
	assert.Equal(t, 350.0, out.BonusCommission)
}

func TestEvaluateRule_CampaignBonusOutsideWindow(t *testing.T) {
	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	rule := ruledomain.CommissionRule{
		RuleType: ruledomain.RuleTypeFixed,
		BaseRate: f64(10),
		TimeBonuses: []ruledomain.CommissionTimeBonus{
			{BonusRate: 2, ValidFrom: now.AddDate(0, -3, 0), ValidTo: now.AddDate(0, -2, 0)},
		},
	}

	out := EvaluateRule(rule, EvalInput{Premium: 10000, PolicyYear: 1, AsOf: now})

	assert.Equal(t, 0.0, out.BonusRate)
}

func TestMaxConfiguredRate(t *testing.T) {
	rate, ok := MaxConfiguredRate(ruledomain.CommissionRule{
		RuleType: ruledomain.RuleTypeFixed,
		BaseRate: f64(20),
	})
	assert.True(t, ok)
	assert.Equal(t, 20.0, rate)

	rate, ok = MaxConfiguredRate(ruledomain.CommissionRule{
		RuleType: ruledomain.RuleTypeSlab,
		Slabs: []ruledomain.CommissionSlab{
			{MinValue: 0, MaxValue: f64(1000), Rate: 10},
			{MinValue: 1000, Rate: 18},
		},
	})
	assert.True(t, ok)
	assert.Equal(t, 18.0, rate)

	// Flat rules carry no configured percentage.
	_, ok = MaxConfiguredRate(ruledomain.CommissionRule{
		RuleType: ruledomain.RuleTypeFlat,
		Flat:     &ruledomain.CommissionFlat{FlatAmount: 500},
	})
	assert.False(t, ok)
}
