package domain

import (
	"time"

	ruledomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/rule/domain"
)

// EvalInput is one quote evaluated against a single rule.
type EvalInput struct {
	Premium    float64
	PolicyYear int
	GWPToDate  float64
	AsOf       time.Time
}

// EvalResult is a rule's contribution to a quote. Rates are percentages.
type EvalResult struct {
	Matched         bool
	BaseRate        float64
	BaseCommission  float64
	BonusRate       float64
	BonusCommission float64
}

// EvaluateRule computes a single rule's base and bonus contribution.
// The resolver and the compliance checker both go through here so a
// configured rate means the same thing in both places.
func EvaluateRule(rule ruledomain.CommissionRule, in EvalInput) EvalResult {
	var out EvalResult

	switch rule.RuleType {
	case ruledomain.RuleTypeFixed, ruledomain.RuleTypeCampaign:
		out.Matched = true
		if rule.BaseRate != nil {
			out.BaseRate = *rule.BaseRate
		}
	case ruledomain.RuleTypeSlab:
		for _, slab := range rule.Slabs {
			if slab.Contains(in.Premium) {
				out.Matched = true
				out.BaseRate = slab.Rate
				break
			}
		}
		if !out.Matched {
			// Premium outside every bracket contributes nothing.
			return out
		}
	case ruledomain.RuleTypeFlat:
		if rule.Flat == nil {
			return out
		}
		out.Matched = true
		out.BaseCommission = rule.Flat.FlatAmount
		if in.Premium > 0 {
			out.BaseRate = rule.Flat.FlatAmount / in.Premium * 100
		}
	default:
		return out
	}

	// A renewal-year row replaces the configured base rate for that year.
	if in.PolicyYear > 1 && rule.RuleType != ruledomain.RuleTypeFlat {
		for _, renewal := range rule.Renewals {
			if renewal.PolicyYear == in.PolicyYear {
				out.BaseRate = renewal.RenewalRate
				break
			}
		}
	}

	if rule.RuleType != ruledomain.RuleTypeFlat {
		out.BaseCommission = in.Premium * out.BaseRate / 100
	}

	for _, bonus := range rule.BusinessBonuses {
		if bonus.Matches(in.GWPToDate) {
			out.BonusRate += bonus.BonusRate
		}
	}
	for _, tier := range rule.Tiers {
		if tier.Matches(in.GWPToDate) {
			out.BonusRate += tier.ExtraBonus
		}
	}
	for _, campaign := range rule.TimeBonuses {
		if campaign.ActiveAt(in.AsOf) {
			out.BonusRate += campaign.BonusRate
		}
	}
	out.BonusCommission = in.Premium * out.BonusRate / 100

	return out
}

// MaxConfiguredRate is the highest base rate a rule can apply, used to
// check configured rules against regulatory caps. Flat rules carry no
// configured percentage and report false.
func MaxConfiguredRate(rule ruledomain.CommissionRule) (float64, bool) {
	switch rule.RuleType {
	case ruledomain.RuleTypeFixed, ruledomain.RuleTypeCampaign:
		if rule.BaseRate == nil {
			return 0, false
		}
		return *rule.BaseRate, true
	case ruledomain.RuleTypeSlab:
		if len(rule.Slabs) == 0 {
			return 0, false
		}
		max := rule.Slabs[0].Rate
		for _, slab := range rule.Slabs[1:] {
			if slab.Rate > max {
				max = slab.Rate
			}
		}
		return max, true
	default:
		return 0, false
	}
}
