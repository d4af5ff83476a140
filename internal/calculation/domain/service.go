package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	ComplianceWithinLimit = "Within Limit"
	ComplianceExceedsCap  = "Exceeds Limit"
)

var (
	ErrInvalidTenant  = errors.New("invalid_tenant")
	ErrInvalidInsurer = errors.New("invalid_insurer_id")
	ErrInvalidProduct = errors.New("invalid_product_id")
	ErrInvalidLOB     = errors.New("invalid_lob_id")
	ErrInvalidPremium = errors.New("invalid_premium")
	ErrInvalidYear    = errors.New("invalid_policy_year")
)

type Request struct {
	InsurerID  string     `json:"insurer_id"`
	ProductID  string     `json:"product_id"`
	LOBID      string     `json:"lob_id"`
	PolicyYear int        `json:"policy_year,omitempty"`
	Channel    string     `json:"channel,omitempty"`
	Premium    float64    `json:"premium"`
	GWPToDate  float64    `json:"gwp_to_date,omitempty"`
	AsOf       *time.Time `json:"as_of,omitempty"`
	Persist    bool       `json:"persist,omitempty"`
}

// RuleLine is one matched rule's contribution in a response.
type RuleLine struct {
	RuleID          snowflake.ID `json:"rule_id"`
	RuleType        string       `json:"rule_type"`
	BaseRate        float64      `json:"base_rate"`
	BaseCommission  float64      `json:"base_commission"`
	BonusRate       float64      `json:"bonus_rate"`
	BonusCommission float64      `json:"bonus_commission"`
}

type Response struct {
	Premium          float64       `json:"premium"`
	PolicyYear       int           `json:"policy_year"`
	AppliedRate      float64       `json:"applied_rate"`
	EffectiveRate    float64       `json:"effective_rate"`
	BaseCommission   float64       `json:"base_commission"`
	BonusCommission  float64       `json:"bonus_commission"`
	TotalCommission  float64       `json:"total_commission"`
	CapPercent       float64       `json:"cap_percent"`
	CapSource        string        `json:"cap_source"`
	ComplianceStatus string        `json:"compliance_status"`
	AsOf             time.Time     `json:"as_of"`
	Rules            []RuleLine    `json:"rules"`
	TransactionID    *snowflake.ID `json:"transaction_id,omitempty"`
}

type Service interface {
	Calculate(ctx context.Context, req Request) (*Response, error)
}
