package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
)

var ErrInvalidTenant = errors.New("invalid_tenant")

// Alert flags one active rule whose configured rate exceeds its
// regulatory cap.
type Alert struct {
	RuleID        snowflake.ID `json:"rule_id"`
	RuleType      string       `json:"rule_type"`
	InsurerName   string       `json:"insurer_name"`
	ProductName   string       `json:"product_name"`
	LOBName       string       `json:"lob_name"`
	PolicyYear    int          `json:"policy_year"`
	CurrentRate   float64      `json:"current_rate"`
	MaxAllowed    float64      `json:"max_allowed"`
	Excess        float64      `json:"excess"`
	Severity      string       `json:"severity"`
	RegulationRef string       `json:"regulation_ref,omitempty"`
}

type Service interface {
	// Alerts scans the tenant's active rules against the cap table.
	// Rules without a resolvable cap are never flagged.
	Alerts(ctx context.Context) ([]Alert, error)
}
