package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrInvalidTenant = errors.New("invalid_tenant")
	ErrInvalidPeriod = errors.New("invalid_period")
)

// Period is a half-open reporting window [From, To).
type Period struct {
	From time.Time
	To   time.Time
}

// QuarterOf returns the calendar quarter containing ts.
func QuarterOf(ts time.Time) Period {
	ts = ts.UTC()
	quarterStartMonth := time.Month((int(ts.Month())-1)/3*3 + 1)
	from := time.Date(ts.Year(), quarterStartMonth, 1, 0, 0, 0, 0, time.UTC)
	return Period{From: from, To: from.AddDate(0, 3, 0)}
}

// Report is the period rollup of settled commissions.
type Report struct {
	PeriodFrom       time.Time          `json:"period_from"`
	PeriodTo         time.Time          `json:"period_to"`
	TotalCommission  float64            `json:"total_commission"`
	TransactionCount int64              `json:"transaction_count"`
	ByLOB            map[string]float64 `json:"by_lob"`
	ByRuleType       map[string]float64 `json:"by_rule_type"`
}

type Service interface {
	// CommissionReport aggregates the tenant's settled transactions for
	// the period, defaulting to the current calendar quarter.
	CommissionReport(ctx context.Context, period *Period) (*Report, error)
}

type LOBSum struct {
	Name   string
	Amount float64
}

type RuleTypeSum struct {
	RuleType string
	Amount   float64
}

type Repository interface {
	Total(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, period Period) (float64, int64, error)
	SumByLOB(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, period Period) ([]LOBSum, error)
	SumByRuleType(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, period Period) ([]RuleTypeSum, error)
}
