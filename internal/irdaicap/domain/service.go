package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrNoCap       = errors.New("no cap configured")
	ErrInvalidLOB  = errors.New("invalid_lob_id")
	ErrInvalidCap  = errors.New("invalid_cap")
	ErrInvalidYear = errors.New("invalid_policy_year")
)

type ListRequest struct {
	LOBID   string
	Channel string
}

type Service interface {
	// List returns caps whose effective window contains now,
	// policy year ascending.
	List(ctx context.Context, req ListRequest) ([]CommissionCap, error)
	// Resolve returns the cap governing (lob, policyYear) at asOf.
	// When multiple windows contain asOf the most recently effective
	// row wins. ErrNoCap when nothing matches.
	Resolve(ctx context.Context, lobID snowflake.ID, policyYear int, asOf time.Time) (*CommissionCap, error)
	// Upsert loads regulator rows, used by seeding.
	Upsert(ctx context.Context, cap *CommissionCap) error
}

type ListFilter struct {
	LOBID   snowflake.ID
	Channel string
	AsOf    time.Time
}

type Repository interface {
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]CommissionCap, error)
	Resolve(ctx context.Context, db *gorm.DB, lobID snowflake.ID, policyYear int, asOf time.Time) (*CommissionCap, error)
	Upsert(ctx context.Context, db *gorm.DB, cap *CommissionCap) error
}
