package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrInvalidTenant      = errors.New("invalid_tenant")
	ErrInvalidTransaction = errors.New("invalid_transaction")
)

type ListRequest struct {
	From  time.Time
	To    time.Time
	LOBID *snowflake.ID
	Limit int
}

type Service interface {
	// Post appends a settled transaction. Posting the same transaction
	// twice (same checksum) returns the original row unchanged.
	Post(ctx context.Context, tx *CommissionTransaction) (*CommissionTransaction, error)
	// PostTx is Post inside a caller-owned transaction handle.
	PostTx(ctx context.Context, db *gorm.DB, tx *CommissionTransaction) (*CommissionTransaction, error)
	List(ctx context.Context, req ListRequest) ([]CommissionTransaction, error)
}

type ListFilter struct {
	TenantID snowflake.ID
	From     time.Time
	To       time.Time
	LOBID    *snowflake.ID
	Limit    int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, tx *CommissionTransaction) error
	FindByChecksum(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, checksum string) (*CommissionTransaction, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]CommissionTransaction, error)
}
