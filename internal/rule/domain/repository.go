package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ListFilter narrows rule lookups. Zero values are ignored. Cursor is
// an exclusive upper bound on id; rows come back id-descending, so a
// page's last id is the next page's cursor.
type ListFilter struct {
	TenantID  snowflake.ID
	InsurerID snowflake.ID
	ProductID snowflake.ID
	LOBID     snowflake.ID
	RuleType  RuleType
	Status    Status
	Cursor    snowflake.ID
	Limit     int
}

// ResolveFilter selects the rules relevant to a single quote.
type ResolveFilter struct {
	TenantID  snowflake.ID
	InsurerID snowflake.ID
	ProductID snowflake.ID
	LOBID     snowflake.ID
	Channel   string
	AsOf      time.Time
}

// DisplayNames carries reference names joined onto a rule row.
type DisplayNames struct {
	InsurerName string
	ProductName string
	LOBName     string
}

// Repository persists commission rules and their sub-components. Methods
// take the DB handle so callers can run them inside a transaction.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, rule *CommissionRule) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*CommissionRule, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]CommissionRule, error)
	ListActive(ctx context.Context, db *gorm.DB, filter ResolveFilter) ([]CommissionRule, error)
	UpdateFields(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, fields map[string]any) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) error

	InsertRenewal(ctx context.Context, db *gorm.DB, row *CommissionRenewal) error
	InsertBusinessBonus(ctx context.Context, db *gorm.DB, row *CommissionBusinessBonus) error
	InsertTier(ctx context.Context, db *gorm.DB, row *CommissionTier) error
	InsertTimeBonus(ctx context.Context, db *gorm.DB, row *CommissionTimeBonus) error

	Names(ctx context.Context, db *gorm.DB, rule *CommissionRule) (DisplayNames, error)
}
