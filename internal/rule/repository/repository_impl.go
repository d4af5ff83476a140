package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/JackOfPrompt/policy-pulse-commissions/internal/rule/domain"
)

type repo struct{}

// Provide returns the gorm-backed rule repository.
func Provide() domain.Repository { return &repo{} }

func preloadAll(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Slabs").
		Preload("Flat").
		Preload("Renewals").
		Preload("BusinessBonuses").
		Preload("Tiers").
		Preload("TimeBonuses")
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, rule *domain.CommissionRule) error {
	return db.WithContext(ctx).Create(rule).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.CommissionRule, error) {
	var rule domain.CommissionRule
	err := preloadAll(db.WithContext(ctx)).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rule, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.CommissionRule, error) {
	stmt := preloadAll(db.WithContext(ctx)).
		Model(&domain.CommissionRule{}).
		Where("tenant_id = ?", filter.TenantID)
	if filter.InsurerID != 0 {
		stmt = stmt.Where("insurer_id = ?", filter.InsurerID)
	}
	if filter.ProductID != 0 {
		stmt = stmt.Where("product_id = ?", filter.ProductID)
	}
	if filter.LOBID != 0 {
		stmt = stmt.Where("lob_id = ?", filter.LOBID)
	}
	if filter.RuleType != "" {
		stmt = stmt.Where("rule_type = ?", filter.RuleType)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Cursor != 0 {
		stmt = stmt.Where("id < ?", filter.Cursor)
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}

	var rules []domain.CommissionRule
	if err := stmt.Order("id desc").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB, filter domain.ResolveFilter) ([]domain.CommissionRule, error) {
	stmt := preloadAll(db.WithContext(ctx)).
		Model(&domain.CommissionRule{}).
		Where("tenant_id = ?", filter.TenantID).
		Where("insurer_id = ?", filter.InsurerID).
		Where("product_id = ?", filter.ProductID).
		Where("lob_id = ?", filter.LOBID).
		Where("status = ?", domain.StatusActive).
		Where("valid_from <= ?", filter.AsOf).
		Where("valid_to IS NULL OR valid_to >= ?", filter.AsOf)
	if filter.Channel != "" {
		stmt = stmt.Where("channel = '' OR channel = ?", filter.Channel)
	}

	var rules []domain.CommissionRule
	if err := stmt.Order("id asc").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, fields map[string]any) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.CommissionRule{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) error {
	sub := []string{
		"DELETE FROM commission_slabs WHERE rule_id = ?",
		"DELETE FROM commission_flats WHERE rule_id = ?",
		"DELETE FROM commission_renewals WHERE rule_id = ?",
		"DELETE FROM commission_business_bonuses WHERE rule_id = ?",
		"DELETE FROM commission_tiers WHERE rule_id = ?",
		"DELETE FROM commission_time_bonuses WHERE rule_id = ?",
	}
	for _, q := range sub {
		if err := db.WithContext(ctx).Exec(q, id).Error; err != nil {
			return err
		}
	}
	return db.WithContext(ctx).
		Exec("DELETE FROM commission_rules WHERE tenant_id = ? AND id = ?", tenantID, id).Error
}

func (r *repo) InsertRenewal(ctx context.Context, db *gorm.DB, row *domain.CommissionRenewal) error {
	return db.WithContext(ctx).Create(row).Error
}

func (r *repo) InsertBusinessBonus(ctx context.Context, db *gorm.DB, row *domain.CommissionBusinessBonus) error {
	return db.WithContext(ctx).Create(row).Error
}

func (r *repo) InsertTier(ctx context.Context, db *gorm.DB, row *domain.CommissionTier) error {
	return db.WithContext(ctx).Create(row).Error
}

func (r *repo) InsertTimeBonus(ctx context.Context, db *gorm.DB, row *domain.CommissionTimeBonus) error {
	return db.WithContext(ctx).Create(row).Error
}

func (r *repo) Names(ctx context.Context, db *gorm.DB, rule *domain.CommissionRule) (domain.DisplayNames, error) {
	var names domain.DisplayNames
	err := db.WithContext(ctx).Raw(`
SELECT
	COALESCE(i.name, '') AS insurer_name,
	COALESCE(p.name, '') AS product_name,
	COALESCE(l.name, '') AS lob_name
FROM (SELECT 1) x
LEFT JOIN insurers i ON i.id = ?
LEFT JOIN insurance_products p ON p.id = ?
LEFT JOIN lines_of_business l ON l.id = ?
`, rule.InsurerID, rule.ProductID, rule.LOBID).Scan(&names).Error
	return names, err
}
