package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/JackOfPrompt/policy-pulse-commissions/internal/irdaicap/domain"
)

type repo struct{}

// Provide returns the gorm-backed cap repository.
func Provide() domain.Repository { return &repo{} }

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.CommissionCap, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.CommissionCap{}).
		Where("effective_from <= ?", filter.AsOf).
		Where("effective_to IS NULL OR effective_to >= ?", filter.AsOf)
	if filter.LOBID != 0 {
		stmt = stmt.Where("lob_id = ?", filter.LOBID)
	}
	if filter.Channel != "" {
		stmt = stmt.Where("channel = '' OR channel = ?", filter.Channel)
	}

	var caps []domain.CommissionCap
	if err := stmt.Order("policy_year asc, lob_id asc, id asc").Find(&caps).Error; err != nil {
		return nil, err
	}
	return caps, nil
}

func (r *repo) Resolve(ctx context.Context, db *gorm.DB, lobID snowflake.ID, policyYear int, asOf time.Time) (*domain.CommissionCap, error) {
	var row domain.CommissionCap
	err := db.WithContext(ctx).
		Model(&domain.CommissionCap{}).
		Where("lob_id = ?", lobID).
		Where("policy_year = ?", policyYear).
		Where("effective_from <= ?", asOf).
		Where("effective_to IS NULL OR effective_to >= ?", asOf).
		Order("effective_from desc, id desc").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNoCap
		}
		return nil, err
	}
	return &row, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, row *domain.CommissionCap) error {
	var existing domain.CommissionCap
	err := db.WithContext(ctx).
		Model(&domain.CommissionCap{}).
		Where("lob_id = ? AND policy_year = ? AND channel = ? AND effective_from = ?",
			row.LOBID, row.PolicyYear, row.Channel, row.EffectiveFrom).
		First(&existing).Error
	switch {
	case err == nil:
		return db.WithContext(ctx).
			Model(&domain.CommissionCap{}).
			Where("id = ?", existing.ID).
			Updates(map[string]any{
				"product_category":       row.ProductCategory,
				"max_commission_percent": row.MaxCommissionPercent,
				"regulation_ref":         row.RegulationRef,
				"effective_to":           row.EffectiveTo,
			}).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return db.WithContext(ctx).Create(row).Error
	default:
		return err
	}
}
