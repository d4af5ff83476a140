package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/JackOfPrompt/policy-pulse-commissions/internal/ledger/domain"
)

type repo struct{}

// Provide returns the gorm-backed ledger repository.
func Provide() domain.Repository { return &repo{} }

func (r *repo) Insert(ctx context.Context, db *gorm.DB, tx *domain.CommissionTransaction) error {
	return db.WithContext(ctx).Create(tx).Error
}

func (r *repo) FindByChecksum(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, checksum string) (*domain.CommissionTransaction, error) {
	var row domain.CommissionTransaction
	err := db.WithContext(ctx).
		Model(&domain.CommissionTransaction{}).
		Where("tenant_id = ? AND checksum = ?", tenantID, checksum).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.CommissionTransaction, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.CommissionTransaction{}).
		Where("tenant_id = ?", filter.TenantID).
		Where("status = ?", domain.StatusSettled)
	if !filter.From.IsZero() {
		stmt = stmt.Where("transaction_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		stmt = stmt.Where("transaction_at < ?", filter.To)
	}
	if filter.LOBID != nil {
		stmt = stmt.Where("lob_id = ?", *filter.LOBID)
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}

	var rows []domain.CommissionTransaction
	if err := stmt.Order("transaction_at desc, id desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
