package reference

import (
	"context"
	"strings"

	"github.com/JackOfPrompt/policy-pulse-commissions/internal/reference/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) ListInsurers(ctx context.Context) ([]domain.Insurer, error) {
	var insurers []domain.Insurer
	err := r.db.WithContext(ctx).
		Raw(`SELECT id, code, name, is_active, created_at FROM insurers WHERE is_active = true ORDER BY name`).
		Scan(&insurers).Error
	if err != nil {
		return nil, err
	}

	return insurers, nil
}

func (r *repository) ListLinesOfBusiness(ctx context.Context) ([]domain.LineOfBusiness, error) {
	var lobs []domain.LineOfBusiness
	err := r.db.WithContext(ctx).
		Raw(`SELECT id, code, name, created_at FROM lines_of_business ORDER BY name`).
		Scan(&lobs).Error
	if err != nil {
		return nil, err
	}

	return lobs, nil
}

func (r *repository) ListProductsByInsurer(ctx context.Context, insurerID string) ([]domain.InsuranceProduct, error) {
	stmt := r.db.WithContext(ctx)

	var products []domain.InsuranceProduct
	if trimmed := strings.TrimSpace(insurerID); trimmed != "" {
		id, err := snowflake.ParseString(trimmed)
		if err != nil {
			return nil, err
		}
		err = stmt.Raw(
			`SELECT id, insurer_id, lob_id, name, category, is_active, created_at
			 FROM insurance_products WHERE is_active = true AND insurer_id = ? ORDER BY name`,
			id,
		).Scan(&products).Error
		return products, err
	}

	err := stmt.Raw(
		`SELECT id, insurer_id, lob_id, name, category, is_active, created_at
		 FROM insurance_products WHERE is_active = true ORDER BY name`,
	).Scan(&products).Error
	return products, err
}
