package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	capdomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/irdaicap/domain"
	refdomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/reference/domain"
)

const defaultTenantName = "Main Agency"

// EnsureDefaultTenant seeds the bootstrap tenant plus reference and
// regulator data so a fresh install is usable immediately.
func EnsureDefaultTenant(db *gorm.DB) error {
	return ensure(db, 0)
}

// EnsureDefaultTenantWithID pins the bootstrap tenant to a configured ID
// so self-hosted installs keep stable tenant references across resets.
func EnsureDefaultTenantWithID(db *gorm.DB, tenantID int64) error {
	return ensure(db, snowflake.ID(tenantID))
}

func ensure(db *gorm.DB, tenantID snowflake.ID) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureTenant(ctx, tx, node, tenantID); err != nil {
			return err
		}
		lobs, err := ensureLinesOfBusiness(ctx, tx, node)
		if err != nil {
			return err
		}
		insurers, err := ensureInsurers(ctx, tx, node)
		if err != nil {
			return err
		}
		if err := ensureProducts(ctx, tx, node, insurers, lobs); err != nil {
			return err
		}
		return ensureCaps(ctx, tx, node, lobs)
	})
}

func ensureTenant(ctx context.Context, tx *gorm.DB, node *snowflake.Node, tenantID snowflake.ID) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&refdomain.Tenant{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if tenantID == 0 {
		tenantID = node.Generate()
	}
	return tx.WithContext(ctx).Create(&refdomain.Tenant{
		ID:        tenantID,
		Name:      defaultTenantName,
		Slug:      slug.Make(defaultTenantName),
		CreatedAt: time.Now().UTC(),
	}).Error
}

func ensureLinesOfBusiness(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (map[string]snowflake.ID, error) {
	rows := []struct {
		Code string
		Name string
	}{
		{"health", "Health"},
		{"motor", "Motor"},
		{"life", "Life"},
		{"property", "Property"},
	}

	out := map[string]snowflake.ID{}
	for _, row := range rows {
		var existing refdomain.LineOfBusiness
		err := tx.WithContext(ctx).Where("code = ?", row.Code).First(&existing).Error
		switch {
		case err == nil:
			out[row.Code] = existing.ID
			continue
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}

		lob := refdomain.LineOfBusiness{
			ID:        node.Generate(),
			Code:      row.Code,
			Name:      row.Name,
			IsActive:  true,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.WithContext(ctx).Create(&lob).Error; err != nil {
			return nil, err
		}
		out[row.Code] = lob.ID
	}
	return out, nil
}

func ensureInsurers(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (map[string]snowflake.ID, error) {
	rows := []struct {
		Code string
		Name string
	}{
		{"star-health", "Star Health Insurance"},
		{"hdfc-ergo", "HDFC ERGO General Insurance"},
		{"lic", "Life Insurance Corporation of India"},
	}

	out := map[string]snowflake.ID{}
	for _, row := range rows {
		var existing refdomain.Insurer
		err := tx.WithContext(ctx).Where("code = ?", row.Code).First(&existing).Error
		switch {
		case err == nil:
			out[row.Code] = existing.ID
			continue
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}

		insurer := refdomain.Insurer{
			ID:        node.Generate(),
			Code:      row.Code,
			Name:      row.Name,
			IsActive:  true,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.WithContext(ctx).Create(&insurer).Error; err != nil {
			return nil, err
		}
		out[row.Code] = insurer.ID
	}
	return out, nil
}

func ensureProducts(ctx context.Context, tx *gorm.DB, node *snowflake.Node, insurers, lobs map[string]snowflake.ID) error {
	rows := []struct {
		Insurer  string
		LOB      string
		Name     string
		Category string
	}{
		{"star-health", "health", "Family Health Optima", "Retail"},
		{"hdfc-ergo", "motor", "Private Car Comprehensive", "Retail"},
		{"lic", "life", "Jeevan Anand", "Individual"},
	}

	for _, row := range rows {
		insurerID, ok := insurers[row.Insurer]
		if !ok {
			continue
		}
		lobID, ok := lobs[row.LOB]
		if !ok {
			continue
		}

		var count int64
		err := tx.WithContext(ctx).Model(&refdomain.InsuranceProduct{}).
			Where("insurer_id = ? AND name = ?", insurerID, row.Name).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		product := refdomain.InsuranceProduct{
			ID:        node.Generate(),
			InsurerID: insurerID,
			LOBID:     lobID,
			Name:      row.Name,
			Category:  row.Category,
			IsActive:  true,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.WithContext(ctx).Create(&product).Error; err != nil {
			return err
		}
	}
	return nil
}

// ensureCaps loads a starter IRDAI cap set. Percentages follow the
// regulator's published first-year maxima per line of business.
func ensureCaps(ctx context.Context, tx *gorm.DB, node *snowflake.Node, lobs map[string]snowflake.ID) error {
	effectiveFrom := time.Date(2023, time.April, 1, 0, 0, 0, 0, time.UTC)
	rows := []struct {
		LOB        string
		PolicyYear int
		Max        float64
		Ref        string
	}{
		{"health", 1, 15, "IRDAI/Reg/2023/health"},
		{"health", 2, 7.5, "IRDAI/Reg/2023/health"},
		{"motor", 1, 15, "IRDAI/Reg/2023/motor"},
		{"life", 1, 35, "IRDAI/Reg/2023/life"},
		{"life", 2, 7.5, "IRDAI/Reg/2023/life"},
		{"property", 1, 16.5, "IRDAI/Reg/2023/property"},
	}

	for _, row := range rows {
		lobID, ok := lobs[row.LOB]
		if !ok {
			continue
		}

		var count int64
		err := tx.WithContext(ctx).Model(&capdomain.CommissionCap{}).
			Where("lob_id = ? AND policy_year = ? AND effective_from = ?", lobID, row.PolicyYear, effectiveFrom).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		capRow := capdomain.CommissionCap{
			ID:                   node.Generate(),
			LOBID:                lobID,
			PolicyYear:           row.PolicyYear,
			MaxCommissionPercent: row.Max,
			RegulationRef:        row.Ref,
			EffectiveFrom:        effectiveFrom,
			CreatedAt:            time.Now().UTC(),
		}
		if err := tx.WithContext(ctx).Create(&capRow).Error; err != nil {
			return err
		}
	}
	return nil
}
