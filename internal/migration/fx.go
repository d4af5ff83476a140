package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	auditdomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/audit/domain"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/config"
	capdomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/irdaicap/domain"
	ledgerdomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/ledger/domain"
	refdomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/reference/domain"
	ruledomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/rule/domain"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/seed"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			if err := AutoMigrate(conn); err != nil {
				return err
			}
		}

		if cfg.DefaultTenantID != 0 {
			return seed.EnsureDefaultTenantWithID(conn, cfg.DefaultTenantID)
		}
		return seed.EnsureDefaultTenant(conn)
	}),
)

// AutoMigrate mirrors the SQL migrations for databases the migration
// files do not target.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&refdomain.Tenant{},
		&refdomain.Insurer{},
		&refdomain.LineOfBusiness{},
		&refdomain.InsuranceProduct{},
		&ruledomain.CommissionRule{},
		&ruledomain.CommissionSlab{},
		&ruledomain.CommissionFlat{},
		&ruledomain.CommissionRenewal{},
		&ruledomain.CommissionBusinessBonus{},
		&ruledomain.CommissionTier{},
		&ruledomain.CommissionTimeBonus{},
		&capdomain.CommissionCap{},
		&auditdomain.AuditLog{},
		&ledgerdomain.CommissionTransaction{},
	)
}
