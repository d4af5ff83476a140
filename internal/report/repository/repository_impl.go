package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/JackOfPrompt/policy-pulse-commissions/internal/report/domain"
)

type repo struct{}

// Provide returns the SQL-backed reporting repository.
func Provide() domain.Repository { return &repo{} }

func (r *repo) Total(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, period domain.Period) (float64, int64, error) {
	var row struct {
		Total float64
		Count int64
	}
	err := db.WithContext(ctx).Raw(`
SELECT COALESCE(SUM(total_commission), 0) AS total, COUNT(*) AS count
FROM commission_transactions
WHERE tenant_id = ?
  AND status = 'Settled'
  AND transaction_at >= ?
  AND transaction_at < ?
`, tenantID, period.From, period.To).Scan(&row).Error
	return row.Total, row.Count, err
}

func (r *repo) SumByLOB(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, period domain.Period) ([]domain.LOBSum, error) {
	var rows []domain.LOBSum
	err := db.WithContext(ctx).Raw(`
SELECT COALESCE(l.name, CAST(t.lob_id AS TEXT)) AS name,
       COALESCE(SUM(t.total_commission), 0) AS amount
FROM commission_transactions t
LEFT JOIN lines_of_business l ON l.id = t.lob_id
WHERE t.tenant_id = ?
  AND t.status = 'Settled'
  AND t.transaction_at >= ?
  AND t.transaction_at < ?
GROUP BY l.name, t.lob_id
ORDER BY amount DESC
`, tenantID, period.From, period.To).Scan(&rows).Error
	return rows, err
}

func (r *repo) SumByRuleType(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, period domain.Period) ([]domain.RuleTypeSum, error) {
	var rows []domain.RuleTypeSum
	err := db.WithContext(ctx).Raw(`
SELECT rule_type, COALESCE(SUM(total_commission), 0) AS amount
FROM commission_transactions
WHERE tenant_id = ?
  AND status = 'Settled'
  AND transaction_at >= ?
  AND transaction_at < ?
GROUP BY rule_type
ORDER BY amount DESC
`, tenantID, period.From, period.To).Scan(&rows).Error
	return rows, err
}
