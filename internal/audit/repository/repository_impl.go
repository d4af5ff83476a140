package repository

import (
	"context"

	"github.com/JackOfPrompt/policy-pulse-commissions/internal/audit/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.AuditLog) error {
	if entry == nil {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO commission_audit_logs (
			id, tenant_id, rule_id, action, old_values, new_values,
			changed_by, notes, ip_address, user_agent, changed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.TenantID,
		entry.RuleID,
		entry.Action,
		entry.OldValues,
		entry.NewValues,
		entry.ChangedBy,
		entry.Notes,
		entry.IPAddress,
		entry.UserAgent,
		entry.ChangedAt,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.AuditLog, error) {
	stmt := db.WithContext(ctx).Model(&domain.AuditLog{}).
		Where("tenant_id = ?", filter.TenantID)

	if filter.RuleID != nil {
		stmt = stmt.Where("rule_id = ?", *filter.RuleID)
	}

	stmt = stmt.Order("changed_at desc, id desc")
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}

	var logs []domain.AuditLog
	if err := stmt.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
