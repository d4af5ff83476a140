package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Action enumerates auditable rule mutations.
type Action string

const (
	ActionCreate     Action = "CREATE"
	ActionUpdate     Action = "UPDATE"
	ActionDelete     Action = "DELETE"
	ActionDeactivate Action = "DEACTIVATE"
	ActionAddBonus   Action = "ADD_BONUS"
)

// AuditLog is one append-only record of a commission rule mutation.
type AuditLog struct {
	ID        snowflake.ID      `json:"id" gorm:"primaryKey"`
	TenantID  snowflake.ID      `json:"tenant_id" gorm:"column:tenant_id;not null;index"`
	RuleID    snowflake.ID      `json:"rule_id" gorm:"column:rule_id;not null;index"`
	Action    Action            `json:"action" gorm:"type:text;not null"`
	OldValues datatypes.JSONMap `json:"old_values,omitempty" gorm:"type:jsonb"`
	NewValues datatypes.JSONMap `json:"new_values,omitempty" gorm:"type:jsonb"`
	ChangedBy string            `json:"changed_by" gorm:"type:text;not null"`
	Notes     *string           `json:"notes,omitempty" gorm:"type:text"`
	IPAddress *string           `json:"ip_address,omitempty" gorm:"type:text"`
	UserAgent *string           `json:"user_agent,omitempty" gorm:"type:text"`
	ChangedAt time.Time         `json:"changed_at" gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

func (AuditLog) TableName() string { return "commission_audit_logs" }
