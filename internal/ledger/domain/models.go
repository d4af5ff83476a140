package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status of a ledger row. Settled rows are what reporting reads.
type Status string

const (
	StatusSettled Status = "Settled"
	StatusVoided  Status = "Voided"
)

// CommissionTransaction is one settled commission amount, written when a
// calculation is persisted or when an external settlement flow posts.
type CommissionTransaction struct {
	ID               snowflake.ID `json:"id" gorm:"primaryKey"`
	TenantID         snowflake.ID `json:"tenant_id" gorm:"column:tenant_id;not null;index"`
	InsurerID        snowflake.ID `json:"insurer_id" gorm:"not null"`
	ProductID        snowflake.ID `json:"product_id" gorm:"not null"`
	LOBID            snowflake.ID `json:"lob_id" gorm:"column:lob_id;not null;index"`
	RuleType         string       `json:"rule_type" gorm:"type:text;not null;default:''"`
	PolicyYear       int          `json:"policy_year" gorm:"not null;default:1"`
	Channel          string       `json:"channel" gorm:"type:text;not null;default:''"`
	Premium          float64      `json:"premium" gorm:"type:numeric;not null"`
	AppliedRate      float64      `json:"applied_rate" gorm:"type:numeric;not null"`
	EffectiveRate    float64      `json:"effective_rate" gorm:"type:numeric;not null"`
	BaseCommission   float64      `json:"base_commission" gorm:"type:numeric;not null"`
	BonusCommission  float64      `json:"bonus_commission" gorm:"type:numeric;not null"`
	TotalCommission  float64      `json:"total_commission" gorm:"type:numeric;not null"`
	CapPercent       float64      `json:"cap_percent" gorm:"type:numeric;not null"`
	ComplianceStatus string       `json:"compliance_status" gorm:"type:text;not null"`
	Status           Status       `json:"status" gorm:"type:text;not null;default:'Settled'"`
	Checksum         string       `json:"checksum" gorm:"type:text;not null;uniqueIndex:idx_commission_tx_checksum"`
	TransactionAt    time.Time    `json:"transaction_at" gorm:"not null;index"`
	CreatedAt        time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CommissionTransaction) TableName() string { return "commission_transactions" }
