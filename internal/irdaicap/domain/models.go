package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// CommissionCap is one IRDAI maximum-commission row. Caps are regulator
// data, shared across tenants, loaded by migrations and the seeder.
type CommissionCap struct {
	ID                   snowflake.ID `json:"id" gorm:"primaryKey"`
	LOBID                snowflake.ID `json:"lob_id" gorm:"column:lob_id;not null;index"`
	PolicyYear           int          `json:"policy_year" gorm:"not null;default:1"`
	Channel              string       `json:"channel" gorm:"type:text;not null;default:''"`
	ProductCategory      string       `json:"product_category" gorm:"type:text;not null;default:''"`
	MaxCommissionPercent float64      `json:"max_commission_percent" gorm:"type:numeric;not null"`
	RegulationRef        string       `json:"regulation_ref" gorm:"type:text;not null;default:''"`
	EffectiveFrom        time.Time    `json:"effective_from" gorm:"not null"`
	EffectiveTo          *time.Time   `json:"effective_to,omitempty"`
	CreatedAt            time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CommissionCap) TableName() string { return "irdai_commission_caps" }

// EffectiveAt reports whether the cap's window contains ts.
func (c CommissionCap) EffectiveAt(ts time.Time) bool {
	if ts.Before(c.EffectiveFrom) {
		return false
	}
	if c.EffectiveTo != nil && ts.After(*c.EffectiveTo) {
		return false
	}
	return true
}
