package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// RuleType selects the base-commission formula for a rule.
type RuleType string

const (
	RuleTypeFixed    RuleType = "Fixed"
	RuleTypeSlab     RuleType = "Slab"
	RuleTypeFlat     RuleType = "Flat"
	RuleTypeCampaign RuleType = "Campaign"
)

func (t RuleType) Valid() bool {
	switch t {
	case RuleTypeFixed, RuleTypeSlab, RuleTypeFlat, RuleTypeCampaign:
		return true
	default:
		return false
	}
}

// Status is the rule lifecycle state. Rules are soft-retired, never
// silently removed.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// BonusType names the attachable bonus sub-components.
type BonusType string

const (
	BonusTypeRenewal       BonusType = "renewal"
	BonusTypeBusinessBonus BonusType = "business-bonus"
	BonusTypeTier          BonusType = "tier"
	BonusTypeCampaign      BonusType = "campaign"
)

func (t BonusType) Valid() bool {
	switch t {
	case BonusTypeRenewal, BonusTypeBusinessBonus, BonusTypeTier, BonusTypeCampaign:
		return true
	default:
		return false
	}
}

// CommissionRule is one configured commission policy for a
// (tenant, insurer, product, line-of-business) tuple.
type CommissionRule struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey"`
	TenantID   snowflake.ID `json:"tenant_id" gorm:"column:tenant_id;not null;index"`
	InsurerID  snowflake.ID `json:"insurer_id" gorm:"not null;index"`
	ProductID  snowflake.ID `json:"product_id" gorm:"not null;index"`
	LOBID      snowflake.ID `json:"lob_id" gorm:"column:lob_id;not null;index"`
	RuleType   RuleType     `json:"rule_type" gorm:"type:text;not null"`
	BaseRate   *float64     `json:"base_rate,omitempty" gorm:"type:numeric"`
	Channel    string       `json:"channel" gorm:"type:text;not null;default:''"`
	PolicyYear int          `json:"policy_year" gorm:"not null;default:1"`
	ValidFrom  time.Time    `json:"valid_from" gorm:"not null"`
	ValidTo    *time.Time   `json:"valid_to,omitempty"`
	Status     Status       `json:"status" gorm:"type:text;not null;default:'Active'"`
	CreatedBy  string       `json:"created_by" gorm:"type:text;not null;default:''"`
	CreatedAt  time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`

	Slabs           []CommissionSlab          `json:"slabs,omitempty" gorm:"foreignKey:RuleID"`
	Flat            *CommissionFlat           `json:"flat,omitempty" gorm:"foreignKey:RuleID"`
	Renewals        []CommissionRenewal       `json:"renewals,omitempty" gorm:"foreignKey:RuleID"`
	BusinessBonuses []CommissionBusinessBonus `json:"business_bonuses,omitempty" gorm:"foreignKey:RuleID"`
	Tiers           []CommissionTier          `json:"tiers,omitempty" gorm:"foreignKey:RuleID"`
	TimeBonuses     []CommissionTimeBonus     `json:"time_bonuses,omitempty" gorm:"foreignKey:RuleID"`
}

func (CommissionRule) TableName() string { return "commission_rules" }

// ActiveAt reports whether the rule's validity window contains ts.
func (r CommissionRule) ActiveAt(ts time.Time) bool {
	if r.Status != StatusActive {
		return false
	}
	if ts.Before(r.ValidFrom) {
		return false
	}
	if r.ValidTo != nil && ts.After(*r.ValidTo) {
		return false
	}
	return true
}

// CommissionSlab is a premium bracket with its own rate. Brackets within
// a rule must not overlap; a null max means unbounded.
type CommissionSlab struct {
	ID       snowflake.ID `json:"id" gorm:"primaryKey"`
	RuleID   snowflake.ID `json:"rule_id" gorm:"column:rule_id;not null;index"`
	MinValue float64      `json:"min_value" gorm:"type:numeric;not null"`
	MaxValue *float64     `json:"max_value,omitempty" gorm:"type:numeric"`
	Rate     float64      `json:"rate" gorm:"type:numeric;not null"`
	SlabType string       `json:"slab_type" gorm:"type:text;not null;default:'Premium'"`
}

func (CommissionSlab) TableName() string { return "commission_slabs" }

// Contains reports whether premium falls in [MinValue, MaxValue).
// The half-open upper bound routes a boundary premium to the next
// slab when its min equals this slab's max. A nil max is unbounded.
func (s CommissionSlab) Contains(premium float64) bool {
	if premium < s.MinValue {
		return false
	}
	if s.MaxValue != nil && premium >= *s.MaxValue {
		return false
	}
	return true
}

// CommissionFlat is a per-policy flat payout. At most one per Flat rule.
type CommissionFlat struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey"`
	RuleID     snowflake.ID `json:"rule_id" gorm:"column:rule_id;not null;uniqueIndex"`
	FlatAmount float64      `json:"flat_amount" gorm:"type:numeric;not null"`
	UnitType   string       `json:"unit_type" gorm:"type:text;not null;default:'PerPolicy'"`
}

func (CommissionFlat) TableName() string { return "commission_flats" }

// CommissionRenewal is the rate used instead of the base rate in a
// specific renewal year.
type CommissionRenewal struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	RuleID      snowflake.ID `json:"rule_id" gorm:"column:rule_id;not null;index"`
	PolicyYear  int          `json:"policy_year" gorm:"not null"`
	RenewalRate float64      `json:"renewal_rate" gorm:"type:numeric;not null"`
}

func (CommissionRenewal) TableName() string { return "commission_renewals" }

// CommissionBusinessBonus pays an additive bonus when the distributor's
// gross written premium to date falls in range.
type CommissionBusinessBonus struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	RuleID    snowflake.ID `json:"rule_id" gorm:"column:rule_id;not null;index"`
	MinGWP    float64      `json:"min_gwp" gorm:"column:min_gwp;type:numeric;not null"`
	MaxGWP    *float64     `json:"max_gwp,omitempty" gorm:"column:max_gwp;type:numeric"`
	BonusRate float64      `json:"bonus_rate" gorm:"type:numeric;not null"`
}

func (CommissionBusinessBonus) TableName() string { return "commission_business_bonuses" }

// Matches reports whether gwpToDate falls in [MinGWP, MaxGWP].
func (b CommissionBusinessBonus) Matches(gwpToDate float64) bool {
	if gwpToDate < b.MinGWP {
		return false
	}
	if b.MaxGWP != nil && gwpToDate > *b.MaxGWP {
		return false
	}
	return true
}

// CommissionTier is a volume-tier bonus, structurally parallel to the
// business bonus.
type CommissionTier struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	RuleID      snowflake.ID `json:"rule_id" gorm:"column:rule_id;not null;index"`
	TierName    string       `json:"tier_name" gorm:"type:text;not null"`
	MinBusiness float64      `json:"min_business" gorm:"type:numeric;not null"`
	MaxBusiness *float64     `json:"max_business,omitempty" gorm:"type:numeric"`
	ExtraBonus  float64      `json:"extra_bonus" gorm:"type:numeric;not null"`
}

func (CommissionTier) TableName() string { return "commission_tiers" }

// Matches reports whether business volume falls in [MinBusiness, MaxBusiness].
func (t CommissionTier) Matches(business float64) bool {
	if business < t.MinBusiness {
		return false
	}
	if t.MaxBusiness != nil && business > *t.MaxBusiness {
		return false
	}
	return true
}

// CommissionTimeBonus is a campaign bonus active only inside its window.
type CommissionTimeBonus struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	RuleID       snowflake.ID `json:"rule_id" gorm:"column:rule_id;not null;index"`
	CampaignName string       `json:"campaign_name" gorm:"type:text;not null"`
	BonusRate    float64      `json:"bonus_rate" gorm:"type:numeric;not null"`
	ValidFrom    time.Time    `json:"valid_from" gorm:"not null"`
	ValidTo      time.Time    `json:"valid_to" gorm:"not null"`
}

func (CommissionTimeBonus) TableName() string { return "commission_time_bonuses" }

// ActiveAt reports whether ts falls inside the campaign window.
func (b CommissionTimeBonus) ActiveAt(ts time.Time) bool {
	return !ts.Before(b.ValidFrom) && !ts.After(b.ValidTo)
}
