package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Insurer is a carrier the agency writes business with.
type Insurer struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Code      string       `json:"code" gorm:"type:text;not null;uniqueIndex"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	IsActive  bool         `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time    `json:"created_at,omitempty" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Insurer) TableName() string { return "insurers" }

// LineOfBusiness is an insurance product category (Health, Motor, Life, ...).
type LineOfBusiness struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Code      string       `json:"code" gorm:"type:text;not null;uniqueIndex"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	IsActive  bool         `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time    `json:"created_at,omitempty" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (LineOfBusiness) TableName() string { return "lines_of_business" }

// InsuranceProduct is a sellable product under an insurer and LOB.
type InsuranceProduct struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	InsurerID snowflake.ID `json:"insurer_id" gorm:"not null;index"`
	LOBID     snowflake.ID `json:"lob_id" gorm:"column:lob_id;not null;index"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Category  string       `json:"category" gorm:"type:text;not null;default:''"`
	IsActive  bool         `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time    `json:"created_at,omitempty" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (InsuranceProduct) TableName() string { return "insurance_products" }

// Tenant is an agency organization using the engine.
type Tenant struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Slug      string       `json:"slug" gorm:"type:text;not null;uniqueIndex"`
	CreatedAt time.Time    `json:"created_at,omitempty" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Tenant) TableName() string { return "tenants" }
