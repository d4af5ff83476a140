package domain

import (
	"context"
	"errors"
	"time"

	"github.com/JackOfPrompt/policy-pulse-commissions/pkg/db/pagination"
)

var (
	ErrNotFound            = errors.New("commission rule not found")
	ErrInvalidID           = errors.New("invalid_rule_id")
	ErrInvalidTenant       = errors.New("invalid_tenant")
	ErrInvalidInsurer      = errors.New("invalid_insurer_id")
	ErrInvalidProduct      = errors.New("invalid_product_id")
	ErrInvalidLOB          = errors.New("invalid_lob_id")
	ErrInvalidRuleType     = errors.New("invalid_rule_type")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidBaseRate     = errors.New("invalid_base_rate")
	ErrInvalidPolicyYear   = errors.New("invalid_policy_year")
	ErrInvalidValidity     = errors.New("invalid_validity_window")
	ErrMissingSlabs        = errors.New("missing_slabs")
	ErrInvalidSlab         = errors.New("invalid_slab")
	ErrOverlappingSlabs    = errors.New("overlapping_slabs")
	ErrMissingFlatAmount   = errors.New("missing_flat_amount")
	ErrInvalidBonusType    = errors.New("invalid_bonus_type")
	ErrInvalidBonusPayload = errors.New("invalid_bonus_payload")
	ErrRuleInactive        = errors.New("rule_inactive")
	ErrInvalidPageToken    = errors.New("invalid_page_token")
)

// SlabInput is one premium bracket in a create request.
type SlabInput struct {
	MinValue float64  `json:"min_value"`
	MaxValue *float64 `json:"max_value,omitempty"`
	Rate     float64  `json:"rate"`
	SlabType string   `json:"slab_type,omitempty"`
}

type CreateRequest struct {
	InsurerID  string     `json:"insurer_id"`
	ProductID  string     `json:"product_id"`
	LOBID      string     `json:"lob_id"`
	RuleType   RuleType   `json:"rule_type"`
	BaseRate   *float64   `json:"base_rate,omitempty"`
	Channel    string     `json:"channel,omitempty"`
	PolicyYear int        `json:"policy_year,omitempty"`
	ValidFrom  *time.Time `json:"valid_from,omitempty"`
	ValidTo    *time.Time `json:"valid_to,omitempty"`

	Slabs      []SlabInput `json:"slabs,omitempty"`
	FlatAmount *float64    `json:"flat_amount,omitempty"`
	UnitType   string      `json:"unit_type,omitempty"`
}

// UpdateRequest carries the mutable rule fields. Nil means "leave as is".
type UpdateRequest struct {
	BaseRate   *float64   `json:"base_rate,omitempty"`
	Channel    *string    `json:"channel,omitempty"`
	PolicyYear *int       `json:"policy_year,omitempty"`
	ValidFrom  *time.Time `json:"valid_from,omitempty"`
	ValidTo    *time.Time `json:"valid_to,omitempty"`
	Status     *Status    `json:"status,omitempty"`
}

// BonusRequest is the polymorphic payload for AddBonus. Which fields are
// required depends on the bonus type in the URL.
type BonusRequest struct {
	PolicyYear  *int     `json:"policy_year,omitempty"`
	RenewalRate *float64 `json:"renewal_rate,omitempty"`

	MinGWP    *float64 `json:"min_gwp,omitempty"`
	MaxGWP    *float64 `json:"max_gwp,omitempty"`
	BonusRate *float64 `json:"bonus_rate,omitempty"`

	TierName    string   `json:"tier_name,omitempty"`
	MinBusiness *float64 `json:"min_business,omitempty"`
	MaxBusiness *float64 `json:"max_business,omitempty"`
	ExtraBonus  *float64 `json:"extra_bonus,omitempty"`

	CampaignName string     `json:"campaign_name,omitempty"`
	ValidFrom    *time.Time `json:"valid_from,omitempty"`
	ValidTo      *time.Time `json:"valid_to,omitempty"`
}

type ListRequest struct {
	InsurerID string
	ProductID string
	LOBID     string
	RuleType  RuleType
	Status    Status
	PageToken string
	PageSize  int
}

// ListResponse carries one page of rules with the cursor for the next.
type ListResponse struct {
	pagination.PageInfo
	Rules []RuleResponse `json:"rules"`
}

// RuleResponse is a rule enriched with reference display names.
type RuleResponse struct {
	CommissionRule
	InsurerName string `json:"insurer_name,omitempty"`
	ProductName string `json:"product_name,omitempty"`
	LOBName     string `json:"lob_name,omitempty"`
}

type Service interface {
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	Get(ctx context.Context, id string) (*RuleResponse, error)
	Create(ctx context.Context, req CreateRequest) (*RuleResponse, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*RuleResponse, error)
	Deactivate(ctx context.Context, id string) (*RuleResponse, error)
	AddBonus(ctx context.Context, id string, bonusType BonusType, req BonusRequest) (*RuleResponse, error)
	Delete(ctx context.Context, id string) error
}
