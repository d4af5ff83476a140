package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Entry carries everything a mutation wants recorded about itself.
type Entry struct {
	RuleID    snowflake.ID
	Action    Action
	OldValues map[string]any
	NewValues map[string]any
	Notes     string
}

type ListRequest struct {
	RuleID *snowflake.ID
	Limit  int
}

type Service interface {
	// Record appends one audit entry. Best-effort: the caller's mutation
	// must not fail or roll back because the audit write failed.
	Record(ctx context.Context, entry Entry) error
	List(ctx context.Context, req ListRequest) ([]AuditLog, error)
}

var (
	ErrInvalidTenant = errors.New("invalid_tenant")
	ErrInvalidAction = errors.New("invalid_action")
	ErrInvalidRule   = errors.New("invalid_rule")
)
