package authorization

import (
	"context"
	"errors"
)

const (
	ObjectCommissionRule   = "commission_rule"
	ObjectIRDAICap         = "irdai_cap"
	ObjectCalculation      = "calculation"
	ObjectCompliance       = "compliance"
	ObjectCommissionReport = "commission_report"
	ObjectAuditLog         = "audit_log"
	ObjectTransaction      = "commission_transaction"
)

const (
	ActionRuleView       = "commission_rule.view"
	ActionRuleCreate     = "commission_rule.create"
	ActionRuleUpdate     = "commission_rule.update"
	ActionRuleDeactivate = "commission_rule.deactivate"
	ActionRuleDelete     = "commission_rule.delete"
	ActionRuleAddBonus   = "commission_rule.add_bonus"

	ActionCapView         = "irdai_cap.view"
	ActionCalculationRun  = "calculation.run"
	ActionComplianceView  = "compliance.view"
	ActionReportView      = "commission_report.view"
	ActionAuditLogView    = "audit_log.view"
	ActionTransactionView = "commission_transaction.view"
)

// RoleSystemAdmin may act across tenants; everyone else is confined to
// the tenant asserted by the identity headers.
const (
	RoleSystemAdmin = "system_admin"
	RoleAdmin       = "admin"
	RoleMember      = "member"
)

var (
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidTenant = errors.New("invalid_tenant")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
	ErrForbidden     = errors.New("forbidden")
)

type Service interface {
	// Authorize checks one (actor, tenant, object, action) tuple.
	// Returns ErrForbidden when the actor's role does not grant it.
	Authorize(ctx context.Context, actorID, role, tenantID, object, action string) error
	// CrossTenant reports whether the role may act outside its own tenant.
	CrossTenant(role string) bool
}
