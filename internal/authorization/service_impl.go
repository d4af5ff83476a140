package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actorID, role, tenantID, object, action string) error {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return ErrInvalidActor
	}
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return ErrInvalidTenant
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		role = RoleMember
	}
	subject := fmt.Sprintf("user:%s", actorID)
	roleName := fmt.Sprintf("role:%s", role)
	domain := fmt.Sprintf("tenant:%s", tenantID)

	if err := s.ensureGrouping(subject, roleName, domain); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, domain, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("subject", subject),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) CrossTenant(role string) bool {
	return strings.EqualFold(strings.TrimSpace(role), RoleSystemAdmin)
}

// ensureGrouping keeps the subject bound to exactly the role the
// identity headers asserted for this tenant.
func (s *ServiceImpl) ensureGrouping(subject, roleName, domain string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", domain)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 || rule[1] == roleName {
			continue
		}
		params := make([]interface{}, 0, len(rule))
		for _, value := range rule {
			params = append(params, value)
		}
		_, _ = s.enforcer.RemoveGroupingPolicy(params...)
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, domain)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, domain)
	return err
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	viewPolicies := [][]string{
		{ObjectCommissionRule, ActionRuleView},
		{ObjectIRDAICap, ActionCapView},
		{ObjectCalculation, ActionCalculationRun},
		{ObjectCompliance, ActionComplianceView},
		{ObjectCommissionReport, ActionReportView},
		{ObjectTransaction, ActionTransactionView},
	}
	adminPolicies := [][]string{
		{ObjectCommissionRule, ActionRuleCreate},
		{ObjectCommissionRule, ActionRuleUpdate},
		{ObjectCommissionRule, ActionRuleDeactivate},
		{ObjectCommissionRule, ActionRuleDelete},
		{ObjectCommissionRule, ActionRuleAddBonus},
		{ObjectAuditLog, ActionAuditLogView},
	}

	policies := make([][]string, 0, 3*len(viewPolicies)+2*len(adminPolicies))
	for _, p := range viewPolicies {
		policies = append(policies,
			[]string{"role:" + RoleMember, p[0], p[1]},
			[]string{"role:" + RoleAdmin, p[0], p[1]},
			[]string{"role:" + RoleSystemAdmin, p[0], p[1]},
		)
	}
	for _, p := range adminPolicies {
		policies = append(policies,
			[]string{"role:" + RoleAdmin, p[0], p[1]},
			[]string{"role:" + RoleSystemAdmin, p[0], p[1]},
		)
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
