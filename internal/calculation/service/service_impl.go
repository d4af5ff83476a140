package service

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/JackOfPrompt/policy-pulse-commissions/internal/calculation/domain"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/clock"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/config"
	capdomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/irdaicap/domain"
	ledgerdomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/ledger/domain"
	obsmetrics "github.com/JackOfPrompt/policy-pulse-commissions/internal/observability/metrics"
	ruledomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/rule/domain"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/tenantctx"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	Rules      ruledomain.Repository
	Caps       capdomain.Service
	Ledger     ledgerdomain.Service
	Compliance *config.ComplianceConfigHolder
	Metrics    *obsmetrics.Metrics `optional:"true"`
}

type service struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	rules      ruledomain.Repository
	caps       capdomain.Service
	ledger     ledgerdomain.Service
	compliance *config.ComplianceConfigHolder
	metrics    *obsmetrics.Metrics
}

func NewService(p Params) domain.Service {
	return &service{
		db:         p.DB,
		log:        p.Log.Named("calculation.service"),
		clock:      p.Clock,
		rules:      p.Rules,
		caps:       p.Caps,
		ledger:     p.Ledger,
		compliance: p.Compliance,
		metrics:    p.Metrics,
	}
}

func (s *service) Calculate(ctx context.Context, req domain.Request) (*domain.Response, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}

	insurerID, err := parseID(req.InsurerID, domain.ErrInvalidInsurer)
	if err != nil {
		return nil, err
	}
	productID, err := parseID(req.ProductID, domain.ErrInvalidProduct)
	if err != nil {
		return nil, err
	}
	lobID, err := parseID(req.LOBID, domain.ErrInvalidLOB)
	if err != nil {
		return nil, err
	}
	if req.Premium < 0 {
		return nil, domain.ErrInvalidPremium
	}
	policyYear := req.PolicyYear
	if policyYear == 0 {
		policyYear = 1
	}
	if policyYear < 1 {
		return nil, domain.ErrInvalidYear
	}

	asOf := s.clock.Now()
	if req.AsOf != nil {
		asOf = *req.AsOf
	}

	rules, err := s.rules.ListActive(ctx, s.db, ruledomain.ResolveFilter{
		TenantID:  tenantID,
		InsurerID: insurerID,
		ProductID: productID,
		LOBID:     lobID,
		Channel:   req.Channel,
		AsOf:      asOf,
	})
	if err != nil {
		s.log.Error("load rules for calculation", zap.Error(err))
		return nil, err
	}

	in := domain.EvalInput{
		Premium:    req.Premium,
		PolicyYear: policyYear,
		GWPToDate:  req.GWPToDate,
		AsOf:       asOf,
	}

	resp := &domain.Response{
		Premium:    req.Premium,
		PolicyYear: policyYear,
		AsOf:       asOf,
		Rules:      []domain.RuleLine{},
	}
	for _, rule := range rules {
		if !appliesToYear(rule, policyYear) {
			continue
		}
		result := domain.EvaluateRule(rule, in)
		if !result.Matched {
			continue
		}
		resp.Rules = append(resp.Rules, domain.RuleLine{
			RuleID:          rule.ID,
			RuleType:        string(rule.RuleType),
			BaseRate:        result.BaseRate,
			BaseCommission:  result.BaseCommission,
			BonusRate:       result.BonusRate,
			BonusCommission: result.BonusCommission,
		})
		resp.AppliedRate += result.BaseRate + result.BonusRate
		resp.BaseCommission += result.BaseCommission
		resp.BonusCommission += result.BonusCommission
	}
	resp.TotalCommission = resp.BaseCommission + resp.BonusCommission

	capPercent := s.compliance.Get().UnboundedCapPercent
	capSource := "none"
	resolved, err := s.caps.Resolve(ctx, lobID, policyYear, asOf)
	switch {
	case err == nil:
		capPercent = resolved.MaxCommissionPercent
		capSource = resolved.RegulationRef
	case errors.Is(err, capdomain.ErrNoCap):
		// No regulator row: the configured ceiling applies.
	default:
		return nil, err
	}
	resp.CapPercent = capPercent
	resp.CapSource = capSource

	resp.EffectiveRate = resp.AppliedRate
	resp.ComplianceStatus = domain.ComplianceWithinLimit
	if resp.AppliedRate > capPercent {
		resp.EffectiveRate = capPercent
		resp.ComplianceStatus = domain.ComplianceExceedsCap
		if req.Premium > 0 {
			resp.TotalCommission = req.Premium * capPercent / 100
		}
		s.metrics.RecordCapClamp(ctx, tenantID.String())
	}
	s.metrics.RecordCalculation(ctx, tenantID.String(), resp.ComplianceStatus)

	if req.Persist {
		if err := s.persist(ctx, insurerID, productID, lobID, req.Channel, resp); err != nil {
			return nil, err
		}
	}

	return resp, nil
}

// appliesToYear keeps a rule in scope when it is configured for the
// requested year, or when it carries a renewal row for it.
func appliesToYear(rule ruledomain.CommissionRule, policyYear int) bool {
	if rule.PolicyYear == policyYear {
		return true
	}
	if policyYear > 1 {
		for _, renewal := range rule.Renewals {
			if renewal.PolicyYear == policyYear {
				return true
			}
		}
	}
	return false
}

func (s *service) persist(ctx context.Context, insurerID, productID, lobID snowflake.ID, channel string, resp *domain.Response) error {
	ruleType := ""
	if len(resp.Rules) == 1 {
		ruleType = resp.Rules[0].RuleType
	} else if len(resp.Rules) > 1 {
		ruleType = "Mixed"
	}

	row := &ledgerdomain.CommissionTransaction{
		InsurerID:        insurerID,
		ProductID:        productID,
		LOBID:            lobID,
		RuleType:         ruleType,
		PolicyYear:       resp.PolicyYear,
		Channel:          channel,
		Premium:          resp.Premium,
		AppliedRate:      resp.AppliedRate,
		EffectiveRate:    resp.EffectiveRate,
		BaseCommission:   resp.BaseCommission,
		BonusCommission:  resp.BonusCommission,
		TotalCommission:  resp.TotalCommission,
		CapPercent:       resp.CapPercent,
		ComplianceStatus: resp.ComplianceStatus,
		TransactionAt:    resp.AsOf,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		posted, err := s.ledger.PostTx(ctx, tx, row)
		if err != nil {
			return err
		}
		resp.TransactionID = &posted.ID
		return nil
	})
	if err != nil {
		s.log.Error("persist commission transaction", zap.Error(err))
	}
	return err
}

func parseID(raw string, sentinel error) (snowflake.ID, error) {
	if raw == "" {
		return 0, sentinel
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, sentinel
	}
	return id, nil
}
