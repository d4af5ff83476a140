package service

import (
	"context"
	"errors"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	calcdomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/calculation/domain"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/clock"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/compliance/domain"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/config"
	capdomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/irdaicap/domain"
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
	Compliance *config.ComplianceConfigHolder
}

type service struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	rules      ruledomain.Repository
	caps       capdomain.Service
	compliance *config.ComplianceConfigHolder
}

func NewService(p Params) domain.Service {
	return &service{
		db:         p.DB,
		log:        p.Log.Named("compliance.service"),
		clock:      p.Clock,
		rules:      p.Rules,
		caps:       p.Caps,
		compliance: p.Compliance,
	}
}

func (s *service) Alerts(ctx context.Context) ([]domain.Alert, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}

	rules, err := s.rules.List(ctx, s.db, ruledomain.ListFilter{
		TenantID: tenantID,
		Status:   ruledomain.StatusActive,
	})
	if err != nil {
		s.log.Error("load rules for compliance scan", zap.Error(err))
		return nil, err
	}

	now := s.clock.Now()
	threshold := s.compliance.Get().HighSeverityExcess

	alerts := []domain.Alert{}
	for i := range rules {
		rule := rules[i]
		rate, ok := calcdomain.MaxConfiguredRate(rule)
		if !ok {
			continue
		}

		resolved, err := s.caps.Resolve(ctx, rule.LOBID, rule.PolicyYear, now)
		if err != nil {
			if errors.Is(err, capdomain.ErrNoCap) {
				// Uncapped line of business, nothing to flag.
				continue
			}
			return nil, err
		}
		if rate <= resolved.MaxCommissionPercent {
			continue
		}

		names, err := s.rules.Names(ctx, s.db, &rule)
		if err != nil {
			return nil, err
		}

		excess := rate - resolved.MaxCommissionPercent
		severity := domain.SeverityMedium
		if excess > threshold {
			severity = domain.SeverityHigh
		}
		alerts = append(alerts, domain.Alert{
			RuleID:        rule.ID,
			RuleType:      string(rule.RuleType),
			InsurerName:   names.InsurerName,
			ProductName:   names.ProductName,
			LOBName:       names.LOBName,
			PolicyYear:    rule.PolicyYear,
			CurrentRate:   rate,
			MaxAllowed:    resolved.MaxCommissionPercent,
			Excess:        excess,
			Severity:      severity,
			RegulationRef: resolved.RegulationRef,
		})
	}
	return alerts, nil
}
