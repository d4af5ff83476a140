package service

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/JackOfPrompt/policy-pulse-commissions/internal/clock"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/report/domain"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/tenantctx"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func NewService(p Params) domain.Service {
	return &service{
		db:    p.DB,
		log:   p.Log.Named("report.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *service) CommissionReport(ctx context.Context, period *domain.Period) (*domain.Report, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}

	window := domain.QuarterOf(s.clock.Now())
	if period != nil {
		if !period.To.After(period.From) {
			return nil, domain.ErrInvalidPeriod
		}
		window = *period
	}

	total, count, err := s.repo.Total(ctx, s.db, tenantID, window)
	if err != nil {
		s.log.Error("report total", zap.Error(err))
		return nil, err
	}

	byLOB, err := s.repo.SumByLOB(ctx, s.db, tenantID, window)
	if err != nil {
		return nil, err
	}
	byRuleType, err := s.repo.SumByRuleType(ctx, s.db, tenantID, window)
	if err != nil {
		return nil, err
	}

	report := &domain.Report{
		PeriodFrom:       window.From,
		PeriodTo:         window.To,
		TotalCommission:  total,
		TransactionCount: count,
		ByLOB:            map[string]float64{},
		ByRuleType:       map[string]float64{},
	}
	for _, row := range byLOB {
		report.ByLOB[row.Name] = row.Amount
	}
	for _, row := range byRuleType {
		if row.RuleType == "" {
			continue
		}
		share := 0.0
		if total > 0 {
			share = row.Amount / total * 100
		}
		report.ByRuleType[row.RuleType] = share
	}
	return report, nil
}
