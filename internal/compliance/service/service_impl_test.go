package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/JackOfPrompt/policy-pulse-commissions/internal/clock"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/compliance/domain"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/config"
	capdomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/irdaicap/domain"
	caprepository "github.com/JackOfPrompt/policy-pulse-commissions/internal/irdaicap/repository"
	capservice "github.com/JackOfPrompt/policy-pulse-commissions/internal/irdaicap/service"
	referencedomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/reference/domain"
	ruledomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/rule/domain"
	rulerepository "github.com/JackOfPrompt/policy-pulse-commissions/internal/rule/repository"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/tenantctx"
)

var now = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	db       *gorm.DB
	node     *snowflake.Node
	svc      domain.Service
	tenantID snowflake.ID
	ctx      context.Context
	lobID    snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&ruledomain.CommissionRule{},
		&ruledomain.CommissionSlab{},
		&ruledomain.CommissionFlat{},
		&ruledomain.CommissionRenewal{},
		&ruledomain.CommissionBusinessBonus{},
		&ruledomain.CommissionTier{},
		&ruledomain.CommissionTimeBonus{},
		&capdomain.CommissionCap{},
		&referencedomain.Insurer{},
		&referencedomain.LineOfBusiness{},
		&referencedomain.InsuranceProduct{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zap.NewNop()
	fake := clock.NewFakeClock(now)

	caps := capservice.NewService(capservice.Params{
		DB:    db,
		Log:   log,
		Clock: fake,
		Repo:  caprepository.Provide(),
	})

	svc := NewService(Params{
		DB:         db,
		Log:        log,
		Clock:      fake,
		Rules:      rulerepository.Provide(),
		Caps:       caps,
		Compliance: config.NewStaticComplianceConfigHolder(config.DefaultComplianceConfig()),
	})

	tenantID := node.Generate()
	lobID := node.Generate()
	require.NoError(t, db.Create(&referencedomain.LineOfBusiness{
		ID: lobID, Code: "health", Name: "Health", IsActive: true,
	}).Error)

	return &fixture{
		db:       db,
		node:     node,
		svc:      svc,
		tenantID: tenantID,
		ctx:      tenantctx.WithTenantID(context.Background(), int64(tenantID)),
		lobID:    lobID,
	}
}

func f64(v float64) *float64 { return &v }

func (f *fixture) seedRule(t *testing.T, ruleType ruledomain.RuleType, baseRate *float64, slabs []ruledomain.CommissionSlab) *ruledomain.CommissionRule {
	t.Helper()
	rule := &ruledomain.CommissionRule{
		ID:         f.node.Generate(),
		TenantID:   f.tenantID,
		InsurerID:  f.node.Generate(),
		ProductID:  f.node.Generate(),
		LOBID:      f.lobID,
		RuleType:   ruleType,
		BaseRate:   baseRate,
		PolicyYear: 1,
		ValidFrom:  now.AddDate(-1, 0, 0),
		Status:     ruledomain.StatusActive,
	}
	for i := range slabs {
		slabs[i].ID = f.node.Generate()
		slabs[i].RuleID = rule.ID
	}
	rule.Slabs = slabs
	require.NoError(t, f.db.Create(rule).Error)
	return rule
}

func (f *fixture) seedCap(t *testing.T, max float64) {
	t.Helper()
	require.NoError(t, f.db.Create(&capdomain.CommissionCap{
		ID:                   f.node.Generate(),
		LOBID:                f.lobID,
		PolicyYear:           1,
		MaxCommissionPercent: max,
		RegulationRef:        "IRDAI/Reg/2023/health",
		EffectiveFrom:        now.AddDate(-2, 0, 0),
	}).Error)
}

func TestAlerts_SeverityBoundary(t *testing.T) {
	f := newFixture(t)
	f.seedCap(t, 15)

	// Excess of exactly 5 points stays medium; anything above is high.
	medium := f.seedRule(t, ruledomain.RuleTypeFixed, f64(20), nil)
	high := f.seedRule(t, ruledomain.RuleTypeFixed, f64(20.5), nil)

	alerts, err := f.svc.Alerts(f.ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	byRule := map[snowflake.ID]domain.Alert{}
	for _, a := range alerts {
		byRule[a.RuleID] = a
	}

	assert.Equal(t, domain.SeverityMedium, byRule[medium.ID].Severity)
	assert.Equal(t, 5.0, byRule[medium.ID].Excess)
	assert.Equal(t, domain.SeverityHigh, byRule[high.ID].Severity)
	assert.Equal(t, "IRDAI/Reg/2023/health", byRule[high.ID].RegulationRef)
	assert.Equal(t, "Health", byRule[high.ID].LOBName)
}

func TestAlerts_CompliantRuleNotFlagged(t *testing.T) {
	f := newFixture(t)
	f.seedCap(t, 15)
	f.seedRule(t, ruledomain.RuleTypeFixed, f64(15), nil)

	alerts, err := f.svc.Alerts(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestAlerts_NoCapNeverFlags(t *testing.T) {
	f := newFixture(t)
	f.seedRule(t, ruledomain.RuleTypeFixed, f64(60), nil)

	alerts, err := f.svc.Alerts(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestAlerts_FlatRulesSkipped(t *testing.T) {
	f := newFixture(t)
	f.seedCap(t, 15)

	rule := &ruledomain.CommissionRule{
		ID:         f.node.Generate(),
		TenantID:   f.tenantID,
		InsurerID:  f.node.Generate(),
		ProductID:  f.node.Generate(),
		LOBID:      f.lobID,
		RuleType:   ruledomain.RuleTypeFlat,
		PolicyYear: 1,
		ValidFrom:  now.AddDate(-1, 0, 0),
		Status:     ruledomain.StatusActive,
		Flat: &ruledomain.CommissionFlat{
			ID:         f.node.Generate(),
			FlatAmount: 100000,
		},
	}
	rule.Flat.RuleID = rule.ID
	require.NoError(t, f.db.Create(rule).Error)

	alerts, err := f.svc.Alerts(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestAlerts_SlabUsesHighestBracketRate(t *testing.T) {
	f := newFixture(t)
	f.seedCap(t, 15)

	f.seedRule(t, ruledomain.RuleTypeSlab, nil, []ruledomain.CommissionSlab{
		{MinValue: 0, MaxValue: f64(50000), Rate: 10},
		{MinValue: 50000, MaxValue: nil, Rate: 18},
	})

	alerts, err := f.svc.Alerts(f.ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, 18.0, alerts[0].CurrentRate)
	assert.Equal(t, 15.0, alerts[0].MaxAllowed)
	assert.Equal(t, domain.SeverityMedium, alerts[0].Severity)
}

func TestAlerts_RequiresTenant(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Alerts(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidTenant)
}
