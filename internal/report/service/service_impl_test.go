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
	ledgerdomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/ledger/domain"
	referencedomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/reference/domain"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/report/domain"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/report/repository"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/tenantctx"
)

// A date firmly inside Q2.
var now = time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC)

type fixture struct {
	db       *gorm.DB
	node     *snowflake.Node
	svc      domain.Service
	tenantID snowflake.ID
	ctx      context.Context
	healthID snowflake.ID
	motorID  snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&ledgerdomain.CommissionTransaction{},
		&referencedomain.LineOfBusiness{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(now),
		Repo:  repository.Provide(),
	})

	tenantID := node.Generate()
	healthID := node.Generate()
	motorID := node.Generate()
	require.NoError(t, db.Create(&referencedomain.LineOfBusiness{ID: healthID, Code: "health", Name: "Health", IsActive: true}).Error)
	require.NoError(t, db.Create(&referencedomain.LineOfBusiness{ID: motorID, Code: "motor", Name: "Motor", IsActive: true}).Error)

	return &fixture{
		db:       db,
		node:     node,
		svc:      svc,
		tenantID: tenantID,
		ctx:      tenantctx.WithTenantID(context.Background(), int64(tenantID)),
		healthID: healthID,
		motorID:  motorID,
	}
}

func (f *fixture) seedTx(t *testing.T, lobID snowflake.ID, ruleType string, amount float64, at time.Time, status ledgerdomain.Status) {
	t.Helper()
	require.NoError(t, f.db.Create(&ledgerdomain.CommissionTransaction{
		ID:              f.node.Generate(),
		TenantID:        f.tenantID,
		InsurerID:       f.node.Generate(),
		ProductID:       f.node.Generate(),
		LOBID:           lobID,
		RuleType:        ruleType,
		PolicyYear:      1,
		Premium:         amount * 10,
		TotalCommission: amount,
		Status:          status,
		Checksum:        f.node.Generate().String(),
		TransactionAt:   at,
	}).Error)
}

func TestCommissionReport_QuarterRollup(t *testing.T) {
	f := newFixture(t)

	f.seedTx(t, f.healthID, "Fixed", 3000, now, ledgerdomain.StatusSettled)
	f.seedTx(t, f.healthID, "Slab", 1000, now.AddDate(0, 0, -10), ledgerdomain.StatusSettled)
	f.seedTx(t, f.motorID, "Fixed", 1000, now.AddDate(0, 0, 5), ledgerdomain.StatusSettled)
	// Voided rows and rows outside the quarter are excluded.
	f.seedTx(t, f.motorID, "Fixed", 900, now, ledgerdomain.StatusVoided)
	f.seedTx(t, f.healthID, "Fixed", 800, now.AddDate(0, -4, 0), ledgerdomain.StatusSettled)

	report, err := f.svc.CommissionReport(f.ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), report.PeriodFrom)
	assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), report.PeriodTo)
	assert.Equal(t, 5000.0, report.TotalCommission)
	assert.Equal(t, int64(3), report.TransactionCount)

	assert.Equal(t, 4000.0, report.ByLOB["Health"])
	assert.Equal(t, 1000.0, report.ByLOB["Motor"])

	// Rule-type shares are percentages of the period total.
	assert.InDelta(t, 80.0, report.ByRuleType["Fixed"], 1e-9)
	assert.InDelta(t, 20.0, report.ByRuleType["Slab"], 1e-9)
}

func TestCommissionReport_ExplicitPeriod(t *testing.T) {
	f := newFixture(t)

	f.seedTx(t, f.healthID, "Fixed", 1000, now, ledgerdomain.StatusSettled)
	f.seedTx(t, f.healthID, "Fixed", 700, now.AddDate(0, -4, 0), ledgerdomain.StatusSettled)

	report, err := f.svc.CommissionReport(f.ctx, &domain.Period{
		From: now.AddDate(0, -6, 0),
		To:   now.AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	assert.Equal(t, 1700.0, report.TotalCommission)
	assert.Equal(t, int64(2), report.TransactionCount)
}

func TestCommissionReport_EmptyPeriod(t *testing.T) {
	f := newFixture(t)

	report, err := f.svc.CommissionReport(f.ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, 0.0, report.TotalCommission)
	assert.Equal(t, int64(0), report.TransactionCount)
	assert.Empty(t, report.ByRuleType)
}

func TestCommissionReport_InvalidPeriod(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CommissionReport(f.ctx, &domain.Period{From: now, To: now})
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

func TestCommissionReport_TenantIsolation(t *testing.T) {
	f := newFixture(t)
	f.seedTx(t, f.healthID, "Fixed", 1000, now, ledgerdomain.StatusSettled)

	otherCtx := tenantctx.WithTenantID(context.Background(), int64(f.node.Generate()))
	report, err := f.svc.CommissionReport(otherCtx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, report.TotalCommission)

	_, err = f.svc.CommissionReport(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidTenant)
}
