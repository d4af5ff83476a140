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
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/ledger/domain"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/ledger/repository"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/tenantctx"
)

var postedAt = time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node, context.Context) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.CommissionTransaction{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(postedAt),
		Repo:  repository.Provide(),
	})

	ctx := tenantctx.WithTenantID(context.Background(), int64(node.Generate()))
	return svc, db, node, ctx
}

func sampleTx(node *snowflake.Node) *domain.CommissionTransaction {
	return &domain.CommissionTransaction{
		InsurerID:        node.Generate(),
		ProductID:        node.Generate(),
		LOBID:            node.Generate(),
		RuleType:         "Fixed",
		PolicyYear:       1,
		Premium:          20000,
		AppliedRate:      15,
		EffectiveRate:    15,
		BaseCommission:   3000,
		TotalCommission:  3000,
		CapPercent:       15,
		ComplianceStatus: "Within Limit",
		TransactionAt:    postedAt,
	}
}

func TestPost_FillsDefaults(t *testing.T) {
	svc, _, node, ctx := newService(t)

	posted, err := svc.Post(ctx, sampleTx(node))
	require.NoError(t, err)

	assert.NotZero(t, posted.ID)
	assert.NotZero(t, posted.TenantID)
	assert.Equal(t, domain.StatusSettled, posted.Status)
	assert.NotEmpty(t, posted.Checksum)
}

func TestPost_SameChecksumSettlesOnce(t *testing.T) {
	svc, db, node, ctx := newService(t)

	first, err := svc.Post(ctx, sampleTx(node))
	require.NoError(t, err)

	// Re-post with the same economic fields and reference IDs.
	tx := sampleTx(node)
	tx.InsurerID = first.InsurerID
	tx.ProductID = first.ProductID
	tx.LOBID = first.LOBID

	second, err := svc.Post(ctx, tx)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&domain.CommissionTransaction{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPost_DistinctAmountsAreDistinctRows(t *testing.T) {
	svc, db, node, ctx := newService(t)

	first, err := svc.Post(ctx, sampleTx(node))
	require.NoError(t, err)

	tx := sampleTx(node)
	tx.InsurerID = first.InsurerID
	tx.ProductID = first.ProductID
	tx.LOBID = first.LOBID
	tx.Premium = 30000
	tx.TotalCommission = 4500

	second, err := svc.Post(ctx, tx)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&domain.CommissionTransaction{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestPost_Validation(t *testing.T) {
	svc, _, node, ctx := newService(t)

	_, err := svc.Post(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidTransaction)

	bad := sampleTx(node)
	bad.Premium = -5
	_, err = svc.Post(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidTransaction)

	_, err = svc.Post(context.Background(), sampleTx(node))
	assert.ErrorIs(t, err, domain.ErrInvalidTenant)
}

func TestList_FiltersByPeriodAndLOB(t *testing.T) {
	svc, _, node, ctx := newService(t)

	first, err := svc.Post(ctx, sampleTx(node))
	require.NoError(t, err)

	old := sampleTx(node)
	old.TransactionAt = postedAt.AddDate(-1, 0, 0)
	_, err = svc.Post(ctx, old)
	require.NoError(t, err)

	rows, err := svc.List(ctx, domain.ListRequest{
		From: postedAt.AddDate(0, -1, 0),
		To:   postedAt.AddDate(0, 1, 0),
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, first.ID, rows[0].ID)

	otherLOB := node.Generate()
	rows, err = svc.List(ctx, domain.ListRequest{
		From:  postedAt.AddDate(0, -1, 0),
		To:    postedAt.AddDate(0, 1, 0),
		LOBID: &otherLOB,
	})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestChecksum_Deterministic(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	tx := sampleTx(node)
	tx.TenantID = node.Generate()

	a := Checksum(tx)
	b := Checksum(tx)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	tx.TotalCommission++
	assert.NotEqual(t, a, Checksum(tx))
}
