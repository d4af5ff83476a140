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
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/irdaicap/domain"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/irdaicap/repository"
)

var now = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

func newService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.CommissionCap{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(now),
		Repo:  repository.Provide(),
	})
	return svc, db, node
}

func TestResolve_WindowContainment(t *testing.T) {
	svc, db, node := newService(t)
	lobID := node.Generate()

	ended := now.AddDate(-1, 0, 0)
	require.NoError(t, db.Create(&domain.CommissionCap{
		ID:                   node.Generate(),
		LOBID:                lobID,
		PolicyYear:           1,
		MaxCommissionPercent: 20,
		EffectiveFrom:        now.AddDate(-3, 0, 0),
		EffectiveTo:          &ended,
	}).Error)
	require.NoError(t, db.Create(&domain.CommissionCap{
		ID:                   node.Generate(),
		LOBID:                lobID,
		PolicyYear:           1,
		MaxCommissionPercent: 15,
		RegulationRef:        "IRDAI/Reg/2023/health",
		EffectiveFrom:        now.AddDate(-1, 0, 0),
	}).Error)

	resolved, err := svc.Resolve(context.Background(), lobID, 1, now)
	require.NoError(t, err)
	assert.Equal(t, 15.0, resolved.MaxCommissionPercent)
	assert.Equal(t, "IRDAI/Reg/2023/health", resolved.RegulationRef)
}

func TestResolve_TieBreakPrefersLatestEffective(t *testing.T) {
	svc, db, node := newService(t)
	lobID := node.Generate()

	// Both windows contain now; the later effective_from wins.
	require.NoError(t, db.Create(&domain.CommissionCap{
		ID:                   node.Generate(),
		LOBID:                lobID,
		PolicyYear:           1,
		MaxCommissionPercent: 20,
		EffectiveFrom:        now.AddDate(-3, 0, 0),
	}).Error)
	require.NoError(t, db.Create(&domain.CommissionCap{
		ID:                   node.Generate(),
		LOBID:                lobID,
		PolicyYear:           1,
		MaxCommissionPercent: 15,
		EffectiveFrom:        now.AddDate(-1, 0, 0),
	}).Error)

	resolved, err := svc.Resolve(context.Background(), lobID, 1, now)
	require.NoError(t, err)
	assert.Equal(t, 15.0, resolved.MaxCommissionPercent)
}

func TestResolve_NoCap(t *testing.T) {
	svc, _, node := newService(t)

	_, err := svc.Resolve(context.Background(), node.Generate(), 1, now)
	assert.ErrorIs(t, err, domain.ErrNoCap)
}

func TestResolve_PolicyYearIsExact(t *testing.T) {
	svc, db, node := newService(t)
	lobID := node.Generate()

	require.NoError(t, db.Create(&domain.CommissionCap{
		ID:                   node.Generate(),
		LOBID:                lobID,
		PolicyYear:           1,
		MaxCommissionPercent: 15,
		EffectiveFrom:        now.AddDate(-1, 0, 0),
	}).Error)

	_, err := svc.Resolve(context.Background(), lobID, 2, now)
	assert.ErrorIs(t, err, domain.ErrNoCap)
}

func TestList_EffectiveCapsOrderedByYear(t *testing.T) {
	svc, db, node := newService(t)
	lobID := node.Generate()

	require.NoError(t, db.Create(&domain.CommissionCap{
		ID:                   node.Generate(),
		LOBID:                lobID,
		PolicyYear:           2,
		MaxCommissionPercent: 7.5,
		EffectiveFrom:        now.AddDate(-1, 0, 0),
	}).Error)
	require.NoError(t, db.Create(&domain.CommissionCap{
		ID:                   node.Generate(),
		LOBID:                lobID,
		PolicyYear:           1,
		MaxCommissionPercent: 15,
		EffectiveFrom:        now.AddDate(-1, 0, 0),
	}).Error)
	// Not yet effective, must not show up.
	require.NoError(t, db.Create(&domain.CommissionCap{
		ID:                   node.Generate(),
		LOBID:                lobID,
		PolicyYear:           1,
		MaxCommissionPercent: 10,
		EffectiveFrom:        now.AddDate(1, 0, 0),
	}).Error)

	caps, err := svc.List(context.Background(), domain.ListRequest{LOBID: lobID.String()})
	require.NoError(t, err)
	require.Len(t, caps, 2)
	assert.Equal(t, 1, caps[0].PolicyYear)
	assert.Equal(t, 2, caps[1].PolicyYear)
}

func TestUpsert_ValidatesAndReplaces(t *testing.T) {
	svc, db, node := newService(t)
	lobID := node.Generate()

	err := svc.Upsert(context.Background(), &domain.CommissionCap{
		ID:                   node.Generate(),
		LOBID:                lobID,
		PolicyYear:           1,
		MaxCommissionPercent: 120,
		EffectiveFrom:        now,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCap)

	row := &domain.CommissionCap{
		ID:                   node.Generate(),
		LOBID:                lobID,
		PolicyYear:           1,
		MaxCommissionPercent: 15,
		EffectiveFrom:        now,
	}
	require.NoError(t, svc.Upsert(context.Background(), row))

	// Same key updates in place instead of inserting a duplicate.
	row2 := &domain.CommissionCap{
		ID:                   node.Generate(),
		LOBID:                lobID,
		PolicyYear:           1,
		MaxCommissionPercent: 17,
		RegulationRef:        "IRDAI/Reg/2026/revision",
		EffectiveFrom:        now,
	}
	require.NoError(t, svc.Upsert(context.Background(), row2))

	var count int64
	require.NoError(t, db.Model(&domain.CommissionCap{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	resolved, err := svc.Resolve(context.Background(), lobID, 1, now)
	require.NoError(t, err)
	assert.Equal(t, 17.0, resolved.MaxCommissionPercent)
	assert.Equal(t, "IRDAI/Reg/2026/revision", resolved.RegulationRef)
}
