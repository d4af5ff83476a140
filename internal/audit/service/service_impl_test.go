package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/audit/domain"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/audit/repository"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/clock"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/tenantctx"
)

var start = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func newService(t *testing.T) (auditdomain.Service, *clock.FakeClock, *snowflake.Node, context.Context) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&auditdomain.AuditLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(start)

	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  repository.Provide(),
	})

	ctx := tenantctx.WithTenantID(context.Background(), int64(node.Generate()))
	return svc, fake, node, ctx
}

func TestRecordAndList_NewestFirst(t *testing.T) {
	svc, fake, node, ctx := newService(t)
	ruleID := node.Generate()

	actorCtx := tenantctx.WithActor(ctx, tenantctx.Actor{ID: "usr_maker"})

	require.NoError(t, svc.Record(actorCtx, auditdomain.Entry{
		RuleID:    ruleID,
		Action:    auditdomain.ActionCreate,
		NewValues: map[string]any{"rule_type": "Fixed", "base_rate": 15.0},
	}))

	fake.Advance(time.Minute)
	require.NoError(t, svc.Record(actorCtx, auditdomain.Entry{
		RuleID:    ruleID,
		Action:    auditdomain.ActionUpdate,
		OldValues: map[string]any{"base_rate": 15.0},
		NewValues: map[string]any{"base_rate": 12.0},
	}))

	logs, err := svc.List(ctx, auditdomain.ListRequest{RuleID: &ruleID})
	require.NoError(t, err)
	require.Len(t, logs, 2)

	assert.Equal(t, auditdomain.ActionUpdate, logs[0].Action)
	assert.Equal(t, auditdomain.ActionCreate, logs[1].Action)
	assert.Equal(t, "usr_maker", logs[0].ChangedBy)
	assert.Equal(t, 12.0, numval(t, logs[0].NewValues["base_rate"]))
	assert.Equal(t, 15.0, numval(t, logs[0].OldValues["base_rate"]))
	assert.Equal(t, 15.0, numval(t, logs[1].NewValues["base_rate"]))
}

// numval unwraps a snapshot number; JSONMap reads them back as json.Number.
func numval(t *testing.T, v any) float64 {
	t.Helper()
	n, ok := v.(json.Number)
	require.Truef(t, ok, "expected json.Number, got %T", v)
	f, err := n.Float64()
	require.NoError(t, err)
	return f
}

func TestRecord_Validation(t *testing.T) {
	svc, _, node, ctx := newService(t)

	err := svc.Record(ctx, auditdomain.Entry{Action: auditdomain.ActionCreate})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidRule)

	err = svc.Record(ctx, auditdomain.Entry{RuleID: node.Generate()})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidAction)

	err = svc.Record(context.Background(), auditdomain.Entry{
		RuleID: node.Generate(),
		Action: auditdomain.ActionCreate,
	})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidTenant)
}

func TestRecord_DefaultsActorToSystem(t *testing.T) {
	svc, _, node, ctx := newService(t)
	ruleID := node.Generate()

	require.NoError(t, svc.Record(ctx, auditdomain.Entry{
		RuleID: ruleID,
		Action: auditdomain.ActionDelete,
	}))

	logs, err := svc.List(ctx, auditdomain.ListRequest{RuleID: &ruleID})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "system", logs[0].ChangedBy)
}

func TestList_CapsPageSize(t *testing.T) {
	svc, fake, node, ctx := newService(t)
	ruleID := node.Generate()

	for i := 0; i < 120; i++ {
		require.NoError(t, svc.Record(ctx, auditdomain.Entry{
			RuleID: ruleID,
			Action: auditdomain.ActionUpdate,
		}))
		fake.Advance(time.Second)
	}

	logs, err := svc.List(ctx, auditdomain.ListRequest{RuleID: &ruleID})
	require.NoError(t, err)
	assert.Len(t, logs, 100)

	logs, err = svc.List(ctx, auditdomain.ListRequest{RuleID: &ruleID, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, logs, 10)

	// Requests above the cap are clamped, not honored.
	logs, err = svc.List(ctx, auditdomain.ListRequest{RuleID: &ruleID, Limit: 500})
	require.NoError(t, err)
	assert.Len(t, logs, 100)
}

func TestList_TenantIsolation(t *testing.T) {
	svc, _, node, ctx := newService(t)
	ruleID := node.Generate()

	require.NoError(t, svc.Record(ctx, auditdomain.Entry{
		RuleID: ruleID,
		Action: auditdomain.ActionCreate,
	}))

	otherCtx := tenantctx.WithTenantID(context.Background(), int64(node.Generate()))
	logs, err := svc.List(otherCtx, auditdomain.ListRequest{RuleID: &ruleID})
	require.NoError(t, err)
	assert.Empty(t, logs)
}
