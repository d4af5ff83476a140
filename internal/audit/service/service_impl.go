package service

import (
	"context"
	"strings"

	auditdomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/audit/domain"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/clock"
	obsmetrics "github.com/JackOfPrompt/policy-pulse-commissions/internal/observability/metrics"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/tenantctx"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const listLimit = 100

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    auditdomain.Repository
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    auditdomain.Repository
	metrics *obsmetrics.Metrics
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("audit.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *Service) Record(ctx context.Context, entry auditdomain.Entry) error {
	if entry.RuleID == 0 {
		return auditdomain.ErrInvalidRule
	}
	if strings.TrimSpace(string(entry.Action)) == "" {
		return auditdomain.ErrInvalidAction
	}

	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return auditdomain.ErrInvalidTenant
	}

	changedBy := "system"
	if actor, ok := tenantctx.ActorFromContext(ctx); ok && strings.TrimSpace(actor.ID) != "" {
		changedBy = strings.TrimSpace(actor.ID)
	}

	row := auditdomain.AuditLog{
		ID:        s.genID.Generate(),
		TenantID:  tenantID,
		RuleID:    entry.RuleID,
		Action:    entry.Action,
		ChangedBy: changedBy,
		ChangedAt: s.clock.Now(),
	}
	if len(entry.OldValues) > 0 {
		row.OldValues = datatypes.JSONMap(entry.OldValues)
	}
	if len(entry.NewValues) > 0 {
		row.NewValues = datatypes.JSONMap(entry.NewValues)
	}
	if notes := strings.TrimSpace(entry.Notes); notes != "" {
		row.Notes = &notes
	}
	if ip := tenantctx.IPAddressFromContext(ctx); ip != "" {
		row.IPAddress = &ip
	}
	if ua := tenantctx.UserAgentFromContext(ctx); ua != "" {
		row.UserAgent = &ua
	}

	if err := s.repo.Insert(ctx, s.db, &row); err != nil {
		s.log.Warn("failed to write audit log",
			zap.String("action", string(entry.Action)),
			zap.String("rule_id", entry.RuleID.String()),
			zap.Error(err),
		)
		s.metrics.RecordAuditFailure(ctx, string(entry.Action))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req auditdomain.ListRequest) ([]auditdomain.AuditLog, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, auditdomain.ErrInvalidTenant
	}

	limit := req.Limit
	if limit <= 0 || limit > listLimit {
		limit = listLimit
	}

	return s.repo.List(ctx, s.db, auditdomain.ListFilter{
		TenantID: tenantID,
		RuleID:   req.RuleID,
		Limit:    limit,
	})
}
