package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/JackOfPrompt/policy-pulse-commissions/internal/audit"
	auditdomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/audit/domain"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/authorization"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/calculation"
	calcdomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/calculation/domain"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/compliance"
	compliancedomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/compliance/domain"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/config"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/irdaicap"
	capdomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/irdaicap/domain"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/ledger"
	ledgerdomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/ledger/domain"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/observability"
	obsmiddleware "github.com/JackOfPrompt/policy-pulse-commissions/internal/observability/logger"
	obsmetrics "github.com/JackOfPrompt/policy-pulse-commissions/internal/observability/metrics"
	obstracing "github.com/JackOfPrompt/policy-pulse-commissions/internal/observability/tracing"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/ratelimit"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/reference"
	referencedomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/reference/domain"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/report"
	reportdomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/report/domain"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/rule"
	ruledomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/rule/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	audit.Module,
	reference.Module,
	rule.Module,
	irdaicap.Module,
	calculation.Module,
	compliance.Module,
	ledger.Module,
	report.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	db             *gorm.DB
	genID          *snowflake.Node
	authzSvc       authorization.Service
	ruleSvc        ruledomain.Service
	capSvc         capdomain.Service
	calculationSvc calcdomain.Service
	complianceSvc  compliancedomain.Service
	auditSvc       auditdomain.Service
	ledgerSvc      ledgerdomain.Service
	reportSvc      reportdomain.Service
	refRepo        referencedomain.Repository
	calcLimiter    *ratelimit.CalculateLimiter
	obsMetrics     *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	DB             *gorm.DB
	GenID          *snowflake.Node
	AuthzSvc       authorization.Service
	RuleSvc        ruledomain.Service
	CapSvc         capdomain.Service
	CalculationSvc calcdomain.Service
	ComplianceSvc  compliancedomain.Service
	AuditSvc       auditdomain.Service
	LedgerSvc      ledgerdomain.Service
	ReportSvc      reportdomain.Service
	RefRepo        referencedomain.Repository
	CalcLimiter    *ratelimit.CalculateLimiter `optional:"true"`
	ObsMetrics     *obsmetrics.Metrics         `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		db:             p.DB,
		genID:          p.GenID,
		authzSvc:       p.AuthzSvc,
		ruleSvc:        p.RuleSvc,
		capSvc:         p.CapSvc,
		calculationSvc: p.CalculationSvc,
		complianceSvc:  p.ComplianceSvc,
		auditSvc:       p.AuditSvc,
		ledgerSvc:      p.LedgerSvc,
		reportSvc:      p.ReportSvc,
		refRepo:        p.RefRepo,
		calcLimiter:    p.CalcLimiter,
		obsMetrics:     p.ObsMetrics,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1", s.TenantContext())

	rules := api.Group("/rules")
	rules.GET("", s.RequireAuthz(authorization.ObjectCommissionRule, authorization.ActionRuleView), s.ListRules)
	rules.POST("", s.RequireAuthz(authorization.ObjectCommissionRule, authorization.ActionRuleCreate), s.CreateRule)
	rules.GET("/:id", s.RequireAuthz(authorization.ObjectCommissionRule, authorization.ActionRuleView), s.GetRule)
	rules.PUT("/:id", s.RequireAuthz(authorization.ObjectCommissionRule, authorization.ActionRuleUpdate), s.UpdateRule)
	rules.PATCH("/:id/deactivate", s.RequireAuthz(authorization.ObjectCommissionRule, authorization.ActionRuleDeactivate), s.DeactivateRule)
	rules.DELETE("/:id", s.RequireAuthz(authorization.ObjectCommissionRule, authorization.ActionRuleDelete), s.DeleteRule)
	rules.POST("/:id/bonuses/:bonus_type", s.RequireAuthz(authorization.ObjectCommissionRule, authorization.ActionRuleAddBonus), s.AddRuleBonus)

	api.POST("/calculate", s.RequireAuthz(authorization.ObjectCalculation, authorization.ActionCalculationRun), s.Calculate)
	api.GET("/irdai/caps", s.RequireAuthz(authorization.ObjectIRDAICap, authorization.ActionCapView), s.ListCaps)
	api.GET("/compliance/alerts", s.RequireAuthz(authorization.ObjectCompliance, authorization.ActionComplianceView), s.ComplianceAlerts)
	api.GET("/reports/commission", s.RequireAuthz(authorization.ObjectCommissionReport, authorization.ActionReportView), s.CommissionReport)
	api.GET("/audit-logs", s.RequireAuthz(authorization.ObjectAuditLog, authorization.ActionAuditLogView), s.ListAuditLogs)
	api.GET("/transactions", s.RequireAuthz(authorization.ObjectTransaction, authorization.ActionTransactionView), s.ListTransactions)

	api.GET("/insurers", s.ListInsurers)
	api.GET("/lines-of-business", s.ListLinesOfBusiness)
	api.GET("/products", s.ListProducts)
}
