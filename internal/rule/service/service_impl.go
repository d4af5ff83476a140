package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/audit/domain"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/clock"
	obsmetrics "github.com/JackOfPrompt/policy-pulse-commissions/internal/observability/metrics"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/rule/domain"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/tenantctx"
	"github.com/JackOfPrompt/policy-pulse-commissions/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Audit   auditdomain.Service
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	audit   auditdomain.Service
	metrics *obsmetrics.Metrics
}

func NewService(p Params) domain.Service {
	return &service{
		db:      p.DB,
		log:     p.Log.Named("rule.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		audit:   p.Audit,
		metrics: p.Metrics,
	}
}

func (s *service) tenantID(ctx context.Context) (snowflake.ID, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return 0, domain.ErrInvalidTenant
	}
	return tenantID, nil
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

const (
	defaultPageSize = 50
	maxPageSize     = 250
)

func (s *service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	var resp domain.ListResponse

	tenantID, err := s.tenantID(ctx)
	if err != nil {
		return resp, err
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	status := req.Status
	if status == "" {
		status = domain.StatusActive
	}

	filter := domain.ListFilter{
		TenantID: tenantID,
		RuleType: req.RuleType,
		Status:   status,
		Limit:    pageSize + 1,
	}
	if req.InsurerID != "" {
		if filter.InsurerID, err = parseID(req.InsurerID, domain.ErrInvalidInsurer); err != nil {
			return resp, err
		}
	}
	if req.ProductID != "" {
		if filter.ProductID, err = parseID(req.ProductID, domain.ErrInvalidProduct); err != nil {
			return resp, err
		}
	}
	if req.LOBID != "" {
		if filter.LOBID, err = parseID(req.LOBID, domain.ErrInvalidLOB); err != nil {
			return resp, err
		}
	}
	if req.RuleType != "" && !req.RuleType.Valid() {
		return resp, domain.ErrInvalidRuleType
	}
	if req.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return resp, domain.ErrInvalidPageToken
		}
		if filter.Cursor, err = snowflake.ParseString(cursor.ID); err != nil {
			return resp, domain.ErrInvalidPageToken
		}
	}

	rules, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		s.log.Error("list commission rules", zap.Error(err))
		return resp, err
	}

	page := make([]*domain.RuleResponse, 0, len(rules))
	for i := range rules {
		enriched, err := s.withNames(ctx, &rules[i])
		if err != nil {
			return resp, err
		}
		page = append(page, enriched)
	}

	pageInfo := pagination.BuildCursorPageInfo(page, pageSize, func(r *domain.RuleResponse) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        r.ID.String(),
			CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
		})
		return token
	})
	if len(page) > pageSize {
		page = page[:pageSize]
	}

	resp.PageInfo = *pageInfo
	resp.Rules = make([]domain.RuleResponse, 0, len(page))
	for _, r := range page {
		resp.Rules = append(resp.Rules, *r)
	}
	return resp, nil
}

func (s *service) Get(ctx context.Context, id string) (*domain.RuleResponse, error) {
	tenantID, err := s.tenantID(ctx)
	if err != nil {
		return nil, err
	}
	ruleID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	rule, err := s.repo.FindByID(ctx, s.db, tenantID, ruleID)
	if err != nil {
		return nil, err
	}
	return s.withNames(ctx, rule)
}

func (s *service) Create(ctx context.Context, req domain.CreateRequest) (*domain.RuleResponse, error) {
	tenantID, err := s.tenantID(ctx)
	if err != nil {
		return nil, err
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
	if !req.RuleType.Valid() {
		return nil, domain.ErrInvalidRuleType
	}

	now := s.clock.Now()
	policyYear := req.PolicyYear
	if policyYear == 0 {
		policyYear = 1
	}
	if policyYear < 1 {
		return nil, domain.ErrInvalidPolicyYear
	}
	validFrom := now
	if req.ValidFrom != nil {
		validFrom = *req.ValidFrom
	}
	if req.ValidTo != nil && !req.ValidTo.After(validFrom) {
		return nil, domain.ErrInvalidValidity
	}

	rule := &domain.CommissionRule{
		ID:         s.genID.Generate(),
		TenantID:   tenantID,
		InsurerID:  insurerID,
		ProductID:  productID,
		LOBID:      lobID,
		RuleType:   req.RuleType,
		BaseRate:   req.BaseRate,
		Channel:    req.Channel,
		PolicyYear: policyYear,
		ValidFrom:  validFrom,
		ValidTo:    req.ValidTo,
		Status:     domain.StatusActive,
		CreatedBy:  actorName(ctx),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	switch req.RuleType {
	case domain.RuleTypeFixed:
		if err := validRate(req.BaseRate); err != nil {
			return nil, err
		}
	case domain.RuleTypeSlab:
		slabs, err := s.buildSlabs(rule.ID, req.Slabs)
		if err != nil {
			return nil, err
		}
		rule.Slabs = slabs
	case domain.RuleTypeFlat:
		if req.FlatAmount == nil || *req.FlatAmount < 0 {
			return nil, domain.ErrMissingFlatAmount
		}
		unitType := req.UnitType
		if unitType == "" {
			unitType = "PerPolicy"
		}
		rule.Flat = &domain.CommissionFlat{
			ID:         s.genID.Generate(),
			RuleID:     rule.ID,
			FlatAmount: *req.FlatAmount,
			UnitType:   unitType,
		}
	case domain.RuleTypeCampaign:
		if err := validRate(req.BaseRate); err != nil {
			return nil, err
		}
	}

	// Rule and sub-components land atomically; a failed slab insert
	// must not leave a half-configured rule behind.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.Insert(ctx, tx, rule)
	})
	if err != nil {
		s.log.Error("create commission rule", zap.Error(err))
		return nil, err
	}

	s.recordAudit(ctx, auditdomain.Entry{
		RuleID:    rule.ID,
		Action:    auditdomain.ActionCreate,
		NewValues: snapshot(rule),
	})
	s.metrics.RecordRuleMutation(ctx, string(auditdomain.ActionCreate))

	return s.withNames(ctx, rule)
}

func (s *service) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.RuleResponse, error) {
	tenantID, err := s.tenantID(ctx)
	if err != nil {
		return nil, err
	}
	ruleID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, s.db, tenantID, ruleID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{"updated_at": s.clock.Now()}
	if req.BaseRate != nil {
		if err := validRate(req.BaseRate); err != nil {
			return nil, err
		}
		fields["base_rate"] = *req.BaseRate
	}
	if req.Channel != nil {
		fields["channel"] = *req.Channel
	}
	if req.PolicyYear != nil {
		if *req.PolicyYear < 1 {
			return nil, domain.ErrInvalidPolicyYear
		}
		fields["policy_year"] = *req.PolicyYear
	}
	if req.ValidFrom != nil {
		fields["valid_from"] = *req.ValidFrom
	}
	if req.ValidTo != nil {
		fields["valid_to"] = *req.ValidTo
	}
	if req.Status != nil {
		if *req.Status != domain.StatusActive && *req.Status != domain.StatusInactive {
			return nil, domain.ErrInvalidStatus
		}
		fields["status"] = *req.Status
	}

	if _, err := s.repo.UpdateFields(ctx, s.db, tenantID, ruleID, fields); err != nil {
		s.log.Error("update commission rule", zap.Error(err), zap.String("rule_id", ruleID.String()))
		return nil, err
	}

	updated, err := s.repo.FindByID(ctx, s.db, tenantID, ruleID)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, auditdomain.Entry{
		RuleID:    ruleID,
		Action:    auditdomain.ActionUpdate,
		OldValues: snapshot(existing),
		NewValues: snapshot(updated),
	})
	s.metrics.RecordRuleMutation(ctx, string(auditdomain.ActionUpdate))

	return s.withNames(ctx, updated)
}

func (s *service) Deactivate(ctx context.Context, id string) (*domain.RuleResponse, error) {
	tenantID, err := s.tenantID(ctx)
	if err != nil {
		return nil, err
	}
	ruleID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, s.db, tenantID, ruleID)
	if err != nil {
		return nil, err
	}
	if existing.Status == domain.StatusInactive {
		// Idempotent: deactivating twice is not an error.
		return s.withNames(ctx, existing)
	}

	fields := map[string]any{
		"status":     domain.StatusInactive,
		"updated_at": s.clock.Now(),
	}
	if _, err := s.repo.UpdateFields(ctx, s.db, tenantID, ruleID, fields); err != nil {
		return nil, err
	}

	updated, err := s.repo.FindByID(ctx, s.db, tenantID, ruleID)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, auditdomain.Entry{
		RuleID:    ruleID,
		Action:    auditdomain.ActionDeactivate,
		OldValues: snapshot(existing),
		NewValues: snapshot(updated),
	})
	s.metrics.RecordRuleMutation(ctx, string(auditdomain.ActionDeactivate))

	return s.withNames(ctx, updated)
}

func (s *service) AddBonus(ctx context.Context, id string, bonusType domain.BonusType, req domain.BonusRequest) (*domain.RuleResponse, error) {
	tenantID, err := s.tenantID(ctx)
	if err != nil {
		return nil, err
	}
	ruleID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	if !bonusType.Valid() {
		return nil, domain.ErrInvalidBonusType
	}

	rule, err := s.repo.FindByID(ctx, s.db, tenantID, ruleID)
	if err != nil {
		return nil, err
	}
	if rule.Status != domain.StatusActive {
		return nil, domain.ErrRuleInactive
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch bonusType {
		case domain.BonusTypeRenewal:
			if req.PolicyYear == nil || *req.PolicyYear < 2 || req.RenewalRate == nil {
				return domain.ErrInvalidBonusPayload
			}
			return s.repo.InsertRenewal(ctx, tx, &domain.CommissionRenewal{
				ID:          s.genID.Generate(),
				RuleID:      ruleID,
				PolicyYear:  *req.PolicyYear,
				RenewalRate: *req.RenewalRate,
			})
		case domain.BonusTypeBusinessBonus:
			if req.MinGWP == nil || req.BonusRate == nil {
				return domain.ErrInvalidBonusPayload
			}
			return s.repo.InsertBusinessBonus(ctx, tx, &domain.CommissionBusinessBonus{
				ID:        s.genID.Generate(),
				RuleID:    ruleID,
				MinGWP:    *req.MinGWP,
				MaxGWP:    req.MaxGWP,
				BonusRate: *req.BonusRate,
			})
		case domain.BonusTypeTier:
			if req.TierName == "" || req.MinBusiness == nil || req.ExtraBonus == nil {
				return domain.ErrInvalidBonusPayload
			}
			return s.repo.InsertTier(ctx, tx, &domain.CommissionTier{
				ID:          s.genID.Generate(),
				RuleID:      ruleID,
				TierName:    req.TierName,
				MinBusiness: *req.MinBusiness,
				MaxBusiness: req.MaxBusiness,
				ExtraBonus:  *req.ExtraBonus,
			})
		case domain.BonusTypeCampaign:
			if req.CampaignName == "" || req.BonusRate == nil ||
				req.ValidFrom == nil || req.ValidTo == nil || !req.ValidTo.After(*req.ValidFrom) {
				return domain.ErrInvalidBonusPayload
			}
			return s.repo.InsertTimeBonus(ctx, tx, &domain.CommissionTimeBonus{
				ID:           s.genID.Generate(),
				RuleID:       ruleID,
				CampaignName: req.CampaignName,
				BonusRate:    *req.BonusRate,
				ValidFrom:    *req.ValidFrom,
				ValidTo:      *req.ValidTo,
			})
		default:
			return domain.ErrInvalidBonusType
		}
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.FindByID(ctx, s.db, tenantID, ruleID)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, auditdomain.Entry{
		RuleID:    ruleID,
		Action:    auditdomain.ActionAddBonus,
		OldValues: snapshot(rule),
		NewValues: snapshot(updated),
		Notes:     string(bonusType),
	})
	s.metrics.RecordRuleMutation(ctx, string(auditdomain.ActionAddBonus))

	return s.withNames(ctx, updated)
}

func (s *service) Delete(ctx context.Context, id string) error {
	tenantID, err := s.tenantID(ctx)
	if err != nil {
		return err
	}
	ruleID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}

	existing, err := s.repo.FindByID(ctx, s.db, tenantID, ruleID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.Delete(ctx, tx, tenantID, ruleID)
	})
	if err != nil {
		s.log.Error("delete commission rule", zap.Error(err), zap.String("rule_id", ruleID.String()))
		return err
	}

	s.recordAudit(ctx, auditdomain.Entry{
		RuleID:    ruleID,
		Action:    auditdomain.ActionDelete,
		OldValues: snapshot(existing),
	})
	s.metrics.RecordRuleMutation(ctx, string(auditdomain.ActionDelete))
	return nil
}

func (s *service) buildSlabs(ruleID snowflake.ID, inputs []domain.SlabInput) ([]domain.CommissionSlab, error) {
	if len(inputs) == 0 {
		return nil, domain.ErrMissingSlabs
	}
	slabs := make([]domain.CommissionSlab, 0, len(inputs))
	for _, in := range inputs {
		if in.MinValue < 0 || in.Rate < 0 || in.Rate > 100 {
			return nil, domain.ErrInvalidSlab
		}
		if in.MaxValue != nil && *in.MaxValue <= in.MinValue {
			return nil, domain.ErrInvalidSlab
		}
		slabType := in.SlabType
		if slabType == "" {
			slabType = "Premium"
		}
		slabs = append(slabs, domain.CommissionSlab{
			ID:       s.genID.Generate(),
			RuleID:   ruleID,
			MinValue: in.MinValue,
			MaxValue: in.MaxValue,
			Rate:     in.Rate,
			SlabType: slabType,
		})
	}

	sort.Slice(slabs, func(i, j int) bool { return slabs[i].MinValue < slabs[j].MinValue })
	for i := 1; i < len(slabs); i++ {
		prev := slabs[i-1]
		if prev.MaxValue == nil || *prev.MaxValue > slabs[i].MinValue {
			return nil, domain.ErrOverlappingSlabs
		}
	}
	return slabs, nil
}

func (s *service) withNames(ctx context.Context, rule *domain.CommissionRule) (*domain.RuleResponse, error) {
	names, err := s.repo.Names(ctx, s.db, rule)
	if err != nil {
		return nil, err
	}
	return &domain.RuleResponse{
		CommissionRule: *rule,
		InsurerName:    names.InsurerName,
		ProductName:    names.ProductName,
		LOBName:        names.LOBName,
	}, nil
}

// recordAudit is best effort. The audit service already logs and counts
// failures; the primary mutation must not roll back over a missing log row.
func (s *service) recordAudit(ctx context.Context, entry auditdomain.Entry) {
	_ = s.audit.Record(ctx, entry)
}

func actorName(ctx context.Context) string {
	if actor, ok := tenantctx.ActorFromContext(ctx); ok && actor.ID != "" {
		return actor.ID
	}
	return "system"
}

func validRate(rate *float64) error {
	if rate == nil || *rate < 0 || *rate > 100 {
		return domain.ErrInvalidBaseRate
	}
	return nil
}

func snapshot(rule *domain.CommissionRule) map[string]any {
	raw, err := json.Marshal(rule)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
