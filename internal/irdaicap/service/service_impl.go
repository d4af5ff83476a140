package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/JackOfPrompt/policy-pulse-commissions/internal/clock"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/irdaicap/domain"
)

// Resolved caps change on regulator cadence, so a short cache window is safe.
const cacheTTL = 5 * time.Minute

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
	Redis *redis.Client `optional:"true"`
}

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
	redis *redis.Client
}

func NewService(p Params) domain.Service {
	return &service{
		db:    p.DB,
		log:   p.Log.Named("irdaicap.service"),
		clock: p.Clock,
		repo:  p.Repo,
		redis: p.Redis,
	}
}

func (s *service) List(ctx context.Context, req domain.ListRequest) ([]domain.CommissionCap, error) {
	filter := domain.ListFilter{Channel: req.Channel, AsOf: s.clock.Now()}
	if req.LOBID != "" {
		lobID, err := snowflake.ParseString(req.LOBID)
		if err != nil {
			return nil, domain.ErrInvalidLOB
		}
		filter.LOBID = lobID
	}
	return s.repo.List(ctx, s.db, filter)
}

func (s *service) Resolve(ctx context.Context, lobID snowflake.ID, policyYear int, asOf time.Time) (*domain.CommissionCap, error) {
	if lobID == 0 {
		return nil, domain.ErrInvalidLOB
	}
	if policyYear < 1 {
		return nil, domain.ErrInvalidYear
	}

	key := cacheKey(lobID, policyYear, asOf)
	if cached := s.fromCache(ctx, key); cached != nil {
		return cached, nil
	}

	resolved, err := s.repo.Resolve(ctx, s.db, lobID, policyYear, asOf)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, key, resolved)
	return resolved, nil
}

func (s *service) Upsert(ctx context.Context, row *domain.CommissionCap) error {
	if row == nil || row.LOBID == 0 || row.MaxCommissionPercent < 0 || row.MaxCommissionPercent > 100 {
		return domain.ErrInvalidCap
	}
	if row.PolicyYear < 1 {
		row.PolicyYear = 1
	}
	return s.repo.Upsert(ctx, s.db, row)
}

func cacheKey(lobID snowflake.ID, policyYear int, asOf time.Time) string {
	return fmt.Sprintf("irdai:cap:%s:%d:%s", lobID, policyYear, asOf.UTC().Format("2006-01-02"))
}

func (s *service) fromCache(ctx context.Context, key string) *domain.CommissionCap {
	if s.redis == nil {
		return nil
	}
	raw, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var row domain.CommissionCap
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil
	}
	return &row
}

func (s *service) toCache(ctx context.Context, key string, row *domain.CommissionCap) {
	if s.redis == nil || row == nil {
		return
	}
	raw, err := json.Marshal(row)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, raw, cacheTTL).Err(); err != nil {
		s.log.Debug("cap cache write failed", zap.Error(err))
	}
}
