package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/JackOfPrompt/policy-pulse-commissions/internal/clock"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/ledger/domain"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/tenantctx"
	pkgdb "github.com/JackOfPrompt/policy-pulse-commissions/pkg/db"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func NewService(p Params) domain.Service {
	return &service{
		db:    p.DB,
		log:   p.Log.Named("ledger.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *service) Post(ctx context.Context, tx *domain.CommissionTransaction) (*domain.CommissionTransaction, error) {
	return s.PostTx(ctx, s.db, tx)
}

func (s *service) PostTx(ctx context.Context, db *gorm.DB, tx *domain.CommissionTransaction) (*domain.CommissionTransaction, error) {
	if tx == nil || tx.Premium < 0 {
		return nil, domain.ErrInvalidTransaction
	}

	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}
	tx.TenantID = tenantID

	if tx.TransactionAt.IsZero() {
		tx.TransactionAt = s.clock.Now()
	}
	if tx.Status == "" {
		tx.Status = domain.StatusSettled
	}
	if tx.Checksum == "" {
		tx.Checksum = Checksum(tx)
	}

	// Retries of the same calculation settle once.
	existing, err := s.repo.FindByChecksum(ctx, db, tenantID, tx.Checksum)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	tx.ID = s.genID.Generate()
	tx.CreatedAt = s.clock.Now()
	if err := s.repo.Insert(ctx, db, tx); err != nil {
		// Concurrent posts can race past the lookup; the unique checksum
		// index catches the loser, which then adopts the winner's row.
		if pkgdb.IsDuplicateKeyErr(err) {
			if existing, ferr := s.repo.FindByChecksum(ctx, db, tenantID, tx.Checksum); ferr == nil && existing != nil {
				return existing, nil
			}
		}
		s.log.Error("post commission transaction", zap.Error(err))
		return nil, err
	}
	return tx, nil
}

func (s *service) List(ctx context.Context, req domain.ListRequest) ([]domain.CommissionTransaction, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}
	return s.repo.List(ctx, s.db, domain.ListFilter{
		TenantID: tenantID,
		From:     req.From,
		To:       req.To,
		LOBID:    req.LOBID,
		Limit:    req.Limit,
	})
}

// Checksum fingerprints the economically meaningful fields so the same
// settlement posted twice collapses to one row.
func Checksum(tx *domain.CommissionTransaction) string {
	payload := fmt.Sprintf("%d|%d|%d|%d|%s|%d|%.6f|%.6f|%.6f|%d",
		tx.TenantID, tx.InsurerID, tx.ProductID, tx.LOBID,
		tx.RuleType, tx.PolicyYear,
		tx.Premium, tx.EffectiveRate, tx.TotalCommission,
		tx.TransactionAt.UTC().Unix(),
	)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
