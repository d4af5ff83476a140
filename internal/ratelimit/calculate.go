package ratelimit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JackOfPrompt/policy-pulse-commissions/internal/config"
	obsmetrics "github.com/JackOfPrompt/policy-pulse-commissions/internal/observability/metrics"
)

// CalculateLimiter throttles the calculate endpoint per tenant. A nil
// limiter (redis disabled) allows everything.
type CalculateLimiter struct {
	bucket  *TokenBucket
	rate    float64
	burst   int
	log     *zap.Logger
	metrics *obsmetrics.Metrics
}

func NewCalculateLimiter(cfg config.Config, bucket *TokenBucket, log *zap.Logger, metrics *obsmetrics.Metrics) *CalculateLimiter {
	if !cfg.RateLimit.Enabled || bucket == nil {
		return nil
	}
	return &CalculateLimiter{
		bucket:  bucket,
		rate:    cfg.RateLimit.CalculateRate,
		burst:   cfg.RateLimit.CalculateBurst,
		log:     log.Named("ratelimit.calculate"),
		metrics: metrics,
	}
}

// Allow reports whether the tenant may run another calculation now.
// Redis outages fail open: throttling is protection, not correctness.
func (l *CalculateLimiter) Allow(ctx context.Context, tenantID string) (bool, time.Duration) {
	if l == nil {
		return true, 0
	}

	key := fmt.Sprintf("ratelimit:calculate:%s", tenantID)
	res, err := l.bucket.Allow(ctx, key, l.rate, l.burst)
	if err != nil {
		l.log.Warn("rate limit check failed, allowing request", zap.Error(err))
		return true, 0
	}

	if res.Allowed {
		l.metrics.RecordRateLimitAllowed(ctx, tenantID, "calculate")
		return true, 0
	}
	l.metrics.RecordRateLimitDenied(ctx, tenantID, "calculate", "token_bucket_empty")
	return false, res.RetryAfter
}
