package ratelimit

import (
	"context"

	"github.com/vyapardesk/vyapardesk/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Limiter names and policies for the HTTP surface. Login is throttled
// per client address, typeahead per session.
const (
	LimiterLogin   = "login"
	LimiterSuggest = "suggest"
)

type policy struct {
	rate  float64
	burst int
}

var policies = map[string]policy{
	LimiterLogin:   {rate: 0.5, burst: 5},
	LimiterSuggest: {rate: 10, burst: 30},
}

type Params struct {
	fx.In

	Log     *zap.Logger
	Bucket  *TokenBucket     `optional:"true"`
	Metrics *metrics.Metrics `optional:"true"`
}

// Limiter answers allow/deny for a named limiter and subject key.
// Without a Redis client it always allows and only records the
// decision.
type Limiter struct {
	log     *zap.Logger
	bucket  *TokenBucket
	metrics *metrics.Metrics
}

func NewLimiter(p Params) *Limiter {
	return &Limiter{
		log:     p.Log.Named("ratelimit"),
		bucket:  p.Bucket,
		metrics: p.Metrics,
	}
}

// Allow fails open: a Redis error lets the request through rather than
// locking out every caller.
func (l *Limiter) Allow(ctx context.Context, limiter, subject string) bool {
	pol, ok := policies[limiter]
	if !ok {
		return true
	}

	result, err := l.bucket.Allow(ctx, "ratelimit:"+limiter+":"+subject, pol.rate, pol.burst)
	if err != nil {
		l.log.Warn("rate limit check failed", zap.String("limiter", limiter), zap.Error(err))
		l.metrics.RateLimitDecision(ctx, limiter, true)
		return true
	}

	l.metrics.RateLimitDecision(ctx, limiter, result.Allowed)
	return result.Allowed
}
