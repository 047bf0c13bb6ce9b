package ratelimit

import (
	redis "github.com/redis/go-redis/v9"
	"github.com/vyapardesk/vyapardesk/internal/config"
	"go.uber.org/fx"
)

// NewRedisClient returns nil when no Redis address is configured; the
// limiter then runs in pass-through mode.
func NewRedisClient(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}

var Module = fx.Module("rate.limit",
	fx.Provide(NewRedisClient),
	fx.Provide(NewTokenBucket),
	fx.Provide(NewLimiter),
)
