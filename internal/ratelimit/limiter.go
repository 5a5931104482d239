package ratelimit

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/adapter"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/config"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/logger"
)

const redisKeyPrefix = "smartfin:limiter:"

// Limiter gates venue API calls. Wait blocks until the venue's budget allows
// another request or the context ends.
//
//go:generate mockgen -source=limiter.go -destination=../mocks/ratelimit.go -package=mocks -mock_names=Limiter=MockLimiter
type Limiter interface {
	Wait(ctx context.Context, venue string) error
}

// limiter combines a local token bucket per venue with a distributed
// per-second window shared across worker processes. The local bucket
// pre-filters so redis is only consulted at sustainable rates.
type limiter struct {
	venues      map[string]*venueLimiter
	distributed adapter.RedisRateLimiter
	clock       adapter.Clock
}

type venueLimiter struct {
	name           string
	local          *rate.Limiter
	distributedRPS int
}

// NewLimiter builds a limiter from the per-venue rate limit configuration
func NewLimiter(limits map[string]config.VenueRateLimit, rc adapter.RedisClient, clock adapter.Clock) Limiter {
	venues := make(map[string]*venueLimiter, len(limits))
	for name, cfg := range limits {
		localRPS := cfg.LocalRPS
		if localRPS <= 0 {
			localRPS = 1
		}
		burst := cfg.LocalBurst
		if burst <= 0 {
			burst = 1
		}
		venues[name] = &venueLimiter{
			name:           name,
			local:          rate.NewLimiter(rate.Limit(localRPS), burst),
			distributedRPS: cfg.DistributedRPS,
		}
	}
	return &limiter{
		venues:      venues,
		distributed: rc.NewRateLimiter(),
		clock:       clock,
	}
}

// Wait blocks until the venue allows another request
func (l *limiter) Wait(ctx context.Context, venue string) error {
	vl, ok := l.venues[venue]
	if !ok {
		return fmt.Errorf("venue '%s' has no rate limit configured", venue)
	}

	// Local pre-filter first so the distributed window sees at most the
	// configured local rate.
	if err := vl.local.Wait(ctx); err != nil {
		return err
	}

	if vl.distributedRPS <= 0 {
		return nil
	}

	for {
		res, err := l.distributed.Allow(ctx, redisKeyPrefix+vl.name, redis_rate.PerSecond(vl.distributedRPS))
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Redis trouble must not stall syncs; the local bucket already
			// bounded the rate.
			logger.Warn("distributed rate limiter unavailable, relying on local bucket",
				zap.String("venue", vl.name), zap.Error(err))
			return nil
		}

		if res.Allowed > 0 {
			return nil
		}

		retryAfter := res.RetryAfter
		if retryAfter <= 0 {
			retryAfter = 100 * time.Millisecond
		}
		// Jitter spreads retries across workers (50-150% of retryAfter)
		jitter := time.Duration(float64(retryAfter) * (0.5 + rand.Float64())) //nolint:gosec,G404
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.clock.After(jitter):
		}
	}
}
