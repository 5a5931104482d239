package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/adapter"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/config"
)

type LimiterTestSuite struct {
	suite.Suite

	mini  *miniredis.Miniredis
	redis adapter.RedisClient
}

func TestLimiterTestSuite(t *testing.T) {
	suite.Run(t, new(LimiterTestSuite))
}

func (s *LimiterTestSuite) SetupTest() {
	mini, err := miniredis.Run()
	require.NoError(s.T(), err)
	s.mini = mini
	s.redis = adapter.NewRedisClientFromClient(redis.NewClient(&redis.Options{Addr: mini.Addr()}))
}

func (s *LimiterTestSuite) TearDownTest() {
	_ = s.redis.Close()
	s.mini.Close()
}

func (s *LimiterTestSuite) TestWaitAllowsConfiguredVenue() {
	l := NewLimiter(map[string]config.VenueRateLimit{
		"binance": {LocalRPS: 100, LocalBurst: 100, DistributedRPS: 100},
	}, s.redis, adapter.NewClock())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for range 5 {
		require.NoError(s.T(), l.Wait(ctx, "binance"))
	}
}

func (s *LimiterTestSuite) TestWaitUnknownVenue() {
	l := NewLimiter(map[string]config.VenueRateLimit{}, s.redis, adapter.NewClock())

	err := l.Wait(context.Background(), "kraken")
	require.Error(s.T(), err)
	require.Contains(s.T(), err.Error(), "no rate limit configured")
}

func (s *LimiterTestSuite) TestWaitLocalOnly() {
	l := NewLimiter(map[string]config.VenueRateLimit{
		"ton": {LocalRPS: 50, LocalBurst: 50},
	}, s.redis, adapter.NewClock())

	require.NoError(s.T(), l.Wait(context.Background(), "ton"))
}

func (s *LimiterTestSuite) TestWaitContextCanceled() {
	l := NewLimiter(map[string]config.VenueRateLimit{
		// Zero burst forces the local bucket to block
		"bybit": {LocalRPS: 0.001, LocalBurst: 1, DistributedRPS: 1},
	}, s.redis, adapter.NewClock())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// First call drains the burst token, second must block until the deadline
	require.NoError(s.T(), l.Wait(ctx, "bybit"))
	err := l.Wait(ctx, "bybit")
	require.Error(s.T(), err)
}
