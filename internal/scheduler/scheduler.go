package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/adapter"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/config"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/connections"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/logger"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/providers/temporal"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/workflows"
)

// lockKeyPrefix namespaces the per-date scheduler lock in redis
const lockKeyPrefix = "sync:lock:"

// Scheduler triggers the nightly sync: on each cron tick it takes a per-date
// redis lock so exactly one scheduler instance fans out, then starts one
// SyncUser workflow per user through a bounded worker pool.
type Scheduler struct {
	config       config.SchedulerConfig
	enumerator   connections.Enumerator
	redis        adapter.RedisClient
	clock        adapter.Clock
	orchestrator temporal.TemporalOrchestrator
	cron         *cron.Cron
}

// New creates a scheduler over the given infrastructure
func New(
	cfg config.SchedulerConfig,
	enumerator connections.Enumerator,
	redis adapter.RedisClient,
	clock adapter.Clock,
	orchestrator temporal.TemporalOrchestrator,
) *Scheduler {
	return &Scheduler{
		config:       cfg,
		enumerator:   enumerator,
		redis:        redis,
		clock:        clock,
		orchestrator: orchestrator,
	}
}

// Run schedules the nightly fan-out on the configured cron spec and blocks
// until the context is canceled
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.config.CronSpec, func() {
		date := s.clock.Now().UTC().Format(workflows.DateLayout)
		if err := s.RunOnce(ctx, date); err != nil {
			logger.Error(err, zap.String("date", date))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sync cron %q: %w", s.config.CronSpec, err)
	}

	logger.Info("scheduler started", zap.String("cron", s.config.CronSpec))
	s.cron.Start()

	<-ctx.Done()
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	return nil
}

// RunOnce performs one sync fan-out for the given date. The per-date redis
// lock makes the run exclusive across scheduler instances; losing the lock
// race is a normal outcome, not an error.
func (s *Scheduler) RunOnce(ctx context.Context, date string) error {
	// The lock value identifies the holder, which helps when debugging a
	// stuck date by hand
	acquired, err := s.redis.SetNX(ctx, lockKeyPrefix+date, uuid.NewString(), s.lockTTL()).Result()
	if err != nil {
		return fmt.Errorf("failed to take scheduler lock: %w", err)
	}
	if !acquired {
		logger.Info("sync already triggered for date, skipping", zap.String("date", date))
		return nil
	}

	byUser, err := s.enumerator.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to enumerate connections: %w", err)
	}

	logger.Info("starting sync fan-out",
		zap.String("date", date),
		zap.Int("users", len(byUser)),
	)

	pool := pond.NewPool(
		s.fanoutPool(),
		pond.WithQueueSize(s.fanoutQueue()),
		pond.WithContext(ctx),
	)

	var started, failed atomic.Int64
	for userID := range byUser {
		userID := userID
		pool.Submit(func() {
			if err := s.startUserSync(ctx, userID, date); err != nil {
				logger.Error(err, zap.Uint64("user_id", userID), zap.String("date", date))
				failed.Add(1)
				return
			}
			started.Add(1)
		})
	}
	pool.StopAndWait()

	logger.Info("sync fan-out completed",
		zap.String("date", date),
		zap.Int64("started", started.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}

// startUserSync starts one SyncUser workflow. The workflow ID embeds user and
// date with duplicates rejected, so a second trigger for the same date is a
// no-op even if the redis lock ever expired mid-run.
func (s *Scheduler) startUserSync(ctx context.Context, userID uint64, date string) error {
	if s.config.StartTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.StartTimeout)
		defer cancel()
	}

	workflowOptions := client.StartWorkflowOptions{
		ID:                    fmt.Sprintf("sync-user-%d-%s", userID, date),
		TaskQueue:             workflows.UserTaskQueue,
		WorkflowIDReusePolicy: enums.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}
	// A per-user start delay spreads venue load across the jitter window
	// instead of waking every workflow at the same minute
	if s.config.JitterMax > 0 {
		workflowOptions.StartDelay = time.Duration(rand.Int63n(int64(s.config.JitterMax)))
	}

	workflowRun, err := s.orchestrator.ExecuteWorkflow(ctx, workflowOptions, workflows.SyncUserWorkflowName, workflows.SyncUserInput{
		UserID: userID,
		Date:   date,
	})
	if err != nil {
		return fmt.Errorf("failed to start user sync workflow: %w", err)
	}

	// Handle nil workflowRun from tests
	if workflowRun != nil {
		logger.Info("user sync workflow started",
			zap.Uint64("user_id", userID),
			zap.String("workflow_id", workflowRun.GetID()),
			zap.String("run_id", workflowRun.GetRunID()),
		)
	}
	return nil
}

func (s *Scheduler) lockTTL() time.Duration {
	if s.config.LockTTL > 0 {
		return s.config.LockTTL
	}
	return 6 * time.Hour
}

func (s *Scheduler) fanoutPool() int {
	if s.config.FanoutPool > 0 {
		return s.config.FanoutPool
	}
	return 10
}

func (s *Scheduler) fanoutQueue() int {
	if s.config.FanoutQueue > 0 {
		return s.config.FanoutQueue
	}
	return 1024
}
