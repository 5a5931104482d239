package scheduler_test

import (
	"context"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang/mock/gomock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/adapter"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/config"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/domain"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/logger"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/mocks"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/scheduler"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/workflows"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

func testRedis(t *testing.T) (*miniredis.Miniredis, adapter.RedisClient) {
	mr := miniredis.RunT(t)
	return mr, adapter.NewRedisClientFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func TestScheduler_RunOnce_FanOut(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mr, redisClient := testRedis(t)
	mockEnumerator := mocks.NewMockEnumerator(ctrl)
	mockClock := mocks.NewMockClock(ctrl)
	mockOrchestrator := mocks.NewMockTemporalOrchestrator(ctrl)

	mockClock.EXPECT().Now().Return(time.Date(2025, 6, 2, 2, 0, 0, 0, time.UTC)).AnyTimes()

	integrationID := uint64(1)
	mockEnumerator.EXPECT().ListAll(gomock.Any()).Return(map[uint64][]domain.Connection{
		10: {{UserID: 10, Venue: domain.VenueBinance, IntegrationID: &integrationID}},
		20: {{UserID: 20, Venue: domain.VenueTON}},
	}, nil)

	var mu sync.Mutex
	var workflowIDs []string
	mockOrchestrator.EXPECT().
		ExecuteWorkflow(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, options client.StartWorkflowOptions, wf interface{}, args ...interface{}) (client.WorkflowRun, error) {
			mu.Lock()
			defer mu.Unlock()
			workflowIDs = append(workflowIDs, options.ID)
			assert.Zero(t, options.StartDelay)
			assert.Equal(t, workflows.UserTaskQueue, options.TaskQueue)
			assert.Equal(t, workflows.SyncUserWorkflowName, wf)
			require.Len(t, args, 1)
			input := args[0].(workflows.SyncUserInput)
			assert.Equal(t, "2025-06-02", input.Date)
			return nil, nil
		}).
		Times(2)

	s := scheduler.New(config.SchedulerConfig{LockTTL: time.Hour},
		mockEnumerator, redisClient, mockClock, mockOrchestrator)

	require.NoError(t, s.RunOnce(context.Background(), "2025-06-02"))

	sort.Strings(workflowIDs)
	assert.Equal(t, []string{"sync-user-10-2025-06-02", "sync-user-20-2025-06-02"}, workflowIDs)

	// The per-date lock is left behind for the TTL
	assert.True(t, mr.Exists("sync:lock:2025-06-02"))
}

func TestScheduler_RunOnce_LockAlreadyHeld(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mr, redisClient := testRedis(t)
	mockEnumerator := mocks.NewMockEnumerator(ctrl)
	mockClock := mocks.NewMockClock(ctrl)
	mockOrchestrator := mocks.NewMockTemporalOrchestrator(ctrl)

	mockClock.EXPECT().Now().Return(time.Date(2025, 6, 2, 2, 0, 0, 0, time.UTC)).AnyTimes()
	require.NoError(t, mr.Set("sync:lock:2025-06-02", "taken"))

	// No enumeration and no workflow starts when another instance holds the lock
	s := scheduler.New(config.SchedulerConfig{LockTTL: time.Hour},
		mockEnumerator, redisClient, mockClock, mockOrchestrator)

	require.NoError(t, s.RunOnce(context.Background(), "2025-06-02"))
}

func TestScheduler_RunOnce_JitterDelaysPerUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mr, redisClient := testRedis(t)
	mockEnumerator := mocks.NewMockEnumerator(ctrl)
	mockClock := mocks.NewMockClock(ctrl)
	mockOrchestrator := mocks.NewMockTemporalOrchestrator(ctrl)

	mockClock.EXPECT().Now().Return(time.Date(2025, 6, 2, 2, 0, 0, 0, time.UTC)).AnyTimes()
	mockEnumerator.EXPECT().ListAll(gomock.Any()).Return(map[uint64][]domain.Connection{
		10: {{UserID: 10, Venue: domain.VenueTON}},
		20: {{UserID: 20, Venue: domain.VenueTON}},
		30: {{UserID: 30, Venue: domain.VenueTON}},
	}, nil)

	// The jitter rides on each workflow's start delay, never on the
	// scheduler's own clock, so the fan-out itself finishes immediately and
	// the per-date lock is already held while workflows wait out their delay
	mockOrchestrator.EXPECT().
		ExecuteWorkflow(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, options client.StartWorkflowOptions, wf interface{}, args ...interface{}) (client.WorkflowRun, error) {
			assert.True(t, mr.Exists("sync:lock:2025-06-02"))
			assert.GreaterOrEqual(t, options.StartDelay, time.Duration(0))
			assert.Less(t, options.StartDelay, 10*time.Minute)
			return nil, nil
		}).
		Times(3)

	s := scheduler.New(config.SchedulerConfig{JitterMax: 10 * time.Minute, LockTTL: time.Hour},
		mockEnumerator, redisClient, mockClock, mockOrchestrator)

	require.NoError(t, s.RunOnce(context.Background(), "2025-06-02"))
}
