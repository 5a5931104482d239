package workflows_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/domain"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/logger"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/mocks"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/workflows"
)

// SyncConnectionWorkflowTestSuite is the test suite for the per-connection workflow
type SyncConnectionWorkflowTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite

	env        *testsuite.TestWorkflowEnvironment
	ctrl       *gomock.Controller
	executor   *mocks.MockCoreExecutor
	workerCore workflows.WorkerCore
}

// SetupTest is called before each test
func (s *SyncConnectionWorkflowTestSuite) SetupTest() {
	// Initialize logger for tests
	_ = logger.Initialize(logger.Config{
		Debug: true,
	})

	s.env = s.NewTestWorkflowEnvironment()
	s.ctrl = gomock.NewController(s.T())
	s.executor = mocks.NewMockCoreExecutor(s.ctrl)
	s.workerCore = workflows.NewWorkerCore(s.executor, workflows.WorkerCoreConfig{
		FetchMaxAttempts:    2,
		FetchBackoffInitial: time.Millisecond,
	})
}

// TearDownTest is called after each test
func (s *SyncConnectionWorkflowTestSuite) TearDownTest() {
	s.env.AssertExpectations(s.T())
	s.ctrl.Finish()
}

// TestSyncConnectionWorkflowTestSuite runs the test suite
func TestSyncConnectionWorkflowTestSuite(t *testing.T) {
	suite.Run(t, new(SyncConnectionWorkflowTestSuite))
}

func binanceConnection() domain.Connection {
	integrationID := uint64(1)
	return domain.Connection{
		UserID:        10,
		PortfolioID:   100,
		Venue:         domain.VenueBinance,
		TaskQueue:     "sync-binance",
		IntegrationID: &integrationID,
	}
}

func (s *SyncConnectionWorkflowTestSuite) TestSyncConnection_Success() {
	conn := binanceConnection()
	fetchedAt := time.Date(2025, 6, 2, 2, 15, 0, 0, time.UTC)
	snapshot := &domain.Snapshot{
		Venue:     domain.VenueBinance,
		FetchedAt: fetchedAt,
		Cursor:    "cursor-1",
	}

	s.env.OnActivity(s.executor.FetchSnapshot, mock.Anything, conn).Return(snapshot, nil)
	s.env.OnActivity(s.executor.PersistSnapshot, mock.Anything, conn, mock.Anything).
		Return(&workflows.PersistResult{
			Drafts:          4,
			Inserted:        3,
			Holdings:        2,
			SkippedUnmapped: 1,
		}, nil)
	s.env.OnActivity(s.executor.AdvanceCursor, mock.Anything, conn, fetchedAt, "cursor-1").Return(nil)

	s.env.ExecuteWorkflow(s.workerCore.SyncConnection, workflows.SyncConnectionInput{
		Connection: conn,
		Date:       "2025-06-02",
	})

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var result workflows.SyncConnectionResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.Equal("integration-1", result.Connection)
	s.Equal("binance", result.Venue)
	s.Equal(int64(3), result.Inserted)
	s.Equal(2, result.Holdings)
	s.Equal(1, result.Skipped)
}

func (s *SyncConnectionWorkflowTestSuite) TestSyncConnection_TransientFetchRetried() {
	conn := binanceConnection()

	// FetchMaxAttempts: 2, so the transient error is retried exactly once
	var fetchCallCount int
	s.env.OnActivity(s.executor.FetchSnapshot, mock.Anything, conn).Return(
		func(ctx context.Context, conn domain.Connection) (*domain.Snapshot, error) {
			fetchCallCount++
			return nil, domain.NewTransientError(context.DeadlineExceeded)
		},
	)

	s.env.ExecuteWorkflow(s.workerCore.SyncConnection, workflows.SyncConnectionInput{
		Connection: conn,
		Date:       "2025-06-02",
	})

	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
	s.Equal(2, fetchCallCount, "Fetch should be attempted 2 times (initial + 1 retry)")
}

func (s *SyncConnectionWorkflowTestSuite) TestSyncConnection_AuthErrorNotRetried() {
	conn := binanceConnection()

	var fetchCallCount int
	s.env.OnActivity(s.executor.FetchSnapshot, mock.Anything, conn).Return(
		func(ctx context.Context, conn domain.Connection) (*domain.Snapshot, error) {
			fetchCallCount++
			return nil, temporal.NewNonRetryableApplicationError(
				"venue rejected credentials",
				"AuthError",
				domain.NewAuthError(domain.VenueBinance, nil),
			)
		},
	)

	s.env.ExecuteWorkflow(s.workerCore.SyncConnection, workflows.SyncConnectionInput{
		Connection: conn,
		Date:       "2025-06-02",
	})

	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
	s.Equal(1, fetchCallCount, "Auth failures must not be retried")
}

func (s *SyncConnectionWorkflowTestSuite) TestSyncConnection_PersistFailureSkipsCursor() {
	conn := binanceConnection()
	snapshot := &domain.Snapshot{
		Venue:     domain.VenueBinance,
		FetchedAt: time.Date(2025, 6, 2, 2, 15, 0, 0, time.UTC),
	}

	s.env.OnActivity(s.executor.FetchSnapshot, mock.Anything, conn).Return(snapshot, nil)

	// Persist fails through all 3 attempts; AdvanceCursor must never run
	var persistCallCount int
	s.env.OnActivity(s.executor.PersistSnapshot, mock.Anything, conn, mock.Anything).Return(
		func(ctx context.Context, conn domain.Connection, snap *domain.Snapshot) (*workflows.PersistResult, error) {
			persistCallCount++
			return nil, context.DeadlineExceeded
		},
	)

	s.env.ExecuteWorkflow(s.workerCore.SyncConnection, workflows.SyncConnectionInput{
		Connection: conn,
		Date:       "2025-06-02",
	})

	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
	s.Equal(3, persistCallCount, "Persist should be attempted 3 times")
}
