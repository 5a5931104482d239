package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/config"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/domain"
)

// DateLayout is the wire format for sync dates in workflow inputs and IDs
const DateLayout = "2006-01-02"

// UserTaskQueue is the task queue serving the venue-agnostic SyncUser
// fan-out workflow; per-venue work runs on the venue task queues.
const UserTaskQueue = "sync-users"

// SyncUserWorkflowName is the registered name the scheduler starts by
const SyncUserWorkflowName = "SyncUser"

// SyncUserInput starts one nightly sync for one user
type SyncUserInput struct {
	UserID uint64 `json:"user_id"`
	Date   string `json:"date"`
}

// SyncUserResult summarizes one user sync: how many connections were
// attempted, how they ended, and how many portfolios got valued afterwards.
type SyncUserResult struct {
	UserID           uint64 `json:"user_id"`
	Date             string `json:"date"`
	Connections      int    `json:"connections"`
	Succeeded        int    `json:"succeeded"`
	Failed           int    `json:"failed"`
	Inserted         int64  `json:"inserted"`
	PortfoliosValued int    `json:"portfolios_valued"`
}

// SyncConnectionInput syncs one connection for one date
type SyncConnectionInput struct {
	Connection domain.Connection `json:"connection"`
	Date       string            `json:"date"`
}

// SyncConnectionResult summarizes one connection sync
type SyncConnectionResult struct {
	Connection string `json:"connection"`
	Venue      string `json:"venue"`
	Inserted   int64  `json:"inserted"`
	Holdings   int    `json:"holdings"`
	Skipped    int    `json:"skipped"`
}

// WorkerCore defines the interface for the sync workflows
//
//go:generate mockgen -source=worker.go -destination=../mocks/worker_core.go -package=mocks -mock_names=WorkerCore=MockCoreWorker
type WorkerCore interface {
	// SyncUser fans out one SyncConnection child per connection of the user,
	// waits for all of them, then computes the user's portfolio valuations
	SyncUser(ctx workflow.Context, input SyncUserInput) (*SyncUserResult, error)

	// SyncConnection fetches, persists and cursor-advances one connection
	SyncConnection(ctx workflow.Context, input SyncConnectionInput) (*SyncConnectionResult, error)
}

// WorkerCoreConfig tunes activity timeouts and the fetch retry policy
type WorkerCoreConfig struct {
	// ActivityTimeout is the StartToCloseTimeout of every activity
	ActivityTimeout time.Duration
	// WorkflowTimeout bounds one SyncConnection child execution
	WorkflowTimeout time.Duration
	// FetchMaxAttempts bounds the FetchSnapshot retry policy
	FetchMaxAttempts int32
	// FetchBackoffInitial / FetchBackoffMax / FetchBackoffCoefficient shape
	// the FetchSnapshot retry backoff
	FetchBackoffInitial     time.Duration
	FetchBackoffMax         time.Duration
	FetchBackoffCoefficient float64
}

// WorkerCoreConfigFrom maps the sync configuration onto workflow tuning
func WorkerCoreConfigFrom(cfg config.SyncConfig) WorkerCoreConfig {
	return WorkerCoreConfig{
		ActivityTimeout:         cfg.ActivityTimeout,
		WorkflowTimeout:         cfg.WorkflowTimeout,
		FetchMaxAttempts:        cfg.FetchMaxAttempts,
		FetchBackoffInitial:     cfg.FetchBackoffInitial,
		FetchBackoffMax:         cfg.FetchBackoffMax,
		FetchBackoffCoefficient: cfg.FetchBackoffCoefficient,
	}
}

func (c WorkerCoreConfig) activityTimeout() time.Duration {
	if c.ActivityTimeout > 0 {
		return c.ActivityTimeout
	}
	return 5 * time.Minute
}

func (c WorkerCoreConfig) workflowTimeout() time.Duration {
	if c.WorkflowTimeout > 0 {
		return c.WorkflowTimeout
	}
	return 30 * time.Minute
}

// fetchRetryPolicy builds the venue fetch retry policy. Auth and validation
// failures surface as non-retryable application errors, so the policy only
// governs transient venue trouble.
func (c WorkerCoreConfig) fetchRetryPolicy() *temporal.RetryPolicy {
	policy := &temporal.RetryPolicy{
		InitialInterval:    time.Second,
		BackoffCoefficient: 2.0,
		MaximumInterval:    time.Minute,
		MaximumAttempts:    5,
	}
	if c.FetchBackoffInitial > 0 {
		policy.InitialInterval = c.FetchBackoffInitial
	}
	if c.FetchBackoffCoefficient > 0 {
		policy.BackoffCoefficient = c.FetchBackoffCoefficient
	}
	if c.FetchBackoffMax > 0 {
		policy.MaximumInterval = c.FetchBackoffMax
	}
	if c.FetchMaxAttempts > 0 {
		policy.MaximumAttempts = c.FetchMaxAttempts
	}
	return policy
}

// workerCore is the concrete implementation of WorkerCore
type workerCore struct {
	config   WorkerCoreConfig
	executor Executor
}

// NewWorkerCore creates a new worker core instance
func NewWorkerCore(executor Executor, config WorkerCoreConfig) WorkerCore {
	return &workerCore{
		executor: executor,
		config:   config,
	}
}
