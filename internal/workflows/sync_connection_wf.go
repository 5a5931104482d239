package workflows

import (
	"fmt"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
	"go.uber.org/zap"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/domain"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/logger"
)

// SyncConnection syncs one connection: fetch the venue snapshot, persist it,
// then advance the sync cursor. The cursor moves only after persistence
// succeeds, so a failed run re-fetches the same window and deduplication
// absorbs the overlap.
func (w *workerCore) SyncConnection(ctx workflow.Context, input SyncConnectionInput) (*SyncConnectionResult, error) {
	conn := input.Connection
	logger.InfoWf(ctx, "Starting connection sync",
		zap.String("connection", conn.Key()),
		zap.String("venue", conn.Venue.String()),
		zap.String("date", input.Date),
	)

	// Step 1: Fetch the snapshot with backoff against transient venue trouble
	fetchOptions := workflow.ActivityOptions{
		StartToCloseTimeout: w.config.activityTimeout(),
		RetryPolicy:         w.config.fetchRetryPolicy(),
	}
	fetchCtx := workflow.WithActivityOptions(ctx, fetchOptions)

	var snapshot domain.Snapshot
	err := workflow.ExecuteActivity(fetchCtx, w.executor.FetchSnapshot, conn).Get(fetchCtx, &snapshot)
	if err != nil {
		logger.ErrorWf(ctx,
			fmt.Errorf("failed to fetch venue snapshot"),
			zap.Error(err),
			zap.String("connection", conn.Key()),
			zap.String("venue", conn.Venue.String()),
		)
		return nil, err
	}

	// Persistence and cursor writes hit our own database, not the venue
	dbOptions := workflow.ActivityOptions{
		StartToCloseTimeout: w.config.activityTimeout(),
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	dbCtx := workflow.WithActivityOptions(ctx, dbOptions)

	// Step 2: Normalize and persist transactions and holdings
	var persisted PersistResult
	err = workflow.ExecuteActivity(dbCtx, w.executor.PersistSnapshot, conn, &snapshot).Get(dbCtx, &persisted)
	if err != nil {
		logger.ErrorWf(ctx,
			fmt.Errorf("failed to persist snapshot"),
			zap.Error(err),
			zap.String("connection", conn.Key()),
		)
		return nil, err
	}

	// Step 3: Advance the cursor
	err = workflow.ExecuteActivity(dbCtx, w.executor.AdvanceCursor, conn, snapshot.FetchedAt, snapshot.Cursor).Get(dbCtx, nil)
	if err != nil {
		logger.ErrorWf(ctx,
			fmt.Errorf("failed to advance sync cursor"),
			zap.Error(err),
			zap.String("connection", conn.Key()),
		)
		return nil, err
	}

	logger.InfoWf(ctx, "Connection sync completed",
		zap.String("connection", conn.Key()),
		zap.String("venue", conn.Venue.String()),
		zap.Int64("inserted", persisted.Inserted),
		zap.Int("holdings", persisted.Holdings),
		zap.Int("skipped", persisted.Skipped()),
	)

	return &SyncConnectionResult{
		Connection: conn.Key(),
		Venue:      conn.Venue.String(),
		Inserted:   persisted.Inserted,
		Holdings:   persisted.Holdings,
		Skipped:    persisted.Skipped(),
	}, nil
}
