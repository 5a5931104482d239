package workflows

import (
	"fmt"

	"go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
	"go.uber.org/zap"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/domain"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/logger"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/valuation"
)

// SyncUser fans out one SyncConnection child workflow per connection, each
// pinned to its venue task queue, waits for every child to reach a terminal
// state, then runs the valuation join. A failed child is counted and logged,
// never propagated: the valuation must observe whatever did sync.
func (w *workerCore) SyncUser(ctx workflow.Context, input SyncUserInput) (*SyncUserResult, error) {
	logger.InfoWf(ctx, "Starting user sync",
		zap.Uint64("userID", input.UserID),
		zap.String("date", input.Date),
	)

	// Configure activity options
	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: w.config.activityTimeout(),
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOptions)

	// Step 1: Enumerate the user's syncable connections
	var conns []domain.Connection
	err := workflow.ExecuteActivity(ctx, w.executor.ListUserConnections, input.UserID).Get(ctx, &conns)
	if err != nil {
		logger.ErrorWf(ctx,
			fmt.Errorf("failed to list user connections"),
			zap.Error(err),
			zap.Uint64("userID", input.UserID),
		)
		return nil, err
	}

	// Step 2: Start one child workflow per connection on its venue task queue
	childWorkflowOptions := workflow.ChildWorkflowOptions{
		WorkflowExecutionTimeout: w.config.workflowTimeout(),
		WorkflowIDReusePolicy:    enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		ParentClosePolicy:        enums.PARENT_CLOSE_POLICY_REQUEST_CANCEL,
	}

	var childFutures []workflow.ChildWorkflowFuture
	for _, conn := range conns {
		childWorkflowOptions.WorkflowID = fmt.Sprintf("sync-%s-%s", conn.Key(), input.Date)
		childWorkflowOptions.TaskQueue = conn.TaskQueue
		childCtx := workflow.WithChildOptions(ctx, childWorkflowOptions)

		childFuture := workflow.ExecuteChildWorkflow(childCtx, w.SyncConnection, SyncConnectionInput{
			Connection: conn,
			Date:       input.Date,
		})
		childFutures = append(childFutures, childFuture)

		logger.InfoWf(ctx, "Triggered connection sync workflow",
			zap.String("connection", conn.Key()),
			zap.String("taskQueue", conn.TaskQueue),
		)
	}

	// Step 3: Wait for every child; one failed venue must not block the rest
	result := &SyncUserResult{
		UserID:      input.UserID,
		Date:        input.Date,
		Connections: len(conns),
	}
	for i, childFuture := range childFutures {
		var childResult SyncConnectionResult
		if err := childFuture.Get(ctx, &childResult); err != nil {
			logger.WarnWf(ctx, "Connection sync failed",
				zap.String("connection", conns[i].Key()),
				zap.String("venue", conns[i].Venue.String()),
				zap.Error(err),
			)
			result.Failed++
			continue
		}
		result.Succeeded++
		result.Inserted += childResult.Inserted
	}

	// Step 4: Value the user's portfolios over whatever synced
	var valuations []*valuation.Result
	err = workflow.ExecuteActivity(ctx, w.executor.ComputeUserValuations, input.UserID, input.Date).Get(ctx, &valuations)
	if err != nil {
		logger.ErrorWf(ctx,
			fmt.Errorf("failed to compute user valuations"),
			zap.Error(err),
			zap.Uint64("userID", input.UserID),
		)
		return nil, err
	}
	result.PortfoliosValued = len(valuations)

	logger.InfoWf(ctx, "User sync completed",
		zap.Uint64("userID", input.UserID),
		zap.Int("connections", result.Connections),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
		zap.Int("portfoliosValued", result.PortfoliosValued),
	)

	return result, nil
}
