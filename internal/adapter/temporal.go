package adapter

import (
	"context"

	"go.temporal.io/sdk/activity"
)

// Activity defines an interface over Temporal activity context helpers
//
//go:generate mockgen -source=temporal.go -destination=../mocks/temporal.go -package=mocks -mock_names=Activity=MockActivity
type Activity interface {
	// GetInfo returns the activity info
	GetInfo(ctx context.Context) activity.Info

	// RecordHeartbeat records a heartbeat for the running activity
	RecordHeartbeat(ctx context.Context, details ...interface{})
}

// RealActivity implements Activity using the standard activity package
type RealActivity struct{}

// NewActivity creates a new real activity implementation
func NewActivity() Activity {
	return &RealActivity{}
}

// GetInfo returns the activity info
func (a *RealActivity) GetInfo(ctx context.Context) activity.Info {
	return activity.GetInfo(ctx)
}

// RecordHeartbeat records a heartbeat for the running activity
func (a *RealActivity) RecordHeartbeat(ctx context.Context, details ...interface{}) {
	activity.RecordHeartbeat(ctx, details...)
}
