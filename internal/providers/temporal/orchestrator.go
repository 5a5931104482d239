package temporal

import (
	"context"

	"go.temporal.io/sdk/client"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/config"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/logger"
)

// TemporalOrchestrator is the slice of client.Client the scheduler needs to
// start workflows
//
//go:generate mockgen -source=orchestrator.go -destination=../../mocks/temporal_orchestrator.go -package=mocks -mock_names=TemporalOrchestrator=MockTemporalOrchestrator
type TemporalOrchestrator interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// NewClient dials Temporal with the shared zap logger attached
func NewClient(cfg config.TemporalConfig) (client.Client, error) {
	return client.Dial(client.Options{
		HostPort:  cfg.HostPort,
		Namespace: cfg.Namespace,
		Logger:    NewZapLoggerAdapter(logger.Default()),
	})
}
