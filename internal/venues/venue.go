package venues

import (
	"context"
	"fmt"
	"time"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/adapter"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/config"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/domain"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/ratelimit"
)

// SnapshotRequest bounds one snapshot fetch
type SnapshotRequest struct {
	// Since limits activity history to records at or after this time; zero
	// means the venue's default lookback.
	Since time.Time
	// Limit caps the number of activity records returned
	Limit int
}

// Adapter is one venue integration. Implementations upper-case symbols,
// infer position side from signed size, block on the shared rate limiter
// before every call, and return domain error types for retry classification.
//
//go:generate mockgen -source=venue.go -destination=../mocks/venue_adapter.go -package=mocks -mock_names=Adapter=MockVenueAdapter
type Adapter interface {
	// Kind identifies the venue
	Kind() domain.VenueKind

	// FetchBalances returns current spot/account balances, zero balances omitted
	FetchBalances(ctx context.Context) ([]domain.Balance, error)

	// FetchPositions returns open derivatives positions; venues without
	// derivatives return an empty slice.
	FetchPositions(ctx context.Context) ([]domain.Position, error)

	// FetchActivities returns activity records since req.Since, ascending by
	// time, capped at req.Limit.
	FetchActivities(ctx context.Context, req SnapshotRequest) ([]domain.ActivityLine, error)

	// FetchSnapshot runs the three fetches concurrently and assembles the result
	FetchSnapshot(ctx context.Context, req SnapshotRequest) (*domain.Snapshot, error)
}

// TokenPersister saves refreshed OAuth tokens so they outlive the process
type TokenPersister func(ctx context.Context, creds domain.Credentials) error

// Deps carries the shared infrastructure every adapter needs
type Deps struct {
	HTTP    adapter.HTTPClient
	Clock   adapter.Clock
	Limiter ratelimit.Limiter
	Config  config.VenuesConfig
	// PersistTokens is invoked after an OAuth refresh; nil disables persistence
	PersistTokens TokenPersister
}

// New builds the adapter for a connection. The venue set is closed at compile
// time; an unknown kind is a hard error, not a silent skip.
func New(conn domain.Connection, creds domain.Credentials, deps Deps) (Adapter, error) {
	switch conn.Venue {
	case domain.VenueBinance:
		return newBinanceAdapter(creds, conn.Params, deps), nil
	case domain.VenueBybit:
		return newBybitAdapter(creds, conn.Params, deps), nil
	case domain.VenueOKX:
		return newOKXAdapter(creds, conn.Params, deps), nil
	case domain.VenueTBank:
		return newTBankAdapter(creds, conn.Params, deps), nil
	case domain.VenueTON:
		return newTONAdapter(conn.Address, conn.Params, deps), nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrVenueNotSupported, conn.Venue)
	}
}
