package connections

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/domain"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/logger"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/store"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/store/schema"
)

// venueTaskQueues routes each venue onto its worker task queue. A venue
// missing here is not syncable and is skipped during enumeration.
var venueTaskQueues = map[domain.VenueKind]string{
	domain.VenueBinance: "sync-binance",
	domain.VenueBybit:   "sync-bybit",
	domain.VenueOKX:     "sync-okx",
	domain.VenueTBank:   "sync-tbank",
	domain.VenueTON:     "sync-ton",
}

// TaskQueues returns all venue task queues workers can serve
func TaskQueues() []string {
	queues := make([]string, 0, len(venueTaskQueues))
	for _, q := range venueTaskQueues {
		queues = append(queues, q)
	}
	return queues
}

// TaskQueueFor returns the task queue for a venue, empty when the venue is
// not routed.
func TaskQueueFor(venue domain.VenueKind) string {
	return venueTaskQueues[venue]
}

// Enumerator resolves the syncable connections of the whole user base
//
//go:generate mockgen -source=connections.go -destination=../mocks/connections.go -package=mocks -mock_names=Enumerator=MockEnumerator
type Enumerator interface {
	// ListAll returns every syncable connection grouped by user
	ListAll(ctx context.Context) (map[uint64][]domain.Connection, error)

	// ListUser returns the syncable connections of one user
	ListUser(ctx context.Context, userID uint64) ([]domain.Connection, error)

	// Resolve rebuilds one connection with credentials from its source row
	Resolve(ctx context.Context, conn domain.Connection) (domain.Connection, domain.Credentials, error)
}

type enumerator struct {
	store store.Store
}

// NewEnumerator creates a store-backed connection enumerator
func NewEnumerator(s store.Store) Enumerator {
	return &enumerator{store: s}
}

// ListAll returns every syncable connection grouped by user
func (e *enumerator) ListAll(ctx context.Context) (map[uint64][]domain.Connection, error) {
	integrations, err := e.store.ListActiveIntegrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list integrations: %w", err)
	}
	wallets, err := e.store.ListActiveWalletAddresses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallet addresses: %w", err)
	}

	byUser := make(map[uint64][]domain.Connection)
	for _, integration := range integrations {
		conn, ok := integrationConnection(integration)
		if !ok {
			continue
		}
		byUser[conn.UserID] = append(byUser[conn.UserID], conn)
	}
	for _, wallet := range wallets {
		conn, ok := walletConnection(wallet)
		if !ok {
			continue
		}
		byUser[conn.UserID] = append(byUser[conn.UserID], conn)
	}
	return byUser, nil
}

// ListUser returns the syncable connections of one user
func (e *enumerator) ListUser(ctx context.Context, userID uint64) ([]domain.Connection, error) {
	all, err := e.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return all[userID], nil
}

// Resolve rebuilds a connection's current state and credentials from the
// database. Workflows pass connections through history as plain data;
// credentials are re-read at activity time so they never serialize into
// workflow state.
func (e *enumerator) Resolve(ctx context.Context, conn domain.Connection) (domain.Connection, domain.Credentials, error) {
	switch {
	case conn.IntegrationID != nil:
		integration, err := e.store.GetIntegration(ctx, *conn.IntegrationID)
		if err != nil {
			return domain.Connection{}, domain.Credentials{}, fmt.Errorf("failed to get integration %d: %w", *conn.IntegrationID, err)
		}
		if integration == nil || !integration.IsActive {
			return domain.Connection{}, domain.Credentials{}, fmt.Errorf("integration %d is gone or inactive", *conn.IntegrationID)
		}
		resolved, ok := integrationConnection(integration)
		if !ok {
			return domain.Connection{}, domain.Credentials{}, fmt.Errorf("integration %d venue %q is not routed", integration.ID, integration.Venue)
		}
		return resolved, domain.Credentials{
			APIKey:       integration.APIKey,
			APISecret:    integration.APISecret,
			Passphrase:   integration.Passphrase,
			AccessToken:  integration.AccessToken,
			RefreshToken: integration.RefreshToken,
			TokenExpiry:  integration.TokenExpiry,
		}, nil

	case conn.WalletAddressID != nil:
		wallet, err := e.store.GetWalletAddress(ctx, *conn.WalletAddressID)
		if err != nil {
			return domain.Connection{}, domain.Credentials{}, fmt.Errorf("failed to get wallet address %d: %w", *conn.WalletAddressID, err)
		}
		if wallet == nil || !wallet.IsActive {
			return domain.Connection{}, domain.Credentials{}, fmt.Errorf("wallet address %d is gone or inactive", *conn.WalletAddressID)
		}
		resolved, ok := walletConnection(wallet)
		if !ok {
			return domain.Connection{}, domain.Credentials{}, fmt.Errorf("wallet address %d venue %q is not routed", wallet.ID, wallet.Venue)
		}
		return resolved, domain.Credentials{}, nil

	default:
		return domain.Connection{}, domain.Credentials{}, fmt.Errorf("connection has neither integration nor wallet source")
	}
}

func integrationConnection(integration *schema.Integration) (domain.Connection, bool) {
	venue := domain.VenueKind(integration.Venue)
	queue, ok := venueTaskQueues[venue]
	if !ok {
		logger.Debug("skipping integration on unrouted venue",
			zap.Uint64("integration_id", integration.ID), zap.String("venue", integration.Venue))
		return domain.Connection{}, false
	}

	id := integration.ID
	return domain.Connection{
		UserID:        integration.UserID,
		PortfolioID:   integration.PortfolioID,
		Venue:         venue,
		TaskQueue:     queue,
		IntegrationID: &id,
		Params:        integration.Params.VenueParams,
		LastSyncAt:    integration.LastSyncAt,
		LastCursor:    integration.LastCursor,
	}, true
}

func walletConnection(wallet *schema.WalletAddress) (domain.Connection, bool) {
	venue := domain.VenueKind(wallet.Venue)
	queue, ok := venueTaskQueues[venue]
	if !ok {
		logger.Debug("skipping wallet address on unrouted venue",
			zap.Uint64("wallet_address_id", wallet.ID), zap.String("venue", wallet.Venue))
		return domain.Connection{}, false
	}

	id := wallet.ID
	return domain.Connection{
		UserID:          wallet.UserID,
		PortfolioID:     wallet.PortfolioID,
		Venue:           venue,
		TaskQueue:       queue,
		WalletAddressID: &id,
		Address:         wallet.Address,
		LastSyncAt:      wallet.LastSyncAt,
	}, true
}
