package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.temporal.io/sdk/temporal"
	"go.uber.org/zap"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/adapter"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/connections"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/domain"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/logger"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/normalizer"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/store"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/store/schema"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/valuation"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/venues"
)

// PersistResult reports what one snapshot persistence actually wrote.
// Duplicates suppressed by the dedupe index are the gap between Drafts
// and Inserted.
type PersistResult struct {
	// Drafts is the number of normalized transaction drafts
	Drafts int `json:"drafts"`
	// Inserted is the number of transactions actually inserted
	Inserted int64 `json:"inserted"`
	// Holdings is the number of holding rows upserted
	Holdings int `json:"holdings"`
	// Skip counters carried over from normalization
	SkippedUnmapped      int `json:"skipped_unmapped"`
	SkippedMissingAsset  int `json:"skipped_missing_asset"`
	SkippedMissingAmount int `json:"skipped_missing_amount"`
}

// Skipped returns the total number of activity lines that did not normalize
func (r PersistResult) Skipped() int {
	return r.SkippedUnmapped + r.SkippedMissingAsset + r.SkippedMissingAmount
}

// Valuer values one portfolio for one date
type Valuer interface {
	Run(ctx context.Context, portfolio *schema.Portfolio, date time.Time) (*valuation.Result, error)
}

// Executor defines the interface for executing activities
//
//go:generate mockgen -source=executor.go -destination=../mocks/executor_core.go -package=mocks -mock_names=Executor=MockCoreExecutor
type Executor interface {
	// ListUserConnections returns the syncable connections of one user
	ListUserConnections(ctx context.Context, userID uint64) ([]domain.Connection, error)

	// FetchSnapshot resolves credentials and fetches the venue snapshot.
	// Auth failures and gone connections return non-retryable errors.
	FetchSnapshot(ctx context.Context, conn domain.Connection) (*domain.Snapshot, error)

	// PersistSnapshot normalizes activities, bulk-inserts transactions and
	// upserts holdings
	PersistSnapshot(ctx context.Context, conn domain.Connection, snapshot *domain.Snapshot) (*PersistResult, error)

	// AdvanceCursor records a successful sync on the connection's source row
	AdvanceCursor(ctx context.Context, conn domain.Connection, syncedAt time.Time, cursor string) error

	// ComputeUserValuations values every portfolio of the user for the date
	ComputeUserValuations(ctx context.Context, userID uint64, date string) ([]*valuation.Result, error)
}

// executor is the concrete implementation of Executor
type executor struct {
	store      store.Store
	enumerator connections.Enumerator
	valuer     Valuer
	activity   adapter.Activity
	venueDeps  venues.Deps
	// activityLimit caps activity history per fetch
	activityLimit int
}

// NewExecutor creates a new executor instance
func NewExecutor(
	store store.Store,
	enumerator connections.Enumerator,
	valuer Valuer,
	activity adapter.Activity,
	venueDeps venues.Deps,
	activityLimit int,
) Executor {
	return &executor{
		store:         store,
		enumerator:    enumerator,
		valuer:        valuer,
		activity:      activity,
		venueDeps:     venueDeps,
		activityLimit: activityLimit,
	}
}

// ListUserConnections returns the syncable connections of one user
func (e *executor) ListUserConnections(ctx context.Context, userID uint64) ([]domain.Connection, error) {
	conns, err := e.enumerator.ListUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user connections: %w", err)
	}
	return conns, nil
}

// FetchSnapshot resolves credentials and fetches the venue snapshot
func (e *executor) FetchSnapshot(ctx context.Context, conn domain.Connection) (*domain.Snapshot, error) {
	// Credentials are resolved here, at activity time, so they never pass
	// through workflow history
	resolved, creds, err := e.enumerator.Resolve(ctx, conn)
	if err != nil {
		return nil, temporal.NewNonRetryableApplicationError(
			"connection is not syncable",
			"ConnectionGone",
			err,
		)
	}

	deps := e.venueDeps
	if resolved.IntegrationID != nil {
		integrationID := *resolved.IntegrationID
		deps.PersistTokens = func(ctx context.Context, creds domain.Credentials) error {
			return e.store.UpdateIntegrationTokens(ctx, integrationID,
				creds.AccessToken, creds.RefreshToken, creds.TokenExpiry)
		}
	}

	venue, err := venues.New(resolved, creds, deps)
	if err != nil {
		return nil, temporal.NewNonRetryableApplicationError(
			"venue is not supported",
			"VenueNotSupported",
			err,
		)
	}

	req := venues.SnapshotRequest{Limit: e.activityLimit}
	if resolved.LastSyncAt != nil {
		req.Since = *resolved.LastSyncAt
	}

	snapshot, err := venue.FetchSnapshot(ctx, req)
	if err != nil {
		if domain.IsAuth(err) {
			return nil, temporal.NewNonRetryableApplicationError(
				"venue rejected credentials",
				"AuthError",
				err,
			)
		}
		return nil, fmt.Errorf("failed to fetch %s snapshot: %w", resolved.Venue, err)
	}

	return snapshot, nil
}

// PersistSnapshot normalizes activities, bulk-inserts transactions and
// upserts holdings
func (e *executor) PersistSnapshot(ctx context.Context, conn domain.Connection, snapshot *domain.Snapshot) (*PersistResult, error) {
	outcome := normalizer.NormalizeAll(snapshot.Activities, conn)

	result := &PersistResult{
		Drafts:               len(outcome.Drafts),
		SkippedUnmapped:      outcome.SkippedUnmapped,
		SkippedMissingAsset:  outcome.SkippedMissingAsset,
		SkippedMissingAmount: outcome.SkippedMissingAmount,
	}
	if result.Skipped() > 0 {
		logger.Warn("some activity lines did not normalize",
			zap.String("connection", conn.Key()),
			zap.Int("unmapped", outcome.SkippedUnmapped),
			zap.Int("missing_asset", outcome.SkippedMissingAsset),
			zap.Int("missing_amount", outcome.SkippedMissingAmount),
		)
	}

	rows := make([]*schema.Transaction, 0, len(outcome.Drafts))
	for _, draft := range outcome.Drafts {
		asset, err := e.store.GetOrCreateAsset(ctx, draft.Symbol, string(draft.AssetType), draft.MarketURL(conn.Venue))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve asset %s: %w", draft.Symbol, err)
		}

		executedAt := draft.ExecutedAt
		row := &schema.Transaction{
			PortfolioID:     conn.PortfolioID,
			SourceKey:       conn.Key(),
			DedupeKey:       draft.DedupeKey,
			IntegrationID:   conn.IntegrationID,
			WalletAddressID: conn.WalletAddressID,
			AssetID:         asset.ID,
			Type:            string(draft.Type),
			Amount:          draft.Amount,
			PriceCurrency:   draft.PriceCurrency,
			FeeCurrency:     draft.FeeCurrency,
			ExecutedAt:      &executedAt,
			Raw:             schema.JSONMap(draft.Raw),
		}
		if draft.Price != nil {
			row.Price = decimal.NewNullDecimal(*draft.Price)
		}
		if draft.Fee != nil {
			row.Fee = decimal.NewNullDecimal(*draft.Fee)
		}
		rows = append(rows, row)
	}

	if len(rows) > 0 {
		inserted, err := e.store.InsertTransactions(ctx, rows)
		if err != nil {
			return nil, fmt.Errorf("failed to insert transactions: %w", err)
		}
		result.Inserted = inserted
	}

	holdings, err := e.buildHoldings(ctx, conn, snapshot)
	if err != nil {
		return nil, err
	}
	if len(holdings) > 0 {
		if err := e.store.UpsertHoldings(ctx, holdings); err != nil {
			return nil, fmt.Errorf("failed to upsert holdings: %w", err)
		}
	}
	result.Holdings = len(holdings)

	return result, nil
}

// buildHoldings folds snapshot balances and derivative positions into holding
// rows. A position enriches a matching spot holding with its entry price as
// the average buy price, or stands alone as a signed-quantity holding when
// there is no spot balance for the asset.
func (e *executor) buildHoldings(ctx context.Context, conn domain.Connection, snapshot *domain.Snapshot) ([]*schema.PortfolioAsset, error) {
	holdings := make([]*schema.PortfolioAsset, 0, len(snapshot.Balances))
	bySymbol := make(map[string]*schema.PortfolioAsset, len(snapshot.Balances))

	resolve := func(symbol string) (*schema.Asset, error) {
		assetType := domain.AssetTypeFor(conn.Venue, symbol)
		marketURL := conn.Venue.String() + ":" + symbol
		return e.store.GetOrCreateAsset(ctx, symbol, string(assetType), marketURL)
	}

	for _, balance := range snapshot.Balances {
		asset, err := resolve(balance.Symbol)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve asset %s: %w", balance.Symbol, err)
		}
		holding := &schema.PortfolioAsset{
			PortfolioID: conn.PortfolioID,
			AssetID:     asset.ID,
			Quantity:    balance.Total,
		}
		holdings = append(holdings, holding)
		bySymbol[balance.Symbol] = holding
	}

	for _, position := range snapshot.Positions {
		base, quote := domain.SplitSymbol(position.Symbol, conn.Params.QuoteAssets)
		if base == "" {
			logger.Debug("skipping position with unresolvable symbol",
				zap.String("connection", conn.Key()),
				zap.String("symbol", position.Symbol))
			continue
		}

		holding, ok := bySymbol[base]
		if !ok {
			asset, err := resolve(base)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve asset %s: %w", base, err)
			}
			quantity := position.Size
			if position.Side == domain.SideShort {
				quantity = quantity.Neg()
			}
			holding = &schema.PortfolioAsset{
				PortfolioID: conn.PortfolioID,
				AssetID:     asset.ID,
				Quantity:    quantity,
			}
			holdings = append(holdings, holding)
			bySymbol[base] = holding
		}

		if position.EntryPrice != nil && !holding.AvgBuyPrice.Valid {
			holding.AvgBuyPrice = decimal.NewNullDecimal(*position.EntryPrice)
			holding.AvgBuyCurrency = quote
		}
	}

	return holdings, nil
}

// AdvanceCursor records a successful sync on the connection's source row
func (e *executor) AdvanceCursor(ctx context.Context, conn domain.Connection, syncedAt time.Time, cursor string) error {
	switch {
	case conn.IntegrationID != nil:
		if err := e.store.UpdateIntegrationCursor(ctx, *conn.IntegrationID, syncedAt, cursor); err != nil {
			return fmt.Errorf("failed to update integration cursor: %w", err)
		}
		return nil
	case conn.WalletAddressID != nil:
		if err := e.store.UpdateWalletAddressSyncedAt(ctx, *conn.WalletAddressID, syncedAt); err != nil {
			return fmt.Errorf("failed to update wallet sync time: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("connection has neither integration nor wallet source")
	}
}

// ComputeUserValuations values every portfolio of the user for the date
func (e *executor) ComputeUserValuations(ctx context.Context, userID uint64, date string) ([]*valuation.Result, error) {
	day, err := time.ParseInLocation(DateLayout, date, time.UTC)
	if err != nil {
		return nil, temporal.NewNonRetryableApplicationError(
			"invalid valuation date",
			"InvalidDate",
			err,
		)
	}

	portfolios, err := e.store.ListUserPortfolios(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user portfolios: %w", err)
	}

	results := make([]*valuation.Result, 0, len(portfolios))
	for _, portfolio := range portfolios {
		result, err := e.valuer.Run(ctx, portfolio, day)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
		// Heartbeat per portfolio so a user with many portfolios does not
		// trip the heartbeat timeout
		e.activity.RecordHeartbeat(ctx, portfolio.ID)
	}
	return results, nil
}
