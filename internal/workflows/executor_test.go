package workflows_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/domain"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/mocks"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/store/schema"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/valuation"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/venues"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/workflows"
)

func newTestExecutor(t *testing.T) (*gomock.Controller, *mocks.MockStore, *mocks.MockEnumerator, *mocks.MockValuer, workflows.Executor) {
	ctrl := gomock.NewController(t)
	mockStore := mocks.NewMockStore(ctrl)
	mockEnumerator := mocks.NewMockEnumerator(ctrl)
	mockValuer := mocks.NewMockValuer(ctrl)
	mockActivity := mocks.NewMockActivity(ctrl)
	mockActivity.EXPECT().RecordHeartbeat(gomock.Any(), gomock.Any()).AnyTimes()
	executor := workflows.NewExecutor(mockStore, mockEnumerator, mockValuer, mockActivity, venues.Deps{}, 1000)
	return ctrl, mockStore, mockEnumerator, mockValuer, executor
}

func TestExecutor_PersistSnapshot(t *testing.T) {
	ctrl, mockStore, _, _, executor := newTestExecutor(t)
	defer ctrl.Finish()

	integrationID := uint64(1)
	conn := domain.Connection{
		UserID:        10,
		PortfolioID:   100,
		Venue:         domain.VenueBinance,
		IntegrationID: &integrationID,
		Params:        domain.VenueParams{QuoteAssets: []string{"USDT"}},
	}

	amount := decimal.RequireFromString("0.5")
	price := decimal.RequireFromString("30000")
	entryPrice := decimal.RequireFromString("2000")
	executedAt := time.Date(2025, 6, 2, 1, 0, 0, 0, time.UTC)

	snapshot := &domain.Snapshot{
		Venue: domain.VenueBinance,
		Balances: []domain.Balance{
			{Symbol: "BTC", Total: amount},
			{Symbol: "USDT", Total: decimal.RequireFromString("100")},
		},
		Positions: []domain.Position{
			{Symbol: "ETHUSDT", Side: domain.SideLong, Size: decimal.NewFromInt(1), EntryPrice: &entryPrice},
		},
		Activities: []domain.ActivityLine{
			{
				Type:       domain.TransactionBuy,
				Symbol:     "BTCUSDT",
				Amount:     &amount,
				Price:      &price,
				ExecutedAt: executedAt,
				Raw:        map[string]any{"id": "t-1"},
			},
			// Unmapped venue record reduces to a skip counter
			{
				Type:       domain.TransactionType("interest"),
				Symbol:     "BTC",
				ExecutedAt: executedAt,
			},
		},
	}

	mockStore.EXPECT().GetOrCreateAsset(gomock.Any(), "BTC", "crypto", "binance:BTC").
		Return(&schema.Asset{ID: 42, Symbol: "BTC"}, nil).Times(2)
	mockStore.EXPECT().GetOrCreateAsset(gomock.Any(), "USDT", "crypto", "binance:USDT").
		Return(&schema.Asset{ID: 7, Symbol: "USDT"}, nil)
	mockStore.EXPECT().GetOrCreateAsset(gomock.Any(), "ETH", "crypto", "binance:ETH").
		Return(&schema.Asset{ID: 9, Symbol: "ETH"}, nil)

	mockStore.EXPECT().InsertTransactions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, rows []*schema.Transaction) (int64, error) {
			require.Len(t, rows, 1)
			row := rows[0]
			assert.Equal(t, uint64(100), row.PortfolioID)
			assert.Equal(t, "integration-1", row.SourceKey)
			assert.Equal(t, "buy:t-1", row.DedupeKey)
			assert.Equal(t, uint64(42), row.AssetID)
			assert.Equal(t, "buy", row.Type)
			assert.Equal(t, "0.5", row.Amount.String())
			assert.Equal(t, "30000", row.Price.Decimal.String())
			assert.Equal(t, "USDT", row.PriceCurrency)
			return 1, nil
		})

	mockStore.EXPECT().UpsertHoldings(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, holdings []*schema.PortfolioAsset) error {
			require.Len(t, holdings, 3)
			assert.Equal(t, uint64(42), holdings[0].AssetID)
			assert.Equal(t, "0.5", holdings[0].Quantity.String())
			// Position without a spot balance becomes its own holding with
			// the entry price as average buy price
			eth := holdings[2]
			assert.Equal(t, uint64(9), eth.AssetID)
			assert.Equal(t, "1", eth.Quantity.String())
			require.True(t, eth.AvgBuyPrice.Valid)
			assert.Equal(t, "2000", eth.AvgBuyPrice.Decimal.String())
			assert.Equal(t, "USDT", eth.AvgBuyCurrency)
			return nil
		})

	result, err := executor.PersistSnapshot(context.Background(), conn, snapshot)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Drafts)
	assert.Equal(t, int64(1), result.Inserted)
	assert.Equal(t, 3, result.Holdings)
	assert.Equal(t, 1, result.SkippedUnmapped)
	assert.Equal(t, 1, result.Skipped())
}

func TestExecutor_AdvanceCursor(t *testing.T) {
	ctrl, mockStore, _, _, executor := newTestExecutor(t)
	defer ctrl.Finish()

	syncedAt := time.Date(2025, 6, 2, 2, 15, 0, 0, time.UTC)

	integrationID := uint64(1)
	mockStore.EXPECT().UpdateIntegrationCursor(gomock.Any(), uint64(1), syncedAt, "cursor-1").Return(nil)
	err := executor.AdvanceCursor(context.Background(),
		domain.Connection{IntegrationID: &integrationID}, syncedAt, "cursor-1")
	require.NoError(t, err)

	walletID := uint64(5)
	mockStore.EXPECT().UpdateWalletAddressSyncedAt(gomock.Any(), uint64(5), syncedAt).Return(nil)
	err = executor.AdvanceCursor(context.Background(),
		domain.Connection{WalletAddressID: &walletID}, syncedAt, "")
	require.NoError(t, err)

	err = executor.AdvanceCursor(context.Background(), domain.Connection{}, syncedAt, "")
	require.Error(t, err)
}

func TestExecutor_ComputeUserValuations(t *testing.T) {
	ctrl, mockStore, _, mockValuer, executor := newTestExecutor(t)
	defer ctrl.Finish()

	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	portfolios := []*schema.Portfolio{
		{ID: 100, UserID: 10, BaseCurrency: "USDT"},
		{ID: 101, UserID: 10, BaseCurrency: "RUB"},
	}

	mockStore.EXPECT().ListUserPortfolios(gomock.Any(), uint64(10)).Return(portfolios, nil)
	mockValuer.EXPECT().Run(gomock.Any(), portfolios[0], day).Return(&valuation.Result{PortfolioID: 100}, nil)
	mockValuer.EXPECT().Run(gomock.Any(), portfolios[1], day).Return(&valuation.Result{PortfolioID: 101}, nil)

	results, err := executor.ComputeUserValuations(context.Background(), 10, "2025-06-02")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, uint64(100), results[0].PortfolioID)
}

func TestExecutor_ComputeUserValuations_BadDate(t *testing.T) {
	ctrl, _, _, _, executor := newTestExecutor(t)
	defer ctrl.Finish()

	_, err := executor.ComputeUserValuations(context.Background(), 10, "02.06.2025")
	require.Error(t, err)

	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.True(t, appErr.NonRetryable())
	assert.Equal(t, "InvalidDate", appErr.Type())
}

func TestExecutor_FetchSnapshot_GoneConnectionIsNonRetryable(t *testing.T) {
	ctrl, _, mockEnumerator, _, executor := newTestExecutor(t)
	defer ctrl.Finish()

	integrationID := uint64(9)
	conn := domain.Connection{IntegrationID: &integrationID}
	mockEnumerator.EXPECT().Resolve(gomock.Any(), conn).
		Return(domain.Connection{}, domain.Credentials{}, errors.New("integration 9 is gone or inactive"))

	_, err := executor.FetchSnapshot(context.Background(), conn)
	require.Error(t, err)

	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.True(t, appErr.NonRetryable())
	assert.Equal(t, "ConnectionGone", appErr.Type())
}
