package workflows_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/domain"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/mocks"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/store"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/store/schema"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/valuation"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/venues"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/workflows"
)

// TestExecutor_PersistSnapshot_RerunIsIdempotent persists the same snapshot
// twice: the drafts carry identical dedupe keys both times, so the second
// bulk insert writes nothing.
func TestExecutor_PersistSnapshot_RerunIsIdempotent(t *testing.T) {
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
	depositAmount := decimal.RequireFromString("200")
	executedAt := time.Date(2025, 6, 2, 1, 0, 0, 0, time.UTC)

	snapshot := &domain.Snapshot{
		Venue: domain.VenueBinance,
		Balances: []domain.Balance{
			{Symbol: "BTC", Total: amount},
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
			{
				Type:       domain.TransactionDeposit,
				Symbol:     "USDT",
				Amount:     &depositAmount,
				ExecutedAt: executedAt,
				Raw:        map[string]any{"txId": "0xabc"},
			},
		},
	}

	// Two runs, each resolving BTC for the draft and the holding plus USDT
	// for the deposit draft
	mockStore.EXPECT().GetOrCreateAsset(gomock.Any(), "BTC", "crypto", "binance:BTC").
		Return(&schema.Asset{ID: 42, Symbol: "BTC"}, nil).Times(4)
	mockStore.EXPECT().GetOrCreateAsset(gomock.Any(), "USDT", "crypto", "binance:USDT").
		Return(&schema.Asset{ID: 7, Symbol: "USDT"}, nil).Times(2)

	var firstKeys []string
	first := mockStore.EXPECT().InsertTransactions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, rows []*schema.Transaction) (int64, error) {
			for _, row := range rows {
				firstKeys = append(firstKeys, row.DedupeKey)
			}
			return int64(len(rows)), nil
		})
	mockStore.EXPECT().InsertTransactions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, rows []*schema.Transaction) (int64, error) {
			var keys []string
			for _, row := range rows {
				keys = append(keys, row.DedupeKey)
			}
			assert.Equal(t, firstKeys, keys)
			// The dedupe index suppresses every row on conflict
			return 0, nil
		}).After(first)
	mockStore.EXPECT().UpsertHoldings(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	result, err := executor.PersistSnapshot(context.Background(), conn, snapshot)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Drafts)
	assert.Equal(t, int64(2), result.Inserted)

	rerun, err := executor.PersistSnapshot(context.Background(), conn, snapshot)
	require.NoError(t, err)
	assert.Equal(t, 2, rerun.Drafts)
	assert.Equal(t, int64(0), rerun.Inserted)
	assert.Equal(t, []string{"buy:t-1", "deposit:0xabc"}, firstKeys)
}

// TestExecutor_TwoConnectionSync walks one user's sync across a Binance
// integration and a TON wallet feeding the same portfolio, then values the
// portfolio once with the real valuation engine.
func TestExecutor_TwoConnectionSync(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockStore(ctrl)
	mockEnumerator := mocks.NewMockEnumerator(ctrl)
	mockActivity := mocks.NewMockActivity(ctrl)
	mockActivity.EXPECT().RecordHeartbeat(gomock.Any(), gomock.Any()).AnyTimes()
	executor := workflows.NewExecutor(mockStore, mockEnumerator,
		valuation.NewEngine(mockStore), mockActivity, venues.Deps{}, 1000)

	integrationID := uint64(1)
	walletID := uint64(5)
	binanceConn := domain.Connection{
		UserID:        10,
		PortfolioID:   100,
		Venue:         domain.VenueBinance,
		IntegrationID: &integrationID,
		Params:        domain.VenueParams{QuoteAssets: []string{"USDT"}},
	}
	tonConn := domain.Connection{
		UserID:          10,
		PortfolioID:     100,
		Venue:           domain.VenueTON,
		WalletAddressID: &walletID,
	}

	btcAmount := decimal.RequireFromString("0.5")
	btcPrice := decimal.RequireFromString("30000")
	tonAmount := decimal.RequireFromString("100")
	executedAt := time.Date(2025, 6, 2, 1, 0, 0, 0, time.UTC)

	binanceSnapshot := &domain.Snapshot{
		Venue:    domain.VenueBinance,
		Balances: []domain.Balance{{Symbol: "BTC", Total: btcAmount}},
		Activities: []domain.ActivityLine{
			{
				Type:       domain.TransactionBuy,
				Symbol:     "BTCUSDT",
				Amount:     &btcAmount,
				Price:      &btcPrice,
				ExecutedAt: executedAt,
				Raw:        map[string]any{"id": "t-1"},
			},
		},
	}
	tonSnapshot := &domain.Snapshot{
		Venue:    domain.VenueTON,
		Balances: []domain.Balance{{Symbol: "TON", Total: tonAmount}},
		Activities: []domain.ActivityLine{
			{
				Type:       domain.TransactionDeposit,
				Symbol:     "TON",
				Amount:     &tonAmount,
				ExecutedAt: executedAt,
				Raw:        map[string]any{"txId": "0xdef"},
			},
		},
	}

	mockStore.EXPECT().GetOrCreateAsset(gomock.Any(), "BTC", "crypto", "binance:BTC").
		Return(&schema.Asset{ID: 42, Symbol: "BTC"}, nil).Times(2)
	mockStore.EXPECT().GetOrCreateAsset(gomock.Any(), "TON", "crypto", "ton:TON").
		Return(&schema.Asset{ID: 55, Symbol: "TON"}, nil).Times(2)

	inserted := int64(0)
	mockStore.EXPECT().InsertTransactions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, rows []*schema.Transaction) (int64, error) {
			require.Len(t, rows, 1)
			assert.Equal(t, uint64(100), rows[0].PortfolioID)
			inserted += int64(len(rows))
			return int64(len(rows)), nil
		}).Times(2)

	holdingsUpserted := 0
	mockStore.EXPECT().UpsertHoldings(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, holdings []*schema.PortfolioAsset) error {
			holdingsUpserted += len(holdings)
			return nil
		}).Times(2)

	binanceResult, err := executor.PersistSnapshot(context.Background(), binanceConn, binanceSnapshot)
	require.NoError(t, err)
	tonResult, err := executor.PersistSnapshot(context.Background(), tonConn, tonSnapshot)
	require.NoError(t, err)

	assert.Equal(t, int64(2), inserted)
	assert.Equal(t, 2, holdingsUpserted)
	assert.Equal(t, int64(1), binanceResult.Inserted)
	assert.Equal(t, int64(1), tonResult.Inserted)

	// Valuation over the synced portfolio writes exactly one daily row
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	mockStore.EXPECT().ListUserPortfolios(gomock.Any(), uint64(10)).
		Return([]*schema.Portfolio{{ID: 100, UserID: 10, BaseCurrency: "USDT"}}, nil)
	mockStore.EXPECT().Atomic(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(store.Store) error) error {
			return fn(mockStore)
		})
	mockStore.EXPECT().ListHoldings(gomock.Any(), uint64(100)).
		Return([]*schema.PortfolioAsset{
			{PortfolioID: 100, AssetID: 42, Quantity: btcAmount,
				Asset: schema.Asset{ID: 42, Symbol: "BTC", AssetType: "crypto"}},
			{PortfolioID: 100, AssetID: 55, Quantity: tonAmount,
				Asset: schema.Asset{ID: 55, Symbol: "TON", AssetType: "crypto"}},
		}, nil)
	mockStore.EXPECT().LatestTransactionPrice(gomock.Any(), uint64(100), uint64(42), "USDT").
		Return(&btcPrice, nil)
	mockStore.EXPECT().LatestTransactionPrice(gomock.Any(), uint64(100), uint64(55), "USDT").
		Return(nil, nil)
	mockStore.EXPECT().ListFlowTransactions(gomock.Any(), uint64(100), day, day.AddDate(0, 0, 1)).
		Return([]*schema.Transaction{
			{Type: "deposit", Amount: tonAmount, Asset: schema.Asset{Symbol: "TON"}},
		}, nil)
	mockStore.EXPECT().GetDailyValuation(gomock.Any(), uint64(100), day.AddDate(0, 0, -1)).
		Return(nil, nil)
	mockStore.EXPECT().UpsertDailyValuation(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, row *schema.PortfolioValuationDaily) error {
			assert.Equal(t, uint64(100), row.PortfolioID)
			assert.Equal(t, "15000", row.TotalValue.String())
			assert.Equal(t, "0", row.NetFlow.String())
			assert.Equal(t, "15000", row.PnL.String())
			return nil
		})
	mockStore.EXPECT().UpsertDailyPositions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, rows []*schema.PortfolioPositionDaily) error {
			require.Len(t, rows, 2)
			return nil
		})

	results, err := executor.ComputeUserValuations(context.Background(), 10, "2025-06-02")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, uint64(100), results[0].PortfolioID)
	assert.Equal(t, 1, results[0].PricedAssets)
	assert.Equal(t, 1, results[0].UnpricedAssets)
}
