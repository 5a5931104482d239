package valuation_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/logger"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/mocks"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/store"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/store/schema"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/valuation"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

var (
	testPortfolio = &schema.Portfolio{ID: 1, UserID: 10, BaseCurrency: "USDT"}
	testDay       = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// passthroughAtomic makes the mock run the transaction body against itself
func passthroughAtomic(mockStore *mocks.MockStore) {
	mockStore.EXPECT().
		Atomic(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(store.Store) error) error {
			return fn(mockStore)
		})
}

func TestEngine_Run_CarryForward(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockStore(ctrl)
	passthroughAtomic(mockStore)

	// One BTC holding with an avg buy price in base currency; value 1100
	mockStore.EXPECT().ListHoldings(gomock.Any(), uint64(1)).Return([]*schema.PortfolioAsset{
		{
			PortfolioID:    1,
			AssetID:        42,
			Quantity:       dec("0.01"),
			AvgBuyPrice:    decimal.NewNullDecimal(dec("110000")),
			AvgBuyCurrency: "USDT",
			Asset:          schema.Asset{ID: 42, Symbol: "BTC", AssetType: "crypto"},
		},
	}, nil)
	mockStore.EXPECT().ListFlowTransactions(gomock.Any(), uint64(1), testDay, testDay.AddDate(0, 0, 1)).
		Return(nil, nil)
	mockStore.EXPECT().GetDailyValuation(gomock.Any(), uint64(1), testDay.AddDate(0, 0, -1)).
		Return(&schema.PortfolioValuationDaily{TotalValue: dec("1000")}, nil)

	mockStore.EXPECT().UpsertDailyValuation(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, row *schema.PortfolioValuationDaily) error {
			assert.Equal(t, "1100", row.TotalValue.String())
			assert.Equal(t, "0", row.NetFlow.String())
			assert.Equal(t, "100", row.PnL.String())
			assert.Equal(t, "USDT", row.Currency)
			return nil
		})
	mockStore.EXPECT().UpsertDailyPositions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, rows []*schema.PortfolioPositionDaily) error {
			require.Len(t, rows, 1)
			assert.Equal(t, "1100", rows[0].Value.Decimal.String())
			return nil
		})

	engine := valuation.NewEngine(mockStore)
	result, err := engine.Run(context.Background(), testPortfolio, testDay)
	require.NoError(t, err)
	assert.Equal(t, "100", result.PnL.String())
	assert.Equal(t, 1, result.PricedAssets)
	assert.Equal(t, "2025-06-02", result.SnapshotDate)
}

func TestEngine_Run_DepositIsNotPnL(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockStore(ctrl)
	passthroughAtomic(mockStore)

	// Holding of the base currency itself: priced at 1, value 1050
	mockStore.EXPECT().ListHoldings(gomock.Any(), uint64(1)).Return([]*schema.PortfolioAsset{
		{
			PortfolioID: 1,
			AssetID:     7,
			Quantity:    dec("1050"),
			Asset:       schema.Asset{ID: 7, Symbol: "USDT", AssetType: "crypto"},
		},
	}, nil)
	mockStore.EXPECT().ListFlowTransactions(gomock.Any(), uint64(1), testDay, testDay.AddDate(0, 0, 1)).
		Return([]*schema.Transaction{
			{Type: "deposit", Amount: dec("50"), Asset: schema.Asset{Symbol: "USDT"}},
		}, nil)
	mockStore.EXPECT().GetDailyValuation(gomock.Any(), uint64(1), testDay.AddDate(0, 0, -1)).
		Return(&schema.PortfolioValuationDaily{TotalValue: dec("1000")}, nil)

	mockStore.EXPECT().UpsertDailyValuation(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, row *schema.PortfolioValuationDaily) error {
			assert.Equal(t, "1050", row.TotalValue.String())
			assert.Equal(t, "50", row.NetFlow.String())
			assert.Equal(t, "0", row.PnL.String())
			return nil
		})
	mockStore.EXPECT().UpsertDailyPositions(gomock.Any(), gomock.Any()).Return(nil)

	engine := valuation.NewEngine(mockStore)
	result, err := engine.Run(context.Background(), testPortfolio, testDay)
	require.NoError(t, err)
	assert.Equal(t, "0", result.PnL.String())
}

func TestEngine_Run_FirstDayBaselineIsZero(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockStore(ctrl)
	passthroughAtomic(mockStore)

	mockStore.EXPECT().ListHoldings(gomock.Any(), uint64(1)).Return([]*schema.PortfolioAsset{
		{
			PortfolioID: 1,
			AssetID:     7,
			Quantity:    dec("500"),
			Asset:       schema.Asset{ID: 7, Symbol: "USDT", AssetType: "crypto"},
		},
	}, nil)
	mockStore.EXPECT().ListFlowTransactions(gomock.Any(), uint64(1), gomock.Any(), gomock.Any()).Return(nil, nil)
	mockStore.EXPECT().GetDailyValuation(gomock.Any(), uint64(1), gomock.Any()).Return(nil, nil)

	// With no previous valuation and no flows the whole value is PnL
	mockStore.EXPECT().UpsertDailyValuation(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, row *schema.PortfolioValuationDaily) error {
			assert.Equal(t, "500", row.TotalValue.String())
			assert.Equal(t, "0", row.NetFlow.String())
			assert.Equal(t, "500", row.PnL.String())
			return nil
		})
	mockStore.EXPECT().UpsertDailyPositions(gomock.Any(), gomock.Any()).Return(nil)

	engine := valuation.NewEngine(mockStore)
	result, err := engine.Run(context.Background(), testPortfolio, testDay)
	require.NoError(t, err)
	assert.Equal(t, "500", result.PnL.String())
}

func TestEngine_Run_UnpricedAndFallbackPrice(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockStore(ctrl)
	passthroughAtomic(mockStore)

	mockStore.EXPECT().ListHoldings(gomock.Any(), uint64(1)).Return([]*schema.PortfolioAsset{
		{
			// No avg buy price in base: falls back to latest transaction price
			PortfolioID: 1,
			AssetID:     42,
			Quantity:    dec("2"),
			Asset:       schema.Asset{ID: 42, Symbol: "ETH", AssetType: "crypto"},
		},
		{
			// Never priced in base at all
			PortfolioID: 1,
			AssetID:     43,
			Quantity:    dec("100"),
			Asset:       schema.Asset{ID: 43, Symbol: "TON", AssetType: "crypto"},
		},
		{
			// Foreign currency without FX stays unpriced
			PortfolioID: 1,
			AssetID:     44,
			Quantity:    dec("300"),
			Asset:       schema.Asset{ID: 44, Symbol: "RUB", AssetType: "currency"},
		},
	}, nil)

	ethPrice := dec("3000")
	mockStore.EXPECT().LatestTransactionPrice(gomock.Any(), uint64(1), uint64(42), "USDT").Return(&ethPrice, nil)
	mockStore.EXPECT().LatestTransactionPrice(gomock.Any(), uint64(1), uint64(43), "USDT").Return(nil, nil)

	mockStore.EXPECT().ListFlowTransactions(gomock.Any(), uint64(1), gomock.Any(), gomock.Any()).Return(nil, nil)
	mockStore.EXPECT().GetDailyValuation(gomock.Any(), uint64(1), gomock.Any()).Return(nil, nil)
	mockStore.EXPECT().UpsertDailyValuation(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, row *schema.PortfolioValuationDaily) error {
			assert.Equal(t, "6000", row.TotalValue.String())
			return nil
		})
	mockStore.EXPECT().UpsertDailyPositions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, rows []*schema.PortfolioPositionDaily) error {
			require.Len(t, rows, 3)
			assert.True(t, rows[0].Price.Valid)
			assert.False(t, rows[1].Price.Valid)
			assert.False(t, rows[2].Price.Valid)
			return nil
		})

	engine := valuation.NewEngine(mockStore)
	result, err := engine.Run(context.Background(), testPortfolio, testDay)
	require.NoError(t, err)
	assert.Equal(t, 1, result.PricedAssets)
	assert.Equal(t, 2, result.UnpricedAssets)
}

func TestEngine_Run_NetFlowValuation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockStore(ctrl)
	passthroughAtomic(mockStore)

	mockStore.EXPECT().ListHoldings(gomock.Any(), uint64(1)).Return(nil, nil)
	mockStore.EXPECT().ListFlowTransactions(gomock.Any(), uint64(1), gomock.Any(), gomock.Any()).
		Return([]*schema.Transaction{
			// Base-currency flows count at face value
			{Type: "deposit", Amount: dec("100"), Asset: schema.Asset{Symbol: "USDT"}},
			{Type: "withdrawal", Amount: dec("30"), Asset: schema.Asset{Symbol: "USDT"}},
			// A flow priced in base counts as amount times price
			{Type: "deposit", Amount: dec("0.5"),
				Price: decimal.NewNullDecimal(dec("3000")), PriceCurrency: "USDT",
				Asset: schema.Asset{Symbol: "ETH"}},
			// No price and not base: ignored
			{Type: "deposit", Amount: dec("1"), Asset: schema.Asset{Symbol: "BTC"}},
			// Priced in a different currency: ignored
			{Type: "withdrawal", Amount: dec("2"),
				Price: decimal.NewNullDecimal(dec("90000")), PriceCurrency: "EUR",
				Asset: schema.Asset{Symbol: "BTC"}},
		}, nil)
	mockStore.EXPECT().GetDailyValuation(gomock.Any(), uint64(1), gomock.Any()).Return(nil, nil)
	mockStore.EXPECT().UpsertDailyValuation(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, row *schema.PortfolioValuationDaily) error {
			assert.Equal(t, "1570", row.NetFlow.String())
			return nil
		})
	mockStore.EXPECT().UpsertDailyPositions(gomock.Any(), gomock.Any()).Return(nil)

	engine := valuation.NewEngine(mockStore)
	_, err := engine.Run(context.Background(), testPortfolio, testDay)
	require.NoError(t, err)
}
