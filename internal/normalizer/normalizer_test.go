package normalizer_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/domain"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/normalizer"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func binanceConn() domain.Connection {
	id := uint64(7)
	return domain.Connection{
		UserID:        1,
		PortfolioID:   2,
		Venue:         domain.VenueBinance,
		IntegrationID: &id,
	}
}

func TestNormalize_Trade(t *testing.T) {
	line := domain.ActivityLine{
		Type:        domain.TransactionBuy,
		Symbol:      "BTCUSDT",
		Amount:      dec("0.5"),
		Price:       dec("60000"),
		Fee:         dec("0.0005"),
		FeeCurrency: "btc",
		ExecutedAt:  time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC),
		Raw:         map[string]any{"tradeId": "t-42"},
	}

	out := normalizer.Normalize(line, binanceConn())
	require.Len(t, out.Drafts, 1)
	assert.Zero(t, out.Skipped())

	draft := out.Drafts[0]
	assert.Equal(t, "BTC", draft.Symbol)
	assert.Equal(t, domain.AssetTypeCrypto, draft.AssetType)
	assert.Equal(t, domain.TransactionBuy, draft.Type)
	assert.Equal(t, "0.5", draft.Amount.String())
	require.NotNil(t, draft.Price)
	assert.Equal(t, "60000", draft.Price.String())
	assert.Equal(t, "USDT", draft.PriceCurrency)
	assert.Equal(t, "BTC", draft.FeeCurrency)
	assert.Equal(t, "buy:t-42", draft.DedupeKey)
	assert.Equal(t, "binance:BTC", draft.MarketURL(domain.VenueBinance))
}

func TestNormalize_TradeWithExplicitLegs(t *testing.T) {
	line := domain.ActivityLine{
		Type:       domain.TransactionSell,
		Symbol:     "SBER",
		BaseAsset:  "SBER",
		QuoteAsset: "RUB",
		Amount:     dec("10"),
		Price:      dec("310.5"),
		ExecutedAt: time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC),
		Raw:        map[string]any{"id": "op-9"},
	}

	conn := domain.Connection{Venue: domain.VenueTBank}
	out := normalizer.Normalize(line, conn)
	require.Len(t, out.Drafts, 1)

	draft := out.Drafts[0]
	assert.Equal(t, "SBER", draft.Symbol)
	assert.Equal(t, domain.AssetTypeStockRU, draft.AssetType)
	assert.Equal(t, "RUB", draft.PriceCurrency)
}

func TestNormalize_Transfer(t *testing.T) {
	line := domain.ActivityLine{
		Type:       domain.TransactionDeposit,
		Symbol:     "usdt",
		Amount:     dec("500"),
		ExecutedAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		Raw:        map[string]any{"txId": "0xabc"},
	}

	out := normalizer.Normalize(line, binanceConn())
	require.Len(t, out.Drafts, 1)

	draft := out.Drafts[0]
	assert.Equal(t, "USDT", draft.Symbol)
	assert.Equal(t, domain.TransactionDeposit, draft.Type)
	assert.Nil(t, draft.Price)
	assert.Equal(t, "deposit:0xabc", draft.DedupeKey)
}

func TestNormalize_ConversionTwoLegs(t *testing.T) {
	line := domain.ActivityLine{
		Type:       domain.TransactionConversion,
		Symbol:     "BTCUSDT",
		BaseAsset:  "BTC",
		QuoteAsset: "USDT",
		Amount:     dec("0.1"),
		Price:      dec("6000"),
		ExecutedAt: time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC),
		Raw:        map[string]any{"orderId": "c-1"},
	}

	out := normalizer.Normalize(line, binanceConn())
	require.Len(t, out.Drafts, 2)

	from := out.Drafts[0]
	assert.Equal(t, "BTC", from.Symbol)
	assert.Equal(t, "0.1", from.Amount.String())
	assert.Equal(t, "USDT", from.PriceCurrency)
	require.NotNil(t, from.Price)
	assert.Equal(t, "60000", from.Price.String())
	assert.Equal(t, "conversion:c-1:from", from.DedupeKey)

	to := out.Drafts[1]
	assert.Equal(t, "USDT", to.Symbol)
	assert.Equal(t, "6000", to.Amount.String())
	assert.Equal(t, "BTC", to.PriceCurrency)
	assert.Equal(t, "conversion:c-1:to", to.DedupeKey)

	assert.NotEqual(t, from.DedupeKey, to.DedupeKey)
}

func TestNormalize_ConversionLegIndependence(t *testing.T) {
	at := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)

	t.Run("missing target amount keeps source leg unpriced", func(t *testing.T) {
		line := domain.ActivityLine{
			Type:       domain.TransactionConversion,
			BaseAsset:  "BTC",
			QuoteAsset: "USDT",
			Amount:     dec("0.1"),
			ExecutedAt: at,
			Raw:        map[string]any{"orderId": "c-3"},
		}

		out := normalizer.Normalize(line, binanceConn())
		require.Len(t, out.Drafts, 1)
		assert.Equal(t, 1, out.SkippedMissingAmount)

		from := out.Drafts[0]
		assert.Equal(t, "BTC", from.Symbol)
		assert.Equal(t, "0.1", from.Amount.String())
		assert.Nil(t, from.Price)
		assert.Equal(t, "conversion:c-3:from", from.DedupeKey)
	})

	t.Run("missing target asset keeps source leg", func(t *testing.T) {
		line := domain.ActivityLine{
			Type:       domain.TransactionConversion,
			BaseAsset:  "BTC",
			Amount:     dec("0.1"),
			Price:      dec("6000"),
			ExecutedAt: at,
			Raw:        map[string]any{"orderId": "c-4"},
		}

		out := normalizer.Normalize(line, binanceConn())
		require.Len(t, out.Drafts, 1)
		assert.Equal(t, 1, out.SkippedMissingAsset)

		from := out.Drafts[0]
		assert.Equal(t, "BTC", from.Symbol)
		assert.Nil(t, from.Price)
	})

	t.Run("both legs missing counts two skips", func(t *testing.T) {
		line := domain.ActivityLine{Type: domain.TransactionConversion, ExecutedAt: at}

		out := normalizer.Normalize(line, binanceConn())
		assert.Empty(t, out.Drafts)
		assert.Equal(t, 2, out.SkippedMissingAsset)
	})
}

func TestNormalize_SkipCounters(t *testing.T) {
	conn := binanceConn()
	at := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		line domain.ActivityLine
		want func(t *testing.T, out normalizer.Outcome)
	}{
		{
			name: "unmapped type",
			line: domain.ActivityLine{Type: "staking_reward", Symbol: "ETH", Amount: dec("1"), ExecutedAt: at},
			want: func(t *testing.T, out normalizer.Outcome) {
				assert.Equal(t, 1, out.SkippedUnmapped)
			},
		},
		{
			name: "trade without symbol",
			line: domain.ActivityLine{Type: domain.TransactionBuy, Amount: dec("1"), ExecutedAt: at},
			want: func(t *testing.T, out normalizer.Outcome) {
				assert.Equal(t, 1, out.SkippedMissingAsset)
			},
		},
		{
			name: "trade without amount",
			line: domain.ActivityLine{Type: domain.TransactionBuy, Symbol: "BTCUSDT", ExecutedAt: at},
			want: func(t *testing.T, out normalizer.Outcome) {
				assert.Equal(t, 1, out.SkippedMissingAmount)
			},
		},
		{
			name: "transfer with zero amount",
			line: domain.ActivityLine{Type: domain.TransactionDeposit, Symbol: "USDT", Amount: dec("0"), ExecutedAt: at},
			want: func(t *testing.T, out normalizer.Outcome) {
				assert.Equal(t, 1, out.SkippedMissingAmount)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := normalizer.Normalize(tt.line, conn)
			assert.Empty(t, out.Drafts)
			assert.Equal(t, 1, out.Skipped())
			tt.want(t, out)
		})
	}
}

func TestNormalizeAll(t *testing.T) {
	at := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	lines := []domain.ActivityLine{
		{Type: domain.TransactionBuy, Symbol: "BTCUSDT", Amount: dec("1"), Price: dec("60000"), ExecutedAt: at, Raw: map[string]any{"tradeId": "t-1"}},
		{Type: "airdrop", Symbol: "XYZ", Amount: dec("100"), ExecutedAt: at},
		{Type: domain.TransactionConversion, BaseAsset: "ETH", QuoteAsset: "USDT", Amount: dec("2"), Price: dec("6000"), ExecutedAt: at, Raw: map[string]any{"orderId": "c-2"}},
	}

	out := normalizer.NormalizeAll(lines, binanceConn())
	assert.Len(t, out.Drafts, 3)
	assert.Equal(t, 1, out.SkippedUnmapped)
}
