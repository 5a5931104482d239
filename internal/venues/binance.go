package venues

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/domain"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/logger"
)

// binanceAdapter syncs spot balances, futures positions and account activity
// through the official REST SDK.
type binanceAdapter struct {
	spot   *binance.Client
	fut    *futures.Client
	params domain.VenueParams
	deps   Deps
}

const (
	binanceSpotTestnetURL    = "https://testnet.binance.vision"
	binanceFuturesTestnetURL = "https://testnet.binancefuture.com"
)

func newBinanceAdapter(creds domain.Credentials, params domain.VenueParams, deps Deps) *binanceAdapter {
	spot := binance.NewClient(creds.APIKey, creds.APISecret)
	fut := futures.NewClient(creds.APIKey, creds.APISecret)
	// Testnet routing is per client; the SDK's package-level UseTestnet
	// switches would race between adapters built concurrently
	if params.Testnet {
		spot.BaseURL = binanceSpotTestnetURL
		fut.BaseURL = binanceFuturesTestnetURL
	}

	return &binanceAdapter{
		spot:   spot,
		fut:    fut,
		params: params,
		deps:   deps,
	}
}

func (b *binanceAdapter) Kind() domain.VenueKind {
	return domain.VenueBinance
}

// classifyBinanceErr maps SDK errors onto the retry taxonomy: invalid-key
// codes are permanent auth failures, throttling and transport errors are
// transient.
func classifyBinanceErr(err error) error {
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case -1022, -2014, -2015:
			return domain.NewAuthError(domain.VenueBinance, err)
		case -1003:
			return domain.NewTransientError(err)
		}
		return err
	}
	return domain.NewTransientError(err)
}

func (b *binanceAdapter) FetchBalances(ctx context.Context) ([]domain.Balance, error) {
	if err := b.deps.Limiter.Wait(ctx, domain.VenueBinance.String()); err != nil {
		return nil, err
	}

	account, err := b.spot.NewGetAccountService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance: fetch account: %w", classifyBinanceErr(err))
	}

	balances := make([]domain.Balance, 0, len(account.Balances))
	for _, raw := range account.Balances {
		free, errFree := decimal.NewFromString(raw.Free)
		locked, errLocked := decimal.NewFromString(raw.Locked)
		if errFree != nil || errLocked != nil {
			logger.Warn("binance: unparseable balance, skipping",
				zap.String("asset", raw.Asset), zap.String("free", raw.Free), zap.String("locked", raw.Locked))
			continue
		}
		total := free.Add(locked)
		if total.IsZero() {
			continue
		}
		balances = append(balances, domain.Balance{
			Symbol: strings.ToUpper(raw.Asset),
			Free:   free,
			Locked: locked,
			Total:  total,
		})
	}
	return balances, nil
}

func (b *binanceAdapter) FetchPositions(ctx context.Context) ([]domain.Position, error) {
	if err := b.deps.Limiter.Wait(ctx, domain.VenueBinance.String()); err != nil {
		return nil, err
	}

	risks, err := b.fut.NewGetPositionRiskService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance: fetch positions: %w", classifyBinanceErr(err))
	}

	positions := make([]domain.Position, 0, len(risks))
	for _, raw := range risks {
		size, err := decimal.NewFromString(raw.PositionAmt)
		if err != nil || size.IsZero() {
			continue
		}
		pos := domain.Position{
			Symbol: strings.ToUpper(raw.Symbol),
			Side:   domain.InferSide(size),
			Size:   size.Abs(),
		}
		if entry, err := decimal.NewFromString(raw.EntryPrice); err == nil && !entry.IsZero() {
			pos.EntryPrice = &entry
		}
		if mark, err := decimal.NewFromString(raw.MarkPrice); err == nil && !mark.IsZero() {
			pos.MarkPrice = &mark
		}
		if pnl, err := decimal.NewFromString(raw.UnRealizedProfit); err == nil {
			pos.UnrealizedPnL = &pnl
		}
		if lev, err := decimal.NewFromString(raw.Leverage); err == nil && !lev.IsZero() {
			pos.Leverage = &lev
		}
		positions = append(positions, pos)
	}
	return positions, nil
}

func (b *binanceAdapter) FetchActivities(ctx context.Context, req SnapshotRequest) ([]domain.ActivityLine, error) {
	var activities []domain.ActivityLine

	trades, err := b.fetchTrades(ctx, req)
	if err != nil {
		return nil, err
	}
	activities = append(activities, trades...)

	deposits, err := b.fetchDeposits(ctx, req)
	if err != nil {
		return nil, err
	}
	activities = append(activities, deposits...)

	withdrawals, err := b.fetchWithdrawals(ctx, req)
	if err != nil {
		return nil, err
	}
	activities = append(activities, withdrawals...)

	conversions, err := b.fetchConversions(ctx, req)
	if err != nil {
		return nil, err
	}
	activities = append(activities, conversions...)

	return sortAndCapActivities(activities, req.Limit), nil
}

// tradeSymbols derives the spot pairs to query from the currently held
// assets and the quote allowlist.
func (b *binanceAdapter) tradeSymbols(balances []domain.Balance) []string {
	quotes := b.params.QuoteAssets
	if len(quotes) == 0 {
		quotes = []string{"USDT"}
	}

	quoteSet := make(map[string]struct{}, len(quotes))
	for _, q := range quotes {
		quoteSet[strings.ToUpper(q)] = struct{}{}
	}

	var symbols []string
	for _, bal := range balances {
		if _, isQuote := quoteSet[bal.Symbol]; isQuote {
			continue
		}
		symbols = append(symbols, bal.Symbol+strings.ToUpper(quotes[0]))
	}
	return symbols
}

func (b *binanceAdapter) fetchTrades(ctx context.Context, req SnapshotRequest) ([]domain.ActivityLine, error) {
	balances, err := b.FetchBalances(ctx)
	if err != nil {
		return nil, err
	}

	var lines []domain.ActivityLine
	for _, symbol := range b.tradeSymbols(balances) {
		if err := b.deps.Limiter.Wait(ctx, domain.VenueBinance.String()); err != nil {
			return nil, err
		}

		svc := b.spot.NewListTradesService().Symbol(symbol)
		if !req.Since.IsZero() {
			svc = svc.StartTime(req.Since.UnixMilli())
		}
		if req.Limit > 0 {
			svc = svc.Limit(req.Limit)
		}

		trades, err := svc.Do(ctx)
		if err != nil {
			// Unlisted pairs are expected when the quote allowlist guesses wrong
			var apiErr *common.APIError
			if errors.As(err, &apiErr) && apiErr.Code == -1121 {
				continue
			}
			return nil, fmt.Errorf("binance: fetch trades %s: %w", symbol, classifyBinanceErr(err))
		}

		for _, t := range trades {
			amount, errAmt := decimal.NewFromString(t.Quantity)
			price, errPrice := decimal.NewFromString(t.Price)
			if errAmt != nil || errPrice != nil {
				continue
			}

			txType := domain.TransactionSell
			if t.IsBuyer {
				txType = domain.TransactionBuy
			}

			line := domain.ActivityLine{
				Type:       txType,
				Symbol:     strings.ToUpper(t.Symbol),
				Amount:     &amount,
				Price:      &price,
				ExecutedAt: time.UnixMilli(t.Time).UTC(),
				Raw: map[string]any{
					"tradeId": t.ID,
					"orderId": t.OrderID,
				},
			}
			if fee, err := decimal.NewFromString(t.Commission); err == nil {
				line.Fee = &fee
				line.FeeCurrency = strings.ToUpper(t.CommissionAsset)
			}
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func (b *binanceAdapter) fetchDeposits(ctx context.Context, req SnapshotRequest) ([]domain.ActivityLine, error) {
	if err := b.deps.Limiter.Wait(ctx, domain.VenueBinance.String()); err != nil {
		return nil, err
	}

	svc := b.spot.NewListDepositsService()
	if !req.Since.IsZero() {
		svc = svc.StartTime(req.Since.UnixMilli())
	}

	deposits, err := svc.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance: fetch deposits: %w", classifyBinanceErr(err))
	}

	lines := make([]domain.ActivityLine, 0, len(deposits))
	for _, d := range deposits {
		amount, err := decimal.NewFromString(d.Amount)
		if err != nil {
			continue
		}
		lines = append(lines, domain.ActivityLine{
			Type:       domain.TransactionDeposit,
			Symbol:     strings.ToUpper(d.Coin),
			Amount:     &amount,
			ExecutedAt: time.UnixMilli(d.InsertTime).UTC(),
			Raw: map[string]any{
				"txId": d.TxID,
			},
		})
	}
	return lines, nil
}

func (b *binanceAdapter) fetchWithdrawals(ctx context.Context, req SnapshotRequest) ([]domain.ActivityLine, error) {
	if err := b.deps.Limiter.Wait(ctx, domain.VenueBinance.String()); err != nil {
		return nil, err
	}

	svc := b.spot.NewListWithdrawsService()
	if !req.Since.IsZero() {
		svc = svc.StartTime(req.Since.UnixMilli())
	}

	withdrawals, err := svc.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance: fetch withdrawals: %w", classifyBinanceErr(err))
	}

	lines := make([]domain.ActivityLine, 0, len(withdrawals))
	for _, w := range withdrawals {
		amount, err := decimal.NewFromString(w.Amount)
		if err != nil {
			continue
		}
		line := domain.ActivityLine{
			Type:   domain.TransactionWithdrawal,
			Symbol: strings.ToUpper(w.Coin),
			Amount: &amount,
			Raw: map[string]any{
				"id":   w.ID,
				"txId": w.TxID,
			},
		}
		if applyTime, err := time.Parse("2006-01-02 15:04:05", w.ApplyTime); err == nil {
			line.ExecutedAt = applyTime.UTC()
		}
		if fee, err := decimal.NewFromString(w.TransactionFee); err == nil && fee.IsPositive() {
			line.Fee = &fee
			line.FeeCurrency = strings.ToUpper(w.Coin)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (b *binanceAdapter) fetchConversions(ctx context.Context, req SnapshotRequest) ([]domain.ActivityLine, error) {
	if err := b.deps.Limiter.Wait(ctx, domain.VenueBinance.String()); err != nil {
		return nil, err
	}

	now := b.deps.Clock.Now()
	since := req.Since
	if since.IsZero() {
		// The convert endpoint requires a window; it allows at most 30 days
		since = now.AddDate(0, 0, -30)
	}

	history, err := b.spot.NewConvertTradeHistoryService().
		StartTime(since.UnixMilli()).
		EndTime(now.UnixMilli()).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance: fetch conversions: %w", classifyBinanceErr(err))
	}

	lines := make([]domain.ActivityLine, 0, len(history.List))
	for _, c := range history.List {
		fromAmount, errFrom := decimal.NewFromString(c.FromAmount)
		toAmount, errTo := decimal.NewFromString(c.ToAmount)
		if errFrom != nil || errTo != nil {
			continue
		}
		lines = append(lines, domain.ActivityLine{
			Type:       domain.TransactionConversion,
			Symbol:     strings.ToUpper(c.FromAsset) + strings.ToUpper(c.ToAsset),
			BaseAsset:  strings.ToUpper(c.FromAsset),
			QuoteAsset: strings.ToUpper(c.ToAsset),
			Amount:     &fromAmount,
			Price:      &toAmount,
			ExecutedAt: time.UnixMilli(c.CreateTime).UTC(),
			Raw: map[string]any{
				"orderId": c.OrderId,
			},
		})
	}
	return lines, nil
}

func (b *binanceAdapter) FetchSnapshot(ctx context.Context, req SnapshotRequest) (*domain.Snapshot, error) {
	return fetchSnapshot(ctx, b, req, b.deps.Clock)
}
