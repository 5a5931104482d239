package valuation

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/domain"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/logger"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/store"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/store/schema"
)

// Result summarizes one portfolio valuation run
type Result struct {
	PortfolioID    uint64          `json:"portfolio_id"`
	SnapshotDate   string          `json:"snapshot_date"`
	TotalValue     decimal.Decimal `json:"total_value"`
	NetFlow        decimal.Decimal `json:"net_flow"`
	PnL            decimal.Decimal `json:"pnl"`
	Currency       string          `json:"currency"`
	PricedAssets   int             `json:"priced_assets"`
	UnpricedAssets int             `json:"unpriced_assets"`
}

// Engine computes daily portfolio valuations with carry-forward PnL
type Engine struct {
	store store.Store
}

// NewEngine creates a valuation engine over the given store
func NewEngine(s store.Store) *Engine {
	return &Engine{store: s}
}

// Run values one portfolio for one calendar date inside a single transaction:
// resolve a base-currency price per holding, sum the priced values, net the
// day's flows, subtract the previous day's value, and upsert the valuation
// plus its per-asset breakdown. Re-running a date overwrites the same rows.
func (e *Engine) Run(ctx context.Context, portfolio *schema.Portfolio, date time.Time) (*Result, error) {
	day := date.UTC().Truncate(24 * time.Hour)

	var result *Result
	err := e.store.Atomic(ctx, func(tx store.Store) error {
		r, err := e.runInTx(ctx, tx, portfolio, day)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to value portfolio %d: %w", portfolio.ID, err)
	}
	return result, nil
}

func (e *Engine) runInTx(ctx context.Context, tx store.Store, portfolio *schema.Portfolio, day time.Time) (*Result, error) {
	base := portfolio.BaseCurrency

	holdings, err := tx.ListHoldings(ctx, portfolio.ID)
	if err != nil {
		return nil, err
	}

	totalValue := decimal.Zero
	priced, unpriced := 0, 0
	positionRows := make([]*schema.PortfolioPositionDaily, 0, len(holdings))

	for _, holding := range holdings {
		if holding.Quantity.IsZero() {
			continue
		}

		price, err := e.resolvePrice(ctx, tx, portfolio.ID, holding, base)
		if err != nil {
			return nil, err
		}

		row := &schema.PortfolioPositionDaily{
			PortfolioID:  portfolio.ID,
			AssetID:      holding.AssetID,
			SnapshotDate: day,
			Quantity:     holding.Quantity,
			Currency:     base,
		}
		if price != nil {
			value := holding.Quantity.Mul(*price)
			row.Price = decimal.NewNullDecimal(*price)
			row.Value = decimal.NewNullDecimal(value)
			totalValue = totalValue.Add(value)
			priced++
		} else {
			unpriced++
			logger.Debug("holding left unpriced",
				zap.Uint64("portfolio_id", portfolio.ID),
				zap.Uint64("asset_id", holding.AssetID),
				zap.String("currency", base))
		}
		positionRows = append(positionRows, row)
	}

	netFlow, err := e.netFlow(ctx, tx, portfolio.ID, day, base)
	if err != nil {
		return nil, err
	}

	prevValue := decimal.Zero
	prev, err := tx.GetDailyValuation(ctx, portfolio.ID, day.AddDate(0, 0, -1))
	if err != nil {
		return nil, err
	}
	if prev != nil {
		prevValue = prev.TotalValue
	}

	// A missing previous row keeps prevValue at zero, so the first observed
	// day books the whole unexplained value as PnL
	pnl := totalValue.Sub(prevValue).Sub(netFlow)

	if err := tx.UpsertDailyValuation(ctx, &schema.PortfolioValuationDaily{
		PortfolioID:  portfolio.ID,
		SnapshotDate: day,
		TotalValue:   totalValue,
		NetFlow:      netFlow,
		PnL:          pnl,
		Currency:     base,
	}); err != nil {
		return nil, err
	}
	if err := tx.UpsertDailyPositions(ctx, positionRows); err != nil {
		return nil, err
	}

	return &Result{
		PortfolioID:    portfolio.ID,
		SnapshotDate:   day.Format("2006-01-02"),
		TotalValue:     totalValue,
		NetFlow:        netFlow,
		PnL:            pnl,
		Currency:       base,
		PricedAssets:   priced,
		UnpricedAssets: unpriced,
	}, nil
}

// resolvePrice finds a base-currency price for a holding: the recorded
// average buy price when it is denominated in base, else the latest
// transaction price in base, else nil. An asset that IS the base currency
// prices at 1.
func (e *Engine) resolvePrice(ctx context.Context, tx store.Store, portfolioID uint64, holding *schema.PortfolioAsset, base string) (*decimal.Decimal, error) {
	if holding.Asset.Symbol == base {
		one := decimal.NewFromInt(1)
		return &one, nil
	}
	// A currency holding has no market price in another currency without FX
	if holding.Asset.AssetType == string(domain.AssetTypeCurrency) {
		return nil, nil
	}

	if holding.AvgBuyPrice.Valid && holding.AvgBuyCurrency == base {
		return &holding.AvgBuyPrice.Decimal, nil
	}

	latest, err := tx.LatestTransactionPrice(ctx, portfolioID, holding.AssetID, base)
	if err != nil {
		return nil, err
	}
	return latest, nil
}

// netFlow sums the day's deposits minus withdrawals. A flow counts when it
// is denominated in the base currency directly, or when it carries a price
// quoted in base, in which case it contributes amount times price. Flows
// priced in other currencies are ignored (no FX conversion).
func (e *Engine) netFlow(ctx context.Context, tx store.Store, portfolioID uint64, day time.Time, base string) (decimal.Decimal, error) {
	flows, err := tx.ListFlowTransactions(ctx, portfolioID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return decimal.Zero, err
	}

	net := decimal.Zero
	for _, flow := range flows {
		var value decimal.Decimal
		switch {
		case flow.Asset.Symbol == base:
			value = flow.Amount
		case flow.Price.Valid && flow.PriceCurrency == base:
			value = flow.Amount.Mul(flow.Price.Decimal)
		default:
			continue
		}
		switch domain.TransactionType(flow.Type) {
		case domain.TransactionDeposit:
			net = net.Add(value)
		case domain.TransactionWithdrawal:
			net = net.Sub(value)
		}
	}
	return net, nil
}
