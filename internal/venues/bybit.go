package venues

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	bybit "github.com/bybit-exchange/bybit.go.api"
	"github.com/shopspring/decimal"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/domain"
)

// bybitAdapter syncs unified-account balances, positions and activity
// through the official v5 REST SDK.
type bybitAdapter struct {
	client *bybit.Client
	params domain.VenueParams
	deps   Deps
}

func newBybitAdapter(creds domain.Credentials, params domain.VenueParams, deps Deps) *bybitAdapter {
	baseURL := bybit.MAINNET
	if params.Testnet {
		baseURL = bybit.TESTNET
	}
	return &bybitAdapter{
		client: bybit.NewBybitHttpClient(creds.APIKey, creds.APISecret, bybit.WithBaseURL(baseURL)),
		params: params,
		deps:   deps,
	}
}

func (b *bybitAdapter) Kind() domain.VenueKind {
	return domain.VenueBybit
}

func (b *bybitAdapter) categories() []string {
	if len(b.params.Categories) > 0 {
		return b.params.Categories
	}
	return []string{"spot", "linear"}
}

// positionCategories drops spot from the category list: the v5 position
// endpoint only serves derivatives.
func (b *bybitAdapter) positionCategories() []string {
	var out []string
	for _, category := range b.categories() {
		if category == "spot" {
			continue
		}
		out = append(out, category)
	}
	return out
}

// call runs one SDK request through the rate limiter and decodes the
// envelope's Result field into out.
func (b *bybitAdapter) call(ctx context.Context, params map[string]interface{},
	fn func(ctx context.Context, svc *bybit.BybitClientRequest) (*bybit.ServerResponse, error), out interface{}) error {
	if err := b.deps.Limiter.Wait(ctx, domain.VenueBybit.String()); err != nil {
		return err
	}

	resp, err := fn(ctx, b.client.NewUtaBybitServiceWithParams(params))
	if err != nil {
		return domain.NewTransientError(err)
	}

	if resp.RetCode != 0 {
		apiErr := fmt.Errorf("bybit: retCode %d: %s", resp.RetCode, resp.RetMsg)
		switch resp.RetCode {
		case 10003, 10004, 10005, 33004:
			return domain.NewAuthError(domain.VenueBybit, apiErr)
		case 10006, 10018:
			return domain.NewTransientError(apiErr)
		}
		return apiErr
	}

	data, err := json.Marshal(resp.Result)
	if err != nil {
		return fmt.Errorf("bybit: marshal result: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("bybit: decode result: %w", err)
	}
	return nil
}

type bybitWalletResult struct {
	List []struct {
		AccountType string `json:"accountType"`
		Coin        []struct {
			Coin          string `json:"coin"`
			WalletBalance string `json:"walletBalance"`
			Locked        string `json:"locked"`
		} `json:"coin"`
	} `json:"list"`
}

func (b *bybitAdapter) FetchBalances(ctx context.Context) ([]domain.Balance, error) {
	var result bybitWalletResult
	err := b.call(ctx, map[string]interface{}{"accountType": "UNIFIED"},
		func(ctx context.Context, svc *bybit.BybitClientRequest) (*bybit.ServerResponse, error) {
			return svc.GetAccountWallet(ctx)
		}, &result)
	if err != nil {
		return nil, fmt.Errorf("bybit: fetch wallet: %w", err)
	}

	var balances []domain.Balance
	for _, account := range result.List {
		for _, coin := range account.Coin {
			total, err := decimal.NewFromString(coin.WalletBalance)
			if err != nil || total.IsZero() {
				continue
			}
			locked := decimal.Zero
			if l, err := decimal.NewFromString(coin.Locked); err == nil {
				locked = l
			}
			balances = append(balances, domain.Balance{
				Symbol: strings.ToUpper(coin.Coin),
				Free:   total.Sub(locked),
				Locked: locked,
				Total:  total,
			})
		}
	}
	return balances, nil
}

type bybitPositionResult struct {
	List []struct {
		Symbol        string `json:"symbol"`
		Side          string `json:"side"`
		Size          string `json:"size"`
		AvgPrice      string `json:"avgPrice"`
		MarkPrice     string `json:"markPrice"`
		UnrealisedPnl string `json:"unrealisedPnl"`
		Leverage      string `json:"leverage"`
	} `json:"list"`
}

func (b *bybitAdapter) FetchPositions(ctx context.Context) ([]domain.Position, error) {
	var positions []domain.Position
	for _, category := range b.positionCategories() {
		var result bybitPositionResult
		err := b.call(ctx, map[string]interface{}{"category": category, "settleCoin": "USDT"},
			func(ctx context.Context, svc *bybit.BybitClientRequest) (*bybit.ServerResponse, error) {
				return svc.GetPositionList(ctx)
			}, &result)
		if err != nil {
			return nil, fmt.Errorf("bybit: fetch positions %s: %w", category, err)
		}

		for _, raw := range result.List {
			size, err := decimal.NewFromString(raw.Size)
			if err != nil || size.IsZero() {
				continue
			}
			side := domain.SideLong
			if strings.EqualFold(raw.Side, "Sell") {
				side = domain.SideShort
			}
			pos := domain.Position{
				Symbol: strings.ToUpper(raw.Symbol),
				Side:   side,
				Size:   size.Abs(),
			}
			if entry, err := decimal.NewFromString(raw.AvgPrice); err == nil && !entry.IsZero() {
				pos.EntryPrice = &entry
			}
			if mark, err := decimal.NewFromString(raw.MarkPrice); err == nil && !mark.IsZero() {
				pos.MarkPrice = &mark
			}
			if pnl, err := decimal.NewFromString(raw.UnrealisedPnl); err == nil {
				pos.UnrealizedPnL = &pnl
			}
			if lev, err := decimal.NewFromString(raw.Leverage); err == nil && !lev.IsZero() {
				pos.Leverage = &lev
			}
			positions = append(positions, pos)
		}
	}
	return positions, nil
}

type bybitExecutionResult struct {
	List []struct {
		Symbol    string `json:"symbol"`
		Side      string `json:"side"`
		ExecQty   string `json:"execQty"`
		ExecPrice string `json:"execPrice"`
		ExecFee   string `json:"execFee"`
		ExecTime  string `json:"execTime"`
		ExecID    string `json:"execId"`
		OrderID   string `json:"orderId"`
	} `json:"list"`
}

type bybitDepositResult struct {
	Rows []struct {
		Coin      string `json:"coin"`
		Amount    string `json:"amount"`
		SuccessAt string `json:"successAt"`
		TxID      string `json:"txID"`
	} `json:"rows"`
}

type bybitWithdrawalResult struct {
	Rows []struct {
		Coin        string `json:"coin"`
		Amount      string `json:"amount"`
		WithdrawFee string `json:"withdrawFee"`
		CreateTime  string `json:"createTime"`
		TxID        string `json:"txID"`
		WithdrawID  string `json:"withdrawId"`
	} `json:"rows"`
}

func (b *bybitAdapter) FetchActivities(ctx context.Context, req SnapshotRequest) ([]domain.ActivityLine, error) {
	var activities []domain.ActivityLine

	for _, category := range b.categories() {
		executions, err := b.fetchExecutions(ctx, category, req)
		if err != nil {
			return nil, err
		}
		activities = append(activities, executions...)
	}

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

	return sortAndCapActivities(activities, req.Limit), nil
}

func (b *bybitAdapter) fetchExecutions(ctx context.Context, category string, req SnapshotRequest) ([]domain.ActivityLine, error) {
	params := map[string]interface{}{"category": category}
	if !req.Since.IsZero() {
		params["startTime"] = req.Since.UnixMilli()
	}
	if req.Limit > 0 && req.Limit <= 100 {
		params["limit"] = req.Limit
	}

	var result bybitExecutionResult
	err := b.call(ctx, params,
		func(ctx context.Context, svc *bybit.BybitClientRequest) (*bybit.ServerResponse, error) {
			return svc.GetTradeHistory(ctx)
		}, &result)
	if err != nil {
		return nil, fmt.Errorf("bybit: fetch executions %s: %w", category, err)
	}

	futures := category != "spot"
	lines := make([]domain.ActivityLine, 0, len(result.List))
	for _, e := range result.List {
		amount, errAmt := decimal.NewFromString(e.ExecQty)
		price, errPrice := decimal.NewFromString(e.ExecPrice)
		if errAmt != nil || errPrice != nil {
			continue
		}

		var txType domain.TransactionType
		switch {
		case futures && strings.EqualFold(e.Side, "Buy"):
			txType = domain.TransactionFuturesBuy
		case futures:
			txType = domain.TransactionFuturesSell
		case strings.EqualFold(e.Side, "Buy"):
			txType = domain.TransactionBuy
		default:
			txType = domain.TransactionSell
		}

		line := domain.ActivityLine{
			Type:   txType,
			Symbol: strings.ToUpper(e.Symbol),
			Amount: &amount,
			Price:  &price,
			Raw: map[string]any{
				"id":      e.ExecID,
				"orderId": e.OrderID,
			},
		}
		if ms, err := strconv.ParseInt(e.ExecTime, 10, 64); err == nil {
			line.ExecutedAt = time.UnixMilli(ms).UTC()
		}
		if fee, err := decimal.NewFromString(e.ExecFee); err == nil && !fee.IsZero() {
			line.Fee = &fee
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (b *bybitAdapter) fetchDeposits(ctx context.Context, req SnapshotRequest) ([]domain.ActivityLine, error) {
	params := map[string]interface{}{}
	if !req.Since.IsZero() {
		params["startTime"] = req.Since.UnixMilli()
	}

	var result bybitDepositResult
	err := b.call(ctx, params,
		func(ctx context.Context, svc *bybit.BybitClientRequest) (*bybit.ServerResponse, error) {
			return svc.GetDepositRecords(ctx)
		}, &result)
	if err != nil {
		return nil, fmt.Errorf("bybit: fetch deposits: %w", err)
	}

	lines := make([]domain.ActivityLine, 0, len(result.Rows))
	for _, d := range result.Rows {
		amount, err := decimal.NewFromString(d.Amount)
		if err != nil {
			continue
		}
		line := domain.ActivityLine{
			Type:   domain.TransactionDeposit,
			Symbol: strings.ToUpper(d.Coin),
			Amount: &amount,
			Raw: map[string]any{
				"txId": d.TxID,
			},
		}
		if ms, err := strconv.ParseInt(d.SuccessAt, 10, 64); err == nil {
			line.ExecutedAt = time.UnixMilli(ms).UTC()
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (b *bybitAdapter) fetchWithdrawals(ctx context.Context, req SnapshotRequest) ([]domain.ActivityLine, error) {
	params := map[string]interface{}{}
	if !req.Since.IsZero() {
		params["startTime"] = req.Since.UnixMilli()
	}

	var result bybitWithdrawalResult
	err := b.call(ctx, params,
		func(ctx context.Context, svc *bybit.BybitClientRequest) (*bybit.ServerResponse, error) {
			return svc.GetWithdrawalRecords(ctx)
		}, &result)
	if err != nil {
		return nil, fmt.Errorf("bybit: fetch withdrawals: %w", err)
	}

	lines := make([]domain.ActivityLine, 0, len(result.Rows))
	for _, w := range result.Rows {
		amount, err := decimal.NewFromString(w.Amount)
		if err != nil {
			continue
		}
		line := domain.ActivityLine{
			Type:   domain.TransactionWithdrawal,
			Symbol: strings.ToUpper(w.Coin),
			Amount: &amount,
			Raw: map[string]any{
				"id":   w.WithdrawID,
				"txId": w.TxID,
			},
		}
		if ms, err := strconv.ParseInt(w.CreateTime, 10, 64); err == nil {
			line.ExecutedAt = time.UnixMilli(ms).UTC()
		}
		if fee, err := decimal.NewFromString(w.WithdrawFee); err == nil && !fee.IsZero() {
			line.Fee = &fee
			line.FeeCurrency = strings.ToUpper(w.Coin)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (b *bybitAdapter) FetchSnapshot(ctx context.Context, req SnapshotRequest) (*domain.Snapshot, error) {
	return fetchSnapshot(ctx, b, req, b.deps.Clock)
}
