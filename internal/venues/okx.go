package venues

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/domain"
)

const okxTimestampLayout = "2006-01-02T15:04:05.000Z"

// okxAdapter syncs balances, positions and activity through the signed v5
// REST API.
type okxAdapter struct {
	baseURL string
	creds   domain.Credentials
	params  domain.VenueParams
	deps    Deps
}

func newOKXAdapter(creds domain.Credentials, params domain.VenueParams, deps Deps) *okxAdapter {
	return &okxAdapter{
		baseURL: strings.TrimRight(deps.Config.OKX.BaseURL, "/"),
		creds:   creds,
		params:  params,
		deps:    deps,
	}
}

func (o *okxAdapter) Kind() domain.VenueKind {
	return domain.VenueOKX
}

// sign builds the OK-ACCESS headers for one request. The signature is a
// base64 HMAC-SHA256 over timestamp+method+path(+body).
func (o *okxAdapter) sign(method, requestPath string) http.Header {
	timestamp := o.deps.Clock.Now().UTC().Format(okxTimestampLayout)

	mac := hmac.New(sha256.New, []byte(o.creds.APISecret))
	mac.Write([]byte(timestamp + method + requestPath))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	headers := http.Header{}
	headers.Set("OK-ACCESS-KEY", o.creds.APIKey)
	headers.Set("OK-ACCESS-SIGN", signature)
	headers.Set("OK-ACCESS-TIMESTAMP", timestamp)
	headers.Set("OK-ACCESS-PASSPHRASE", o.creds.Passphrase)
	headers.Set("Content-Type", "application/json")
	if o.params.Testnet {
		headers.Set("x-simulated-trading", "1")
	}
	return headers
}

type okxEnvelope[T any] struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data []T    `json:"data"`
}

// get performs one signed GET and unwraps the OKX envelope
func okxGet[T any](ctx context.Context, o *okxAdapter, requestPath string) ([]T, error) {
	if err := o.deps.Limiter.Wait(ctx, domain.VenueOKX.String()); err != nil {
		return nil, err
	}

	var envelope okxEnvelope[T]
	err := o.deps.HTTP.Get(ctx, o.baseURL+requestPath, o.sign(http.MethodGet, requestPath), &envelope)
	if err != nil {
		var statusErr *domain.HTTPStatusError
		if errors.As(err, &statusErr) && domain.AuthHTTPStatus(statusErr.Status) {
			return nil, domain.NewAuthError(domain.VenueOKX, err)
		}
		return nil, err
	}

	if envelope.Code != "0" {
		apiErr := fmt.Errorf("okx: code %s: %s", envelope.Code, envelope.Msg)
		switch envelope.Code {
		case "50100", "50101", "50111", "50113", "50114":
			return nil, domain.NewAuthError(domain.VenueOKX, apiErr)
		case "50011", "50013":
			return nil, domain.NewTransientError(apiErr)
		}
		return nil, apiErr
	}

	return envelope.Data, nil
}

type okxBalanceDetail struct {
	Currency  string `json:"ccy"`
	CashBal   string `json:"cashBal"`
	AvailBal  string `json:"availBal"`
	FrozenBal string `json:"frozenBal"`
}

type okxBalance struct {
	Details []okxBalanceDetail `json:"details"`
}

func (o *okxAdapter) FetchBalances(ctx context.Context) ([]domain.Balance, error) {
	data, err := okxGet[okxBalance](ctx, o, "/api/v5/account/balance")
	if err != nil {
		return nil, fmt.Errorf("okx: fetch balances: %w", err)
	}

	var balances []domain.Balance
	for _, account := range data {
		for _, detail := range account.Details {
			total, err := decimal.NewFromString(detail.CashBal)
			if err != nil || total.IsZero() {
				continue
			}
			free := decimal.Zero
			if f, err := decimal.NewFromString(detail.AvailBal); err == nil {
				free = f
			}
			locked := decimal.Zero
			if l, err := decimal.NewFromString(detail.FrozenBal); err == nil {
				locked = l
			}
			balances = append(balances, domain.Balance{
				Symbol: strings.ToUpper(detail.Currency),
				Free:   free,
				Locked: locked,
				Total:  total,
			})
		}
	}
	return balances, nil
}

type okxPosition struct {
	InstID   string `json:"instId"`
	PosSide  string `json:"posSide"`
	Pos      string `json:"pos"`
	AvgPx    string `json:"avgPx"`
	MarkPx   string `json:"markPx"`
	Upl      string `json:"upl"`
	Leverage string `json:"lever"`
}

func (o *okxAdapter) FetchPositions(ctx context.Context) ([]domain.Position, error) {
	data, err := okxGet[okxPosition](ctx, o, "/api/v5/account/positions")
	if err != nil {
		return nil, fmt.Errorf("okx: fetch positions: %w", err)
	}

	var positions []domain.Position
	for _, raw := range data {
		size, err := decimal.NewFromString(raw.Pos)
		if err != nil || size.IsZero() {
			continue
		}

		side := domain.InferSide(size)
		switch strings.ToLower(raw.PosSide) {
		case "long":
			side = domain.SideLong
		case "short":
			side = domain.SideShort
		}

		pos := domain.Position{
			Symbol: strings.ToUpper(raw.InstID),
			Side:   side,
			Size:   size.Abs(),
		}
		if entry, err := decimal.NewFromString(raw.AvgPx); err == nil && !entry.IsZero() {
			pos.EntryPrice = &entry
		}
		if mark, err := decimal.NewFromString(raw.MarkPx); err == nil && !mark.IsZero() {
			pos.MarkPrice = &mark
		}
		if pnl, err := decimal.NewFromString(raw.Upl); err == nil {
			pos.UnrealizedPnL = &pnl
		}
		if lev, err := decimal.NewFromString(raw.Leverage); err == nil && !lev.IsZero() {
			pos.Leverage = &lev
		}
		positions = append(positions, pos)
	}
	return positions, nil
}

type okxFill struct {
	InstID   string `json:"instId"`
	InstType string `json:"instType"`
	Side     string `json:"side"`
	FillSz   string `json:"fillSz"`
	FillPx   string `json:"fillPx"`
	Fee      string `json:"fee"`
	FeeCcy   string `json:"feeCcy"`
	Ts       string `json:"ts"`
	TradeID  string `json:"tradeId"`
	OrdID    string `json:"ordId"`
}

type okxDeposit struct {
	Currency string `json:"ccy"`
	Amount   string `json:"amt"`
	Ts       string `json:"ts"`
	TxID     string `json:"txId"`
	DepID    string `json:"depId"`
}

type okxWithdrawal struct {
	Currency string `json:"ccy"`
	Amount   string `json:"amt"`
	Fee      string `json:"fee"`
	Ts       string `json:"ts"`
	TxID     string `json:"txId"`
	WdID     string `json:"wdId"`
}

func (o *okxAdapter) FetchActivities(ctx context.Context, req SnapshotRequest) ([]domain.ActivityLine, error) {
	var activities []domain.ActivityLine

	fills, err := o.fetchFills(ctx, req)
	if err != nil {
		return nil, err
	}
	activities = append(activities, fills...)

	deposits, err := o.fetchDeposits(ctx)
	if err != nil {
		return nil, err
	}
	activities = append(activities, deposits...)

	withdrawals, err := o.fetchWithdrawals(ctx)
	if err != nil {
		return nil, err
	}
	activities = append(activities, withdrawals...)

	return sortAndCapActivities(activities, req.Limit), nil
}

func (o *okxAdapter) fetchFills(ctx context.Context, req SnapshotRequest) ([]domain.ActivityLine, error) {
	requestPath := "/api/v5/trade/fills-history?instType=SPOT"
	if !req.Since.IsZero() {
		requestPath += "&begin=" + strconv.FormatInt(req.Since.UnixMilli(), 10)
	}

	data, err := okxGet[okxFill](ctx, o, requestPath)
	if err != nil {
		return nil, fmt.Errorf("okx: fetch fills: %w", err)
	}

	lines := make([]domain.ActivityLine, 0, len(data))
	for _, f := range data {
		amount, errAmt := decimal.NewFromString(f.FillSz)
		price, errPrice := decimal.NewFromString(f.FillPx)
		if errAmt != nil || errPrice != nil {
			continue
		}

		txType := domain.TransactionSell
		if strings.EqualFold(f.Side, "buy") {
			txType = domain.TransactionBuy
		}

		line := domain.ActivityLine{
			Type:   txType,
			Symbol: strings.ToUpper(f.InstID),
			Amount: &amount,
			Price:  &price,
			Raw: map[string]any{
				"tradeId": f.TradeID,
				"orderId": f.OrdID,
			},
		}
		if ms, err := strconv.ParseInt(f.Ts, 10, 64); err == nil {
			line.ExecutedAt = time.UnixMilli(ms).UTC()
		}
		// OKX reports fees as negative amounts
		if fee, err := decimal.NewFromString(f.Fee); err == nil && !fee.IsZero() {
			abs := fee.Abs()
			line.Fee = &abs
			line.FeeCurrency = strings.ToUpper(f.FeeCcy)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (o *okxAdapter) fetchDeposits(ctx context.Context) ([]domain.ActivityLine, error) {
	data, err := okxGet[okxDeposit](ctx, o, "/api/v5/asset/deposit-history")
	if err != nil {
		return nil, fmt.Errorf("okx: fetch deposits: %w", err)
	}

	lines := make([]domain.ActivityLine, 0, len(data))
	for _, d := range data {
		amount, err := decimal.NewFromString(d.Amount)
		if err != nil {
			continue
		}
		line := domain.ActivityLine{
			Type:   domain.TransactionDeposit,
			Symbol: strings.ToUpper(d.Currency),
			Amount: &amount,
			Raw: map[string]any{
				"id":   d.DepID,
				"txId": d.TxID,
			},
		}
		if ms, err := strconv.ParseInt(d.Ts, 10, 64); err == nil {
			line.ExecutedAt = time.UnixMilli(ms).UTC()
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (o *okxAdapter) fetchWithdrawals(ctx context.Context) ([]domain.ActivityLine, error) {
	data, err := okxGet[okxWithdrawal](ctx, o, "/api/v5/asset/withdrawal-history")
	if err != nil {
		return nil, fmt.Errorf("okx: fetch withdrawals: %w", err)
	}

	lines := make([]domain.ActivityLine, 0, len(data))
	for _, w := range data {
		amount, err := decimal.NewFromString(w.Amount)
		if err != nil {
			continue
		}
		line := domain.ActivityLine{
			Type:   domain.TransactionWithdrawal,
			Symbol: strings.ToUpper(w.Currency),
			Amount: &amount,
			Raw: map[string]any{
				"id":   w.WdID,
				"txId": w.TxID,
			},
		}
		if ms, err := strconv.ParseInt(w.Ts, 10, 64); err == nil {
			line.ExecutedAt = time.UnixMilli(ms).UTC()
		}
		if fee, err := decimal.NewFromString(w.Fee); err == nil && !fee.IsZero() {
			abs := fee.Abs()
			line.Fee = &abs
			line.FeeCurrency = strings.ToUpper(w.Currency)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (o *okxAdapter) FetchSnapshot(ctx context.Context, req SnapshotRequest) (*domain.Snapshot, error) {
	return fetchSnapshot(ctx, o, req, o.deps.Clock)
}
