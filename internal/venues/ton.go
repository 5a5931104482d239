package venues

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/domain"
)

// tonNanoExponent scales raw nanoton chain values to whole coins
const tonNanoExponent = -9

// tonAdapter tracks a watch-only wallet through the toncenter HTTP API. No
// credentials are involved; the address is public chain data.
type tonAdapter struct {
	address string
	params  domain.VenueParams
	deps    Deps
}

func newTONAdapter(address string, params domain.VenueParams, deps Deps) *tonAdapter {
	return &tonAdapter{
		address: address,
		params:  params,
		deps:    deps,
	}
}

func (t *tonAdapter) Kind() domain.VenueKind {
	return domain.VenueTON
}

type tonEnvelope[T any] struct {
	OK     bool   `json:"ok"`
	Result T      `json:"result"`
	Error  string `json:"error"`
	Code   int    `json:"code"`
}

func tonGet[T any](ctx context.Context, t *tonAdapter, method string, query url.Values) (T, error) {
	var zero T

	if err := t.deps.Limiter.Wait(ctx, domain.VenueTON.String()); err != nil {
		return zero, err
	}

	headers := http.Header{}
	if t.deps.Config.TON.APIKey != "" {
		headers.Set("X-API-Key", t.deps.Config.TON.APIKey)
	}

	endpoint := strings.TrimRight(t.deps.Config.TON.BaseURL, "/") + "/" + method
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var envelope tonEnvelope[T]
	if err := t.deps.HTTP.Get(ctx, endpoint, headers, &envelope); err != nil {
		return zero, err
	}
	if !envelope.OK {
		err := fmt.Errorf("toncenter: %s: %s (code %d)", method, envelope.Error, envelope.Code)
		if domain.TransientHTTPStatus(envelope.Code) {
			return zero, domain.NewTransientError(err)
		}
		return zero, err
	}
	return envelope.Result, nil
}

func (t *tonAdapter) FetchBalances(ctx context.Context) ([]domain.Balance, error) {
	query := url.Values{}
	query.Set("address", t.address)

	raw, err := tonGet[string](ctx, t, "getAddressBalance", query)
	if err != nil {
		return nil, fmt.Errorf("ton: fetch balance: %w", err)
	}

	nanotons, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("ton: parse balance %q: %w", raw, err)
	}

	total := decimal.New(nanotons, tonNanoExponent)
	if total.IsZero() {
		return []domain.Balance{}, nil
	}

	return []domain.Balance{{
		Symbol: "TON",
		Free:   total,
		Total:  total,
	}}, nil
}

// FetchPositions returns nothing: a plain wallet has no derivatives
func (t *tonAdapter) FetchPositions(ctx context.Context) ([]domain.Position, error) {
	return []domain.Position{}, nil
}

type tonMessage struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Value       string `json:"value"`
}

type tonTransaction struct {
	Utime         int64 `json:"utime"`
	TransactionID struct {
		Hash string `json:"hash"`
		Lt   string `json:"lt"`
	} `json:"transaction_id"`
	Fee     string       `json:"fee"`
	InMsg   *tonMessage  `json:"in_msg"`
	OutMsgs []tonMessage `json:"out_msgs"`
}

func (t *tonAdapter) FetchActivities(ctx context.Context, req SnapshotRequest) ([]domain.ActivityLine, error) {
	query := url.Values{}
	query.Set("address", t.address)
	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	query.Set("limit", strconv.Itoa(limit))

	txs, err := tonGet[[]tonTransaction](ctx, t, "getTransactions", query)
	if err != nil {
		return nil, fmt.Errorf("ton: fetch transactions: %w", err)
	}

	var lines []domain.ActivityLine
	for _, tx := range txs {
		executedAt := time.Unix(tx.Utime, 0).UTC()
		if !req.Since.IsZero() && executedAt.Before(req.Since) {
			continue
		}

		fee := parseNanotons(tx.Fee)

		// Incoming value on a message with a source is a deposit; messages
		// without a source are chain-internal and carry no funds.
		if tx.InMsg != nil && tx.InMsg.Source != "" {
			if amount := parseNanotons(tx.InMsg.Value); !amount.IsZero() {
				lines = append(lines, tonLine(domain.TransactionDeposit, amount, fee, executedAt, tx, tx.TransactionID.Hash))
			}
		}

		for i, out := range tx.OutMsgs {
			if amount := parseNanotons(out.Value); !amount.IsZero() {
				// one transaction can fan out several messages
				hash := tx.TransactionID.Hash + ":" + strconv.Itoa(i)
				lines = append(lines, tonLine(domain.TransactionWithdrawal, amount, fee, executedAt, tx, hash))
			}
		}
	}

	return sortAndCapActivities(lines, req.Limit), nil
}

func tonLine(txType domain.TransactionType, amount, fee decimal.Decimal, executedAt time.Time, tx tonTransaction, hash string) domain.ActivityLine {
	line := domain.ActivityLine{
		Type:       txType,
		Symbol:     "TON",
		Amount:     &amount,
		ExecutedAt: executedAt,
		Raw: map[string]any{
			"hash": hash,
			"lt":   tx.TransactionID.Lt,
		},
	}
	if !fee.IsZero() {
		line.Fee = &fee
		line.FeeCurrency = "TON"
	}
	return line
}

func parseNanotons(raw string) decimal.Decimal {
	if raw == "" {
		return decimal.Zero
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return decimal.Zero
	}
	return decimal.New(value, tonNanoExponent)
}

func (t *tonAdapter) FetchSnapshot(ctx context.Context, req SnapshotRequest) (*domain.Snapshot, error) {
	return fetchSnapshot(ctx, t, req, t.deps.Clock)
}
