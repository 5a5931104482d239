package venues

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/domain"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/logger"
)

const (
	tbankOperationsService = "/rest/tinkoff.public.invest.api.contract.v1.OperationsService"
	tbankUsersService      = "/rest/tinkoff.public.invest.api.contract.v1.UsersService"
)

// tbankAdapter syncs a brokerage account through the public invest REST API.
// Access tokens are short-lived; the adapter refreshes them lazily and hands
// the new pair to PersistTokens so the next sync starts warm.
type tbankAdapter struct {
	creds  domain.Credentials
	params domain.VenueParams
	deps   Deps

	// tokenMu single-flights refreshes across the concurrent snapshot fetches
	tokenMu sync.Mutex
}

func newTBankAdapter(creds domain.Credentials, params domain.VenueParams, deps Deps) *tbankAdapter {
	return &tbankAdapter{
		creds:  creds,
		params: params,
		deps:   deps,
	}
}

func (t *tbankAdapter) Kind() domain.VenueKind {
	return domain.VenueTBank
}

// tbankMoney is the protobuf MoneyValue rendered as REST JSON: whole units as
// a string plus a nano fraction.
type tbankMoney struct {
	Currency string `json:"currency"`
	Units    string `json:"units"`
	Nano     int64  `json:"nano"`
}

func (m tbankMoney) Decimal() decimal.Decimal {
	units := int64(0)
	if m.Units != "" {
		if parsed, err := strconv.ParseInt(m.Units, 10, 64); err == nil {
			units = parsed
		}
	}
	whole := decimal.NewFromInt(units)
	frac := decimal.New(m.Nano, -9)
	return whole.Add(frac)
}

type tbankTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// accessToken returns a token valid for at least the configured expiry
// margin, refreshing through the auth endpoint when the current one is stale.
func (t *tbankAdapter) accessToken(ctx context.Context) (string, error) {
	t.tokenMu.Lock()
	defer t.tokenMu.Unlock()

	margin := t.deps.Config.TBank.TokenExpiryMargin
	if t.creds.AccessToken != "" {
		if t.creds.TokenExpiry == nil || t.deps.Clock.Now().Add(margin).Before(*t.creds.TokenExpiry) {
			return t.creds.AccessToken, nil
		}
	}

	if t.creds.RefreshToken == "" {
		return "", domain.NewAuthError(domain.VenueTBank, errors.New("access token expired and no refresh token available"))
	}

	payload, err := json.Marshal(map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": t.creds.RefreshToken,
	})
	if err != nil {
		return "", fmt.Errorf("tbank: marshal token request: %w", err)
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")

	body, err := t.deps.HTTP.Post(ctx, t.deps.Config.TBank.AuthURL, headers, bytes.NewReader(payload))
	if err != nil {
		var statusErr *domain.HTTPStatusError
		if errors.As(err, &statusErr) && statusErr.Status >= 400 && statusErr.Status < 500 {
			return "", domain.NewAuthError(domain.VenueTBank, err)
		}
		return "", fmt.Errorf("tbank: refresh token: %w", err)
	}

	var token tbankTokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return "", fmt.Errorf("tbank: decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", domain.NewAuthError(domain.VenueTBank, errors.New("auth endpoint returned empty access token"))
	}

	t.creds.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		t.creds.RefreshToken = token.RefreshToken
	}
	if token.ExpiresIn > 0 {
		expiry := t.deps.Clock.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
		t.creds.TokenExpiry = &expiry
	}

	if t.deps.PersistTokens != nil {
		if err := t.deps.PersistTokens(ctx, t.creds); err != nil {
			logger.Warn("failed to persist refreshed tokens", zap.Error(err), zap.String("venue", domain.VenueTBank.String()))
		}
	}

	return t.creds.AccessToken, nil
}

// call performs one authenticated POST against an invest API service method
func (t *tbankAdapter) call(ctx context.Context, service, method string, request any, result any) error {
	if err := t.deps.Limiter.Wait(ctx, domain.VenueTBank.String()); err != nil {
		return err
	}

	token, err := t.accessToken(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("tbank: marshal request: %w", err)
	}

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+token)
	headers.Set("Content-Type", "application/json")

	url := strings.TrimRight(t.deps.Config.TBank.BaseURL, "/") + service + "/" + method
	body, err := t.deps.HTTP.Post(ctx, url, headers, bytes.NewReader(payload))
	if err != nil {
		var statusErr *domain.HTTPStatusError
		if errors.As(err, &statusErr) && domain.AuthHTTPStatus(statusErr.Status) {
			return domain.NewAuthError(domain.VenueTBank, err)
		}
		return err
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("tbank: decode response: %w", err)
	}
	return nil
}

// accountID returns the configured brokerage account, falling back to the
// first account the token can see.
func (t *tbankAdapter) accountID(ctx context.Context) (string, error) {
	if t.params.AccountID != "" {
		return t.params.AccountID, nil
	}

	var resp struct {
		Accounts []struct {
			ID string `json:"id"`
		} `json:"accounts"`
	}
	if err := t.call(ctx, tbankUsersService, "GetAccounts", map[string]any{}, &resp); err != nil {
		return "", fmt.Errorf("tbank: list accounts: %w", err)
	}
	if len(resp.Accounts) == 0 {
		return "", errors.New("tbank: token has no visible accounts")
	}
	return resp.Accounts[0].ID, nil
}

type tbankPortfolioPosition struct {
	Figi           string     `json:"figi"`
	Ticker         string     `json:"ticker"`
	InstrumentType string     `json:"instrumentType"`
	Quantity       tbankMoney `json:"quantity"`
}

type tbankPortfolioResponse struct {
	Positions []tbankPortfolioPosition `json:"positions"`
}

func (t *tbankAdapter) FetchBalances(ctx context.Context) ([]domain.Balance, error) {
	accountID, err := t.accountID(ctx)
	if err != nil {
		return nil, err
	}

	var resp tbankPortfolioResponse
	err = t.call(ctx, tbankOperationsService, "GetPortfolio", map[string]string{"accountId": accountID}, &resp)
	if err != nil {
		return nil, fmt.Errorf("tbank: fetch portfolio: %w", err)
	}

	var balances []domain.Balance
	for _, pos := range resp.Positions {
		quantity := pos.Quantity.Decimal()
		if quantity.IsZero() {
			continue
		}

		symbol := strings.ToUpper(pos.Ticker)
		if pos.InstrumentType == "currency" && pos.Quantity.Currency != "" {
			symbol = strings.ToUpper(pos.Quantity.Currency)
		}
		if symbol == "" {
			symbol = strings.ToUpper(pos.Figi)
		}
		if symbol == "" {
			continue
		}

		balances = append(balances, domain.Balance{
			Symbol: symbol,
			Free:   quantity,
			Total:  quantity,
		})
	}
	return balances, nil
}

// FetchPositions returns nothing: the brokerage account holds instruments,
// not margined derivatives, and holdings already surface through balances.
func (t *tbankAdapter) FetchPositions(ctx context.Context) ([]domain.Position, error) {
	return []domain.Position{}, nil
}

type tbankOperation struct {
	ID            string     `json:"id"`
	OperationType string     `json:"operationType"`
	State         string     `json:"state"`
	Date          time.Time  `json:"date"`
	Currency      string     `json:"currency"`
	Payment       tbankMoney `json:"payment"`
	Price         tbankMoney `json:"price"`
	Quantity      string     `json:"quantity"`
	InstrumentTyp string     `json:"instrumentType"`
	Figi          string     `json:"figi"`
	Ticker        string     `json:"ticker"`
}

type tbankOperationsResponse struct {
	Operations []tbankOperation `json:"operations"`
}

var tbankOperationTypes = map[string]domain.TransactionType{
	"OPERATION_TYPE_INPUT":  domain.TransactionDeposit,
	"OPERATION_TYPE_OUTPUT": domain.TransactionWithdrawal,
	"OPERATION_TYPE_BUY":    domain.TransactionBuy,
	"OPERATION_TYPE_SELL":   domain.TransactionSell,
}

func (t *tbankAdapter) FetchActivities(ctx context.Context, req SnapshotRequest) ([]domain.ActivityLine, error) {
	accountID, err := t.accountID(ctx)
	if err != nil {
		return nil, err
	}

	request := map[string]any{
		"accountId": accountID,
		"state":     "OPERATION_STATE_EXECUTED",
		"to":        t.deps.Clock.Now().UTC().Format(time.RFC3339),
	}
	if !req.Since.IsZero() {
		request["from"] = req.Since.UTC().Format(time.RFC3339)
	}

	var resp tbankOperationsResponse
	if err := t.call(ctx, tbankOperationsService, "GetOperations", request, &resp); err != nil {
		return nil, fmt.Errorf("tbank: fetch operations: %w", err)
	}

	lines := make([]domain.ActivityLine, 0, len(resp.Operations))
	for _, op := range resp.Operations {
		txType, ok := tbankOperationTypes[op.OperationType]
		if !ok {
			continue
		}

		line := domain.ActivityLine{
			Type:       txType,
			ExecutedAt: op.Date.UTC(),
			Raw: map[string]any{
				"id":   op.ID,
				"figi": op.Figi,
			},
		}

		switch txType {
		case domain.TransactionDeposit, domain.TransactionWithdrawal:
			currency := strings.ToUpper(op.Currency)
			if currency == "" {
				currency = strings.ToUpper(op.Payment.Currency)
			}
			if currency == "" {
				continue
			}
			amount := op.Payment.Decimal().Abs()
			line.Symbol = currency
			line.Amount = &amount
		default:
			symbol := strings.ToUpper(op.Ticker)
			if symbol == "" {
				symbol = strings.ToUpper(op.Figi)
			}
			if symbol == "" {
				continue
			}
			line.Symbol = symbol
			if quantity, err := decimal.NewFromString(op.Quantity); err == nil && !quantity.IsZero() {
				amount := quantity.Abs()
				line.Amount = &amount
			}
			if price := op.Price.Decimal(); !price.IsZero() {
				line.Price = &price
				line.BaseAsset = symbol
				line.QuoteAsset = strings.ToUpper(op.Price.Currency)
			}
		}

		lines = append(lines, line)
	}

	return sortAndCapActivities(lines, req.Limit), nil
}

func (t *tbankAdapter) FetchSnapshot(ctx context.Context, req SnapshotRequest) (*domain.Snapshot, error) {
	return fetchSnapshot(ctx, t, req, t.deps.Clock)
}
