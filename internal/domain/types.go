package domain

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// VenueKind identifies a supported venue (exchange, broker or wallet network)
type VenueKind string

const (
	VenueBinance VenueKind = "binance"
	VenueBybit   VenueKind = "bybit"
	VenueOKX     VenueKind = "okx"
	VenueTBank   VenueKind = "tbank"
	VenueTON     VenueKind = "ton"
)

// Valid reports whether the venue kind is one of the supported venues
func (v VenueKind) Valid() bool {
	switch v {
	case VenueBinance, VenueBybit, VenueOKX, VenueTBank, VenueTON:
		return true
	}
	return false
}

func (v VenueKind) String() string {
	return string(v)
}

// AssetType classifies what an Asset row represents
type AssetType string

const (
	AssetTypeCrypto   AssetType = "crypto"
	AssetTypeCurrency AssetType = "currency"
	AssetTypeStockRU  AssetType = "stock_ru"
)

// TransactionType is the normalized activity type vocabulary
type TransactionType string

const (
	TransactionBuy         TransactionType = "buy"
	TransactionSell        TransactionType = "sell"
	TransactionFuturesBuy  TransactionType = "futures_buy"
	TransactionFuturesSell TransactionType = "futures_sell"
	TransactionDeposit     TransactionType = "deposit"
	TransactionWithdrawal  TransactionType = "withdrawal"
	TransactionConversion  TransactionType = "conversion"
)

// Side is the direction of a derivatives position
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
	// SideNone marks a flat position; zero size carries no direction
	SideNone Side = ""
)

// InferSide derives the position side from a signed size
func InferSide(size decimal.Decimal) Side {
	switch {
	case size.IsZero():
		return SideNone
	case size.IsNegative():
		return SideShort
	default:
		return SideLong
	}
}

// Balance is one spot holding reported by a venue
type Balance struct {
	Symbol string          `json:"symbol"`
	Free   decimal.Decimal `json:"free"`
	Locked decimal.Decimal `json:"locked"`
	Total  decimal.Decimal `json:"total"`
}

// Position is one derivatives position reported by a venue.
// Size is always positive; direction lives in Side.
type Position struct {
	Symbol        string           `json:"symbol"`
	Side          Side             `json:"side"`
	Size          decimal.Decimal  `json:"size"`
	EntryPrice    *decimal.Decimal `json:"entry_price,omitempty"`
	MarkPrice     *decimal.Decimal `json:"mark_price,omitempty"`
	UnrealizedPnL *decimal.Decimal `json:"unrealized_pnl,omitempty"`
	Leverage      *decimal.Decimal `json:"leverage,omitempty"`
}

// ActivityLine is one venue activity record in the shared pre-normalization
// shape. For conversions the base leg rides in (BaseAsset, Amount) and the
// quote leg in (QuoteAsset, Price carrying the target amount).
type ActivityLine struct {
	Type        TransactionType  `json:"type"`
	Symbol      string           `json:"symbol"`
	BaseAsset   string           `json:"base_asset,omitempty"`
	QuoteAsset  string           `json:"quote_asset,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Fee         *decimal.Decimal `json:"fee,omitempty"`
	FeeCurrency string           `json:"fee_currency,omitempty"`
	ExecutedAt  time.Time        `json:"executed_at"`
	Raw         map[string]any   `json:"raw,omitempty"`
}

// Snapshot is the full result of one venue fetch for one connection
type Snapshot struct {
	Venue      VenueKind      `json:"venue"`
	FetchedAt  time.Time      `json:"fetched_at"`
	Balances   []Balance      `json:"balances"`
	Positions  []Position     `json:"positions"`
	Activities []ActivityLine `json:"activities"`
	// Cursor is an opaque venue-specific resume token for the next fetch
	Cursor string `json:"cursor,omitempty"`
}

// VenueParams is the typed per-integration venue configuration, stored as
// jsonb on the integration row and validated once at connection resolution.
type VenueParams struct {
	Testnet     bool     `json:"testnet,omitempty"`
	RecvWindow  int64    `json:"recv_window,omitempty"`
	QuoteAssets []string `json:"quote_assets,omitempty"`
	AccountID   string   `json:"account_id,omitempty"`
	Categories  []string `json:"categories,omitempty"`
}

// Credentials carries venue API credentials resolved from an integration row
type Credentials struct {
	APIKey       string     `json:"api_key,omitempty"`
	APISecret    string     `json:"api_secret,omitempty"`
	Passphrase   string     `json:"passphrase,omitempty"`
	AccessToken  string     `json:"access_token,omitempty"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	TokenExpiry  *time.Time `json:"token_expiry,omitempty"`
}

// Connection is one syncable source: either an API-keyed integration or an
// on-chain wallet address. Exactly one of IntegrationID / WalletAddressID is set.
type Connection struct {
	UserID          uint64      `json:"user_id"`
	PortfolioID     uint64      `json:"portfolio_id"`
	Venue           VenueKind   `json:"venue"`
	TaskQueue       string      `json:"task_queue"`
	IntegrationID   *uint64     `json:"integration_id,omitempty"`
	WalletAddressID *uint64     `json:"wallet_address_id,omitempty"`
	Address         string      `json:"address,omitempty"`
	Params          VenueParams `json:"params"`
	LastSyncAt      *time.Time  `json:"last_sync_at,omitempty"`
	LastCursor      string      `json:"last_cursor,omitempty"`
}

// Key returns a stable identifier for the connection, usable as a workflow ID component
func (c Connection) Key() string {
	if c.IntegrationID != nil {
		return "integration-" + strconv.FormatUint(*c.IntegrationID, 10)
	}
	if c.WalletAddressID != nil {
		return "wallet-" + strconv.FormatUint(*c.WalletAddressID, 10)
	}
	return "unknown"
}
