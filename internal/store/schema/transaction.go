package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents the transactions table - immutable normalized
// activity records. (source_key, dedupe_key) is the idempotency boundary:
// re-persisting the same venue window inserts nothing new.
type Transaction struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// PortfolioID is the portfolio this transaction belongs to
	PortfolioID uint64 `gorm:"column:portfolio_id;not null;index:idx_transactions_portfolio"`
	// SourceKey identifies the connection that produced this record
	// ("integration-<id>" or "wallet-<id>")
	SourceKey string `gorm:"column:source_key;not null;type:text;uniqueIndex:idx_transactions_source_dedupe,priority:1"`
	// DedupeKey is the stable idempotency key for the venue record
	DedupeKey string `gorm:"column:dedupe_key;not null;type:text;uniqueIndex:idx_transactions_source_dedupe,priority:2"`
	// IntegrationID / WalletAddressID reference the concrete source row
	IntegrationID   *uint64 `gorm:"column:integration_id;index:idx_transactions_integration"`
	WalletAddressID *uint64 `gorm:"column:wallet_address_id"`
	// AssetID references the normalized asset
	AssetID uint64 `gorm:"column:asset_id;not null;index:idx_transactions_asset"`
	// Type is the normalized transaction type
	Type string `gorm:"column:type;not null;type:text"`
	// Amount is the asset quantity moved
	Amount decimal.Decimal `gorm:"column:amount;not null;type:numeric(38,18)"`
	// Price is the per-unit price when the venue reported one
	Price decimal.NullDecimal `gorm:"column:price;type:numeric(38,18)"`
	// PriceCurrency is the currency (or counter asset) Price is denominated in
	PriceCurrency string `gorm:"column:price_currency;type:text"`
	// Fee / FeeCurrency record the venue fee when reported
	Fee         decimal.NullDecimal `gorm:"column:fee;type:numeric(38,18)"`
	FeeCurrency string              `gorm:"column:fee_currency;type:text"`
	// ExecutedAt is the venue-reported execution time
	ExecutedAt *time.Time `gorm:"column:executed_at;type:timestamptz;index:idx_transactions_executed_at"`
	// Raw preserves the original venue payload for audit
	Raw JSONMap `gorm:"column:raw;type:jsonb"`
	// CreatedAt is the timestamp when this record was inserted
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`

	// Associations
	Asset Asset `gorm:"foreignKey:AssetID"`
}

// TableName specifies the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}
