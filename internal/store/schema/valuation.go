package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// PortfolioValuationDaily represents the portfolio_valuations_daily table -
// one row per portfolio per calendar date with the carry-forward PnL.
type PortfolioValuationDaily struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// PortfolioID / SnapshotDate form the upsert target
	PortfolioID  uint64    `gorm:"column:portfolio_id;not null;uniqueIndex:idx_portfolio_valuations_daily_portfolio_date,priority:1"`
	SnapshotDate time.Time `gorm:"column:snapshot_date;not null;type:date;uniqueIndex:idx_portfolio_valuations_daily_portfolio_date,priority:2"`
	// TotalValue is the summed value of priced positions in the base currency
	TotalValue decimal.Decimal `gorm:"column:total_value;not null;type:numeric(38,18)"`
	// NetFlow is deposits minus withdrawals on the snapshot date
	NetFlow decimal.Decimal `gorm:"column:net_flow;not null;type:numeric(38,18)"`
	// PnL is total_value - previous total_value - net_flow
	PnL decimal.Decimal `gorm:"column:pnl;not null;type:numeric(38,18)"`
	// Currency is the portfolio base currency the amounts are denominated in
	Currency string `gorm:"column:currency;not null;type:text"`
	// CreatedAt is the timestamp when this record was written
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the PortfolioValuationDaily model
func (PortfolioValuationDaily) TableName() string {
	return "portfolio_valuations_daily"
}

// PortfolioPositionDaily represents the portfolio_positions_daily table -
// the per-asset breakdown behind each daily valuation row.
type PortfolioPositionDaily struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// PortfolioID / AssetID / SnapshotDate form the upsert target
	PortfolioID  uint64    `gorm:"column:portfolio_id;not null;uniqueIndex:idx_portfolio_positions_daily_portfolio_asset_date,priority:1"`
	AssetID      uint64    `gorm:"column:asset_id;not null;uniqueIndex:idx_portfolio_positions_daily_portfolio_asset_date,priority:2"`
	SnapshotDate time.Time `gorm:"column:snapshot_date;not null;type:date;uniqueIndex:idx_portfolio_positions_daily_portfolio_asset_date,priority:3"`
	// Quantity is the holding size on the snapshot date
	Quantity decimal.Decimal `gorm:"column:quantity;not null;type:numeric(38,18)"`
	// Price is the resolved per-unit price in the base currency; null when unpriced
	Price decimal.NullDecimal `gorm:"column:price;type:numeric(38,18)"`
	// Value is quantity * price; null when unpriced
	Value decimal.NullDecimal `gorm:"column:value;type:numeric(38,18)"`
	// Currency is the portfolio base currency
	Currency string `gorm:"column:currency;not null;type:text"`
	// CreatedAt is the timestamp when this record was written
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`

	// Associations
	Asset Asset `gorm:"foreignKey:AssetID"`
}

// TableName specifies the table name for the PortfolioPositionDaily model
func (PortfolioPositionDaily) TableName() string {
	return "portfolio_positions_daily"
}
