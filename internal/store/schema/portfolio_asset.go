package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// PortfolioAsset represents the portfolio_assets table - the current holding
// of one asset in one portfolio, overwritten by each sync.
type PortfolioAsset struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// PortfolioID / AssetID form the upsert target
	PortfolioID uint64 `gorm:"column:portfolio_id;not null;uniqueIndex:idx_portfolio_assets_portfolio_asset,priority:1"`
	AssetID     uint64 `gorm:"column:asset_id;not null;uniqueIndex:idx_portfolio_assets_portfolio_asset,priority:2"`
	// Quantity is the current holding size
	Quantity decimal.Decimal `gorm:"column:quantity;not null;type:numeric(38,18)"`
	// AvgBuyPrice / AvgBuyCurrency record the average acquisition price when known
	AvgBuyPrice    decimal.NullDecimal `gorm:"column:avg_buy_price;type:numeric(38,18)"`
	AvgBuyCurrency string              `gorm:"column:avg_buy_currency;type:text"`
	// UpdatedAt is the timestamp of the last sync that touched this holding
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	Asset Asset `gorm:"foreignKey:AssetID"`
}

// TableName specifies the table name for the PortfolioAsset model
func (PortfolioAsset) TableName() string {
	return "portfolio_assets"
}
