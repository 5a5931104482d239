package schema

import (
	"time"
)

// Asset represents the assets table - the shared registry of everything a
// portfolio can hold. Rows are created on demand during normalization.
type Asset struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Symbol is the upper-cased asset symbol (BTC, USD, SBER)
	Symbol string `gorm:"column:symbol;not null;type:text;uniqueIndex:idx_assets_symbol_type,priority:1"`
	// AssetType classifies the asset (crypto, currency, stock_ru)
	AssetType string `gorm:"column:asset_type;not null;type:text;uniqueIndex:idx_assets_symbol_type,priority:2"`
	// Name is the human-readable asset name when known
	Name string `gorm:"column:name;type:text"`
	// MarketURL records where the asset was first seen, in "{venue}:{symbol}" form
	MarketURL string `gorm:"column:market_url;type:text"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Asset model
func (Asset) TableName() string {
	return "assets"
}
