package schema

import (
	"time"
)

// WalletAddress represents the wallet_addresses table - one watched on-chain
// address belonging to a user's portfolio.
type WalletAddress struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// UserID is the owning user
	UserID uint64 `gorm:"column:user_id;not null;index:idx_wallet_addresses_user"`
	// PortfolioID is the portfolio this wallet feeds
	PortfolioID uint64 `gorm:"column:portfolio_id;not null"`
	// Venue identifies the wallet network (currently "ton")
	Venue string `gorm:"column:venue;not null;type:text;uniqueIndex:idx_wallet_addresses_venue_address,priority:1"`
	// Address is the on-chain address being watched
	Address string `gorm:"column:address;not null;type:text;uniqueIndex:idx_wallet_addresses_venue_address,priority:2"`
	// IsActive gates whether the nightly sync picks this wallet up
	IsActive bool `gorm:"column:is_active;not null;default:true"`
	// LastSyncAt is when the last successful sync finished
	LastSyncAt *time.Time `gorm:"column:last_sync_at;type:timestamptz"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`

	// Associations
	Portfolio Portfolio `gorm:"foreignKey:PortfolioID"`
}

// TableName specifies the table name for the WalletAddress model
func (WalletAddress) TableName() string {
	return "wallet_addresses"
}
