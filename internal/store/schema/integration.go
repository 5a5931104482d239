package schema

import (
	"time"
)

// Integration represents the integrations table - one API-keyed venue
// connection belonging to a user's portfolio.
type Integration struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// UserID is the owning user
	UserID uint64 `gorm:"column:user_id;not null;index:idx_integrations_user"`
	// PortfolioID is the portfolio this integration feeds
	PortfolioID uint64 `gorm:"column:portfolio_id;not null"`
	// Venue identifies which venue adapter serves this integration
	Venue string `gorm:"column:venue;not null;type:text;index:idx_integrations_venue"`
	// Name is the user-visible label
	Name string `gorm:"column:name;type:text"`
	// APIKey / APISecret / Passphrase are the venue API credentials
	APIKey     string `gorm:"column:api_key;type:text"`
	APISecret  string `gorm:"column:api_secret;type:text"`
	Passphrase string `gorm:"column:passphrase;type:text"`
	// AccessToken / RefreshToken / TokenExpiry serve OAuth venues
	AccessToken  string     `gorm:"column:access_token;type:text"`
	RefreshToken string     `gorm:"column:refresh_token;type:text"`
	TokenExpiry  *time.Time `gorm:"column:token_expiry;type:timestamptz"`
	// Params is the typed per-venue configuration
	Params VenueParamsColumn `gorm:"column:params;type:jsonb"`
	// LastSyncAt is when the last successful sync finished
	LastSyncAt *time.Time `gorm:"column:last_sync_at;type:timestamptz"`
	// LastCursor is the opaque venue resume token from the last successful sync
	LastCursor string `gorm:"column:last_cursor;type:text"`
	// IsActive gates whether the nightly sync picks this integration up
	IsActive bool `gorm:"column:is_active;not null;default:true"`
	// CreatedAt / UpdatedAt are record timestamps
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	Portfolio Portfolio `gorm:"foreignKey:PortfolioID"`
}

// TableName specifies the table name for the Integration model
func (Integration) TableName() string {
	return "integrations"
}
