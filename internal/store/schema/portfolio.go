package schema

import (
	"time"
)

// Portfolio represents the portfolios table. Portfolio rows are owned by the
// account service; this pipeline reads and references them.
type Portfolio struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// UserID is the owning user
	UserID uint64 `gorm:"column:user_id;not null;index:idx_portfolios_user"`
	// Name is the user-visible portfolio name
	Name string `gorm:"column:name;not null;type:text"`
	// BaseCurrency is the valuation currency for this portfolio
	BaseCurrency string `gorm:"column:base_currency;not null;type:text;default:USD"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Portfolio model
func (Portfolio) TableName() string {
	return "portfolios"
}
