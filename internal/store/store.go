package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/config"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/store/schema"
)

// Store defines the persistence interface for the sync and valuation pipeline
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// ListActiveIntegrations returns all active API-keyed integrations
	ListActiveIntegrations(ctx context.Context) ([]*schema.Integration, error)

	// ListActiveWalletAddresses returns all active watched wallet addresses
	ListActiveWalletAddresses(ctx context.Context) ([]*schema.WalletAddress, error)

	// GetIntegration retrieves an integration by ID, nil when absent
	GetIntegration(ctx context.Context, id uint64) (*schema.Integration, error)

	// GetWalletAddress retrieves a wallet address by ID, nil when absent
	GetWalletAddress(ctx context.Context, id uint64) (*schema.WalletAddress, error)

	// GetPortfolio retrieves a portfolio by ID, nil when absent
	GetPortfolio(ctx context.Context, id uint64) (*schema.Portfolio, error)

	// ListUserPortfolios returns all portfolios belonging to a user
	ListUserPortfolios(ctx context.Context, userID uint64) ([]*schema.Portfolio, error)

	// UpdateIntegrationCursor records a successful sync on an integration
	UpdateIntegrationCursor(ctx context.Context, integrationID uint64, syncedAt time.Time, cursor string) error

	// UpdateWalletAddressSyncedAt records a successful sync on a wallet address
	UpdateWalletAddressSyncedAt(ctx context.Context, walletAddressID uint64, syncedAt time.Time) error

	// UpdateIntegrationTokens persists refreshed OAuth tokens
	UpdateIntegrationTokens(ctx context.Context, integrationID uint64, accessToken, refreshToken string, expiry *time.Time) error

	// GetOrCreateAsset resolves an asset row, creating it on first sight
	GetOrCreateAsset(ctx context.Context, symbol, assetType, marketURL string) (*schema.Asset, error)

	// InsertTransactions bulk-inserts transactions, silently skipping rows whose
	// (source_key, dedupe_key) already exists. Returns the number actually inserted.
	InsertTransactions(ctx context.Context, txs []*schema.Transaction) (int64, error)

	// LatestTransactionPrice returns the most recent non-null price for an asset
	// in the given currency within a portfolio, nil when never priced.
	LatestTransactionPrice(ctx context.Context, portfolioID, assetID uint64, currency string) (*decimal.Decimal, error)

	// ListFlowTransactions returns deposits and withdrawals within [from, to)
	// matched on executed_at, falling back to created_at.
	ListFlowTransactions(ctx context.Context, portfolioID uint64, from, to time.Time) ([]*schema.Transaction, error)

	// UpsertHoldings writes current holdings, overwriting quantity and average
	// buy price per (portfolio, asset).
	UpsertHoldings(ctx context.Context, holdings []*schema.PortfolioAsset) error

	// ListHoldings returns the current holdings of a portfolio with assets preloaded
	ListHoldings(ctx context.Context, portfolioID uint64) ([]*schema.PortfolioAsset, error)

	// GetDailyValuation retrieves one valuation row, nil when absent
	GetDailyValuation(ctx context.Context, portfolioID uint64, date time.Time) (*schema.PortfolioValuationDaily, error)

	// UpsertDailyValuation writes a valuation row per (portfolio, snapshot_date)
	UpsertDailyValuation(ctx context.Context, row *schema.PortfolioValuationDaily) error

	// UpsertDailyPositions writes the per-asset breakdown rows for a snapshot date
	UpsertDailyPositions(ctx context.Context, rows []*schema.PortfolioPositionDaily) error

	// Atomic runs fn against a transaction-scoped store; fn returning an error
	// rolls everything back.
	Atomic(ctx context.Context, fn func(Store) error) error
}

// Open opens a GORM Postgres connection with pool settings from config
func Open(cfg config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := configureConnectionPool(db, cfg); err != nil {
		return nil, err
	}

	return db, nil
}

// configureConnectionPool applies pool settings with conservative defaults
func configureConnectionPool(db *gorm.DB, cfg config.DatabaseConfig) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 20
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 5
	}
	maxLifetime := cfg.ConnMaxLifetime
	if maxLifetime <= 0 {
		maxLifetime = 5 * time.Minute
	}
	maxIdleTime := cfg.ConnMaxIdleTime
	if maxIdleTime <= 0 {
		maxIdleTime = 10 * time.Minute
	}

	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(maxLifetime)
	sqlDB.SetConnMaxIdleTime(maxIdleTime)

	return nil
}
