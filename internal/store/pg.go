package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/store/schema"
)

// pgStore is the PostgreSQL implementation of Store
type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// calculateSafeBatchSize computes the batch size for bulk inserts that stays
// under PostgreSQL's 65535-parameter limit. Each record consumes one
// parameter per field; a fixed headroom covers ON CONFLICT parameters and
// GORM bookkeeping.
func calculateSafeBatchSize(totalRecords int, fieldsPerRecord int) int {
	const maxParams = 65535
	const totalHeadroom = 1000

	availableParams := maxParams - totalHeadroom
	safeBatchSize := max(availableParams/fieldsPerRecord, 1)

	if safeBatchSize > totalRecords {
		return totalRecords
	}

	return safeBatchSize
}

// ListActiveIntegrations returns all active API-keyed integrations
func (s *pgStore) ListActiveIntegrations(ctx context.Context) ([]*schema.Integration, error) {
	var integrations []*schema.Integration
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("user_id, id").
		Find(&integrations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list integrations: %w", err)
	}
	return integrations, nil
}

// ListActiveWalletAddresses returns all active watched wallet addresses
func (s *pgStore) ListActiveWalletAddresses(ctx context.Context) ([]*schema.WalletAddress, error) {
	var wallets []*schema.WalletAddress
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("user_id, id").
		Find(&wallets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wallet addresses: %w", err)
	}
	return wallets, nil
}

// GetIntegration retrieves an integration by ID
func (s *pgStore) GetIntegration(ctx context.Context, id uint64) (*schema.Integration, error) {
	var integration schema.Integration
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&integration).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get integration: %w", err)
	}
	return &integration, nil
}

// GetWalletAddress retrieves a wallet address by ID
func (s *pgStore) GetWalletAddress(ctx context.Context, id uint64) (*schema.WalletAddress, error) {
	var wallet schema.WalletAddress
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get wallet address: %w", err)
	}
	return &wallet, nil
}

// GetPortfolio retrieves a portfolio by ID
func (s *pgStore) GetPortfolio(ctx context.Context, id uint64) (*schema.Portfolio, error) {
	var portfolio schema.Portfolio
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&portfolio).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}
	return &portfolio, nil
}

// ListUserPortfolios returns all portfolios belonging to a user
func (s *pgStore) ListUserPortfolios(ctx context.Context, userID uint64) ([]*schema.Portfolio, error) {
	var portfolios []*schema.Portfolio
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&portfolios).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user portfolios: %w", err)
	}
	return portfolios, nil
}

// UpdateIntegrationCursor records a successful sync on an integration
func (s *pgStore) UpdateIntegrationCursor(ctx context.Context, integrationID uint64, syncedAt time.Time, cursor string) error {
	updates := map[string]interface{}{
		"last_sync_at": syncedAt,
		"updated_at":   syncedAt,
	}
	if cursor != "" {
		updates["last_cursor"] = cursor
	}

	err := s.db.WithContext(ctx).
		Model(&schema.Integration{}).
		Where("id = ?", integrationID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to update integration cursor: %w", err)
	}
	return nil
}

// UpdateWalletAddressSyncedAt records a successful sync on a wallet address
func (s *pgStore) UpdateWalletAddressSyncedAt(ctx context.Context, walletAddressID uint64, syncedAt time.Time) error {
	err := s.db.WithContext(ctx).
		Model(&schema.WalletAddress{}).
		Where("id = ?", walletAddressID).
		Update("last_sync_at", syncedAt).Error
	if err != nil {
		return fmt.Errorf("failed to update wallet address sync time: %w", err)
	}
	return nil
}

// UpdateIntegrationTokens persists refreshed OAuth tokens
func (s *pgStore) UpdateIntegrationTokens(ctx context.Context, integrationID uint64, accessToken, refreshToken string, expiry *time.Time) error {
	err := s.db.WithContext(ctx).
		Model(&schema.Integration{}).
		Where("id = ?", integrationID).
		Updates(map[string]interface{}{
			"access_token":  accessToken,
			"refresh_token": refreshToken,
			"token_expiry":  expiry,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update integration tokens: %w", err)
	}
	return nil
}

// GetOrCreateAsset resolves an asset row, creating it on first sight
func (s *pgStore) GetOrCreateAsset(ctx context.Context, symbol, assetType, marketURL string) (*schema.Asset, error) {
	asset := schema.Asset{
		Symbol:    symbol,
		AssetType: assetType,
		MarketURL: marketURL,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "asset_type"}},
		DoNothing: true,
	}).Create(&asset).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}

	// ID 0 means the asset already existed, fetch it
	if asset.ID == 0 {
		err := s.db.WithContext(ctx).
			Where("symbol = ? AND asset_type = ?", symbol, assetType).
			First(&asset).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get existing asset: %w", err)
		}
	}

	return &asset, nil
}

// InsertTransactions bulk-inserts transactions with conflict-tolerant semantics
func (s *pgStore) InsertTransactions(ctx context.Context, txs []*schema.Transaction) (int64, error) {
	if len(txs) == 0 {
		return 0, nil
	}

	// 14 persisted fields per transaction row
	batchSize := calculateSafeBatchSize(len(txs), 14)

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source_key"}, {Name: "dedupe_key"}},
		DoNothing: true,
	}).CreateInBatches(txs, batchSize)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to insert transactions: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// LatestTransactionPrice returns the most recent non-null price for an asset
func (s *pgStore) LatestTransactionPrice(ctx context.Context, portfolioID, assetID uint64, currency string) (*decimal.Decimal, error) {
	var tx schema.Transaction
	err := s.db.WithContext(ctx).
		Where("portfolio_id = ? AND asset_id = ? AND price IS NOT NULL AND price_currency = ?",
			portfolioID, assetID, currency).
		Order("COALESCE(executed_at, created_at) DESC").
		First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest transaction price: %w", err)
	}

	if !tx.Price.Valid {
		return nil, nil
	}
	return &tx.Price.Decimal, nil
}

// ListFlowTransactions returns deposits and withdrawals within [from, to)
func (s *pgStore) ListFlowTransactions(ctx context.Context, portfolioID uint64, from, to time.Time) ([]*schema.Transaction, error) {
	var txs []*schema.Transaction
	err := s.db.WithContext(ctx).
		Preload("Asset").
		Where("portfolio_id = ? AND type IN ?", portfolioID, []string{"deposit", "withdrawal"}).
		Where("COALESCE(executed_at, created_at) >= ? AND COALESCE(executed_at, created_at) < ?", from, to).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list flow transactions: %w", err)
	}
	return txs, nil
}

// UpsertHoldings writes current holdings per (portfolio, asset)
func (s *pgStore) UpsertHoldings(ctx context.Context, holdings []*schema.PortfolioAsset) error {
	if len(holdings) == 0 {
		return nil
	}

	batchSize := calculateSafeBatchSize(len(holdings), 7)

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "portfolio_id"}, {Name: "asset_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "avg_buy_price", "avg_buy_currency", "updated_at"}),
	}).CreateInBatches(holdings, batchSize).Error
	if err != nil {
		return fmt.Errorf("failed to upsert holdings: %w", err)
	}
	return nil
}

// ListHoldings returns the current holdings of a portfolio with assets preloaded
func (s *pgStore) ListHoldings(ctx context.Context, portfolioID uint64) ([]*schema.PortfolioAsset, error) {
	var holdings []*schema.PortfolioAsset
	err := s.db.WithContext(ctx).
		Preload("Asset").
		Where("portfolio_id = ?", portfolioID).
		Order("asset_id").
		Find(&holdings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	return holdings, nil
}

// GetDailyValuation retrieves one valuation row
func (s *pgStore) GetDailyValuation(ctx context.Context, portfolioID uint64, date time.Time) (*schema.PortfolioValuationDaily, error) {
	var row schema.PortfolioValuationDaily
	err := s.db.WithContext(ctx).
		Where("portfolio_id = ? AND snapshot_date = ?", portfolioID, date.Format("2006-01-02")).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get daily valuation: %w", err)
	}
	return &row, nil
}

// UpsertDailyValuation writes a valuation row per (portfolio, snapshot_date)
func (s *pgStore) UpsertDailyValuation(ctx context.Context, row *schema.PortfolioValuationDaily) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "portfolio_id"}, {Name: "snapshot_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_value", "net_flow", "pnl", "currency"}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert daily valuation: %w", err)
	}
	return nil
}

// UpsertDailyPositions writes the per-asset breakdown rows for a snapshot date
func (s *pgStore) UpsertDailyPositions(ctx context.Context, rows []*schema.PortfolioPositionDaily) error {
	if len(rows) == 0 {
		return nil
	}

	batchSize := calculateSafeBatchSize(len(rows), 8)

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "portfolio_id"}, {Name: "asset_id"}, {Name: "snapshot_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "price", "value", "currency"}),
	}).CreateInBatches(rows, batchSize).Error
	if err != nil {
		return fmt.Errorf("failed to upsert daily positions: %w", err)
	}
	return nil
}

// Atomic runs fn against a transaction-scoped store
func (s *pgStore) Atomic(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&pgStore{db: tx})
	})
}
