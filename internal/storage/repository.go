package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/camuig/tradebook/internal/trade"
)

// Repository is the SQLite-backed trade.Store.
type Repository struct {
	db       *gorm.DB
	defaults trade.Settings
}

var _ trade.Store = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, defaults: trade.DefaultSettings()}
}

// WithDefaultSettings changes what Settings returns before anything is saved.
func (r *Repository) WithDefaultSettings(s trade.Settings) *Repository {
	r.defaults = s
	return r
}

// Open creates the database file if needed and returns a ready store.
func Open(dbPath string, opts ...DBOption) (*Repository, error) {
	db, err := NewDatabase(dbPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", trade.ErrStorage, err)
	}
	return NewRepository(db), nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, trade.ErrStorage, err)
}

// Trades

func (r *Repository) All(ctx context.Context) ([]trade.Trade, error) {
	var rows []tradeRow
	if err := r.db.WithContext(ctx).Order("entry_date ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, storageErr("load trades", err)
	}
	trades := make([]trade.Trade, 0, len(rows))
	for _, row := range rows {
		trades = append(trades, row.toTrade())
	}
	return trades, nil
}

// Save inserts the trade or overwrites every column of the row with the same ID.
func (r *Repository) Save(ctx context.Context, t trade.Trade) (trade.Trade, error) {
	if t.ID == "" {
		return trade.Trade{}, storageErr("save trade", errors.New("missing id"))
	}
	row := rowFromTrade(t)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(updatableColumns),
		}).
		Create(&row).Error
	if err != nil {
		return trade.Trade{}, storageErr("save trade", err)
	}
	return row.toTrade(), nil
}

var updatableColumns = []string{
	"updated_at", "symbol", "direction", "entry_date", "entry_offset", "entry_price", "stop_loss",
	"take_profit", "quantity", "exit_price", "notes", "screenshot", "setup", "status", "pnl",
}

// Delete is a no-op for unknown IDs.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&tradeRow{}, "id = ?", id).Error; err != nil {
		return storageErr("delete trade", err)
	}
	return nil
}

// Settings

func (r *Repository) Settings(ctx context.Context) (trade.Settings, error) {
	var row settingsRow
	err := r.db.WithContext(ctx).First(&row, settingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.defaults, nil
	}
	if err != nil {
		return trade.Settings{}, storageErr("load settings", err)
	}
	return trade.Settings{InitialBalance: row.InitialBalance}, nil
}

func (r *Repository) SaveSettings(ctx context.Context, s trade.Settings) error {
	row := settingsRow{ID: settingsID, InitialBalance: s.InitialBalance}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"updated_at", "initial_balance"}),
		}).
		Create(&row).Error
	if err != nil {
		return storageErr("save settings", err)
	}
	return nil
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return storageErr("close", err)
	}
	return sqlDB.Close()
}
