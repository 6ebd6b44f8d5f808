// Package postgres is a trade.Store on PostgreSQL for deployments where
// several tradebook processes share one journal.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/camuig/tradebook/internal/trade"
)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	id          TEXT PRIMARY KEY,
	symbol      TEXT NOT NULL,
	direction   TEXT NOT NULL,
	entry_date  TIMESTAMPTZ NOT NULL,
	entry_price DOUBLE PRECISION NOT NULL,
	stop_loss   DOUBLE PRECISION NOT NULL,
	take_profit DOUBLE PRECISION NOT NULL,
	quantity    DOUBLE PRECISION NOT NULL,
	exit_price  DOUBLE PRECISION,
	notes       TEXT NOT NULL DEFAULT '',
	screenshot  TEXT NOT NULL DEFAULT '',
	setup       TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'OPEN',
	pnl         DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
ALTER TABLE trades ADD COLUMN IF NOT EXISTS entry_offset INTEGER NOT NULL DEFAULT 0;
CREATE INDEX IF NOT EXISTS trades_entry_date_idx ON trades (entry_date);

CREATE TABLE IF NOT EXISTS settings (
	id              INTEGER PRIMARY KEY,
	initial_balance DOUBLE PRECISION NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const tradeColumns = `id, symbol, direction, entry_date, entry_price, stop_loss, take_profit,
	quantity, exit_price, notes, screenshot, setup, status, pnl, entry_offset`

type Store struct {
	pool     *pgxpool.Pool
	defaults trade.Settings
}

var _ trade.Store = (*Store)(nil)

// Connect opens a pool, pings it and creates the schema when missing.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w: %w", trade.ErrStorage, err)
	}

	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnIdleTime = 30 * time.Second
	cfg.MaxConnLifetime = 5 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w: %w", trade.ErrStorage, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w: %w", trade.ErrStorage, err)
	}

	s := New(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, defaults: trade.DefaultSettings()}
}

// WithDefaultSettings changes what Settings returns before anything is saved.
func (s *Store) WithDefaultSettings(st trade.Settings) *Store {
	s.defaults = st
	return s
}

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return storageErr("migrate", err)
	}
	return nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, trade.ErrStorage, err)
}

func (s *Store) All(ctx context.Context) ([]trade.Trade, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+tradeColumns+` FROM trades ORDER BY entry_date ASC, id ASC`)
	if err != nil {
		return nil, storageErr("load trades", err)
	}
	defer rows.Close()

	trades, err := collectTrades(rows)
	if err != nil {
		return nil, storageErr("load trades", err)
	}
	return trades, nil
}

func (s *Store) Save(ctx context.Context, t trade.Trade) (trade.Trade, error) {
	if t.ID == "" {
		return trade.Trade{}, storageErr("save trade", errors.New("missing id"))
	}
	row := s.pool.QueryRow(ctx,
		`INSERT INTO trades (`+tradeColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		 ON CONFLICT (id) DO UPDATE SET
		   symbol = EXCLUDED.symbol,
		   direction = EXCLUDED.direction,
		   entry_date = EXCLUDED.entry_date,
		   entry_price = EXCLUDED.entry_price,
		   stop_loss = EXCLUDED.stop_loss,
		   take_profit = EXCLUDED.take_profit,
		   quantity = EXCLUDED.quantity,
		   exit_price = EXCLUDED.exit_price,
		   notes = EXCLUDED.notes,
		   screenshot = EXCLUDED.screenshot,
		   setup = EXCLUDED.setup,
		   status = EXCLUDED.status,
		   pnl = EXCLUDED.pnl,
		   entry_offset = EXCLUDED.entry_offset,
		   updated_at = NOW()
		 RETURNING `+tradeColumns,
		t.ID, t.Symbol, string(t.Direction), t.EntryDate.UTC(), t.EntryPrice, t.StopLoss,
		t.TakeProfit, t.Quantity, t.ExitPrice, t.Notes, t.Screenshot, t.Setup,
		string(t.Status), t.PnL, trade.ZoneOffset(t.EntryDate),
	)
	saved, err := scanTrade(row)
	if err != nil {
		return trade.Trade{}, storageErr("save trade", err)
	}
	return saved, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM trades WHERE id = $1`, id); err != nil {
		return storageErr("delete trade", err)
	}
	return nil
}

func (s *Store) Settings(ctx context.Context) (trade.Settings, error) {
	var out trade.Settings
	err := s.pool.QueryRow(ctx, `SELECT initial_balance FROM settings WHERE id = 1`).
		Scan(&out.InitialBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return s.defaults, nil
	}
	if err != nil {
		return trade.Settings{}, storageErr("load settings", err)
	}
	return out, nil
}

func (s *Store) SaveSettings(ctx context.Context, st trade.Settings) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO settings (id, initial_balance) VALUES (1, $1)
		 ON CONFLICT (id) DO UPDATE SET initial_balance = EXCLUDED.initial_balance, updated_at = NOW()`,
		st.InitialBalance)
	if err != nil {
		return storageErr("save settings", err)
	}
	return nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// --- scan helpers ---

func scanTrade(row pgx.Row) (trade.Trade, error) {
	var (
		t         trade.Trade
		direction string
		status    string
		offset    int
	)
	err := row.Scan(
		&t.ID, &t.Symbol, &direction, &t.EntryDate, &t.EntryPrice, &t.StopLoss, &t.TakeProfit,
		&t.Quantity, &t.ExitPrice, &t.Notes, &t.Screenshot, &t.Setup, &status, &t.PnL, &offset,
	)
	if err != nil {
		return trade.Trade{}, err
	}
	t.Direction = trade.Direction(direction)
	t.Status = trade.Status(status)
	t.EntryDate = trade.AtOffset(t.EntryDate, offset)
	return t, nil
}

func collectTrades(rows pgx.Rows) ([]trade.Trade, error) {
	out := []trade.Trade{}
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
