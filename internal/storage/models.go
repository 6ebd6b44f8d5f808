package storage

import (
	"time"

	"github.com/camuig/tradebook/internal/trade"
)

// tradeRow stores EntryDate in UTC and the entered zone offset, in seconds,
// in EntryOffset.
type tradeRow struct {
	ID        string `gorm:"primaryKey;size:32"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Symbol      string    `gorm:"index;not null"`
	Direction   string    `gorm:"not null"`
	EntryDate   time.Time `gorm:"index;not null"`
	EntryOffset int       `gorm:"not null;default:0"`
	EntryPrice  float64   `gorm:"not null"`
	StopLoss    float64   `gorm:"not null"`
	TakeProfit  float64   `gorm:"not null"`
	Quantity    float64   `gorm:"not null"`
	ExitPrice   *float64

	Notes      string `gorm:"type:text"`
	Screenshot string `gorm:"type:text"`
	Setup      string

	Status string  `gorm:"not null;default:'OPEN'"`
	PnL    float64 `gorm:"column:pnl"`
}

func (tradeRow) TableName() string { return "trades" }

// settingsRow is a singleton keyed by settingsID.
type settingsRow struct {
	ID             uint `gorm:"primaryKey"`
	UpdatedAt      time.Time
	InitialBalance float64 `gorm:"not null"`
}

func (settingsRow) TableName() string { return "settings" }

const settingsID = 1

func rowFromTrade(t trade.Trade) tradeRow {
	return tradeRow{
		ID:          t.ID,
		Symbol:      t.Symbol,
		Direction:   string(t.Direction),
		EntryDate:   t.EntryDate.UTC(),
		EntryOffset: trade.ZoneOffset(t.EntryDate),
		EntryPrice:  t.EntryPrice,
		StopLoss:    t.StopLoss,
		TakeProfit:  t.TakeProfit,
		Quantity:    t.Quantity,
		ExitPrice:   t.ExitPrice,
		Notes:       t.Notes,
		Screenshot:  t.Screenshot,
		Setup:       t.Setup,
		Status:      string(t.Status),
		PnL:         t.PnL,
	}
}

func (r tradeRow) toTrade() trade.Trade {
	return trade.Trade{
		ID:         r.ID,
		Symbol:     r.Symbol,
		Direction:  trade.Direction(r.Direction),
		EntryDate:  trade.AtOffset(r.EntryDate, r.EntryOffset),
		EntryPrice: r.EntryPrice,
		StopLoss:   r.StopLoss,
		TakeProfit: r.TakeProfit,
		Quantity:   r.Quantity,
		ExitPrice:  r.ExitPrice,
		Notes:      r.Notes,
		Screenshot: r.Screenshot,
		Setup:      r.Setup,
		Status:     trade.Status(r.Status),
		PnL:        r.PnL,
	}
}
