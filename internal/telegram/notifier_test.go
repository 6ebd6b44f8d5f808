package telegram

import (
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camuig/tradebook/internal/config"
	"github.com/camuig/tradebook/internal/logger"
	"github.com/camuig/tradebook/internal/trade"
)

type fakeBot struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, f.err
}

func closedWin() trade.Trade {
	exit := 1.1
	return trade.Trade{
		ID: "a", Symbol: "EURUSD", Direction: trade.Long,
		EntryDate:  time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		EntryPrice: 1.09, Quantity: 1000, ExitPrice: &exit,
		Status: trade.StatusWin, PnL: 10,
	}
}

func TestDisabledNotifierIsNoop(t *testing.T) {
	t.Parallel()

	n := NewNotifier(config.Default(), logger.Nop())
	assert.False(t, n.Enabled())
	n.NotifyTradeClosed(closedWin())
	n.NotifyStatus("hello")
}

func TestNotifierSendsMarkdown(t *testing.T) {
	t.Parallel()

	bot := &fakeBot{}
	n := &Notifier{bot: bot, chatID: 99, enabled: true, logger: logger.Nop()}

	n.NotifyTradeClosed(closedWin())
	n.NotifyStatus("server started")

	require.Len(t, bot.sent, 2)
	assert.Equal(t, int64(99), bot.sent[0].ChatID)
	assert.Equal(t, tgbotapi.ModeMarkdown, bot.sent[0].ParseMode)
	assert.Contains(t, bot.sent[0].Text, "*WIN* BUY EURUSD")
	assert.Contains(t, bot.sent[0].Text, "P&L: 10.00")
	assert.Equal(t, "server started", bot.sent[1].Text)
}

func TestNotifierSwallowsSendErrors(t *testing.T) {
	t.Parallel()

	bot := &fakeBot{err: errors.New("telegram down")}
	n := &Notifier{bot: bot, chatID: 1, enabled: true, logger: logger.Nop()}
	n.NotifyStatus("x")
	assert.Len(t, bot.sent, 1)
}

func TestTradeClosedMessage(t *testing.T) {
	t.Parallel()

	loss := closedWin()
	loss.Status = trade.StatusLoss
	loss.PnL = -5
	loss.Direction = trade.Short
	msg := TradeClosedMessage(loss)
	assert.Contains(t, msg, "🔴 *LOSS* SELL EURUSD")
	assert.Contains(t, msg, "Exit: 1.1")

	be := closedWin()
	be.Status = trade.StatusBreakEven
	be.ExitPrice = nil
	msg = TradeClosedMessage(be)
	assert.Contains(t, msg, "*BE*")
	assert.Contains(t, msg, "Exit: -")

	odd := closedWin()
	odd.Symbol = "EUR_USD*"
	assert.Contains(t, TradeClosedMessage(odd), `*WIN* BUY EUR\_USD\*`)
}
