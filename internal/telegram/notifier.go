package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/camuig/tradebook/internal/config"
	"github.com/camuig/tradebook/internal/logger"
	"github.com/camuig/tradebook/internal/trade"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Notifier struct {
	bot     sender
	chatID  int64
	enabled bool
	logger  *logger.Logger
}

func NewNotifier(cfg *config.Config, log *logger.Logger) *Notifier {
	if !cfg.Telegram.Enabled {
		return &Notifier{enabled: false, logger: log}
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		log.Error("failed to create telegram bot", "error", err)
		return &Notifier{enabled: false, logger: log}
	}

	log.Info("telegram bot connected", "username", bot.Self.UserName)

	return &Notifier{
		bot:     bot,
		chatID:  cfg.Telegram.ChatID,
		enabled: true,
		logger:  log,
	}
}

func (n *Notifier) Enabled() bool {
	return n.enabled
}

func (n *Notifier) NotifyTradeClosed(t trade.Trade) {
	n.send(TradeClosedMessage(t))
}

func (n *Notifier) NotifyStatus(message string) {
	n.send(message)
}

// TradeClosedMessage is the Markdown text sent when a trade gets an outcome.
func TradeClosedMessage(t trade.Trade) string {
	emoji := "⚪"
	switch t.Status {
	case trade.StatusWin:
		emoji = "💰"
	case trade.StatusLoss:
		emoji = "🔴"
	}
	exit := "-"
	if t.ExitPrice != nil {
		exit = fmt.Sprintf("%g", *t.ExitPrice)
	}
	return fmt.Sprintf("%s *%s* %s %s\nEntry: %g\nExit: %s\nSize: %g\nP&L: %.2f",
		emoji, t.Status.Code(), t.Direction.WireName(),
		tgbotapi.EscapeText(tgbotapi.ModeMarkdown, t.Symbol), t.EntryPrice, exit, t.Quantity, t.PnL)
}

func (n *Notifier) send(text string) {
	if !n.enabled {
		return
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error("send telegram message", "error", err)
	}
}
