package notifier

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sender delivers an order summary to an external messaging destination
type Sender interface {
	Send(summary string) error
}

// Telegram sends order summaries to a fixed chat
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

// NewTelegram creates a Telegram notifier
func NewTelegram(token string, chatID int64, logger *zap.Logger) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Info("Telegram notifier ready",
		zap.String("bot", bot.Self.UserName),
		zap.Int64("chat_id", chatID),
	)

	return &Telegram{
		bot:    bot,
		chatID: chatID,
		logger: logger,
	}, nil
}

// Send forwards the summary text verbatim to the configured chat
func (t *Telegram) Send(summary string) error {
	msg := tgbotapi.NewMessage(t.chatID, summary)
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}
