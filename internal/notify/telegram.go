package notify

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const updateTimeoutSec = 30

// Telegram is the Notifier backed by the Telegram Bot API. It also exposes
// the inbound long-poll update stream for the command dispatcher.
type Telegram struct {
	bot *tgbotapi.BotAPI
}

// NewTelegram authenticates against the Telegram Bot API with token.
func NewTelegram(token string) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: authenticate bot: %w", err)
	}
	slog.Info("telegram bot authenticated", "username", bot.Self.UserName)
	return &Telegram{bot: bot}, nil
}

// Send delivers text to chatID. The Bot API call carries its own HTTP
// timeout; ctx is checked up front so a cancelled poll cycle does not queue
// further sends.
func (t *Telegram) Send(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("telegram: send to chat %d: %w", chatID, err)
	}
	return nil
}

// Updates starts the long-poll loop and returns a channel of inbound text
// messages. Non-text updates are dropped. The channel closes when ctx is
// cancelled.
func (t *Telegram) Updates(ctx context.Context) <-chan Incoming {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = updateTimeoutSec
	raw := t.bot.GetUpdatesChan(cfg)

	out := make(chan Incoming)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				t.bot.StopReceivingUpdates()
				return
			case u, ok := <-raw:
				if !ok {
					return
				}
				if u.Message == nil || u.Message.Text == "" {
					continue
				}
				select {
				case out <- Incoming{ChatID: u.Message.Chat.ID, Text: u.Message.Text}:
				case <-ctx.Done():
					t.bot.StopReceivingUpdates()
					return
				}
			}
		}
	}()
	return out
}
