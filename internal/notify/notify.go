// Package notify delivers fired-alert messages to users. The channel
// offers no idempotency guarantee; callers must tolerate at-least-once
// delivery.
package notify

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pricesniper/backend/internal/models"
)

// Notifier sends one message to one destination.
type Notifier interface {
	Deliver(ctx context.Context, message, destination string) error
}

// FormatAlertMessage renders a fired alert for delivery.
func FormatAlertMessage(fired models.FiredAlert) string {
	return fmt.Sprintf(
		"Price Drop Alert!\n\n%s\nPrice: %s %.2f\nTarget: %s %.2f\n\n%s",
		fired.ProductName,
		fired.Currency, fired.ObservedPrice,
		fired.Currency, fired.TargetPrice,
		fired.ProductURL,
	)
}

// Telegram delivers messages through the Telegram bot API.
type Telegram struct {
	api           *tgbotapi.BotAPI
	defaultChatID string
}

func NewTelegram(token, defaultChatID string) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Telegram{api: api, defaultChatID: defaultChatID}, nil
}

func (t *Telegram) Deliver(ctx context.Context, message, destination string) error {
	chatID := destination
	if chatID == "" || chatID == "default" {
		chatID = t.defaultChatID
	}
	if chatID == "" {
		return fmt.Errorf("no telegram chat id configured")
	}

	var numericID int64
	if _, err := fmt.Sscanf(chatID, "%d", &numericID); err != nil {
		return fmt.Errorf("invalid telegram chat id %q: %w", chatID, err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(numericID, message)
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// LogNotifier is the fallback when no Telegram token is configured.
// Deliveries are logged and reported as successful so development
// setups don't accumulate a permanently retrying outbox.
type LogNotifier struct{}

func (LogNotifier) Deliver(_ context.Context, message, destination string) error {
	log.Printf("Notifier (log only): to=%s message=%q", destination, message)
	return nil
}
