// Package notifier delivers out-of-band Telegram messages on behalf of the
// ledger and the feed daemon.
package notifier

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram sends notifications through the bot API. It also resolves user
// display names, which makes it usable as the ledger's identity resolver.
type Telegram struct {
	api            *tgbotapi.BotAPI
	operatorChatID int64
}

func NewTelegram(api *tgbotapi.BotAPI, operatorChatID int64) *Telegram {
	return &Telegram{
		api:            api,
		operatorChatID: operatorChatID,
	}
}

func (t *Telegram) Notify(userID, text string) error {
	chatID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return fmt.Errorf("strconv.ParseInt: %w", err)
	}

	if _, err := t.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("api.Send: %w", err)
	}

	return nil
}

func (t *Telegram) NotifyOperator(text string) error {
	if t.operatorChatID == 0 {
		return nil
	}

	if _, err := t.api.Send(tgbotapi.NewMessage(t.operatorChatID, text)); err != nil {
		return fmt.Errorf("api.Send: %w", err)
	}

	return nil
}

func (t *Telegram) ResolveDisplayName(_ context.Context, userID string) (string, error) {
	chatID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("strconv.ParseInt: %w", err)
	}

	chat, err := t.api.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		return "", fmt.Errorf("api.GetChat: %w", err)
	}

	if chat.UserName != "" {
		return chat.UserName, nil
	}

	return chat.FirstName, nil
}
