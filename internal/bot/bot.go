// Package bot is the Telegram front-end. It drives the ledger core through a
// long-polling loop, with a per-chat state machine for the multi-step flows
// (wallet entry, withdrawal confirmation, deposit proof).
package bot

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/minerdrop/minerdrop/internal/feed"
	"github.com/minerdrop/minerdrop/internal/ledger"
)

const updateTimeout = 60 // seconds, long-poll window

var timeNow = time.Now

type Bot struct {
	api            *tgbotapi.BotAPI
	log            *slog.Logger
	ledger         *ledger.Service
	feed           *feed.Daemon
	channels       []string
	operatorChatID int64
	sessions       map[int64]*session
}

type Config struct {
	logger         *slog.Logger
	channels       []string
	operatorChatID int64
}

type Option func(c *Config)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithChannels sets the channel usernames a user must join before the welcome
// bonus can be claimed.
func WithChannels(channels []string) Option {
	return func(c *Config) {
		c.channels = channels
	}
}

// WithOperatorChatID sets the chat that receives deposit proof photos.
func WithOperatorChatID(chatID int64) Option {
	return func(c *Config) {
		c.operatorChatID = chatID
	}
}

func NewBot(api *tgbotapi.BotAPI, svc *ledger.Service, feedDaemon *feed.Daemon, opts ...Option) *Bot {
	cfg := &Config{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &Bot{
		api:            api,
		log:            cfg.logger.With(slog.String("module", "bot")),
		ledger:         svc,
		feed:           feedDaemon,
		channels:       cfg.channels,
		operatorChatID: cfg.operatorChatID,
		sessions:       make(map[int64]*session),
	}
}

// Run processes updates sequentially until the context is cancelled. One
// update is handled at a time, which keeps the per-chat state machine free of
// races without extra locking.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeout

	updates := b.api.GetUpdatesChan(u)

	b.log.Info("Start bot", slog.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.log.Info("Context done, stopping bot")

			b.api.StopReceivingUpdates()

			return nil

		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) session(chatID int64) *session {
	s, ok := b.sessions[chatID]
	if !ok {
		s = &session{}
		b.sessions[chatID] = s
	}

	return s
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.log.Error("api.Send", slog.Any("error", err))
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) replyMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	b.send(msg)
}

// memberOfChannels reports whether the user belongs to every required
// channel. Lookup failures deny and are logged.
func (b *Bot) memberOfChannels(userID int64) bool {
	for _, channel := range b.channels {
		member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
			ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
				SuperGroupUsername: channel,
				UserID:             userID,
			},
		})
		if err != nil {
			b.log.Error("api.GetChatMember",
				slog.String("channel", channel), slog.Any("error", err))

			return false
		}

		switch member.Status {
		case "member", "administrator", "creator":
		default:
			return false
		}
	}

	return true
}

func displayName(user *tgbotapi.User) string {
	if user.UserName != "" {
		return user.UserName
	}

	if user.FirstName != "" {
		return user.FirstName
	}

	return "User_" + strconv.FormatInt(user.ID, 10)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	return padTwo(h) + ":" + padTwo(m) + ":" + padTwo(s)
}

func padTwo(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}

	return strconv.Itoa(n)
}
