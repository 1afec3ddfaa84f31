// Package feed maintains the seasonal update feed: a fixed announcement list
// published one message at a time on a timer, fanned out to every subscriber.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/minerdrop/minerdrop/internal/ledger"
	"github.com/minerdrop/minerdrop/internal/storage"
)

var seasonMessages = []string{
	"🚀 New feature: Games will be part of Season Two! Expect exciting challenges and rewards.",
	"🔒 Enhanced security: Your mining sessions will be safer than ever in Season Two. Stay protected!",
	"🎉 Big rewards: Get ready for some huge bonuses coming your way next season. Don't miss out!",
	"⚙️ Optimized Performance: Mining efficiency will be significantly improved in Season Two. Faster and better!",
	"💰 Double Earnings: Season Two will bring you opportunities to double your mining earnings. Stay tuned!",
	"🌍 Global Leaderboard: Compete with miners around the world and climb to the top. Show your skills!",
	"📈 Enhanced Analytics: Get detailed insights into your mining activities with our new analytics tools.",
	"🔔 Instant Notifications: Never miss an important update with our new instant notification feature.",
	"🎯 Daily Challenges: Participate in daily mining challenges and win exclusive rewards!",
	"💸 Lower Fees: We've reduced transaction fees in Season Two, making it easier to cash out your earnings.",
	"🎁 Surprise Gifts: Look out for surprise gifts and bonuses throughout Season Two. Keep mining!",
	"🚨 Anti-Fraud Measures: We've implemented stronger anti-fraud measures to protect your earnings.",
	"🛠 Customizable Mining: Tailor your mining experience with our new customization options in Season Two.",
	"🎮 Interactive Games: Enjoy interactive games within the bot that offer real crypto rewards!",
	"🔧 Automated Tools: Season Two introduces automation tools to streamline your mining operations.",
	"🆕 New Miner Types: Discover new miner types with unique abilities and higher profitability.",
	"🌐 Multi-Currency Support: Season Two will allow mining and transactions in multiple cryptocurrencies!",
	"🔄 Instant Withdrawal: Experience faster withdrawals with our improved payment processing system.",
	"💬 Community Features: Engage with other miners and share tips in our new community section.",
	"🏆 Seasonal Competitions: Participate in seasonal competitions and win big! Season Two is going to be epic!",
}

const defaultPublishInterval = 72 * time.Hour

type Daemon struct {
	log             *slog.Logger
	store           storage.Storage
	notifier        ledger.Notifier
	publishInterval time.Duration
}

type Config struct {
	logger          *slog.Logger
	notifier        ledger.Notifier
	publishInterval time.Duration
}

type Option func(c *Config)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.logger = logger
	}
}

func WithNotifier(n ledger.Notifier) Option {
	return func(c *Config) {
		c.notifier = n
	}
}

func WithPublishInterval(interval time.Duration) Option {
	return func(c *Config) {
		c.publishInterval = interval
	}
}

func NewDaemon(store storage.Storage, opts ...Option) *Daemon {
	cfg := &Config{
		logger:          slog.Default(),
		publishInterval: defaultPublishInterval,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &Daemon{
		log:             cfg.logger.With(slog.String("module", "feed")),
		store:           store,
		notifier:        cfg.notifier,
		publishInterval: cfg.publishInterval,
	}
}

func (d *Daemon) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.publishInterval)
	defer ticker.Stop()

	d.log.Info("Start feed daemon")

	for {
		select {
		case <-ctx.Done():
			d.log.Info("Context done, stopping feed daemon")

			return nil

		case <-ticker.C:
			if err := d.PublishNext(ctx); err != nil {
				d.log.Error("feed.PublishNext", slog.Any("error", err))
			}
		}
	}
}

// PublishNext appends the next unpublished season message to the feed and
// fans it out. Once the list is exhausted the call becomes a no-op.
func (d *Daemon) PublishNext(ctx context.Context) error {
	f, err := d.store.GetFeed(ctx)
	if err != nil {
		return fmt.Errorf("storage.GetFeed: %w", err)
	}

	if len(f.Messages) >= len(seasonMessages) {
		return nil
	}

	msg := seasonMessages[len(f.Messages)]
	f.Messages = append(f.Messages, msg)

	if err := d.store.SaveFeed(ctx, f); err != nil {
		return fmt.Errorf("storage.SaveFeed: %w", err)
	}

	d.fanOut(ctx, msg)

	return nil
}

// Broadcast appends an operator-supplied message to the feed and fans it out
// to all subscribers.
func (d *Daemon) Broadcast(ctx context.Context, text string) error {
	f, err := d.store.GetFeed(ctx)
	if err != nil {
		return fmt.Errorf("storage.GetFeed: %w", err)
	}

	f.Messages = append(f.Messages, text)

	if err := d.store.SaveFeed(ctx, f); err != nil {
		return fmt.Errorf("storage.SaveFeed: %w", err)
	}

	d.fanOut(ctx, text)

	return nil
}

// Feed returns the current feed record.
func (d *Daemon) Feed(ctx context.Context) (*storage.Feed, error) {
	f, err := d.store.GetFeed(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage.GetFeed: %w", err)
	}

	return f, nil
}

func (d *Daemon) fanOut(ctx context.Context, text string) {
	if d.notifier == nil {
		return
	}

	ids, err := d.store.ListSubscribers(ctx)
	if err != nil {
		d.log.Error("storage.ListSubscribers", slog.Any("error", err))

		return
	}

	for _, id := range ids {
		if err := d.notifier.Notify(id, text); err != nil {
			d.log.Error("notify subscriber", slog.String("user_id", id), slog.Any("error", err))
		}
	}
}
