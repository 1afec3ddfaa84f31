package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env"
)

type Config struct {
	ServerAddr       string        `env:"RUN_ADDRESS"`
	LogLevel         string        `env:"LOG_LEVEL"`
	DatabaseURI      string        `env:"DATABASE_URI"`
	DataDir          string        `env:"DATA_DIR"`
	TelegramToken    string        `env:"TELEGRAM_BOT_TOKEN"`
	OperatorChatID   int64         `env:"OPERATOR_CHAT_ID"`
	Channels         string        `env:"REQUIRED_CHANNELS"`
	FeedInterval     time.Duration `env:"FEED_PUBLISH_INTERVAL"`
	JWTSecretKey     string        `env:"JWT_SECRET_KEY"`
	OperatorPassword string        `env:"OPERATOR_PASSWORD"`
}

func NewConfig() (Config, error) {
	cfg := Config{}

	flag.StringVar(&cfg.ServerAddr, "a", "0.0.0.0:8080", "server listening address [env:RUN_ADDRESS]")
	flag.StringVar(&cfg.LogLevel, "l", "info", "log output level [env:LOG_LEVEL]")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database connection string [env:DATABASE_URI]")
	flag.StringVar(&cfg.DataDir, "f", "data", "file storage directory [env:DATA_DIR]")
	flag.StringVar(&cfg.TelegramToken, "t", "", "telegram bot token [env:TELEGRAM_BOT_TOKEN]")
	flag.Int64Var(&cfg.OperatorChatID, "o", 0, "operator chat id [env:OPERATOR_CHAT_ID]")
	flag.StringVar(&cfg.Channels, "c", "", "comma-separated required channels [env:REQUIRED_CHANNELS]")
	flag.DurationVar(&cfg.FeedInterval, "i", 72*time.Hour, "feed publish interval [env:FEED_PUBLISH_INTERVAL]")
	flag.StringVar(&cfg.JWTSecretKey, "s", "secretkey", "JWT secret to sign tokens [env:JWT_SECRET_KEY]")
	flag.StringVar(&cfg.OperatorPassword, "p", "", "operator API password [env:OPERATOR_PASSWORD]")
	flag.Parse()

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("env.Parse: %w", err)
	}

	return cfg, nil
}

// ChannelList splits the comma-separated channel string, dropping empties.
func (c Config) ChannelList() []string {
	parts := strings.Split(c.Channels, ",")

	channels := make([]string, 0, len(parts))

	for _, part := range parts {
		if channel := strings.TrimSpace(part); channel != "" {
			channels = append(channels, channel)
		}
	}

	return channels
}
