package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/minerdrop/minerdrop/internal/bot"
	"github.com/minerdrop/minerdrop/internal/config"
	"github.com/minerdrop/minerdrop/internal/feed"
	"github.com/minerdrop/minerdrop/internal/ledger"
	"github.com/minerdrop/minerdrop/internal/logger"
	"github.com/minerdrop/minerdrop/internal/notifier"
	"github.com/minerdrop/minerdrop/internal/server"
	"github.com/minerdrop/minerdrop/internal/storage"
	"github.com/minerdrop/minerdrop/internal/storage/filestore"
	"github.com/minerdrop/minerdrop/internal/storage/pgstorage"
)

const shutdownTimeout = 10 * time.Second

var errTelegramTokenEmpty = errors.New("telegram bot token is empty")

type Application struct {
	log    *slog.Logger
	server *server.Server
	bot    *bot.Bot
	feed   *feed.Daemon
	store  storage.Storage
}

func New() (*Application, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("config.NewConfig: %w", err)
	}

	logLevel, err := logger.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger.ParseLogLevel: %w", err)
	}

	logg := logger.NewLogger(
		logger.WithLevel(logLevel),
		logger.WithFormat(logger.LogFormatJSON),
		logger.WithAddSource(false),
	)

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.TelegramToken == "" {
		return nil, errTelegramTokenEmpty
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("tgbotapi.NewBotAPI: %w", err)
	}

	tgNotifier := notifier.NewTelegram(api, cfg.OperatorChatID)

	svc := ledger.New(store,
		ledger.WithLogger(logg),
		ledger.WithNotifier(tgNotifier),
		ledger.WithIdentityResolver(tgNotifier),
	)

	feedDaemon := feed.NewDaemon(store,
		feed.WithLogger(logg),
		feed.WithNotifier(tgNotifier),
		feed.WithPublishInterval(cfg.FeedInterval),
	)

	tgBot := bot.NewBot(api, svc, feedDaemon,
		bot.WithLogger(logg),
		bot.WithChannels(cfg.ChannelList()),
		bot.WithOperatorChatID(cfg.OperatorChatID),
	)

	var passwordHash []byte

	if cfg.OperatorPassword != "" {
		passwordHash, err = bcrypt.GenerateFromPassword([]byte(cfg.OperatorPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("bcrypt.GenerateFromPassword: %w", err)
		}
	}

	srv := server.NewServer(store, svc, feedDaemon,
		server.WithLogger(logg),
		server.WithServerAddr(cfg.ServerAddr),
		server.WithJWTSecretKey([]byte(cfg.JWTSecretKey)),
		server.WithOperatorPasswordHash(passwordHash),
	)

	return &Application{
		log:    logg,
		server: srv,
		bot:    tgBot,
		feed:   feedDaemon,
		store:  store,
	}, nil
}

func newStorage(cfg config.Config) (storage.Storage, error) {
	if cfg.DatabaseURI != "" {
		pgstore, err := pgstorage.NewStorage(cfg.DatabaseURI)
		if err != nil {
			return nil, fmt.Errorf("pgstorage.NewStorage: %w", err)
		}

		if err := pgstore.Bootstrap(context.Background()); err != nil {
			return nil, fmt.Errorf("pgstorage.Bootstrap: %w", err)
		}

		return storage.NewStorage(pgstore), nil
	}

	filestore, err := filestore.OpenStorage(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("filestore.OpenStorage: %w", err)
	}

	return storage.NewStorage(filestore), nil
}

func (a *Application) Run() error {
	errChan := make(chan error, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := a.server.Start(); err != nil {
			errChan <- fmt.Errorf("server.Start: %w", err)
		}
	}()

	go func() {
		if err := a.bot.Run(ctx); err != nil {
			errChan <- fmt.Errorf("bot.Run: %w", err)
		}
	}()

	go func() {
		if err := a.feed.Run(ctx); err != nil {
			errChan <- fmt.Errorf("feed.Run: %w", err)
		}
	}()

	// Graceful shutdown handler
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case err := <-errChan:
			return err

		case <-quit:
			a.log.Info("Gracefully shutting down application...")

			cancel()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutdownCancel()

			if err := a.server.Shutdown(shutdownCtx); err != nil {
				a.log.Error("server.Shutdown", slog.Any("error", err))
			}

			if err := a.store.Close(); err != nil {
				a.log.Error("storage.Close", slog.Any("error", err))
			}

			return nil
		}
	}
}
