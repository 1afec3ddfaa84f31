package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/minerdrop/minerdrop/internal/feed"
	"github.com/minerdrop/minerdrop/internal/ledger"
	"github.com/minerdrop/minerdrop/internal/server/router"
	"github.com/minerdrop/minerdrop/internal/storage"
)

type Server struct {
	srv *http.Server
	log *slog.Logger
}

type Config struct {
	logger       *slog.Logger
	serverAddr   string
	jwtSecretKey []byte
	passwordHash []byte
}

type Option func(c *Config)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.logger = logger
	}
}

func WithServerAddr(addr string) Option {
	return func(c *Config) {
		c.serverAddr = addr
	}
}

func WithJWTSecretKey(secret []byte) Option {
	return func(c *Config) {
		c.jwtSecretKey = secret
	}
}

// WithOperatorPasswordHash sets the bcrypt hash of the operator password.
func WithOperatorPasswordHash(hash []byte) Option {
	return func(c *Config) {
		c.passwordHash = hash
	}
}

func NewServer(store storage.Storage, svc *ledger.Service, feedDaemon *feed.Daemon, opts ...Option) *Server {
	cfg := &Config{
		logger:     slog.Default(),
		serverAddr: "0.0.0.0:8080",
	}

	for _, opt := range opts {
		opt(cfg)
	}

	r := router.NewRouter(store, svc, feedDaemon,
		router.WithLogger(cfg.logger),
		router.WithSecret(cfg.jwtSecretKey),
		router.WithOperatorPasswordHash(cfg.passwordHash),
	)

	srv := &http.Server{
		Addr:              cfg.serverAddr,
		Handler:           r,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return &Server{
		srv: srv,
		log: cfg.logger,
	}
}

func (s *Server) Start() error {
	s.log.Info(fmt.Sprintf("Starting server on %s", s.srv.Addr))

	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe: %w", err)
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}

	return nil
}
