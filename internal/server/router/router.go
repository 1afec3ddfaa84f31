package router

import (
	"log/slog"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"

	"github.com/minerdrop/minerdrop/internal/auth"
	"github.com/minerdrop/minerdrop/internal/feed"
	"github.com/minerdrop/minerdrop/internal/ledger"
	"github.com/minerdrop/minerdrop/internal/server/handlers"
	"github.com/minerdrop/minerdrop/internal/storage"
)

type Options struct {
	log          *slog.Logger
	secret       []byte
	passwordHash []byte
}

func NewRouter(store storage.Storage, svc *ledger.Service, feedDaemon *feed.Daemon, opts ...Option) chi.Router {
	r := chi.NewRouter()

	rOpts := Options{
		log:    slog.New(&slog.JSONHandler{}),
		secret: []byte(""),
	}

	for _, opt := range opts {
		opt(&rOpts)
	}

	tokenAuth := jwtauth.New("HS256", rOpts.secret, nil)

	r.Use(
		middleware.Recoverer,
		middleware.StripSlashes,
		middleware.Logger,
	)

	h := handlers.NewHandlers(store, svc, feedDaemon,
		handlers.WithLogger(rOpts.log),
		handlers.WithAuth(auth.NewJWTAuth(rOpts.secret)),
		handlers.WithOperatorPasswordHash(rOpts.passwordHash),
	)

	r.Get("/ping", h.Ping)

	r.Group(func(r chi.Router) {
		r.Post("/api/operator/login", h.OperatorLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(
			jwtauth.Verifier(tokenAuth),
			jwtauth.Authenticator(tokenAuth),
		)

		r.Get("/api/stats", h.GetStats)
		r.Get("/api/withdrawals", h.GetWithdrawals)
		r.Post("/api/broadcast", h.Broadcast)
	})

	return r
}

type Option func(r *Options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.log = logger
	}
}

func WithSecret(secret []byte) Option {
	return func(o *Options) {
		o.secret = secret
	}
}

func WithOperatorPasswordHash(hash []byte) Option {
	return func(o *Options) {
		o.passwordHash = hash
	}
}
