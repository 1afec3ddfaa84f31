package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/minerdrop/minerdrop/internal/auth"
	"github.com/minerdrop/minerdrop/internal/errmsg"
	"github.com/minerdrop/minerdrop/internal/feed"
	"github.com/minerdrop/minerdrop/internal/ledger"
	"github.com/minerdrop/minerdrop/internal/server/models"
	"github.com/minerdrop/minerdrop/internal/storage"
)

// operatorSubject is the JWT sub claim issued on operator login.
const operatorSubject = "operator"

type Handlers struct {
	storage      storage.Storage
	ledger       *ledger.Service
	feed         *feed.Daemon
	log          *slog.Logger
	auth         *auth.JWTAuth
	passwordHash []byte
}

// NewHandlers returns a new Handlers instance.
func NewHandlers(store storage.Storage, svc *ledger.Service, feedDaemon *feed.Daemon, opts ...Option) *Handlers {
	handlers := &Handlers{
		storage: store,
		ledger:  svc,
		feed:    feedDaemon,
		log:     slog.New(&slog.JSONHandler{}),
		auth:    auth.NewJWTAuth([]byte("")),
	}

	for _, opt := range opts {
		opt(handlers)
	}

	return handlers
}

// Option is a functional option for Handlers.
type Option func(h *Handlers)

// WithLogger is a option for Handlers that sets logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handlers) {
		h.log = logger
	}
}

func WithAuth(auth *auth.JWTAuth) Option {
	return func(h *Handlers) {
		h.auth = auth
	}
}

// WithOperatorPasswordHash sets the bcrypt hash logins are compared against.
func WithOperatorPasswordHash(hash []byte) Option {
	return func(h *Handlers) {
		h.passwordHash = hash
	}
}

type JSONResponse struct {
	Message any `json:"message,omitempty"`
	Error   any `json:"error,omitempty"`
}

func handleJSONResponse(w http.ResponseWriter, status int, resp any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func handleError(w http.ResponseWriter, err errmsg.HTTPError) {
	resp := &JSONResponse{
		Error: err.Error(),
	}

	w.Header().Set("content-type", "application/json")
	w.WriteHeader(err.Code)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (h *Handlers) Ping(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.Ping(r.Context()); err != nil {
		h.log.Error("storage.Ping", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	handleJSONResponse(w, http.StatusOK, &JSONResponse{Message: "ok"})
}

func (h *Handlers) OperatorLogin(w http.ResponseWriter, r *http.Request) {
	var loginPayload models.OperatorLoginRequest

	if err := json.NewDecoder(r.Body).Decode(&loginPayload); err != nil {
		if errors.Is(err, io.EOF) {
			h.log.Error("json.NewDecoder().Decode()", slog.Any("error", err))
			handleError(w, errmsg.ErrRequestPayloadEmpty)

			return
		}

		h.log.Error("json.NewDecoder().Decode()", slog.Any("error", err))
		handleError(w, errmsg.ErrRequestPayloadInvalid)

		return
	}

	defer r.Body.Close()

	err := bcrypt.CompareHashAndPassword(h.passwordHash, []byte(loginPayload.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			h.log.Error("bcrypt.CompareHashAndPassword()", slog.Any("error", err))
			handleError(w, errmsg.ErrOperatorCredentialsInvalid)

			return
		}

		h.log.Error("bcrypt.CompareHashAndPassword()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	token, err := h.auth.CreateJWTString(operatorSubject)
	if err != nil {
		h.log.Error("jwtauth.CreateJWTString()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	w.Header().Set("content-type", "text/html")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(token)) //nolint:errcheck
}

func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ledger.Stats(r.Context())
	if err != nil {
		h.log.Error("ledger.Stats()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	resp := models.StatsResponse{
		Accounts:     stats.Accounts,
		TotalBalance: stats.TotalBalance.InexactFloat64(),
	}

	handleJSONResponse(w, http.StatusOK, resp)
}

func (h *Handlers) GetWithdrawals(w http.ResponseWriter, r *http.Request) {
	withdrawals, err := h.ledger.Withdrawals(r.Context())
	if err != nil {
		h.log.Error("ledger.Withdrawals()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	if len(withdrawals) == 0 {
		handleJSONResponse(w, http.StatusNoContent, []models.WithdrawalResponse{})

		return
	}

	withdrawalsResp := make([]models.WithdrawalResponse, len(withdrawals))
	for i, withdrawal := range withdrawals {
		withdrawalsResp[i] = models.WithdrawalResponse{
			ID:          withdrawal.ID(),
			UserID:      withdrawal.UserID(),
			Address:     withdrawal.Address(),
			Amount:      withdrawal.Amount().InexactFloat64(),
			ProcessedAt: withdrawal.ProcessedAt().Format(time.RFC3339),
		}
	}

	handleJSONResponse(w, http.StatusOK, withdrawalsResp)
}

func (h *Handlers) Broadcast(w http.ResponseWriter, r *http.Request) {
	var broadcastPayload models.BroadcastRequest

	if err := json.NewDecoder(r.Body).Decode(&broadcastPayload); err != nil {
		if errors.Is(err, io.EOF) {
			h.log.Error("json.NewDecoder().Decode()", slog.Any("error", err))
			handleError(w, errmsg.ErrRequestPayloadEmpty)

			return
		}

		h.log.Error("json.NewDecoder().Decode()", slog.Any("error", err))
		handleError(w, errmsg.ErrRequestPayloadInvalid)

		return
	}

	defer r.Body.Close()

	if broadcastPayload.Message == "" {
		handleError(w, errmsg.ErrBroadcastMessageEmpty)

		return
	}

	if err := h.feed.Broadcast(r.Context(), broadcastPayload.Message); err != nil {
		h.log.Error("feed.Broadcast()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	handleJSONResponse(w, http.StatusOK, &JSONResponse{Message: "ok"})
}
