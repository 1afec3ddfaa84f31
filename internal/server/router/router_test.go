package router_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/minerdrop/minerdrop/internal/feed"
	"github.com/minerdrop/minerdrop/internal/ledger"
	"github.com/minerdrop/minerdrop/internal/server/models"
	"github.com/minerdrop/minerdrop/internal/server/router"
	"github.com/minerdrop/minerdrop/internal/storage/inmemory"
)

func newTestServer(t *testing.T) (*httptest.Server, *inmemory.Storage) {
	t.Helper()

	store := inmemory.NewStorage()
	svc := ledger.New(store)
	feedDaemon := feed.NewDaemon(store)

	hash, err := bcrypt.GenerateFromPassword([]byte("operator-password"), bcrypt.MinCost)
	require.NoError(t, err)

	r := router.NewRouter(store, svc, feedDaemon,
		router.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		router.WithSecret([]byte("test-secret")),
		router.WithOperatorPasswordHash(hash),
	)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return srv, store
}

func login(t *testing.T, srv *httptest.Server, password string) *http.Response {
	t.Helper()

	resp, err := http.Post(srv.URL+"/api/operator/login", "application/json",
		strings.NewReader(`{"password":"`+password+`"}`))
	require.NoError(t, err)

	return resp
}

func operatorToken(t *testing.T, srv *httptest.Server) string {
	t.Helper()

	resp := login(t, srv, "operator-password")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	token, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	return string(token)
}

func doAuthed(t *testing.T, srv *httptest.Server, method, path, token, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	return resp
}

func TestPing(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestOperatorLogin(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := login(t, srv, "wrong-password")
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token := operatorToken(t, srv)
	require.NotEmpty(t, token)
}

func TestGetStats(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, store.CreditBalance(ctx, "1", decimal.NewFromInt(3)))
	require.NoError(t, store.CreditBalance(ctx, "2", decimal.NewFromInt(7)))

	resp := doAuthed(t, srv, http.MethodGet, "/api/stats", "", "")
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token := operatorToken(t, srv)

	resp = doAuthed(t, srv, http.MethodGet, "/api/stats", token, "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats models.StatsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	require.Equal(t, 2, stats.Accounts)
	require.InDelta(t, 10, stats.TotalBalance, 0.0001)
}

func TestGetWithdrawalsEmpty(t *testing.T) {
	srv, _ := newTestServer(t)

	token := operatorToken(t, srv)

	resp := doAuthed(t, srv, http.MethodGet, "/api/withdrawals", token, "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestBroadcast(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()

	token := operatorToken(t, srv)

	resp := doAuthed(t, srv, http.MethodPost, "/api/broadcast", token, `{"message":""}`)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doAuthed(t, srv, http.MethodPost, "/api/broadcast", token, `{"message":"maintenance tonight"}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	f, err := store.GetFeed(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"maintenance tonight"}, f.Messages)
}
