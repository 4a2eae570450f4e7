package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/budgetbook/budgetbook/internal/api"
	"github.com/budgetbook/budgetbook/internal/service"
)

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

// runCLI executes args against srv with an isolated config, cache and the
// given token store.
func runCLI(t *testing.T, srv *httptest.Server, tokens api.TokenStore, args ...string) (string, error) {
	t.Helper()
	return runApp(t, &app{}, srv, tokens, args...)
}

func runApp(t *testing.T, a *app, srv *httptest.Server, tokens api.TokenStore, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("BUDGETBOOK_CONFIG", filepath.Join(dir, "config.toml"))
	t.Setenv("BUDGETBOOK_API_BASE_URL", srv.URL+"/api")
	t.Setenv("BUDGETBOOK_CACHE_PATH", filepath.Join(dir, "cache.db"))
	t.Setenv("BUDGETBOOK_UI_TIMEZONE", "UTC")
	t.Setenv("BUDGETBOOK_LOG_LEVEL", "error")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var out bytes.Buffer
	err := execute(ctx, a, rootOptions{tokens: tokens, out: &out}, args)
	return out.String(), err
}

func loggedIn() api.TokenStore {
	return api.NewMemoryTokenStore(api.Tokens{Access: "access-1", Refresh: "refresh-1"})
}

func TestAccountsList(t *testing.T) {
	var auth atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/accounts", func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		writeData(w, []map[string]any{
			{"id": 1, "bankName": "KB", "alias": "생활비", "balance": 1000000},
			{"id": 2, "bankName": "Toss", "balance": 500000},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	out, err := runCLI(t, srv, loggedIn(), "accounts", "list")
	require.NoError(t, err)
	require.Contains(t, out, "생활비")
	require.Contains(t, out, "Toss")
	require.Contains(t, out, "total ₩1,500,000")
	require.Equal(t, "Bearer access-1", auth.Load())
}

func TestCommandsRequireLogin(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	for _, args := range [][]string{
		{"accounts", "list"},
		{"tx", "list"},
		{"stats", "monthly"},
		{"ai", "chat", "hello"},
	} {
		_, err := runCLI(t, srv, api.NewMemoryTokenStore(api.Tokens{}), args...)
		require.ErrorIs(t, err, errNotLoggedIn, "%v", args)
	}
}

func TestLoginStoresTokens(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req api.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": map[string]any{"code": "AUTH001", "message": "bad credentials"}})
			return
		}
		writeData(w, map[string]any{"accessToken": "a", "refreshToken": "r", "tokenType": "Bearer"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	store := api.NewMemoryTokenStore(api.Tokens{})
	_, err := runCLI(t, srv, store, "login", "--email", "me@example.com", "--password", "wrong")
	require.Error(t, err)
	require.Equal(t, "bad credentials (AUTH001)", describe(err))

	out, err := runCLI(t, srv, store, "login", "--email", "me@example.com", "--password", "secret")
	require.NoError(t, err)
	require.Contains(t, out, "signed in as me@example.com")
	tok, err := store.Tokens()
	require.NoError(t, err)
	require.Equal(t, api.Tokens{Access: "a", Refresh: "r"}, tok)
}

func TestProfileSendsOnlyChangedFields(t *testing.T) {
	var body atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/users/me", func(w http.ResponseWriter, r *http.Request) {
		raw := map[string]any{}
		_ = json.NewDecoder(r.Body).Decode(&raw)
		body.Store(raw)
		writeData(w, map[string]any{"id": 1, "name": "Lee", "email": "me@example.com", "age": 31})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	_, err := runCLI(t, srv, loggedIn(), "profile")
	require.Error(t, err)

	out, err := runCLI(t, srv, loggedIn(), "profile", "--age", "31")
	require.NoError(t, err)
	require.Contains(t, out, "Lee <me@example.com>  age 31")
	require.Equal(t, map[string]any{"age": float64(31)}, body.Load())
}

func TestTxImport(t *testing.T) {
	var created atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/categories", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, []map[string]any{{"id": 1, "name": "식비", "type": "EXPENSE"}})
	})
	mux.HandleFunc("GET /api/transactions", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, map[string]any{"content": []any{}, "totalPages": 0, "number": 0, "size": 1000})
	})
	mux.HandleFunc("POST /api/transactions", func(w http.ResponseWriter, r *http.Request) {
		var req api.TransactionCreateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		created.Add(1)
		writeData(w, map[string]any{"id": 10, "accountId": req.AccountID, "type": req.Type, "amount": req.Amount, "categoryId": req.CategoryID})
	})
	mux.HandleFunc("GET /api/accounts", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, []map[string]any{{"id": 3, "bankName": "KB", "balance": 0}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	file := filepath.Join(t.TempDir(), "march.csv")
	require.NoError(t, os.WriteFile(file, []byte("date,amount,category,memo\n2025-03-03,-12000,식비,점심\n2025-03-04,-100,없는분류,x\n"), 0o600))

	out, err := runCLI(t, srv, loggedIn(), "tx", "import", file, "--account", "3")
	require.NoError(t, err)
	require.Contains(t, out, "imported 1, skipped 0, errors 1")
	require.Equal(t, int32(1), created.Load())
}

func TestCacheReset(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	out, err := runCLI(t, srv, loggedIn(), "cache", "reset")
	require.NoError(t, err)
	require.Contains(t, out, "offline cache cleared")
}

func TestFailingCommandClosesCache(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	a := &app{}
	missing := filepath.Join(t.TempDir(), "missing.csv")
	_, err := runApp(t, a, srv, loggedIn(), "tx", "import", missing, "--account", "3")
	require.Error(t, err)
	require.NotNil(t, a.maintenance, "setup opened the cache")
	require.Nil(t, a.db)
}

func TestParseWhen(t *testing.T) {
	t.Parallel()
	got, err := parseWhen("2025-03-03", time.UTC)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC), got)

	got, err = parseWhen("2025-03-03 08:30", time.UTC)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 3, 3, 8, 30, 0, 0, time.UTC), got)

	_, err = parseWhen("03/03/2025", time.UTC)
	require.Error(t, err)
}

func TestDescribe(t *testing.T) {
	t.Parallel()
	require.Equal(t, "session expired, run `budgetbook login`",
		describe(fmt.Errorf("list accounts: %w", fmt.Errorf("%w: refresh rejected", api.ErrSessionExpired))))
	require.Equal(t, "could not read a transaction: parsing failed",
		describe(fmt.Errorf("parse: %w", &service.ParseFailure{Message: "parsing failed"})))
	require.Equal(t, "api error 404: Not Found", describe(&api.Error{Status: 404}))
	require.Equal(t, "boom", describe(errors.New("boom")))
}
