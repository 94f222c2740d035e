package auth

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/zedx-auto/garagepos/internal/session"
	"github.com/zedx-auto/garagepos/internal/shopapi"

	_ "github.com/zedx-auto/garagepos/testing"
)

func newLoginUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user/login", r.URL.Path)
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["password"] != "correct" {
			_ = json.NewEncoder(w).Encode(map[string]any{"status": false, "errorDescription": "invalid credentials"})
			return
		}
		raw, _ := json.Marshal(shopapi.LoginResult{
			AccessToken: "token-abc",
			User:        shopapi.User{ID: 1, Username: "cashier", DisplayName: "Front Desk", Role: "CASHIER"},
		})
		_ = json.NewEncoder(w).Encode(map[string]any{"status": true, "responseDto": json.RawMessage(raw)})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newAuthRouter(t *testing.T) (chi.Router, *session.Session) {
	t.Helper()
	srv := newLoginUpstream(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	api := shopapi.New(srv.URL, 5*time.Second, logger)
	h := NewHandler(logger, api)

	sess := &session.Session{ID: "test-session"}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(session.ContextWithSession(req.Context(), sess)))
		})
	})
	h.MountRoutes(r)
	return r, sess
}

func TestLoginStoresTokenInSession(t *testing.T) {
	router, sess := newAuthRouter(t)

	body := strings.NewReader(`{"username":"cashier","password":"correct"}`)
	req := httptest.NewRequest(http.MethodPost, "/login", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "token-abc", sess.Token())
	require.Equal(t, "cashier", sess.Profile().Username)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, true, payload["authenticated"])
}

func TestLoginRejectedCredentials(t *testing.T) {
	router, sess := newAuthRouter(t)

	body := strings.NewReader(`{"username":"cashier","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/login", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, sess.Authenticated())
}

func TestLoginValidation(t *testing.T) {
	router, _ := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"cashier"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutDestroysSession(t *testing.T) {
	router, sess := newAuthRouter(t)
	sess.Login("tok", &session.Profile{Username: "cashier"})

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, sess.Authenticated())
}

func TestRequireAuth(t *testing.T) {
	protected := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	// No session at all.
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Session without a token.
	sess := &session.Session{}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(session.ContextWithSession(req.Context(), sess))
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Authenticated session passes.
	sess.Login("tok", nil)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}
