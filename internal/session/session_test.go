package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	_ "github.com/zedx-auto/garagepos/testing"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewManager(client, "garagepos_session", "test-secret", time.Hour, false)
}

func commitAndCookie(t *testing.T, m *Manager, sess *Session) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, m.Commit(context.Background(), rec, sess))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func TestSessionLoginRoundTrip(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := m.Load(ctx, req)
	require.NoError(t, err)
	require.False(t, sess.Authenticated())

	sess.Login("upstream-token", &Profile{ID: 1, Username: "cashier", Role: "CASHIER"})
	cookie := commitAndCookie(t, m, sess)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	loaded, err := m.Load(ctx, req)
	require.NoError(t, err)
	require.True(t, loaded.Authenticated())
	require.Equal(t, "upstream-token", loaded.Token())
	require.Equal(t, "cashier", loaded.Profile().Username)
}

func TestSessionDestroy(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	sess, err := m.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.Login("tok", nil)
	cookie := commitAndCookie(t, m, sess)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	loaded, err := m.Load(ctx, req)
	require.NoError(t, err)
	loaded.Destroy()

	rec := httptest.NewRecorder()
	require.NoError(t, m.Commit(ctx, rec, loaded))
	cleared := rec.Result().Cookies()
	require.NotEmpty(t, cleared)
	require.Equal(t, -1, cleared[0].MaxAge)

	// The server side entry is gone even if the old cookie is replayed.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	replayed, err := m.Load(ctx, req)
	require.NoError(t, err)
	require.False(t, replayed.Authenticated())
}

func TestSessionTamperedCookieIgnored(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	sess, err := m.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.Login("tok", nil)
	cookie := commitAndCookie(t, m, sess)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value + "x"})
	loaded, err := m.Load(ctx, req)
	require.NoError(t, err)
	require.False(t, loaded.Authenticated())
}

func TestSessionContext(t *testing.T) {
	sess := &Session{}
	ctx := ContextWithSession(context.Background(), sess)
	require.Same(t, sess, FromContext(ctx))
	require.Nil(t, FromContext(context.Background()))
}
