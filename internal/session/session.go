package session

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Profile is the operator profile cached alongside the access token.
type Profile struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

// Manager orchestrates cookie based sessions backed by Redis.
type Manager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
	secret     []byte
}

// Session holds per-request session data: the upstream bearer token and the
// cached operator profile. Lifecycle is login -> populated, logout -> destroyed.
type Session struct {
	ID          string
	accessToken string
	profile     *Profile
	isNew       bool
	dirty       bool
	destroyed   bool
}

type sessionPayload struct {
	AccessToken string   `json:"access_token"`
	Profile     *Profile `json:"profile,omitempty"`
}

// NewManager constructs a Manager.
func NewManager(client *redis.Client, cookieName string, secret string, ttl time.Duration, secure bool) *Manager {
	return &Manager{
		client:     client,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		secret:     []byte(secret),
	}
}

// Load loads or creates a new session for the request.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return &Session{isNew: true}, nil
		}
		return nil, err
	}
	id, ok := m.verifySessionID(cookie.Value)
	if !ok {
		return &Session{isNew: true}, nil
	}

	payload, err := m.client.Get(ctx, m.redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &Session{ID: cookie.Value, isNew: true}, nil
		}
		return nil, err
	}

	var stored sessionPayload
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, err
	}
	return &Session{
		ID:          cookie.Value,
		accessToken: stored.AccessToken,
		profile:     stored.Profile,
	}, nil
}

// Commit persists the session and writes cookie headers as needed.
func (m *Manager) Commit(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if sess == nil {
		return nil
	}

	if sess.destroyed {
		if id, ok := m.verifySessionID(sess.ID); ok {
			if err := m.client.Del(ctx, m.redisKey(id)).Err(); err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
		}
		http.SetCookie(w, &http.Cookie{
			Name:     m.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   m.secure,
			SameSite: http.SameSiteStrictMode,
		})
		return nil
	}

	if sess.isNew && sess.ID == "" {
		sess.ID = m.generateSessionID()
	}

	if sess.dirty || sess.isNew {
		id, ok := m.verifySessionID(sess.ID)
		if !ok {
			return errors.New("session: invalid session id")
		}
		data, err := json.Marshal(sessionPayload{AccessToken: sess.accessToken, Profile: sess.profile})
		if err != nil {
			return err
		}
		if err := m.client.Set(ctx, m.redisKey(id), data, m.ttl).Err(); err != nil {
			return err
		}
		sess.dirty = false
	}

	if sess.ID != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     m.cookieName,
			Value:    sess.ID,
			Path:     "/",
			MaxAge:   int(m.ttl.Seconds()),
			HttpOnly: true,
			Secure:   m.secure,
			SameSite: http.SameSiteStrictMode,
		})
	}
	return nil
}

func (m *Manager) redisKey(id string) string {
	return "garagepos:session:" + id
}

func (m *Manager) generateSessionID() string {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return ""
	}
	id := base64.RawURLEncoding.EncodeToString(raw)
	return id + "." + m.sign(id)
}

func (m *Manager) sign(id string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// verifySessionID splits the cookie value into id.signature and checks the MAC.
func (m *Manager) verifySessionID(value string) (string, bool) {
	id, sig, found := strings.Cut(value, ".")
	if !found || id == "" {
		return "", false
	}
	if !hmac.Equal([]byte(sig), []byte(m.sign(id))) {
		return "", false
	}
	return id, true
}

// Token returns the upstream bearer token, empty when not logged in.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	return s.accessToken
}

// Profile returns the cached operator profile, nil when not logged in.
func (s *Session) Profile() *Profile {
	if s == nil {
		return nil
	}
	return s.profile
}

// Authenticated reports whether an access token is present.
func (s *Session) Authenticated() bool {
	return s != nil && s.accessToken != ""
}

// Login stores the upstream token and profile.
func (s *Session) Login(token string, profile *Profile) {
	s.accessToken = token
	s.profile = profile
	s.dirty = true
}

// Destroy marks the session for deletion at commit time.
func (s *Session) Destroy() {
	s.accessToken = ""
	s.profile = nil
	s.destroyed = true
}

type contextKey struct{}

// ContextWithSession stores the session on the context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// FromContext extracts the session from the context, nil when absent.
func FromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(contextKey{}).(*Session)
	return sess
}
