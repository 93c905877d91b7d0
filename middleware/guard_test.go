package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *goSession.Engine {
	t.Helper()
	cfg := goSession.DefaultConfig()
	cfg.Environment = goSession.EnvTest
	cfg.JWT.Secret = []byte("0123456789abcdef0123456789abcdef")
	engine, err := goSession.New().WithConfig(cfg).Build()
	require.NoError(t, err)
	t.Cleanup(engine.Close)
	return engine
}

func issueCookie(t *testing.T, engine *goSession.Engine) *http.Cookie {
	t.Helper()
	token, _, err := engine.IssueToken("user-123", "test@example.com")
	require.NoError(t, err)
	return &http.Cookie{Name: goSession.SessionCookieName, Value: token}
}

func whoami() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := SessionFromContext(r.Context())
		if !ok {
			_, _ = w.Write([]byte("anonymous"))
			return
		}
		_, _ = w.Write([]byte(s.UserID))
	})
}

func TestRequireSessionRejectsWithoutCookie(t *testing.T) {
	engine := newTestEngine(t)
	h := RequireSession(engine)(whoami())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireSessionRejectsInvalidToken(t *testing.T) {
	engine := newTestEngine(t)
	h := RequireSession(engine)(whoami())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: goSession.SessionCookieName, Value: "not.a.valid.jwt"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireSessionPassesPayload(t *testing.T) {
	engine := newTestEngine(t)
	h := RequireSession(engine)(whoami())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(issueCookie(t, engine))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-123", rec.Body.String())
}

func TestOptionalSessionNeverRejects(t *testing.T) {
	engine := newTestEngine(t)
	h := OptionalSession(engine)(whoami())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(issueCookie(t, engine))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "user-123", rec.Body.String())
}

func TestGuardCustomRejection(t *testing.T) {
	engine := newTestEngine(t)
	h := Guard(engine, Options{
		Required: true,
		OnUnauthorized: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/login", http.StatusFound)
		}),
	})(whoami())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestNilEngineRejects(t *testing.T) {
	h := RequireSession(nil)(whoami())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionFromContextIgnoresNil(t *testing.T) {
	ctx := WithSession(context.Background(), nil)
	_, ok := SessionFromContext(ctx)
	assert.False(t, ok)

	ctx = WithSession(context.Background(), &goSession.SessionPayload{UserID: "u", ExpiresAt: time.Now()})
	s, ok := SessionFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u", s.UserID)
}
