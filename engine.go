package goSession

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MrEthical07/goSession/cookie"
	internalaudit "github.com/MrEthical07/goSession/internal/audit"
	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/session"
)

// Engine issues, reads and invalidates cookie sessions. It is immutable
// after [Builder.Build] and safe for concurrent use.
type Engine struct {
	config     Config
	codec      *jwt.Manager
	cookies    *cookie.Store
	revocation *session.Store
	audit      *internalaudit.Dispatcher
	metrics    *Metrics
	logger     *slog.Logger
	now        func() time.Time
}

// Close drains the audit dispatcher. The engine must not be used afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// AuditDropped reports how many audit events were discarded on overflow.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// AuditDroppedByType breaks [Engine.AuditDropped] down by event type.
func (e *Engine) AuditDroppedByType() map[string]uint64 {
	if e == nil {
		return map[string]uint64{}
	}
	return e.audit.DroppedByType()
}

// MetricsSnapshot returns a copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Mode returns the configured validation mode.
func (e *Engine) Mode() ValidationMode {
	if e == nil {
		return ModeJWTOnly
	}
	return e.config.ValidationMode
}

// CookieAttributes returns the attributes a session expiring at expiresAt
// would be written with.
func (e *Engine) CookieAttributes(expiresAt time.Time) CookieAttributes {
	return e.cookies.Attributes(expiresAt)
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// CreateSession issues a session for userID and email and writes it to jar
// as the auth-token cookie, replacing any previous one. Both identity fields
// are required.
func (e *Engine) CreateSession(ctx context.Context, jar CookieJar, userID, email string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if cookie.IsNil(jar) {
		return ErrNilJar
	}

	token, payload, err := e.IssueToken(userID, email)
	if err != nil {
		e.metricInc(MetricSessionCreateRejected)
		e.emitAudit(ctx, auditEventSessionCreateRejected, false, userID, "", err, nil)
		return err
	}

	e.cookies.Save(jar, token, payload.ExpiresAt)

	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, auditEventSessionCreated, true, payload.UserID, payload.TokenID, nil, nil)
	return nil
}

// IssueToken signs a session token without writing a cookie. It is the
// building block of CreateSession and is exposed for tooling.
func (e *Engine) IssueToken(userID, email string) (string, *SessionPayload, error) {
	if e == nil {
		return "", nil, ErrEngineNotReady
	}
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(email) == "" {
		return "", nil, ErrInvalidIdentity
	}
	token, claims, err := e.codec.Issue(userID, email)
	if err != nil {
		e.logger.Error("session token signing failed", "error", err)
		return "", nil, fmt.Errorf("%w: %v", ErrSessionCreationFailed, err)
	}
	return token, payloadFromClaims(claims), nil
}

// GetSession returns the session stored in jar, or nil when there is none.
// Absent, malformed, forged, expired and revoked tokens all yield nil.
func (e *Engine) GetSession(ctx context.Context, jar CookieReader) *SessionPayload {
	if e == nil {
		return nil
	}
	return e.resolve(ctx, jar)
}

// VerifySession is GetSession for an inbound request that has no response
// to write to. It reads the Cookie header of r only.
func (e *Engine) VerifySession(ctx context.Context, r *http.Request) *SessionPayload {
	if e == nil || r == nil {
		return nil
	}
	return e.resolve(ctx, cookie.FromRequest(r))
}

func (e *Engine) resolve(ctx context.Context, jar CookieReader) *SessionPayload {
	if e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() { e.metrics.Observe(MetricValidateLatency, time.Since(start)) }()
	}

	token, ok := e.cookies.Read(jar)
	if !ok {
		e.metricInc(MetricSessionAbsent)
		return nil
	}

	claims, err := e.codec.Decode(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			e.metricInc(MetricSessionExpired)
		} else {
			e.metricInc(MetricSessionInvalid)
		}
		e.logger.Debug("session token rejected", "reason", string(auditReason(err)))
		e.emitAudit(ctx, auditEventSessionRejected, false, "", "", err, nil)
		return nil
	}

	if e.revocation != nil {
		if err := e.revocation.Check(ctx, claims.ID, claims.UserID, claims.IssuedTime()); err != nil {
			if errors.Is(err, session.ErrRevoked) {
				e.metricInc(MetricSessionRevoked)
			} else {
				e.metricInc(MetricRevocationBackendError)
				e.logger.Warn("revocation check failed", "error", err)
			}
			e.emitAudit(ctx, auditEventSessionRejected, false, claims.UserID, claims.ID, err, nil)
			return nil
		}
	}

	e.metricInc(MetricSessionValidated)
	return payloadFromClaims(claims)
}

// Inspect decodes token with the engine's keys and reports why it fails.
// It does not consult the revocation store.
func (e *Engine) Inspect(token string) (*SessionPayload, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	claims, err := e.codec.Decode(token)
	if err != nil {
		return nil, err
	}
	return payloadFromClaims(claims), nil
}

// DeleteSession clears the auth-token cookie in jar. In strict mode the
// current token is also revoked so copies of it stop working. The cookie is
// cleared even when revocation fails.
func (e *Engine) DeleteSession(ctx context.Context, jar CookieJar) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if cookie.IsNil(jar) {
		return ErrNilJar
	}

	var (
		userID, tokenID string
		revokeErr       error
	)
	if token, ok := e.cookies.Read(jar); ok {
		if claims, err := e.codec.Decode(token); err == nil {
			userID, tokenID = claims.UserID, claims.ID
			if e.revocation != nil {
				ttl := claims.ExpiresTime().Add(e.config.JWT.Leeway).Sub(e.now())
				if err := e.revocation.Revoke(ctx, claims.ID, ttl); err != nil {
					revokeErr = fmt.Errorf("%w: %v", ErrSessionInvalidationFailed, err)
				}
			}
		}
	}

	e.cookies.Clear(jar)

	if revokeErr != nil {
		e.metricInc(MetricRevocationBackendError)
		e.logger.Warn("session revocation failed", "user_id", userID, "error", revokeErr)
		e.emitAudit(ctx, auditEventSessionDeleted, false, userID, tokenID, revokeErr, nil)
		return revokeErr
	}
	e.metricInc(MetricSessionDeleted)
	e.emitAudit(ctx, auditEventSessionDeleted, true, userID, tokenID, nil, nil)
	return nil
}

// RevokeUserSessions invalidates every session of userID issued up to and
// including the current millisecond. Requires [ModeStrict].
func (e *Engine) RevokeUserSessions(ctx context.Context, userID string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if e.revocation == nil {
		return ErrRevocationUnavailable
	}
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidIdentity
	}

	ttl := e.config.Session.TTL + e.config.JWT.Leeway
	if err := e.revocation.RevokeUser(ctx, userID, e.now(), ttl); err != nil {
		e.metricInc(MetricRevocationBackendError)
		e.emitAudit(ctx, auditEventUserSessionsRevoked, false, userID, "", err, nil)
		return fmt.Errorf("%w: %v", ErrSessionInvalidationFailed, err)
	}

	e.metricInc(MetricUserSessionsRevoked)
	e.emitAudit(ctx, auditEventUserSessionsRevoked, true, userID, "", nil, nil)
	return nil
}

// Ping checks the revocation backend. It is a no-op outside strict mode.
func (e *Engine) Ping(ctx context.Context) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if e.revocation == nil {
		return nil
	}
	return e.revocation.Ping(ctx)
}

func payloadFromClaims(c *jwt.Claims) *SessionPayload {
	return &SessionPayload{
		UserID:    c.UserID,
		Email:     c.Email,
		IssuedAt:  c.IssuedTime(),
		ExpiresAt: c.ExpiresTime(),
		TokenID:   c.ID,
	}
}
