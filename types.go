package goSession

import (
	"io"
	"log/slog"
	"time"

	"github.com/MrEthical07/goSession/cookie"
	internalaudit "github.com/MrEthical07/goSession/internal/audit"
)

// SessionPayload is the authenticated identity handed to callers. A nil
// *SessionPayload means "no session" for every reason: absent cookie,
// malformed token, bad signature, expiry or revocation.
type SessionPayload struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	// TokenID is the jti of the token the payload was read from.
	TokenID string `json:"-"`
}

// CookieReader is the read side of a cookie jar, as handed to GetSession.
type CookieReader = cookie.Reader

// CookieJar is a request-scoped cookie capability. Use [cookie.NewHTTPJar]
// inside an http.Handler.
type CookieJar = cookie.Jar

// CookieAttributes are the attributes written with the session cookie.
type CookieAttributes = cookie.Attributes

// SessionCookieName is the name of the session cookie.
const SessionCookieName = cookie.Name

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// SlogSink is an [AuditSink] that logs each event through a *slog.Logger.
type SlogSink = internalaudit.SlogSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// NewSlogSink creates a [SlogSink] that logs through logger.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	return internalaudit.NewSlogSink(logger)
}
