package goSession

import (
	"context"
	"errors"

	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/session"
)

const (
	auditEventSessionCreated        = "session_created"
	auditEventSessionCreateRejected = "session_create_rejected"
	auditEventSessionDeleted        = "session_deleted"
	auditEventSessionRejected       = "session_rejected"
	auditEventUserSessionsRevoked   = "user_sessions_revoked"
)

// AuditReason is the failure code carried in [AuditEvent.Reason].
type AuditReason string

const (
	auditReasonInvalidIdentity    AuditReason = "invalid_identity"
	auditReasonSigningFailed      AuditReason = "signing_failed"
	auditReasonMalformed          AuditReason = "malformed_token"
	auditReasonSignature          AuditReason = "bad_signature"
	auditReasonClaims             AuditReason = "bad_claims"
	auditReasonExpired            AuditReason = "expired"
	auditReasonRevoked            AuditReason = "revoked"
	auditReasonBackendUnavailable AuditReason = "backend_unavailable"
	auditReasonInternal           AuditReason = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	tokenID string,
	err error,
	metadata map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}
	event := AuditEvent{
		Timestamp: e.now().UTC(),
		Type:      eventType,
		UserID:    userID,
		TokenID:   tokenID,
		IP:        clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if reason := auditReason(err); reason != "" {
		event.Reason = string(reason)
	}
	e.audit.Emit(ctx, event)
}

func auditReason(err error) AuditReason {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrInvalidIdentity):
		return auditReasonInvalidIdentity
	case errors.Is(err, ErrSessionCreationFailed):
		return auditReasonSigningFailed
	case errors.Is(err, jwt.ErrTokenMalformed):
		return auditReasonMalformed
	case errors.Is(err, jwt.ErrTokenSignature):
		return auditReasonSignature
	case errors.Is(err, jwt.ErrTokenClaims):
		return auditReasonClaims
	case errors.Is(err, jwt.ErrTokenExpired):
		return auditReasonExpired
	case errors.Is(err, session.ErrRevoked):
		return auditReasonRevoked
	case errors.Is(err, session.ErrRedisUnavailable),
		errors.Is(err, ErrSessionInvalidationFailed):
		return auditReasonBackendUnavailable
	default:
		return auditReasonInternal
	}
}
