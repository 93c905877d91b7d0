package goSession

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/goSession/jwt"
)

// Config is the complete engine configuration. Build one with
// [DefaultConfig], adjust it, and hand it to [Builder.WithConfig]; it is
// copied and never re-read after [Builder.Build].
type Config struct {
	Environment    Environment
	JWT            JWTConfig
	Session        SessionConfig
	Revocation     RevocationConfig
	Audit          AuditConfig
	Metrics        MetricsConfig
	ValidationMode ValidationMode
}

// Environment selects deployment-dependent defaults such as the cookie
// Secure attribute.
type Environment string

const (
	// EnvDevelopment writes cookies without the Secure attribute.
	EnvDevelopment Environment = "development"
	// EnvTest behaves like development.
	EnvTest Environment = "test"
	// EnvProduction writes cookies with the Secure attribute.
	EnvProduction Environment = "production"
)

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig configures the token codec.
type JWTConfig struct {
	// Secret is the HS256 key. Required; at least 32 bytes.
	Secret []byte
	// KeyID tags tokens with a kid header; required when VerifyKeys is set.
	KeyID string
	// VerifyKeys are retired secrets still accepted during rotation.
	VerifyKeys map[string][]byte
	Issuer     string
	Audience   string
	Leeway     time.Duration
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls session lifetime.
type SessionConfig struct {
	// TTL is the fixed session lifetime, measured from issuance.
	TTL time.Duration
}

/*
====================================
REVOCATION CONFIG
====================================
*/

// RevocationConfig controls the Redis revocation store used in [ModeStrict].
type RevocationConfig struct {
	RedisPrefix string
}

/*
====================================
OBSERVABILITY CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters and the validate latency
// histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// ValidationMode selects how much work GetSession and VerifySession do.
type ValidationMode int

const (
	// ModeJWTOnly verifies signature and expiry only. No I/O.
	ModeJWTOnly ValidationMode = iota
	// ModeStrict additionally consults the Redis revocation store and fails
	// closed when it is unreachable.
	ModeStrict
)

func (m ValidationMode) String() string {
	switch m {
	case ModeJWTOnly:
		return "jwt_only"
	case ModeStrict:
		return "strict"
	default:
		return fmt.Sprintf("ValidationMode(%d)", int(m))
	}
}

// ParseValidationMode parses "jwt_only" or "strict".
func ParseValidationMode(s string) (ValidationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "jwt_only", "jwt-only", "jwtonly":
		return ModeJWTOnly, nil
	case "strict":
		return ModeStrict, nil
	default:
		return 0, fmt.Errorf("unknown validation mode %q", s)
	}
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultSessionTTL is the lifetime of a session: seven days.
const DefaultSessionTTL = 7 * 24 * time.Hour

// DefaultConfig returns a development configuration without a secret. The
// secret must be supplied before Build.
func DefaultConfig() Config {
	return Config{
		Environment: EnvDevelopment,
		Session: SessionConfig{
			TTL: DefaultSessionTTL,
		},
		Revocation: RevocationConfig{
			RedisPrefix: "gs",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
		ValidationMode: ModeJWTOnly,
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.Secret = cloneBytes(cfg.JWT.Secret)
	if cfg.JWT.VerifyKeys != nil {
		out.JWT.VerifyKeys = make(map[string][]byte, len(cfg.JWT.VerifyKeys))
		for kid, key := range cfg.JWT.VerifyKeys {
			out.JWT.VerifyKeys[kid] = cloneBytes(key)
		}
	}
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// SecureCookies reports whether the session cookie carries the Secure
// attribute.
func (c *Config) SecureCookies() bool {
	return c.Environment == EnvProduction
}

// Validate reports the first configuration error. A configuration that
// fails validation must stop the process at startup.
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvDevelopment, EnvTest, EnvProduction:
	default:
		return fmt.Errorf("unknown environment %q", c.Environment)
	}

	// JWT
	if len(c.JWT.Secret) == 0 {
		return ErrMissingSecret
	}
	if len(c.JWT.Secret) < jwt.MinSecretLength {
		return fmt.Errorf("JWT Secret must be at least %d bytes", jwt.MinSecretLength)
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT Leeway must be between 0 and 2m")
	}
	if c.JWT.Issuer != "" && strings.TrimSpace(c.JWT.Issuer) == "" {
		return errors.New("JWT Issuer must not be blank")
	}
	if c.JWT.Audience != "" && strings.TrimSpace(c.JWT.Audience) == "" {
		return errors.New("JWT Audience must not be blank")
	}
	if len(c.JWT.VerifyKeys) > 0 && strings.TrimSpace(c.JWT.KeyID) == "" {
		return errors.New("JWT VerifyKeys requires KeyID")
	}

	// Session
	if c.Session.TTL <= 0 {
		return errors.New("Session TTL must be > 0")
	}

	// Revocation
	if c.ValidationMode == ModeStrict && strings.TrimSpace(c.Revocation.RedisPrefix) == "" {
		return errors.New("Revocation RedisPrefix must be set in strict mode")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	switch c.ValidationMode {
	case ModeJWTOnly, ModeStrict:
	default:
		return ErrInvalidValidationMode
	}

	return nil
}
