package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinSecretLength is the shortest HS256 key accepted by [NewManager].
const MinSecretLength = 32

var (
	// ErrTokenMalformed is returned when the token is not a well-formed
	// three-segment JWT or its payload is missing identity fields.
	ErrTokenMalformed = errors.New("session token malformed")
	// ErrTokenSignature is returned when the signature, algorithm, or key id
	// does not verify.
	ErrTokenSignature = errors.New("session token signature invalid")
	// ErrTokenExpired is returned when the current time is at or past expiresAt.
	ErrTokenExpired = errors.New("session token expired")
	// ErrTokenClaims is returned when registered claims (iss, aud, iat) fail.
	ErrTokenClaims = errors.New("session token claims invalid")
)

// Config configures a [Manager].
type Config struct {
	// TTL is the fixed lifetime of an issued token.
	TTL time.Duration
	// Secret is the HS256 signing key.
	Secret []byte
	// KeyID tags issued tokens with a kid header when set.
	KeyID string
	// VerifyKeys holds retired keys that are still accepted for verification.
	VerifyKeys map[string][]byte
	Issuer     string
	Audience   string
	Leeway     time.Duration
	// Now overrides the clock. Nil means time.Now.
	Now func() time.Time
}

// Claims is the signed session payload.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	// Expires mirrors exp and is the authoritative expiry of the session.
	Expires int64 `json:"expiresAt"`
	// IssuedMillis is iat in milliseconds; revocation watermarks compare
	// against it.
	IssuedMillis int64 `json:"iatMs,omitempty"`
	jwt.RegisteredClaims
}

// ExpiresTime returns the session expiry as a time.Time.
func (c *Claims) ExpiresTime() time.Time {
	return time.Unix(c.Expires, 0)
}

// IssuedTime returns the issue time with millisecond precision when the
// token carries it, or the zero time when iat is absent.
func (c *Claims) IssuedTime() time.Time {
	if c.IssuedMillis != 0 {
		return time.UnixMilli(c.IssuedMillis)
	}
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// Manager encodes and decodes signed session tokens.
type Manager struct {
	config  Config
	keyring map[string][]byte
}

// NewManager validates cfg and returns a ready [Manager].
func NewManager(cfg Config) (*Manager, error) {
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if len(cfg.Secret) == 0 {
		return nil, errors.New("hs256 requires secret")
	}
	if len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("secret must be at least %d bytes", MinSecretLength)
	}
	cfg.KeyID = strings.TrimSpace(cfg.KeyID)
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	keyring := make(map[string][]byte, len(cfg.VerifyKeys)+1)
	for kid, key := range cfg.VerifyKeys {
		if strings.TrimSpace(kid) == "" {
			return nil, errors.New("verify key map contains empty kid")
		}
		if len(key) < MinSecretLength {
			return nil, fmt.Errorf("verify key for kid %q shorter than %d bytes", kid, MinSecretLength)
		}
		keyring[kid] = key
	}
	if len(keyring) > 0 && cfg.KeyID == "" {
		return nil, errors.New("VerifyKeys requires KeyID")
	}
	if cfg.KeyID != "" {
		if _, ok := keyring[cfg.KeyID]; ok {
			return nil, errors.New("KeyID must not appear in VerifyKeys")
		}
		keyring[cfg.KeyID] = cfg.Secret
	}

	return &Manager{config: cfg, keyring: keyring}, nil
}

// TTL returns the configured token lifetime.
func (m *Manager) TTL() time.Duration {
	return m.config.TTL
}

// Issue builds claims for userID and email at the current time and encodes them.
func (m *Manager) Issue(userID, email string) (string, *Claims, error) {
	now := m.config.Now()
	issued := jwt.NewNumericDate(now)
	expires := jwt.NewNumericDate(now.Add(m.config.TTL))

	claims := &Claims{
		UserID:       userID,
		Email:        email,
		Expires:      expires.Unix(),
		IssuedMillis: now.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  issued,
			ExpiresAt: expires,
			Issuer:    m.config.Issuer,
		},
	}
	if m.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{m.config.Audience}
	}

	token, err := m.Encode(claims)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

// Encode signs claims. The output is deterministic for a given claims value
// and key.
func (m *Manager) Encode(claims *Claims) (string, error) {
	if claims == nil {
		return "", errors.New("nil claims")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	if m.config.KeyID != "" {
		token.Header["kid"] = m.config.KeyID
	}
	return token.SignedString(m.config.Secret)
}

// Decode verifies tokenStr and returns its claims. Every failure maps to one
// of the package's sentinel errors; Decode never panics on hostile input.
func (m *Manager) Decode(tokenStr string) (*Claims, error) {
	if strings.Count(tokenStr, ".") != 2 {
		return nil, ErrTokenMalformed
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.config.Now),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}
	if m.config.Audience != "" {
		options = append(options, jwt.WithAudience(m.config.Audience))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, m.verifyKey)
	if err != nil {
		return nil, classify(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}
	if claims.UserID == "" || claims.Email == "" || claims.Expires == 0 {
		return nil, ErrTokenMalformed
	}
	if claims.IssuedMillis != 0 && (claims.IssuedAt == nil || claims.IssuedMillis/1000 != claims.IssuedAt.Unix()) {
		return nil, ErrTokenMalformed
	}
	if !m.config.Now().Before(claims.ExpiresTime().Add(m.config.Leeway)) {
		return nil, ErrTokenExpired
	}

	return claims, nil
}

func (m *Manager) verifyKey(t *jwt.Token) (interface{}, error) {
	if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
	}
	if len(m.keyring) == 0 {
		return m.config.Secret, nil
	}

	kid, _ := t.Header["kid"].(string)
	if kid == "" {
		return nil, errors.New("missing kid")
	}
	key, ok := m.keyring[kid]
	if !ok {
		return nil, errors.New("unknown kid")
	}
	return key, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrSignatureInvalid):
		return ErrTokenSignature
	case errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenInvalidAudience),
		errors.Is(err, jwt.ErrTokenUsedBeforeIssued),
		errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrTokenClaims
	default:
		return ErrTokenMalformed
	}
}
