package cookie

import (
	"net/http"
	"time"
)

const (
	// Name is the cookie that carries the session token.
	Name = "auth-token"
	// Path scopes the cookie to the whole site.
	Path = "/"
)

// Attributes are the security attributes written with a cookie.
type Attributes struct {
	Expires  time.Time
	HTTPOnly bool
	Secure   bool
	SameSite http.SameSite
	Path     string
}

// Reader looks up a cookie value by name. A missing or empty cookie reports
// ok=false.
type Reader interface {
	Get(name string) (value string, ok bool)
}

// Jar is a request-scoped cookie capability.
type Jar interface {
	Reader
	Set(name, value string, attrs Attributes)
	Delete(name string, attrs Attributes)
}

// IsNil reports whether r is nil, including a typed nil jar from this
// package.
func IsNil(r Reader) bool {
	switch j := r.(type) {
	case nil:
		return true
	case *HTTPJar:
		return j == nil
	case *MemoryJar:
		return j == nil
	}
	return false
}

// Store writes, reads and clears the session cookie on a [Jar].
type Store struct {
	secure bool
}

// NewStore returns a Store. secure controls the Secure attribute and should
// be true in production.
func NewStore(secure bool) *Store {
	return &Store{secure: secure}
}

// Secure reports whether cookies are written with the Secure attribute.
func (s *Store) Secure() bool {
	return s != nil && s.secure
}

// Attributes returns the attribute set for a session cookie expiring at
// expiresAt.
func (s *Store) Attributes(expiresAt time.Time) Attributes {
	return Attributes{
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   s.Secure(),
		SameSite: http.SameSiteLaxMode,
		Path:     Path,
	}
}

// Save writes token under [Name], replacing any previous value.
func (s *Store) Save(jar Jar, token string, expiresAt time.Time) {
	if IsNil(jar) {
		return
	}
	jar.Set(Name, token, s.Attributes(expiresAt))
}

// Read returns the session token from r.
func (s *Store) Read(r Reader) (string, bool) {
	if IsNil(r) {
		return "", false
	}
	value, ok := r.Get(Name)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// Clear deletes the session cookie with the same attributes it was written
// with. Clearing an absent cookie is a no-op for the caller.
func (s *Store) Clear(jar Jar) {
	if IsNil(jar) {
		return
	}
	jar.Delete(Name, s.Attributes(time.Unix(0, 0)))
}
