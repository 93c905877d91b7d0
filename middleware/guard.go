package middleware

import (
	"context"
	"net"
	"net/http"

	goSession "github.com/MrEthical07/goSession"
)

type sessionContextKey struct{}

// SessionFromContext returns the session resolved by a guard, if any.
func SessionFromContext(ctx context.Context) (*goSession.SessionPayload, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*goSession.SessionPayload)
	return s, ok && s != nil
}

// WithSession stores s in ctx as a guard would.
func WithSession(ctx context.Context, s *goSession.SessionPayload) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// Options controls a [Guard].
type Options struct {
	// Required rejects requests without a session.
	Required bool
	// OnUnauthorized writes the rejection. Nil means a plain 401.
	OnUnauthorized http.Handler
}

// Guard resolves the request's session with engine and stores it in the
// request context.
func Guard(engine *goSession.Engine, opts Options) func(http.Handler) http.Handler {
	reject := opts.OnUnauthorized
	if reject == nil {
		reject = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		})
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := goSession.WithClientIP(r.Context(), clientIP(r))
			ctx = goSession.WithUserAgent(ctx, r.UserAgent())

			s := engine.VerifySession(ctx, r)
			if s == nil {
				if opts.Required {
					reject.ServeHTTP(w, r)
					return
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(ctx, s)))
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
