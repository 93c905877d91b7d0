package middleware

import (
	"net/http"

	goSession "github.com/MrEthical07/goSession"
)

// RequireSession answers 401 unless the request carries a valid session.
func RequireSession(engine *goSession.Engine) func(http.Handler) http.Handler {
	return Guard(engine, Options{Required: true})
}

// OptionalSession resolves the session when there is one and never rejects.
func OptionalSession(engine *goSession.Engine) func(http.Handler) http.Handler {
	return Guard(engine, Options{})
}
