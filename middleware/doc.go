// Package middleware adapts goSession.Engine to net/http handlers.
//
// # Guards
//
//   - [RequireSession] rejects requests without a valid session with 401.
//   - [OptionalSession] resolves the session when present and always calls
//     the next handler.
//
// Both read the auth-token cookie through Engine.VerifySession and put the
// resulting payload in the request context, where [SessionFromContext]
// finds it.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. Token parsing,
// expiry and revocation all stay in the engine.
//
// # What this package must NOT do
//
//   - Parse or create tokens directly.
//   - Write session cookies. Handlers that log users in or out use a
//     cookie.HTTPJar with the engine.
package middleware
