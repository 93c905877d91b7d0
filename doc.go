// Package goSession provides cookie-bound sessions backed by signed HS256
// tokens.
//
// An [Engine] issues a token for a (user id, email) pair, stores it in the
// auth-token cookie, and reads it back from either a request-scoped
// [CookieJar] or an inbound *http.Request. Every lookup is fail-closed:
// absent cookies, malformed or forged tokens, expired tokens and (in
// [ModeStrict]) revoked tokens all produce a nil *SessionPayload.
//
// Engine methods are safe to call from multiple goroutines after
// [Builder.Build].
//
// # Architecture boundaries
//
// goSession is the public surface. Token encoding lives in the jwt package,
// cookie attributes and jars in cookie, the Redis revocation list in
// session, and audit delivery in internal/audit.
//
// # What this package must NOT do
//
//   - Return a partially trusted payload. A token either passes every check
//     or yields nil.
//   - Log or audit raw token strings.
//   - Perform I/O in [ModeJWTOnly] beyond the cookie jar it is handed.
//
// # Performance contract
//
// GetSession and VerifySession do one HMAC verification and no Redis round
// trip in ModeJWTOnly. ModeStrict adds one pipelined round trip.
package goSession
