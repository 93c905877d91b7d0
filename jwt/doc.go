// Package jwt encodes and decodes the signed session token carried in the
// auth-token cookie.
//
// Tokens are HS256 JWTs with three base64url segments. The payload carries
// userId, email and expiresAt next to the registered iat, exp and jti claims.
// Decode is fail-closed: a bad segment count, a bad signature, an unknown key
// id, a missing identity field or a current time at or past expiresAt all
// return an error and never a partially trusted payload.
//
// # Key rotation
//
// When KeyID is set the kid header is written on every token and
// verification looks the key up by kid, accepting the current secret and any
// retired key listed in VerifyKeys.
package jwt
