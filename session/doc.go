// Package session provides the Redis-backed revocation store used by strict
// validation mode.
//
// Session tokens are self-contained, so a deleted cookie that was copied
// elsewhere keeps verifying until it expires. The store closes that gap with
// two kinds of keys:
//
//   - a per-token denylist entry (keyed by jti) that lives until the token's
//     own expiry, and
//   - a per-user not-before watermark; tokens issued at or before it are
//     revoked.
//
// # Architecture boundaries
//
// This package owns the Redis key layout and scripts. It does NOT parse
// tokens or decide whether a request is authenticated; the engine calls
// [Store.Check] after the token has already been verified.
//
// # What this package must NOT do
//
//   - Import goSession, jwt, or cookie (no upward imports).
//   - Store token values or email addresses in Redis.
package session
