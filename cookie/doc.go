// Package cookie binds a session token to the auth-token cookie.
//
// # Jars
//
// A [Jar] is the capability the session engine writes through: Get, Set and
// Delete on named cookies. Three implementations ship with the package:
//
//   - [HTTPJar] wraps the ResponseWriter and Request of the request being
//     served. Writes become Set-Cookie headers and are visible to later
//     reads within the same request.
//   - [RequestJar] wraps an inbound request and is read-only, since an
//     inbound request cannot carry a Set-Cookie of its own.
//   - [MemoryJar] keeps cookies in process; it records the attributes of
//     every write.
//
// # What this package must NOT do
//
//   - Sign, parse or otherwise interpret the token value.
//   - Hold cookies across requests (every jar is request-scoped).
package cookie
