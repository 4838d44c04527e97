// Package middleware exposes net/http adapters over goGate.Engine: an
// admission layer for every request and guards for routes that need a
// session or a capability.
//
// # Layers
//
//   - [Admission] runs the rate limit and origin check, writes the
//     X-RateLimit-* and hardening headers, and answers 429 or 403.
//   - [RequireSession] accepts the session cookie or a bearer token.
//   - [RequireBearer] accepts bearer tokens only, for API clients.
//   - [RequireCapability] checks the grant attached by a session guard.
//
// A guard stores an [Auth] in the request context; handlers read it with
// [AuthFromContext].
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. Every decision
// is made by the Engine; the middleware only maps outcomes to status codes.
//
// # What this package must NOT do
//
//   - Parse tokens or read Redis directly.
//   - Reveal why a session was rejected. Every failure is a plain 401.
//   - Cache grants across requests.
package middleware
