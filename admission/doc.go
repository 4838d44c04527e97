// Package admission decides whether an inbound request may be processed at
// all. It runs before session lookup and authorization.
//
// A [Gate] applies two checks in order:
//
//  1. A sliding-window rate limit per client identifier (default 100
//     requests per 60 seconds).
//  2. A cross-origin forgery check for state-changing methods: when both
//     Origin and Host are present the origin must equal scheme://host.
//     Requests carrying a Bearer authorization header are exempt, and a
//     missing Origin header passes.
//
// Either rejection is terminal; the gate never retries. Callers translate
// [Decision] into transport semantics ([Outcome.StatusCode], [Headers]).
//
// # Development mode
//
// [Config.DevelopmentMode] additionally accepts http:// loopback origins
// (localhost, 127.0.0.1, [::1], any port) when the Host header is a loopback
// host too. It is off by default and must stay off in production builds.
//
// # Backends
//
// Windows live in process memory unless [WithRedis] is given, in which case
// every gateway instance shares one budget per client. Redis failures fail
// open for the affected request: the decision is Allowed with
// [Decision.Degraded] set, and a warning is logged.
//
// # What this package must NOT do
//
//   - Look up sessions or accounts.
//   - Write HTTP responses (middleware does that).
package admission
