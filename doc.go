// Package goGate is the access and session trust layer of the concert
// platform. For every request it decides whether the request may be
// processed at all (rate limit, cross-origin forgery check) and whether the
// caller's session is still valid. It then computes what the caller may do
// from their role and the tickets they hold.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after [Builder.Build].
//
// # Architecture boundaries
//
// goGate is the public surface. It exposes [Engine], [Builder], [Config] and
// value types ([Decision], [Session], [Grant], [MetricsSnapshot]). The
// components it composes live in their own packages: admission (rate limit
// and origin policy), session (lifecycle store), permission (access rights
// engine and tier resolver) and jwt (bearer token verification). Flow
// orchestration, audit dispatch and metrics live under internal/.
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or window encodings in its
//     public API.
//   - Own accounts or tickets; they are read through [AccountStore].
//   - Cache grants; every [Engine.Authorize] computes afresh.
//   - Import any sub-package that re-imports goGate (no import cycles).
//
// # Performance contract
//
// Admit and ValidateSession are the hot path. With the in-memory rate store
// they take one per-client lock and one per-account lock and perform no
// I/O. With Redis, Admit makes exactly one round trip.
package goGate
