// Package permission computes access grants from an account's role and the
// tickets it holds.
//
// # Grants
//
// A [Grant] is a fixed-size capability bit set with eight named members
// (concert, premium, vip, backstage, stadium arena, coming soon, ticket
// purchase, full access). Grants are values: copying one never shares state,
// and nothing in this package mutates a grant after [Compute] returns it.
//
// # Roles and tiers
//
// Role behaviour lives in one ordered table (see roles.go): each role has a
// baseline grant and a flag saying whether its tickets are evaluated. Ticket
// tiers live in an explicit order table with per-capability floors (see
// tier.go), so adding a role or a tier is a data change.
//
// # Architecture boundaries
//
// This package is pure computation with no I/O and no caching. Callers fetch
// the account and its tickets first, then call [Compute] or
// [ComputeAccount]; the result must not be cached across requests because
// ticket state changes outside this package.
//
// # What this package must NOT do
//
//   - Access Redis, databases, or the network.
//   - Import goGate, session, or admission.
//   - Return errors: every input, including an empty ticket list, maps to a grant.
package permission
