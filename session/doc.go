// Package session tracks active sessions and decides whether a previously
// established session is still usable.
//
// # Lifecycle
//
// A session is registered after the identity provider authenticates a
// caller, refreshed on every validated request, and removed on logout, on
// exceeding its inactivity timeout or absolute age, when the per-account
// concurrency cap evicts it, or when every session of the account is
// invalidated after a credential change. Each removal is reported with its
// [Cause] to the store's [EvictionFunc].
//
// # Locking
//
// Sessions are grouped into per-account buckets. Every mutation of an
// account's sessions (register, touch, cap enforcement, sweep eviction)
// happens under that bucket's mutex, so unrelated accounts never contend.
// Bucket and session-id lookups go through sharded maps. Lock order is
// shard, then bucket, then index shard.
//
// # Architecture boundaries
//
// This package owns the in-memory [Store] and the [Session] model. It does
// NOT authenticate callers, evaluate grants, or perform I/O; persisting
// activity is left to the caller via [Session.NeedsPersist].
//
// # What this package must NOT do
//
//   - Import goGate, permission, or admission.
//   - Block on network or disk.
//   - Keep package-level mutable state.
package session
