// Package rate implements the sliding-window request counter behind the
// admission gate.
//
// # Window semantics
//
// Each client key owns a list of request timestamps. A check drops every
// timestamp at or before now-window, admits the request when fewer than
// limit remain, and records it. This is a sliding-window log, not a token
// bucket: a client may spend its whole budget right before a window edge and
// again right after it.
//
// # Backends
//
//   - [MemoryStore]: sharded in-process map with one mutex per client window.
//   - [RedisStore]: sorted set per client, updated atomically by a Lua script
//     so several gateway instances share one budget. Key prefix "grl:".
//
// # What this package must NOT do
//
//   - Decide HTTP status codes or headers (admission does that).
//   - Be imported outside the goGate module.
package rate
