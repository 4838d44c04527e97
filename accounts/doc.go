// Package accounts holds the read side of the account store the gate
// consults when it authorizes a request.
//
// The gate never owns accounts. It asks a store for one account together
// with its tickets and computes the grant fresh from that snapshot.
// [MemoryStore] serves tests, examples and single-process deployments;
// package pgstore reads the same view from PostgreSQL.
//
// # Errors
//
// Stores report a missing account with [ErrNotFound] and a backend failure
// wrapped in [ErrUnavailable]. Callers treat both as "unauthenticated".
package accounts
