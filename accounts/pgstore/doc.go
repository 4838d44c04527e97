// Package pgstore reads accounts and their tickets from PostgreSQL.
//
// The schema lives in migrations/ and is applied with [Migrate]. Queries are
// plain SQL through pgx; [Store] accepts any [DBTX], so it works on a pool
// or inside a caller's transaction.
package pgstore
