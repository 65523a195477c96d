// Package store implements the append-only market snapshot store.
//
// Two implementations share one contract: Postgres (pgx) for production and
// Memory for tests and local runs without a database. Rows are immutable and
// retained indefinitely; corrections are new rows, never updates.
//
// The only concurrency-sensitive invariant — at most one websocket row per
// (ticker, sequence) — is enforced inside the store (a partial unique index
// in Postgres, an index map in Memory), not by callers, because the poll and
// push writers append concurrently.
package store
