// Package database manages the PostgreSQL connection pool for the snapshot
// store.
package database
