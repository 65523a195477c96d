// Package ingest runs the full ingestion pipeline: the REST poller and
// the WebSocket listener in parallel, plus a scheduled gap-fill sweep.
package ingest
