// Package api provides the Kalshi REST API client used by the ingestion
// pipeline.
//
// REST endpoints:
//   - Production: https://api.elections.kalshi.com/trade-api/v2
//   - Demo: https://demo-api.kalshi.co/trade-api/v2
//
// The client retries transient failures (5xx, 429) with bounded exponential
// backoff; other errors surface immediately.
package api
