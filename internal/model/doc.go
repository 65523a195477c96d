// Package model defines shared data types for the market-data pipeline.
//
// Conventions:
//   - Prices: decimal dollars with two decimal places ($0.00-$1.00 per contract)
//   - Timestamps: time.Time in UTC
//   - IDs: string for tickers, uuid.UUID for snapshot IDs
package model
