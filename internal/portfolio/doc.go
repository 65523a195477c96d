// Package portfolio tracks open positions and marks them to market
// against stored snapshots.
package portfolio
