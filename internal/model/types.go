package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DataSource tags the provenance of a snapshot. It never changes after creation.
type DataSource string

const (
	// SourcePoll marks snapshots captured by the REST polling loop.
	SourcePoll DataSource = "poll"

	// SourceWebsocket marks snapshots received on the push stream. Only these
	// rows carry a sequence number.
	SourceWebsocket DataSource = "websocket"

	// SourceBackfill marks snapshots recovered for a missing sequence via an
	// alternate channel.
	SourceBackfill DataSource = "backfill"
)

// Valid reports whether s is a known data source.
func (s DataSource) Valid() bool {
	switch s {
	case SourcePoll, SourceWebsocket, SourceBackfill:
		return true
	}
	return false
}

// MarketSnapshot is one immutable observation of a market's quote.
//
// Timestamp semantics depend on Source: server-reported for websocket rows,
// client capture time for poll rows. ID and CreatedAt are assigned by the
// store on append; CreatedAt is the storage-write time, distinct from
// Timestamp.
type MarketSnapshot struct {
	ID        uuid.UUID       // Unique identifier, assigned on append
	Ticker    string          // Market ticker (e.g., "INXD-24FEB16-T4125")
	Timestamp time.Time       // Observation time (UTC)
	Source    DataSource      // poll, websocket, or backfill
	Sequence  *int64          // Per-ticker feed sequence, sequence-bearing rows only
	YesPrice  decimal.Decimal // YES quote in dollars (two decimal places)
	NoPrice   decimal.Decimal // NO quote in dollars (two decimal places)
	Volume    int64           // Total contracts traded
	RawData   json.RawMessage // Full upstream payload, retained for audit/replay
	CreatedAt time.Time       // Storage-write time, assigned on append
}

// Seq returns a pointer to n, for building sequence-bearing snapshots.
func Seq(n int64) *int64 {
	return &n
}

// CentsToPrice converts an integer cent quote to a dollar price.
// Kalshi quotes contracts in whole cents (52 = $0.52).
func CentsToPrice(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
