package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seanbearden/kalshi-analysis/internal/model"
)

// ErrDuplicateSequence is returned by Append when a websocket row for the
// same (ticker, sequence) already exists. Upstream replay makes this an
// expected condition; callers treat it as an idempotent no-op.
var ErrDuplicateSequence = errors.New("duplicate sequence for ticker")

// ValidationError reports a malformed snapshot rejected by Append.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid snapshot: %s %s", e.Field, e.Reason)
}

// Store is the append-only snapshot store shared by the poller, the push
// listener, and the gap filler.
type Store interface {
	// Append inserts a new immutable row, assigning ID and CreatedAt.
	// Returns ErrDuplicateSequence for a websocket (ticker, sequence)
	// conflict and *ValidationError for malformed fields.
	Append(ctx context.Context, snap model.MarketSnapshot) (model.MarketSnapshot, error)

	// SequencesForTicker returns all websocket sequence numbers observed
	// for the ticker, ascending, without duplicates.
	SequencesForTicker(ctx context.Context, ticker string) ([]int64, error)

	// ExistingInRange returns the sequence numbers in [min, max] already
	// covered by any sequence-bearing row (websocket or backfill).
	ExistingInRange(ctx context.Context, ticker string, min, max int64) (map[int64]struct{}, error)

	// TickersWithPushData returns the distinct tickers that have at least
	// one websocket-sourced row.
	TickersWithPushData(ctx context.Context) ([]string, error)

	// LatestByTicker returns the snapshot with the latest Timestamp for
	// the ticker regardless of source, or nil if none exist.
	LatestByTicker(ctx context.Context, ticker string) (*model.MarketSnapshot, error)

	// ByTimeRange returns the ticker's snapshots with from <= Timestamp <= to,
	// ascending by Timestamp.
	ByTimeRange(ctx context.Context, ticker string, from, to time.Time) ([]model.MarketSnapshot, error)

	// BySource returns up to limit snapshots from one source, newest
	// first. A non-positive limit returns everything.
	BySource(ctx context.Context, source model.DataSource, limit int) ([]model.MarketSnapshot, error)
}

// maxPrice bounds quotes to a currency-like range; a binary contract pays
// out $1.00.
var maxPrice = decimal.NewFromInt(100)

// validateSnapshot enforces the append contract shared by both
// implementations.
func validateSnapshot(snap *model.MarketSnapshot) error {
	if snap.Ticker == "" {
		return &ValidationError{Field: "ticker", Reason: "is required"}
	}
	if !snap.Source.Valid() {
		return &ValidationError{Field: "source", Reason: fmt.Sprintf("%q is not a known source", snap.Source)}
	}
	if snap.YesPrice.IsNegative() || snap.YesPrice.GreaterThan(maxPrice) {
		return &ValidationError{Field: "yes_price", Reason: "out of range"}
	}
	if snap.NoPrice.IsNegative() || snap.NoPrice.GreaterThan(maxPrice) {
		return &ValidationError{Field: "no_price", Reason: "out of range"}
	}
	if snap.Volume < 0 {
		return &ValidationError{Field: "volume", Reason: "must be non-negative"}
	}
	if snap.Sequence != nil {
		if *snap.Sequence < 0 {
			return &ValidationError{Field: "sequence", Reason: "must be non-negative"}
		}
		if snap.Source == model.SourcePoll {
			return &ValidationError{Field: "sequence", Reason: "not allowed on poll rows"}
		}
	}
	return nil
}
