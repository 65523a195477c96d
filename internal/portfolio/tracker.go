package portfolio

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/seanbearden/kalshi-analysis/internal/model"
)

// LatestPriceSource serves the newest stored snapshot per ticker.
type LatestPriceSource interface {
	LatestByTicker(ctx context.Context, ticker string) (*model.MarketSnapshot, error)
}

// Tracker holds in-memory position state keyed by ticker.
type Tracker struct {
	logger *slog.Logger

	mu        sync.RWMutex
	positions map[string]PositionState
}

// NewTracker creates an empty Tracker.
func NewTracker(logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		logger:    logger,
		positions: make(map[string]PositionState),
	}
}

// UpdatePosition creates or replaces the position for a ticker.
// A zero entry time defaults to now.
func (t *Tracker) UpdatePosition(ticker string, side Side, quantity, avgEntryPrice, currentPrice int64, entryTime time.Time) (PositionState, error) {
	if !side.Valid() {
		return PositionState{}, fmt.Errorf("invalid side %q: must be YES or NO", side)
	}
	if entryTime.IsZero() {
		entryTime = time.Now().UTC()
	}

	pos := PositionState{
		Ticker:        ticker,
		Side:          side,
		Quantity:      quantity,
		AvgEntryPrice: avgEntryPrice,
		CurrentPrice:  currentPrice,
		EntryTime:     entryTime,
	}

	t.mu.Lock()
	t.positions[ticker] = pos
	t.mu.Unlock()

	t.logger.Debug("position updated",
		"ticker", ticker,
		"side", side,
		"quantity", quantity,
		"avg_entry_price", avgEntryPrice,
	)

	return pos, nil
}

// UpdatePrice sets the current price on an existing position.
func (t *Tracker) UpdatePrice(ticker string, currentPrice int64) (PositionState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	pos, ok := t.positions[ticker]
	if !ok {
		return PositionState{}, fmt.Errorf("no position found for ticker %q", ticker)
	}
	pos.CurrentPrice = currentPrice
	t.positions[ticker] = pos
	return pos, nil
}

// RemovePosition drops a ticker from tracking. Removing an unknown
// ticker is a no-op.
func (t *Tracker) RemovePosition(ticker string) {
	t.mu.Lock()
	delete(t.positions, ticker)
	t.mu.Unlock()
}

// Position returns the position for a ticker, if tracked.
func (t *Tracker) Position(ticker string) (PositionState, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	pos, ok := t.positions[ticker]
	return pos, ok
}

// AllPositions returns every tracked position, ordered by ticker.
func (t *Tracker) AllPositions() []PositionState {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]PositionState, 0, len(t.positions))
	for _, pos := range t.positions {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

// TotalUnrealizedPnL sums unrealized P&L across all positions, in cents.
func (t *Tracker) TotalUnrealizedPnL() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var total int64
	for _, pos := range t.positions {
		total += pos.UnrealizedPnL()
	}
	return total
}

// MarkToMarket refreshes every position's current price from the latest
// stored snapshot. Tickers without snapshots keep their last price.
// Returns the number of positions repriced.
func (t *Tracker) MarkToMarket(ctx context.Context, source LatestPriceSource) (int, error) {
	updated := 0
	for _, pos := range t.AllPositions() {
		snap, err := source.LatestByTicker(ctx, pos.Ticker)
		if err != nil {
			return updated, fmt.Errorf("latest snapshot for %s: %w", pos.Ticker, err)
		}
		if snap == nil {
			t.logger.Debug("no snapshot for position, keeping last price", "ticker", pos.Ticker)
			continue
		}

		// Stored prices are in dollars; positions are marked in cents.
		cents := snap.YesPrice.Shift(2).IntPart()
		if _, err := t.UpdatePrice(pos.Ticker, cents); err != nil {
			// Position removed concurrently; nothing to reprice.
			continue
		}
		updated++
	}
	return updated, nil
}
