package portfolio

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is which outcome a position holds.
type Side string

const (
	SideYes Side = "YES"
	SideNo  Side = "NO"
)

// Valid reports whether s is a known side.
func (s Side) Valid() bool {
	return s == SideYes || s == SideNo
}

// PositionState is one open position. Prices are in cents; a binary
// contract settles at 100 cents, so a NO position's value and cost are
// taken against the complement of the YES price.
type PositionState struct {
	Ticker        string
	Side          Side
	Quantity      int64
	AvgEntryPrice int64 // cents
	CurrentPrice  int64 // cents
	EntryTime     time.Time
}

// UnrealizedPnL returns unrealized profit or loss in cents.
//
// YES positions gain when price rises, NO positions when it falls.
func (p PositionState) UnrealizedPnL() int64 {
	if p.Side == SideYes {
		return (p.CurrentPrice - p.AvgEntryPrice) * p.Quantity
	}
	return (p.AvgEntryPrice - p.CurrentPrice) * p.Quantity
}

// UnrealizedPnLPct returns unrealized P&L as a percentage of entry
// cost, quantized to four decimal places. Zero entry price yields zero.
func (p PositionState) UnrealizedPnLPct() decimal.Decimal {
	if p.AvgEntryPrice == 0 || p.Quantity == 0 {
		return decimal.Zero.Round(4)
	}

	pnl := decimal.NewFromInt(p.UnrealizedPnL())
	basis := decimal.NewFromInt(p.AvgEntryPrice * p.Quantity)
	return pnl.Div(basis).Mul(decimal.NewFromInt(100)).Round(4)
}

// PositionValue returns the current mark value in cents.
func (p PositionState) PositionValue() int64 {
	if p.Side == SideYes {
		return p.CurrentPrice * p.Quantity
	}
	return (100 - p.CurrentPrice) * p.Quantity
}

// CostBasis returns the total amount paid in cents.
func (p PositionState) CostBasis() int64 {
	if p.Side == SideYes {
		return p.AvgEntryPrice * p.Quantity
	}
	return (100 - p.AvgEntryPrice) * p.Quantity
}
