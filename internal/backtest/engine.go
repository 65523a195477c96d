package backtest

import (
	"time"

	"github.com/seanbearden/kalshi-analysis/internal/model"
)

// Point is one observation in a price series.
type Point struct {
	Ticker    string
	Timestamp time.Time
	YesProb   float64 // implied probability, 0..1
}

// FromSnapshots converts stored snapshots to backtest points, oldest
// first (the store returns time ranges in ascending order already).
func FromSnapshots(snaps []model.MarketSnapshot) []Point {
	points := make([]Point, 0, len(snaps))
	for _, s := range snaps {
		prob, _ := s.YesPrice.Float64()
		points = append(points, Point{
			Ticker:    s.Ticker,
			Timestamp: s.Timestamp,
			YesProb:   prob,
		})
	}
	return points
}

// PositionDir is the direction of an open simulated position.
type PositionDir string

const (
	Long  PositionDir = "LONG"
	Short PositionDir = "SHORT"
)

// Trade is one completed round trip.
type Trade struct {
	Ticker     string
	Position   PositionDir
	EntryTime  time.Time
	ExitTime   time.Time
	EntryPrice float64
	ExitPrice  float64
	Size       float64
	PnL        float64
	PnLPct     float64
	ExitReason string
}

// Result summarizes one backtest run.
type Result struct {
	Strategy       string
	Trades         []Trade
	Equity         []float64
	InitialCapital float64
	FinalCapital   float64
	TotalReturnPct float64
	TotalTrades    int
	WinningTrades  int
	LosingTrades   int
	WinRate        float64
}

// Config holds engine parameters.
type Config struct {
	InitialCapital   float64 // starting capital
	PositionSize     float64 // fraction of capital per trade, 0..1
	ExitNeutral      bool    // close positions near the 0.50 line
	NeutralThreshold float64 // how close to 0.50 counts as neutral
}

// DefaultConfig returns the standard engine parameters.
func DefaultConfig() Config {
	return Config{
		InitialCapital:   10000,
		PositionSize:     0.1,
		ExitNeutral:      true,
		NeutralThreshold: 0.02,
	}
}

// Engine simulates a strategy over a price series. One position at a
// time: enter on a signal, exit at neutral or on the opposite signal.
type Engine struct {
	cfg      Config
	strategy Strategy
}

// NewEngine creates an Engine.
func NewEngine(cfg Config, strategy Strategy) *Engine {
	return &Engine{cfg: cfg, strategy: strategy}
}

// Run executes the backtest over the given points.
func (e *Engine) Run(points []Point) Result {
	result := Result{
		Strategy:       e.strategy.Name(),
		InitialCapital: e.cfg.InitialCapital,
		FinalCapital:   e.cfg.InitialCapital,
		Equity:         []float64{e.cfg.InitialCapital},
	}
	if len(points) == 0 {
		return result
	}

	signals := e.strategy.GenerateSignals(points)

	capital := e.cfg.InitialCapital
	var position Signal
	var entryPrice float64
	var entryTime time.Time

	for i, p := range points {
		if position == SignalHold {
			if signals[i] != SignalHold {
				position = signals[i]
				entryPrice = p.YesProb
				entryTime = p.Timestamp
			}
		} else {
			exitReason := ""
			if e.cfg.ExitNeutral && abs(p.YesProb-0.5) < e.cfg.NeutralThreshold {
				exitReason = "neutral"
			} else if signals[i] == -position {
				exitReason = "opposite_signal"
			}

			if exitReason != "" {
				var pnlPct float64
				if entryPrice > 0 {
					if position == SignalBuy {
						pnlPct = (p.YesProb - entryPrice) / entryPrice
					} else {
						pnlPct = (entryPrice - p.YesProb) / entryPrice
					}
				}

				size := capital * e.cfg.PositionSize
				pnl := size * pnlPct
				capital += pnl

				dir := Long
				if position == SignalSell {
					dir = Short
				}
				result.Trades = append(result.Trades, Trade{
					Ticker:     p.Ticker,
					Position:   dir,
					EntryTime:  entryTime,
					ExitTime:   p.Timestamp,
					EntryPrice: entryPrice,
					ExitPrice:  p.YesProb,
					Size:       size,
					PnL:        pnl,
					PnLPct:     pnlPct * 100,
					ExitReason: exitReason,
				})

				position = SignalHold
			}
		}

		result.Equity = append(result.Equity, capital)
	}

	result.FinalCapital = capital
	result.TotalReturnPct = (capital - e.cfg.InitialCapital) / e.cfg.InitialCapital * 100
	result.TotalTrades = len(result.Trades)
	for _, t := range result.Trades {
		if t.PnL > 0 {
			result.WinningTrades++
		} else if t.PnL < 0 {
			result.LosingTrades++
		}
	}
	if result.TotalTrades > 0 {
		result.WinRate = float64(result.WinningTrades) / float64(result.TotalTrades) * 100
	}

	return result
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
