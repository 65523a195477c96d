package backtest

import "math"

// Signal is a per-point trading decision.
type Signal int

const (
	SignalHold Signal = 0
	SignalBuy  Signal = 1
	SignalSell Signal = -1
)

// Strategy produces one signal per data point.
type Strategy interface {
	// Name identifies the strategy in results and logs.
	Name() string

	// GenerateSignals returns exactly one signal per input point.
	GenerateSignals(points []Point) []Signal
}

// MeanReversion buys when the price falls below the rolling lower band
// and sells when it rises above the upper band.
type MeanReversion struct {
	Window       int     // rolling window size
	StdThreshold float64 // band width in standard deviations
}

// NewMeanReversion creates a mean reversion strategy with the given
// window and band width. Non-positive arguments fall back to a window
// of 20 and 1.5 standard deviations.
func NewMeanReversion(window int, stdThreshold float64) *MeanReversion {
	if window <= 0 {
		window = 20
	}
	if stdThreshold <= 0 {
		stdThreshold = 1.5
	}
	return &MeanReversion{Window: window, StdThreshold: stdThreshold}
}

func (s *MeanReversion) Name() string { return "mean_reversion" }

// GenerateSignals computes rolling mean and standard deviation over the
// trailing window. Points before the warmup period produce hold signals.
func (s *MeanReversion) GenerateSignals(points []Point) []Signal {
	signals := make([]Signal, len(points))

	minPeriods := s.Window / 4
	if minPeriods < 5 {
		minPeriods = 5
	}

	for i := range points {
		lo := i - s.Window + 1
		if lo < 0 {
			lo = 0
		}
		n := i - lo + 1
		if n < minPeriods {
			continue
		}

		mean, std := meanStd(points[lo : i+1])
		lower := mean - s.StdThreshold*std
		upper := mean + s.StdThreshold*std

		switch {
		case points[i].YesProb < lower:
			signals[i] = SignalBuy
		case points[i].YesProb > upper:
			signals[i] = SignalSell
		}
	}
	return signals
}

// meanStd returns the mean and sample standard deviation of YesProb.
func meanStd(points []Point) (float64, float64) {
	n := float64(len(points))
	var sum float64
	for _, p := range points {
		sum += p.YesProb
	}
	mean := sum / n

	if len(points) < 2 {
		return mean, 0
	}
	var ss float64
	for _, p := range points {
		d := p.YesProb - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / (n - 1))
}
