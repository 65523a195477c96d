// Package backtest replays stored snapshots through a trading strategy
// and reports trades, equity, and summary statistics.
//
// Prices are treated as implied probabilities: a YES price of $0.45 is
// a 45% implied chance, so signals and exits reason about distance from
// the 0.50 neutral point.
package backtest
