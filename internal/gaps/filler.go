package gaps

import (
	"context"
	"errors"
	"log/slog"

	"github.com/seanbearden/kalshi-analysis/internal/model"
	"github.com/seanbearden/kalshi-analysis/internal/store"
)

// ErrRecoveryUnsupported is returned by a Recoverer whose upstream has
// no way to fetch a historical update by sequence number.
var ErrRecoveryUnsupported = errors.New("sequence recovery not supported by upstream")

// Recoverer fetches the market update for one missed sequence number.
type Recoverer interface {
	RecoverSnapshot(ctx context.Context, ticker string, seq int64) (model.MarketSnapshot, error)
}

// FillStore is the store surface the filler needs.
type FillStore interface {
	SequenceSource
	ExistingInRange(ctx context.Context, ticker string, min, max int64) (map[int64]struct{}, error)
	Append(ctx context.Context, snap model.MarketSnapshot) (model.MarketSnapshot, error)
}

// Filler backfills detected gaps, best effort. A nil Recoverer turns
// filling into detection plus logging: gaps are reported but zero rows
// are recovered, and that is not an error.
type Filler struct {
	store       FillStore
	recoverer   Recoverer
	maxPerCycle int
	logger      *slog.Logger
}

// NewFiller creates a Filler. maxPerCycle bounds how many missing
// sequences one cycle attempts per ticker; zero or negative means a
// default of 100.
func NewFiller(store FillStore, recoverer Recoverer, maxPerCycle int, logger *slog.Logger) *Filler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxPerCycle <= 0 {
		maxPerCycle = 100
	}
	return &Filler{
		store:       store,
		recoverer:   recoverer,
		maxPerCycle: maxPerCycle,
		logger:      logger,
	}
}

// CheckAndFillGaps detects gaps for one ticker and attempts recovery,
// returning the number of snapshots actually backfilled. Individual
// recovery failures are logged and skipped.
func (f *Filler) CheckAndFillGaps(ctx context.Context, ticker string) (int, error) {
	seqs, err := f.store.SequencesForTicker(ctx, ticker)
	if err != nil {
		return 0, err
	}

	missing := Missing(seqs)
	if len(missing) == 0 {
		return 0, nil
	}

	f.logger.Warn("sequence gaps detected",
		"ticker", ticker,
		"missing", len(missing),
		"first", missing[0],
		"last", missing[len(missing)-1],
	)

	if len(missing) > f.maxPerCycle {
		missing = missing[:f.maxPerCycle]
	}

	if f.recoverer == nil {
		f.logger.Debug("no recovery source configured, gaps reported only", "ticker", ticker)
		return 0, nil
	}

	// Skip sequences a previous cycle already closed with backfill rows.
	existing, err := f.store.ExistingInRange(ctx, ticker, missing[0], missing[len(missing)-1])
	if err != nil {
		return 0, err
	}

	filled := 0
	for _, seq := range missing {
		if _, ok := existing[seq]; ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return filled, err
		}

		snap, err := f.recoverer.RecoverSnapshot(ctx, ticker, seq)
		if err != nil {
			if errors.Is(err, ErrRecoveryUnsupported) {
				f.logger.Debug("upstream cannot recover by sequence", "ticker", ticker)
				return filled, nil
			}
			f.logger.Warn("recover sequence failed",
				"ticker", ticker,
				"seq", seq,
				"error", err,
			)
			continue
		}

		snap.Ticker = ticker
		snap.Source = model.SourceBackfill
		snap.Sequence = model.Seq(seq)

		if _, err := f.store.Append(ctx, snap); err != nil {
			if errors.Is(err, store.ErrDuplicateSequence) {
				continue
			}
			f.logger.Warn("append backfill snapshot failed",
				"ticker", ticker,
				"seq", seq,
				"error", err,
			)
			continue
		}
		filled++
	}

	if filled > 0 {
		f.logger.Info("gaps backfilled", "ticker", ticker, "filled", filled)
	}
	return filled, nil
}

// SweepOnce runs gap fill across every ticker with push data. A failing
// ticker is logged and the sweep continues. Returns total rows filled.
func (f *Filler) SweepOnce(ctx context.Context) (int, error) {
	tickers, err := f.store.TickersWithPushData(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := f.CheckAndFillGaps(ctx, ticker)
		if err != nil {
			f.logger.Error("gap fill failed", "ticker", ticker, "error", err)
			continue
		}
		total += n
	}
	return total, nil
}
