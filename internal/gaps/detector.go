package gaps

import (
	"context"
	"log/slog"
)

// SequenceSource provides observed websocket sequence numbers.
type SequenceSource interface {
	SequencesForTicker(ctx context.Context, ticker string) ([]int64, error)
	TickersWithPushData(ctx context.Context) ([]string, error)
}

// Missing returns the sequence numbers absent between the minimum and
// maximum of the observed set, ascending. Fewer than two observed
// sequences yields no gaps. Duplicates and ordering in the input are
// tolerated.
func Missing(seqs []int64) []int64 {
	if len(seqs) < 2 {
		return nil
	}

	seen := make(map[int64]struct{}, len(seqs))
	lo, hi := seqs[0], seqs[0]
	for _, s := range seqs {
		seen[s] = struct{}{}
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}

	var missing []int64
	for s := lo + 1; s < hi; s++ {
		if _, ok := seen[s]; !ok {
			missing = append(missing, s)
		}
	}
	return missing
}

// Detector reports sequence gaps from stored websocket snapshots.
type Detector struct {
	source SequenceSource
	logger *slog.Logger
}

// NewDetector creates a Detector over the given sequence source.
func NewDetector(source SequenceSource, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{source: source, logger: logger}
}

// DetectGaps returns the missing sequence numbers for one ticker.
func (d *Detector) DetectGaps(ctx context.Context, ticker string) ([]int64, error) {
	seqs, err := d.source.SequencesForTicker(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return Missing(seqs), nil
}

// DetectAll returns missing sequences per ticker for every ticker with
// push data. Tickers without gaps are omitted.
func (d *Detector) DetectAll(ctx context.Context) (map[string][]int64, error) {
	tickers, err := d.source.TickersWithPushData(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]int64)
	for _, ticker := range tickers {
		missing, err := d.DetectGaps(ctx, ticker)
		if err != nil {
			return nil, err
		}
		if len(missing) > 0 {
			out[ticker] = missing
		}
	}
	return out, nil
}
