package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seanbearden/kalshi-analysis/internal/model"
)

// Memory is an in-process Store used by tests and database-free runs. It
// enforces the same append contract as Postgres, including the websocket
// sequence uniqueness invariant.
type Memory struct {
	mu   sync.RWMutex
	rows []model.MarketSnapshot

	// ticker -> websocket sequences already appended
	seqIndex map[string]map[int64]struct{}
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		seqIndex: make(map[string]map[int64]struct{}),
	}
}

// Append inserts a new snapshot row.
func (m *Memory) Append(ctx context.Context, snap model.MarketSnapshot) (model.MarketSnapshot, error) {
	if err := validateSnapshot(&snap); err != nil {
		return model.MarketSnapshot{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if snap.Source == model.SourceWebsocket && snap.Sequence != nil {
		seqs, ok := m.seqIndex[snap.Ticker]
		if !ok {
			seqs = make(map[int64]struct{})
			m.seqIndex[snap.Ticker] = seqs
		}
		if _, exists := seqs[*snap.Sequence]; exists {
			return model.MarketSnapshot{}, ErrDuplicateSequence
		}
		seqs[*snap.Sequence] = struct{}{}
	}

	snap.ID = uuid.New()
	snap.CreatedAt = time.Now().UTC()
	if len(snap.RawData) == 0 {
		snap.RawData = []byte("{}")
	}

	m.rows = append(m.rows, snap)
	return snap, nil
}

// SequencesForTicker returns observed websocket sequences, ascending.
func (m *Memory) SequencesForTicker(ctx context.Context, ticker string) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var seqs []int64
	for s := range m.seqIndex[ticker] {
		seqs = append(seqs, s)
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })
	return seqs, nil
}

// ExistingInRange returns sequences in [min, max] covered by websocket or
// backfill rows.
func (m *Memory) ExistingInRange(ctx context.Context, ticker string, min, max int64) (map[int64]struct{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	present := make(map[int64]struct{})
	for _, row := range m.rows {
		if row.Ticker != ticker || row.Sequence == nil {
			continue
		}
		if *row.Sequence >= min && *row.Sequence <= max {
			present[*row.Sequence] = struct{}{}
		}
	}
	return present, nil
}

// TickersWithPushData returns distinct tickers with websocket rows.
func (m *Memory) TickersWithPushData(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	var tickers []string
	for _, row := range m.rows {
		if row.Source != model.SourceWebsocket {
			continue
		}
		if _, ok := seen[row.Ticker]; ok {
			continue
		}
		seen[row.Ticker] = struct{}{}
		tickers = append(tickers, row.Ticker)
	}
	sort.Strings(tickers)
	return tickers, nil
}

// LatestByTicker returns the newest snapshot by observation time.
func (m *Memory) LatestByTicker(ctx context.Context, ticker string) (*model.MarketSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *model.MarketSnapshot
	for i := range m.rows {
		row := &m.rows[i]
		if row.Ticker != ticker {
			continue
		}
		if latest == nil || row.Timestamp.After(latest.Timestamp) {
			latest = row
		}
	}
	if latest == nil {
		return nil, nil
	}
	snap := *latest
	return &snap, nil
}

// ByTimeRange returns snapshots within [from, to], ascending by timestamp.
func (m *Memory) ByTimeRange(ctx context.Context, ticker string, from, to time.Time) ([]model.MarketSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var snaps []model.MarketSnapshot
	for _, row := range m.rows {
		if row.Ticker != ticker {
			continue
		}
		if row.Timestamp.Before(from) || row.Timestamp.After(to) {
			continue
		}
		snaps = append(snaps, row)
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Timestamp.Before(snaps[j].Timestamp) })
	return snaps, nil
}

// BySource returns up to limit snapshots from one source, newest first.
func (m *Memory) BySource(ctx context.Context, source model.DataSource, limit int) ([]model.MarketSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var snaps []model.MarketSnapshot
	for _, row := range m.rows {
		if row.Source == source {
			snaps = append(snaps, row)
		}
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Timestamp.After(snaps[j].Timestamp) })
	if limit > 0 && len(snaps) > limit {
		snaps = snaps[:limit]
	}
	return snaps, nil
}

// Len returns the number of stored rows.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}
