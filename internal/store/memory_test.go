package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/seanbearden/kalshi-analysis/internal/model"
)

func snapshot(ticker string, source model.DataSource, seq *int64, ts time.Time) model.MarketSnapshot {
	return model.MarketSnapshot{
		Ticker:    ticker,
		Timestamp: ts,
		Source:    source,
		Sequence:  seq,
		YesPrice:  decimal.RequireFromString("0.52"),
		NoPrice:   decimal.RequireFromString("0.47"),
		Volume:    1000,
		RawData:   []byte(`{"ticker":"` + ticker + `"}`),
	}
}

func TestMemory_Append_AssignsIdentity(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	created, err := m.Append(ctx, snapshot("TEST", model.SourcePoll, nil, time.Now().UTC()))
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if created.ID == uuid.Nil {
		t.Error("Append did not assign an ID")
	}
	if created.CreatedAt.IsZero() {
		t.Error("Append did not assign CreatedAt")
	}
}

func TestMemory_Append_DuplicateSequence(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	ts := time.Now().UTC()

	if _, err := m.Append(ctx, snapshot("TEST", model.SourceWebsocket, model.Seq(7), ts)); err != nil {
		t.Fatalf("first Append failed: %v", err)
	}

	_, err := m.Append(ctx, snapshot("TEST", model.SourceWebsocket, model.Seq(7), ts.Add(time.Second)))
	if !errors.Is(err, ErrDuplicateSequence) {
		t.Fatalf("second Append error = %v, want ErrDuplicateSequence", err)
	}

	// Exactly one row visible for the pair.
	seqs, err := m.SequencesForTicker(ctx, "TEST")
	if err != nil {
		t.Fatalf("SequencesForTicker failed: %v", err)
	}
	if len(seqs) != 1 || seqs[0] != 7 {
		t.Errorf("sequences = %v, want [7]", seqs)
	}
	if m.Len() != 1 {
		t.Errorf("rows = %d, want 1", m.Len())
	}
}

func TestMemory_Append_SameSequenceDifferentTickers(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	ts := time.Now().UTC()

	if _, err := m.Append(ctx, snapshot("AAA", model.SourceWebsocket, model.Seq(1), ts)); err != nil {
		t.Fatalf("Append AAA failed: %v", err)
	}
	if _, err := m.Append(ctx, snapshot("BBB", model.SourceWebsocket, model.Seq(1), ts)); err != nil {
		t.Errorf("Append BBB failed: %v, sequence space should be per ticker", err)
	}
}

func TestMemory_Append_PollRowsMayRepeat(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	ts := time.Now().UTC()

	// Repeated polls with identical prices are all retained.
	for i := 0; i < 3; i++ {
		if _, err := m.Append(ctx, snapshot("TEST", model.SourcePoll, nil, ts.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}
	if m.Len() != 3 {
		t.Errorf("rows = %d, want 3", m.Len())
	}
}

func TestMemory_Append_Validation(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	ts := time.Now().UTC()

	tests := []struct {
		name   string
		mutate func(*model.MarketSnapshot)
	}{
		{"empty ticker", func(s *model.MarketSnapshot) { s.Ticker = "" }},
		{"unknown source", func(s *model.MarketSnapshot) { s.Source = "rest" }},
		{"negative yes price", func(s *model.MarketSnapshot) { s.YesPrice = decimal.NewFromInt(-1) }},
		{"negative no price", func(s *model.MarketSnapshot) { s.NoPrice = decimal.NewFromInt(-1) }},
		{"price above bound", func(s *model.MarketSnapshot) { s.YesPrice = decimal.NewFromInt(101) }},
		{"negative volume", func(s *model.MarketSnapshot) { s.Volume = -1 }},
		{"negative sequence", func(s *model.MarketSnapshot) { s.Sequence = model.Seq(-1); s.Source = model.SourceWebsocket }},
		{"sequence on poll row", func(s *model.MarketSnapshot) { s.Sequence = model.Seq(1); s.Source = model.SourcePoll }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := snapshot("TEST", model.SourcePoll, nil, ts)
			tt.mutate(&snap)

			_, err := m.Append(ctx, snap)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("Append error = %v, want *ValidationError", err)
			}
		})
	}
}

func TestMemory_LatestByTicker_SourceIndependent(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	early := time.Date(2024, 2, 16, 12, 0, 0, 0, time.UTC)
	late := early.Add(time.Minute)

	// Push row observed first, poll row has the later timestamp.
	if _, err := m.Append(ctx, snapshot("TEST", model.SourceWebsocket, model.Seq(1), early)); err != nil {
		t.Fatalf("Append websocket failed: %v", err)
	}
	if _, err := m.Append(ctx, snapshot("TEST", model.SourcePoll, nil, late)); err != nil {
		t.Fatalf("Append poll failed: %v", err)
	}

	latest, err := m.LatestByTicker(ctx, "TEST")
	if err != nil {
		t.Fatalf("LatestByTicker failed: %v", err)
	}
	if latest == nil {
		t.Fatal("LatestByTicker returned nil")
	}
	if latest.Source != model.SourcePoll {
		t.Errorf("latest.Source = %s, want poll (later timestamp wins regardless of source)", latest.Source)
	}
	if !latest.Timestamp.Equal(late) {
		t.Errorf("latest.Timestamp = %v, want %v", latest.Timestamp, late)
	}
}

func TestMemory_LatestByTicker_Empty(t *testing.T) {
	m := NewMemory()

	latest, err := m.LatestByTicker(context.Background(), "NOPE")
	if err != nil {
		t.Fatalf("LatestByTicker failed: %v", err)
	}
	if latest != nil {
		t.Errorf("LatestByTicker = %+v, want nil", latest)
	}
}

func TestMemory_ByTimeRange(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	base := time.Date(2024, 2, 16, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		if _, err := m.Append(ctx, snapshot("TEST", model.SourcePoll, nil, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}

	snaps, err := m.ByTimeRange(ctx, "TEST", base.Add(time.Hour), base.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("ByTimeRange failed: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("len = %d, want 3 (range inclusive)", len(snaps))
	}
	for i := 1; i < len(snaps); i++ {
		if snaps[i].Timestamp.Before(snaps[i-1].Timestamp) {
			t.Error("snapshots not ascending by timestamp")
		}
	}
}

func TestMemory_TickersWithPushData(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	ts := time.Now().UTC()

	m.Append(ctx, snapshot("BBB", model.SourceWebsocket, model.Seq(1), ts))
	m.Append(ctx, snapshot("AAA", model.SourceWebsocket, model.Seq(1), ts))
	m.Append(ctx, snapshot("AAA", model.SourceWebsocket, model.Seq(2), ts))
	m.Append(ctx, snapshot("CCC", model.SourcePoll, nil, ts))

	tickers, err := m.TickersWithPushData(ctx)
	if err != nil {
		t.Fatalf("TickersWithPushData failed: %v", err)
	}
	if len(tickers) != 2 || tickers[0] != "AAA" || tickers[1] != "BBB" {
		t.Errorf("tickers = %v, want [AAA BBB]", tickers)
	}
}

func TestMemory_ExistingInRange(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	ts := time.Now().UTC()

	m.Append(ctx, snapshot("TEST", model.SourceWebsocket, model.Seq(1), ts))
	m.Append(ctx, snapshot("TEST", model.SourceWebsocket, model.Seq(4), ts))
	// Backfill rows count as coverage too.
	m.Append(ctx, snapshot("TEST", model.SourceBackfill, model.Seq(2), ts))

	present, err := m.ExistingInRange(ctx, "TEST", 1, 4)
	if err != nil {
		t.Fatalf("ExistingInRange failed: %v", err)
	}

	for _, want := range []int64{1, 2, 4} {
		if _, ok := present[want]; !ok {
			t.Errorf("sequence %d missing from range result", want)
		}
	}
	if _, ok := present[3]; ok {
		t.Error("sequence 3 reported present but never appended")
	}
}
