package gaps

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/seanbearden/kalshi-analysis/internal/model"
	"github.com/seanbearden/kalshi-analysis/internal/store"
)

func TestMissing(t *testing.T) {
	tests := []struct {
		name string
		seqs []int64
		want []int64
	}{
		{
			name: "empty",
			seqs: nil,
			want: nil,
		},
		{
			name: "single sequence",
			seqs: []int64{5},
			want: nil,
		},
		{
			name: "contiguous",
			seqs: []int64{1, 2, 3, 4},
			want: nil,
		},
		{
			name: "one hole",
			seqs: []int64{1, 5},
			want: []int64{2, 3, 4},
		},
		{
			name: "multiple holes",
			seqs: []int64{1, 2, 4, 5, 7},
			want: []int64{3, 6},
		},
		{
			name: "consecutive holes",
			seqs: []int64{1, 2, 4, 7, 8},
			want: []int64{3, 5, 6},
		},
		{
			name: "unsorted with duplicates",
			seqs: []int64{7, 1, 3, 3, 5},
			want: []int64{2, 4, 6},
		},
		{
			name: "starts at zero",
			seqs: []int64{0, 3},
			want: []int64{1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Missing(tt.seqs)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Missing(%v) = %v, want %v", tt.seqs, got, tt.want)
			}
		})
	}
}

// seedWebsocket appends a websocket snapshot per sequence number.
func seedWebsocket(t *testing.T, mem *store.Memory, ticker string, seqs ...int64) {
	t.Helper()
	for _, seq := range seqs {
		_, err := mem.Append(context.Background(), model.MarketSnapshot{
			Ticker:    ticker,
			Timestamp: time.Now().UTC(),
			Source:    model.SourceWebsocket,
			Sequence:  model.Seq(seq),
			YesPrice:  model.CentsToPrice(50),
			NoPrice:   model.CentsToPrice(48),
		})
		if err != nil {
			t.Fatalf("seed append (seq %d): %v", seq, err)
		}
	}
}

func TestDetectGaps(t *testing.T) {
	mem := store.NewMemory()
	seedWebsocket(t, mem, "T", 1, 2, 5)

	d := NewDetector(mem, nil)
	missing, err := d.DetectGaps(context.Background(), "T")
	if err != nil {
		t.Fatalf("DetectGaps() error = %v", err)
	}
	if want := []int64{3, 4}; !reflect.DeepEqual(missing, want) {
		t.Errorf("DetectGaps() = %v, want %v", missing, want)
	}
}

func TestDetectGaps_UnknownTicker(t *testing.T) {
	d := NewDetector(store.NewMemory(), nil)
	missing, err := d.DetectGaps(context.Background(), "NOPE")
	if err != nil {
		t.Fatalf("DetectGaps() error = %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("DetectGaps() = %v, want none", missing)
	}
}

func TestDetectAll_OmitsGaplessTickers(t *testing.T) {
	mem := store.NewMemory()
	seedWebsocket(t, mem, "GAPPY", 1, 4)
	seedWebsocket(t, mem, "CLEAN", 1, 2, 3)

	d := NewDetector(mem, nil)
	all, err := d.DetectAll(context.Background())
	if err != nil {
		t.Fatalf("DetectAll() error = %v", err)
	}

	if len(all) != 1 {
		t.Fatalf("DetectAll() reported %d tickers, want 1: %v", len(all), all)
	}
	if want := []int64{2, 3}; !reflect.DeepEqual(all["GAPPY"], want) {
		t.Errorf("DetectAll()[GAPPY] = %v, want %v", all["GAPPY"], want)
	}
}
