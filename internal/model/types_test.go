package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDataSource_Valid(t *testing.T) {
	tests := []struct {
		source DataSource
		want   bool
	}{
		{SourcePoll, true},
		{SourceWebsocket, true},
		{SourceBackfill, true},
		{DataSource(""), false},
		{DataSource("rest"), false},
	}

	for _, tt := range tests {
		if got := tt.source.Valid(); got != tt.want {
			t.Errorf("DataSource(%q).Valid() = %v, want %v", tt.source, got, tt.want)
		}
	}
}

func TestCentsToPrice(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "0"},
		{1, "0.01"},
		{52, "0.52"},
		{99, "0.99"},
		{100, "1"},
	}

	for _, tt := range tests {
		got := CentsToPrice(tt.cents)
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("CentsToPrice(%d) = %s, want %s", tt.cents, got, tt.want)
		}
	}
}

func TestSeq(t *testing.T) {
	p := Seq(42)
	if p == nil || *p != 42 {
		t.Fatalf("Seq(42) = %v, want pointer to 42", p)
	}
}
