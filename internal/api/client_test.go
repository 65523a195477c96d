package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/seanbearden/kalshi-analysis/internal/retry"
)

func TestNewClient(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := NewClient("https://api.example.com", "test-key")

		if c.baseURL != "https://api.example.com" {
			t.Errorf("baseURL = %q, want %q", c.baseURL, "https://api.example.com")
		}
		if c.apiKey != "test-key" {
			t.Errorf("apiKey = %q, want %q", c.apiKey, "test-key")
		}
		if c.httpClient.Timeout != 30*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 30*time.Second)
		}
		if c.retryPolicy.MaxAttempts != 3 {
			t.Errorf("retryPolicy.MaxAttempts = %d, want 3", c.retryPolicy.MaxAttempts)
		}
		if c.logger == nil {
			t.Error("logger should not be nil")
		}
	})

	t.Run("with timeout option", func(t *testing.T) {
		c := NewClient("https://api.example.com", "", WithTimeout(5*time.Second))
		if c.httpClient.Timeout != 5*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 5*time.Second)
		}
	})

	t.Run("with retry policy option", func(t *testing.T) {
		p := retry.Policy{MaxAttempts: 5, BaseDelay: 2 * time.Second, MaxDelay: 10 * time.Second}
		c := NewClient("https://api.example.com", "", WithRetryPolicy(p))
		if c.retryPolicy != p {
			t.Errorf("retryPolicy = %+v, want %+v", c.retryPolicy, p)
		}
	})

	t.Run("with logger option", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		c := NewClient("https://api.example.com", "", WithLogger(logger))
		if c.logger != logger {
			t.Error("logger not set correctly")
		}
	})

	t.Run("with custom HTTP client", func(t *testing.T) {
		customClient := &http.Client{Timeout: 10 * time.Second}
		c := NewClient("https://api.example.com", "", WithHTTPClient(customClient))
		if c.httpClient != customClient {
			t.Error("custom HTTP client not set")
		}
	})
}

func TestGetMarkets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets" {
			t.Errorf("path = %q, want /markets", r.URL.Path)
		}
		if got := r.URL.Query().Get("status"); got != "open" {
			t.Errorf("status = %q, want open", got)
		}
		if got := r.URL.Query().Get("limit"); got != "100" {
			t.Errorf("limit = %q, want 100", got)
		}

		resp := MarketsResponse{
			Markets: []Market{
				{Ticker: "INXD-24FEB16-T4125", YesBid: 52, NoBid: 47, Volume: 1000},
				{Ticker: "HIGHNY-24FEB16-B55", YesBid: 30, NoBid: 69, Volume: 250},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	c := NewClient(server.URL, "")

	markets, err := c.GetOpenMarkets(context.Background(), 100)
	if err != nil {
		t.Fatalf("GetOpenMarkets failed: %v", err)
	}

	if len(markets) != 2 {
		t.Fatalf("len(markets) = %d, want 2", len(markets))
	}
	if markets[0].Ticker != "INXD-24FEB16-T4125" {
		t.Errorf("Ticker = %q, want INXD-24FEB16-T4125", markets[0].Ticker)
	}
	if markets[0].YesBid != 52 {
		t.Errorf("YesBid = %d, want 52", markets[0].YesBid)
	}
}

func TestGetAllMarkets_Pagination(t *testing.T) {
	var page atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := page.Add(1)

		resp := MarketsResponse{}
		switch p {
		case 1:
			resp.Markets = []Market{{Ticker: "A"}, {Ticker: "B"}}
			resp.Cursor = "next"
		default:
			resp.Markets = []Market{{Ticker: "C"}}
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	c := NewClient(server.URL, "")

	markets, err := c.GetAllMarkets(context.Background(), GetMarketsOptions{})
	if err != nil {
		t.Fatalf("GetAllMarkets failed: %v", err)
	}

	if len(markets) != 3 {
		t.Errorf("len(markets) = %d, want 3", len(markets))
	}
	if page.Load() != 2 {
		t.Errorf("pages fetched = %d, want 2", page.Load())
	}
}

func TestGet_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(MarketsResponse{Markets: []Market{{Ticker: "A"}}})
	}))
	defer server.Close()

	c := NewClient(server.URL, "", WithRetryPolicy(retry.Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
	}))

	markets, err := c.GetOpenMarkets(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetOpenMarkets failed: %v", err)
	}
	if len(markets) != 1 {
		t.Errorf("len(markets) = %d, want 1", len(markets))
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestGet_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(server.URL, "", WithRetryPolicy(retry.Policy{
		MaxAttempts: 5,
		BaseDelay:   time.Millisecond,
	}))

	_, err := c.GetMarket(context.Background(), "MISSING")
	if err == nil {
		t.Fatal("GetMarket() = nil, want error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 4xx)", calls.Load())
	}
}

func TestAPIError_IsRetryable(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{500, true},
		{503, true},
		{429, true},
		{400, false},
		{404, false},
		{401, false},
	}

	for _, tt := range tests {
		e := &APIError{StatusCode: tt.status}
		if got := e.IsRetryable(); got != tt.want {
			t.Errorf("APIError{%d}.IsRetryable() = %v, want %v", tt.status, got, tt.want)
		}
	}
}
