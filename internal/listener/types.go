package listener

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// TimestampedMessage wraps raw message data with receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw message bytes from WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// SubscribeMessage is sent to the server to open a subscription.
type SubscribeMessage struct {
	Type         string `json:"type"`
	MarketTicker string `json:"market_ticker"`
}

// SubscribeAllTickers subscribes to ticker updates for every market.
func SubscribeAllTickers() SubscribeMessage {
	return SubscribeMessage{Type: "ticker", MarketTicker: "*"}
}

// TickerMessage is an inbound ticker update. Prices arrive in cents and
// Seq is the per-ticker feed sequence number, absent on some messages.
type TickerMessage struct {
	Type      string `json:"type"`
	Ticker    string `json:"ticker"`
	YesPrice  int64  `json:"yes_price"`
	NoPrice   int64  `json:"no_price"`
	Volume    int64  `json:"volume"`
	Seq       *int64 `json:"seq,omitempty"`
	Timestamp string `json:"timestamp,omitempty"` // RFC 3339, optional
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL          string        // WebSocket URL
	APIKey       string        // Bearer token (empty = no auth)
	PingTimeout  time.Duration // Max time without ping before considering connection stale
	WriteTimeout time.Duration // Write deadline for sends
	BufferSize   int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   10000,
	}
}
