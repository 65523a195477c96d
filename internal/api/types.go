package api

// MarketsResponse from GET /markets
type MarketsResponse struct {
	Markets []Market `json:"markets"`
	Cursor  string   `json:"cursor"`
}

// Market represents a market from the Kalshi API. Prices are in cents.
type Market struct {
	Ticker      string `json:"ticker"`
	EventTicker string `json:"event_ticker"`
	Title       string `json:"title"`
	Status      string `json:"status"`

	YesBid    int64 `json:"yes_bid"`
	YesAsk    int64 `json:"yes_ask"`
	NoBid     int64 `json:"no_bid"`
	NoAsk     int64 `json:"no_ask"`
	LastPrice int64 `json:"last_price"`

	Volume       int64 `json:"volume"`
	OpenInterest int64 `json:"open_interest"`

	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
}

// SingleMarketResponse from GET /markets/{ticker}
type SingleMarketResponse struct {
	Market Market `json:"market"`
}

// GetMarketsOptions configures a GetMarkets request.
type GetMarketsOptions struct {
	Limit  int
	Cursor string
	Status string
}
