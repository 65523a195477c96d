package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetMarkets fetches a page of markets.
func (c *Client) GetMarkets(ctx context.Context, opts GetMarketsOptions) (*MarketsResponse, error) {
	query := url.Values{}

	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}

	var resp MarketsResponse
	if err := c.get(ctx, "/markets", query, &resp); err != nil {
		return nil, fmt.Errorf("get markets: %w", err)
	}

	return &resp, nil
}

// GetOpenMarkets fetches one page of currently open markets.
func (c *Client) GetOpenMarkets(ctx context.Context, limit int) ([]Market, error) {
	resp, err := c.GetMarkets(ctx, GetMarketsOptions{Limit: limit, Status: "open"})
	if err != nil {
		return nil, err
	}
	return resp.Markets, nil
}

// GetAllMarkets fetches all markets matching the options by paginating
// through results.
func (c *Client) GetAllMarkets(ctx context.Context, opts GetMarketsOptions) ([]Market, error) {
	var all []Market
	if opts.Limit == 0 {
		opts.Limit = 1000 // Max page size
	}

	for {
		resp, err := c.GetMarkets(ctx, opts)
		if err != nil {
			return nil, err
		}

		all = append(all, resp.Markets...)

		if resp.Cursor == "" {
			break
		}
		opts.Cursor = resp.Cursor
	}

	return all, nil
}

// GetMarket fetches a single market by ticker.
func (c *Client) GetMarket(ctx context.Context, ticker string) (*Market, error) {
	var resp SingleMarketResponse
	if err := c.get(ctx, "/markets/"+ticker, nil, &resp); err != nil {
		return nil, fmt.Errorf("get market %s: %w", ticker, err)
	}
	return &resp.Market, nil
}
