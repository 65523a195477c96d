package poller

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/seanbearden/kalshi-analysis/internal/api"
	"github.com/seanbearden/kalshi-analysis/internal/model"
	"github.com/seanbearden/kalshi-analysis/internal/store"
)

// MarketLister fetches the current open-market list.
type MarketLister interface {
	GetOpenMarkets(ctx context.Context, limit int) ([]api.Market, error)
}

// SnapshotAppender receives polled snapshots.
type SnapshotAppender interface {
	Append(ctx context.Context, snap model.MarketSnapshot) (model.MarketSnapshot, error)
}

// Config holds poller configuration.
type Config struct {
	Interval time.Duration // Poll interval
	PageSize int           // Markets fetched per cycle
	Timeout  time.Duration // Per-cycle fetch timeout
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 5 * time.Second,
		PageSize: 100,
		Timeout:  10 * time.Second,
	}
}

// Poller periodically captures full market state via the REST API.
type Poller struct {
	cfg    Config
	client MarketLister
	store  SnapshotAppender
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config, client MarketLister, store SnapshotAppender, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		cfg:    cfg,
		client: client,
		store:  store,
		logger: logger,
	}
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("poller started",
		"interval", p.cfg.Interval,
		"page_size", p.cfg.PageSize,
	)

	return nil
}

// Stop gracefully shuts down the poller, letting an in-flight cycle finish.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run polls until ctx is cancelled. Each cycle is independent: a failed
// fetch is logged and the loop waits for the next tick with no backoff
// growth across cycles.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Poll immediately on start.
	if err := p.PollOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Error("poll cycle failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.PollOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				p.logger.Error("poll cycle failed", "error", err)
			}
		}
	}
}

// run adapts Run to the Start/Stop lifecycle.
func (p *Poller) run() {
	defer p.wg.Done()
	p.Run(p.ctx)
}

// PollOnce executes a single poll cycle: fetch the open-market list and
// append one poll snapshot per market. Individual append failures are
// logged and skipped; only a fetch-level failure is returned.
func (p *Poller) PollOnce(ctx context.Context) error {
	start := time.Now()

	fetchCtx := ctx
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	markets, err := p.client.GetOpenMarkets(fetchCtx, p.cfg.PageSize)
	if err != nil {
		return err
	}

	var saved, skipped int
	for _, m := range markets {
		if m.Ticker == "" {
			p.logger.Warn("market record missing ticker, skipping")
			skipped++
			continue
		}

		raw, err := json.Marshal(m)
		if err != nil {
			p.logger.Warn("marshal market record failed", "ticker", m.Ticker, "error", err)
			skipped++
			continue
		}

		snap := model.MarketSnapshot{
			Ticker:    m.Ticker,
			Timestamp: time.Now().UTC(), // capture time at append
			Source:    model.SourcePoll,
			YesPrice:  model.CentsToPrice(m.YesBid),
			NoPrice:   model.CentsToPrice(m.NoBid),
			Volume:    m.Volume,
			RawData:   raw,
		}

		if _, err := p.store.Append(ctx, snap); err != nil {
			p.logger.Warn("append poll snapshot failed", "ticker", m.Ticker, "error", err)
			skipped++
			continue
		}
		saved++
	}

	p.logger.Info("poll cycle complete",
		"markets", len(markets),
		"saved", saved,
		"skipped", skipped,
		"duration", time.Since(start),
	)

	return nil
}

// compile-time check that the production store satisfies the appender.
var _ SnapshotAppender = (*store.Memory)(nil)
