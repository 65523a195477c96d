package listener

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/seanbearden/kalshi-analysis/internal/model"
	"github.com/seanbearden/kalshi-analysis/internal/retry"
	"github.com/seanbearden/kalshi-analysis/internal/store"
)

// SnapshotAppender receives push snapshots.
type SnapshotAppender interface {
	Append(ctx context.Context, snap model.MarketSnapshot) (model.MarketSnapshot, error)
}

// ClientFactory builds a fresh Client for each connection cycle.
type ClientFactory func() Client

// Config holds listener configuration.
type Config struct {
	ConnectAttempts  int           // Dial attempts per connection cycle
	ConnectBaseDelay time.Duration // Initial backoff between dial attempts
	ConnectMaxDelay  time.Duration // Backoff cap between dial attempts
	ReconnectWait    time.Duration // Pause between connection cycles
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ConnectAttempts:  5,
		ConnectBaseDelay: 2 * time.Second,
		ConnectMaxDelay:  30 * time.Second,
		ReconnectWait:    5 * time.Second,
	}
}

// Listener consumes the push feed and appends websocket snapshots.
// The loop survives connection loss: it redials with backoff, replays
// its subscriptions, and resumes consuming. It only exits when the
// context is cancelled.
type Listener struct {
	cfg       Config
	newClient ClientFactory
	store     SnapshotAppender
	logger    *slog.Logger
	subs      []SubscribeMessage

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Listener subscribed to all market tickers.
func New(cfg Config, factory ClientFactory, store SnapshotAppender, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{
		cfg:       cfg,
		newClient: factory,
		store:     store,
		logger:    logger,
		subs:      []SubscribeMessage{SubscribeAllTickers()},
	}
}

// Start begins the listen loop.
func (l *Listener) Start(ctx context.Context) error {
	l.ctx, l.cancel = context.WithCancel(ctx)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.Run(l.ctx)
	}()

	l.logger.Info("listener started")

	return nil
}

// Stop gracefully shuts down the listener.
func (l *Listener) Stop(ctx context.Context) error {
	if l.cancel != nil {
		l.cancel()
	}

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		l.logger.Info("listener stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drives connection cycles until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		client := l.newClient()

		if err := l.connect(ctx, client); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Error("websocket connect failed", "error", err)
			if err := l.wait(ctx); err != nil {
				return err
			}
			continue
		}

		if err := l.subscribe(client); err != nil {
			l.logger.Error("subscribe failed", "error", err)
			client.Close()
			if err := l.wait(ctx); err != nil {
				return err
			}
			continue
		}

		err := l.consume(ctx, client)
		client.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}

		l.logger.Warn("websocket connection lost, reconnecting",
			"error", err,
			"wait", l.cfg.ReconnectWait,
		)
		if err := l.wait(ctx); err != nil {
			return err
		}
	}
}

// connect dials with bounded exponential backoff.
func (l *Listener) connect(ctx context.Context, client Client) error {
	policy := retry.Policy{
		MaxAttempts: l.cfg.ConnectAttempts,
		BaseDelay:   l.cfg.ConnectBaseDelay,
		MaxDelay:    l.cfg.ConnectMaxDelay,
	}
	return policy.Do(ctx, nil, client.Connect)
}

// subscribe replays all subscriptions on the given connection.
func (l *Listener) subscribe(client Client) error {
	for _, sub := range l.subs {
		data, err := json.Marshal(sub)
		if err != nil {
			return err
		}
		if err := client.Send(data); err != nil {
			return err
		}
		l.logger.Debug("subscribed", "type", sub.Type, "market_ticker", sub.MarketTicker)
	}
	return nil
}

// consume reads messages until the connection errors or ctx is cancelled.
func (l *Listener) consume(ctx context.Context, client Client) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-client.Errors():
			return err
		case msg, ok := <-client.Messages():
			if !ok {
				return ErrNotConnected
			}
			l.handleMessage(ctx, msg)
		}
	}
}

// handleMessage converts one raw message into a websocket snapshot.
// Anything that cannot be handled is logged and dropped so a bad
// message never takes down the feed.
func (l *Listener) handleMessage(ctx context.Context, msg TimestampedMessage) {
	var tm TickerMessage
	if err := json.Unmarshal(msg.Data, &tm); err != nil {
		l.logger.Warn("malformed websocket message, skipping", "error", err)
		return
	}

	if tm.Type != "ticker" {
		l.logger.Debug("ignoring non-ticker message", "type", tm.Type)
		return
	}

	if tm.Ticker == "" {
		l.logger.Warn("websocket message missing ticker, skipping")
		return
	}

	// Prefer the upstream timestamp, fall back to local receive time.
	ts := msg.ReceivedAt.UTC()
	if tm.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, tm.Timestamp); err == nil {
			ts = parsed.UTC()
		} else {
			l.logger.Debug("unparseable message timestamp, using receive time",
				"timestamp", tm.Timestamp,
			)
		}
	}

	snap := model.MarketSnapshot{
		Ticker:    tm.Ticker,
		Timestamp: ts,
		Source:    model.SourceWebsocket,
		Sequence:  tm.Seq,
		YesPrice:  model.CentsToPrice(tm.YesPrice),
		NoPrice:   model.CentsToPrice(tm.NoPrice),
		Volume:    tm.Volume,
		RawData:   msg.Data,
	}

	if _, err := l.store.Append(ctx, snap); err != nil {
		if errors.Is(err, store.ErrDuplicateSequence) {
			l.logger.Debug("duplicate sequence, snapshot already stored",
				"ticker", tm.Ticker,
				"seq", tm.Seq,
			)
			return
		}
		l.logger.Warn("append websocket snapshot failed",
			"ticker", tm.Ticker,
			"error", err,
		)
	}
}

// wait pauses between connection cycles.
func (l *Listener) wait(ctx context.Context) error {
	timer := time.NewTimer(l.cfg.ReconnectWait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
