package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// Runner is a long-lived loop that exits when its context is cancelled.
type Runner interface {
	Run(ctx context.Context) error
}

// Sweeper runs one gap-fill pass across all tickers.
type Sweeper interface {
	SweepOnce(ctx context.Context) (int, error)
}

// Config holds orchestrator configuration.
type Config struct {
	SweepSchedule string // cron spec with a seconds field, empty disables the sweep
}

// Orchestrator supervises the poller, the listener, and the gap-fill
// schedule. Either source failing permanently stops the whole pipeline
// so the process can restart cleanly.
type Orchestrator struct {
	cfg      Config
	poller   Runner
	listener Runner
	sweeper  Sweeper
	logger   *slog.Logger
}

// New creates an Orchestrator. A nil sweeper disables gap filling.
func New(cfg Config, poller, listener Runner, sweeper Sweeper, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		cfg:      cfg,
		poller:   poller,
		listener: listener,
		sweeper:  sweeper,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled or a component fails. Cancellation
// is a clean shutdown and returns nil.
func (o *Orchestrator) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	// Validate the schedule before anything starts.
	var c *cron.Cron
	if o.sweeper != nil && o.cfg.SweepSchedule != "" {
		c = cron.New(cron.WithSeconds())
		_, err := c.AddFunc(o.cfg.SweepSchedule, func() {
			filled, err := o.sweeper.SweepOnce(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				o.logger.Error("gap sweep failed", "error", err)
				return
			}
			if filled > 0 {
				o.logger.Info("gap sweep complete", "filled", filled)
			}
		})
		if err != nil {
			return fmt.Errorf("invalid sweep schedule %q: %w", o.cfg.SweepSchedule, err)
		}
	}

	g.Go(func() error {
		return o.poller.Run(ctx)
	})

	g.Go(func() error {
		return o.listener.Run(ctx)
	})

	if c != nil {
		c.Start()
		g.Go(func() error {
			<-ctx.Done()
			// Wait for an in-flight sweep to finish before reporting stopped.
			<-c.Stop().Done()
			return ctx.Err()
		})

		o.logger.Info("gap sweep scheduled", "schedule", o.cfg.SweepSchedule)
	}

	o.logger.Info("ingestion pipeline running")

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		o.logger.Info("ingestion pipeline stopped")
		return nil
	}
	return err
}
