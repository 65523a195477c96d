package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/seanbearden/kalshi-analysis/internal/backtest"
	"github.com/seanbearden/kalshi-analysis/internal/config"
	"github.com/seanbearden/kalshi-analysis/internal/database"
	"github.com/seanbearden/kalshi-analysis/internal/store"
	"github.com/seanbearden/kalshi-analysis/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/ingestor.local.yaml", "path to config file")
	ticker := flag.String("ticker", "", "market ticker to backtest (required)")
	fromStr := flag.String("from", "", "range start, YYYY-MM-DD or RFC 3339 (required)")
	toStr := flag.String("to", "", "range end, YYYY-MM-DD or RFC 3339 (required)")
	window := flag.Int("window", 20, "mean reversion rolling window")
	threshold := flag.Float64("threshold", 1.5, "band width in standard deviations")
	capital := flag.Float64("capital", 10000, "initial capital")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if *ticker == "" || *fromStr == "" || *toStr == "" {
		logger.Error("missing required flags: -ticker, -from, -to")
		flag.Usage()
		os.Exit(2)
	}

	from, err := parseTime(*fromStr)
	if err != nil {
		logger.Error("invalid -from", "value", *fromStr, "error", err)
		os.Exit(2)
	}
	to, err := parseTime(*toStr)
	if err != nil {
		logger.Error("invalid -to", "value", *toStr, "error", err)
		os.Exit(2)
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	snapshots := store.NewPostgres(pool, logger)

	snaps, err := snapshots.ByTimeRange(ctx, *ticker, from, to)
	if err != nil {
		logger.Error("failed to load snapshots", "error", err)
		os.Exit(1)
	}
	if len(snaps) == 0 {
		logger.Error("no snapshots in range", "ticker", *ticker, "from", from, "to", to)
		os.Exit(1)
	}

	logger.Info("loaded snapshots", "ticker", *ticker, "count", len(snaps))

	engineCfg := backtest.DefaultConfig()
	engineCfg.InitialCapital = *capital
	engine := backtest.NewEngine(engineCfg, backtest.NewMeanReversion(*window, *threshold))

	result := engine.Run(backtest.FromSnapshots(snaps))

	printResult(result)
}

// parseTime accepts a date or a full RFC 3339 timestamp.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func printResult(r backtest.Result) {
	fmt.Printf("strategy:        %s\n", r.Strategy)
	fmt.Printf("initial capital: %.2f\n", r.InitialCapital)
	fmt.Printf("final capital:   %.2f\n", r.FinalCapital)
	fmt.Printf("total return:    %.2f%%\n", r.TotalReturnPct)
	fmt.Printf("trades:          %d (%d won / %d lost, win rate %.1f%%)\n",
		r.TotalTrades, r.WinningTrades, r.LosingTrades, r.WinRate)

	if len(r.Trades) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("trades:")
	for _, t := range r.Trades {
		fmt.Printf("  %s %-5s %s -> %s  entry %.3f exit %.3f  pnl %+.2f (%+.2f%%)  [%s]\n",
			t.Ticker, t.Position,
			t.EntryTime.Format(time.RFC3339), t.ExitTime.Format(time.RFC3339),
			t.EntryPrice, t.ExitPrice, t.PnL, t.PnLPct, t.ExitReason)
	}
}
