package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seanbearden/kalshi-analysis/internal/model"
)

const uniqueViolation = "23505"

// Postgres is the production Store backed by a pgx connection pool.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgres creates a Postgres-backed store.
func NewPostgres(pool *pgxpool.Pool, logger *slog.Logger) *Postgres {
	if logger == nil {
		logger = slog.Default()
	}
	return &Postgres{pool: pool, logger: logger}
}

// Append inserts a new snapshot row.
func (p *Postgres) Append(ctx context.Context, snap model.MarketSnapshot) (model.MarketSnapshot, error) {
	if err := validateSnapshot(&snap); err != nil {
		return model.MarketSnapshot{}, err
	}

	snap.ID = uuid.New()
	snap.CreatedAt = time.Now().UTC()
	if len(snap.RawData) == 0 {
		snap.RawData = []byte("{}")
	}

	_, err := p.pool.Exec(ctx, `
		INSERT INTO market_snapshots (id, ticker, ts, source, sequence, yes_price, no_price, volume, raw_data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, snap.ID, snap.Ticker, snap.Timestamp, string(snap.Source), snap.Sequence,
		snap.YesPrice, snap.NoPrice, snap.Volume, []byte(snap.RawData), snap.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.MarketSnapshot{}, ErrDuplicateSequence
		}
		return model.MarketSnapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}

	return snap, nil
}

// isUniqueViolation reports whether err is a unique-index conflict.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// SequencesForTicker returns observed websocket sequences, ascending.
func (p *Postgres) SequencesForTicker(ctx context.Context, ticker string) ([]int64, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT DISTINCT sequence
		FROM market_snapshots
		WHERE ticker = $1 AND source = $2 AND sequence IS NOT NULL
		ORDER BY sequence
	`, ticker, string(model.SourceWebsocket))
	if err != nil {
		return nil, fmt.Errorf("query sequences: %w", err)
	}
	defer rows.Close()

	var seqs []int64
	for rows.Next() {
		var seq int64
		if err := rows.Scan(&seq); err != nil {
			return nil, fmt.Errorf("scan sequence: %w", err)
		}
		seqs = append(seqs, seq)
	}
	return seqs, rows.Err()
}

// ExistingInRange returns sequences in [min, max] covered by websocket or
// backfill rows.
func (p *Postgres) ExistingInRange(ctx context.Context, ticker string, min, max int64) (map[int64]struct{}, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT DISTINCT sequence
		FROM market_snapshots
		WHERE ticker = $1 AND sequence BETWEEN $2 AND $3
	`, ticker, min, max)
	if err != nil {
		return nil, fmt.Errorf("query sequence range: %w", err)
	}
	defer rows.Close()

	present := make(map[int64]struct{})
	for rows.Next() {
		var seq int64
		if err := rows.Scan(&seq); err != nil {
			return nil, fmt.Errorf("scan sequence: %w", err)
		}
		present[seq] = struct{}{}
	}
	return present, rows.Err()
}

// TickersWithPushData returns distinct tickers with websocket rows.
func (p *Postgres) TickersWithPushData(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT DISTINCT ticker
		FROM market_snapshots
		WHERE source = $1
		ORDER BY ticker
	`, string(model.SourceWebsocket))
	if err != nil {
		return nil, fmt.Errorf("query push tickers: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var ticker string
		if err := rows.Scan(&ticker); err != nil {
			return nil, fmt.Errorf("scan ticker: %w", err)
		}
		tickers = append(tickers, ticker)
	}
	return tickers, rows.Err()
}

// LatestByTicker returns the newest snapshot by observation time.
func (p *Postgres) LatestByTicker(ctx context.Context, ticker string) (*model.MarketSnapshot, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, ticker, ts, source, sequence, yes_price, no_price, volume, raw_data, created_at
		FROM market_snapshots
		WHERE ticker = $1
		ORDER BY ts DESC, created_at DESC
		LIMIT 1
	`, ticker)

	snap, err := scanSnapshot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest: %w", err)
	}
	return &snap, nil
}

// ByTimeRange returns snapshots within [from, to], ascending by timestamp.
func (p *Postgres) ByTimeRange(ctx context.Context, ticker string, from, to time.Time) ([]model.MarketSnapshot, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, ticker, ts, source, sequence, yes_price, no_price, volume, raw_data, created_at
		FROM market_snapshots
		WHERE ticker = $1 AND ts >= $2 AND ts <= $3
		ORDER BY ts
	`, ticker, from, to)
	if err != nil {
		return nil, fmt.Errorf("query time range: %w", err)
	}
	defer rows.Close()

	return collectSnapshots(rows)
}

// BySource returns up to limit snapshots from one source, newest first.
// A non-positive limit returns everything.
func (p *Postgres) BySource(ctx context.Context, source model.DataSource, limit int) ([]model.MarketSnapshot, error) {
	var limitArg *int
	if limit > 0 {
		limitArg = &limit
	}
	rows, err := p.pool.Query(ctx, `
		SELECT id, ticker, ts, source, sequence, yes_price, no_price, volume, raw_data, created_at
		FROM market_snapshots
		WHERE source = $1
		ORDER BY ts DESC
		LIMIT $2
	`, string(source), limitArg)
	if err != nil {
		return nil, fmt.Errorf("query by source: %w", err)
	}
	defer rows.Close()

	return collectSnapshots(rows)
}

func collectSnapshots(rows pgx.Rows) ([]model.MarketSnapshot, error) {
	var snaps []model.MarketSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

func scanSnapshot(row pgx.Row) (model.MarketSnapshot, error) {
	var snap model.MarketSnapshot
	var source string
	err := row.Scan(
		&snap.ID,
		&snap.Ticker,
		&snap.Timestamp,
		&source,
		&snap.Sequence,
		&snap.YesPrice,
		&snap.NoPrice,
		&snap.Volume,
		&snap.RawData,
		&snap.CreatedAt,
	)
	if err != nil {
		return model.MarketSnapshot{}, err
	}
	snap.Source = model.DataSource(source)
	return snap, nil
}
