package store

import "context"

// Schema creates the snapshot table and its indexes. The partial unique
// index enforces the websocket (ticker, sequence) invariant; poll and
// backfill rows are deliberately outside it.
const Schema = `
CREATE TABLE IF NOT EXISTS market_snapshots (
    id         UUID PRIMARY KEY,
    ticker     TEXT NOT NULL,
    ts         TIMESTAMPTZ NOT NULL,
    source     TEXT NOT NULL,
    sequence   BIGINT,
    yes_price  NUMERIC(10,2) NOT NULL,
    no_price   NUMERIC(10,2) NOT NULL,
    volume     BIGINT NOT NULL,
    raw_data   JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS ix_snapshots_ticker_ts ON market_snapshots (ticker, ts);
CREATE INDEX IF NOT EXISTS ix_snapshots_source ON market_snapshots (source);
CREATE UNIQUE INDEX IF NOT EXISTS ux_snapshots_ticker_source_sequence
    ON market_snapshots (ticker, source, sequence)
    WHERE source = 'websocket';
`

// EnsureSchema applies the schema. Safe to run on every startup.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, Schema)
	return err
}
