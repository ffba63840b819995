package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ⭐ SSOT: all fundwatch tables are created here. Statements are idempotent
// so Migrate can run unconditionally at startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS scan_result_sets (
		id BIGSERIAL PRIMARY KEY,
		taken_at TIMESTAMPTZ NOT NULL,
		total_processed INTEGER NOT NULL DEFAULT 0,
		failure_count INTEGER NOT NULL DEFAULT 0,
		under_price_threshold INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS scan_snapshots (
		id BIGSERIAL PRIMARY KEY,
		result_set_id BIGINT NOT NULL REFERENCES scan_result_sets(id) ON DELETE CASCADE,
		ticker VARCHAR(12) NOT NULL,
		price DOUBLE PRECISION NOT NULL,
		previous_close DOUBLE PRECISION NOT NULL,
		price_delta DOUBLE PRECISION NOT NULL,
		holdings JSONB NOT NULL,
		market_cap_millions DOUBLE PRECISION,
		avg_volume BIGINT,
		perf_week DOUBLE PRECISION,
		perf_month DOUBLE PRECISION,
		perf_year DOUBLE PRECISION,
		signal_level INTEGER NOT NULL,
		previous_signal_level INTEGER,
		signal_level_changed BOOLEAN NOT NULL DEFAULT false,
		is_new BOOLEAN NOT NULL DEFAULT false,
		scan_timestamp TIMESTAMPTZ NOT NULL,
		UNIQUE (result_set_id, ticker)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scan_snapshots_ticker ON scan_snapshots (ticker)`,
	`CREATE TABLE IF NOT EXISTS registry_tickers (
		ticker VARCHAR(12) PRIMARY KEY,
		status VARCHAR(16) NOT NULL DEFAULT 'candidate',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_registry_tickers_status ON registry_tickers (status)`,
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	return nil
}
