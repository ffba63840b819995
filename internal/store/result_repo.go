// Package store persists scan result sets in PostgreSQL.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/fundwatch/internal/contracts"
	"github.com/wonny/fundwatch/pkg/logger"
	"github.com/wonny/fundwatch/pkg/redis"
)

const latestCacheKey = "resultset:latest"
const latestCacheTTL = 10 * time.Minute

// ResultRepository implements contracts.ResultStore on pgx with a
// write-through redis cache of the latest set
// ⭐ SSOT: result-set persistence happens here only
type ResultRepository struct {
	pool       *pgxpool.Pool
	cache      *redis.Cache
	logger     *logger.Logger
	retries    int
	retryDelay time.Duration
}

var _ contracts.ResultStore = (*ResultRepository)(nil)

// NewResultRepository creates a result repository. retries is the
// bounded number of save attempts before the error is surfaced.
func NewResultRepository(pool *pgxpool.Pool, cache *redis.Cache, retries int, retryDelay time.Duration, log *logger.Logger) *ResultRepository {
	if retries < 1 {
		retries = 1
	}
	return &ResultRepository{
		pool:       pool,
		cache:      cache,
		logger:     log.Named("result_store"),
		retries:    retries,
		retryDelay: retryDelay,
	}
}

// Load returns the most recently saved result set. An empty set is
// returned when nothing has been saved yet.
func (r *ResultRepository) Load(ctx context.Context) (*contracts.ResultSet, error) {
	cached := contracts.NewResultSet()
	if found, err := r.cache.Get(ctx, latestCacheKey, cached); err == nil && found {
		return cached, nil
	}

	var setID int64
	rs := contracts.NewResultSet()

	query := `
		SELECT id, taken_at, total_processed, failure_count, under_price_threshold
		FROM scan_result_sets
		ORDER BY taken_at DESC
		LIMIT 1
	`
	err := r.pool.QueryRow(ctx, query).Scan(
		&setID,
		&rs.Timestamp,
		&rs.Summary.TotalProcessed,
		&rs.Summary.FailureCount,
		&rs.Summary.UnderPriceThreshold,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return rs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest result set: %w", err)
	}

	if err := r.loadSnapshots(ctx, setID, rs); err != nil {
		return nil, err
	}

	// Derived counts are recomputed from rows, not trusted from disk.
	for _, snap := range rs.Snapshots {
		rs.Summary.LevelCounts[snap.SignalLevel]++
		if snap.Qualifying() {
			rs.Summary.QualifyingCount++
		}
	}

	return rs, nil
}

func (r *ResultRepository) loadSnapshots(ctx context.Context, setID int64, rs *contracts.ResultSet) error {
	query := `
		SELECT
			ticker, price, previous_close, price_delta, holdings,
			market_cap_millions, avg_volume,
			perf_week, perf_month, perf_year,
			signal_level, previous_signal_level, signal_level_changed,
			is_new, scan_timestamp
		FROM scan_snapshots
		WHERE result_set_id = $1
		ORDER BY ticker
	`

	rows, err := r.pool.Query(ctx, query, setID)
	if err != nil {
		return fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		snap := &contracts.Snapshot{}
		var holdingsJSON []byte

		err := rows.Scan(
			&snap.Ticker,
			&snap.Price,
			&snap.PreviousClose,
			&snap.PriceDelta,
			&holdingsJSON,
			&snap.MarketCapMillions,
			&snap.AvgVolume,
			&snap.Performance.Week,
			&snap.Performance.Month,
			&snap.Performance.Year,
			&snap.SignalLevel,
			&snap.PreviousSignalLevel,
			&snap.SignalLevelChanged,
			&snap.IsNew,
			&snap.ScanTimestamp,
		)
		if err != nil {
			return fmt.Errorf("scan snapshot row: %w", err)
		}

		if err := json.Unmarshal(holdingsJSON, &snap.Holdings); err != nil {
			return fmt.Errorf("unmarshal holdings for %s: %w", snap.Ticker, err)
		}

		rs.Snapshots[snap.Ticker] = snap
	}

	if rows.Err() != nil {
		return fmt.Errorf("iterate snapshots: %w", rows.Err())
	}
	return nil
}

// Save persists a result set, retrying transient failures with a short
// backoff. After exhausting retries the last error is returned; the
// in-memory set is untouched so the caller can retry the save.
func (r *ResultRepository) Save(ctx context.Context, rs *contracts.ResultSet) error {
	var lastErr error

	for attempt := 1; attempt <= r.retries; attempt++ {
		lastErr = r.saveOnce(ctx, rs)
		if lastErr == nil {
			if err := r.cache.Set(ctx, latestCacheKey, rs, latestCacheTTL); err != nil {
				r.logger.WithError(err).Warn("Result cache write failed")
			}
			return nil
		}

		r.logger.WithFields(map[string]interface{}{
			"attempt": attempt,
			"error":   lastErr.Error(),
		}).Warn("Result set save failed")

		if attempt == r.retries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.retryDelay):
		}
	}

	return fmt.Errorf("save result set after %d attempts: %w", r.retries, lastErr)
}

// saveOnce writes the set and its snapshots in a single transaction
func (r *ResultRepository) saveOnce(ctx context.Context, rs *contracts.ResultSet) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var setID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO scan_result_sets (taken_at, total_processed, failure_count, under_price_threshold)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, rs.Timestamp, rs.Summary.TotalProcessed, rs.Summary.FailureCount, rs.Summary.UnderPriceThreshold).Scan(&setID)
	if err != nil {
		return fmt.Errorf("insert result set: %w", err)
	}

	for _, snap := range rs.Snapshots {
		holdingsJSON, err := json.Marshal(snap.Holdings)
		if err != nil {
			return fmt.Errorf("marshal holdings for %s: %w", snap.Ticker, err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO scan_snapshots (
				result_set_id, ticker, price, previous_close, price_delta,
				holdings, market_cap_millions, avg_volume,
				perf_week, perf_month, perf_year,
				signal_level, previous_signal_level, signal_level_changed,
				is_new, scan_timestamp
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		`,
			setID,
			snap.Ticker,
			snap.Price,
			snap.PreviousClose,
			snap.PriceDelta,
			holdingsJSON,
			snap.MarketCapMillions,
			snap.AvgVolume,
			snap.Performance.Week,
			snap.Performance.Month,
			snap.Performance.Year,
			snap.SignalLevel,
			snap.PreviousSignalLevel,
			snap.SignalLevelChanged,
			snap.IsNew,
			snap.ScanTimestamp,
		)
		if err != nil {
			return fmt.Errorf("insert snapshot %s: %w", snap.Ticker, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
