package registry

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/fundwatch/internal/contracts"
	"github.com/wonny/fundwatch/pkg/logger"
)

// Ticker lifecycle status values stored in registry_tickers.status.
const (
	statusCandidate = "candidate"
	statusRejected  = "rejected"
)

// Repository is the Postgres-backed contracts.TickerRegistry.
//
// ⭐ SSOT: registry_tickers is the only place ticker lifecycle state lives.
// Scan results reference tickers but never decide candidacy on their own.
type Repository struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

var _ contracts.TickerRegistry = (*Repository)(nil)

func NewRepository(pool *pgxpool.Pool, log *logger.Logger) *Repository {
	return &Repository{
		pool:   pool,
		logger: log.Named("registry"),
	}
}

// ListCandidates returns every ticker currently in candidate status,
// sorted so scan order is stable across runs.
func (r *Repository) ListCandidates(ctx context.Context) ([]string, error) {
	return r.listByStatus(ctx, statusCandidate)
}

// ListRejected returns every ticker currently in rejected status.
func (r *Repository) ListRejected(ctx context.Context) ([]string, error) {
	return r.listByStatus(ctx, statusRejected)
}

func (r *Repository) listByStatus(ctx context.Context, status string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ticker FROM registry_tickers
		WHERE status = $1
		ORDER BY ticker
	`, status)
	if err != nil {
		return nil, fmt.Errorf("list %s tickers: %w", status, err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan ticker row: %w", err)
		}
		tickers = append(tickers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticker rows: %w", err)
	}
	return tickers, nil
}

// AddCandidates upserts tickers into candidate status. A ticker that was
// previously rejected is given another chance.
func (r *Repository) AddCandidates(ctx context.Context, tickers []string) error {
	if len(tickers) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, raw := range tickers {
		ticker := contracts.NormalizeTicker(raw)
		if ticker == "" {
			continue
		}
		batch.Queue(`
			INSERT INTO registry_tickers (ticker, status, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (ticker) DO UPDATE
			SET status = EXCLUDED.status, updated_at = now()
		`, ticker, statusCandidate)
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("add candidates: %w", err)
	}
	r.logger.WithField("count", batch.Len()).Info("Candidates added")
	return nil
}

// ApplyDeltas applies reject and confirm transitions in a single
// transaction so a partial scan outcome never leaves the registry torn.
func (r *Repository) ApplyDeltas(ctx context.Context, deltas contracts.RegistryDeltas) error {
	if deltas.Empty() {
		return nil
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin registry tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, ticker := range deltas.Reject {
		if _, err := tx.Exec(ctx, `
			UPDATE registry_tickers
			SET status = $2, updated_at = now()
			WHERE ticker = $1
		`, ticker, statusRejected); err != nil {
			return fmt.Errorf("reject %s: %w", ticker, err)
		}
	}
	for _, ticker := range deltas.Confirm {
		if _, err := tx.Exec(ctx, `
			INSERT INTO registry_tickers (ticker, status, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (ticker) DO UPDATE
			SET status = EXCLUDED.status, updated_at = now()
		`, ticker, statusCandidate); err != nil {
			return fmt.Errorf("confirm %s: %w", ticker, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit registry tx: %w", err)
	}
	r.logger.WithFields(map[string]interface{}{
		"rejected":  len(deltas.Reject),
		"confirmed": len(deltas.Confirm),
	}).Info("Registry deltas applied")
	return nil
}

// ClearRejected moves every rejected ticker back to candidate status so
// the next full scan re-evaluates them.
func (r *Repository) ClearRejected(ctx context.Context) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE registry_tickers
		SET status = $1, updated_at = now()
		WHERE status = $2
	`, statusCandidate, statusRejected)
	if err != nil {
		return fmt.Errorf("clear rejected: %w", err)
	}
	r.logger.WithField("restored", tag.RowsAffected()).Info("Rejected tickers cleared")
	return nil
}
