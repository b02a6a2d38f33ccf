package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/perpx/arbot/internal/domain"
)

// BacktestStore implements domain.BacktestStore using PostgreSQL.
type BacktestStore struct {
	pool *pgxpool.Pool
}

// NewBacktestStore creates a BacktestStore backed by the given pool.
func NewBacktestStore(pool *pgxpool.Pool) *BacktestStore {
	return &BacktestStore{pool: pool}
}

// InsertResults persists a full ranked result set for one optimizer run.
// The rank column preserves the optimizer's ordering.
func (s *BacktestStore) InsertResults(ctx context.Context, runID, symbol string, results []domain.BacktestResult) error {
	if len(results) == 0 {
		return nil
	}
	const query = `
		INSERT INTO backtest_results (
			run_id, symbol, rank, entry_threshold, exit_threshold,
			trade_count, total_pnl_pct, max_adverse_pct, safe_leverage, lev_unbounded
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	batch := &pgx.Batch{}
	for i, r := range results {
		batch.Queue(query,
			runID, symbol, i, r.EntryThreshold, r.ExitThreshold,
			r.TradeCount, r.TotalPnLPct, r.MaxAdverseExcursionPct,
			r.SafeLeverage, r.LeverageUnbounded,
		)
	}
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range results {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres: insert backtest results for run %s: %w", runID, err)
		}
	}
	return nil
}

// ListResults returns the stored result set for a run in rank order.
func (s *BacktestStore) ListResults(ctx context.Context, runID string) ([]domain.BacktestResult, error) {
	const query = `
		SELECT entry_threshold, exit_threshold, trade_count,
		       total_pnl_pct, max_adverse_pct, safe_leverage, lev_unbounded
		FROM backtest_results
		WHERE run_id = $1
		ORDER BY rank ASC`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list backtest results for run %s: %w", runID, err)
	}
	defer rows.Close()

	var results []domain.BacktestResult
	for rows.Next() {
		var r domain.BacktestResult
		if err := rows.Scan(
			&r.EntryThreshold, &r.ExitThreshold, &r.TradeCount,
			&r.TotalPnLPct, &r.MaxAdverseExcursionPct,
			&r.SafeLeverage, &r.LeverageUnbounded,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan backtest result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
