package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/perpx/arbot/internal/domain"
)

// TradeHistoryStore implements domain.TradeHistoryStore using PostgreSQL.
type TradeHistoryStore struct {
	pool *pgxpool.Pool
}

// NewTradeHistoryStore creates a TradeHistoryStore backed by the given pool.
func NewTradeHistoryStore(pool *pgxpool.Pool) *TradeHistoryStore {
	return &TradeHistoryStore{pool: pool}
}

// InsertClosedTrade records one completed round trip. Re-inserting the same
// position ID is a no-op, which makes retried writes safe.
func (s *TradeHistoryStore) InsertClosedTrade(ctx context.Context, t domain.ClosedTrade) error {
	const query = `
		INSERT INTO closed_trades (
			position_id, symbol, strategy_kind, direction,
			entry_value, exit_value, reason, opened_at, closed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (position_id) DO NOTHING`

	_, err := s.pool.Exec(ctx, query,
		t.PositionID, t.Symbol, string(t.StrategyKind), string(t.Direction),
		t.EntryValue, t.ExitValue, t.Reason, t.OpenedAt, t.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert closed trade %s: %w", t.PositionID, err)
	}
	return nil
}

// ListRecentTrades returns up to limit trades, most recently closed first.
func (s *TradeHistoryStore) ListRecentTrades(ctx context.Context, limit int) ([]domain.ClosedTrade, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT position_id, symbol, strategy_kind, direction,
		       entry_value, exit_value, reason, opened_at, closed_at
		FROM closed_trades
		ORDER BY closed_at DESC
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent trades: %w", err)
	}
	defer rows.Close()

	return scanClosedTrades(rows)
}

func scanClosedTrades(rows pgx.Rows) ([]domain.ClosedTrade, error) {
	var trades []domain.ClosedTrade
	for rows.Next() {
		var t domain.ClosedTrade
		var kind, dir string
		if err := rows.Scan(
			&t.PositionID, &t.Symbol, &kind, &dir,
			&t.EntryValue, &t.ExitValue, &t.Reason, &t.OpenedAt, &t.ClosedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan closed trade: %w", err)
		}
		t.StrategyKind = domain.StrategyKind(kind)
		t.Direction = domain.Direction(dir)
		trades = append(trades, t)
	}
	return trades, rows.Err()
}
