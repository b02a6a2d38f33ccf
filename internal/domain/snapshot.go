package domain

import (
	"context"
	"time"
)

// CycleSnapshot is the per-cycle view exposed to presentation and automation
// layers: the full ordered opportunity set, the current position map, and the
// trade log tail. It is a value copy; mutating it has no effect on the engine.
type CycleSnapshot struct {
	At            time.Time
	Opportunities []Opportunity
	Positions     map[string]Position
	LogTail       []TradeLogEntry
}

// SnapshotCache publishes the latest cycle snapshot for out-of-process
// consumers (dashboards, automation).
type SnapshotCache interface {
	SetSnapshot(ctx context.Context, snap CycleSnapshot) error
	GetSnapshot(ctx context.Context) (CycleSnapshot, error)
}

// TradeHistoryStore persists closed trades. Live positions are deliberately
// not persisted; only the observational record of completed round trips is.
type TradeHistoryStore interface {
	InsertClosedTrade(ctx context.Context, trade ClosedTrade) error
	ListRecentTrades(ctx context.Context, limit int) ([]ClosedTrade, error)
}

// BacktestStore persists ranked optimizer output for later comparison.
type BacktestStore interface {
	InsertResults(ctx context.Context, runID, symbol string, results []BacktestResult) error
	ListResults(ctx context.Context, runID string) ([]BacktestResult, error)
}
