// Package strategy implements the per-symbol position state machine. Each
// tracked symbol moves NO_POSITION -> OPEN -> NO_POSITION under the rules of
// its configured strategy kind; the engine owns the position map and the
// trade log and is only ever driven from the single-threaded decision phase
// of the scan loop.
package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/perpx/arbot/internal/arbitrage"
	"github.com/perpx/arbot/internal/domain"
)

// DepthSimulator provides order-book-aware sizing for entry confirmation.
// Implementations fetch both venues' books on demand and run the execution
// cost model at the configured notional.
type DepthSimulator interface {
	SimulateSpread(ctx context.Context, symbol string, notional float64) (arbitrage.SpreadSimulation, error)
}

// Config holds the strategy parameters. Validation of threshold ordering
// (exit strictly below entry) happens at configuration load time, not here.
type Config struct {
	// StrategyMap assigns a strategy kind per symbol. Symbols not present
	// default to convergence.
	StrategyMap map[string]domain.StrategyKind

	// FeeA and FeeB are per-venue taker fees as fractions.
	FeeA float64
	FeeB float64

	// MinProfitThreshold is the minimum fee-adjusted spread percentage for a
	// convergence entry.
	MinProfitThreshold float64

	// FundingThreshold is the minimum per-period funding income for a
	// funding entry. Deliberately smaller than the convergence threshold:
	// funding income compounds over many periods.
	FundingThreshold float64

	// ExitThreshold is the absolute spread percentage at or below which a
	// convergence position is considered converged.
	ExitThreshold float64

	// NotionalUSD is the simulated trade size used for depth confirmation.
	NotionalUSD float64

	// DepthCheck gates convergence entries on the execution cost model: the
	// entry direction must remain profitable after simulated slippage.
	DepthCheck bool

	// LogLimit bounds the trade log ring; 0 uses the domain default.
	LogLimit int
}

// CycleResult reports the position transitions of one evaluation cycle.
type CycleResult struct {
	Opened []domain.Position
	Closed []domain.ClosedTrade
}

// Engine evaluates entries and exits each cycle and mutates the position set
// accordingly. Exactly one position may exist per symbol at any time.
type Engine struct {
	cfg       Config
	depth     DepthSimulator // nil disables depth confirmation
	positions map[string]domain.Position
	log       *domain.TradeLog
	logger    *slog.Logger
}

// NewEngine creates an Engine with an empty position set.
func NewEngine(cfg Config, depth DepthSimulator, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		depth:     depth,
		positions: make(map[string]domain.Position),
		log:       domain.NewTradeLog(cfg.LogLimit),
		logger:    logger.With(slog.String("component", "strategy_engine")),
	}
}

// Evaluate runs one decision cycle over the detector's opportunity set:
// entries first, then exits. Exits are checked against the position set as it
// existed at the start of the cycle, so a symbol never opens and closes (or
// closes and reopens) within the same tick.
func (e *Engine) Evaluate(ctx context.Context, opps []domain.Opportunity) CycleResult {
	var res CycleResult

	// Positions that existed before any entry this cycle; only these are
	// candidates for exit below.
	startSet := make(map[string]domain.Position, len(e.positions))
	for sym, pos := range e.positions {
		startSet[sym] = pos
	}

	for _, opp := range opps {
		if _, open := e.positions[opp.Symbol]; open {
			continue
		}
		pos, opened := e.evaluateEntry(ctx, opp)
		if !opened {
			continue
		}
		e.positions[pos.Symbol] = pos
		res.Opened = append(res.Opened, pos)
	}

	bySymbol := make(map[string]domain.Opportunity, len(opps))
	for _, opp := range opps {
		bySymbol[opp.Symbol] = opp
	}

	for sym, pos := range startSet {
		opp, ok := bySymbol[sym]
		if !ok || !opp.Available() {
			// Never close on missing data; retry next cycle.
			continue
		}
		closed, reason, exitValue := e.shouldExit(pos, opp)
		if !closed {
			continue
		}
		res.Closed = append(res.Closed, e.close(pos, reason, exitValue))
	}
	return res
}

func (e *Engine) evaluateEntry(ctx context.Context, opp domain.Opportunity) (domain.Position, bool) {
	switch e.kindFor(opp.Symbol) {
	case domain.StrategyFunding:
		return e.evaluateFundingEntry(opp)
	default:
		return e.evaluateConvergenceEntry(ctx, opp)
	}
}

func (e *Engine) shouldExit(pos domain.Position, opp domain.Opportunity) (bool, string, float64) {
	switch pos.StrategyKind {
	case domain.StrategyFunding:
		return e.shouldExitFunding(pos, opp)
	default:
		return e.shouldExitConvergence(opp)
	}
}

func (e *Engine) close(pos domain.Position, reason string, exitValue float64) domain.ClosedTrade {
	delete(e.positions, pos.Symbol)
	now := time.Now().UTC()
	e.log.Append(now, fmt.Sprintf("CLOSE %s | %s", pos.Symbol, reason))
	e.logger.Info("position closed",
		slog.String("symbol", pos.Symbol),
		slog.String("reason", reason),
		slog.Float64("entry_value", pos.EntryValue),
		slog.Float64("exit_value", exitValue),
	)
	return domain.ClosedTrade{
		PositionID:   pos.ID,
		Symbol:       pos.Symbol,
		StrategyKind: pos.StrategyKind,
		Direction:    pos.Direction,
		EntryValue:   pos.EntryValue,
		ExitValue:    exitValue,
		Reason:       reason,
		OpenedAt:     pos.OpenedAt,
		ClosedAt:     now,
	}
}

func (e *Engine) open(symbol string, kind domain.StrategyKind, dir domain.Direction, entryValue float64, logMsg string) domain.Position {
	pos := domain.Position{
		ID:           uuid.NewString(),
		Symbol:       symbol,
		StrategyKind: kind,
		Direction:    dir,
		EntryValue:   entryValue,
		Status:       domain.PositionStatusOpen,
		OpenedAt:     time.Now().UTC(),
	}
	e.log.Append(pos.OpenedAt, logMsg)
	e.logger.Info("position opened",
		slog.String("symbol", symbol),
		slog.String("strategy", string(kind)),
		slog.String("direction", string(dir)),
		slog.Float64("entry_value", entryValue),
	)
	return pos
}

func (e *Engine) kindFor(symbol string) domain.StrategyKind {
	if kind, ok := e.cfg.StrategyMap[symbol]; ok {
		return kind
	}
	return domain.StrategyConvergence
}

// Positions returns a copy of the current position map.
func (e *Engine) Positions() map[string]domain.Position {
	out := make(map[string]domain.Position, len(e.positions))
	for sym, pos := range e.positions {
		out[sym] = pos
	}
	return out
}

// LogTail returns up to n most recent trade log entries, oldest first.
func (e *Engine) LogTail(n int) []domain.TradeLogEntry {
	return e.log.Tail(n)
}
