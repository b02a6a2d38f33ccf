package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/perpx/arbot/internal/domain"
)

// evaluateConvergenceEntry opens a position when the fee-adjusted absolute
// spread clears the minimum profit threshold. The direction shorts the venue
// the spread points away from: positive spread (B above A) shorts A and
// longs B, negative shorts B and longs A.
func (e *Engine) evaluateConvergenceEntry(ctx context.Context, opp domain.Opportunity) (domain.Position, bool) {
	feesPct := (e.cfg.FeeA + e.cfg.FeeB) * 100
	netSpread := math.Abs(opp.SpreadPct) - feesPct
	if netSpread < e.cfg.MinProfitThreshold {
		return domain.Position{}, false
	}

	dir := domain.DirectionALongBShort
	if opp.SpreadPct > 0 {
		dir = domain.DirectionAShortBLong
	}

	if e.cfg.DepthCheck && e.depth != nil && !e.confirmDepth(ctx, opp.Symbol, dir) {
		return domain.Position{}, false
	}

	msg := fmt.Sprintf("SPREAD ENTRY %s | gross %+.2f%% net %+.2f%% | %s",
		opp.Symbol, opp.SpreadPct, netSpread, dir)
	return e.open(opp.Symbol, domain.StrategyConvergence, dir, opp.SpreadPct, msg), true
}

// confirmDepth re-prices the entry against live book depth at the configured
// notional. The entry stands only if its direction remains profitable after
// simulated slippage and fees; a failed or unavailable simulation rejects
// the entry for this cycle only.
func (e *Engine) confirmDepth(ctx context.Context, symbol string, dir domain.Direction) bool {
	sim, err := e.depth.SimulateSpread(ctx, symbol, e.cfg.NotionalUSD)
	if err != nil {
		e.logger.Warn("depth simulation failed",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()),
		)
		return false
	}
	sc, ok := sim.Scenario(dir)
	if !ok {
		e.logger.Debug("entry direction lacks book depth",
			slog.String("symbol", symbol),
			slog.String("direction", string(dir)),
		)
		return false
	}
	return sc.NetSpreadPct >= e.cfg.MinProfitThreshold
}

// shouldExitConvergence closes once the absolute spread has converged to the
// exit threshold or through it.
func (e *Engine) shouldExitConvergence(opp domain.Opportunity) (bool, string, float64) {
	if math.Abs(opp.SpreadPct) <= e.cfg.ExitThreshold {
		return true, "converged", opp.SpreadPct
	}
	return false, "", 0
}

// EstimatedPnLPct approximates the unrealized gain of an open convergence
// position in spread points: how far the spread has converged since entry.
func EstimatedPnLPct(pos domain.Position, currentSpreadPct float64) float64 {
	if pos.StrategyKind != domain.StrategyConvergence {
		return 0
	}
	return math.Abs(pos.EntryValue) - math.Abs(currentSpreadPct)
}
