package backtest

import (
	"math"
	"sort"

	"github.com/perpx/arbot/internal/domain"
)

// leverageSafetyFactor keeps the recommended leverage at 80% of the level
// that would exactly exhaust margin at the worst observed drawdown.
const leverageSafetyFactor = 0.8

// Grid is the candidate space for the threshold search. Thresholds are
// absolute spread percentages; RoundTripFeePct is the fixed percentage cost
// of one entry+exit round trip.
type Grid struct {
	EntryCandidates []float64
	ExitCandidates  []float64
	RoundTripFeePct float64
}

// Optimize grid-searches every (entry, exit) candidate pair against the
// aligned spread series and returns one result per valid pair, ranked by
// total PnL descending. Pairs where exit >= entry are silently excluded: an
// exit threshold must be strictly tighter than its entry. Candidate lists
// are iterated ascending so that equal-PnL ties rank deterministically.
// An empty series or an all-invalid grid yields an empty result set.
func Optimize(series []domain.SpreadPoint, grid Grid) []domain.BacktestResult {
	if len(series) == 0 {
		return nil
	}

	entries := sortedCopy(grid.EntryCandidates)
	exits := sortedCopy(grid.ExitCandidates)

	var results []domain.BacktestResult
	for _, entry := range entries {
		for _, exit := range exits {
			if exit >= entry {
				continue
			}
			results = append(results, replay(series, entry, exit, grid.RoundTripFeePct))
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TotalPnLPct > results[j].TotalPnLPct
	})
	return results
}

// Recommend returns the top-ranked result: strictly greatest total PnL, ties
// resolved in favor of the earliest candidate pair. It reports false when
// the result set is empty, which callers must treat as "no recommendation
// available" rather than an error.
func Recommend(results []domain.BacktestResult) (domain.BacktestResult, bool) {
	if len(results) == 0 {
		return domain.BacktestResult{}, false
	}
	return results[0], true
}

// replay runs the series once for a single threshold pair. Entries trigger
// at |spread| >= entry; while in a trade the adverse-excursion accumulator
// tracks how far the spread widened past the entry level; exits trigger at
// |spread| <= exit and realize (entry_spread - exit_spread - fee). A trade
// still open when the series ends is not realized and is not counted.
func replay(series []domain.SpreadPoint, entry, exit, fee float64) domain.BacktestResult {
	res := domain.BacktestResult{EntryThreshold: entry, ExitThreshold: exit}

	inTrade := false
	var entrySpread, maxAdverse float64

	for _, p := range series {
		v := math.Abs(p.SpreadPct)
		if !inTrade {
			if v >= entry {
				inTrade = true
				entrySpread = v
				maxAdverse = 0
			}
			continue
		}

		if dd := v - entrySpread; dd > maxAdverse {
			maxAdverse = dd
		}
		if v <= exit {
			inTrade = false
			res.TotalPnLPct += (entrySpread - v) - fee
			res.TradeCount++
		}
	}

	res.MaxAdverseExcursionPct = maxAdverse
	if maxAdverse > 0 {
		res.SafeLeverage = int(leverageSafetyFactor * (1 / (maxAdverse / 100)))
	} else {
		res.LeverageUnbounded = true
	}
	return res
}

func sortedCopy(vals []float64) []float64 {
	out := make([]float64, len(vals))
	copy(out, vals)
	sort.Float64s(out)
	return out
}
