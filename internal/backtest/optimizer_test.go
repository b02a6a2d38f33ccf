package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perpx/arbot/internal/domain"
)

func spreads(vals ...float64) []domain.SpreadPoint {
	out := make([]domain.SpreadPoint, len(vals))
	for i, v := range vals {
		out[i] = domain.SpreadPoint{Timestamp: int64(i), SpreadPct: v}
	}
	return out
}

func TestAlignSpread_InnerJoin(t *testing.T) {
	seriesA := []domain.PricePoint{
		{Timestamp: 1, Price: 100},
		{Timestamp: 2, Price: 100},
		{Timestamp: 3, Price: 0},
		{Timestamp: 4, Price: 100},
	}
	seriesB := []domain.PricePoint{
		{Timestamp: 1, Price: 101},
		{Timestamp: 3, Price: 100},
		{Timestamp: 4, Price: 99},
		{Timestamp: 9, Price: 1},
	}

	aligned := AlignSpread(seriesA, seriesB)
	require.Len(t, aligned, 2, "timestamp 2 has no match, timestamp 3 has a bad reference price")

	assert.Equal(t, int64(1), aligned[0].Timestamp)
	assert.InDelta(t, 1.0, aligned[0].SpreadPct, 1e-9)
	assert.Equal(t, int64(4), aligned[1].Timestamp)
	assert.InDelta(t, 1.0, aligned[1].SpreadPct, 1e-9, "spread is absolute")
}

func TestAlignSpread_EmptyInput(t *testing.T) {
	assert.Nil(t, AlignSpread(nil, []domain.PricePoint{{Timestamp: 1, Price: 1}}))
	assert.Nil(t, AlignSpread([]domain.PricePoint{{Timestamp: 1, Price: 1}}, nil))
}

func TestReplay_SingleRoundTrip(t *testing.T) {
	// Enter at 0.2, converge to 0.05 without ever widening.
	series := spreads(0.05, 0.2, 0.1, 0.05)

	results := Optimize(series, Grid{
		EntryCandidates: []float64{0.1},
		ExitCandidates:  []float64{0.05},
		RoundTripFeePct: 0.15,
	})
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, 1, r.TradeCount)
	assert.InDelta(t, 0.0, r.TotalPnLPct, 1e-9, "0.2 entry - 0.05 exit - 0.15 fee")
	assert.Zero(t, r.MaxAdverseExcursionPct)
	assert.True(t, r.LeverageUnbounded)
	assert.Equal(t, "Max", r.SafeLeverageLabel())
}

func TestReplay_AdverseExcursionAndLeverage(t *testing.T) {
	// Enter at 0.2, widen to 0.3 (excursion 0.1), then converge and exit.
	series := spreads(0.2, 0.3, 0.25, 0.05)

	results := Optimize(series, Grid{
		EntryCandidates: []float64{0.2},
		ExitCandidates:  []float64{0.05},
		RoundTripFeePct: 0.1,
	})
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, 1, r.TradeCount)
	assert.InDelta(t, 0.05, r.TotalPnLPct, 1e-9)
	assert.InDelta(t, 0.1, r.MaxAdverseExcursionPct, 1e-9)
	// 80% of the leverage that a 0.1% excursion would liquidate.
	assert.Equal(t, 800, r.SafeLeverage)
	assert.False(t, r.LeverageUnbounded)
	assert.Equal(t, "800x", r.SafeLeverageLabel())
}

func TestReplay_OpenTradeNotRealized(t *testing.T) {
	series := spreads(0.05, 0.3, 0.2)

	results := Optimize(series, Grid{
		EntryCandidates: []float64{0.25},
		ExitCandidates:  []float64{0.05},
		RoundTripFeePct: 0.1,
	})
	require.Len(t, results, 1)

	r := results[0]
	assert.Zero(t, r.TradeCount)
	assert.Zero(t, r.TotalPnLPct)
}

func TestReplay_EntryTickDoesNotExit(t *testing.T) {
	// The entry observation itself is never also an exit, even when the
	// entry value would satisfy the exit rule on the next tick.
	series := spreads(0.1, 0.1)

	results := Optimize(series, Grid{
		EntryCandidates: []float64{0.1},
		ExitCandidates:  []float64{0.0},
		RoundTripFeePct: 0.0,
	})
	require.Len(t, results, 1)
	assert.Zero(t, results[0].TradeCount)
}

func TestOptimize_ExcludesExitAtOrAboveEntry(t *testing.T) {
	series := spreads(0.05, 0.2, 0.05)

	results := Optimize(series, Grid{
		EntryCandidates: []float64{0.1},
		ExitCandidates:  []float64{0.1, 0.2},
		RoundTripFeePct: 0.0,
	})
	assert.Empty(t, results)

	_, ok := Recommend(results)
	assert.False(t, ok)
}

func TestOptimize_RanksByPnLDescending(t *testing.T) {
	// The looser 0.1 entry catches both convergence moves (0.26 + 0.11);
	// the tighter 0.25 entry only catches the first.
	series := spreads(0.05, 0.3, 0.04, 0.15, 0.04)

	grid := Grid{
		EntryCandidates: []float64{0.1, 0.25},
		ExitCandidates:  []float64{0.05},
		RoundTripFeePct: 0.0,
	}

	results := Optimize(series, grid)
	require.Len(t, results, 2)
	assert.GreaterOrEqual(t, results[0].TotalPnLPct, results[1].TotalPnLPct)
	assert.InDelta(t, 0.1, results[0].EntryThreshold, 1e-9)
	assert.InDelta(t, 0.37, results[0].TotalPnLPct, 1e-9)
	assert.Equal(t, 2, results[0].TradeCount)

	best, ok := Recommend(results)
	require.True(t, ok)
	assert.Equal(t, results[0], best)
}

func TestOptimize_DeterministicAcrossCandidateOrder(t *testing.T) {
	series := spreads(0.05, 0.3, 0.04, 0.2, 0.04, 0.15, 0.03)

	ordered := Grid{
		EntryCandidates: []float64{0.1, 0.15, 0.25},
		ExitCandidates:  []float64{0.0, 0.05},
		RoundTripFeePct: 0.05,
	}
	shuffled := Grid{
		EntryCandidates: []float64{0.25, 0.1, 0.15},
		ExitCandidates:  []float64{0.05, 0.0},
		RoundTripFeePct: 0.05,
	}

	assert.Equal(t, Optimize(series, ordered), Optimize(series, shuffled))
}

func TestOptimize_EmptySeriesYieldsNoResults(t *testing.T) {
	results := Optimize(nil, Grid{
		EntryCandidates: []float64{0.1, 0.2},
		ExitCandidates:  []float64{0.05},
	})
	assert.Empty(t, results, "no data means no ranked candidates")

	_, ok := Recommend(results)
	assert.False(t, ok, "nothing to recommend from an empty series")
}
