package domain

import "strconv"

// SpreadPoint is one aligned observation of the absolute cross-venue spread,
// expressed as a percentage of the reference venue's price.
type SpreadPoint struct {
	Timestamp int64
	SpreadPct float64
}

// BacktestResult is the outcome of replaying the spread series with one
// (entry, exit) threshold pair. Results are never mutated after creation.
type BacktestResult struct {
	EntryThreshold         float64
	ExitThreshold          float64
	TradeCount             int
	TotalPnLPct            float64
	MaxAdverseExcursionPct float64

	// SafeLeverage is 80% of the leverage that would exactly exhaust margin
	// at the worst observed adverse excursion. When LeverageUnbounded is set
	// the spread never moved against the position and SafeLeverage is
	// meaningless; callers must special-case it.
	SafeLeverage      int
	LeverageUnbounded bool
}

// SafeLeverageLabel renders the leverage recommendation for display.
func (r BacktestResult) SafeLeverageLabel() string {
	if r.LeverageUnbounded {
		return "Max"
	}
	return strconv.Itoa(r.SafeLeverage) + "x"
}
