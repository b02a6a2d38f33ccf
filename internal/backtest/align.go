// Package backtest replays historical cross-venue spread series to calibrate
// entry/exit thresholds and bound safe leverage. It shares the convergence
// decision rule with the live strategy engine conceptually, but none of its
// runtime state: the optimizer is a single-pass computation over a static,
// time-aligned input series.
package backtest

import (
	"math"

	"github.com/perpx/arbot/internal/domain"
)

// AlignSpread inner-joins two close-price series on timestamp and returns the
// absolute spread of B against A as a percentage of A's price, ordered by
// series A's timestamps. Timestamps present on only one venue are dropped;
// gaps in either feed are tolerated this way rather than interpolated.
// Points with a non-positive reference price are skipped.
func AlignSpread(seriesA, seriesB []domain.PricePoint) []domain.SpreadPoint {
	if len(seriesA) == 0 || len(seriesB) == 0 {
		return nil
	}
	byTS := make(map[int64]float64, len(seriesB))
	for _, p := range seriesB {
		byTS[p.Timestamp] = p.Price
	}

	out := make([]domain.SpreadPoint, 0, len(seriesA))
	for _, pa := range seriesA {
		pb, ok := byTS[pa.Timestamp]
		if !ok || pa.Price <= 0 {
			continue
		}
		out = append(out, domain.SpreadPoint{
			Timestamp: pa.Timestamp,
			SpreadPct: math.Abs(pb-pa.Price) / pa.Price * 100,
		})
	}
	return out
}
