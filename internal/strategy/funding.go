package strategy

import (
	"fmt"

	"github.com/perpx/arbot/internal/domain"
)

// fundingIncome returns the net per-period funding income of holding the
// given direction. Shorting venue A receives A's funding and pays B's; the
// mirror direction is the exact negation, a symmetry entry evaluation relies
// on and exit evaluation preserves.
func fundingIncome(dir domain.Direction, fundingA, fundingB float64) float64 {
	if dir == domain.DirectionAShortBLong {
		return fundingA - fundingB
	}
	return fundingB - fundingA
}

// evaluateFundingEntry opens the direction with the greater funding income
// when that income clears the funding threshold. A tie at zero (or anything
// at or below the threshold) opens nothing.
func (e *Engine) evaluateFundingEntry(opp domain.Opportunity) (domain.Position, bool) {
	incomeShortA := fundingIncome(domain.DirectionAShortBLong, opp.VenueAFunding, opp.VenueBFunding)
	incomeShortB := -incomeShortA

	best, dir := incomeShortA, domain.DirectionAShortBLong
	if incomeShortB > best {
		best, dir = incomeShortB, domain.DirectionALongBShort
	}
	if best <= e.cfg.FundingThreshold {
		return domain.Position{}, false
	}

	msg := fmt.Sprintf("FUNDING ENTRY %s | income %+.5f/period | %s", opp.Symbol, best, dir)
	return e.open(opp.Symbol, domain.StrategyFunding, dir, best, msg), true
}

// shouldExitFunding recomputes the income of the position's recorded
// direction (never re-optimized) against current funding rates and closes
// once it is no longer positive.
func (e *Engine) shouldExitFunding(pos domain.Position, opp domain.Opportunity) (bool, string, float64) {
	income := fundingIncome(pos.Direction, opp.VenueAFunding, opp.VenueBFunding)
	if income <= 0 {
		return true, "funding reversed", income
	}
	return false, "", 0
}
