// Package arbitrage implements the opportunity detection and execution cost
// model: quote-only spread/funding divergence per tracked symbol, and
// volume-weighted fill simulation against live order book depth.
package arbitrage

import (
	"fmt"

	"github.com/perpx/arbot/internal/domain"
)

const (
	// fillEpsilon is the residual notional below which a fill is considered
	// complete; it absorbs float accumulation noise while walking levels.
	fillEpsilon = 1e-4

	// materialityThreshold is the residual notional (in quote currency) above
	// which an unfilled walk is reported as insufficient liquidity rather
	// than rounded away.
	materialityThreshold = 1.0
)

// EstimatorConfig holds the per-venue taker fees used by the directional
// spread simulation. Fees are fractions (0.00025 == 0.025%).
type EstimatorConfig struct {
	FeeA float64
	FeeB float64
}

// Estimator computes realizable fill prices against book depth. It is
// stateless and independent of any strategy.
type Estimator struct {
	cfg EstimatorConfig
}

// NewEstimator creates an Estimator with the given fee configuration.
func NewEstimator(cfg EstimatorConfig) *Estimator {
	return &Estimator{cfg: cfg}
}

// FillPrice walks one side of a book best-price-first and returns the
// volume-weighted price achieved filling the requested notional (quote
// currency). It returns domain.ErrInsufficientLiquidity when visible depth
// cannot absorb the notional to within the materiality threshold. An empty
// book with nothing to fill yields a zero price and no error: a degenerate
// but valid no-op, distinct from insufficient liquidity.
func FillPrice(levels []domain.PriceLevel, notional float64) (float64, error) {
	remaining := notional
	var totalQty, weightedSum float64

	for _, lvl := range levels {
		if lvl.Price <= 0 || lvl.Size <= 0 {
			continue
		}
		levelNotional := lvl.Price * lvl.Size
		take := remaining
		if levelNotional < take {
			take = levelNotional
		}
		qty := take / lvl.Price
		weightedSum += lvl.Price * qty
		totalQty += qty
		remaining -= take
		if remaining <= fillEpsilon {
			break
		}
	}

	if remaining > materialityThreshold {
		return 0, fmt.Errorf("fill %.2f of %.2f notional: %w", notional-remaining, notional, domain.ErrInsufficientLiquidity)
	}
	if totalQty == 0 {
		return 0, nil
	}
	return weightedSum / totalQty, nil
}

// DirectionalScenario is the simulated outcome of executing one direction of
// the arbitrage pair against both books.
type DirectionalScenario struct {
	Direction domain.Direction

	// NetSpreadPct is the fee-adjusted price gap as a percentage of the
	// long-side fill price.
	NetSpreadPct float64

	// EntryA and EntryB are the volume-weighted fill prices on each venue.
	EntryA float64
	EntryB float64
}

// SpreadSimulation holds the per-direction scenarios for one notional size.
// A direction whose fills cannot be realized at this size is simply absent;
// the mirror direction may still be valid.
type SpreadSimulation struct {
	Scenarios map[domain.Direction]DirectionalScenario
}

// Scenario returns the simulated scenario for a direction, if available.
func (s SpreadSimulation) Scenario(dir domain.Direction) (DirectionalScenario, bool) {
	sc, ok := s.Scenarios[dir]
	return sc, ok
}

// SimulateDirectionalSpread computes both directional scenarios for the given
// notional: short A / long B (sell into A's bids, buy from B's asks) and the
// mirror. Round-trip taker fees are deducted as a fraction of the long-side
// fill price before normalizing the gap to a percentage of that same price.
func (e *Estimator) SimulateDirectionalSpread(bookA, bookB domain.OrderBookSnapshot, notional float64) SpreadSimulation {
	sim := SpreadSimulation{Scenarios: make(map[domain.Direction]DirectionalScenario, 2)}
	feeFrac := e.cfg.FeeA + e.cfg.FeeB

	// Short A / long B: sell into A bids, buy from B asks.
	if shortFill, longFill, ok := fillPair(bookA.Bids, bookB.Asks, notional); ok {
		sim.Scenarios[domain.DirectionAShortBLong] = scenario(domain.DirectionAShortBLong, shortFill, longFill, shortFill, longFill, feeFrac)
	}

	// Short B / long A: sell into B bids, buy from A asks.
	if shortFill, longFill, ok := fillPair(bookB.Bids, bookA.Asks, notional); ok {
		sim.Scenarios[domain.DirectionALongBShort] = scenario(domain.DirectionALongBShort, shortFill, longFill, longFill, shortFill, feeFrac)
	}
	return sim
}

func fillPair(shortSide, longSide []domain.PriceLevel, notional float64) (shortFill, longFill float64, ok bool) {
	shortFill, err := FillPrice(shortSide, notional)
	if err != nil || shortFill <= 0 {
		return 0, 0, false
	}
	longFill, err = FillPrice(longSide, notional)
	if err != nil || longFill <= 0 {
		return 0, 0, false
	}
	return shortFill, longFill, true
}

func scenario(dir domain.Direction, shortFill, longFill, entryA, entryB, feeFrac float64) DirectionalScenario {
	gross := shortFill - longFill
	net := gross - longFill*feeFrac
	return DirectionalScenario{
		Direction:    dir,
		NetSpreadPct: net / longFill * 100,
		EntryA:       entryA,
		EntryB:       entryB,
	}
}
