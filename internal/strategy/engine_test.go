package strategy

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perpx/arbot/internal/arbitrage"
	"github.com/perpx/arbot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() Config {
	return Config{
		StrategyMap: map[string]domain.StrategyKind{
			"HYPE": domain.StrategyConvergence,
			"PAXG": domain.StrategyFunding,
		},
		MinProfitThreshold: 0.01,
		FundingThreshold:   0.001,
		ExitThreshold:      0.0,
		NotionalUSD:        10,
	}
}

func convergenceOpp(symbol string, spreadPct float64) domain.Opportunity {
	return domain.Opportunity{
		Symbol:      symbol,
		SpreadPct:   spreadPct,
		VenueAPrice: 100,
		VenueBPrice: 100 * (1 + spreadPct/100),
	}
}

func fundingOpp(symbol string, fundingA, fundingB float64) domain.Opportunity {
	return domain.Opportunity{
		Symbol:        symbol,
		VenueAPrice:   100,
		VenueBPrice:   100,
		VenueAFunding: fundingA,
		VenueBFunding: fundingB,
		FundingDiff:   fundingA - fundingB,
	}
}

func TestConvergenceRoundTrip(t *testing.T) {
	e := NewEngine(testConfig(), nil, testLogger())
	ctx := context.Background()

	res := e.Evaluate(ctx, []domain.Opportunity{convergenceOpp("HYPE", 1.0)})
	require.Len(t, res.Opened, 1)
	assert.Empty(t, res.Closed)

	pos := res.Opened[0]
	assert.Equal(t, "HYPE", pos.Symbol)
	assert.Equal(t, domain.StrategyConvergence, pos.StrategyKind)
	assert.Equal(t, domain.DirectionAShortBLong, pos.Direction, "positive spread shorts the venue the spread points away from")
	assert.InDelta(t, 1.0, pos.EntryValue, 1e-9)
	assert.NotEmpty(t, pos.ID)
	require.Len(t, e.Positions(), 1)

	res = e.Evaluate(ctx, []domain.Opportunity{convergenceOpp("HYPE", 0.0)})
	require.Len(t, res.Closed, 1)
	assert.Empty(t, res.Opened)

	trade := res.Closed[0]
	assert.Equal(t, pos.ID, trade.PositionID)
	assert.Equal(t, "converged", trade.Reason)
	assert.InDelta(t, 1.0, trade.EntryValue, 1e-9)
	assert.Zero(t, trade.ExitValue)
	assert.Empty(t, e.Positions())
}

func TestConvergenceNegativeSpreadDirection(t *testing.T) {
	e := NewEngine(testConfig(), nil, testLogger())

	res := e.Evaluate(context.Background(), []domain.Opportunity{convergenceOpp("HYPE", -0.8)})
	require.Len(t, res.Opened, 1)
	assert.Equal(t, domain.DirectionALongBShort, res.Opened[0].Direction)
}

func TestConvergenceFeesGateEntry(t *testing.T) {
	cfg := testConfig()
	cfg.FeeA = 0.00025
	cfg.FeeB = 0.0003
	e := NewEngine(cfg, nil, testLogger())

	// Gross 0.06% minus 0.055% of fees leaves 0.005%, below the threshold.
	res := e.Evaluate(context.Background(), []domain.Opportunity{convergenceOpp("HYPE", 0.06)})
	assert.Empty(t, res.Opened)

	// Gross 0.07% nets 0.015%, above it.
	res = e.Evaluate(context.Background(), []domain.Opportunity{convergenceOpp("HYPE", 0.07)})
	assert.Len(t, res.Opened, 1)
}

func TestOnePositionPerSymbol(t *testing.T) {
	e := NewEngine(testConfig(), nil, testLogger())
	ctx := context.Background()

	res := e.Evaluate(ctx, []domain.Opportunity{convergenceOpp("HYPE", 1.0)})
	require.Len(t, res.Opened, 1)

	// Still diverged: no second entry while the position is open.
	res = e.Evaluate(ctx, []domain.Opportunity{convergenceOpp("HYPE", 2.0)})
	assert.Empty(t, res.Opened)
	assert.Len(t, e.Positions(), 1)
}

func TestPositionOpenedThisCycleNotClosedThisCycle(t *testing.T) {
	e := NewEngine(testConfig(), nil, testLogger())
	ctx := context.Background()

	res := e.Evaluate(ctx, []domain.Opportunity{convergenceOpp("HYPE", 1.0)})
	require.Len(t, res.Opened, 1)
	require.Empty(t, res.Closed)

	// The position exists at the start of the next cycle and can close then.
	res = e.Evaluate(ctx, []domain.Opportunity{convergenceOpp("HYPE", 0.0)})
	require.Len(t, res.Closed, 1)

	// Re-entry after a close waits for the following cycle too: this cycle's
	// close leaves the symbol flat until the next evaluation.
	res = e.Evaluate(ctx, []domain.Opportunity{convergenceOpp("HYPE", 1.5)})
	assert.Len(t, res.Opened, 1)
	assert.Empty(t, res.Closed)
}

func TestUnavailableOpportunitySkipsExit(t *testing.T) {
	e := NewEngine(testConfig(), nil, testLogger())
	ctx := context.Background()

	res := e.Evaluate(ctx, []domain.Opportunity{convergenceOpp("HYPE", 1.0)})
	require.Len(t, res.Opened, 1)

	stale := domain.Opportunity{Symbol: "HYPE", Tags: []string{domain.TagUnavailable}}
	res = e.Evaluate(ctx, []domain.Opportunity{stale})
	assert.Empty(t, res.Closed, "never close on missing data")
	assert.Len(t, e.Positions(), 1)

	// Symbol absent from the cycle entirely behaves the same.
	res = e.Evaluate(ctx, nil)
	assert.Empty(t, res.Closed)
	assert.Len(t, e.Positions(), 1)
}

func TestFundingEntrySymmetry(t *testing.T) {
	e := NewEngine(testConfig(), nil, testLogger())
	ctx := context.Background()

	// A pays 0.002, B pays 0.0005: shorting A earns the difference.
	res := e.Evaluate(ctx, []domain.Opportunity{fundingOpp("PAXG", 0.002, 0.0005)})
	require.Len(t, res.Opened, 1)
	pos := res.Opened[0]
	assert.Equal(t, domain.StrategyFunding, pos.StrategyKind)
	assert.Equal(t, domain.DirectionAShortBLong, pos.Direction)
	assert.InDelta(t, 0.0015, pos.EntryValue, 1e-12)
}

func TestFundingEntryMirrorDirection(t *testing.T) {
	e := NewEngine(testConfig(), nil, testLogger())

	res := e.Evaluate(context.Background(), []domain.Opportunity{fundingOpp("PAXG", -0.002, 0.001)})
	require.Len(t, res.Opened, 1)
	pos := res.Opened[0]
	assert.Equal(t, domain.DirectionALongBShort, pos.Direction)
	assert.InDelta(t, 0.003, pos.EntryValue, 1e-12)
}

func TestFundingEntryThresholdIsExclusive(t *testing.T) {
	e := NewEngine(testConfig(), nil, testLogger())

	// Income exactly at the threshold opens nothing.
	res := e.Evaluate(context.Background(), []domain.Opportunity{fundingOpp("PAXG", 0.001, 0)})
	assert.Empty(t, res.Opened)
}

func TestFundingExitOnReversal(t *testing.T) {
	e := NewEngine(testConfig(), nil, testLogger())
	ctx := context.Background()

	res := e.Evaluate(ctx, []domain.Opportunity{fundingOpp("PAXG", 0.002, 0.0005)})
	require.Len(t, res.Opened, 1)

	// Still positive income: hold.
	res = e.Evaluate(ctx, []domain.Opportunity{fundingOpp("PAXG", 0.001, 0.0005)})
	assert.Empty(t, res.Closed)

	// Income of the recorded direction goes non-positive: close.
	res = e.Evaluate(ctx, []domain.Opportunity{fundingOpp("PAXG", 0.0001, 0.0005)})
	require.Len(t, res.Closed, 1)
	trade := res.Closed[0]
	assert.Equal(t, "funding reversed", trade.Reason)
	assert.InDelta(t, -0.0004, trade.ExitValue, 1e-12)
}

// fakeDepth returns a canned simulation for every symbol.
type fakeDepth struct {
	sim arbitrage.SpreadSimulation
	err error
}

func (f *fakeDepth) SimulateSpread(ctx context.Context, symbol string, notional float64) (arbitrage.SpreadSimulation, error) {
	return f.sim, f.err
}

func depthSim(dir domain.Direction, netSpreadPct float64) arbitrage.SpreadSimulation {
	return arbitrage.SpreadSimulation{
		Scenarios: map[domain.Direction]arbitrage.DirectionalScenario{
			dir: {Direction: dir, NetSpreadPct: netSpreadPct},
		},
	}
}

func TestDepthCheckConfirmsEntry(t *testing.T) {
	cfg := testConfig()
	cfg.DepthCheck = true

	t.Run("profitable at depth", func(t *testing.T) {
		depth := &fakeDepth{sim: depthSim(domain.DirectionAShortBLong, 0.5)}
		e := NewEngine(cfg, depth, testLogger())
		res := e.Evaluate(context.Background(), []domain.Opportunity{convergenceOpp("HYPE", 1.0)})
		assert.Len(t, res.Opened, 1)
	})

	t.Run("slippage eats the edge", func(t *testing.T) {
		depth := &fakeDepth{sim: depthSim(domain.DirectionAShortBLong, 0.001)}
		e := NewEngine(cfg, depth, testLogger())
		res := e.Evaluate(context.Background(), []domain.Opportunity{convergenceOpp("HYPE", 1.0)})
		assert.Empty(t, res.Opened)
	})

	t.Run("entry direction lacks depth", func(t *testing.T) {
		depth := &fakeDepth{sim: depthSim(domain.DirectionALongBShort, 0.5)}
		e := NewEngine(cfg, depth, testLogger())
		res := e.Evaluate(context.Background(), []domain.Opportunity{convergenceOpp("HYPE", 1.0)})
		assert.Empty(t, res.Opened)
	})

	t.Run("simulation failure rejects entry", func(t *testing.T) {
		depth := &fakeDepth{err: errors.New("books unavailable")}
		e := NewEngine(cfg, depth, testLogger())
		res := e.Evaluate(context.Background(), []domain.Opportunity{convergenceOpp("HYPE", 1.0)})
		assert.Empty(t, res.Opened)
	})
}

func TestTradeLogBounded(t *testing.T) {
	cfg := testConfig()
	cfg.LogLimit = 4
	e := NewEngine(cfg, nil, testLogger())
	ctx := context.Background()

	// Each round trip appends two log lines.
	for i := 0; i < 5; i++ {
		res := e.Evaluate(ctx, []domain.Opportunity{convergenceOpp("HYPE", 1.0)})
		require.Len(t, res.Opened, 1)
		res = e.Evaluate(ctx, []domain.Opportunity{convergenceOpp("HYPE", 0.0)})
		require.Len(t, res.Closed, 1)
	}

	tail := e.LogTail(0)
	require.Len(t, tail, 4)
	for i := 1; i < len(tail); i++ {
		assert.False(t, tail[i].Timestamp.Before(tail[i-1].Timestamp), "tail is oldest first")
	}
}

func TestEstimatedPnLPct(t *testing.T) {
	pos := domain.Position{StrategyKind: domain.StrategyConvergence, EntryValue: -1.2}
	assert.InDelta(t, 0.9, EstimatedPnLPct(pos, -0.3), 1e-9)

	funding := domain.Position{StrategyKind: domain.StrategyFunding, EntryValue: 0.002}
	assert.Zero(t, EstimatedPnLPct(funding, 0.5))
}
