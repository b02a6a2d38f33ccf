package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/perpx/arbot/internal/arbitrage"
	"github.com/perpx/arbot/internal/domain"
)

// bookDepthSimulator implements strategy.DepthSimulator by fetching both
// venues' order books on demand and running the execution cost model.
type bookDepthSimulator struct {
	venueA    domain.QuoteProvider
	venueB    domain.QuoteProvider
	estimator *arbitrage.Estimator
}

func newBookDepthSimulator(venueA, venueB domain.QuoteProvider, estimator *arbitrage.Estimator) *bookDepthSimulator {
	return &bookDepthSimulator{
		venueA:    venueA,
		venueB:    venueB,
		estimator: estimator,
	}
}

// SimulateSpread fetches both books concurrently and simulates the fill in
// both directions. A fetch failure on either venue fails the whole check;
// the caller treats that as "entry not confirmed".
func (s *bookDepthSimulator) SimulateSpread(ctx context.Context, symbol string, notional float64) (arbitrage.SpreadSimulation, error) {
	var bookA, bookB domain.OrderBookSnapshot

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bookA, err = s.venueA.FetchOrderBook(ctx, symbol)
		return err
	})
	g.Go(func() error {
		var err error
		bookB, err = s.venueB.FetchOrderBook(ctx, symbol)
		return err
	})
	if err := g.Wait(); err != nil {
		return arbitrage.SpreadSimulation{}, fmt.Errorf("app: fetch order books for %s: %w", symbol, err)
	}

	return s.estimator.SimulateDirectionalSpread(bookA, bookB, notional), nil
}
