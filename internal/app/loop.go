package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/perpx/arbot/internal/arbitrage"
	"github.com/perpx/arbot/internal/config"
	"github.com/perpx/arbot/internal/domain"
	"github.com/perpx/arbot/internal/notify"
	"github.com/perpx/arbot/internal/strategy"
)

// persistTimeout bounds the best-effort writes at the end of each cycle so a
// slow store can never stall the tick cadence.
const persistTimeout = 2 * time.Second

// Loop runs the scan cycle: fetch quotes from both venues, detect
// opportunities, evaluate the strategy engine, and publish the results.
type Loop struct {
	cfg      *config.Config
	detector *arbitrage.Detector
	engine   *strategy.Engine
	deps     *Dependencies
	logger   *slog.Logger
}

// NewLoop builds the scan loop around already-wired dependencies.
func NewLoop(cfg *config.Config, deps *Dependencies, logger *slog.Logger) *Loop {
	estimator := arbitrage.NewEstimator(arbitrage.EstimatorConfig{
		FeeA: cfg.Hyperliquid.TakerFee,
		FeeB: cfg.Paradex.TakerFee,
	})

	var depth strategy.DepthSimulator
	if cfg.Trading.DepthCheck {
		depth = newBookDepthSimulator(deps.VenueA, deps.VenueB, estimator)
	}

	engine := strategy.NewEngine(strategy.Config{
		StrategyMap:        cfg.StrategyKinds(),
		FeeA:               cfg.Hyperliquid.TakerFee,
		FeeB:               cfg.Paradex.TakerFee,
		MinProfitThreshold: cfg.Trading.MinProfitThreshold,
		FundingThreshold:   cfg.Trading.FundingThreshold,
		ExitThreshold:      cfg.Trading.ExitThreshold,
		NotionalUSD:        cfg.Trading.NotionalUSD,
		DepthCheck:         cfg.Trading.DepthCheck,
		LogLimit:           cfg.Trading.TradeLogLimit,
	}, depth, logger)

	detector := arbitrage.NewDetector(arbitrage.DetectorConfig{
		Symbols:             cfg.Symbols,
		SpreadTagThreshold:  cfg.Trading.SpreadTagThreshold,
		FundingTagThreshold: cfg.Trading.FundingTagThreshold,
	}, logger)

	return &Loop{
		cfg:      cfg,
		detector: detector,
		engine:   engine,
		deps:     deps,
		logger:   logger.With(slog.String("component", "scan_loop")),
	}
}

// Run ticks at the configured interval until the context is cancelled. A
// failed cycle is logged and the next tick proceeds; only context
// cancellation stops the loop.
func (l *Loop) Run(ctx context.Context) error {
	interval := l.cfg.Trading.TickInterval.Duration
	l.logger.InfoContext(ctx, "scan loop starting",
		slog.Duration("interval", interval),
		slog.Any("symbols", l.cfg.Symbols),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.InfoContext(ctx, "scan loop stopping")
			return ctx.Err()
		case <-ticker.C:
			l.tick(ctx)
		}
	}
}

// tick runs one full scan cycle.
func (l *Loop) tick(ctx context.Context) {
	quotesA, quotesB := l.fetchQuotes(ctx)
	l.overlayStreamedMids(quotesA)

	opps := l.detector.Detect(quotesA, quotesB)
	result := l.engine.Evaluate(ctx, opps)

	l.publish(ctx, opps, result)
}

// fetchQuotes polls both venues concurrently. A failure on one venue yields a
// nil quote map for it; the detector then emits neutral unavailable records
// for every symbol rather than aborting the cycle.
func (l *Loop) fetchQuotes(ctx context.Context) (quotesA, quotesB map[string]domain.VenueQuote) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		q, err := l.deps.VenueA.FetchQuotes(gctx, l.cfg.Symbols)
		if err != nil {
			l.warnVenue(gctx, l.deps.VenueA.Name(), err)
			return nil
		}
		quotesA = q
		return nil
	})
	g.Go(func() error {
		q, err := l.deps.VenueB.FetchQuotes(gctx, l.cfg.Symbols)
		if err != nil {
			l.warnVenue(gctx, l.deps.VenueB.Name(), err)
			return nil
		}
		quotesB = q
		return nil
	})
	_ = g.Wait()
	return quotesA, quotesB
}

func (l *Loop) warnVenue(ctx context.Context, venue string, err error) {
	l.logger.WarnContext(ctx, "venue quote fetch failed",
		slog.String("venue", venue),
		slog.String("error", err.Error()),
	)
	_ = l.deps.Notifier.Notify(ctx, notify.EventVenueDown,
		fmt.Sprintf("Venue %s unreachable", venue), err.Error())
}

// overlayStreamedMids replaces polled venue A prices with fresher websocket
// mids where the feed has them.
func (l *Loop) overlayStreamedMids(quotesA map[string]domain.VenueQuote) {
	if l.deps.MidFeed == nil {
		return
	}
	for sym, q := range quotesA {
		if mid, ok := l.deps.MidFeed.Mid(sym); ok {
			q.Price = mid
			quotesA[sym] = q
		}
	}
}

// publish persists closed trades, sends notifications, and pushes the cycle
// snapshot to the in-memory holder and the Redis cache. Everything here is
// best-effort; the next cycle proceeds regardless.
func (l *Loop) publish(ctx context.Context, opps []domain.Opportunity, result strategy.CycleResult) {
	for _, pos := range result.Opened {
		_ = l.deps.Notifier.Notify(ctx, notify.EventPositionOpened,
			fmt.Sprintf("Opened %s %s", pos.Symbol, pos.StrategyKind),
			fmt.Sprintf("direction=%s entry=%.4f", pos.Direction, pos.EntryValue))
	}

	for _, trade := range result.Closed {
		pnl := strategy.EstimatedPnLPct(domain.Position{
			StrategyKind: trade.StrategyKind,
			EntryValue:   trade.EntryValue,
		}, trade.ExitValue)
		_ = l.deps.Notifier.Notify(ctx, notify.EventPositionClosed,
			fmt.Sprintf("Closed %s %s", trade.Symbol, trade.StrategyKind),
			fmt.Sprintf("reason=%s entry=%.4f exit=%.4f est_pnl=%.4f%%",
				trade.Reason, trade.EntryValue, trade.ExitValue, pnl))

		if l.deps.TradeHistory != nil {
			pctx, cancel := context.WithTimeout(ctx, persistTimeout)
			if err := l.deps.TradeHistory.InsertClosedTrade(pctx, trade); err != nil {
				l.logger.ErrorContext(ctx, "persist closed trade failed",
					slog.String("position_id", trade.PositionID),
					slog.String("error", err.Error()),
				)
			}
			cancel()
		}
	}

	snap := domain.CycleSnapshot{
		At:            time.Now().UTC(),
		Opportunities: opps,
		Positions:     l.engine.Positions(),
		LogTail:       l.engine.LogTail(l.cfg.Trading.TradeLogLimit),
	}
	l.deps.Snapshots.Store(snap)

	if l.deps.SnapshotCache != nil {
		pctx, cancel := context.WithTimeout(ctx, persistTimeout)
		if err := l.deps.SnapshotCache.SetSnapshot(pctx, snap); err != nil {
			l.logger.WarnContext(ctx, "snapshot cache publish failed",
				slog.String("error", err.Error()),
			)
		}
		cancel()
	}
}
