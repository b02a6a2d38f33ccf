package backtest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/perpx/arbot/internal/domain"
)

// ReportArchiver uploads a finished report to blob storage.
type ReportArchiver interface {
	ArchiveReport(ctx context.Context, report Report) (string, error)
}

// RunParams describes one calibration run.
type RunParams struct {
	Symbol   string
	Interval string
	Start    time.Time
	End      time.Time
	Grid     Grid
}

// Report is the output of a calibration run: the ranked result table plus
// the single top recommendation (nil when no candidate pair produced one).
type Report struct {
	RunID      string
	Symbol     string
	Interval   string
	Start      time.Time
	End        time.Time
	DataPoints int
	Results    []domain.BacktestResult
	Best       *domain.BacktestResult
}

// Runner orchestrates a full calibration run: fetch both venues' historical
// candles concurrently, align them, grid-search the thresholds, then persist
// and archive the report through the optional sinks.
type Runner struct {
	venueA   domain.CandleProvider
	venueB   domain.CandleProvider
	store    domain.BacktestStore // nil disables persistence
	archiver ReportArchiver       // nil disables archival
	logger   *slog.Logger
}

// NewRunner creates a Runner. store and archiver may be nil.
func NewRunner(venueA, venueB domain.CandleProvider, store domain.BacktestStore, archiver ReportArchiver, logger *slog.Logger) *Runner {
	return &Runner{
		venueA:   venueA,
		venueB:   venueB,
		store:    store,
		archiver: archiver,
		logger:   logger.With(slog.String("component", "backtest_runner")),
	}
}

// Run executes the calibration. A failed candle fetch on either venue aborts
// the run: unlike the live path there is no next cycle to degrade to. An
// empty aligned series produces an empty (but valid) report.
func (r *Runner) Run(ctx context.Context, params RunParams) (*Report, error) {
	var seriesA, seriesB []domain.PricePoint

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		seriesA, err = r.venueA.FetchCandles(gctx, params.Symbol, params.Interval, params.Start, params.End)
		if err != nil {
			return fmt.Errorf("fetch %s candles: %w", r.venueA.Name(), err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		seriesB, err = r.venueB.FetchCandles(gctx, params.Symbol, params.Interval, params.Start, params.End)
		if err != nil {
			return fmt.Errorf("fetch %s candles: %w", r.venueB.Name(), err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("backtest: %w", err)
	}

	aligned := AlignSpread(seriesA, seriesB)
	r.logger.Info("series aligned",
		slog.String("symbol", params.Symbol),
		slog.Int("points_a", len(seriesA)),
		slog.Int("points_b", len(seriesB)),
		slog.Int("aligned", len(aligned)),
	)

	report := &Report{
		RunID:      uuid.NewString(),
		Symbol:     params.Symbol,
		Interval:   params.Interval,
		Start:      params.Start,
		End:        params.End,
		DataPoints: len(aligned),
		Results:    Optimize(aligned, params.Grid),
	}
	if best, ok := Recommend(report.Results); ok {
		report.Best = &best
	}

	// Persistence and archival are best-effort; the report itself is the
	// deliverable.
	if r.store != nil && len(report.Results) > 0 {
		if err := r.store.InsertResults(ctx, report.RunID, report.Symbol, report.Results); err != nil {
			r.logger.Warn("persist results failed", slog.String("error", err.Error()))
		}
	}
	if r.archiver != nil && len(report.Results) > 0 {
		key, err := r.archiver.ArchiveReport(ctx, *report)
		if err != nil {
			r.logger.Warn("archive report failed", slog.String("error", err.Error()))
		} else {
			r.logger.Info("report archived", slog.String("key", key))
		}
	}
	return report, nil
}
