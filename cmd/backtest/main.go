// Command backtest runs the offline threshold calibration: it fetches
// historical candles from both venues, grid-searches entry/exit threshold
// pairs against the aligned spread series, and prints the ranked result
// table. With Postgres or S3 configured, the full report is persisted and
// archived as well.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/perpx/arbot/internal/backtest"
	s3blob "github.com/perpx/arbot/internal/blob/s3"
	"github.com/perpx/arbot/internal/config"
	"github.com/perpx/arbot/internal/domain"
	"github.com/perpx/arbot/internal/platform/hyperliquid"
	"github.com/perpx/arbot/internal/platform/paradex"
	"github.com/perpx/arbot/internal/store/postgres"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to configuration file")
	symbol := flag.String("symbol", "HYPE", "symbol to calibrate")
	interval := flag.String("interval", "1m", "candle interval")
	days := flag.Int("days", 7, "lookback window in days")
	entries := flag.String("entries", "0.1,0.2,0.3,0.4,0.5", "comma-separated entry threshold candidates (pct)")
	exits := flag.String("exits", "0.0,0.05,0.1,0.2", "comma-separated exit threshold candidates (pct)")
	fee := flag.Float64("fee", 0.15, "round-trip fee in pct")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	entryVals, err := parseFloats(*entries)
	if err != nil {
		logger.Error("invalid -entries", slog.String("error", err.Error()))
		os.Exit(1)
	}
	exitVals, err := parseFloats(*exits)
	if err != nil {
		logger.Error("invalid -exits", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	venueA := hyperliquid.NewClient(cfg.Hyperliquid.BaseURL)
	venueB := paradex.NewClient(cfg.Paradex.BaseURL)

	var store *postgres.BacktestStore
	if cfg.Postgres.Enabled() {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			logger.Error("postgres unavailable", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pgClient.Close()
		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				logger.Error("postgres migrations failed", slog.String("error", err.Error()))
				os.Exit(1)
			}
		}
		store = postgres.NewBacktestStore(pgClient.Pool())
	}

	var archiver *s3blob.ReportArchiver
	if cfg.S3.Enabled() {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         true,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			logger.Error("s3 unavailable", slog.String("error", err.Error()))
			os.Exit(1)
		}
		archiver = s3blob.NewReportArchiver(s3Client)
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -*days)

	runner := backtest.NewRunner(venueA, venueB, storeOrNil(store), archiverOrNil(archiver), logger)

	report, err := runner.Run(ctx, backtest.RunParams{
		Symbol:   *symbol,
		Interval: *interval,
		Start:    start,
		End:      end,
		Grid: backtest.Grid{
			EntryCandidates: entryVals,
			ExitCandidates:  exitVals,
			RoundTripFeePct: *fee,
		},
	})
	if err != nil {
		logger.Error("backtest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	printReport(report)
}

// storeOrNil and archiverOrNil avoid passing a typed nil pointer through the
// interface value.
func storeOrNil(s *postgres.BacktestStore) domain.BacktestStore {
	if s == nil {
		return nil
	}
	return s
}

func archiverOrNil(a *s3blob.ReportArchiver) backtest.ReportArchiver {
	if a == nil {
		return nil
	}
	return a
}

func printReport(report *backtest.Report) {
	fmt.Printf("run %s | %s %s | %s -> %s | %d aligned points\n\n",
		report.RunID, report.Symbol, report.Interval,
		report.Start.Format(time.RFC3339), report.End.Format(time.RFC3339),
		report.DataPoints)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ENTRY\tEXIT\tTRADES\tPNL%\tMAE%\tLEVERAGE")
	for _, r := range report.Results {
		fmt.Fprintf(w, "%.2f\t%.2f\t%d\t%.4f\t%.4f\t%s\n",
			r.EntryThreshold, r.ExitThreshold, r.TradeCount,
			r.TotalPnLPct, r.MaxAdverseExcursionPct, r.SafeLeverageLabel())
	}
	w.Flush()

	if report.Best != nil {
		fmt.Printf("\nrecommended: entry %.2f%% exit %.2f%% (pnl %.4f%%, leverage %s)\n",
			report.Best.EntryThreshold, report.Best.ExitThreshold,
			report.Best.TotalPnLPct, report.Best.SafeLeverageLabel())
	} else {
		fmt.Println("\nno valid threshold pair produced a recommendation")
	}
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", p, err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty candidate list")
	}
	return out, nil
}
