package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/perpx/arbot/internal/cache/redis"
	"github.com/perpx/arbot/internal/config"
	"github.com/perpx/arbot/internal/domain"
	"github.com/perpx/arbot/internal/notify"
	"github.com/perpx/arbot/internal/platform/hyperliquid"
	"github.com/perpx/arbot/internal/platform/paradex"
	"github.com/perpx/arbot/internal/server"
	"github.com/perpx/arbot/internal/server/handler"
	"github.com/perpx/arbot/internal/store/postgres"
)

// Dependencies bundles everything the scan loop and the HTTP server need.
// Optional infrastructure (Redis, Postgres, S3, the websocket feed, the
// server) is nil when not configured; the loop degrades gracefully.
type Dependencies struct {
	VenueA domain.QuoteProvider
	VenueB domain.QuoteProvider

	// MidFeed streams venue A mid prices over websocket; nil when disabled.
	MidFeed *hyperliquid.MidFeed

	SnapshotCache domain.SnapshotCache
	TradeHistory  domain.TradeHistoryStore
	BacktestStore domain.BacktestStore

	Notifier  *notify.Notifier
	Snapshots *SnapshotHolder
	Server    *server.Server
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		VenueA:    hyperliquid.NewClient(cfg.Hyperliquid.BaseURL),
		VenueB:    paradex.NewClient(cfg.Paradex.BaseURL),
		Snapshots: NewSnapshotHolder(),
	}

	if cfg.Hyperliquid.WsFeed && cfg.Hyperliquid.WsURL != "" {
		deps.MidFeed = hyperliquid.NewMidFeed(cfg.Hyperliquid.WsURL, logger)
	}

	// --- Redis snapshot cache ---
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		deps.SnapshotCache = redis.NewSnapshotCache(redisClient)
	}

	// --- Postgres trade history ---
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
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		pool := pgClient.Pool()
		deps.TradeHistory = postgres.NewTradeHistoryStore(pool)
		deps.BacktestStore = postgres.NewBacktestStore(pool)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramBotToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramBotToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.WebhookURL != "" {
		senders = append(senders, notify.NewWebhookSender(cfg.Notify.WebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	// --- HTTP server ---
	if cfg.Server.Port > 0 {
		deps.Server = server.NewServer(
			server.Config{Port: cfg.Server.Port},
			server.Handlers{
				Health: handler.NewHealthHandler(logger),
				Status: handler.NewStatusHandler(deps.Snapshots, logger),
				Trades: handler.NewTradesHandler(deps.TradeHistory, logger),
			},
			logger,
		)
	}

	return deps, cleanup, nil
}
