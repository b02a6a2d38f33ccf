// Package config defines the top-level configuration for the arbitrage bot
// and provides loading, validation, and save helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/perpx/arbot/internal/domain"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by ARBOT_* environment variables.
type Config struct {
	Symbols     []string          `toml:"symbols"`
	StrategyMap map[string]string `toml:"strategy_map"`

	Hyperliquid HyperliquidConfig `toml:"hyperliquid"`
	Paradex     ParadexConfig     `toml:"paradex"`
	Trading     TradingConfig     `toml:"trading"`
	Redis       RedisConfig       `toml:"redis"`
	Postgres    PostgresConfig    `toml:"postgres"`
	S3          S3Config          `toml:"s3"`
	Notify      NotifyConfig      `toml:"notify"`
	Server      ServerConfig      `toml:"server"`
	LogLevel    string            `toml:"log_level"`
}

// HyperliquidConfig holds venue A endpoints and its taker fee.
type HyperliquidConfig struct {
	BaseURL  string  `toml:"base_url"`
	WsURL    string  `toml:"ws_url"`
	WsFeed   bool    `toml:"ws_feed"`
	TakerFee float64 `toml:"taker_fee"`
}

// ParadexConfig holds venue B endpoints and its taker fee.
type ParadexConfig struct {
	BaseURL  string  `toml:"base_url"`
	TakerFee float64 `toml:"taker_fee"`
}

// TradingConfig holds the strategy and scheduler parameters.
type TradingConfig struct {
	MinProfitThreshold  float64  `toml:"min_profit_threshold"`
	FundingThreshold    float64  `toml:"funding_threshold"`
	ExitThreshold       float64  `toml:"exit_threshold"`
	NotionalUSD         float64  `toml:"notional_usd"`
	TickInterval        duration `toml:"tick_interval"`
	DepthCheck          bool     `toml:"depth_check"`
	SpreadTagThreshold  float64  `toml:"spread_tag_threshold"`
	FundingTagThreshold float64  `toml:"funding_tag_threshold"`
	TradeLogLimit       int      `toml:"trade_log_limit"`
}

// duration wraps time.Duration so the TOML decoder can read values like
// "200ms" and the encoder can write them back.
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML string decoding.
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for TOML encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// RedisConfig holds snapshot cache parameters. An empty Addr disables the
// cache entirely.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// PostgresConfig holds trade history / backtest store parameters. An empty
// DSN and Host disables persistence.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// S3Config holds backtest report archival parameters. An empty Bucket
// disables archival.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// NotifyConfig holds notification channel parameters.
type NotifyConfig struct {
	WebhookURL       string   `toml:"webhook_url"`
	TelegramBotToken string   `toml:"telegram_bot_token"`
	TelegramChatID   string   `toml:"telegram_chat_id"`
	Events           []string `toml:"events"`
}

// ServerConfig holds the status HTTP endpoint parameters. Port 0 disables
// the server.
type ServerConfig struct {
	Port int `toml:"port"`
}

// Enabled helpers keep wiring code readable.
func (c RedisConfig) Enabled() bool    { return strings.TrimSpace(c.Addr) != "" }
func (c PostgresConfig) Enabled() bool { return c.DSN != "" || c.Host != "" }
func (c S3Config) Enabled() bool       { return strings.TrimSpace(c.Bucket) != "" }

// StrategyKinds resolves the per-symbol strategy map into domain kinds.
// Unassigned symbols default to convergence.
func (c *Config) StrategyKinds() map[string]domain.StrategyKind {
	out := make(map[string]domain.StrategyKind, len(c.StrategyMap))
	for sym, kind := range c.StrategyMap {
		out[sym] = domain.StrategyKind(strings.ToUpper(strings.TrimSpace(kind)))
	}
	return out
}

// Defaults returns the built-in configuration, matching the thresholds the
// live strategies were tuned with.
func Defaults() Config {
	return Config{
		Symbols: []string{"HYPE", "PAXG", "ETH", "BTC"},
		StrategyMap: map[string]string{
			"HYPE": string(domain.StrategyConvergence),
			"PAXG": string(domain.StrategyFunding),
			"ETH":  string(domain.StrategyConvergence),
			"BTC":  string(domain.StrategyConvergence),
		},
		Hyperliquid: HyperliquidConfig{
			BaseURL:  "https://api.hyperliquid.xyz",
			WsURL:    "wss://api.hyperliquid.xyz/ws",
			TakerFee: 0.00025,
		},
		Paradex: ParadexConfig{
			BaseURL:  "https://api.prod.paradex.trade/v1",
			TakerFee: 0.0003,
		},
		Trading: TradingConfig{
			MinProfitThreshold:  0.01,
			FundingThreshold:    0.001,
			ExitThreshold:       0.0,
			NotionalUSD:         10,
			TickInterval:        duration{200 * time.Millisecond},
			SpreadTagThreshold:  0.5,
			FundingTagThreshold: 0.001,
			TradeLogLimit:       domain.DefaultTradeLogSize,
		},
		Postgres: PostgresConfig{
			SSLMode:       "disable",
			PoolMaxConns:  4,
			RunMigrations: true,
		},
		S3: S3Config{
			Region: "us-east-1",
		},
		LogLevel: "info",
	}
}

// Validate checks the configuration for the invalid-configuration class of
// errors: these are the only failures allowed to halt startup.
func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("%w: no symbols configured", domain.ErrInvalidConfiguration)
	}
	for sym, kind := range c.StrategyKinds() {
		if !kind.Valid() {
			return fmt.Errorf("%w: unknown strategy kind %q for symbol %s", domain.ErrInvalidConfiguration, string(kind), sym)
		}
	}
	if c.Hyperliquid.TakerFee < 0 || c.Paradex.TakerFee < 0 {
		return fmt.Errorf("%w: taker fees must be non-negative", domain.ErrInvalidConfiguration)
	}
	if c.Trading.NotionalUSD <= 0 {
		return fmt.Errorf("%w: notional_usd must be positive", domain.ErrInvalidConfiguration)
	}
	if c.Trading.TickInterval.Duration <= 0 {
		return fmt.Errorf("%w: tick_interval must be positive", domain.ErrInvalidConfiguration)
	}
	if c.Trading.ExitThreshold >= c.Trading.MinProfitThreshold {
		return fmt.Errorf("%w: exit_threshold %.4f must be strictly below min_profit_threshold %.4f",
			domain.ErrInvalidConfiguration, c.Trading.ExitThreshold, c.Trading.MinProfitThreshold)
	}
	if c.Trading.FundingThreshold <= 0 {
		return fmt.Errorf("%w: funding_threshold must be positive", domain.ErrInvalidConfiguration)
	}
	return nil
}
