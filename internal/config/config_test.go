package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perpx/arbot/internal/domain"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 200*time.Millisecond, cfg.Trading.TickInterval.Duration)
	assert.Equal(t, domain.StrategyFunding, cfg.StrategyKinds()["PAXG"])
	assert.Equal(t, domain.StrategyConvergence, cfg.StrategyKinds()["HYPE"])
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no symbols", func(c *Config) { c.Symbols = nil }},
		{"unknown strategy kind", func(c *Config) { c.StrategyMap["HYPE"] = "momentum" }},
		{"negative taker fee", func(c *Config) { c.Paradex.TakerFee = -0.0001 }},
		{"non-positive notional", func(c *Config) { c.Trading.NotionalUSD = 0 }},
		{"non-positive tick interval", func(c *Config) { c.Trading.TickInterval = duration{} }},
		{"exit at or above entry", func(c *Config) { c.Trading.ExitThreshold = c.Trading.MinProfitThreshold }},
		{"non-positive funding threshold", func(c *Config) { c.Trading.FundingThreshold = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	orig := Defaults()
	orig.Symbols = []string{"HYPE", "SOL"}
	orig.Trading.MinProfitThreshold = 0.42
	orig.Trading.TickInterval = duration{time.Second}
	orig.Server.Port = 8080
	require.NoError(t, Save(path, &orig))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, orig.Symbols, loaded.Symbols)
	assert.InDelta(t, 0.42, loaded.Trading.MinProfitThreshold, 1e-12)
	assert.Equal(t, time.Second, loaded.Trading.TickInterval.Duration)
	assert.Equal(t, 8080, loaded.Server.Port)
	require.NoError(t, loaded.Validate())
}

func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := Defaults()
	require.NoError(t, Save(path, &cfg))

	t.Setenv("ARBOT_REDIS_ADDR", "redis.internal:6379")
	t.Setenv("ARBOT_TRADING_MIN_PROFIT_THRESHOLD", "0.05")
	t.Setenv("ARBOT_TRADING_DEPTH_CHECK", "true")
	t.Setenv("ARBOT_SERVER_PORT", "9090")

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "redis.internal:6379", loaded.Redis.Addr)
	assert.InDelta(t, 0.05, loaded.Trading.MinProfitThreshold, 1e-12)
	assert.True(t, loaded.Trading.DepthCheck)
	assert.Equal(t, 9090, loaded.Server.Port)
	assert.True(t, loaded.Redis.Enabled())
}

func TestEnabledHelpers(t *testing.T) {
	cfg := Defaults()
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Postgres.Enabled())
	assert.False(t, cfg.S3.Enabled())

	cfg.Redis.Addr = "localhost:6379"
	cfg.Postgres.Host = "localhost"
	cfg.S3.Bucket = "arbot-reports"
	assert.True(t, cfg.Redis.Enabled())
	assert.True(t, cfg.Postgres.Enabled())
	assert.True(t, cfg.S3.Enabled())
}
