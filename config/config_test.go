package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:8000", cfg.Addr)
	require.Equal(t, []string{"AAPL", "GOOG", "MSFT", "AMZN"}, cfg.Symbols)
	require.Equal(t, time.Minute, cfg.Window)
	require.Equal(t, 32, cfg.Capacity)
	require.Equal(t, time.Second, cfg.FeedInterval)
	require.Empty(t, cfg.Redis.Addr)
}

func TestOverrides(t *testing.T) {
	t.Setenv("SYMBOLS", "TSLA,NVDA")
	t.Setenv("WINDOW", "5m")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, []string{"TSLA", "NVDA"}, cfg.Symbols)
	require.Equal(t, 5*time.Minute, cfg.Window)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
}
