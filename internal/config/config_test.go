package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "crisisline.db", cfg.Store.DSN)
	assert.Equal(t, "https://serpapi.com", cfg.Serp.BaseURL)
	assert.Equal(t, 10, cfg.Serp.Num)
	assert.Equal(t, "en", cfg.Serp.Language)
	assert.Equal(t, int64(2048), cfg.Anthropic.MaxTokens)
	assert.Equal(t, 30, cfg.Cache.TTLDays)
	assert.Equal(t, 15, cfg.Search.TimeoutSecs)
	assert.Equal(t, 60, cfg.Extract.TimeoutSecs)
	assert.Equal(t, 90, cfg.Pipeline.OverallTimeoutSecs)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CRISISLINE_STORE_DRIVER", "postgres")
	t.Setenv("CRISISLINE_STORE_DSN", "postgres://localhost/crisisline")
	t.Setenv("CRISISLINE_CACHE_TTL_DAYS", "7")
	t.Setenv("CRISISLINE_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/crisisline", cfg.Store.DSN)
	assert.Equal(t, 7, cfg.Cache.TTLDays)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "shouting", Format: "json"})
	require.Error(t, err)
}
