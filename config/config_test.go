package config

import (
	"testing"
	"time"

	"sjsage522/jobworker/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, "Warehouse Operative", config.SearchKeywords)
	assert.Equal(t, "en-GB", config.SearchLocale)
	assert.Equal(t, "United Kingdom", config.SearchCountry)
	assert.Equal(t, 20, config.SearchPageSize)
	assert.Equal(t, time.Hour, config.PollInterval)
	assert.Equal(t, 5*time.Minute, config.RetryBackoff)
	assert.Equal(t, 3, config.TokenAttempts)
	assert.Equal(t, 10*time.Second, config.TokenRetryDelay)
	assert.Equal(t, "session", config.TokenMarker)
	assert.Equal(t, StrategyCookie, config.TokenStrategy)
	assert.Equal(t, []string{SinkTelegram}, config.NotifySinks)
	assert.Equal(t, "", config.MemcacheAddr)
	assert.Equal(t, "8080", config.Port)

	// Test with environment variables
	t.Setenv("SEARCH_KEYWORDS", "Forklift Driver")
	t.Setenv("SEARCH_PAGE_SIZE", "50")
	t.Setenv("POLL_INTERVAL_SECONDS", "600")
	t.Setenv("TOKEN_STRATEGY", "HTTP")
	t.Setenv("NOTIFY_SINKS", "telegram, redis")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("MEMCACHE_ADDR", "memcache.example.com:11211")
	t.Setenv("ANNOUNCE_STARTUP", "true")
	t.Setenv("BROWSER_SETTLE_MS", "1500")

	config = LoadConfig()
	assert.Equal(t, "Forklift Driver", config.SearchKeywords)
	assert.Equal(t, 50, config.SearchPageSize)
	assert.Equal(t, 10*time.Minute, config.PollInterval)
	assert.Equal(t, StrategyHTTP, config.TokenStrategy)
	assert.Equal(t, []string{SinkTelegram, SinkRedis}, config.NotifySinks)
	assert.Equal(t, 2, config.RedisDB)
	assert.Equal(t, "memcache.example.com:11211", config.MemcacheAddr)
	assert.True(t, config.AnnounceStartup)
	assert.Equal(t, 1500*time.Millisecond, config.BrowserSettle)
}

func TestLoadConfigInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("SEARCH_PAGE_SIZE", "lots")
	t.Setenv("ANNOUNCE_STARTUP", "maybe")

	config := LoadConfig()
	assert.Equal(t, 20, config.SearchPageSize)
	assert.False(t, config.AnnounceStartup)
}

func validConfig() *Config {
	cfg := LoadConfig()
	cfg.TelegramBotToken = "123:abc"
	cfg.TelegramChatID = "42"
	return cfg
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing bot token", func(c *Config) { c.TelegramBotToken = "" }},
		{"missing chat id", func(c *Config) { c.TelegramChatID = "" }},
		{"no sinks", func(c *Config) { c.NotifySinks = nil }},
		{"unknown sink", func(c *Config) { c.NotifySinks = []string{"pager"} }},
		{"redis without stream", func(c *Config) {
			c.NotifySinks = []string{SinkRedis}
			c.RedisStream = ""
		}},
		{"unknown strategy", func(c *Config) { c.TokenStrategy = "oauth" }},
		{"zero attempts", func(c *Config) { c.TokenAttempts = 0 }},
		{"page size too large", func(c *Config) { c.SearchPageSize = MaxPageSize + 1 }},
		{"page size zero", func(c *Config) { c.SearchPageSize = 0 }},
		{"zero interval", func(c *Config) { c.PollInterval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfiguration))
		})
	}
}

func TestValidateRedisOnly(t *testing.T) {
	cfg := LoadConfig()
	cfg.NotifySinks = []string{SinkRedis}
	assert.NoError(t, cfg.Validate())
}
