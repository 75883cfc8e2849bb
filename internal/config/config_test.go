package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MemoryDriver(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("APP_TIMEZONE", "Europe/London")
	t.Setenv("NOTIFY_TRANSPORT", "log")

	cfg := Load()

	assert.Equal(t, DriverMemory, cfg.DBDriver)
	assert.Equal(t, TransportLog, cfg.NotifyTransport)
	require.NotNil(t, cfg.Location)
	assert.Equal(t, "Europe/London", cfg.Location.String())
	assert.Empty(t, cfg.DBHost)
}

func TestLoad_SQLDriver(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_USER", "calendar")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_NAME", "bookings")

	cfg := Load()

	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "db", cfg.DBHost)
	assert.Equal(t, TransportDirect, cfg.NotifyTransport)
}

func TestLoadRetryConfig(t *testing.T) {
	t.Setenv("STORE_RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("STORE_RETRY_STRATEGY", "Linear")
	t.Setenv("STORE_RETRY_INITIAL_INTERVAL", "50ms")
	t.Setenv("STORE_RETRY_MAX_INTERVAL", "10ms")

	c := LoadRetryConfig()

	assert.Equal(t, 5, c.MaxAttempts)
	assert.Equal(t, RetryLinear, c.Strategy)
	assert.Equal(t, 50*time.Millisecond, c.InitialInterval)
	assert.Equal(t, 50*time.Millisecond, c.MaxInterval)
}

func TestLoadRetryConfig_Defaults(t *testing.T) {
	t.Setenv("STORE_RETRY_MAX_ATTEMPTS", "0")
	t.Setenv("STORE_RETRY_STRATEGY", "fibonacci")

	c := LoadRetryConfig()

	assert.Equal(t, 1, c.MaxAttempts)
	assert.Equal(t, RetryExponential, c.Strategy)
	assert.Equal(t, 2.0, c.Multiplier)
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_ENABLED", "no")

	c := LoadCacheConfig()

	assert.False(t, c.Enabled)
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, c.Methods)
	assert.Equal(t, 30*time.Second, c.TTL)
}

func TestLoadRateLimitConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "10")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	c := LoadRateLimitConfig()

	assert.Equal(t, 10, c.Capacity)
	assert.Equal(t, 1, c.RefillTokens)
	assert.Equal(t, 2*time.Second, c.RefillInterval)
	assert.Equal(t, 10*time.Second, c.TTL)
}

func TestLoadRedisConfig(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6380")
	assert.Equal(t, "cache:6380", LoadRedisConfig().Addr)

	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("REDIS_TLS", "1")
	c := LoadRedisConfig()
	assert.Equal(t, "redis:6379", c.Addr)
	assert.True(t, c.TLS)
}
