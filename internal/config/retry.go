package config

import (
	"strings"
	"time"
)

// Retry strategies.
const (
	RetryConstant    = "constant"
	RetryLinear      = "linear"
	RetryExponential = "exponential"
)

// RetryConfig is the single retry policy applied to store and mail calls.
// MaxAttempts counts the first try; 1 disables retries.
type RetryConfig struct {
	MaxAttempts     int
	Strategy        string
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// LoadRetryConfig reads STORE_RETRY_* variables.
func LoadRetryConfig() RetryConfig {
	c := RetryConfig{
		MaxAttempts:     envInt("STORE_RETRY_MAX_ATTEMPTS", 3),
		Strategy:        strings.ToLower(envStr("STORE_RETRY_STRATEGY", RetryExponential)),
		InitialInterval: envDur("STORE_RETRY_INITIAL_INTERVAL", 100*time.Millisecond),
		MaxInterval:     envDur("STORE_RETRY_MAX_INTERVAL", 2*time.Second),
		Multiplier:      envFloat("STORE_RETRY_MULTIPLIER", 2),
	}
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	switch c.Strategy {
	case RetryConstant, RetryLinear, RetryExponential:
	default:
		c.Strategy = RetryExponential
	}
	if c.InitialInterval <= 0 {
		c.InitialInterval = 100 * time.Millisecond
	}
	if c.MaxInterval < c.InitialInterval {
		c.MaxInterval = c.InitialInterval
	}
	if c.Multiplier < 1 {
		c.Multiplier = 1
	}
	return c
}
