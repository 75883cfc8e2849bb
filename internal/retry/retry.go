// Package retry applies the configured retry policy to store and mail calls.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v3"

	"github.com/iliyamo/theatre-booking-calendar/internal/config"
)

// NewBackOff builds the backoff for cfg. The returned policy stops after
// cfg.MaxAttempts tries in total.
func NewBackOff(cfg config.RetryConfig) backoff.BackOff {
	var b backoff.BackOff
	switch cfg.Strategy {
	case config.RetryConstant:
		b = backoff.NewConstantBackOff(cfg.InitialInterval)
	case config.RetryLinear:
		b = &linearBackOff{step: cfg.InitialInterval, max: cfg.MaxInterval}
	default:
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = cfg.InitialInterval
		eb.MaxInterval = cfg.MaxInterval
		eb.Multiplier = cfg.Multiplier
		eb.RandomizationFactor = 0.1
		eb.MaxElapsedTime = 0
		eb.Reset()
		b = eb
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return backoff.WithMaxRetries(b, uint64(attempts-1))
}

// Do runs op until it succeeds, returns a permanent error, the attempts run
// out or ctx is done.
func Do(ctx context.Context, cfg config.RetryConfig, op func() error) error {
	return backoff.Retry(op, backoff.WithContext(NewBackOff(cfg), ctx))
}

// Permanent marks err so Do returns it without retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// linearBackOff waits step, 2*step, 3*step... capped at max.
type linearBackOff struct {
	step time.Duration
	max  time.Duration
	n    int64
}

func (l *linearBackOff) NextBackOff() time.Duration {
	l.n++
	d := time.Duration(l.n) * l.step
	if l.max > 0 && d > l.max {
		return l.max
	}
	return d
}

func (l *linearBackOff) Reset() { l.n = 0 }
