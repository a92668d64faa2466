package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// Policy configures Retry.
type Policy struct {
	// Attempts is the maximum number of calls, the first included.
	Attempts int `yaml:"attempts" mapstructure:"attempts"`
	// Backoff is the delay after the first failure.
	Backoff time.Duration `yaml:"backoff" mapstructure:"backoff"`
	// MaxBackoff caps the delay.
	MaxBackoff time.Duration `yaml:"max_backoff" mapstructure:"max_backoff"`
	// Factor multiplies the delay after each failure.
	Factor float64 `yaml:"factor" mapstructure:"factor"`
	// Jitter spreads each delay by up to this fraction in either direction.
	Jitter float64 `yaml:"jitter" mapstructure:"jitter"`

	// RetryIf reports whether err is worth another attempt. Nil retries
	// everything except context errors.
	RetryIf func(err error) bool `yaml:"-" mapstructure:"-"`
	// OnRetry is called before sleeping.
	OnRetry func(attempt int, err error, wait time.Duration) `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills unset fields. A zero Policy makes a single attempt.
func (p *Policy) ApplyDefaults() {
	if p.Attempts <= 0 {
		p.Attempts = 1
	}
	if p.Backoff <= 0 {
		p.Backoff = 200 * time.Millisecond
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = 5 * time.Second
	}
	if p.Factor < 1 {
		p.Factor = 2
	}
	if p.Jitter < 0 || p.Jitter > 1 {
		p.Jitter = 0
	}
}

func retryable(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Retry calls fn until it succeeds, RetryIf rejects the error, the attempts
// run out or ctx is done. It returns the last error from fn, or ctx.Err()
// when ctx ends first.
func Retry[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	p.ApplyDefaults()
	retryIf := p.RetryIf
	if retryIf == nil {
		retryIf = retryable
	}

	var zero T
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if attempt >= p.Attempts || !retryIf(err) {
			return zero, err
		}

		wait := p.delay(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, wait)
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

// delay is Backoff * Factor^(attempt-1), jittered and capped at MaxBackoff.
func (p Policy) delay(attempt int) time.Duration {
	d := float64(p.Backoff) * math.Pow(p.Factor, float64(attempt-1))
	if p.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * p.Jitter
	}
	if d > float64(p.MaxBackoff) {
		d = float64(p.MaxBackoff)
	}
	if d <= 0 {
		d = float64(p.Backoff)
	}
	return time.Duration(d)
}
