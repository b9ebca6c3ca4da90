package substrate

import (
	"runtime"
	"time"
)

// MaxRetries caps the per-subscriber retry count.
const MaxRetries = 20

// RateLimit caps handler invocations to Limit starts per Period.
// A zero RateLimit means unlimited.
type RateLimit struct {
	Limit  int           `yaml:"limit"`
	Period time.Duration `yaml:"period"`
}

// Unlimited reports whether the rate limit is disabled.
func (r RateLimit) Unlimited() bool {
	return r.Limit <= 0 || r.Period <= 0
}

// Policy governs how a subscriber's deliveries are executed.
type Policy struct {
	// Retries is the number of redeliveries after a failed attempt.
	// A delivery is attempted at most Retries+1 times.
	Retries int `yaml:"retries"`

	// Concurrency is the maximum number of deliveries processed at
	// once. Zero means a default derived from the CPU count.
	Concurrency int `yaml:"concurrency"`

	// RateLimit caps delivery starts. Zero means unlimited.
	RateLimit RateLimit `yaml:"rate_limit"`

	// Timeout bounds a single attempt. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout"`

	// BaseDelay is the first retry delay; it doubles per attempt.
	// Zero means a 1s default.
	BaseDelay time.Duration `yaml:"base_delay"`
}

// Normalize fills in defaults for zero-valued fields.
func (p *Policy) Normalize() {
	if p.Concurrency < 1 {
		p.Concurrency = runtime.NumCPU() / 2
		if p.Concurrency < 1 {
			p.Concurrency = 1
		}
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = time.Second
	}
}

// Validate checks the policy. It normalizes first.
func (p *Policy) Validate() error {
	p.Normalize()

	if p.Retries < 0 || p.Retries > MaxRetries {
		return ErrInvalidPolicy
	}
	if p.Timeout < 0 {
		return ErrInvalidPolicy
	}
	return nil
}

// MaxAttempts returns the total attempt budget for a delivery.
func (p *Policy) MaxAttempts() int {
	return p.Retries + 1
}
