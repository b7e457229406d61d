// Package resilience provides bounded retry with backoff and an optional
// circuit breaker for transient backend failures.
//
// The API client itself performs one request per call; this layer is
// applied only where the design allows hardening (the result-fetch path),
// and never changes single-flight or ordering behavior: a retried fetch
// still resolves under the sequence token it was issued with.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/sbai-works/drawctl/log"
)

// Classifier reports whether an error is worth retrying.
type Classifier func(err error) bool

// Config tunes the executor. Zero values fall back to defaults.
type Config struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64

	BreakerEnabled      bool
	BreakerMinRequests  uint32
	BreakerFailureRatio float64
	BreakerOpenTimeout  time.Duration
}

// DefaultConfig returns conservative retry settings: two quick retries,
// breaker off. Polling already self-heals on its own schedule, so the
// breaker is opt-in for flaky networks.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialBackoff: 200 * time.Millisecond,
		MaxBackoff:     800 * time.Millisecond,
		Multiplier:     2.0,

		BreakerEnabled:      false,
		BreakerMinRequests:  10,
		BreakerFailureRatio: 0.5,
		BreakerOpenTimeout:  30 * time.Second,
	}
}

func (c Config) normalize() Config {
	def := DefaultConfig()
	if c.MaxAttempts < 1 {
		c.MaxAttempts = def.MaxAttempts
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = def.InitialBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = def.MaxBackoff
	}
	if c.Multiplier < 1 {
		c.Multiplier = def.Multiplier
	}
	if c.BreakerMinRequests == 0 {
		c.BreakerMinRequests = def.BreakerMinRequests
	}
	if c.BreakerFailureRatio <= 0 {
		c.BreakerFailureRatio = def.BreakerFailureRatio
	}
	if c.BreakerOpenTimeout <= 0 {
		c.BreakerOpenTimeout = def.BreakerOpenTimeout
	}
	return c
}

// Executor runs operations under the retry/breaker policy.
type Executor struct {
	cfg     Config
	logger  *log.Logger
	breaker *gobreaker.CircuitBreaker[any]
}

// NewExecutor creates an executor from cfg.
func NewExecutor(cfg Config, logger *log.Logger) *Executor {
	cfg = cfg.normalize()
	if logger == nil {
		logger = log.NewLogger(false)
	}

	e := &Executor{cfg: cfg, logger: logger}
	if cfg.BreakerEnabled {
		e.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
			Name:        "backend",
			Timeout:     cfg.BreakerOpenTimeout,
			MaxRequests: 1,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < cfg.BreakerMinRequests {
					return false
				}
				ratio := float64(counts.TotalFailures) / float64(counts.Requests)
				return ratio >= cfg.BreakerFailureRatio
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state change", map[string]any{
					"name": name,
					"from": from.String(),
					"to":   to.String(),
				})
			},
		})
	}
	return e
}

// Execute runs fn, retrying errors the classifier marks transient with
// exponential backoff. The context is checked before every attempt and
// during backoff waits.
func (e *Executor) Execute(ctx context.Context, operation string, fn func(context.Context) error, retryable Classifier) error {
	if fn == nil {
		return fmt.Errorf("resilience: operation callback is nil")
	}
	if retryable == nil {
		retryable = func(error) bool { return false }
	}

	if e.breaker == nil {
		return e.executeWithRetry(ctx, operation, fn, retryable)
	}

	_, err := e.breaker.Execute(func() (any, error) {
		return nil, e.executeWithRetry(ctx, operation, fn, retryable)
	})
	return err
}

func (e *Executor) executeWithRetry(ctx context.Context, operation string, fn func(context.Context) error, retryable Classifier) error {
	backoff := e.cfg.InitialBackoff

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !retryable(err) || attempt == e.cfg.MaxAttempts {
			return err
		}

		e.logger.Warn("retrying operation", map[string]any{
			"operation":    operation,
			"attempt":      attempt,
			"max_attempts": e.cfg.MaxAttempts,
			"backoff_ms":   backoff.Milliseconds(),
			"error":        err.Error(),
		})

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}

		backoff = time.Duration(float64(backoff) * e.cfg.Multiplier)
		if backoff > e.cfg.MaxBackoff {
			backoff = e.cfg.MaxBackoff
		}
	}
}

// IsCircuitOpen reports whether err came from an open circuit breaker.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
