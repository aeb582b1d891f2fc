package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shelfscout/backend/internal/domain"
	"github.com/shelfscout/backend/internal/logging"
)

// FailureKind classifies the outcome of a remote call
type FailureKind int

const (
	FailureNone     FailureKind = iota
	FailureThrottle             // rate limit exhausted, retried with backoff
	FailureRemote               // any other remote failure, never retried
	FailureCanceled             // caller context ended
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureThrottle:
		return "throttle"
	case FailureRemote:
		return "remote"
	case FailureCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// throttleMarkers are lower-cased fragments of error text that signal rate
// limiting when the error does not wrap domain.ErrThrottled.
var throttleMarkers = []string{
	"quotaexceeded",
	"quota exceeded",
	"toomanyrequests",
	"too many requests",
	"status 429",
	"rate exceeded",
	"throttl",
}

// ClassifyError maps a remote error to a FailureKind. It is the only place that
// knows the remote error vocabulary.
func ClassifyError(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, context.Canceled):
		return FailureCanceled
	case errors.Is(err, domain.ErrThrottled):
		return FailureThrottle
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range throttleMarkers {
		if strings.Contains(msg, marker) {
			return FailureThrottle
		}
	}
	return FailureRemote
}

// Result is the outcome of one wrapped remote call. A failed Result is a
// normal value, not an error the caller must propagate.
type Result[T any] struct {
	Value    T
	Failure  FailureKind
	Err      error
	Attempts int
}

// OK reports whether the call produced a value
func (r Result[T]) OK() bool {
	return r.Failure == FailureNone
}

// RetryConfig holds throttle backoff settings
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	JitterMin   time.Duration
	JitterMax   time.Duration
}

// RetryingClient wraps single remote calls with bounded linear backoff plus
// jitter on throttling. Other failures are logged and returned as misses.
type RetryingClient struct {
	config RetryConfig
	logger *slog.Logger

	// onBackoff observes every backoff delay before it is slept.
	onBackoff func(attempt int, delay time.Duration)
}

// NewRetryingClient creates a retrying client. A zero MaxAttempts means 5.
func NewRetryingClient(config RetryConfig, logger *slog.Logger) *RetryingClient {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 5
	}
	if config.JitterMax < config.JitterMin {
		config.JitterMax = config.JitterMin
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &RetryingClient{config: config, logger: logger}
}

// backoff builds the per-call schedule: BaseDelay*(attempt+1) plus a jitter
// drawn uniformly from [JitterMin, JitterMax].
func (c *RetryingClient) backoff(op string) retry.Backoff {
	attempt := 0
	center := (c.config.JitterMin + c.config.JitterMax) / 2
	spread := (c.config.JitterMax - c.config.JitterMin) / 2

	var b retry.Backoff = retry.BackoffFunc(func() (time.Duration, bool) {
		d := c.config.BaseDelay*time.Duration(attempt+1) + center
		attempt++
		return d, false
	})
	if spread > 0 {
		b = retry.WithJitter(spread, b)
	}
	b = retry.WithMaxRetries(uint64(c.config.MaxAttempts-1), b)

	retries := 0
	return retry.BackoffFunc(func() (time.Duration, bool) {
		d, stop := b.Next()
		if stop {
			return 0, true
		}
		retries++
		c.logger.Warn("throttled, backing off", "op", op, "retry", retries, "delay", d)
		if c.onBackoff != nil {
			c.onBackoff(retries, d)
		}
		return d, false
	})
}

// Call runs fn through the client's retry policy.
func Call[T any](ctx context.Context, c *RetryingClient, op string, fn func(context.Context) (T, error)) Result[T] {
	var res Result[T]

	err := retry.Do(ctx, c.backoff(op), func(ctx context.Context) error {
		res.Attempts++
		value, err := fn(ctx)
		if err == nil {
			res.Value = value
			return nil
		}
		if ClassifyError(err) == FailureThrottle {
			return retry.RetryableError(err)
		}
		return err
	})
	if err == nil {
		res.Failure = FailureNone
		res.Err = nil
		return res
	}

	res.Err = err
	res.Failure = ClassifyError(err)
	if ctx.Err() != nil {
		res.Failure = FailureCanceled
	}

	switch res.Failure {
	case FailureThrottle:
		c.logger.Error("throttled on every attempt, giving up", "op", op, "attempts", res.Attempts, "error", err)
	case FailureCanceled:
		c.logger.Info("call abandoned", "op", op, "error", err)
	default:
		c.logger.Error("remote call failed", "op", op, "error", err)
	}
	return res
}

// pause blocks for d or until ctx ends. Used for the fixed pacing delays that
// keep the pipeline under the steady-state rate budget.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
