package rpc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/goran-ethernal/GnosisPayIndexor/pkg/config"
)

// Policy is a bounded retry loop with jittered exponential backoff. It backs both
// single RPC requests and the per-range log fetch budget.
type Policy struct {
	// Attempts is the total number of attempts including the first one
	Attempts int

	// InitialBackoff is the delay before the second attempt
	InitialBackoff time.Duration

	// MaxBackoff caps the delay between attempts
	MaxBackoff time.Duration

	// Multiplier grows the delay per attempt; values below 1 are treated as 2
	Multiplier float64

	// Retryable decides whether a failure is worth another attempt. Nil means Transient.
	Retryable func(err error) bool

	// OnRetry is called before every repeated attempt
	OnRetry func(attempt int, err error)
}

// PolicyFromConfig builds the per-request policy. A nil config runs every request once.
func PolicyFromConfig(cfg *config.RetryConfig) Policy {
	if cfg == nil {
		return Policy{Attempts: 1}
	}

	return Policy{
		Attempts:       cfg.MaxAttempts,
		InitialBackoff: cfg.InitialBackoff.Duration,
		MaxBackoff:     cfg.MaxBackoff.Duration,
		Multiplier:     cfg.BackoffMultiplier,
	}
}

// Backoff returns the jittered wait before attempt (zero for the first attempt).
// The jitter keeps the delay within ±25% of the exponential value.
func (p Policy) Backoff(attempt int) time.Duration {
	if attempt <= 1 || p.InitialBackoff <= 0 {
		return 0
	}

	multiplier := p.Multiplier
	if multiplier < 1 {
		multiplier = 2
	}

	backoff := float64(p.InitialBackoff) * math.Pow(multiplier, float64(attempt-2))
	if p.MaxBackoff > 0 && backoff > float64(p.MaxBackoff) {
		backoff = float64(p.MaxBackoff)
	}

	jitterRange := backoff * 0.25                         //nolint:mnd
	backoff += rand.Float64()*2*jitterRange - jitterRange //nolint:gosec

	return time.Duration(max(backoff, 0))
}

// Do runs fn until it succeeds, fails with a non-retryable error, or the budget runs out.
// Operation labels the retry metric.
func (p Policy) Do(ctx context.Context, operation string, fn func(attempt int) error) error {
	attempts := max(p.Attempts, 1)
	retryable := p.Retryable
	if retryable == nil {
		retryable = Transient
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if d := p.Backoff(attempt); d > 0 {
			timer := time.NewTimer(d)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("context cancelled during backoff (attempt %d/%d): %w", attempt, attempts, ctx.Err())
			case <-timer.C:
			}
		}

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context cancelled before attempt %d: %w", attempt, err)
		}

		if attempt > 1 {
			RPCRetryInc(operation)
		}

		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			if attempts == 1 {
				return lastErr
			}
			return fmt.Errorf("non-retryable error on attempt %d/%d: %w", attempt, attempts, lastErr)
		}
		if attempt < attempts && p.OnRetry != nil {
			p.OnRetry(attempt, lastErr)
		}
	}

	if attempts == 1 {
		return lastErr
	}
	return fmt.Errorf("all %d attempts failed (last error: %w)", attempts, lastErr)
}

type singleAttemptKey struct{}

// SingleAttempt marks ctx so that client requests made with it are sent once. Callers that
// wrap requests in their own Policy use it to keep a single retry budget.
func SingleAttempt(ctx context.Context) context.Context {
	return context.WithValue(ctx, singleAttemptKey{}, true)
}

func isSingleAttempt(ctx context.Context) bool {
	single, _ := ctx.Value(singleAttemptKey{}).(bool)
	return single
}

// Transient reports whether err is a network, timeout, rate limit or gateway failure.
func Transient(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}

	return false
}

var transientMarkers = []string{
	"timeout",
	"deadline exceeded",
	"429",
	"too many requests",
	"rate limit",
	"502",
	"503",
	"504",
	"bad gateway",
	"service unavailable",
	"gateway timeout",
	"connection pool",
	"no available connection",
}
