package fetcher

import (
	"context"
	"errors"
	"time"

	irpc "github.com/goran-ethernal/GnosisPayIndexor/internal/rpc"
)

const (
	defaultAttempts   = 30
	defaultBackoff    = 500 * time.Millisecond
	defaultMaxBackoff = 15 * time.Second
)

// ErrRangeTooLarge is returned when a single block holds more logs than the node will return.
var ErrRangeTooLarge = errors.New("block range cannot be split further")

// DefaultRetryPolicy returns the default per-range fetch budget.
func DefaultRetryPolicy() irpc.Policy {
	return irpc.Policy{Attempts: defaultAttempts, InitialBackoff: defaultBackoff, MaxBackoff: defaultMaxBackoff}
}

// retryable treats every failure as transient except decode errors, unsplittable ranges
// and cancellation.
func retryable(err error) bool {
	return !errors.Is(err, ErrDecode) &&
		!errors.Is(err, ErrRangeTooLarge) &&
		!errors.Is(err, context.Canceled)
}
