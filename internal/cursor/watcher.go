package cursor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	intcommon "github.com/goran-ethernal/GnosisPayIndexor/internal/common"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/logger"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/metrics"
	"github.com/goran-ethernal/GnosisPayIndexor/pkg/rpc"
)

const headBufferSize = 16

// Watcher feeds new chain heads into a Cursor. It follows a new head subscription
// and falls back to polling when the client cannot subscribe.
type Watcher struct {
	client       rpc.EthClient
	cursor       *Cursor
	pollInterval time.Duration
	log          *logger.Logger
}

// NewWatcher creates a new block watcher.
func NewWatcher(client rpc.EthClient, cursor *Cursor, pollInterval time.Duration, log *logger.Logger) (*Watcher, error) {
	if client == nil {
		return nil, errors.New("rpc client is required")
	}
	if cursor == nil {
		return nil, errors.New("cursor is required")
	}
	if pollInterval <= 0 {
		return nil, errors.New("poll interval must be positive")
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &Watcher{
		client:       client,
		cursor:       cursor,
		pollInterval: pollInterval,
		log:          log,
	}, nil
}

// Prime reads the current head once so the cursor has a target before Run starts.
func (w *Watcher) Prime(ctx context.Context) error {
	return w.poll(ctx)
}

// Run follows the chain head until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	metrics.ComponentHealthSet(intcommon.ComponentBlockWatch, true)
	defer metrics.ComponentHealthSet(intcommon.ComponentBlockWatch, false)

	for {
		err := w.follow(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if errors.Is(err, rpc.ErrSubscriptionsUnsupported) {
			w.log.Infow("new head subscriptions unavailable, polling latest block", "interval", w.pollInterval)
			return w.pollLoop(ctx)
		}

		w.log.Warnw("new head subscription dropped, resubscribing", "error", err)

		// catch up on heads missed while the subscription was down
		if err := w.poll(ctx); err != nil {
			w.log.Warnw("failed to poll latest block", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.pollInterval):
		}
	}
}

// follow consumes one subscription until it fails.
func (w *Watcher) follow(ctx context.Context) error {
	heads := make(chan *types.Header, headBufferSize)

	sub, err := w.client.SubscribeNewHead(ctx, heads)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	w.log.Info("subscribed to new heads")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			if err == nil {
				return errors.New("subscription closed")
			}
			return err
		case h := <-heads:
			if h == nil || h.Number == nil {
				continue
			}
			w.observe(h.Number.Uint64())
		}
	}
}

func (w *Watcher) pollLoop(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.poll(ctx); err != nil && ctx.Err() == nil {
				w.log.Warnw("failed to poll latest block", "error", err)
			}
		}
	}
}

func (w *Watcher) poll(ctx context.Context) error {
	header, err := w.client.GetLatestBlockHeader(ctx)
	if err != nil {
		return fmt.Errorf("failed to get latest block: %w", err)
	}
	w.observe(header.Number.Uint64())
	return nil
}

func (w *Watcher) observe(n uint64) {
	if w.cursor.SetLatestBlock(n) {
		w.log.Debugw("new chain head", "block", n)
	}
}
