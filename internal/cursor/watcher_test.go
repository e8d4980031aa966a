package cursor

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/logger"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/rpc/mocks"
	"github.com/goran-ethernal/GnosisPayIndexor/pkg/rpc"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func header(n int64) *types.Header {
	return &types.Header{Number: big.NewInt(n)}
}

func waitFor(t *testing.T, c *Cursor, target uint64) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.WaitForBlock(ctx, target))
}

func TestWatcher_Polling(t *testing.T) {
	t.Parallel()

	client := mocks.NewEthClient(t)
	client.EXPECT().SubscribeNewHead(mock.Anything, mock.Anything).Return(nil, rpc.ErrSubscriptionsUnsupported).Once()
	client.EXPECT().GetLatestBlockHeader(mock.Anything).Return(header(100), nil).Once()
	client.EXPECT().GetLatestBlockHeader(mock.Anything).Return(nil, errors.New("timeout")).Once()
	client.EXPECT().GetLatestBlockHeader(mock.Anything).Return(header(120), nil)

	c := New(10, 2)
	w, err := NewWatcher(client, c, 5*time.Millisecond, logger.NewNopLogger())
	require.NoError(t, err)

	require.NoError(t, w.Prime(context.Background()))
	require.Equal(t, uint64(100), c.LatestBlock())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitFor(t, c, 120)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestWatcher_Subscription(t *testing.T) {
	t.Parallel()

	client := mocks.NewEthClient(t)
	client.EXPECT().SubscribeNewHead(mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, ch chan<- *types.Header) (ethereum.Subscription, error) {
			return event.NewSubscription(func(quit <-chan struct{}) error {
				for _, n := range []int64{7, 5, 9} {
					select {
					case ch <- header(n):
					case <-quit:
						return nil
					}
				}
				<-quit
				return nil
			}), nil
		}).Once()

	c := New(10, 2)
	w, err := NewWatcher(client, c, time.Second, logger.NewNopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitFor(t, c, 9)
	require.Equal(t, uint64(9), c.LatestBlock())

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestWatcher_Resubscribes(t *testing.T) {
	t.Parallel()

	client := mocks.NewEthClient(t)
	client.EXPECT().SubscribeNewHead(mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, ch chan<- *types.Header) (ethereum.Subscription, error) {
			return event.NewSubscription(func(quit <-chan struct{}) error {
				ch <- header(3)
				return errors.New("websocket closed")
			}), nil
		}).Once()
	client.EXPECT().GetLatestBlockHeader(mock.Anything).Return(header(4), nil).Once()
	client.EXPECT().SubscribeNewHead(mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, ch chan<- *types.Header) (ethereum.Subscription, error) {
			return event.NewSubscription(func(quit <-chan struct{}) error {
				ch <- header(8)
				<-quit
				return nil
			}), nil
		})

	c := New(10, 2)
	w, err := NewWatcher(client, c, 5*time.Millisecond, logger.NewNopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitFor(t, c, 8)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestNewWatcher_Validation(t *testing.T) {
	t.Parallel()

	client := mocks.NewEthClient(t)

	_, err := NewWatcher(nil, New(1, 1), time.Second, nil)
	require.Error(t, err)
	_, err = NewWatcher(client, nil, time.Second, nil)
	require.Error(t, err)
	_, err = NewWatcher(client, New(1, 1), 0, nil)
	require.Error(t, err)
}
