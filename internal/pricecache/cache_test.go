package pricecache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/logger"
	"github.com/goran-ethernal/GnosisPayIndexor/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testPrices = []TokenPrice{
	{Address: "0xcb444e90d8198415266c6a2724b7900fb12fc56e", Symbol: "EURe", PriceUSD: decimal.RequireFromString("1.08"), BlockNumber: 42},
	{Address: "0x9c58bacc331c9aa871afd802db6379a98e80cedb", Symbol: "GNO", PriceUSD: decimal.RequireFromString("210.5"), BlockNumber: 42},
}

func countingLoader(calls *atomic.Int32) Loader {
	return func(context.Context) ([]TokenPrice, error) {
		calls.Add(1)
		return testPrices, nil
	}
}

func requirePrices(t *testing.T, actual []TokenPrice) {
	t.Helper()

	require.Len(t, actual, len(testPrices))
	for i := range testPrices {
		require.Equal(t, testPrices[i].Address, actual[i].Address)
		require.Equal(t, testPrices[i].Symbol, actual[i].Symbol)
		require.True(t, testPrices[i].PriceUSD.Equal(actual[i].PriceUSD))
		require.Equal(t, testPrices[i].BlockNumber, actual[i].BlockNumber)
	}
}

func TestCache_Redis(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c := New(NewRedisStore(client, "gnosispay:"), time.Minute, logger.NewNopLogger())
	ctx := context.Background()

	var calls atomic.Int32
	prices, err := c.Get(ctx, "token-prices", countingLoader(&calls))
	require.NoError(t, err)
	requirePrices(t, prices)

	require.True(t, mr.Exists("gnosispay:token-prices"))
	require.Equal(t, time.Minute, mr.TTL("gnosispay:token-prices"))

	prices, err = c.Get(ctx, "token-prices", countingLoader(&calls))
	require.NoError(t, err)
	requirePrices(t, prices)
	require.Equal(t, int32(1), calls.Load())

	mr.FastForward(time.Minute + time.Second)

	_, err = c.Get(ctx, "token-prices", countingLoader(&calls))
	require.NoError(t, err)
	require.Equal(t, int32(2), calls.Load())
}

func TestCache_RedisUnavailableFallsBackToLoader(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	c := New(NewRedisStore(client, ""), time.Minute, logger.NewNopLogger())
	mr.Close()

	var calls atomic.Int32
	prices, err := c.Get(context.Background(), "token-prices", countingLoader(&calls))
	require.NoError(t, err)
	requirePrices(t, prices)
	require.Equal(t, int32(1), calls.Load())
}

func TestCache_CorruptEntryIsAMiss(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("token-prices", "{not json"))

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	var calls atomic.Int32
	c := New(NewRedisStore(client, ""), time.Minute, logger.NewNopLogger())
	_, err := c.Get(context.Background(), "token-prices", countingLoader(&calls))
	require.NoError(t, err)
	require.Equal(t, int32(1), calls.Load())
}

func TestCache_Memory(t *testing.T) {
	t.Parallel()

	c := New(NewMemoryStore(50*time.Millisecond), 50*time.Millisecond, logger.NewNopLogger())
	ctx := context.Background()

	var calls atomic.Int32
	for range 3 {
		prices, err := c.Get(ctx, "token-prices", countingLoader(&calls))
		require.NoError(t, err)
		requirePrices(t, prices)
	}
	require.Equal(t, int32(1), calls.Load())

	require.Eventually(t, func() bool {
		_, err := c.Get(ctx, "token-prices", countingLoader(&calls))
		return err == nil && calls.Load() == 2
	}, time.Second, 10*time.Millisecond)
}

func TestCache_LoaderError(t *testing.T) {
	t.Parallel()

	c := New(NewMemoryStore(time.Minute), time.Minute, logger.NewNopLogger())
	loadErr := errors.New("oracle unavailable")

	_, err := c.Get(context.Background(), "token-prices", func(context.Context) ([]TokenPrice, error) {
		return nil, loadErr
	})
	require.ErrorIs(t, err, loadErr)

	// failures are not cached
	var calls atomic.Int32
	_, err = c.Get(context.Background(), "token-prices", countingLoader(&calls))
	require.NoError(t, err)
	require.Equal(t, int32(1), calls.Load())
}

func TestCache_ConcurrentMissesLoadOnce(t *testing.T) {
	t.Parallel()

	c := New(NewMemoryStore(time.Minute), time.Minute, logger.NewNopLogger())

	release := make(chan struct{})
	var calls atomic.Int32
	load := func(context.Context) ([]TokenPrice, error) {
		calls.Add(1)
		<-release
		return testPrices, nil
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Get(context.Background(), "token-prices", load)
			require.NoError(t, err)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), calls.Load())
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	c, err := NewFromConfig(ctx, nil, time.Minute, nil)
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, c.store)
	require.NoError(t, c.Close())

	mr := miniredis.RunT(t)
	c, err = NewFromConfig(ctx, &config.RedisConfig{Addr: mr.Addr(), KeyPrefix: "gp:"}, time.Minute, nil)
	require.NoError(t, err)
	require.IsType(t, &RedisStore{}, c.store)
	require.NoError(t, c.Close())

	addr := mr.Addr()
	mr.Close()
	_, err = NewFromConfig(ctx, &config.RedisConfig{Addr: addr}, time.Minute, nil)
	require.Error(t, err)
}
