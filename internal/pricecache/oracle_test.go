package pricecache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/chain/mocks"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/logger"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type staticTokens []*store.Token

func (s staticTokens) ListTokens() ([]*store.Token, error) { return s, nil }

type countingTokens struct {
	staticTokens
	calls atomic.Int32
}

func (c *countingTokens) ListTokens() ([]*store.Token, error) {
	c.calls.Add(1)
	return c.staticTokens, nil
}

var (
	eureOracle = common.HexToAddress("0xab70BCB260073d036d1660201e9d5405F5829b7a")
	gnoOracle  = common.HexToAddress("0x22441d81416430A54336aB28765abd31a792Ad37")

	registry = staticTokens{
		{Address: common.HexToAddress("0xcB444e90D8198415266c6a2724b7900fb12FC56E"), Symbol: "EURe", OracleAddress: &eureOracle},
		{Address: common.HexToAddress("0x2a22f9c3b484c3629090FeED35F17Ff8F88f76F0"), Symbol: "USDC.e"},
		{Address: common.HexToAddress("0x9C58BAcC331c9aa871AFD802DB6379a98e80CEdb"), Symbol: "GNO", OracleAddress: &gnoOracle},
	}
)

func TestOracleLoader(t *testing.T) {
	t.Parallel()

	reader := mocks.NewReader(t)
	reader.EXPECT().LatestBlock(mock.Anything).Return(uint64(4200), nil).Once()
	reader.EXPECT().USDPrices(mock.Anything, []common.Address{eureOracle, {}, gnoOracle}, uint64(4200)).
		Return([]decimal.Decimal{decimal.RequireFromString("1.08"), decimal.NewFromInt(1),
			decimal.RequireFromString("210.5")}, nil).Once()

	prices, err := OracleLoader(registry, reader)(context.Background())
	require.NoError(t, err)
	require.Len(t, prices, 3)

	require.Equal(t, "0xcb444e90d8198415266c6a2724b7900fb12fc56e", prices[0].Address)
	require.Equal(t, "EURe", prices[0].Symbol)
	require.True(t, decimal.RequireFromString("1.08").Equal(prices[0].PriceUSD))
	require.True(t, decimal.NewFromInt(1).Equal(prices[1].PriceUSD))
	require.Equal(t, "GNO", prices[2].Symbol)
	require.Equal(t, uint64(4200), prices[2].BlockNumber)
}

func TestOracleLoader_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(r *mocks.Reader)
		err   string
	}{
		{
			name: "latest block",
			setup: func(r *mocks.Reader) {
				r.EXPECT().LatestBlock(mock.Anything).Return(uint64(0), errors.New("timeout"))
			},
			err: "failed to get latest block",
		},
		{
			name: "oracle read",
			setup: func(r *mocks.Reader) {
				r.EXPECT().LatestBlock(mock.Anything).Return(uint64(1), nil)
				r.EXPECT().USDPrices(mock.Anything, mock.Anything, uint64(1)).Return(nil, errors.New("reverted"))
			},
			err: "failed to read oracle prices at block 1",
		},
		{
			name: "short price list",
			setup: func(r *mocks.Reader) {
				r.EXPECT().LatestBlock(mock.Anything).Return(uint64(1), nil)
				r.EXPECT().USDPrices(mock.Anything, mock.Anything, uint64(1)).
					Return([]decimal.Decimal{decimal.NewFromInt(1)}, nil)
			},
			err: "expected 3 oracle prices, got 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reader := mocks.NewReader(t)
			tt.setup(reader)

			_, err := OracleLoader(registry, reader)(context.Background())
			require.ErrorContains(t, err, tt.err)
		})
	}
}

func TestOracleLoader_EmptyRegistry(t *testing.T) {
	t.Parallel()

	prices, err := OracleLoader(staticTokens{}, mocks.NewReader(t))(context.Background())
	require.NoError(t, err)
	require.Empty(t, prices)
}

func TestPrices_UsesCache(t *testing.T) {
	t.Parallel()

	reader := mocks.NewReader(t)
	reader.EXPECT().LatestBlock(mock.Anything).Return(uint64(7), nil).Once()
	reader.EXPECT().USDPrices(mock.Anything, mock.Anything, uint64(7)).
		Return([]decimal.Decimal{decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.NewFromInt(200)}, nil).Once()

	tokens := &countingTokens{staticTokens: registry}
	prices := NewPrices(New(NewMemoryStore(time.Minute), time.Minute, logger.NewNopLogger()), OracleLoader(tokens, reader))

	for range 3 {
		got, err := prices.TokenPrices(context.Background())
		require.NoError(t, err)
		require.Len(t, got, 3)
	}
	require.Equal(t, int32(1), tokens.calls.Load())
}
