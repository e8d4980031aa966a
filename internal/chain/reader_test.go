package chain

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/logger"
	rpcmocks "github.com/goran-ethernal/GnosisPayIndexor/internal/rpc/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	testGNO       = common.HexToAddress("0x9C58BAcC331c9aa871AFD802DB6379a98e80CEdb")
	testOGNFT     = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	testMulticall = common.HexToAddress("0xcA11bde05977b3631167028862bE2a173976CA11")
	testOracle    = common.HexToAddress("0x00000000000000000000000000000000000000b1")
)

func newTestReader(t *testing.T) (*ContractReader, *rpcmocks.EthClient) {
	t.Helper()

	client := rpcmocks.NewEthClient(t)
	reader, err := NewContractReader(client, ReaderConfig{
		GNOToken:       testGNO,
		OGNFT:          testOGNFT,
		Multicall:      testMulticall,
		BlockCacheSize: 16,
	}, logger.NewNopLogger())
	require.NoError(t, err)

	return reader, client
}

// packAggregate encodes Multicall3 aggregate3 return data.
func packAggregate(t *testing.T, results ...CallResult) []byte {
	t.Helper()

	parsed, err := loadABIs()
	require.NoError(t, err)

	out, err := parsed.multicall.Methods["aggregate3"].Outputs.Pack(results)
	require.NoError(t, err)
	return out
}

func packOutputs(t *testing.T, method string, values ...any) []byte {
	t.Helper()

	parsed, err := loadABIs()
	require.NoError(t, err)

	var out []byte
	switch method {
	case "balanceOf":
		out, err = parsed.token.Methods[method].Outputs.Pack(values...)
	case "decimals", "latestRoundData":
		out, err = parsed.aggregator.Methods[method].Outputs.Pack(values...)
	case "getOwners", "getModulesPaginated":
		out, err = parsed.safe.Methods[method].Outputs.Pack(values...)
	case "avatar":
		out, err = parsed.delay.Methods[method].Outputs.Pack(values...)
	default:
		t.Fatalf("unknown method %s", method)
	}
	require.NoError(t, err)
	return out
}

func TestNewContractReader_NilClient(t *testing.T) {
	_, err := NewContractReader(nil, ReaderConfig{}, logger.NewNopLogger())
	require.Error(t, err)
}

func TestContractReader_BlockIsCached(t *testing.T) {
	reader, client := newTestReader(t)
	ctx := context.Background()

	header := &types.Header{Number: big.NewInt(100), Time: 1_700_000_000}
	client.EXPECT().GetBlockHeader(ctx, uint64(100)).Return(header, nil).Once()

	first, err := reader.Block(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, uint64(100), first.Number)
	require.Equal(t, uint64(1_700_000_000), first.Timestamp)
	require.Equal(t, header.Hash(), first.Hash)

	second, err := reader.Block(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestContractReader_BlockNotFound(t *testing.T) {
	reader, client := newTestReader(t)
	ctx := context.Background()

	client.EXPECT().GetBlockHeader(ctx, uint64(5)).Return(nil, ethereum.NotFound).Once()

	_, err := reader.Block(ctx, 5)
	require.ErrorIs(t, err, ErrBlockNotFound)
}

func TestContractReader_GnoBalance(t *testing.T) {
	reader, client := newTestReader(t)
	ctx := context.Background()
	safe := common.HexToAddress("0x00000000000000000000000000000000000000c1")

	want, ok := new(big.Int).SetString("2500000000000000000", 10)
	require.True(t, ok)

	client.EXPECT().CallContract(ctx, mock.MatchedBy(func(msg ethereum.CallMsg) bool {
		return msg.To != nil && *msg.To == testGNO
	}), uint64(42)).Return(packOutputs(t, "balanceOf", want), nil).Once()

	got, err := reader.GnoBalance(ctx, safe, 42)
	require.NoError(t, err)
	require.Equal(t, 0, want.Cmp(got))
}

func TestContractReader_USDPrices(t *testing.T) {
	reader, client := newTestReader(t)
	ctx := context.Background()

	client.EXPECT().CallContract(ctx, mock.MatchedBy(func(msg ethereum.CallMsg) bool {
		return msg.To != nil && *msg.To == testMulticall
	}), uint64(10)).Return(packAggregate(t,
		CallResult{Success: true, ReturnData: packOutputs(t, "decimals", uint8(8))},
		CallResult{Success: true, ReturnData: packOutputs(t, "latestRoundData",
			big.NewInt(1), big.NewInt(25_012_345_678), big.NewInt(0), big.NewInt(0), big.NewInt(1))},
	), nil).Once()

	prices, err := reader.USDPrices(ctx, []common.Address{{}, testOracle}, 10)
	require.NoError(t, err)
	require.Len(t, prices, 2)
	require.Equal(t, "1", prices[0].String())
	require.Equal(t, "250.12345678", prices[1].String())
}

func TestContractReader_USDPricesWithoutOracles(t *testing.T) {
	reader, _ := newTestReader(t)

	prices, err := reader.USDPrices(context.Background(), []common.Address{{}}, 10)
	require.NoError(t, err)
	require.Equal(t, "1", prices[0].String())
}

func TestContractReader_USDPricesRevertedOracle(t *testing.T) {
	reader, client := newTestReader(t)
	ctx := context.Background()

	client.EXPECT().CallContract(ctx, mock.Anything, uint64(10)).Return(packAggregate(t,
		CallResult{Success: true, ReturnData: packOutputs(t, "decimals", uint8(8))},
		CallResult{Success: false},
	), nil).Once()

	_, err := reader.USDPrices(ctx, []common.Address{testOracle}, 10)
	require.ErrorIs(t, err, ErrCallFailed)
}

func TestContractReader_IsOgNftHolder(t *testing.T) {
	ctx := context.Background()
	owners := []common.Address{
		common.HexToAddress("0x00000000000000000000000000000000000000d1"),
		common.HexToAddress("0x00000000000000000000000000000000000000d2"),
	}

	tests := []struct {
		name     string
		balances []int64
		want     bool
	}{
		{name: "no owner holds", balances: []int64{0, 0}, want: false},
		{name: "second owner holds", balances: []int64{0, 1}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, client := newTestReader(t)

			results := make([]CallResult, len(tt.balances))
			for i, b := range tt.balances {
				results[i] = CallResult{Success: true, ReturnData: packOutputs(t, "balanceOf", big.NewInt(b))}
			}
			client.EXPECT().CallContract(ctx, mock.Anything, uint64(7)).Return(packAggregate(t, results...), nil).Once()

			got, err := reader.IsOgNftHolder(ctx, owners, 7)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestContractReader_IsOgNftHolderNoOwners(t *testing.T) {
	reader, _ := newTestReader(t)

	got, err := reader.IsOgNftHolder(context.Background(), nil, 7)
	require.NoError(t, err)
	require.False(t, got)
}
