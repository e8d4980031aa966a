package chain

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/logger"
	rpcmocks "github.com/goran-ethernal/GnosisPayIndexor/internal/rpc/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	testSafe   = common.HexToAddress("0x00000000000000000000000000000000000005af")
	testModule = common.HexToAddress("0x000000000000000000000000000000000000de1a")
	moduleCode = []byte{0x60, 0x80, 0x60, 0x40}
)

func newTestResolver(t *testing.T, codeHashes ...common.Hash) (*ModuleSafeResolver, *rpcmocks.EthClient) {
	t.Helper()

	client := rpcmocks.NewEthClient(t)
	resolver, err := NewModuleSafeResolver(client, testMulticall, codeHashes, logger.NewNopLogger())
	require.NoError(t, err)

	return resolver, client
}

func toMulticall(msg ethereum.CallMsg) bool {
	return msg.To != nil && *msg.To == testMulticall
}

func TestSafeResolver_SafeForModule(t *testing.T) {
	resolver, client := newTestResolver(t)
	ctx := context.Background()

	client.EXPECT().CallContract(ctx, mock.MatchedBy(func(msg ethereum.CallMsg) bool {
		return msg.To != nil && *msg.To == testModule
	}), uint64(9)).Return(packOutputs(t, "avatar", testSafe), nil).Once()

	safe, err := resolver.SafeForModule(ctx, testModule, 9)
	require.NoError(t, err)
	require.Equal(t, testSafe, safe)
}

func TestSafeResolver_SafeForModuleWithoutAvatar(t *testing.T) {
	resolver, client := newTestResolver(t)
	ctx := context.Background()

	client.EXPECT().CallContract(ctx, mock.Anything, uint64(9)).
		Return(packOutputs(t, "avatar", common.Address{}), nil).Once()

	_, err := resolver.SafeForModule(ctx, testModule, 9)
	require.ErrorIs(t, err, ErrNoAvatar)
}

func TestSafeResolver_Owners(t *testing.T) {
	resolver, client := newTestResolver(t)
	ctx := context.Background()

	owners := []common.Address{
		common.HexToAddress("0x00000000000000000000000000000000000000e1"),
		common.HexToAddress("0x00000000000000000000000000000000000000e2"),
	}
	client.EXPECT().CallContract(ctx, mock.Anything, uint64(3)).
		Return(packOutputs(t, "getOwners", owners), nil).Once()

	got, err := resolver.Owners(ctx, testSafe, 3)
	require.NoError(t, err)
	require.Equal(t, owners, got)
}

func TestSafeResolver_IsGnosisPaySafe(t *testing.T) {
	ctx := context.Background()
	otherAvatar := common.HexToAddress("0x00000000000000000000000000000000000000ff")

	tests := []struct {
		name       string
		code       []byte
		codeHashes []common.Hash
		modulesOK  bool
		modules    []common.Address
		avatar     common.Address
		want       bool
	}{
		{
			name: "externally owned account",
			code: nil,
			want: false,
		},
		{
			name:      "contract without module support",
			code:      []byte{0x01},
			modulesOK: false,
			want:      false,
		},
		{
			name:      "safe without modules",
			code:      []byte{0x01},
			modulesOK: true,
			modules:   []common.Address{},
			want:      false,
		},
		{
			name:      "module controlling another avatar",
			code:      []byte{0x01},
			modulesOK: true,
			modules:   []common.Address{testModule},
			avatar:    otherAvatar,
			want:      false,
		},
		{
			name:      "delay module with any code hash",
			code:      []byte{0x01},
			modulesOK: true,
			modules:   []common.Address{testModule},
			avatar:    testSafe,
			want:      true,
		},
		{
			name:       "delay module with matching code hash",
			code:       []byte{0x01},
			codeHashes: []common.Hash{crypto.Keccak256Hash(moduleCode)},
			modulesOK:  true,
			modules:    []common.Address{testModule},
			avatar:     testSafe,
			want:       true,
		},
		{
			name:       "delay module with unknown code hash",
			code:       []byte{0x01},
			codeHashes: []common.Hash{common.HexToHash("0x01")},
			modulesOK:  true,
			modules:    []common.Address{testModule},
			avatar:     testSafe,
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver, client := newTestResolver(t, tt.codeHashes...)

			client.EXPECT().CodeAt(ctx, testSafe).Return(tt.code, nil).Once()

			if len(tt.code) > 0 {
				modulesRes := CallResult{Success: tt.modulesOK}
				if tt.modulesOK {
					modulesRes.ReturnData = packOutputs(t, "getModulesPaginated", tt.modules, sentinelModules)
				}
				client.EXPECT().CallContract(ctx, mock.MatchedBy(toMulticall), uint64(50)).
					Return(packAggregate(t, modulesRes), nil).Once()

				if len(tt.modules) > 0 {
					client.EXPECT().CallContract(ctx, mock.MatchedBy(toMulticall), uint64(50)).
						Return(packAggregate(t, CallResult{
							Success:    true,
							ReturnData: packOutputs(t, "avatar", tt.avatar),
						}), nil).Once()
				}

				if tt.avatar == testSafe && len(tt.codeHashes) > 0 {
					client.EXPECT().CodeAt(ctx, testModule).Return(moduleCode, nil).Once()
				}
			}

			got, err := resolver.IsGnosisPaySafe(ctx, testSafe, 50)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)

			// second lookup is served from the cache
			got, err = resolver.IsGnosisPaySafe(ctx, testSafe, 51)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestMulticaller_EmptyBatch(t *testing.T) {
	client := rpcmocks.NewEthClient(t)
	m := NewMulticaller(client, testMulticall)

	results, err := m.Aggregate(context.Background(), nil, 1)
	require.NoError(t, err)
	require.Nil(t, results)
}

func TestMulticaller_ResultCountMismatch(t *testing.T) {
	client := rpcmocks.NewEthClient(t)
	m := NewMulticaller(client, testMulticall)
	ctx := context.Background()

	client.EXPECT().CallContract(ctx, mock.Anything, uint64(1)).Return(packAggregate(t), nil).Once()

	_, err := m.Aggregate(ctx, []Call{{Target: testSafe, Data: []byte{0x01}}}, 1)
	require.Error(t, err)
}

func TestUnpackSingle_Failed(t *testing.T) {
	parsed, err := loadABIs()
	require.NoError(t, err)

	_, err = unpackSingle[*big.Int](parsed.token, "balanceOf", CallResult{Success: false})
	require.ErrorIs(t, err, ErrCallFailed)
}

func TestSafeResolver_IsGnosisPaySafeRechecksNegatives(t *testing.T) {
	resolver, client := newTestResolver(t)
	ctx := context.Background()

	const firstSeen uint64 = 50
	recheck := firstSeen + NegativeRecheckBlocks + 1

	client.EXPECT().CodeAt(ctx, testSafe).Return([]byte{0x01}, nil).Twice()

	// no modules yet when the account is first seen
	client.EXPECT().CallContract(ctx, mock.MatchedBy(toMulticall), firstSeen).
		Return(packAggregate(t, CallResult{
			Success:    true,
			ReturnData: packOutputs(t, "getModulesPaginated", []common.Address{}, sentinelModules),
		}), nil).Once()

	// the delay module is enabled later on
	client.EXPECT().CallContract(ctx, mock.MatchedBy(toMulticall), recheck).
		Return(packAggregate(t, CallResult{
			Success:    true,
			ReturnData: packOutputs(t, "getModulesPaginated", []common.Address{testModule}, sentinelModules),
		}), nil).Once()
	client.EXPECT().CallContract(ctx, mock.MatchedBy(toMulticall), recheck).
		Return(packAggregate(t, CallResult{
			Success:    true,
			ReturnData: packOutputs(t, "avatar", testSafe),
		}), nil).Once()

	steps := []struct {
		block uint64
		want  bool
	}{
		{block: firstSeen, want: false},
		{block: firstSeen + NegativeRecheckBlocks, want: false},
		{block: recheck, want: true},
		{block: recheck + 1_000_000, want: true},
	}

	for _, step := range steps {
		got, err := resolver.IsGnosisPaySafe(ctx, testSafe, step.block)
		require.NoError(t, err)
		require.Equal(t, step.want, got, "block %d", step.block)
	}
}

func TestSafeCheck_Covers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		check safeCheck
		block uint64
		want  bool
	}{
		{name: "positive later block", check: safeCheck{ok: true, block: 10}, block: 10_000_000, want: true},
		{name: "positive earlier block", check: safeCheck{ok: true, block: 10}, block: 9},
		{name: "negative same block", check: safeCheck{block: 10}, block: 10, want: true},
		{name: "negative within distance", check: safeCheck{block: 10}, block: 10 + NegativeRecheckBlocks, want: true},
		{name: "negative past distance", check: safeCheck{block: 10}, block: 11 + NegativeRecheckBlocks},
		{name: "negative earlier block", check: safeCheck{block: 10}, block: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, tt.check.covers(tt.block))
		})
	}
}
