package fetcher

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	intcommon "github.com/goran-ethernal/GnosisPayIndexor/internal/common"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/logger"
	irpc "github.com/goran-ethernal/GnosisPayIndexor/internal/rpc"
	rpcmocks "github.com/goran-ethernal/GnosisPayIndexor/internal/rpc/mocks"
	"github.com/goran-ethernal/GnosisPayIndexor/pkg/config"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	gnoToken    = common.HexToAddress("0x9C58BAcC331c9aa871AFD802DB6379a98e80CEdb")
	safeAddr    = common.HexToAddress("0x00000000000000000000000000000000000005af")
	otherAddr   = common.HexToAddress("0x0000000000000000000000000000000000000bbb")
	fastRetries = irpc.Policy{Attempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
)

type dataErr struct{ data string }

func (e *dataErr) Error() string  { return "query returned more than 10000 results" }
func (e *dataErr) ErrorData() any { return e.data }

func transferLog(block uint64, index uint, from, to common.Address, value int64) types.Log {
	return types.Log{
		Address:     gnoToken,
		Topics:      []common.Hash{TransferTopic, common.BytesToHash(from.Bytes()), common.BytesToHash(to.Bytes())},
		Data:        common.LeftPadBytes(big.NewInt(value).Bytes(), 32),
		BlockNumber: block,
		TxHash:      common.BigToHash(big.NewInt(int64(block)*1000 + int64(index))),
		Index:       index,
	}
}

func setupTestLogFetcher(t *testing.T) (*LogFetcher, *rpcmocks.EthClient) {
	t.Helper()

	mockRPC := rpcmocks.NewEthClient(t)
	lf := NewLogFetcher(KindGnoTransfer,
		[]common.Address{gnoToken},
		[][]common.Hash{{TransferTopic}},
		decodeGnoTransfer, mockRPC, fastRetries, logger.NewNopLogger())

	return lf, mockRPC
}

func TestLogFetcher_Fetch(t *testing.T) {
	lf, mockRPC := setupTestLogFetcher(t)
	ctx := context.Background()

	logs := []types.Log{
		transferLog(100, 0, safeAddr, otherAddr, 5),
		transferLog(101, 3, otherAddr, safeAddr, 7),
	}

	mockRPC.EXPECT().GetLogs(mock.Anything, mock.MatchedBy(func(q ethereum.FilterQuery) bool {
		return q.FromBlock.Uint64() == 100 && q.ToBlock.Uint64() == 102 &&
			len(q.Addresses) == 1 && q.Addresses[0] == gnoToken
	})).Return(logs, nil).Once()

	events, err := lf.Fetch(ctx, 100, 102)
	require.NoError(t, err)
	require.Len(t, events, 2)

	first, ok := events[0].(*GnoTransferEvent)
	require.True(t, ok)
	require.Equal(t, safeAddr, first.From)
	require.Equal(t, otherAddr, first.To)
	require.Equal(t, int64(5), first.Amount.Int64())
	require.Equal(t, uint64(100), first.Meta().BlockNumber)
}

func TestLogFetcher_RetriesTransientErrors(t *testing.T) {
	lf, mockRPC := setupTestLogFetcher(t)
	ctx := context.Background()

	mockRPC.EXPECT().GetLogs(mock.Anything, mock.Anything).Return(nil, errors.New("503 service unavailable")).Twice()
	mockRPC.EXPECT().GetLogs(mock.Anything, mock.Anything).Return([]types.Log{}, nil).Once()

	events, err := lf.Fetch(ctx, 1, 10)
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestLogFetcher_RetryBudgetExhausted(t *testing.T) {
	lf, mockRPC := setupTestLogFetcher(t)
	ctx := context.Background()

	mockRPC.EXPECT().GetLogs(mock.Anything, mock.Anything).Return(nil, errors.New("connection reset")).Times(3)

	_, err := lf.Fetch(ctx, 1, 10)
	require.Error(t, err)
	require.Contains(t, err.Error(), "all 3 attempts failed")
}

func TestLogFetcher_RangeBudgetIsTheOnlyRetryLayer(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	client, err := irpc.NewClient(context.Background(), config.RPCConfig{
		HTTPURL: srv.URL,
		Retry: &config.RetryConfig{
			MaxAttempts:       5,
			InitialBackoff:    intcommon.NewDuration(time.Millisecond),
			MaxBackoff:        intcommon.NewDuration(2 * time.Millisecond),
			BackoffMultiplier: 2,
		},
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	for _, budget := range []int{1, 3} {
		requests.Store(0)

		lf := NewLogFetcher(KindGnoTransfer,
			[]common.Address{gnoToken},
			[][]common.Hash{{TransferTopic}},
			decodeGnoTransfer, client,
			irpc.Policy{Attempts: budget, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond},
			logger.NewNopLogger())

		_, err := lf.Fetch(context.Background(), 1, 10)
		require.Error(t, err)
		require.Equal(t, int32(budget), requests.Load(), "budget %d", budget)
	}
}

func TestLogFetcher_DecodeErrorAbortsRange(t *testing.T) {
	lf, mockRPC := setupTestLogFetcher(t)
	ctx := context.Background()

	bad := transferLog(100, 0, safeAddr, otherAddr, 5)
	bad.Data = bad.Data[:16]

	mockRPC.EXPECT().GetLogs(mock.Anything, mock.Anything).Return([]types.Log{bad}, nil).Once()

	_, err := lf.Fetch(ctx, 100, 100)
	require.ErrorIs(t, err, ErrDecode)
}

func TestLogFetcher_SkipsRemovedLogs(t *testing.T) {
	lf, mockRPC := setupTestLogFetcher(t)
	ctx := context.Background()

	removed := transferLog(100, 0, safeAddr, otherAddr, 5)
	removed.Removed = true

	mockRPC.EXPECT().GetLogs(mock.Anything, mock.Anything).Return([]types.Log{removed}, nil).Once()

	events, err := lf.Fetch(ctx, 100, 100)
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestLogFetcher_SplitsOnTooManyResults(t *testing.T) {
	lf, mockRPC := setupTestLogFetcher(t)
	ctx := context.Background()

	rangeIs := func(from, to uint64) any {
		return mock.MatchedBy(func(q ethereum.FilterQuery) bool {
			return q.FromBlock.Uint64() == from && q.ToBlock.Uint64() == to
		})
	}

	tooMany := &dataErr{data: fmt.Sprintf("Query returned more than 10000 results. Try with this block range [0x%x, 0x%x].", 100, 140)}

	mockRPC.EXPECT().GetLogs(mock.Anything, rangeIs(100, 200)).Return(nil, tooMany).Once()
	mockRPC.EXPECT().GetLogs(mock.Anything, rangeIs(100, 140)).Return([]types.Log{transferLog(120, 1, safeAddr, otherAddr, 1)}, nil).Once()
	mockRPC.EXPECT().GetLogs(mock.Anything, rangeIs(141, 200)).Return([]types.Log{transferLog(150, 2, safeAddr, otherAddr, 2)}, nil).Once()

	events, err := lf.Fetch(ctx, 100, 200)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, uint64(120), events[0].Meta().BlockNumber)
	require.Equal(t, uint64(150), events[1].Meta().BlockNumber)
}

func TestLogFetcher_SingleBlockTooManyResults(t *testing.T) {
	lf, mockRPC := setupTestLogFetcher(t)
	ctx := context.Background()

	mockRPC.EXPECT().GetLogs(mock.Anything, mock.Anything).
		Return(nil, &dataErr{data: "Query returned more than 10000 results."}).Once()

	_, err := lf.Fetch(ctx, 100, 100)
	require.ErrorIs(t, err, ErrRangeTooLarge)
}

func TestLogFetcher_ContextCancelled(t *testing.T) {
	lf, mockRPC := setupTestLogFetcher(t)
	ctx, cancel := context.WithCancel(context.Background())

	mockRPC.EXPECT().GetLogs(mock.Anything, mock.Anything).RunAndReturn(
		func(context.Context, ethereum.FilterQuery) ([]types.Log, error) {
			cancel()
			return nil, errors.New("timeout")
		}).Once()

	_, err := lf.Fetch(ctx, 1, 2)
	require.ErrorIs(t, err, context.Canceled)
}

type stubFetcher struct {
	kind   Kind
	events []Event
	err    error
}

func (s *stubFetcher) Kind() Kind { return s.kind }

func (s *stubFetcher) Fetch(context.Context, uint64, uint64) ([]Event, error) {
	return s.events, s.err
}

func TestSet_FetchAllOrdersEvents(t *testing.T) {
	meta := func(block uint64, index uint) LogMeta {
		return LogMeta{BlockNumber: block, LogIndex: index}
	}

	set := NewSet(
		&stubFetcher{kind: KindSpend, events: []Event{
			&SpendEvent{LogMeta: meta(12, 4)},
			&SpendEvent{LogMeta: meta(10, 9)},
		}},
		&stubFetcher{kind: KindGnoTransfer, events: []Event{
			&GnoTransferEvent{LogMeta: meta(10, 2)},
			&GnoTransferEvent{LogMeta: meta(11, 0)},
		}},
		&stubFetcher{kind: KindRewardDistribution, events: []Event{
			&RewardDistributionEvent{LogMeta: meta(11, 0)},
		}},
	)

	events, err := set.FetchAll(context.Background(), 10, 12)
	require.NoError(t, err)
	require.Len(t, events, 5)

	type key struct {
		block uint64
		index uint
		kind  Kind
	}
	got := make([]key, len(events))
	for i, e := range events {
		got[i] = key{e.Meta().BlockNumber, e.Meta().LogIndex, e.Kind()}
	}

	require.Equal(t, []key{
		{10, 2, KindGnoTransfer},
		{10, 9, KindSpend},
		{11, 0, KindGnoTransfer},
		{11, 0, KindRewardDistribution},
		{12, 4, KindSpend},
	}, got)
}

func TestSet_FetchAllFailsOnAnyFetcher(t *testing.T) {
	set := NewSet(
		&stubFetcher{kind: KindSpend, events: []Event{&SpendEvent{}}},
		&stubFetcher{kind: KindRefund, err: errors.New("boom")},
	)

	_, err := set.FetchAll(context.Background(), 1, 2)
	require.EqualError(t, err, "boom")
}

func TestNewDefaultSet(t *testing.T) {
	mockRPC := rpcmocks.NewEthClient(t)

	set := NewDefaultSet(Contracts{
		Spender:       common.HexToAddress("0x01"),
		SpendReceiver: common.HexToAddress("0x02"),
		GNOToken:      gnoToken,
		OGNFT:         common.HexToAddress("0x03"),
		PaymentTokens: []common.Address{common.HexToAddress("0x04")},
	}, mockRPC, fastRetries, logger.NewNopLogger())

	kinds := make([]Kind, 0, len(set.Fetchers()))
	for _, f := range set.Fetchers() {
		kinds = append(kinds, f.Kind())
	}
	require.Equal(t, []Kind{KindSpend, KindRefund, KindGnoTransfer, KindRewardDistribution, KindOgNftClaim}, kinds)

	withoutTokens := NewDefaultSet(Contracts{GNOToken: gnoToken}, mockRPC, fastRetries, logger.NewNopLogger())
	require.Len(t, withoutTokens.Fetchers(), 4)
}
