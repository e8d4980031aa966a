package fetcher

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/logger"
	irpc "github.com/goran-ethernal/GnosisPayIndexor/internal/rpc"
	"github.com/goran-ethernal/GnosisPayIndexor/pkg/rpc"
)

// Fetcher pulls and decodes the logs of one event kind for a block range.
type Fetcher interface {
	Kind() Kind
	Fetch(ctx context.Context, fromBlock, toBlock uint64) ([]Event, error)
}

// decodeFunc turns a raw log into a typed event or returns an ErrDecode error.
type decodeFunc func(log *types.Log) (Event, error)

var _ Fetcher = (*LogFetcher)(nil)

// LogFetcher issues one scoped eth_getLogs query per range and decodes the result strictly.
type LogFetcher struct {
	kind      Kind
	addresses []common.Address
	topics    [][]common.Hash
	decode    decodeFunc
	rpc       rpc.EthClient
	retry     irpc.Policy
	log       *logger.Logger
}

// NewLogFetcher creates a fetcher for kind filtering by addresses and topics.
func NewLogFetcher(
	kind Kind,
	addresses []common.Address,
	topics [][]common.Hash,
	decode decodeFunc,
	rpcClient rpc.EthClient,
	retry irpc.Policy,
	log *logger.Logger,
) *LogFetcher {
	retry.Retryable = retryable

	return &LogFetcher{
		kind:      kind,
		addresses: addresses,
		topics:    topics,
		decode:    decode,
		rpc:       rpcClient,
		retry:     retry,
		log:       log,
	}
}

// Kind returns the event kind produced by the fetcher.
func (lf *LogFetcher) Kind() Kind {
	return lf.kind
}

// Fetch retrieves and decodes logs in [fromBlock, toBlock]. Failures are retried within the
// range budget, each attempt sending single eth_getLogs requests. A decode failure aborts immediately.
func (lf *LogFetcher) Fetch(ctx context.Context, fromBlock, toBlock uint64) ([]Event, error) {
	start := time.Now()
	defer func() { FetchDurationLog(lf.kind, time.Since(start)) }()

	policy := lf.retry
	policy.OnRetry = func(attempt int, err error) {
		FetchRetryInc(lf.kind)
		lf.log.Warnw("log fetch failed, retrying",
			"kind", lf.kind, "from", fromBlock, "to", toBlock, "attempt", attempt, "error", err)
	}

	// the range budget is the only retry layer, so requests are sent once each
	reqCtx := irpc.SingleAttempt(ctx)

	var logs []types.Log
	err := policy.Do(ctx, "eth_getLogs_range", func(int) error {
		var err error
		logs, err = lf.fetchLogsWithSplit(reqCtx, fromBlock, toBlock)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s logs for range %d-%d: %w", lf.kind, fromBlock, toBlock, err)
	}

	events := make([]Event, 0, len(logs))
	for i := range logs {
		if logs[i].Removed {
			continue
		}
		event, err := lf.decode(&logs[i])
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	FetchedLogsAdd(lf.kind, len(events))
	lf.log.Debugw("fetched logs", "kind", lf.kind, "from", fromBlock, "to", toBlock, "count", len(events))

	return events, nil
}

// fetchLogsWithSplit fetches logs and splits the range whenever the node reports too many results,
// following the suggested range when the node provides one.
func (lf *LogFetcher) fetchLogsWithSplit(ctx context.Context, fromBlock, toBlock uint64) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: lf.addresses,
		Topics:    lf.topics,
	}

	logs, err := lf.rpc.GetLogs(ctx, query)
	if err == nil {
		return logs, nil
	}

	ok, errData := irpc.IsTooManyResultsError(err)
	if !ok {
		return nil, err
	}

	if fromBlock == toBlock {
		return nil, fmt.Errorf("%w: single block %d has too many logs", ErrRangeTooLarge, fromBlock)
	}

	mid := (fromBlock + toBlock) / 2 //nolint:mnd
	if suggestedFrom, suggestedTo, ok := irpc.ParseSuggestedBlockRange(errData); ok &&
		suggestedFrom == fromBlock && suggestedTo >= fromBlock && suggestedTo < toBlock {
		mid = suggestedTo
	}

	lf.log.Infof("too many %s logs, splitting range %d-%d at %d", lf.kind, fromBlock, toBlock, mid)

	left, err := lf.fetchLogsWithSplit(ctx, fromBlock, mid)
	if err != nil {
		return nil, err
	}
	right, err := lf.fetchLogsWithSplit(ctx, mid+1, toBlock)
	if err != nil {
		return nil, err
	}

	return append(left, right...), nil
}
