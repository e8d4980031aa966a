package fetcher

import (
	"cmp"
	"context"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/logger"
	irpc "github.com/goran-ethernal/GnosisPayIndexor/internal/rpc"
	"github.com/goran-ethernal/GnosisPayIndexor/pkg/rpc"
	"golang.org/x/sync/errgroup"
)

// Contracts holds the addresses the fetchers filter on.
type Contracts struct {
	Spender            common.Address
	SpendReceiver      common.Address
	GNOToken           common.Address
	RewardsDistributor common.Address
	OGNFT              common.Address
	PaymentTokens      []common.Address
}

// Set runs a group of fetchers over the same block range.
type Set struct {
	fetchers []Fetcher
}

// NewSet creates a Set from the given fetchers.
func NewSet(fetchers ...Fetcher) *Set {
	return &Set{fetchers: fetchers}
}

// NewDefaultSet builds the Spend, Refund, GNO transfer, reward distribution and OG NFT claim fetchers.
func NewDefaultSet(contracts Contracts, client rpc.EthClient, retry irpc.Policy, log *logger.Logger) *Set {
	topicOf := func(addr common.Address) common.Hash {
		return common.BytesToHash(addr.Bytes())
	}

	fetchers := []Fetcher{
		NewLogFetcher(KindSpend,
			[]common.Address{contracts.Spender},
			[][]common.Hash{{SpendTopic}},
			decodeSpend, client, retry, log),
	}

	// an empty address filter would match every contract
	if len(contracts.PaymentTokens) > 0 {
		fetchers = append(fetchers, NewLogFetcher(KindRefund,
			contracts.PaymentTokens,
			[][]common.Hash{{TransferTopic}, {topicOf(contracts.SpendReceiver)}},
			decodeRefund, client, retry, log))
	}

	fetchers = append(fetchers,
		NewLogFetcher(KindGnoTransfer,
			[]common.Address{contracts.GNOToken},
			[][]common.Hash{{TransferTopic}},
			decodeGnoTransfer, client, retry, log),
		NewLogFetcher(KindRewardDistribution,
			[]common.Address{contracts.GNOToken},
			[][]common.Hash{{TransferTopic}, {topicOf(contracts.RewardsDistributor)}},
			decodeRewardDistribution, client, retry, log),
		NewLogFetcher(KindOgNftClaim,
			[]common.Address{contracts.OGNFT},
			[][]common.Hash{{TransferTopic}, {common.Hash{}}},
			decodeOgNftClaim, client, retry, log),
	)

	return NewSet(fetchers...)
}

// Fetchers returns the fetchers of the set.
func (s *Set) Fetchers() []Fetcher {
	return s.fetchers
}

// FetchAll runs every fetcher concurrently for [fromBlock, toBlock] and returns the merged
// events ordered by block number and log index. Any fetcher failure fails the whole range.
func (s *Set) FetchAll(ctx context.Context, fromBlock, toBlock uint64) ([]Event, error) {
	results := make([][]Event, len(s.fetchers))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range s.fetchers {
		g.Go(func() error {
			events, err := f.Fetch(gctx, fromBlock, toBlock)
			if err != nil {
				return err
			}
			results[i] = events
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}

	merged := make([]Event, 0, total)
	for _, r := range results {
		merged = append(merged, r...)
	}

	SortEvents(merged)
	return merged, nil
}

// SortEvents orders events by (block number, log index, kind).
func SortEvents(events []Event) {
	slices.SortStableFunc(events, func(a, b Event) int {
		ma, mb := a.Meta(), b.Meta()
		if c := cmp.Compare(ma.BlockNumber, mb.BlockNumber); c != 0 {
			return c
		}
		if c := cmp.Compare(ma.LogIndex, mb.LogIndex); c != 0 {
			return c
		}
		return cmp.Compare(a.Kind().order(), b.Kind().order())
	})
}
