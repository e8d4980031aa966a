package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/logger"
	pkgrpc "github.com/goran-ethernal/GnosisPayIndexor/pkg/rpc"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shopspring/decimal"
)

const defaultBlockCacheSize = 10_000

// ErrBlockNotFound is returned when the node does not know the requested block.
var ErrBlockNotFound = errors.New("block not found")

// BlockInfo is the subset of a block header the indexer persists.
type BlockInfo struct {
	Number    uint64
	Hash      common.Hash
	Timestamp uint64
}

// Reader reads on-chain state at a given block height.
type Reader interface {
	// Block returns the header info for the given block number.
	Block(ctx context.Context, number uint64) (BlockInfo, error)

	// LatestBlock returns the current chain head number.
	LatestBlock(ctx context.Context) (uint64, error)

	// GnoBalance returns the raw GNO balance of account at block.
	GnoBalance(ctx context.Context, account common.Address, block uint64) (*big.Int, error)

	// IsOgNftHolder reports whether any of the owners holds an OG NFT at block.
	IsOgNftHolder(ctx context.Context, owners []common.Address, block uint64) (bool, error)

	// USDPrices returns the USD price reported by each oracle at block.
	// A zero oracle address is priced at exactly 1 USD.
	USDPrices(ctx context.Context, oracles []common.Address, block uint64) ([]decimal.Decimal, error)
}

// ReaderConfig holds the contract addresses used by ContractReader.
type ReaderConfig struct {
	GNOToken       common.Address
	OGNFT          common.Address
	Multicall      common.Address
	BlockCacheSize int
}

var _ Reader = (*ContractReader)(nil)

// ContractReader implements Reader on top of an RPC client, batching reads through Multicall3.
type ContractReader struct {
	client    pkgrpc.EthClient
	multicall *Multicaller
	gnoToken  common.Address
	ogNFT     common.Address
	blocks    *lru.Cache[uint64, BlockInfo]
	log       *logger.Logger
}

// NewContractReader creates a new ContractReader.
func NewContractReader(client pkgrpc.EthClient, cfg ReaderConfig, log *logger.Logger) (*ContractReader, error) {
	if client == nil {
		return nil, errors.New("rpc client is required")
	}
	if _, err := loadABIs(); err != nil {
		return nil, err
	}

	size := cfg.BlockCacheSize
	if size <= 0 {
		size = defaultBlockCacheSize
	}

	blocks, err := lru.New[uint64, BlockInfo](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create block cache: %w", err)
	}

	return &ContractReader{
		client:    client,
		multicall: NewMulticaller(client, cfg.Multicall),
		gnoToken:  cfg.GNOToken,
		ogNFT:     cfg.OGNFT,
		blocks:    blocks,
		log:       log,
	}, nil
}

// Block returns the header info for the given block number, served from the LRU cache when possible.
func (r *ContractReader) Block(ctx context.Context, number uint64) (BlockInfo, error) {
	if info, ok := r.blocks.Get(number); ok {
		return info, nil
	}

	header, err := r.client.GetBlockHeader(ctx, number)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return BlockInfo{}, fmt.Errorf("block %d: %w", number, ErrBlockNotFound)
		}
		return BlockInfo{}, fmt.Errorf("failed to get block %d: %w", number, err)
	}
	if header == nil {
		return BlockInfo{}, fmt.Errorf("block %d: %w", number, ErrBlockNotFound)
	}

	info := BlockInfo{
		Number:    header.Number.Uint64(),
		Hash:      header.Hash(),
		Timestamp: header.Time,
	}
	r.blocks.Add(number, info)
	r.log.Debugw("block cached", "block", number, "timestamp", info.Timestamp)

	return info, nil
}

// LatestBlock returns the current chain head number.
func (r *ContractReader) LatestBlock(ctx context.Context) (uint64, error) {
	header, err := r.client.GetLatestBlockHeader(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block: %w", err)
	}
	return header.Number.Uint64(), nil
}

// GnoBalance returns the raw GNO balance of account at block.
func (r *ContractReader) GnoBalance(ctx context.Context, account common.Address, block uint64) (*big.Int, error) {
	parsed, err := loadABIs()
	if err != nil {
		return nil, err
	}

	data, err := parsed.token.Pack("balanceOf", account)
	if err != nil {
		return nil, fmt.Errorf("pack balanceOf: %w", err)
	}

	resp, err := r.client.CallContract(ctx, ethereum.CallMsg{To: &r.gnoToken, Data: data}, block)
	if err != nil {
		return nil, fmt.Errorf("call balanceOf: %w", err)
	}

	return unpackSingle[*big.Int](parsed.token, "balanceOf", CallResult{Success: true, ReturnData: resp})
}

// IsOgNftHolder reports whether any of the owners holds an OG NFT at block.
func (r *ContractReader) IsOgNftHolder(ctx context.Context, owners []common.Address, block uint64) (bool, error) {
	if len(owners) == 0 {
		return false, nil
	}

	parsed, err := loadABIs()
	if err != nil {
		return false, err
	}

	calls := make([]Call, len(owners))
	for i, owner := range owners {
		data, err := parsed.token.Pack("balanceOf", owner)
		if err != nil {
			return false, fmt.Errorf("pack balanceOf: %w", err)
		}
		calls[i] = Call{Target: r.ogNFT, Data: data}
	}

	results, err := r.multicall.Aggregate(ctx, calls, block)
	if err != nil {
		return false, err
	}

	for i, res := range results {
		balance, err := unpackSingle[*big.Int](parsed.token, "balanceOf", res)
		if err != nil {
			return false, fmt.Errorf("owner %s: %w", owners[i].Hex(), err)
		}
		if balance.Sign() > 0 {
			return true, nil
		}
	}

	return false, nil
}

// USDPrices returns the USD price reported by each oracle at block.
// Each oracle contributes a decimals() and a latestRoundData() call to a single multicall batch.
func (r *ContractReader) USDPrices(ctx context.Context, oracles []common.Address, block uint64) ([]decimal.Decimal, error) {
	parsed, err := loadABIs()
	if err != nil {
		return nil, err
	}

	decimalsData, err := parsed.aggregator.Pack("decimals")
	if err != nil {
		return nil, fmt.Errorf("pack decimals: %w", err)
	}
	roundData, err := parsed.aggregator.Pack("latestRoundData")
	if err != nil {
		return nil, fmt.Errorf("pack latestRoundData: %w", err)
	}

	prices := make([]decimal.Decimal, len(oracles))
	calls := make([]Call, 0, 2*len(oracles))
	queried := make([]int, 0, len(oracles))

	for i, oracle := range oracles {
		if oracle == (common.Address{}) {
			prices[i] = decimal.NewFromInt(1)
			continue
		}
		queried = append(queried, i)
		calls = append(calls,
			Call{Target: oracle, Data: decimalsData},
			Call{Target: oracle, Data: roundData},
		)
	}

	if len(calls) == 0 {
		return prices, nil
	}

	results, err := r.multicall.Aggregate(ctx, calls, block)
	if err != nil {
		return nil, err
	}

	for j, i := range queried {
		price, err := decodePrice(parsed, results[2*j], results[2*j+1])
		if err != nil {
			return nil, fmt.Errorf("oracle %s at block %d: %w", oracles[i].Hex(), block, err)
		}
		prices[i] = price
	}

	return prices, nil
}

func decodePrice(parsed *contractABIs, decimalsRes, roundRes CallResult) (decimal.Decimal, error) {
	decimals, err := unpackSingle[uint8](parsed.aggregator, "decimals", decimalsRes)
	if err != nil {
		return decimal.Zero, err
	}

	if !roundRes.Success {
		return decimal.Zero, fmt.Errorf("latestRoundData: %w", ErrCallFailed)
	}
	values, err := parsed.aggregator.Unpack("latestRoundData", roundRes.ReturnData)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unpack latestRoundData: %w", err)
	}
	const roundDataOutputs = 5
	if len(values) != roundDataOutputs {
		return decimal.Zero, fmt.Errorf("latestRoundData return size %d", len(values))
	}

	answer, ok := values[1].(*big.Int)
	if !ok {
		return decimal.Zero, fmt.Errorf("latestRoundData unexpected answer type %T", values[1])
	}
	if answer.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("non-positive oracle answer %s", answer)
	}

	return decimal.NewFromBigInt(answer, -int32(decimals)), nil
}
