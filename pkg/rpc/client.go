package rpc

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrSubscriptionsUnsupported is returned by SubscribeNewHead when the client
// was created without a WebSocket endpoint.
var ErrSubscriptionsUnsupported = errors.New("rpc: new head subscriptions require a websocket endpoint")

// EthClient defines the interface for Ethereum RPC operations.
// This abstraction allows for easier testing and alternative implementations.
type EthClient interface {
	// Close closes the RPC client connection.
	Close()

	// ChainID returns the chain identifier reported by the node.
	ChainID(ctx context.Context) (uint64, error)

	// GetLogs retrieves logs matching the given filter query.
	GetLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)

	// GetBlockHeader retrieves the header for a specific block number.
	GetBlockHeader(ctx context.Context, blockNum uint64) (*types.Header, error)

	// GetLatestBlockHeader retrieves the latest block header.
	GetLatestBlockHeader(ctx context.Context) (*types.Header, error)

	// CallContract executes a read-only call against the state at the given block.
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNum uint64) ([]byte, error)

	// CodeAt returns the runtime bytecode deployed at account in the latest state.
	CodeAt(ctx context.Context, account common.Address) ([]byte, error)

	// SubscribeNewHead subscribes to notifications about new chain heads.
	SubscribeNewHead(ctx context.Context, ch chan<- *types.Header) (ethereum.Subscription, error)
}
