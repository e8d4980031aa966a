package rpc

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goran-ethernal/GnosisPayIndexor/pkg/config"
	pkgrpc "github.com/goran-ethernal/GnosisPayIndexor/pkg/rpc"
	"golang.org/x/time/rate"
)

// Compile-time check to ensure Client implements pkgrpc.EthClient interface.
var _ pkgrpc.EthClient = (*Client)(nil)

// Client wraps the Ethereum RPC client with convenience methods for indexing.
// Every request goes through a shared rate limiter and the configured retry policy,
// unless the context was marked with SingleAttempt.
// It implements the pkgrpc.EthClient interface.
type Client struct {
	eth *ethclient.Client
	rpc *rpc.Client

	// ws is nil when no websocket endpoint is configured
	ws *ethclient.Client

	limiter *rate.Limiter
	retry   Policy
}

// NewClient creates a new RPC client connected to the configured endpoints.
func NewClient(ctx context.Context, cfg config.RPCConfig) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, cfg.HTTPURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", cfg.HTTPURL, err)
	}

	c := &Client{
		eth:     ethclient.NewClient(rpcClient),
		rpc:     rpcClient,
		limiter: newLimiter(cfg.RequestsPerSecond, cfg.Burst),
		retry:   PolicyFromConfig(cfg.Retry),
	}

	if cfg.WSURL != "" {
		wsClient, err := ethclient.DialContext(ctx, cfg.WSURL)
		if err != nil {
			rpcClient.Close()
			return nil, fmt.Errorf("failed to dial websocket %s: %w", cfg.WSURL, err)
		}
		c.ws = wsClient
	}

	return c, nil
}

func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// Close closes the RPC client connection.
func (c *Client) Close() {
	c.eth.Close()
	if c.ws != nil {
		c.ws.Close()
	}
}

// call runs fn under the rate limiter and retry policy, recording metrics for method.
func (c *Client) call(ctx context.Context, method string, fn func(ctx context.Context) error) error {
	policy := c.retry
	if isSingleAttempt(ctx) {
		policy = Policy{Attempts: 1}
	}

	return policy.Do(ctx, method, func(int) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		RPCMethodInc(method)
		start := time.Now()
		err := fn(ctx)
		RPCMethodDuration(method, time.Since(start))
		if err != nil {
			RPCMethodError(method, classifyError(err))
		}
		return err
	})
}

// ChainID returns the chain identifier reported by the node.
func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	var id *big.Int
	err := c.call(ctx, "eth_chainId", func(ctx context.Context) error {
		var err error
		id, err = c.eth.ChainID(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id.Uint64(), nil
}

// GetLogs retrieves logs matching the given filter query.
func (c *Client) GetLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	var logs []types.Log
	err := c.call(ctx, "eth_getLogs", func(ctx context.Context) error {
		logs = nil
		return c.rpc.CallContext(ctx, &logs, "eth_getLogs", toFilterArg(query))
	})
	return logs, err
}

// GetBlockHeader retrieves the header for a specific block number.
func (c *Client) GetBlockHeader(ctx context.Context, blockNum uint64) (*types.Header, error) {
	var header *types.Header
	err := c.call(ctx, "eth_getBlockByNumber", func(ctx context.Context) error {
		var err error
		header, err = c.eth.HeaderByNumber(ctx, new(big.Int).SetUint64(blockNum))
		return err
	})
	return header, err
}

// GetLatestBlockHeader retrieves the latest block header.
func (c *Client) GetLatestBlockHeader(ctx context.Context) (*types.Header, error) {
	var header *types.Header
	err := c.call(ctx, "eth_getBlockByNumber", func(ctx context.Context) error {
		var err error
		header, err = c.eth.HeaderByNumber(ctx, nil)
		return err
	})
	return header, err
}

// CallContract executes a read-only call against the state at the given block.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNum uint64) ([]byte, error) {
	var out []byte
	err := c.call(ctx, "eth_call", func(ctx context.Context) error {
		var err error
		out, err = c.eth.CallContract(ctx, msg, new(big.Int).SetUint64(blockNum))
		return err
	})
	return out, err
}

// CodeAt returns the runtime bytecode deployed at account in the latest state.
func (c *Client) CodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	var code []byte
	err := c.call(ctx, "eth_getCode", func(ctx context.Context) error {
		var err error
		code, err = c.eth.CodeAt(ctx, account, nil)
		return err
	})
	return code, err
}

// SubscribeNewHead subscribes to notifications about new chain heads.
// It requires the client to be created with a websocket endpoint.
func (c *Client) SubscribeNewHead(ctx context.Context, ch chan<- *types.Header) (ethereum.Subscription, error) {
	if c.ws == nil {
		return nil, pkgrpc.ErrSubscriptionsUnsupported
	}

	RPCMethodInc("eth_subscribe")
	sub, err := c.ws.SubscribeNewHead(ctx, ch)
	if err != nil {
		RPCMethodError("eth_subscribe", classifyError(err))
		return nil, err
	}
	return sub, nil
}

// toFilterArg converts ethereum.FilterQuery to the format expected by eth_getLogs.
func toFilterArg(q ethereum.FilterQuery) any {
	arg := map[string]any{
		"topics": q.Topics,
	}

	if q.BlockHash != nil {
		arg["blockHash"] = *q.BlockHash
	} else {
		if q.FromBlock != nil {
			arg["fromBlock"] = toBlockNumArg(q.FromBlock.Uint64())
		}
		if q.ToBlock != nil {
			arg["toBlock"] = toBlockNumArg(q.ToBlock.Uint64())
		}
	}

	if len(q.Addresses) > 0 {
		if len(q.Addresses) == 1 {
			arg["address"] = q.Addresses[0]
		} else {
			arg["address"] = q.Addresses
		}
	}

	return arg
}

// toBlockNumArg converts a block number to hex format.
func toBlockNumArg(blockNum uint64) string {
	return fmt.Sprintf("0x%x", blockNum)
}
