package pricecache

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	intcommon "github.com/goran-ethernal/GnosisPayIndexor/internal/common"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/store"
)

// TokenPricesKey is the cache key of the registry price list.
const TokenPricesKey = "token-prices"

// TokenLister lists the tokens to price.
type TokenLister interface {
	ListTokens() ([]*store.Token, error)
}

// PriceReader reads oracle prices at a block.
type PriceReader interface {
	LatestBlock(ctx context.Context) (uint64, error)
	USDPrices(ctx context.Context, oracles []common.Address, block uint64) ([]decimal.Decimal, error)
}

// OracleLoader prices every registry token with its oracle at the latest block.
// Tokens without an oracle are priced at 1 USD.
func OracleLoader(tokens TokenLister, reader PriceReader) Loader {
	return func(ctx context.Context) ([]TokenPrice, error) {
		list, err := tokens.ListTokens()
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return []TokenPrice{}, nil
		}

		block, err := reader.LatestBlock(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get latest block: %w", err)
		}

		oracles := make([]common.Address, len(list))
		for i, t := range list {
			if t.OracleAddress != nil {
				oracles[i] = *t.OracleAddress
			}
		}

		prices, err := reader.USDPrices(ctx, oracles, block)
		if err != nil {
			return nil, fmt.Errorf("failed to read oracle prices at block %d: %w", block, err)
		}
		if len(prices) != len(list) {
			return nil, fmt.Errorf("expected %d oracle prices, got %d", len(list), len(prices))
		}

		out := make([]TokenPrice, len(list))
		for i, t := range list {
			out[i] = TokenPrice{
				Address:     intcommon.NormalizeAddress(t.Address),
				Symbol:      t.Symbol,
				PriceUSD:    prices[i],
				BlockNumber: block,
			}
		}
		return out, nil
	}
}

// Prices serves the registry price list through a cache.
type Prices struct {
	cache *Cache
	load  Loader
}

// NewPrices creates a cached price source.
func NewPrices(cache *Cache, load Loader) *Prices {
	return &Prices{cache: cache, load: load}
}

// TokenPrices returns the cached price list, loading it on a miss.
func (p *Prices) TokenPrices(ctx context.Context) ([]TokenPrice, error) {
	return p.cache.Get(ctx, TokenPricesKey, p.load)
}
