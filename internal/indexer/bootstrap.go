package indexer

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/db"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/store"
	"github.com/goran-ethernal/GnosisPayIndexor/pkg/config"
)

// bootstrap prepares the store and returns the first block to index.
// Without resume every aggregate is wiped; the token registry is seeded either way.
func (i *Indexer) bootstrap(ctx context.Context) (uint64, error) {
	if !i.cfg.Resume {
		i.log.Infow("resume disabled, wiping aggregates", "start_block", i.cfg.StartBlock)

		if err := i.store.Wipe(ctx); err != nil {
			return 0, fmt.Errorf("failed to wipe aggregates: %w", err)
		}
		if err := db.Vacuum(i.store.DB()); err != nil {
			i.log.Warnw("failed to vacuum database after wipe", "error", err)
		}
	}

	var added int
	if err := i.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		added, err = tx.SeedTokens(i.cfg.Tokens)
		return err
	}); err != nil {
		return 0, fmt.Errorf("failed to seed token registry: %w", err)
	}
	if added > 0 {
		i.log.Infow("token registry seeded", "added", added, "registry_size", len(i.cfg.Tokens))
	}

	if !i.cfg.Resume {
		return i.cfg.StartBlock, nil
	}

	hwm, ok, err := i.store.HighWaterMark()
	if err != nil {
		return 0, fmt.Errorf("failed to read high-water mark: %w", err)
	}
	if !ok {
		i.log.Infow("nothing indexed yet, starting fresh", "start_block", i.cfg.StartBlock)
		return i.cfg.StartBlock, nil
	}

	// the high-water block may hold logs that were not committed yet
	from := max(hwm, 1) - 1
	from = max(from, i.cfg.StartBlock)

	i.log.Infow("resuming indexing", "high_water_mark", hwm, "from_block", from)
	return from, nil
}

// ChainIDReader reports the chain a node serves.
type ChainIDReader interface {
	ChainID(ctx context.Context) (uint64, error)
}

// VerifyChainID fails when the node serves a different chain than the configured one.
// Token registry rows and contract addresses are only valid for that chain.
func VerifyChainID(ctx context.Context, client ChainIDReader, want uint64) error {
	got, err := client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to read chain id: %w", err)
	}
	if got != want {
		return fmt.Errorf("node serves chain %d, configured chain_id is %d", got, want)
	}
	return nil
}

// RegistryTokens converts the configured token registry into store records.
func RegistryTokens(tokens []config.TokenConfig, chainID uint64) []*store.Token {
	out := make([]*store.Token, 0, len(tokens))
	for _, t := range tokens {
		token := &store.Token{
			Address:  common.HexToAddress(t.Address),
			Symbol:   t.Symbol,
			Name:     t.Name,
			Decimals: t.Decimals,
			ChainID:  chainID,
		}
		if t.Oracle != "" {
			oracle := common.HexToAddress(t.Oracle)
			token.OracleAddress = &oracle
		}
		out = append(out, token)
	}
	return out
}
