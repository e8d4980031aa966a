package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/goran-ethernal/GnosisPayIndexor/internal/broadcast"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/chain"
	intcommon "github.com/goran-ethernal/GnosisPayIndexor/internal/common"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/config"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/cursor"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/db"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/fetcher"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/indexer"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/logger"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/metrics"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/migrations"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/pricecache"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/processor"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/rewards"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/rpc"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/store"
	"github.com/goran-ethernal/GnosisPayIndexor/pkg/api"
	pkgconfig "github.com/goran-ethernal/GnosisPayIndexor/pkg/config"
)

func runIndexer(cmd *cobra.Command, args []string) error {
	fmt.Printf(banner, version)

	// Load configuration
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	newLogger := func(component string) *logger.Logger {
		if cfg.Logging == nil {
			return logger.NewComponentLoggerFromConfig(component, nil)
		}
		return logger.NewComponentLoggerFromConfig(component, cfg.Logging)
	}
	log := newLogger(intcommon.ComponentIndexer)

	// Initialize database
	log.Info("Running database migrations...")
	database, err := db.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer database.Close()

	if err := migrations.RunMigrationsDB(newLogger(intcommon.ComponentStore), database); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	st, err := store.New(database, newLogger(intcommon.ComponentStore))
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	// Initialize RPC client
	log.Info("Connecting to Gnosis Chain node...")
	client, err := rpc.NewClient(ctx, cfg.RPC)
	if err != nil {
		return fmt.Errorf("failed to create RPC client: %w", err)
	}
	defer client.Close()

	if err := indexer.VerifyChainID(ctx, client, cfg.Indexer.ChainID); err != nil {
		return err
	}
	log.Infof("Connected to Gnosis Chain node: %s (chain id %d)", cfg.RPC.HTTPURL, cfg.Indexer.ChainID)

	contracts := cfg.Contracts
	gnoToken := common.HexToAddress(contracts.GNOToken)

	reader, err := chain.NewContractReader(client, chain.ReaderConfig{
		GNOToken:       gnoToken,
		OGNFT:          common.HexToAddress(contracts.OGNFT),
		Multicall:      common.HexToAddress(contracts.Multicall),
		BlockCacheSize: cfg.Indexer.BlockCacheSize,
	}, newLogger(intcommon.ComponentChainReader))
	if err != nil {
		return fmt.Errorf("failed to create chain reader: %w", err)
	}

	codeHashes := make([]common.Hash, 0, len(contracts.DelayModuleCodeHashes))
	for _, h := range contracts.DelayModuleCodeHashes {
		codeHashes = append(codeHashes, common.HexToHash(h))
	}
	resolver, err := chain.NewModuleSafeResolver(client, common.HexToAddress(contracts.Multicall), codeHashes,
		newLogger(intcommon.ComponentChainReader))
	if err != nil {
		return fmt.Errorf("failed to create safe resolver: %w", err)
	}

	tokens := indexer.RegistryTokens(cfg.TokenRegistry(), cfg.Indexer.ChainID)
	paymentTokens := make([]common.Address, 0, len(tokens))
	for _, t := range tokens {
		if t.Address != gnoToken {
			paymentTokens = append(paymentTokens, t.Address)
		}
	}

	source := fetcher.NewDefaultSet(fetcher.Contracts{
		Spender:            common.HexToAddress(contracts.Spender),
		SpendReceiver:      common.HexToAddress(contracts.SpendReceiver),
		GNOToken:           gnoToken,
		RewardsDistributor: common.HexToAddress(contracts.RewardsDistributor),
		OGNFT:              common.HexToAddress(contracts.OGNFT),
		PaymentTokens:      paymentTokens,
	}, client, rpc.Policy{
		Attempts:       cfg.Indexer.FetchRetries,
		InitialBackoff: cfg.Indexer.FetchRetryBackoff.Duration,
		MaxBackoff:     fetcher.DefaultRetryPolicy().MaxBackoff,
	}, newLogger(intcommon.ComponentLogFetcher))

	calculator, err := rewards.NewCalculator(cfg.Rewards)
	if err != nil {
		return fmt.Errorf("failed to create reward calculator: %w", err)
	}

	proc, err := processor.New(st, reader, resolver, calculator, processor.Contracts{
		GNOToken:           gnoToken,
		RewardsDistributor: common.HexToAddress(contracts.RewardsDistributor),
	}, newLogger(intcommon.ComponentProcessor))
	if err != nil {
		return fmt.Errorf("failed to create processor: %w", err)
	}

	cur := cursor.New(cfg.Indexer.FetchBlockSize, cfg.Indexer.CooldownDistance)
	watcher, err := cursor.NewWatcher(client, cur, cfg.Indexer.PollInterval.Duration,
		newLogger(intcommon.ComponentBlockWatch))
	if err != nil {
		return fmt.Errorf("failed to create block watcher: %w", err)
	}

	broadcaster, err := newBroadcaster(cfg.NATS, newLogger(intcommon.ComponentBroadcaster))
	if err != nil {
		return err
	}
	defer broadcaster.Close()

	idx, err := indexer.New(indexer.Config{
		Resume:     cfg.Indexer.Resume,
		StartBlock: cfg.Indexer.StartBlock,
		LeaseTTL:   cfg.Indexer.LeaseTTL.Duration,
		Tokens:     tokens,
		DBPath:     cfg.DB.Path,
	}, st, cur, watcher, source, proc, broadcaster, log)
	if err != nil {
		return fmt.Errorf("failed to create indexer: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	// Initialize metrics server if enabled
	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		metricsServer := metrics.NewServer(cfg.Metrics, readiness(st, idx), log)
		if err := metricsServer.Start(gctx); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		defer func() {
			if err := metricsServer.Stop(context.Background()); err != nil {
				log.Warnf("Failed to stop metrics server: %v", err)
			}
		}()
	}

	// Start API server if enabled
	if cfg.API != nil && cfg.API.Enabled {
		apiLog := newLogger(intcommon.ComponentAPI)

		cache, err := pricecache.NewFromConfig(gctx, cfg.Redis, cfg.API.PriceCacheTTL.Duration,
			newLogger(intcommon.ComponentPriceCache))
		if err != nil {
			return fmt.Errorf("failed to create price cache: %w", err)
		}
		defer cache.Close()

		apiServer := api.NewServer(cfg.API, api.Dependencies{
			Store:      st,
			Status:     idx,
			Prices:     pricecache.NewPrices(cache, pricecache.OracleLoader(st, reader)),
			Calculator: calculator,
			GNOToken:   gnoToken,
		}, apiLog)

		g.Go(func() error {
			return apiServer.Start(gctx)
		})
	}

	log.Infow("Starting GnosisPayIndexor...", "holder", idx.HolderID(), "resume", cfg.Indexer.Resume)

	g.Go(func() error {
		return idx.Run(gctx)
	})

	// a signal cancels every component; only failures without one are reported
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("indexer failed: %w", err)
	}

	log.Info("GnosisPayIndexor stopped successfully")
	return nil
}

// newBroadcaster connects to NATS when a server is configured, and drops events otherwise.
func newBroadcaster(cfg *pkgconfig.NATSConfig, log *logger.Logger) (broadcast.Broadcaster, error) {
	if cfg == nil || cfg.URL == "" {
		log.Info("NATS is not configured, real-time events are disabled")
		return broadcast.Noop{}, nil
	}

	nc, err := broadcast.NewNATS(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create broadcaster: %w", err)
	}
	return nc, nil
}

// readiness reports the indexer ready once the store answers and the bootstrap sync is done.
func readiness(st *store.Store, idx *indexer.Indexer) metrics.ReadyFunc {
	return func(ctx context.Context) error {
		if err := st.Ping(ctx); err != nil {
			return fmt.Errorf("store unavailable: %w", err)
		}
		if idx.Status().State == cursor.StateBootstrapping {
			return errors.New("indexer is bootstrapping")
		}
		return nil
	}
}
