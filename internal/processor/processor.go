// Package processor applies decoded logs to the aggregate store.
package processor

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/chain"
	intcommon "github.com/goran-ethernal/GnosisPayIndexor/internal/common"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/fetcher"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/logger"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/rewards"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/store"
	"github.com/shopspring/decimal"
)

// Outcome tells whether a log changed the aggregates.
type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeSkipped   Outcome = "skipped"
)

// Result describes the records written for one log. Only the fields of the log's kind are set.
type Result struct {
	Kind    fetcher.Kind
	Outcome Outcome
	Safe    common.Address

	Transaction *store.Transaction
	WeekReward  *store.WeekCashbackReward
	WeekMetrics *store.WeekMetricsSnapshot

	Snapshots []*store.GnoBalanceSnapshot
	// WeekRewards are the rows whose balance extrema a GNO transfer moved.
	WeekRewards []*store.WeekCashbackReward

	Distribution *store.RewardDistribution
	// RewardWeek is the week a distribution paid for, to be reconciled after the batch.
	RewardWeek intcommon.WeekID
}

// Contracts holds the addresses the processors compare logs against.
type Contracts struct {
	GNOToken           common.Address
	RewardsDistributor common.Address
}

// Processor turns decoded logs into aggregate updates. Logs must be fed sequentially in log order.
type Processor struct {
	store      *store.Store
	reader     chain.Reader
	resolver   chain.SafeResolver
	calculator *rewards.Calculator
	contracts  Contracts
	log        *logger.Logger
}

// New creates a new Processor.
func New(
	st *store.Store,
	reader chain.Reader,
	resolver chain.SafeResolver,
	calculator *rewards.Calculator,
	contracts Contracts,
	log *logger.Logger,
) (*Processor, error) {
	if st == nil {
		return nil, errors.New("store is required")
	}
	if reader == nil {
		return nil, errors.New("chain reader is required")
	}
	if resolver == nil {
		return nil, errors.New("safe resolver is required")
	}
	if calculator == nil {
		return nil, errors.New("reward calculator is required")
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &Processor{
		store:      st,
		reader:     reader,
		resolver:   resolver,
		calculator: calculator,
		contracts:  contracts,
		log:        log,
	}, nil
}

// Process applies one event. Every failure, panics included, is returned as a *ProcessError.
func (p *Processor) Process(ctx context.Context, ev fetcher.Event) (res *Result, err error) {
	start := time.Now()
	meta := ev.Meta()

	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fail(CodeInternal, "panic: %v", r)
		}

		if err != nil {
			err = tag(err, ev.Kind(), meta.TxHash)
			ProcessedLogInc(ev.Kind(), string(CodeOf(err)))
			return
		}
		ProcessedLogInc(ev.Kind(), string(res.Outcome))
		ProcessDurationLog(ev.Kind(), time.Since(start))
	}()

	switch e := ev.(type) {
	case *fetcher.SpendEvent:
		return p.processSpend(ctx, e)
	case *fetcher.RefundEvent:
		return p.processRefund(ctx, e)
	case *fetcher.GnoTransferEvent:
		return p.processGnoTransfer(ctx, e)
	case *fetcher.RewardDistributionEvent:
		return p.processDistribution(ctx, e)
	case *fetcher.OgNftClaimEvent:
		return p.processOgNftClaim(ctx, e)
	default:
		return nil, fail(CodeValidation, "unsupported event %T", ev)
	}
}

// tag fills in the log identity and turns untyped errors into INTERNAL ones.
func tag(err error, kind fetcher.Kind, txHash common.Hash) error {
	var pErr *ProcessError
	if !errors.As(err, &pErr) {
		pErr = &ProcessError{Code: CodeInternal, Err: err}
	}
	pErr.Kind = kind
	pErr.TxHash = txHash
	return pErr
}

// block reads the block header and derives its week.
func (p *Processor) block(ctx context.Context, number uint64) (*store.Block, error) {
	info, err := p.reader.Block(ctx, number)
	if errors.Is(err, chain.ErrBlockNotFound) {
		return nil, fail(CodeNotFound, "block %d: %w", number, err)
	}
	if err != nil {
		return nil, fail(CodeUpstream, "failed to read block %d: %w", number, err)
	}

	return &store.Block{
		Number:    info.Number,
		Hash:      info.Hash,
		Timestamp: info.Timestamp,
		WeekID:    intcommon.WeekIDFromUnix(info.Timestamp),
	}, nil
}

func (p *Processor) token(addr common.Address) (*store.Token, error) {
	t, err := p.store.GetToken(addr)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fail(CodeNotFound, "token %s is not registered", addr.Hex())
	}
	if err != nil {
		return nil, fail(CodeInternal, "%w", err)
	}
	return t, nil
}

// gnoBalance reads the GNO balance of account at the end of block.
func (p *Processor) gnoBalance(ctx context.Context, gno *store.Token, account common.Address,
	block uint64) (*big.Int, decimal.Decimal, error) {
	raw, err := p.reader.GnoBalance(ctx, account, block)
	if err != nil {
		return nil, decimal.Zero, fail(CodeUpstream, "failed to read gno balance of %s: %w", account.Hex(), err)
	}
	return raw, intcommon.ToDecimal(raw, gno.Decimals), nil
}

// owners returns the stored owners of safe, falling back to the Safe Resolver.
func (p *Processor) owners(ctx context.Context, safe common.Address, block uint64) ([]common.Address, error) {
	stored, err := p.store.GetSafeOwners(safe)
	if err != nil {
		return nil, fail(CodeInternal, "%w", err)
	}
	if len(stored) > 0 {
		return stored, nil
	}
	return p.chainOwners(ctx, safe, block)
}

func (p *Processor) chainOwners(ctx context.Context, safe common.Address, block uint64) ([]common.Address, error) {
	owners, err := p.resolver.Owners(ctx, safe, block)
	if err != nil {
		return nil, fail(CodeUpstream, "failed to read owners of %s: %w", safe.Hex(), err)
	}
	if len(owners) == 0 {
		return nil, fail(CodeNotFound, "safe %s has no owners", safe.Hex())
	}
	return owners, nil
}

// commitError maps an error returned from a store transaction to a ProcessError.
func commitError(err error) error {
	var pErr *ProcessError
	if errors.As(err, &pErr) {
		return pErr
	}
	if errors.Is(err, store.ErrAlreadyExists) {
		return fail(CodeAlreadyProcessed, "%w", err)
	}
	return fail(CodeInternal, "failed to persist: %w", err)
}

// Reconcile sets a zero earned reward on every row of weeks that received no payout.
func (p *Processor) Reconcile(ctx context.Context, weeks []intcommon.WeekID) (int64, error) {
	if len(weeks) == 0 {
		return 0, nil
	}

	var updated int64
	err := p.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		updated, err = tx.ReconcileEarnedRewards(weeks)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to reconcile weeks %v: %w", weeks, err)
	}

	if updated > 0 {
		p.log.Infow("reconciled earned rewards", "weeks", weeks, "rows", updated)
	}
	return updated, nil
}
