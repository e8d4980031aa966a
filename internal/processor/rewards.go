package processor

import (
	"context"
	"errors"

	intcommon "github.com/goran-ethernal/GnosisPayIndexor/internal/common"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/fetcher"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/store"
)

// processDistribution records a cashback payout and credits it to the week it pays for,
// which is the week before the payout block's week.
func (p *Processor) processDistribution(ctx context.Context, e *fetcher.RewardDistributionEvent) (*Result, error) {
	if e.From != p.contracts.RewardsDistributor {
		return nil, fail(CodeValidation, "payer %s is not the rewards distributor", e.From.Hex())
	}

	if err := p.checkDistribution(e); err != nil {
		return nil, err
	}

	block, err := p.block(ctx, e.BlockNumber)
	if err != nil {
		return nil, err
	}
	gno, err := p.token(p.contracts.GNOToken)
	if err != nil {
		return nil, err
	}

	d := &store.RewardDistribution{
		ID:           e.TxHash,
		BlockNumber:  block.Number,
		LogIndex:     e.LogIndex,
		WeekID:       block.WeekID,
		RewardWeekID: block.WeekID.Previous(),
		SafeAddress:  e.To,
		AmountRaw:    e.Amount,
		Amount:       intcommon.ToDecimal(e.Amount, gno.Decimals),
	}

	var credited bool
	err = p.store.WithTx(ctx, func(tx *store.Tx) error {
		if err := tx.InsertBlock(block); err != nil {
			return err
		}
		if err := tx.InsertDistribution(d); err != nil {
			return err
		}

		var err error
		credited, err = tx.AddEarnedReward(d.RewardWeekID, d.SafeAddress, d.Amount)
		return err
	})
	if err != nil {
		return nil, commitError(err)
	}

	if !credited {
		p.log.Warnw("reward distribution without a matching week reward",
			"tx", d.ID.Hex(), "safe", d.SafeAddress.Hex(), "reward_week", d.RewardWeekID)
	}

	return &Result{
		Kind:         fetcher.KindRewardDistribution,
		Outcome:      OutcomeProcessed,
		Safe:         d.SafeAddress,
		Distribution: d,
		RewardWeek:   d.RewardWeekID,
	}, nil
}

// checkDistribution is the idempotency check of a payout. Payouts are keyed by transaction
// hash, so a second transfer of a batched payout cannot be stored and is reported loudly.
func (p *Processor) checkDistribution(e *fetcher.RewardDistributionEvent) error {
	stored, err := p.store.GetDistribution(e.TxHash)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fail(CodeInternal, "%w", err)
	}

	if stored.LogIndex == e.LogIndex {
		return fail(CodeAlreadyProcessed, "reward distribution %s already stored", e.TxHash.Hex())
	}

	p.log.Warnw("batched reward distribution dropped, payout is keyed by transaction hash",
		"tx", e.TxHash.Hex(),
		"log_index", e.LogIndex,
		"safe", e.To.Hex(),
		"amount_raw", e.Amount.String(),
		"stored_log_index", stored.LogIndex,
		"stored_safe", stored.SafeAddress.Hex(),
	)
	return fail(CodeConsistency, "reward distribution %s already holds log %d, log %d to %s is not credited",
		e.TxHash.Hex(), stored.LogIndex, e.LogIndex, e.To.Hex())
}

func (p *Processor) processOgNftClaim(ctx context.Context, e *fetcher.OgNftClaimEvent) (*Result, error) {
	safes, err := p.store.FindSafesByOwner(e.Recipient)
	if err != nil {
		return nil, fail(CodeInternal, "%w", err)
	}
	if len(safes) != 1 {
		return nil, fail(CodeConsistency, "og nft recipient %s owns %d safes, expected exactly one",
			e.Recipient.Hex(), len(safes))
	}
	safe := safes[0]

	owners, err := p.chainOwners(ctx, safe, e.BlockNumber)
	if err != nil {
		return nil, err
	}

	var changed bool
	err = p.store.WithTx(ctx, func(tx *store.Tx) error {
		if err := tx.SetOgNftHolder(safe, true); err != nil {
			return err
		}

		var err error
		changed, err = tx.SetSafeOwners(safe, owners)
		return err
	})
	if err != nil {
		return nil, commitError(err)
	}

	p.log.Infow("og nft claimed", "safe", safe.Hex(), "recipient", e.Recipient.Hex(),
		"token_id", e.TokenID.String(), "owners_changed", changed)

	return &Result{Kind: fetcher.KindOgNftClaim, Outcome: OutcomeProcessed, Safe: safe}, nil
}
