package processor

import (
	"context"
	"errors"
	"math/big"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	intcommon "github.com/goran-ethernal/GnosisPayIndexor/internal/common"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/fetcher"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/rewards"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/store"
	"github.com/shopspring/decimal"
)

// touchedSafe is a Safe whose GNO balance changed in a transfer.
type touchedSafe struct {
	address    common.Address
	known      bool
	owners     []common.Address
	balanceRaw *big.Int
	balance    decimal.Decimal
	// spent is set when the Safe already has a reward row in the transfer's week
	spent bool
	isOg  bool
}

func (p *Processor) processGnoTransfer(ctx context.Context, e *fetcher.GnoTransferEvent) (*Result, error) {
	var touched []*touchedSafe
	for _, addr := range []common.Address{e.From, e.To} {
		if addr == (common.Address{}) || slices.ContainsFunc(touched, func(s *touchedSafe) bool {
			return s.address == addr
		}) {
			continue
		}

		known, relevant, err := p.isSafe(ctx, addr, e.BlockNumber)
		if err != nil {
			return nil, err
		}
		if relevant {
			touched = append(touched, &touchedSafe{address: addr, known: known})
		}
	}

	if len(touched) == 0 {
		return &Result{Kind: fetcher.KindGnoTransfer, Outcome: OutcomeSkipped}, nil
	}

	block, err := p.block(ctx, e.BlockNumber)
	if err != nil {
		return nil, err
	}
	gno, err := p.token(p.contracts.GNOToken)
	if err != nil {
		return nil, err
	}

	var spent bool
	for _, s := range touched {
		s.balanceRaw, s.balance, err = p.gnoBalance(ctx, gno, s.address, block.Number)
		if err != nil {
			return nil, err
		}
		if !s.known {
			if s.owners, err = p.chainOwners(ctx, s.address, block.Number); err != nil {
				return nil, err
			}
			continue
		}
		if s.spent, s.isOg, err = p.weekState(s.address, block.WeekID); err != nil {
			return nil, err
		}
		spent = spent || s.spent
	}

	var gnoPrice decimal.Decimal
	if spent {
		if gno.OracleAddress == nil {
			return nil, fail(CodeNotFound, "gno token has no price oracle")
		}
		prices, err := p.reader.USDPrices(ctx, []common.Address{*gno.OracleAddress}, block.Number)
		if err != nil {
			return nil, fail(CodeUpstream, "failed to read gno price at block %d: %w", block.Number, err)
		}
		gnoPrice = prices[0]
	}

	res := &Result{Kind: fetcher.KindGnoTransfer, Outcome: OutcomeProcessed, Safe: touched[0].address}
	err = p.store.WithTx(ctx, func(tx *store.Tx) error {
		if err := tx.InsertBlock(block); err != nil {
			return err
		}

		for _, s := range touched {
			created, err := tx.EnsureSafe(s.address, block.Number)
			if err != nil {
				return err
			}
			if created && len(s.owners) > 0 {
				if _, err := tx.SetSafeOwners(s.address, s.owners); err != nil {
					return err
				}
			}

			snapshot := &store.GnoBalanceSnapshot{
				ID:             store.SnapshotID(block.Number, s.address),
				SafeAddress:    s.address,
				WeekID:         block.WeekID,
				BalanceRaw:     s.balanceRaw,
				Balance:        s.balance,
				BlockNumber:    block.Number,
				BlockTimestamp: block.Timestamp,
				LogIndex:       e.LogIndex,
			}

			// balances are read at the end of the block, so a later transfer of the
			// same block only moves the log index forward
			applied, err := tx.InsertSnapshot(snapshot)
			if err != nil {
				return err
			}
			if !applied {
				if applied, err = tx.AdvanceSnapshot(snapshot.ID, e.LogIndex); err != nil {
					return err
				}
			}
			if !applied {
				continue
			}

			if err := tx.UpdateSafeGnoBalance(s.address, s.balance, block.Number); err != nil {
				return err
			}
			res.Snapshots = append(res.Snapshots, snapshot)

			if !s.spent {
				continue
			}
			reward, err := p.observeTransfer(tx, s, block.WeekID, gnoPrice)
			if err != nil {
				return err
			}
			res.WeekRewards = append(res.WeekRewards, reward)
		}

		if len(res.Snapshots) == 0 {
			return fail(CodeAlreadyProcessed, "gno transfer log %d of block %d already applied", e.LogIndex, block.Number)
		}
		return nil
	})
	if err != nil {
		return nil, commitError(err)
	}

	return res, nil
}

// weekState reports whether safe already has a reward row in week and its stored OG flag.
func (p *Processor) weekState(safe common.Address, week intcommon.WeekID) (spent, isOg bool, err error) {
	if _, err = p.store.GetWeekReward(week, safe); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, false, nil
		}
		return false, false, fail(CodeInternal, "%w", err)
	}

	stored, err := p.store.GetSafe(safe)
	if err != nil {
		return false, false, fail(CodeInternal, "%w", err)
	}
	return true, stored.IsOgNftHolder, nil
}

// observeTransfer widens the week's balance extrema with the post-transfer balance and
// recomputes the estimate. Volumes are left untouched.
func (p *Processor) observeTransfer(tx *store.Tx, s *touchedSafe, week intcommon.WeekID,
	gnoPrice decimal.Decimal) (*store.WeekCashbackReward, error) {
	reward, err := tx.GetWeekReward(week, s.address)
	if err != nil {
		return nil, err
	}
	reward.ObserveGnoBalance(s.balance)

	window, err := tx.USDVolumeWindow(s.address, week.Previous().Trailing(rewardWindowWeeks-1))
	if err != nil {
		return nil, err
	}

	reward.EstimatedReward = p.calculator.Reward(rewards.Input{
		GnoBalance:      reward.MaxGnoBalance,
		NetUSDVolume:    reward.NetUSDVolume,
		IsOgNftHolder:   s.isOg,
		GnoUSDPrice:     gnoPrice,
		USDVolumeWindow: window.Add(reward.NetUSDVolume),
	})
	if err := tx.UpdateWeekReward(reward); err != nil {
		return nil, err
	}
	return reward, nil
}

// isSafe reports whether addr is a stored Safe and whether it is a Gnosis Pay Safe at all.
func (p *Processor) isSafe(ctx context.Context, addr common.Address, block uint64) (known, relevant bool, err error) {
	known, err = p.store.SafeExists(addr)
	if err != nil {
		return false, false, fail(CodeInternal, "%w", err)
	}
	if known {
		return true, true, nil
	}

	relevant, err = p.resolver.IsGnosisPaySafe(ctx, addr, block)
	if err != nil {
		return false, false, fail(CodeUpstream, "failed to check safe %s: %w", addr.Hex(), err)
	}
	return false, relevant, nil
}
