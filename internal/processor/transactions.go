package processor

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/chain"
	intcommon "github.com/goran-ethernal/GnosisPayIndexor/internal/common"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/fetcher"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/rewards"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/store"
	"github.com/shopspring/decimal"
)

// rewardWindowWeeks is the length of the trailing USD volume window, current week included.
const rewardWindowWeeks = 4

// payment is the part of a Spend or Refund log the transaction flow needs.
type payment struct {
	meta   fetcher.LogMeta
	typ    store.TransactionType
	safe   common.Address
	token  common.Address
	amount *big.Int
}

func (p *Processor) processSpend(ctx context.Context, e *fetcher.SpendEvent) (*Result, error) {
	if err := p.checkTransaction(e.TxHash); err != nil {
		return nil, err
	}

	safe, err := p.resolver.SafeForModule(ctx, e.Account, e.BlockNumber)
	if errors.Is(err, chain.ErrNoAvatar) {
		return nil, fail(CodeNotFound, "no safe behind module %s: %w", e.Account.Hex(), err)
	}
	if err != nil {
		return nil, fail(CodeUpstream, "failed to resolve safe of module %s: %w", e.Account.Hex(), err)
	}

	return p.processPayment(ctx, payment{
		meta:   e.LogMeta,
		typ:    store.TransactionSpend,
		safe:   safe,
		token:  e.Asset,
		amount: e.Amount,
	})
}

func (p *Processor) processRefund(ctx context.Context, e *fetcher.RefundEvent) (*Result, error) {
	if err := p.checkTransaction(e.TxHash); err != nil {
		return nil, err
	}

	return p.processPayment(ctx, payment{
		meta:   e.LogMeta,
		typ:    store.TransactionRefund,
		safe:   e.To,
		token:  e.Token,
		amount: e.Amount,
	})
}

func (p *Processor) checkTransaction(id common.Hash) error {
	exists, err := p.store.TransactionExists(id)
	if err != nil {
		return fail(CodeInternal, "%w", err)
	}
	if exists {
		return fail(CodeAlreadyProcessed, "transaction %s already stored", id.Hex())
	}
	return nil
}

// processPayment enriches a Spend or Refund with chain reads and applies it in one store transaction.
func (p *Processor) processPayment(ctx context.Context, pay payment) (*Result, error) {
	block, err := p.block(ctx, pay.meta.BlockNumber)
	if err != nil {
		return nil, err
	}

	gno, err := p.token(p.contracts.GNOToken)
	if err != nil {
		return nil, err
	}
	if gno.OracleAddress == nil {
		return nil, fail(CodeNotFound, "gno token has no price oracle")
	}

	token, err := p.token(pay.token)
	if err != nil {
		return nil, err
	}

	balanceRaw, balance, err := p.gnoBalance(ctx, gno, pay.safe, block.Number)
	if err != nil {
		return nil, err
	}

	owners, err := p.owners(ctx, pay.safe, block.Number)
	if err != nil {
		return nil, err
	}

	isOg, err := p.isOgNftHolder(ctx, pay.safe, owners, block.Number)
	if err != nil {
		return nil, err
	}

	var tokenOracle common.Address
	if token.OracleAddress != nil {
		tokenOracle = *token.OracleAddress
	}
	prices, err := p.reader.USDPrices(ctx, []common.Address{tokenOracle, *gno.OracleAddress}, block.Number)
	if err != nil {
		return nil, fail(CodeUpstream, "failed to read prices at block %d: %w", block.Number, err)
	}
	tokenPrice, gnoPrice := prices[0], prices[1]

	amount := intcommon.ToDecimal(pay.amount, token.Decimals)
	t := &store.Transaction{
		ID:             pay.meta.TxHash,
		Type:           pay.typ,
		BlockNumber:    block.Number,
		LogIndex:       pay.meta.LogIndex,
		BlockTimestamp: block.Timestamp,
		WeekID:         block.WeekID,
		SafeAddress:    pay.safe,
		AmountToken:    token.Address,
		AmountRaw:      pay.amount,
		Amount:         amount,
		AmountUSD:      amount.Mul(tokenPrice),
		GnoBalanceRaw:  balanceRaw,
		GnoBalance:     balance,
		GnoUSDPrice:    gnoPrice,
	}

	res := &Result{
		Kind:        kindOf(pay.typ),
		Outcome:     OutcomeProcessed,
		Safe:        pay.safe,
		Transaction: t,
	}

	err = p.store.WithTx(ctx, func(tx *store.Tx) error {
		if err := tx.InsertBlock(block); err != nil {
			return err
		}
		if _, err := tx.EnsureSafe(pay.safe, block.Number); err != nil {
			return err
		}
		if _, err := tx.SetSafeOwners(pay.safe, owners); err != nil {
			return err
		}
		if isOg {
			if err := tx.SetOgNftHolder(pay.safe, true); err != nil {
				return err
			}
		}
		if err := tx.UpdateSafeGnoBalance(pay.safe, balance, block.Number); err != nil {
			return err
		}

		if err := tx.InsertTransaction(t); err != nil {
			return err
		}

		reward, err := weekReward(tx, block.WeekID, pay.safe, balance)
		if err != nil {
			return err
		}
		reward.NetUSDVolume = reward.NetUSDVolume.Add(t.SignedAmountUSD())
		reward.ObserveGnoBalance(balance)

		window, err := tx.USDVolumeWindow(pay.safe, block.WeekID.Previous().Trailing(rewardWindowWeeks-1))
		if err != nil {
			return err
		}

		reward.EstimatedReward = p.calculator.Reward(rewards.Input{
			GnoBalance:      reward.MaxGnoBalance,
			NetUSDVolume:    reward.NetUSDVolume,
			IsOgNftHolder:   isOg,
			GnoUSDPrice:     gnoPrice,
			USDVolumeWindow: window.Add(reward.NetUSDVolume),
		})
		if err := tx.UpdateWeekReward(reward); err != nil {
			return err
		}
		res.WeekReward = reward

		if _, err := tx.RecomputeSafeNetUSDVolume(pay.safe); err != nil {
			return err
		}

		res.WeekMetrics, err = tx.AddWeekMetrics(block.WeekID, t.SignedAmountUSD())
		return err
	})
	if err != nil {
		return nil, commitError(err)
	}

	p.log.Debugw("transaction processed",
		"type", t.Type,
		"tx", t.ID.Hex(),
		"safe", pay.safe.Hex(),
		"week", block.WeekID,
		"amount_usd", t.AmountUSD.String(),
		"estimated_reward", res.WeekReward.EstimatedReward.String(),
	)

	return res, nil
}

// isOgNftHolder keeps a stored holder flag and otherwise checks the owners at block.
func (p *Processor) isOgNftHolder(ctx context.Context, safe common.Address, owners []common.Address,
	block uint64) (bool, error) {
	stored, err := p.store.GetSafe(safe)
	switch {
	case err == nil && stored.IsOgNftHolder:
		return true, nil
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return false, fail(CodeInternal, "%w", err)
	}

	holder, err := p.reader.IsOgNftHolder(ctx, owners, block)
	if err != nil {
		return false, fail(CodeUpstream, "failed to read og nft balance of %s owners: %w", safe.Hex(), err)
	}
	return holder, nil
}

// weekReward returns the reward row of safe in week, creating it when missing.
// A new row starts from the prior week's volume when that week closed negative.
func weekReward(tx *store.Tx, week intcommon.WeekID, safe common.Address,
	balance decimal.Decimal) (*store.WeekCashbackReward, error) {
	reward, err := tx.GetWeekReward(week, safe)
	if err == nil {
		return reward, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	carried := decimal.Zero
	prev, err := tx.GetWeekReward(week.Previous(), safe)
	switch {
	case err == nil:
		if prev.NetUSDVolume.IsNegative() {
			carried = prev.NetUSDVolume
		}
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	reward = &store.WeekCashbackReward{
		ID:               store.WeekRewardID(week, safe),
		SafeAddress:      safe,
		WeekID:           week,
		NetUSDVolume:     carried,
		CarriedUSDVolume: carried,
		MinGnoBalance:    balance,
		MaxGnoBalance:    balance,
		EstimatedReward:  decimal.Zero,
	}
	if err := tx.InsertWeekReward(reward); err != nil {
		return nil, err
	}
	return reward, nil
}

func kindOf(typ store.TransactionType) fetcher.Kind {
	if typ == store.TransactionRefund {
		return fetcher.KindRefund
	}
	return fetcher.KindSpend
}
