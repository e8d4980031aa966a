package store

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	intcommon "github.com/goran-ethernal/GnosisPayIndexor/internal/common"
)

// Block is a block header cached for its timestamp.
type Block struct {
	Number    uint64           `meddler:"number"`
	Hash      common.Hash      `meddler:"hash,hash"`
	Timestamp uint64           `meddler:"timestamp"`
	WeekID    intcommon.WeekID `meddler:"week_id"`
}

// Token is a payment token of the registry.
type Token struct {
	Address       common.Address  `meddler:"address,address"`
	Symbol        string          `meddler:"symbol"`
	Name          string          `meddler:"name"`
	Decimals      uint8           `meddler:"decimals"`
	ChainID       uint64          `meddler:"chain_id"`
	OracleAddress *common.Address `meddler:"oracle_address,address"`
}

// Safe is a Gnosis Pay account.
type Safe struct {
	Address         common.Address  `meddler:"address,address"`
	IsOgNftHolder   bool            `meddler:"is_og_nft_holder"`
	NetUSDVolume    decimal.Decimal `meddler:"net_usd_volume,decimal"`
	GnoBalance      decimal.Decimal `meddler:"gno_balance,decimal"`
	GnoBalanceBlock uint64          `meddler:"gno_balance_block"`
	FirstSeenBlock  uint64          `meddler:"first_seen_block"`

	Owners []common.Address `meddler:"-"`
}

// TransactionType tells whether a card transaction added to or took from the week's volume.
type TransactionType string

const (
	// TransactionSpend is a card payment; its USD amount counts positive.
	TransactionSpend TransactionType = "spend"
	// TransactionRefund is money returned to the Safe; its USD amount counts negative.
	TransactionRefund TransactionType = "refund"
)

// Transaction is a processed Spend or Refund. The transaction hash is the idempotency key.
type Transaction struct {
	ID             common.Hash      `meddler:"id,hash"`
	Type           TransactionType  `meddler:"type"`
	BlockNumber    uint64           `meddler:"block_number"`
	LogIndex       uint             `meddler:"log_index"`
	BlockTimestamp uint64           `meddler:"block_timestamp"`
	WeekID         intcommon.WeekID `meddler:"week_id"`
	SafeAddress    common.Address   `meddler:"safe_address,address"`
	AmountToken    common.Address   `meddler:"amount_token,address"`
	AmountRaw      *big.Int         `meddler:"amount_raw,bigint"`
	Amount         decimal.Decimal  `meddler:"amount,decimal"`
	AmountUSD      decimal.Decimal  `meddler:"amount_usd,decimal"`
	GnoBalanceRaw  *big.Int         `meddler:"gno_balance_raw,bigint"`
	GnoBalance     decimal.Decimal  `meddler:"gno_balance,decimal"`
	GnoUSDPrice    decimal.Decimal  `meddler:"gno_usd_price,decimal"`
}

// SignedAmountUSD returns the USD amount with the sign it contributes to the week volume:
// spends count positive, refunds negative.
func (t *Transaction) SignedAmountUSD() decimal.Decimal {
	if t.Type == TransactionRefund {
		return t.AmountUSD.Neg()
	}
	return t.AmountUSD
}

// GnoBalanceSnapshot is the GNO balance of a Safe at the end of a block with a transfer.
// LogIndex is the highest transfer log of the block applied to the snapshot.
type GnoBalanceSnapshot struct {
	ID             string           `meddler:"id"`
	SafeAddress    common.Address   `meddler:"safe_address,address"`
	WeekID         intcommon.WeekID `meddler:"week_id"`
	BalanceRaw     *big.Int         `meddler:"balance_raw,bigint"`
	Balance        decimal.Decimal  `meddler:"balance,decimal"`
	BlockNumber    uint64           `meddler:"block_number"`
	BlockTimestamp uint64           `meddler:"block_timestamp"`
	LogIndex       uint             `meddler:"log_index"`
}

// WeekCashbackReward aggregates one Safe's activity over one week.
// NetUSDVolume equals CarriedUSDVolume plus the signed sum of the week's transactions.
type WeekCashbackReward struct {
	ID               string           `meddler:"id"`
	SafeAddress      common.Address   `meddler:"safe_address,address"`
	WeekID           intcommon.WeekID `meddler:"week_id"`
	NetUSDVolume     decimal.Decimal  `meddler:"net_usd_volume,decimal"`
	CarriedUSDVolume decimal.Decimal  `meddler:"carried_usd_volume,decimal"`
	MinGnoBalance    decimal.Decimal  `meddler:"min_gno_balance,decimal"`
	MaxGnoBalance    decimal.Decimal  `meddler:"max_gno_balance,decimal"`
	EstimatedReward  decimal.Decimal  `meddler:"estimated_reward,decimal"`
	EarnedReward     *decimal.Decimal `meddler:"earned_reward,decimal"`
}

// ObserveGnoBalance widens the week's balance extrema with b.
func (w *WeekCashbackReward) ObserveGnoBalance(b decimal.Decimal) {
	if b.LessThan(w.MinGnoBalance) {
		w.MinGnoBalance = b
	}
	if b.GreaterThan(w.MaxGnoBalance) {
		w.MaxGnoBalance = b
	}
}

// WeekMetricsSnapshot is the chain-wide aggregate of a week.
type WeekMetricsSnapshot struct {
	ID               intcommon.WeekID `meddler:"id"`
	NetUSDVolume     decimal.Decimal  `meddler:"net_usd_volume,decimal"`
	TransactionCount uint64           `meddler:"transaction_count"`
}

// RewardDistribution is an on-chain cashback payout.
type RewardDistribution struct {
	ID           common.Hash      `meddler:"id,hash"`
	BlockNumber  uint64           `meddler:"block_number"`
	LogIndex     uint             `meddler:"log_index"`
	WeekID       intcommon.WeekID `meddler:"week_id"`
	RewardWeekID intcommon.WeekID `meddler:"reward_week_id"`
	SafeAddress  common.Address   `meddler:"safe_address,address"`
	AmountRaw    *big.Int         `meddler:"amount_raw,bigint"`
	Amount       decimal.Decimal  `meddler:"amount,decimal"`
}

// WeekRewardID returns the id of the reward row of safe in week.
func WeekRewardID(week intcommon.WeekID, safe common.Address) string {
	return fmt.Sprintf("%s/%s", week, intcommon.NormalizeAddress(safe))
}

// SnapshotID returns the id of the balance snapshot of safe at block.
func SnapshotID(block uint64, safe common.Address) string {
	return fmt.Sprintf("%d/%s", block, intcommon.NormalizeAddress(safe))
}
