package api

import (
	"time"

	"github.com/shopspring/decimal"

	intcommon "github.com/goran-ethernal/GnosisPayIndexor/internal/common"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/cursor"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Database  string           `json:"database"`
	Cursor    *cursor.Snapshot `json:"cursor,omitempty"`
}

// WeekResponse is the chain-wide aggregate of an indexed week.
type WeekResponse struct {
	WeekID           intcommon.WeekID `json:"week_id"`
	NetUSDVolume     decimal.Decimal  `json:"net_usd_volume" swaggertype:"string"`
	TransactionCount uint64           `json:"transaction_count"`
}

// WeekRewardsResponse is the reward preview of a week.
type WeekRewardsResponse struct {
	WeekID               intcommon.WeekID    `json:"week_id"`
	ExcludedTransactions []string            `json:"excluded_transactions"`
	PriceOverrides       map[string]string   `json:"price_overrides"`
	TotalEstimatedReward decimal.Decimal     `json:"total_estimated_reward" swaggertype:"string"`
	Safes                []SafeRewardPreview `json:"safes"`
}

// SafeRewardPreview is the recomputed reward of one Safe in a week.
type SafeRewardPreview struct {
	SafeAddress      string           `json:"safe_address"`
	IsOgNftHolder    bool             `json:"is_og_nft_holder"`
	TransactionCount int              `json:"transaction_count"`
	ExcludedCount    int              `json:"excluded_count"`
	CarriedUSDVolume decimal.Decimal  `json:"carried_usd_volume" swaggertype:"string"`
	NetUSDVolume     decimal.Decimal  `json:"net_usd_volume" swaggertype:"string"`
	USDVolumeWindow  decimal.Decimal  `json:"usd_volume_window" swaggertype:"string"`
	GnoBalance       decimal.Decimal  `json:"gno_balance" swaggertype:"string"`
	LowestGnoBalance decimal.Decimal  `json:"lowest_gno_balance" swaggertype:"string"`
	SnapshotCount    int              `json:"snapshot_count"`
	GnoUSDPrice      decimal.Decimal  `json:"gno_usd_price" swaggertype:"string"`
	RewardPercentage decimal.Decimal  `json:"reward_percentage" swaggertype:"string"`
	EstimatedReward  decimal.Decimal  `json:"estimated_reward" swaggertype:"string"`
	EarnedReward     *decimal.Decimal `json:"earned_reward,omitempty" swaggertype:"string"`
}

// TokenPriceResponse is the latest oracle price of a registry token.
type TokenPriceResponse struct {
	Address     string          `json:"address"`
	Symbol      string          `json:"symbol"`
	PriceUSD    decimal.Decimal `json:"price_usd" swaggertype:"string"`
	BlockNumber uint64          `json:"block_number"`
}

// SafeResponse is a Safe with its weekly rewards and recent transactions.
type SafeResponse struct {
	Address         string                `json:"address"`
	Owners          []string              `json:"owners"`
	IsOgNftHolder   bool                  `json:"is_og_nft_holder"`
	NetUSDVolume    decimal.Decimal       `json:"net_usd_volume" swaggertype:"string"`
	GnoBalance      decimal.Decimal       `json:"gno_balance" swaggertype:"string"`
	GnoBalanceBlock uint64                `json:"gno_balance_block"`
	FirstSeenBlock  uint64                `json:"first_seen_block"`
	Weeks           []SafeWeekResponse    `json:"weeks"`
	Transactions    []TransactionResponse `json:"transactions"`
}

// SafeWeekResponse is the reward row of a Safe in one week.
type SafeWeekResponse struct {
	WeekID           intcommon.WeekID `json:"week_id"`
	NetUSDVolume     decimal.Decimal  `json:"net_usd_volume" swaggertype:"string"`
	CarriedUSDVolume decimal.Decimal  `json:"carried_usd_volume" swaggertype:"string"`
	MinGnoBalance    decimal.Decimal  `json:"min_gno_balance" swaggertype:"string"`
	MaxGnoBalance    decimal.Decimal  `json:"max_gno_balance" swaggertype:"string"`
	EstimatedReward  decimal.Decimal  `json:"estimated_reward" swaggertype:"string"`
	EarnedReward     *decimal.Decimal `json:"earned_reward,omitempty" swaggertype:"string"`
}

// SafeWeekDetailResponse is the reward row of a Safe in one week with the records behind it.
type SafeWeekDetailResponse struct {
	SafeAddress string `json:"safe_address"`
	SafeWeekResponse
	Transactions  []TransactionResponse  `json:"transactions"`
	Snapshots     []SnapshotResponse     `json:"snapshots"`
	Distributions []DistributionResponse `json:"distributions"`
}

// SnapshotResponse is the GNO balance of a Safe after a block with a GNO transfer.
type SnapshotResponse struct {
	BlockNumber    uint64          `json:"block_number"`
	BlockTimestamp uint64          `json:"block_timestamp"`
	Balance        decimal.Decimal `json:"balance" swaggertype:"string"`
}

// DistributionResponse is an on-chain cashback payout.
type DistributionResponse struct {
	ID           string           `json:"id"`
	SafeAddress  string           `json:"safe_address"`
	BlockNumber  uint64           `json:"block_number"`
	WeekID       intcommon.WeekID `json:"week_id"`
	RewardWeekID intcommon.WeekID `json:"reward_week_id"`
	Amount       decimal.Decimal  `json:"amount" swaggertype:"string"`
}

// TransactionResponse is a processed Spend or Refund.
type TransactionResponse struct {
	ID             string           `json:"id"`
	SafeAddress    string           `json:"safe_address"`
	Type           string           `json:"type"`
	BlockNumber    uint64           `json:"block_number"`
	BlockTimestamp uint64           `json:"block_timestamp"`
	WeekID         intcommon.WeekID `json:"week_id"`
	AmountToken    string           `json:"amount_token"`
	Amount         decimal.Decimal  `json:"amount" swaggertype:"string"`
	AmountUSD      decimal.Decimal  `json:"amount_usd" swaggertype:"string"`
	GnoBalance     decimal.Decimal  `json:"gno_balance" swaggertype:"string"`
	GnoUSDPrice    decimal.Decimal  `json:"gno_usd_price" swaggertype:"string"`
}
