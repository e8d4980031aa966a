package broadcast

import (
	intcommon "github.com/goran-ethernal/GnosisPayIndexor/internal/common"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/store"
	"github.com/shopspring/decimal"
)

// TransactionEvent is published on transactions.new and on spends.new or refunds.new.
type TransactionEvent struct {
	ID             string           `json:"id"`
	Type           string           `json:"type"`
	SafeAddress    string           `json:"safe_address"`
	BlockNumber    uint64           `json:"block_number"`
	BlockTimestamp uint64           `json:"block_timestamp"`
	WeekID         intcommon.WeekID `json:"week_id"`
	AmountToken    string           `json:"amount_token"`
	Amount         decimal.Decimal  `json:"amount"`
	AmountUSD      decimal.Decimal  `json:"amount_usd"`
	GnoBalance     decimal.Decimal  `json:"gno_balance"`

	WeekNetUSDVolume    decimal.Decimal `json:"week_net_usd_volume"`
	WeekEstimatedReward decimal.Decimal `json:"week_estimated_reward"`
}

// WeekMetricsEvent is published on week-metrics.updated.
type WeekMetricsEvent struct {
	WeekID           intcommon.WeekID `json:"week_id"`
	NetUSDVolume     decimal.Decimal  `json:"net_usd_volume"`
	TransactionCount uint64           `json:"transaction_count"`
}

// NewTransactionEvent builds the payload of a committed transaction. week may be nil.
func NewTransactionEvent(t *store.Transaction, week *store.WeekCashbackReward) TransactionEvent {
	ev := TransactionEvent{
		ID:             t.ID.Hex(),
		Type:           string(t.Type),
		SafeAddress:    intcommon.NormalizeAddress(t.SafeAddress),
		BlockNumber:    t.BlockNumber,
		BlockTimestamp: t.BlockTimestamp,
		WeekID:         t.WeekID,
		AmountToken:    intcommon.NormalizeAddress(t.AmountToken),
		Amount:         t.Amount,
		AmountUSD:      t.AmountUSD,
		GnoBalance:     t.GnoBalance,
	}
	if week != nil {
		ev.WeekNetUSDVolume = week.NetUSDVolume
		ev.WeekEstimatedReward = week.EstimatedReward
	}
	return ev
}

// NewWeekMetricsEvent builds the payload of an updated week aggregate.
func NewWeekMetricsEvent(m *store.WeekMetricsSnapshot) WeekMetricsEvent {
	return WeekMetricsEvent{
		WeekID:           m.ID,
		NetUSDVolume:     m.NetUSDVolume,
		TransactionCount: m.TransactionCount,
	}
}

// TransactionSubject returns the per-type subject of t.
func TransactionSubject(t *store.Transaction) string {
	if t.Type == store.TransactionRefund {
		return SubjectRefundNew
	}
	return SubjectSpendNew
}
