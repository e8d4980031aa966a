package broadcast

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNewTransactionEvent(t *testing.T) {
	t.Parallel()

	tx := &store.Transaction{
		ID:          common.HexToHash("0x0abc"),
		Type:        store.TransactionRefund,
		BlockNumber: 37000000,
		WeekID:      "2025-01-05",
		SafeAddress: common.HexToAddress("0x00000000000000000000000000000000000000A1"),
		AmountToken: common.HexToAddress("0xcB444e90D8198415266c6a2724b7900fb12FC56E"),
		Amount:      decimal.RequireFromString("9.5"),
		AmountUSD:   decimal.RequireFromString("10.26"),
	}
	week := &store.WeekCashbackReward{
		NetUSDVolume:    decimal.RequireFromString("89.74"),
		EstimatedReward: decimal.RequireFromString("0.0179"),
	}

	ev := NewTransactionEvent(tx, week)
	require.Equal(t, SubjectRefundNew, TransactionSubject(tx))
	require.Equal(t, "0x00000000000000000000000000000000000000a1", ev.SafeAddress)
	require.Equal(t, "0xcb444e90d8198415266c6a2724b7900fb12fc56e", ev.AmountToken)

	encoded, err := json.Marshal(ev)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(encoded, &fields))
	require.Equal(t, "refund", fields["type"])
	require.Equal(t, "2025-01-05", fields["week_id"])
	require.Equal(t, "10.26", fields["amount_usd"])
	require.Equal(t, "89.74", fields["week_net_usd_volume"])

	tx.Type = store.TransactionSpend
	require.Equal(t, SubjectSpendNew, TransactionSubject(tx))
	require.True(t, NewTransactionEvent(tx, nil).WeekNetUSDVolume.IsZero())
}

func TestNewWeekMetricsEvent(t *testing.T) {
	t.Parallel()

	ev := NewWeekMetricsEvent(&store.WeekMetricsSnapshot{
		ID:               "2025-01-12",
		NetUSDVolume:     decimal.NewFromInt(1500),
		TransactionCount: 12,
	})
	require.Equal(t, WeekMetricsEvent{WeekID: "2025-01-12", NetUSDVolume: decimal.NewFromInt(1500), TransactionCount: 12}, ev)
}
