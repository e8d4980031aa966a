package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/russross/meddler"
	"github.com/shopspring/decimal"

	intcommon "github.com/goran-ethernal/GnosisPayIndexor/internal/common"
)

// GetWeekReward returns the reward row of safe in week.
func (q queries) GetWeekReward(week intcommon.WeekID, safe common.Address) (*WeekCashbackReward, error) {
	var r WeekCashbackReward
	id := WeekRewardID(week, safe)
	if err := meddler.QueryRow(q.q, &r, `SELECT * FROM week_cashback_rewards WHERE id = ?`, id); err != nil {
		return nil, notFound(err, "week reward %s", id)
	}
	return &r, nil
}

// InsertWeekReward creates a reward row.
func (q queries) InsertWeekReward(r *WeekCashbackReward) error {
	if err := meddler.Insert(q.q, "week_cashback_rewards", r); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("week reward %s: %w", r.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to insert week reward %s: %w", r.ID, err)
	}
	return nil
}

// UpdateWeekReward persists the mutable fields of a reward row.
func (q queries) UpdateWeekReward(r *WeekCashbackReward) error {
	var earned any
	if r.EarnedReward != nil {
		earned = r.EarnedReward.String()
	}

	res, err := q.q.Exec(`UPDATE week_cashback_rewards SET
		net_usd_volume = ?, carried_usd_volume = ?, min_gno_balance = ?, max_gno_balance = ?,
		estimated_reward = ?, earned_reward = ?
		WHERE id = ?`,
		r.NetUSDVolume.String(), r.CarriedUSDVolume.String(), r.MinGnoBalance.String(), r.MaxGnoBalance.String(),
		r.EstimatedReward.String(), earned, r.ID)
	if err != nil {
		return fmt.Errorf("failed to update week reward %s: %w", r.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("week reward %s: %w", r.ID, ErrNotFound)
	}
	return nil
}

// ListWeekRewards returns all reward rows of a week ordered by Safe.
func (q queries) ListWeekRewards(week intcommon.WeekID) ([]*WeekCashbackReward, error) {
	var rewards []*WeekCashbackReward
	if err := meddler.QueryAll(q.q, &rewards,
		`SELECT * FROM week_cashback_rewards WHERE week_id = ? ORDER BY safe_address`, string(week)); err != nil {
		return nil, fmt.Errorf("failed to list week rewards of %s: %w", week, err)
	}
	return rewards, nil
}

// ListSafeWeekRewards returns the reward rows of a Safe, newest week first.
func (q queries) ListSafeWeekRewards(safe common.Address) ([]*WeekCashbackReward, error) {
	var rewards []*WeekCashbackReward
	if err := meddler.QueryAll(q.q, &rewards,
		`SELECT * FROM week_cashback_rewards WHERE safe_address = ? ORDER BY week_id DESC`,
		intcommon.NormalizeAddress(safe)); err != nil {
		return nil, fmt.Errorf("failed to list week rewards of safe %s: %w", safe.Hex(), err)
	}
	return rewards, nil
}

// USDVolumeWindow sums the net USD volume of safe over the given weeks.
func (q queries) USDVolumeWindow(safe common.Address, weeks []intcommon.WeekID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, week := range weeks {
		r, err := q.GetWeekReward(week, safe)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(r.NetUSDVolume)
	}
	return total, nil
}

// AddEarnedReward adds amount to the earned reward of safe in week.
// It reports false when the Safe has no reward row for that week.
func (q queries) AddEarnedReward(week intcommon.WeekID, safe common.Address, amount decimal.Decimal) (bool, error) {
	r, err := q.GetWeekReward(week, safe)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	earned := amount
	if r.EarnedReward != nil {
		earned = r.EarnedReward.Add(amount)
	}
	r.EarnedReward = &earned

	return true, q.UpdateWeekReward(r)
}

// ReconcileEarnedRewards sets the earned reward to zero on every reward row of the given weeks
// that has not received a payout, and returns the number of rows updated.
func (q queries) ReconcileEarnedRewards(weeks []intcommon.WeekID) (int64, error) {
	if len(weeks) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(weeks)), ",")
	args := make([]any, len(weeks))
	for i, w := range weeks {
		args[i] = string(w)
	}

	res, err := q.q.Exec(`UPDATE week_cashback_rewards SET earned_reward = '0'
		WHERE earned_reward IS NULL AND week_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to reconcile earned rewards: %w", err)
	}
	return res.RowsAffected()
}

// GetWeekMetrics returns the chain-wide metrics of a week.
func (q queries) GetWeekMetrics(week intcommon.WeekID) (*WeekMetricsSnapshot, error) {
	var m WeekMetricsSnapshot
	if err := meddler.QueryRow(q.q, &m, `SELECT * FROM week_metrics_snapshots WHERE id = ?`, string(week)); err != nil {
		return nil, notFound(err, "week metrics %s", week)
	}
	return &m, nil
}

// AddWeekMetrics creates the week metrics snapshot if needed and adds one transaction of
// signedUSD to it, returning the updated snapshot.
func (q queries) AddWeekMetrics(week intcommon.WeekID, signedUSD decimal.Decimal) (*WeekMetricsSnapshot, error) {
	m, err := q.GetWeekMetrics(week)
	switch {
	case errors.Is(err, ErrNotFound):
		m = &WeekMetricsSnapshot{ID: week, NetUSDVolume: decimal.Zero}
		if err := meddler.Insert(q.q, "week_metrics_snapshots", m); err != nil {
			return nil, fmt.Errorf("failed to insert week metrics %s: %w", week, err)
		}
	case err != nil:
		return nil, err
	}

	m.NetUSDVolume = m.NetUSDVolume.Add(signedUSD)
	m.TransactionCount++

	if _, err := q.q.Exec(`UPDATE week_metrics_snapshots SET net_usd_volume = ?, transaction_count = ? WHERE id = ?`,
		m.NetUSDVolume.String(), m.TransactionCount, string(week)); err != nil {
		return nil, fmt.Errorf("failed to update week metrics %s: %w", week, err)
	}

	return m, nil
}

// ListWeekMetrics returns the metrics of every indexed week, newest first.
func (q queries) ListWeekMetrics() ([]*WeekMetricsSnapshot, error) {
	var metrics []*WeekMetricsSnapshot
	if err := meddler.QueryAll(q.q, &metrics, `SELECT * FROM week_metrics_snapshots ORDER BY id DESC`); err != nil {
		return nil, fmt.Errorf("failed to list week metrics: %w", err)
	}
	return metrics, nil
}

// GetDistribution returns the payout stored under the given transaction hash.
func (q queries) GetDistribution(id common.Hash) (*RewardDistribution, error) {
	var d RewardDistribution
	if err := meddler.QueryRow(q.q, &d, `SELECT * FROM reward_distributions WHERE id = ?`, id.Hex()); err != nil {
		return nil, notFound(err, "reward distribution %s", id.Hex())
	}
	return &d, nil
}

// InsertDistribution stores a payout. A second insert of the same hash returns ErrAlreadyExists.
func (q queries) InsertDistribution(d *RewardDistribution) error {
	if err := meddler.Insert(q.q, "reward_distributions", d); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("reward distribution %s: %w", d.ID.Hex(), ErrAlreadyExists)
		}
		return fmt.Errorf("failed to insert reward distribution %s: %w", d.ID.Hex(), err)
	}
	return nil
}

// ListDistributionsByRewardWeek returns the payouts made for a week.
func (q queries) ListDistributionsByRewardWeek(week intcommon.WeekID) ([]*RewardDistribution, error) {
	var ds []*RewardDistribution
	if err := meddler.QueryAll(q.q, &ds,
		`SELECT * FROM reward_distributions WHERE reward_week_id = ? ORDER BY block_number, log_index`,
		string(week)); err != nil {
		return nil, fmt.Errorf("failed to list reward distributions of week %s: %w", week, err)
	}
	return ds, nil
}
