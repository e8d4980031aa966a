package api

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	intcommon "github.com/goran-ethernal/GnosisPayIndexor/internal/common"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/rewards"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/store"
)

// rewardWindowWeeks is the length of the trailing USD volume window, current week included.
const rewardWindowWeeks = 4

// previewParams are the validated query parameters of a reward preview.
type previewParams struct {
	week     intcommon.WeekID
	excluded map[common.Hash]struct{}
	prices   map[common.Address]decimal.Decimal
}

// parsePreviewParams validates the week path value and the exclude and price query parameters.
// Both parameters accept comma separated lists and may be repeated.
func parsePreviewParams(weekValue string, query url.Values) (*previewParams, error) {
	week, err := intcommon.ParseWeekID(weekValue)
	if err != nil {
		return nil, err
	}

	p := &previewParams{
		week:     week,
		excluded: make(map[common.Hash]struct{}),
		prices:   make(map[common.Address]decimal.Decimal),
	}

	for _, id := range splitList(query["exclude"]) {
		if !intcommon.IsHexHash(id) {
			return nil, fmt.Errorf("invalid transaction id %q", id)
		}
		p.excluded[common.HexToHash(id)] = struct{}{}
	}

	for _, entry := range splitList(query["price"]) {
		token, value, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("invalid price override %q: expected <token>:<usd>", entry)
		}
		if !intcommon.IsHexAddress(token) {
			return nil, fmt.Errorf("invalid token address %q", token)
		}
		price, err := decimal.NewFromString(value)
		if err != nil || price.IsNegative() {
			return nil, fmt.Errorf("invalid usd price %q for token %s", value, token)
		}
		p.prices[common.HexToAddress(token)] = price
	}

	return p, nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

// previewWeek recomputes the reward of every Safe active in a week, leaving out the excluded
// transactions and repricing tokens with an override.
func (h *Handler) previewWeek(p *previewParams) (*WeekRewardsResponse, error) {
	rows, err := h.store.ListWeekRewards(p.week)
	if err != nil {
		return nil, err
	}
	txs, err := h.store.ListTransactionsByWeek(p.week)
	if err != nil {
		return nil, err
	}
	snapshots, err := h.store.ListSnapshotsByWeek(p.week)
	if err != nil {
		return nil, err
	}

	txsBySafe := make(map[common.Address][]*store.Transaction)
	weekGnoPrice := decimal.Zero
	for _, tx := range txs {
		txsBySafe[tx.SafeAddress] = append(txsBySafe[tx.SafeAddress], tx)
		weekGnoPrice = tx.GnoUSDPrice
	}

	snapshotsBySafe := make(map[common.Address][]*store.GnoBalanceSnapshot)
	for _, s := range snapshots {
		snapshotsBySafe[s.SafeAddress] = append(snapshotsBySafe[s.SafeAddress], s)
	}

	gnoOverride, hasGnoOverride := p.prices[h.gnoToken]

	resp := &WeekRewardsResponse{
		WeekID:               p.week,
		ExcludedTransactions: make([]string, 0, len(p.excluded)),
		PriceOverrides:       make(map[string]string, len(p.prices)),
		TotalEstimatedReward: decimal.Zero,
		Safes:                make([]SafeRewardPreview, 0, len(rows)),
	}
	for id := range p.excluded {
		resp.ExcludedTransactions = append(resp.ExcludedTransactions, id.Hex())
	}
	slices.Sort(resp.ExcludedTransactions)
	for token, price := range p.prices {
		resp.PriceOverrides[intcommon.NormalizeAddress(token)] = price.String()
	}

	for _, row := range rows {
		safe, err := h.store.GetSafe(row.SafeAddress)
		if err != nil {
			return nil, err
		}

		preview := SafeRewardPreview{
			SafeAddress:      intcommon.NormalizeAddress(row.SafeAddress),
			IsOgNftHolder:    safe.IsOgNftHolder,
			CarriedUSDVolume: row.CarriedUSDVolume,
			GnoBalance:       row.MaxGnoBalance,
			LowestGnoBalance: row.MinGnoBalance,
			GnoUSDPrice:      weekGnoPrice,
			EarnedReward:     row.EarnedReward,
		}

		net := row.CarriedUSDVolume
		for _, tx := range txsBySafe[row.SafeAddress] {
			if _, skip := p.excluded[tx.ID]; skip {
				preview.ExcludedCount++
				continue
			}

			usd := tx.AmountUSD
			if price, ok := p.prices[tx.AmountToken]; ok {
				usd = tx.Amount.Mul(price)
			}
			if tx.Type == store.TransactionRefund {
				usd = usd.Neg()
			}

			net = net.Add(usd)
			preview.TransactionCount++
			preview.GnoUSDPrice = tx.GnoUSDPrice
		}
		if hasGnoOverride {
			preview.GnoUSDPrice = gnoOverride
		}
		preview.NetUSDVolume = net

		for _, s := range snapshotsBySafe[row.SafeAddress] {
			preview.SnapshotCount++
			preview.LowestGnoBalance = decimal.Min(preview.LowestGnoBalance, s.Balance)
		}

		window, err := h.store.USDVolumeWindow(row.SafeAddress, p.week.Previous().Trailing(rewardWindowWeeks-1))
		if err != nil {
			return nil, err
		}
		preview.USDVolumeWindow = window.Add(net)

		preview.RewardPercentage = h.calculator.Percentage(preview.GnoBalance, preview.IsOgNftHolder)
		preview.EstimatedReward = h.calculator.Reward(rewards.Input{
			GnoBalance:      preview.GnoBalance,
			NetUSDVolume:    net,
			IsOgNftHolder:   preview.IsOgNftHolder,
			GnoUSDPrice:     preview.GnoUSDPrice,
			USDVolumeWindow: preview.USDVolumeWindow,
		})

		resp.TotalEstimatedReward = resp.TotalEstimatedReward.Add(preview.EstimatedReward)
		resp.Safes = append(resp.Safes, preview)
	}

	return resp, nil
}
