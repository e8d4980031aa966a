// Package rewards computes the weekly GNO cashback of a Safe.
package rewards

import (
	"fmt"

	"github.com/goran-ethernal/GnosisPayIndexor/pkg/config"
	"github.com/shopspring/decimal"
)

// Tier maps a minimum GNO balance to a cashback percentage.
type Tier struct {
	MinBalance decimal.Decimal
	Percentage decimal.Decimal
}

var (
	// Tiers is the GNO balance ladder, ascending. Balances under the first tier earn nothing.
	Tiers = []Tier{
		{MinBalance: decimal.RequireFromString("0.1"), Percentage: decimal.NewFromInt(1)},
		{MinBalance: decimal.NewFromInt(1), Percentage: decimal.NewFromInt(2)},
		{MinBalance: decimal.NewFromInt(10), Percentage: decimal.NewFromInt(3)},
		{MinBalance: decimal.NewFromInt(100), Percentage: decimal.NewFromInt(4)},
	}

	// OgNftBonus is the percentage point boost of OG NFT holders that reached the first tier.
	OgNftBonus = decimal.NewFromInt(1)

	hundred = decimal.NewFromInt(100)
)

// Input holds everything a reward depends on.
type Input struct {
	GnoBalance    decimal.Decimal
	NetUSDVolume  decimal.Decimal
	IsOgNftHolder bool
	GnoUSDPrice   decimal.Decimal

	// USDVolumeWindow is the trailing 4-week USD volume, used by the volume gate.
	USDVolumeWindow decimal.Decimal
}

// Formula turns a GNO balance into a cashback percentage, before the OG bonus.
type Formula func(gnoBalance decimal.Decimal) decimal.Decimal

// Calculator computes GNO rewards.
type Calculator struct {
	formula   Formula
	windowCap decimal.Decimal
}

// NewCalculator creates a calculator for the configured formula.
func NewCalculator(cfg config.RewardsConfig) (*Calculator, error) {
	var f Formula
	switch cfg.Formula {
	case "", config.RewardFormulaStepped:
		f = SteppedPercentage
	case config.RewardFormulaInterpolated:
		f = InterpolatedPercentage
	default:
		return nil, fmt.Errorf("unknown reward formula %q", cfg.Formula)
	}

	return &Calculator{
		formula:   f,
		windowCap: decimal.NewFromFloat(cfg.MaxWindowUSDVolume),
	}, nil
}

// Percentage returns the cashback percentage for a balance, OG bonus included.
func (c *Calculator) Percentage(gnoBalance decimal.Decimal, isOgNftHolder bool) decimal.Decimal {
	pct := c.formula(gnoBalance)
	if isOgNftHolder && gnoBalance.GreaterThanOrEqual(Tiers[0].MinBalance) {
		pct = pct.Add(OgNftBonus)
	}
	return pct
}

// Reward returns the GNO amount earned: percentage/100 * netUSDVolume / gnoUSDPrice.
// Non-positive volume or price earn nothing, as does a window volume above the configured cap.
func (c *Calculator) Reward(in Input) decimal.Decimal {
	if !in.NetUSDVolume.IsPositive() || !in.GnoUSDPrice.IsPositive() {
		return decimal.Zero
	}
	if c.windowCap.IsPositive() && in.USDVolumeWindow.GreaterThan(c.windowCap) {
		return decimal.Zero
	}

	pct := c.Percentage(in.GnoBalance, in.IsOgNftHolder)
	if pct.IsZero() {
		return decimal.Zero
	}

	return pct.Div(hundred).Mul(in.NetUSDVolume).Div(in.GnoUSDPrice)
}

// SteppedPercentage returns the percentage of the highest tier reached.
func SteppedPercentage(gnoBalance decimal.Decimal) decimal.Decimal {
	pct := decimal.Zero
	for _, t := range Tiers {
		if gnoBalance.LessThan(t.MinBalance) {
			break
		}
		pct = t.Percentage
	}
	return pct
}

// InterpolatedPercentage grows the percentage linearly between tier boundaries,
// reaching each tier's percentage exactly at the next boundary. It caps at the last tier.
func InterpolatedPercentage(gnoBalance decimal.Decimal) decimal.Decimal {
	first := Tiers[0]
	if gnoBalance.LessThan(first.MinBalance) {
		return decimal.Zero
	}

	for i := 0; i < len(Tiers)-1; i++ {
		lo, hi := Tiers[i], Tiers[i+1]
		if gnoBalance.GreaterThanOrEqual(hi.MinBalance) {
			continue
		}
		span := hi.MinBalance.Sub(lo.MinBalance)
		progress := gnoBalance.Sub(lo.MinBalance).Div(span)
		return lo.Percentage.Add(hi.Percentage.Sub(lo.Percentage).Mul(progress))
	}

	return Tiers[len(Tiers)-1].Percentage
}
