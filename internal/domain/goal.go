package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// GoalPeriod is the horizon a sales goal is evaluated over.
type GoalPeriod string

const (
	PeriodDaily   GoalPeriod = "daily"
	PeriodWeekly  GoalPeriod = "weekly"
	PeriodMonthly GoalPeriod = "monthly"
)

// IsValid checks if the period is a known goal period.
func (p GoalPeriod) IsValid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	}
	return false
}

// GoalTier is one commission band. Thresholds are inclusive lower bounds:
// hitting the threshold exactly earns the tier.
type GoalTier struct {
	Name              string // Bronze, Prata, Ouro
	Threshold         decimal.Decimal
	CommissionPercent decimal.Decimal
}

// Goal is a seller's tiered sales target for a period. Tiers must have
// monotonically increasing thresholds with non-decreasing percentages;
// the registration screens enforce that on write.
type Goal struct {
	SellerID string
	Period   GoalPeriod
	Tiers    []GoalTier
}

// CommissionResult is the outcome of evaluating sales against a goal.
type CommissionResult struct {
	Tier             string
	TierPercent      decimal.Decimal
	CommissionAmount decimal.Decimal
}

// ComputeCommission selects the highest tier whose threshold is at or below
// totalSales and applies its percentage. Sales under the lowest tier earn
// zero commission; that is a result, not an error. Pure over the goal data.
func (g *Goal) ComputeCommission(totalSales decimal.Decimal) CommissionResult {
	tiers := make([]GoalTier, len(g.Tiers))
	copy(tiers, g.Tiers)
	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].Threshold.LessThan(tiers[j].Threshold)
	})

	var winner *GoalTier
	for i := range tiers {
		if totalSales.GreaterThanOrEqual(tiers[i].Threshold) {
			winner = &tiers[i]
		}
	}

	if winner == nil {
		return CommissionResult{
			Tier:             "",
			TierPercent:      decimal.Zero,
			CommissionAmount: decimal.Zero,
		}
	}

	hundred := decimal.NewFromInt(100)

	return CommissionResult{
		Tier:             winner.Name,
		TierPercent:      winner.CommissionPercent,
		CommissionAmount: totalSales.Mul(winner.CommissionPercent).Div(hundred).Round(2),
	}
}
