package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// FeeRule maps a payment method, card brand and installment range to the
// percentage the PSP keeps and how many business days settlement takes.
// Rules are managed by the registration screens; the ledger only reads them.
type FeeRule struct {
	ID                  string
	Method              PaymentMethod
	CardBrand           string // empty when the method has no brand (e.g. pix)
	MinInstallments     int
	MaxInstallments     int
	FeePercent          decimal.Decimal
	SettlementDelayDays int
	RegisteredAt        time.Time
}

// Covers reports whether the rule applies to the given installment count.
// Bounds are inclusive on both ends.
func (r *FeeRule) Covers(installments int) bool {
	return installments >= r.MinInstallments && installments <= r.MaxInstallments
}

// rangeWidth is the installment span; narrower ranges are more specific.
func (r *FeeRule) rangeWidth() int {
	return r.MaxInstallments - r.MinInstallments
}

// ResolvedFee is the outcome of fee resolution for one posting.
type ResolvedFee struct {
	RuleID              string
	FeePercent          decimal.Decimal
	SettlementDelayDays int
}

// ResolveFee picks the applicable rule among candidates already filtered by
// (method, brand). The narrowest installment range wins; ties break toward
// the rule registered most recently. No candidate covering the installment
// count means the posting must be blocked, never defaulted to zero fee.
func ResolveFee(rules []*FeeRule, installments int) (*ResolvedFee, error) {
	matches := make([]*FeeRule, 0, len(rules))
	for _, r := range rules {
		if r.Covers(installments) {
			matches = append(matches, r)
		}
	}

	if len(matches) == 0 {
		return nil, ErrNoMatchingFeeRule
	}

	sort.SliceStable(matches, func(i, j int) bool {
		wi, wj := matches[i].rangeWidth(), matches[j].rangeWidth()
		if wi != wj {
			return wi < wj
		}
		return matches[i].RegisteredAt.After(matches[j].RegisteredAt)
	})

	winner := matches[0]

	return &ResolvedFee{
		RuleID:              winner.ID,
		FeePercent:          winner.FeePercent,
		SettlementDelayDays: winner.SettlementDelayDays,
	}, nil
}
