package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClosingStatus is the per-(business date, account) reconciliation state.
// OPEN means no record exists yet and the ledger may still post.
type ClosingStatus string

const (
	ClosingOpen          ClosingStatus = "open"
	ClosingPendingReview ClosingStatus = "pending_review"
	ClosingFinalized     ClosingStatus = "finalized"
)

// ClosingRecord is the immutable daily snapshot for one account. Once
// finalized it is the durability boundary: historical balances can only be
// adjusted by new forward-dated transactions, never by editing the record.
type ClosingRecord struct {
	ID              string
	AccountID       string
	BusinessDate    time.Time
	ExpectedBalance decimal.Decimal
	DeclaredBalance decimal.Decimal
	// Discrepancy is declared minus expected.
	Discrepancy      decimal.Decimal
	CorrectionAmount decimal.Decimal
	Justification    string
	ClosedBy         string
	ApprovedBy       string
	Status           ClosingStatus
	// Cutoff is the snapshot instant: confirmed transactions created after it
	// belong to the next business date even if dated today.
	Cutoff      time.Time
	CreatedAt   time.Time
	FinalizedAt *time.Time
}

// WithinTolerance reports whether the discrepancy is acceptable without a
// manual correction.
func (c *ClosingRecord) WithinTolerance(tolerance decimal.Decimal) bool {
	return c.Discrepancy.Abs().LessThanOrEqual(tolerance)
}

// CanFinalize reports whether the record may transition to FINALIZED.
func (c *ClosingRecord) CanFinalize() error {
	switch c.Status {
	case ClosingFinalized:
		return ErrClosingFinalized
	case ClosingPendingReview, ClosingOpen:
		return nil
	}
	return ErrClosingNotPending
}

// PreviousBusinessDate returns the calendar day before the record's date.
// Closing order is monotonic per account over calendar days.
func PreviousBusinessDate(date time.Time) time.Time {
	return date.AddDate(0, 0, -1)
}
