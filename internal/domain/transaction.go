package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes money entering, leaving or moving between accounts.
type TransactionType string

const (
	TypeEntry    TransactionType = "entry"
	TypeExit     TransactionType = "exit"
	TypeTransfer TransactionType = "transfer"
)

// TransactionStatus is the posting lifecycle. Confirmed transactions are
// immutable; the only way back is a compensating reversal.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusConfirmed TransactionStatus = "confirmed"
	StatusReversed  TransactionStatus = "reversed"
)

// PaymentMethod mirrors the payment forms accepted at the counter.
type PaymentMethod string

const (
	MethodCash        PaymentMethod = "cash"
	MethodPix         PaymentMethod = "pix"
	MethodDebit       PaymentMethod = "debit"
	MethodCredit      PaymentMethod = "credit"
	MethodPaymentLink PaymentMethod = "payment_link"
)

// IsValid checks if the method is a known payment method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodCash, MethodPix, MethodDebit, MethodCredit, MethodPaymentLink:
		return true
	}
	return false
}

// RequiresFeeRule reports whether postings with this method must resolve a fee rule.
// Cash never carries a fee; every other method settles through a PSP and must
// have a registered rule, even if the registered percentage is zero.
func (m PaymentMethod) RequiresFeeRule() bool {
	return m != MethodCash
}

// RequiresCardBrand reports whether the method needs a card brand for fee resolution.
func (m PaymentMethod) RequiresCardBrand() bool {
	return m == MethodDebit || m == MethodCredit || m == MethodPaymentLink
}

// Transaction is one append-only ledger record. Amount is always gross and
// positive; NetAmount is what actually moved after the fee. The pair is kept
// so gross revenue reporting survives fee deduction.
type Transaction struct {
	ID                   string
	Type                 TransactionType
	BusinessDate         time.Time
	CreatedAt            time.Time
	Amount               decimal.Decimal
	FeePercent           decimal.Decimal
	NetAmount            decimal.Decimal
	SourceAccountID      *string
	DestinationAccountID *string
	Method               PaymentMethod
	CardBrand            *string
	Installments         *int
	UserID               string
	Status               TransactionStatus
	// ReversalOf points at the transaction this one compensates.
	ReversalOf *string
}

// NetFromGross applies a percentage fee to a gross amount, rounding to cents.
func NetFromGross(amount, feePercent decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	hundred := decimal.NewFromInt(100)

	return amount.Mul(one.Sub(feePercent.Div(hundred))).Round(2)
}

// Validate validates a transaction before posting.
func (t *Transaction) Validate() error {
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if !t.Method.IsValid() {
		return ErrInvalidPaymentMethod
	}

	switch t.Type {
	case TypeEntry:
		if t.DestinationAccountID == nil {
			return ErrUnknownAccount
		}
	case TypeExit:
		if t.SourceAccountID == nil {
			return ErrUnknownAccount
		}
	case TypeTransfer:
		if t.SourceAccountID == nil || t.DestinationAccountID == nil {
			return ErrUnknownAccount
		}
		if *t.SourceAccountID == *t.DestinationAccountID {
			return ErrSameAccount
		}
	}

	return nil
}
