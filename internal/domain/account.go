package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind classifies where money physically lives.
type AccountKind string

const (
	// KindCashPrimary is the store cash drawer ("Caixa").
	KindCashPrimary AccountKind = "cash_primary"

	// KindCashSecondary is the secondary cash pool ("Caixa 2").
	KindCashSecondary AccountKind = "cash_secondary"

	// KindBank is a registered bank account.
	KindBank AccountKind = "bank"
)

// IsValid checks if the kind is a known account kind.
func (k AccountKind) IsValid() bool {
	switch k {
	case KindCashPrimary, KindCashSecondary, KindBank:
		return true
	}
	return false
}

// IsCash reports whether the kind represents physical cash.
func (k AccountKind) IsCash() bool {
	return k == KindCashPrimary || k == KindCashSecondary
}

// Account holds a running balance for a cash drawer or bank account.
// Accounts are never deleted, only deactivated.
type Account struct {
	ID             string
	Name           string
	Kind           AccountKind
	Balance        decimal.Decimal
	OpeningBalance decimal.Decimal
	// OverdraftFloor is the lowest balance a bank account may reach.
	// Nil means overdraft is not configured and the balance may not go negative.
	// Cash accounts ignore it: their floor is always zero.
	OverdraftFloor *decimal.Decimal
	Version        int64
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ValidateDelta checks if applying delta would violate the account's floor.
func (a *Account) ValidateDelta(delta decimal.Decimal) error {
	if !a.Active {
		return ErrAccountInactive
	}

	newBalance := a.Balance.Add(delta)

	if a.Kind.IsCash() {
		if newBalance.IsNegative() {
			return ErrInsufficientFunds
		}
		return nil
	}

	// Bank account: negative allowed only down to the configured floor.
	if a.OverdraftFloor != nil {
		if newBalance.LessThan(*a.OverdraftFloor) {
			return ErrFloorViolated
		}
		return nil
	}

	if newBalance.IsNegative() {
		return ErrFloorViolated
	}

	return nil
}

// ApplyDelta returns the new balance after applying delta.
func (a *Account) ApplyDelta(delta decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(delta)
}
