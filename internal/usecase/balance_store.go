package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowdash/flowdash/internal/domain"
)

// BalanceStore is the single write path for account balances. Every applied
// delta validates the account's floor, persists the new balance and appends
// a balance audit row in the same database transaction. Callers must hold
// the account's row lock.
type BalanceStore struct {
	accountRepo AccountRepository
	auditRepo   BalanceAuditRepository
	idGen       IDGenerator
}

// NewBalanceStore creates a new BalanceStore.
func NewBalanceStore(accountRepo AccountRepository, auditRepo BalanceAuditRepository, idGen IDGenerator) *BalanceStore {
	return &BalanceStore{
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
	}
}

// Apply validates and applies a signed delta to a locked account, updating
// the in-memory copy on success so subsequent deltas in the same database
// transaction see the running balance.
func (s *BalanceStore) Apply(
	ctx context.Context,
	tx Transaction,
	account *domain.Account,
	delta decimal.Decimal,
	reason string,
	transactionID string,
	now time.Time,
) error {
	if err := account.ValidateDelta(delta); err != nil {
		return err
	}

	newBalance := account.ApplyDelta(delta)

	if err := s.accountRepo.UpdateBalance(ctx, tx, account.ID, newBalance, now); err != nil {
		return err
	}

	audit := &domain.BalanceAudit{
		ID:               s.idGen.Generate(),
		AccountID:        account.ID,
		Delta:            delta,
		ResultingBalance: newBalance,
		Reason:           reason,
		TransactionID:    transactionID,
		CreatedAt:        now,
	}

	if err := s.auditRepo.Create(ctx, tx, audit); err != nil {
		return err
	}

	account.Balance = newBalance
	account.Version++
	account.UpdatedAt = now

	return nil
}
