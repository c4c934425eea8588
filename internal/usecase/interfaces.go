package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowdash/flowdash/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	CreateTx(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// TransactionRepository defines data access for ledger transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Transaction, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.TransactionStatus) error
	// SumConfirmedEntriesByUser totals gross amounts of confirmed entry
	// transactions posted by a user over [from, to). Reversed sales drop out.
	SumConfirmedEntriesByUser(ctx context.Context, userID string, from, to time.Time) (decimal.Decimal, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error)
	ListByBusinessDate(ctx context.Context, date time.Time, limit, offset int) ([]*domain.Transaction, error)
}

// BalanceAuditRepository defines data access for the append-only balance audit log.
type BalanceAuditRepository interface {
	Create(ctx context.Context, tx Transaction, audit *domain.BalanceAudit) error
	// SumLedgerDeltas totals deltas applied to an account in (after, until],
	// excluding closing-correction rows. Corrections are already absorbed
	// into the declared balance anchoring the next closing.
	SumLedgerDeltas(ctx context.Context, tx Transaction, accountID string, after, until time.Time) (decimal.Decimal, error)
	// SumAllDeltas totals every delta ever applied to an account,
	// corrections included. Used by consistency verification.
	SumAllDeltas(ctx context.Context, accountID string) (decimal.Decimal, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.BalanceAudit, error)
}

// FeeRuleRepository defines data access for fee rules.
type FeeRuleRepository interface {
	Create(ctx context.Context, rule *domain.FeeRule) error
	GetByID(ctx context.Context, id string) (*domain.FeeRule, error)
	ListByMethodBrand(ctx context.Context, method domain.PaymentMethod, cardBrand string) ([]*domain.FeeRule, error)
	List(ctx context.Context, limit, offset int) ([]*domain.FeeRule, error)
	Delete(ctx context.Context, id string) error
}

// GoalRepository defines data access for seller goals.
type GoalRepository interface {
	Upsert(ctx context.Context, goal *domain.Goal) error
	GetBySellerAndPeriod(ctx context.Context, sellerID string, period domain.GoalPeriod) (*domain.Goal, error)
}

// ClosingRepository defines data access for daily closing records.
type ClosingRepository interface {
	Create(ctx context.Context, tx Transaction, rec *domain.ClosingRecord) error
	GetByID(ctx context.Context, id string) (*domain.ClosingRecord, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.ClosingRecord, error)
	GetByAccountAndDate(ctx context.Context, accountID string, date time.Time) (*domain.ClosingRecord, error)
	// GetLatest returns the most recent closing record for the account by
	// business date, regardless of status.
	GetLatest(ctx context.Context, tx Transaction, accountID string) (*domain.ClosingRecord, error)
	Finalize(ctx context.Context, tx Transaction, id string, approvedBy string, correction decimal.Decimal, justification string, finalizedAt time.Time) error
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.ClosingRecord, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
	GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// FeeResolver resolves the fee applicable to one posting.
type FeeResolver interface {
	Resolve(ctx context.Context, method domain.PaymentMethod, cardBrand string, installments int) (*domain.ResolvedFee, error)
}

// Retrier retries an operation on transient storage conflicts.
type Retrier interface {
	Do(ctx context.Context, op func(ctx context.Context) error) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
