package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowdash/flowdash/internal/domain"
	"github.com/flowdash/flowdash/internal/infrastructure/metrics"
)

// AccountUseCase handles account registration and lookups. Balance writes
// never go through here; only the ledger and closing usecases move money.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	balanceLog  BalanceAuditRepository
	outboxRepo  OutboxRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase. m may be nil to disable
// metrics.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	balanceLog BalanceAuditRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		balanceLog:  balanceLog,
		outboxRepo:  outboxRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
		metrics:     m,
	}
}

// CreateAccountInput represents input for registering an account.
type CreateAccountInput struct {
	Name           string
	Kind           domain.AccountKind
	OpeningBalance decimal.Decimal
	// OverdraftFloor applies to bank accounts only.
	OverdraftFloor *decimal.Decimal
}

// CreateAccount registers a cash drawer or bank account. The opening balance
// seeds both the running balance and the first closing chain anchor.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	user, err := authorize(ctx, domain.OpManageAccounts)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}

	if !input.Kind.IsValid() {
		return nil, domain.ErrInvalidAccountKind
	}

	if input.Kind.IsCash() && input.OpeningBalance.IsNegative() {
		return nil, domain.ErrInsufficientFunds
	}

	floor := input.OverdraftFloor
	if input.Kind.IsCash() {
		floor = nil
	}

	now := time.Now().UTC()

	account := &domain.Account{
		ID:             uc.idGen.Generate(),
		Name:           input.Name,
		Kind:           input.Kind,
		Balance:        input.OpeningBalance,
		OpeningBalance: input.OpeningBalance,
		OverdraftFloor: floor,
		Version:        0,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.accountRepo.CreateTx(ctx, tx, account); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   account.ID,
		AggregateType: domain.AggregateTypeAccount,
		EventType:     domain.EventTypeAccountCreated,
		Payload: domain.MarshalState(domain.AccountCreatedEvent{
			AccountID: account.ID,
			Name:      account.Name,
			Kind:      string(account.Kind),
		}),
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	log := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		UserID:       user.ID,
		Action:       string(domain.AuditActionAccountCreate),
		ResourceType: domain.AggregateTypeAccount,
		ResourceID:   account.ID,
		AfterState:   domain.MarshalState(account),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    now,
	}
	if err := uc.auditRepo.CreateTx(ctx, tx, log); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	limit, offset, _ = domain.ValidatePagination(limit, offset)

	return uc.accountRepo.List(ctx, limit, offset)
}

// DeactivateAccount retires an account. Accounts are never deleted; history
// stays queryable and the ledger rejects further postings.
func (uc *AccountUseCase) DeactivateAccount(ctx context.Context, id string) error {
	user, err := authorize(ctx, domain.OpManageAccounts)
	if err != nil {
		return err
	}

	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	if err := uc.accountRepo.SetActive(ctx, id, false, now); err != nil {
		return err
	}

	log := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		UserID:       user.ID,
		Action:       string(domain.AuditActionAccountDeactivate),
		ResourceType: domain.AggregateTypeAccount,
		ResourceID:   id,
		BeforeState:  domain.MarshalState(account),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    now,
	}

	return uc.auditRepo.Create(ctx, log)
}

// ListBalanceHistory lists the audited balance deltas for an account,
// newest first.
func (uc *AccountUseCase) ListBalanceHistory(ctx context.Context, accountID string, limit, offset int) ([]*domain.BalanceAudit, error) {
	limit, offset, _ = domain.ValidatePagination(limit, offset)

	return uc.balanceLog.ListByAccount(ctx, accountID, limit, offset)
}
