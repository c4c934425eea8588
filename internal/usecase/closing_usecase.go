package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowdash/flowdash/internal/domain"
	"github.com/flowdash/flowdash/internal/infrastructure/metrics"
)

// ClosingUseCase runs the daily closing state machine. Closings are strictly
// ordered per account: a day can only be closed after every earlier closing
// for that account is finalized, and a finalized record never changes.
type ClosingUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	txnRepo     TransactionRepository
	closingRepo ClosingRepository
	auditLog    AuditRepository
	balanceLog  BalanceAuditRepository
	outboxRepo  OutboxRepository
	balances    *BalanceStore
	idGen       IDGenerator
	retrier     Retrier
	tolerance   decimal.Decimal
	metrics     *metrics.Metrics
}

// NewClosingUseCase creates a new ClosingUseCase. tolerance is the absolute
// discrepancy accepted without a correction; zero means exact match required.
// m may be nil to disable metrics.
func NewClosingUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	txnRepo TransactionRepository,
	closingRepo ClosingRepository,
	auditLog AuditRepository,
	balanceLog BalanceAuditRepository,
	outboxRepo OutboxRepository,
	balances *BalanceStore,
	idGen IDGenerator,
	retrier Retrier,
	tolerance decimal.Decimal,
	m *metrics.Metrics,
) *ClosingUseCase {
	return &ClosingUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		closingRepo: closingRepo,
		auditLog:    auditLog,
		balanceLog:  balanceLog,
		outboxRepo:  outboxRepo,
		balances:    balances,
		idGen:       idGen,
		retrier:     retrier,
		tolerance:   tolerance,
		metrics:     m,
	}
}

// CloseBusinessDayInput represents input for closing one account's day.
type CloseBusinessDayInput struct {
	AccountID string
	// BusinessDate zero means today.
	BusinessDate    time.Time
	DeclaredBalance decimal.Decimal
}

// CloseBusinessDay snapshots an account for a business date. The expected
// balance chains from the previous finalized declaration plus the ledger
// movement since its cutoff; the first closing ever chains from the
// account's opening balance.
//
// Within tolerance the record finalizes immediately. Outside it the record
// is persisted in PENDING_REVIEW and ErrToleranceExceeded is returned
// together with the record so the operator can request a correction.
func (uc *ClosingUseCase) CloseBusinessDay(ctx context.Context, input CloseBusinessDayInput) (*domain.ClosingRecord, error) {
	user, err := authorize(ctx, domain.OpCloseDay)
	if err != nil {
		return nil, err
	}

	businessDate, err := resolveBusinessDate(input.BusinessDate)
	if err != nil {
		return nil, err
	}

	if businessDate.After(domain.BusinessDate(time.Now().UTC())) {
		return nil, domain.ErrInvalidBusinessDate
	}

	var (
		rec           *domain.ClosingRecord
		pendingReview bool
	)

	err = uc.withRetry(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		// Locking the account serializes the cutoff against in-flight postings.
		account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.AccountID)
		if err != nil {
			return err
		}

		prevDeclared := account.OpeningBalance
		var prevCutoff time.Time

		latest, err := uc.closingRepo.GetLatest(ctx, tx, input.AccountID)
		switch {
		case errors.Is(err, domain.ErrClosingNotFound):
			// First closing ever for this account.
		case err != nil:
			return err
		default:
			if businessDate.Equal(latest.BusinessDate) {
				return domain.ErrAlreadyClosed
			}
			if businessDate.Before(latest.BusinessDate) {
				return domain.ErrOutOfOrderClosing
			}
			if latest.Status != domain.ClosingFinalized {
				return domain.ErrOutOfOrderClosing
			}
			prevDeclared = latest.DeclaredBalance
			prevCutoff = latest.Cutoff
		}

		now := time.Now().UTC()

		moved, err := uc.balanceLog.SumLedgerDeltas(ctx, tx, input.AccountID, prevCutoff, now)
		if err != nil {
			return err
		}

		expected := prevDeclared.Add(moved)
		discrepancy := input.DeclaredBalance.Sub(expected)

		rec = &domain.ClosingRecord{
			ID:              uc.idGen.Generate(),
			AccountID:       input.AccountID,
			BusinessDate:    businessDate,
			ExpectedBalance: expected,
			DeclaredBalance: input.DeclaredBalance,
			Discrepancy:     discrepancy,
			ClosedBy:        user.ID,
			Cutoff:          now,
			CreatedAt:       now,
		}

		if rec.WithinTolerance(uc.tolerance) {
			rec.Status = domain.ClosingFinalized
			rec.FinalizedAt = &now
			pendingReview = false
		} else {
			rec.Status = domain.ClosingPendingReview
			pendingReview = true
		}

		if err := uc.closingRepo.Create(ctx, tx, rec); err != nil {
			return err
		}

		if rec.Status == domain.ClosingFinalized {
			if err := uc.publishFinalized(ctx, tx, rec, now); err != nil {
				return err
			}
		}

		if err := uc.writeAuditLog(ctx, tx, user, domain.AuditActionDayClose, rec, now); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ClosingsCreated.WithLabelValues(string(rec.Status)).Inc()
		uc.metrics.ClosingDiscrepancy.Observe(rec.Discrepancy.Abs().InexactFloat64())
	}

	if pendingReview {
		return rec, domain.ErrToleranceExceeded
	}

	return rec, nil
}

// ApproveCorrectionInput represents input for approving a closing correction.
type ApproveCorrectionInput struct {
	ClosingID        string
	CorrectionAmount decimal.Decimal
	Justification    string
}

// ApproveCorrection resolves a PENDING_REVIEW closing. The correction must
// equal the recorded discrepancy exactly and is posted through the ledger as
// an audited cash movement, then the record finalizes. Vendedor cannot reach
// this operation.
func (uc *ClosingUseCase) ApproveCorrection(ctx context.Context, input ApproveCorrectionInput) (*domain.ClosingRecord, error) {
	user, err := authorize(ctx, domain.OpApproveCorrection)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Justification) == "" {
		return nil, domain.ErrJustificationEmpty
	}

	var rec *domain.ClosingRecord

	err = uc.withRetry(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		rec, err = uc.closingRepo.GetByIDForUpdate(ctx, tx, input.ClosingID)
		if err != nil {
			return err
		}

		switch rec.Status {
		case domain.ClosingFinalized:
			return domain.ErrClosingFinalized
		case domain.ClosingPendingReview:
		default:
			return domain.ErrClosingNotPending
		}

		if !input.CorrectionAmount.Equal(rec.Discrepancy) {
			return domain.ErrCorrectionMismatch
		}

		account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, rec.AccountID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()

		correction := uc.correctionTransaction(rec, input.CorrectionAmount, user.ID, now)
		if err := uc.balances.Apply(ctx, tx, account, input.CorrectionAmount, domain.ReasonClosingCorrection, correction.ID, now); err != nil {
			return err
		}

		if err := uc.txnRepo.Create(ctx, tx, correction); err != nil {
			return err
		}

		if err := uc.closingRepo.Finalize(ctx, tx, rec.ID, user.ID, input.CorrectionAmount, input.Justification, now); err != nil {
			return err
		}

		rec.Status = domain.ClosingFinalized
		rec.ApprovedBy = user.ID
		rec.CorrectionAmount = input.CorrectionAmount
		rec.Justification = input.Justification
		rec.FinalizedAt = &now

		if err := uc.publishFinalized(ctx, tx, rec, now); err != nil {
			return err
		}

		if err := uc.writeAuditLog(ctx, tx, user, domain.AuditActionCorrectionApprove, rec, now); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.CorrectionsApproved.Inc()
	}

	return rec, nil
}

// ClosingStatus is the reconciliation state of one (account, date) pair.
type ClosingStatus struct {
	AccountID    string
	BusinessDate time.Time
	Status       domain.ClosingStatus
	Record       *domain.ClosingRecord
}

// GetClosingStatus reports the state of an account's business date. A date
// with no record is OPEN.
func (uc *ClosingUseCase) GetClosingStatus(ctx context.Context, accountID string, date time.Time) (*ClosingStatus, error) {
	if err := domain.ValidateBusinessDate(date); err != nil {
		return nil, err
	}

	rec, err := uc.closingRepo.GetByAccountAndDate(ctx, accountID, date)
	if err != nil {
		if errors.Is(err, domain.ErrClosingNotFound) {
			return &ClosingStatus{
				AccountID:    accountID,
				BusinessDate: date,
				Status:       domain.ClosingOpen,
			}, nil
		}
		return nil, err
	}

	return &ClosingStatus{
		AccountID:    accountID,
		BusinessDate: date,
		Status:       rec.Status,
		Record:       rec,
	}, nil
}

// ListClosings lists an account's closing history, newest first.
func (uc *ClosingUseCase) ListClosings(ctx context.Context, accountID string, limit, offset int) ([]*domain.ClosingRecord, error) {
	limit, offset, _ = domain.ValidatePagination(limit, offset)

	return uc.closingRepo.ListByAccount(ctx, accountID, limit, offset)
}

// AccountVerification is the outcome of replaying an account's audit log
// against its recorded balance.
type AccountVerification struct {
	AccountID       string
	RecordedBalance decimal.Decimal
	ComputedBalance decimal.Decimal
	Difference      decimal.Decimal
	Consistent      bool
	CheckedAt       time.Time
}

// VerifyAccount recomputes an account's balance as opening balance plus
// every audited delta and compares it to the stored balance.
func (uc *ClosingUseCase) VerifyAccount(ctx context.Context, accountID string) (*AccountVerification, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	total, err := uc.balanceLog.SumAllDeltas(ctx, accountID)
	if err != nil {
		return nil, err
	}

	computed := account.OpeningBalance.Add(total)

	return &AccountVerification{
		AccountID:       accountID,
		RecordedBalance: account.Balance,
		ComputedBalance: computed,
		Difference:      account.Balance.Sub(computed),
		Consistent:      account.Balance.Equal(computed),
		CheckedAt:       time.Now().UTC(),
	}, nil
}

// VerifyAllAccounts verifies every account in the system.
func (uc *ClosingUseCase) VerifyAllAccounts(ctx context.Context) ([]*AccountVerification, error) {
	limit, offset, _ := domain.ValidatePagination(10000, 0)

	accounts, err := uc.accountRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	results := make([]*AccountVerification, 0, len(accounts))
	for _, account := range accounts {
		result, err := uc.VerifyAccount(ctx, account.ID)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	return results, nil
}

// correctionTransaction expresses a closing correction as a ledger row so it
// shows up in transaction history. Positive corrections enter, negative
// corrections exit; the movement is always cash.
func (uc *ClosingUseCase) correctionTransaction(rec *domain.ClosingRecord, amount decimal.Decimal, userID string, now time.Time) *domain.Transaction {
	txn := &domain.Transaction{
		ID:           uc.idGen.Generate(),
		BusinessDate: domain.BusinessDate(now),
		CreatedAt:    now,
		Amount:       amount.Abs(),
		FeePercent:   decimal.Zero,
		NetAmount:    amount.Abs(),
		Method:       domain.MethodCash,
		UserID:       userID,
		Status:       domain.StatusConfirmed,
	}

	if amount.IsNegative() {
		txn.Type = domain.TypeExit
		txn.SourceAccountID = &rec.AccountID
	} else {
		txn.Type = domain.TypeEntry
		txn.DestinationAccountID = &rec.AccountID
	}

	return txn
}

func (uc *ClosingUseCase) publishFinalized(ctx context.Context, tx Transaction, rec *domain.ClosingRecord, now time.Time) error {
	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   rec.ID,
		AggregateType: domain.AggregateTypeClosing,
		EventType:     domain.EventTypeClosingFinalized,
		Payload: domain.MarshalState(domain.ClosingFinalizedEvent{
			ClosingID:    rec.ID,
			AccountID:    rec.AccountID,
			BusinessDate: rec.BusinessDate.Format(time.DateOnly),
			Expected:     rec.ExpectedBalance.String(),
			Declared:     rec.DeclaredBalance.String(),
			Correction:   rec.CorrectionAmount.String(),
		}),
		CreatedAt: now,
	}

	return uc.outboxRepo.Create(ctx, tx, event)
}

func (uc *ClosingUseCase) writeAuditLog(
	ctx context.Context,
	tx Transaction,
	user *domain.User,
	action domain.AuditAction,
	rec *domain.ClosingRecord,
	now time.Time,
) error {
	log := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		UserID:       user.ID,
		Action:       string(action),
		ResourceType: domain.AggregateTypeClosing,
		ResourceID:   rec.ID,
		AfterState:   domain.MarshalState(rec),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    now,
	}

	return uc.auditLog.CreateTx(ctx, tx, log)
}

func (uc *ClosingUseCase) withRetry(ctx context.Context, op func(ctx context.Context) error) error {
	if uc.retrier == nil {
		return op(ctx)
	}

	return uc.retrier.Do(ctx, op)
}
