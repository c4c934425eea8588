package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowdash/flowdash/internal/domain"
	"github.com/flowdash/flowdash/internal/infrastructure/metrics"
)

// LedgerUseCase posts and reverses ledger transactions. Every posting writes
// the transaction row, the balance delta and the audit rows atomically, and
// is rejected when the target business date is already closed for any
// affected account.
type LedgerUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	txnRepo     TransactionRepository
	closingRepo ClosingRepository
	outboxRepo  OutboxRepository
	auditRepo   AuditRepository
	balances    *BalanceStore
	fees        FeeResolver
	idGen       IDGenerator
	retrier     Retrier
	feeOnExits  bool
	metrics     *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase. retrier may be nil to run
// every posting exactly once; m may be nil to disable metrics.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	txnRepo TransactionRepository,
	closingRepo ClosingRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	balances *BalanceStore,
	fees FeeResolver,
	idGen IDGenerator,
	retrier Retrier,
	feeOnExits bool,
	m *metrics.Metrics,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		closingRepo: closingRepo,
		outboxRepo:  outboxRepo,
		auditRepo:   auditRepo,
		balances:    balances,
		fees:        fees,
		idGen:       idGen,
		retrier:     retrier,
		feeOnExits:  feeOnExits,
		metrics:     m,
	}
}

// PostEntryInput represents input for posting money in (a sale, a deposit).
type PostEntryInput struct {
	DestinationAccountID string
	Amount               decimal.Decimal
	Method               domain.PaymentMethod
	CardBrand            string
	Installments         int
	// BusinessDate zero means today.
	BusinessDate time.Time
}

// PostEntry posts an entry. Non-cash methods resolve a fee rule; the
// destination is credited the net amount while the gross is retained on the
// transaction for revenue reporting.
func (uc *LedgerUseCase) PostEntry(ctx context.Context, input PostEntryInput) (*domain.Transaction, error) {
	start := time.Now()

	user, err := authorize(ctx, domain.OpPostTransaction)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	businessDate, err := resolveBusinessDate(input.BusinessDate)
	if err != nil {
		return nil, err
	}

	fee, err := uc.fees.Resolve(ctx, input.Method, input.CardBrand, input.Installments)
	if err != nil {
		return nil, err
	}

	txn := &domain.Transaction{
		ID:                   uc.idGen.Generate(),
		Type:                 domain.TypeEntry,
		BusinessDate:         businessDate,
		Amount:               input.Amount,
		FeePercent:           fee.FeePercent,
		NetAmount:            domain.NetFromGross(input.Amount, fee.FeePercent),
		DestinationAccountID: &input.DestinationAccountID,
		Method:               input.Method,
		CardBrand:            optionalString(input.CardBrand),
		Installments:         optionalInstallments(input.Method, input.Installments),
		UserID:               user.ID,
		Status:               domain.StatusConfirmed,
	}

	if err := txn.Validate(); err != nil {
		return nil, err
	}

	err = uc.withRetry(ctx, func(ctx context.Context) error {
		return uc.post(ctx, user, txn, []balanceDelta{
			{accountID: input.DestinationAccountID, delta: txn.NetAmount, reason: domain.ReasonEntry},
		}, domain.AuditActionEntryPost)
	})
	if err != nil {
		return nil, err
	}

	uc.recordPosted(txn, start)

	return txn, nil
}

// PostExitInput represents input for posting money out (an expense, a payout).
type PostExitInput struct {
	SourceAccountID string
	Amount          decimal.Decimal
	Method          domain.PaymentMethod
	CardBrand       string
	Installments    int
	BusinessDate    time.Time
}

// PostExit posts an exit. The source is always debited the gross amount;
// when fee-on-exits is enabled the applicable fee is resolved and recorded
// on the transaction for cost reporting.
func (uc *LedgerUseCase) PostExit(ctx context.Context, input PostExitInput) (*domain.Transaction, error) {
	start := time.Now()

	user, err := authorize(ctx, domain.OpPostTransaction)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	businessDate, err := resolveBusinessDate(input.BusinessDate)
	if err != nil {
		return nil, err
	}

	feePercent := decimal.Zero
	if uc.feeOnExits && input.Method.RequiresFeeRule() {
		fee, err := uc.fees.Resolve(ctx, input.Method, input.CardBrand, input.Installments)
		if err != nil {
			return nil, err
		}
		feePercent = fee.FeePercent
	}

	txn := &domain.Transaction{
		ID:              uc.idGen.Generate(),
		Type:            domain.TypeExit,
		BusinessDate:    businessDate,
		Amount:          input.Amount,
		FeePercent:      feePercent,
		NetAmount:       domain.NetFromGross(input.Amount, feePercent),
		SourceAccountID: &input.SourceAccountID,
		Method:          input.Method,
		CardBrand:       optionalString(input.CardBrand),
		Installments:    optionalInstallments(input.Method, input.Installments),
		UserID:          user.ID,
		Status:          domain.StatusConfirmed,
	}

	if err := txn.Validate(); err != nil {
		return nil, err
	}

	err = uc.withRetry(ctx, func(ctx context.Context) error {
		return uc.post(ctx, user, txn, []balanceDelta{
			{accountID: input.SourceAccountID, delta: txn.Amount.Neg(), reason: domain.ReasonExit},
		}, domain.AuditActionExitPost)
	})
	if err != nil {
		return nil, err
	}

	uc.recordPosted(txn, start)

	return txn, nil
}

// PostTransferInput represents input for moving money between accounts.
type PostTransferInput struct {
	SourceAccountID      string
	DestinationAccountID string
	Amount               decimal.Decimal
	BusinessDate         time.Time
}

// PostTransfer moves money between two accounts with no fee. The system-wide
// delta of a transfer is zero.
func (uc *LedgerUseCase) PostTransfer(ctx context.Context, input PostTransferInput) (*domain.Transaction, error) {
	start := time.Now()

	user, err := authorize(ctx, domain.OpPostTransaction)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	businessDate, err := resolveBusinessDate(input.BusinessDate)
	if err != nil {
		return nil, err
	}

	txn := &domain.Transaction{
		ID:                   uc.idGen.Generate(),
		Type:                 domain.TypeTransfer,
		BusinessDate:         businessDate,
		Amount:               input.Amount,
		FeePercent:           decimal.Zero,
		NetAmount:            input.Amount,
		SourceAccountID:      &input.SourceAccountID,
		DestinationAccountID: &input.DestinationAccountID,
		Method:               domain.MethodCash,
		UserID:               user.ID,
		Status:               domain.StatusConfirmed,
	}

	if err := txn.Validate(); err != nil {
		return nil, err
	}

	err = uc.withRetry(ctx, func(ctx context.Context) error {
		return uc.post(ctx, user, txn, []balanceDelta{
			{accountID: input.SourceAccountID, delta: input.Amount.Neg(), reason: domain.ReasonTransferOut},
			{accountID: input.DestinationAccountID, delta: input.Amount, reason: domain.ReasonTransferIn},
		}, domain.AuditActionTransferPost)
	})
	if err != nil {
		return nil, err
	}

	uc.recordPosted(txn, start)

	return txn, nil
}

// ReverseTransaction posts a compensating transaction for a confirmed
// posting and marks the original reversed. The compensation lands on today's
// business date; the original day stays closed if it already was.
func (uc *LedgerUseCase) ReverseTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	start := time.Now()

	user, err := authorize(ctx, domain.OpReverseTransaction)
	if err != nil {
		return nil, err
	}

	var reversal *domain.Transaction

	err = uc.withRetry(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		original, err := uc.txnRepo.GetByIDForUpdate(ctx, tx, transactionID)
		if err != nil {
			return err
		}

		switch original.Status {
		case domain.StatusReversed:
			return domain.ErrAlreadyReversed
		case domain.StatusConfirmed:
		default:
			return domain.ErrNotReversible
		}

		now := time.Now().UTC()
		businessDate := domain.BusinessDate(now)

		reversal = compensationFor(original, uc.idGen.Generate(), user.ID, businessDate, now)

		deltas := reversalDeltas(original)
		if err := uc.applyDeltas(ctx, tx, reversal, deltas, now); err != nil {
			return err
		}

		reversal.CreatedAt = now
		if err := uc.txnRepo.Create(ctx, tx, reversal); err != nil {
			return err
		}

		if err := uc.txnRepo.UpdateStatus(ctx, tx, original.ID, domain.StatusReversed); err != nil {
			return err
		}

		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   reversal.ID,
			AggregateType: domain.AggregateTypeTransaction,
			EventType:     domain.EventTypeTransactionReversed,
			Payload: domain.MarshalState(domain.TransactionReversedEvent{
				ReversalTransactionID: reversal.ID,
				OriginalTransactionID: original.ID,
				Amount:                original.Amount.String(),
			}),
			CreatedAt: now,
		}
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return err
		}

		if err := uc.writeAuditLog(ctx, tx, user, domain.AuditActionTransactionRevert, reversal, now); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	uc.recordPosted(reversal, start)
	if uc.metrics != nil {
		uc.metrics.TransactionsReversed.Inc()
	}

	return reversal, nil
}

// GetTransaction retrieves a transaction by ID.
func (uc *LedgerUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.txnRepo.GetByID(ctx, id)
}

// ListTransactionsByAccount lists postings touching an account.
func (uc *LedgerUseCase) ListTransactionsByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	limit, offset, _ = domain.ValidatePagination(limit, offset)

	return uc.txnRepo.ListByAccount(ctx, accountID, limit, offset)
}

// ListTransactionsByBusinessDate lists postings for one business date.
func (uc *LedgerUseCase) ListTransactionsByBusinessDate(ctx context.Context, date time.Time, limit, offset int) ([]*domain.Transaction, error) {
	if err := domain.ValidateBusinessDate(date); err != nil {
		return nil, err
	}

	limit, offset, _ = domain.ValidatePagination(limit, offset)

	return uc.txnRepo.ListByBusinessDate(ctx, date, limit, offset)
}

// balanceDelta is one signed movement a posting applies to an account.
type balanceDelta struct {
	accountID string
	delta     decimal.Decimal
	reason    string
}

// post runs the transactional part of a posting: lock accounts, guard closed
// days, apply deltas, write the transaction row, the outbox event and the
// audit log, then commit.
func (uc *LedgerUseCase) post(
	ctx context.Context,
	user *domain.User,
	txn *domain.Transaction,
	deltas []balanceDelta,
	action domain.AuditAction,
) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()

	if err := uc.applyDeltas(ctx, tx, txn, deltas, now); err != nil {
		return err
	}

	txn.CreatedAt = now
	if err := uc.txnRepo.Create(ctx, tx, txn); err != nil {
		return err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   txn.ID,
		AggregateType: domain.AggregateTypeTransaction,
		EventType:     domain.EventTypeTransactionPosted,
		Payload: domain.MarshalState(domain.TransactionPostedEvent{
			TransactionID: txn.ID,
			Type:          string(txn.Type),
			Amount:        txn.Amount.String(),
			NetAmount:     txn.NetAmount.String(),
			Method:        string(txn.Method),
			BusinessDate:  txn.BusinessDate.Format(time.DateOnly),
		}),
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return err
	}

	if err := uc.writeAuditLog(ctx, tx, user, action, txn, now); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// applyDeltas locks the affected accounts in sorted-ID order (deadlock
// prevention), rejects postings on closed business dates and applies each
// delta through the balance store.
func (uc *LedgerUseCase) applyDeltas(
	ctx context.Context,
	tx Transaction,
	txn *domain.Transaction,
	deltas []balanceDelta,
	now time.Time,
) error {
	ids := make([]string, 0, len(deltas))
	seen := make(map[string]bool, len(deltas))
	for _, d := range deltas {
		if !seen[d.accountID] {
			seen[d.accountID] = true
			ids = append(ids, d.accountID)
		}
	}
	sort.Strings(ids)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return err
	}

	if len(accounts) != len(ids) {
		return domain.ErrAccountNotFound
	}

	accountMap := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		accountMap[a.ID] = a
	}

	for _, id := range ids {
		if err := uc.ensureDayOpen(ctx, tx, id, txn.BusinessDate); err != nil {
			return err
		}
	}

	for _, d := range deltas {
		account := accountMap[d.accountID]
		if account == nil {
			return domain.ErrAccountNotFound
		}

		if err := uc.balances.Apply(ctx, tx, account, d.delta, d.reason, txn.ID, now); err != nil {
			return err
		}
	}

	return nil
}

// ensureDayOpen rejects a posting whose business date is at or before the
// account's most recent closing record. A pending-review record blocks too:
// its cutoff is taken and later movement belongs to the next date.
func (uc *LedgerUseCase) ensureDayOpen(ctx context.Context, tx Transaction, accountID string, businessDate time.Time) error {
	latest, err := uc.closingRepo.GetLatest(ctx, tx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrClosingNotFound) {
			return nil
		}
		return err
	}

	if !businessDate.After(latest.BusinessDate) {
		return domain.ErrDayClosed
	}

	return nil
}

func (uc *LedgerUseCase) writeAuditLog(
	ctx context.Context,
	tx Transaction,
	user *domain.User,
	action domain.AuditAction,
	txn *domain.Transaction,
	now time.Time,
) error {
	log := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		UserID:       user.ID,
		Action:       string(action),
		ResourceType: domain.AggregateTypeTransaction,
		ResourceID:   txn.ID,
		AfterState:   domain.MarshalState(txn),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    now,
	}

	return uc.auditRepo.CreateTx(ctx, tx, log)
}

// recordPosted observes one committed posting.
func (uc *LedgerUseCase) recordPosted(txn *domain.Transaction, start time.Time) {
	if uc.metrics == nil {
		return
	}

	uc.metrics.TransactionsPosted.WithLabelValues(string(txn.Type), string(txn.Method)).Inc()
	uc.metrics.TransactionAmount.Observe(txn.Amount.InexactFloat64())
	uc.metrics.TransactionDuration.Observe(time.Since(start).Seconds())
}

func (uc *LedgerUseCase) withRetry(ctx context.Context, op func(ctx context.Context) error) error {
	if uc.retrier == nil {
		return op(ctx)
	}

	return uc.retrier.Do(ctx, op)
}

// compensationFor builds the inverse transaction for an original posting.
// Entries come back as exits, exits as entries, transfers as transfers with
// the endpoints swapped. Gross, fee and net carry over unchanged.
func compensationFor(original *domain.Transaction, id, userID string, businessDate, now time.Time) *domain.Transaction {
	reversal := &domain.Transaction{
		ID:           id,
		BusinessDate: businessDate,
		CreatedAt:    now,
		Amount:       original.Amount,
		FeePercent:   original.FeePercent,
		NetAmount:    original.NetAmount,
		Method:       original.Method,
		CardBrand:    original.CardBrand,
		Installments: original.Installments,
		UserID:       userID,
		Status:       domain.StatusConfirmed,
		ReversalOf:   &original.ID,
	}

	switch original.Type {
	case domain.TypeEntry:
		reversal.Type = domain.TypeExit
		reversal.SourceAccountID = original.DestinationAccountID
	case domain.TypeExit:
		reversal.Type = domain.TypeEntry
		reversal.DestinationAccountID = original.SourceAccountID
	case domain.TypeTransfer:
		reversal.Type = domain.TypeTransfer
		reversal.SourceAccountID = original.DestinationAccountID
		reversal.DestinationAccountID = original.SourceAccountID
	}

	return reversal
}

// reversalDeltas inverts exactly the balance movements the original applied.
func reversalDeltas(original *domain.Transaction) []balanceDelta {
	switch original.Type {
	case domain.TypeEntry:
		return []balanceDelta{
			{accountID: *original.DestinationAccountID, delta: original.NetAmount.Neg(), reason: domain.ReasonReversal},
		}
	case domain.TypeExit:
		return []balanceDelta{
			{accountID: *original.SourceAccountID, delta: original.Amount, reason: domain.ReasonReversal},
		}
	default:
		return []balanceDelta{
			{accountID: *original.DestinationAccountID, delta: original.NetAmount.Neg(), reason: domain.ReasonReversal},
			{accountID: *original.SourceAccountID, delta: original.NetAmount, reason: domain.ReasonReversal},
		}
	}
}

// resolveBusinessDate defaults a zero date to today and normalizes input to
// midnight UTC.
func resolveBusinessDate(date time.Time) (time.Time, error) {
	if date.IsZero() {
		return domain.BusinessDate(time.Now().UTC()), nil
	}

	if err := domain.ValidateBusinessDate(date); err != nil {
		return time.Time{}, err
	}

	return date, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

func optionalInstallments(method domain.PaymentMethod, installments int) *int {
	if !method.RequiresCardBrand() {
		return nil
	}

	if installments == 0 {
		installments = 1
	}

	return &installments
}
