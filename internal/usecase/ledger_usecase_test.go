package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/flowdash/flowdash/internal/domain"
	"github.com/flowdash/flowdash/internal/infrastructure/metrics"
	"github.com/flowdash/flowdash/internal/usecase"
	"github.com/flowdash/flowdash/internal/usecase/mocks"
)

type ledgerFixture struct {
	accounts   *mocks.MockAccountRepository
	txns       *mocks.MockTransactionRepository
	closings   *mocks.MockClosingRepository
	outbox     *mocks.MockOutboxRepository
	audit      *mocks.MockAuditRepository
	balanceLog *mocks.MockBalanceAuditRepository
	fees       *mocks.MockFeeResolver
	metrics    *metrics.Metrics
	ledger     *usecase.LedgerUseCase
}

// newLedgerFixture wires a ledger over stateful in-memory mocks. The fee
// resolver answers three percent for credit and zero for everything else.
func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{
		accounts:   mocks.NewMockAccountRepository(),
		txns:       mocks.NewMockTransactionRepository(),
		closings:   mocks.NewMockClosingRepository(),
		outbox:     mocks.NewMockOutboxRepository(),
		audit:      mocks.NewMockAuditRepository(),
		balanceLog: mocks.NewMockBalanceAuditRepository(),
		fees:       mocks.NewMockFeeResolver(),
		metrics:    metrics.NewWith(prometheus.NewRegistry()),
	}

	f.fees.ResolveFunc = func(ctx context.Context, method domain.PaymentMethod, cardBrand string, installments int) (*domain.ResolvedFee, error) {
		if method == domain.MethodCredit {
			return &domain.ResolvedFee{RuleID: "r-credit", FeePercent: decimal.NewFromInt(3)}, nil
		}
		return &domain.ResolvedFee{FeePercent: decimal.Zero}, nil
	}

	idGen := mocks.NewMockIDGenerator()
	balances := usecase.NewBalanceStore(f.accounts, f.balanceLog, idGen)

	f.ledger = usecase.NewLedgerUseCase(
		mocks.NewMockTransactionManager(),
		f.accounts,
		f.txns,
		f.closings,
		f.outbox,
		f.audit,
		balances,
		f.fees,
		idGen,
		mocks.NewMockRetrier(),
		false,
		f.metrics,
	)

	return f
}

func (f *ledgerFixture) addAccount(id string, kind domain.AccountKind, balance decimal.Decimal) *domain.Account {
	account := &domain.Account{
		ID:             id,
		Name:           id,
		Kind:           kind,
		Balance:        balance,
		OpeningBalance: balance,
		Active:         true,
	}
	f.accounts.Put(account)
	return account
}

func TestLedgerUseCase_PostEntry(t *testing.T) {
	f := newLedgerFixture()
	drawer := f.addAccount("caixa", domain.KindCashPrimary, decimal.Zero)

	txn, err := f.ledger.PostEntry(ctxAs(domain.RoleVendedor), usecase.PostEntryInput{
		DestinationAccountID: "caixa",
		Amount:               decimal.NewFromInt(1000),
		Method:               domain.MethodCash,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if txn.Status != domain.StatusConfirmed {
		t.Errorf("expected confirmed, got %s", txn.Status)
	}
	if !txn.NetAmount.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("cash entry net must equal gross, got %s", txn.NetAmount)
	}
	if !drawer.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected balance 1000, got %s", drawer.Balance)
	}

	if events := f.outbox.Events(); len(events) != 1 || events[0].EventType != domain.EventTypeTransactionPosted {
		t.Errorf("expected one transaction.posted event, got %v", events)
	}
	if logs := f.audit.Logs(); len(logs) != 1 || logs[0].Action != string(domain.AuditActionEntryPost) {
		t.Errorf("expected one entry audit log, got %v", logs)
	}
}

func TestLedgerUseCase_PostEntry_CardFee(t *testing.T) {
	f := newLedgerFixture()
	drawer := f.addAccount("caixa", domain.KindCashPrimary, decimal.NewFromInt(1000))

	txn, err := f.ledger.PostEntry(ctxAs(domain.RoleVendedor), usecase.PostEntryInput{
		DestinationAccountID: "caixa",
		Amount:               decimal.NewFromInt(200),
		Method:               domain.MethodCredit,
		CardBrand:            "visa",
		Installments:         1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !txn.Amount.Equal(decimal.NewFromInt(200)) {
		t.Errorf("gross must stay 200, got %s", txn.Amount)
	}
	if !txn.NetAmount.Equal(dec(t, "194.00")) {
		t.Errorf("expected net 194.00, got %s", txn.NetAmount)
	}
	if !drawer.Balance.Equal(decimal.NewFromInt(1194)) {
		t.Errorf("expected balance 1194, got %s", drawer.Balance)
	}
}

func TestLedgerUseCase_PostEntry_NoFeeRule(t *testing.T) {
	f := newLedgerFixture()
	f.addAccount("caixa", domain.KindCashPrimary, decimal.Zero)

	f.fees.ResolveFunc = func(ctx context.Context, method domain.PaymentMethod, cardBrand string, installments int) (*domain.ResolvedFee, error) {
		return nil, domain.ErrNoMatchingFeeRule
	}

	_, err := f.ledger.PostEntry(ctxAs(domain.RoleVendedor), usecase.PostEntryInput{
		DestinationAccountID: "caixa",
		Amount:               decimal.NewFromInt(100),
		Method:               domain.MethodCredit,
		CardBrand:            "elo",
	})
	if !errors.Is(err, domain.ErrNoMatchingFeeRule) {
		t.Fatalf("expected ErrNoMatchingFeeRule, got %v", err)
	}

	if len(f.outbox.Events()) != 0 {
		t.Error("blocked posting must not publish events")
	}
}

func TestLedgerUseCase_PostExit(t *testing.T) {
	f := newLedgerFixture()
	drawer := f.addAccount("caixa", domain.KindCashPrimary, decimal.NewFromInt(500))

	t.Run("debits gross", func(t *testing.T) {
		_, err := f.ledger.PostExit(ctxAs(domain.RoleGerente), usecase.PostExitInput{
			SourceAccountID: "caixa",
			Amount:          decimal.NewFromInt(200),
			Method:          domain.MethodCash,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !drawer.Balance.Equal(decimal.NewFromInt(300)) {
			t.Errorf("expected balance 300, got %s", drawer.Balance)
		}
	})

	t.Run("cash cannot go negative", func(t *testing.T) {
		_, err := f.ledger.PostExit(ctxAs(domain.RoleGerente), usecase.PostExitInput{
			SourceAccountID: "caixa",
			Amount:          decimal.NewFromInt(400),
			Method:          domain.MethodCash,
		})
		if !errors.Is(err, domain.ErrInsufficientFunds) {
			t.Fatalf("expected ErrInsufficientFunds, got %v", err)
		}
		if !drawer.Balance.Equal(decimal.NewFromInt(300)) {
			t.Errorf("rejected exit must not move balance, got %s", drawer.Balance)
		}
	})
}

func TestLedgerUseCase_PostExit_BankOverdraft(t *testing.T) {
	f := newLedgerFixture()
	floor := decimal.NewFromInt(-500)
	bank := f.addAccount("banco", domain.KindBank, decimal.NewFromInt(100))
	bank.OverdraftFloor = &floor

	_, err := f.ledger.PostExit(ctxAs(domain.RoleGerente), usecase.PostExitInput{
		SourceAccountID: "banco",
		Amount:          decimal.NewFromInt(400),
		Method:          domain.MethodPix,
	})
	if err != nil {
		t.Fatalf("overdraft within floor must pass: %v", err)
	}
	if !bank.Balance.Equal(decimal.NewFromInt(-300)) {
		t.Errorf("expected balance -300, got %s", bank.Balance)
	}

	_, err = f.ledger.PostExit(ctxAs(domain.RoleGerente), usecase.PostExitInput{
		SourceAccountID: "banco",
		Amount:          decimal.NewFromInt(300),
		Method:          domain.MethodPix,
	})
	if !errors.Is(err, domain.ErrFloorViolated) {
		t.Fatalf("expected ErrFloorViolated, got %v", err)
	}
}

func TestLedgerUseCase_PostTransfer(t *testing.T) {
	f := newLedgerFixture()
	drawer := f.addAccount("caixa", domain.KindCashPrimary, decimal.NewFromInt(800))
	bank := f.addAccount("banco", domain.KindBank, decimal.NewFromInt(200))

	txn, err := f.ledger.PostTransfer(ctxAs(domain.RoleGerente), usecase.PostTransferInput{
		SourceAccountID:      "caixa",
		DestinationAccountID: "banco",
		Amount:               decimal.NewFromInt(300),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !txn.FeePercent.IsZero() {
		t.Errorf("transfers carry no fee, got %s", txn.FeePercent)
	}
	if !drawer.Balance.Equal(decimal.NewFromInt(500)) || !bank.Balance.Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected 500/500, got %s/%s", drawer.Balance, bank.Balance)
	}

	total := drawer.Balance.Add(bank.Balance)
	if !total.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("transfer must not change system-wide total, got %s", total)
	}
}

func TestLedgerUseCase_PostTransfer_SameAccount(t *testing.T) {
	f := newLedgerFixture()
	f.addAccount("caixa", domain.KindCashPrimary, decimal.NewFromInt(100))

	_, err := f.ledger.PostTransfer(ctxAs(domain.RoleGerente), usecase.PostTransferInput{
		SourceAccountID:      "caixa",
		DestinationAccountID: "caixa",
		Amount:               decimal.NewFromInt(50),
	})
	if !errors.Is(err, domain.ErrSameAccount) {
		t.Fatalf("expected ErrSameAccount, got %v", err)
	}
}

func TestLedgerUseCase_PostEntry_DayClosed(t *testing.T) {
	f := newLedgerFixture()
	f.addAccount("caixa", domain.KindCashPrimary, decimal.Zero)

	today := domain.BusinessDate(time.Now().UTC())
	f.closings.Put(&domain.ClosingRecord{
		ID:           "cl-1",
		AccountID:    "caixa",
		BusinessDate: today,
		Status:       domain.ClosingFinalized,
	})

	_, err := f.ledger.PostEntry(ctxAs(domain.RoleVendedor), usecase.PostEntryInput{
		DestinationAccountID: "caixa",
		Amount:               decimal.NewFromInt(100),
		Method:               domain.MethodCash,
	})
	if !errors.Is(err, domain.ErrDayClosed) {
		t.Fatalf("expected ErrDayClosed, got %v", err)
	}
}

func TestLedgerUseCase_PostEntry_InactiveAccount(t *testing.T) {
	f := newLedgerFixture()
	account := f.addAccount("caixa", domain.KindCashPrimary, decimal.Zero)
	account.Active = false

	_, err := f.ledger.PostEntry(ctxAs(domain.RoleVendedor), usecase.PostEntryInput{
		DestinationAccountID: "caixa",
		Amount:               decimal.NewFromInt(100),
		Method:               domain.MethodCash,
	})
	if !errors.Is(err, domain.ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}
}

func TestLedgerUseCase_ReverseTransaction(t *testing.T) {
	f := newLedgerFixture()
	drawer := f.addAccount("caixa", domain.KindCashPrimary, decimal.NewFromInt(1000))

	original, err := f.ledger.PostEntry(ctxAs(domain.RoleVendedor), usecase.PostEntryInput{
		DestinationAccountID: "caixa",
		Amount:               decimal.NewFromInt(200),
		Method:               domain.MethodCredit,
		CardBrand:            "visa",
		Installments:         1,
	})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if !drawer.Balance.Equal(decimal.NewFromInt(1194)) {
		t.Fatalf("expected 1194 before reversal, got %s", drawer.Balance)
	}

	reversal, err := f.ledger.ReverseTransaction(ctxAs(domain.RoleGerente), original.ID)
	if err != nil {
		t.Fatalf("reverse: %v", err)
	}

	if reversal.Type != domain.TypeExit {
		t.Errorf("entry reversal must be an exit, got %s", reversal.Type)
	}
	if reversal.ReversalOf == nil || *reversal.ReversalOf != original.ID {
		t.Error("reversal must point at the original")
	}
	if !reversal.NetAmount.Equal(original.NetAmount) {
		t.Errorf("reversal net must match original net, got %s", reversal.NetAmount)
	}
	if !drawer.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("reversal must restore the balance exactly, got %s", drawer.Balance)
	}

	stored, err := f.ledger.GetTransaction(context.Background(), original.ID)
	if err != nil {
		t.Fatalf("get original: %v", err)
	}
	if stored.Status != domain.StatusReversed {
		t.Errorf("original must be marked reversed, got %s", stored.Status)
	}

	t.Run("second reversal rejected", func(t *testing.T) {
		_, err := f.ledger.ReverseTransaction(ctxAs(domain.RoleGerente), original.ID)
		if !errors.Is(err, domain.ErrAlreadyReversed) {
			t.Fatalf("expected ErrAlreadyReversed, got %v", err)
		}
	})

	t.Run("vendedor cannot reverse", func(t *testing.T) {
		_, err := f.ledger.ReverseTransaction(ctxAs(domain.RoleVendedor), reversal.ID)
		if !errors.Is(err, domain.ErrInsufficientRole) {
			t.Fatalf("expected ErrInsufficientRole, got %v", err)
		}
	})
}

func TestLedgerUseCase_ReverseTransfer(t *testing.T) {
	f := newLedgerFixture()
	drawer := f.addAccount("caixa", domain.KindCashPrimary, decimal.NewFromInt(800))
	bank := f.addAccount("banco", domain.KindBank, decimal.NewFromInt(200))

	original, err := f.ledger.PostTransfer(ctxAs(domain.RoleGerente), usecase.PostTransferInput{
		SourceAccountID:      "caixa",
		DestinationAccountID: "banco",
		Amount:               decimal.NewFromInt(300),
	})
	if err != nil {
		t.Fatalf("post: %v", err)
	}

	reversal, err := f.ledger.ReverseTransaction(ctxAs(domain.RoleGerente), original.ID)
	if err != nil {
		t.Fatalf("reverse: %v", err)
	}

	if reversal.Type != domain.TypeTransfer {
		t.Errorf("transfer reversal stays a transfer, got %s", reversal.Type)
	}
	if *reversal.SourceAccountID != "banco" || *reversal.DestinationAccountID != "caixa" {
		t.Error("transfer reversal must swap the endpoints")
	}
	if !drawer.Balance.Equal(decimal.NewFromInt(800)) || !bank.Balance.Equal(decimal.NewFromInt(200)) {
		t.Errorf("expected 800/200 restored, got %s/%s", drawer.Balance, bank.Balance)
	}
}

func TestLedgerUseCase_RecordsPostingMetrics(t *testing.T) {
	f := newLedgerFixture()
	f.addAccount("caixa", domain.KindCashPrimary, decimal.NewFromInt(1000))

	txn, err := f.ledger.PostEntry(ctxAs(domain.RoleVendedor), usecase.PostEntryInput{
		DestinationAccountID: "caixa",
		Amount:               decimal.NewFromInt(200),
		Method:               domain.MethodCash,
	})
	if err != nil {
		t.Fatalf("post: %v", err)
	}

	posted := f.metrics.TransactionsPosted.WithLabelValues(string(domain.TypeEntry), string(domain.MethodCash))
	if got := testutil.ToFloat64(posted); got != 1 {
		t.Fatalf("expected one posted entry counted, got %v", got)
	}

	if _, err := f.ledger.ReverseTransaction(ctxAs(domain.RoleGerente), txn.ID); err != nil {
		t.Fatalf("reverse: %v", err)
	}

	if got := testutil.ToFloat64(f.metrics.TransactionsReversed); got != 1 {
		t.Fatalf("expected one reversal counted, got %v", got)
	}

	// The compensating exit is a posting in its own right.
	compensation := f.metrics.TransactionsPosted.WithLabelValues(string(domain.TypeExit), string(domain.MethodCash))
	if got := testutil.ToFloat64(compensation); got != 1 {
		t.Fatalf("expected compensating exit counted, got %v", got)
	}
}

func TestLedgerUseCase_RejectedPostingNotCounted(t *testing.T) {
	f := newLedgerFixture()
	f.addAccount("caixa", domain.KindCashPrimary, decimal.Zero)

	_, err := f.ledger.PostExit(ctxAs(domain.RoleGerente), usecase.PostExitInput{
		SourceAccountID: "caixa",
		Amount:          decimal.NewFromInt(100),
		Method:          domain.MethodCash,
	})
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	rejected := f.metrics.TransactionsPosted.WithLabelValues(string(domain.TypeExit), string(domain.MethodCash))
	if got := testutil.ToFloat64(rejected); got != 0 {
		t.Fatalf("rejected posting must not be counted, got %v", got)
	}
}

func TestLedgerUseCase_RequiresAuthenticatedUser(t *testing.T) {
	f := newLedgerFixture()
	f.addAccount("caixa", domain.KindCashPrimary, decimal.Zero)

	_, err := f.ledger.PostEntry(context.Background(), usecase.PostEntryInput{
		DestinationAccountID: "caixa",
		Amount:               decimal.NewFromInt(100),
		Method:               domain.MethodCash,
	})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
