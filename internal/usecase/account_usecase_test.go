package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/flowdash/flowdash/internal/domain"
	"github.com/flowdash/flowdash/internal/usecase"
	"github.com/flowdash/flowdash/internal/usecase/mocks"
)

type accountFixture struct {
	accounts   *mocks.MockAccountRepository
	balanceLog *mocks.MockBalanceAuditRepository
	outbox     *mocks.MockOutboxRepository
	audit      *mocks.MockAuditRepository
	uc         *usecase.AccountUseCase
}

func newAccountFixture() *accountFixture {
	f := &accountFixture{
		accounts:   mocks.NewMockAccountRepository(),
		balanceLog: mocks.NewMockBalanceAuditRepository(),
		outbox:     mocks.NewMockOutboxRepository(),
		audit:      mocks.NewMockAuditRepository(),
	}

	f.uc = usecase.NewAccountUseCase(
		mocks.NewMockTransactionManager(),
		f.accounts,
		f.balanceLog,
		f.outbox,
		f.audit,
		mocks.NewMockIDGenerator(),
		nil,
	)

	return f
}

func TestAccountUseCase_CreateAccount(t *testing.T) {
	admin := ctxAs(domain.RoleAdministrator)

	tests := []struct {
		name    string
		input   usecase.CreateAccountInput
		wantErr error
	}{
		{
			name: "cash drawer",
			input: usecase.CreateAccountInput{
				Name:           "Caixa",
				Kind:           domain.KindCashPrimary,
				OpeningBalance: decimal.NewFromInt(200),
			},
		},
		{
			name: "bank with overdraft floor",
			input: usecase.CreateAccountInput{
				Name:           "Banco Inter",
				Kind:           domain.KindBank,
				OpeningBalance: decimal.Zero,
				OverdraftFloor: decimalPtr(decimal.NewFromInt(-1000)),
			},
		},
		{
			name: "empty name rejected",
			input: usecase.CreateAccountInput{
				Name: "  ",
				Kind: domain.KindBank,
			},
			wantErr: domain.ErrInvalidAccountName,
		},
		{
			name: "unknown kind rejected",
			input: usecase.CreateAccountInput{
				Name: "Cofre",
				Kind: domain.AccountKind("vault"),
			},
			wantErr: domain.ErrInvalidAccountKind,
		},
		{
			name: "cash cannot open negative",
			input: usecase.CreateAccountInput{
				Name:           "Caixa 2",
				Kind:           domain.KindCashSecondary,
				OpeningBalance: decimal.NewFromInt(-10),
			},
			wantErr: domain.ErrInsufficientFunds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAccountFixture()

			account, err := f.uc.CreateAccount(admin, tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !account.Active {
				t.Error("new accounts start active")
			}
			if !account.Balance.Equal(account.OpeningBalance) {
				t.Error("balance must start at the opening balance")
			}

			if events := f.outbox.Events(); len(events) != 1 || events[0].EventType != domain.EventTypeAccountCreated {
				t.Errorf("expected one account.created event, got %v", events)
			}
		})
	}
}

func TestAccountUseCase_CreateAccount_CashIgnoresFloor(t *testing.T) {
	f := newAccountFixture()

	account, err := f.uc.CreateAccount(ctxAs(domain.RoleAdministrator), usecase.CreateAccountInput{
		Name:           "Caixa",
		Kind:           domain.KindCashPrimary,
		OpeningBalance: decimal.NewFromInt(100),
		OverdraftFloor: decimalPtr(decimal.NewFromInt(-500)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.OverdraftFloor != nil {
		t.Error("cash accounts must not carry an overdraft floor")
	}
}

func TestAccountUseCase_CreateAccount_RequiresAccountManager(t *testing.T) {
	f := newAccountFixture()

	for _, role := range []domain.Role{domain.RoleGerente, domain.RoleVendedor} {
		_, err := f.uc.CreateAccount(ctxAs(role), usecase.CreateAccountInput{
			Name: "Caixa",
			Kind: domain.KindCashPrimary,
		})
		if !errors.Is(err, domain.ErrInsufficientRole) {
			t.Errorf("%s: expected ErrInsufficientRole, got %v", role, err)
		}
	}
}

func TestAccountUseCase_DeactivateAccount(t *testing.T) {
	f := newAccountFixture()
	admin := ctxAs(domain.RoleAdministrator)

	account, err := f.uc.CreateAccount(admin, usecase.CreateAccountInput{
		Name: "Caixa",
		Kind: domain.KindCashPrimary,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := f.uc.DeactivateAccount(admin, account.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	stored, err := f.uc.GetAccount(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Active {
		t.Error("account must be inactive after deactivation")
	}

	if err := f.uc.DeactivateAccount(admin, "missing"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
