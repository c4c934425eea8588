package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNetFromGross(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		feePct  string
		wantNet string
	}{
		{name: "three percent card fee", amount: "200.00", feePct: "3", wantNet: "194.00"},
		{name: "zero fee", amount: "150.00", feePct: "0", wantNet: "150.00"},
		{name: "fractional fee rounds to cents", amount: "99.99", feePct: "2.5", wantNet: "97.49"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, _ := decimal.NewFromString(tt.amount)
			fee, _ := decimal.NewFromString(tt.feePct)
			want, _ := decimal.NewFromString(tt.wantNet)

			got := NetFromGross(amount, fee)
			if !got.Equal(want) {
				t.Errorf("expected %s, got %s", want, got)
			}
		})
	}
}

func TestTransaction_Validate(t *testing.T) {
	src := "acc-1"
	dst := "acc-2"

	tests := []struct {
		name    string
		txn     Transaction
		wantErr error
	}{
		{
			name: "valid entry",
			txn: Transaction{
				Type:                 TypeEntry,
				Amount:               decimal.NewFromInt(100),
				Method:               MethodCash,
				DestinationAccountID: &dst,
			},
			wantErr: nil,
		},
		{
			name: "zero amount rejected",
			txn: Transaction{
				Type:                 TypeEntry,
				Amount:               decimal.Zero,
				Method:               MethodCash,
				DestinationAccountID: &dst,
			},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "unknown method rejected",
			txn: Transaction{
				Type:                 TypeEntry,
				Amount:               decimal.NewFromInt(100),
				Method:               PaymentMethod("check"),
				DestinationAccountID: &dst,
			},
			wantErr: ErrInvalidPaymentMethod,
		},
		{
			name: "entry without destination rejected",
			txn: Transaction{
				Type:   TypeEntry,
				Amount: decimal.NewFromInt(100),
				Method: MethodCash,
			},
			wantErr: ErrUnknownAccount,
		},
		{
			name: "exit without source rejected",
			txn: Transaction{
				Type:   TypeExit,
				Amount: decimal.NewFromInt(100),
				Method: MethodCash,
			},
			wantErr: ErrUnknownAccount,
		},
		{
			name: "transfer to same account rejected",
			txn: Transaction{
				Type:                 TypeTransfer,
				Amount:               decimal.NewFromInt(100),
				Method:               MethodCash,
				SourceAccountID:      &src,
				DestinationAccountID: &src,
			},
			wantErr: ErrSameAccount,
		},
		{
			name: "valid transfer",
			txn: Transaction{
				Type:                 TypeTransfer,
				Amount:               decimal.NewFromInt(100),
				Method:               MethodCash,
				SourceAccountID:      &src,
				DestinationAccountID: &dst,
			},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.txn.Validate()
			if err != tt.wantErr {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestPaymentMethod_RequiresFeeRule(t *testing.T) {
	if MethodCash.RequiresFeeRule() {
		t.Error("cash must not require a fee rule")
	}
	for _, m := range []PaymentMethod{MethodPix, MethodDebit, MethodCredit, MethodPaymentLink} {
		if !m.RequiresFeeRule() {
			t.Errorf("%s must require a fee rule", m)
		}
	}
}
