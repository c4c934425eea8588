package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr error
	}{
		{name: "positive amount", amount: "10.50", wantErr: nil},
		{name: "zero amount", amount: "0", wantErr: ErrInvalidAmount},
		{name: "negative amount", amount: "-1", wantErr: ErrInvalidAmount},
		{name: "amount over ceiling", amount: "100000001", wantErr: ErrAmountTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, _ := decimal.NewFromString(tt.amount)
			err := ValidateAmount(amount)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateInstallments(t *testing.T) {
	if err := ValidateInstallments(1); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateInstallments(0); err == nil {
		t.Error("expected error for zero installments")
	}
	if err := ValidateInstallments(MaxInstallments + 1); err == nil {
		t.Error("expected error above max installments")
	}
}

func TestBusinessDate(t *testing.T) {
	ts := time.Date(2025, 6, 15, 18, 42, 7, 0, time.UTC)
	want := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	if got := BusinessDate(ts); !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if err := ValidateBusinessDate(want); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateBusinessDate(ts); err == nil {
		t.Error("expected error for date with time component")
	}
}

func TestValidatePagination(t *testing.T) {
	limit, offset, _ := ValidatePagination(0, -5)
	if limit != 50 || offset != 0 {
		t.Errorf("expected defaults 50/0, got %d/%d", limit, offset)
	}

	limit, _, _ = ValidatePagination(5000, 0)
	if limit != 1000 {
		t.Errorf("expected cap 1000, got %d", limit)
	}
}

func TestRoleCapabilities(t *testing.T) {
	tests := []struct {
		role Role
		op   Operation
		want bool
	}{
		{RoleAdministrator, OpApproveCorrection, true},
		{RoleGerente, OpApproveCorrection, true},
		{RoleVendedor, OpApproveCorrection, false},
		{RoleVendedor, OpPostTransaction, true},
		{RoleVendedor, OpReverseTransaction, false},
		{RoleGerente, OpManageAccounts, false},
		{RoleAdministrator, OpManageAccounts, true},
	}

	for _, tt := range tests {
		if got := tt.role.Can(tt.op); got != tt.want {
			t.Errorf("%s.Can(%s) = %v, want %v", tt.role, tt.op, got, tt.want)
		}
	}
}
