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

func storeGoal(t *testing.T, repo *mocks.MockGoalRepository, sellerID string, period domain.GoalPeriod) {
	t.Helper()
	err := repo.Upsert(context.Background(), &domain.Goal{
		SellerID: sellerID,
		Period:   period,
		Tiers: []domain.GoalTier{
			{Name: "Bronze", Threshold: decimal.NewFromInt(7500), CommissionPercent: decimal.NewFromInt(1)},
			{Name: "Prata", Threshold: decimal.NewFromInt(8750), CommissionPercent: decimal.NewFromFloat(1.5)},
			{Name: "Ouro", Threshold: decimal.NewFromInt(10000), CommissionPercent: decimal.NewFromInt(2)},
		},
	})
	if err != nil {
		t.Fatalf("seed goal: %v", err)
	}
}

func TestCommissionUseCase_ComputeCommission(t *testing.T) {
	tests := []struct {
		name           string
		totalSales     string
		wantTier       string
		wantCommission string
	}{
		{name: "below lowest tier earns zero", totalSales: "7499.99", wantTier: "", wantCommission: "0"},
		{name: "bronze threshold inclusive", totalSales: "7500", wantTier: "Bronze", wantCommission: "75.00"},
		{name: "prata band", totalSales: "9000", wantTier: "Prata", wantCommission: "135.00"},
		{name: "ouro above top threshold", totalSales: "12000", wantTier: "Ouro", wantCommission: "240.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goalRepo := mocks.NewMockGoalRepository()
			storeGoal(t, goalRepo, "seller-1", domain.PeriodMonthly)

			txnRepo := mocks.NewMockTransactionRepository()
			txnRepo.SumConfirmedEntriesByUserFunc = func(ctx context.Context, userID string, from, to time.Time) (decimal.Decimal, error) {
				return dec(t, tt.totalSales), nil
			}

			uc := usecase.NewCommissionUseCase(goalRepo, txnRepo, nil)

			report, err := uc.ComputeCommission(ctxAs(domain.RoleGerente), usecase.ComputeCommissionInput{
				SellerID: "seller-1",
				Period:   domain.PeriodMonthly,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if report.Result.Tier != tt.wantTier {
				t.Errorf("expected tier %q, got %q", tt.wantTier, report.Result.Tier)
			}
			if !report.Result.CommissionAmount.Equal(dec(t, tt.wantCommission)) {
				t.Errorf("expected commission %s, got %s", tt.wantCommission, report.Result.CommissionAmount)
			}
		})
	}
}

func TestCommissionUseCase_ComputeCommission_Idempotent(t *testing.T) {
	goalRepo := mocks.NewMockGoalRepository()
	storeGoal(t, goalRepo, "seller-1", domain.PeriodWeekly)

	txnRepo := mocks.NewMockTransactionRepository()
	txnRepo.SumConfirmedEntriesByUserFunc = func(ctx context.Context, userID string, from, to time.Time) (decimal.Decimal, error) {
		return decimal.NewFromInt(9000), nil
	}

	uc := usecase.NewCommissionUseCase(goalRepo, txnRepo, nil)
	input := usecase.ComputeCommissionInput{
		SellerID:  "seller-1",
		Period:    domain.PeriodWeekly,
		Reference: time.Date(2025, 6, 18, 14, 0, 0, 0, time.UTC),
	}

	first, err := uc.ComputeCommission(ctxAs(domain.RoleAdministrator), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := uc.ComputeCommission(ctxAs(domain.RoleAdministrator), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !first.Result.CommissionAmount.Equal(second.Result.CommissionAmount) || first.Result.Tier != second.Result.Tier {
		t.Error("expected identical results for identical inputs")
	}
}

func TestCommissionUseCase_PeriodWindows(t *testing.T) {
	goalRepo := mocks.NewMockGoalRepository()
	txnRepo := mocks.NewMockTransactionRepository()

	var gotFrom, gotTo time.Time
	txnRepo.SumConfirmedEntriesByUserFunc = func(ctx context.Context, userID string, from, to time.Time) (decimal.Decimal, error) {
		gotFrom, gotTo = from, to
		return decimal.Zero, nil
	}

	uc := usecase.NewCommissionUseCase(goalRepo, txnRepo, nil)

	// Wednesday 2025-06-18.
	reference := time.Date(2025, 6, 18, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		period   domain.GoalPeriod
		wantFrom time.Time
		wantTo   time.Time
	}{
		{domain.PeriodDaily, time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 19, 0, 0, 0, 0, time.UTC)},
		{domain.PeriodWeekly, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 23, 0, 0, 0, 0, time.UTC)},
		{domain.PeriodMonthly, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			storeGoal(t, goalRepo, "seller-1", tt.period)

			_, err := uc.ComputeCommission(ctxAs(domain.RoleGerente), usecase.ComputeCommissionInput{
				SellerID:  "seller-1",
				Period:    tt.period,
				Reference: reference,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !gotFrom.Equal(tt.wantFrom) || !gotTo.Equal(tt.wantTo) {
				t.Errorf("expected window [%v, %v), got [%v, %v)", tt.wantFrom, tt.wantTo, gotFrom, gotTo)
			}
		})
	}
}

func TestCommissionUseCase_ComputeCommission_Counted(t *testing.T) {
	goalRepo := mocks.NewMockGoalRepository()
	storeGoal(t, goalRepo, "seller-1", domain.PeriodMonthly)

	txnRepo := mocks.NewMockTransactionRepository()
	txnRepo.SumConfirmedEntriesByUserFunc = func(ctx context.Context, userID string, from, to time.Time) (decimal.Decimal, error) {
		return decimal.NewFromInt(9000), nil
	}

	m := metrics.NewWith(prometheus.NewRegistry())
	uc := usecase.NewCommissionUseCase(goalRepo, txnRepo, m)

	if _, err := uc.ComputeCommission(ctxAs(domain.RoleGerente), usecase.ComputeCommissionInput{
		SellerID: "seller-1",
		Period:   domain.PeriodMonthly,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := testutil.ToFloat64(m.CommissionsComputed); got != 1 {
		t.Fatalf("expected one computation counted, got %v", got)
	}
}

func TestCommissionUseCase_GoalNotFound(t *testing.T) {
	uc := usecase.NewCommissionUseCase(mocks.NewMockGoalRepository(), mocks.NewMockTransactionRepository(), nil)

	_, err := uc.ComputeCommission(ctxAs(domain.RoleGerente), usecase.ComputeCommissionInput{
		SellerID: "seller-unknown",
		Period:   domain.PeriodMonthly,
	})
	if !errors.Is(err, domain.ErrGoalNotFound) {
		t.Fatalf("expected ErrGoalNotFound, got %v", err)
	}
}

func TestCommissionUseCase_RequiresAuthenticatedUser(t *testing.T) {
	uc := usecase.NewCommissionUseCase(mocks.NewMockGoalRepository(), mocks.NewMockTransactionRepository(), nil)

	_, err := uc.ComputeCommission(context.Background(), usecase.ComputeCommissionInput{
		SellerID: "seller-1",
		Period:   domain.PeriodMonthly,
	})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
