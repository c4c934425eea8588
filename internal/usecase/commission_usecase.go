package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowdash/flowdash/internal/domain"
	"github.com/flowdash/flowdash/internal/infrastructure/metrics"
)

// CommissionUseCase evaluates seller sales against tiered goals.
type CommissionUseCase struct {
	goalRepo GoalRepository
	txnRepo  TransactionRepository
	metrics  *metrics.Metrics
}

// NewCommissionUseCase creates a new CommissionUseCase. m may be nil to
// disable metrics.
func NewCommissionUseCase(goalRepo GoalRepository, txnRepo TransactionRepository, m *metrics.Metrics) *CommissionUseCase {
	return &CommissionUseCase{
		goalRepo: goalRepo,
		txnRepo:  txnRepo,
		metrics:  m,
	}
}

// ComputeCommissionInput represents input for a commission evaluation.
type ComputeCommissionInput struct {
	SellerID string
	Period   domain.GoalPeriod
	// Reference is any instant inside the period to evaluate.
	// Zero means now.
	Reference time.Time
}

// CommissionReport is the evaluation outcome over one period window.
type CommissionReport struct {
	SellerID   string
	Period     domain.GoalPeriod
	From       time.Time
	To         time.Time
	TotalSales decimal.Decimal
	Result     domain.CommissionResult
}

// ComputeCommission sums the seller's confirmed entry postings over the
// period window and applies the registered goal tiers. Re-running over the
// same window and goal data yields the same report.
func (uc *CommissionUseCase) ComputeCommission(ctx context.Context, input ComputeCommissionInput) (*CommissionReport, error) {
	if _, err := authorize(ctx, domain.OpViewReports); err != nil {
		return nil, err
	}

	if !input.Period.IsValid() {
		return nil, domain.ErrGoalNotFound
	}

	reference := input.Reference
	if reference.IsZero() {
		reference = time.Now().UTC()
	}

	from, to := periodWindow(input.Period, reference)

	goal, err := uc.goalRepo.GetBySellerAndPeriod(ctx, input.SellerID, input.Period)
	if err != nil {
		return nil, err
	}

	totalSales, err := uc.txnRepo.SumConfirmedEntriesByUser(ctx, input.SellerID, from, to)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.CommissionsComputed.Inc()
	}

	return &CommissionReport{
		SellerID:   input.SellerID,
		Period:     input.Period,
		From:       from,
		To:         to,
		TotalSales: totalSales,
		Result:     goal.ComputeCommission(totalSales),
	}, nil
}

// UpsertGoalInput represents input for registering a seller goal.
type UpsertGoalInput struct {
	SellerID string
	Period   domain.GoalPeriod
	Tiers    []domain.GoalTier
}

// UpsertGoal registers or replaces a seller's tiered goal for a period.
func (uc *CommissionUseCase) UpsertGoal(ctx context.Context, input UpsertGoalInput) (*domain.Goal, error) {
	if _, err := authorize(ctx, domain.OpManageRegistry); err != nil {
		return nil, err
	}

	if !input.Period.IsValid() {
		return nil, domain.ErrGoalNotFound
	}

	if len(input.Tiers) == 0 {
		return nil, domain.ErrGoalNotFound
	}

	goal := &domain.Goal{
		SellerID: input.SellerID,
		Period:   input.Period,
		Tiers:    input.Tiers,
	}

	if err := uc.goalRepo.Upsert(ctx, goal); err != nil {
		return nil, err
	}

	return goal, nil
}

// periodWindow returns the [from, to) window containing the reference
// instant for a goal period. Weeks start on Monday, per the store's
// commission sheets.
func periodWindow(period domain.GoalPeriod, reference time.Time) (time.Time, time.Time) {
	day := domain.BusinessDate(reference)

	switch period {
	case domain.PeriodWeekly:
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7)
	case domain.PeriodMonthly:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	default:
		return day, day.AddDate(0, 0, 1)
	}
}
