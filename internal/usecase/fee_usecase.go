package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowdash/flowdash/internal/domain"
)

// FeeUseCase resolves PSP fees for postings and manages the fee schedule.
type FeeUseCase struct {
	feeRuleRepo FeeRuleRepository
	cache       Cache
	idGen       IDGenerator
	cacheTTL    time.Duration
}

// NewFeeUseCase creates a new FeeUseCase. cache may be nil, in which case
// every resolution hits the repository.
func NewFeeUseCase(feeRuleRepo FeeRuleRepository, cache Cache, idGen IDGenerator, cacheTTL time.Duration) *FeeUseCase {
	if cacheTTL <= 0 {
		cacheTTL = FeeRuleCacheTTL
	}

	return &FeeUseCase{
		feeRuleRepo: feeRuleRepo,
		cache:       cache,
		idGen:       idGen,
		cacheTTL:    cacheTTL,
	}
}

// Resolve picks the fee for (method, brand, installments). Cash short-circuits
// to a zero fee without consulting the schedule. Any other method must match
// a registered rule; a missing rule blocks the posting rather than silently
// charging nothing.
func (uc *FeeUseCase) Resolve(ctx context.Context, method domain.PaymentMethod, cardBrand string, installments int) (*domain.ResolvedFee, error) {
	if !method.IsValid() {
		return nil, domain.ErrInvalidPaymentMethod
	}

	if method == domain.MethodCash {
		return &domain.ResolvedFee{FeePercent: decimal.Zero}, nil
	}

	if method.RequiresCardBrand() && cardBrand == "" {
		return nil, domain.ErrCardBrandRequired
	}

	if installments == 0 {
		installments = 1
	}

	if err := domain.ValidateInstallments(installments); err != nil {
		return nil, err
	}

	rules, err := uc.loadRules(ctx, method, cardBrand)
	if err != nil {
		return nil, err
	}

	return domain.ResolveFee(rules, installments)
}

// loadRules fetches the candidate rule set for (method, brand), read-through
// cached. Cache failures fall back to the repository.
func (uc *FeeUseCase) loadRules(ctx context.Context, method domain.PaymentMethod, cardBrand string) ([]*domain.FeeRule, error) {
	key := feeRuleCacheKey(method, cardBrand)

	if uc.cache != nil {
		if data, err := uc.cache.Get(ctx, key); err == nil && data != nil {
			var rules []*domain.FeeRule
			if err := json.Unmarshal(data, &rules); err == nil {
				return rules, nil
			}
		}
	}

	rules, err := uc.feeRuleRepo.ListByMethodBrand(ctx, method, cardBrand)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if data, err := json.Marshal(rules); err == nil {
			_ = uc.cache.Set(ctx, key, data, uc.cacheTTL)
		}
	}

	return rules, nil
}

// RegisterFeeRuleInput represents input for registering a fee rule.
type RegisterFeeRuleInput struct {
	Method              domain.PaymentMethod
	CardBrand           string
	MinInstallments     int
	MaxInstallments     int
	FeePercent          decimal.Decimal
	SettlementDelayDays int
}

// RegisterFeeRule adds a rule to the schedule and invalidates the cached
// candidate set for its (method, brand).
func (uc *FeeUseCase) RegisterFeeRule(ctx context.Context, input RegisterFeeRuleInput) (*domain.FeeRule, error) {
	if _, err := authorize(ctx, domain.OpManageRegistry); err != nil {
		return nil, err
	}

	if !input.Method.IsValid() || input.Method == domain.MethodCash {
		return nil, domain.ErrInvalidPaymentMethod
	}

	if input.Method.RequiresCardBrand() && input.CardBrand == "" {
		return nil, domain.ErrCardBrandRequired
	}

	if input.MinInstallments < 1 {
		input.MinInstallments = 1
	}

	if input.MaxInstallments < input.MinInstallments {
		input.MaxInstallments = input.MinInstallments
	}

	if err := domain.ValidateInstallments(input.MaxInstallments); err != nil {
		return nil, err
	}

	if input.FeePercent.IsNegative() || input.FeePercent.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("%w: fee percent out of range", domain.ErrInvalidAmount)
	}

	rule := &domain.FeeRule{
		ID:                  uc.idGen.Generate(),
		Method:              input.Method,
		CardBrand:           input.CardBrand,
		MinInstallments:     input.MinInstallments,
		MaxInstallments:     input.MaxInstallments,
		FeePercent:          input.FeePercent,
		SettlementDelayDays: input.SettlementDelayDays,
		RegisteredAt:        time.Now().UTC(),
	}

	if err := uc.feeRuleRepo.Create(ctx, rule); err != nil {
		return nil, err
	}

	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, feeRuleCacheKey(rule.Method, rule.CardBrand))
	}

	return rule, nil
}

// ListFeeRules lists the registered schedule with pagination.
func (uc *FeeUseCase) ListFeeRules(ctx context.Context, limit, offset int) ([]*domain.FeeRule, error) {
	limit, offset, _ = domain.ValidatePagination(limit, offset)

	return uc.feeRuleRepo.List(ctx, limit, offset)
}

// DeleteFeeRule removes a rule and invalidates its cached candidate set.
func (uc *FeeUseCase) DeleteFeeRule(ctx context.Context, id string) error {
	if _, err := authorize(ctx, domain.OpManageRegistry); err != nil {
		return err
	}

	rule, err := uc.feeRuleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.feeRuleRepo.Delete(ctx, id); err != nil {
		return err
	}

	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, feeRuleCacheKey(rule.Method, rule.CardBrand))
	}

	return nil
}

func feeRuleCacheKey(method domain.PaymentMethod, cardBrand string) string {
	return fmt.Sprintf("feerules:%s:%s", method, cardBrand)
}
