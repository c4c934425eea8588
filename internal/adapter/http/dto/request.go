package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowdash/flowdash/internal/domain"
	"github.com/flowdash/flowdash/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name           string           `json:"name"`
	Kind           string           `json:"kind"`
	OpeningBalance decimal.Decimal  `json:"opening_balance"`
	OverdraftFloor *decimal.Decimal `json:"overdraft_floor,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		Name:           r.Name,
		Kind:           domain.AccountKind(r.Kind),
		OpeningBalance: r.OpeningBalance,
		OverdraftFloor: r.OverdraftFloor,
	}
}

// PostEntryRequest represents a request to post a sale or other money-in.
type PostEntryRequest struct {
	DestinationAccountID string          `json:"destination_account_id"`
	Amount               decimal.Decimal `json:"amount"`
	Method               string          `json:"method"`
	CardBrand            string          `json:"card_brand,omitempty"`
	Installments         int             `json:"installments,omitempty"`
	BusinessDate         *time.Time      `json:"business_date,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *PostEntryRequest) ToUseCaseInput() usecase.PostEntryInput {
	return usecase.PostEntryInput{
		DestinationAccountID: r.DestinationAccountID,
		Amount:               r.Amount,
		Method:               domain.PaymentMethod(r.Method),
		CardBrand:            r.CardBrand,
		Installments:         r.Installments,
		BusinessDate:         timeOrZero(r.BusinessDate),
	}
}

// PostExitRequest represents a request to post a payment or other money-out.
type PostExitRequest struct {
	SourceAccountID string          `json:"source_account_id"`
	Amount          decimal.Decimal `json:"amount"`
	Method          string          `json:"method"`
	CardBrand       string          `json:"card_brand,omitempty"`
	Installments    int             `json:"installments,omitempty"`
	BusinessDate    *time.Time      `json:"business_date,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *PostExitRequest) ToUseCaseInput() usecase.PostExitInput {
	return usecase.PostExitInput{
		SourceAccountID: r.SourceAccountID,
		Amount:          r.Amount,
		Method:          domain.PaymentMethod(r.Method),
		CardBrand:       r.CardBrand,
		Installments:    r.Installments,
		BusinessDate:    timeOrZero(r.BusinessDate),
	}
}

// PostTransferRequest represents a request to move money between accounts.
type PostTransferRequest struct {
	SourceAccountID      string          `json:"source_account_id"`
	DestinationAccountID string          `json:"destination_account_id"`
	Amount               decimal.Decimal `json:"amount"`
	BusinessDate         *time.Time      `json:"business_date,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *PostTransferRequest) ToUseCaseInput() usecase.PostTransferInput {
	return usecase.PostTransferInput{
		SourceAccountID:      r.SourceAccountID,
		DestinationAccountID: r.DestinationAccountID,
		Amount:               r.Amount,
		BusinessDate:         timeOrZero(r.BusinessDate),
	}
}

// CloseDayRequest represents a request to close an account's business day.
type CloseDayRequest struct {
	AccountID       string          `json:"account_id"`
	BusinessDate    *time.Time      `json:"business_date,omitempty"`
	DeclaredBalance decimal.Decimal `json:"declared_balance"`
}

// ToUseCaseInput converts to use case input.
func (r *CloseDayRequest) ToUseCaseInput() usecase.CloseBusinessDayInput {
	return usecase.CloseBusinessDayInput{
		AccountID:       r.AccountID,
		BusinessDate:    timeOrZero(r.BusinessDate),
		DeclaredBalance: r.DeclaredBalance,
	}
}

// ApproveCorrectionRequest represents a request to approve a closing correction.
type ApproveCorrectionRequest struct {
	CorrectionAmount decimal.Decimal `json:"correction_amount"`
	Justification    string          `json:"justification"`
}

// ToUseCaseInput converts to use case input for the given closing.
func (r *ApproveCorrectionRequest) ToUseCaseInput(closingID string) usecase.ApproveCorrectionInput {
	return usecase.ApproveCorrectionInput{
		ClosingID:        closingID,
		CorrectionAmount: r.CorrectionAmount,
		Justification:    r.Justification,
	}
}

// RegisterFeeRuleRequest represents a request to register a fee rule.
type RegisterFeeRuleRequest struct {
	Method              string          `json:"method"`
	CardBrand           string          `json:"card_brand,omitempty"`
	MinInstallments     int             `json:"min_installments"`
	MaxInstallments     int             `json:"max_installments"`
	FeePercent          decimal.Decimal `json:"fee_percent"`
	SettlementDelayDays int             `json:"settlement_delay_days"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterFeeRuleRequest) ToUseCaseInput() usecase.RegisterFeeRuleInput {
	return usecase.RegisterFeeRuleInput{
		Method:              domain.PaymentMethod(r.Method),
		CardBrand:           r.CardBrand,
		MinInstallments:     r.MinInstallments,
		MaxInstallments:     r.MaxInstallments,
		FeePercent:          r.FeePercent,
		SettlementDelayDays: r.SettlementDelayDays,
	}
}

// GoalTierPayload is one commission band in a goal request or response.
type GoalTierPayload struct {
	Name              string          `json:"name"`
	Threshold         decimal.Decimal `json:"threshold"`
	CommissionPercent decimal.Decimal `json:"commission_percent"`
}

// UpsertGoalRequest represents a request to register a seller goal.
type UpsertGoalRequest struct {
	SellerID string            `json:"seller_id"`
	Period   string            `json:"period"`
	Tiers    []GoalTierPayload `json:"tiers"`
}

// ToUseCaseInput converts to use case input.
func (r *UpsertGoalRequest) ToUseCaseInput() usecase.UpsertGoalInput {
	tiers := make([]domain.GoalTier, len(r.Tiers))
	for i, t := range r.Tiers {
		tiers[i] = domain.GoalTier{
			Name:              t.Name,
			Threshold:         t.Threshold,
			CommissionPercent: t.CommissionPercent,
		}
	}

	return usecase.UpsertGoalInput{
		SellerID: r.SellerID,
		Period:   domain.GoalPeriod(r.Period),
		Tiers:    tiers,
	}
}

// CreateUserRequest represents a request to create a user.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateUserRequest) ToUseCaseInput() usecase.CreateUserInput {
	return usecase.CreateUserInput{
		Email:    r.Email,
		Name:     r.Name,
		Password: r.Password,
		Role:     domain.Role(r.Role),
	}
}

// UpdateUserRequest represents a request to update a user. Absent fields are
// left unchanged.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Role     *string `json:"role,omitempty"`
	Active   *bool   `json:"active,omitempty"`
	Password *string `json:"password,omitempty"`
}

// ToUseCaseInput converts to use case input for the given user.
func (r *UpdateUserRequest) ToUseCaseInput(userID string) usecase.UpdateUserInput {
	input := usecase.UpdateUserInput{
		ID:       userID,
		Name:     r.Name,
		Active:   r.Active,
		Password: r.Password,
	}

	if r.Role != nil {
		role := domain.Role(*r.Role)
		input.Role = &role
	}

	return input
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
