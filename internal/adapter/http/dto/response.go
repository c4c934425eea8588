package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowdash/flowdash/internal/domain"
	"github.com/flowdash/flowdash/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Kind           string           `json:"kind"`
	Balance        decimal.Decimal  `json:"balance"`
	OpeningBalance decimal.Decimal  `json:"opening_balance"`
	OverdraftFloor *decimal.Decimal `json:"overdraft_floor,omitempty"`
	Version        int64            `json:"version"`
	Active         bool             `json:"active"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:             a.ID,
		Name:           a.Name,
		Kind:           string(a.Kind),
		Balance:        a.Balance,
		OpeningBalance: a.OpeningBalance,
		OverdraftFloor: a.OverdraftFloor,
		Version:        a.Version,
		Active:         a.Active,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse wraps a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// TransactionResponse represents a ledger transaction in API responses.
type TransactionResponse struct {
	ID                   string          `json:"id"`
	Type                 string          `json:"type"`
	BusinessDate         string          `json:"business_date"`
	CreatedAt            time.Time       `json:"created_at"`
	Amount               decimal.Decimal `json:"amount"`
	FeePercent           decimal.Decimal `json:"fee_percent"`
	NetAmount            decimal.Decimal `json:"net_amount"`
	SourceAccountID      *string         `json:"source_account_id,omitempty"`
	DestinationAccountID *string         `json:"destination_account_id,omitempty"`
	Method               string          `json:"method"`
	CardBrand            *string         `json:"card_brand,omitempty"`
	Installments         *int            `json:"installments,omitempty"`
	UserID               string          `json:"user_id"`
	Status               string          `json:"status"`
	ReversalOf           *string         `json:"reversal_of,omitempty"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:                   t.ID,
		Type:                 string(t.Type),
		BusinessDate:         t.BusinessDate.Format(time.DateOnly),
		CreatedAt:            t.CreatedAt,
		Amount:               t.Amount,
		FeePercent:           t.FeePercent,
		NetAmount:            t.NetAmount,
		SourceAccountID:      t.SourceAccountID,
		DestinationAccountID: t.DestinationAccountID,
		Method:               string(t.Method),
		CardBrand:            t.CardBrand,
		Installments:         t.Installments,
		UserID:               t.UserID,
		Status:               string(t.Status),
		ReversalOf:           t.ReversalOf,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txns []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Total        int64                  `json:"total"`
}

// ClosingResponse represents a daily closing record in API responses.
type ClosingResponse struct {
	ID               string          `json:"id"`
	AccountID        string          `json:"account_id"`
	BusinessDate     string          `json:"business_date"`
	ExpectedBalance  decimal.Decimal `json:"expected_balance"`
	DeclaredBalance  decimal.Decimal `json:"declared_balance"`
	Discrepancy      decimal.Decimal `json:"discrepancy"`
	CorrectionAmount decimal.Decimal `json:"correction_amount"`
	Justification    string          `json:"justification,omitempty"`
	ClosedBy         string          `json:"closed_by"`
	ApprovedBy       string          `json:"approved_by,omitempty"`
	Status           string          `json:"status"`
	Cutoff           time.Time       `json:"cutoff"`
	CreatedAt        time.Time       `json:"created_at"`
	FinalizedAt      *time.Time      `json:"finalized_at,omitempty"`
}

// ClosingFromDomain converts a domain closing record to a response.
func ClosingFromDomain(c *domain.ClosingRecord) *ClosingResponse {
	return &ClosingResponse{
		ID:               c.ID,
		AccountID:        c.AccountID,
		BusinessDate:     c.BusinessDate.Format(time.DateOnly),
		ExpectedBalance:  c.ExpectedBalance,
		DeclaredBalance:  c.DeclaredBalance,
		Discrepancy:      c.Discrepancy,
		CorrectionAmount: c.CorrectionAmount,
		Justification:    c.Justification,
		ClosedBy:         c.ClosedBy,
		ApprovedBy:       c.ApprovedBy,
		Status:           string(c.Status),
		Cutoff:           c.Cutoff,
		CreatedAt:        c.CreatedAt,
		FinalizedAt:      c.FinalizedAt,
	}
}

// ClosingsFromDomain converts domain closing records to responses.
func ClosingsFromDomain(recs []*domain.ClosingRecord) []*ClosingResponse {
	result := make([]*ClosingResponse, len(recs))
	for i, c := range recs {
		result[i] = ClosingFromDomain(c)
	}
	return result
}

// ListClosingsResponse wraps a page of closing records.
type ListClosingsResponse struct {
	Closings []*ClosingResponse `json:"closings"`
	Total    int64              `json:"total"`
}

// ClosingStatusResponse reports the reconciliation state of one
// (account, business date) pair.
type ClosingStatusResponse struct {
	AccountID    string           `json:"account_id"`
	BusinessDate string           `json:"business_date"`
	Status       string           `json:"status"`
	Closing      *ClosingResponse `json:"closing,omitempty"`
}

// ClosingStatusFromUseCase converts a use case closing status to a response.
func ClosingStatusFromUseCase(s *usecase.ClosingStatus) *ClosingStatusResponse {
	resp := &ClosingStatusResponse{
		AccountID:    s.AccountID,
		BusinessDate: s.BusinessDate.Format(time.DateOnly),
		Status:       string(s.Status),
	}

	if s.Record != nil {
		resp.Closing = ClosingFromDomain(s.Record)
	}

	return resp
}

// PendingReviewResponse is returned when a closing lands outside tolerance
// and waits for a manager-approved correction.
type PendingReviewResponse struct {
	Closing *ClosingResponse `json:"closing"`
	Message string           `json:"message"`
}

// FeeRuleResponse represents a fee rule in API responses.
type FeeRuleResponse struct {
	ID                  string          `json:"id"`
	Method              string          `json:"method"`
	CardBrand           string          `json:"card_brand,omitempty"`
	MinInstallments     int             `json:"min_installments"`
	MaxInstallments     int             `json:"max_installments"`
	FeePercent          decimal.Decimal `json:"fee_percent"`
	SettlementDelayDays int             `json:"settlement_delay_days"`
	RegisteredAt        time.Time       `json:"registered_at"`
}

// FeeRuleFromDomain converts a domain fee rule to a response.
func FeeRuleFromDomain(r *domain.FeeRule) *FeeRuleResponse {
	return &FeeRuleResponse{
		ID:                  r.ID,
		Method:              string(r.Method),
		CardBrand:           r.CardBrand,
		MinInstallments:     r.MinInstallments,
		MaxInstallments:     r.MaxInstallments,
		FeePercent:          r.FeePercent,
		SettlementDelayDays: r.SettlementDelayDays,
		RegisteredAt:        r.RegisteredAt,
	}
}

// FeeRulesFromDomain converts domain fee rules to responses.
func FeeRulesFromDomain(rules []*domain.FeeRule) []*FeeRuleResponse {
	result := make([]*FeeRuleResponse, len(rules))
	for i, r := range rules {
		result[i] = FeeRuleFromDomain(r)
	}
	return result
}

// ListFeeRulesResponse wraps a page of fee rules.
type ListFeeRulesResponse struct {
	FeeRules []*FeeRuleResponse `json:"fee_rules"`
	Total    int64              `json:"total"`
}

// ResolvedFeeResponse is the outcome of a fee resolution probe.
type ResolvedFeeResponse struct {
	RuleID              string          `json:"rule_id,omitempty"`
	FeePercent          decimal.Decimal `json:"fee_percent"`
	SettlementDelayDays int             `json:"settlement_delay_days"`
}

// ResolvedFeeFromDomain converts a resolved fee to a response.
func ResolvedFeeFromDomain(f *domain.ResolvedFee) *ResolvedFeeResponse {
	return &ResolvedFeeResponse{
		RuleID:              f.RuleID,
		FeePercent:          f.FeePercent,
		SettlementDelayDays: f.SettlementDelayDays,
	}
}

// GoalResponse represents a seller goal in API responses.
type GoalResponse struct {
	SellerID string            `json:"seller_id"`
	Period   string            `json:"period"`
	Tiers    []GoalTierPayload `json:"tiers"`
}

// GoalFromDomain converts a domain goal to a response.
func GoalFromDomain(g *domain.Goal) *GoalResponse {
	tiers := make([]GoalTierPayload, len(g.Tiers))
	for i, t := range g.Tiers {
		tiers[i] = GoalTierPayload{
			Name:              t.Name,
			Threshold:         t.Threshold,
			CommissionPercent: t.CommissionPercent,
		}
	}

	return &GoalResponse{
		SellerID: g.SellerID,
		Period:   string(g.Period),
		Tiers:    tiers,
	}
}

// CommissionReportResponse is the outcome of a commission evaluation.
type CommissionReportResponse struct {
	SellerID         string          `json:"seller_id"`
	Period           string          `json:"period"`
	From             time.Time       `json:"from"`
	To               time.Time       `json:"to"`
	TotalSales       decimal.Decimal `json:"total_sales"`
	Tier             string          `json:"tier,omitempty"`
	TierPercent      decimal.Decimal `json:"tier_percent"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
}

// CommissionReportFromUseCase converts a use case report to a response.
func CommissionReportFromUseCase(r *usecase.CommissionReport) *CommissionReportResponse {
	return &CommissionReportResponse{
		SellerID:         r.SellerID,
		Period:           string(r.Period),
		From:             r.From,
		To:               r.To,
		TotalSales:       r.TotalSales,
		Tier:             r.Result.Tier,
		TierPercent:      r.Result.TierPercent,
		CommissionAmount: r.Result.CommissionAmount,
	}
}

// BalanceAuditResponse represents one audited balance delta.
type BalanceAuditResponse struct {
	ID               string          `json:"id"`
	AccountID        string          `json:"account_id"`
	Delta            decimal.Decimal `json:"delta"`
	ResultingBalance decimal.Decimal `json:"resulting_balance"`
	Reason           string          `json:"reason"`
	TransactionID    string          `json:"transaction_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// BalanceAuditsFromDomain converts domain balance audits to responses.
func BalanceAuditsFromDomain(audits []*domain.BalanceAudit) []*BalanceAuditResponse {
	result := make([]*BalanceAuditResponse, len(audits))
	for i, a := range audits {
		result[i] = &BalanceAuditResponse{
			ID:               a.ID,
			AccountID:        a.AccountID,
			Delta:            a.Delta,
			ResultingBalance: a.ResultingBalance,
			Reason:           a.Reason,
			TransactionID:    a.TransactionID,
			CreatedAt:        a.CreatedAt,
		}
	}
	return result
}

// ListBalanceAuditsResponse wraps a page of balance audit rows.
type ListBalanceAuditsResponse struct {
	Audits []*BalanceAuditResponse `json:"audits"`
	Total  int64                   `json:"total"`
}

// VerificationResponse reports one account's consistency check.
type VerificationResponse struct {
	AccountID       string          `json:"account_id"`
	RecordedBalance decimal.Decimal `json:"recorded_balance"`
	ComputedBalance decimal.Decimal `json:"computed_balance"`
	Difference      decimal.Decimal `json:"difference"`
	Consistent      bool            `json:"consistent"`
	CheckedAt       time.Time       `json:"checked_at"`
}

// VerificationFromUseCase converts a use case verification to a response.
func VerificationFromUseCase(v *usecase.AccountVerification) *VerificationResponse {
	return &VerificationResponse{
		AccountID:       v.AccountID,
		RecordedBalance: v.RecordedBalance,
		ComputedBalance: v.ComputedBalance,
		Difference:      v.Difference,
		Consistent:      v.Consistent,
		CheckedAt:       v.CheckedAt,
	}
}

// VerificationsFromUseCase converts use case verifications to responses.
func VerificationsFromUseCase(vs []*usecase.AccountVerification) []*VerificationResponse {
	result := make([]*VerificationResponse, len(vs))
	for i, v := range vs {
		result[i] = VerificationFromUseCase(v)
	}
	return result
}

// ListVerificationsResponse wraps the consistency check of every account.
type ListVerificationsResponse struct {
	Results []*VerificationResponse `json:"results"`
	Total   int64                   `json:"total"`
}

// UserResponse represents a user in API responses. The password hash never
// leaves the use case layer.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserFromDomain converts a domain user to a response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UsersFromDomain converts domain users to responses.
func UsersFromDomain(users []*domain.User) []*UserResponse {
	result := make([]*UserResponse, len(users))
	for i, u := range users {
		result[i] = UserFromDomain(u)
	}
	return result
}

// ListUsersResponse wraps a page of users.
type ListUsersResponse struct {
	Users []*UserResponse `json:"users"`
	Total int64           `json:"total"`
}

// LoginResponse represents a successful login.
type LoginResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
