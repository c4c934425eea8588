package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountInactive   = errors.New("account is deactivated")
	ErrInsufficientFunds = errors.New("insufficient funds for cash account")
	ErrFloorViolated     = errors.New("overdraft floor violated")

	// Transaction errors
	ErrSameAccount         = errors.New("cannot transfer to same account")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAlreadyReversed     = errors.New("transaction already reversed")
	ErrNotReversible       = errors.New("only confirmed transactions can be reversed")
	ErrDayClosed           = errors.New("business day already closed for posting")

	// Fee errors
	ErrNoMatchingFeeRule = errors.New("no fee rule matches payment method, brand and installments")
	ErrCardBrandRequired = errors.New("card brand required for card payment methods")

	// Goal errors
	ErrGoalNotFound = errors.New("no goal registered for seller and period")

	// Closing errors
	ErrAlreadyClosed      = errors.New("closing record already exists for business day")
	ErrOutOfOrderClosing  = errors.New("previous business day not finalized")
	ErrJustificationEmpty = errors.New("correction requires a justification")
	ErrClosingFinalized   = errors.New("closing record is finalized and immutable")
	ErrClosingNotFound    = errors.New("closing record not found")
	ErrClosingNotPending  = errors.New("closing record is not pending review")
	ErrToleranceExceeded  = errors.New("declared balance outside tolerance, correction required")
	ErrCorrectionMismatch = errors.New("correction amount must equal the discrepancy")
)
