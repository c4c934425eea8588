package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// BalanceAudit is one append-only row per applied balance delta. This log is
// the reconciliation source of truth for the closing engine and is never
// overwritten.
type BalanceAudit struct {
	ID               string
	AccountID        string
	Delta            decimal.Decimal
	ResultingBalance decimal.Decimal
	Reason           string
	TransactionID    string
	CreatedAt        time.Time
}

// Audit reasons for balance deltas.
const (
	ReasonEntry             = "ledger.entry"
	ReasonExit              = "ledger.exit"
	ReasonTransferOut       = "ledger.transfer_out"
	ReasonTransferIn        = "ledger.transfer_in"
	ReasonReversal          = "ledger.reversal"
	ReasonClosingCorrection = "closing.correction"
)

// AuditLog records who performed which action, for compliance and debugging.
type AuditLog struct {
	ID           string
	UserID       string
	Action       string
	ResourceType string
	ResourceID   string
	RequestID    string
	BeforeState  JSON
	AfterState   JSON
	Status       string
	ErrorMessage string
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionEntryPost         AuditAction = "transaction.entry"
	AuditActionExitPost          AuditAction = "transaction.exit"
	AuditActionTransferPost      AuditAction = "transaction.transfer"
	AuditActionTransactionRevert AuditAction = "transaction.reverse"
	AuditActionDayClose          AuditAction = "closing.close"
	AuditActionCorrectionApprove AuditAction = "closing.approve_correction"
	AuditActionAccountCreate     AuditAction = "account.create"
	AuditActionAccountDeactivate AuditAction = "account.deactivate"
	AuditActionUserLogin         AuditAction = "user.login"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	UserID       string
	Action       string
	ResourceType string
	ResourceID   string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}
