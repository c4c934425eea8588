package domain

import "time"

// Event types
const (
	EventTypeTransactionPosted   = "transaction.posted"
	EventTypeTransactionReversed = "transaction.reversed"
	EventTypeClosingFinalized    = "closing.finalized"
	EventTypeAccountCreated      = "account.created"
)

// Aggregate types
const (
	AggregateTypeTransaction = "transaction"
	AggregateTypeClosing     = "closing"
	AggregateTypeAccount     = "account"
)

// OutboxEvent represents an event to be published to reporting consumers.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// TransactionPostedEvent payload
type TransactionPostedEvent struct {
	TransactionID string `json:"transaction_id"`
	Type          string `json:"type"`
	Amount        string `json:"amount"`
	NetAmount     string `json:"net_amount"`
	Method        string `json:"method"`
	BusinessDate  string `json:"business_date"`
}

// TransactionReversedEvent payload
type TransactionReversedEvent struct {
	ReversalTransactionID string `json:"reversal_transaction_id"`
	OriginalTransactionID string `json:"original_transaction_id"`
	Amount                string `json:"amount"`
}

// ClosingFinalizedEvent payload
type ClosingFinalizedEvent struct {
	ClosingID    string `json:"closing_id"`
	AccountID    string `json:"account_id"`
	BusinessDate string `json:"business_date"`
	Expected     string `json:"expected"`
	Declared     string `json:"declared"`
	Correction   string `json:"correction"`
}

// AccountCreatedEvent payload
type AccountCreatedEvent struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
}
