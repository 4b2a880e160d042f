package events

import "time"

// Event types
const (
	AccountCreated = "account.created"
	AccountDeleted = "account.deleted"

	TransactionUsed      = "transaction.used"
	TransactionCancelled = "transaction.cancelled"
)

// Stream names
const (
	AccountEventsStream     = "account.events"
	TransactionEventsStream = "transaction.events"
)

// Event is the envelope written to a stream. ID is unique per publish so
// consumers can recognise a redelivered message.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Account events
type AccountCreatedEvent struct {
	AccountNumber string `json:"accountNumber"`
	UserID        int64  `json:"userId"`
	Balance       int64  `json:"balance"`
}

type AccountDeletedEvent struct {
	AccountID     int64  `json:"accountId"`
	AccountNumber string `json:"accountNumber"`
	UserID        int64  `json:"userId"`
}

// Transaction events. Published only for successful balance changes.
type BalanceChangedEvent struct {
	TransactionID string `json:"transactionId"`
	AccountID     int64  `json:"accountId"`
	AccountNumber string `json:"accountNumber"`
	Amount        int64  `json:"amount"`
	NewBalance    int64  `json:"newBalance"`
}
