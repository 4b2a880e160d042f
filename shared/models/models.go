package models

import "time"

type AccountStatus string

const (
	AccountStatusInUse        AccountStatus = "IN_USE"
	AccountStatusUnregistered AccountStatus = "UNREGISTERED"
)

type TransactionType string

const (
	TransactionTypeUse    TransactionType = "USE"
	TransactionTypeCancel TransactionType = "CANCEL"
)

type TransactionResult string

const (
	TransactionResultSuccess TransactionResult = "S"
	TransactionResultFail    TransactionResult = "F"
)

type AccountUser struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Account struct {
	ID             int64         `json:"id"`
	AccountNumber  string        `json:"accountNumber"`
	AccountUser    AccountUser   `json:"accountUser"`
	Status         AccountStatus `json:"accountStatus"`
	Balance        int64         `json:"balance"`
	RegisteredAt   time.Time     `json:"registeredAt"`
	UnregisteredAt *time.Time    `json:"unregisteredAt,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// Transaction is one ledger record. Records are append-only: one per attempt,
// never updated after insert.
type Transaction struct {
	ID                     int64             `json:"id"`
	TransactionID          string            `json:"transactionId"`
	Type                   TransactionType   `json:"transactionType"`
	Result                 TransactionResult `json:"transactionResult"`
	AccountID              int64             `json:"-"`
	AccountNumber          string            `json:"accountNumber"`
	Amount                 int64             `json:"amount"`
	BalanceSnapshot        int64             `json:"balanceSnapshot"`
	CancelledTransactionID string            `json:"cancelledTransactionId,omitempty"`
	TransactedAt           time.Time         `json:"transactedAt"`
	CreatedAt              time.Time         `json:"createdAt"`
}
