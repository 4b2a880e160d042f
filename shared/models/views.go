package models

import "time"

// AccountView is the read-optimised projection of an account.
// UserID is populated for ownership checks but never serialised to the API response.
type AccountView struct {
	ID             int64         `json:"id"`
	AccountNumber  string        `json:"accountNumber"`
	UserID         int64         `json:"-"`
	Status         AccountStatus `json:"accountStatus"`
	Balance        int64         `json:"balance"`
	RegisteredAt   time.Time     `json:"registeredAt"`
	UnregisteredAt *time.Time    `json:"unregisteredAt,omitempty"`
}

// TransactionView is the read-optimised projection of a ledger record.
type TransactionView struct {
	AccountNumber   string            `json:"accountNumber"`
	Type            TransactionType   `json:"transactionType"`
	Result          TransactionResult `json:"transactionResult"`
	TransactionID   string            `json:"transactionId"`
	Amount          int64             `json:"amount"`
	BalanceSnapshot int64             `json:"balanceSnapshot"`
	TransactedAt    time.Time         `json:"transactedAt"`
}

func NewAccountView(a *Account) *AccountView {
	return &AccountView{
		ID:             a.ID,
		AccountNumber:  a.AccountNumber,
		UserID:         a.AccountUser.ID,
		Status:         a.Status,
		Balance:        a.Balance,
		RegisteredAt:   a.RegisteredAt,
		UnregisteredAt: a.UnregisteredAt,
	}
}

func NewTransactionView(t *Transaction) *TransactionView {
	return &TransactionView{
		AccountNumber:   t.AccountNumber,
		Type:            t.Type,
		Result:          t.Result,
		TransactionID:   t.TransactionID,
		Amount:          t.Amount,
		BalanceSnapshot: t.BalanceSnapshot,
		TransactedAt:    t.TransactedAt,
	}
}
