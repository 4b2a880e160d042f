package cqrs

// AccountNumberSequenceKey serializes account number issuance. It can never
// collide with a real account number, which is all digits.
const AccountNumberSequenceKey = "sequence"

// CreateAccountCommand opens a new account. Creation is serialized on
// AccountNumberSequenceKey so concurrent requests never draw the same number.
type CreateAccountCommand struct {
	UserID         int64
	InitialBalance int64
}

func (c CreateAccountCommand) LockKey() string { return AccountNumberSequenceKey }

// DeleteAccountCommand unregisters an account. It is lock-guarded on AccountNumber.
type DeleteAccountCommand struct {
	UserID        int64
	AccountNumber string
}

func (c DeleteAccountCommand) LockKey() string { return c.AccountNumber }

// UseBalanceCommand debits an account. It is lock-guarded on AccountNumber.
type UseBalanceCommand struct {
	UserID        int64
	AccountNumber string
	Amount        int64
}

func (c UseBalanceCommand) LockKey() string { return c.AccountNumber }

// CancelBalanceCommand re-credits a previous use. It is lock-guarded on AccountNumber.
type CancelBalanceCommand struct {
	TransactionID string
	AccountNumber string
	Amount        int64
}

func (c CancelBalanceCommand) LockKey() string { return c.AccountNumber }
