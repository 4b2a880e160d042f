package cqrs

// ---------- Account queries ----------

// GetAccountQuery fetches a single account by internal ID on behalf of its owner.
type GetAccountQuery struct {
	ID               int64
	RequestingUserID int64
}

// ListAccountsQuery fetches all accounts belonging to a user.
type ListAccountsQuery struct {
	UserID int64
}

// ---------- Transaction queries ----------

// GetTransactionQuery fetches a single ledger record by its external transaction ID.
type GetTransactionQuery struct {
	TransactionID string
}
