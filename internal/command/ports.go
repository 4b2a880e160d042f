package command

import (
	"context"

	"github.com/jinyngg/account/shared/models"
)

// AccountStore is the write side of account persistence. Lookups fail with
// apperror.AccountNotFound when nothing matches.
type AccountStore interface {
	FindByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error)
	Save(ctx context.Context, account *models.Account) error
	LatestAccountNumber(ctx context.Context) (string, error)
	CountByUserID(ctx context.Context, userID int64) (int, error)
}

// UserStore fails with apperror.UserNotFound when the user does not exist.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (*models.AccountUser, error)
}

// LedgerStore appends ledger records. FindByTransactionID fails with
// apperror.TransactionNotFound when nothing matches.
type LedgerStore interface {
	Save(ctx context.Context, transaction *models.Transaction) error
	FindByTransactionID(ctx context.Context, transactionID string) (*models.Transaction, error)
	ExistsSuccessfulCancel(ctx context.Context, transactionID string) (bool, error)
}

// Transactor runs fn as one atomic unit against the stores.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

type TransactionViewCache interface {
	CacheTransactionView(ctx context.Context, view *models.TransactionView)
}

type AccountViewCache interface {
	CacheAccountView(ctx context.Context, view *models.AccountView)
}
