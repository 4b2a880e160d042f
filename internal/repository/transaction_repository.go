package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jinyngg/account/shared/apperror"
	"github.com/jinyngg/account/shared/models"
)

// TransactionWriteRepository appends ledger records. Records are never updated.
type TransactionWriteRepository struct {
	db *sql.DB
}

func NewTransactionWriteRepository(db *sql.DB) *TransactionWriteRepository {
	return &TransactionWriteRepository{db: db}
}

func (r *TransactionWriteRepository) Save(ctx context.Context, transaction *models.Transaction) error {
	query := `
		INSERT INTO ledger_transaction (
			transaction_id, transaction_type, transaction_result, account_id, amount,
			balance_snapshot, cancelled_transaction_id, transacted_at, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := conn(ctx, r.db).QueryRowContext(ctx, query,
		transaction.TransactionID, transaction.Type, transaction.Result, transaction.AccountID,
		transaction.Amount, transaction.BalanceSnapshot, nullString(transaction.CancelledTransactionID),
		transaction.TransactedAt, transaction.CreatedAt,
	).Scan(&transaction.ID)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// FindByTransactionID returns the ledger record with the given external ID,
// joined with its account number.
func (r *TransactionWriteRepository) FindByTransactionID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	query := `
		SELECT t.id, t.transaction_id, t.transaction_type, t.transaction_result, t.account_id, a.account_number,
		       t.amount, t.balance_snapshot, t.cancelled_transaction_id, t.transacted_at, t.created_at
		FROM ledger_transaction t
		JOIN account a ON a.id = t.account_id
		WHERE t.transaction_id = $1
	`
	var (
		transaction models.Transaction
		cancelledID sql.NullString
	)
	err := conn(ctx, r.db).QueryRowContext(ctx, query, transactionID).Scan(
		&transaction.ID, &transaction.TransactionID, &transaction.Type, &transaction.Result,
		&transaction.AccountID, &transaction.AccountNumber, &transaction.Amount,
		&transaction.BalanceSnapshot, &cancelledID, &transaction.TransactedAt, &transaction.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.New(apperror.TransactionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	transaction.CancelledTransactionID = cancelledID.String
	return &transaction, nil
}

// ExistsSuccessfulCancel reports whether a successful CANCEL record already
// targets transactionID.
func (r *TransactionWriteRepository) ExistsSuccessfulCancel(ctx context.Context, transactionID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM ledger_transaction
			WHERE cancelled_transaction_id = $1 AND transaction_type = $2 AND transaction_result = $3
		)
	`
	var exists bool
	err := conn(ctx, r.db).QueryRowContext(ctx, query,
		transactionID, models.TransactionTypeCancel, models.TransactionResultSuccess,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check cancellation: %w", err)
	}
	return exists, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
