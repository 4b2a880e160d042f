package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jinyngg/account/shared/apperror"
	"github.com/jinyngg/account/shared/models"
)

const accountColumns = `
	a.id, a.account_number, a.status, a.balance, a.registered_at, a.unregistered_at, a.created_at, a.updated_at,
	u.id, u.name, u.created_at, u.updated_at
`

// AccountWriteRepository handles all state-mutating operations for accounts.
// It operates exclusively against the PostgreSQL write store (source of truth).
type AccountWriteRepository struct {
	db *sql.DB
}

func NewAccountWriteRepository(db *sql.DB) *AccountWriteRepository {
	return &AccountWriteRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		account        models.Account
		unregisteredAt sql.NullTime
	)
	err := row.Scan(
		&account.ID, &account.AccountNumber, &account.Status, &account.Balance,
		&account.RegisteredAt, &unregisteredAt, &account.CreatedAt, &account.UpdatedAt,
		&account.AccountUser.ID, &account.AccountUser.Name, &account.AccountUser.CreatedAt, &account.AccountUser.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if unregisteredAt.Valid {
		t := unregisteredAt.Time
		account.UnregisteredAt = &t
	}
	return &account, nil
}

func (r *AccountWriteRepository) findOne(ctx context.Context, where string, arg any) (*models.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM account a
		JOIN account_user u ON u.id = a.account_user_id
		WHERE ` + where

	account, err := scanAccount(conn(ctx, r.db).QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.New(apperror.AccountNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// FindByAccountNumber fetches the full write model, owner included.
func (r *AccountWriteRepository) FindByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	return r.findOne(ctx, "a.account_number = $1", accountNumber)
}

func (r *AccountWriteRepository) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.findOne(ctx, "a.id = $1", id)
}

// Save inserts a new account (ID == 0) or persists status and balance changes
// of an existing one. On insert the generated ID is written back.
func (r *AccountWriteRepository) Save(ctx context.Context, account *models.Account) error {
	db := conn(ctx, r.db)

	if account.ID == 0 {
		query := `
			INSERT INTO account (account_user_id, account_number, status, balance, registered_at, unregistered_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		`
		err := db.QueryRowContext(ctx, query,
			account.AccountUser.ID, account.AccountNumber, account.Status, account.Balance,
			account.RegisteredAt, nullTime(account.UnregisteredAt), account.CreatedAt, account.UpdatedAt,
		).Scan(&account.ID)
		if err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
		return nil
	}

	query := `
		UPDATE account
		SET status = $2, balance = $3, unregistered_at = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := db.ExecContext(ctx, query,
		account.ID, account.Status, account.Balance, nullTime(account.UnregisteredAt), account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.New(apperror.AccountNotFound)
	}
	return nil
}

// LatestAccountNumber returns the most recently issued account number, or ""
// when no account exists yet.
func (r *AccountWriteRepository) LatestAccountNumber(ctx context.Context) (string, error) {
	query := `SELECT account_number FROM account ORDER BY id DESC LIMIT 1`

	var accountNumber string
	err := conn(ctx, r.db).QueryRowContext(ctx, query).Scan(&accountNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get latest account number: %w", err)
	}
	return accountNumber, nil
}

func (r *AccountWriteRepository) CountByUserID(ctx context.Context, userID int64) (int, error) {
	query := `SELECT COUNT(*) FROM account WHERE account_user_id = $1`
	var count int
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
