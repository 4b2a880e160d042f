package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jinyngg/account/shared/apperror"
	"github.com/jinyngg/account/shared/models"
)

// UserRepository reads account owners. Users are managed elsewhere.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.AccountUser, error) {
	query := `SELECT id, name, created_at, updated_at FROM account_user WHERE id = $1`

	var user models.AccountUser
	err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Name, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.New(apperror.UserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
