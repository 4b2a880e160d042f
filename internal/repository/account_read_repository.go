package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jinyngg/account/shared/apperror"
	"github.com/jinyngg/account/shared/models"
	sharedredis "github.com/jinyngg/account/shared/redis"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	accountViewKeyPrefix = "account:view:"
	accountViewTTL       = 10 * time.Minute
)

// AccountReadRepository handles all read operations for accounts.
// It treats Redis as the primary read store (the CQRS read model) and falls
// back to PostgreSQL transparently, warming the cache on every cold read.
type AccountReadRepository struct {
	db    *sql.DB
	cache *sharedredis.ViewCache[cachedAccountView]
}

// cachedAccountView keeps the owner alongside the view, since AccountView
// hides UserID from JSON.
type cachedAccountView struct {
	View   models.AccountView `json:"view"`
	UserID int64              `json:"userId"`
}

func newCachedAccountView(view *models.AccountView) *cachedAccountView {
	return &cachedAccountView{View: *view, UserID: view.UserID}
}

func (c *cachedAccountView) accountView() *models.AccountView {
	view := c.View
	view.UserID = c.UserID
	return &view
}

func NewAccountReadRepository(db *sql.DB, redisClient *goredis.Client, logger *zap.Logger) *AccountReadRepository {
	return &AccountReadRepository{
		db:    db,
		cache: sharedredis.NewViewCache[cachedAccountView](redisClient, logger, accountViewKeyPrefix, accountViewTTL),
	}
}

const accountViewColumns = `id, account_number, account_user_id, status, balance, registered_at, unregistered_at`

func scanAccountView(row rowScanner) (*models.AccountView, error) {
	var (
		view           models.AccountView
		unregisteredAt sql.NullTime
	)
	if err := row.Scan(
		&view.ID, &view.AccountNumber, &view.UserID, &view.Status, &view.Balance,
		&view.RegisteredAt, &unregisteredAt,
	); err != nil {
		return nil, err
	}
	if unregisteredAt.Valid {
		t := unregisteredAt.Time
		view.UnregisteredAt = &t
	}
	return &view, nil
}

// GetByID returns an AccountView, trying Redis first then PostgreSQL.
func (r *AccountReadRepository) GetByID(ctx context.Context, id int64) (*models.AccountView, error) {
	cacheKey := strconv.FormatInt(id, 10)
	if cached, ok := r.cache.Get(ctx, cacheKey); ok {
		return cached.accountView(), nil
	}

	query := `SELECT ` + accountViewColumns + ` FROM account WHERE id = $1`
	view, err := scanAccountView(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.New(apperror.AccountNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	r.cache.Set(ctx, cacheKey, newCachedAccountView(view))
	return view, nil
}

// ListByUserID returns all AccountViews for the given user from PostgreSQL.
func (r *AccountReadRepository) ListByUserID(ctx context.Context, userID int64) ([]models.AccountView, error) {
	query := `SELECT ` + accountViewColumns + ` FROM account WHERE account_user_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	views := []models.AccountView{}
	for rows.Next() {
		view, err := scanAccountView(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		views = append(views, *view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return views, nil
}

// CacheAccountView stores or refreshes the Redis read model for an account.
func (r *AccountReadRepository) CacheAccountView(ctx context.Context, view *models.AccountView) {
	r.cache.Set(ctx, strconv.FormatInt(view.ID, 10), newCachedAccountView(view))
}

// InvalidateAccountView drops the cached view so the next read goes to PostgreSQL.
func (r *AccountReadRepository) InvalidateAccountView(ctx context.Context, id int64) {
	r.cache.Delete(ctx, strconv.FormatInt(id, 10))
}
