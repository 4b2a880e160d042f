package repository

import (
	"context"
	"database/sql"

	"github.com/jinyngg/account/shared/models"
	sharedredis "github.com/jinyngg/account/shared/redis"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const transactionViewKeyPrefix = "transaction:view:"

// TransactionReadRepository handles all read operations for transactions.
// It uses Redis as the primary read store, falling back to PostgreSQL on a miss.
// Ledger records are immutable, so cached views never need invalidation.
type TransactionReadRepository struct {
	writes *TransactionWriteRepository
	cache  *sharedredis.ViewCache[models.TransactionView]
}

func NewTransactionReadRepository(db *sql.DB, redisClient *goredis.Client, logger *zap.Logger) *TransactionReadRepository {
	return &TransactionReadRepository{
		writes: NewTransactionWriteRepository(db),
		cache:  sharedredis.NewViewCache[models.TransactionView](redisClient, logger, transactionViewKeyPrefix, 0),
	}
}

// GetByTransactionID returns a TransactionView by attempting Redis first, then PostgreSQL.
func (r *TransactionReadRepository) GetByTransactionID(ctx context.Context, transactionID string) (*models.TransactionView, error) {
	if view, ok := r.cache.Get(ctx, transactionID); ok {
		return view, nil
	}

	transaction, err := r.writes.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	view := models.NewTransactionView(transaction)
	r.cache.Set(ctx, transactionID, view)
	return view, nil
}

// CacheTransactionView stores the read model for a ledger record in Redis.
// Called by the command service immediately after a record is saved.
func (r *TransactionReadRepository) CacheTransactionView(ctx context.Context, view *models.TransactionView) {
	r.cache.Set(ctx, view.TransactionID, view)
}
