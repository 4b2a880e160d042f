package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jinyngg/account/shared/models"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// The repositories below run without a database, so only cache hits are
// exercised; a miss would dereference the nil *sql.DB.

func setupRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestAccountReadRepository_CacheKeepsOwner(t *testing.T) {
	mr, client := setupRedis(t)
	repo := NewAccountReadRepository(nil, client, zap.NewNop())
	ctx := context.Background()

	repo.CacheAccountView(ctx, &models.AccountView{
		ID: 7, AccountNumber: "1000000012", UserID: 12,
		Status: models.AccountStatusInUse, Balance: 9800,
	})
	assert.True(t, mr.Exists("account:view:7"))
	assert.Equal(t, accountViewTTL, mr.TTL("account:view:7"))

	view, err := repo.GetByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(12), view.UserID)
	assert.Equal(t, int64(9800), view.Balance)
}

func TestAccountReadRepository_Invalidate(t *testing.T) {
	mr, client := setupRedis(t)
	repo := NewAccountReadRepository(nil, client, zap.NewNop())
	ctx := context.Background()

	repo.CacheAccountView(ctx, &models.AccountView{ID: 7, AccountNumber: "1000000012", UserID: 12})
	repo.InvalidateAccountView(ctx, 7)

	assert.False(t, mr.Exists("account:view:7"))
}

func TestTransactionReadRepository_CacheHit(t *testing.T) {
	mr, client := setupRedis(t)
	repo := NewTransactionReadRepository(nil, client, zap.NewNop())
	ctx := context.Background()

	transactedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	repo.CacheTransactionView(ctx, &models.TransactionView{
		AccountNumber: "1000000012", Type: models.TransactionTypeUse, Result: models.TransactionResultSuccess,
		TransactionID: "0123456789abcdef0123456789abcdef", Amount: 200, BalanceSnapshot: 9800,
		TransactedAt: transactedAt,
	})
	// Ledger records never change, so their views do not expire.
	assert.Equal(t, time.Duration(0), mr.TTL("transaction:view:0123456789abcdef0123456789abcdef"))

	view, err := repo.GetByTransactionID(ctx, "0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	assert.Equal(t, int64(9800), view.BalanceSnapshot)
	assert.True(t, transactedAt.Equal(view.TransactedAt))
}
