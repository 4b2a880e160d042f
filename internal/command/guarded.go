package command

import (
	"context"

	"github.com/jinyngg/account/internal/lock"
	"github.com/jinyngg/account/shared/cqrs"
	"github.com/jinyngg/account/shared/models"
	"go.uber.org/zap"
)

// GuardedTransactionService runs every balance mutation while holding the
// lease on the command's account number.
type GuardedTransactionService struct {
	use    lock.Operation[cqrs.UseBalanceCommand, *models.Transaction]
	cancel lock.Operation[cqrs.CancelBalanceCommand, *models.Transaction]
}

func NewGuardedTransactionService(engine *TransactionCommandService, locks lock.Acquirer, logger *zap.Logger) *GuardedTransactionService {
	return &GuardedTransactionService{
		use:    lock.Guard(locks, logger, engine.UseBalance),
		cancel: lock.Guard(locks, logger, engine.CancelBalance),
	}
}

func (s *GuardedTransactionService) UseBalance(ctx context.Context, cmd cqrs.UseBalanceCommand) (*models.Transaction, error) {
	return s.use(ctx, cmd)
}

func (s *GuardedTransactionService) CancelBalance(ctx context.Context, cmd cqrs.CancelBalanceCommand) (*models.Transaction, error) {
	return s.cancel(ctx, cmd)
}

// GuardedAccountService serializes account creation on the number sequence and
// unregistration on the account number.
type GuardedAccountService struct {
	create lock.Operation[cqrs.CreateAccountCommand, *models.Account]
	delete lock.Operation[cqrs.DeleteAccountCommand, *models.Account]
}

func NewGuardedAccountService(accounts *AccountCommandService, locks lock.Acquirer, logger *zap.Logger) *GuardedAccountService {
	return &GuardedAccountService{
		create: lock.Guard(locks, logger, accounts.CreateAccount),
		delete: lock.Guard(locks, logger, accounts.DeleteAccount),
	}
}

func (s *GuardedAccountService) CreateAccount(ctx context.Context, cmd cqrs.CreateAccountCommand) (*models.Account, error) {
	return s.create(ctx, cmd)
}

func (s *GuardedAccountService) DeleteAccount(ctx context.Context, cmd cqrs.DeleteAccountCommand) (*models.Account, error) {
	return s.delete(ctx, cmd)
}
