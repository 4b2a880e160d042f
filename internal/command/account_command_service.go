package command

import (
	"context"
	"time"

	"github.com/jinyngg/account/shared/apperror"
	"github.com/jinyngg/account/shared/cqrs"
	"github.com/jinyngg/account/shared/events"
	"github.com/jinyngg/account/shared/models"
	"github.com/jinyngg/account/shared/utils"
	"go.uber.org/zap"
)

// MaxAccountsPerUser caps how many accounts one user may open.
const MaxAccountsPerUser = 10

// AccountCommandService writes account state and keeps the read model in sync.
type AccountCommandService struct {
	accounts  AccountStore
	users     UserStore
	views     AccountViewCache
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewAccountCommandService(
	accounts AccountStore,
	users UserStore,
	views AccountViewCache,
	publisher EventPublisher,
	logger *zap.Logger,
) *AccountCommandService {
	return &AccountCommandService{
		accounts:  accounts,
		users:     users,
		views:     views,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateAccount opens an account numbered one past the latest issued number.
func (s *AccountCommandService) CreateAccount(ctx context.Context, cmd cqrs.CreateAccountCommand) (*models.Account, error) {
	if cmd.InitialBalance < 0 {
		return nil, apperror.Newf(apperror.InvalidRequest, "initial balance cannot be negative")
	}

	user, err := s.users.FindByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	count, err := s.accounts.CountByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if count >= MaxAccountsPerUser {
		return nil, apperror.New(apperror.MaxAccountPerUser)
	}

	latest, err := s.accounts.LatestAccountNumber(ctx)
	if err != nil {
		return nil, err
	}
	accountNumber, err := utils.NextAccountNumber(latest)
	if err != nil {
		return nil, err
	}

	now := s.now()
	account := &models.Account{
		AccountNumber: accountNumber,
		AccountUser:   *user,
		Status:        models.AccountStatusInUse,
		Balance:       cmd.InitialBalance,
		RegisteredAt:  now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, err
	}

	accountsOpened.Inc()
	s.views.CacheAccountView(ctx, models.NewAccountView(account))
	if err := s.publisher.Publish(ctx, events.AccountEventsStream, events.AccountCreated, events.AccountCreatedEvent{
		AccountNumber: account.AccountNumber,
		UserID:        user.ID,
		Balance:       account.Balance,
	}); err != nil {
		s.logger.Warn("failed to publish event", zap.String("event", events.AccountCreated), zap.Error(err))
	}

	s.logger.Info("account created", zap.String("account_number", account.AccountNumber), zap.Int64("user_id", user.ID))
	return account, nil
}

// DeleteAccount unregisters an empty account owned by cmd.UserID. Accounts are
// never removed, only moved to UNREGISTERED.
func (s *AccountCommandService) DeleteAccount(ctx context.Context, cmd cqrs.DeleteAccountCommand) (*models.Account, error) {
	user, err := s.users.FindByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	account, err := s.accounts.FindByAccountNumber(ctx, cmd.AccountNumber)
	if err != nil {
		return nil, err
	}
	if account.AccountUser.ID != user.ID {
		return nil, apperror.New(apperror.UserAccountUnMatch)
	}
	if account.Status == models.AccountStatusUnregistered {
		return nil, apperror.New(apperror.AccountAlreadyUnregistered)
	}
	if account.Balance > 0 {
		return nil, apperror.New(apperror.BalanceNotEmpty)
	}

	now := s.now()
	account.Status = models.AccountStatusUnregistered
	account.UnregisteredAt = &now
	account.UpdatedAt = now
	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, err
	}

	s.views.CacheAccountView(ctx, models.NewAccountView(account))
	if err := s.publisher.Publish(ctx, events.AccountEventsStream, events.AccountDeleted, events.AccountDeletedEvent{
		AccountID:     account.ID,
		AccountNumber: account.AccountNumber,
		UserID:        user.ID,
	}); err != nil {
		s.logger.Warn("failed to publish event", zap.String("event", events.AccountDeleted), zap.Error(err))
	}

	s.logger.Info("account unregistered", zap.String("account_number", account.AccountNumber), zap.Int64("user_id", user.ID))
	return account, nil
}
