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

// TransactionCommandService uses and cancels account balance and writes one
// ledger record per attempt that gets past the existence checks.
//
// It is not safe for concurrent use on the same account number; production
// callers go through GuardedTransactionService.
type TransactionCommandService struct {
	accounts     AccountStore
	users        UserStore
	ledger       LedgerStore
	transactor   Transactor
	views        TransactionViewCache
	publisher    EventPublisher
	logger       *zap.Logger
	cancelWindow time.Duration
	now          func() time.Time
}

func NewTransactionCommandService(
	accounts AccountStore,
	users UserStore,
	ledger LedgerStore,
	transactor Transactor,
	views TransactionViewCache,
	publisher EventPublisher,
	logger *zap.Logger,
	cancelWindow time.Duration,
) *TransactionCommandService {
	return &TransactionCommandService{
		accounts:     accounts,
		users:        users,
		ledger:       ledger,
		transactor:   transactor,
		views:        views,
		publisher:    publisher,
		logger:       logger,
		cancelWindow: cancelWindow,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// UseBalance debits cmd.Amount from the account.
//
// Unknown user or account, an ownership mismatch and an unregistered account
// fail without touching the ledger. An amount above the balance, or a storage
// failure while committing the debit, is recorded as a failed USE before the
// error is returned.
func (s *TransactionCommandService) UseBalance(ctx context.Context, cmd cqrs.UseBalanceCommand) (*models.Transaction, error) {
	if cmd.Amount <= 0 {
		return nil, apperror.Newf(apperror.InvalidRequest, "amount must be greater than zero")
	}

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
	if account.Status != models.AccountStatusInUse {
		return nil, apperror.New(apperror.AccountAlreadyUnregistered)
	}
	if cmd.Amount > account.Balance {
		return nil, s.recordFailedUse(ctx, cmd, apperror.New(apperror.AmountExceedBalance))
	}

	now := s.now()
	account.Balance -= cmd.Amount
	account.UpdatedAt = now
	transaction := &models.Transaction{
		TransactionID:   utils.GenerateTransactionID(),
		Type:            models.TransactionTypeUse,
		Result:          models.TransactionResultSuccess,
		AccountID:       account.ID,
		AccountNumber:   account.AccountNumber,
		Amount:          cmd.Amount,
		BalanceSnapshot: account.Balance,
		TransactedAt:    now,
		CreatedAt:       now,
	}

	if err := s.commit(ctx, account, transaction); err != nil {
		s.logger.Error("failed to commit balance use", zap.String("account_number", cmd.AccountNumber), zap.Error(err))
		return nil, s.recordFailedUse(ctx, cmd, err)
	}

	s.afterCommit(ctx, transaction, events.TransactionUsed)
	return transaction, nil
}

func (s *TransactionCommandService) recordFailedUse(ctx context.Context, cmd cqrs.UseBalanceCommand, cause error) error {
	if _, err := s.SaveFailedUseTransaction(ctx, cmd.AccountNumber, cmd.Amount); err != nil {
		s.logger.Error("failed to record failed use", zap.String("account_number", cmd.AccountNumber), zap.Error(err))
	}
	return cause
}

// SaveFailedUseTransaction records a rejected USE attempt. The account is read
// again so the snapshot is the balance as persisted right now.
func (s *TransactionCommandService) SaveFailedUseTransaction(ctx context.Context, accountNumber string, amount int64) (*models.Transaction, error) {
	return s.saveFailed(ctx, models.TransactionTypeUse, accountNumber, amount, "")
}

// CancelBalance credits back a successful USE in full.
//
// A missing USE record or account fails without a ledger record. Every other
// rejection, and a storage failure while committing, is recorded as a failed
// CANCEL before the error is returned.
func (s *TransactionCommandService) CancelBalance(ctx context.Context, cmd cqrs.CancelBalanceCommand) (*models.Transaction, error) {
	if cmd.Amount <= 0 {
		return nil, apperror.Newf(apperror.InvalidRequest, "amount must be greater than zero")
	}

	original, err := s.ledger.FindByTransactionID(ctx, cmd.TransactionID)
	if err != nil {
		return nil, err
	}
	if original.Type != models.TransactionTypeUse || original.Result != models.TransactionResultSuccess {
		return nil, apperror.New(apperror.TransactionNotFound)
	}
	account, err := s.accounts.FindByAccountNumber(ctx, cmd.AccountNumber)
	if err != nil {
		return nil, err
	}

	if err := s.validateCancel(ctx, original, account, cmd); err != nil {
		return nil, s.recordFailedCancel(ctx, cmd, err)
	}

	now := s.now()
	account.Balance += cmd.Amount
	account.UpdatedAt = now
	transaction := &models.Transaction{
		TransactionID:          utils.GenerateTransactionID(),
		Type:                   models.TransactionTypeCancel,
		Result:                 models.TransactionResultSuccess,
		AccountID:              account.ID,
		AccountNumber:          account.AccountNumber,
		Amount:                 cmd.Amount,
		BalanceSnapshot:        account.Balance,
		CancelledTransactionID: original.TransactionID,
		TransactedAt:           now,
		CreatedAt:              now,
	}

	if err := s.commit(ctx, account, transaction); err != nil {
		s.logger.Error("failed to commit balance cancel", zap.String("account_number", cmd.AccountNumber), zap.Error(err))
		return nil, s.recordFailedCancel(ctx, cmd, err)
	}

	s.afterCommit(ctx, transaction, events.TransactionCancelled)
	return transaction, nil
}

func (s *TransactionCommandService) validateCancel(ctx context.Context, original *models.Transaction, account *models.Account, cmd cqrs.CancelBalanceCommand) error {
	if original.AccountID != account.ID {
		return apperror.New(apperror.TransactionAccountUnMatch)
	}
	if original.Amount != cmd.Amount {
		return apperror.New(apperror.CancelMustFully)
	}
	cancelled, err := s.ledger.ExistsSuccessfulCancel(ctx, original.TransactionID)
	if err != nil {
		return err
	}
	if cancelled {
		return apperror.New(apperror.TransactionAlreadyCancelled)
	}
	if s.now().Sub(original.TransactedAt) > s.cancelWindow {
		return apperror.New(apperror.TooOldOrderToCancel)
	}
	if account.Status != models.AccountStatusInUse {
		return apperror.New(apperror.AccountAlreadyUnregistered)
	}
	return nil
}

func (s *TransactionCommandService) recordFailedCancel(ctx context.Context, cmd cqrs.CancelBalanceCommand, cause error) error {
	if _, err := s.SaveFailedCancelTransaction(ctx, cmd.AccountNumber, cmd.Amount, cmd.TransactionID); err != nil {
		s.logger.Error("failed to record failed cancel", zap.String("account_number", cmd.AccountNumber), zap.Error(err))
	}
	return cause
}

// SaveFailedCancelTransaction records a rejected CANCEL attempt against
// cancelledTransactionID with the account's current balance as snapshot.
func (s *TransactionCommandService) SaveFailedCancelTransaction(ctx context.Context, accountNumber string, amount int64, cancelledTransactionID string) (*models.Transaction, error) {
	return s.saveFailed(ctx, models.TransactionTypeCancel, accountNumber, amount, cancelledTransactionID)
}

func (s *TransactionCommandService) saveFailed(ctx context.Context, txType models.TransactionType, accountNumber string, amount int64, cancelledTransactionID string) (*models.Transaction, error) {
	account, err := s.accounts.FindByAccountNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	now := s.now()
	transaction := &models.Transaction{
		TransactionID:          utils.GenerateTransactionID(),
		Type:                   txType,
		Result:                 models.TransactionResultFail,
		AccountID:              account.ID,
		AccountNumber:          account.AccountNumber,
		Amount:                 amount,
		BalanceSnapshot:        account.Balance,
		CancelledTransactionID: cancelledTransactionID,
		TransactedAt:           now,
		CreatedAt:              now,
	}
	if err := s.ledger.Save(ctx, transaction); err != nil {
		return nil, err
	}

	ledgerRecords.WithLabelValues(string(transaction.Type), string(transaction.Result)).Inc()
	s.views.CacheTransactionView(ctx, models.NewTransactionView(transaction))
	s.logger.Info("recorded failed transaction",
		zap.String("transaction_id", transaction.TransactionID),
		zap.String("type", string(txType)),
		zap.String("account_number", accountNumber),
		zap.Int64("amount", amount),
	)
	return transaction, nil
}

// commit persists the new balance and its ledger record atomically.
func (s *TransactionCommandService) commit(ctx context.Context, account *models.Account, transaction *models.Transaction) error {
	return s.transactor.WithTx(ctx, func(ctx context.Context) error {
		if err := s.accounts.Save(ctx, account); err != nil {
			return err
		}
		return s.ledger.Save(ctx, transaction)
	})
}

func (s *TransactionCommandService) afterCommit(ctx context.Context, transaction *models.Transaction, eventType string) {
	ledgerRecords.WithLabelValues(string(transaction.Type), string(transaction.Result)).Inc()
	s.views.CacheTransactionView(ctx, models.NewTransactionView(transaction))

	if err := s.publisher.Publish(ctx, events.TransactionEventsStream, eventType, events.BalanceChangedEvent{
		TransactionID: transaction.TransactionID,
		AccountID:     transaction.AccountID,
		AccountNumber: transaction.AccountNumber,
		Amount:        transaction.Amount,
		NewBalance:    transaction.BalanceSnapshot,
	}); err != nil {
		s.logger.Warn("failed to publish event", zap.String("event", eventType), zap.Error(err))
	}

	s.logger.Info("balance changed",
		zap.String("transaction_id", transaction.TransactionID),
		zap.String("type", string(transaction.Type)),
		zap.String("account_number", transaction.AccountNumber),
		zap.Int64("amount", transaction.Amount),
		zap.Int64("balance", transaction.BalanceSnapshot),
	)
}
