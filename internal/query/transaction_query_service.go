package query

import (
	"context"

	"github.com/jinyngg/account/shared/apperror"
	"github.com/jinyngg/account/shared/cqrs"
	"github.com/jinyngg/account/shared/models"
	"github.com/jinyngg/account/shared/utils"
)

type TransactionReader interface {
	GetByTransactionID(ctx context.Context, transactionID string) (*models.TransactionView, error)
}

// TransactionQueryService serves ledger reads.
type TransactionQueryService struct {
	readRepo TransactionReader
}

func NewTransactionQueryService(readRepo TransactionReader) *TransactionQueryService {
	return &TransactionQueryService{readRepo: readRepo}
}

// GetTransaction returns the ledger record with the given external ID.
// Malformed IDs are reported as not found without a store round trip.
func (s *TransactionQueryService) GetTransaction(ctx context.Context, q cqrs.GetTransactionQuery) (*models.TransactionView, error) {
	if !utils.ValidateTransactionID(q.TransactionID) {
		return nil, apperror.New(apperror.TransactionNotFound)
	}
	return s.readRepo.GetByTransactionID(ctx, q.TransactionID)
}
