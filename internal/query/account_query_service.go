package query

import (
	"context"

	"github.com/jinyngg/account/shared/apperror"
	"github.com/jinyngg/account/shared/cqrs"
	"github.com/jinyngg/account/shared/models"
)

// AccountReader is the read model the query side serves from.
type AccountReader interface {
	GetByID(ctx context.Context, id int64) (*models.AccountView, error)
	ListByUserID(ctx context.Context, userID int64) ([]models.AccountView, error)
}

type AccountQueryService struct {
	readRepo AccountReader
}

func NewAccountQueryService(readRepo AccountReader) *AccountQueryService {
	return &AccountQueryService{readRepo: readRepo}
}

// GetAccount fetches a single account view and enforces ownership.
func (s *AccountQueryService) GetAccount(ctx context.Context, q cqrs.GetAccountQuery) (*models.AccountView, error) {
	if q.ID < 0 {
		return nil, apperror.Newf(apperror.InvalidRequest, "account id cannot be negative")
	}

	view, err := s.readRepo.GetByID(ctx, q.ID)
	if err != nil {
		return nil, err
	}

	// Ownership check: the AccountView carries UserID (json:"-") for this purpose.
	if view.UserID != q.RequestingUserID {
		return nil, apperror.New(apperror.UserAccountUnMatch)
	}

	return view, nil
}

func (s *AccountQueryService) ListAccounts(ctx context.Context, q cqrs.ListAccountsQuery) ([]models.AccountView, error) {
	return s.readRepo.ListByUserID(ctx, q.UserID)
}
