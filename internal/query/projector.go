package query

import (
	"context"

	"github.com/jinyngg/account/shared/events"
	"go.uber.org/zap"
)

type AccountViewInvalidator interface {
	InvalidateAccountView(ctx context.Context, id int64)
}

// AccountProjector keeps the cached account views consistent with balance and
// status changes announced on the event streams.
type AccountProjector struct {
	views  AccountViewInvalidator
	logger *zap.Logger
}

func NewAccountProjector(views AccountViewInvalidator, logger *zap.Logger) *AccountProjector {
	return &AccountProjector{views: views, logger: logger}
}

// HandleEvent drops the cached view of the account an event refers to. The
// next read rebuilds it from PostgreSQL. Unrelated event types are ignored.
func (p *AccountProjector) HandleEvent(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.TransactionUsed, events.TransactionCancelled:
		var data events.BalanceChangedEvent
		if err := events.DecodeData(event, &data); err != nil {
			return err
		}
		p.views.InvalidateAccountView(ctx, data.AccountID)
		p.logger.Debug("account view invalidated",
			zap.String("event", event.Type),
			zap.String("account_number", data.AccountNumber),
			zap.String("transaction_id", data.TransactionID),
		)
	case events.AccountDeleted:
		var data events.AccountDeletedEvent
		if err := events.DecodeData(event, &data); err != nil {
			return err
		}
		p.views.InvalidateAccountView(ctx, data.AccountID)
		p.logger.Debug("account view invalidated", zap.String("event", event.Type), zap.String("account_number", data.AccountNumber))
	}
	return nil
}
