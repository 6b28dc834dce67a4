package components

import (
	"context"
	"log/slog"

	"github.com/stagepass/settlement/internal/domain/order"
	"github.com/stagepass/settlement/internal/domain/shared"
	"github.com/stagepass/settlement/internal/settlement_worker/service"
)

type ConfirmationValidatorImpl struct {
	orderRepo order.Repository
	logger    *slog.Logger
}

func NewConfirmationValidator(orderRepo order.Repository, logger *slog.Logger) service.ConfirmationValidator {
	return &ConfirmationValidatorImpl{
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// Validate checks confirmation message validity
func (v *ConfirmationValidatorImpl) Validate(ctx context.Context, confirmation *shared.SettlementConfirmation) error {
	logger := v.logger
	if confirmation.CorrelationID != "" {
		logger = v.logger.With("correlation_id", confirmation.CorrelationID)
	}

	if err := confirmation.Validate(); err != nil {
		logger.Error("Invalid settlement confirmation",
			"event_id", confirmation.EventID,
			"order_id", confirmation.OrderID,
			"error", err,
		)
		return err
	}

	return nil
}

// AlreadyApplied checks whether this confirmation's effects are already in
// place. Kafka redelivers on consumer failure and the webhook layer can
// republish the same event; the order's settled event id is the worker-side
// dedup line.
func (v *ConfirmationValidatorImpl) AlreadyApplied(ctx context.Context, confirmation *shared.SettlementConfirmation) (bool, error) {
	logger := v.logger
	if confirmation.CorrelationID != "" {
		logger = v.logger.With("correlation_id", confirmation.CorrelationID)
	}

	ord, err := v.orderRepo.GetByID(ctx, confirmation.OrderID)
	if err != nil {
		return false, err
	}

	if ord.SettledBy(confirmation.EventID) {
		logger.Info("Confirmation already applied, skipping",
			"event_id", confirmation.EventID,
			"order_id", confirmation.OrderID,
		)
		return true, nil
	}

	return false, nil
}
