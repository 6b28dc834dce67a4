package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stagepass/settlement/internal/domain/debt"
	"github.com/stagepass/settlement/internal/domain/order"
	"github.com/stagepass/settlement/internal/domain/shared"
)

type ApplyServiceImpl struct {
	validator ConfirmationValidator
	debtRepo  debt.Repository
	orderRepo order.Repository
	logger    *slog.Logger
}

func NewApplyService(
	logger *slog.Logger,
	validator ConfirmationValidator,
	debtRepo debt.Repository,
	orderRepo order.Repository,
) ApplyService {
	return &ApplyServiceImpl{
		validator: validator,
		debtRepo:  debtRepo,
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// ApplyConfirmation handles the core logic for one settlement confirmation:
// retire the collected amount from the owner's debt, then finalize the order.
// The debt decrement is atomic and floor-clamped in the storage layer, so a
// rare replay after a mid-sequence crash can only over-retire debt down to
// zero, never drive it negative.
func (s *ApplyServiceImpl) ApplyConfirmation(ctx context.Context, confirmation *shared.SettlementConfirmation) error {
	logger := s.logger
	if confirmation.CorrelationID != "" {
		logger = s.logger.With("correlation_id", confirmation.CorrelationID)
	}

	logger.Info("Applying settlement confirmation",
		"event_id", confirmation.EventID,
		"order_id", confirmation.OrderID,
	)

	// 1. Validate the confirmation
	if err := s.validator.Validate(ctx, confirmation); err != nil {
		return err // Permanent; the consumer routes it to the DLQ
	}

	// 2. Check whether this confirmation already took effect
	applied, err := s.validator.AlreadyApplied(ctx, confirmation)
	if err != nil {
		return err
	}
	if applied {
		return nil // Already processed, return success
	}

	// 3. Retire debt with what was actually collected
	collected := confirmation.CollectedSettlementCents()
	if collected > 0 {
		remaining, err := s.debtRepo.ApplySettlement(ctx, confirmation.OwnerID, collected)
		if err != nil {
			return fmt.Errorf("failed to apply settlement for order %s: %w", confirmation.OrderID, err)
		}
		logger.Info("Debt settlement applied",
			"owner_id", confirmation.OwnerID.String(),
			"collected_cents", collected,
			"remaining_debt_cents", remaining,
		)
	}

	// 4. Finalize the order
	if err := s.orderRepo.MarkSettled(ctx, confirmation.OrderID, confirmation.EventID, confirmation.CapturedAmountCents); err != nil {
		return fmt.Errorf("failed to finalize order %s: %w", confirmation.OrderID, err)
	}

	logger.Info("Order settled",
		"event_id", confirmation.EventID,
		"order_id", confirmation.OrderID,
		"captured_cents", confirmation.CapturedAmountCents,
	)
	return nil
}
