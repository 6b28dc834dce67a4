package service

import (
	"context"

	"github.com/stagepass/settlement/internal/domain/shared"
)

// ApplyService defines the interface for applying settlement confirmations.
type ApplyService interface {
	ApplyConfirmation(ctx context.Context, confirmation *shared.SettlementConfirmation) error
}

// ConfirmationValidator checks confirmations before any state changes
type ConfirmationValidator interface {
	// Validate rejects malformed confirmations with a validation error
	Validate(ctx context.Context, confirmation *shared.SettlementConfirmation) error

	// AlreadyApplied reports whether the order was already finalized by this
	// confirmation's event. Returns order.ErrOrderNotFound for orders the
	// engine has never seen.
	AlreadyApplied(ctx context.Context, confirmation *shared.SettlementConfirmation) (bool, error)
}
