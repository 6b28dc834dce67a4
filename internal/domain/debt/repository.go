package debt

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines debt ledger persistence operations
type Repository interface {
	// GetByOwner returns the owner's debt record, or a zero-debt record if
	// none exists. A missing row is the default state, never an error.
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*Record, error)

	// ApplySettlement atomically decrements the owner's remaining debt by the
	// collected amount, floor-clamped at zero, and returns the new balance.
	// The decrement happens in the storage layer so concurrent confirmations
	// for the same owner never drive the balance negative.
	ApplySettlement(ctx context.Context, ownerID uuid.UUID, amountCents int64) (int64, error)
}
