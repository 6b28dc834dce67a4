package order

import (
	"context"

	"github.com/stagepass/settlement/internal/domain/charge"
)

// Repository is the engine's narrow contract with the order store
type Repository interface {
	GetByID(ctx context.Context, id string) (*Order, error)

	// AttachCharge records the provider charge created for this order along
	// with the resolved pattern and whether the requested split was honored.
	AttachCharge(ctx context.Context, id, providerChargeID string, pattern charge.Pattern, splitHonored bool) error

	// MarkSettled finalizes the order with the confirming notification id and
	// the amount the provider actually captured.
	MarkSettled(ctx context.Context, id, eventID string, capturedAmountCents int64) error

	// MarkFailed records a terminal payment failure reported by the provider
	MarkFailed(ctx context.Context, id, reason string) error
}

// ErrOrderNotFound indicates missing order
type ErrOrderNotFound struct {
	OrderID string
}

func (e ErrOrderNotFound) Error() string {
	return "order not found: " + e.OrderID
}

// Is implements the errors.Is interface for ErrOrderNotFound
func (e ErrOrderNotFound) Is(target error) bool {
	t, ok := target.(ErrOrderNotFound)
	if !ok {
		return false
	}
	return t.OrderID == "" || e.OrderID == t.OrderID
}
