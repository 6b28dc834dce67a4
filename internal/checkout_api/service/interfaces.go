package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stagepass/settlement/internal/domain/charge"
	"github.com/stagepass/settlement/internal/domain/debt"
	"github.com/stagepass/settlement/internal/domain/money"
	"github.com/stagepass/settlement/internal/domain/webhookevent"
)

// CheckoutInput is a validated checkout attempt as the handler hands it over
type CheckoutInput struct {
	OrderID            string
	OrderNumber        string
	OwnerID            uuid.UUID
	Context            charge.Context
	Pattern            charge.Pattern
	GrossAmountCents   money.Amount
	NominalFeeCents    money.Amount
	Currency           string
	ConnectedAccountID string
	AttemptToken       string
	Metadata           map[string]string
	CorrelationID      string
}

// CheckoutResult is what the checkout UI needs to finish the payment
type CheckoutResult struct {
	ChargeID              string
	ClientSecret          string
	Pattern               charge.Pattern
	SplitHonored          bool
	SettlementCents       int64
	TotalPlatformFeeCents int64
}

// Notification is a provider webhook event reduced to the fields the
// settlement engine reads
type Notification struct {
	EventID             string
	EventType           string
	CapturedAmountCents int64
	FailureMessage      string
	Metadata            map[string]string
	CorrelationID       string
}

// CheckoutService defines the interface for checkout operations
type CheckoutService interface {
	// CreateCheckout builds and creates the provider charge for an order.
	// Returns order.ErrOrderNotFound for unknown orders, a charge
	// configuration error for rejected inputs, and provider.RejectionError
	// when the provider declines the charge.
	CreateCheckout(ctx context.Context, input *CheckoutInput) (*CheckoutResult, error)

	// GetDebtByOwner returns the owner's current debt record
	GetDebtByOwner(ctx context.Context, ownerID uuid.UUID) (*debt.Record, error)
}

// WebhookService defines the interface for provider notification processing
type WebhookService interface {
	// ProcessNotification runs a notification through the dedup gate and, for
	// settlement-relevant events, publishes a confirmation for the worker.
	// duplicate=true means the notification was already processed and nothing
	// new happened.
	ProcessNotification(ctx context.Context, provider webhookevent.Provider, notification *Notification) (duplicate bool, err error)
}
