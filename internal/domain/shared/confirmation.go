package shared

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stagepass/settlement/internal/domain/webhookevent"
)

var (
	ErrMissingEventID = errors.New("confirmation is missing the provider event id")
	ErrMissingOrderID = errors.New("confirmation is missing the related order id")
	ErrInvalidAmount  = errors.New("confirmation amounts must not be negative")
)

// IsValidationError reports whether err marks a confirmation as malformed.
// These never heal on retry; the consumer routes them to the DLQ instead of
// blocking the partition.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingEventID) ||
		errors.Is(err, ErrMissingOrderID) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, webhookevent.ErrInvalidProvider)
}

// SettlementConfirmation is the Kafka message the checkout API publishes once
// a provider notification has passed the dedup gate. The settlement worker
// consumes it to decrement organizer debt and finalize the order.
type SettlementConfirmation struct {
	EventID             string                `json:"event_id"`
	Provider            webhookevent.Provider `json:"provider"`
	EventType           string                `json:"event_type"`
	OrderID             string                `json:"order_id"`
	OwnerID             uuid.UUID             `json:"owner_id"`
	SettlementCents     int64                 `json:"settlement_cents"`      // Stored in cents/minor units
	CapturedAmountCents int64                 `json:"captured_amount_cents"` // What the provider actually captured
	CorrelationID       string                `json:"correlation_id"`
	RecordedAt          time.Time             `json:"recorded_at"`
}

// Validate checks the message carries everything the worker needs. Amount
// bounds are defensive; well-formed notifications never trip them.
func (c *SettlementConfirmation) Validate() error {
	if c.EventID == "" {
		return ErrMissingEventID
	}
	if c.OrderID == "" {
		return ErrMissingOrderID
	}
	if c.SettlementCents < 0 || c.CapturedAmountCents < 0 {
		return ErrInvalidAmount
	}
	if _, err := webhookevent.ParseProvider(string(c.Provider)); err != nil {
		return err
	}
	return nil
}

// CollectedSettlementCents is the settlement amount actually collected: the
// requested skim bounded by what the provider captured. Partial captures
// settle debt conservatively, never speculatively.
func (c *SettlementConfirmation) CollectedSettlementCents() int64 {
	if c.SettlementCents <= c.CapturedAmountCents {
		return c.SettlementCents
	}
	return c.CapturedAmountCents
}
