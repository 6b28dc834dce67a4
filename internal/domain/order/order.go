// Package order exposes the slice of the external order/document store that
// the settlement engine touches: reading an order to construct a charge,
// attaching the provider charge to it, and finalizing it once a confirmation
// has cleared the dedup gate. Everything else about orders belongs to the
// storefront and stays out of this engine.
package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/stagepass/settlement/internal/domain/charge"
)

// Status defines the payment-facing order states this engine transitions
type Status string

const (
	StatusPending        Status = "PENDING"
	StatusPaymentPending Status = "PAYMENT_PENDING"
	StatusSettled        Status = "SETTLED"
	StatusFailed         Status = "FAILED"
)

// Order is the document-store record, keyed by the storefront-assigned id
type Order struct {
	ID                 string         `json:"id" bson:"_id"`
	OrderNumber        string         `json:"order_number" bson:"order_number"`
	OwnerID            uuid.UUID      `json:"owner_id" bson:"owner_id"`
	Status             Status         `json:"status" bson:"status"`
	GrossAmountCents   int64          `json:"gross_amount_cents" bson:"gross_amount_cents"` // Stored in cents/minor units
	ProviderChargeID   string         `json:"provider_charge_id,omitempty" bson:"provider_charge_id,omitempty"`
	ChargePattern      charge.Pattern `json:"charge_pattern,omitempty" bson:"charge_pattern,omitempty"`
	SplitHonored       bool           `json:"split_honored" bson:"split_honored"`
	SettledEventID     string         `json:"settled_event_id,omitempty" bson:"settled_event_id,omitempty"`
	SettledAmountCents int64          `json:"settled_amount_cents,omitempty" bson:"settled_amount_cents,omitempty"`
	FailureReason      string         `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`
	CreatedAt          time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at" bson:"updated_at"`
}

// SettledBy reports whether this order was already finalized by the given
// notification. The settlement worker uses it to skip redelivered
// confirmations.
func (o *Order) SettledBy(eventID string) bool {
	return o.Status == StatusSettled && o.SettledEventID == eventID
}
