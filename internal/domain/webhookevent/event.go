// Package webhookevent is the dedup ledger for payment-provider
// notifications. Providers deliver webhooks at least once; the ledger's
// conditional insert is the single serialization point that turns those
// deliveries into exactly-once business effects downstream.
package webhookevent

import (
	"errors"
	"time"
)

var (
	// ErrInvalidProvider indicates a notification from an unrecognized provider
	ErrInvalidProvider = errors.New("unsupported payment provider")
)

// Provider enumerates the payment providers whose notifications we accept
type Provider string

const (
	ProviderStripe Provider = "stripe"
	ProviderAdyen  Provider = "adyen"
)

// ParseProvider maps a wire value onto the closed Provider set
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderStripe:
		return ProviderStripe, nil
	case ProviderAdyen:
		return ProviderAdyen, nil
	default:
		return "", ErrInvalidProvider
	}
}

// RetentionWindow is how long a processed notification id is remembered.
// It must exceed every supported provider's maximum webhook redelivery
// window; both Stripe and Adyen top out well under seven days. Revisit if a
// provider's redelivery SLA changes.
const RetentionWindow = 7 * 24 * time.Hour

// Record marks one provider notification as processed. At most one record
// ever exists for a (provider, event_id) pair; a second insert attempt is the
// signal that the delivery is a retry.
type Record struct {
	EventID        string    `json:"event_id" bson:"event_id"`
	Provider       Provider  `json:"provider" bson:"provider"`
	EventType      string    `json:"event_type" bson:"event_type"`
	ProcessedAt    time.Time `json:"processed_at" bson:"processed_at"`
	ExpiresAt      time.Time `json:"expires_at" bson:"expires_at"`
	RelatedOrderID string    `json:"related_order_id,omitempty" bson:"related_order_id,omitempty"`
}

// NewRecord builds a ledger record stamped at now, expiring after the
// retention window.
func NewRecord(provider Provider, eventID, eventType, relatedOrderID string, now time.Time) *Record {
	return &Record{
		EventID:        eventID,
		Provider:       provider,
		EventType:      eventType,
		ProcessedAt:    now,
		ExpiresAt:      now.Add(RetentionWindow),
		RelatedOrderID: relatedOrderID,
	}
}

// Expired reports whether the record is eligible for eviction. Eviction only
// reclaims ledger space; it never undoes the business effect the record
// guarded.
func (r *Record) Expired(now time.Time) bool {
	return r.ExpiresAt.Before(now)
}
