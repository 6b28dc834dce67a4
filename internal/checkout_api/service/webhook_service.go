package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/stagepass/settlement/internal/domain/charge"
	"github.com/stagepass/settlement/internal/domain/order"
	"github.com/stagepass/settlement/internal/domain/shared"
	"github.com/stagepass/settlement/internal/domain/webhookevent"
	"github.com/stagepass/settlement/internal/platform/messaging/producers"
)

// Event types the engine acts on. Everything else is recorded in the dedup
// ledger and acknowledged without further effect.
const (
	EventTypeChargeCaptured  = "charge.captured"
	EventTypeChargeSucceeded = "charge.succeeded"
	EventTypeChargeFailed    = "charge.failed"
)

// WebhookServiceImpl implements the WebhookService interface
type WebhookServiceImpl struct {
	eventRepo webhookevent.Repository
	orderRepo order.Repository
	producer  producers.MessagePublisher
	logger    *slog.Logger
}

// NewWebhookService creates a new webhook service
func NewWebhookService(logger *slog.Logger, eventRepo webhookevent.Repository, orderRepo order.Repository, producer producers.MessagePublisher) WebhookService {
	return &WebhookServiceImpl{
		eventRepo: eventRepo,
		orderRepo: orderRepo,
		producer:  producer,
		logger:    logger,
	}
}

// ProcessNotification handles one provider notification end to end: dedup
// check, then the event's business effect (confirmation publish for
// settlement events, order failure marking for charge failures), then the
// ledger write that marks the notification processed.
//
// The publish happens before the ledger write on purpose. If the write fails
// the provider redelivers and the confirmation is published again; the worker
// deduplicates by event id against the order, so a duplicate message is
// harmless while a recorded-but-unpublished notification would lose the
// settlement forever.
func (s *WebhookServiceImpl) ProcessNotification(ctx context.Context, provider webhookevent.Provider, notification *Notification) (bool, error) {
	recorded, err := s.eventRepo.IsRecorded(ctx, provider, notification.EventID)
	if err != nil {
		return false, err
	}
	if recorded {
		s.logger.Info("Duplicate notification, skipping",
			"provider", string(provider),
			"event_id", notification.EventID,
		)
		return true, nil
	}

	orderID := notification.Metadata[charge.MetadataOrderID]

	switch notification.EventType {
	case EventTypeChargeCaptured, EventTypeChargeSucceeded:
		if err := s.publishConfirmation(ctx, provider, notification, orderID); err != nil {
			return false, err
		}
	case EventTypeChargeFailed:
		if err := s.markOrderFailed(ctx, provider, notification, orderID); err != nil {
			return false, err
		}
	default:
		s.logger.Debug("Ignoring notification type",
			"provider", string(provider),
			"event_type", notification.EventType,
			"event_id", notification.EventID,
		)
	}

	created, err := s.eventRepo.RecordIfNew(ctx, webhookevent.NewRecord(provider, notification.EventID, notification.EventType, orderID, time.Now()))
	if err != nil {
		return false, err
	}
	if !created {
		// Lost the race against a concurrent delivery of the same event.
		return true, nil
	}

	return false, nil
}

// markOrderFailed records a provider-side charge failure on the order. A
// missing order correlation is dropped like on the settlement path; an
// unknown order means the failure belongs to someone else's storefront and
// is not worth blocking the acknowledgement over.
func (s *WebhookServiceImpl) markOrderFailed(ctx context.Context, provider webhookevent.Provider, notification *Notification, orderID string) error {
	if orderID == "" {
		s.logger.Error("Charge failure notification missing order correlation, dropping",
			"provider", string(provider),
			"event_id", notification.EventID,
		)
		return nil
	}

	reason := notification.FailureMessage
	if reason == "" {
		reason = "charge failed at provider"
	}

	if err := s.orderRepo.MarkFailed(ctx, orderID, reason); err != nil {
		if errors.Is(err, order.ErrOrderNotFound{}) {
			s.logger.Error("Charge failure for unknown order, dropping",
				"provider", string(provider),
				"event_id", notification.EventID,
				"order_id", orderID,
			)
			return nil
		}
		return err
	}

	s.logger.Warn("Order marked failed after provider charge failure",
		"provider", string(provider),
		"event_id", notification.EventID,
		"order_id", orderID,
		"reason", reason,
	)
	return nil
}

// publishConfirmation turns a captured-charge notification into a settlement
// confirmation message. Notifications without usable correlation metadata are
// logged and dropped; redelivery cannot repair them.
func (s *WebhookServiceImpl) publishConfirmation(ctx context.Context, provider webhookevent.Provider, notification *Notification, orderID string) error {
	if orderID == "" {
		s.logger.Error("Settlement notification missing order correlation, dropping",
			"provider", string(provider),
			"event_id", notification.EventID,
		)
		return nil
	}

	ownerID, err := uuid.Parse(notification.Metadata[charge.MetadataOwnerID])
	if err != nil {
		s.logger.Error("Settlement notification carries invalid owner id, dropping",
			"provider", string(provider),
			"event_id", notification.EventID,
			"order_id", orderID,
			"error", err,
		)
		return nil
	}

	settlementCents, err := strconv.ParseInt(notification.Metadata[charge.MetadataSettlementCents], 10, 64)
	if err != nil || settlementCents < 0 {
		// No skim was requested on this charge, or the metadata is mangled.
		// Either way there is no settlement to apply, only the order to
		// finalize.
		settlementCents = 0
	}

	confirmation := &shared.SettlementConfirmation{
		EventID:             notification.EventID,
		Provider:            provider,
		EventType:           notification.EventType,
		OrderID:             orderID,
		OwnerID:             ownerID,
		SettlementCents:     settlementCents,
		CapturedAmountCents: notification.CapturedAmountCents,
		CorrelationID:       notification.CorrelationID,
		RecordedAt:          time.Now(),
	}

	// Keyed by order id so confirmations for the same order stay ordered.
	if err := s.producer.Publish(ctx, orderID, confirmation); err != nil {
		s.logger.Error("Failed to publish settlement confirmation",
			"provider", string(provider),
			"event_id", notification.EventID,
			"order_id", orderID,
			"error", err,
		)
		return err
	}

	s.logger.Info("Settlement confirmation published",
		"provider", string(provider),
		"event_id", notification.EventID,
		"order_id", orderID,
		"settlement_cents", settlementCents,
	)
	return nil
}
