package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stagepass/settlement/internal/domain/order"
	"github.com/stagepass/settlement/internal/domain/shared"
	"github.com/stagepass/settlement/internal/platform/messaging/producers"
	"github.com/stagepass/settlement/internal/settlement_worker/service"
)

// ConfirmationHandler handles incoming settlement confirmation messages from Kafka
type ConfirmationHandler struct {
	applyService service.ApplyService
	producer     producers.DeadLetterPublisher
	logger       *slog.Logger
}

// NewConfirmationHandler creates a new handler
func NewConfirmationHandler(
	logger *slog.Logger,
	applyService service.ApplyService,
	producer producers.DeadLetterPublisher,
) *ConfirmationHandler {
	return &ConfirmationHandler{
		applyService: applyService,
		producer:     producer,
		logger:       logger,
	}
}

// HandleMessage processes Kafka messages. Malformed messages and confirmations
// for unknown orders go to the DLQ and are committed; transient failures are
// returned uncommitted so Kafka redelivers them.
func (h *ConfirmationHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var confirmation shared.SettlementConfirmation
	if err := json.Unmarshal(value, &confirmation); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal settlement confirmation from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		// Send to DLQ if available
		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
				// Return original error if DLQ fails
			} else {
				h.logger.Info("Successfully published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	// Add correlation ID to logger
	logger := h.logger
	if confirmation.CorrelationID != "" {
		logger = h.logger.With("correlation_id", confirmation.CorrelationID)
	}

	logger.Info("Received settlement confirmation for processing",
		"event_id", confirmation.EventID,
		"order_id", confirmation.OrderID,
		"settlement_cents", confirmation.SettlementCents,
	)

	if err := h.applyService.ApplyConfirmation(ctx, &confirmation); err != nil {
		if h.isPermanent(err) {
			logger.Error("Confirmation permanently unprocessable, routing to DLQ",
				"event_id", confirmation.EventID,
				"order_id", confirmation.OrderID,
				"error", err,
			)
			if h.producer != nil {
				if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, err.Error()); dlqErr != nil {
					logger.Error("Failed to publish confirmation to DLQ",
						"dlq_error", dlqErr,
						"original_error", err,
						"event_id", confirmation.EventID,
					)
					return fmt.Errorf("DLQ publish failed for confirmation %s: %w", confirmation.EventID, dlqErr)
				}
				return nil // Dead-lettered, commit offset
			}
			return nil // No DLQ configured; drop rather than block the partition
		}

		logger.Error("Failed to apply confirmation",
			"event_id", confirmation.EventID,
			"order_id", confirmation.OrderID,
			"error", err,
		)
		return fmt.Errorf("applying confirmation %s failed: %w", confirmation.EventID, err)
	}

	logger.Info("Successfully applied confirmation", "event_id", confirmation.EventID)
	return nil // Success, commit offset
}

// isPermanent reports whether retrying this confirmation can ever succeed
func (h *ConfirmationHandler) isPermanent(err error) bool {
	return shared.IsValidationError(err) || errors.Is(err, order.ErrOrderNotFound{})
}
