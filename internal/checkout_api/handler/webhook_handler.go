package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/stagepass/settlement/internal/checkout_api/middleware"
	"github.com/stagepass/settlement/internal/checkout_api/service"
	"github.com/stagepass/settlement/internal/domain/webhookevent"
)

// WebhookHandler receives payment provider notifications
type WebhookHandler struct {
	webhookService service.WebhookService
	logger         *slog.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(logger *slog.Logger, webhookService service.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
		logger:         logger,
	}
}

// Receive handles one provider notification. Anything short of durable
// processing returns a 5xx so the provider redelivers; duplicates are
// acknowledged with 200 because redelivering them again helps nobody.
func (h *WebhookHandler) Receive(c *gin.Context) {
	providerParam := c.Param("provider")
	prov, err := webhookevent.ParseProvider(providerParam)
	if err != nil {
		h.logger.Error("Unknown webhook provider", "provider", providerParam)
		RespondBadRequest(c, "Unknown provider")
		return
	}

	var req WebhookEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid webhook payload", "provider", providerParam, "error", err)
		RespondBadRequest(c, "Invalid webhook payload: "+err.Error())
		return
	}

	notification := &service.Notification{
		EventID:             req.ID,
		EventType:           req.Type,
		CapturedAmountCents: req.Data.Object.AmountCaptured,
		FailureMessage:      req.Data.Object.FailureMessage,
		Metadata:            req.Data.Object.Metadata,
		CorrelationID:       middleware.GetCorrelationID(c),
	}

	duplicate, err := h.webhookService.ProcessNotification(c.Request.Context(), prov, notification)
	if err != nil {
		h.logger.Error("Failed to process notification",
			"provider", providerParam,
			"event_id", req.ID,
			"error", err,
		)
		RespondInternalError(c)
		return
	}

	RespondOK(c, WebhookAckResponse{
		EventID:   req.ID,
		Duplicate: duplicate,
	})
}
