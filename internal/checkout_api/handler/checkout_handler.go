package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stagepass/settlement/internal/checkout_api/middleware"
	"github.com/stagepass/settlement/internal/checkout_api/service"
	"github.com/stagepass/settlement/internal/domain/charge"
	"github.com/stagepass/settlement/internal/domain/money"
	"github.com/stagepass/settlement/internal/domain/order"
	"github.com/stagepass/settlement/internal/provider"
)

// CheckoutHandler handles HTTP requests for checkout and debt operations
type CheckoutHandler struct {
	checkoutService service.CheckoutService
	logger          *slog.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(logger *slog.Logger, checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		logger:          logger,
	}
}

// Create starts payment for an order by creating a provider charge
func (h *CheckoutHandler) Create(c *gin.Context) {
	var req CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		h.logger.Error("Invalid owner ID", "owner_id", req.OwnerID, "error", err)
		RespondBadRequest(c, "Invalid owner ID")
		return
	}

	gross, err := money.New(req.GrossAmountCents)
	if err != nil {
		RespondBadRequest(c, "Invalid gross amount")
		return
	}
	fee, err := money.New(req.NominalFeeCents)
	if err != nil {
		RespondBadRequest(c, "Invalid nominal fee")
		return
	}

	chargeContext, err := charge.ParseContext(req.Context)
	if err != nil {
		RespondBadRequest(c, "Invalid charge context")
		return
	}
	pattern, err := charge.ParsePattern(req.Pattern)
	if err != nil {
		RespondBadRequest(c, "Invalid charge pattern")
		return
	}

	input := &service.CheckoutInput{
		OrderID:            req.OrderID,
		OrderNumber:        req.OrderNumber,
		OwnerID:            ownerID,
		Context:            chargeContext,
		Pattern:            pattern,
		GrossAmountCents:   gross,
		NominalFeeCents:    fee,
		Currency:           req.Currency,
		ConnectedAccountID: req.ConnectedAccountID,
		AttemptToken:       req.AttemptToken,
		Metadata:           req.Metadata,
		CorrelationID:      middleware.GetCorrelationID(c),
	}

	result, err := h.checkoutService.CreateCheckout(c.Request.Context(), input)
	if err != nil {
		h.respondCheckoutError(c, req.OrderID, err)
		return
	}

	RespondCreated(c, CheckoutResponse{
		OrderID:               req.OrderID,
		ChargeID:              result.ChargeID,
		ClientSecret:          result.ClientSecret,
		ChargePattern:         string(result.Pattern),
		SplitHonored:          result.SplitHonored,
		SettlementCents:       result.SettlementCents,
		TotalPlatformFeeCents: result.TotalPlatformFeeCents,
	})
}

// GetDebt retrieves an owner's outstanding platform debt
func (h *CheckoutHandler) GetDebt(c *gin.Context) {
	ownerIDParam := c.Param("ownerId")
	ownerID, err := uuid.Parse(ownerIDParam)
	if err != nil {
		h.logger.Error("Invalid owner ID", "owner_id", ownerIDParam, "error", err)
		RespondBadRequest(c, "Invalid owner ID")
		return
	}

	record, err := h.checkoutService.GetDebtByOwner(c.Request.Context(), ownerID)
	if err != nil {
		h.logger.Error("Failed to get debt record", "owner_id", ownerIDParam, "error", err)
		RespondInternalError(c)
		return
	}

	response := DebtResponse{
		OwnerID:            record.OwnerID.String(),
		RemainingDebtCents: record.RemainingDebtCents,
	}
	if !record.UpdatedAt.IsZero() {
		response.UpdatedAt = record.UpdatedAt.Format(time.RFC3339)
	}
	RespondOK(c, response)
}

// respondCheckoutError maps checkout failures onto the API's error surface:
// configuration problems are the caller's fault, provider declines pass
// through as 402, and everything else is an upstream failure.
func (h *CheckoutHandler) respondCheckoutError(c *gin.Context, orderID string, err error) {
	var rejection provider.RejectionError
	switch {
	case errors.Is(err, order.ErrOrderNotFound{}):
		RespondNotFound(c, "Order not found")
	case charge.IsConfigurationError(err):
		h.logger.Error("Checkout rejected by configuration", "order_id", orderID, "error", err)
		RespondBadRequest(c, err.Error())
	case errors.Is(err, money.ErrUnsupportedCurrency):
		RespondBadRequest(c, err.Error())
	case errors.As(err, &rejection):
		RespondPaymentRequired(c, rejection.Reason)
	default:
		h.logger.Error("Checkout failed", "order_id", orderID, "error", err)
		RespondServiceUnavailable(c, "")
	}
}
