package checkout_api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stagepass/settlement/internal/checkout_api/handler"
	"github.com/stagepass/settlement/internal/checkout_api/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	checkoutHandler *handler.CheckoutHandler,
	webhookHandler *handler.WebhookHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Checkout operations
		v1.POST("/checkouts", checkoutHandler.Create)

		// Provider notifications
		v1.POST("/webhooks/:provider", webhookHandler.Receive)

		// Debt ledger reads
		v1.GET("/debts/:ownerId", checkoutHandler.GetDebt)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
