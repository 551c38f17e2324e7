package handlers

import (
	"net/http"

	portssvc "github.com/foyerhq/foyer-backend/internal/core/ports/services"
	"github.com/foyerhq/foyer-backend/internal/dto"
	"github.com/foyerhq/foyer-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// webhookHandler receives payment-provider callbacks.
type webhookHandler struct {
	paymentService portssvc.PaymentSvcFacade
}

// newWebhookHandler creates a new webhookHandler.
func newWebhookHandler(paymentService portssvc.PaymentSvcFacade) *webhookHandler {
	return &webhookHandler{paymentService: paymentService}
}

// topUpOutcome godoc
// @Summary Record the outcome of an external top-up
// @Description The provider has already verified the payment; this endpoint only records the outcome against the pending entry.
// @Tags webhooks
// @Accept json
// @Produce json
// @Param event body dto.WebhookTopUpEvent true "Top-up outcome"
// @Success 204
// @Failure 404 {object} map[string]string "Unknown external reference"
// @Failure 409 {object} map[string]string "Top-up already settled"
// @Router /webhooks/topup [post]
func (h *webhookHandler) topUpOutcome(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var event dto.WebhookTopUpEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	var err error
	if event.Outcome == "confirmed" {
		err = h.paymentService.ConfirmTopUp(c.Request.Context(), event.ExternalRef)
	} else {
		err = h.paymentService.FailTopUp(c.Request.Context(), event.ExternalRef, event.Reason)
	}
	if err != nil {
		respondServiceError(c, logger, err, "Failed to record top-up outcome")
		return
	}
	c.Status(http.StatusNoContent)
}

// registerWebhookRoutes registers webhook specific routes
func registerWebhookRoutes(group *gin.RouterGroup, paymentService portssvc.PaymentSvcFacade) {
	h := newWebhookHandler(paymentService)
	group.POST("/topup", h.topUpOutcome)
}
