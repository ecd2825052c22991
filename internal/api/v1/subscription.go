package v1

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/renderbase/renderbase/internal/billing"
	ierr "github.com/renderbase/renderbase/internal/errors"
	"github.com/renderbase/renderbase/internal/logger"
	"github.com/renderbase/renderbase/internal/service"
	"github.com/renderbase/renderbase/internal/types"
)

type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
	webhookService      *billing.WebhookService
	logger              *logger.Logger
}

func NewSubscriptionHandler(
	subscriptionService service.SubscriptionService,
	webhookService *billing.WebhookService,
	logger *logger.Logger,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		webhookService:      webhookService,
		logger:              logger,
	}
}

// HandleWebhook godoc
// @Summary Process a billing webhook
// @Description Verify and reconcile an inbound Stripe subscription event
// @Tags Subscription
// @Accept json
// @Produce json
// @Success 200 {object} dto.ProcessBillingEventResponse
// @Router /webhooks/billing [post]
func (h *SubscriptionHandler) HandleWebhook(c *gin.Context) {
	ctx := c.Request.Context()

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Failed to read webhook payload").
			Mark(ierr.ErrValidation))
		return
	}

	event, err := h.webhookService.ParseEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		c.Error(err)
		return
	}

	if !billing.IsSubscriptionEvent(event) {
		h.logger.Debugw("ignoring non-subscription webhook event",
			"event_type", event.Type,
		)
		c.JSON(http.StatusOK, gin.H{"ignored": true})
		return
	}

	billingEvent, err := h.webhookService.ToBillingEvent(event)
	if err != nil {
		c.Error(err)
		return
	}

	resp, err := h.subscriptionService.ProcessBillingEvent(ctx, billingEvent)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetSubscription godoc
// @Summary Get a subscription
// @Tags Subscription
// @Produce json
// @Param id path string true "Subscription ID"
// @Success 200 {object} dto.SubscriptionResponse
// @Router /subscriptions/{id} [get]
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	resp, err := h.subscriptionService.GetSubscription(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListSubscriptions godoc
// @Summary List subscriptions
// @Tags Subscription
// @Produce json
// @Success 200 {array} dto.SubscriptionResponse
// @Router /subscriptions [get]
func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	var filter types.SubscriptionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid subscription filter").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.subscriptionService.ListSubscriptions(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
