package server

import (
	"log/slog"

	"leanvote/internal/middleware"
	"leanvote/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v79/webhook"
)

// CreateCheckoutSession handles POST /api/billing/checkout
// @Summary Start a hosted subscription checkout
// @Tags billing
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{url=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /billing/checkout [post]
func (s *Server) CreateCheckoutSession(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	url, err := s.billingService.CreateCheckoutSession(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"url": url})
}

// CreatePortalSession handles POST /api/billing/portal
// @Summary Open the self-service billing portal
// @Tags billing
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{url=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /billing/portal [post]
func (s *Server) CreatePortalSession(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	url, err := s.billingService.CreatePortalSession(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"url": url})
}

// StripeWebhook handles POST /api/billing/webhook
// @Summary Payment provider webhook sink
// @Description Verifies the event signature and applies entitlement changes idempotently
// @Tags billing
// @Accept json
// @Produce json
// @Success 200 {object} object{received=bool}
// @Failure 400 {object} models.ErrorResponse
// @Router /billing/webhook [post]
func (s *Server) StripeWebhook(c *fiber.Ctx) error {
	if s.config.StripeWebhookSecret == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Webhook signing secret is not configured"))
	}

	event, err := webhook.ConstructEvent(c.Body(), c.Get("Stripe-Signature"), s.config.StripeWebhookSecret)
	if err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "Webhook signature verification failed",
			slog.String("error", err.Error()))
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid webhook signature"))
	}

	// A non-2xx response makes the provider retry, so only transient failures
	// may error out here. Unknown customers and replays return 200.
	if err := s.billingService.ApplyEvent(c.UserContext(), event); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"received": true})
}
