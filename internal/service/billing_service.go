package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"leanvote/internal/entitlement"
	"leanvote/internal/middleware"
	"leanvote/internal/models"
	"leanvote/internal/observability"
	"leanvote/internal/repository"

	stripe "github.com/stripe/stripe-go/v79"
	portalsession "github.com/stripe/stripe-go/v79/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
)

// BillingService bridges the payment provider and the entitlement fields on
// the profile. Webhook application is idempotent: every event is recorded as
// an append-only purchase row keyed by the provider event ID, and a replayed
// event mutates nothing.
type BillingService struct {
	userRepo     repository.UserRepository
	purchaseRepo repository.PurchaseRepository
	projectRepo  repository.ProjectRepository

	successURL string
	cancelURL  string
	returnURL  string
}

// BillingURLs carries the redirect targets for hosted checkout and portal pages.
type BillingURLs struct {
	SuccessURL string
	CancelURL  string
	PortalURL  string
}

func NewBillingService(
	userRepo repository.UserRepository,
	purchaseRepo repository.PurchaseRepository,
	projectRepo repository.ProjectRepository,
	urls BillingURLs,
) *BillingService {
	return &BillingService{
		userRepo:     userRepo,
		purchaseRepo: purchaseRepo,
		projectRepo:  projectRepo,
		successURL:   urls.SuccessURL,
		cancelURL:    urls.CancelURL,
		returnURL:    urls.PortalURL,
	}
}

// boardCountMetadataKey stamps the purchased board count onto checkout and
// subscription objects so webhook events can write it back as ProjectLimit.
const boardCountMetadataKey = "board_count"

// CreateCheckoutSession starts a hosted subscription checkout priced off the
// caller's current board count.
func (s *BillingService) CreateCheckoutSession(ctx context.Context, userID uint) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if !user.IsAdmin() {
		return "", models.NewForbiddenError("Only board owners can subscribe")
	}
	if user.HasLifetimeAccess {
		return "", models.NewValidationError("Account already has lifetime access")
	}

	count, err := s.projectRepo.CountByOwner(ctx, userID)
	if err != nil {
		return "", err
	}
	if count < 1 {
		count = 1
	}
	price := entitlement.SubscriptionPriceFor(int(count))

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:        stripe.String(s.successURL),
		CancelURL:         stripe.String(s.cancelURL),
		ClientReferenceID: stripe.String(strconv.FormatUint(uint64(user.ID), 10)),
		CustomerEmail:     stripe.String(user.Email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					UnitAmount: stripe.Int64(price.TotalCents()),
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String(string(stripe.PriceRecurringIntervalMonth)),
					},
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Feedback boards (%d)", count)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				boardCountMetadataKey: strconv.FormatInt(count, 10),
			},
		},
	}
	params.AddMetadata(boardCountMetadataKey, strconv.FormatInt(count, 10))
	if user.StripeCustomerID != "" {
		params.Customer = stripe.String(user.StripeCustomerID)
		params.CustomerEmail = nil
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return sess.URL, nil
}

// CreatePortalSession opens the provider's self-service billing portal.
func (s *BillingService) CreatePortalSession(ctx context.Context, userID uint) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.StripeCustomerID == "" {
		return "", models.NewValidationError("No billing profile on file. Subscribe first")
	}

	sess, err := portalsession.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(user.StripeCustomerID),
		ReturnURL: stripe.String(s.returnURL),
	})
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return sess.URL, nil
}

// ApplyEvent processes one verified provider event. The purchase row is
// written before any profile mutation so a crash between the two leaves a
// replayable gap rather than a double-application.
func (s *BillingService) ApplyEvent(ctx context.Context, event stripe.Event) error {
	eventType := string(event.Type)

	user, purchase, err := s.resolveEvent(ctx, event)
	if err != nil {
		observability.WebhookEvents.WithLabelValues(eventType, "error").Inc()
		return err
	}
	if user == nil {
		// Events for customers we do not track are acknowledged and dropped.
		observability.WebhookEvents.WithLabelValues(eventType, "ignored").Inc()
		middleware.Logger.WarnContext(ctx, "Webhook event for unknown customer",
			slog.String("event_type", eventType), slog.String("event_id", event.ID))
		return nil
	}

	purchase.UserID = user.ID
	inserted, err := s.purchaseRepo.Record(ctx, purchase)
	if err != nil {
		observability.WebhookEvents.WithLabelValues(eventType, "error").Inc()
		return err
	}
	if !inserted {
		observability.WebhookEvents.WithLabelValues(eventType, "duplicate").Inc()
		return nil
	}

	if err := s.applyEntitlement(ctx, user, event); err != nil {
		observability.WebhookEvents.WithLabelValues(eventType, "error").Inc()
		return err
	}

	observability.WebhookEvents.WithLabelValues(eventType, "applied").Inc()
	middleware.Logger.InfoContext(ctx, "Webhook event applied",
		slog.String("event_type", eventType),
		slog.String("event_id", event.ID),
		slog.Any("user_id", user.ID))
	return nil
}

// resolveEvent extracts the affected user and the purchase audit row from the
// raw event payload.
func (s *BillingService) resolveEvent(ctx context.Context, event stripe.Event) (*models.User, *models.Purchase, error) {
	purchase := &models.Purchase{
		Provider:        models.BillingProviderStripe,
		ProviderEventID: event.ID,
		EventType:       string(event.Type),
	}

	switch string(event.Type) {
	case models.PurchaseEventCheckoutCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, nil, models.NewValidationError("Malformed checkout session payload")
		}
		if sess.Customer != nil {
			purchase.CustomerID = sess.Customer.ID
		}
		if sess.Subscription != nil {
			purchase.SubscriptionID = sess.Subscription.ID
		}
		purchase.AmountCents = sess.AmountTotal
		purchase.Currency = string(sess.Currency)

		user, err := s.userFromCheckout(ctx, &sess)
		return user, purchase, err

	case models.PurchaseEventSubscriptionCreated,
		models.PurchaseEventSubscriptionUpdated,
		models.PurchaseEventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, nil, models.NewValidationError("Malformed subscription payload")
		}
		purchase.SubscriptionID = sub.ID
		if sub.Customer != nil {
			purchase.CustomerID = sub.Customer.ID
		}
		user, err := s.userFromCustomer(ctx, purchase.CustomerID, sub.ID)
		return user, purchase, err

	case models.PurchaseEventInvoicePaid, models.PurchaseEventInvoiceFailed:
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return nil, nil, models.NewValidationError("Malformed invoice payload")
		}
		if inv.Customer != nil {
			purchase.CustomerID = inv.Customer.ID
		}
		if inv.Subscription != nil {
			purchase.SubscriptionID = inv.Subscription.ID
		}
		purchase.AmountCents = inv.AmountPaid
		purchase.Currency = string(inv.Currency)
		user, err := s.userFromCustomer(ctx, purchase.CustomerID, purchase.SubscriptionID)
		return user, purchase, err

	case models.PurchaseEventChargeRefunded:
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return nil, nil, models.NewValidationError("Malformed charge payload")
		}
		if charge.Customer != nil {
			purchase.CustomerID = charge.Customer.ID
		}
		purchase.AmountCents = -charge.AmountRefunded
		purchase.Currency = string(charge.Currency)
		user, err := s.userFromCustomer(ctx, purchase.CustomerID, "")
		return user, purchase, err
	}

	// Unhandled event types are not errors; the provider retries on non-2xx.
	return nil, purchase, nil
}

func (s *BillingService) userFromCheckout(ctx context.Context, sess *stripe.CheckoutSession) (*models.User, error) {
	if sess.ClientReferenceID != "" {
		if id, err := strconv.ParseUint(sess.ClientReferenceID, 10, 32); err == nil {
			user, err := s.userRepo.GetByID(ctx, uint(id))
			if err == nil {
				return user, nil
			}
		}
	}
	if sess.Customer != nil {
		return s.userRepo.GetByStripeCustomerID(ctx, sess.Customer.ID)
	}
	return nil, nil
}

func (s *BillingService) userFromCustomer(ctx context.Context, customerID, subscriptionID string) (*models.User, error) {
	if customerID != "" {
		user, err := s.userRepo.GetByStripeCustomerID(ctx, customerID)
		if err != nil || user != nil {
			return user, err
		}
	}
	if subscriptionID != "" {
		return s.userRepo.GetByStripeSubscriptionID(ctx, subscriptionID)
	}
	return nil, nil
}

// applyEntitlement mutates the profile's billing fields for one new event.
func (s *BillingService) applyEntitlement(ctx context.Context, user *models.User, event stripe.Event) error {
	switch string(event.Type) {
	case models.PurchaseEventCheckoutCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return models.NewValidationError("Malformed checkout session payload")
		}
		if sess.Customer != nil {
			user.StripeCustomerID = sess.Customer.ID
		}
		switch sess.Mode {
		case stripe.CheckoutSessionModePayment:
			// One-time purchase grants lifetime access.
			user.HasLifetimeAccess = true
		case stripe.CheckoutSessionModeSubscription:
			if sess.Subscription != nil {
				user.StripeSubscriptionID = sess.Subscription.ID
			}
			user.SubscriptionStatus = models.SubscriptionStatusActive
			if n := purchasedBoardCount(sess.Metadata); n > 0 {
				user.ProjectLimit = n
			}
		}

	case models.PurchaseEventSubscriptionCreated, models.PurchaseEventSubscriptionUpdated:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return models.NewValidationError("Malformed subscription payload")
		}
		user.StripeSubscriptionID = sub.ID
		if sub.Customer != nil {
			user.StripeCustomerID = sub.Customer.ID
		}
		user.SubscriptionStatus = mapSubscriptionStatus(sub.Status)
		if sub.CurrentPeriodEnd > 0 {
			periodEnd := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
			user.SubscriptionCurrentPeriodEnd = &periodEnd
		}
		if n := purchasedBoardCount(sub.Metadata); n > 0 {
			user.ProjectLimit = n
		}

	case models.PurchaseEventSubscriptionDeleted:
		user.SubscriptionStatus = models.SubscriptionStatusCanceled
		user.SubscriptionCurrentPeriodEnd = nil

	case models.PurchaseEventInvoicePaid:
		user.SubscriptionStatus = models.SubscriptionStatusActive

	case models.PurchaseEventInvoiceFailed:
		user.SubscriptionStatus = models.SubscriptionStatusPastDue

	case models.PurchaseEventChargeRefunded:
		// A refunded one-time charge revokes lifetime access.
		user.HasLifetimeAccess = false
	}

	return s.userRepo.Update(ctx, user)
}

// purchasedBoardCount reads the board count stamped on checkout metadata.
// Zero means the event carries no usable count and the stored limit stands.
func purchasedBoardCount(meta map[string]string) int {
	n, err := strconv.Atoi(meta[boardCountMetadataKey])
	if err != nil || n < 1 {
		return 0
	}
	return n
}

func mapSubscriptionStatus(status stripe.SubscriptionStatus) string {
	switch status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return models.SubscriptionStatusActive
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		return models.SubscriptionStatusPastDue
	default:
		return models.SubscriptionStatusCanceled
	}
}
