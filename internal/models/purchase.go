package models

import "time"

// Billing provider constants used across billing-related models.
const (
	BillingProviderStripe = "stripe"
)

// Purchase event kinds recorded from provider webhooks.
const (
	PurchaseEventCheckoutCompleted   = "checkout.session.completed"
	PurchaseEventSubscriptionCreated = "customer.subscription.created"
	PurchaseEventSubscriptionUpdated = "customer.subscription.updated"
	PurchaseEventSubscriptionDeleted = "customer.subscription.deleted"
	PurchaseEventInvoicePaid         = "invoice.payment_succeeded"
	PurchaseEventInvoiceFailed       = "invoice.payment_failed"
	PurchaseEventChargeRefunded      = "charge.refunded"
)

// Purchase is an append-only audit record of payment provider events. The
// unique ProviderEventID makes webhook application idempotent: a replayed
// event inserts nothing and mutates nothing.
type Purchase struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	UserID          uint   `gorm:"not null;index" json:"user_id"`
	Provider        string `gorm:"type:varchar(20);not null;default:'stripe'" json:"provider"`
	ProviderEventID string `gorm:"size:191;not null;uniqueIndex" json:"provider_event_id"`
	EventType       string `gorm:"size:60;not null;index" json:"event_type"`

	CustomerID     string `gorm:"size:191;index" json:"customer_id"`
	SubscriptionID string `gorm:"size:191;index" json:"subscription_id"`
	AmountCents    int64  `json:"amount_cents"`
	Currency       string `gorm:"size:10" json:"currency"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Purchase) TableName() string {
	return "purchases"
}
