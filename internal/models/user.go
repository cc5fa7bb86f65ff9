// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// UserType distinguishes board-owning admins from plain voters.
type UserType string

const (
	// UserTypeVoter can vote and comment but never manages a board.
	UserTypeVoter UserType = "voter"
	// UserTypeAdmin owns boards and is subject to entitlement checks.
	UserTypeAdmin UserType = "admin"
)

// SubscriptionStatus values mirror the payment provider's subscription states.
const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
)

// User represents an authenticated profile. Billing fields are mutated only by
// onboarding, settings edits, and webhook-driven entitlement updates.
type User struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	Username string   `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email    string   `gorm:"size:200;not null;uniqueIndex" json:"email"`
	Password string   `gorm:"size:100" json:"-"`
	UserType UserType `gorm:"type:varchar(10);not null;default:'voter';index" json:"user_type"`

	// BoardSlug mirrors the default project's slug. It is maintained by an
	// explicit write-through in the project service, never by a DB trigger.
	BoardSlug string `gorm:"size:50;index" json:"board_slug"`

	TrialEndsAt                  *time.Time `json:"trial_ends_at,omitempty"`
	HasLifetimeAccess            bool       `gorm:"default:false" json:"has_lifetime_access"`
	SubscriptionStatus           string     `gorm:"size:20" json:"subscription_status"`
	SubscriptionCurrentPeriodEnd *time.Time `json:"subscription_current_period_end,omitempty"`
	ProjectLimit                 int        `gorm:"default:1" json:"project_limit"`

	StripeCustomerID     string `gorm:"size:191;index" json:"-"`
	StripeSubscriptionID string `gorm:"size:191;index" json:"-"`

	GoogleID string `gorm:"size:191;index" json:"-"`

	OnboardedAt *time.Time     `json:"onboarded_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsAdmin reports whether the profile is evaluated for board-management entitlement.
func (u *User) IsAdmin() bool {
	return u.UserType == UserTypeAdmin
}
