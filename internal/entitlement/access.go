// Package entitlement derives access decisions and subscription pricing from
// profile snapshots. Everything in this package is pure: no I/O and no clocks,
// callers pass "now" explicitly.
package entitlement

import (
	"math"
	"time"

	"leanvote/internal/models"
)

// DefaultProjectLimit applies when a profile has no explicit limit stored.
const DefaultProjectLimit = 1

// AccessStatus is a point-in-time access decision for board management.
type AccessStatus struct {
	HasAccess             bool `json:"has_access"`
	IsInTrial             bool `json:"is_in_trial"`
	HasLifetimeAccess     bool `json:"has_lifetime_access"`
	HasActiveSubscription bool `json:"has_active_subscription"`
	// DaysRemaining is set only while the trial is the active grant. It can be
	// zero or negative for an expired trial; callers render that as "expired".
	DaysRemaining int `json:"days_remaining"`
	ProjectLimit  int `json:"project_limit"`
}

// Evaluate derives the access decision from a profile snapshot.
//
// Precedence: lifetime access and an active paid subscription each grant
// access unconditionally. The trial grants access only while trial_ends_at is
// in the future AND no stronger grant is set, so a converted customer is never
// double-counted as trialing. Non-admin profiles always resolve to
// HasAccess=false: voters never consume admin entitlement even when billing
// fields happen to be populated.
func Evaluate(profile *models.User, now time.Time) AccessStatus {
	if profile == nil {
		return AccessStatus{ProjectLimit: DefaultProjectLimit}
	}

	status := AccessStatus{ProjectLimit: profile.ProjectLimit}
	if status.ProjectLimit < 1 {
		status.ProjectLimit = DefaultProjectLimit
	}

	if !profile.IsAdmin() {
		return status
	}

	status.HasLifetimeAccess = profile.HasLifetimeAccess
	status.HasActiveSubscription = profile.SubscriptionStatus == models.SubscriptionStatusActive

	if status.HasLifetimeAccess || status.HasActiveSubscription {
		status.HasAccess = true
		return status
	}

	if profile.TrialEndsAt != nil {
		remaining := profile.TrialEndsAt.Sub(now)
		status.DaysRemaining = int(math.Ceil(remaining.Hours() / 24))
		if remaining > 0 {
			status.IsInTrial = true
			status.HasAccess = true
		}
	}

	return status
}
