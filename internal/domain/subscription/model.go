package subscription

import (
	"time"

	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
)

// Subscription is the paid-tier state of a tenant owner. Exactly two writers
// mutate it: payment confirmation (activation) and the expiry sweeper
// (demotion). Both go through versioned updates so they cannot race on the
// same record.
type Subscription struct {
	ID      string `json:"id" db:"id"`
	OwnerID string `json:"owner_id" db:"owner_id"`

	PackageStatus      types.PackageStatus      `json:"package_status" db:"package_status"`
	SubscriptionStatus types.SubscriptionStatus `json:"subscription_status" db:"subscription_status"`

	CurrentPeriodStart *time.Time `json:"current_period_start,omitempty" db:"current_period_start"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty" db:"current_period_end"`

	Version int `json:"version" db:"version"`

	types.BaseModel
}

// IsExpired reports whether a paid period has lapsed as of now
func (s *Subscription) IsExpired(now time.Time) bool {
	return s.PackageStatus.IsPaid() &&
		s.CurrentPeriodEnd != nil &&
		!s.CurrentPeriodEnd.After(now)
}

// Demote resets the record to the free tier and clears the period bounds
func (s *Subscription) Demote() {
	s.PackageStatus = types.PackageStatusFree
	s.SubscriptionStatus = types.SubscriptionStatusInactive
	s.CurrentPeriodStart = nil
	s.CurrentPeriodEnd = nil
}

func (s *Subscription) Validate() error {
	if s.OwnerID == "" {
		return ierr.NewError("missing owner id").
			WithHint("Subscription owner is required").
			Mark(ierr.ErrValidation)
	}
	if err := s.PackageStatus.Validate(); err != nil {
		return err
	}
	if s.CurrentPeriodStart != nil && s.CurrentPeriodEnd != nil &&
		s.CurrentPeriodEnd.Before(*s.CurrentPeriodStart) {
		return ierr.NewError("invalid subscription period").
			WithHint("Period end must be after period start").
			Mark(ierr.ErrValidation)
	}
	return nil
}
