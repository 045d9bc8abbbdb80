package dto

import (
	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
)

// ActivateSubscriptionRequest represents the request to activate a paid tier
// for an owner after payment confirmation
type ActivateSubscriptionRequest struct {
	OwnerID       string              `json:"owner_id" validate:"required"`
	PackageStatus types.PackageStatus `json:"package_status" validate:"required"`
	BillingPeriod types.BillingPeriod `json:"billing_period" validate:"required,oneof=MONTHLY YEARLY"`

	// CouponCode, when set, burns one use of the coupon that was quoted
	// into the confirmed charge
	CouponCode *string `json:"coupon_code,omitempty"`
}

// Validate validates the ActivateSubscriptionRequest
func (r *ActivateSubscriptionRequest) Validate() error {
	if r.OwnerID == "" {
		return ierr.NewError("owner_id is required").
			WithHint("Please provide an owner id").
			Mark(ierr.ErrValidation)
	}
	if err := r.PackageStatus.Validate(); err != nil {
		return err
	}
	if !r.PackageStatus.IsPaid() {
		return ierr.NewError("cannot activate the free tier").
			WithHint("Activation requires a paid package").
			Mark(ierr.ErrValidation)
	}
	return r.BillingPeriod.Validate()
}

// SubscriptionResponse represents the response for subscription data
type SubscriptionResponse struct {
	*subscription.Subscription `json:",inline"`
}

// ListSubscriptionsResponse represents the response for listing subscriptions
type ListSubscriptionsResponse = types.ListResponse[*SubscriptionResponse]

// SweepResultItem reports the outcome for one subscription in a sweep run
type SweepResultItem struct {
	SubscriptionID string `json:"subscription_id"`
	OwnerID        string `json:"owner_id"`
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
}

// SweepResponse summarizes a subscription expiry sweep run
type SweepResponse struct {
	TotalProcessed int               `json:"total_processed"`
	TotalSuccess   int               `json:"total_success"`
	TotalFailed    int               `json:"total_failed"`
	Skipped        bool              `json:"skipped"`
	Items          []SweepResultItem `json:"items,omitempty"`
}
