package subscription

import (
	"context"

	"github.com/billforge/billforge/internal/types"
)

// Repository defines the interface for subscription data access.
// Update is conditional on Subscription.Version and must return
// ierr.ErrVersionConflict when the row has moved on.
type Repository interface {
	Create(ctx context.Context, s *Subscription) error
	Get(ctx context.Context, id string) (*Subscription, error)
	GetByOwner(ctx context.Context, ownerID string) (*Subscription, error)
	Update(ctx context.Context, s *Subscription) error
	List(ctx context.Context, filter *types.SubscriptionFilter) ([]*Subscription, error)

	// ListExpiring returns paid-tier subscriptions whose period end is at or
	// before the given time. The selection filter is what makes the sweep
	// idempotent: demoted records no longer match.
	ListExpiring(ctx context.Context, filter *types.SubscriptionFilter) ([]*Subscription, error)
}
