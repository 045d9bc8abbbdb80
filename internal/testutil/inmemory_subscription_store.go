package testutil

import (
	"context"

	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/samber/lo"
)

// InMemorySubscriptionStore implements subscription.Repository
type InMemorySubscriptionStore struct {
	*InMemoryStore[*subscription.Subscription]
}

// NewInMemorySubscriptionStore creates a new in-memory subscription store
func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore[*subscription.Subscription](),
	}
}

func copySubscription(sub *subscription.Subscription) *subscription.Subscription {
	if sub == nil {
		return nil
	}
	copied := *sub
	if sub.CurrentPeriodStart != nil {
		start := *sub.CurrentPeriodStart
		copied.CurrentPeriodStart = &start
	}
	if sub.CurrentPeriodEnd != nil {
		end := *sub.CurrentPeriodEnd
		copied.CurrentPeriodEnd = &end
	}
	return &copied
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil {
		return ierr.NewError("subscription cannot be nil").
			WithHint("Subscription cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, sub.ID, copySubscription(sub))
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || sub.Status == types.StatusDeleted {
		return nil, subscriptionNotFound(id)
	}
	return copySubscription(sub), nil
}

func (s *InMemorySubscriptionStore) GetByOwner(ctx context.Context, ownerID string) (*subscription.Subscription, error) {
	items, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, sub *subscription.Subscription, _ interface{}) bool {
		return sub.Status != types.StatusDeleted && sub.OwnerID == ownerID
	}, nil)
	if err != nil || len(items) == 0 {
		return nil, subscriptionNotFound(ownerID)
	}
	return copySubscription(items[0]), nil
}

// Update is conditional on the version the caller read, mirroring the
// postgres repository semantics.
func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil {
		return ierr.NewError("subscription cannot be nil").
			WithHint("Subscription cannot be nil").
			Mark(ierr.ErrValidation)
	}

	current, err := s.Get(ctx, sub.ID)
	if err != nil {
		return err
	}
	if current.Version != sub.Version {
		return ierr.NewError("subscription was modified concurrently").
			WithHint("Subscription was updated by another request, please retry").
			WithReportableDetails(map[string]any{
				"subscription_id": sub.ID,
				"version":         sub.Version,
			}).
			Mark(ierr.ErrVersionConflict)
	}

	sub.Version++
	return s.InMemoryStore.Update(ctx, sub.ID, copySubscription(sub))
}

func (s *InMemorySubscriptionStore) List(ctx context.Context, filter *types.SubscriptionFilter) ([]*subscription.Subscription, error) {
	items, err := s.InMemoryStore.List(ctx, filter, subscriptionFilterFn(true), subscriptionSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(sub *subscription.Subscription, _ int) *subscription.Subscription {
		return copySubscription(sub)
	}), nil
}

// ListExpiring is tenant-wide, like the sweep query in postgres.
func (s *InMemorySubscriptionStore) ListExpiring(ctx context.Context, filter *types.SubscriptionFilter) ([]*subscription.Subscription, error) {
	items, err := s.InMemoryStore.List(ctx, filter, subscriptionFilterFn(false), subscriptionSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(sub *subscription.Subscription, _ int) *subscription.Subscription {
		return copySubscription(sub)
	}), nil
}

func subscriptionNotFound(key string) error {
	return ierr.NewError("subscription not found").
		WithHint("Subscription not found").
		WithReportableDetails(map[string]any{
			"subscription": key,
		}).
		Mark(ierr.ErrNotFound)
}

func subscriptionFilterFn(tenantScoped bool) FilterFunc[*subscription.Subscription] {
	return func(ctx context.Context, sub *subscription.Subscription, filter interface{}) bool {
		if sub.Status == types.StatusDeleted {
			return false
		}
		if tenantScoped && sub.TenantID != types.GetTenantID(ctx) {
			return false
		}

		f, ok := filter.(*types.SubscriptionFilter)
		if !ok || f == nil {
			return true
		}
		if f.PackageStatusNot != nil && sub.PackageStatus == *f.PackageStatusNot {
			return false
		}
		if f.PeriodEndBefore != nil {
			if sub.CurrentPeriodEnd == nil || sub.CurrentPeriodEnd.After(*f.PeriodEndBefore) {
				return false
			}
		}
		return true
	}
}

func subscriptionSortFn(i, j *subscription.Subscription) bool {
	return i.CreatedAt.Before(j.CreatedAt)
}
