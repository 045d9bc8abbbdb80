package testutil

import (
	"context"
	"sync"

	"github.com/billforge/billforge/internal/domain/coupon"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/samber/lo"
)

// InMemoryCouponStore implements coupon.Repository
type InMemoryCouponStore struct {
	*InMemoryStore[*coupon.Coupon]

	// incrementMu serializes IncrementRedemptions so the usage-limit guard
	// behaves like the conditional SQL update
	incrementMu sync.Mutex
}

// NewInMemoryCouponStore creates a new in-memory coupon store
func NewInMemoryCouponStore() *InMemoryCouponStore {
	return &InMemoryCouponStore{
		InMemoryStore: NewInMemoryStore[*coupon.Coupon](),
	}
}

func copyCoupon(c *coupon.Coupon) *coupon.Coupon {
	if c == nil {
		return nil
	}
	copied := *c
	return &copied
}

func (s *InMemoryCouponStore) Create(ctx context.Context, c *coupon.Coupon) error {
	if c == nil {
		return ierr.NewError("coupon cannot be nil").
			WithHint("Coupon cannot be nil").
			Mark(ierr.ErrValidation)
	}

	existing, _ := s.GetByCode(ctx, c.Code)
	if existing != nil {
		return ierr.NewError("coupon code already exists").
			WithHint("A coupon with this code already exists").
			WithReportableDetails(map[string]any{
				"code": c.Code,
			}).
			Mark(ierr.ErrAlreadyExists)
	}

	return s.InMemoryStore.Create(ctx, c.ID, copyCoupon(c))
}

func (s *InMemoryCouponStore) Get(ctx context.Context, id string) (*coupon.Coupon, error) {
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || c.Status == types.StatusDeleted {
		return nil, couponNotFound(id)
	}
	return copyCoupon(c), nil
}

func (s *InMemoryCouponStore) GetByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	items, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, c *coupon.Coupon, _ interface{}) bool {
		return c.Status != types.StatusDeleted && c.Code == code
	}, nil)
	if err != nil || len(items) == 0 {
		return nil, couponNotFound(code)
	}
	return copyCoupon(items[0]), nil
}

func (s *InMemoryCouponStore) Update(ctx context.Context, c *coupon.Coupon) error {
	if c == nil {
		return ierr.NewError("coupon cannot be nil").
			WithHint("Coupon cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if _, err := s.Get(ctx, c.ID); err != nil {
		return err
	}
	return s.InMemoryStore.Update(ctx, c.ID, copyCoupon(c))
}

func (s *InMemoryCouponStore) Delete(ctx context.Context, id string) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	c.Status = types.StatusDeleted
	return s.InMemoryStore.Update(ctx, id, c)
}

func (s *InMemoryCouponStore) List(ctx context.Context, filter *types.CouponFilter) ([]*coupon.Coupon, error) {
	items, err := s.InMemoryStore.List(ctx, filter, couponFilterFn, couponSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(c *coupon.Coupon, _ int) *coupon.Coupon {
		return copyCoupon(c)
	}), nil
}

func (s *InMemoryCouponStore) Count(ctx context.Context, filter *types.CouponFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, couponFilterFn)
}

// IncrementRedemptions bumps UsedCount only while budget remains, matching
// the conditional update the postgres repository issues.
func (s *InMemoryCouponStore) IncrementRedemptions(ctx context.Context, id string) error {
	s.incrementMu.Lock()
	defer s.incrementMu.Unlock()

	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if !c.HasUsageRemaining() {
		return ierr.NewError("coupon usage limit reached").
			WithHint("This coupon has no redemptions remaining").
			WithReportableDetails(map[string]any{
				"coupon_id": id,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	c.UsedCount++
	return s.InMemoryStore.Update(ctx, id, c)
}

func couponNotFound(key string) error {
	return ierr.NewError("coupon not found").
		WithHint("Coupon not found").
		WithReportableDetails(map[string]any{
			"coupon": key,
		}).
		Mark(ierr.ErrNotFound)
}

func couponFilterFn(ctx context.Context, c *coupon.Coupon, filter interface{}) bool {
	if c.Status == types.StatusDeleted {
		return false
	}
	if c.TenantID != types.GetTenantID(ctx) {
		return false
	}

	f, ok := filter.(*types.CouponFilter)
	if !ok || f == nil {
		return true
	}
	if f.IsActive != nil && c.IsActive != *f.IsActive {
		return false
	}
	if f.Code != nil && c.Code != *f.Code {
		return false
	}
	return true
}

func couponSortFn(i, j *coupon.Coupon) bool {
	return i.CreatedAt.After(j.CreatedAt)
}
