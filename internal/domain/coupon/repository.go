package coupon

import (
	"context"

	"github.com/billforge/billforge/internal/types"
)

// Repository defines the interface for coupon data access
type Repository interface {
	Create(ctx context.Context, c *Coupon) error
	Get(ctx context.Context, id string) (*Coupon, error)
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	Update(ctx context.Context, c *Coupon) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter *types.CouponFilter) ([]*Coupon, error)
	Count(ctx context.Context, filter *types.CouponFilter) (int, error)

	// IncrementRedemptions bumps UsedCount conditionally: the write must fail
	// with ierr.ErrInvalidOperation once the usage limit is reached, so
	// concurrent redemptions cannot exceed it.
	IncrementRedemptions(ctx context.Context, id string) error
}
