package service

import (
	"context"
	"strings"
	"time"

	"github.com/billforge/billforge/internal/api/dto"
	"github.com/billforge/billforge/internal/domain/coupon"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
)

// CouponService manages coupon definitions and validates codes against
// order subtotals. Validation never consumes usage budget; redemption is
// committed separately once the purchase succeeds.
type CouponService interface {
	CreateCoupon(ctx context.Context, req *dto.CreateCouponRequest) (*dto.CouponResponse, error)
	GetCoupon(ctx context.Context, id string) (*dto.CouponResponse, error)
	UpdateCoupon(ctx context.Context, id string, req *dto.UpdateCouponRequest) (*dto.CouponResponse, error)
	DeleteCoupon(ctx context.Context, id string) error
	ListCoupons(ctx context.Context, filter *types.CouponFilter) (*dto.ListCouponsResponse, error)
	ToggleCouponActive(ctx context.Context, id string) (*dto.CouponResponse, error)

	// ValidateCoupon resolves a code to a usable coupon. Inactive, expired
	// and exhausted coupons are reported as not found, indistinguishable
	// from codes that never existed.
	ValidateCoupon(ctx context.Context, req *dto.ValidateCouponRequest) (*dto.ValidateCouponResponse, error)
}

type couponService struct {
	ServiceParams
}

func NewCouponService(params ServiceParams) CouponService {
	return &couponService{
		ServiceParams: params,
	}
}

func (s *couponService) CreateCoupon(ctx context.Context, req *dto.CreateCouponRequest) (*dto.CouponResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c := req.ToCoupon(ctx)
	if err := s.CouponRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.Logger.Infow("created coupon", "coupon_id", c.ID, "code", c.Code)
	return &dto.CouponResponse{Coupon: c}, nil
}

func (s *couponService) GetCoupon(ctx context.Context, id string) (*dto.CouponResponse, error) {
	c, err := s.CouponRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.CouponResponse{Coupon: c}, nil
}

func (s *couponService) UpdateCoupon(ctx context.Context, id string, req *dto.UpdateCouponRequest) (*dto.CouponResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.CouponRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Type != nil {
		c.Type = *req.Type
	}
	if req.Discount != nil {
		c.Discount = *req.Discount
	}
	if req.MinimumSpend != nil {
		c.MinimumSpend = req.MinimumSpend
	}
	if req.MaximumSpend != nil {
		c.MaximumSpend = req.MaximumSpend
	}
	if req.UsageLimit != nil {
		c.UsageLimit = req.UsageLimit
	}
	if req.UsagePerUser != nil {
		c.UsagePerUser = req.UsagePerUser
	}
	if req.ExpiryDate != nil {
		c.ExpiryDate = req.ExpiryDate
	}

	if err := s.CouponRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return &dto.CouponResponse{Coupon: c}, nil
}

func (s *couponService) DeleteCoupon(ctx context.Context, id string) error {
	if _, err := s.CouponRepo.Get(ctx, id); err != nil {
		return err
	}
	return s.CouponRepo.Delete(ctx, id)
}

func (s *couponService) ListCoupons(ctx context.Context, filter *types.CouponFilter) (*dto.ListCouponsResponse, error) {
	if filter == nil {
		filter = &types.CouponFilter{QueryFilter: types.NewDefaultQueryFilter()}
	}

	coupons, err := s.CouponRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.CouponRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.CouponResponse, len(coupons))
	for i, c := range coupons {
		items[i] = &dto.CouponResponse{Coupon: c}
	}

	resp := types.NewListResponse(items, total, filter.GetLimit(), filter.GetOffset())
	return &resp, nil
}

func (s *couponService) ToggleCouponActive(ctx context.Context, id string) (*dto.CouponResponse, error) {
	c, err := s.CouponRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	c.IsActive = !c.IsActive
	if err := s.CouponRepo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.Logger.Infow("toggled coupon", "coupon_id", c.ID, "is_active", c.IsActive)
	return &dto.CouponResponse{Coupon: c}, nil
}

func (s *couponService) ValidateCoupon(ctx context.Context, req *dto.ValidateCouponRequest) (*dto.ValidateCouponResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, ierr.NewError("code is required").
			WithHint("Please provide a coupon code").
			Mark(ierr.ErrValidation)
	}

	c, err := s.resolveUsableCoupon(ctx, code)
	if err != nil {
		return nil, err
	}

	resp := &dto.ValidateCouponResponse{
		Coupon:      &dto.CouponResponse{Coupon: c},
		FinalAmount: req.Subtotal,
	}

	// Out-of-bounds subtotal leaves the coupon valid but inapplicable:
	// no discount, no error.
	if !c.InSpendBounds(req.Subtotal) {
		return resp, nil
	}

	resp.Applicable = true
	resp.DiscountAmount = c.CalculateDiscount(req.Subtotal)
	resp.FinalAmount = c.ApplyDiscount(req.Subtotal)
	return resp, nil
}

// resolveUsableCoupon fetches by code and filters out anything that cannot
// be redeemed right now. All rejection paths collapse to not found.
func (s *couponService) resolveUsableCoupon(ctx context.Context, code string) (*coupon.Coupon, error) {
	c, err := s.CouponRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if !c.IsRedeemable(time.Now().UTC()) {
		return nil, ierr.NewError("coupon not found").
			WithHint("Coupon not found").
			WithReportableDetails(map[string]any{
				"code": code,
			}).
			Mark(ierr.ErrNotFound)
	}
	return c, nil
}
