package service

import (
	"context"
	"strings"
	"time"

	"github.com/billforge/billforge/internal/api/dto"
	"github.com/billforge/billforge/internal/domain/coupon"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/shopspring/decimal"
)

// PricingService quotes subscription prices. CalculatePrice is pure read:
// callers can quote as often as they like without consuming coupon budget.
// CommitCouponRedemption is the separate write that burns one use once the
// purchase goes through.
type PricingService interface {
	CalculatePrice(ctx context.Context, req *dto.CalculatePriceRequest) (*dto.CalculatePriceResponse, error)
	CommitCouponRedemption(ctx context.Context, code string) error
}

type pricingService struct {
	ServiceParams
}

func NewPricingService(params ServiceParams) PricingService {
	return &pricingService{
		ServiceParams: params,
	}
}

func (s *pricingService) CalculatePrice(ctx context.Context, req *dto.CalculatePriceRequest) (*dto.CalculatePriceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	plan, err := s.PlanRepo.Get(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	basePrice := plan.BasePrice(req.BillingPeriod, req.UserCount, req.WorkspaceCount)

	breakdown := dto.PriceBreakdown{
		BasePrice:      basePrice,
		ModulesTotal:   decimal.Zero,
		DiscountAmount: decimal.Zero,
	}

	if len(req.ModuleIDs) > 0 {
		modules, err := s.ModulePriceRepo.GetBatch(ctx, req.ModuleIDs)
		if err != nil {
			return nil, err
		}
		for _, m := range modules {
			price := m.Price(req.BillingPeriod)
			breakdown.ModuleLines = append(breakdown.ModuleLines, dto.ModulePriceLine{
				ModuleID: m.ID,
				Name:     m.Name,
				Price:    price,
			})
			breakdown.ModulesTotal = breakdown.ModulesTotal.Add(price)
		}
	}

	breakdown.Subtotal = basePrice.Add(breakdown.ModulesTotal)
	total := breakdown.Subtotal

	if req.CouponCode != nil {
		c, err := s.lookupCoupon(ctx, *req.CouponCode)
		if err != nil {
			return nil, err
		}
		breakdown.CouponCode = req.CouponCode

		// In-bounds coupons discount the subtotal; out-of-bounds coupons
		// are quoted at full price without error.
		if c.InSpendBounds(breakdown.Subtotal) {
			breakdown.CouponApplied = true
			breakdown.DiscountAmount = c.CalculateDiscount(breakdown.Subtotal)
			total = c.ApplyDiscount(breakdown.Subtotal)
		} else {
			breakdown.CouponNote = "coupon not applicable for this subtotal"
		}
	}

	return &dto.CalculatePriceResponse{
		BillingPeriod: req.BillingPeriod,
		Total:         total,
		Breakdown:     breakdown,
	}, nil
}

// CommitCouponRedemption burns one use of the coupon. The underlying
// increment is conditional on remaining budget, so two concurrent commits
// cannot push usage past the limit.
func (s *pricingService) CommitCouponRedemption(ctx context.Context, code string) error {
	c, err := s.lookupCoupon(ctx, code)
	if err != nil {
		return err
	}

	if err := s.CouponRepo.IncrementRedemptions(ctx, c.ID); err != nil {
		return err
	}

	s.Logger.Infow("committed coupon redemption", "coupon_id", c.ID, "code", c.Code)
	return nil
}

func (s *pricingService) lookupCoupon(ctx context.Context, code string) (*coupon.Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ierr.NewError("coupon code is required").
			WithHint("Please provide a coupon code").
			Mark(ierr.ErrValidation)
	}

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
