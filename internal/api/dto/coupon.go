package dto

import (
	"context"
	"strings"
	"time"

	"github.com/billforge/billforge/internal/domain/coupon"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// CreateCouponRequest represents the request to create a new coupon
type CreateCouponRequest struct {
	Code         string           `json:"code" validate:"required"`
	Type         types.CouponType `json:"type" validate:"required,oneof=FIXED PERCENT"`
	Discount     decimal.Decimal  `json:"discount" validate:"required"`
	MinimumSpend *decimal.Decimal `json:"minimum_spend,omitempty"`
	MaximumSpend *decimal.Decimal `json:"maximum_spend,omitempty"`
	UsageLimit   *int             `json:"usage_limit,omitempty"`
	UsagePerUser *int             `json:"usage_per_user,omitempty"`
	IsActive     *bool            `json:"is_active,omitempty"`
	ExpiryDate   *time.Time       `json:"expiry_date,omitempty"`
}

// UpdateCouponRequest represents the request to update an existing coupon
type UpdateCouponRequest struct {
	Type         *types.CouponType `json:"type,omitempty" validate:"omitempty,oneof=FIXED PERCENT"`
	Discount     *decimal.Decimal  `json:"discount,omitempty"`
	MinimumSpend *decimal.Decimal  `json:"minimum_spend,omitempty"`
	MaximumSpend *decimal.Decimal  `json:"maximum_spend,omitempty"`
	UsageLimit   *int              `json:"usage_limit,omitempty"`
	UsagePerUser *int              `json:"usage_per_user,omitempty"`
	ExpiryDate   *time.Time        `json:"expiry_date,omitempty"`
}

// Validate validates the CreateCouponRequest
func (r *CreateCouponRequest) Validate() error {
	if strings.TrimSpace(r.Code) == "" {
		return ierr.NewError("code is required").
			WithHint("Please provide a coupon code").
			Mark(ierr.ErrValidation)
	}
	if err := r.Type.Validate(); err != nil {
		return err
	}
	if err := validateDiscount(r.Type, r.Discount); err != nil {
		return err
	}
	if r.MinimumSpend != nil && r.MaximumSpend != nil &&
		r.MinimumSpend.GreaterThan(*r.MaximumSpend) {
		return ierr.NewError("minimum_spend must not exceed maximum_spend").
			WithHint("Please provide a valid spend range").
			Mark(ierr.ErrValidation)
	}
	if r.UsageLimit != nil && *r.UsageLimit <= 0 {
		return ierr.NewError("usage_limit must be greater than zero").
			WithHint("Please provide a valid usage limit").
			Mark(ierr.ErrValidation)
	}
	if r.UsagePerUser != nil && *r.UsagePerUser <= 0 {
		return ierr.NewError("usage_per_user must be greater than zero").
			WithHint("Please provide a valid per-user usage limit").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Validate validates the UpdateCouponRequest
func (r *UpdateCouponRequest) Validate() error {
	if r.Type != nil {
		if err := r.Type.Validate(); err != nil {
			return err
		}
		if r.Discount == nil {
			return ierr.NewError("discount is required when changing type").
				WithHint("Please provide the discount value for the new type").
				Mark(ierr.ErrValidation)
		}
	}
	if r.Discount != nil {
		couponType := types.CouponTypeFixed
		if r.Type != nil {
			couponType = *r.Type
		}
		if err := validateDiscount(couponType, *r.Discount); err != nil {
			return err
		}
	}
	if r.UsageLimit != nil && *r.UsageLimit <= 0 {
		return ierr.NewError("usage_limit must be greater than zero").
			WithHint("Please provide a valid usage limit").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func validateDiscount(couponType types.CouponType, discount decimal.Decimal) error {
	if discount.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("discount must be greater than zero").
			WithHint("Please provide a positive discount value").
			Mark(ierr.ErrValidation)
	}
	if couponType == types.CouponTypePercent && discount.GreaterThan(decimal.NewFromInt(100)) {
		return ierr.NewError("percent discount must not exceed 100").
			WithHint("Please provide a percentage between 0 and 100").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ToCoupon converts the request to a coupon domain model
func (r *CreateCouponRequest) ToCoupon(ctx context.Context) *coupon.Coupon {
	isActive := true
	if r.IsActive != nil {
		isActive = *r.IsActive
	}
	return &coupon.Coupon{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_COUPON),
		Code:         strings.ToUpper(strings.TrimSpace(r.Code)),
		Type:         r.Type,
		Discount:     r.Discount,
		MinimumSpend: r.MinimumSpend,
		MaximumSpend: r.MaximumSpend,
		UsageLimit:   r.UsageLimit,
		UsagePerUser: r.UsagePerUser,
		UsedCount:    0,
		IsActive:     isActive,
		ExpiryDate:   r.ExpiryDate,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
}

// ValidateCouponRequest represents the request to validate a coupon code
// against an order subtotal
type ValidateCouponRequest struct {
	Code     string          `json:"code" validate:"required"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// ValidateCouponResponse reports the effect of a valid coupon on the
// given subtotal
type ValidateCouponResponse struct {
	Coupon         *CouponResponse `json:"coupon"`
	Applicable     bool            `json:"applicable"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
}

// CouponResponse represents the response for coupon data
type CouponResponse struct {
	*coupon.Coupon `json:",inline"`
}

// ListCouponsResponse represents the response for listing coupons
type ListCouponsResponse = types.ListResponse[*CouponResponse]
