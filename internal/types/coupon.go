package types

import (
	ierr "github.com/billforge/billforge/internal/errors"
)

// CouponType defines how a coupon discount is computed
type CouponType string

const (
	// CouponTypePercent discounts a percentage of the subtotal
	CouponTypePercent CouponType = "PERCENT"
	// CouponTypeFixed subtracts a fixed amount from the subtotal
	CouponTypeFixed CouponType = "FIXED"
)

func (t CouponType) Validate() error {
	switch t {
	case CouponTypePercent, CouponTypeFixed:
		return nil
	default:
		return ierr.NewError("invalid coupon type").
			WithHint("Coupon type must be PERCENT or FIXED").
			WithReportableDetails(map[string]any{
				"type": t,
			}).
			Mark(ierr.ErrValidation)
	}
}
