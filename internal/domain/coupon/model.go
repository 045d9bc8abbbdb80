package coupon

import (
	"time"

	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// Coupon represents a discount rule with eligibility bounds and usage accounting
type Coupon struct {
	ID       string           `json:"id" db:"id"`
	Code     string           `json:"code" db:"code"`
	Type     types.CouponType `json:"type" db:"type"`
	Discount decimal.Decimal  `json:"discount" db:"discount"`

	// Spend bounds gate eligibility, not validity: a subtotal outside the
	// bounds leaves the coupon inapplicable rather than invalid.
	MinimumSpend *decimal.Decimal `json:"minimum_spend,omitempty" db:"minimum_spend"`
	MaximumSpend *decimal.Decimal `json:"maximum_spend,omitempty" db:"maximum_spend"`

	UsageLimit   *int `json:"usage_limit,omitempty" db:"usage_limit"`
	UsagePerUser *int `json:"usage_per_user,omitempty" db:"usage_per_user"`
	UsedCount    int  `json:"used_count" db:"used_count"`

	IsActive   bool       `json:"is_active" db:"is_active"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty" db:"expiry_date"`

	types.BaseModel
}

// IsExpired reports whether the coupon's expiry date, when set, has passed
func (c *Coupon) IsExpired(now time.Time) bool {
	return c.ExpiryDate != nil && now.After(*c.ExpiryDate)
}

// HasUsageRemaining reports whether the redemption budget, when set, is not exhausted
func (c *Coupon) HasUsageRemaining() bool {
	return c.UsageLimit == nil || c.UsedCount < *c.UsageLimit
}

// IsRedeemable checks active flag, expiry and usage budget in one place
func (c *Coupon) IsRedeemable(now time.Time) bool {
	return c.IsActive && !c.IsExpired(now) && c.HasUsageRemaining()
}

// InSpendBounds reports whether the subtotal is eligible for this coupon
func (c *Coupon) InSpendBounds(subtotal decimal.Decimal) bool {
	if c.MinimumSpend != nil && subtotal.LessThan(*c.MinimumSpend) {
		return false
	}
	if c.MaximumSpend != nil && subtotal.GreaterThan(*c.MaximumSpend) {
		return false
	}
	return true
}

// CalculateDiscount calculates the discount amount for a given subtotal
func (c *Coupon) CalculateDiscount(subtotal decimal.Decimal) decimal.Decimal {
	switch c.Type {
	case types.CouponTypeFixed:
		return c.Discount
	case types.CouponTypePercent:
		return subtotal.Mul(c.Discount).Div(decimal.NewFromInt(100))
	default:
		return decimal.Zero
	}
}

// ApplyDiscount applies the discount to the subtotal, never going below zero
func (c *Coupon) ApplyDiscount(subtotal decimal.Decimal) decimal.Decimal {
	final := subtotal.Sub(c.CalculateDiscount(subtotal))
	if final.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return final
}
