package coupon

import (
	"testing"
	"time"

	"github.com/billforge/billforge/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateDiscount(t *testing.T) {
	percent := &Coupon{Type: types.CouponTypePercent, Discount: decimal.NewFromInt(10)}
	fixed := &Coupon{Type: types.CouponTypeFixed, Discount: decimal.NewFromInt(25)}

	assert.True(t, percent.CalculateDiscount(decimal.NewFromInt(200)).Equal(decimal.NewFromInt(20)))
	assert.True(t, fixed.CalculateDiscount(decimal.NewFromInt(200)).Equal(decimal.NewFromInt(25)))
}

func TestApplyDiscount_ClampsAtZero(t *testing.T) {
	fixed := &Coupon{Type: types.CouponTypeFixed, Discount: decimal.NewFromInt(500)}
	assert.True(t, fixed.ApplyDiscount(decimal.NewFromInt(100)).IsZero())
}

func TestIsRedeemable(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name   string
		coupon Coupon
		want   bool
	}{
		{
			name:   "active without bounds",
			coupon: Coupon{IsActive: true},
			want:   true,
		},
		{
			name:   "inactive",
			coupon: Coupon{IsActive: false},
			want:   false,
		},
		{
			name:   "expired",
			coupon: Coupon{IsActive: true, ExpiryDate: lo.ToPtr(now.Add(-time.Hour))},
			want:   false,
		},
		{
			name:   "not yet expired",
			coupon: Coupon{IsActive: true, ExpiryDate: lo.ToPtr(now.Add(time.Hour))},
			want:   true,
		},
		{
			name:   "usage exhausted",
			coupon: Coupon{IsActive: true, UsageLimit: lo.ToPtr(5), UsedCount: 5},
			want:   false,
		},
		{
			name:   "usage remaining",
			coupon: Coupon{IsActive: true, UsageLimit: lo.ToPtr(5), UsedCount: 4},
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.coupon.IsRedeemable(now))
		})
	}
}

func TestInSpendBounds(t *testing.T) {
	c := Coupon{
		MinimumSpend: lo.ToPtr(decimal.NewFromInt(50)),
		MaximumSpend: lo.ToPtr(decimal.NewFromInt(500)),
	}

	assert.False(t, c.InSpendBounds(decimal.NewFromInt(40)))
	assert.True(t, c.InSpendBounds(decimal.NewFromInt(50)))
	assert.True(t, c.InSpendBounds(decimal.NewFromInt(500)))
	assert.False(t, c.InSpendBounds(decimal.NewFromInt(501)))

	unbounded := Coupon{}
	assert.True(t, unbounded.InSpendBounds(decimal.NewFromInt(1)))
}
