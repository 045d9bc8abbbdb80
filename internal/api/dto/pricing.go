package dto

import (
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// CalculatePriceRequest represents the request to quote a subscription price.
// Quoting is read-only: it never consumes coupon budget or mutates state.
type CalculatePriceRequest struct {
	PlanID         string              `json:"plan_id" validate:"required"`
	BillingPeriod  types.BillingPeriod `json:"billing_period" validate:"required,oneof=MONTHLY YEARLY"`
	UserCount      int                 `json:"user_count" validate:"min=0"`
	WorkspaceCount int                 `json:"workspace_count" validate:"min=0"`
	ModuleIDs      []string            `json:"module_ids,omitempty"`
	CouponCode     *string             `json:"coupon_code,omitempty"`
}

// Validate validates the CalculatePriceRequest
func (r *CalculatePriceRequest) Validate() error {
	if r.PlanID == "" {
		return ierr.NewError("plan_id is required").
			WithHint("Please provide a plan id").
			Mark(ierr.ErrValidation)
	}
	if err := r.BillingPeriod.Validate(); err != nil {
		return err
	}
	if r.UserCount < 0 {
		return ierr.NewError("user_count must be non negative").
			WithHint("Please provide a valid user count").
			Mark(ierr.ErrValidation)
	}
	if r.WorkspaceCount < 0 {
		return ierr.NewError("workspace_count must be non negative").
			WithHint("Please provide a valid workspace count").
			Mark(ierr.ErrValidation)
	}
	r.ModuleIDs = dedupeModuleIDs(r.ModuleIDs)
	return nil
}

func dedupeModuleIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ModulePriceLine is one module's contribution to a quote
type ModulePriceLine struct {
	ModuleID string          `json:"module_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
}

// PriceBreakdown itemizes how a quote total was reached
type PriceBreakdown struct {
	BasePrice      decimal.Decimal   `json:"base_price"`
	ModuleLines    []ModulePriceLine `json:"module_lines,omitempty"`
	ModulesTotal   decimal.Decimal   `json:"modules_total"`
	Subtotal       decimal.Decimal   `json:"subtotal"`
	CouponCode     *string           `json:"coupon_code,omitempty"`
	CouponApplied  bool              `json:"coupon_applied"`
	CouponNote     string            `json:"coupon_note,omitempty"`
	DiscountAmount decimal.Decimal   `json:"discount_amount"`
}

// CalculatePriceResponse represents a subscription price quote
type CalculatePriceResponse struct {
	BillingPeriod types.BillingPeriod `json:"billing_period"`
	Total         decimal.Decimal     `json:"total"`
	Breakdown     PriceBreakdown      `json:"breakdown"`
}
