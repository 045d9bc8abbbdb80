package types

import (
	"time"

	"github.com/samber/lo"
)

const (
	FILTER_DEFAULT_LIMIT = 50

	OrderDesc = "desc"
	OrderAsc  = "asc"
)

// QueryFilter represents a generic query filter with optional fields
type QueryFilter struct {
	Limit  *int    `json:"limit,omitempty" form:"limit" validate:"omitempty,min=1,max=1000"`
	Offset *int    `json:"offset,omitempty" form:"offset" validate:"omitempty,min=0"`
	Status *Status `json:"status,omitempty" form:"status"`
	Order  *string `json:"order,omitempty" form:"order" validate:"omitempty,oneof=asc desc"`
}

// NewDefaultQueryFilter defines default values for query filters
func NewDefaultQueryFilter() *QueryFilter {
	return &QueryFilter{
		Limit:  lo.ToPtr(FILTER_DEFAULT_LIMIT),
		Offset: lo.ToPtr(0),
		Status: lo.ToPtr(StatusPublished),
		Order:  lo.ToPtr(OrderDesc),
	}
}

func (f *QueryFilter) GetLimit() int {
	if f == nil || f.Limit == nil {
		return FILTER_DEFAULT_LIMIT
	}
	return *f.Limit
}

func (f *QueryFilter) GetOffset() int {
	if f == nil || f.Offset == nil {
		return 0
	}
	return *f.Offset
}

func (f *QueryFilter) GetStatus() Status {
	if f == nil || f.Status == nil {
		return StatusPublished
	}
	return *f.Status
}

func (f *QueryFilter) GetOrder() string {
	if f == nil || f.Order == nil {
		return OrderDesc
	}
	return *f.Order
}

// ReceiptFilter filters receipt lookups by owner scope and linked invoice
type ReceiptFilter struct {
	*QueryFilter
	WorkspaceID *string `json:"workspace_id,omitempty" form:"workspace_id"`
	UserID      *string `json:"user_id,omitempty" form:"user_id"`
	InvoiceID   *string `json:"invoice_id,omitempty" form:"invoice_id"`
}

// InvoiceFilter filters invoice lookups by owner scope and ledger status
type InvoiceFilter struct {
	*QueryFilter
	WorkspaceID   *string        `json:"workspace_id,omitempty" form:"workspace_id"`
	OwnerID       *string        `json:"owner_id,omitempty" form:"owner_id"`
	InvoiceStatus *InvoiceStatus `json:"invoice_status,omitempty" form:"invoice_status"`
}

// CouponFilter filters coupon lookups
type CouponFilter struct {
	*QueryFilter
	IsActive *bool   `json:"is_active,omitempty" form:"is_active"`
	Code     *string `json:"code,omitempty" form:"code"`
}

// ModulePriceFilter filters module catalog lookups
type ModulePriceFilter struct {
	*QueryFilter
	Name *string `json:"name,omitempty" form:"name"`
}

// SubscriptionFilter selects subscription records for the expiry sweep.
// PeriodEndBefore is inclusive: records with current_period_end <= the bound
// are returned.
type SubscriptionFilter struct {
	*QueryFilter
	PackageStatusNot *PackageStatus `json:"package_status_not,omitempty"`
	PeriodEndBefore  *time.Time     `json:"period_end_before,omitempty"`
}
