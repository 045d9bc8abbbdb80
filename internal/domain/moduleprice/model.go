package moduleprice

import (
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// ModulePrice is a read-mostly catalog entry for a priced optional module
// that can be attached to a subscription plan.
type ModulePrice struct {
	ID         string          `json:"id" db:"id"`
	Name       string          `json:"name" db:"name"`
	PriceMonth decimal.Decimal `json:"price_month" db:"price_month"`
	PriceYear  decimal.Decimal `json:"price_year" db:"price_year"`

	// Logo holds the stored object key returned by the file storage service
	Logo *string `json:"logo,omitempty" db:"logo"`

	types.BaseModel
}

// Price returns the module price matching the billing period
func (m *ModulePrice) Price(period types.BillingPeriod) decimal.Decimal {
	if period == types.BILLING_PERIOD_YEARLY {
		return m.PriceYear
	}
	return m.PriceMonth
}
