package plan

import (
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// Plan holds the per-period price components of a subscription tier:
// a basic price plus per-seat and per-workspace increments.
type Plan struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`

	BasicPriceMonth decimal.Decimal `json:"basic_price_month" db:"basic_price_month"`
	BasicPriceYear  decimal.Decimal `json:"basic_price_year" db:"basic_price_year"`

	PricePerUserMonth decimal.Decimal `json:"price_per_user_month" db:"price_per_user_month"`
	PricePerUserYear  decimal.Decimal `json:"price_per_user_year" db:"price_per_user_year"`

	PricePerWorkspaceMonth decimal.Decimal `json:"price_per_workspace_month" db:"price_per_workspace_month"`
	PricePerWorkspaceYear  decimal.Decimal `json:"price_per_workspace_year" db:"price_per_workspace_year"`

	types.BaseModel
}

func (p *Plan) BasicPrice(period types.BillingPeriod) decimal.Decimal {
	if period == types.BILLING_PERIOD_YEARLY {
		return p.BasicPriceYear
	}
	return p.BasicPriceMonth
}

func (p *Plan) PricePerUser(period types.BillingPeriod) decimal.Decimal {
	if period == types.BILLING_PERIOD_YEARLY {
		return p.PricePerUserYear
	}
	return p.PricePerUserMonth
}

func (p *Plan) PricePerWorkspace(period types.BillingPeriod) decimal.Decimal {
	if period == types.BILLING_PERIOD_YEARLY {
		return p.PricePerWorkspaceYear
	}
	return p.PricePerWorkspaceMonth
}

// BasePrice is the plan component of a quote:
// basic + users * perUser + workspaces * perWorkspace, all period-specific.
func (p *Plan) BasePrice(period types.BillingPeriod, userCount, workspaceCount int) decimal.Decimal {
	return p.BasicPrice(period).
		Add(p.PricePerUser(period).Mul(decimal.NewFromInt(int64(userCount)))).
		Add(p.PricePerWorkspace(period).Mul(decimal.NewFromInt(int64(workspaceCount))))
}
