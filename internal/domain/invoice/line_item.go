package invoice

import (
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// LineItem is a single billed line on an invoice
type LineItem struct {
	ID          string          `json:"id" db:"id"`
	InvoiceID   string          `json:"invoice_id" db:"invoice_id"`
	Description string          `json:"description" db:"description"`
	Quantity    decimal.Decimal `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	Discount    decimal.Decimal `json:"discount" db:"discount"`
	Tax         decimal.Decimal `json:"tax" db:"tax"`

	types.BaseModel
}

// Subtotal is quantity * unit price before discount and tax
func (li *LineItem) Subtotal() decimal.Decimal {
	return li.Quantity.Mul(li.UnitPrice)
}

// Total is the line amount after discount and tax
func (li *LineItem) Total() decimal.Decimal {
	return li.Subtotal().Sub(li.Discount).Add(li.Tax)
}

func (li *LineItem) Validate() error {
	if li.Quantity.IsNegative() {
		return validationError("quantity", "must be non negative")
	}
	if li.UnitPrice.IsNegative() {
		return validationError("unit_price", "must be non negative")
	}
	if li.Discount.IsNegative() {
		return validationError("discount", "must be non negative")
	}
	if li.Tax.IsNegative() {
		return validationError("tax", "must be non negative")
	}
	if li.Discount.GreaterThan(li.Subtotal()) {
		return validationError("discount", "must not exceed the line subtotal")
	}
	return nil
}

// ComputeTotals derives the immutable invoice totals from its line items.
// Called exactly once at invoice creation.
func ComputeTotals(items []*LineItem) (subtotal, totalDiscount, totalTax, totalPrice decimal.Decimal) {
	for _, item := range items {
		subtotal = subtotal.Add(item.Subtotal())
		totalDiscount = totalDiscount.Add(item.Discount)
		totalTax = totalTax.Add(item.Tax)
	}
	totalPrice = subtotal.Sub(totalDiscount).Add(totalTax)
	return subtotal, totalDiscount, totalTax, totalPrice
}
