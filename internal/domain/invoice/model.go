package invoice

import (
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice represents the invoice domain model. The monetary totals (Subtotal,
// TotalDiscount, TotalTax, TotalPrice) are computed once at creation and never
// change; Paid, Due and InvoiceStatus are derived ledger state mutated only
// through the receipt allocation flow.
type Invoice struct {
	ID            string              `json:"id" db:"id"`
	WorkspaceID   string              `json:"workspace_id" db:"workspace_id"`
	OwnerID       string              `json:"owner_id" db:"owner_id"`
	Subtotal      decimal.Decimal     `json:"subtotal" db:"subtotal"`
	TotalDiscount decimal.Decimal     `json:"total_discount" db:"total_discount"`
	TotalTax      decimal.Decimal     `json:"total_tax" db:"total_tax"`
	TotalPrice    decimal.Decimal     `json:"total_price" db:"total_price"`
	Paid          decimal.Decimal     `json:"paid" db:"paid"`
	Due           decimal.Decimal     `json:"due" db:"due"`
	InvoiceStatus types.InvoiceStatus `json:"invoice_status" db:"invoice_status"`
	Metadata      types.Metadata      `json:"metadata,omitempty" db:"metadata"`
	LineItems     []*LineItem         `json:"line_items,omitempty" db:"-"`

	// Version guards concurrent payment applications; every persisted update
	// is conditional on the last-seen value.
	Version int `json:"version" db:"version"`

	types.BaseModel
}

// Validate checks the ledger invariant and per-item consistency
func (i *Invoice) Validate() error {
	if i.TotalPrice.IsNegative() {
		return validationError("total_price", "must be non negative")
	}

	if i.Paid.IsNegative() {
		return validationError("paid", "must be non negative")
	}

	if i.Paid.GreaterThan(i.TotalPrice) {
		return validationError("paid", "must be less than or equal to total_price")
	}

	if !i.Paid.Add(i.Due).Equal(i.TotalPrice) {
		return validationError("due", "must equal total_price - paid")
	}

	if err := i.InvoiceStatus.Validate(); err != nil {
		return err
	}

	for _, item := range i.LineItems {
		if err := item.Validate(); err != nil {
			return err
		}
	}

	return nil
}

func validationError(field, reason string) error {
	return ierr.NewError("invalid invoice").
		WithHintf("Field %s %s", field, reason).
		WithReportableDetails(map[string]any{
			"field": field,
		}).
		Mark(ierr.ErrValidation)
}
