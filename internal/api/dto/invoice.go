package dto

import (
	"context"

	"github.com/billforge/billforge/internal/domain/invoice"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// CreateInvoiceLineItemRequest represents a single line on a new invoice
type CreateInvoiceLineItemRequest struct {
	Description string          `json:"description" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity" validate:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"required"`
	Discount    decimal.Decimal `json:"discount"`
	Tax         decimal.Decimal `json:"tax"`
}

// CreateInvoiceRequest represents the request to create a new invoice.
// Totals are derived from the line items; they are not accepted from the
// caller.
type CreateInvoiceRequest struct {
	WorkspaceID string                          `json:"workspace_id" validate:"required"`
	OwnerID     string                          `json:"owner_id" validate:"required"`
	LineItems   []*CreateInvoiceLineItemRequest `json:"line_items" validate:"required,min=1,dive"`
	Metadata    types.Metadata                  `json:"metadata,omitempty"`
}

// Validate validates the CreateInvoiceRequest
func (r *CreateInvoiceRequest) Validate() error {
	if r.WorkspaceID == "" {
		return ierr.NewError("workspace_id is required").
			WithHint("Please provide a workspace id").
			Mark(ierr.ErrValidation)
	}
	if r.OwnerID == "" {
		return ierr.NewError("owner_id is required").
			WithHint("Please provide an owner id").
			Mark(ierr.ErrValidation)
	}
	if len(r.LineItems) == 0 {
		return ierr.NewError("line_items must not be empty").
			WithHint("Please provide at least one line item").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ToInvoice converts the request to an invoice domain model with derived
// totals and the opening ledger state (nothing paid, everything due).
func (r *CreateInvoiceRequest) ToInvoice(ctx context.Context) *invoice.Invoice {
	invoiceID := types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE)

	items := make([]*invoice.LineItem, len(r.LineItems))
	for i, li := range r.LineItems {
		items[i] = &invoice.LineItem{
			ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM),
			InvoiceID:   invoiceID,
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			Discount:    li.Discount,
			Tax:         li.Tax,
			BaseModel:   types.GetDefaultBaseModel(ctx),
		}
	}

	subtotal, totalDiscount, totalTax, totalPrice := invoice.ComputeTotals(items)

	return &invoice.Invoice{
		ID:            invoiceID,
		WorkspaceID:   r.WorkspaceID,
		OwnerID:       r.OwnerID,
		Subtotal:      subtotal,
		TotalDiscount: totalDiscount,
		TotalTax:      totalTax,
		TotalPrice:    totalPrice,
		Paid:          decimal.Zero,
		Due:           totalPrice,
		InvoiceStatus: invoice.ComputeStatus(decimal.Zero, totalPrice),
		Metadata:      r.Metadata,
		LineItems:     items,
		Version:       1,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
}

// InvoiceResponse represents the response for invoice data
type InvoiceResponse struct {
	*invoice.Invoice `json:",inline"`
}

// ListInvoicesResponse represents the response for listing invoices
type ListInvoicesResponse = types.ListResponse[*InvoiceResponse]
