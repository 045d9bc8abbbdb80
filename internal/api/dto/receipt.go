package dto

import (
	"context"
	"strings"
	"time"

	"github.com/billforge/billforge/internal/domain/receipt"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// CreateReceiptRequest represents the request to record a payment receipt
type CreateReceiptRequest struct {
	InvoiceID     *string         `json:"invoice_id,omitempty"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	Date          time.Time       `json:"date" validate:"required"`
	BankAccountID *string         `json:"bank_account_id,omitempty"`
	Reference     *string         `json:"reference,omitempty"`
	FileURL       *string         `json:"file_url,omitempty"`
	WorkspaceID   string          `json:"workspace_id" validate:"required"`
	UserID        string          `json:"user_id" validate:"required"`
}

// UpdateReceiptRequest represents the request to edit an existing receipt
type UpdateReceiptRequest struct {
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Date          *time.Time       `json:"date,omitempty"`
	BankAccountID *string          `json:"bank_account_id,omitempty"`
	Reference     *string          `json:"reference,omitempty"`
	FileURL       *string          `json:"file_url,omitempty"`
}

// Normalize maps the sentinel strings some clients send for "no value"
// ("null", "none", empty) to real nils before validation runs.
func (r *CreateReceiptRequest) Normalize() {
	r.InvoiceID = normalizeOptionalID(r.InvoiceID)
	r.BankAccountID = normalizeOptionalID(r.BankAccountID)
	r.Reference = normalizeOptionalID(r.Reference)
}

func normalizeOptionalID(v *string) *string {
	if v == nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(*v)) {
	case "", "null", "none", "undefined":
		return nil
	}
	return v
}

// Validate validates the CreateReceiptRequest
func (r *CreateReceiptRequest) Validate() error {
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("amount must be greater than zero").
			WithHint("Please provide a positive payment amount").
			WithReportableDetails(map[string]any{
				"amount": r.Amount.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	if r.Date.IsZero() {
		return ierr.NewError("date is required").
			WithHint("Please provide the payment date").
			Mark(ierr.ErrValidation)
	}
	if r.WorkspaceID == "" {
		return ierr.NewError("workspace_id is required").
			WithHint("Please provide a workspace id").
			Mark(ierr.ErrValidation)
	}
	if r.UserID == "" {
		return ierr.NewError("user_id is required").
			WithHint("Please provide a user id").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Validate validates the UpdateReceiptRequest
func (r *UpdateReceiptRequest) Validate() error {
	if r.Amount != nil && r.Amount.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("amount must be greater than zero").
			WithHint("Please provide a positive payment amount").
			Mark(ierr.ErrValidation)
	}
	if r.Date != nil && r.Date.IsZero() {
		return ierr.NewError("date must be a valid timestamp").
			WithHint("Please provide a valid payment date").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ToReceipt converts the request to a receipt domain model
func (r *CreateReceiptRequest) ToReceipt(ctx context.Context) *receipt.Receipt {
	return &receipt.Receipt{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_RECEIPT),
		Number:        types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_RECEIPT),
		InvoiceID:     r.InvoiceID,
		Amount:        r.Amount,
		Date:          r.Date.UTC(),
		BankAccountID: r.BankAccountID,
		Reference:     r.Reference,
		FileURL:       r.FileURL,
		WorkspaceID:   r.WorkspaceID,
		UserID:        r.UserID,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
}

// ReceiptResponse represents the response for receipt data
type ReceiptResponse struct {
	*receipt.Receipt `json:",inline"`

	// Invoice carries the post-allocation ledger state when the receipt
	// was linked to an invoice
	Invoice *InvoiceResponse `json:"invoice,omitempty"`
}

// ListReceiptsResponse represents the response for listing receipts
type ListReceiptsResponse = types.ListResponse[*ReceiptResponse]
