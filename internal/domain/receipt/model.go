package receipt

import (
	"time"

	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// Receipt records a payment applied against an invoice, or a standalone
// payment when InvoiceID is nil. Receipts are immutable once created except
// through the explicit edit flow, which re-derives the invoice ledger.
type Receipt struct {
	ID     string `json:"id" db:"id"`
	Number string `json:"number" db:"number"`

	// InvoiceID is nil for non-invoice payments
	InvoiceID *string `json:"invoice_id,omitempty" db:"invoice_id"`

	Amount decimal.Decimal `json:"amount" db:"amount"`
	Date   time.Time       `json:"date" db:"date"`

	// BankAccountID is nil when the payment was not tied to a bank account.
	// Sentinel strings from clients ("null", "none", "") are normalized to nil
	// at the service boundary and never reach this model.
	BankAccountID *string `json:"bank_account_id,omitempty" db:"bank_account_id"`
	Reference     *string `json:"reference,omitempty" db:"reference"`
	FileURL       *string `json:"file_url,omitempty" db:"file_url"`

	WorkspaceID string `json:"workspace_id" db:"workspace_id"`
	UserID      string `json:"user_id" db:"user_id"`

	types.BaseModel
}

func (r *Receipt) Validate() error {
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("invalid receipt amount").
			WithHint("Receipt amount must be greater than 0").
			WithReportableDetails(map[string]any{
				"amount": r.Amount.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	if r.Date.IsZero() {
		return ierr.NewError("missing receipt date").
			WithHint("Receipt date is required").
			Mark(ierr.ErrValidation)
	}
	if r.InvoiceID != nil && *r.InvoiceID == "" {
		return ierr.NewError("invalid invoice id").
			WithHint("Invoice id must not be empty when set").
			Mark(ierr.ErrValidation)
	}
	return nil
}
