package types

import (
	"time"

	ierr "github.com/billforge/billforge/internal/errors"
)

// BillingPeriod is the billing period for a subscription ex MONTHLY, YEARLY
type BillingPeriod string

const (
	BILLING_PERIOD_MONTHLY BillingPeriod = "MONTHLY"
	BILLING_PERIOD_YEARLY  BillingPeriod = "YEARLY"
)

func (p BillingPeriod) Validate() error {
	switch p {
	case BILLING_PERIOD_MONTHLY, BILLING_PERIOD_YEARLY:
		return nil
	default:
		return ierr.NewError("invalid billing period").
			WithHint("Billing period must be MONTHLY or YEARLY").
			WithReportableDetails(map[string]any{
				"billing_period": p,
			}).
			Mark(ierr.ErrValidation)
	}
}

// NextPeriodEnd returns the end of one billing period starting at the given time.
func (p BillingPeriod) NextPeriodEnd(start time.Time) time.Time {
	if p == BILLING_PERIOD_YEARLY {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}

// InvoiceStatus is the ledger status of an invoice. An invoice is created as
// DRAFT and flips to PAID only when its due amount reaches zero.
type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "DRAFT"
	InvoiceStatusPaid  InvoiceStatus = "PAID"
)

func (s InvoiceStatus) Validate() error {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusPaid:
		return nil
	default:
		return ierr.NewError("invalid invoice status").
			WithHint("Invalid invoice status").
			WithReportableDetails(map[string]any{
				"invoice_status": s,
			}).
			Mark(ierr.ErrValidation)
	}
}
