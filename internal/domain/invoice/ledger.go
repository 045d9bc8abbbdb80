package invoice

import (
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// The ledger functions are the single source of truth for the paid/due/status
// arithmetic. Every caller that moves money against an invoice routes through
// ApplyPayment; nothing else recomputes these fields.

// PaymentApplication is the ledger state resulting from applying one payment
type PaymentApplication struct {
	Paid   decimal.Decimal
	Due    decimal.Decimal
	Status types.InvoiceStatus
}

// ComputeStatus returns PAID once the paid amount covers the total price
func ComputeStatus(paid, totalPrice decimal.Decimal) types.InvoiceStatus {
	if paid.GreaterThanOrEqual(totalPrice) {
		return types.InvoiceStatusPaid
	}
	return types.InvoiceStatusDraft
}

// ApplyPayment applies amount against the current ledger state and returns the
// new state. It never mutates its inputs.
//
// Failure modes:
//   - amount <= 0: validation error
//   - due <= 0 on entry: the invoice is already fully paid
//   - amount > due: the payment would exceed the remaining balance
func ApplyPayment(paid, due, totalPrice, amount decimal.Decimal) (PaymentApplication, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return PaymentApplication{}, ierr.NewError("invalid payment amount").
			WithHint("Payment amount must be greater than 0").
			WithReportableDetails(map[string]any{
				"amount": amount.String(),
			}).
			Mark(ierr.ErrValidation)
	}

	if due.LessThanOrEqual(decimal.Zero) {
		return PaymentApplication{}, ierr.NewError("invoice already fully paid").
			WithHint("Invoice is already fully paid").
			Mark(ierr.ErrInvalidOperation)
	}

	if amount.GreaterThan(due) {
		return PaymentApplication{}, ierr.NewError("payment exceeds invoice total").
			WithHintf("Payment exceeds the remaining balance of %s", due.String()).
			WithReportableDetails(map[string]any{
				"amount":            amount.String(),
				"remaining_balance": due.String(),
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	newPaid := paid.Add(amount)
	newDue := totalPrice.Sub(newPaid)

	return PaymentApplication{
		Paid:   newPaid,
		Due:    newDue,
		Status: ComputeStatus(newPaid, totalPrice),
	}, nil
}
