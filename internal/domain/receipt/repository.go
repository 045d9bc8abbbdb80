package receipt

import (
	"context"

	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// Repository defines the interface for receipt data access
type Repository interface {
	Create(ctx context.Context, r *Receipt) error
	Get(ctx context.Context, id string) (*Receipt, error)
	Update(ctx context.Context, r *Receipt) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter *types.ReceiptFilter) ([]*Receipt, error)
	Count(ctx context.Context, filter *types.ReceiptFilter) (int, error)

	// SumByInvoice returns the total of all live receipts linked to the
	// invoice. The over-payment check recomputes from here rather than
	// trusting the invoice's cached paid field.
	SumByInvoice(ctx context.Context, invoiceID string) (decimal.Decimal, error)
}
