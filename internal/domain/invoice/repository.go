package invoice

import (
	"context"

	"github.com/billforge/billforge/internal/types"
)

// Repository defines the interface for invoice data access.
// Update is conditional on Invoice.Version and must return
// ierr.ErrVersionConflict when the row has moved on.
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	Get(ctx context.Context, id string) (*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)
	Count(ctx context.Context, filter *types.InvoiceFilter) (int, error)
}
