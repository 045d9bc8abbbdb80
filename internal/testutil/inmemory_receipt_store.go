package testutil

import (
	"context"

	"github.com/billforge/billforge/internal/domain/receipt"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// InMemoryReceiptStore implements receipt.Repository
type InMemoryReceiptStore struct {
	*InMemoryStore[*receipt.Receipt]
}

// NewInMemoryReceiptStore creates a new in-memory receipt store
func NewInMemoryReceiptStore() *InMemoryReceiptStore {
	return &InMemoryReceiptStore{
		InMemoryStore: NewInMemoryStore[*receipt.Receipt](),
	}
}

func copyReceipt(r *receipt.Receipt) *receipt.Receipt {
	if r == nil {
		return nil
	}
	copied := *r
	return &copied
}

func (s *InMemoryReceiptStore) Create(ctx context.Context, r *receipt.Receipt) error {
	if r == nil {
		return ierr.NewError("receipt cannot be nil").
			WithHint("Receipt cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, r.ID, copyReceipt(r))
}

func (s *InMemoryReceiptStore) Get(ctx context.Context, id string) (*receipt.Receipt, error) {
	r, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || r.Status == types.StatusDeleted {
		return nil, ierr.NewError("receipt not found").
			WithHint("Receipt not found").
			WithReportableDetails(map[string]any{
				"receipt_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyReceipt(r), nil
}

func (s *InMemoryReceiptStore) Update(ctx context.Context, r *receipt.Receipt) error {
	if r == nil {
		return ierr.NewError("receipt cannot be nil").
			WithHint("Receipt cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if _, err := s.Get(ctx, r.ID); err != nil {
		return err
	}
	return s.InMemoryStore.Update(ctx, r.ID, copyReceipt(r))
}

func (s *InMemoryReceiptStore) Delete(ctx context.Context, id string) error {
	r, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	r.Status = types.StatusDeleted
	return s.InMemoryStore.Update(ctx, id, r)
}

func (s *InMemoryReceiptStore) List(ctx context.Context, filter *types.ReceiptFilter) ([]*receipt.Receipt, error) {
	items, err := s.InMemoryStore.List(ctx, filter, receiptFilterFn, receiptSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(r *receipt.Receipt, _ int) *receipt.Receipt {
		return copyReceipt(r)
	}), nil
}

func (s *InMemoryReceiptStore) Count(ctx context.Context, filter *types.ReceiptFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, receiptFilterFn)
}

func (s *InMemoryReceiptStore) SumByInvoice(ctx context.Context, invoiceID string) (decimal.Decimal, error) {
	items, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, r *receipt.Receipt, _ interface{}) bool {
		return r.Status != types.StatusDeleted &&
			r.InvoiceID != nil && *r.InvoiceID == invoiceID
	}, nil)
	if err != nil {
		return decimal.Zero, err
	}

	sum := decimal.Zero
	for _, r := range items {
		sum = sum.Add(r.Amount)
	}
	return sum, nil
}

func receiptFilterFn(ctx context.Context, r *receipt.Receipt, filter interface{}) bool {
	if r.Status == types.StatusDeleted {
		return false
	}
	if r.TenantID != types.GetTenantID(ctx) {
		return false
	}

	f, ok := filter.(*types.ReceiptFilter)
	if !ok || f == nil {
		return true
	}
	if f.WorkspaceID != nil && r.WorkspaceID != *f.WorkspaceID {
		return false
	}
	if f.UserID != nil && r.UserID != *f.UserID {
		return false
	}
	if f.InvoiceID != nil && (r.InvoiceID == nil || *r.InvoiceID != *f.InvoiceID) {
		return false
	}
	return true
}

func receiptSortFn(i, j *receipt.Receipt) bool {
	return i.Date.After(j.Date)
}
