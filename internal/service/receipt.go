package service

import (
	"context"

	"github.com/billforge/billforge/internal/api/dto"
	"github.com/billforge/billforge/internal/domain/invoice"
	"github.com/billforge/billforge/internal/domain/receipt"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/publisher"
	"github.com/billforge/billforge/internal/types"
)

// maxVersionRetries bounds the optimistic-lock retry loop when two payments
// land on the same invoice at once.
const maxVersionRetries = 3

// ReceiptService records payments and keeps the invoice ledger consistent.
// Recording a receipt against an invoice and applying it to the ledger is a
// single transaction: either both persist or neither does.
type ReceiptService interface {
	RecordReceipt(ctx context.Context, req *dto.CreateReceiptRequest) (*dto.ReceiptResponse, error)
	GetReceipt(ctx context.Context, id string) (*dto.ReceiptResponse, error)
	UpdateReceipt(ctx context.Context, id string, req *dto.UpdateReceiptRequest) (*dto.ReceiptResponse, error)
	DeleteReceipt(ctx context.Context, id string) error
	ListReceipts(ctx context.Context, filter *types.ReceiptFilter) (*dto.ListReceiptsResponse, error)
}

type receiptService struct {
	ServiceParams
}

func NewReceiptService(params ServiceParams) ReceiptService {
	return &receiptService{
		ServiceParams: params,
	}
}

func (s *receiptService) RecordReceipt(ctx context.Context, req *dto.CreateReceiptRequest) (*dto.ReceiptResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rcpt := req.ToReceipt(ctx)
	if err := rcpt.Validate(); err != nil {
		return nil, err
	}

	// Standalone payment: no invoice, no ledger to move.
	if rcpt.InvoiceID == nil {
		if err := s.ReceiptRepo.Create(ctx, rcpt); err != nil {
			return nil, err
		}
		s.publishReceiptRecorded(ctx, rcpt, nil)
		return &dto.ReceiptResponse{Receipt: rcpt}, nil
	}

	var updatedInvoice *invoice.Invoice
	var err error
	for attempt := 0; attempt < maxVersionRetries; attempt++ {
		updatedInvoice, err = s.recordAgainstInvoice(ctx, rcpt)
		if err == nil || !ierr.IsVersionConflict(err) {
			break
		}
		s.Logger.Warnw("retrying receipt allocation after version conflict",
			"receipt_id", rcpt.ID,
			"invoice_id", *rcpt.InvoiceID,
			"attempt", attempt+1)
	}
	if err != nil {
		return nil, err
	}

	s.publishReceiptRecorded(ctx, rcpt, updatedInvoice)

	resp := &dto.ReceiptResponse{Receipt: rcpt}
	if updatedInvoice != nil {
		resp.Invoice = &dto.InvoiceResponse{Invoice: updatedInvoice}
	}
	return resp, nil
}

// recordAgainstInvoice creates the receipt and applies it to the invoice
// ledger in one transaction. The total previously paid is recomputed from the
// live receipts rather than read off the invoice, so a drifted paid field
// cannot let an over-payment through.
func (s *receiptService) recordAgainstInvoice(ctx context.Context, rcpt *receipt.Receipt) (*invoice.Invoice, error) {
	var updated *invoice.Invoice
	var rejection error

	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		inv, err := s.InvoiceRepo.Get(txCtx, *rcpt.InvoiceID)
		if err != nil {
			return err
		}

		priorPaid, err := s.ReceiptRepo.SumByInvoice(txCtx, inv.ID)
		if err != nil {
			return err
		}

		// The invoice's cached paid amount can drift from the receipt sum
		// when past edits bypassed this flow. Reconcile to the receipt sum,
		// which is the ground truth.
		drifted := !priorPaid.Equal(inv.Paid)
		if drifted {
			s.Logger.Warnw("invoice paid amount drifted from receipt sum, reconciling",
				"invoice_id", inv.ID,
				"invoice_paid", inv.Paid,
				"receipt_sum", priorPaid)
			inv.Paid = priorPaid
			inv.Due = inv.TotalPrice.Sub(priorPaid)
			inv.InvoiceStatus = invoice.ComputeStatus(priorPaid, inv.TotalPrice)
		}

		applied, err := invoice.ApplyPayment(inv.Paid, inv.Due, inv.TotalPrice, rcpt.Amount)
		if err != nil {
			// The payment is rejected, but a reconciled ledger must still be
			// persisted: commit the correction and surface the rejection to
			// the caller afterwards.
			if drifted {
				if uerr := s.InvoiceRepo.Update(txCtx, inv); uerr != nil {
					return uerr
				}
				rejection = err
				return nil
			}
			return err
		}

		if err := s.ReceiptRepo.Create(txCtx, rcpt); err != nil {
			return err
		}

		inv.Paid = applied.Paid
		inv.Due = applied.Due
		inv.InvoiceStatus = applied.Status
		if err := s.InvoiceRepo.Update(txCtx, inv); err != nil {
			return err
		}

		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	if rejection != nil {
		return nil, rejection
	}
	return updated, nil
}

func (s *receiptService) GetReceipt(ctx context.Context, id string) (*dto.ReceiptResponse, error) {
	if id == "" {
		return nil, ierr.NewError("receipt id is required").
			WithHint("Please provide a receipt id").
			Mark(ierr.ErrValidation)
	}
	rcpt, err := s.ReceiptRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.ReceiptResponse{Receipt: rcpt}, nil
}

// UpdateReceipt edits a receipt. When the amount changes on an
// invoice-linked receipt, the invoice ledger is re-derived from the full
// receipt sum inside the same transaction.
func (s *receiptService) UpdateReceipt(ctx context.Context, id string, req *dto.UpdateReceiptRequest) (*dto.ReceiptResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rcpt, err := s.ReceiptRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	amountChanged := req.Amount != nil && !req.Amount.Equal(rcpt.Amount)

	if req.Amount != nil {
		rcpt.Amount = *req.Amount
	}
	if req.Date != nil {
		rcpt.Date = req.Date.UTC()
	}
	if req.BankAccountID != nil {
		rcpt.BankAccountID = req.BankAccountID
	}
	if req.Reference != nil {
		rcpt.Reference = req.Reference
	}
	if req.FileURL != nil {
		rcpt.FileURL = req.FileURL
	}
	if err := rcpt.Validate(); err != nil {
		return nil, err
	}

	if rcpt.InvoiceID == nil || !amountChanged {
		if err := s.ReceiptRepo.Update(ctx, rcpt); err != nil {
			return nil, err
		}
		return &dto.ReceiptResponse{Receipt: rcpt}, nil
	}

	var updatedInvoice *invoice.Invoice
	err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.ReceiptRepo.Update(txCtx, rcpt); err != nil {
			return err
		}
		updatedInvoice, err = s.rederiveLedger(txCtx, *rcpt.InvoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &dto.ReceiptResponse{
		Receipt: rcpt,
		Invoice: &dto.InvoiceResponse{Invoice: updatedInvoice},
	}, nil
}

// DeleteReceipt removes a receipt and, when it was linked to an invoice,
// re-derives the invoice ledger from the remaining receipts.
func (s *receiptService) DeleteReceipt(ctx context.Context, id string) error {
	rcpt, err := s.ReceiptRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	if rcpt.InvoiceID == nil {
		return s.ReceiptRepo.Delete(ctx, id)
	}

	return s.DB.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.ReceiptRepo.Delete(txCtx, id); err != nil {
			return err
		}
		_, err := s.rederiveLedger(txCtx, *rcpt.InvoiceID)
		return err
	})
}

// rederiveLedger recomputes paid/due/status from the live receipt sum.
// Unlike ApplyPayment it tolerates an over-paid state left behind by an
// edit, clamping due at zero.
func (s *receiptService) rederiveLedger(ctx context.Context, invoiceID string) (*invoice.Invoice, error) {
	inv, err := s.InvoiceRepo.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	paid, err := s.ReceiptRepo.SumByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if paid.GreaterThan(inv.TotalPrice) {
		return nil, ierr.NewError("receipts exceed invoice total").
			WithHint("The receipt amounts exceed the invoice total").
			WithReportableDetails(map[string]any{
				"invoice_id":  invoiceID,
				"receipt_sum": paid.String(),
				"total_price": inv.TotalPrice.String(),
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	inv.Paid = paid
	inv.Due = inv.TotalPrice.Sub(paid)
	inv.InvoiceStatus = invoice.ComputeStatus(paid, inv.TotalPrice)
	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *receiptService) ListReceipts(ctx context.Context, filter *types.ReceiptFilter) (*dto.ListReceiptsResponse, error) {
	if filter == nil {
		filter = &types.ReceiptFilter{QueryFilter: types.NewDefaultQueryFilter()}
	}

	receipts, err := s.ReceiptRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.ReceiptRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ReceiptResponse, len(receipts))
	for i, r := range receipts {
		items[i] = &dto.ReceiptResponse{Receipt: r}
	}

	resp := types.NewListResponse(items, total, filter.GetLimit(), filter.GetOffset())
	return &resp, nil
}

func (s *receiptService) publishReceiptRecorded(ctx context.Context, rcpt *receipt.Receipt, inv *invoice.Invoice) {
	payload := map[string]any{
		"receipt_id": rcpt.ID,
		"amount":     rcpt.Amount,
	}
	if rcpt.InvoiceID != nil {
		payload["invoice_id"] = *rcpt.InvoiceID
	}
	if err := s.EventPublisher.Publish(ctx, publisher.TopicReceiptRecorded, payload); err != nil {
		s.Logger.Warnw("failed to publish receipt recorded event", "error", err, "receipt_id", rcpt.ID)
	}

	if inv != nil && inv.InvoiceStatus == types.InvoiceStatusPaid {
		if err := s.EventPublisher.Publish(ctx, publisher.TopicInvoicePaid, map[string]any{
			"invoice_id":  inv.ID,
			"total_price": inv.TotalPrice,
		}); err != nil {
			s.Logger.Warnw("failed to publish invoice paid event", "error", err, "invoice_id", inv.ID)
		}
	}
}
