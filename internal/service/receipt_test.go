package service

import (
	"testing"
	"time"

	"github.com/billforge/billforge/internal/api/dto"
	"github.com/billforge/billforge/internal/domain/invoice"
	"github.com/billforge/billforge/internal/domain/receipt"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/publisher"
	"github.com/billforge/billforge/internal/testutil"
	"github.com/billforge/billforge/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ReceiptServiceSuite struct {
	testutil.BaseServiceTestSuite
	service ReceiptService
}

func TestReceiptService(t *testing.T) {
	suite.Run(t, new(ReceiptServiceSuite))
}

func (s *ReceiptServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewReceiptService(s.params())
}

func (s *ReceiptServiceSuite) params() ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		DB:               s.GetDB(),
		Cache:            s.GetCache(),
		EventPublisher:   s.GetPublisher(),
		InvoiceRepo:      stores.InvoiceRepo,
		ReceiptRepo:      stores.ReceiptRepo,
		CouponRepo:       stores.CouponRepo,
		ModulePriceRepo:  stores.ModulePriceRepo,
		PlanRepo:         stores.PlanRepo,
		SubscriptionRepo: stores.SubscriptionRepo,
	}
}

func (s *ReceiptServiceSuite) createInvoice(totalPrice int64) *invoice.Invoice {
	total := decimal.NewFromInt(totalPrice)
	inv := &invoice.Invoice{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		WorkspaceID:   "ws_1",
		OwnerID:       "owner_1",
		Subtotal:      total,
		TotalPrice:    total,
		Paid:          decimal.Zero,
		Due:           total,
		InvoiceStatus: types.InvoiceStatusDraft,
		Version:       1,
		BaseModel:     types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().InvoiceRepo.Create(s.GetContext(), inv))
	return inv
}

func (s *ReceiptServiceSuite) recordReceipt(invoiceID string, amount int64) (*dto.ReceiptResponse, error) {
	return s.service.RecordReceipt(s.GetContext(), &dto.CreateReceiptRequest{
		InvoiceID:   &invoiceID,
		Amount:      decimal.NewFromInt(amount),
		Date:        time.Now().UTC(),
		WorkspaceID: "ws_1",
		UserID:      "user_1",
	})
}

func (s *ReceiptServiceSuite) TestRecordReceiptPartialThenFull() {
	inv := s.createInvoice(1000)

	resp, err := s.recordReceipt(inv.ID, 400)
	s.NoError(err)
	s.NotNil(resp.Invoice)
	s.True(resp.Invoice.Paid.Equal(decimal.NewFromInt(400)))
	s.True(resp.Invoice.Due.Equal(decimal.NewFromInt(600)))
	s.Equal(types.InvoiceStatusDraft, resp.Invoice.InvoiceStatus)

	resp, err = s.recordReceipt(inv.ID, 600)
	s.NoError(err)
	s.True(resp.Invoice.Paid.Equal(decimal.NewFromInt(1000)))
	s.True(resp.Invoice.Due.IsZero())
	s.Equal(types.InvoiceStatusPaid, resp.Invoice.InvoiceStatus)

	stored, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), inv.ID)
	s.NoError(err)
	s.True(stored.Paid.Add(stored.Due).Equal(stored.TotalPrice))
	s.Equal(types.InvoiceStatusPaid, stored.InvoiceStatus)

	paidEvents := s.GetPublisher().EventsForTopic(publisher.TopicInvoicePaid)
	s.Len(paidEvents, 1)
}

func (s *ReceiptServiceSuite) TestRecordReceiptExceedsRemainingBalance() {
	inv := s.createInvoice(1000)

	_, err := s.recordReceipt(inv.ID, 400)
	s.NoError(err)

	_, err = s.recordReceipt(inv.ID, 700)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	// The rejected payment must not leave a receipt behind.
	sum, err := s.GetStores().ReceiptRepo.SumByInvoice(s.GetContext(), inv.ID)
	s.NoError(err)
	s.True(sum.Equal(decimal.NewFromInt(400)))
}

func (s *ReceiptServiceSuite) TestRecordReceiptAlreadyFullyPaid() {
	inv := s.createInvoice(500)

	_, err := s.recordReceipt(inv.ID, 500)
	s.NoError(err)

	_, err = s.recordReceipt(inv.ID, 1)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *ReceiptServiceSuite) TestRecordReceiptInvalidAmount() {
	inv := s.createInvoice(100)

	_, err := s.recordReceipt(inv.ID, 0)
	s.Error(err)
	s.True(ierr.IsValidation(err))

	_, err = s.recordReceipt(inv.ID, -10)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *ReceiptServiceSuite) TestRecordReceiptInvoiceNotFound() {
	_, err := s.recordReceipt("inv_missing", 100)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *ReceiptServiceSuite) TestRecordReceiptStandalone() {
	resp, err := s.service.RecordReceipt(s.GetContext(), &dto.CreateReceiptRequest{
		Amount:      decimal.NewFromInt(250),
		Date:        time.Now().UTC(),
		WorkspaceID: "ws_1",
		UserID:      "user_1",
	})
	s.NoError(err)
	s.Nil(resp.Invoice)
	s.Nil(resp.Receipt.InvoiceID)
	s.NotEmpty(resp.Receipt.Number)

	events := s.GetPublisher().EventsForTopic(publisher.TopicReceiptRecorded)
	s.Len(events, 1)
}

func (s *ReceiptServiceSuite) TestRecordReceiptNormalizesSentinels() {
	resp, err := s.service.RecordReceipt(s.GetContext(), &dto.CreateReceiptRequest{
		InvoiceID:     lo.ToPtr("null"),
		BankAccountID: lo.ToPtr("none"),
		Reference:     lo.ToPtr(""),
		Amount:        decimal.NewFromInt(75),
		Date:          time.Now().UTC(),
		WorkspaceID:   "ws_1",
		UserID:        "user_1",
	})
	s.NoError(err)
	s.Nil(resp.Receipt.InvoiceID)
	s.Nil(resp.Receipt.BankAccountID)
	s.Nil(resp.Receipt.Reference)
}

func (s *ReceiptServiceSuite) TestRecordReceiptReconcilesDriftedLedger() {
	inv := s.createInvoice(1000)

	// Receipts exist that the cached ledger never saw: the invoice still
	// claims 400 paid while the receipts sum to the full total.
	for _, amount := range []int64{400, 600} {
		r := &receipt.Receipt{
			ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_RECEIPT),
			Number:      types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_RECEIPT),
			InvoiceID:   &inv.ID,
			Amount:      decimal.NewFromInt(amount),
			Date:        time.Now().UTC(),
			WorkspaceID: "ws_1",
			UserID:      "user_1",
			BaseModel:   types.GetDefaultBaseModel(s.GetContext()),
		}
		s.NoError(s.GetStores().ReceiptRepo.Create(s.GetContext(), r))
	}
	inv.Paid = decimal.NewFromInt(400)
	inv.Due = decimal.NewFromInt(600)
	s.NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), inv))

	_, err := s.recordReceipt(inv.ID, 100)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	// The rejection must leave the corrected ledger behind.
	stored, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), inv.ID)
	s.NoError(err)
	s.True(stored.Paid.Equal(decimal.NewFromInt(1000)))
	s.True(stored.Due.IsZero())
	s.Equal(types.InvoiceStatusPaid, stored.InvoiceStatus)
}

func (s *ReceiptServiceSuite) TestUpdateReceiptRederivesLedger() {
	inv := s.createInvoice(1000)

	resp, err := s.recordReceipt(inv.ID, 400)
	s.NoError(err)

	updated, err := s.service.UpdateReceipt(s.GetContext(), resp.Receipt.ID, &dto.UpdateReceiptRequest{
		Amount: lo.ToPtr(decimal.NewFromInt(1000)),
	})
	s.NoError(err)
	s.NotNil(updated.Invoice)
	s.True(updated.Invoice.Paid.Equal(decimal.NewFromInt(1000)))
	s.True(updated.Invoice.Due.IsZero())
	s.Equal(types.InvoiceStatusPaid, updated.Invoice.InvoiceStatus)
}

func (s *ReceiptServiceSuite) TestUpdateReceiptRejectsOverpaymentEdit() {
	inv := s.createInvoice(1000)

	resp, err := s.recordReceipt(inv.ID, 400)
	s.NoError(err)
	_, err = s.recordReceipt(inv.ID, 600)
	s.NoError(err)

	_, err = s.service.UpdateReceipt(s.GetContext(), resp.Receipt.ID, &dto.UpdateReceiptRequest{
		Amount: lo.ToPtr(decimal.NewFromInt(500)),
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *ReceiptServiceSuite) TestDeleteReceiptRederivesLedger() {
	inv := s.createInvoice(1000)

	resp, err := s.recordReceipt(inv.ID, 400)
	s.NoError(err)
	_, err = s.recordReceipt(inv.ID, 600)
	s.NoError(err)

	s.NoError(s.service.DeleteReceipt(s.GetContext(), resp.Receipt.ID))

	stored, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), inv.ID)
	s.NoError(err)
	s.True(stored.Paid.Equal(decimal.NewFromInt(600)))
	s.True(stored.Due.Equal(decimal.NewFromInt(400)))
	s.Equal(types.InvoiceStatusDraft, stored.InvoiceStatus)
}
