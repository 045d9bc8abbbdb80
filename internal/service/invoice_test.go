package service

import (
	"testing"
	"time"

	"github.com/billforge/billforge/internal/api/dto"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/testutil"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  InvoiceService
	receipts ReceiptService
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	stores := s.GetStores()
	params := ServiceParams{
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
	s.service = NewInvoiceService(params)
	s.receipts = NewReceiptService(params)
}

func (s *InvoiceServiceSuite) createInvoice() *dto.InvoiceResponse {
	resp, err := s.service.CreateInvoice(s.GetContext(), &dto.CreateInvoiceRequest{
		WorkspaceID: "ws_1",
		OwnerID:     "owner_1",
		LineItems: []*dto.CreateInvoiceLineItemRequest{
			{
				Description: "Team plan",
				Quantity:    decimal.NewFromInt(1),
				UnitPrice:   decimal.NewFromInt(100),
				Tax:         decimal.NewFromInt(20),
			},
			{
				Description: "Reporting module",
				Quantity:    decimal.NewFromInt(2),
				UnitPrice:   decimal.NewFromInt(50),
				Discount:    decimal.NewFromInt(10),
			},
		},
	})
	s.NoError(err)
	return resp
}

func (s *InvoiceServiceSuite) TestCreateInvoiceDerivesTotals() {
	resp := s.createInvoice()

	// 1*100 + 2*50 = 200 subtotal, +20 tax, -10 discount
	s.True(resp.Subtotal.Equal(decimal.NewFromInt(200)))
	s.True(resp.TotalTax.Equal(decimal.NewFromInt(20)))
	s.True(resp.TotalDiscount.Equal(decimal.NewFromInt(10)))
	s.True(resp.TotalPrice.Equal(decimal.NewFromInt(210)))

	// Opening ledger state: nothing paid, everything due.
	s.True(resp.Paid.IsZero())
	s.True(resp.Due.Equal(resp.TotalPrice))
	s.Equal(types.InvoiceStatusDraft, resp.InvoiceStatus)
	s.Equal(1, resp.Version)
	s.Len(resp.LineItems, 2)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceRequiresLineItems() {
	_, err := s.service.CreateInvoice(s.GetContext(), &dto.CreateInvoiceRequest{
		WorkspaceID: "ws_1",
		OwnerID:     "owner_1",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *InvoiceServiceSuite) TestGetInvoice() {
	created := s.createInvoice()

	fetched, err := s.service.GetInvoice(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(created.ID, fetched.ID)
	s.True(fetched.Paid.Add(fetched.Due).Equal(fetched.TotalPrice))

	_, err = s.service.GetInvoice(s.GetContext(), "inv_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *InvoiceServiceSuite) TestListInvoices() {
	s.createInvoice()
	s.createInvoice()

	resp, err := s.service.ListInvoices(s.GetContext(), nil)
	s.NoError(err)
	s.Equal(2, resp.Pagination.Total)
	s.Len(resp.Items, 2)
}

func (s *InvoiceServiceSuite) TestDeleteInvoiceWithoutPayments() {
	created := s.createInvoice()

	s.NoError(s.service.DeleteInvoice(s.GetContext(), created.ID))

	_, err := s.service.GetInvoice(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *InvoiceServiceSuite) TestDeleteInvoiceWithPaymentsRejected() {
	created := s.createInvoice()

	_, err := s.receipts.RecordReceipt(s.GetContext(), &dto.CreateReceiptRequest{
		InvoiceID:   &created.ID,
		Amount:      decimal.NewFromInt(50),
		Date:        time.Now().UTC(),
		WorkspaceID: "ws_1",
		UserID:      "user_1",
	})
	s.NoError(err)

	err = s.service.DeleteInvoice(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}
