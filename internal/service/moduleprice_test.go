package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/billforge/billforge/internal/api/dto"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/testutil"
	"github.com/billforge/billforge/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ModulePriceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service ModulePriceService
	storage *fakeStorage
}

func TestModulePriceService(t *testing.T) {
	suite.Run(t, new(ModulePriceServiceSuite))
}

func (s *ModulePriceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.storage = &fakeStorage{objects: make(map[string][]byte)}
	stores := s.GetStores()
	s.service = NewModulePriceService(ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		DB:               s.GetDB(),
		Cache:            s.GetCache(),
		Storage:          s.storage,
		EventPublisher:   s.GetPublisher(),
		InvoiceRepo:      stores.InvoiceRepo,
		ReceiptRepo:      stores.ReceiptRepo,
		CouponRepo:       stores.CouponRepo,
		ModulePriceRepo:  stores.ModulePriceRepo,
		PlanRepo:         stores.PlanRepo,
		SubscriptionRepo: stores.SubscriptionRepo,
	})
}

func (s *ModulePriceServiceSuite) createModule(name string, month, year int64) *dto.ModulePriceResponse {
	resp, err := s.service.CreateModulePrice(s.GetContext(), &dto.CreateModulePriceRequest{
		Name:       name,
		PriceMonth: decimal.NewFromInt(month),
		PriceYear:  decimal.NewFromInt(year),
	})
	s.NoError(err)
	return resp
}

func (s *ModulePriceServiceSuite) TestCreateAndGetModulePrice() {
	created := s.createModule("Reporting", 7, 70)

	fetched, err := s.service.GetModulePrice(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal("Reporting", fetched.Name)
	s.True(fetched.PriceMonth.Equal(decimal.NewFromInt(7)))
	s.True(fetched.PriceYear.Equal(decimal.NewFromInt(70)))
	s.Nil(fetched.LogoURL)
}

func (s *ModulePriceServiceSuite) TestCreateModulePriceRejectsNegativePrice() {
	_, err := s.service.CreateModulePrice(s.GetContext(), &dto.CreateModulePriceRequest{
		Name:       "Broken",
		PriceMonth: decimal.NewFromInt(-1),
		PriceYear:  decimal.NewFromInt(10),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *ModulePriceServiceSuite) TestUpdateModulePrice() {
	created := s.createModule("Reporting", 7, 70)

	updated, err := s.service.UpdateModulePrice(s.GetContext(), created.ID, &dto.UpdateModulePriceRequest{
		PriceMonth: lo.ToPtr(decimal.NewFromInt(9)),
	})
	s.NoError(err)
	s.True(updated.PriceMonth.Equal(decimal.NewFromInt(9)))
	s.True(updated.PriceYear.Equal(decimal.NewFromInt(70)))
}

func (s *ModulePriceServiceSuite) TestListReflectsWritesThroughCache() {
	s.createModule("Analytics", 3, 30)

	first, err := s.service.ListModulePrices(s.GetContext(), nil)
	s.NoError(err)
	s.Len(first.Items, 1)

	// The write must flush the cached listing.
	s.createModule("Reporting", 7, 70)

	second, err := s.service.ListModulePrices(s.GetContext(), nil)
	s.NoError(err)
	s.Len(second.Items, 2)
}

func (s *ModulePriceServiceSuite) TestListReportsTotalAcrossPages() {
	s.createModule("Analytics", 3, 30)
	s.createModule("Billing", 4, 40)
	s.createModule("Reporting", 7, 70)

	resp, err := s.service.ListModulePrices(s.GetContext(), &types.ModulePriceFilter{
		QueryFilter: &types.QueryFilter{Limit: lo.ToPtr(2), Offset: lo.ToPtr(0)},
	})
	s.NoError(err)
	s.Len(resp.Items, 2)
	s.Equal(3, resp.Pagination.Total)
}

func (s *ModulePriceServiceSuite) TestListPresignsLogoOnEachRead() {
	created := s.createModule("Reporting", 7, 70)

	_, err := s.service.UploadLogo(s.GetContext(), created.ID, "image/png", []byte("png-bytes"))
	s.NoError(err)

	first, err := s.service.ListModulePrices(s.GetContext(), nil)
	s.NoError(err)
	s.Require().Len(first.Items, 1)
	s.Require().NotNil(first.Items[0].LogoURL)

	// The second read is served from the cache but must still mint a fresh
	// signature rather than replay the one from the first read.
	second, err := s.service.ListModulePrices(s.GetContext(), nil)
	s.NoError(err)
	s.Require().Len(second.Items, 1)
	s.Require().NotNil(second.Items[0].LogoURL)
	s.NotEqual(*first.Items[0].LogoURL, *second.Items[0].LogoURL)
}

func (s *ModulePriceServiceSuite) TestDeleteModulePrice() {
	created := s.createModule("Reporting", 7, 70)

	s.NoError(s.service.DeleteModulePrice(s.GetContext(), created.ID))

	_, err := s.service.GetModulePrice(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *ModulePriceServiceSuite) TestUploadLogo() {
	created := s.createModule("Reporting", 7, 70)

	resp, err := s.service.UploadLogo(s.GetContext(), created.ID, "image/png", []byte("png-bytes"))
	s.NoError(err)
	s.NotNil(resp.Logo)
	s.NotNil(resp.LogoURL)

	stored, err := s.GetStores().ModulePriceRepo.Get(s.GetContext(), created.ID)
	s.NoError(err)
	s.NotNil(stored.Logo)
	s.Contains(s.storage.objects, *stored.Logo)
}

func (s *ModulePriceServiceSuite) TestUploadLogoEmptyData() {
	created := s.createModule("Reporting", 7, 70)

	_, err := s.service.UploadLogo(s.GetContext(), created.ID, "image/png", nil)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *ModulePriceServiceSuite) TestUploadLogoWithoutStorage() {
	created := s.createModule("Reporting", 7, 70)

	stores := s.GetStores()
	service := NewModulePriceService(ServiceParams{
		Logger:          s.GetLogger(),
		Config:          s.GetConfig(),
		DB:              s.GetDB(),
		Cache:           s.GetCache(),
		EventPublisher:  s.GetPublisher(),
		ModulePriceRepo: stores.ModulePriceRepo,
	})

	_, err := service.UploadLogo(s.GetContext(), created.ID, "image/png", []byte("png-bytes"))
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

// fakeStorage keeps uploaded objects in memory. Every presign yields a
// distinct URL so tests can tell fresh signatures from replayed ones.
type fakeStorage struct {
	objects  map[string][]byte
	presigns int
}

func (f *fakeStorage) UploadLogo(ctx context.Context, moduleID string, contentType string, data []byte) (string, error) {
	key := fmt.Sprintf("logos/%s", moduleID)
	f.objects[key] = data
	return key, nil
}

func (f *fakeStorage) GetPresignedURL(ctx context.Context, key string) (string, error) {
	if _, ok := f.objects[key]; !ok {
		return "", ierr.NewError("object not found").
			WithHint("Logo not found in storage").
			Mark(ierr.ErrNotFound)
	}
	f.presigns++
	return fmt.Sprintf("https://storage.test/%s?signature=%d", key, f.presigns), nil
}

func (f *fakeStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := f.objects[key]
	return ok, nil
}
