package service

import (
	"testing"
	"time"

	"github.com/billforge/billforge/internal/api/dto"
	"github.com/billforge/billforge/internal/domain/coupon"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/testutil"
	"github.com/billforge/billforge/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SubscriptionServiceSuite struct {
	testutil.BaseServiceTestSuite
	service SubscriptionService
}

func TestSubscriptionService(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceSuite))
}

func (s *SubscriptionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	stores := s.GetStores()
	s.service = NewSubscriptionService(ServiceParams{
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
	})
}

func (s *SubscriptionServiceSuite) TestActivateCreatesSubscription() {
	resp, err := s.service.ActivateSubscription(s.GetContext(), &dto.ActivateSubscriptionRequest{
		OwnerID:       "owner_1",
		PackageStatus: types.PackageStatusStarter,
		BillingPeriod: types.BILLING_PERIOD_MONTHLY,
	})
	s.NoError(err)
	s.Equal(types.PackageStatusStarter, resp.PackageStatus)
	s.Equal(types.SubscriptionStatusActive, resp.SubscriptionStatus)
	s.NotNil(resp.CurrentPeriodStart)
	s.NotNil(resp.CurrentPeriodEnd)
	s.True(resp.CurrentPeriodEnd.After(*resp.CurrentPeriodStart))
	s.Equal(1, resp.Version)
}

func (s *SubscriptionServiceSuite) TestActivateUpdatesExistingSubscription() {
	first, err := s.service.ActivateSubscription(s.GetContext(), &dto.ActivateSubscriptionRequest{
		OwnerID:       "owner_1",
		PackageStatus: types.PackageStatusStarter,
		BillingPeriod: types.BILLING_PERIOD_MONTHLY,
	})
	s.NoError(err)

	second, err := s.service.ActivateSubscription(s.GetContext(), &dto.ActivateSubscriptionRequest{
		OwnerID:       "owner_1",
		PackageStatus: types.PackageStatusBusiness,
		BillingPeriod: types.BILLING_PERIOD_YEARLY,
	})
	s.NoError(err)
	s.Equal(first.ID, second.ID)
	s.Equal(types.PackageStatusBusiness, second.PackageStatus)
	s.Greater(second.Version, first.Version)
}

func (s *SubscriptionServiceSuite) TestActivateRejectsFreeTier() {
	_, err := s.service.ActivateSubscription(s.GetContext(), &dto.ActivateSubscriptionRequest{
		OwnerID:       "owner_1",
		PackageStatus: types.PackageStatusFree,
		BillingPeriod: types.BILLING_PERIOD_MONTHLY,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *SubscriptionServiceSuite) TestActivateCommitsCoupon() {
	c := &coupon.Coupon{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_COUPON),
		Code:       "LAUNCH",
		Type:       types.CouponTypeFixed,
		Discount:   decimal.NewFromInt(5),
		UsageLimit: lo.ToPtr(1),
		IsActive:   true,
		BaseModel:  types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().CouponRepo.Create(s.GetContext(), c))

	_, err := s.service.ActivateSubscription(s.GetContext(), &dto.ActivateSubscriptionRequest{
		OwnerID:       "owner_1",
		PackageStatus: types.PackageStatusStarter,
		BillingPeriod: types.BILLING_PERIOD_MONTHLY,
		CouponCode:    lo.ToPtr("launch"),
	})
	s.NoError(err)

	stored, err := s.GetStores().CouponRepo.Get(s.GetContext(), c.ID)
	s.NoError(err)
	s.Equal(1, stored.UsedCount)

	// Budget exhausted: a second activation with the same code fails before
	// touching the subscription.
	_, err = s.service.ActivateSubscription(s.GetContext(), &dto.ActivateSubscriptionRequest{
		OwnerID:       "owner_2",
		PackageStatus: types.PackageStatusStarter,
		BillingPeriod: types.BILLING_PERIOD_MONTHLY,
		CouponCode:    lo.ToPtr("LAUNCH"),
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))

	_, err = s.service.GetSubscriptionByOwner(s.GetContext(), "owner_2")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *SubscriptionServiceSuite) TestActivateYearlyPeriodEnd() {
	resp, err := s.service.ActivateSubscription(s.GetContext(), &dto.ActivateSubscriptionRequest{
		OwnerID:       "owner_1",
		PackageStatus: types.PackageStatusStarter,
		BillingPeriod: types.BILLING_PERIOD_YEARLY,
	})
	s.NoError(err)

	// A yearly period ends well past any monthly one.
	s.True(resp.CurrentPeriodEnd.After(time.Now().UTC().Add(300 * 24 * time.Hour)))
}

func (s *SubscriptionServiceSuite) TestGetSubscriptionByOwner() {
	created, err := s.service.ActivateSubscription(s.GetContext(), &dto.ActivateSubscriptionRequest{
		OwnerID:       "owner_1",
		PackageStatus: types.PackageStatusStarter,
		BillingPeriod: types.BILLING_PERIOD_MONTHLY,
	})
	s.NoError(err)

	fetched, err := s.service.GetSubscriptionByOwner(s.GetContext(), "owner_1")
	s.NoError(err)
	s.Equal(created.ID, fetched.ID)

	_, err = s.service.GetSubscriptionByOwner(s.GetContext(), "owner_unknown")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
