package service

import (
	"testing"
	"time"

	"github.com/billforge/billforge/internal/api/dto"
	"github.com/billforge/billforge/internal/domain/coupon"
	"github.com/billforge/billforge/internal/domain/moduleprice"
	"github.com/billforge/billforge/internal/domain/plan"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/testutil"
	"github.com/billforge/billforge/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PricingServiceSuite struct {
	testutil.BaseServiceTestSuite
	service PricingService
	plan    *plan.Plan
	module  *moduleprice.ModulePrice
}

func TestPricingService(t *testing.T) {
	suite.Run(t, new(PricingServiceSuite))
}

func (s *PricingServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	stores := s.GetStores()
	s.service = NewPricingService(ServiceParams{
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

	s.plan = &plan.Plan{
		ID:                     types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN),
		Name:                   "Team",
		BasicPriceMonth:        decimal.NewFromInt(10),
		BasicPriceYear:         decimal.NewFromInt(100),
		PricePerUserMonth:      decimal.NewFromInt(5),
		PricePerUserYear:       decimal.NewFromInt(50),
		PricePerWorkspaceMonth: decimal.NewFromInt(2),
		PricePerWorkspaceYear:  decimal.NewFromInt(20),
		BaseModel:              types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().PlanRepo.Create(s.GetContext(), s.plan))

	s.module = &moduleprice.ModulePrice{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_MODULE_PRICE),
		Name:       "Reporting",
		PriceMonth: decimal.NewFromInt(7),
		PriceYear:  decimal.NewFromInt(70),
		BaseModel:  types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().ModulePriceRepo.Create(s.GetContext(), s.module))
}

func (s *PricingServiceSuite) createCoupon(c *coupon.Coupon) *coupon.Coupon {
	if c.ID == "" {
		c.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_COUPON)
	}
	c.BaseModel = types.GetDefaultBaseModel(s.GetContext())
	s.NoError(s.GetStores().CouponRepo.Create(s.GetContext(), c))
	return c
}

func (s *PricingServiceSuite) TestCalculatePriceMonthly() {
	resp, err := s.service.CalculatePrice(s.GetContext(), &dto.CalculatePriceRequest{
		PlanID:         s.plan.ID,
		BillingPeriod:  types.BILLING_PERIOD_MONTHLY,
		UserCount:      3,
		WorkspaceCount: 1,
		ModuleIDs:      []string{s.module.ID},
	})
	s.NoError(err)

	// basic 10 + 3 users * 5 + 1 workspace * 2 = 27, reporting module 7
	s.True(resp.Breakdown.BasePrice.Equal(decimal.NewFromInt(27)))
	s.True(resp.Breakdown.ModulesTotal.Equal(decimal.NewFromInt(7)))
	s.True(resp.Breakdown.Subtotal.Equal(decimal.NewFromInt(34)))
	s.True(resp.Total.Equal(decimal.NewFromInt(34)))
	s.Len(resp.Breakdown.ModuleLines, 1)
	s.Equal("Reporting", resp.Breakdown.ModuleLines[0].Name)
	s.False(resp.Breakdown.CouponApplied)
}

func (s *PricingServiceSuite) TestCalculatePriceYearly() {
	resp, err := s.service.CalculatePrice(s.GetContext(), &dto.CalculatePriceRequest{
		PlanID:         s.plan.ID,
		BillingPeriod:  types.BILLING_PERIOD_YEARLY,
		UserCount:      2,
		WorkspaceCount: 2,
		ModuleIDs:      []string{s.module.ID},
	})
	s.NoError(err)

	// basic 100 + 2 users * 50 + 2 workspaces * 20 = 240, module 70
	s.True(resp.Breakdown.Subtotal.Equal(decimal.NewFromInt(310)))
	s.True(resp.Total.Equal(decimal.NewFromInt(310)))
}

func (s *PricingServiceSuite) TestCalculatePriceWithPercentCoupon() {
	s.createCoupon(&coupon.Coupon{
		Code:     "HALF",
		Type:     types.CouponTypePercent,
		Discount: decimal.NewFromInt(50),
		IsActive: true,
	})

	resp, err := s.service.CalculatePrice(s.GetContext(), &dto.CalculatePriceRequest{
		PlanID:        s.plan.ID,
		BillingPeriod: types.BILLING_PERIOD_MONTHLY,
		UserCount:     3,
		ModuleIDs:     []string{s.module.ID},
		CouponCode:    lo.ToPtr("half"),
	})
	s.NoError(err)

	// subtotal 10 + 15 + 7 = 32, halved
	s.True(resp.Breakdown.CouponApplied)
	s.True(resp.Breakdown.DiscountAmount.Equal(decimal.NewFromInt(16)))
	s.True(resp.Total.Equal(decimal.NewFromInt(16)))
}

func (s *PricingServiceSuite) TestCalculatePriceCouponBelowMinimumSpend() {
	s.createCoupon(&coupon.Coupon{
		Code:         "BIGSPENDER",
		Type:         types.CouponTypeFixed,
		Discount:     decimal.NewFromInt(5),
		MinimumSpend: lo.ToPtr(decimal.NewFromInt(100)),
		IsActive:     true,
	})

	resp, err := s.service.CalculatePrice(s.GetContext(), &dto.CalculatePriceRequest{
		PlanID:        s.plan.ID,
		BillingPeriod: types.BILLING_PERIOD_MONTHLY,
		UserCount:     3,
		CouponCode:    lo.ToPtr("BIGSPENDER"),
	})
	s.NoError(err)

	// Out of spend bounds: full price, no error, note explains why.
	s.False(resp.Breakdown.CouponApplied)
	s.True(resp.Breakdown.DiscountAmount.IsZero())
	s.True(resp.Total.Equal(decimal.NewFromInt(25)))
	s.NotEmpty(resp.Breakdown.CouponNote)
}

func (s *PricingServiceSuite) TestCalculatePriceExpiredCoupon() {
	s.createCoupon(&coupon.Coupon{
		Code:       "STALE",
		Type:       types.CouponTypeFixed,
		Discount:   decimal.NewFromInt(5),
		IsActive:   true,
		ExpiryDate: lo.ToPtr(time.Now().UTC().Add(-time.Hour)),
	})

	_, err := s.service.CalculatePrice(s.GetContext(), &dto.CalculatePriceRequest{
		PlanID:        s.plan.ID,
		BillingPeriod: types.BILLING_PERIOD_MONTHLY,
		CouponCode:    lo.ToPtr("STALE"),
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *PricingServiceSuite) TestCalculatePriceUnknownModule() {
	_, err := s.service.CalculatePrice(s.GetContext(), &dto.CalculatePriceRequest{
		PlanID:        s.plan.ID,
		BillingPeriod: types.BILLING_PERIOD_MONTHLY,
		ModuleIDs:     []string{"mod_missing"},
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *PricingServiceSuite) TestCalculatePriceUnknownPlan() {
	_, err := s.service.CalculatePrice(s.GetContext(), &dto.CalculatePriceRequest{
		PlanID:        "plan_missing",
		BillingPeriod: types.BILLING_PERIOD_MONTHLY,
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *PricingServiceSuite) TestQuoteDoesNotConsumeCoupon() {
	c := s.createCoupon(&coupon.Coupon{
		Code:       "ONCE",
		Type:       types.CouponTypeFixed,
		Discount:   decimal.NewFromInt(5),
		UsageLimit: lo.ToPtr(1),
		IsActive:   true,
	})

	for i := 0; i < 3; i++ {
		_, err := s.service.CalculatePrice(s.GetContext(), &dto.CalculatePriceRequest{
			PlanID:        s.plan.ID,
			BillingPeriod: types.BILLING_PERIOD_MONTHLY,
			CouponCode:    lo.ToPtr("ONCE"),
		})
		s.NoError(err)
	}

	stored, err := s.GetStores().CouponRepo.Get(s.GetContext(), c.ID)
	s.NoError(err)
	s.Equal(0, stored.UsedCount)
}

func (s *PricingServiceSuite) TestCommitCouponRedemption() {
	c := s.createCoupon(&coupon.Coupon{
		Code:       "ONCE",
		Type:       types.CouponTypeFixed,
		Discount:   decimal.NewFromInt(5),
		UsageLimit: lo.ToPtr(1),
		IsActive:   true,
	})

	s.NoError(s.service.CommitCouponRedemption(s.GetContext(), "once"))

	stored, err := s.GetStores().CouponRepo.Get(s.GetContext(), c.ID)
	s.NoError(err)
	s.Equal(1, stored.UsedCount)

	// Budget exhausted: the coupon now behaves as if it does not exist.
	err = s.service.CommitCouponRedemption(s.GetContext(), "ONCE")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
