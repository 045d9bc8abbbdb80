package service

import (
	"github.com/billforge/billforge/internal/cache"
	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/domain/coupon"
	"github.com/billforge/billforge/internal/domain/invoice"
	"github.com/billforge/billforge/internal/domain/moduleprice"
	"github.com/billforge/billforge/internal/domain/plan"
	"github.com/billforge/billforge/internal/domain/receipt"
	"github.com/billforge/billforge/internal/domain/subscription"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/postgres"
	"github.com/billforge/billforge/internal/publisher"
	"github.com/billforge/billforge/internal/storage"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger  *logger.Logger
	Config  *config.Configuration
	DB      postgres.IClient
	Cache   cache.Cache
	Storage storage.Service

	EventPublisher publisher.EventPublisher

	// Repositories
	InvoiceRepo      invoice.Repository
	ReceiptRepo      receipt.Repository
	CouponRepo       coupon.Repository
	ModulePriceRepo  moduleprice.Repository
	PlanRepo         plan.Repository
	SubscriptionRepo subscription.Repository
}

// NewServiceParams assembles the shared service dependencies
func NewServiceParams(
	logger *logger.Logger,
	cfg *config.Configuration,
	db postgres.IClient,
	cacheClient cache.Cache,
	storageService storage.Service,
	eventPublisher publisher.EventPublisher,
	invoiceRepo invoice.Repository,
	receiptRepo receipt.Repository,
	couponRepo coupon.Repository,
	modulePriceRepo moduleprice.Repository,
	planRepo plan.Repository,
	subscriptionRepo subscription.Repository,
) ServiceParams {
	return ServiceParams{
		Logger:           logger,
		Config:           cfg,
		DB:               db,
		Cache:            cacheClient,
		Storage:          storageService,
		EventPublisher:   eventPublisher,
		InvoiceRepo:      invoiceRepo,
		ReceiptRepo:      receiptRepo,
		CouponRepo:       couponRepo,
		ModulePriceRepo:  modulePriceRepo,
		PlanRepo:         planRepo,
		SubscriptionRepo: subscriptionRepo,
	}
}
