package repository

import (
	"github.com/billforge/billforge/internal/domain/coupon"
	"github.com/billforge/billforge/internal/domain/invoice"
	"github.com/billforge/billforge/internal/domain/moduleprice"
	"github.com/billforge/billforge/internal/domain/plan"
	"github.com/billforge/billforge/internal/domain/receipt"
	"github.com/billforge/billforge/internal/domain/subscription"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/postgres"
	repo "github.com/billforge/billforge/internal/repository/postgres"
)

func NewInvoiceRepository(client postgres.IClient, logger *logger.Logger) invoice.Repository {
	return repo.NewInvoiceRepository(client, logger)
}

func NewReceiptRepository(client postgres.IClient, logger *logger.Logger) receipt.Repository {
	return repo.NewReceiptRepository(client, logger)
}

func NewCouponRepository(client postgres.IClient, logger *logger.Logger) coupon.Repository {
	return repo.NewCouponRepository(client, logger)
}

func NewModulePriceRepository(client postgres.IClient, logger *logger.Logger) moduleprice.Repository {
	return repo.NewModulePriceRepository(client, logger)
}

func NewPlanRepository(client postgres.IClient, logger *logger.Logger) plan.Repository {
	return repo.NewPlanRepository(client, logger)
}

func NewSubscriptionRepository(client postgres.IClient, logger *logger.Logger) subscription.Repository {
	return repo.NewSubscriptionRepository(client, logger)
}
