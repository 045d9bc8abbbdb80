package api

import (
	"github.com/billforge/billforge/internal/api/cron"
	v1 "github.com/billforge/billforge/internal/api/v1"
	"github.com/billforge/billforge/internal/rest/middleware"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health           *v1.HealthHandler
	Invoice          *v1.InvoiceHandler
	Receipt          *v1.ReceiptHandler
	Coupon           *v1.CouponHandler
	Pricing          *v1.PricingHandler
	ModulePrice      *v1.ModulePriceHandler
	Subscription     *v1.SubscriptionHandler
	SubscriptionCron *cron.SubscriptionCronHandler
}

func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.TenantContextMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	invoices := router.Group("/invoices")
	{
		invoices.POST("", handlers.Invoice.CreateInvoice)
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.DELETE("/:id", handlers.Invoice.DeleteInvoice)
	}

	receipts := router.Group("/receipts")
	{
		receipts.POST("", handlers.Receipt.RecordReceipt)
		receipts.GET("", handlers.Receipt.ListReceipts)
		receipts.GET("/:id", handlers.Receipt.GetReceipt)
		receipts.PUT("/:id", handlers.Receipt.UpdateReceipt)
		receipts.DELETE("/:id", handlers.Receipt.DeleteReceipt)
	}

	coupons := router.Group("/coupons")
	{
		coupons.POST("", handlers.Coupon.CreateCoupon)
		coupons.GET("", handlers.Coupon.ListCoupons)
		coupons.POST("/validate", handlers.Coupon.ValidateCoupon)
		coupons.GET("/:id", handlers.Coupon.GetCoupon)
		coupons.PUT("/:id", handlers.Coupon.UpdateCoupon)
		coupons.DELETE("/:id", handlers.Coupon.DeleteCoupon)
		coupons.POST("/:id/toggle", handlers.Coupon.ToggleCouponActive)
	}

	pricing := router.Group("/pricing")
	{
		pricing.POST("/calculate", handlers.Pricing.CalculatePrice)
	}

	modules := router.Group("/modules")
	{
		modules.POST("", handlers.ModulePrice.CreateModulePrice)
		modules.GET("", handlers.ModulePrice.ListModulePrices)
		modules.GET("/:id", handlers.ModulePrice.GetModulePrice)
		modules.PUT("/:id", handlers.ModulePrice.UpdateModulePrice)
		modules.DELETE("/:id", handlers.ModulePrice.DeleteModulePrice)
		modules.POST("/:id/logo", handlers.ModulePrice.UploadLogo)
	}

	subscriptions := router.Group("/subscriptions")
	{
		subscriptions.POST("/activate", handlers.Subscription.ActivateSubscription)
		subscriptions.GET("/:id", handlers.Subscription.GetSubscription)
		subscriptions.GET("/owner/:owner_id", handlers.Subscription.GetSubscriptionByOwner)
	}

	cronGroup := router.Group("/cron")
	{
		cronGroup.POST("/subscriptions/sweep", handlers.SubscriptionCron.SweepExpiredSubscriptions)
	}
}
