package v1

import (
	"net/http"

	"github.com/billforge/billforge/internal/api/dto"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/service"
	"github.com/gin-gonic/gin"
)

type PricingHandler struct {
	pricingService service.PricingService
	logger         *logger.Logger
}

func NewPricingHandler(pricingService service.PricingService, logger *logger.Logger) *PricingHandler {
	return &PricingHandler{
		pricingService: pricingService,
		logger:         logger,
	}
}

// CalculatePrice handles POST /pricing/calculate. Quotes are free of side
// effects; committing a quoted coupon happens on activation.
func (h *PricingHandler) CalculatePrice(c *gin.Context) {
	var req dto.CalculatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.pricingService.CalculatePrice(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}
