package cron

import (
	"net/http"
	"time"

	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/service"
	"github.com/gin-gonic/gin"
)

// SubscriptionCronHandler exposes the expiry sweep as an HTTP trigger so the
// scheduler (or an operator) can kick a run on demand.
type SubscriptionCronHandler struct {
	sweeperService service.SweeperService
	logger         *logger.Logger
}

func NewSubscriptionCronHandler(sweeperService service.SweeperService, logger *logger.Logger) *SubscriptionCronHandler {
	return &SubscriptionCronHandler{
		sweeperService: sweeperService,
		logger:         logger,
	}
}

// SweepExpiredSubscriptions handles POST /cron/subscriptions/sweep. A sweep
// already in progress yields 409 with the skipped marker instead of a second
// concurrent run.
func (h *SubscriptionCronHandler) SweepExpiredSubscriptions(c *gin.Context) {
	now := time.Now().UTC()
	h.logger.Infow("triggering subscription expiry sweep", "time", now.Format(time.RFC3339))

	response, err := h.sweeperService.Sweep(c.Request.Context(), now)
	if err != nil {
		c.Error(err)
		return
	}

	if response.Skipped {
		c.JSON(http.StatusConflict, response)
		return
	}

	c.JSON(http.StatusOK, response)
}
