package cron

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/renderbase/renderbase/internal/logger"
	"github.com/renderbase/renderbase/internal/service"
)

// CreditResetHandler exposes the credit reset sweep for external cron
// triggers. The in-process scheduler covers normal operation; this endpoint
// exists for manual reruns and deployments that prefer an external cron.
type CreditResetHandler struct {
	resetService service.CreditResetService
	logger       *logger.Logger
}

// NewCreditResetHandler creates a new credit reset handler
func NewCreditResetHandler(resetService service.CreditResetService, logger *logger.Logger) *CreditResetHandler {
	return &CreditResetHandler{
		resetService: resetService,
		logger:       logger,
	}
}

func (h *CreditResetHandler) ResetMonthlyCredits(c *gin.Context) {
	ctx := c.Request.Context()

	response, err := h.resetService.ResetMonthlyCredits(ctx)
	if err != nil {
		h.logger.Errorw("failed to run credit reset sweep",
			"error", err)

		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}
