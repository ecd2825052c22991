package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/renderbase/renderbase/internal/api/dto"
	ierr "github.com/renderbase/renderbase/internal/errors"
	"github.com/renderbase/renderbase/internal/logger"
	"github.com/renderbase/renderbase/internal/service"
)

type RenderJobHandler struct {
	renderJobService service.RenderJobService
	logger           *logger.Logger
}

func NewRenderJobHandler(renderJobService service.RenderJobService, logger *logger.Logger) *RenderJobHandler {
	return &RenderJobHandler{
		renderJobService: renderJobService,
		logger:           logger,
	}
}

// SubmitJob godoc
// @Summary Submit a render job
// @Description Charge credits and submit a render job to the named provider
// @Tags RenderJob
// @Accept json
// @Produce json
// @Param request body dto.SubmitRenderJobRequest true "Render job request"
// @Success 200 {object} dto.SubmitRenderJobResponse
// @Failure 402 {object} middleware.ErrorResponse
// @Router /jobs [post]
func (h *RenderJobHandler) SubmitJob(c *gin.Context) {
	var req dto.SubmitRenderJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid render job request").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.renderJobService.SubmitJob(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
