package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/renderbase/renderbase/internal/api/dto"
	ierr "github.com/renderbase/renderbase/internal/errors"
	"github.com/renderbase/renderbase/internal/logger"
	"github.com/renderbase/renderbase/internal/service"
)

type PlanHandler struct {
	planService service.PlanService
	logger      *logger.Logger
}

func NewPlanHandler(planService service.PlanService, logger *logger.Logger) *PlanHandler {
	return &PlanHandler{
		planService: planService,
		logger:      logger,
	}
}

// CreatePlan godoc
// @Summary Create a plan
// @Tags Plan
// @Accept json
// @Produce json
// @Param request body dto.CreatePlanRequest true "Create plan request"
// @Success 201 {object} dto.PlanResponse
// @Router /plans [post]
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req dto.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid plan request").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.planService.CreatePlan(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetPlan godoc
// @Summary Get a plan
// @Tags Plan
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} dto.PlanResponse
// @Router /plans/{id} [get]
func (h *PlanHandler) GetPlan(c *gin.Context) {
	resp, err := h.planService.GetPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListPlans godoc
// @Summary List plans
// @Tags Plan
// @Produce json
// @Param active query bool false "Only active plans"
// @Success 200 {array} dto.PlanResponse
// @Router /plans [get]
func (h *PlanHandler) ListPlans(c *gin.Context) {
	onlyActive := c.Query("active") == "true"

	resp, err := h.planService.ListPlans(c.Request.Context(), onlyActive)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdatePlan godoc
// @Summary Update a plan
// @Tags Plan
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Param request body dto.UpdatePlanRequest true "Update plan request"
// @Success 200 {object} dto.PlanResponse
// @Router /plans/{id} [put]
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	var req dto.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid plan update request").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.planService.UpdatePlan(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
