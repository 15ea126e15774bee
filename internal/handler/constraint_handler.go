package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusops/timetable-api/internal/dto"
	"github.com/campusops/timetable-api/internal/models"
	"github.com/campusops/timetable-api/internal/service"
	appErrors "github.com/campusops/timetable-api/pkg/errors"
	"github.com/campusops/timetable-api/pkg/response"
)

type constraintManager interface {
	Add(ctx context.Context, req dto.CreateConstraintRequest) (*models.Constraint, error)
	Deactivate(ctx context.Context, id string) error
	ListActive(ctx context.Context, target string) ([]models.Constraint, error)
}

// ConstraintHandler exposes constraint management endpoints.
type ConstraintHandler struct {
	service constraintManager
}

// NewConstraintHandler constructs the handler.
func NewConstraintHandler(svc *service.ConstraintService) *ConstraintHandler {
	return &ConstraintHandler{service: svc}
}

// Create godoc
// @Summary Register a scheduling rule
// @Tags Constraints
// @Accept json
// @Produce json
// @Param payload body dto.CreateConstraintRequest true "Constraint payload"
// @Success 201 {object} response.Envelope
// @Router /constraints [post]
func (h *ConstraintHandler) Create(c *gin.Context) {
	var req dto.CreateConstraintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid constraint payload"))
		return
	}
	constraint, err := h.service.Add(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, constraint)
}

// Deactivate godoc
// @Summary Deactivate a scheduling rule
// @Tags Constraints
// @Produce json
// @Param id path string true "Constraint ID"
// @Success 204 {string} string ""
// @Router /constraints/{id} [delete]
func (h *ConstraintHandler) Deactivate(c *gin.Context) {
	if err := h.service.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// List godoc
// @Summary List active scheduling rules
// @Tags Constraints
// @Produce json
// @Param targetType query string false "Target type filter"
// @Success 200 {object} response.Envelope
// @Router /constraints [get]
func (h *ConstraintHandler) List(c *gin.Context) {
	constraints, err := h.service.ListActive(c.Request.Context(), c.Query("targetType"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, constraints, nil)
}
