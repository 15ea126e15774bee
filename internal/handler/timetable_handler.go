package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campusops/timetable-api/internal/dto"
	"github.com/campusops/timetable-api/internal/models"
	"github.com/campusops/timetable-api/internal/service"
	appErrors "github.com/campusops/timetable-api/pkg/errors"
	"github.com/campusops/timetable-api/pkg/response"
)

type timetableLifecycle interface {
	Create(ctx context.Context, req dto.CreateTimetableRequest, actor string) (*models.Timetable, error)
	Get(ctx context.Context, id string) (*dto.TimetableDetail, error)
	List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, int, error)
	ReplaceEntries(ctx context.Context, id string, req dto.ReplaceEntriesRequest) ([]models.ScheduleEntry, error)
	DetectConflicts(ctx context.Context, id string) (*dto.ConflictReport, error)
	Validate(ctx context.Context, id, actor string) (*dto.TransitionResult, error)
	Invalidate(ctx context.Context, id, actor string) (*dto.TransitionResult, error)
	Publish(ctx context.Context, id, actor string) (*dto.TransitionResult, error)
	Delete(ctx context.Context, id string) error
	Generate(ctx context.Context, id string, req dto.GenerateRequest) (*service.ProposalOutcome, error)
}

// TimetableHandler exposes the lifecycle engine over HTTP.
type TimetableHandler struct {
	service timetableLifecycle
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Create godoc
// @Summary Create a draft timetable
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.CreateTimetableRequest true "Create timetable payload"
// @Success 201 {object} response.Envelope
// @Router /timetables [post]
func (h *TimetableHandler) Create(c *gin.Context) {
	var req dto.CreateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable payload"))
		return
	}
	t, err := h.service.Create(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, t)
}

// Get godoc
// @Summary Get a timetable with entries and reservation count
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	detail, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// List godoc
// @Summary List timetables
// @Tags Timetables
// @Produce json
// @Param formationId query string false "Formation ID"
// @Param academicYear query int false "Academic year"
// @Param semester query string false "Semester (S1 or S2)"
// @Param status query string false "Lifecycle status"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /timetables [get]
func (h *TimetableHandler) List(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("academicYear"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	filter := models.TimetableFilter{
		FormationID:  c.Query("formationId"),
		AcademicYear: year,
		Semester:     c.Query("semester"),
		Status:       c.Query("status"),
		Page:         page,
		PageSize:     pageSize,
	}
	timetables, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination := &models.Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
	response.JSON(c, http.StatusOK, timetables, pagination)
}

// ReplaceEntries godoc
// @Summary Replace the entry set of a draft or invalidated timetable
// @Tags Timetables
// @Accept json
// @Produce json
// @Param id path string true "Timetable ID"
// @Param payload body dto.ReplaceEntriesRequest true "Entries payload"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/entries [put]
func (h *TimetableHandler) ReplaceEntries(c *gin.Context) {
	var req dto.ReplaceEntriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid entries payload"))
		return
	}
	entries, err := h.service.ReplaceEntries(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// DetectConflicts godoc
// @Summary Run conflict detection for a timetable
// @Description Read-only: recomputes conflicts against a fresh reservation snapshot without touching lifecycle state.
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/conflicts [post]
func (h *TimetableHandler) DetectConflicts(c *gin.Context) {
	report, err := h.service.DetectConflicts(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Validate godoc
// @Summary Validate a draft or invalidated timetable and materialize its reservations
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/validate [post]
func (h *TimetableHandler) Validate(c *gin.Context) {
	result, err := h.service.Validate(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Invalidate godoc
// @Summary Invalidate a validated timetable, tearing down its reservations
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/invalidate [post]
func (h *TimetableHandler) Invalidate(c *gin.Context) {
	result, err := h.service.Invalidate(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Publish godoc
// @Summary Publish a validated timetable
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/publish [post]
func (h *TimetableHandler) Publish(c *gin.Context) {
	result, err := h.service.Publish(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Delete godoc
// @Summary Delete a draft or invalidated timetable
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 204 {string} string ""
// @Router /timetables/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Generate godoc
// @Summary Run the optimizer port and return a re-validated proposal
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param id path string true "Timetable ID"
// @Param payload body dto.GenerateRequest true "Generate payload"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	outcome, err := h.service.Generate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcome, nil)
}
