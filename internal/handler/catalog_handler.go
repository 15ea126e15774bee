package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusops/timetable-api/internal/models"
	"github.com/campusops/timetable-api/internal/repository"
	"github.com/campusops/timetable-api/pkg/response"
)

type catalogReader interface {
	ListRooms(ctx context.Context) ([]models.Room, error)
	ListModules(ctx context.Context, formationID string) ([]models.Module, error)
	ListTeachers(ctx context.Context) ([]models.Teacher, error)
}

// CatalogHandler serves the read-only resource catalog.
type CatalogHandler struct {
	catalog catalogReader
}

func NewCatalogHandler(repo *repository.CatalogRepository) *CatalogHandler {
	return &CatalogHandler{catalog: repo}
}

// Rooms godoc
// @Summary List rooms
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/rooms [get]
func (h *CatalogHandler) Rooms(c *gin.Context) {
	rooms, err := h.catalog.ListRooms(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms, nil)
}

// Modules godoc
// @Summary List teaching modules
// @Tags Catalog
// @Produce json
// @Param formationId query string false "Formation filter"
// @Success 200 {object} response.Envelope
// @Router /catalog/modules [get]
func (h *CatalogHandler) Modules(c *gin.Context) {
	modules, err := h.catalog.ListModules(c.Request.Context(), c.Query("formationId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, modules, nil)
}

// Teachers godoc
// @Summary List teachers
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/teachers [get]
func (h *CatalogHandler) Teachers(c *gin.Context) {
	teachers, err := h.catalog.ListTeachers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, nil)
}
