package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/campusops/timetable-api/internal/middleware"
	"github.com/campusops/timetable-api/internal/models"
	"github.com/campusops/timetable-api/internal/service"
	"github.com/campusops/timetable-api/pkg/config"
	"github.com/campusops/timetable-api/pkg/logger"
	corsmiddleware "github.com/campusops/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campusops/timetable-api/pkg/middleware/requestid"
)

// RouterDeps carries everything the router needs to mount the API surface.
type RouterDeps struct {
	Config      *config.Config
	Logger      *zap.Logger
	Metrics     *service.MetricsService
	Timetables  *TimetableHandler
	Constraints *ConstraintHandler
	Catalog     *CatalogHandler
	Observe     *MetricsHandler
}

// NewRouter assembles the gin engine with middleware and all route groups.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(deps.Config.CORS.AllowedOrigins))
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}

	r.GET("/health", deps.Observe.Health)
	r.GET("/ready", deps.Observe.Ready)
	r.GET("/metrics", deps.Observe.Prometheus)
	if deps.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authed := r.Group("/api/v1")
	authed.Use(middleware.JWT(deps.Config.JWT.Secret))

	scheduler := middleware.RequireRoles(models.RoleScheduler, models.RoleAdmin)

	timetables := authed.Group("/timetables")
	{
		timetables.POST("", scheduler, deps.Timetables.Create)
		timetables.GET("", deps.Timetables.List)
		timetables.GET("/:id", deps.Timetables.Get)
		timetables.PUT("/:id/entries", scheduler, deps.Timetables.ReplaceEntries)
		timetables.POST("/:id/conflicts", deps.Timetables.DetectConflicts)
		timetables.POST("/:id/validate", scheduler, deps.Timetables.Validate)
		timetables.POST("/:id/invalidate", scheduler, deps.Timetables.Invalidate)
		timetables.POST("/:id/publish", scheduler, deps.Timetables.Publish)
		timetables.POST("/:id/generate", scheduler, deps.Timetables.Generate)
		timetables.DELETE("/:id", scheduler, deps.Timetables.Delete)
	}

	constraints := authed.Group("/constraints")
	{
		constraints.POST("", scheduler, deps.Constraints.Create)
		constraints.GET("", deps.Constraints.List)
		constraints.DELETE("/:id", scheduler, deps.Constraints.Deactivate)
	}

	catalog := authed.Group("/catalog")
	{
		catalog.GET("/rooms", deps.Catalog.Rooms)
		catalog.GET("/modules", deps.Catalog.Modules)
		catalog.GET("/teachers", deps.Catalog.Teachers)
	}

	return r
}
