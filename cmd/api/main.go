package main

import (
	"context"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"

	_ "github.com/campusops/timetable-api/api/swagger"
	"github.com/campusops/timetable-api/internal/handler"
	"github.com/campusops/timetable-api/internal/repository"
	"github.com/campusops/timetable-api/internal/service"
	"github.com/campusops/timetable-api/pkg/cache"
	"github.com/campusops/timetable-api/pkg/config"
	"github.com/campusops/timetable-api/pkg/database"
	"github.com/campusops/timetable-api/pkg/logger"
)

// @title Campus Timetable API
// @version 1.0.0
// @description Academic timetable lifecycle and room reservation engine
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, catalog cache disabled", "error", err)
		redisClient = nil
	}

	timetableRepo := repository.NewTimetableRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	constraintRepo := repository.NewConstraintRepository(db)
	catalogRepo := repository.NewCatalogRepository(db, redisClient, cfg.Catalog.CacheTTL, logr)

	validate := validator.New()
	metrics := service.NewMetricsService()

	notifier := service.NewNotifier(cfg.Notifications, logr)
	notifier.Start(context.Background())
	defer notifier.Stop()

	detector := service.NewConflictService(logr)
	synchronizer := service.NewReservationSynchronizer(reservationRepo, cfg.Reservations.BookingConcurrency, logr)

	timetableSvc := service.NewTimetableService(
		timetableRepo,
		reservationRepo,
		constraintRepo,
		catalogRepo,
		synchronizer,
		detector,
		notifier,
		metrics,
		validate,
		logr,
	)
	// No solver ships in-process; the runner rejects generate requests until a
	// port implementation is registered here.
	timetableSvc.RegisterOptimizer(service.NewOptimizerRunner(nil, detector, service.OptimizerBudget{
		MaxIterations: cfg.Scheduler.MaxIterations,
		Timeout:       cfg.Scheduler.Timeout,
	}, logr))

	constraintSvc := service.NewConstraintService(constraintRepo, validate, logr)

	router := handler.NewRouter(handler.RouterDeps{
		Config:      cfg,
		Logger:      logr,
		Metrics:     metrics,
		Timetables:  handler.NewTimetableHandler(timetableSvc),
		Constraints: handler.NewConstraintHandler(constraintSvc),
		Catalog:     handler.NewCatalogHandler(catalogRepo),
		Observe:     handler.NewMetricsHandler(metrics, db, redisClient),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := router.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
