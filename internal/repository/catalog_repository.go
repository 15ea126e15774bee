package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/campusops/timetable-api/internal/models"
)

// CatalogRepository serves the read-only reference data the engine consumes:
// rooms from the space inventory, modules from the formation catalog and
// teachers from HR. Lists are cached in Redis because the dashboard polls
// them on every screen; cache failures degrade to direct reads.
type CatalogRepository struct {
	db     *sqlx.DB
	cache  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCatalogRepository creates a catalog repository. The cache client may be
// nil, in which case every read goes to the database.
func NewCatalogRepository(db *sqlx.DB, cache *redis.Client, ttl time.Duration, logger *zap.Logger) *CatalogRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CatalogRepository{db: db, cache: cache, ttl: ttl, logger: logger}
}

// ListRooms returns every bookable room.
func (r *CatalogRepository) ListRooms(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	if r.readCached(ctx, "catalog:rooms", &rooms) {
		return rooms, nil
	}
	const query = `SELECT id, name, building, capacity, equipment, created_at FROM rooms ORDER BY building ASC, name ASC`
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	r.writeCached(ctx, "catalog:rooms", rooms)
	return rooms, nil
}

// RoomsByID returns rooms keyed by id, for capacity checks.
func (r *CatalogRepository) RoomsByID(ctx context.Context) (map[string]models.Room, error) {
	rooms, err := r.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Room, len(rooms))
	for _, room := range rooms {
		byID[room.ID] = room
	}
	return byID, nil
}

// ListModules returns the formation catalog for one formation.
func (r *CatalogRepository) ListModules(ctx context.Context, formationID string) ([]models.Module, error) {
	key := "catalog:modules:" + formationID
	var modules []models.Module
	if r.readCached(ctx, key, &modules) {
		return modules, nil
	}
	const query = `SELECT id, code, name, formation_id, semester, lecture_hours, tutorial_hours, lab_hours, created_at FROM modules WHERE formation_id = $1 ORDER BY code ASC`
	if err := r.db.SelectContext(ctx, &modules, query, formationID); err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	r.writeCached(ctx, key, modules)
	return modules, nil
}

// ListTeachers returns the teaching staff roster.
func (r *CatalogRepository) ListTeachers(ctx context.Context) ([]models.Teacher, error) {
	var teachers []models.Teacher
	if r.readCached(ctx, "catalog:teachers", &teachers) {
		return teachers, nil
	}
	const query = `SELECT id, full_name, email, department, availability, created_at FROM teachers ORDER BY full_name ASC`
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	r.writeCached(ctx, "catalog:teachers", teachers)
	return teachers, nil
}

func (r *CatalogRepository) readCached(ctx context.Context, key string, dest interface{}) bool {
	if r.cache == nil {
		return false
	}
	raw, err := r.cache.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		r.logger.Sugar().Warnw("catalog cache decode failed", "key", key, "error", err)
		return false
	}
	return true
}

func (r *CatalogRepository) writeCached(ctx context.Context, key string, value interface{}) {
	if r.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		r.logger.Sugar().Warnw("catalog cache write failed", "key", key, "error", err)
	}
}
