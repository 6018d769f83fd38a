package safearea

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/mooncitizen/beatphobia-sub001/internal/analysis"
	"github.com/mooncitizen/beatphobia-sub001/internal/db"
	"github.com/mooncitizen/beatphobia-sub001/internal/shared/geo"

	"github.com/redis/go-redis/v9"
)

// Area is the derived safe-area polygon for a user. HasPolygon is false when
// the historical point set is too sparse for a boundary.
type Area struct {
	UserID     string           `json:"user_id"`
	Polygon    []geo.Coordinate `json:"polygon,omitempty"`
	HasPolygon bool             `json:"has_polygon"`
	PointCount int              `json:"point_count"`
	ComputedAt time.Time        `json:"computed_at"`
}

type Service struct {
	db       db.Querier
	redis    *redis.Client
	cacheTTL time.Duration
}

func NewService(db db.Querier, redisClient *redis.Client, cacheTTL time.Duration) *Service {
	return &Service{db: db, redis: redisClient, cacheTTL: cacheTTL}
}

// Area returns the user's safe-area polygon, recomputing from the full
// historical point set on cache miss. Computation is a fresh pass every time;
// point sets are append-only and per-user small.
func (s *Service) Area(ctx context.Context, userID string) (Area, error) {
	if cached, ok := s.cachedArea(ctx, userID); ok {
		return cached, nil
	}

	points, err := s.loadPoints(ctx, userID)
	if err != nil {
		return Area{}, err
	}

	polygon, ok := analysis.ComputeSafeArea(points)
	area := Area{
		UserID:     userID,
		Polygon:    polygon,
		HasPolygon: ok,
		PointCount: len(points),
		ComputedAt: time.Now(),
	}

	s.storeArea(ctx, area)
	return area, nil
}

// Invalidate drops the cached polygon so the next read recomputes. Called
// when a journey lands new path samples.
func (s *Service) Invalidate(ctx context.Context, userID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, cacheKey(userID)).Err(); err != nil {
		log.Printf("safearea cache invalidate error: %v", err)
	}
}

func (s *Service) loadPoints(ctx context.Context, userID string) ([]geo.Coordinate, error) {
	rows, err := s.db.Query(ctx, `
		SELECT ST_Y(location::geometry), ST_X(location::geometry)
		FROM safe_area_points WHERE user_id=$1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []geo.Coordinate
	for rows.Next() {
		var p geo.Coordinate
		if err := rows.Scan(&p.Lat, &p.Lng); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

func (s *Service) cachedArea(ctx context.Context, userID string) (Area, bool) {
	if s.redis == nil {
		return Area{}, false
	}
	raw, err := s.redis.Get(ctx, cacheKey(userID)).Bytes()
	if err != nil {
		return Area{}, false
	}
	var area Area
	if err := json.Unmarshal(raw, &area); err != nil {
		return Area{}, false
	}
	return area, true
}

func (s *Service) storeArea(ctx context.Context, area Area) {
	if s.redis == nil {
		return
	}
	payload, _ := json.Marshal(area)
	if err := s.redis.Set(ctx, cacheKey(area.UserID), payload, s.cacheTTL).Err(); err != nil {
		log.Printf("safearea cache store error: %v", err)
	}
}

func cacheKey(userID string) string {
	return "safearea:" + userID + ":polygon"
}
