package journey

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mooncitizen/beatphobia-sub001/internal/analysis"
	"github.com/mooncitizen/beatphobia-sub001/internal/db"
	"github.com/mooncitizen/beatphobia-sub001/internal/shared/geo"
	"github.com/mooncitizen/beatphobia-sub001/internal/stream"

	"github.com/google/uuid"
)

// ErrNoLinkedPlan is returned when completions are requested for a journey
// that was recorded without an exposure plan.
var ErrNoLinkedPlan = errors.New("journey has no linked plan")

// AreaCache is notified when new path samples land so a cached safe-area
// polygon can be dropped.
type AreaCache interface {
	Invalidate(ctx context.Context, userID string)
}

type Service struct {
	db    db.Querier
	hub   *stream.Hub
	cache AreaCache
}

func NewService(db db.Querier, hub *stream.Hub, cache AreaCache) *Service {
	return &Service{db: db, hub: hub, cache: cache}
}

// SaveJourney stores a finalized journey with its path, checkpoints and
// hesitations, and appends every path sample to the user's safe-area point
// set.
func (s *Service) SaveJourney(ctx context.Context, input Journey) (Journey, error) {
	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	if input.EndedAt.IsZero() {
		input.EndedAt = input.StartedAt.Add(time.Duration(input.DurationSec) * time.Second)
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO journeys (id, user_id, started_at, ended_at, duration_seconds, distance_m, plan_id)
		VALUES ($1,$2,$3,$4,$5,$6,NULLIF($7,''))
		RETURNING created_at
	`, input.ID, input.UserID, input.StartedAt, input.EndedAt, input.DurationSec, input.DistanceM, input.PlanID)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Journey{}, err
	}

	for seq, p := range input.Path {
		_, err := s.db.Exec(ctx, `
			INSERT INTO journey_points (journey_id, seq, location)
			VALUES ($1,$2, ST_SetSRID(ST_MakePoint($3,$4), 4326)::geography)
		`, input.ID, seq, p.Lng, p.Lat)
		if err != nil {
			return Journey{}, err
		}

		_, err = s.db.Exec(ctx, `
			INSERT INTO safe_area_points (user_id, location)
			VALUES ($1, ST_SetSRID(ST_MakePoint($2,$3), 4326)::geography)
		`, input.UserID, p.Lng, p.Lat)
		if err != nil {
			return Journey{}, err
		}
	}

	for i := range input.Checkpoints {
		cp := &input.Checkpoints[i]
		if cp.ID == "" {
			cp.ID = uuid.NewString()
		}
		cp.JourneyID = input.ID
		cp.Feeling = ParseFeeling(string(cp.Feeling))
		_, err := s.db.Exec(ctx, `
			INSERT INTO checkpoints (id, journey_id, location, feeling, recorded_at)
			VALUES ($1,$2, ST_SetSRID(ST_MakePoint($3,$4), 4326)::geography, $5, $6)
		`, cp.ID, input.ID, cp.Lng, cp.Lat, string(cp.Feeling), cp.RecordedAt)
		if err != nil {
			return Journey{}, err
		}
	}

	for _, h := range input.Hesitations {
		_, err := s.db.Exec(ctx, `
			INSERT INTO hesitation_points (journey_id, location, started_at, ended_at, duration_seconds)
			VALUES ($1, ST_SetSRID(ST_MakePoint($2,$3), 4326)::geography, $4, $5, $6)
		`, input.ID, h.Lng, h.Lat, h.StartedAt, h.EndedAt, h.DurationSec)
		if err != nil {
			return Journey{}, err
		}
	}

	if s.cache != nil && len(input.Path) > 0 {
		s.cache.Invalidate(ctx, input.UserID)
	}

	return input, nil
}

// GetJourney loads one journey with path, checkpoints and hesitations.
func (s *Service) GetJourney(ctx context.Context, id string) (Journey, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, started_at, ended_at, duration_seconds, distance_m, COALESCE(plan_id,''), created_at
		FROM journeys WHERE id=$1
	`, id)
	var j Journey
	if err := row.Scan(&j.ID, &j.UserID, &j.StartedAt, &j.EndedAt, &j.DurationSec, &j.DistanceM, &j.PlanID, &j.CreatedAt); err != nil {
		return Journey{}, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT ST_Y(location::geometry), ST_X(location::geometry)
		FROM journey_points WHERE journey_id=$1
		ORDER BY seq
	`, id)
	if err != nil {
		return Journey{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var p geo.Coordinate
		if err := rows.Scan(&p.Lat, &p.Lng); err != nil {
			return Journey{}, err
		}
		j.Path = append(j.Path, p)
	}
	rows.Close()

	cpRows, err := s.db.Query(ctx, `
		SELECT id, journey_id, ST_Y(location::geometry), ST_X(location::geometry), feeling, recorded_at
		FROM checkpoints WHERE journey_id=$1
		ORDER BY recorded_at
	`, id)
	if err != nil {
		return Journey{}, err
	}
	defer cpRows.Close()
	for cpRows.Next() {
		var cp Checkpoint
		var feeling string
		if err := cpRows.Scan(&cp.ID, &cp.JourneyID, &cp.Lat, &cp.Lng, &feeling, &cp.RecordedAt); err != nil {
			return Journey{}, err
		}
		cp.Feeling = ParseFeeling(feeling)
		j.Checkpoints = append(j.Checkpoints, cp)
	}
	cpRows.Close()

	hRows, err := s.db.Query(ctx, `
		SELECT ST_Y(location::geometry), ST_X(location::geometry), started_at, ended_at, duration_seconds
		FROM hesitation_points WHERE journey_id=$1
		ORDER BY started_at
	`, id)
	if err != nil {
		return Journey{}, err
	}
	defer hRows.Close()
	for hRows.Next() {
		var h HesitationPoint
		if err := hRows.Scan(&h.Lat, &h.Lng, &h.StartedAt, &h.EndedAt, &h.DurationSec); err != nil {
			return Journey{}, err
		}
		j.Hesitations = append(j.Hesitations, h)
	}

	return j, nil
}

// ListJourneys returns a user's journeys newest first, with checkpoint
// counts joined in.
func (s *Service) ListJourneys(ctx context.Context, userID string) ([]Summary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT j.id, j.user_id, j.started_at, j.ended_at, j.duration_seconds, j.distance_m, COALESCE(j.plan_id,''), COUNT(c.id)
		FROM journeys j
		LEFT JOIN checkpoints c ON c.journey_id = j.id
		WHERE j.user_id=$1
		GROUP BY j.id
		ORDER BY j.started_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(&sm.ID, &sm.UserID, &sm.StartedAt, &sm.EndedAt, &sm.DurationSec, &sm.DistanceM, &sm.PlanID, &sm.CheckpointCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, sm)
	}
	return summaries, nil
}

// Completions analyzes the journey's path against its linked plan's
// non-deleted targets in order.
func (s *Service) Completions(ctx context.Context, journeyID string) ([]analysis.TargetCompletion, error) {
	j, err := s.GetJourney(ctx, journeyID)
	if err != nil {
		return nil, err
	}
	if j.PlanID == "" {
		return nil, ErrNoLinkedPlan
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, name, ST_Y(location::geometry), ST_X(location::geometry), order_index, wait_time_seconds
		FROM plan_targets
		WHERE plan_id=$1 AND is_deleted=false
		ORDER BY order_index
	`, j.PlanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []analysis.Target
	for rows.Next() {
		var t analysis.Target
		if err := rows.Scan(&t.ID, &t.Name, &t.Coordinate.Lat, &t.Coordinate.Lng, &t.OrderIndex, &t.WaitTimeSec); err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}

	duration := time.Duration(j.DurationSec) * time.Second
	return analysis.AnalyzeTargetCompletions(j.Path, j.StartedAt, duration, targets), nil
}

// BroadcastLive pushes a position update to stream watchers of a recording
// journey.
func (s *Service) BroadcastLive(point LivePoint) {
	if s.hub == nil {
		return
	}
	if point.RecordedAt.IsZero() {
		point.RecordedAt = time.Now()
	}
	payload, _ := json.Marshal(point)
	s.hub.Broadcast(point.JourneyID, payload)
}
