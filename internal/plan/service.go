package plan

import (
	"context"
	"errors"

	"github.com/mooncitizen/beatphobia-sub001/internal/db"

	"github.com/google/uuid"
)

var errTargetNotFound = errors.New("target not found")

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) CreatePlan(ctx context.Context, input Plan) (Plan, error) {
	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO plans (id, user_id, name)
		VALUES ($1,$2,$3)
		RETURNING created_at
	`, input.ID, input.UserID, input.Name)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Plan{}, err
	}

	for i := range input.Targets {
		t, err := s.AddTarget(ctx, input.ID, input.Targets[i])
		if err != nil {
			return Plan{}, err
		}
		input.Targets[i] = t
	}
	return input, nil
}

// GetPlan loads a plan with its non-deleted targets in order.
func (s *Service) GetPlan(ctx context.Context, id string) (Plan, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, name, created_at
		FROM plans WHERE id=$1
	`, id)
	var p Plan
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt); err != nil {
		return Plan{}, err
	}

	targets, err := s.Targets(ctx, id)
	if err != nil {
		return Plan{}, err
	}
	p.Targets = targets
	return p, nil
}

func (s *Service) ListPlans(ctx context.Context, userID string) ([]Plan, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, name, created_at
		FROM plans WHERE user_id=$1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []Plan
	for rows.Next() {
		var p Plan
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func (s *Service) UpdatePlan(ctx context.Context, id string, patch Plan) (Plan, error) {
	p, err := s.GetPlan(ctx, id)
	if err != nil {
		return Plan{}, err
	}
	if patch.Name != "" {
		p.Name = patch.Name
	}

	_, err = s.db.Exec(ctx, `UPDATE plans SET name=$2 WHERE id=$1`, p.ID, p.Name)
	if err != nil {
		return Plan{}, err
	}
	return p, nil
}

func (s *Service) DeletePlan(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM plans WHERE id=$1`, id)
	return err
}

func (s *Service) AddTarget(ctx context.Context, planID string, input Target) (Target, error) {
	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	input.PlanID = planID
	row := s.db.QueryRow(ctx, `
		INSERT INTO plan_targets (id, plan_id, name, location, order_index, wait_time_seconds)
		VALUES ($1,$2,$3, ST_SetSRID(ST_MakePoint($4,$5), 4326)::geography, $6, $7)
		RETURNING created_at
	`, input.ID, planID, input.Name, input.Lng, input.Lat, input.OrderIndex, input.WaitTimeSec)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Target{}, err
	}
	return input, nil
}

// Targets returns the plan's non-deleted targets ordered by order_index.
func (s *Service) Targets(ctx context.Context, planID string) ([]Target, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, plan_id, name, ST_Y(location::geometry), ST_X(location::geometry), order_index, wait_time_seconds, created_at
		FROM plan_targets
		WHERE plan_id=$1 AND is_deleted=false
		ORDER BY order_index
	`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []Target
	for rows.Next() {
		var t Target
		if err := rows.Scan(&t.ID, &t.PlanID, &t.Name, &t.Lat, &t.Lng, &t.OrderIndex, &t.WaitTimeSec, &t.CreatedAt); err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, nil
}

func (s *Service) UpdateTarget(ctx context.Context, planID, targetID string, patch Target) (Target, error) {
	targets, err := s.Targets(ctx, planID)
	if err != nil {
		return Target{}, err
	}
	var current *Target
	for i := range targets {
		if targets[i].ID == targetID {
			current = &targets[i]
			break
		}
	}
	if current == nil {
		return Target{}, errTargetNotFound
	}

	if patch.Name != "" {
		current.Name = patch.Name
	}
	if patch.Lat != 0 {
		current.Lat = patch.Lat
	}
	if patch.Lng != 0 {
		current.Lng = patch.Lng
	}
	if patch.OrderIndex != 0 {
		current.OrderIndex = patch.OrderIndex
	}
	if patch.WaitTimeSec != 0 {
		current.WaitTimeSec = patch.WaitTimeSec
	}

	_, err = s.db.Exec(ctx, `
		UPDATE plan_targets
		SET name=$2,
		    location=ST_SetSRID(ST_MakePoint($3,$4), 4326)::geography,
		    order_index=$5, wait_time_seconds=$6
		WHERE id=$1
	`, current.ID, current.Name, current.Lng, current.Lat, current.OrderIndex, current.WaitTimeSec)
	if err != nil {
		return Target{}, err
	}
	return *current, nil
}

// RemoveTarget soft-deletes a target so past journey analyses stay
// reproducible against the plan as it was.
func (s *Service) RemoveTarget(ctx context.Context, planID, targetID string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE plan_targets SET is_deleted=true
		WHERE id=$1 AND plan_id=$2
	`, targetID, planID)
	return err
}
