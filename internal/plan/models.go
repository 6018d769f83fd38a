package plan

import "time"

// Plan is a pre-planned exposure route: an ordered set of targets the user
// intends to visit during practice.
type Plan struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Targets   []Target  `json:"targets,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Target is one waypoint of a plan. Soft-deleted targets stay in the table
// but are excluded from listings and analysis.
type Target struct {
	ID          string    `json:"id"`
	PlanID      string    `json:"plan_id"`
	Name        string    `json:"name"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	OrderIndex  int       `json:"order_index"`
	WaitTimeSec int       `json:"wait_time_seconds"`
	IsDeleted   bool      `json:"is_deleted"`
	CreatedAt   time.Time `json:"created_at"`
}
