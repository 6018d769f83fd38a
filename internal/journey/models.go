package journey

import (
	"time"

	"github.com/mooncitizen/beatphobia-sub001/internal/shared/geo"
)

// FeelingLevel is a user-reported emotional state captured at a checkpoint.
type FeelingLevel string

const (
	FeelingGreat   FeelingLevel = "great"
	FeelingGood    FeelingLevel = "good"
	FeelingOkay    FeelingLevel = "okay"
	FeelingAnxious FeelingLevel = "anxious"
	FeelingPanic   FeelingLevel = "panic"
)

// ParseFeeling maps a stored string to a FeelingLevel. Unknown values fall
// back to FeelingOkay; this is the single place that default applies.
func ParseFeeling(s string) FeelingLevel {
	switch FeelingLevel(s) {
	case FeelingGreat, FeelingGood, FeelingOkay, FeelingAnxious, FeelingPanic:
		return FeelingLevel(s)
	}
	return FeelingOkay
}

// Journey is one finalized tracking session. Read-only once stored; the path
// is ordered by recording sequence and must never be reordered.
type Journey struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	StartedAt   time.Time         `json:"started_at"`
	EndedAt     time.Time         `json:"ended_at"`
	DurationSec int64             `json:"duration_sec"`
	DistanceM   float64           `json:"distance_m"`
	PlanID      string            `json:"plan_id,omitempty"`
	Path        []geo.Coordinate  `json:"path"`
	Checkpoints []Checkpoint      `json:"checkpoints"`
	Hesitations []HesitationPoint `json:"hesitation_points"`
	CreatedAt   time.Time         `json:"created_at"`
}

type Checkpoint struct {
	ID         string       `json:"id"`
	JourneyID  string       `json:"journey_id"`
	Lat        float64      `json:"lat"`
	Lng        float64      `json:"lng"`
	Feeling    FeelingLevel `json:"feeling"`
	RecordedAt time.Time    `json:"recorded_at"`
}

type HesitationPoint struct {
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	StartedAt   time.Time `json:"started_at"`
	EndedAt     time.Time `json:"ended_at"`
	DurationSec int64     `json:"duration_sec"`
}

// Summary is the list-view shape of a journey, with the checkpoint count
// pre-joined for rollups.
type Summary struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	StartedAt       time.Time `json:"started_at"`
	EndedAt         time.Time `json:"ended_at"`
	DurationSec     int64     `json:"duration_sec"`
	DistanceM       float64   `json:"distance_m"`
	PlanID          string    `json:"plan_id,omitempty"`
	CheckpointCount int       `json:"checkpoint_count"`
}

// LivePoint is a position update broadcast to stream watchers while a journey
// is still recording. Never persisted here; the client submits the full path
// when it finalizes the journey.
type LivePoint struct {
	JourneyID  string    `json:"journey_id"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	RecordedAt time.Time `json:"recorded_at"`
}
