package analysis

import (
	"math"
	"time"

	"github.com/mooncitizen/beatphobia-sub001/internal/shared/geo"
)

const (
	// reachedRadiusM is deliberately wider than the 10-20 m tracking geofence
	// to tolerate GPS drift in the recorded path.
	reachedRadiusM = 30.0

	// dwellWindow and sampleIntervalSec drive the dwell-time estimate: path
	// points carry no timestamps, so we assume one sample every five seconds
	// and look ±10 indices around the closest approach.
	dwellWindow       = 10
	sampleIntervalSec = 5
)

// Target is a planned waypoint to match against a recorded path.
type Target struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Coordinate  geo.Coordinate `json:"coordinate"`
	OrderIndex  int            `json:"order_index"`
	WaitTimeSec int            `json:"wait_time_seconds"`
}

// TargetCompletion reports whether and when a planned target was visited.
// Derived fresh per call, never persisted.
type TargetCompletion struct {
	Target           Target     `json:"target"`
	Index            int        `json:"index"`
	WasReached       bool       `json:"was_reached"`
	MinDistanceM     float64    `json:"min_distance_m"`
	TimeReached      *time.Time `json:"time_reached,omitempty"`
	EstimatedWaitSec int        `json:"estimated_wait_seconds"`
}

// AnalyzeTargetCompletions matches each target against the recorded path in
// target order. A target counts as reached when the path comes within 30 m of
// it. Arrival time is reconstructed by linear interpolation of the journey
// duration over point index, an approximation carried over from recording
// (points have no individual timestamps). An empty path yields not-reached
// completions with an infinite-distance sentinel.
func AnalyzeTargetCompletions(path []geo.Coordinate, startedAt time.Time, duration time.Duration, targets []Target) []TargetCompletion {
	completions := make([]TargetCompletion, 0, len(targets))

	for i, target := range targets {
		completion := TargetCompletion{
			Target:       target,
			Index:        i,
			MinDistanceM: math.MaxFloat64,
		}

		closest := -1
		for j, p := range path {
			d := geo.DistanceMeters(target.Coordinate, p)
			if d < completion.MinDistanceM {
				completion.MinDistanceM = d
				closest = j
			}
		}

		if closest >= 0 {
			reached := startedAt.Add(time.Duration(float64(closest) / float64(len(path)) * float64(duration)))
			completion.TimeReached = &reached
		}

		completion.WasReached = completion.MinDistanceM <= reachedRadiusM
		if completion.WasReached {
			completion.EstimatedWaitSec = estimateWait(path, target, closest)
		} else {
			completion.TimeReached = nil
		}

		completions = append(completions, completion)
	}
	return completions
}

// estimateWait counts in-radius samples around the closest approach and
// converts them to seconds, capped at the planned wait.
func estimateWait(path []geo.Coordinate, target Target, closest int) int {
	start := max(0, closest-dwellWindow)
	end := min(len(path)-1, closest+dwellWindow)

	inRadius := 0
	for j := start; j <= end; j++ {
		if geo.DistanceMeters(target.Coordinate, path[j]) <= reachedRadiusM {
			inRadius++
		}
	}

	wait := inRadius * sampleIntervalSec
	if wait > target.WaitTimeSec {
		wait = target.WaitTimeSec
	}
	return wait
}
