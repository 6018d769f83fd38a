package analysis

import (
	"fmt"
	"math"
	"time"
)

const (
	metersPerKm   = 1000.0
	metersPerMile = 1609.34
)

// NoPace is the label reported when pace cannot be computed.
const NoPace = "--"

// Metrics are display-ready labels for a single journey.
type Metrics struct {
	DistanceLabel string `json:"distance"`
	DurationLabel string `json:"duration"`
	PaceLabel     string `json:"pace"`
}

// RollupWindow selects which journeys a rollup covers.
type RollupWindow string

const (
	WindowLast7Days RollupWindow = "7d"
	WindowAllTime   RollupWindow = "allTime"
)

// RollupInput is the per-journey data a rollup consumes.
type RollupInput struct {
	StartedAt   time.Time
	DistanceM   float64
	DurationSec int64
	Checkpoints int
}

// RollupResult aggregates a set of journeys.
type RollupResult struct {
	Count           int     `json:"count"`
	DistanceM       float64 `json:"distance_m"`
	DurationSec     int64   `json:"duration_sec"`
	CheckpointCount int     `json:"checkpoint_count"`
}

// FormatDistance renders meters as "1.00 km" or "1.00 mi".
func FormatDistance(meters float64, imperial bool) string {
	if imperial {
		return fmt.Sprintf("%.2f mi", meters/metersPerMile)
	}
	return fmt.Sprintf("%.2f km", meters/metersPerKm)
}

// FormatDuration renders seconds as "1h 05m" or "12m 30s".
func FormatDuration(seconds int64) string {
	if seconds >= 3600 {
		return fmt.Sprintf("%dh %02dm", seconds/3600, (seconds%3600)/60)
	}
	return fmt.Sprintf("%dm %02ds", seconds/60, seconds%60)
}

// FormatPace renders minutes per kilometre or mile as "M:SS /km". Zero
// distance or duration yields the NoPace sentinel.
func FormatPace(meters float64, seconds int64, imperial bool) string {
	if meters <= 0 || seconds <= 0 {
		return NoPace
	}

	unitDistance := meters / metersPerKm
	unit := "km"
	if imperial {
		unitDistance = meters / metersPerMile
		unit = "mi"
	}

	minutesPerUnit := float64(seconds) / 60 / unitDistance
	whole := int(minutesPerUnit)
	secs := int(math.Round((minutesPerUnit - float64(whole)) * 60))
	if secs == 60 {
		whole++
		secs = 0
	}
	return fmt.Sprintf("%d:%02d /%s", whole, secs, unit)
}

// JourneyMetrics bundles the formatted labels for one journey.
func JourneyMetrics(distanceM float64, durationSec int64, imperial bool) Metrics {
	return Metrics{
		DistanceLabel: FormatDistance(distanceM, imperial),
		DurationLabel: FormatDuration(durationSec),
		PaceLabel:     FormatPace(distanceM, durationSec, imperial),
	}
}

// Rollup aggregates journeys over a window with a fresh pass each call.
// Per-user journey counts are small, so there is no incremental bookkeeping.
func Rollup(journeys []RollupInput, window RollupWindow, now time.Time) RollupResult {
	cutoff := time.Time{}
	if window == WindowLast7Days {
		cutoff = now.Add(-7 * 24 * time.Hour)
	}

	var result RollupResult
	for _, j := range journeys {
		if !cutoff.IsZero() && j.StartedAt.Before(cutoff) {
			continue
		}
		result.Count++
		result.DistanceM += j.DistanceM
		result.DurationSec += j.DurationSec
		result.CheckpointCount += j.Checkpoints
	}
	return result
}
