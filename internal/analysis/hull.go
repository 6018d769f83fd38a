package analysis

import (
	"sort"

	"github.com/mooncitizen/beatphobia-sub001/internal/shared/geo"
)

// ConvexHull returns the minimal enclosing polygon of a point set as a
// counter-clockwise vertex sequence, built with Andrew's monotone chain.
// Inputs with fewer than three points are returned unchanged. Collinear
// inputs may collapse to fewer than three vertices; callers that need a
// polygon must check the result length.
func ConvexHull(points []geo.Coordinate) []geo.Coordinate {
	if len(points) < 3 {
		return points
	}

	sorted := make([]geo.Coordinate, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Lng != sorted[j].Lng {
			return sorted[i].Lng < sorted[j].Lng
		}
		return sorted[i].Lat < sorted[j].Lat
	})

	var lower []geo.Coordinate
	for _, p := range sorted {
		for len(lower) >= 2 && geo.Cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	var upper []geo.Coordinate
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		for len(upper) >= 2 && geo.Cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	// last vertex of each chain duplicates the first of the other
	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}
