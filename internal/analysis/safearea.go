package analysis

import (
	"math"

	"github.com/mooncitizen/beatphobia-sub001/internal/shared/geo"
)

const (
	gridCellSizeM     = 50.0
	metersPerDegLat   = 111320.0
	minIntenseCells   = 3
	minCellVisitCount = 3.0
)

type gridKey struct {
	row, col int
}

type gridCell struct {
	count  int
	sumLat float64
	sumLng float64
}

// ComputeSafeArea derives a polygon covering the areas a user has travelled
// through repeatedly. Points are binned into a 50 m grid, cells whose sample
// count clears a density threshold contribute their centroid, and the
// centroids are wrapped in a convex hull. Returns ok=false when there is not
// enough data for a polygon.
//
// Raw samples would over-fit the hull to single passes; binning with the
// max(3, avg*1.5) threshold means the boundary only grows where a location is
// visited again and again.
func ComputeSafeArea(points []geo.Coordinate) ([]geo.Coordinate, bool) {
	if len(points) < 3 {
		return nil, false
	}

	minLat, maxLat := points[0].Lat, points[0].Lat
	minLng, maxLng := points[0].Lng, points[0].Lng
	for _, p := range points[1:] {
		minLat = math.Min(minLat, p.Lat)
		maxLat = math.Max(maxLat, p.Lat)
		minLng = math.Min(minLng, p.Lng)
		maxLng = math.Max(maxLng, p.Lng)
	}

	centerLat := (minLat + maxLat) / 2
	degLat := gridCellSizeM / metersPerDegLat
	degLng := gridCellSizeM / (metersPerDegLat * math.Cos(centerLat*math.Pi/180))

	cells := map[gridKey]*gridCell{}
	for _, p := range points {
		key := gridKey{
			row: int(math.Floor((p.Lat - minLat) / degLat)),
			col: int(math.Floor((p.Lng - minLng) / degLng)),
		}
		cell := cells[key]
		if cell == nil {
			cell = &gridCell{}
			cells[key] = cell
		}
		cell.count++
		cell.sumLat += p.Lat
		cell.sumLng += p.Lng
	}

	total := 0
	for _, cell := range cells {
		total += cell.count
	}
	avg := float64(total) / float64(len(cells))
	threshold := math.Max(minCellVisitCount, avg*1.5)

	var intense []geo.Coordinate
	for _, cell := range cells {
		if float64(cell.count) >= threshold {
			intense = append(intense, geo.Coordinate{
				Lat: cell.sumLat / float64(cell.count),
				Lng: cell.sumLng / float64(cell.count),
			})
		}
	}
	if len(intense) < minIntenseCells {
		return nil, false
	}

	hull := ConvexHull(intense)
	if len(hull) < 3 {
		return nil, false
	}
	return hull, true
}
