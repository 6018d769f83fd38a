package analysis

import "github.com/mooncitizen/beatphobia-sub001/internal/shared/geo"

// segmentsPerPoint is how many interpolated samples each original path point
// expands to when smoothing.
const segmentsPerPoint = 5

// SmoothPath returns a denser version of an ordered path using Catmull-Rom
// interpolation over latitude and longitude independently. Paths of two or
// fewer points are returned unchanged. The input is never modified; callers
// use the result for display and analysis only.
func SmoothPath(points []geo.Coordinate) []geo.Coordinate {
	if len(points) <= 2 {
		return points
	}

	smoothed := make([]geo.Coordinate, 0, len(points)*segmentsPerPoint)
	smoothed = append(smoothed, points[0])

	for i := 1; i < len(points); i++ {
		p0 := points[max(0, i-2)]
		p1 := points[max(0, i-1)]
		p2 := points[i]
		p3 := points[min(len(points)-1, i+1)]

		for j := 1; j <= segmentsPerPoint; j++ {
			t := float64(j) / float64(segmentsPerPoint)
			smoothed = append(smoothed, geo.Coordinate{
				Lat: catmullRom(p0.Lat, p1.Lat, p2.Lat, p3.Lat, t),
				Lng: catmullRom(p0.Lng, p1.Lng, p2.Lng, p3.Lng, t),
			})
		}
	}
	return smoothed
}

// catmullRom evaluates the uniform Catmull-Rom cubic through p1..p2 at t.
func catmullRom(p0, p1, p2, p3, t float64) float64 {
	t2 := t * t
	t3 := t2 * t
	return 0.5 * (2*p1 +
		(-p0+p2)*t +
		(2*p0-5*p1+4*p2-p3)*t2 +
		(-p0+3*p1-3*p2+p3)*t3)
}
