package geospatial

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// MinCircleSteps is the fewest segments that still enclose an area.
const MinCircleSteps = 3

// GeodesicCircle approximates a circle of radiusMeters around center with
// steps straight segments. The returned ring is closed (first == last).
// Longitudes are not wrapped at the antimeridian.
func GeodesicCircle(center orb.Point, radiusMeters float64, steps int) (orb.Ring, error) {
	if steps < MinCircleSteps {
		return nil, fmt.Errorf("steps must be >= %d, got %d", MinCircleSteps, steps)
	}
	if radiusMeters <= 0 {
		return nil, fmt.Errorf("radius must be positive, got %.3f", radiusMeters)
	}

	ring := make(orb.Ring, 0, steps+1)
	for i := 0; i < steps; i++ {
		bearing := float64(i) * -360.0 / float64(steps)
		ring = append(ring, geo.PointAtBearingAndDistance(center, bearing, radiusMeters))
	}
	ring = append(ring, ring[0])
	return ring, nil
}

// CircleBound returns the bounding box of GeodesicCircle.
func CircleBound(center orb.Point, radiusMeters float64, steps int) (orb.Bound, error) {
	ring, err := GeodesicCircle(center, radiusMeters, steps)
	if err != nil {
		return orb.Bound{}, err
	}
	return ring.Bound(), nil
}
