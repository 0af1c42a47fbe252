package geospatial

import (
	"math"

	"github.com/paulmach/orb"
)

// PadRatio grows b on every side by ratio times its span, the way map
// libraries pad a fit box. A degenerate box stays degenerate.
func PadRatio(b orb.Bound, ratio float64) orb.Bound {
	dLat := math.Abs(b.Max.Lat()-b.Min.Lat()) * ratio
	dLon := math.Abs(b.Max.Lon()-b.Min.Lon()) * ratio
	return orb.Bound{
		Min: orb.Point{b.Min.Lon() - dLon, b.Min.Lat() - dLat},
		Max: orb.Point{b.Max.Lon() + dLon, b.Max.Lat() + dLat},
	}
}

// ClampWorld limits b to the valid latitude and longitude range.
func ClampWorld(b orb.Bound) orb.Bound {
	return orb.Bound{
		Min: orb.Point{math.Max(b.Min.Lon(), -180), math.Max(b.Min.Lat(), -90)},
		Max: orb.Point{math.Min(b.Max.Lon(), 180), math.Min(b.Max.Lat(), 90)},
	}
}
