package domain

import (
	"fmt"
	"math"
)

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate reports ErrInvalidInput when the point is outside the WGS 84 range.
func (p GeoPoint) Validate() error {
	if !inRange(p.Lat, 90) {
		return fmt.Errorf("%w: latitude %.6f outside [-90,90]", ErrInvalidInput, p.Lat)
	}
	if !inRange(p.Lon, 180) {
		return fmt.Errorf("%w: longitude %.6f outside [-180,180]", ErrInvalidInput, p.Lon)
	}
	return nil
}

// QueryRegion is the bounding box sent to the classification service.
// East/West may wrap the antimeridian and are not normalized.
type QueryRegion struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Viewport is the visible map area reported by the rendering collaborator.
type Viewport struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// WorldBounds is the default view used when there is nothing to fit.
var WorldBounds = Bounds{MinLat: -90, MinLon: -180, MaxLat: 90, MaxLon: 180}

// Validate checks the latitude edges. Longitudes are left alone because map
// viewports may extend past the antimeridian.
func (v Viewport) Validate() error {
	if !inRange(v.North, 90) || !inRange(v.South, 90) {
		return fmt.Errorf("%w: viewport latitude outside [-90,90]", ErrInvalidInput)
	}
	if math.IsNaN(v.East) || math.IsNaN(v.West) || math.IsInf(v.East, 0) || math.IsInf(v.West, 0) {
		return fmt.Errorf("%w: viewport longitude is not a finite number", ErrInvalidInput)
	}
	if v.North < v.South {
		return fmt.Errorf("%w: viewport north %.6f below south %.6f", ErrInvalidInput, v.North, v.South)
	}
	return nil
}

// inRange is false for NaN.
func inRange(v, limit float64) bool {
	return v >= -limit && v <= limit
}
