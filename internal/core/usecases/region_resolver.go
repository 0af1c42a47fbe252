package usecases

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/paulmach/orb"

	"github.com/samirrijal/seascope/internal/core/domain"
	"github.com/samirrijal/seascope/internal/core/ports"
	"github.com/samirrijal/seascope/internal/pkg/geospatial"
)

const (
	DefaultRadiusKm = 300.0
	DefaultSteps    = 64
)

// RegionResolver turns a viewport, a dropped point or a place name into a
// query region.
type RegionResolver struct {
	geocoder ports.Geocoder
}

// NewRegionResolver creates a RegionResolver. geocoder may be nil, in which
// case FromPlace always fails.
func NewRegionResolver(geocoder ports.Geocoder) *RegionResolver {
	return &RegionResolver{geocoder: geocoder}
}

// FromViewport copies the four edges of the current map viewport.
func (r *RegionResolver) FromViewport(v domain.Viewport) domain.QueryRegion {
	return domain.QueryRegion{North: v.North, South: v.South, East: v.East, West: v.West}
}

// FromPoint returns the bounding box of a geodesic circle of radiusKm around p,
// approximated with steps segments.
func (r *RegionResolver) FromPoint(p domain.GeoPoint, radiusKm float64, steps int) (domain.QueryRegion, error) {
	if err := p.Validate(); err != nil {
		return domain.QueryRegion{}, err
	}
	if !(radiusKm > 0) || math.IsInf(radiusKm, 1) {
		return domain.QueryRegion{}, fmt.Errorf("%w: radius must be positive", domain.ErrInvalidInput)
	}
	if steps < geospatial.MinCircleSteps {
		return domain.QueryRegion{}, fmt.Errorf("%w: steps must be >= %d", domain.ErrInvalidInput, geospatial.MinCircleSteps)
	}

	b, err := geospatial.CircleBound(orb.Point{p.Lon, p.Lat}, radiusKm*1000, steps)
	if err != nil {
		return domain.QueryRegion{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	return domain.QueryRegion{
		North: b.Max.Lat(),
		South: b.Min.Lat(),
		East:  b.Max.Lon(),
		West:  b.Min.Lon(),
	}, nil
}

// FromPlace geocodes name and builds the circle region around the match.
func (r *RegionResolver) FromPlace(ctx context.Context, name string, radiusKm float64, steps int) (domain.QueryRegion, *domain.GeoPoint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.QueryRegion{}, nil, fmt.Errorf("%w: place name is required", domain.ErrInvalidInput)
	}
	if r.geocoder == nil {
		return domain.QueryRegion{}, nil, &domain.TransportError{Err: fmt.Errorf("geocoder not configured")}
	}

	pt, _, err := r.geocoder.Geocode(ctx, name)
	if err != nil {
		return domain.QueryRegion{}, nil, &domain.TransportError{Err: fmt.Errorf("geocode %q: %w", name, err)}
	}
	if pt == nil {
		return domain.QueryRegion{}, nil, fmt.Errorf("%w: no match for %q", domain.ErrInvalidInput, name)
	}

	region, err := r.FromPoint(*pt, radiusKm, steps)
	if err != nil {
		return domain.QueryRegion{}, nil, err
	}
	return region, pt, nil
}
