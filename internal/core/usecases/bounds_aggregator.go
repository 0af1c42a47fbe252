package usecases

import (
	"github.com/paulmach/orb"

	"github.com/samirrijal/seascope/internal/core/domain"
	"github.com/samirrijal/seascope/internal/pkg/geospatial"
)

// DefaultFitPadding is the margin added around fitted bounds.
const DefaultFitPadding = 0.1

// UnionBounds returns the minimal box enclosing every feature geometry in
// sets. ok is false when there is no geometry at all.
func UnionBounds(sets ...domain.ResultSet) (b domain.Bounds, ok bool) {
	var union orb.Bound
	for _, rs := range sets {
		for _, fc := range rs {
			if fc == nil {
				continue
			}
			for _, f := range fc.Features {
				if f == nil || f.Geometry == nil {
					continue
				}
				fb := f.Geometry.Bound()
				if !ok {
					union = fb
					ok = true
					continue
				}
				union = union.Union(fb)
			}
		}
	}
	if !ok {
		return domain.Bounds{}, false
	}
	return fromOrbBound(union), true
}

// FitView pads the union of sets by padding and clamps it to the world.
// It falls back to domain.WorldBounds when there is nothing to fit.
func FitView(padding float64, sets ...domain.ResultSet) domain.Bounds {
	b, ok := UnionBounds(sets...)
	if !ok {
		return domain.WorldBounds
	}
	padded := geospatial.ClampWorld(geospatial.PadRatio(toOrbBound(b), padding))
	return fromOrbBound(padded)
}

func fromOrbBound(b orb.Bound) domain.Bounds {
	return domain.Bounds{MinLat: b.Min.Lat(), MinLon: b.Min.Lon(), MaxLat: b.Max.Lat(), MaxLon: b.Max.Lon()}
}

func toOrbBound(b domain.Bounds) orb.Bound {
	return orb.Bound{Min: orb.Point{b.MinLon, b.MinLat}, Max: orb.Point{b.MaxLon, b.MaxLat}}
}
