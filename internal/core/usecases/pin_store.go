package usecases

import (
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/seascope/internal/core/domain"
)

// Pin moves name into the pinned partition. It copies the entity's features
// from the transient set into the pinned set and drops name from the
// transient list. The transient set itself is left untouched. Pinning an
// already pinned name is a no-op.
func Pin(s domain.State, name string) domain.State {
	if s.IsPinned(name) {
		return s
	}

	next := s
	next.PinnedNames = append([]string{name}, s.PinnedNames...)
	next.TransientNames = without(s.TransientNames, name)

	pinned := make(domain.ResultSet, len(s.Pinned))
	for id, fc := range s.Pinned {
		pinned[id] = fc
	}
	for _, id := range s.Transient.DatasetIDs() {
		matches := featuresOf(s.Transient[id], name, true)
		if len(matches) == 0 {
			continue
		}
		// Merge into an existing entry, replacing any earlier copy of name.
		merged := geojson.NewFeatureCollection()
		merged.Features = append(featuresOf(pinned[id], name, false), matches...)
		pinned[id] = merged
	}
	next.Pinned = pinned
	return next
}

// Unpin removes name from the pinned partition and prunes emptied datasets.
// If the current transient set still holds the entity, name is listed as
// transient again; otherwise it disappears until a later query returns it.
// Unpinning a name that is not pinned is a no-op.
func Unpin(s domain.State, name string) domain.State {
	if !s.IsPinned(name) {
		return s
	}

	next := s
	next.PinnedNames = without(s.PinnedNames, name)

	pinned := make(domain.ResultSet, len(s.Pinned))
	for id, fc := range s.Pinned {
		if fc == nil {
			continue
		}
		kept := featuresOf(fc, name, false)
		switch {
		case len(kept) == 0:
			// prune
		case len(kept) == len(fc.Features):
			pinned[id] = fc
		default:
			c := geojson.NewFeatureCollection()
			c.Features = kept
			pinned[id] = c
		}
	}
	next.Pinned = pinned

	if s.Transient.Contains(name) && !contains(s.TransientNames, name) {
		names := make([]string, 0, len(s.TransientNames)+1)
		names = append(names, s.TransientNames...)
		next.TransientNames = append(names, name)
	}
	return next
}

// featuresOf returns the features of fc whose entity is (match=true) or is
// not (match=false) name.
func featuresOf(fc *geojson.FeatureCollection, name string, match bool) []*geojson.Feature {
	if fc == nil {
		return nil
	}
	var out []*geojson.Feature
	for _, f := range fc.Features {
		n, ok := domain.EntityNameOf(f)
		if (ok && n == name) == match {
			out = append(out, f)
		}
	}
	return out
}

func without(names []string, name string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
