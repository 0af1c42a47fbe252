package usecases

import (
	"github.com/samirrijal/seascope/internal/core/domain"
)

// CatalogLookup reports whether a name is a known catalog entity.
type CatalogLookup interface {
	Contains(name string) bool
}

// Reconciler turns a classification response into the transient result set
// and its display list.
type Reconciler struct {
	catalog CatalogLookup
}

// NewReconciler creates a Reconciler. catalog may be nil.
func NewReconciler(catalog CatalogLookup) *Reconciler {
	return &Reconciler{catalog: catalog}
}

// Reconcile returns the full response data as the transient set and the
// entity names to list, excluding anything already pinned.
//
// A query that names a catalog entity exactly lists just that entity and
// skips extraction.
func (r *Reconciler) Reconcile(resp *domain.QueryResponse, queryText string, pinnedNames []string) (domain.ResultSet, []string) {
	transient := domain.ResultSet{}
	if resp != nil && resp.Data != nil {
		transient = resp.Data
	}

	pinned := make(map[string]struct{}, len(pinnedNames))
	for _, n := range pinnedNames {
		pinned[n] = struct{}{}
	}

	var candidates []string
	if r.catalog != nil && r.catalog.Contains(queryText) {
		candidates = []string{queryText}
	} else {
		candidates = ExtractEntityNames(transient)
	}

	names := make([]string, 0, len(candidates))
	for _, n := range candidates {
		if _, ok := pinned[n]; ok {
			continue
		}
		names = append(names, n)
	}
	return transient, names
}

// ExtractEntityNames returns the distinct entity names in rs, in first-seen
// order over datasets sorted by id. Non-attributable features are skipped.
func ExtractEntityNames(rs domain.ResultSet) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, id := range rs.DatasetIDs() {
		fc := rs[id]
		if fc == nil {
			continue
		}
		for _, f := range fc.Features {
			name, ok := domain.EntityNameOf(f)
			if !ok {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}
