package usecases

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/samirrijal/seascope/internal/core/domain"
	"github.com/samirrijal/seascope/internal/core/ports"
)

// Catalog categories.
const (
	CategoryAnimals = "animals"
	CategoryPlants  = "plants"
)

// DefaultTopics are the preset non-entity prompts offered next to the catalog.
var DefaultTopics = []string{"Petroleum", "Shipwrecks", "Pollution"}

// DefaultCatalog returns the built-in entity catalog.
func DefaultCatalog() []domain.CatalogEntry {
	return []domain.CatalogEntry{
		{Name: "Yellowfin Tuna", Image: "assets/Yellowfin Tuna.jpg", Category: CategoryAnimals},
		{Name: "Clark's Clownfish", Image: "assets/Clarks clownfish.jpg", Category: CategoryAnimals},
		{Name: "Indian Oil Sardine", Image: "assets/Indian oil sardine.jpg", Category: CategoryAnimals},
		{Name: "Indian Anchovy", Image: "assets/Indian anchovy.jpg", Category: CategoryAnimals},
		{Name: "Indian Mackerel", Image: "assets/mackerel.jpg", Category: CategoryAnimals},
		{Name: "Ostracod (seed shrimp)", Image: "assets/Ostracod (seed shrimp).jpg", Category: CategoryAnimals},
		{Name: "Sea firefly (bioluminescent ostracod)", Image: "assets/Sea firefly (bioluminescent ostracod).jpg", Category: CategoryAnimals},
		{Name: "Swimming crab", Image: "assets/Swimming crab.jpg", Category: CategoryAnimals},
		{Name: "Mossy red seaweed", Image: "assets/Mossy red seaweed.jpg", Category: CategoryPlants},
		{Name: "Sea lettuce", Image: "assets/Sea lettuce.jpg", Category: CategoryPlants},
		{Name: "Dinoflagellate (phytoplankton)", Image: "assets/Dinoflagellate (phytoplankton).jpg", Category: CategoryPlants},
		{Name: "Sea sparkle (bioluminescent dinoflagellate)", Image: "assets/Sea sparkle (bioluminescent dinoflagellate).jpg", Category: CategoryPlants},
	}
}

// CatalogService serves the entity catalog. It starts from DefaultCatalog and
// merges entries from the repository when one is configured.
type CatalogService struct {
	repo ports.CatalogRepository

	mu      sync.RWMutex
	entries map[string]domain.CatalogEntry
}

// NewCatalogService creates a CatalogService. repo may be nil.
func NewCatalogService(repo ports.CatalogRepository) *CatalogService {
	s := &CatalogService{repo: repo, entries: make(map[string]domain.CatalogEntry)}
	for _, e := range DefaultCatalog() {
		s.entries[e.Name] = e
	}
	return s
}

// Load merges repository entries over the defaults.
func (s *CatalogService) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	entries, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.entries[e.Name] = e
	}
	return nil
}

// Contains reports whether name is an exact catalog entity name.
func (s *CatalogService) Contains(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[name]
	return ok
}

// Get returns the entry for name.
func (s *CatalogService) Get(name string) (domain.CatalogEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[name]
	return e, ok
}

// List returns entries sorted by category then name, optionally filtered.
func (s *CatalogService) List(category string) []domain.CatalogEntry {
	s.mu.RLock()
	out := make([]domain.CatalogEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if category != "" && e.Category != category {
			continue
		}
		out = append(out, e)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Upsert stores an entry in the repository (when configured) and in memory.
func (s *CatalogService) Upsert(ctx context.Context, e domain.CatalogEntry) error {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return fmt.Errorf("%w: catalog entry name is required", domain.ErrInvalidInput)
	}
	if s.repo != nil {
		if err := s.repo.Upsert(ctx, &e); err != nil {
			return fmt.Errorf("upsert catalog entry: %w", err)
		}
	}

	s.mu.Lock()
	s.entries[e.Name] = e
	s.mu.Unlock()
	return nil
}

// Presets returns every prompt worth pre-fetching: catalog names then topics.
func (s *CatalogService) Presets() []string {
	entries := s.List("")
	out := make([]string, 0, len(entries)+len(DefaultTopics))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return append(out, DefaultTopics...)
}
