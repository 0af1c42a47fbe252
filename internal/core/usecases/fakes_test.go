package usecases_test

import (
	"context"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/seascope/internal/core/domain"
)

// --- Fakes ---

type fakeClassifier struct {
	mu    sync.Mutex
	calls []domain.QueryRequest
	fn    func(ctx context.Context, req domain.QueryRequest) (*domain.QueryResponse, error)
}

func (f *fakeClassifier) Query(ctx context.Context, req domain.QueryRequest) (*domain.QueryResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(ctx, req)
	}
	return &domain.QueryResponse{Status: domain.StatusSuccess, Data: domain.ResultSet{}}, nil
}

func (f *fakeClassifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.SessionEvent
}

func (p *fakePublisher) PublishSessionEvent(ctx context.Context, ev *domain.SessionEvent) error {
	p.mu.Lock()
	p.events = append(p.events, *ev)
	p.mu.Unlock()
	return nil
}

func (p *fakePublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Kind)
	}
	return out
}

type fakeQueryLog struct {
	mu      sync.Mutex
	entries []domain.QueryLogEntry
}

func (l *fakeQueryLog) Insert(ctx context.Context, e *domain.QueryLogEntry) error {
	l.mu.Lock()
	l.entries = append(l.entries, *e)
	l.mu.Unlock()
	return nil
}

func (l *fakeQueryLog) ListBySession(ctx context.Context, sessionID string, offset, limit int) ([]domain.QueryLogEntry, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.QueryLogEntry
	for _, e := range l.entries {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, len(out), nil
}

func (l *fakeQueryLog) outcomes() []domain.QueryOutcome {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.QueryOutcome, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.Outcome)
	}
	return out
}

type fakeGeocoder struct {
	point *domain.GeoPoint
	err   error
}

func (g *fakeGeocoder) Geocode(ctx context.Context, query string) (*domain.GeoPoint, string, error) {
	return g.point, query, g.err
}

type fakeCatalogRepo struct {
	entries  []domain.CatalogEntry
	upserted []domain.CatalogEntry
	err      error
}

func (r *fakeCatalogRepo) Upsert(ctx context.Context, e *domain.CatalogEntry) error {
	if r.err != nil {
		return r.err
	}
	r.upserted = append(r.upserted, *e)
	return nil
}

func (r *fakeCatalogRepo) List(ctx context.Context) ([]domain.CatalogEntry, error) {
	return r.entries, r.err
}

// --- Fixtures ---

func pointFeature(lon, lat float64, props map[string]interface{}) *geojson.Feature {
	f := geojson.NewFeature(orb.Point{lon, lat})
	for k, v := range props {
		f.Properties[k] = v
	}
	return f
}

func species(name string, lon, lat float64) *geojson.Feature {
	return pointFeature(lon, lat, map[string]interface{}{domain.PropSpecies: name})
}

func collection(features ...*geojson.Feature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		fc.Append(f)
	}
	return fc
}

func successResponse(data domain.ResultSet) *domain.QueryResponse {
	return &domain.QueryResponse{
		Status:  domain.StatusSuccess,
		Data:    data,
		Summary: domain.Summary{TotalFeatures: data.FeatureCount()},
	}
}
