package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/seascope/internal/core/domain"
)

type memCache struct {
	data   map[string][]byte
	getErr error
	sets   int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (m *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.data[key], nil
}

func (m *memCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.sets++
	m.data[key] = value
	return nil
}

func (m *memCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

type stubClassifier struct {
	calls int
	resp  *domain.QueryResponse
	err   error
}

func (s *stubClassifier) Query(ctx context.Context, req domain.QueryRequest) (*domain.QueryResponse, error) {
	s.calls++
	return s.resp, s.err
}

func mustParse(t *testing.T, body string) *domain.QueryResponse {
	t.Helper()
	resp, err := domain.ParseQueryResponse([]byte(body))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return resp
}

func TestCachedClassifier_HitAfterMiss(t *testing.T) {
	next := &stubClassifier{resp: mustParse(t, successBody)}
	cache := newMemCache()
	c := NewCachedClassifier(next, cache, 60)
	ctx := context.Background()
	req := domain.QueryRequest{Prompt: "tuna"}

	if _, err := c.Query(ctx, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp, err := c.Query(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if next.calls != 1 {
		t.Errorf("expected one upstream call, got %d", next.calls)
	}
	if resp.Status != domain.StatusSuccess || resp.Data.FeatureCount() != 1 || resp.Summary.TotalFeatures != 2 {
		t.Errorf("cached response differs: %+v", resp)
	}
	names := resp.Data["obis"].Features[0].Properties[domain.PropSpecies]
	if names != "Thunnus albacares" {
		t.Errorf("unexpected species %v", names)
	}
}

func TestCachedClassifier_DoesNotCacheFailures(t *testing.T) {
	cache := newMemCache()
	ctx := context.Background()

	svcErr := &stubClassifier{resp: mustParse(t, `{"status":"error"}`)}
	if _, err := NewCachedClassifier(svcErr, cache, 60).Query(ctx, domain.QueryRequest{Prompt: "a"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	transport := &stubClassifier{err: &domain.TransportError{StatusCode: 500}}
	if _, err := NewCachedClassifier(transport, cache, 60).Query(ctx, domain.QueryRequest{Prompt: "b"}); err == nil {
		t.Fatal("expected transport error to pass through")
	}

	if cache.sets != 0 {
		t.Errorf("expected nothing cached, got %d sets", cache.sets)
	}
}

func TestCachedClassifier_CacheErrorFallsThrough(t *testing.T) {
	next := &stubClassifier{resp: mustParse(t, successBody)}
	cache := newMemCache()
	cache.getErr = errors.New("connection refused")

	resp, err := NewCachedClassifier(next, cache, 60).Query(context.Background(), domain.QueryRequest{Prompt: "tuna"})
	if err != nil || resp == nil {
		t.Fatalf("expected upstream response, got %v %v", resp, err)
	}
	if next.calls != 1 {
		t.Errorf("expected upstream call, got %d", next.calls)
	}
}

func TestCacheKey_DependsOnRegion(t *testing.T) {
	a := CacheKey(domain.QueryRequest{Prompt: "tuna"})
	b := CacheKey(domain.QueryRequest{Prompt: "tuna", Coordinates: &domain.QueryRegion{North: 1}})
	c := CacheKey(domain.QueryRequest{Prompt: "tuna"})
	if a == b {
		t.Error("region must change the key")
	}
	if a != c {
		t.Error("key must be deterministic")
	}
}
