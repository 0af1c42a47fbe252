package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/samirrijal/seascope/internal/core/domain"
	"github.com/samirrijal/seascope/internal/core/ports"
	"github.com/samirrijal/seascope/internal/pkg/metrics"
)

const cacheOperation = "classify"

// CachedClassifier serves repeated prompts from a cache. Only successful
// responses are stored; cache failures fall through to the wrapped classifier.
type CachedClassifier struct {
	next  ports.Classifier
	cache ports.CacheService
	ttl   int
}

// NewCachedClassifier wraps next. ttlSeconds applies to every stored entry.
func NewCachedClassifier(next ports.Classifier, cache ports.CacheService, ttlSeconds int) *CachedClassifier {
	return &CachedClassifier{next: next, cache: cache, ttl: ttlSeconds}
}

// CacheKey derives the cache key from the prompt and region.
func CacheKey(req domain.QueryRequest) string {
	region, _ := json.Marshal(req.Coordinates)
	h := sha256.New()
	h.Write([]byte(req.Prompt))
	h.Write([]byte{0})
	h.Write(region)
	return "classify:" + hex.EncodeToString(h.Sum(nil))
}

func (c *CachedClassifier) Query(ctx context.Context, req domain.QueryRequest) (*domain.QueryResponse, error) {
	key := CacheKey(req)

	if b, err := c.cache.Get(ctx, key); err != nil {
		slog.Warn("cache get failed", "key", key, "error", err)
	} else if b != nil {
		resp, err := decodeCached(b)
		if err == nil {
			metrics.CacheHits.WithLabelValues(cacheOperation).Inc()
			return resp, nil
		}
		slog.Warn("cache entry undecodable", "key", key, "error", err)
	}
	metrics.CacheMisses.WithLabelValues(cacheOperation).Inc()

	return c.Refresh(ctx, req)
}

// Refresh queries the wrapped classifier and stores a successful response
// regardless of what is cached.
func (c *CachedClassifier) Refresh(ctx context.Context, req domain.QueryRequest) (*domain.QueryResponse, error) {
	resp, err := c.next.Query(ctx, req)
	if err != nil || resp == nil || resp.Status != domain.StatusSuccess || len(resp.Raw) == 0 {
		return resp, err
	}

	b, encErr := encodeCached(resp.Raw)
	if encErr != nil {
		slog.Warn("cache encode failed", "error", encErr)
		return resp, nil
	}
	if setErr := c.cache.Set(ctx, CacheKey(req), b, c.ttl); setErr != nil {
		slog.Warn("cache set failed", "error", setErr)
	}
	return resp, nil
}

// encodeCached stores the raw response as a protobuf Struct.
func encodeCached(raw []byte) ([]byte, error) {
	s := &structpb.Struct{}
	if err := s.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("response to struct: %w", err)
	}
	return proto.Marshal(s)
}

func decodeCached(b []byte) (*domain.QueryResponse, error) {
	s := &structpb.Struct{}
	if err := proto.Unmarshal(b, s); err != nil {
		return nil, err
	}
	raw, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return domain.ParseQueryResponse(raw)
}
