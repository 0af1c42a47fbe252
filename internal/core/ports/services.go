package ports

import (
	"context"

	"github.com/samirrijal/seascope/internal/core/domain"
)

// Classifier sends a prompt and region to the remote classification service.
// Transport and non-2xx failures are returned as *domain.TransportError.
// A decoded response is returned as-is even when its status is not "success".
type Classifier interface {
	Query(ctx context.Context, req domain.QueryRequest) (*domain.QueryResponse, error)
}

// Geocoder resolves a place name to a point.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*domain.GeoPoint, string, error)
}

// EventPublisher publishes session events to a message broker.
type EventPublisher interface {
	PublishSessionEvent(ctx context.Context, event *domain.SessionEvent) error
}

// EventSubscriber delivers render-complete signals from the map renderer.
type EventSubscriber interface {
	SubscribeRenderComplete(ctx context.Context, handler func(ctx context.Context, sessionID string, token uint64) error) error
}

// CacheService stores classification responses. Get returns nil, nil on a miss.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
