package ports

import (
	"context"

	"github.com/samirrijal/seascope/internal/core/domain"
)

// QueryLogRepository persists the outcome of every submission.
type QueryLogRepository interface {
	Insert(ctx context.Context, entry *domain.QueryLogEntry) error
	ListBySession(ctx context.Context, sessionID string, offset, limit int) ([]domain.QueryLogEntry, int, error)
}

// CatalogRepository persists entity catalog entries.
type CatalogRepository interface {
	Upsert(ctx context.Context, entry *domain.CatalogEntry) error
	List(ctx context.Context) ([]domain.CatalogEntry, error)
}
