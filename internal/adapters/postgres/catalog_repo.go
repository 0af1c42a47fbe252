package postgres

import (
	"context"

	"github.com/samirrijal/seascope/internal/core/domain"
)

// CatalogRepo implements ports.CatalogRepository.
type CatalogRepo struct {
	db *DB
}

func NewCatalogRepo(db *DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

func (r *CatalogRepo) Upsert(ctx context.Context, e *domain.CatalogEntry) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO catalog_entries (name, image, category)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET image = EXCLUDED.image, category = EXCLUDED.category, updated_at = now()
	`, e.Name, e.Image, e.Category)
	return err
}

func (r *CatalogRepo) List(ctx context.Context) ([]domain.CatalogEntry, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT name, image, category FROM catalog_entries ORDER BY category, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.CatalogEntry
	for rows.Next() {
		var e domain.CatalogEntry
		if err := rows.Scan(&e.Name, &e.Image, &e.Category); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
