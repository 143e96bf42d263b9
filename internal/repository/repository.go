package repository

import (
	"context"

	"tablette/catalog/internal/domain"
)

// CatalogRepository is the retrieval source of the catalog. Each listing method
// backs exactly one strategy and returns rows in source order. GetByReference
// returns domain.ErrNotFound when no item matches.
type CatalogRepository interface {
	ListDefault(ctx context.Context) ([]domain.Record, error)
	ListExtended(ctx context.Context) ([]domain.Record, error)
	ListRestricted(ctx context.Context) ([]domain.Record, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Record, error)
	ListBySubCategory(ctx context.Context, category, subCategory string) ([]domain.Record, error)
	GetByReference(ctx context.Context, reference string) (*domain.Record, error)
}
