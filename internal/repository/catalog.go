package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"tablette/catalog/internal/domain"
)

// Querier is the subset of *pgxpool.Pool the repository needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Options carries the merchandising rules baked into the catalog queries.
type Options struct {
	Schema         string
	PriceList      string
	Categories     []string
	ExtendedBrands []string
}

type catalogRepository struct {
	db      Querier
	opts    Options
	queries queries
}

func NewCatalogRepository(db Querier, opts Options) CatalogRepository {
	return &catalogRepository{
		db:      db,
		opts:    opts,
		queries: buildQueries(opts.Schema),
	}
}

func (r *catalogRepository) ListDefault(ctx context.Context) ([]domain.Record, error) {
	return r.list(ctx, r.queries.listDefault, r.opts.PriceList, r.opts.Categories)
}

func (r *catalogRepository) ListExtended(ctx context.Context) ([]domain.Record, error) {
	return r.list(ctx, r.queries.listExtended, r.opts.PriceList, r.opts.Categories, r.opts.ExtendedBrands)
}

func (r *catalogRepository) ListRestricted(ctx context.Context) ([]domain.Record, error) {
	return r.list(ctx, r.queries.listRestricted, r.opts.PriceList, r.opts.Categories, r.opts.ExtendedBrands)
}

func (r *catalogRepository) ListByCategory(ctx context.Context, category string) ([]domain.Record, error) {
	return r.list(ctx, r.queries.listByCategory, r.opts.PriceList, category)
}

func (r *catalogRepository) ListBySubCategory(ctx context.Context, category, subCategory string) ([]domain.Record, error) {
	return r.list(ctx, r.queries.listBySubCategory, r.opts.PriceList, category, subCategory)
}

func (r *catalogRepository) GetByReference(ctx context.Context, reference string) (*domain.Record, error) {
	records, err := r.list(ctx, r.queries.getByReference, r.opts.PriceList, reference)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.ErrNotFound
	}
	return &records[0], nil
}

func (r *catalogRepository) list(ctx context.Context, query string, args ...any) ([]domain.Record, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// rowIterator is the part of pgx.Rows used to read catalog rows.
type rowIterator interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// catalogRow mirrors the shared column set, every column nullable.
type catalogRow struct {
	reference, displayName    *string
	category, categoryLabel   *string
	rangeCode, rangeLabel     *string
	families, familyLabels    [domain.FamilyLevels]*string
	subFamily, subFamilyLabel *string
	sku, skuLabel             *string
	brand, image, price       *string
}

func (c *catalogRow) dest() []any {
	return []any{
		&c.reference, &c.displayName,
		&c.category, &c.categoryLabel,
		&c.rangeCode, &c.rangeLabel,
		&c.families[0], &c.familyLabels[0],
		&c.families[1], &c.familyLabels[1],
		&c.families[2], &c.familyLabels[2],
		&c.families[3], &c.familyLabels[3],
		&c.families[4], &c.familyLabels[4],
		&c.subFamily, &c.subFamilyLabel,
		&c.sku, &c.skuLabel,
		&c.brand, &c.image, &c.price,
	}
}

func scanRecords(rows rowIterator) ([]domain.Record, error) {
	records := make([]domain.Record, 0)
	for rows.Next() {
		var row catalogRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		record, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog rows: %w", err)
	}
	return records, nil
}

func (c *catalogRow) toRecord() (domain.Record, error) {
	record := domain.Record{
		Reference:   domain.Text(c.reference).OrElse(""),
		DisplayName: domain.Text(c.displayName).OrElse(""),
		Category:    domain.Classify(c.category, c.categoryLabel),
		Range:       domain.Classify(c.rangeCode, c.rangeLabel),
		SubFamily:   domain.Classify(c.subFamily, c.subFamilyLabel),
		SKU:         domain.Classify(c.sku, c.skuLabel),
		Brand:       domain.Text(c.brand),
		ImageRef:    domain.Text(c.image).OrElse(""),
		Price:       decimal.Zero,
	}
	for i := range c.families {
		record.Families[i] = domain.Classify(c.families[i], c.familyLabels[i])
	}

	if p, ok := domain.Text(c.price).Get(); ok {
		price, err := decimal.NewFromString(p)
		if err != nil {
			return domain.Record{}, fmt.Errorf("invalid price %q for %q: %w", p, record.Reference, err)
		}
		record.Price = price
	}

	return record, nil
}
