package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablette/catalog/internal/domain"
)

type repoCall struct {
	method string
	args   []string
}

// fakeRepository serves fixed records and records every call.
type fakeRepository struct {
	records map[string][]domain.Record
	err     error
	calls   []repoCall
}

func (f *fakeRepository) list(method string, args ...string) ([]domain.Record, error) {
	f.calls = append(f.calls, repoCall{method: method, args: args})
	if f.err != nil {
		return nil, f.err
	}
	return f.records[method], nil
}

func (f *fakeRepository) ListDefault(context.Context) ([]domain.Record, error) {
	return f.list("default")
}

func (f *fakeRepository) ListExtended(context.Context) ([]domain.Record, error) {
	return f.list("extended")
}

func (f *fakeRepository) ListRestricted(context.Context) ([]domain.Record, error) {
	return f.list("restricted")
}

func (f *fakeRepository) ListByCategory(_ context.Context, category string) ([]domain.Record, error) {
	return f.list("category", category)
}

func (f *fakeRepository) ListBySubCategory(_ context.Context, category, subCategory string) ([]domain.Record, error) {
	return f.list("sub-category", category, subCategory)
}

func (f *fakeRepository) GetByReference(_ context.Context, reference string) (*domain.Record, error) {
	f.calls = append(f.calls, repoCall{method: "get", args: []string{reference}})
	if f.err != nil {
		return nil, f.err
	}
	for _, rs := range f.records {
		for _, r := range rs {
			if r.Reference == reference {
				return &r, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

// fakeCache is an in-memory PageCache.
type fakeCache struct {
	pages  map[string]*domain.Page
	getErr error
	sets   int
}

func (c *fakeCache) Get(_ context.Context, key string) (*domain.Page, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	p, ok := c.pages[key]
	return p, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key string, page *domain.Page) error {
	if c.pages == nil {
		c.pages = map[string]*domain.Page{}
	}
	c.pages[key] = page
	c.sets++
	return nil
}

func item(ref, name, category string) domain.Record {
	return domain.Record{
		Reference:   ref,
		DisplayName: name,
		Category:    domain.Some(domain.Classification{Code: category}),
		Price:       decimal.NewFromInt(1),
	}
}

func numbered(n int, category string) []domain.Record {
	out := make([]domain.Record, n)
	for i := range out {
		out[i] = item(fmt.Sprintf("%s-%03d", category, i), fmt.Sprintf("Article %d", i), category)
	}
	return out
}

func references(records []domain.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Reference
	}
	return out
}

func TestListRunsExactlyOneStrategy(t *testing.T) {
	tests := []struct {
		name  string
		query ListQuery
		want  repoCall
	}{
		{"default", ListQuery{}, repoCall{method: "default"}},
		{"extended", ListQuery{Scope: domain.ScopeInclude}, repoCall{method: "extended"}},
		{"restricted", ListQuery{Scope: domain.ScopeExclude}, repoCall{method: "restricted"}},
		{"category wins over scope", ListQuery{Category: "BON", Scope: domain.ScopeInclude},
			repoCall{method: "category", args: []string{"BON"}}},
		{"sub-category", ListQuery{Category: "BON", SubCategory: "B14", Scope: domain.ScopeExclude},
			repoCall{method: "sub-category", args: []string{"BON", "B14"}}},
		{"sub-category alone is ignored", ListQuery{SubCategory: "B14"}, repoCall{method: "default"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepository{}
			_, err := NewService(repo, nil, TextFilter{}).List(context.Background(), tt.query)
			require.NoError(t, err)
			require.Len(t, repo.calls, 1)
			assert.Equal(t, tt.want.method, repo.calls[0].method)
			if tt.want.args != nil {
				assert.Equal(t, tt.want.args, repo.calls[0].args)
			}
		})
	}
}

func TestListByCategoryScenario(t *testing.T) {
	repo := &fakeRepository{records: map[string][]domain.Record{"category": numbered(3, "BON")}}
	svc := NewService(repo, nil, TextFilter{})

	page, err := svc.List(context.Background(), ListQuery{Category: "BON", Page: 1, PageSize: 10})
	require.NoError(t, err)

	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.PageSize)
	require.Len(t, page.Items, 3)
	for _, r := range page.Items {
		assert.Equal(t, "BON", r.CategoryCode().OrElse(""))
	}
}

func TestListExtendedScenario(t *testing.T) {
	baseline := numbered(4, "GSS")
	auxiliary := item("SH-001", "Biscuit Sidi Heni", "GSS")
	auxiliary.Brand = domain.Some("SIDI HENI")

	repo := &fakeRepository{records: map[string][]domain.Record{
		"default":  baseline,
		"extended": append(append([]domain.Record{}, baseline...), auxiliary),
	}}
	svc := NewService(repo, nil, TextFilter{})

	extended, err := svc.List(context.Background(), ListQuery{Scope: domain.ScopeInclude})
	require.NoError(t, err)
	unset, err := svc.List(context.Background(), ListQuery{})
	require.NoError(t, err)

	assert.Contains(t, references(extended.Items), "SH-001")
	assert.NotContains(t, references(unset.Items), "SH-001")
}

func TestListTotalCountsFilteredSet(t *testing.T) {
	records := numbered(120, "CHA")
	records[5].DisplayName = "Chocolat noir"
	records[77].DisplayName = "Chocolat au lait"
	repo := &fakeRepository{records: map[string][]domain.Record{"category": records}}
	svc := NewService(repo, nil, TextFilter{})

	page, err := svc.List(context.Background(), ListQuery{Term: "  chocolat ", Category: "CHA", PageSize: 1})
	require.NoError(t, err)

	assert.Equal(t, 2, page.Total)
	assert.Equal(t, []string{"CHA-005"}, references(page.Items))
}

func TestListIsIdempotent(t *testing.T) {
	repo := &fakeRepository{records: map[string][]domain.Record{"default": numbered(30, "PAK")}}
	svc := NewService(repo, nil, TextFilter{})
	q := ListQuery{Term: "1", Page: 2, PageSize: 5}

	first, err := svc.List(context.Background(), q)
	require.NoError(t, err)
	second, err := svc.List(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestListPageBeyondEnd(t *testing.T) {
	repo := &fakeRepository{records: map[string][]domain.Record{"default": numbered(7, "GAS")}}

	page, err := NewService(repo, nil, TextFilter{}).List(context.Background(), ListQuery{Page: 9, PageSize: 5})
	require.NoError(t, err)

	assert.Equal(t, 7, page.Total)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestListClampsPaging(t *testing.T) {
	repo := &fakeRepository{records: map[string][]domain.Record{"default": numbered(60, "BON")}}

	page, err := NewService(repo, nil, TextFilter{}).List(context.Background(), ListQuery{Page: 0, PageSize: 500})
	require.NoError(t, err)

	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 50, page.PageSize)
	assert.Len(t, page.Items, 50)
	assert.Equal(t, 60, page.Total)
}

func TestListDeduplicatesByReference(t *testing.T) {
	first := item("ART-1", "Premier", "BON")
	dup := item("ART-1", "Doublon", "BON")
	repo := &fakeRepository{records: map[string][]domain.Record{
		"default": {first, item("ART-2", "Second", "BON"), dup},
	}}

	page, err := NewService(repo, nil, TextFilter{}).List(context.Background(), ListQuery{})
	require.NoError(t, err)

	assert.Equal(t, 2, page.Total)
	assert.Equal(t, "Premier", page.Items[0].DisplayName)
}

func TestListRetrievalFailures(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewService(&fakeRepository{err: boom}, nil, TextFilter{})

	_, err := svc.List(context.Background(), ListQuery{Category: "BON"})
	var retrieval *domain.RetrievalError
	require.ErrorAs(t, err, &retrieval)
	assert.Equal(t, "by-category", retrieval.Strategy)
	assert.ErrorIs(t, err, boom)

	malformed := &fakeRepository{records: map[string][]domain.Record{
		"default": {item("ART-1", "Ok", "BON"), item("  ", "Sans référence", "BON")},
	}}
	_, err = NewService(malformed, nil, TextFilter{}).List(context.Background(), ListQuery{})
	assert.ErrorIs(t, err, domain.ErrMalformedRecord)
}

func TestListUsesPageCache(t *testing.T) {
	repo := &fakeRepository{records: map[string][]domain.Record{"default": numbered(3, "BON")}}
	pageCache := &fakeCache{}
	svc := NewService(repo, pageCache, TextFilter{})

	first, err := svc.List(context.Background(), ListQuery{})
	require.NoError(t, err)
	second, err := svc.List(context.Background(), ListQuery{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, repo.calls, 1)
	assert.Equal(t, 1, pageCache.sets)

	_, err = svc.List(context.Background(), ListQuery{Page: 2})
	require.NoError(t, err)
	assert.Len(t, repo.calls, 2, "a different page is a different key")
}

func TestListIgnoresCacheFailures(t *testing.T) {
	repo := &fakeRepository{records: map[string][]domain.Record{"default": numbered(3, "BON")}}
	svc := NewService(repo, &fakeCache{getErr: errors.New("redis down")}, TextFilter{})

	page, err := svc.List(context.Background(), ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
}

func TestGet(t *testing.T) {
	repo := &fakeRepository{records: map[string][]domain.Record{"default": {item("ART-7", "Gaufrette", "GSS")}}}
	svc := NewService(repo, nil, TextFilter{})

	record, err := svc.Get(context.Background(), " ART-7 ")
	require.NoError(t, err)
	assert.Equal(t, "Gaufrette", record.DisplayName)

	_, err = svc.Get(context.Background(), "UNKNOWN")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(context.Background(), "   ")
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "reference", validation.Field)
}

func TestGetWrapsSourceFailure(t *testing.T) {
	boom := errors.New("timeout")
	_, err := NewService(&fakeRepository{err: boom}, nil, TextFilter{}).Get(context.Background(), "ART-1")

	var retrieval *domain.RetrievalError
	require.ErrorAs(t, err, &retrieval)
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}
