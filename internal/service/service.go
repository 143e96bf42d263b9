package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"tablette/catalog/internal/cache"
	"tablette/catalog/internal/domain"
	"tablette/catalog/internal/repository"
	"tablette/catalog/internal/resolver"
)

// ListQuery is a validated catalog listing request. Zero Page and PageSize
// mean "not given".
type ListQuery struct {
	Term        string
	Category    string
	SubCategory string
	Scope       domain.Scope
	Page        int
	PageSize    int
}

type Service struct {
	repository repository.CatalogRepository
	pageCache  cache.PageCache
	filter     TextFilter
}

// NewService builds the catalog pipeline. pageCache may be nil.
func NewService(repository repository.CatalogRepository, pageCache cache.PageCache, filter TextFilter) *Service {
	return &Service{
		repository: repository,
		pageCache:  pageCache,
		filter:     filter,
	}
}

// List resolves the strategy, fetches its candidates, applies the text filter
// when a term is given and paginates the result.
func (s *Service) List(ctx context.Context, q ListQuery) (*domain.Page, error) {
	plan := resolver.Resolve(domain.Selection{
		Category:    q.Category,
		SubCategory: q.SubCategory,
		Scope:       q.Scope,
	})
	page, pageSize := NormalizePage(q.Page, q.PageSize)
	term := strings.TrimSpace(q.Term)

	logger := log.WithFields(log.Fields{
		"strategy": plan.Strategy.String(),
		"term":     term,
		"page":     page,
		"pageSize": pageSize,
	})

	key := cacheKey(plan, term, page, pageSize)
	if s.pageCache != nil {
		cached, ok, err := s.pageCache.Get(ctx, key)
		if err != nil {
			logger.Warnf("Page cache read failed: %v", err)
		} else if ok {
			logger.Debug("Serving catalog page from cache")
			return cached, nil
		}
	}

	candidates, err := s.fetch(ctx, plan)
	if err != nil {
		return nil, err
	}

	if term != "" {
		candidates = s.filter.Apply(candidates, term)
	}

	result := Paginate(candidates, page, pageSize)
	logger.Debugf("Catalog listing: %d matches, %d on page", result.Total, len(result.Items))

	if s.pageCache != nil {
		if err := s.pageCache.Set(ctx, key, result); err != nil {
			logger.Warnf("Page cache write failed: %v", err)
		}
	}

	return result, nil
}

// Get looks up one record by reference. It returns domain.ErrNotFound when the
// source has no such item.
func (s *Service) Get(ctx context.Context, reference string) (*domain.Record, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, &domain.ValidationError{Field: "reference", Message: "is required"}
	}

	record, err := s.repository.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, &domain.RetrievalError{Strategy: "lookup", Err: err}
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}
	if strings.TrimSpace(record.Reference) == "" {
		return nil, &domain.RetrievalError{Strategy: "lookup", Err: domain.ErrMalformedRecord}
	}
	return record, nil
}

// fetch runs exactly one retrieval call for the plan and returns its rows in
// source order, without duplicate references.
func (s *Service) fetch(ctx context.Context, plan domain.Plan) ([]domain.Record, error) {
	var (
		records []domain.Record
		err     error
	)

	switch plan.Strategy {
	case domain.StrategyDefaultScope:
		records, err = s.repository.ListDefault(ctx)
	case domain.StrategyExtendedScope:
		records, err = s.repository.ListExtended(ctx)
	case domain.StrategyRestrictedScope:
		records, err = s.repository.ListRestricted(ctx)
	case domain.StrategyByCategory:
		records, err = s.repository.ListByCategory(ctx, plan.Category)
	case domain.StrategyBySubCategory:
		records, err = s.repository.ListBySubCategory(ctx, plan.Category, plan.SubCategory)
	default:
		err = fmt.Errorf("unsupported strategy %d", plan.Strategy)
	}
	if err != nil {
		return nil, &domain.RetrievalError{Strategy: plan.Strategy.String(), Err: err}
	}

	return dedupe(records, plan.Strategy)
}

func dedupe(records []domain.Record, strategy domain.Strategy) ([]domain.Record, error) {
	seen := make(map[string]struct{}, len(records))
	out := make([]domain.Record, 0, len(records))
	for i, r := range records {
		if strings.TrimSpace(r.Reference) == "" {
			return nil, &domain.RetrievalError{
				Strategy: strategy.String(),
				Err:      fmt.Errorf("row %d: %w", i, domain.ErrMalformedRecord),
			}
		}
		if _, ok := seen[r.Reference]; ok {
			continue
		}
		seen[r.Reference] = struct{}{}
		out = append(out, r)
	}
	return out, nil
}

func cacheKey(plan domain.Plan, term string, page, pageSize int) string {
	return fmt.Sprintf("%s|%q|%d|%d", plan.Key(), term, page, pageSize)
}
