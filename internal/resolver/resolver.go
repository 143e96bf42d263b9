// Package resolver decides which catalog retrieval strategy serves a request.
package resolver

import (
	"strings"

	"tablette/catalog/internal/domain"
)

// Resolve maps a selection to exactly one strategy.
//
// Structural filters win over the scope flag: a category (with or without a
// sub-category) always selects a category strategy, and the scope flag is only
// consulted when no category is given. A sub-category without a category is
// ignored.
func Resolve(sel domain.Selection) domain.Plan {
	category := strings.TrimSpace(sel.Category)
	subCategory := strings.TrimSpace(sel.SubCategory)

	switch {
	case category != "" && subCategory != "":
		return domain.Plan{
			Strategy:    domain.StrategyBySubCategory,
			Category:    category,
			SubCategory: subCategory,
		}
	case category != "":
		return domain.Plan{Strategy: domain.StrategyByCategory, Category: category}
	}

	switch sel.Scope {
	case domain.ScopeInclude:
		return domain.Plan{Strategy: domain.StrategyExtendedScope}
	case domain.ScopeExclude:
		return domain.Plan{Strategy: domain.StrategyRestrictedScope}
	default:
		return domain.Plan{Strategy: domain.StrategyDefaultScope}
	}
}
