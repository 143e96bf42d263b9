package domain

import "strings"

// Scope is the tri-state flag controlling the auxiliary item population when
// no category filter is given.
type Scope int

const (
	ScopeUnset Scope = iota
	ScopeInclude
	ScopeExclude
)

func (s Scope) String() string {
	switch s {
	case ScopeInclude:
		return "true"
	case ScopeExclude:
		return "false"
	default:
		return "unset"
	}
}

// ParseScope accepts "", "true" and "false" (case-insensitive).
func ParseScope(raw string) (Scope, error) {
	v := strings.TrimSpace(raw)
	switch {
	case v == "":
		return ScopeUnset, nil
	case strings.EqualFold(v, "true"):
		return ScopeInclude, nil
	case strings.EqualFold(v, "false"):
		return ScopeExclude, nil
	}
	return ScopeUnset, &ValidationError{Field: "scope", Message: "must be true or false"}
}

// Strategy is one retrieval path against the catalog source.
type Strategy int

const (
	StrategyDefaultScope Strategy = iota
	StrategyExtendedScope
	StrategyRestrictedScope
	StrategyByCategory
	StrategyBySubCategory
)

func (s Strategy) String() string {
	switch s {
	case StrategyDefaultScope:
		return "default-scope"
	case StrategyExtendedScope:
		return "extended-scope"
	case StrategyRestrictedScope:
		return "restricted-scope"
	case StrategyByCategory:
		return "by-category"
	case StrategyBySubCategory:
		return "by-sub-category"
	default:
		return "unknown"
	}
}

// Selection is the raw structural part of a catalog request.
type Selection struct {
	Category    string
	SubCategory string
	Scope       Scope
}

// Plan is the resolved strategy with the narrowing parameters it needs.
type Plan struct {
	Strategy    Strategy
	Category    string
	SubCategory string
}

// Key identifies the plan in cache keys and logs.
func (p Plan) Key() string {
	switch p.Strategy {
	case StrategyByCategory:
		return p.Strategy.String() + ":" + p.Category
	case StrategyBySubCategory:
		return p.Strategy.String() + ":" + p.Category + ":" + p.SubCategory
	default:
		return p.Strategy.String()
	}
}
