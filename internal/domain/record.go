package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FamilyLevels is the depth of the legacy family hierarchy.
const FamilyLevels = 5

// Classification is one node of the legacy taxonomy: a code and its designation.
type Classification struct {
	Code  string           `json:"code"`
	Label Optional[string] `json:"label"`
}

// Record is the flattened view of one sellable item. The same shape is produced
// by every retrieval strategy; attributes a strategy does not expose are absent.
//
// Family level 1 is strategy dependent: the scope strategies alias it to the
// top-level category, the category strategies to the first sub-classification.
type Record struct {
	Reference   string                                 `json:"reference"`
	DisplayName string                                 `json:"displayName"`
	Category    Optional[Classification]               `json:"category"`
	Range       Optional[Classification]               `json:"range"`
	Families    [FamilyLevels]Optional[Classification] `json:"families"`
	SubFamily   Optional[Classification]               `json:"subFamily"`
	SKU         Optional[Classification]               `json:"sku"`
	Brand       Optional[string]                       `json:"brand"`
	ImageRef    string                                 `json:"imageRef"`
	Price       decimal.Decimal                        `json:"price"`
}

// Family returns the classification at the given 1-based level.
func (r Record) Family(level int) Optional[Classification] {
	if level < 1 || level > FamilyLevels {
		return None[Classification]()
	}
	return r.Families[level-1]
}

// CategoryCode returns the top-level category code when the record has one.
func (r Record) CategoryCode() Optional[string] {
	c, ok := r.Category.Get()
	if !ok {
		return None[string]()
	}
	return Some(c.Code)
}

// Text turns a nullable source column into an Optional, treating blank text as absent.
func Text(s *string) Optional[string] {
	if s == nil {
		return None[string]()
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return None[string]()
	}
	return Some(v)
}

// Classify builds a classification from nullable code and label columns.
// A label without a code is dropped.
func Classify(code, label *string) Optional[Classification] {
	c, ok := Text(code).Get()
	if !ok {
		return None[Classification]()
	}
	return Some(Classification{Code: c, Label: Text(label)})
}

// Page is one paginated slice of a filtered candidate set. Total counts the
// filtered set before slicing.
type Page struct {
	Total    int      `json:"total"`
	Page     int      `json:"page"`
	PageSize int      `json:"pageSize"`
	Items    []Record `json:"items"`
}
