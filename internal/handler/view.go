package handler

import (
	"encoding/json"
	"fmt"

	"tablette/catalog/internal/domain"
)

// CatalogRecordView is the public shape of a catalog item.
type CatalogRecordView struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description *string     `json:"description"`
	ImageURL    string      `json:"imageUrl"`
	Price       json.Number `json:"price"`
	Category    *string     `json:"category"`
	Reference   string      `json:"reference"`
	Stock       int         `json:"stock"`
}

// CatalogPageView is the public shape of a catalog listing.
type CatalogPageView struct {
	Total    int                 `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"pageSize"`
	Items    []CatalogRecordView `json:"items"`
}

type errorView struct {
	Error string `json:"error"`
}

// Projector turns records into views. Description is always null and stock is
// a fixed placeholder: the catalog has no source for either.
type Projector struct {
	ImageURLPattern string
}

func (p Projector) Record(r domain.Record) CatalogRecordView {
	image := r.ImageRef
	if image == "" {
		image = r.Reference
	}
	return CatalogRecordView{
		ID:        r.Reference,
		Name:      r.DisplayName,
		ImageURL:  fmt.Sprintf(p.ImageURLPattern, image),
		Price:     json.Number(r.Price.String()),
		Category:  r.CategoryCode().Ptr(),
		Reference: r.Reference,
		Stock:     0,
	}
}

func (p Projector) Page(page *domain.Page) CatalogPageView {
	items := make([]CatalogRecordView, len(page.Items))
	for i, r := range page.Items {
		items[i] = p.Record(r)
	}
	return CatalogPageView{
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
		Items:    items,
	}
}
