package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"tablette/catalog/internal/domain"
	"tablette/catalog/internal/service"
)

// CatalogService is the query pipeline behind the endpoint.
type CatalogService interface {
	List(ctx context.Context, q service.ListQuery) (*domain.Page, error)
	Get(ctx context.Context, reference string) (*domain.Record, error)
}

type CatalogHandler struct {
	service   CatalogService
	projector Projector
}

func NewCatalogHandler(service CatalogService, projector Projector) *CatalogHandler {
	return &CatalogHandler{service: service, projector: projector}
}

// NewRouter builds the gin engine with middleware and all catalog routes.
func NewRouter(h *CatalogHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger())
	h.RegisterRoutes(router)
	return router
}

func (h *CatalogHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", h.Health)

	router.GET("/catalog", h.List)
	router.GET("/catalog/:reference", h.Get)

	// routes kept for clients of the previous product API
	legacy := router.Group("/api/product")
	{
		legacy.GET("", h.List)
		legacy.GET("/:reference", h.Get)
	}
}

func (h *CatalogHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// List serves a filtered, paginated catalog listing.
func (h *CatalogHandler) List(c *gin.Context) {
	q, err := parseListQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	page, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, h.projector.Page(page))
}

// Get serves a single catalog item by reference.
func (h *CatalogHandler) Get(c *gin.Context) {
	record, err := h.service.Get(c.Request.Context(), c.Param("reference"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, h.projector.Record(*record))
}

func parseListQuery(c *gin.Context) (service.ListQuery, error) {
	q := service.ListQuery{
		Term:        c.Query("q"),
		Category:    firstQuery(c, "category", "famille"),
		SubCategory: firstQuery(c, "subCategory", "sousFamille"),
	}

	scope, err := domain.ParseScope(firstQuery(c, "scope", "includeSidiHeni"))
	if err != nil {
		return q, err
	}
	q.Scope = scope

	if q.Page, err = intQuery(c, "page"); err != nil {
		return q, err
	}
	if q.PageSize, err = intQuery(c, "pageSize"); err != nil {
		return q, err
	}
	return q, nil
}

// firstQuery returns the first non-blank value among the given parameter names.
func firstQuery(c *gin.Context, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(c.Query(name)); v != "" {
			return v
		}
	}
	return ""
}

// intQuery returns 0 for an absent parameter.
func intQuery(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &domain.ValidationError{Field: name, Message: "must be an integer"}
	}
	return n, nil
}

func (h *CatalogHandler) fail(c *gin.Context, err error) {
	_ = c.Error(err)

	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, errorView{Error: validation.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, errorView{Error: "catalog item not found"})
	default:
		log.WithField("requestId", c.GetString(requestIDKey)).Errorf("Catalog request failed: %v", err)
		c.JSON(http.StatusInternalServerError, errorView{Error: "catalog source unavailable"})
	}
}
