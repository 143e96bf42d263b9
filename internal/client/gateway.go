package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"

	"tablette/catalog/internal/config"
	"tablette/catalog/internal/domain"
)

// GatewayClient reads the catalog from the ERP gateway HTTP API. It satisfies
// repository.CatalogRepository.
type GatewayClient struct {
	rl         ratelimit.Limiter
	httpClient *resty.Client

	// Circuit breaker for an overloaded gateway
	circuitBreakerMutex sync.RWMutex
	openUntil           time.Time
	circuitBreakerDelay time.Duration
}

func NewGatewayClient(cfg config.GatewayConfig) *GatewayClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Accept", "application/json")

	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &GatewayClient{
		rl:                  rl,
		httpClient:          client,
		circuitBreakerDelay: time.Duration(cfg.CooldownSeconds) * time.Second,
	}
}

func (c *GatewayClient) ListDefault(ctx context.Context) ([]domain.Record, error) {
	return c.list(ctx, domain.StrategyDefaultScope, nil)
}

func (c *GatewayClient) ListExtended(ctx context.Context) ([]domain.Record, error) {
	return c.list(ctx, domain.StrategyExtendedScope, nil)
}

func (c *GatewayClient) ListRestricted(ctx context.Context) ([]domain.Record, error) {
	return c.list(ctx, domain.StrategyRestrictedScope, nil)
}

func (c *GatewayClient) ListByCategory(ctx context.Context, category string) ([]domain.Record, error) {
	return c.list(ctx, domain.StrategyByCategory, map[string]string{"category": category})
}

func (c *GatewayClient) ListBySubCategory(ctx context.Context, category, subCategory string) ([]domain.Record, error) {
	return c.list(ctx, domain.StrategyBySubCategory, map[string]string{
		"category":    category,
		"subCategory": subCategory,
	})
}

func (c *GatewayClient) GetByReference(ctx context.Context, reference string) (*domain.Record, error) {
	status, body, err := c.fetch(ctx, "/items/{reference}", map[string]string{"reference": reference}, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}

	var row gatewayRow
	if err := json.Unmarshal(body, &row); err != nil {
		return nil, fmt.Errorf("failed to decode item %s: %w", reference, err)
	}
	record := row.toRecord()
	return &record, nil
}

// Close releases idle connections of the underlying HTTP client.
func (c *GatewayClient) Close() error {
	return c.httpClient.Close()
}

func (c *GatewayClient) list(ctx context.Context, strategy domain.Strategy, params map[string]string) ([]domain.Record, error) {
	query := map[string]string{"strategy": strategy.String()}
	for k, v := range params {
		query[k] = v
	}

	status, body, err := c.fetch(ctx, "/items", nil, query)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("gateway has no listing for strategy %s", strategy)
	}

	var page gatewayPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to decode %s listing: %w", strategy, err)
	}

	records := make([]domain.Record, 0, len(page.Items))
	for _, row := range page.Items {
		records = append(records, row.toRecord())
	}

	log.Debugf("Fetched %d rows from gateway for %s", len(records), strategy)
	return records, nil
}

func (c *GatewayClient) isCircuitBreakerOpen() bool {
	c.circuitBreakerMutex.RLock()
	now := time.Now()
	wasOpen := now.Before(c.openUntil)
	wasTriggered := !c.openUntil.IsZero()
	c.circuitBreakerMutex.RUnlock()

	if !wasOpen && wasTriggered {
		c.circuitBreakerMutex.Lock()
		if !c.openUntil.IsZero() && now.After(c.openUntil) {
			c.openUntil = time.Time{}
			log.Infof("✅ Gateway circuit breaker closed - requests are allowed again")
		}
		c.circuitBreakerMutex.Unlock()
	}

	return wasOpen
}

func (c *GatewayClient) triggerCircuitBreaker() {
	if c.circuitBreakerDelay <= 0 {
		return
	}

	c.circuitBreakerMutex.Lock()
	defer c.circuitBreakerMutex.Unlock()

	c.openUntil = time.Now().Add(c.circuitBreakerDelay)
	log.Warnf("🚫 Gateway circuit breaker opened until %v", c.openUntil.Format("15:04:05"))
}

func (c *GatewayClient) getRemainingCircuitBreakerTime() time.Duration {
	c.circuitBreakerMutex.RLock()
	defer c.circuitBreakerMutex.RUnlock()

	remaining := time.Until(c.openUntil)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// fetch performs one GET and returns the status and body. 404 is returned to the
// caller, every other non-2xx status is an error.
func (c *GatewayClient) fetch(ctx context.Context, path string, pathParams, query map[string]string) (int, []byte, error) {
	if c.isCircuitBreakerOpen() {
		remaining := c.getRemainingCircuitBreakerTime()
		return 0, nil, fmt.Errorf("gateway circuit breaker is open for %v more", remaining.Round(time.Second))
	}

	c.rl.Take()

	req := c.httpClient.R().SetContext(ctx)
	if pathParams != nil {
		req.SetPathParams(pathParams)
	}
	if query != nil {
		req.SetQueryParams(query)
	}

	resp, err := req.Get(path)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return 0, nil, fmt.Errorf("failed to call gateway: %w", err)
	}

	switch status := resp.StatusCode(); {
	case status == http.StatusNotFound:
		return status, nil, nil
	case status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable:
		c.triggerCircuitBreaker()
		return status, nil, fmt.Errorf("gateway overloaded: %s", resp.Status())
	case resp.IsError():
		return status, nil, fmt.Errorf("gateway error: %s", resp.Status())
	default:
		return status, []byte(resp.String()), nil
	}
}

type gatewayPage struct {
	Items []gatewayRow `json:"items"`
}

type gatewayNode struct {
	Code  *string `json:"code"`
	Label *string `json:"label"`
}

func (n *gatewayNode) classify() domain.Optional[domain.Classification] {
	if n == nil {
		return domain.None[domain.Classification]()
	}
	return domain.Classify(n.Code, n.Label)
}

// gatewayRow is the wire shape of one catalog row. Every attribute is nullable.
type gatewayRow struct {
	Reference   *string                           `json:"reference"`
	DisplayName *string                           `json:"display_name"`
	Category    *gatewayNode                      `json:"category"`
	Range       *gatewayNode                      `json:"range"`
	Families    [domain.FamilyLevels]*gatewayNode `json:"families"`
	SubFamily   *gatewayNode                      `json:"sub_family"`
	SKU         *gatewayNode                      `json:"sku"`
	Brand       *string                           `json:"brand"`
	Image       *string                           `json:"image"`
	Price       decimal.NullDecimal               `json:"price"`
}

func (r gatewayRow) toRecord() domain.Record {
	record := domain.Record{
		Reference:   domain.Text(r.Reference).OrElse(""),
		DisplayName: domain.Text(r.DisplayName).OrElse(""),
		Category:    r.Category.classify(),
		Range:       r.Range.classify(),
		SubFamily:   r.SubFamily.classify(),
		SKU:         r.SKU.classify(),
		Brand:       domain.Text(r.Brand),
		ImageRef:    domain.Text(r.Image).OrElse(""),
		Price:       decimal.Zero,
	}
	for i, node := range r.Families {
		record.Families[i] = node.classify()
	}
	if r.Price.Valid {
		record.Price = r.Price.Decimal
	}
	return record
}
