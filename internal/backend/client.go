package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"storefront-gateway/internal/domain"
)

// Client is the boundary to the remote catalog API. Everything behind it
// (storage, auth, image CDN) is owned by the backend.
type Client interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	SearchProducts(ctx context.Context, params url.Values) (*ProductPage, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	GetBusinessBySlug(ctx context.Context, slug string) (*domain.BusinessProfile, error)
	CreateProduct(ctx context.Context, token string, p domain.Product) (*domain.Product, error)
	Ping(ctx context.Context) error
}

// ProductPage is one page of listing results. Total is nil when the backend
// does not report it; callers fall back to has-more heuristics.
type ProductPage struct {
	Products []domain.Product `json:"products"`
	Page     int              `json:"page"`
	PerPage  int              `json:"perPage"`
	Total    *int             `json:"total,omitempty"`
}

// HTTPClient talks JSON over HTTP to the catalog backend. A circuit breaker
// trips after sustained transport failures so a dead backend degrades fast
// instead of queueing slow requests.
type HTTPClient struct {
	baseURL string
	httpc   *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewHTTPClient builds a client for the backend at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "catalog-backend",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && counts.TotalFailures*2 > counts.Requests
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		},
		IsSuccessful: func(err error) bool {
			// Not-found is a definitive answer, not a backend failure.
			return err == nil || errors.Is(err, domain.ErrNotFound)
		},
	})

	return &HTTPClient{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
		breaker: cb,
		logger:  logger,
	}
}

type categoryListEnvelope struct {
	Success bool              `json:"success"`
	Data    []domain.Category `json:"data"`
}

type categoryEnvelope struct {
	Success bool            `json:"success"`
	Data    domain.Category `json:"data"`
}

type productEnvelope struct {
	Success bool           `json:"success"`
	Product domain.Product `json:"product"`
}

type businessEnvelope struct {
	Success bool                   `json:"success"`
	Data    domain.BusinessProfile `json:"data"`
}

// productPageEnvelope tolerates both response spellings the backend uses:
// some deployments return "products", others "data".
type productPageEnvelope struct {
	Products []domain.Product `json:"products"`
	Data     []domain.Product `json:"data"`
	Page     int              `json:"page"`
	PerPage  int              `json:"perPage"`
	Total    *int             `json:"total"`
}

func (c *HTTPClient) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var env categoryListEnvelope
	if err := c.get(ctx, "/categories", nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *HTTPClient) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	var env categoryEnvelope
	if err := c.get(ctx, "/categories/"+url.PathEscape(id), nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *HTTPClient) SearchProducts(ctx context.Context, params url.Values) (*ProductPage, error) {
	var env productPageEnvelope
	if err := c.get(ctx, "/products", params, &env); err != nil {
		return nil, err
	}
	products := env.Products
	if products == nil {
		products = env.Data
	}
	return &ProductPage{
		Products: products,
		Page:     env.Page,
		PerPage:  env.PerPage,
		Total:    env.Total,
	}, nil
}

func (c *HTTPClient) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	var env productEnvelope
	if err := c.get(ctx, "/products/slug/"+url.PathEscape(slug), nil, &env); err != nil {
		return nil, err
	}
	return &env.Product, nil
}

func (c *HTTPClient) GetBusinessBySlug(ctx context.Context, slug string) (*domain.BusinessProfile, error) {
	var env businessEnvelope
	if err := c.get(ctx, "/businesses/slug/"+url.PathEscape(slug), nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *HTTPClient) CreateProduct(ctx context.Context, token string, p domain.Product) (*domain.Product, error) {
	var env productEnvelope
	if err := c.do(ctx, http.MethodPost, "/products", nil, token, p, &env); err != nil {
		return nil, err
	}
	return &env.Product, nil
}

// Ping checks backend reachability for readiness probes.
func (c *HTTPClient) Ping(ctx context.Context) error {
	var env categoryListEnvelope
	return c.get(ctx, "/categories", nil, &env)
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, params, "", nil, out)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, token string, body, out interface{}) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, method, path, params, token, body, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &domain.RequestFailedError{Cause: err}
	}
	return err
}

func (c *HTTPClient) roundTrip(ctx context.Context, method, path string, params url.Values, token string, body, out interface{}) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &domain.RequestFailedError{Cause: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.logger.Warn("backend returned unexpected status",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return &domain.UnexpectedStatusError{Status: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.RequestFailedError{Cause: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
