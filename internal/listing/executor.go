// Package listing runs product queries against the backend and shapes the
// results into page view models.
package listing

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"storefront-gateway/internal/backend"
	"storefront-gateway/internal/filter"
)

// Executor translates a (categoryID, Filter) pair into exactly one backend
// product query.
type Executor struct {
	client backend.Client
	logger *zap.Logger
}

// NewExecutor builds an Executor on top of the backend client.
func NewExecutor(client backend.Client, logger *zap.Logger) *Executor {
	return &Executor{client: client, logger: logger}
}

// Fetch requests one page of products. Filter fields map 1:1 onto query
// parameters; pagination is clamped again here so callers that bypass the
// normalizer still cannot request out-of-range pages.
func (e *Executor) Fetch(ctx context.Context, categoryID string, f filter.Filter) (*backend.ProductPage, error) {
	return e.fetch(ctx, "category_id", categoryID, f)
}

// FetchByBusiness requests one page of a single vendor's listings.
func (e *Executor) FetchByBusiness(ctx context.Context, businessID string, f filter.Filter) (*backend.ProductPage, error) {
	return e.fetch(ctx, "business_id", businessID, f)
}

func (e *Executor) fetch(ctx context.Context, anchorKey, anchorID string, f filter.Filter) (*backend.ProductPage, error) {
	f.Page = filter.ClampPage(f.Page)
	f.PerPage = filter.ClampPerPage(f.PerPage)

	params := f.Values()
	if anchorID != "" {
		params.Set(anchorKey, anchorID)
	}

	page, err := e.client.SearchProducts(ctx, params)
	if err != nil {
		e.logger.Warn("product query failed",
			zap.String(anchorKey, anchorID),
			zap.String("query", params.Encode()),
			zap.Error(err))
		return nil, err
	}

	// Some backend deployments omit the echo of pagination fields.
	if page.Page == 0 {
		page.Page = f.Page
	}
	if page.PerPage == 0 {
		page.PerPage = f.PerPage
	}
	e.logger.Debug("product query served",
		zap.String(anchorKey, anchorID),
		zap.Int("page", page.Page),
		zap.Int("count", len(page.Products)),
		zap.String("total", totalLabel(page.Total)))
	return page, nil
}

func totalLabel(total *int) string {
	if total == nil {
		return "unknown"
	}
	return strconv.Itoa(*total)
}
