package listing

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"storefront-gateway/internal/backend"
	"storefront-gateway/internal/catalog"
	"storefront-gateway/internal/directory"
	"storefront-gateway/internal/domain"
	"storefront-gateway/internal/filter"
)

// NoProductsMessage is the actionable copy shown whenever a listing comes
// back empty or degraded. Degraded states never render blank.
const NoProductsMessage = "No products found — try adjusting your filters."

// CategoryPage is the view model for /category/{slug}: category context,
// breadcrumb trail, and one page of products. Products keep the backend's
// order. Total is nil when the backend does not report it; HasMore is the
// fallback heuristic.
type CategoryPage struct {
	Category         domain.Category      `json:"category"`
	Breadcrumb       []catalog.Crumb      `json:"breadcrumb"`
	BreadcrumbSchema []catalog.SchemaItem `json:"breadcrumb_schema"`
	Products         []domain.Product     `json:"products"`
	Filter           filter.Filter        `json:"-"`
	Page             int                  `json:"page"`
	PerPage          int                  `json:"perPage"`
	Total            *int                 `json:"total,omitempty"`
	HasMore          bool                 `json:"hasMore"`
	Degraded         bool                 `json:"degraded"`
	Message          string               `json:"message,omitempty"`
}

// Assembler drives the full resolution pipeline: slug lookup, breadcrumb
// construction, product fetch, view model shaping.
type Assembler struct {
	dir     *directory.Directory
	exec    *Executor
	querier *Querier
	baseURL string
	logger  *zap.Logger
}

// NewAssembler wires the pipeline. baseURL is the public storefront origin
// used in structured-data URLs. querier may be nil when search-as-you-type
// superseding is not needed.
func NewAssembler(dir *directory.Directory, exec *Executor, querier *Querier, baseURL string, logger *zap.Logger) *Assembler {
	return &Assembler{dir: dir, exec: exec, querier: querier, baseURL: baseURL, logger: logger}
}

// CategoryPage resolves slug and assembles the page for it.
//
// An unknown slug is terminal: domain.ErrNotFound propagates and no product
// query is issued. A failed product query is not: the page still carries
// the category and breadcrumb, with an empty product list and the degraded
// message.
func (a *Assembler) CategoryPage(ctx context.Context, slug string, f filter.Filter) (*CategoryPage, error) {
	cat, err := a.dir.CategoryFromSlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	page := newPage(f)
	page.Category = *cat
	page.Breadcrumb = a.breadcrumb(ctx, *cat)
	page.BreadcrumbSchema = catalog.BreadcrumbSchema(page.Breadcrumb, a.baseURL)

	results, err := a.exec.Fetch(ctx, cat.ID, f)
	return a.finish(page, results, err)
}

// SearchPage runs the pipeline without a category anchor, for catalog-wide
// free-text search. A non-empty sessionKey routes the fetch through the
// superseding querier so stale keystrokes are debounced and discarded;
// superseded requests surface ErrSuperseded.
func (a *Assembler) SearchPage(ctx context.Context, sessionKey string, f filter.Filter) (*CategoryPage, error) {
	page := newPage(f)
	page.Breadcrumb = []catalog.Crumb{{Name: "Home", Href: "/"}}
	page.BreadcrumbSchema = catalog.BreadcrumbSchema(page.Breadcrumb, a.baseURL)

	var results *backend.ProductPage
	var err error
	if a.querier != nil && sessionKey != "" {
		results, err = a.querier.Query(ctx, sessionKey, "", f)
		if errors.Is(err, ErrSuperseded) {
			return nil, err
		}
	} else {
		results, err = a.exec.Fetch(ctx, "", f)
	}
	return a.finish(page, results, err)
}

// VendorListing fetches one page of a business's products, degrading the
// same way category listings do.
func (a *Assembler) VendorListing(ctx context.Context, businessID string, f filter.Filter) (*CategoryPage, error) {
	page := newPage(f)
	results, err := a.exec.FetchByBusiness(ctx, businessID, f)
	return a.finish(page, results, err)
}

func newPage(f filter.Filter) *CategoryPage {
	return &CategoryPage{
		Products: []domain.Product{},
		Filter:   f,
		Page:     f.Page,
		PerPage:  f.PerPage,
	}
}

// finish folds the fetch outcome into the page: transient backend trouble
// degrades the page instead of failing it.
func (a *Assembler) finish(page *CategoryPage, results *backend.ProductPage, err error) (*CategoryPage, error) {
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || domain.IsRetryable(err) {
			a.logger.Warn("listing degraded", zap.Error(err))
			page.Degraded = true
			page.Message = NoProductsMessage
			return page, nil
		}
		return nil, err
	}

	page.Products = results.Products
	page.Page = results.Page
	page.PerPage = results.PerPage
	page.Total = results.Total
	page.HasMore = hasMore(results)
	if len(page.Products) == 0 {
		page.Message = NoProductsMessage
	}
	return page, nil
}

// breadcrumb builds the trail from the cached category snapshot. If the
// snapshot cannot form a valid tree the trail falls back to [Home, Category]
// rather than failing the page.
func (a *Assembler) breadcrumb(ctx context.Context, cat domain.Category) []catalog.Crumb {
	fallback := []catalog.Crumb{
		{Name: "Home", Href: "/"},
		{Name: cat.Name, Href: "/category/" + cat.Slug},
	}

	cats, err := a.dir.All(ctx)
	if err != nil {
		return fallback
	}
	tree, err := catalog.Build(cats)
	if err != nil {
		a.logger.Error("category data failed tree validation", zap.Error(err))
		return fallback
	}
	crumbs, err := tree.Breadcrumb(cat.ID)
	if err != nil {
		return fallback
	}
	return crumbs
}

func hasMore(p *backend.ProductPage) bool {
	if p.Total != nil {
		return p.Page*p.PerPage < *p.Total
	}
	return len(p.Products) == p.PerPage
}
