package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront-gateway/internal/catalog"
	"storefront-gateway/internal/domain"
)

type productPageResponse struct {
	Success          bool                 `json:"success"`
	Product          domain.Product       `json:"product"`
	Breadcrumb       []catalog.Crumb      `json:"breadcrumb"`
	BreadcrumbSchema []catalog.SchemaItem `json:"breadcrumb_schema"`
}

// productPageHandler serves /products/slug/:slug with the product's
// category trail attached.
func productPageHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		p, err := deps.Backend.GetProductBySlug(ctx, c.Param("slug"))
		if err != nil {
			renderError(c, err)
			return
		}

		crumbs := productBreadcrumb(c, deps, p.CategoryID)

		c.JSON(http.StatusOK, productPageResponse{
			Success:          true,
			Product:          *p,
			Breadcrumb:       crumbs,
			BreadcrumbSchema: catalog.BreadcrumbSchema(crumbs, deps.BaseURL),
		})
	}
}

// productBreadcrumb builds the category trail from the cached snapshot.
// When the product's category is not cached (for example a category added
// after preload) it falls back to a direct fetch by id so the page still
// names its category.
func productBreadcrumb(c *gin.Context, deps Deps, categoryID string) []catalog.Crumb {
	ctx := c.Request.Context()
	if cats, err := deps.Directory.All(ctx); err == nil {
		if tree, err := catalog.Build(cats); err == nil {
			if trail, err := tree.Breadcrumb(categoryID); err == nil {
				return trail
			}
		}
	}

	crumbs := []catalog.Crumb{{Name: "Home", Href: "/"}}
	if cat, err := deps.Backend.GetCategory(ctx, categoryID); err == nil {
		crumbs = append(crumbs, catalog.Crumb{Name: cat.Name, Href: "/category/" + cat.Slug})
	}
	return crumbs
}

type createProductRequest struct {
	Name           string           `json:"name" binding:"required"`
	Description    string           `json:"description"`
	Price          *decimal.Decimal `json:"price"`
	PriceInputMode string           `json:"price_input_mode"`
	Images         []string         `json:"images"`
	CategoryID     string           `json:"category_id" binding:"required"`
	LocationState  string           `json:"location_state"`
	LocationLGA    string           `json:"location_lga"`
	ItemCondition  string           `json:"item_condition"`
	PriceType      string           `json:"price_type"`
	SaleType       string           `json:"sale_type"`
	AmountInStock  int              `json:"amount_in_stock"`
}

// createProductHandler forwards a new listing to the backend. The gateway
// only checks what it can: a bearer token is present, the category exists,
// and a price accompanies anything that is not quote-priced. Ownership is
// enforced by the backend.
func createProductHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "sign in to create a listing"})
			return
		}

		var req createProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		if req.Price == nil && req.PriceInputMode != domain.PriceInputModeQuote {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "price is required unless the listing is quote-priced"})
			return
		}

		ctx := c.Request.Context()
		if _, err := deps.Directory.CategoryByID(ctx, req.CategoryID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "unknown category"})
			return
		}

		created, err := deps.Backend.CreateProduct(ctx, token, domain.Product{
			Name:           req.Name,
			Description:    req.Description,
			Price:          req.Price,
			PriceInputMode: req.PriceInputMode,
			Images:         req.Images,
			CategoryID:     req.CategoryID,
			LocationState:  req.LocationState,
			LocationLGA:    req.LocationLGA,
			ItemCondition:  req.ItemCondition,
			PriceType:      req.PriceType,
			SaleType:       req.SaleType,
			AmountInStock:  req.AmountInStock,
		})
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "product": created})
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}
