package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-gateway/internal/domain"
	"storefront-gateway/internal/filter"
)

type businessPageResponse struct {
	Success  bool                   `json:"success"`
	Business domain.BusinessProfile `json:"business"`
	IsOwner  bool                   `json:"is_owner"`
	Products []domain.Product       `json:"products"`
	Page     int                    `json:"page"`
	PerPage  int                    `json:"perPage"`
	Total    *int                   `json:"total,omitempty"`
	HasMore  bool                   `json:"hasMore"`
	Degraded bool                   `json:"degraded"`
	Message  string                 `json:"message,omitempty"`
}

// businessPageHandler serves a vendor profile with a page of its listings.
// The profile is required; the listings degrade like any other listing
// query.
func businessPageHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		biz, err := deps.Backend.GetBusinessBySlug(ctx, c.Param("slug"))
		if err != nil {
			renderError(c, err)
			return
		}

		f := filter.Parse(c.Request.URL.Query())
		page, err := deps.Assembler.VendorListing(ctx, biz.ID, f)
		if err != nil {
			renderError(c, err)
			return
		}

		c.JSON(http.StatusOK, businessPageResponse{
			Success:  true,
			Business: *biz,
			IsOwner:  c.GetHeader("X-User-ID") != "" && c.GetHeader("X-User-ID") == biz.OwnerID,
			Products: page.Products,
			Page:     page.Page,
			PerPage:  page.PerPage,
			Total:    page.Total,
			HasMore:  page.HasMore,
			Degraded: page.Degraded,
			Message:  page.Message,
		})
	}
}
