package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-gateway/internal/filter"
	"storefront-gateway/internal/listing"
)

// searchHandler serves catalog-wide search. Requests from the same session
// (X-Session-ID header, falling back to client IP) share one logical query
// key: a newer request cancels the one in flight, and clearing the box
// cancels without querying at all.
func searchHandler(querier *listing.Querier, assembler *listing.Assembler) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-Session-ID")
		if key == "" {
			key = c.ClientIP()
		}

		f := filter.Parse(c.Request.URL.Query())
		if f.Query == "" {
			querier.Clear(key)
			c.JSON(http.StatusOK, gin.H{"success": true, "products": []any{}, "message": listing.NoProductsMessage})
			return
		}

		page, err := assembler.SearchPage(c.Request.Context(), key, f)
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}
