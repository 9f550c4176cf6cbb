package httpserver

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"storefront-gateway/internal/directory"
	"storefront-gateway/internal/filter"
	"storefront-gateway/internal/listing"
)

// listCategoriesHandler serves the cached directory snapshot for navigation
// chrome and filter sidebars.
func listCategoriesHandler(dir *directory.Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := dir.All(c.Request.Context())
		if err != nil {
			renderError(c, err)
			return
		}
		sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
		c.JSON(http.StatusOK, gin.H{"success": true, "data": cats})
	}
}

// categoryPageHandler resolves /category/:slug with the query string as the
// only filter state.
func categoryPageHandler(assembler *listing.Assembler) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := filter.Parse(c.Request.URL.Query())
		page, err := assembler.CategoryPage(c.Request.Context(), c.Param("slug"), f)
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}
