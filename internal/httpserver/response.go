package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-gateway/internal/domain"
	"storefront-gateway/internal/listing"
)

// renderError maps the error taxonomy onto HTTP outcomes. Not-found is the
// only terminal page state; backend trouble answers 502/503 with copy the
// frontend can show as-is.
func renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "page not found"})
	case errors.Is(err, listing.ErrSuperseded):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": "superseded by a newer request"})
	case isUnexpectedStatus(err):
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": listing.NoProductsMessage})
	case domain.IsRetryable(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": listing.NoProductsMessage})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
	}
}

func isUnexpectedStatus(err error) bool {
	var us *domain.UnexpectedStatusError
	return errors.As(err, &us)
}
