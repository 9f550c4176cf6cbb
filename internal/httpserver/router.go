package httpserver

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// buildRouter wires routes for the storefront API.
func buildRouter(logger *zap.Logger, deps Deps, allowedOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	corsCfg := cors.DefaultConfig()
	if len(allowedOrigins) == 1 && allowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = allowedOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "X-Session-ID")

	router.Use(requestID(), accessLog(logger), gin.Recovery(), cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Backend))

	router.GET("/categories", listCategoriesHandler(deps.Directory))
	router.GET("/category/:slug", categoryPageHandler(deps.Assembler))
	router.GET("/search", searchHandler(deps.Querier, deps.Assembler))
	router.GET("/products/slug/:slug", productPageHandler(deps))
	router.POST("/products", createProductHandler(deps))
	router.GET("/business/:slug", businessPageHandler(deps))

	return router
}
