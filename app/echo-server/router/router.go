package router

import (
	"marketplace/internal/rest"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupProductRoutes(api *echo.Group, handler *rest.ProductHandler, authRequired echo.MiddlewareFunc, vendorOrAdmin echo.MiddlewareFunc) {
	products := api.Group("/products")

	products.GET("", handler.GetAllProducts)
	products.GET("/:id", handler.GetProductByID)
	products.POST("", handler.CreateProduct, authRequired, vendorOrAdmin)
	products.PUT("/:id", handler.UpdateProduct, authRequired, vendorOrAdmin)
	products.DELETE("/:id", handler.DeleteProduct, authRequired, vendorOrAdmin)
}

func SetRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler, optionalAuth echo.MiddlewareFunc) {
	reco := api.Group("/recommendations", optionalAuth)
	reco.POST("", handler.Recommend)
	reco.POST("/debug", handler.Debug)
	reco.POST("/behavior", handler.RecordBehavior)

	api.GET("/products/:id/similar", handler.Similar)
}

func SetRecommendationAdminRoutes(api *echo.Group, handler *rest.RecommendationHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	admin := api.Group("/admin/recommendations", authRequired, adminOnly)
	admin.POST("/index", handler.RefreshIndex)
}

func SetMetricsRoute(e *echo.Echo) {
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
