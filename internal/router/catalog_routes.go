package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/handler"
	"github.com/iliyamo/restaurant-pos/internal/middleware"
	"github.com/iliyamo/restaurant-pos/internal/model"
)

// catalogRoutes are the cached read routes.  Any catalog write drops all of
// them.
var catalogRoutes = []string{
	"/v1/tables",
	"/v1/tables/:id",
	"/v1/categories",
	"/v1/dishes",
	"/v1/dishes/:id",
}

// RegisterCatalog registers tables, categories and dishes.  Reads are open
// to every role and served from the Redis response cache; writes need the
// ManageCatalog capability.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, o Options) {
	g := protected(e, o)
	cache := middleware.NewRedisCache(o.Cache, o.Redis, o.Log)
	write := []echo.MiddlewareFunc{
		middleware.RequireCapability(model.CapManageCatalog),
		middleware.InvalidateCache(o.Cache, o.Redis, catalogRoutes...),
	}

	// ---- Tables ----
	g.GET("/tables", h.ListTables, cache)
	g.GET("/tables/:id", h.GetTable, cache)
	g.POST("/tables", h.CreateTable, write...)
	g.PUT("/tables/:id/occupied", h.SetOccupied, write...)

	// ---- Categories ----
	g.GET("/categories", h.ListCategories, cache)
	g.POST("/categories", h.CreateCategory, write...)

	// ---- Dishes ----
	g.GET("/dishes", h.ListDishes, cache)
	g.GET("/dishes/:id", h.GetDish, cache)
	g.POST("/dishes", h.CreateDish, write...)
	g.PUT("/dishes/:id", h.UpdateDish, write...)
	g.PATCH("/dishes/:id", h.UpdateDish, write...) // alias for clients that use PATCH
}
