package router

import (
	"github.com/labstack/echo/v4"

	"github.com/tabegoro/tabegoro/internal/handler"
	"github.com/tabegoro/tabegoro/internal/middleware"
)

// RegisterAdmin registers the management surface under /v1/admin. Every
// route requires a token whose admin claim is set.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin", middleware.JWTAuth(jwtSecret), middleware.RequireAdmin())

	g.GET("/summary", a.Summary)

	g.GET("/shops", a.ListShops)
	g.GET("/shops/:id", a.GetShop)
	g.POST("/shops", a.CreateShop)
	g.PUT("/shops/:id", a.UpdateShop)
	g.DELETE("/shops/:id", a.DeleteShop)

	g.POST("/categories", a.CreateCategory)
	g.PUT("/categories/:id", a.UpdateCategory)
	g.DELETE("/categories/:id", a.DeleteCategory)

	g.POST("/tags", a.CreateTag)
	g.PUT("/tags/:id", a.UpdateTag)
	g.DELETE("/tags/:id", a.DeleteTag)

	g.GET("/shops/:id/holidays", a.ListHolidays)
	g.POST("/shops/:id/holidays", a.CreateHoliday)
	g.DELETE("/holidays/:holiday_id", a.DeleteHoliday)
}
