// SPDX-License-Identifier: MPL-2.0

package web

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"gridboard/core"
	"gridboard/web/handler"
)

func routes(e *echo.Echo, app *core.App) {
	e.GET("/status", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", echoprometheus.NewHandler())

	e.POST("/api/login/token", handler.TokenLogin(app))

	api := e.Group("/api", echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:Authorization",
		SigningKey:  app.JWTSecret,
	}))

	api.GET("/dashboards", handler.ListDashboards(app))
	api.POST("/dashboards", handler.CreateDashboard(app))
	api.GET("/dashboards/:id", handler.GetDashboard(app))
	api.PUT("/dashboards/:id", handler.UpdateDashboard(app))
	api.DELETE("/dashboards/:id", handler.DeleteDashboard(app))
	api.GET("/dashboards/:id/data", handler.GetDashboardData(app))

	api.POST("/dashboards/:id/blocks", handler.AddBlock(app))
	api.PUT("/dashboards/:id/blocks/:block", handler.UpdateBlock(app))
	api.DELETE("/dashboards/:id/blocks/:block", handler.RemoveBlock(app))
	api.GET("/dashboards/:id/blocks/:block/data", handler.GetBlockData(app))
	api.GET("/dashboards/:id/blocks/:block/export/:filename", handler.ExportBlock(app))
	api.GET("/dashboards/:id/gesture", handler.GestureSession(app))

	api.GET("/queries", handler.ListQueries(app))
	api.POST("/queries", handler.SaveQuery(app))
	api.GET("/queries/:id", handler.GetQuery(app))
	api.PUT("/queries/:id", handler.UpdateQuery(app))
	api.DELETE("/queries/:id", handler.DeleteQuery(app))
	api.POST("/queries/:id/execute", handler.ExecuteQuery(app))
	api.POST("/query/preview", handler.PreviewQuery(app))
	api.POST("/query/validate", handler.ValidateQuery(app))
	api.POST("/cache/invalidate", handler.InvalidateCache(app))

	api.GET("/system", handler.SystemInfo(app))
	api.POST("/admin/reset-jwt-secret", handler.ResetJWTSecret(app))
}
