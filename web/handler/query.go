// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"gridboard/core"
)

func ListQueries(app *core.App) echo.HandlerFunc {
	return func(c echo.Context) error {
		result, err := core.ListGlobalQueries(app, c.Request().Context())
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, result)
	}
}

func GetQuery(app *core.App) echo.HandlerFunc {
	return func(c echo.Context) error {
		query, err := core.GetGlobalQuery(app, c.Request().Context(), c.Param("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, query)
	}
}

func SaveQuery(app *core.App) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req core.SaveQueryRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		}
		query, err := core.SaveGlobalQuery(app, c.Request().Context(), req)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusCreated, query)
	}
}

func UpdateQuery(app *core.App) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req core.SaveQueryRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		}
		query, err := core.UpdateGlobalQuery(app, c.Request().Context(), c.Param("id"), req)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, query)
	}
}

func DeleteQuery(app *core.App) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := core.DeleteGlobalQuery(app, c.Request().Context(), c.Param("id")); err != nil {
			return errorResponse(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func ExecuteQuery(app *core.App) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req struct {
			Parameters map[string]any `json:"parameters"`
		}
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		}
		result, err := core.ExecuteQuery(app, c.Request().Context(), c.Param("id"), req.Parameters)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, result)
	}
}

func PreviewQuery(app *core.App) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req struct {
			SQL   string `json:"sql"`
			Limit int    `json:"limit"`
		}
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		}
		result, err := core.GetQueryPreview(app, c.Request().Context(), req.SQL, req.Limit)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, result)
	}
}

func ValidateQuery(app *core.App) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req struct {
			SQL string `json:"sql"`
		}
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		}
		return c.JSON(http.StatusOK, core.ValidateQuery(req.SQL))
	}
}

func InvalidateCache(app *core.App) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req struct {
			QueryIDs []string `json:"queryIds"`
		}
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		}
		app.QueryCache.Invalidate(req.QueryIDs...)
		return c.JSON(http.StatusOK, map[string]int{"remaining": app.QueryCache.Len()})
	}
}
