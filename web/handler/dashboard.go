// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"gridboard/core"
)

func ListDashboards(app *core.App) echo.HandlerFunc {
	return func(c echo.Context) error {
		result, err := core.ListDashboards(app, c.Request().Context())
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, result)
	}
}

func CreateDashboard(app *core.App) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req core.CreateDashboardRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		}
		d, err := core.CreateDashboard(app, c.Request().Context(), req)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusCreated, d)
	}
}

func GetDashboard(app *core.App) echo.HandlerFunc {
	return func(c echo.Context) error {
		d, err := core.GetDashboard(app, c.Request().Context(), c.Param("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, d)
	}
}

func UpdateDashboard(app *core.App) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req core.UpdateDashboardRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		}
		d, err := core.UpdateDashboard(app, c.Request().Context(), c.Param("id"), req)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, d)
	}
}

func DeleteDashboard(app *core.App) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := core.DeleteDashboard(app, c.Request().Context(), c.Param("id")); err != nil {
			return errorResponse(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func GetDashboardData(app *core.App) echo.HandlerFunc {
	return func(c echo.Context) error {
		params, err := filterParams(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid filters parameter"})
		}
		result, err := core.GetDashboardData(app, c.Request().Context(), c.Param("id"), params)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, result)
	}
}

// filterParams decodes the optional filters query parameter, a JSON object
// mapping filter keys to values.
func filterParams(c echo.Context) (map[string]any, error) {
	raw := c.QueryParam("filters")
	if raw == "" {
		return nil, nil
	}
	var params map[string]any
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return nil, err
	}
	return params, nil
}
