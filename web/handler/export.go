// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"gridboard/core"
)

// ExportBlock streams a block's resolved data as a download. The format is
// taken from the requested filename extension: .csv or .xlsx.
func ExportBlock(app *core.App) echo.HandlerFunc {
	return func(c echo.Context) error {
		filename := c.Param("filename")
		params, err := filterParams(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid filters parameter"})
		}
		ctx := c.Request().Context()
		dashboardID := c.Param("id")
		blockID := c.Param("block")

		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
		switch {
		case strings.HasSuffix(filename, ".csv"):
			c.Response().Header().Set(echo.HeaderContentType, "text/csv")
			c.Response().WriteHeader(http.StatusOK)
			return core.StreamBlockCSV(app, ctx, dashboardID, blockID, params, c.Response())
		case strings.HasSuffix(filename, ".xlsx"):
			c.Response().Header().Set(echo.HeaderContentType,
				"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			c.Response().WriteHeader(http.StatusOK)
			return core.StreamBlockXLSX(app, ctx, dashboardID, blockID, params, c.Response())
		default:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unsupported export format"})
		}
	}
}
