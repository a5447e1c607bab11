// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"gridboard/core"
)

func AddBlock(app *core.App) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req struct {
			Type core.BlockType `json:"type"`
		}
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		}
		block, err := core.AddBlockToDashboard(app, c.Request().Context(), c.Param("id"), req.Type)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusCreated, block)
	}
}

func UpdateBlock(app *core.App) echo.HandlerFunc {
	return func(c echo.Context) error {
		var block core.Block
		if err := c.Bind(&block); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		}
		block.ID = c.Param("block")
		updated, err := core.UpdateBlockInDashboard(app, c.Request().Context(), c.Param("id"), block)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, updated)
	}
}

func RemoveBlock(app *core.App) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := core.RemoveBlockFromDashboard(app, c.Request().Context(), c.Param("id"), c.Param("block"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func GetBlockData(app *core.App) echo.HandlerFunc {
	return func(c echo.Context) error {
		params, err := filterParams(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid filters parameter"})
		}
		d, err := core.GetDashboard(app, c.Request().Context(), c.Param("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		block := d.FindBlock(c.Param("block"))
		if block == nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Block not found"})
		}
		data, err := core.ResolveBlockData(app, c.Request().Context(), &d, *block, params)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, data)
	}
}
