// SPDX-License-Identifier: MPL-2.0

// Package handler contains the HTTP handlers. Each handler is a thin
// adapter: decode the request, call into core, map the error class to a
// status code.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"gridboard/core"
)

func errorResponse(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrPermission):
		status = http.StatusForbidden
	case errors.Is(err, core.ErrTransport), errors.Is(err, core.ErrResolution):
		status = http.StatusBadGateway
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}
