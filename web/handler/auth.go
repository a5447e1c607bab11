// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"gridboard/core"
)

func TokenLogin(app *core.App) echo.HandlerFunc {
	return func(c echo.Context) error {
		var loginRequest struct {
			Token string `json:"token"`
		}
		if err := c.Bind(&loginRequest); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		}
		if ok, err := core.ValidLogin(app, c.Request().Context(), loginRequest.Token); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		} else if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
		}
		claims := jwt.MapClaims{
			"exp": time.Now().Add(app.JWTExp).Unix(),
		}
		jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		tokenString, err := jwtToken.SignedString(app.JWTSecret)
		if err != nil {
			app.Logger.Error("Failed to sign token", slog.Any("error", err))
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to sign token"})
		}
		return c.JSON(http.StatusOK, map[string]string{"jwt": tokenString})
	}
}

func ResetJWTSecret(app *core.App) echo.HandlerFunc {
	return func(c echo.Context) error {
		secret, err := core.ResetJWTSecret(app, c.Request().Context())
		if err != nil {
			app.Logger.Error("Failed to reset JWT secret", slog.Any("error", err))
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to reset JWT secret"})
		}
		app.JWTSecret = secret
		return c.NoContent(http.StatusOK)
	}
}
