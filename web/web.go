// SPDX-License-Identifier: MPL-2.0

package web

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	slogecho "github.com/samber/slog-echo"
	"golang.org/x/crypto/acme/autocert"

	"gridboard/core"
)

type Config struct {
	Host string
	Port int
	// TLSDomain enables Let's Encrypt auto-TLS for the given domain.
	TLSDomain   string
	TLSCacheDir string
}

func Start(cfg Config, app *core.App) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(slogecho.New(app.Logger.WithGroup("web")))
	e.Use(middleware.BodyLimit("2M"))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{Level: 5}))
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		HSTSMaxAge:         2592000, // 30 days
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete},
	}))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1 << 10, // 1 KB
		LogLevel:  log.ERROR,
	}))
	e.Use(echoprometheus.NewMiddleware(app.Name))

	routes(e, app)

	go func() {
		var err error
		if cfg.TLSDomain != "" {
			e.AutoTLSManager.HostPolicy = autocert.HostWhitelist(cfg.TLSDomain)
			e.AutoTLSManager.Cache = autocert.DirCache(cfg.TLSCacheDir)
			err = e.StartAutoTLS(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port))
		} else {
			err = e.Start(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port))
		}
		if err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("error starting server", err)
		}
	}()
	app.Logger.Info(fmt.Sprintf("HTTP server listening on %s:%d", cfg.Host, cfg.Port))

	return e
}
