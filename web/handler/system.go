// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"gridboard/core"
)

// SystemInfo reports host resources and a few app-level gauges. Values that
// fail to collect are omitted rather than failing the endpoint.
func SystemInfo(app *core.App) echo.HandlerFunc {
	return func(c echo.Context) error {
		info := map[string]any{
			"goVersion":     runtime.Version(),
			"goroutines":    runtime.NumGoroutine(),
			"cachedQueries": app.QueryCache.Len(),
			"features": map[string]bool{
				"queries": app.Duck != nil,
				"events":  app.NATSConn != nil,
			},
		}
		if vmstat, err := mem.VirtualMemory(); err == nil {
			info["memory"] = map[string]uint64{
				"total":     vmstat.Total,
				"available": vmstat.Available,
				"used":      vmstat.Used,
			}
		}
		if usage, err := disk.Usage("/"); err == nil {
			info["disk"] = map[string]uint64{
				"total": usage.Total,
				"used":  usage.Used,
			}
		}
		if uptime, err := host.Uptime(); err == nil {
			info["uptimeSeconds"] = uptime
		}
		return c.JSON(http.StatusOK, info)
	}
}
