// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/labstack/echo/v4"

	"gridboard/core"
)

// A gesture session is one websocket connection driving drag and resize on
// one dashboard. The client streams pointer samples; the server answers with
// live block updates during the gesture and a commit message once a gesture
// lands. The connection owns a single Interaction, so gesture exclusivity
// holds per session by construction.

type gestureMessage struct {
	Type string `json:"type"` // "grid", "pointer"
	// grid
	Rect     *core.Rect `json:"rect,omitempty"`
	EditMode *bool      `json:"editMode,omitempty"`
	// pointer
	Event *core.PointerEvent `json:"event,omitempty"`
}

type gestureUpdate struct {
	Type  string      `json:"type"` // "update", "commit", "error"
	Block *core.Block `json:"block,omitempty"`
	Error string      `json:"error,omitempty"`
}

func GestureSession(app *core.App) echo.HandlerFunc {
	return func(c echo.Context) error {
		dashboardID := c.Param("id")
		d, err := core.GetDashboard(app, c.Request().Context(), dashboardID)
		if err != nil {
			return errorResponse(c, err)
		}
		conn, _, _, err := ws.UpgradeHTTP(c.Request(), c.Response())
		if err != nil {
			return err
		}
		go gestureLoop(app, conn, dashboardID, d)
		return nil
	}
}

func gestureLoop(app *core.App, conn net.Conn, dashboardID string, d core.Dashboard) {
	logger := app.Logger.WithGroup("gesture").With(slog.String("dashboard", dashboardID))
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Debug("error closing gesture connection", slog.Any("error", err))
		}
	}()

	send := func(update gestureUpdate) {
		data, err := json.Marshal(update)
		if err != nil {
			logger.Error("failed to marshal gesture update", slog.Any("error", err))
			return
		}
		if err := wsutil.WriteServerText(conn, data); err != nil {
			logger.Debug("failed to write gesture update", slog.Any("error", err))
		}
	}

	interaction := core.NewInteraction(&d, core.Rect{}, true,
		func(block core.Block) {
			send(gestureUpdate{Type: "update", Block: &block})
		},
		func(commit core.Commit) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			block, err := core.CommitGesture(app, ctx, dashboardID, commit)
			if err != nil {
				logger.Error("failed to commit gesture", slog.Any("error", err))
				send(gestureUpdate{Type: "error", Error: err.Error()})
				return
			}
			send(gestureUpdate{Type: "commit", Block: &block})
		},
	)
	// An open gesture must not commit when the connection drops.
	defer interaction.Cancel()

	for {
		data, err := wsutil.ReadClientText(conn)
		if err != nil {
			return
		}
		var msg gestureMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			send(gestureUpdate{Type: "error", Error: "invalid message"})
			continue
		}
		switch msg.Type {
		case "grid":
			if msg.Rect != nil {
				interaction.SetGridRect(*msg.Rect)
			}
			if msg.EditMode != nil {
				interaction.SetEditMode(*msg.EditMode)
			}
		case "pointer":
			if msg.Event == nil {
				continue
			}
			switch msg.Event.Kind {
			case "down":
				interaction.PointerDown(*msg.Event)
			case "move":
				interaction.PointerMove(*msg.Event)
			case "up":
				interaction.PointerUp(*msg.Event)
			}
		}
	}
}
