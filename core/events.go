// SPDX-License-Identifier: MPL-2.0

package core

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Change events published after each mutation. Subscribers (live-reload
// clients, the dev watcher) listen on gridboard.events.>. Publishing is
// best-effort: a failed publish is logged, never propagated, since the
// store write already happened.

type ChangeEvent struct {
	Event       string    `json:"event"`
	DashboardID string    `json:"dashboardId,omitempty"`
	QueryID     string    `json:"queryId,omitempty"`
	BlockID     string    `json:"blockId,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

func publishEvent(app *App, ctx context.Context, event ChangeEvent) {
	if app.NATSConn == nil {
		return
	}
	event.Timestamp = time.Now()
	data, err := json.Marshal(event)
	if err != nil {
		app.Logger.Error("failed to marshal change event", slog.Any("error", err))
		return
	}
	if err := app.NATSConn.Publish(EVENT_SUBJECT_PREFIX+event.Event, data); err != nil {
		app.Logger.Error("failed to publish change event",
			slog.String("event", event.Event), slog.Any("error", err))
	}
}

// SubscribeEvents delivers all change events to the given callback until the
// returned unsubscribe function is called.
func SubscribeEvents(app *App, handler func(ChangeEvent)) (func(), error) {
	sub, err := app.NATSConn.Subscribe(EVENT_SUBJECT_PREFIX+">", func(msg *nats.Msg) {
		var event ChangeEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			app.Logger.Error("failed to unmarshal change event", slog.Any("error", err))
			return
		}
		handler(event)
	})
	if err != nil {
		return nil, err
	}
	return func() {
		if err := sub.Unsubscribe(); err != nil {
			app.Logger.Error("failed to unsubscribe from change events", slog.Any("error", err))
		}
	}, nil
}
