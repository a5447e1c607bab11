// SPDX-License-Identifier: MPL-2.0

package core

import (
	"context"
	"fmt"
)

func DeleteDashboard(app *App, ctx context.Context, id string) error {
	d, err := GetDashboard(app, ctx, id)
	if err != nil {
		return err
	}
	if !d.Editable() {
		return fmt.Errorf("dashboard %q is public and locked: %w", id, ErrPermission)
	}
	if _, err := app.Store.ExecContext(ctx, `DELETE FROM dashboards WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete dashboard: %w", err)
	}
	app.staticMu.Lock()
	for _, block := range d.Blocks {
		delete(app.staticGood, block.ID)
	}
	app.staticMu.Unlock()
	publishEvent(app, ctx, ChangeEvent{Event: "delete_dashboard", DashboardID: id})
	return nil
}
