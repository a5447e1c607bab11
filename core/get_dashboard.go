// SPDX-License-Identifier: MPL-2.0

package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

func GetDashboard(app *App, ctx context.Context, id string) (Dashboard, error) {
	var row dashboardRow
	err := app.Store.GetContext(ctx, &row, `SELECT * FROM dashboards WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Dashboard{}, fmt.Errorf("dashboard %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return Dashboard{}, fmt.Errorf("failed to get dashboard: %w", err)
	}
	return row.toDashboard()
}

// BlockResult is one block's resolved data within a full dashboard
// resolution. A failed block degrades to an error string instead of failing
// the whole dashboard.
type BlockResult struct {
	BlockID string     `json:"blockId"`
	Data    *BlockData `json:"data,omitempty"`
	Error   string     `json:"error,omitempty"`
}

type DashboardData struct {
	Dashboard Dashboard     `json:"dashboard"`
	Blocks    []BlockResult `json:"blocks"`
}

// GetDashboardData resolves every block's data source. params carries filter
// values keyed by filter key, shared across all blocks.
func GetDashboardData(app *App, ctx context.Context, id string, params map[string]any) (DashboardData, error) {
	d, err := GetDashboard(app, ctx, id)
	if err != nil {
		return DashboardData{}, err
	}
	result := DashboardData{
		Dashboard: d,
		Blocks:    make([]BlockResult, 0, len(d.Blocks)),
	}
	for _, block := range d.Blocks {
		data, err := ResolveBlockData(app, ctx, &d, block, params)
		if err != nil {
			// Context cancellation aborts the whole resolution.
			if ctx.Err() != nil {
				return DashboardData{}, ctx.Err()
			}
			result.Blocks = append(result.Blocks, BlockResult{BlockID: block.ID, Error: err.Error()})
			continue
		}
		result.Blocks = append(result.Blocks, BlockResult{BlockID: block.ID, Data: data})
	}
	return result, nil
}
