// SPDX-License-Identifier: MPL-2.0

package core

import (
	"context"
	"fmt"
	"time"
)

type DashboardInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Public      bool      `json:"public,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	UpdatedBy   *string   `json:"updatedBy,omitempty"`
}

type DashboardListResult struct {
	Dashboards []DashboardInfo `json:"dashboards"`
}

func ListDashboards(app *App, ctx context.Context) (DashboardListResult, error) {
	rows := []dashboardRow{}
	err := app.Store.SelectContext(ctx, &rows,
		`SELECT id, name, description, '' AS content, public, public_toggleable,
		        created_at, updated_at, created_by, updated_by
		 FROM dashboards ORDER BY updated_at DESC`)
	if err != nil {
		return DashboardListResult{}, fmt.Errorf("error listing dashboards: %w", err)
	}
	result := DashboardListResult{Dashboards: make([]DashboardInfo, 0, len(rows))}
	for _, r := range rows {
		result.Dashboards = append(result.Dashboards, DashboardInfo{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			Public:      r.Public,
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
			UpdatedBy:   r.UpdatedBy,
		})
	}
	return result, nil
}
