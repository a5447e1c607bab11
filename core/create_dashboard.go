// SPDX-License-Identifier: MPL-2.0

package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nrednav/cuid2"
)

type CreateDashboardRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Layout      *Layout `json:"layout,omitempty"`
	CreatedBy   *string `json:"createdBy,omitempty"`
}

func CreateDashboard(app *App, ctx context.Context, req CreateDashboardRequest) (Dashboard, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return Dashboard{}, fmt.Errorf("dashboard name cannot be empty: %w", ErrValidation)
	}
	layout := DefaultLayout()
	if req.Layout != nil {
		layout = *req.Layout
		if layout.Columns <= 0 {
			layout.Columns = DefaultColumns
		}
		if layout.Rows <= 0 {
			layout.Rows = DefaultRows
		}
	}
	now := time.Now()
	d := Dashboard{
		ID:          cuid2.Generate(),
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   req.CreatedBy,
		UpdatedBy:   req.CreatedBy,
		Layout:      layout,
		Blocks:      []Block{},
	}
	content, err := marshalContent(&d)
	if err != nil {
		return Dashboard{}, err
	}
	_, err = app.Store.ExecContext(ctx,
		`INSERT INTO dashboards (id, name, description, content, public, public_toggleable, created_at, updated_at, created_by, updated_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		d.ID, d.Name, d.Description, content, d.Public, d.PublicToggleable,
		d.CreatedAt, d.UpdatedAt, d.CreatedBy, d.UpdatedBy)
	if err != nil {
		return Dashboard{}, fmt.Errorf("failed to create dashboard: %w", err)
	}
	publishEvent(app, ctx, ChangeEvent{Event: "create_dashboard", DashboardID: d.ID})
	return d, nil
}
