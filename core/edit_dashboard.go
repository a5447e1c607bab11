// SPDX-License-Identifier: MPL-2.0

package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/nrednav/cuid2"
)

type UpdateDashboardRequest struct {
	Name             *string            `json:"name,omitempty"`
	Description      *string            `json:"description,omitempty"`
	Layout           *Layout            `json:"layout,omitempty"`
	Blocks           *[]Block           `json:"blocks,omitempty"`
	Variables        *map[string]string `json:"variables,omitempty"`
	Filters          *[]Filter          `json:"filters,omitempty"`
	Public           *bool              `json:"public,omitempty"`
	PublicToggleable *bool              `json:"publicToggleable,omitempty"`
	UpdatedBy        *string            `json:"updatedBy,omitempty"`
}

// UpdateDashboard applies a partial update. The permission gate runs before
// any field is touched, so a rejected update leaves the document unchanged.
func UpdateDashboard(app *App, ctx context.Context, id string, req UpdateDashboardRequest) (Dashboard, error) {
	d, err := GetDashboard(app, ctx, id)
	if err != nil {
		return Dashboard{}, err
	}
	if !d.Editable() {
		return Dashboard{}, fmt.Errorf("dashboard %q is public and locked: %w", id, ErrPermission)
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return Dashboard{}, fmt.Errorf("dashboard name cannot be empty: %w", ErrValidation)
		}
		d.Name = name
	}
	if req.Description != nil {
		d.Description = *req.Description
	}
	if req.Layout != nil {
		if req.Layout.Columns <= 0 || req.Layout.Rows <= 0 {
			return Dashboard{}, fmt.Errorf("layout must have positive columns and rows: %w", ErrValidation)
		}
		d.Layout = *req.Layout
		// Blocks may now stick out of a smaller grid.
		for i := range d.Blocks {
			d.Blocks[i] = d.normalizePlacement(d.Blocks[i])
		}
	}
	if req.Blocks != nil {
		blocks := make([]Block, 0, len(*req.Blocks))
		for _, block := range *req.Blocks {
			if block.ID == "" {
				block.ID = cuid2.Generate()
			}
			blocks = append(blocks, d.normalizePlacement(NormalizeBlock(block)))
		}
		d.Blocks = blocks
	}
	if req.Variables != nil {
		d.Variables = *req.Variables
	}
	if req.Filters != nil {
		d.Filters = *req.Filters
	}
	if req.Public != nil {
		d.Public = *req.Public
	}
	if req.PublicToggleable != nil {
		d.PublicToggleable = *req.PublicToggleable
	}
	if req.UpdatedBy != nil {
		d.UpdatedBy = req.UpdatedBy
	}
	if err := saveDashboard(app, ctx, &d); err != nil {
		return Dashboard{}, err
	}
	publishEvent(app, ctx, ChangeEvent{Event: "update_dashboard", DashboardID: d.ID})
	return d, nil
}
