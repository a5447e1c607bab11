// SPDX-License-Identifier: MPL-2.0

package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Dashboards are stored as one row each, with layout, blocks, variables and
// filters serialized into a single content column. Metadata columns exist
// separately so listing never has to decode content.

type dashboardRow struct {
	ID               string    `db:"id"`
	Name             string    `db:"name"`
	Description      string    `db:"description"`
	Content          string    `db:"content"`
	Public           bool      `db:"public"`
	PublicToggleable bool      `db:"public_toggleable"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
	CreatedBy        *string   `db:"created_by"`
	UpdatedBy        *string   `db:"updated_by"`
}

type dashboardContent struct {
	Layout    Layout            `json:"layout"`
	Blocks    []Block           `json:"blocks"`
	Variables map[string]string `json:"variables,omitempty"`
	Filters   []Filter          `json:"filters,omitempty"`
}

func (r dashboardRow) toDashboard() (Dashboard, error) {
	var content dashboardContent
	if err := json.Unmarshal([]byte(r.Content), &content); err != nil {
		return Dashboard{}, fmt.Errorf("failed to unmarshal dashboard %q content: %w", r.ID, err)
	}
	if content.Blocks == nil {
		content.Blocks = []Block{}
	}
	return Dashboard{
		ID:               r.ID,
		Name:             r.Name,
		Description:      r.Description,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
		CreatedBy:        r.CreatedBy,
		UpdatedBy:        r.UpdatedBy,
		Layout:           content.Layout,
		Blocks:           content.Blocks,
		Variables:        content.Variables,
		Filters:          content.Filters,
		Public:           r.Public,
		PublicToggleable: r.PublicToggleable,
	}, nil
}

func marshalContent(d *Dashboard) (string, error) {
	data, err := json.Marshal(dashboardContent{
		Layout:    d.Layout,
		Blocks:    d.Blocks,
		Variables: d.Variables,
		Filters:   d.Filters,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal dashboard content: %w", err)
	}
	return string(data), nil
}

func saveDashboard(app *App, ctx context.Context, d *Dashboard) error {
	content, err := marshalContent(d)
	if err != nil {
		return err
	}
	d.UpdatedAt = time.Now()
	_, err = app.Store.ExecContext(ctx,
		`UPDATE dashboards
		 SET name = $1, description = $2, content = $3, public = $4,
		     public_toggleable = $5, updated_at = $6, updated_by = $7
		 WHERE id = $8`,
		d.Name, d.Description, content, d.Public,
		d.PublicToggleable, d.UpdatedAt, d.UpdatedBy, d.ID)
	if err != nil {
		return fmt.Errorf("failed to save dashboard: %w", err)
	}
	return nil
}
