// SPDX-License-Identifier: MPL-2.0

package core

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Exports resolve a block's data the same way the dashboard view does, then
// stream it out. Column order follows the resolved metadata so query-backed
// blocks export in SELECT order.

func StreamBlockCSV(app *App, ctx context.Context, dashboardID, blockID string, params map[string]any, w io.Writer) error {
	data, columns, err := exportData(app, ctx, dashboardID, blockID, params)
	if err != nil {
		return err
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	record := make([]string, len(columns))
	for _, row := range data {
		for i, col := range columns {
			record[i] = cellString(row[col])
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func StreamBlockXLSX(app *App, ctx context.Context, dashboardID, blockID string, params map[string]any, w io.Writer) error {
	data, columns, err := exportData(app, ctx, dashboardID, blockID, params)
	if err != nil {
		return err
	}
	file := excelize.NewFile()
	defer func() {
		if err := file.Close(); err != nil {
			app.Logger.Error("failed to close xlsx file", "error", err)
		}
	}()
	sheet := "Sheet1"
	sw, err := file.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to create xlsx stream writer: %w", err)
	}
	header := make([]any, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write xlsx header: %w", err)
	}
	for i, row := range data {
		cells := make([]any, len(columns))
		for j, col := range columns {
			cells[j] = row[col]
		}
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cellRef, cells); err != nil {
			return fmt.Errorf("failed to write xlsx row: %w", err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush xlsx stream: %w", err)
	}
	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

func exportData(app *App, ctx context.Context, dashboardID, blockID string, params map[string]any) ([]Row, []string, error) {
	d, err := GetDashboard(app, ctx, dashboardID)
	if err != nil {
		return nil, nil, err
	}
	block := d.FindBlock(blockID)
	if block == nil {
		return nil, nil, fmt.Errorf("block %q: %w", blockID, ErrNotFound)
	}
	data, err := ResolveBlockData(app, ctx, &d, *block, params)
	if err != nil {
		return nil, nil, err
	}
	return data.Data, data.Metadata.Columns, nil
}

func cellString(value any) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%v", value)
}
