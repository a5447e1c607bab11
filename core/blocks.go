// SPDX-License-Identifier: MPL-2.0

package core

import (
	"context"
	"fmt"

	"gridboard/metrics"
)

// Persisted block operations. Each loads the dashboard, runs the permission
// gate, mutates the in-memory document, saves, and publishes a change event.

func AddBlockToDashboard(app *App, ctx context.Context, dashboardID string, blockType BlockType) (Block, error) {
	switch blockType {
	case BlockTable, BlockGraph, BlockText:
	default:
		return Block{}, fmt.Errorf("unknown block type %q: %w", blockType, ErrValidation)
	}
	d, err := GetDashboard(app, ctx, dashboardID)
	if err != nil {
		return Block{}, err
	}
	if !d.Editable() {
		return Block{}, fmt.Errorf("dashboard %q is public and locked: %w", dashboardID, ErrPermission)
	}
	block := d.AddBlock(blockType)
	if err := saveDashboard(app, ctx, &d); err != nil {
		return Block{}, err
	}
	publishEvent(app, ctx, ChangeEvent{Event: "add_block", DashboardID: dashboardID, BlockID: block.ID})
	return block, nil
}

// UpdateBlockInDashboard replaces a block's content wholesale. The stored
// result is always normalized, so foreign config variants and stale data
// source fields never reach the store.
func UpdateBlockInDashboard(app *App, ctx context.Context, dashboardID string, block Block) (Block, error) {
	d, err := GetDashboard(app, ctx, dashboardID)
	if err != nil {
		return Block{}, err
	}
	if !d.Editable() {
		return Block{}, fmt.Errorf("dashboard %q is public and locked: %w", dashboardID, ErrPermission)
	}
	if d.FindBlock(block.ID) == nil {
		return Block{}, fmt.Errorf("block %q: %w", block.ID, ErrNotFound)
	}
	block = NormalizeBlock(block)
	d.ReplaceBlock(block)
	if err := saveDashboard(app, ctx, &d); err != nil {
		return Block{}, err
	}
	publishEvent(app, ctx, ChangeEvent{Event: "update_block", DashboardID: dashboardID, BlockID: block.ID})
	return *d.FindBlock(block.ID), nil
}

func RemoveBlockFromDashboard(app *App, ctx context.Context, dashboardID, blockID string) error {
	d, err := GetDashboard(app, ctx, dashboardID)
	if err != nil {
		return err
	}
	if !d.Editable() {
		return fmt.Errorf("dashboard %q is public and locked: %w", dashboardID, ErrPermission)
	}
	if d.FindBlock(blockID) == nil {
		return fmt.Errorf("block %q: %w", blockID, ErrNotFound)
	}
	d.RemoveBlock(blockID)
	if err := saveDashboard(app, ctx, &d); err != nil {
		return err
	}
	app.staticMu.Lock()
	delete(app.staticGood, blockID)
	app.staticMu.Unlock()
	publishEvent(app, ctx, ChangeEvent{Event: "remove_block", DashboardID: dashboardID, BlockID: blockID})
	return nil
}

// CommitGesture persists the end state of a drag or resize gesture.
func CommitGesture(app *App, ctx context.Context, dashboardID string, commit Commit) (Block, error) {
	d, err := GetDashboard(app, ctx, dashboardID)
	if err != nil {
		return Block{}, err
	}
	if !d.Editable() {
		return Block{}, fmt.Errorf("dashboard %q is public and locked: %w", dashboardID, ErrPermission)
	}
	if d.FindBlock(commit.BlockID) == nil {
		return Block{}, fmt.Errorf("block %q: %w", commit.BlockID, ErrNotFound)
	}
	switch commit.Kind {
	case CommitDrag:
		d.UpdateBlockPosition(commit.BlockID, commit.Position)
	case CommitResize:
		d.UpdateBlockPosition(commit.BlockID, commit.Position)
		d.UpdateBlockSize(commit.BlockID, commit.Size)
	default:
		return Block{}, fmt.Errorf("unknown commit kind %q: %w", commit.Kind, ErrValidation)
	}
	if err := saveDashboard(app, ctx, &d); err != nil {
		return Block{}, err
	}
	metrics.GestureCommits.WithLabelValues(string(commit.Kind)).Inc()
	publishEvent(app, ctx, ChangeEvent{Event: "commit_gesture", DashboardID: dashboardID, BlockID: commit.BlockID})
	return *d.FindBlock(commit.BlockID), nil
}
