// SPDX-License-Identifier: MPL-2.0

package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardCRUD(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	created, err := CreateDashboard(app, ctx, CreateDashboardRequest{Name: "Sales"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, DefaultLayout(), created.Layout)
	assert.Empty(t, created.Blocks)

	got, err := GetDashboard(app, ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sales", got.Name)

	list, err := ListDashboards(app, ctx)
	require.NoError(t, err)
	require.Len(t, list.Dashboards, 1)
	assert.Equal(t, created.ID, list.Dashboards[0].ID)

	desc := "quarterly numbers"
	updated, err := UpdateDashboard(app, ctx, created.ID, UpdateDashboardRequest{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, desc, updated.Description)
	assert.Equal(t, "Sales", updated.Name)

	require.NoError(t, DeleteDashboard(app, ctx, created.ID))
	_, err = GetDashboard(app, ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateDashboardValidation(t *testing.T) {
	app := newTestApp(t)
	_, err := CreateDashboard(app, context.Background(), CreateDashboardRequest{Name: "   "})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPublicDashboardIsLocked(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	created, err := CreateDashboard(app, ctx, CreateDashboardRequest{Name: "Shared"})
	require.NoError(t, err)
	public := true
	_, err = UpdateDashboard(app, ctx, created.ID, UpdateDashboardRequest{Public: &public})
	require.NoError(t, err)

	name := "Renamed"
	_, err = UpdateDashboard(app, ctx, created.ID, UpdateDashboardRequest{Name: &name})
	assert.ErrorIs(t, err, ErrPermission)

	err = DeleteDashboard(app, ctx, created.ID)
	assert.ErrorIs(t, err, ErrPermission)

	_, err = AddBlockToDashboard(app, ctx, created.ID, BlockTable)
	assert.ErrorIs(t, err, ErrPermission)

	// Gate runs before any mutation.
	got, err := GetDashboard(app, ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shared", got.Name)
}

func TestPublicToggleableStaysEditable(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	created, err := CreateDashboard(app, ctx, CreateDashboardRequest{Name: "Shared"})
	require.NoError(t, err)
	public, toggleable := true, true
	_, err = UpdateDashboard(app, ctx, created.ID, UpdateDashboardRequest{
		Public:           &public,
		PublicToggleable: &toggleable,
	})
	require.NoError(t, err)

	_, err = AddBlockToDashboard(app, ctx, created.ID, BlockText)
	assert.NoError(t, err)
}

func TestBlockLifecycle(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	d, err := CreateDashboard(app, ctx, CreateDashboardRequest{Name: "Board"})
	require.NoError(t, err)

	block, err := AddBlockToDashboard(app, ctx, d.ID, BlockGraph)
	require.NoError(t, err)
	assert.Equal(t, BlockGraph, block.Type)

	// Updates persist and come back normalized.
	block.Title = "Revenue"
	block.Config.Graph.ChartType = "pie"
	updated, err := UpdateBlockInDashboard(app, ctx, d.ID, block)
	require.NoError(t, err)
	assert.Equal(t, "Revenue", updated.Title)
	assert.Equal(t, "name", updated.Config.Graph.NameKey)
	assert.Nil(t, updated.Config.Graph.XAxis)

	stored, err := GetDashboard(app, ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, stored.Blocks, 1)
	assert.Equal(t, "Revenue", stored.Blocks[0].Title)

	require.NoError(t, RemoveBlockFromDashboard(app, ctx, d.ID, block.ID))
	stored, err = GetDashboard(app, ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Blocks)

	err = RemoveBlockFromDashboard(app, ctx, d.ID, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = AddBlockToDashboard(app, ctx, d.ID, BlockType("widget"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCommitGesturePersists(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	d, err := CreateDashboard(app, ctx, CreateDashboardRequest{Name: "Board"})
	require.NoError(t, err)
	block, err := AddBlockToDashboard(app, ctx, d.ID, BlockTable)
	require.NoError(t, err)

	committed, err := CommitGesture(app, ctx, d.ID, Commit{
		Kind:    CommitDrag,
		BlockID: block.ID,
		// Past the edge: the commit path clamps too.
		Position: Position{X: 100, Y: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, Position{X: 14, Y: 2}, committed.Position)

	committed, err = CommitGesture(app, ctx, d.ID, Commit{
		Kind:     CommitResize,
		BlockID:  block.ID,
		Position: committed.Position,
		Size:     Size{Width: 2, Height: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, Size{Width: 2, Height: 2}, committed.Size)

	stored, err := GetDashboard(app, ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, Position{X: 14, Y: 2}, stored.Blocks[0].Position)
	assert.Equal(t, Size{Width: 2, Height: 2}, stored.Blocks[0].Size)

	_, err = CommitGesture(app, ctx, d.ID, Commit{Kind: "spin", BlockID: block.ID})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = CommitGesture(app, ctx, d.ID, Commit{Kind: CommitDrag, BlockID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestShrinkingLayoutRenormalizesBlocks(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	d, err := CreateDashboard(app, ctx, CreateDashboardRequest{Name: "Board"})
	require.NoError(t, err)
	block, err := AddBlockToDashboard(app, ctx, d.ID, BlockTable) // 6x4 at 0,0
	require.NoError(t, err)
	_, err = CommitGesture(app, ctx, d.ID, Commit{
		Kind:     CommitDrag,
		BlockID:  block.ID,
		Position: Position{X: 14, Y: 0},
	})
	require.NoError(t, err)

	smaller := DefaultLayout()
	smaller.Columns = 16
	updated, err := UpdateDashboard(app, ctx, d.ID, UpdateDashboardRequest{Layout: &smaller})
	require.NoError(t, err)
	got := updated.Blocks[0]
	assert.LessOrEqual(t, got.Position.X+got.Size.Width, 16)
}

func TestGetDashboardDataDegradesPerBlock(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	d, err := CreateDashboard(app, ctx, CreateDashboardRequest{Name: "Board"})
	require.NoError(t, err)
	good, err := AddBlockToDashboard(app, ctx, d.ID, BlockTable)
	require.NoError(t, err)
	bad, err := AddBlockToDashboard(app, ctx, d.ID, BlockTable)
	require.NoError(t, err)

	// Point the second block at a query that does not exist.
	badBlock := bad
	badBlock.DataSource = DataSource{Type: SourceQuery, Query: &QuerySource{QueryID: "missing"}}
	_, err = UpdateBlockInDashboard(app, ctx, d.ID, badBlock)
	require.NoError(t, err)

	result, err := GetDashboardData(app, ctx, d.ID, nil)
	require.NoError(t, err)
	require.Len(t, result.Blocks, 2)

	byID := map[string]BlockResult{}
	for _, br := range result.Blocks {
		byID[br.BlockID] = br
	}
	assert.NotNil(t, byID[good.ID].Data)
	assert.Empty(t, byID[good.ID].Error)
	assert.Nil(t, byID[bad.ID].Data)
	assert.NotEmpty(t, byID[bad.ID].Error)
}
