// SPDX-License-Identifier: MPL-2.0

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddBlockDefaults(t *testing.T) {
	d := &Dashboard{Layout: DefaultLayout()}

	table := d.AddBlock(BlockTable)
	assert.NotEmpty(t, table.ID)
	assert.Equal(t, "New Table", table.Title)
	assert.Equal(t, Size{Width: 6, Height: 4}, table.Size)
	assert.Equal(t, SourceMock, table.DataSource.Type)
	require.NotNil(t, table.Config.Table)
	assert.True(t, table.Config.Table.Pagination.Enabled)

	graph := d.AddBlock(BlockGraph)
	assert.Equal(t, "New Chart", graph.Title)
	assert.Equal(t, Size{Width: 8, Height: 6}, graph.Size)
	require.NotNil(t, graph.Config.Graph)
	assert.Equal(t, "bar", graph.Config.Graph.ChartType)

	text := d.AddBlock(BlockText)
	assert.Equal(t, Size{Width: 4, Height: 2}, text.Size)
	require.NotNil(t, text.Config.Text)

	assert.Len(t, d.Blocks, 3)
}

func TestAddBlockRowMajorPacking(t *testing.T) {
	d := &Dashboard{Layout: DefaultLayout()} // 20 columns, tables 6 wide: 3 per row

	positions := []Position{}
	for i := 0; i < 4; i++ {
		positions = append(positions, d.AddBlock(BlockTable).Position)
	}
	assert.Equal(t, []Position{
		{X: 0, Y: 0},
		{X: 6, Y: 0},
		{X: 12, Y: 0},
		{X: 0, Y: 4},
	}, positions)
}

func TestUpdateBlockPositionClamps(t *testing.T) {
	d := &Dashboard{Layout: DefaultLayout()}
	block := d.AddBlock(BlockTable) // 6x4

	d.UpdateBlockPosition(block.ID, Position{X: 100, Y: -4})
	got := d.FindBlock(block.ID)
	assert.Equal(t, Position{X: 14, Y: 0}, got.Position)
}

func TestUnknownBlockIDIsNoOp(t *testing.T) {
	d := &Dashboard{Layout: DefaultLayout()}
	block := d.AddBlock(BlockTable)

	d.UpdateBlockPosition("nope", Position{X: 1, Y: 1})
	d.UpdateBlockSize("nope", Size{Width: 2, Height: 2})
	d.RemoveBlock("nope")

	assert.Len(t, d.Blocks, 1)
	assert.Equal(t, block.Position, d.FindBlock(block.ID).Position)
}

func TestReplaceBlockShrinksOversizedPlacement(t *testing.T) {
	d := &Dashboard{Layout: DefaultLayout()}
	block := d.AddBlock(BlockTable)

	// x=18 with width 4 on a 20-column grid: position is kept, width
	// shrinks to the 2 remaining columns.
	block.Position = Position{X: 18, Y: 0}
	block.Size = Size{Width: 4, Height: 3}
	d.ReplaceBlock(block)

	got := d.FindBlock(block.ID)
	assert.Equal(t, Position{X: 18, Y: 0}, got.Position)
	assert.Equal(t, Size{Width: 2, Height: 3}, got.Size)
}

func TestLegacyMinimumSpan(t *testing.T) {
	layout := DefaultLayout()
	layout.GridSize = 0 // legacy pixel-mode document
	d := &Dashboard{Layout: layout}
	block := d.AddBlock(BlockTable)

	d.UpdateBlockSize(block.ID, Size{Width: 1, Height: 1})
	assert.Equal(t, Size{Width: 2, Height: 2}, d.FindBlock(block.ID).Size)
}

func TestRemoveBlock(t *testing.T) {
	d := &Dashboard{Layout: DefaultLayout()}
	a := d.AddBlock(BlockTable)
	b := d.AddBlock(BlockText)

	d.RemoveBlock(a.ID)
	assert.Len(t, d.Blocks, 1)
	assert.Nil(t, d.FindBlock(a.ID))
	assert.NotNil(t, d.FindBlock(b.ID))
}

func TestEditable(t *testing.T) {
	d := &Dashboard{}
	assert.True(t, d.Editable())
	d.Public = true
	assert.False(t, d.Editable())
	d.PublicToggleable = true
	assert.True(t, d.Editable())
}
