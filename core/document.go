// SPDX-License-Identifier: MPL-2.0

package core

import (
	"github.com/nrednav/cuid2"
)

// In-memory mutation entry points for a dashboard document. All mutations
// are synchronous and clamp-preserving: after any call every block satisfies
// x+w <= columns and y+h <= rows. Lookups by unknown block id are no-ops so
// late UI events during gesture teardown don't fault.

const (
	MinBlockWidth  = 1
	MinBlockHeight = 1
	// Legacy pixel-mode documents (GridSize == 0) resized in 2-cell steps.
	LegacyMinBlockSpan = 2
)

func defaultBlockSize(blockType BlockType) Size {
	switch blockType {
	case BlockGraph:
		return Size{Width: 8, Height: 6}
	case BlockText:
		return Size{Width: 4, Height: 2}
	default:
		return Size{Width: 6, Height: 4}
	}
}

func defaultBlockTitle(blockType BlockType) string {
	switch blockType {
	case BlockGraph:
		return "New Chart"
	case BlockText:
		return "New Text"
	default:
		return "New Table"
	}
}

// AddBlock appends a new block of the given type with its default config and
// a row-major placement computed from the current block count. Overlap with
// existing blocks is permitted; the packing only avoids it for untouched
// documents.
func (d *Dashboard) AddBlock(blockType BlockType) Block {
	size := defaultBlockSize(blockType)
	perRow := d.Layout.Columns / size.Width
	if perRow < 1 {
		perRow = 1
	}
	n := len(d.Blocks)
	pos := Position{
		X: (n % perRow) * size.Width,
		Y: (n / perRow) * size.Height,
	}
	block := Block{
		ID:       cuid2.Generate(),
		Type:     blockType,
		Title:    defaultBlockTitle(blockType),
		Position: pos,
		Size:     size,
		Config:   defaultBlockConfig(blockType),
		DataSource: DataSource{
			Type: SourceMock,
		},
	}
	block = d.normalizePlacement(block)
	d.Blocks = append(d.Blocks, block)
	return block
}

// UpdateBlockPosition moves a block, clamped so it stays inside the grid.
func (d *Dashboard) UpdateBlockPosition(id string, pos Position) {
	block := d.FindBlock(id)
	if block == nil {
		return
	}
	block.Position = ClampPosition(pos, block.Size, d.Layout)
}

// UpdateBlockSize resizes a block, clamped to the minimum span and the far
// grid edges.
func (d *Dashboard) UpdateBlockSize(id string, size Size) {
	block := d.FindBlock(id)
	if block == nil {
		return
	}
	minW, minH := d.minBlockSpan()
	block.Size = ClampSize(size, block.Position, d.Layout, minW, minH)
}

// RemoveBlock deletes the block with the given id.
func (d *Dashboard) RemoveBlock(id string) {
	for i := range d.Blocks {
		if d.Blocks[i].ID == id {
			d.Blocks = append(d.Blocks[:i], d.Blocks[i+1:]...)
			return
		}
	}
}

// ReplaceBlock swaps the stored block with the same id for the given one,
// re-normalizing its placement.
func (d *Dashboard) ReplaceBlock(block Block) {
	for i := range d.Blocks {
		if d.Blocks[i].ID == block.ID {
			d.Blocks[i] = d.normalizePlacement(block)
			return
		}
	}
}

// normalizePlacement pulls an out-of-grid block back in. The position is
// clamped into the grid first, then the size is shrunk to fit the remaining
// span. A block at x=18 w=4 on a 20-column grid keeps its position and ends
// up 2 wide.
func (d *Dashboard) normalizePlacement(block Block) Block {
	minW, minH := d.minBlockSpan()
	block.Position.X = clampInt(block.Position.X, 0, maxInt(0, d.Layout.Columns-minW))
	block.Position.Y = clampInt(block.Position.Y, 0, maxInt(0, d.Layout.Rows-minH))
	block.Size = ClampSize(block.Size, block.Position, d.Layout, minW, minH)
	return block
}

func (d *Dashboard) minBlockSpan() (int, int) {
	if d.Layout.GridSize == 0 {
		return LegacyMinBlockSpan, LegacyMinBlockSpan
	}
	return MinBlockWidth, MinBlockHeight
}
