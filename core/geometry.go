// SPDX-License-Identifier: MPL-2.0

package core

// Grid geometry. Pure functions shared by the drag and resize paths.
// Everything here clamps instead of failing: given a measurable grid
// rectangle the result is always in bounds.

type Cell struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// Rect is a rendered rectangle in pixels.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Span is a 1-based CSS-grid placement: [ColStart, ColEnd) x [RowStart, RowEnd).
type Span struct {
	ColStart int `json:"colStart"`
	ColEnd   int `json:"colEnd"`
	RowStart int `json:"rowStart"`
	RowEnd   int `json:"rowEnd"`
}

// CellFromPoint maps a pixel point to the grid cell containing it, clamped
// into [0,columns-1] x [0,rows-1]. ok is false when the grid rectangle is
// not measurable yet (zero area), mirroring an unmounted canvas.
func CellFromPoint(px, py float64, gridRect Rect, columns, rows int) (Cell, bool) {
	if gridRect.Width <= 0 || gridRect.Height <= 0 || columns <= 0 || rows <= 0 {
		return Cell{}, false
	}
	cellWidth := gridRect.Width / float64(columns)
	cellHeight := gridRect.Height / float64(rows)
	col := int((px - gridRect.Left) / cellWidth)
	row := int((py - gridRect.Top) / cellHeight)
	return Cell{
		Col: clampInt(col, 0, columns-1),
		Row: clampInt(row, 0, rows-1),
	}, true
}

// PixelRectForBlock computes the absolute-positioning rectangle of a block.
// The gap is carved out of the block's own extent so neighbors stay separated.
func PixelRectForBlock(block Block, layout Layout) Rect {
	cell := float64(layout.GridSize)
	gap := float64(layout.Gap)
	return Rect{
		Left:   float64(block.Position.X) * cell,
		Top:    float64(block.Position.Y) * cell,
		Width:  float64(block.Size.Width)*cell - gap,
		Height: float64(block.Size.Height)*cell - gap,
	}
}

// GridSpanForBlock computes the CSS-grid placement of a block.
func GridSpanForBlock(block Block) Span {
	return Span{
		ColStart: block.Position.X + 1,
		ColEnd:   block.Position.X + block.Size.Width + 1,
		RowStart: block.Position.Y + 1,
		RowEnd:   block.Position.Y + block.Size.Height + 1,
	}
}

// ClampPosition keeps a block with the given size fully inside the grid.
func ClampPosition(pos Position, size Size, layout Layout) Position {
	return Position{
		X: clampInt(pos.X, 0, maxInt(0, layout.Columns-size.Width)),
		Y: clampInt(pos.Y, 0, maxInt(0, layout.Rows-size.Height)),
	}
}

// ClampSize keeps a block at the given position at least minimum-sized and
// inside the far grid edges.
func ClampSize(size Size, pos Position, layout Layout, minWidth, minHeight int) Size {
	return Size{
		Width:  clampInt(size.Width, minWidth, maxInt(minWidth, layout.Columns-pos.X)),
		Height: clampInt(size.Height, minHeight, maxInt(minHeight, layout.Rows-pos.Y)),
	}
}

func clampInt(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
