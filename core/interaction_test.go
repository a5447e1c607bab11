// SPDX-License-Identifier: MPL-2.0

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 800x600 canvas over a 20x15 grid gives 40px square cells.
var testGridRect = Rect{Left: 0, Top: 0, Width: 800, Height: 600}

func testDashboard() *Dashboard {
	return &Dashboard{
		ID:     "dash1",
		Name:   "Test",
		Layout: DefaultLayout(),
		Blocks: []Block{
			{
				ID:       "block1",
				Type:     BlockTable,
				Position: Position{X: 5, Y: 5},
				Size:     Size{Width: 3, Height: 3},
			},
		},
	}
}

// pointAt returns the pixel center of a grid cell on the test canvas.
func pointAt(col, row int) (float64, float64) {
	return float64(col)*40 + 20, float64(row)*40 + 20
}

func TestDragCommitsClampedPosition(t *testing.T) {
	d := testDashboard()
	var commits []Commit
	it := NewInteraction(d, testGridRect, true, nil, func(c Commit) {
		commits = append(commits, c)
	})

	x, y := pointAt(6, 6)
	require.True(t, it.PointerDown(PointerEvent{Kind: "down", X: x, Y: y, BlockID: "block1"}))
	assert.Equal(t, GestureDragging, it.State())

	// Way past the right edge: position clamps to columns-width.
	it.PointerMove(PointerEvent{Kind: "move", X: 5000, Y: y})
	it.PointerUp(PointerEvent{Kind: "up"})

	require.Len(t, commits, 1)
	assert.Equal(t, CommitDrag, commits[0].Kind)
	assert.Equal(t, Position{X: 17, Y: 5}, commits[0].Position)
	assert.Equal(t, GestureIdle, it.State())
}

func TestResizeNorthWestHandle(t *testing.T) {
	d := testDashboard()
	var commits []Commit
	it := NewInteraction(d, testGridRect, true, nil, func(c Commit) {
		commits = append(commits, c)
	})

	x, y := pointAt(5, 5)
	require.True(t, it.PointerDown(PointerEvent{Kind: "down", X: x, Y: y, BlockID: "block1", Handle: "nw"}))
	assert.Equal(t, GestureResizing, it.State())

	// Pull the nw corner from (5,5) to (3,3): the se corner stays anchored
	// at (8,8), so the block grows to 5x5 at (3,3).
	mx, my := pointAt(3, 3)
	it.PointerMove(PointerEvent{Kind: "move", X: mx, Y: my})

	block := d.FindBlock("block1")
	assert.Equal(t, Position{X: 3, Y: 3}, block.Position)
	assert.Equal(t, Size{Width: 5, Height: 5}, block.Size)

	it.PointerUp(PointerEvent{Kind: "up"})
	require.Len(t, commits, 1)
	assert.Equal(t, CommitResize, commits[0].Kind)
	assert.Equal(t, Position{X: 3, Y: 3}, commits[0].Position)
	assert.Equal(t, Size{Width: 5, Height: 5}, commits[0].Size)
}

func TestResizeNeverBelowMinimum(t *testing.T) {
	d := testDashboard()
	it := NewInteraction(d, testGridRect, true, nil, nil)

	x, y := pointAt(7, 7)
	require.True(t, it.PointerDown(PointerEvent{Kind: "down", X: x, Y: y, BlockID: "block1", Handle: "se"}))

	// Drag the se handle far past the nw corner.
	mx, my := pointAt(0, 0)
	it.PointerMove(PointerEvent{Kind: "move", X: mx, Y: my})

	block := d.FindBlock("block1")
	assert.Equal(t, Size{Width: 1, Height: 1}, block.Size)
	assert.Equal(t, Position{X: 5, Y: 5}, block.Position)
}

func TestGestureExclusivity(t *testing.T) {
	d := testDashboard()
	it := NewInteraction(d, testGridRect, true, nil, nil)

	x, y := pointAt(6, 6)
	require.True(t, it.PointerDown(PointerEvent{Kind: "down", X: x, Y: y, BlockID: "block1"}))
	// A second down while a gesture runs is ignored.
	assert.False(t, it.PointerDown(PointerEvent{Kind: "down", X: x, Y: y, BlockID: "block1"}))
	assert.Equal(t, GestureDragging, it.State())
}

func TestNoCommitWithoutCellChange(t *testing.T) {
	d := testDashboard()
	commits := 0
	it := NewInteraction(d, testGridRect, true, nil, func(Commit) { commits++ })

	x, y := pointAt(6, 6)
	require.True(t, it.PointerDown(PointerEvent{Kind: "down", X: x, Y: y, BlockID: "block1"}))
	// Wiggle within the same cell.
	it.PointerMove(PointerEvent{Kind: "move", X: x + 3, Y: y + 3})
	it.PointerUp(PointerEvent{Kind: "up"})

	assert.Equal(t, 0, commits)
	assert.Equal(t, Position{X: 5, Y: 5}, d.FindBlock("block1").Position)
}

func TestPointerDownRejections(t *testing.T) {
	d := testDashboard()
	it := NewInteraction(d, testGridRect, true, nil, nil)
	x, y := pointAt(6, 6)

	assert.False(t, it.PointerDown(PointerEvent{Kind: "down", X: x, Y: y}))
	assert.False(t, it.PointerDown(PointerEvent{Kind: "down", X: x, Y: y, BlockID: "missing"}))
	assert.False(t, it.PointerDown(PointerEvent{Kind: "down", X: x, Y: y, BlockID: "block1", Interactive: true}))
	assert.False(t, it.PointerDown(PointerEvent{Kind: "down", X: x, Y: y, BlockID: "block1", Handle: "xx"}))

	// Not in edit mode.
	viewOnly := NewInteraction(d, testGridRect, false, nil, nil)
	assert.False(t, viewOnly.PointerDown(PointerEvent{Kind: "down", X: x, Y: y, BlockID: "block1"}))

	// Public dashboard without toggle is locked.
	locked := testDashboard()
	locked.Public = true
	it2 := NewInteraction(locked, testGridRect, true, nil, nil)
	assert.False(t, it2.PointerDown(PointerEvent{Kind: "down", X: x, Y: y, BlockID: "block1"}))
}

func TestCancelDropsGesture(t *testing.T) {
	d := testDashboard()
	commits := 0
	it := NewInteraction(d, testGridRect, true, nil, func(Commit) { commits++ })

	x, y := pointAt(6, 6)
	require.True(t, it.PointerDown(PointerEvent{Kind: "down", X: x, Y: y, BlockID: "block1"}))
	mx, my := pointAt(10, 10)
	it.PointerMove(PointerEvent{Kind: "move", X: mx, Y: my})

	it.Cancel()
	assert.Equal(t, GestureIdle, it.State())
	it.PointerUp(PointerEvent{Kind: "up"})
	assert.Equal(t, 0, commits)
}
