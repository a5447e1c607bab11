// SPDX-License-Identifier: MPL-2.0

package core

// Gesture state machine for dragging and resizing blocks. One Interaction
// exists per editing session; at most one gesture is active on it at any
// time and a pointer-down while a gesture runs is ignored. Position updates
// are written into the document on every move so the canvas gets live
// feedback; the commit callback only fires on release and only if the
// pointer ever reached a new cell.

type GestureState int

const (
	GestureIdle GestureState = iota
	GestureDragging
	GestureResizing
)

func (s GestureState) String() string {
	switch s {
	case GestureDragging:
		return "dragging"
	case GestureResizing:
		return "resizing"
	default:
		return "idle"
	}
}

// PointerEvent is a single pointer or touch sample. Both input paths feed
// the same state machine.
type PointerEvent struct {
	Kind string  `json:"kind"` // "down", "move", "up"
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	// BlockID is set on pointer-down over a block.
	BlockID string `json:"blockId,omitempty"`
	// Handle is set on pointer-down over a resize handle:
	// n, s, e, w, ne, nw, se, sw.
	Handle string `json:"handle,omitempty"`
	// Interactive marks a down-event whose target is a button, input or
	// link. Those never start a drag.
	Interactive bool `json:"interactive,omitempty"`
}

const (
	CommitDrag   = "drag"
	CommitResize = "resize"
)

// Commit describes a finished gesture.
type Commit struct {
	Kind     string   `json:"kind"` // CommitDrag or CommitResize
	BlockID  string   `json:"blockId"`
	Position Position `json:"position"`
	Size     Size     `json:"size"`
}

type Interaction struct {
	dashboard *Dashboard
	gridRect  Rect
	editMode  bool

	onUpdate func(Block)
	onCommit func(Commit)

	state      GestureState
	blockID    string
	handle     string
	originCell Cell
	startPos   Position
	startSize  Size
	moved      bool
}

func NewInteraction(dashboard *Dashboard, gridRect Rect, editMode bool, onUpdate func(Block), onCommit func(Commit)) *Interaction {
	return &Interaction{
		dashboard: dashboard,
		gridRect:  gridRect,
		editMode:  editMode,
		onUpdate:  onUpdate,
		onCommit:  onCommit,
	}
}

func (it *Interaction) State() GestureState {
	return it.state
}

// SetGridRect updates the measured canvas rectangle (window resize).
func (it *Interaction) SetGridRect(r Rect) {
	it.gridRect = r
}

// SetEditMode toggles edit mode. Leaving edit mode cancels any active
// gesture.
func (it *Interaction) SetEditMode(editMode bool) {
	it.editMode = editMode
	if !editMode {
		it.reset()
	}
}

func (it *Interaction) editable() bool {
	return it.editMode && it.dashboard.Editable()
}

// PointerDown tries to start a gesture. It reports whether one started.
func (it *Interaction) PointerDown(ev PointerEvent) bool {
	if it.state != GestureIdle || !it.editable() {
		return false
	}
	if ev.BlockID == "" {
		return false
	}
	block := it.dashboard.FindBlock(ev.BlockID)
	if block == nil {
		return false
	}
	cell, ok := CellFromPoint(ev.X, ev.Y, it.gridRect, it.dashboard.Layout.Columns, it.dashboard.Layout.Rows)
	if !ok {
		return false
	}
	if ev.Handle != "" {
		if !validHandle(ev.Handle) {
			return false
		}
		it.state = GestureResizing
		it.handle = ev.Handle
	} else {
		if ev.Interactive {
			return false
		}
		it.state = GestureDragging
	}
	it.blockID = block.ID
	it.originCell = cell
	it.startPos = block.Position
	it.startSize = block.Size
	it.moved = false
	return true
}

// PointerMove advances the active gesture. Ignored while idle.
func (it *Interaction) PointerMove(ev PointerEvent) {
	if it.state == GestureIdle {
		return
	}
	cell, ok := CellFromPoint(ev.X, ev.Y, it.gridRect, it.dashboard.Layout.Columns, it.dashboard.Layout.Rows)
	if !ok {
		return
	}
	block := it.dashboard.FindBlock(it.blockID)
	if block == nil {
		// Block removed mid-gesture.
		it.reset()
		return
	}
	if cell != it.originCell {
		it.moved = true
	}
	switch it.state {
	case GestureDragging:
		it.dragTo(cell)
	case GestureResizing:
		it.resizeTo(cell, block)
	}
	if it.onUpdate != nil {
		it.onUpdate(*it.dashboard.FindBlock(it.blockID))
	}
}

// PointerUp ends the gesture and fires the commit notification if the
// pointer ever moved into a new cell.
func (it *Interaction) PointerUp(ev PointerEvent) {
	if it.state == GestureIdle {
		return
	}
	state := it.state
	moved := it.moved
	blockID := it.blockID
	it.reset()
	if !moved || it.onCommit == nil {
		return
	}
	block := it.dashboard.FindBlock(blockID)
	if block == nil {
		return
	}
	kind := CommitDrag
	if state == GestureResizing {
		kind = CommitResize
	}
	it.onCommit(Commit{
		Kind:     kind,
		BlockID:  blockID,
		Position: block.Position,
		Size:     block.Size,
	})
}

// Cancel aborts the active gesture without committing. Used on session
// teardown (connection drop mid-drag).
func (it *Interaction) Cancel() {
	it.reset()
}

func (it *Interaction) reset() {
	it.state = GestureIdle
	it.blockID = ""
	it.handle = ""
	it.moved = false
}

func (it *Interaction) dragTo(cell Cell) {
	candidate := Position{
		X: it.startPos.X + cell.Col - it.originCell.Col,
		Y: it.startPos.Y + cell.Row - it.originCell.Row,
	}
	it.dashboard.UpdateBlockPosition(it.blockID, candidate)
}

// resizeTo recomputes position and size from the current cell against the
// fixed anchor corner opposite the grabbed handle. Dimensions shrink no
// further than the minimum span and never extend past the far grid edge.
func (it *Interaction) resizeTo(cell Cell, block *Block) {
	layout := it.dashboard.Layout
	minW, minH := it.dashboard.minBlockSpan()
	pos := block.Position
	size := block.Size

	// Anchored edges in cell coordinates, exclusive on the far side.
	right := it.startPos.X + it.startSize.Width
	bottom := it.startPos.Y + it.startSize.Height

	if handleHas(it.handle, "w") {
		newX := clampInt(cell.Col, 0, right-minW)
		pos.X = newX
		size.Width = right - newX
	} else if handleHas(it.handle, "e") {
		size.Width = clampInt(cell.Col+1-it.startPos.X, minW, layout.Columns-it.startPos.X)
	}
	if handleHas(it.handle, "n") {
		newY := clampInt(cell.Row, 0, bottom-minH)
		pos.Y = newY
		size.Height = bottom - newY
	} else if handleHas(it.handle, "s") {
		size.Height = clampInt(cell.Row+1-it.startPos.Y, minH, layout.Rows-it.startPos.Y)
	}

	block.Position = pos
	block.Size = size
}

var resizeHandles = map[string]bool{
	"n": true, "s": true, "e": true, "w": true,
	"ne": true, "nw": true, "se": true, "sw": true,
}

func validHandle(handle string) bool {
	return resizeHandles[handle]
}

func handleHas(handle, dir string) bool {
	switch dir {
	case "n":
		return handle == "n" || handle == "ne" || handle == "nw"
	case "s":
		return handle == "s" || handle == "se" || handle == "sw"
	case "e":
		return handle == "e" || handle == "ne" || handle == "se"
	case "w":
		return handle == "w" || handle == "nw" || handle == "sw"
	}
	return false
}
